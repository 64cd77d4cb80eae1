package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/kidspark/kidspark-engine/internal/model"
	"github.com/kidspark/kidspark-engine/internal/store"
)

// New opens a SQLite-backed store at path, creating the schema if needed.
func New(path string) (store.Store, error) {
	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	return NewWithDB(db)
}

// NewWithDB wraps an existing connection and applies the schema.
func NewWithDB(db *sql.DB) (store.Store, error) {
	for _, stmt := range store.DDLStatements() {
		if _, err := db.Exec(stmt); err != nil {
			return nil, err
		}
	}
	return &sqliteStore{db: db}, nil
}

type sqliteStore struct{ db *sql.DB }

func (s *sqliteStore) Conversations() store.Conversations     { return &conversations{db: s.db} }
func (s *sqliteStore) Messages() store.Messages               { return &messages{db: s.db} }
func (s *sqliteStore) Contexts() store.Contexts               { return &contexts{db: s.db} }
func (s *sqliteStore) Recommendations() store.Recommendations { return &recommendations{db: s.db} }
func (s *sqliteStore) Activities() store.Activities           { return &activities{db: s.db} }

// HealthPing implements health.HealthPinger.
func (s *sqliteStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// --- Conversations ---

type conversations struct{ db *sql.DB }

func (c *conversations) Create(ctx context.Context, m *model.Conversation) (*model.Conversation, error) {
	id := m.ConversationID
	if id == "" {
		id = uuid.New().String()
	}
	now := time.Now().UTC()
	ctxJSON, err := json.Marshal(m.Context)
	if err != nil {
		return nil, err
	}
	status := m.Status
	if status == "" {
		status = model.StatusActive
	}
	_, err = c.db.ExecContext(ctx, `
        INSERT INTO conversations (conversation_id, user_id, status, context, creation_time, update_time)
        VALUES (?,?,?,?,?,?)
    `, id, m.UserID, string(status), string(ctxJSON), now, now)
	if err != nil {
		return nil, err
	}
	out := *m
	out.ConversationID = id
	out.Status = status
	out.CreationTime = now
	out.UpdateTime = now
	return &out, nil
}

func (c *conversations) Get(ctx context.Context, conversationID string) (*model.Conversation, error) {
	row := c.db.QueryRowContext(ctx, `
        SELECT conversation_id, user_id, status, context, creation_time, update_time
        FROM conversations WHERE conversation_id = ?
    `, conversationID)
	return scanConversation(row)
}

func (c *conversations) List(ctx context.Context, userID string) ([]*model.Conversation, error) {
	rows, err := c.db.QueryContext(ctx, `
        SELECT conversation_id, user_id, status, context, creation_time, update_time
        FROM conversations WHERE user_id = ? ORDER BY creation_time DESC
    `, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []*model.Conversation
	for rows.Next() {
		m, err := scanConversation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (c *conversations) UpdateStatus(ctx context.Context, conversationID string, status model.ConversationStatus) error {
	res, err := c.db.ExecContext(ctx, `
        UPDATE conversations SET status = ?, update_time = ? WHERE conversation_id = ?
    `, string(status), time.Now().UTC(), conversationID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.ErrNotFound
	}
	return nil
}

type rowScanner interface{ Scan(dest ...any) error }

func scanConversation(row rowScanner) (*model.Conversation, error) {
	var m model.Conversation
	var status, ctxJSON string
	if err := row.Scan(&m.ConversationID, &m.UserID, &status, &ctxJSON, &m.CreationTime, &m.UpdateTime); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	m.Status = model.ConversationStatus(status)
	if err := json.Unmarshal([]byte(ctxJSON), &m.Context); err != nil {
		return nil, err
	}
	return &m, nil
}

// --- Messages ---

type messages struct{ db *sql.DB }

func (ms *messages) Create(ctx context.Context, m *model.ChatMessage) (*model.ChatMessage, error) {
	id := m.MessageID
	if id == "" {
		id = uuid.New().String()
	}
	now := time.Now().UTC()
	_, err := ms.db.ExecContext(ctx, `
        INSERT INTO chat_messages (message_id, conversation_id, role, kind, content, creation_time)
        VALUES (?,?,?,?,?,?)
    `, id, m.ConversationID, string(m.Role), string(m.Kind), m.Content, now)
	if err != nil {
		return nil, err
	}
	out := *m
	out.MessageID = id
	out.CreationTime = now
	return &out, nil
}

func (ms *messages) List(ctx context.Context, req model.ListMessagesRequest) ([]*model.ChatMessage, error) {
	query := `SELECT message_id, conversation_id, role, kind, content, creation_time
              FROM chat_messages WHERE conversation_id = ?`
	args := []any{req.ConversationID}
	if req.Before != nil {
		query += ` AND creation_time < ?`
		args = append(args, *req.Before)
	}
	query += ` ORDER BY creation_time ASC, message_id ASC`
	if req.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, req.Limit)
	}
	rows, err := ms.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []*model.ChatMessage
	for rows.Next() {
		var m model.ChatMessage
		var role, kind string
		if err := rows.Scan(&m.MessageID, &m.ConversationID, &role, &kind, &m.Content, &m.CreationTime); err != nil {
			return nil, err
		}
		m.Role = model.MessageRole(role)
		m.Kind = model.MessageKind(kind)
		out = append(out, &m)
	}
	return out, rows.Err()
}

// --- Contexts ---

type contexts struct{ db *sql.DB }

func (c *contexts) Get(ctx context.Context, conversationID string) (model.ConversationContext, error) {
	var ctxJSON string
	row := c.db.QueryRowContext(ctx, `SELECT context FROM conversations WHERE conversation_id = ?`, conversationID)
	if err := row.Scan(&ctxJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.ConversationContext{}, model.ErrNotFound
		}
		return model.ConversationContext{}, err
	}
	var out model.ConversationContext
	if err := json.Unmarshal([]byte(ctxJSON), &out); err != nil {
		return model.ConversationContext{}, err
	}
	return out, nil
}

func (c *contexts) Put(ctx context.Context, conversationID string, cc model.ConversationContext) error {
	ctxJSON, err := json.Marshal(cc)
	if err != nil {
		return err
	}
	res, err := c.db.ExecContext(ctx, `
        UPDATE conversations SET context = ?, update_time = ? WHERE conversation_id = ?
    `, string(ctxJSON), time.Now().UTC(), conversationID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.ErrNotFound
	}
	return nil
}

// --- Recommendations ---

type recommendations struct{ db *sql.DB }

func (r *recommendations) Create(ctx context.Context, m *model.Recommendation) (*model.Recommendation, error) {
	id := m.RecommendationID
	if id == "" {
		id = uuid.New().String()
	}
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO recommendations (recommendation_id, conversation_id, activity_id, position, score, reason, creation_time)
        VALUES (?,?,?,?,?,?,?)
    `, id, m.ConversationID, m.ActivityID, m.Position, m.Score, m.Reason, now)
	if err != nil {
		return nil, err
	}
	out := *m
	out.RecommendationID = id
	out.CreationTime = now
	return &out, nil
}

func (r *recommendations) List(ctx context.Context, conversationID string) ([]*model.Recommendation, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT recommendation_id, conversation_id, activity_id, position, score, reason, creation_time
        FROM recommendations WHERE conversation_id = ? ORDER BY position ASC
    `, conversationID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []*model.Recommendation
	for rows.Next() {
		var m model.Recommendation
		if err := rows.Scan(&m.RecommendationID, &m.ConversationID, &m.ActivityID, &m.Position, &m.Score, &m.Reason, &m.CreationTime); err != nil {
			return nil, err
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

// --- Activities ---

type activities struct{ db *sql.DB }

func (a *activities) Upsert(ctx context.Context, m *model.Activity) error {
	_, err := a.db.ExecContext(ctx, `
        INSERT INTO activities (activity_id, name, age_min, age_max, price_min, price_max, is_free, is_indoor, is_outdoor, average_rating, lat, lng)
        VALUES (?,?,?,?,?,?,?,?,?,?,?,?)
        ON CONFLICT (activity_id) DO UPDATE SET
            name = excluded.name,
            age_min = excluded.age_min,
            age_max = excluded.age_max,
            price_min = excluded.price_min,
            price_max = excluded.price_max,
            is_free = excluded.is_free,
            is_indoor = excluded.is_indoor,
            is_outdoor = excluded.is_outdoor,
            average_rating = excluded.average_rating,
            lat = excluded.lat,
            lng = excluded.lng
    `, m.ActivityID, m.Name, m.AgeMin, m.AgeMax, m.PriceMin, m.PriceMax, m.IsFree, m.IsIndoor, m.IsOutdoor, m.AverageRating, m.Location.Lat, m.Location.Lng)
	return err
}

func (a *activities) List(ctx context.Context) ([]model.Activity, error) {
	rows, err := a.db.QueryContext(ctx, `
        SELECT activity_id, name, age_min, age_max, price_min, price_max, is_free, is_indoor, is_outdoor, average_rating, lat, lng
        FROM activities ORDER BY activity_id
    `)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []model.Activity
	for rows.Next() {
		var m model.Activity
		if err := rows.Scan(&m.ActivityID, &m.Name, &m.AgeMin, &m.AgeMax, &m.PriceMin, &m.PriceMax, &m.IsFree, &m.IsIndoor, &m.IsOutdoor, &m.AverageRating, &m.Location.Lat, &m.Location.Lng); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
