// Package services orchestrates conversation use cases over the store,
// the dialogue engine, the catalog and the recommender.
package services

import (
	"context"
	"fmt"

	"github.com/kidspark/kidspark-engine/internal/catalog"
	"github.com/kidspark/kidspark-engine/internal/engine"
	"github.com/kidspark/kidspark-engine/internal/model"
	"github.com/kidspark/kidspark-engine/internal/recommend"
	"github.com/kidspark/kidspark-engine/internal/store"
)

// RecommendedActivity pairs one ranked activity with its audit score and
// generated reason.
type RecommendedActivity struct {
	Activity model.Activity `json:"activity"`
	Score    float64        `json:"score"`
	Reason   string         `json:"reason"`
}

// TurnResult is what one processed turn hands back to the transport
// layer: the persisted outbound messages, the quick replies for the next
// input, and, on the terminal transition, the ranked recommendations.
type TurnResult struct {
	Messages        []*model.ChatMessage  `json:"messages"`
	QuickReplies    []model.QuickReply    `json:"quickReplies,omitempty"`
	Recommendations []RecommendedActivity `json:"recommendations,omitempty"`
}

// TurnRequest carries one user turn.
type TurnRequest struct {
	ConversationID string
	Content        string
	// Location, when known, switches ranking from rating to distance.
	Location *model.LatLng
}

const noMatchMessage = "I couldn't find a matching activity. Try adjusting your preferences in a new search."

// ConversationService processes turns sequentially per conversation.
// Different conversations are fully independent and may run in parallel.
type ConversationService struct {
	store    store.Store
	catalog  catalog.Source
	recorder *recommend.Recorder
}

func NewConversationService(s store.Store, src catalog.Source) *ConversationService {
	return &ConversationService{
		store:    s,
		catalog:  src,
		recorder: recommend.NewRecorder(s),
	}
}

// StartConversation creates an active conversation and immediately plays
// the greeting turn, so the caller gets the welcome message and the age
// quick replies in one round trip.
func (s *ConversationService) StartConversation(ctx context.Context, userID string) (*model.Conversation, *TurnResult, error) {
	conv, err := s.store.Conversations().Create(ctx, &model.Conversation{
		UserID:  userID,
		Status:  model.StatusActive,
		Context: model.NewContext(),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create conversation: %w", err)
	}

	res, err := s.processTurn(ctx, conv.ConversationID, conv.Context, TurnRequest{ConversationID: conv.ConversationID})
	if err != nil {
		return nil, nil, err
	}
	return conv, res, nil
}

// HandleTurn processes one user turn end to end: it appends the user
// message, advances the state machine, overwrites the stored context and
// persists the outbound messages. The step cursor is only advanced once
// the context write succeeded; a storage failure surfaces as a turn
// failure with the stored cursor untouched.
func (s *ConversationService) HandleTurn(ctx context.Context, req TurnRequest) (*TurnResult, error) {
	conv, err := s.store.Conversations().Get(ctx, req.ConversationID)
	if err != nil {
		return nil, err
	}
	if conv.Status != model.StatusActive {
		return nil, model.ErrConversationClosed
	}

	if _, err := s.store.Messages().Create(ctx, &model.ChatMessage{
		ConversationID: conv.ConversationID,
		Role:           model.RoleUser,
		Kind:           model.KindText,
		Content:        req.Content,
	}); err != nil {
		return nil, fmt.Errorf("append user message: %w", err)
	}

	return s.processTurn(ctx, conv.ConversationID, conv.Context, req)
}

func (s *ConversationService) processTurn(ctx context.Context, conversationID string, current model.ConversationContext, req TurnRequest) (*TurnResult, error) {
	res := engine.Advance(current, req.Content)
	merged := current.Merge(res.Delta)

	// Context first: if this write fails the reply below would claim a
	// step the store never reached.
	if err := s.store.Contexts().Put(ctx, conversationID, merged); err != nil {
		return nil, fmt.Errorf("persist context: %w", err)
	}

	out := &TurnResult{QuickReplies: res.QuickReplies}
	for _, m := range res.Messages {
		stored, err := s.store.Messages().Create(ctx, &model.ChatMessage{
			ConversationID: conversationID,
			Role:           model.RoleAssistant,
			Kind:           m.Kind,
			Content:        m.Content,
		})
		if err != nil {
			return nil, fmt.Errorf("append assistant message: %w", err)
		}
		out.Messages = append(out.Messages, stored)
	}

	if res.Recommend {
		recs, msgs, err := s.recommendActivities(ctx, conversationID, merged, req.Location)
		if err != nil {
			return nil, err
		}
		out.Recommendations = recs
		out.Messages = append(out.Messages, msgs...)
	}
	return out, nil
}

// recommendActivities runs the terminal pipeline: catalog snapshot, rank,
// record audit rows, and persist one activity card per pick.
func (s *ConversationService) recommendActivities(ctx context.Context, conversationID string, cc model.ConversationContext, loc *model.LatLng) ([]RecommendedActivity, []*model.ChatMessage, error) {
	candidates, err := s.catalog.GetAll(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load catalog: %w", err)
	}

	ranked := recommend.Rank(cc, candidates, loc)
	records, err := s.recorder.Record(ctx, conversationID, ranked, cc)
	if err != nil {
		return nil, nil, fmt.Errorf("record recommendations: %w", err)
	}

	if len(ranked) == 0 {
		msg, err := s.store.Messages().Create(ctx, &model.ChatMessage{
			ConversationID: conversationID,
			Role:           model.RoleAssistant,
			Kind:           model.KindText,
			Content:        noMatchMessage,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("append no-match message: %w", err)
		}
		return nil, []*model.ChatMessage{msg}, nil
	}

	recs := make([]RecommendedActivity, 0, len(ranked))
	var msgs []*model.ChatMessage
	for i, a := range ranked {
		recs = append(recs, RecommendedActivity{
			Activity: a,
			Score:    records[i].Score,
			Reason:   records[i].Reason,
		})
		msg, err := s.store.Messages().Create(ctx, &model.ChatMessage{
			ConversationID: conversationID,
			Role:           model.RoleAssistant,
			Kind:           model.KindActivityCard,
			Content:        fmt.Sprintf("%s: %s", a.Name, records[i].Reason),
		})
		if err != nil {
			return nil, nil, fmt.Errorf("append activity card: %w", err)
		}
		msgs = append(msgs, msg)
	}
	return recs, msgs, nil
}

func (s *ConversationService) GetConversation(ctx context.Context, conversationID string) (*model.Conversation, error) {
	return s.store.Conversations().Get(ctx, conversationID)
}

func (s *ConversationService) ListConversations(ctx context.Context, userID string) ([]*model.Conversation, error) {
	return s.store.Conversations().List(ctx, userID)
}

func (s *ConversationService) ListMessages(ctx context.Context, req model.ListMessagesRequest) ([]*model.ChatMessage, error) {
	return s.store.Messages().List(ctx, req)
}

func (s *ConversationService) ListRecommendations(ctx context.Context, conversationID string) ([]*model.Recommendation, error) {
	return s.store.Recommendations().List(ctx, conversationID)
}

// CompleteConversation marks a conversation completed. Terminal statuses
// never revert; completing a non-active conversation is a conflict.
func (s *ConversationService) CompleteConversation(ctx context.Context, conversationID string) error {
	return s.setTerminalStatus(ctx, conversationID, model.StatusCompleted)
}

// ArchiveConversation marks a conversation archived.
func (s *ConversationService) ArchiveConversation(ctx context.Context, conversationID string) error {
	return s.setTerminalStatus(ctx, conversationID, model.StatusArchived)
}

func (s *ConversationService) setTerminalStatus(ctx context.Context, conversationID string, status model.ConversationStatus) error {
	conv, err := s.store.Conversations().Get(ctx, conversationID)
	if err != nil {
		return err
	}
	if conv.Status != model.StatusActive {
		return model.ErrConflict
	}
	return s.store.Conversations().UpdateStatus(ctx, conversationID, status)
}
