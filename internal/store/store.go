package store

import (
	"context"

	"github.com/kidspark/kidspark-engine/internal/model"
)

// Store exposes persistence operations required by services.
// Implementations live under internal/store/<driver>/ (postgres, sqlite).
type Store interface {
	Conversations() Conversations
	Messages() Messages
	Contexts() Contexts
	Recommendations() Recommendations
	Activities() Activities
}

type Conversations interface {
	Create(ctx context.Context, c *model.Conversation) (*model.Conversation, error)
	Get(ctx context.Context, conversationID string) (*model.Conversation, error)
	List(ctx context.Context, userID string) ([]*model.Conversation, error)
	UpdateStatus(ctx context.Context, conversationID string, status model.ConversationStatus) error
}

// Messages is the append-only transcript. There is deliberately no update
// or delete: once written, a chat message is immutable.
type Messages interface {
	Create(ctx context.Context, m *model.ChatMessage) (*model.ChatMessage, error)
	List(ctx context.Context, req model.ListMessagesRequest) ([]*model.ChatMessage, error)
}

// Contexts reads and overwrites the single context record of a
// conversation. Put replaces the stored context in place; the shallow
// merge happens in the service layer before the write.
type Contexts interface {
	Get(ctx context.Context, conversationID string) (model.ConversationContext, error)
	Put(ctx context.Context, conversationID string, c model.ConversationContext) error
}

// Recommendations is the write-once audit trail of the terminal step.
type Recommendations interface {
	Create(ctx context.Context, r *model.Recommendation) (*model.Recommendation, error)
	List(ctx context.Context, conversationID string) ([]*model.Recommendation, error)
}

// Activities is the store-backed activity catalog.
type Activities interface {
	Upsert(ctx context.Context, a *model.Activity) error
	List(ctx context.Context) ([]model.Activity, error)
}
