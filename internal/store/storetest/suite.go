package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/kidspark/kidspark-engine/internal/model"
	"github.com/kidspark/kidspark-engine/internal/store"
)

// Run exercises a compliance suite against a store.Store implementation.
// Implementations should provide a clean, isolated store from makeStore.
func Run(t *testing.T, makeStore func(t *testing.T) store.Store) {
	t.Helper()

	s := makeStore(t)
	ctx := context.Background()

	userID := "u-" + uuid.New().String()

	// Conversations
	conv, err := s.Conversations().Create(ctx, &model.Conversation{
		UserID:  userID,
		Context: model.NewContext(),
	})
	if err != nil {
		t.Fatalf("CreateConversation: %v", err)
	}
	if conv.ConversationID == "" {
		t.Fatal("CreateConversation: empty id")
	}
	if conv.Status != model.StatusActive {
		t.Fatalf("CreateConversation: status=%q, want active", conv.Status)
	}
	if got, err := s.Conversations().Get(ctx, conv.ConversationID); err != nil || got.UserID != userID {
		t.Fatalf("GetConversation: got=%v err=%v", got, err)
	}
	if _, err := s.Conversations().Get(ctx, "missing"); err != model.ErrNotFound {
		t.Fatalf("GetConversation missing: err=%v, want ErrNotFound", err)
	}
	if lst, err := s.Conversations().List(ctx, userID); err != nil || len(lst) != 1 {
		t.Fatalf("ListConversations: n=%d err=%v", len(lst), err)
	}

	// Contexts: read, merge in caller, overwrite in place
	cc, err := s.Contexts().Get(ctx, conv.ConversationID)
	if err != nil {
		t.Fatalf("GetContext: %v", err)
	}
	if cc.CurrentStep != model.StepGreeting {
		t.Fatalf("fresh context step=%q, want greeting", cc.CurrentStep)
	}
	age := 4
	cc = cc.Merge(model.ConversationContext{ChildAge: &age, CurrentStep: model.StepInterests})
	if err := s.Contexts().Put(ctx, conv.ConversationID, cc); err != nil {
		t.Fatalf("PutContext: %v", err)
	}
	cc2, err := s.Contexts().Get(ctx, conv.ConversationID)
	if err != nil || cc2.ChildAge == nil || *cc2.ChildAge != 4 || cc2.CurrentStep != model.StepInterests {
		t.Fatalf("context round trip: got=%+v err=%v", cc2, err)
	}
	if err := s.Contexts().Put(ctx, "missing", cc); err != model.ErrNotFound {
		t.Fatalf("PutContext missing: err=%v, want ErrNotFound", err)
	}

	// Messages: append-only, creation order preserved
	m1, err := s.Messages().Create(ctx, &model.ChatMessage{
		ConversationID: conv.ConversationID,
		Role:           model.RoleUser,
		Kind:           model.KindText,
		Content:        "4",
	})
	if err != nil {
		t.Fatalf("CreateMessage m1: %v", err)
	}
	time.Sleep(5 * time.Millisecond) // ensure monotonic creation time ordering
	if _, err := s.Messages().Create(ctx, &model.ChatMessage{
		ConversationID: conv.ConversationID,
		Role:           model.RoleAssistant,
		Kind:           model.KindText,
		Content:        "What is your child into?",
	}); err != nil {
		t.Fatalf("CreateMessage m2: %v", err)
	}
	msgs, err := s.Messages().List(ctx, model.ListMessagesRequest{ConversationID: conv.ConversationID})
	if err != nil || len(msgs) != 2 {
		t.Fatalf("ListMessages: n=%d err=%v", len(msgs), err)
	}
	if msgs[0].MessageID != m1.MessageID {
		t.Fatalf("ListMessages: first=%q, want %q (creation order)", msgs[0].MessageID, m1.MessageID)
	}
	if lst, err := s.Messages().List(ctx, model.ListMessagesRequest{ConversationID: conv.ConversationID, Limit: 1}); err != nil || len(lst) != 1 {
		t.Fatalf("ListMessages limit: n=%d err=%v", len(lst), err)
	}

	// Recommendations: write-once audit rows
	rec, err := s.Recommendations().Create(ctx, &model.Recommendation{
		ConversationID: conv.ConversationID,
		ActivityID:     "act-1",
		Position:       0,
		Score:          1.0,
		Reason:         "Perfect for age 4",
	})
	if err != nil {
		t.Fatalf("CreateRecommendation: %v", err)
	}
	if rec.RecommendationID == "" {
		t.Fatal("CreateRecommendation: empty id")
	}
	if _, err := s.Recommendations().Create(ctx, &model.Recommendation{
		ConversationID: conv.ConversationID,
		ActivityID:     "act-2",
		Position:       1,
		Score:          0.9,
		Reason:         "Highly rated",
	}); err != nil {
		t.Fatalf("CreateRecommendation 2: %v", err)
	}
	recs, err := s.Recommendations().List(ctx, conv.ConversationID)
	if err != nil || len(recs) != 2 {
		t.Fatalf("ListRecommendations: n=%d err=%v", len(recs), err)
	}
	if recs[0].Position != 0 || recs[1].Position != 1 {
		t.Fatalf("ListRecommendations order: %d,%d", recs[0].Position, recs[1].Position)
	}

	// Activities catalog
	act := model.Activity{
		ActivityID: "act-1", Name: "City Zoo",
		AgeMin: 2, AgeMax: 10, PriceMax: 15,
		IsOutdoor: true, AverageRating: 4.6,
		Location: model.LatLng{Lat: 52.5, Lng: 13.4},
	}
	if err := s.Activities().Upsert(ctx, &act); err != nil {
		t.Fatalf("UpsertActivity: %v", err)
	}
	act.AverageRating = 4.8
	if err := s.Activities().Upsert(ctx, &act); err != nil {
		t.Fatalf("UpsertActivity again: %v", err)
	}
	acts, err := s.Activities().List(ctx)
	if err != nil || len(acts) != 1 {
		t.Fatalf("ListActivities: n=%d err=%v", len(acts), err)
	}
	if acts[0].AverageRating != 4.8 {
		t.Fatalf("UpsertActivity did not update: rating=%v", acts[0].AverageRating)
	}

	// Status lifecycle
	if err := s.Conversations().UpdateStatus(ctx, conv.ConversationID, model.StatusCompleted); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if got, err := s.Conversations().Get(ctx, conv.ConversationID); err != nil || got.Status != model.StatusCompleted {
		t.Fatalf("status after update: got=%v err=%v", got, err)
	}
	if err := s.Conversations().UpdateStatus(ctx, "missing", model.StatusArchived); err != model.ErrNotFound {
		t.Fatalf("UpdateStatus missing: err=%v, want ErrNotFound", err)
	}
}
