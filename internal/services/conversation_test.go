package services

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/kidspark/kidspark-engine/internal/model"
	"github.com/kidspark/kidspark-engine/internal/store"
)

// --- Fakes ---

type fakeStore struct {
	convs      map[string]*model.Conversation
	msgs       []*model.ChatMessage
	recs       []*model.Recommendation
	acts       []model.Activity
	nextID     int
	failCtxPut bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{convs: map[string]*model.Conversation{}}
}

func (f *fakeStore) Conversations() store.Conversations     { return &fakeConversations{f} }
func (f *fakeStore) Messages() store.Messages               { return &fakeMessages{f} }
func (f *fakeStore) Contexts() store.Contexts               { return &fakeContexts{f} }
func (f *fakeStore) Recommendations() store.Recommendations { return &fakeRecommendations{f} }
func (f *fakeStore) Activities() store.Activities           { return &fakeActivities{f} }

func (f *fakeStore) id(prefix string) string {
	f.nextID++
	return prefix + "-" + strconv.Itoa(f.nextID)
}

type fakeConversations struct{ p *fakeStore }

func (c *fakeConversations) Create(_ context.Context, m *model.Conversation) (*model.Conversation, error) {
	out := *m
	out.ConversationID = c.p.id("conv")
	out.Status = model.StatusActive
	out.CreationTime = time.Now().UTC()
	c.p.convs[out.ConversationID] = &out
	return &out, nil
}

func (c *fakeConversations) Get(_ context.Context, id string) (*model.Conversation, error) {
	if m, ok := c.p.convs[id]; ok {
		cp := *m
		return &cp, nil
	}
	return nil, model.ErrNotFound
}

func (c *fakeConversations) List(_ context.Context, userID string) ([]*model.Conversation, error) {
	var out []*model.Conversation
	for _, m := range c.p.convs {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (c *fakeConversations) UpdateStatus(_ context.Context, id string, st model.ConversationStatus) error {
	m, ok := c.p.convs[id]
	if !ok {
		return model.ErrNotFound
	}
	m.Status = st
	return nil
}

type fakeMessages struct{ p *fakeStore }

func (ms *fakeMessages) Create(_ context.Context, m *model.ChatMessage) (*model.ChatMessage, error) {
	out := *m
	out.MessageID = ms.p.id("msg")
	out.CreationTime = time.Now().UTC()
	ms.p.msgs = append(ms.p.msgs, &out)
	return &out, nil
}

func (ms *fakeMessages) List(_ context.Context, req model.ListMessagesRequest) ([]*model.ChatMessage, error) {
	var out []*model.ChatMessage
	for _, m := range ms.p.msgs {
		if m.ConversationID == req.ConversationID {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakeContexts struct{ p *fakeStore }

func (c *fakeContexts) Get(_ context.Context, id string) (model.ConversationContext, error) {
	if m, ok := c.p.convs[id]; ok {
		return m.Context, nil
	}
	return model.ConversationContext{}, model.ErrNotFound
}

func (c *fakeContexts) Put(_ context.Context, id string, cc model.ConversationContext) error {
	if c.p.failCtxPut {
		return errors.New("context write rejected")
	}
	m, ok := c.p.convs[id]
	if !ok {
		return model.ErrNotFound
	}
	m.Context = cc
	return nil
}

type fakeRecommendations struct{ p *fakeStore }

func (r *fakeRecommendations) Create(_ context.Context, m *model.Recommendation) (*model.Recommendation, error) {
	out := *m
	out.RecommendationID = r.p.id("rec")
	out.CreationTime = time.Now().UTC()
	r.p.recs = append(r.p.recs, &out)
	return &out, nil
}

func (r *fakeRecommendations) List(_ context.Context, id string) ([]*model.Recommendation, error) {
	var out []*model.Recommendation
	for _, m := range r.p.recs {
		if m.ConversationID == id {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakeActivities struct{ p *fakeStore }

func (a *fakeActivities) Upsert(_ context.Context, m *model.Activity) error {
	a.p.acts = append(a.p.acts, *m)
	return nil
}

func (a *fakeActivities) List(_ context.Context) ([]model.Activity, error) {
	return a.p.acts, nil
}

type fakeCatalog struct{ acts []model.Activity }

func (f *fakeCatalog) GetAll(_ context.Context) ([]model.Activity, error) { return f.acts, nil }

// --- Tests ---

func testCatalog() *fakeCatalog {
	return &fakeCatalog{acts: []model.Activity{
		{ActivityID: "indoor-free", Name: "Play Cafe", AgeMin: 2, AgeMax: 6, IsIndoor: true, IsFree: true, AverageRating: 4.8},
		{ActivityID: "outdoor-free", Name: "Forest Trail", AgeMin: 3, AgeMax: 12, IsOutdoor: true, IsFree: true, AverageRating: 4.9},
		{ActivityID: "indoor-paid", Name: "Trampoline Hall", AgeMin: 4, AgeMax: 14, IsIndoor: true, PriceMax: 25, AverageRating: 4.2},
	}}
}

func TestStartConversationPlaysGreeting(t *testing.T) {
	fs := newFakeStore()
	svc := NewConversationService(fs, testCatalog())

	conv, res, err := svc.StartConversation(context.Background(), "u1")
	if err != nil {
		t.Fatalf("StartConversation: %v", err)
	}
	if conv.Status != model.StatusActive {
		t.Fatalf("status = %q", conv.Status)
	}
	if fs.convs[conv.ConversationID].Context.CurrentStep != model.StepAge {
		t.Fatalf("stored step = %q, want age", fs.convs[conv.ConversationID].Context.CurrentStep)
	}
	if len(res.Messages) != 1 || res.Messages[0].Role != model.RoleAssistant {
		t.Fatalf("messages = %+v", res.Messages)
	}
	if len(res.QuickReplies) == 0 {
		t.Fatal("no age quick replies")
	}
}

func TestHandleTurnFullDialogue(t *testing.T) {
	fs := newFakeStore()
	svc := NewConversationService(fs, testCatalog())
	ctx := context.Background()

	conv, _, err := svc.StartConversation(ctx, "u1")
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	var last *TurnResult
	for _, input := range []string{"4", "water, sports", "indoor", "free"} {
		last, err = svc.HandleTurn(ctx, TurnRequest{ConversationID: conv.ConversationID, Content: input})
		if err != nil {
			t.Fatalf("turn %q: %v", input, err)
		}
	}

	if len(last.Recommendations) != 1 {
		t.Fatalf("recommendations = %+v, want exactly the indoor free match", last.Recommendations)
	}
	got := last.Recommendations[0]
	if got.Activity.ActivityID != "indoor-free" {
		t.Fatalf("picked %q", got.Activity.ActivityID)
	}
	if got.Score != 1.0 {
		t.Fatalf("score = %v, want 1.0", got.Score)
	}
	wantReason := "Perfect for age 4 • Free entry • Highly rated • Indoor activity"
	if got.Reason != wantReason {
		t.Fatalf("reason = %q, want %q", got.Reason, wantReason)
	}

	// Audit rows persisted once.
	recs, err := svc.ListRecommendations(ctx, conv.ConversationID)
	if err != nil || len(recs) != 1 {
		t.Fatalf("audit rows: n=%d err=%v", len(recs), err)
	}

	// Terminal step is idempotent: another turn is a quiet no-op.
	again, err := svc.HandleTurn(ctx, TurnRequest{ConversationID: conv.ConversationID, Content: "more"})
	if err != nil {
		t.Fatalf("terminal re-entry: %v", err)
	}
	if len(again.Recommendations) != 0 {
		t.Fatalf("terminal re-entry re-ranked: %+v", again.Recommendations)
	}
	if n := len(fs.recs); n != 1 {
		t.Fatalf("audit rows after re-entry = %d, want 1", n)
	}
}

func TestHandleTurnContextWriteFailureDoesNotAdvance(t *testing.T) {
	fs := newFakeStore()
	svc := NewConversationService(fs, testCatalog())
	ctx := context.Background()

	conv, _, err := svc.StartConversation(ctx, "u1")
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	fs.failCtxPut = true
	if _, err := svc.HandleTurn(ctx, TurnRequest{ConversationID: conv.ConversationID, Content: "4"}); err == nil {
		t.Fatal("expected turn failure on context write error")
	}
	if step := fs.convs[conv.ConversationID].Context.CurrentStep; step != model.StepAge {
		t.Fatalf("step advanced to %q despite failed write", step)
	}

	fs.failCtxPut = false
	if _, err := svc.HandleTurn(ctx, TurnRequest{ConversationID: conv.ConversationID, Content: "4"}); err != nil {
		t.Fatalf("retry turn: %v", err)
	}
	if step := fs.convs[conv.ConversationID].Context.CurrentStep; step != model.StepInterests {
		t.Fatalf("step = %q after retry, want interests", step)
	}
}

func TestHandleTurnRejectsClosedConversation(t *testing.T) {
	fs := newFakeStore()
	svc := NewConversationService(fs, testCatalog())
	ctx := context.Background()

	conv, _, err := svc.StartConversation(ctx, "u1")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := svc.ArchiveConversation(ctx, conv.ConversationID); err != nil {
		t.Fatalf("archive: %v", err)
	}
	if _, err := svc.HandleTurn(ctx, TurnRequest{ConversationID: conv.ConversationID, Content: "4"}); !errors.Is(err, model.ErrConversationClosed) {
		t.Fatalf("err = %v, want ErrConversationClosed", err)
	}
	// Terminal status never reverts.
	if err := svc.CompleteConversation(ctx, conv.ConversationID); !errors.Is(err, model.ErrConflict) {
		t.Fatalf("complete after archive: err = %v, want ErrConflict", err)
	}
}

func TestHandleTurnNoMatchesStillSucceeds(t *testing.T) {
	fs := newFakeStore()
	svc := NewConversationService(fs, &fakeCatalog{acts: []model.Activity{
		{ActivityID: "teens-only", AgeMin: 13, AgeMax: 17, IsIndoor: true, IsFree: true},
	}})
	ctx := context.Background()

	conv, _, err := svc.StartConversation(ctx, "u1")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	var last *TurnResult
	for _, input := range []string{"4", "unsure", "both", "free"} {
		last, err = svc.HandleTurn(ctx, TurnRequest{ConversationID: conv.ConversationID, Content: input})
		if err != nil {
			t.Fatalf("turn %q: %v", input, err)
		}
	}
	if len(last.Recommendations) != 0 {
		t.Fatalf("recommendations = %+v, want none", last.Recommendations)
	}
	found := false
	for _, m := range last.Messages {
		if m.Content == noMatchMessage {
			found = true
		}
	}
	if !found {
		t.Fatalf("no-match message missing from %+v", last.Messages)
	}
}

func TestHandleTurnRanksByDistanceWithLocation(t *testing.T) {
	fs := newFakeStore()
	svc := NewConversationService(fs, &fakeCatalog{acts: []model.Activity{
		{ActivityID: "far", Name: "Far Park", AgeMin: 1, AgeMax: 12, IsOutdoor: true, IsIndoor: true, IsFree: true, Location: model.LatLng{Lat: 48.14, Lng: 11.58}},
		{ActivityID: "near", Name: "Near Park", AgeMin: 1, AgeMax: 12, IsOutdoor: true, IsIndoor: true, IsFree: true, Location: model.LatLng{Lat: 52.5, Lng: 13.4}},
	}})
	ctx := context.Background()

	conv, _, err := svc.StartConversation(ctx, "u1")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	loc := &model.LatLng{Lat: 52.52, Lng: 13.405}
	var last *TurnResult
	for _, input := range []string{"5", "unsure", "both", "free"} {
		last, err = svc.HandleTurn(ctx, TurnRequest{ConversationID: conv.ConversationID, Content: input, Location: loc})
		if err != nil {
			t.Fatalf("turn %q: %v", input, err)
		}
	}
	if len(last.Recommendations) != 2 || last.Recommendations[0].Activity.ActivityID != "near" {
		t.Fatalf("distance order wrong: %+v", last.Recommendations)
	}
}
