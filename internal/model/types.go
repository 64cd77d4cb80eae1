package model

import "time"

// ConversationStatus is the lifecycle state of a conversation.
// Completed and archived are terminal and never reverted.
type ConversationStatus string

const (
	StatusActive    ConversationStatus = "active"
	StatusCompleted ConversationStatus = "completed"
	StatusArchived  ConversationStatus = "archived"
)

// Step is the pipeline cursor of the guided dialogue. Steps advance
// monotonically through the fixed order and never regress.
type Step string

const (
	StepGreeting  Step = "greeting"
	StepAge       Step = "age"
	StepInterests Step = "interests"
	StepLocation  Step = "location"
	StepBudget    Step = "budget"
	StepRecommend Step = "recommend"
)

var stepOrder = map[Step]int{
	StepGreeting:  0,
	StepAge:       1,
	StepInterests: 2,
	StepLocation:  3,
	StepBudget:    4,
	StepRecommend: 5,
}

// Order returns the position of the step in the fixed sequence, or -1 for
// an unknown step token.
func (s Step) Order() int {
	if n, ok := stepOrder[s]; ok {
		return n
	}
	return -1
}

// Valid reports whether s is one of the six known steps.
func (s Step) Valid() bool { return s.Order() >= 0 }

// Terminal reports whether s is the recommend step.
func (s Step) Terminal() bool { return s == StepRecommend }

// Conversation owns one mutable context and an append-only transcript.
type Conversation struct {
	ConversationID string              `json:"conversationId"`
	UserID         string              `json:"userId"`
	Status         ConversationStatus  `json:"status"`
	Context        ConversationContext `json:"context"`
	CreationTime   time.Time           `json:"creationTime"`
	UpdateTime     time.Time           `json:"updateTime"`
}

// MessageRole identifies the author of a chat message.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleSystem    MessageRole = "system"
)

// MessageKind identifies how a message is rendered.
type MessageKind string

const (
	KindText           MessageKind = "text"
	KindQuickReply     MessageKind = "quick_reply"
	KindRecommendation MessageKind = "recommendation"
	KindActivityCard   MessageKind = "activity_card"
)

// ChatMessage is one transcript entry. Append-only: never mutated or
// deleted by the engine. Creation-time order is authoritative for replay.
type ChatMessage struct {
	MessageID      string      `json:"messageId"`
	ConversationID string      `json:"conversationId"`
	Role           MessageRole `json:"role"`
	Kind           MessageKind `json:"kind"`
	Content        string      `json:"content"`
	CreationTime   time.Time   `json:"creationTime"`
}

// ConversationContext is the structured profile accumulated across turns.
// All fields are optional except CurrentStep; pointer fields encode
// "not collected yet".
type ConversationContext struct {
	ChildAge    *int     `json:"childAge,omitempty"`
	Interests   []string `json:"interests,omitempty"`
	Indoor      *bool    `json:"indoor,omitempty"`
	Outdoor     *bool    `json:"outdoor,omitempty"`
	Budget      string   `json:"budget,omitempty"`
	CurrentStep Step     `json:"currentStep"`
}

// Merge shallow-merges delta over c and returns the union. Set fields in
// delta replace the current value wholesale (interests are never appended
// in place). CurrentStep only moves forward; a regressing or unknown step
// in delta leaves the cursor unchanged.
func (c ConversationContext) Merge(delta ConversationContext) ConversationContext {
	out := c
	if delta.ChildAge != nil {
		out.ChildAge = delta.ChildAge
	}
	if delta.Interests != nil {
		out.Interests = delta.Interests
	}
	if delta.Indoor != nil {
		out.Indoor = delta.Indoor
	}
	if delta.Outdoor != nil {
		out.Outdoor = delta.Outdoor
	}
	if delta.Budget != "" {
		out.Budget = delta.Budget
	}
	if delta.CurrentStep.Valid() && delta.CurrentStep.Order() > out.CurrentStep.Order() {
		out.CurrentStep = delta.CurrentStep
	}
	return out
}

// NewContext returns the initial context for a fresh conversation.
func NewContext() ConversationContext {
	return ConversationContext{CurrentStep: StepGreeting}
}

// QuickReply is an ephemeral tappable suggestion. Never persisted;
// recomputed each turn from the current step.
type QuickReply struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Icon  string `json:"icon,omitempty"`
}

// LatLng is a WGS84 coordinate pair.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Activity is a read-only candidate snapshot from the catalog. The engine
// never writes to it.
type Activity struct {
	ActivityID    string  `json:"activityId"`
	Name          string  `json:"name"`
	AgeMin        int     `json:"ageMin"`
	AgeMax        int     `json:"ageMax"`
	PriceMin      float64 `json:"priceMin"`
	PriceMax      float64 `json:"priceMax"`
	IsFree        bool    `json:"isFree"`
	IsIndoor      bool    `json:"isIndoor"`
	IsOutdoor     bool    `json:"isOutdoor"`
	AverageRating float64 `json:"averageRating"`
	Location      LatLng  `json:"location"`
}

// Recommendation is one write-once audit row per (conversation, activity)
// pair produced at the terminal step.
type Recommendation struct {
	RecommendationID string    `json:"recommendationId"`
	ConversationID   string    `json:"conversationId"`
	ActivityID       string    `json:"activityId"`
	Position         int       `json:"position"`
	Score            float64   `json:"score"`
	Reason           string    `json:"reason"`
	CreationTime     time.Time `json:"creationTime"`
}

// ListMessagesRequest captures filters used when reading a transcript.
type ListMessagesRequest struct {
	ConversationID string
	Limit          int
	Before         *time.Time
}
