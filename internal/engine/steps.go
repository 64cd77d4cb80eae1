// Package engine implements the fixed six-step guided dialogue that
// collects an activity-search profile one turn at a time.
package engine

import "github.com/kidspark/kidspark-engine/internal/model"

// Message is an outbound reply produced by a step handler. The service
// layer persists it as an assistant ChatMessage.
type Message struct {
	Kind    model.MessageKind
	Content string
}

// Result is the outcome of one turn: the context delta to merge, the next
// step, outbound messages, and the quick replies for the next input.
type Result struct {
	Delta        model.ConversationContext
	Next         model.Step
	Messages     []Message
	QuickReplies []model.QuickReply

	// Recommend signals the caller to run the ranker with the merged
	// context. Set only on the transition into the terminal step.
	Recommend bool
}

const (
	msgWelcome = "Hi there! I'll help you find the perfect activity for your family. How old is your child?"

	msgInterests = "Great! What is your child into? Pick anything that fits."

	msgEnvironment = "Would you rather stay indoors or head outside?"

	msgBudget = "And what budget did you have in mind?"

	msgSearching = "Searching for activities that match..."
)

func ageQuickReplies() []model.QuickReply {
	return []model.QuickReply{
		{Label: "0-1 years", Value: "1", Icon: "👶"},
		{Label: "2-3 years", Value: "3", Icon: "🧒"},
		{Label: "4-5 years", Value: "4", Icon: "🎈"},
		{Label: "6-8 years", Value: "7", Icon: "🚲"},
		{Label: "9-12 years", Value: "10", Icon: "⚽"},
	}
}

func interestQuickReplies() []model.QuickReply {
	return []model.QuickReply{
		{Label: "Playgrounds", Value: "playground", Icon: "🛝"},
		{Label: "Animals & nature", Value: "animals", Icon: "🦁"},
		{Label: "Water fun", Value: "water", Icon: "💦"},
		{Label: "Sports & movement", Value: "sports", Icon: "🤸"},
		{Label: "Arts & crafts", Value: "creative", Icon: "🎨"},
		{Label: "Not sure yet", Value: "unsure", Icon: "🤷"},
	}
}

func environmentQuickReplies() []model.QuickReply {
	return []model.QuickReply{
		{Label: "Indoor", Value: "indoor", Icon: "🏠"},
		{Label: "Outdoor", Value: "outdoor", Icon: "🌳"},
		{Label: "Both work", Value: "both", Icon: "✨"},
	}
}

func budgetQuickReplies() []model.QuickReply {
	return []model.QuickReply{
		{Label: "Free only", Value: "free", Icon: "🆓"},
		{Label: "Up to 20", Value: "low", Icon: "💰"},
		{Label: "Up to 50", Value: "medium", Icon: "💳"},
		{Label: "Money no object", Value: "high", Icon: "💎"},
	}
}
