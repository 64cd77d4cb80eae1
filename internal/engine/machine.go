package engine

import (
	"strconv"
	"strings"

	"github.com/kidspark/kidspark-engine/internal/model"
)

// Advance computes one turn of the dialogue: given the current context and
// the raw user input it returns the context delta, the next step, the
// outbound messages and the quick replies for the following input.
//
// Advance is a pure function. It never reads activity data and performs no
// I/O; persisting the user message, the merged context and the outbound
// messages is the caller's job, and the step cursor must not be considered
// advanced until that context write succeeded.
func Advance(current model.ConversationContext, input string) Result {
	switch current.CurrentStep {
	case model.StepGreeting:
		return handleGreeting()
	case model.StepAge:
		return handleAge(input)
	case model.StepInterests:
		return handleInterests(input)
	case model.StepLocation:
		return handleLocation(input)
	case model.StepBudget:
		return handleBudget(input)
	case model.StepRecommend:
		// Terminal. Further input is a no-op; a new search needs a new
		// conversation.
		return Result{Next: model.StepRecommend}
	default:
		// Unknown cursor in a stored context; restart the script without
		// touching collected fields.
		return handleGreeting()
	}
}

// handleGreeting ignores the input entirely.
func handleGreeting() Result {
	return Result{
		Delta:        model.ConversationContext{CurrentStep: model.StepAge},
		Next:         model.StepAge,
		Messages:     []Message{{Kind: model.KindText, Content: msgWelcome}},
		QuickReplies: ageQuickReplies(),
	}
}

// handleAge interprets the input as the child's age in years. A token that
// does not parse as a non-negative integer leaves ChildAge unset, so the
// ranker later skips the age filter instead of comparing against garbage.
func handleAge(input string) Result {
	res := Result{
		Delta:        model.ConversationContext{CurrentStep: model.StepInterests},
		Next:         model.StepInterests,
		Messages:     []Message{{Kind: model.KindText, Content: msgInterests}},
		QuickReplies: interestQuickReplies(),
	}
	if age, err := strconv.Atoi(strings.TrimSpace(input)); err == nil && age >= 0 {
		res.Delta.ChildAge = &age
	}
	return res
}

// handleInterests splits the input on commas and stores the trimmed,
// non-empty tokens, replacing any previous interests wholesale.
func handleInterests(input string) Result {
	var tags []string
	for _, tok := range strings.Split(input, ",") {
		if t := strings.TrimSpace(tok); t != "" {
			tags = append(tags, t)
		}
	}
	return Result{
		Delta: model.ConversationContext{
			Interests:   tags,
			CurrentStep: model.StepLocation,
		},
		Next:         model.StepLocation,
		Messages:     []Message{{Kind: model.KindText, Content: msgEnvironment}},
		QuickReplies: environmentQuickReplies(),
	}
}

// handleLocation maps "indoor" and "outdoor" to the matching exclusive
// preference; anything else, including the literal "both", means no
// preference and sets both flags.
func handleLocation(input string) Result {
	indoor, outdoor := true, true
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "indoor":
		outdoor = false
	case "outdoor":
		indoor = false
	}
	return Result{
		Delta: model.ConversationContext{
			Indoor:      &indoor,
			Outdoor:     &outdoor,
			CurrentStep: model.StepBudget,
		},
		Next:         model.StepBudget,
		Messages:     []Message{{Kind: model.KindText, Content: msgBudget}},
		QuickReplies: budgetQuickReplies(),
	}
}

// handleBudget stores the token without validating it against the four
// known values; unknown tokens fall through the budget filter unfiltered.
func handleBudget(input string) Result {
	return Result{
		Delta: model.ConversationContext{
			Budget:      strings.ToLower(strings.TrimSpace(input)),
			CurrentStep: model.StepRecommend,
		},
		Next:      model.StepRecommend,
		Messages:  []Message{{Kind: model.KindText, Content: msgSearching}},
		Recommend: true,
	}
}
