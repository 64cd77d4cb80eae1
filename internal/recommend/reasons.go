package recommend

import (
	"fmt"
	"strings"

	"github.com/kidspark/kidspark-engine/internal/model"
)

const (
	reasonSeparator = " • "
	reasonFallback  = "Recommended for you"

	highRatingThreshold = 4.5
)

// Explain builds the justification string for one ranked activity: the
// applicable fragments in fixed order joined by the separator, or the
// generic fallback when none applies. Pure, safe to call concurrently.
func Explain(a model.Activity, cc model.ConversationContext) string {
	var parts []string

	if cc.ChildAge != nil {
		parts = append(parts, fmt.Sprintf("Perfect for age %d", *cc.ChildAge))
	}
	if cc.Budget == "free" && a.IsFree {
		parts = append(parts, "Free entry")
	}
	if a.AverageRating >= highRatingThreshold {
		parts = append(parts, "Highly rated")
	}
	// Environment fragments are mutually exclusive; indoor wins when both
	// the context and the activity carry both flags.
	if cc.Indoor != nil && *cc.Indoor && a.IsIndoor {
		parts = append(parts, "Indoor activity")
	} else if cc.Outdoor != nil && *cc.Outdoor && a.IsOutdoor {
		parts = append(parts, "Outdoor activity")
	}

	if len(parts) == 0 {
		return reasonFallback
	}
	return strings.Join(parts, reasonSeparator)
}
