// Package recommend narrows, orders and explains candidate activities
// using the profile collected by the dialogue engine.
package recommend

import (
	"sort"

	"github.com/kidspark/kidspark-engine/internal/geo"
	"github.com/kidspark/kidspark-engine/internal/model"
)

// DefaultLimit bounds the ranked result set.
const DefaultLimit = 5

// Rank filters candidates against the context and orders the survivors:
// ascending by distance when a user location is supplied, otherwise
// descending by rating. Sorting is stable so ties keep the original
// candidate order. The result is truncated to DefaultLimit only after
// filtering and ordering ran over the full candidate set.
//
// An empty result is a normal outcome, not an error; it means nothing
// matched and the caller decides how to message the user.
func Rank(cc model.ConversationContext, candidates []model.Activity, userLocation *model.LatLng) []model.Activity {
	filtered := make([]model.Activity, 0, len(candidates))
	for _, a := range candidates {
		if fitsAge(cc, a) && fitsEnvironment(cc, a) && fitsBudget(cc, a) {
			filtered = append(filtered, a)
		}
	}

	if userLocation != nil {
		sort.SliceStable(filtered, func(i, j int) bool {
			return geo.DistanceKm(*userLocation, filtered[i].Location) <
				geo.DistanceKm(*userLocation, filtered[j].Location)
		})
	} else {
		sort.SliceStable(filtered, func(i, j int) bool {
			return filtered[i].AverageRating > filtered[j].AverageRating
		})
	}

	if len(filtered) > DefaultLimit {
		filtered = filtered[:DefaultLimit]
	}
	return filtered
}

// fitsAge keeps the activity when no age was collected, or when the age
// falls inside the activity's inclusive age range.
func fitsAge(cc model.ConversationContext, a model.Activity) bool {
	if cc.ChildAge == nil {
		return true
	}
	return a.AgeMin <= *cc.ChildAge && *cc.ChildAge <= a.AgeMax
}

// fitsEnvironment filters only on an exclusive preference. Both flags set
// (or neither) is the explicit "no preference" signal.
func fitsEnvironment(cc model.ConversationContext, a model.Activity) bool {
	indoor := cc.Indoor != nil && *cc.Indoor
	outdoor := cc.Outdoor != nil && *cc.Outdoor
	switch {
	case indoor && !outdoor:
		return a.IsIndoor
	case outdoor && !indoor:
		return a.IsOutdoor
	default:
		return true
	}
}

func fitsBudget(cc model.ConversationContext, a model.Activity) bool {
	switch cc.Budget {
	case "free":
		return a.IsFree
	case "low":
		return a.IsFree || a.PriceMax <= 20
	case "medium":
		return a.PriceMax <= 50
	default:
		// "high", absent, or an unrecognized token: no filtering.
		return true
	}
}
