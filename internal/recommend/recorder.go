package recommend

import (
	"context"

	"github.com/kidspark/kidspark-engine/internal/model"
	"github.com/kidspark/kidspark-engine/internal/store"
)

// Recorder persists the ranked result set as write-once audit rows.
type Recorder struct {
	store store.Store
}

func NewRecorder(s store.Store) *Recorder {
	return &Recorder{store: s}
}

// scoreFor maps a rank position to the bounded decreasing score sequence
// 1.0, 0.9, 0.8, ...
func scoreFor(position int) float64 {
	return 1.0 - 0.1*float64(position)
}

// Record writes one Recommendation row per ranked activity, annotated
// with its generated reason. Rows are created exactly once per terminal
// transition and never updated afterwards.
func (r *Recorder) Record(ctx context.Context, conversationID string, ranked []model.Activity, cc model.ConversationContext) ([]*model.Recommendation, error) {
	out := make([]*model.Recommendation, 0, len(ranked))
	for i, a := range ranked {
		rec, err := r.store.Recommendations().Create(ctx, &model.Recommendation{
			ConversationID: conversationID,
			ActivityID:     a.ActivityID,
			Position:       i,
			Score:          scoreFor(i),
			Reason:         Explain(a, cc),
		})
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}
