package batch

import (
	"context"
	"time"

	apperrors "github.com/killallgit/podcast-analyzer/pkg/errors"
	"github.com/killallgit/podcast-analyzer/pkg/period"
)

// Selection describes a set of episodes by time window and podcast
type Selection struct {
	Period     string     `json:"period"`
	StartDate  *time.Time `json:"start_date,omitempty"`
	EndDate    *time.Time `json:"end_date,omitempty"`
	PodcastIDs []uint     `json:"podcast_ids,omitempty"`
}

// PodcastChecker verifies a podcast allow-list
type PodcastChecker interface {
	ExistingIDs(ctx context.Context, ids []uint) ([]uint, error)
}

// Resolved is a validated selection
type Resolved struct {
	Window     period.Window
	PodcastIDs []uint // empty means all podcasts
}

// Resolve validates the period and the podcast filter. A filter that names
// no stored podcast is rejected rather than widened to every podcast.
func Resolve(ctx context.Context, podcasts PodcastChecker, sel Selection, now time.Time) (*Resolved, error) {
	window, err := period.ParseAndResolve(sel.Period, now, sel.StartDate, sel.EndDate)
	if err != nil {
		return nil, apperrors.ValidationError("period", err.Error()).WithCause(err)
	}

	ids := uniqueIDs(sel.PodcastIDs)
	if len(ids) == 0 {
		return &Resolved{Window: window}, nil
	}

	found, err := podcasts.ExistingIDs(ctx, ids)
	if err != nil {
		return nil, apperrors.DatabaseError("checking podcast filter", err)
	}
	if len(found) == 0 {
		return nil, apperrors.ValidationError("podcast_ids", "none of the given podcasts exist")
	}
	return &Resolved{Window: window, PodcastIDs: found}, nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
