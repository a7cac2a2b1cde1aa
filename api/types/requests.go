package types

import (
	"time"

	"github.com/killallgit/podcast-analyzer/internal/services/batch"
	apperrors "github.com/killallgit/podcast-analyzer/pkg/errors"
)

// AddPodcastRequest subscribes to a feed
type AddPodcastRequest struct {
	FeedURL     string `json:"feed_url" binding:"required" example:"https://feeds.example.com/show.xml"`
	AutoAnalyze bool   `json:"auto_analyze" example:"false"`
}

// UpdatePodcastRequest changes podcast settings
type UpdatePodcastRequest struct {
	AutoAnalyze *bool `json:"auto_analyze" binding:"required" example:"true"`
}

// SelectionRequest selects episodes by period and podcast. Dates accept
// RFC 3339 or YYYY-MM-DD.
type SelectionRequest struct {
	Period     string `json:"period" example:"week"`
	StartDate  string `json:"start_date,omitempty" example:"2026-01-01"`
	EndDate    string `json:"end_date,omitempty" example:"2026-01-08"`
	PodcastIDs []uint `json:"podcast_ids,omitempty"`
}

// CreateDigestRequest creates a digest
type CreateDigestRequest struct {
	SelectionRequest
	Title string `json:"title,omitempty" example:"Weekly rates roundup"`
}

// ResetStuckRequest tunes a reclaim run
type ResetStuckRequest struct {
	IncludeFailed bool   `json:"include_failed" example:"false"`
	StaleAfter    string `json:"stale_after,omitempty" example:"30m"`
}

// Selection converts the request into a batch selection
func (r SelectionRequest) Selection() (batch.Selection, error) {
	start, err := ParseDate("start_date", r.StartDate)
	if err != nil {
		return batch.Selection{}, err
	}
	end, err := ParseDate("end_date", r.EndDate)
	if err != nil {
		return batch.Selection{}, err
	}
	return batch.Selection{Period: r.Period, StartDate: start, EndDate: end, PodcastIDs: r.PodcastIDs}, nil
}

// ParseDate parses an optional date field. A bare date is midnight UTC.
func ParseDate(field, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t, nil
	}
	if t, err := time.Parse(time.DateOnly, value); err == nil {
		return &t, nil
	}
	return nil, apperrors.ValidationError(field, "expected RFC 3339 or YYYY-MM-DD")
}
