package types

import (
	"github.com/killallgit/podcast-analyzer/internal/models"
	"github.com/killallgit/podcast-analyzer/internal/services/podcasts"
)

// Status constants for API responses
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// ErrorResponse for detailed error information
type ErrorResponse struct {
	Status  string      `json:"status" example:"error"`
	Message string      `json:"message" example:"episode not found"`
	Error   string      `json:"error,omitempty" example:"NOT_FOUND"` // Error code
	Details interface{} `json:"details,omitempty"`
}

// PodcastsResponse lists subscribed podcasts
type PodcastsResponse struct {
	Podcasts []podcasts.PodcastSummary `json:"podcasts"`
	Count    int                       `json:"count"`
}

// EpisodesResponse is a page of episodes
type EpisodesResponse struct {
	Episodes []models.Episode `json:"episodes"`
	Count    int              `json:"count"`
	Total    int64            `json:"total"`
	Offset   int              `json:"offset"`
	Limit    int              `json:"limit"`
}

// EpisodeStatusResponse is the live analysis state of an episode
type EpisodeStatusResponse struct {
	EpisodeID      uint               `json:"episode_id"`
	Status         models.Status      `json:"status"`
	ProcessingStep models.EpisodeStep `json:"processing_step,omitempty"`
	FailureKind    models.FailureKind `json:"failure_kind,omitempty"`
	Summary        *string            `json:"summary,omitempty"`
	HasAnalysis    bool               `json:"has_analysis"`
}

// DigestsResponse is a page of digests
type DigestsResponse struct {
	Digests []models.Digest `json:"digests"`
	Count   int             `json:"count"`
	Total   int64           `json:"total"`
	Offset  int             `json:"offset"`
	Limit   int             `json:"limit"`
}
