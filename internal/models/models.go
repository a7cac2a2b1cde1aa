package models

import (
	"time"
)

// Status is the lifecycle state shared by episodes and digests
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Valid reports whether s is a known status
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// EpisodeStep is the sub-stage of an episode in processing
type EpisodeStep string

const (
	StepNone         EpisodeStep = ""
	StepStarting     EpisodeStep = "starting"
	StepDownloading  EpisodeStep = "downloading"
	StepTranscribing EpisodeStep = "transcribing"
	StepAnalyzing    EpisodeStep = "analyzing"
)

// FailureKind classifies why an episode failed
type FailureKind string

const (
	FailureNone      FailureKind = ""
	FailureTransient FailureKind = "transient"
	FailurePermanent FailureKind = "permanent"
)

// Podcast is a subscribed feed
type Podcast struct {
	ID            uint       `json:"id" gorm:"primaryKey"`
	FeedURL       string     `json:"feed_url" gorm:"uniqueIndex;not null"`
	Title         string     `json:"title" gorm:"not null"`
	Author        string     `json:"author"`
	Description   string     `json:"description" gorm:"type:text"`
	ImageURL      string     `json:"image_url"`
	Website       string     `json:"website"`
	AutoAnalyze   bool       `json:"auto_analyze" gorm:"default:false"`
	LastCheckedAt *time.Time `json:"last_checked_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	Episodes      []Episode  `json:"episodes,omitempty" gorm:"foreignKey:PodcastID"`
}

// Episode is a single feed entry and its analysis state
type Episode struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	PodcastID   uint   `json:"podcast_id" gorm:"not null;uniqueIndex:idx_episode_podcast_guid"`
	GUID        string `json:"guid" gorm:"not null;uniqueIndex:idx_episode_podcast_guid"`
	Title       string `json:"title" gorm:"not null"`
	Description string `json:"description" gorm:"type:text"`

	// Media information
	AudioURL        string `json:"audio_url" gorm:"column:audio_url"`
	TranscriptURL   string `json:"transcript_url,omitempty"`
	TranscriptType  string `json:"transcript_type,omitempty"`
	DurationSeconds *int   `json:"duration_seconds"`

	PublishedAt time.Time `json:"published_at" gorm:"index"`

	// Analysis state. Status and ProcessingStep are always written together.
	Transcript     *string     `json:"-" gorm:"type:text"`
	Summary        *string     `json:"summary" gorm:"type:text"`
	Status         Status      `json:"status" gorm:"default:'pending';index"`
	ProcessingStep EpisodeStep `json:"processing_step,omitempty"`
	FailureKind    FailureKind `json:"failure_kind,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at" gorm:"index"`

	Podcast  *Podcast         `json:"podcast,omitempty" gorm:"foreignKey:PodcastID"`
	Analysis *EpisodeAnalysis `json:"analysis,omitempty" gorm:"foreignKey:EpisodeID"`
}

// HasTranscript reports whether a non-empty transcript is stored
func (e *Episode) HasTranscript() bool {
	return e.Transcript != nil && *e.Transcript != ""
}

// All returns every persisted model, in migration order
func All() []any {
	return []any{
		&Podcast{},
		&Episode{},
		&EpisodeAnalysis{},
		&Digest{},
		&DigestEpisode{},
	}
}
