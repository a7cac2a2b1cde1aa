package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// DigestStep is the sub-stage of a digest in processing
type DigestStep string

const (
	DigestStepNone               DigestStep = ""
	DigestStepCollectingEpisodes DigestStep = "collecting_episodes"
	DigestStepGeneratingContent  DigestStep = "generating_content"
	DigestStepGeneratingImage    DigestStep = "generating_image"
)

// Digest is a cross-episode synthesis over a time window
type Digest struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Title       string    `json:"title" gorm:"not null"`
	PeriodToken string    `json:"period" gorm:"column:period;not null"`
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
	PodcastIDs  UintList  `json:"podcast_ids" gorm:"type:text"`

	Status           Status     `json:"status" gorm:"default:'pending';index"`
	ProcessingStep   DigestStep `json:"processing_step,omitempty"`
	ProcessingDetail string     `json:"processing_detail,omitempty"`
	ErrorMessage     string     `json:"error_message,omitempty" gorm:"type:text"`

	// Generated content
	Summary         string     `json:"summary" gorm:"type:text"`
	CommonThemes    StringList `json:"common_themes" gorm:"type:text"`
	Trends          TrendList  `json:"trends" gorm:"type:text"`
	Predictions     StringList `json:"predictions" gorm:"type:text"`
	Recommendations StringList `json:"recommendations" gorm:"type:text"`
	KeyAdvice       StringList `json:"key_advice" gorm:"type:text"`
	ActionItems     StringList `json:"action_items" gorm:"type:text"`

	// Artwork
	ImageURL    string `json:"image_url,omitempty" gorm:"type:text"`
	ImagePrompt string `json:"image_prompt,omitempty" gorm:"type:text"`
	ImageArtist string `json:"image_artist,omitempty"`
	ImageScene  string `json:"image_scene,omitempty" gorm:"type:text"`
	ImageError  string `json:"image_error,omitempty" gorm:"type:text"`

	EpisodeCount int        `json:"episode_count"`
	CompletedAt  *time.Time `json:"completed_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" gorm:"index"`

	EpisodeLinks []DigestEpisode `json:"episodes,omitempty" gorm:"foreignKey:DigestID"`
}

// DigestEpisode links a digest to one of its source episodes
type DigestEpisode struct {
	ID        uint     `json:"-" gorm:"primaryKey"`
	DigestID  uint     `json:"digest_id" gorm:"not null;uniqueIndex:idx_digest_episode"`
	EpisodeID uint     `json:"episode_id" gorm:"not null;uniqueIndex:idx_digest_episode;index"`
	Position  int      `json:"position"`
	Episode   *Episode `json:"episode,omitempty" gorm:"foreignKey:EpisodeID"`
}

// Trend is an observed movement across the digest's episodes
type Trend struct {
	Trend     string `json:"trend"`
	Evidence  string `json:"evidence"`
	Direction string `json:"direction"`
}

// TrendList is a list of trends stored as JSON text
type TrendList []Trend

// Value implements driver.Valuer interface for TrendList
func (l TrendList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]Trend(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner interface for TrendList
func (l *TrendList) Scan(value interface{}) error {
	return scanJSON(value, l)
}

// UintList is a list of ids stored as JSON text
type UintList []uint

// Value implements driver.Valuer interface for UintList
func (l UintList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]uint(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner interface for UintList
func (l *UintList) Scan(value interface{}) error {
	return scanJSON(value, l)
}
