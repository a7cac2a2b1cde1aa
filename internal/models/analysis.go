package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// EpisodeAnalysis holds the structured insights extracted from a transcript
type EpisodeAnalysis struct {
	ID              uint       `json:"id" gorm:"primaryKey"`
	EpisodeID       uint       `json:"episode_id" gorm:"uniqueIndex;not null"`
	Overview        string     `json:"overview" gorm:"type:text"`
	KeyPoints       StringList `json:"key_points" gorm:"type:text"`
	Topics          StringList `json:"topics" gorm:"type:text"`
	Themes          StringList `json:"themes" gorm:"type:text"`
	Predictions     StringList `json:"predictions" gorm:"type:text"`
	Recommendations StringList `json:"recommendations" gorm:"type:text"`
	Advice          StringList `json:"advice" gorm:"type:text"`
	NotableQuotes   StringList `json:"notable_quotes" gorm:"type:text"`
	Summary         string     `json:"summary" gorm:"type:text"`
	CreatedAt       time.Time  `json:"created_at"`
}

// TableName specifies the table name for GORM
func (EpisodeAnalysis) TableName() string {
	return "episode_analyses"
}

// StringList is a list column stored as JSON text
type StringList []string

// Value implements driver.Valuer interface for StringList
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner interface for StringList
func (l *StringList) Scan(value interface{}) error {
	return scanJSON(value, l)
}

// scanJSON decodes a JSON text column; sqlite hands back either string or []byte
func scanJSON(value interface{}, dest interface{}) error {
	var data []byte
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into JSON column", value)
	}
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, dest)
}
