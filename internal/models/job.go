package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// JobType represents the type of job to be processed
type JobType string

const (
	JobTypeEpisodeAnalysis  JobType = "episode_analysis"
	JobTypeDigestGeneration JobType = "digest_generation"
)

// Job is an in-memory unit of work handed to the worker pool. Release is
// invoked exactly once when the job finishes, however it finishes.
type Job struct {
	ID         string    `json:"id"`
	Type       JobType   `json:"type"`
	EntityID   uint      `json:"entity_id"`
	EnqueuedAt time.Time `json:"enqueued_at"`
	Release    func()    `json:"-"`
}

// NewJob creates a job for the given entity
func NewJob(jobType JobType, entityID uint, release func()) *Job {
	return &Job{
		ID:         uuid.NewString(),
		Type:       jobType,
		EntityID:   entityID,
		EnqueuedAt: time.Now().UTC(),
		Release:    release,
	}
}

// JobErrorType represents the category of error that occurred
type JobErrorType string

const (
	ErrorTypeDownload      JobErrorType = "download"      // Audio or transcript retrieval failed
	ErrorTypeTranscription JobErrorType = "transcription" // Speech-to-text failed
	ErrorTypeGeneration    JobErrorType = "generation"    // Text or image generation failed
	ErrorTypeTimeout       JobErrorType = "timeout"       // A step exceeded its deadline
	ErrorTypeSystem        JobErrorType = "system"        // Database, worker, or other system error
)

// StructuredJobError represents a structured error with classification information
type StructuredJobError struct {
	Type      JobErrorType
	Code      string
	Message   string
	Permanent bool // retrying the same input cannot succeed
	Original  error
}

func (e *StructuredJobError) Error() string {
	return e.Message
}

func (e *StructuredJobError) Unwrap() error {
	return e.Original
}

// NewJobError creates a retryable structured error
func NewJobError(errorType JobErrorType, code, message string, originalErr error) *StructuredJobError {
	return &StructuredJobError{
		Type:     errorType,
		Code:     code,
		Message:  message,
		Original: originalErr,
	}
}

// NewPermanentError creates a structured error that must not be retried
func NewPermanentError(errorType JobErrorType, code, message string, originalErr error) *StructuredJobError {
	return &StructuredJobError{
		Type:      errorType,
		Code:      code,
		Message:   message,
		Permanent: true,
		Original:  originalErr,
	}
}

// FailureKindOf classifies err for persistence
func FailureKindOf(err error) FailureKind {
	var jobErr *StructuredJobError
	if errors.As(err, &jobErr) && jobErr.Permanent {
		return FailurePermanent
	}
	return FailureTransient
}
