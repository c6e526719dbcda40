package domain

import (
	"errors"
	"fmt"
)

const (
	// DefaultTotalReviews is the number of reviews a new job asks for unless the user changes it.
	DefaultTotalReviews = 750000
	// DefaultChunkSize is the number of reviews written per output file.
	DefaultChunkSize = 50000
	// DefaultTestBatchSize is the size of a test batch request.
	DefaultTestBatchSize = 100
)

// ErrInvalidSettings is returned when generation settings carry a non-positive field.
var ErrInvalidSettings = errors.New("invalid generation settings")

// JobStatus is a snapshot of the external generation job.
// It is produced by the generation service only; the console never edits one in place.
type JobStatus struct {
	IsRunning    bool     `json:"is_running"`
	Progress     int      `json:"progress"`
	Total        int      `json:"total"`
	CurrentPhase string   `json:"current_phase"`
	Completed    bool     `json:"completed"`
	FilesCreated []string `json:"files_created"`
}

// Clone returns a deep copy so callers can hold a snapshot without sharing the file slice.
func (s JobStatus) Clone() JobStatus {
	if s.FilesCreated != nil {
		files := make([]string, len(s.FilesCreated))
		copy(files, s.FilesCreated)
		s.FilesCreated = files
	}
	return s
}

// GenerationSettings is the user-editable job request.
type GenerationSettings struct {
	TotalReviews int `json:"total_reviews"`
	ChunkSize    int `json:"chunk_size"`
}

// DefaultSettings returns the settings a fresh console starts with.
func DefaultSettings() GenerationSettings {
	return GenerationSettings{
		TotalReviews: DefaultTotalReviews,
		ChunkSize:    DefaultChunkSize,
	}
}

// Validate checks that both fields are positive.
func (s GenerationSettings) Validate() error {
	if s.TotalReviews <= 0 {
		return fmt.Errorf("%w: total_reviews must be positive, got %d", ErrInvalidSettings, s.TotalReviews)
	}
	if s.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk_size must be positive, got %d", ErrInvalidSettings, s.ChunkSize)
	}
	return nil
}

// StartAck is the body the generation service returns when a job was accepted.
type StartAck struct {
	Message      string `json:"message"`
	TotalReviews int    `json:"total_reviews,omitempty"`
}

// ServiceInfo is the body of the generation service root endpoint.
type ServiceInfo struct {
	Message string `json:"message"`
}
