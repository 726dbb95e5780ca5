package entity

import (
	"time"

	"github.com/google/uuid"
)

// ProcessingJob is one unit of work on the transcription queue.
type ProcessingJob struct {
	JobID      string
	MediaID    string
	Priority   int
	EnqueuedAt time.Time
}

// NewProcessingJob builds a job for the given media item.
func NewProcessingJob(mediaID string, priority int) *ProcessingJob {
	return &ProcessingJob{
		JobID:      uuid.NewString(),
		MediaID:    mediaID,
		Priority:   priority,
		EnqueuedAt: time.Now(),
	}
}
