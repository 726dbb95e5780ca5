package entity

import (
	"time"

	"transcription-service/ddd/domain/vo"
)

// MediaItem is the aggregate root for one uploaded recording.
type MediaItem struct {
	ID              uint
	MediaUUID       string
	OwnerID         string
	FileName        string
	LocalPath       string
	RemoteKey       string
	SizeBytes       int64
	DurationSeconds float64
	Status          vo.MediaStatus
	Progress        int
	Transcript      string
	ErrorMessage    string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// HasDuration reports whether the authoritative probe already ran.
func (m *MediaItem) HasDuration() bool {
	return m.DurationSeconds > 0
}

// CanSubmit reports whether a new transcription job may be accepted.
// Fresh uploads and any terminal state qualify; queued/processing items
// already have an active job.
func (m *MediaItem) CanSubmit() bool {
	return m.Status == vo.StatusUploaded || m.Status.IsTerminal()
}
