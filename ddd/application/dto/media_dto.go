package dto

import (
	"time"

	"transcription-service/ddd/domain/entity"
)

// CreateMediaRequest registers an uploaded recording with the service.
// LocalPath and RemoteKey are mutually exclusive storage locators; both may
// be empty, in which case the locator falls back to the key conventions.
type CreateMediaRequest struct {
	OwnerID   string `json:"owner_id" binding:"required"`
	FileName  string `json:"file_name" binding:"required"`
	LocalPath string `json:"local_path"`
	RemoteKey string `json:"remote_key"`
	SizeBytes int64  `json:"size_bytes"`
}

// SubmitTranscriptionRequest starts a transcription job for a media item.
type SubmitTranscriptionRequest struct {
	Priority int `json:"priority"`
}

// SubmitTranscriptionResponse acknowledges an accepted job.
type SubmitTranscriptionResponse struct {
	JobID     string `json:"job_id"`
	MediaUUID string `json:"media_uuid"`
	Status    string `json:"status"`
}

// MediaItemDTO is the polling view of a media item.
type MediaItemDTO struct {
	MediaUUID       string    `json:"media_uuid"`
	OwnerID         string    `json:"owner_id"`
	FileName        string    `json:"file_name"`
	SizeBytes       int64     `json:"size_bytes"`
	DurationSeconds float64   `json:"duration_seconds"`
	Status          string    `json:"status"`
	Progress        int       `json:"progress"`
	Transcript      string    `json:"transcript,omitempty"`
	ErrorMessage    string    `json:"error_message,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NewMediaItemDTO maps the entity to its API view.
func NewMediaItemDTO(item *entity.MediaItem) *MediaItemDTO {
	return &MediaItemDTO{
		MediaUUID:       item.MediaUUID,
		OwnerID:         item.OwnerID,
		FileName:        item.FileName,
		SizeBytes:       item.SizeBytes,
		DurationSeconds: item.DurationSeconds,
		Status:          item.Status.String(),
		Progress:        item.Progress,
		Transcript:      item.Transcript,
		ErrorMessage:    item.ErrorMessage,
		CreatedAt:       item.CreatedAt,
		UpdatedAt:       item.UpdatedAt,
	}
}
