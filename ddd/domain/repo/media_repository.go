package repo

import (
	"context"

	"transcription-service/ddd/domain/entity"
	"transcription-service/ddd/domain/vo"
)

// MediaRepository persists media items and their transcription state.
type MediaRepository interface {
	CreateMediaItem(ctx context.Context, item *entity.MediaItem) error
	GetMediaItem(ctx context.Context, mediaUUID string) (*entity.MediaItem, error)
	// UpdateStatus moves the item to status and records the error message
	// (empty clears it).
	UpdateStatus(ctx context.Context, mediaUUID string, status vo.MediaStatus, errorMessage string) error
	UpdateProgress(ctx context.Context, mediaUUID string, progress int) error
	// SetDuration records the probed duration only when none is stored yet.
	SetDuration(ctx context.Context, mediaUUID string, durationSeconds float64) error
	// SaveTranscript stores the full transcript, marks the item completed
	// and sets progress to 100 in one update.
	SaveTranscript(ctx context.Context, mediaUUID string, transcript string) error
	// UpdateLocalPath records where the media was cached on disk.
	UpdateLocalPath(ctx context.Context, mediaUUID string, localPath string) error
}
