package progress

import (
	"context"

	"transcription-service/ddd/domain/port"
	"transcription-service/ddd/domain/repo"
)

// DBSink persists progress through the media repository so the polling
// endpoint reads the same row the pipeline writes.
type DBSink struct {
	mediaRepo repo.MediaRepository
}

func NewDBSink(mediaRepo repo.MediaRepository) port.ProgressSink {
	return &DBSink{mediaRepo: mediaRepo}
}

func (s *DBSink) SaveProgress(ctx context.Context, mediaID string, progress int) error {
	return s.mediaRepo.UpdateProgress(ctx, mediaID, progress)
}
