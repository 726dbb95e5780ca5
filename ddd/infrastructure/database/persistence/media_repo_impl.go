package persistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"transcription-service/ddd/domain/entity"
	"transcription-service/ddd/domain/repo"
	"transcription-service/ddd/domain/vo"
	"transcription-service/ddd/infrastructure/database/dao"
	"transcription-service/ddd/infrastructure/database/po"
	"transcription-service/pkg/errno"
)

// MediaRepositoryImpl implements the domain repository on MySQL.
type MediaRepositoryImpl struct {
	dao *dao.MediaItemDAO
}

func NewMediaRepository(d *dao.MediaItemDAO) repo.MediaRepository {
	return &MediaRepositoryImpl{dao: d}
}

func (r *MediaRepositoryImpl) CreateMediaItem(ctx context.Context, item *entity.MediaItem) error {
	record := toPO(item)
	if err := r.dao.Create(ctx, record); err != nil {
		return fmt.Errorf("create media item: %w", err)
	}
	item.ID = record.ID
	item.CreatedAt = record.CreatedAt
	item.UpdatedAt = record.UpdatedAt
	return nil
}

func (r *MediaRepositoryImpl) GetMediaItem(ctx context.Context, mediaUUID string) (*entity.MediaItem, error) {
	record, err := r.dao.FindByMediaUUID(ctx, mediaUUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errno.ErrMediaNotFound
		}
		return nil, fmt.Errorf("query media item: %w", err)
	}
	return toEntity(record), nil
}

func (r *MediaRepositoryImpl) UpdateStatus(ctx context.Context, mediaUUID string, status vo.MediaStatus, errorMessage string) error {
	if !status.IsValid() {
		return fmt.Errorf("invalid media status %q", status)
	}
	return r.dao.UpdateStatus(ctx, mediaUUID, status.String(), errorMessage)
}

func (r *MediaRepositoryImpl) UpdateProgress(ctx context.Context, mediaUUID string, progress int) error {
	return r.dao.UpdateProgress(ctx, mediaUUID, progress)
}

func (r *MediaRepositoryImpl) SetDuration(ctx context.Context, mediaUUID string, durationSeconds float64) error {
	return r.dao.SetDurationIfUnset(ctx, mediaUUID, durationSeconds)
}

func (r *MediaRepositoryImpl) SaveTranscript(ctx context.Context, mediaUUID string, transcript string) error {
	return r.dao.SaveTranscript(ctx, mediaUUID, transcript, vo.StatusCompleted.String())
}

func (r *MediaRepositoryImpl) UpdateLocalPath(ctx context.Context, mediaUUID string, localPath string) error {
	return r.dao.UpdateLocalPath(ctx, mediaUUID, localPath)
}

func toPO(item *entity.MediaItem) *po.MediaItem {
	return &po.MediaItem{
		BaseModel:       po.BaseModel{ID: item.ID},
		MediaUUID:       item.MediaUUID,
		OwnerID:         item.OwnerID,
		FileName:        item.FileName,
		LocalPath:       item.LocalPath,
		RemoteKey:       item.RemoteKey,
		SizeBytes:       item.SizeBytes,
		DurationSeconds: item.DurationSeconds,
		Status:          item.Status.String(),
		Progress:        item.Progress,
		Transcript:      item.Transcript,
		ErrorMessage:    item.ErrorMessage,
	}
}

func toEntity(record *po.MediaItem) *entity.MediaItem {
	return &entity.MediaItem{
		ID:              record.ID,
		MediaUUID:       record.MediaUUID,
		OwnerID:         record.OwnerID,
		FileName:        record.FileName,
		LocalPath:       record.LocalPath,
		RemoteKey:       record.RemoteKey,
		SizeBytes:       record.SizeBytes,
		DurationSeconds: record.DurationSeconds,
		Status:          vo.MediaStatus(record.Status),
		Progress:        record.Progress,
		Transcript:      record.Transcript,
		ErrorMessage:    record.ErrorMessage,
		CreatedAt:       record.CreatedAt,
		UpdatedAt:       record.UpdatedAt,
	}
}
