package dao

import (
	"context"

	"gorm.io/gorm"

	"transcription-service/ddd/infrastructure/database/po"
)

type MediaItemDAO struct {
	db *gorm.DB
}

func NewMediaItemDAO(db *gorm.DB) *MediaItemDAO {
	return &MediaItemDAO{db: db}
}

func (d *MediaItemDAO) Create(ctx context.Context, item *po.MediaItem) error {
	return d.db.WithContext(ctx).Create(item).Error
}

func (d *MediaItemDAO) FindByMediaUUID(ctx context.Context, mediaUUID string) (*po.MediaItem, error) {
	var item po.MediaItem
	if err := d.db.WithContext(ctx).Where("media_uuid = ?", mediaUUID).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (d *MediaItemDAO) UpdateStatus(ctx context.Context, mediaUUID, status, errorMessage string) error {
	update := map[string]interface{}{"status": status, "error_message": errorMessage}
	return d.db.WithContext(ctx).Model(&po.MediaItem{}).Where("media_uuid = ?", mediaUUID).Updates(update).Error
}

func (d *MediaItemDAO) UpdateProgress(ctx context.Context, mediaUUID string, progress int) error {
	return d.db.WithContext(ctx).Model(&po.MediaItem{}).Where("media_uuid = ?", mediaUUID).Update("progress", progress).Error
}

// SetDurationIfUnset writes the duration only when no probe recorded one yet.
func (d *MediaItemDAO) SetDurationIfUnset(ctx context.Context, mediaUUID string, durationSeconds float64) error {
	return d.db.WithContext(ctx).Model(&po.MediaItem{}).
		Where("media_uuid = ? AND duration_seconds = 0", mediaUUID).
		Update("duration_seconds", durationSeconds).Error
}

// SaveTranscript stores the transcript and the completed status atomically.
func (d *MediaItemDAO) SaveTranscript(ctx context.Context, mediaUUID, transcript, status string) error {
	update := map[string]interface{}{
		"transcript":    transcript,
		"status":        status,
		"progress":      100,
		"error_message": "",
	}
	return d.db.WithContext(ctx).Model(&po.MediaItem{}).Where("media_uuid = ?", mediaUUID).Updates(update).Error
}

func (d *MediaItemDAO) UpdateLocalPath(ctx context.Context, mediaUUID, localPath string) error {
	return d.db.WithContext(ctx).Model(&po.MediaItem{}).Where("media_uuid = ?", mediaUUID).Update("local_path", localPath).Error
}
