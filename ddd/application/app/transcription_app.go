package app

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"transcription-service/ddd/application/dto"
	"transcription-service/ddd/domain/entity"
	"transcription-service/ddd/domain/repo"
	"transcription-service/ddd/domain/vo"
	"transcription-service/ddd/infrastructure/worker"
	"transcription-service/pkg/errno"
	"transcription-service/pkg/logger"
)

// TranscriptionApp mediates between the HTTP adapter and the domain.
type TranscriptionApp interface {
	// CreateMediaItem registers an uploaded recording.
	CreateMediaItem(ctx context.Context, req *dto.CreateMediaRequest) (*dto.MediaItemDTO, error)
	// SubmitTranscription queues a transcription job for the media item.
	SubmitTranscription(ctx context.Context, mediaUUID string, req *dto.SubmitTranscriptionRequest) (*dto.SubmitTranscriptionResponse, error)
	// GetMediaItem returns the item's status/progress view for polling.
	GetMediaItem(ctx context.Context, mediaUUID string) (*dto.MediaItemDTO, error)
}

type transcriptionAppImpl struct {
	mediaRepo  repo.MediaRepository
	dispatcher *worker.Dispatcher
}

func NewTranscriptionApp(mediaRepo repo.MediaRepository, dispatcher *worker.Dispatcher) TranscriptionApp {
	return &transcriptionAppImpl{
		mediaRepo:  mediaRepo,
		dispatcher: dispatcher,
	}
}

func (a *transcriptionAppImpl) CreateMediaItem(ctx context.Context, req *dto.CreateMediaRequest) (*dto.MediaItemDTO, error) {
	if strings.TrimSpace(req.OwnerID) == "" {
		return nil, errno.ErrOwnerIDRequired
	}
	if strings.TrimSpace(req.FileName) == "" {
		return nil, errno.ErrFileNameRequired
	}
	if req.LocalPath != "" && req.RemoteKey != "" {
		return nil, errno.ErrStorageRefConflict
	}

	item := &entity.MediaItem{
		MediaUUID: uuid.NewString(),
		OwnerID:   req.OwnerID,
		FileName:  req.FileName,
		LocalPath: req.LocalPath,
		RemoteKey: req.RemoteKey,
		SizeBytes: req.SizeBytes,
		Status:    vo.StatusUploaded,
	}
	if err := a.mediaRepo.CreateMediaItem(ctx, item); err != nil {
		logger.Errorf("create media item failed owner=%s file=%s: %v", req.OwnerID, req.FileName, err)
		return nil, errno.ErrDatabase
	}
	return dto.NewMediaItemDTO(item), nil
}

func (a *transcriptionAppImpl) SubmitTranscription(ctx context.Context, mediaUUID string, req *dto.SubmitTranscriptionRequest) (*dto.SubmitTranscriptionResponse, error) {
	if strings.TrimSpace(mediaUUID) == "" {
		return nil, errno.ErrMediaUUIDRequired
	}

	item, err := a.mediaRepo.GetMediaItem(ctx, mediaUUID)
	if err != nil {
		return nil, err
	}
	if !item.CanSubmit() {
		return nil, errno.ErrMediaNotResubmittable
	}

	previousStatus := item.Status
	if err := a.mediaRepo.UpdateStatus(ctx, mediaUUID, vo.StatusQueued, ""); err != nil {
		logger.Errorf("mark media queued failed media=%s: %v", mediaUUID, err)
		return nil, errno.ErrDatabase
	}

	job := entity.NewProcessingJob(mediaUUID, req.Priority)
	if err := a.dispatcher.Submit(ctx, job); err != nil {
		// the item never reached a worker; put its pre-submission state back
		// so a later submission is not judged against a phantom queued job
		if rerr := a.mediaRepo.UpdateStatus(ctx, mediaUUID, previousStatus, item.ErrorMessage); rerr != nil {
			logger.Errorf("restore media status failed media=%s: %v", mediaUUID, rerr)
		}
		if errors.Is(err, worker.ErrJobActive) {
			return nil, errno.ErrJobAlreadyActive
		}
		logger.Warnf("submit job failed media=%s: %v", mediaUUID, err)
		return nil, errno.ErrQueueFull
	}

	return &dto.SubmitTranscriptionResponse{
		JobID:     job.JobID,
		MediaUUID: mediaUUID,
		Status:    vo.StatusQueued.String(),
	}, nil
}

func (a *transcriptionAppImpl) GetMediaItem(ctx context.Context, mediaUUID string) (*dto.MediaItemDTO, error) {
	if strings.TrimSpace(mediaUUID) == "" {
		return nil, errno.ErrMediaUUIDRequired
	}
	item, err := a.mediaRepo.GetMediaItem(ctx, mediaUUID)
	if err != nil {
		return nil, err
	}
	return dto.NewMediaItemDTO(item), nil
}
