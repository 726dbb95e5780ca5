package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"transcription-service/ddd/domain/entity"
	"transcription-service/ddd/domain/gateway"
	"transcription-service/ddd/domain/port"
	"transcription-service/ddd/domain/repo"
	"transcription-service/ddd/domain/vo"
	"transcription-service/pkg/logger"
)

// Progress is reported inside a fixed window: locate/plan/split take the
// first 10 percent, transcription spans the next 85, completion sets 100.
const (
	progressBase = 10
	progressSpan = 85
)

// TranscriptionPipeline runs one job end-to-end: locate, plan, split,
// transcribe each segment in index order, assemble, persist, hand off.
type TranscriptionPipeline struct {
	locator     *BlobLocator
	planner     *ChunkPlanner
	splitter    port.MediaSplitter
	transcriber port.Transcriber
	assembler   *TranscriptAssembler
	mediaRepo   repo.MediaRepository
	progress    port.ProgressSink
	analysis    gateway.AnalysisGateway
	tempDir     string
}

func NewTranscriptionPipeline(
	locator *BlobLocator,
	planner *ChunkPlanner,
	splitter port.MediaSplitter,
	transcriber port.Transcriber,
	assembler *TranscriptAssembler,
	mediaRepo repo.MediaRepository,
	progress port.ProgressSink,
	analysis gateway.AnalysisGateway,
	tempDir string,
) *TranscriptionPipeline {
	return &TranscriptionPipeline{
		locator:     locator,
		planner:     planner,
		splitter:    splitter,
		transcriber: transcriber,
		assembler:   assembler,
		mediaRepo:   mediaRepo,
		progress:    progress,
		analysis:    analysis,
		tempDir:     tempDir,
	}
}

// Execute drives one processing job. Any fatal error aborts the remaining
// steps, persists the matching terminal status and returns the error. No
// partial transcript is ever persisted.
func (p *TranscriptionPipeline) Execute(ctx context.Context, job *entity.ProcessingJob) error {
	item, err := p.mediaRepo.GetMediaItem(ctx, job.MediaID)
	if err != nil {
		return fmt.Errorf("load media %s: %w", job.MediaID, err)
	}

	if err := p.mediaRepo.UpdateStatus(ctx, item.MediaUUID, vo.StatusProcessing, ""); err != nil {
		return fmt.Errorf("mark processing: %w", err)
	}
	p.saveProgress(ctx, item.MediaUUID, 0)

	logger.Info("transcription job started", map[string]interface{}{
		"job_id":     job.JobID,
		"media_uuid": item.MediaUUID,
	})

	localPath, sizeBytes, err := p.locator.Locate(ctx, item)
	if err != nil {
		return p.fail(ctx, item.MediaUUID, err)
	}
	if localPath != item.LocalPath {
		if uerr := p.mediaRepo.UpdateLocalPath(ctx, item.MediaUUID, localPath); uerr != nil {
			logger.Warnf("record local path failed media=%s: %v", item.MediaUUID, uerr)
		}
	}

	duration := item.DurationSeconds
	if !item.HasDuration() {
		duration, err = p.splitter.ProbeDuration(ctx, localPath)
		if err != nil {
			return p.fail(ctx, item.MediaUUID, err)
		}
		if uerr := p.mediaRepo.SetDuration(ctx, item.MediaUUID, duration); uerr != nil {
			logger.Warnf("persist duration failed media=%s: %v", item.MediaUUID, uerr)
		}
	}

	plan := p.planner.Plan(sizeBytes, duration)
	p.saveProgress(ctx, item.MediaUUID, progressBase)

	fragments, err := p.transcribeByPlan(ctx, item, localPath, plan)
	if err != nil {
		return p.fail(ctx, item.MediaUUID, err)
	}

	text, measuredDuration, err := p.assembler.Assemble(fragments)
	if err != nil {
		return p.fail(ctx, item.MediaUUID, err)
	}

	if err := p.mediaRepo.SaveTranscript(ctx, item.MediaUUID, text); err != nil {
		return p.fail(ctx, item.MediaUUID, fmt.Errorf("persist transcript: %w", err))
	}

	p.handOff(ctx, item, job, text, measuredDuration)

	logger.Info("transcription job completed", map[string]interface{}{
		"job_id":           job.JobID,
		"media_uuid":       item.MediaUUID,
		"transcript_chars": len(text),
		"segments":         len(fragments),
	})
	return nil
}

// transcribeByPlan produces the index-ordered fragments for the chosen
// strategy. Segment temp files never outlive the job.
func (p *TranscriptionPipeline) transcribeByPlan(ctx context.Context, item *entity.MediaItem, localPath string, plan vo.ChunkPlan) ([]vo.SegmentResult, error) {
	if plan.IsSingle() {
		res, err := p.transcriber.Transcribe(ctx, localPath)
		if err != nil {
			return nil, err
		}
		p.saveProgress(ctx, item.MediaUUID, progressBase+progressSpan)
		return []vo.SegmentResult{{Index: 0, Text: res.Text, Duration: res.DurationSeconds}}, nil
	}

	jobTempDir := filepath.Join(p.tempDir, item.MediaUUID)
	defer func() {
		if err := os.RemoveAll(jobTempDir); err != nil {
			logger.Warnf("remove segment dir %s: %v", jobTempDir, err)
		}
	}()

	segments, err := p.splitter.Split(ctx, localPath, jobTempDir, plan.ChunkDurationSeconds, plan.ChunkCount)
	if err != nil {
		return nil, err
	}

	fragments := make([]vo.SegmentResult, 0, len(segments))
	total := len(segments)
	for i, seg := range segments {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err := p.transcriber.Transcribe(ctx, seg.Path)
		if err != nil {
			return nil, fmt.Errorf("segment %d/%d: %w", i+1, total, err)
		}
		fragments = append(fragments, vo.SegmentResult{Index: seg.Index, Text: res.Text, Duration: res.DurationSeconds})
		p.saveProgress(ctx, item.MediaUUID, segmentProgress(i, total))
	}
	return fragments, nil
}

// handOff publishes the completed transcript downstream. Best-effort: the
// transcript and completed status are already durable, so a publish error
// is only logged.
func (p *TranscriptionPipeline) handOff(ctx context.Context, item *entity.MediaItem, job *entity.ProcessingJob, text string, measuredDuration float64) {
	result := gateway.CompletedTranscript{
		MediaID:         item.MediaUUID,
		OwnerID:         item.OwnerID,
		Transcript:      text,
		DurationSeconds: measuredDuration,
		WordCount:       len(strings.Fields(text)),
		Metadata: map[string]string{
			"fileName": item.FileName,
			"jobId":    job.JobID,
		},
	}
	if err := p.analysis.PublishCompleted(ctx, result); err != nil {
		logger.Errorf("transcript handoff failed media=%s: %v", item.MediaUUID, err)
	}
}

func (p *TranscriptionPipeline) saveProgress(ctx context.Context, mediaUUID string, progress int) {
	if err := p.progress.SaveProgress(ctx, mediaUUID, progress); err != nil {
		logger.Warnf("persist progress failed media=%s progress=%d: %v", mediaUUID, progress, err)
	}
}

// fail maps the pipeline error to its terminal status and persists it.
func (p *TranscriptionPipeline) fail(ctx context.Context, mediaUUID string, cause error) error {
	status := statusForError(cause)
	if err := p.mediaRepo.UpdateStatus(ctx, mediaUUID, status, cause.Error()); err != nil {
		logger.Errorf("persist terminal status failed media=%s status=%s: %v", mediaUUID, status, err)
	}
	logger.Warn("transcription job failed", map[string]interface{}{
		"media_uuid": mediaUUID,
		"status":     status.String(),
		"error":      cause.Error(),
	})
	return cause
}

// statusForError maps the error taxonomy onto the closed status set so an
// operator can tell credential problems from quota exhaustion from missing
// source media.
func statusForError(err error) vo.MediaStatus {
	switch {
	case errors.Is(err, ErrFileMissing):
		return vo.StatusFileMissing
	case errors.Is(err, port.ErrAuthFailed):
		return vo.StatusAPIKeyInvalid
	case errors.Is(err, port.ErrQuotaExceeded):
		return vo.StatusQuotaExceeded
	default:
		return vo.StatusFailed
	}
}

// segmentProgress maps segment completion onto the transcription window.
func segmentProgress(completedIndex, total int) int {
	frac := float64(completedIndex+1) / float64(total)
	return int(math.Round(progressBase + frac*progressSpan))
}
