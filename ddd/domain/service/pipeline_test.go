package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transcription-service/ddd/domain/entity"
	"transcription-service/ddd/domain/gateway"
	"transcription-service/ddd/domain/port"
	"transcription-service/ddd/domain/vo"
	"transcription-service/pkg/config"
)

type fakeRepo struct {
	mu            sync.Mutex
	items         map[string]*entity.MediaItem
	progressTrail []int
	setDurations  []float64
}

func newFakeRepo(items ...*entity.MediaItem) *fakeRepo {
	r := &fakeRepo{items: map[string]*entity.MediaItem{}}
	for _, it := range items {
		r.items[it.MediaUUID] = it
	}
	return r
}

func (r *fakeRepo) CreateMediaItem(_ context.Context, item *entity.MediaItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[item.MediaUUID] = item
	return nil
}

func (r *fakeRepo) GetMediaItem(_ context.Context, mediaUUID string) (*entity.MediaItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[mediaUUID]
	if !ok {
		return nil, fmt.Errorf("media %s not found", mediaUUID)
	}
	cp := *item
	return &cp, nil
}

func (r *fakeRepo) UpdateStatus(_ context.Context, mediaUUID string, status vo.MediaStatus, errorMessage string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[mediaUUID].Status = status
	r.items[mediaUUID].ErrorMessage = errorMessage
	return nil
}

func (r *fakeRepo) UpdateProgress(_ context.Context, mediaUUID string, progress int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[mediaUUID].Progress = progress
	r.progressTrail = append(r.progressTrail, progress)
	return nil
}

func (r *fakeRepo) SetDuration(_ context.Context, mediaUUID string, durationSeconds float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.setDurations = append(r.setDurations, durationSeconds)
	if r.items[mediaUUID].DurationSeconds == 0 {
		r.items[mediaUUID].DurationSeconds = durationSeconds
	}
	return nil
}

func (r *fakeRepo) SaveTranscript(_ context.Context, mediaUUID string, transcript string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	item := r.items[mediaUUID]
	item.Transcript = transcript
	item.Status = vo.StatusCompleted
	item.Progress = 100
	r.progressTrail = append(r.progressTrail, 100)
	return nil
}

func (r *fakeRepo) UpdateLocalPath(_ context.Context, mediaUUID string, localPath string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[mediaUUID].LocalPath = localPath
	return nil
}

// SaveProgress lets the repo double as the pipeline's progress sink.
func (r *fakeRepo) SaveProgress(ctx context.Context, mediaID string, progress int) error {
	return r.UpdateProgress(ctx, mediaID, progress)
}

func (r *fakeRepo) item(mediaUUID string) entity.MediaItem {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.items[mediaUUID]
}

type fakeSplitter struct {
	duration   float64
	probeErr   error
	splitErr   error
	splitCalls int
}

func (s *fakeSplitter) ProbeDuration(_ context.Context, _ string) (float64, error) {
	if s.probeErr != nil {
		return 0, s.probeErr
	}
	return s.duration, nil
}

func (s *fakeSplitter) Split(_ context.Context, _, tempDir string, chunkDuration float64, chunkCount int) ([]vo.Segment, error) {
	s.splitCalls++
	if s.splitErr != nil {
		return nil, s.splitErr
	}
	if err := os.MkdirAll(tempDir, 0o755); err != nil {
		return nil, err
	}
	segments := make([]vo.Segment, 0, chunkCount)
	for i := 0; i < chunkCount; i++ {
		path := filepath.Join(tempDir, fmt.Sprintf("segment_%03d.wav", i))
		if err := os.WriteFile(path, []byte("wav"), 0o644); err != nil {
			return nil, err
		}
		segments = append(segments, vo.Segment{
			Index:        i,
			Path:         path,
			StartSeconds: float64(i) * chunkDuration,
			Duration:     chunkDuration,
		})
	}
	return segments, nil
}

type fakeTranscriber struct {
	calls   int
	failAt  int // 1-based call number to fail on, 0 = never
	failErr error
}

func (tr *fakeTranscriber) Transcribe(_ context.Context, _ string) (port.TranscriptionResult, error) {
	tr.calls++
	if tr.failAt > 0 && tr.calls == tr.failAt {
		return port.TranscriptionResult{}, tr.failErr
	}
	return port.TranscriptionResult{
		Text:            fmt.Sprintf("segment text %d", tr.calls),
		DurationSeconds: 60,
	}, nil
}

type fakeAnalysis struct {
	published []gateway.CompletedTranscript
	err       error
}

func (a *fakeAnalysis) PublishCompleted(_ context.Context, result gateway.CompletedTranscript) error {
	if a.err != nil {
		return a.err
	}
	a.published = append(a.published, result)
	return nil
}

type pipelineFixture struct {
	pipeline    *TranscriptionPipeline
	repo        *fakeRepo
	storage     *fakeStorage
	splitter    *fakeSplitter
	transcriber *fakeTranscriber
	analysis    *fakeAnalysis
}

func newPipelineFixture(t *testing.T, item *entity.MediaItem, plannerCfg config.PlannerConfig) *pipelineFixture {
	t.Helper()
	f := &pipelineFixture{
		repo:        newFakeRepo(item),
		storage:     newFakeStorage(),
		splitter:    &fakeSplitter{duration: 2700},
		transcriber: &fakeTranscriber{},
		analysis:    &fakeAnalysis{},
	}
	planner := NewChunkPlanner(plannerCfg)
	locator := NewBlobLocator(f.storage, planner, DefaultKeyStrategies(), t.TempDir())
	f.pipeline = NewTranscriptionPipeline(
		locator, planner, f.splitter, f.transcriber,
		NewTranscriptAssembler(5), f.repo, f.repo, f.analysis, t.TempDir(),
	)
	return f
}

func localMediaItem(t *testing.T, sizeBytes int) *entity.MediaItem {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.mp3")
	require.NoError(t, os.WriteFile(path, make([]byte, sizeBytes), 0o644))
	return &entity.MediaItem{
		MediaUUID: "media-1",
		OwnerID:   "42",
		FileName:  "session.mp3",
		LocalPath: path,
		Status:    vo.StatusQueued,
	}
}

func TestPipelineSingleCallCompletes(t *testing.T) {
	item := localMediaItem(t, 1024)
	f := newPipelineFixture(t, item, testPlannerConfig())

	job := entity.NewProcessingJob(item.MediaUUID, 0)
	require.NoError(t, f.pipeline.Execute(context.Background(), job))

	got := f.repo.item(item.MediaUUID)
	assert.Equal(t, vo.StatusCompleted, got.Status)
	assert.Equal(t, 100, got.Progress)
	assert.Equal(t, "segment text 1", got.Transcript)
	assert.Equal(t, 1, f.transcriber.calls, "file under the limit takes exactly one call")
	assert.Equal(t, 0, f.splitter.splitCalls)

	require.Len(t, f.analysis.published, 1)
	assert.Equal(t, item.MediaUUID, f.analysis.published[0].MediaID)
	assert.Equal(t, float64(60), f.analysis.published[0].DurationSeconds)
	assert.Equal(t, 3, f.analysis.published[0].WordCount)
}

func TestPipelineSegmentedProgressMonotonic(t *testing.T) {
	cfg := testPlannerConfig()
	cfg.SingleCallLimitBytes = 512 // force segmentation
	cfg.TargetChunkBytes = 512     // keep chunks at the duration floor
	item := localMediaItem(t, 4096)
	f := newPipelineFixture(t, item, cfg)
	f.splitter.duration = 1800

	job := entity.NewProcessingJob(item.MediaUUID, 0)
	require.NoError(t, f.pipeline.Execute(context.Background(), job))

	got := f.repo.item(item.MediaUUID)
	assert.Equal(t, vo.StatusCompleted, got.Status)
	assert.Greater(t, f.transcriber.calls, 1)

	trail := f.repo.progressTrail
	require.NotEmpty(t, trail)
	for i := 1; i < len(trail); i++ {
		assert.GreaterOrEqual(t, trail[i], trail[i-1], "progress must never decrease: %v", trail)
	}
	assert.Equal(t, 100, trail[len(trail)-1])
}

func TestPipelineProbesDurationOnce(t *testing.T) {
	item := localMediaItem(t, 1024)
	f := newPipelineFixture(t, item, testPlannerConfig())
	f.splitter.duration = 2700

	job := entity.NewProcessingJob(item.MediaUUID, 0)
	require.NoError(t, f.pipeline.Execute(context.Background(), job))
	assert.Equal(t, []float64{2700}, f.repo.setDurations)
	assert.Equal(t, float64(2700), f.repo.item(item.MediaUUID).DurationSeconds)

	// a known duration is never re-probed or overwritten
	f2 := newPipelineFixture(t, &entity.MediaItem{
		MediaUUID: "media-2", OwnerID: "42", FileName: "session.mp3",
		LocalPath: item.LocalPath, DurationSeconds: 1234, Status: vo.StatusQueued,
	}, testPlannerConfig())
	require.NoError(t, f2.pipeline.Execute(context.Background(), entity.NewProcessingJob("media-2", 0)))
	assert.Empty(t, f2.repo.setDurations)
	assert.Equal(t, float64(1234), f2.repo.item("media-2").DurationSeconds)
}

func TestPipelineFileMissing(t *testing.T) {
	item := &entity.MediaItem{MediaUUID: "media-1", OwnerID: "42", FileName: "gone.mp3", Status: vo.StatusQueued}
	f := newPipelineFixture(t, item, testPlannerConfig())

	err := f.pipeline.Execute(context.Background(), entity.NewProcessingJob(item.MediaUUID, 0))
	require.ErrorIs(t, err, ErrFileMissing)

	got := f.repo.item(item.MediaUUID)
	assert.Equal(t, vo.StatusFileMissing, got.Status)
	assert.NotEmpty(t, got.ErrorMessage)
	assert.Empty(t, got.Transcript)
	assert.Empty(t, f.analysis.published)
}

func TestPipelineQuotaFailureMidSegments(t *testing.T) {
	cfg := testPlannerConfig()
	cfg.SingleCallLimitBytes = 512
	cfg.TargetChunkBytes = 512
	item := localMediaItem(t, 4096)
	f := newPipelineFixture(t, item, cfg)
	f.splitter.duration = 3600
	f.transcriber.failAt = 7
	f.transcriber.failErr = port.ErrQuotaExceeded

	err := f.pipeline.Execute(context.Background(), entity.NewProcessingJob(item.MediaUUID, 0))
	require.ErrorIs(t, err, port.ErrQuotaExceeded)

	got := f.repo.item(item.MediaUUID)
	assert.Equal(t, vo.StatusQuotaExceeded, got.Status)
	assert.Empty(t, got.Transcript, "no partial transcript is persisted")
	assert.Empty(t, f.analysis.published)
}

func TestPipelineAuthFailure(t *testing.T) {
	item := localMediaItem(t, 1024)
	f := newPipelineFixture(t, item, testPlannerConfig())
	f.transcriber.failAt = 1
	f.transcriber.failErr = port.ErrAuthFailed

	err := f.pipeline.Execute(context.Background(), entity.NewProcessingJob(item.MediaUUID, 0))
	require.ErrorIs(t, err, port.ErrAuthFailed)
	assert.Equal(t, vo.StatusAPIKeyInvalid, f.repo.item(item.MediaUUID).Status)
}

func TestPipelineProbeFailure(t *testing.T) {
	item := localMediaItem(t, 1024)
	f := newPipelineFixture(t, item, testPlannerConfig())
	f.splitter.probeErr = port.ErrProbeFailed

	err := f.pipeline.Execute(context.Background(), entity.NewProcessingJob(item.MediaUUID, 0))
	require.ErrorIs(t, err, port.ErrProbeFailed)
	assert.Equal(t, vo.StatusFailed, f.repo.item(item.MediaUUID).Status)
}

func TestPipelineTooShortTranscriptFails(t *testing.T) {
	item := localMediaItem(t, 1024)
	f := newPipelineFixture(t, item, testPlannerConfig())

	// raise the bar above what the fake transcriber produces
	f.pipeline.assembler = NewTranscriptAssembler(10_000)

	err := f.pipeline.Execute(context.Background(), entity.NewProcessingJob(item.MediaUUID, 0))
	require.ErrorIs(t, err, ErrTranscriptTooShort)

	got := f.repo.item(item.MediaUUID)
	assert.Equal(t, vo.StatusFailed, got.Status)
	assert.Empty(t, got.Transcript)
}

func TestPipelineHandoffFailureDoesNotFailJob(t *testing.T) {
	item := localMediaItem(t, 1024)
	f := newPipelineFixture(t, item, testPlannerConfig())
	f.analysis.err = fmt.Errorf("broker down")

	require.NoError(t, f.pipeline.Execute(context.Background(), entity.NewProcessingJob(item.MediaUUID, 0)))
	assert.Equal(t, vo.StatusCompleted, f.repo.item(item.MediaUUID).Status)
}
