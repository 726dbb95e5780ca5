package app

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transcription-service/ddd/application/dto"
	"transcription-service/ddd/domain/entity"
	"transcription-service/ddd/domain/vo"
	"transcription-service/ddd/infrastructure/locker"
	"transcription-service/ddd/infrastructure/queue"
	"transcription-service/ddd/infrastructure/worker"
	"transcription-service/pkg/errno"
)

type memoryRepo struct {
	mu    sync.Mutex
	items map[string]*entity.MediaItem
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{items: map[string]*entity.MediaItem{}}
}

func (r *memoryRepo) CreateMediaItem(_ context.Context, item *entity.MediaItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[item.MediaUUID] = item
	return nil
}

func (r *memoryRepo) GetMediaItem(_ context.Context, mediaUUID string) (*entity.MediaItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[mediaUUID]
	if !ok {
		return nil, errno.ErrMediaNotFound
	}
	cp := *item
	return &cp, nil
}

func (r *memoryRepo) UpdateStatus(_ context.Context, mediaUUID string, status vo.MediaStatus, errorMessage string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[mediaUUID]
	if !ok {
		return fmt.Errorf("media %s not found", mediaUUID)
	}
	item.Status = status
	item.ErrorMessage = errorMessage
	return nil
}

func (r *memoryRepo) UpdateProgress(_ context.Context, mediaUUID string, progress int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[mediaUUID].Progress = progress
	return nil
}

func (r *memoryRepo) SetDuration(_ context.Context, mediaUUID string, durationSeconds float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.items[mediaUUID].DurationSeconds == 0 {
		r.items[mediaUUID].DurationSeconds = durationSeconds
	}
	return nil
}

func (r *memoryRepo) SaveTranscript(_ context.Context, mediaUUID string, transcript string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	item := r.items[mediaUUID]
	item.Transcript = transcript
	item.Status = vo.StatusCompleted
	item.Progress = 100
	return nil
}

func (r *memoryRepo) UpdateLocalPath(_ context.Context, mediaUUID string, localPath string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[mediaUUID].LocalPath = localPath
	return nil
}

// dispatcher left unstarted so submitted jobs stay queued during the test
func newTestApp(queueCap int) (TranscriptionApp, *memoryRepo) {
	repo := newMemoryRepo()
	d := worker.NewDispatcher(queue.NewMemoryJobQueue(queueCap), nil, locker.NewMemoryLocker(), 1)
	return NewTranscriptionApp(repo, d), repo
}

func TestCreateMediaItemValidation(t *testing.T) {
	a, _ := newTestApp(10)
	ctx := context.Background()

	_, err := a.CreateMediaItem(ctx, &dto.CreateMediaRequest{FileName: "a.mp3"})
	assert.ErrorIs(t, err, errno.ErrOwnerIDRequired)

	_, err = a.CreateMediaItem(ctx, &dto.CreateMediaRequest{OwnerID: "42"})
	assert.ErrorIs(t, err, errno.ErrFileNameRequired)

	_, err = a.CreateMediaItem(ctx, &dto.CreateMediaRequest{
		OwnerID: "42", FileName: "a.mp3", LocalPath: "/x", RemoteKey: "y",
	})
	assert.ErrorIs(t, err, errno.ErrStorageRefConflict)
}

func TestCreateMediaItemStartsUploaded(t *testing.T) {
	a, _ := newTestApp(10)

	got, err := a.CreateMediaItem(context.Background(), &dto.CreateMediaRequest{
		OwnerID: "42", FileName: "session.mp3", SizeBytes: 1024,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, got.MediaUUID)
	assert.Equal(t, vo.StatusUploaded.String(), got.Status)
	assert.Equal(t, 0, got.Progress)
}

func TestSubmitTranscriptionQueuesJob(t *testing.T) {
	a, repo := newTestApp(10)
	ctx := context.Background()

	created, err := a.CreateMediaItem(ctx, &dto.CreateMediaRequest{OwnerID: "42", FileName: "s.mp3"})
	require.NoError(t, err)

	resp, err := a.SubmitTranscription(ctx, created.MediaUUID, &dto.SubmitTranscriptionRequest{})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.JobID)
	assert.Equal(t, vo.StatusQueued.String(), resp.Status)

	got, err := repo.GetMediaItem(ctx, created.MediaUUID)
	require.NoError(t, err)
	assert.Equal(t, vo.StatusQueued, got.Status)
}

func TestSubmitTranscriptionRejectsDuplicate(t *testing.T) {
	a, _ := newTestApp(10)
	ctx := context.Background()

	created, err := a.CreateMediaItem(ctx, &dto.CreateMediaRequest{OwnerID: "42", FileName: "s.mp3"})
	require.NoError(t, err)

	_, err = a.SubmitTranscription(ctx, created.MediaUUID, &dto.SubmitTranscriptionRequest{})
	require.NoError(t, err)

	// the queued job still holds the lock, but the status check trips first
	_, err = a.SubmitTranscription(ctx, created.MediaUUID, &dto.SubmitTranscriptionRequest{})
	assert.ErrorIs(t, err, errno.ErrMediaNotResubmittable)
}

func TestSubmitTranscriptionRejectsProcessing(t *testing.T) {
	a, repo := newTestApp(10)
	ctx := context.Background()

	created, err := a.CreateMediaItem(ctx, &dto.CreateMediaRequest{OwnerID: "42", FileName: "s.mp3"})
	require.NoError(t, err)
	require.NoError(t, repo.UpdateStatus(ctx, created.MediaUUID, vo.StatusProcessing, ""))

	_, err = a.SubmitTranscription(ctx, created.MediaUUID, &dto.SubmitTranscriptionRequest{})
	assert.ErrorIs(t, err, errno.ErrMediaNotResubmittable)
}

func TestSubmitTranscriptionAfterTerminalState(t *testing.T) {
	a, repo := newTestApp(10)
	ctx := context.Background()

	created, err := a.CreateMediaItem(ctx, &dto.CreateMediaRequest{OwnerID: "42", FileName: "s.mp3"})
	require.NoError(t, err)
	require.NoError(t, repo.UpdateStatus(ctx, created.MediaUUID, vo.StatusFailed, "boom"))

	resp, err := a.SubmitTranscription(ctx, created.MediaUUID, &dto.SubmitTranscriptionRequest{})
	require.NoError(t, err)
	assert.Equal(t, vo.StatusQueued.String(), resp.Status)
}

func TestSubmitTranscriptionQueueFullRestoresStatus(t *testing.T) {
	a, repo := newTestApp(1)
	ctx := context.Background()

	first, err := a.CreateMediaItem(ctx, &dto.CreateMediaRequest{OwnerID: "42", FileName: "a.mp3"})
	require.NoError(t, err)
	second, err := a.CreateMediaItem(ctx, &dto.CreateMediaRequest{OwnerID: "42", FileName: "b.mp3"})
	require.NoError(t, err)

	_, err = a.SubmitTranscription(ctx, first.MediaUUID, &dto.SubmitTranscriptionRequest{})
	require.NoError(t, err)

	_, err = a.SubmitTranscription(ctx, second.MediaUUID, &dto.SubmitTranscriptionRequest{})
	assert.ErrorIs(t, err, errno.ErrQueueFull)

	got, err := repo.GetMediaItem(ctx, second.MediaUUID)
	require.NoError(t, err)
	assert.Equal(t, vo.StatusUploaded, got.Status, "failed submission restores the previous status")
}

func TestSubmitTranscriptionLockHeldRestoresStatus(t *testing.T) {
	repo := newMemoryRepo()
	lk := locker.NewMemoryLocker()
	d := worker.NewDispatcher(queue.NewMemoryJobQueue(10), nil, lk, 1)
	a := NewTranscriptionApp(repo, d)
	ctx := context.Background()

	created, err := a.CreateMediaItem(ctx, &dto.CreateMediaRequest{OwnerID: "42", FileName: "s.mp3"})
	require.NoError(t, err)
	require.NoError(t, repo.UpdateStatus(ctx, created.MediaUUID, vo.StatusFailed, "boom"))

	// the previous job has persisted its terminal status but its worker has
	// not released the lock yet
	held, err := lk.TryLock(ctx, created.MediaUUID)
	require.NoError(t, err)
	require.True(t, held)

	_, err = a.SubmitTranscription(ctx, created.MediaUUID, &dto.SubmitTranscriptionRequest{})
	assert.ErrorIs(t, err, errno.ErrJobAlreadyActive)

	got, err := repo.GetMediaItem(ctx, created.MediaUUID)
	require.NoError(t, err)
	assert.Equal(t, vo.StatusFailed, got.Status, "rejected submission must not leave the item queued")
	assert.Equal(t, "boom", got.ErrorMessage)

	// once the lock is released the media is resubmittable
	require.NoError(t, lk.Unlock(ctx, created.MediaUUID))
	resp, err := a.SubmitTranscription(ctx, created.MediaUUID, &dto.SubmitTranscriptionRequest{})
	require.NoError(t, err)
	assert.Equal(t, vo.StatusQueued.String(), resp.Status)
}

func TestGetMediaItemNotFound(t *testing.T) {
	a, _ := newTestApp(10)
	_, err := a.GetMediaItem(context.Background(), "missing")
	assert.ErrorIs(t, err, errno.ErrMediaNotFound)

	_, err = a.GetMediaItem(context.Background(), " ")
	assert.ErrorIs(t, err, errno.ErrMediaUUIDRequired)
}
