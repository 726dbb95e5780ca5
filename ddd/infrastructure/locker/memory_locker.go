package locker

import (
	"context"
	"sync"

	"transcription-service/ddd/domain/gateway"
)

// MemoryLocker enforces single-flight per media id within one process.
type MemoryLocker struct {
	mu     sync.Mutex
	active map[string]struct{}
}

func NewMemoryLocker() gateway.JobLocker {
	return &MemoryLocker{active: map[string]struct{}{}}
}

func (l *MemoryLocker) TryLock(_ context.Context, mediaID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, held := l.active[mediaID]; held {
		return false, nil
	}
	l.active[mediaID] = struct{}{}
	return true, nil
}

func (l *MemoryLocker) Unlock(_ context.Context, mediaID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.active, mediaID)
	return nil
}
