package gateway

import "context"

// JobLocker guarantees at most one active job per media item.
type JobLocker interface {
	// TryLock acquires the per-media lock; false means a job already holds it.
	TryLock(ctx context.Context, mediaID string) (bool, error)
	// Unlock releases the lock. Releasing an unheld lock is a no-op.
	Unlock(ctx context.Context, mediaID string) error
}
