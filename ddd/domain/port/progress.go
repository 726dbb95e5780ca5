package port

import "context"

// ProgressSink persists job progress so the UI can poll it.
type ProgressSink interface {
	SaveProgress(ctx context.Context, mediaID string, progress int) error
}
