package port

import (
	"context"
	"errors"

	"transcription-service/ddd/domain/vo"
)

// ErrProbeFailed means the toolkit could not determine the media duration.
// Toolkit failures are fatal and never retried.
var ErrProbeFailed = errors.New("media duration probe failed")

// MediaSplitter probes media duration and extracts audio segments with an
// external toolkit.
type MediaSplitter interface {
	// ProbeDuration returns the media duration in seconds, or ErrProbeFailed.
	ProbeDuration(ctx context.Context, path string) (float64, error)
	// Split extracts chunkCount segments of chunkDuration seconds each into
	// tempDir. Segments produced before a failure are removed.
	Split(ctx context.Context, path, tempDir string, chunkDuration float64, chunkCount int) ([]vo.Segment, error)
}
