package port

import (
	"context"
	"errors"
)

// Sentinel error kinds surfaced by Transcriber implementations. The worker
// maps each kind to its terminal media status.
var (
	// ErrAuthFailed credentials rejected, never retried
	ErrAuthFailed = errors.New("authentication failed")
	// ErrQuotaExceeded quota or rate limit exhausted, never retried
	ErrQuotaExceeded = errors.New("quota exceeded")
	// ErrServiceUnavailable circuit open, call rejected without network I/O
	ErrServiceUnavailable = errors.New("transcription service unavailable")
)

// TranscriptionResult is one speech-to-text call's output.
type TranscriptionResult struct {
	Text            string
	DurationSeconds float64
}

// Transcriber turns one audio file into text. Implementations own their
// retry and availability policies; errors surface as the sentinel kinds in
// ddd/infrastructure/transcriber.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (TranscriptionResult, error)
}
