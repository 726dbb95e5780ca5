package vo

// MediaStatus is the processing state of a media item. The set is closed:
// persistence and the HTTP adapter only ever see these values.
type MediaStatus string

const (
	// StatusUploaded media stored, never submitted for transcription
	StatusUploaded MediaStatus = "uploaded"
	// StatusQueued job accepted, waiting for a worker
	StatusQueued MediaStatus = "queued"
	// StatusProcessing a worker is running the pipeline
	StatusProcessing MediaStatus = "processing"
	// StatusCompleted transcript persisted
	StatusCompleted MediaStatus = "completed"
	// StatusFailed generic terminal failure
	StatusFailed MediaStatus = "failed"
	// StatusQuotaExceeded provider quota or rate limit exhausted
	StatusQuotaExceeded MediaStatus = "quota_exceeded"
	// StatusAPIKeyInvalid provider rejected the credentials
	StatusAPIKeyInvalid MediaStatus = "api_key_invalid"
	// StatusFileMissing media could not be located in cache or remote storage
	StatusFileMissing MediaStatus = "file_missing"
)

// IsValid checks membership in the closed status set.
func (s MediaStatus) IsValid() bool {
	switch s {
	case StatusUploaded, StatusQueued, StatusProcessing, StatusCompleted,
		StatusFailed, StatusQuotaExceeded, StatusAPIKeyInvalid, StatusFileMissing:
		return true
	default:
		return false
	}
}

func (s MediaStatus) String() string {
	return string(s)
}

// IsTerminal reports whether the status ends a job. Terminal states are
// only left through a fresh submission.
func (s MediaStatus) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusQuotaExceeded,
		StatusAPIKeyInvalid, StatusFileMissing:
		return true
	default:
		return false
	}
}

// IsFailure reports whether the status is a terminal failure.
func (s MediaStatus) IsFailure() bool {
	return s.IsTerminal() && s != StatusCompleted
}

// CanTransitionTo checks whether target is a legal next state.
func (s MediaStatus) CanTransitionTo(target MediaStatus) bool {
	switch s {
	case StatusUploaded:
		return target == StatusQueued
	case StatusQueued:
		return target == StatusProcessing || target.IsFailure()
	case StatusProcessing:
		return target.IsTerminal()
	case StatusCompleted, StatusFailed, StatusQuotaExceeded,
		StatusAPIKeyInvalid, StatusFileMissing:
		// a resubmission re-queues the media
		return target == StatusQueued
	default:
		return false
	}
}
