package transcriber

import (
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"transcription-service/ddd/domain/port"
)

// classify maps a provider error onto the sentinel kinds. Anything not
// recognized as fatal is treated as transient and left retryable.
func classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == 401 || apiErr.HTTPStatusCode == 403:
			return fmt.Errorf("%w: %s", port.ErrAuthFailed, apiErr.Message)
		case apiErr.HTTPStatusCode == 429:
			return fmt.Errorf("%w: %s", port.ErrQuotaExceeded, apiErr.Message)
		}
	}
	return err
}

// isFatal reports whether the kind must never be retried.
func isFatal(err error) bool {
	return errors.Is(err, port.ErrAuthFailed) ||
		errors.Is(err, port.ErrQuotaExceeded)
}
