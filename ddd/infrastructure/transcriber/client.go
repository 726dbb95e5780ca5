package transcriber

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	openai "github.com/sashabaranov/go-openai"

	"transcription-service/ddd/domain/port"
	"transcription-service/pkg/config"
	"transcription-service/pkg/logger"
)

// audioAPI is the slice of the provider client the transcriber uses.
type audioAPI interface {
	CreateTranscription(ctx context.Context, request openai.AudioRequest) (openai.AudioResponse, error)
}

// Client sends one audio file per call to the speech service, consulting
// the shared HealthGate before every attempt and retrying transient
// failures with exponential backoff. Fatal kinds are never retried.
type Client struct {
	api            audioAPI
	gate           *HealthGate
	model          string
	requestTimeout time.Duration
	maxRetries     int
	baseDelay      time.Duration
}

func NewClient(cfg config.TranscribeConfig, gate *HealthGate) *Client {
	return &Client{
		api:            openai.NewClient(cfg.APIKey),
		gate:           gate,
		model:          cfg.Model,
		requestTimeout: cfg.RequestTimeout,
		maxRetries:     cfg.MaxRetries,
		baseDelay:      cfg.RetryBaseDelay,
	}
}

// Transcribe runs one speech-to-text call with up to maxRetries attempts.
func (c *Client) Transcribe(ctx context.Context, audioPath string) (port.TranscriptionResult, error) {
	var result port.TranscriptionResult
	attempts := 0

	operation := func() error {
		if !c.gate.Allow() {
			return backoff.Permanent(port.ErrServiceUnavailable)
		}
		attempts++

		callCtx := ctx
		if c.requestTimeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, c.requestTimeout)
			defer cancel()
		}

		resp, err := c.api.CreateTranscription(callCtx, openai.AudioRequest{
			Model:    c.model,
			FilePath: audioPath,
			Format:   openai.AudioResponseFormatVerboseJSON,
		})
		if err != nil {
			kind := classify(err)
			if isFatal(kind) {
				c.gate.RecordFatal()
				return backoff.Permanent(kind)
			}
			c.gate.RecordFailure()
			logger.Warnf("transcription attempt %d failed file=%s: %v", attempts, audioPath, err)
			return kind
		}

		c.gate.RecordSuccess()
		result = port.TranscriptionResult{
			Text:            resp.Text,
			DurationSeconds: float64(resp.Duration),
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.baseDelay
	bo.Multiplier = 2
	bo.RandomizationFactor = 0
	bo.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(bo, uint64(c.maxRetries-1)), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return port.TranscriptionResult{}, err
	}
	return result, nil
}
