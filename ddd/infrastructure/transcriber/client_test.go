package transcriber

import (
	"context"
	"errors"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transcription-service/ddd/domain/port"
)

type scriptedAPI struct {
	calls     int
	responses []error // nil means success on that call
}

func (s *scriptedAPI) CreateTranscription(_ context.Context, _ openai.AudioRequest) (openai.AudioResponse, error) {
	idx := s.calls
	s.calls++
	if idx < len(s.responses) && s.responses[idx] != nil {
		return openai.AudioResponse{}, s.responses[idx]
	}
	return openai.AudioResponse{Text: "hello world", Duration: 42.5}, nil
}

func newTestClient(api audioAPI, gate *HealthGate, maxRetries int) *Client {
	return &Client{
		api:        api,
		gate:       gate,
		model:      "whisper-1",
		maxRetries: maxRetries,
		baseDelay:  time.Millisecond,
	}
}

func apiError(status int) error {
	return &openai.APIError{HTTPStatusCode: status, Message: "boom"}
}

func TestTranscribeSuccessFirstAttempt(t *testing.T) {
	api := &scriptedAPI{}
	c := newTestClient(api, NewHealthGate(5, time.Minute), 3)

	res, err := c.Transcribe(context.Background(), "/tmp/a.wav")
	require.NoError(t, err)
	assert.Equal(t, "hello world", res.Text)
	assert.Equal(t, 42.5, res.DurationSeconds)
	assert.Equal(t, 1, api.calls)
}

func TestTranscribeRetriesTransientThenSucceeds(t *testing.T) {
	api := &scriptedAPI{responses: []error{apiError(500), apiError(503), nil}}
	c := newTestClient(api, NewHealthGate(10, time.Minute), 3)

	res, err := c.Transcribe(context.Background(), "/tmp/a.wav")
	require.NoError(t, err)
	assert.Equal(t, "hello world", res.Text)
	assert.Equal(t, 3, api.calls, "k failures then success takes k+1 attempts")
}

func TestTranscribeExhaustsRetries(t *testing.T) {
	api := &scriptedAPI{responses: []error{apiError(500), apiError(500), apiError(500), apiError(500)}}
	c := newTestClient(api, NewHealthGate(10, time.Minute), 3)

	_, err := c.Transcribe(context.Background(), "/tmp/a.wav")
	require.Error(t, err)
	assert.Equal(t, 3, api.calls, "attempt count equals the retry budget")
}

func TestTranscribeAuthNeverRetried(t *testing.T) {
	api := &scriptedAPI{responses: []error{apiError(401)}}
	c := newTestClient(api, NewHealthGate(10, time.Minute), 3)

	_, err := c.Transcribe(context.Background(), "/tmp/a.wav")
	require.ErrorIs(t, err, port.ErrAuthFailed)
	assert.Equal(t, 1, api.calls)
}

func TestTranscribeQuotaNeverRetried(t *testing.T) {
	api := &scriptedAPI{responses: []error{apiError(429)}}
	c := newTestClient(api, NewHealthGate(10, time.Minute), 3)

	_, err := c.Transcribe(context.Background(), "/tmp/a.wav")
	require.ErrorIs(t, err, port.ErrQuotaExceeded)
	assert.Equal(t, 1, api.calls)
}

func TestTranscribeFailsFastWhenGateOpen(t *testing.T) {
	api := &scriptedAPI{}
	gate := NewHealthGate(1, time.Hour)
	gate.RecordFailure()
	c := newTestClient(api, gate, 3)

	_, err := c.Transcribe(context.Background(), "/tmp/a.wav")
	require.ErrorIs(t, err, port.ErrServiceUnavailable)
	assert.Equal(t, 0, api.calls, "open circuit never touches the network")
}

func TestTranscribeTransientFailuresFeedGate(t *testing.T) {
	api := &scriptedAPI{responses: []error{apiError(500), apiError(500), apiError(500)}}
	gate := NewHealthGate(3, time.Hour)
	c := newTestClient(api, gate, 3)

	_, err := c.Transcribe(context.Background(), "/tmp/a.wav")
	require.Error(t, err)
	assert.True(t, gate.Open(), "three transient failures open the gate")
}

func TestTranscribeFatalDoesNotTripGate(t *testing.T) {
	api := &scriptedAPI{responses: []error{apiError(429)}}
	gate := NewHealthGate(1, time.Hour)
	c := newTestClient(api, gate, 3)

	_, err := c.Transcribe(context.Background(), "/tmp/a.wav")
	require.ErrorIs(t, err, port.ErrQuotaExceeded)
	assert.False(t, gate.Open(), "quota rejection is not a service-health signal")
}

func TestTranscribeFatalProbeDoesNotWedgeGate(t *testing.T) {
	api := &scriptedAPI{responses: []error{apiError(401)}}
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	gate := newGateAt(1, time.Minute, &clock)

	gate.RecordFailure()
	clock = clock.Add(2 * time.Minute)

	c := newTestClient(api, gate, 3)
	_, err := c.Transcribe(context.Background(), "/tmp/a.wav")
	require.ErrorIs(t, err, port.ErrAuthFailed)
	assert.Equal(t, 1, api.calls)

	assert.True(t, gate.Allow(), "gate admits the next caller after a fatal probe outcome")
}

func TestClassifyUnknownErrorStaysTransient(t *testing.T) {
	plain := errors.New("connection reset by peer")
	assert.False(t, isFatal(classify(plain)))
	assert.Equal(t, plain, classify(plain))
}
