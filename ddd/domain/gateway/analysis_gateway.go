package gateway

import "context"

// CompletedTranscript is the payload handed to the downstream analysis
// collaborator once a transcript is durable.
type CompletedTranscript struct {
	MediaID         string            `json:"mediaId"`
	OwnerID         string            `json:"ownerId"`
	Transcript      string            `json:"transcript"`
	DurationSeconds float64           `json:"durationSeconds"`
	WordCount       int               `json:"wordCount"`
	Metadata        map[string]string `json:"metadata,omitempty"`
}

// AnalysisGateway forwards completed transcripts downstream.
type AnalysisGateway interface {
	PublishCompleted(ctx context.Context, result CompletedTranscript) error
}
