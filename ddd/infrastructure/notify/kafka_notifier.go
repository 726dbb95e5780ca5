package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"transcription-service/ddd/domain/gateway"
	"transcription-service/pkg/kafka"
	"transcription-service/pkg/logger"
)

// KafkaNotifier publishes completed transcripts to the analysis topic,
// keyed by media id so one media's events stay ordered.
type KafkaNotifier struct {
	client *kafka.Client
	topic  string
}

func NewKafkaNotifier(client *kafka.Client, topic string) gateway.AnalysisGateway {
	return &KafkaNotifier{client: client, topic: topic}
}

func (n *KafkaNotifier) PublishCompleted(ctx context.Context, result gateway.CompletedTranscript) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal completed transcript: %w", err)
	}
	if err := n.client.Produce(ctx, n.topic, []byte(result.MediaID), payload); err != nil {
		return fmt.Errorf("publish completed transcript: %w", err)
	}
	logger.Info("completed transcript published", map[string]interface{}{
		"media_id": result.MediaID,
		"topic":    n.topic,
	})
	return nil
}

// LogNotifier stands in for the analysis collaborator when Kafka is
// disabled in config.
type LogNotifier struct{}

func NewLogNotifier() gateway.AnalysisGateway {
	return &LogNotifier{}
}

func (n *LogNotifier) PublishCompleted(_ context.Context, result gateway.CompletedTranscript) error {
	logger.Info("completed transcript (handoff disabled)", map[string]interface{}{
		"media_id":         result.MediaID,
		"duration_seconds": result.DurationSeconds,
		"transcript_chars": len(result.Transcript),
	})
	return nil
}
