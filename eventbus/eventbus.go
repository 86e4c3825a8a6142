package eventbus

import (
	"context"
	"os"
	"time"
)

// TopicRefreshCompleted carries one event per finished refresh run, success
// or failure.
const TopicRefreshCompleted = "quotes.refresh.completed"

// Event is the envelope published to Kafka.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// EventBus is the publish-side contract. This service only produces; no
// consumer runs in this repository.
type EventBus interface {
	Publish(ctx context.Context, topic string, event Event) error
	Close()
}

// GetBrokers returns Kafka bootstrap servers from KAFKA_BOOTSTRAP_SERVERS.
// Empty means event publishing is disabled.
func GetBrokers() string {
	return os.Getenv("KAFKA_BOOTSTRAP_SERVERS")
}
