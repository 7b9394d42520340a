// internal/events/publisher.go

package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"trendwatch/internal/domain/trend"
)

// TrendEvent is the payload published when a trend record is created or
// updated.
type TrendEvent struct {
	Name                 string    `json:"name"`
	Rank                 int       `json:"rank"`
	SentimentScore       float64   `json:"sentiment_score"`
	SentimentDescription string    `json:"sentiment_description"`
	TweetsAnalyzed       int64     `json:"tweets_analyzed"`
	LastUpdated          time.Time `json:"last_updated"`
}

// RemovalEvent is published after records leave the trending set.
type RemovalEvent struct {
	Removed int64 `json:"removed"`
}

// CycleEvent is published once per completed aggregation cycle.
type CycleEvent struct {
	CycleID    string    `json:"cycle_id"`
	Created    int       `json:"created"`
	Updated    int       `json:"updated"`
	Removed    int64     `json:"removed"`
	Failed     int       `json:"failed"`
	FinishedAt time.Time `json:"finished_at"`
}

// Publisher emits trend lifecycle events on the event bus. Subjects are
// derived from the configured topic: <topic>.created, <topic>.updated,
// <topic>.removed and <topic>.cycle.
type Publisher struct {
	eventBus *nats.Conn
	topic    string
}

// NewPublisher creates a publisher rooted at the given topic.
func NewPublisher(eventBus *nats.Conn, topic string) *Publisher {
	return &Publisher{
		eventBus: eventBus,
		topic:    topic,
	}
}

// TrendCreated publishes a created event for the record.
func (p *Publisher) TrendCreated(rec trend.Record) error {
	return p.publish("created", newTrendEvent(rec))
}

// TrendUpdated publishes an updated event for the record.
func (p *Publisher) TrendUpdated(rec trend.Record) error {
	return p.publish("updated", newTrendEvent(rec))
}

// TrendsRemoved publishes a removal event with the number of records that
// left the trending set.
func (p *Publisher) TrendsRemoved(removed int64) error {
	return p.publish("removed", RemovalEvent{Removed: removed})
}

// CycleCompleted publishes a summary event for a finished aggregation cycle.
func (p *Publisher) CycleCompleted(created, updated int, removed int64, failed int) error {
	return p.publish("cycle", CycleEvent{
		CycleID:    uuid.New().String(),
		Created:    created,
		Updated:    updated,
		Removed:    removed,
		Failed:     failed,
		FinishedAt: time.Now().UTC(),
	})
}

func (p *Publisher) publish(eventType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("error marshaling %s event: %w", eventType, err)
	}

	topic := fmt.Sprintf("%s.%s", p.topic, eventType)
	return p.eventBus.Publish(topic, data)
}

func newTrendEvent(rec trend.Record) TrendEvent {
	return TrendEvent{
		Name:                 rec.Name,
		Rank:                 rec.Rank,
		SentimentScore:       rec.SentimentScore,
		SentimentDescription: rec.SentimentDescription,
		TweetsAnalyzed:       rec.TweetsAnalyzed,
		LastUpdated:          rec.LastUpdated,
	}
}
