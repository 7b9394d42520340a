// internal/tracker/consumer.go

package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"trendwatch/internal/logging"
	"trendwatch/internal/metrics"
)

// tweetObservation is the wire shape published by stream analyzers for every
// scored tweet.
type tweetObservation struct {
	Trend    string   `json:"trend"`
	Score    float64  `json:"score"`
	Keywords []string `json:"keywords"`
}

// Consumer subscribes to scored-tweet messages on the event bus and feeds
// them into the tracker's windows.
type Consumer struct {
	conn    *nats.Conn
	tracker *Tracker
	subject string
	timeout time.Duration
	sub     *nats.Subscription
}

// NewConsumer creates a consumer for the given subject.
func NewConsumer(conn *nats.Conn, tracker *Tracker, subject string) *Consumer {
	return &Consumer{
		conn:    conn,
		tracker: tracker,
		subject: subject,
		timeout: 5 * time.Second,
	}
}

// Start subscribes to the ingest subject.
func (c *Consumer) Start() error {
	sub, err := c.conn.Subscribe(c.subject, c.handle)
	if err != nil {
		return fmt.Errorf("subscribing to %q: %w", c.subject, err)
	}

	c.sub = sub
	return nil
}

// Stop drains the subscription so in-flight messages are still recorded.
func (c *Consumer) Stop() error {
	if c.sub == nil {
		return nil
	}
	return c.sub.Drain()
}

func (c *Consumer) handle(msg *nats.Msg) {
	var obs tweetObservation
	if err := json.Unmarshal(msg.Data, &obs); err != nil {
		metrics.StreamObservationsDroppedTotal.WithLabelValues("malformed").Inc()
		slog.Warn("Dropping malformed tweet observation", "subject", c.subject, "error", err)
		return
	}

	if obs.Trend == "" {
		metrics.StreamObservationsDroppedTotal.WithLabelValues("unnamed").Inc()
		slog.Warn("Dropping tweet observation without a trend name", "subject", c.subject)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	if err := c.tracker.Record(ctx, obs.Trend, obs.Score, obs.Keywords); err != nil {
		metrics.StreamObservationsDroppedTotal.WithLabelValues("record_error").Inc()
		logging.WithTrend(obs.Trend).Error("Failed to record tweet observation", "error", err)
		return
	}

	metrics.StreamObservationsTotal.Inc()
}
