// internal/tracker/consumer_test.go

package tracker

import (
	"context"
	"testing"

	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trendwatch/internal/metrics"
)

func TestConsumerHandle_DropsMalformedPayloads(t *testing.T) {
	c := NewConsumer(nil, nil, "ingest.tweets")

	before := testutil.ToFloat64(metrics.StreamObservationsDroppedTotal.WithLabelValues("malformed"))
	c.handle(&nats.Msg{Subject: "ingest.tweets", Data: []byte("not json")})

	assert.Equal(t, before+1, testutil.ToFloat64(metrics.StreamObservationsDroppedTotal.WithLabelValues("malformed")))
}

func TestConsumerHandle_DropsObservationsWithoutATrendName(t *testing.T) {
	c := NewConsumer(nil, nil, "ingest.tweets")

	before := testutil.ToFloat64(metrics.StreamObservationsDroppedTotal.WithLabelValues("unnamed"))
	c.handle(&nats.Msg{Subject: "ingest.tweets", Data: []byte(`{"score":0.4,"keywords":["go"]}`)})

	assert.Equal(t, before+1, testutil.ToFloat64(metrics.StreamObservationsDroppedTotal.WithLabelValues("unnamed")))
}

func TestConsumerHandle_RecordsValidObservations(t *testing.T) {
	tr := newTestTracker(t, 10)
	c := NewConsumer(nil, tr, "ingest.tweets")

	before := testutil.ToFloat64(metrics.StreamObservationsTotal)
	c.handle(&nats.Msg{Subject: "ingest.tweets", Data: []byte(`{"trend":"golang","score":0.5,"keywords":["go","release"]}`)})

	assert.Equal(t, before+1, testutil.ToFloat64(metrics.StreamObservationsTotal))

	stats, err := tr.Snapshot(context.Background())
	require.NoError(t, err)
	require.Contains(t, stats, "golang")
	assert.InDelta(t, 0.5, stats["golang"].Sentiment, 1e-9)
	assert.Equal(t, int64(1), stats["golang"].TweetsAnalyzed)
}
