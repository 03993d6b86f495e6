package feed

import (
	"context"
	"testing"

	"github.com/milkywaybrain/marketstream/internal/config"
	"github.com/milkywaybrain/marketstream/internal/testutils"
	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
)

func TestKafkaDeliversValues(t *testing.T) {
	reader := &testutils.MockKafkaReader{Messages: []kafka.Message{
		{Key: []byte("AAPL"), Value: []byte(`{"symbol":"AAPL"}`)},
		{Key: []byte("NVDA"), Value: []byte(`{"symbol":"NVDA"}`)},
	}}
	feed := NewKafka(&config.Kafka{Brokers: []string{"localhost:9092"}, Topic: config.DefaultKafkaTopic})
	feed.newReader = func(*config.Kafka) KafkaReader { return reader }
	assert.Equal(t, "kafka", feed.Name())

	col := &collector{}
	err := feed.Run(context.Background(), col.onConnected, col.onMessage)

	// The mock reports a deadline once drained, seen as a lost connection.
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Equal(t, 1, col.connects())
	assert.Equal(t, []string{`{"symbol":"AAPL"}`, `{"symbol":"NVDA"}`}, col.received())
	assert.True(t, reader.Closed)
}

func TestKafkaCancelled(t *testing.T) {
	reader := &testutils.MockKafkaReader{}
	feed := NewKafka(&config.Kafka{Topic: config.DefaultKafkaTopic})
	feed.newReader = func(*config.Kafka) KafkaReader { return reader }

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	col := &collector{}
	assert.NoError(t, feed.Run(ctx, col.onConnected, col.onMessage))
	assert.Empty(t, col.received())
}
