package feed

import (
	"context"

	"github.com/milkywaybrain/marketstream/internal/config"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
)

// KafkaReader is the part of a kafka reader the feed uses.
type KafkaReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// Kafka consumes records from the backend topic.
type Kafka struct {
	Cfg       *config.Kafka
	newReader func(cfg *config.Kafka) KafkaReader
}

// NewKafka creates a feed reading the configured topic in a consumer group.
func NewKafka(cfg *config.Kafka) *Kafka {
	return &Kafka{Cfg: cfg, newReader: newKafkaReader}
}

func newKafkaReader(cfg *config.Kafka) KafkaReader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		Topic:       cfg.Topic,
		GroupID:     cfg.GroupID,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafka.LastOffset,
	})
}

func (k *Kafka) Name() string { return config.SourceKafka }

// Run signals the connection as soon as the reader exists, the reader
// connects to the brokers lazily on the first read.
func (k *Kafka) Run(ctx context.Context, onConnected func(), onMessage func([]byte)) error {
	reader := k.newReader(k.Cfg)
	defer func() {
		if err := reader.Close(); err != nil {
			log.Debug().Str("feed", config.SourceKafka).Err(err).Msg("reader close")
		}
	}()
	onConnected()

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			return closeErr(ctx, errors.Wrap(err, "kafka read"))
		}
		onMessage(msg.Value)
	}
}
