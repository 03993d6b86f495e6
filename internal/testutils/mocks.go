package testutils

import (
	"context"
	"io"
	"sync"

	"github.com/milkywaybrain/marketstream/internal/market"
	"github.com/segmentio/kafka-go"
)

// MockFeed is a live feed driven by the test.
type MockFeed struct {
	// ConnectErr makes Run fail before signalling a connection.
	ConnectErr error
	// Messages are delivered right after the connection is signalled.
	Messages [][]byte
	// DropErr makes Run return, as a lost connection, once Messages are delivered.
	DropErr error
	// In delivers further messages while connected.
	In chan []byte

	Mu   sync.Mutex
	runs int
}

// NewMockFeed creates a feed with a buffered In channel.
func NewMockFeed() *MockFeed {
	return &MockFeed{In: make(chan []byte, 16)}
}

func (m *MockFeed) Name() string { return "mock" }

func (m *MockFeed) Run(ctx context.Context, onConnected func(), onMessage func([]byte)) error {
	m.Mu.Lock()
	m.runs++
	m.Mu.Unlock()

	if m.ConnectErr != nil {
		return m.ConnectErr
	}
	onConnected()
	for _, msg := range m.Messages {
		onMessage(msg)
	}
	if m.DropErr != nil {
		return m.DropErr
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg := <-m.In:
			onMessage(msg)
		}
	}
}

// Runs is the number of times Run was called.
func (m *MockFeed) Runs() int {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	return m.runs
}

// MockSource is a snapshot source returning fixed records.
type MockSource struct {
	Records []market.Record
	Err     error

	Mu    sync.Mutex
	calls int
}

func (m *MockSource) Name() string { return "mock" }

func (m *MockSource) Load(_ context.Context) ([]market.Record, error) {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	m.calls++
	if m.Err != nil {
		return nil, m.Err
	}
	return append([]market.Record(nil), m.Records...), nil
}

// Calls is the number of times Load was called.
func (m *MockSource) Calls() int {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	return m.calls
}

// MockKafkaReader is a feed.KafkaReader serving fixed messages.
type MockKafkaReader struct {
	Messages []kafka.Message
	Index    int
	Mu       sync.Mutex
	// Closed simulates a closed connection.
	Closed bool
}

// ReadMessage returns context.DeadlineExceeded once Messages are exhausted.
func (m *MockKafkaReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	m.Mu.Lock()
	defer m.Mu.Unlock()

	if m.Closed {
		return kafka.Message{}, io.EOF
	}
	if err := ctx.Err(); err != nil {
		return kafka.Message{}, err
	}
	if m.Index >= len(m.Messages) {
		return kafka.Message{}, context.DeadlineExceeded
	}

	msg := m.Messages[m.Index]
	m.Index++
	return msg, nil
}

func (m *MockKafkaReader) Close() error {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	m.Closed = true
	return nil
}
