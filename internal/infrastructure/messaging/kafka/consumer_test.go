package kafka

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/turtacn/molsmarts/pkg/errors"
)

// mockKafkaReader serves queued messages, then blocks until cancelled.
type mockKafkaReader struct {
	mu        sync.Mutex
	queue     []kafka.Message
	committed []kafka.Message
	closed    bool
}

func (m *mockKafkaReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	m.mu.Lock()
	if len(m.queue) > 0 {
		msg := m.queue[0]
		m.queue = m.queue[1:]
		m.mu.Unlock()
		return msg, nil
	}
	m.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (m *mockKafkaReader) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.committed = append(m.committed, msgs...)
	return nil
}

func (m *mockKafkaReader) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockKafkaReader) commits() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.committed)
}

type recordingPublisher struct {
	mu   sync.Mutex
	msgs []*ProducerMessage
	err  error
}

func (p *recordingPublisher) Publish(ctx context.Context, msg *ProducerMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, msg)
	return nil
}

func newTestConsumerConfig() ConsumerConfig {
	return ConsumerConfig{
		Brokers: []string{"localhost:9092"},
		GroupID: "molsmarts-worker",
		Topics:  []string{TopicEncodeRequest},
		Retry: RetryConfig{
			MaxRetries:   2,
			RetryBackoff: time.Millisecond,
			DeadLetter:   true,
		},
	}
}

func TestValidateConsumerConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *ConsumerConfig)
		valid  bool
	}{
		{"valid", func(c *ConsumerConfig) {}, true},
		{"no brokers", func(c *ConsumerConfig) { c.Brokers = nil }, false},
		{"no group", func(c *ConsumerConfig) { c.GroupID = "" }, false},
		{"no topics", func(c *ConsumerConfig) { c.Topics = nil }, false},
		{"bad offset reset", func(c *ConsumerConfig) { c.AutoOffsetReset = "middle" }, false},
		{"negative retries", func(c *ConsumerConfig) { c.Retry.MaxRetries = -1 }, false},
		{"sasl without credentials", func(c *ConsumerConfig) {
			c.Security = SecurityConfig{SASLEnabled: true, SASLMechanism: "PLAIN"}
		}, false},
		{"unknown sasl mechanism", func(c *ConsumerConfig) {
			c.Security = SecurityConfig{SASLEnabled: true, SASLMechanism: "GSSAPI", SASLUsername: "u", SASLPassword: "p"}
		}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newTestConsumerConfig()
			tt.mutate(&cfg)
			err := ValidateConsumerConfig(cfg)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeValidation))
			}
		})
	}
}

func TestNewConsumer_DeadLetterNeedsPublisher(t *testing.T) {
	_, err := NewConsumer(newTestConsumerConfig(), nil, nil, nil)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeValidation))
}

func TestStart_AlreadyRunning(t *testing.T) {
	c := newConsumerWithReader(&mockKafkaReader{}, newTestConsumerConfig(), nil, nil, nil)
	c.running.Store(true)
	assert.Equal(t, ErrAlreadyRunning, c.Start(context.Background()))
}

func TestConsumeLoop_DispatchesAndCommits(t *testing.T) {
	reader := &mockKafkaReader{queue: []kafka.Message{
		{Topic: TopicEncodeRequest, Value: []byte("a"), Headers: []kafka.Header{{Key: "k", Value: []byte("v")}}},
		{Topic: "unknown", Value: []byte("b")},
	}}
	c := newConsumerWithReader(reader, newTestConsumerConfig(), nil, nil, nil)

	handled := make(chan *Message, 1)
	c.Subscribe(TopicEncodeRequest, func(ctx context.Context, msg *Message) error {
		handled <- msg
		return nil
	})
	require.NoError(t, c.Start(context.Background()))

	select {
	case msg := <-handled:
		assert.Equal(t, "a", string(msg.Value))
		assert.Equal(t, "v", msg.Headers["k"])
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for handler")
	}
	assert.Eventually(t, func() bool { return reader.commits() == 2 }, time.Second, 5*time.Millisecond)

	require.NoError(t, c.Close())
	assert.True(t, reader.closed)
	assert.Equal(t, int64(1), c.Processed())
}

func TestProcessMessage_RetrySuccess(t *testing.T) {
	c := newConsumerWithReader(&mockKafkaReader{}, newTestConsumerConfig(), nil, nil, nil)

	attempts := 0
	handler := func(ctx context.Context, msg *Message) error {
		attempts++
		if attempts < 2 {
			return errors.New("transient")
		}
		return nil
	}

	assert.NoError(t, c.processMessage(context.Background(), &Message{Topic: TopicEncodeRequest}, handler))
	assert.Equal(t, 2, attempts)
	assert.Equal(t, int64(1), c.Processed())
}

func TestProcessMessage_ExhaustedGoesToDeadLetter(t *testing.T) {
	dlq := &recordingPublisher{}
	c := newConsumerWithReader(&mockKafkaReader{}, newTestConsumerConfig(), dlq, nil, nil)

	var attempts atomic.Int32
	handler := func(ctx context.Context, msg *Message) error {
		attempts.Add(1)
		return errors.New("storage down")
	}

	msg := &Message{Topic: TopicEncodeRequest, Key: []byte("job"), Value: []byte("payload"), Headers: map[string]string{}}
	assert.NoError(t, c.processMessage(context.Background(), msg, handler))
	assert.Equal(t, int32(3), attempts.Load())
	assert.Equal(t, int64(1), c.Failed())

	require.Len(t, dlq.msgs, 1)
	dl := dlq.msgs[0]
	assert.Equal(t, TopicEncodeRequestDLQ, dl.Topic)
	assert.Equal(t, "payload", string(dl.Value))
	assert.Equal(t, TopicEncodeRequest, dl.Headers[HeaderOriginalTopic])
	assert.Equal(t, "storage down", dl.Headers[HeaderError])
	assert.Equal(t, "3", dl.Headers[HeaderAttempts])
}

func TestProcessMessage_ExhaustedCallbackRunsBeforeDeadLetter(t *testing.T) {
	dlq := &recordingPublisher{}
	c := newConsumerWithReader(&mockKafkaReader{}, newTestConsumerConfig(), dlq, nil, nil)

	var gotCause error
	var dlqAtCallback int
	c.OnExhausted(TopicEncodeRequest, func(ctx context.Context, msg *Message, cause error) {
		gotCause = cause
		dlqAtCallback = len(dlq.msgs)
	})
	c.OnExhausted(TopicEncodeResult, func(context.Context, *Message, error) {
		t.Fatal("callback of another topic must not run")
	})

	var attempts atomic.Int32
	msg := &Message{Topic: TopicEncodeRequest, Value: []byte("payload"), Headers: map[string]string{}}
	assert.NoError(t, c.processMessage(context.Background(), msg, func(context.Context, *Message) error {
		attempts.Add(1)
		return errors.New("storage down")
	}))

	assert.Equal(t, int32(3), attempts.Load())
	require.Error(t, gotCause)
	assert.Equal(t, "storage down", gotCause.Error())
	assert.Equal(t, 0, dlqAtCallback)
	assert.Len(t, dlq.msgs, 1)
}

func TestProcessMessage_ExhaustedCallbackSkippedOnSuccess(t *testing.T) {
	c := newConsumerWithReader(&mockKafkaReader{}, newTestConsumerConfig(), nil, nil, nil)
	called := false
	c.OnExhausted(TopicEncodeRequest, func(context.Context, *Message, error) { called = true })

	assert.NoError(t, c.processMessage(context.Background(), &Message{Topic: TopicEncodeRequest}, func(context.Context, *Message) error {
		return nil
	}))
	assert.False(t, called)
}

func TestProcessMessage_PermanentErrorSkipsRetries(t *testing.T) {
	dlq := &recordingPublisher{}
	c := newConsumerWithReader(&mockKafkaReader{}, newTestConsumerConfig(), dlq, nil, nil)

	attempts := 0
	handler := func(ctx context.Context, msg *Message) error {
		attempts++
		return apperrors.New(apperrors.ErrCodeSerialization, "bad envelope")
	}

	assert.NoError(t, c.processMessage(context.Background(), &Message{Topic: TopicEncodeRequest}, handler))
	assert.Equal(t, 1, attempts)
	assert.Len(t, dlq.msgs, 1)
}

func TestProcessMessage_DeadLetterFailureIsLogged(t *testing.T) {
	dlq := &recordingPublisher{err: errors.New("broker down")}
	c := newConsumerWithReader(&mockKafkaReader{}, newTestConsumerConfig(), dlq, nil, nil)

	err := c.processMessage(context.Background(), &Message{Topic: TopicEncodeRequest}, func(context.Context, *Message) error {
		return apperrors.New(apperrors.ErrCodeValidation, "bad")
	})
	assert.NoError(t, err)
}

func TestProcessMessage_CancelledDuringBackoff(t *testing.T) {
	cfg := newTestConsumerConfig()
	cfg.Retry.RetryBackoff = time.Hour
	c := newConsumerWithReader(&mockKafkaReader{}, cfg, nil, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	err := c.processMessage(ctx, &Message{}, func(context.Context, *Message) error {
		cancel()
		return errors.New("fail")
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDeadLetterTopic(t *testing.T) {
	assert.Equal(t, "smarts.encode.request.dlq", DeadLetterTopic(TopicEncodeRequest))
	assert.Equal(t, "x.dlq", DeadLetterTopic("x.dlq"))
}

//Personal.AI order the ending
