package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/molsmarts/internal/infrastructure/monitoring/logging"
)

type mockKafkaConn struct {
	createFunc func(topics ...kafka.TopicConfig) error
	readFunc   func(topics ...string) ([]kafka.Partition, error)
}

func (m *mockKafkaConn) CreateTopics(topics ...kafka.TopicConfig) error {
	if m.createFunc != nil {
		return m.createFunc(topics...)
	}
	return nil
}

func (m *mockKafkaConn) ReadPartitions(topics ...string) ([]kafka.Partition, error) {
	if m.readFunc != nil {
		return m.readFunc(topics...)
	}
	return nil, nil
}

func (m *mockKafkaConn) Close() error { return nil }

func newTestTopicManager(conn ConnInterface) *TopicManager {
	return &TopicManager{conn: conn, logger: logging.NewNopLogger()}
}

func TestDefaultTopics(t *testing.T) {
	topics := DefaultTopics(6, 3)
	require.Len(t, topics, 3)
	assert.Equal(t, TopicEncodeRequest, topics[0].Name)
	assert.Equal(t, TopicEncodeResult, topics[1].Name)
	assert.Equal(t, "smarts.encode.request.dlq", topics[2].Name)
	assert.Equal(t, 1, topics[2].NumPartitions)
}

func TestCreateTopic_Success(t *testing.T) {
	conn := &mockKafkaConn{createFunc: func(topics ...kafka.TopicConfig) error {
		require.Len(t, topics, 1)
		assert.Equal(t, "test", topics[0].Topic)
		assert.Equal(t, []kafka.ConfigEntry{{ConfigName: "retention.ms", ConfigValue: "1000"}}, topics[0].ConfigEntries)
		return nil
	}}
	m := newTestTopicManager(conn)
	assert.NoError(t, m.CreateTopic(context.Background(), TopicConfig{Name: "test", NumPartitions: 1, ReplicationFactor: 1, RetentionMs: 1000}))
}

func TestCreateTopic_Validation(t *testing.T) {
	m := newTestTopicManager(&mockKafkaConn{})
	assert.Error(t, m.CreateTopic(context.Background(), TopicConfig{}))
	assert.Error(t, m.CreateTopic(context.Background(), TopicConfig{Name: "t", ReplicationFactor: 1}))
	assert.Error(t, m.CreateTopic(context.Background(), TopicConfig{Name: "t", NumPartitions: 1}))
}

func TestCreateTopic_ExistingIsNotAnError(t *testing.T) {
	conn := &mockKafkaConn{
		createFunc: func(...kafka.TopicConfig) error { return errors.New("already exists") },
		readFunc: func(...string) ([]kafka.Partition, error) {
			return []kafka.Partition{{Topic: "t"}}, nil
		},
	}
	m := newTestTopicManager(conn)
	assert.NoError(t, m.CreateTopic(context.Background(), TopicConfig{Name: "t", NumPartitions: 1, ReplicationFactor: 1}))
}

func TestEnsureTopics_StopsAtFailure(t *testing.T) {
	calls := 0
	conn := &mockKafkaConn{createFunc: func(...kafka.TopicConfig) error {
		calls++
		return errors.New("denied")
	}}
	m := newTestTopicManager(conn)
	assert.Error(t, m.EnsureTopics(context.Background(), DefaultTopics(1, 1)))
	assert.Equal(t, 1, calls)
}

type requestPayload struct {
	JobID string `json:"job_id"`
}

func TestEnvelope_RoundTrip(t *testing.T) {
	env, err := NewEnvelope(EventEncodeRequested, "apiserver", requestPayload{JobID: "123"})
	require.NoError(t, err)

	msg, err := env.ToMessage(TopicEncodeRequest, []byte("123"))
	require.NoError(t, err)
	assert.Equal(t, EventEncodeRequested, msg.Headers[HeaderEventType])

	decoded, err := DecodeEnvelope(&Message{Value: msg.Value})
	require.NoError(t, err)
	assert.Equal(t, env.EventID, decoded.EventID)

	var payload requestPayload
	require.NoError(t, decoded.Decode(&payload))
	assert.Equal(t, "123", payload.JobID)
}

func TestDecodeEnvelope_Errors(t *testing.T) {
	_, err := DecodeEnvelope(&Message{})
	assert.Error(t, err)
	_, err = DecodeEnvelope(&Message{Value: []byte("{")})
	assert.Error(t, err)

	var target requestPayload
	assert.Error(t, (&Envelope{}).Decode(&target))
}

//Personal.AI order the ending
