package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	skafka "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeWriter is a test writer that records messages written.
type fakeWriter struct {
	msgs   []skafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(ctx context.Context, msgs ...skafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestPublish(t *testing.T) {
	fw := &fakeWriter{}
	p := NewKafkaProducerWithWriter(fw, nil)

	err := p.Publish(context.Background(), "session-1", map[string]string{"event": "shipment_estimate.calculated"})
	require.NoError(t, err)
	require.Len(t, fw.msgs, 1)

	assert.Equal(t, "session-1", string(fw.msgs[0].Key))
	var body map[string]string
	require.NoError(t, json.Unmarshal(fw.msgs[0].Value, &body))
	assert.Equal(t, "shipment_estimate.calculated", body["event"])
}

func TestPublish_WriteError(t *testing.T) {
	fw := &fakeWriter{err: errors.New("broker down")}
	err := NewKafkaProducerWithWriter(fw, nil).Publish(context.Background(), "k", 1)
	assert.ErrorContains(t, err, "broker down")
}

func TestPublish_MarshalError(t *testing.T) {
	fw := &fakeWriter{}
	err := NewKafkaProducerWithWriter(fw, nil).Publish(context.Background(), "k", make(chan int))
	assert.Error(t, err)
	assert.Empty(t, fw.msgs)
}

func TestClose(t *testing.T) {
	fw := &fakeWriter{}
	require.NoError(t, NewKafkaProducerWithWriter(fw, nil).Close())
	assert.True(t, fw.closed)
}
