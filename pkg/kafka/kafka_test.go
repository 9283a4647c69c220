package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func TestNewEvent(t *testing.T) {
	ev, err := NewEvent("marketplace.product.created", "p-1", "product", "marketplace", map[string]string{"name": "Mug"})
	require.NoError(t, err)

	assert.NotEmpty(t, ev.EventID)
	assert.Equal(t, 1, ev.Version)
	assert.False(t, ev.Timestamp.IsZero())

	var data map[string]string
	require.NoError(t, ev.UnmarshalData(&data))
	assert.Equal(t, "Mug", data["name"])
}

func TestNewEvent_UnmarshalablePayload(t *testing.T) {
	_, err := NewEvent("x", "1", "product", "marketplace", make(chan int))
	assert.Error(t, err)
}

func TestEvent_RoundTripEnvelope(t *testing.T) {
	ev, err := NewEvent("marketplace.product.deleted", "p-2", "product", "marketplace", nil)
	require.NoError(t, err)
	ev.WithCorrelationID("corr-1").WithMetadata("shop_id", "s-1")

	raw, err := ev.Marshal()
	require.NoError(t, err)
	var decoded Event
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "corr-1", decoded.CorrelationID)
	assert.Equal(t, "s-1", decoded.Metadata["shop_id"])
}

func TestProducer_PublishSetsKeyAndHeaders(t *testing.T) {
	w := &recordingWriter{}
	p := NewProducerWithWriter(w, nil, nil)

	ev, err := NewEvent("marketplace.product.reviewed", "p-3", "product", "marketplace", struct{}{})
	require.NoError(t, err)
	ev.WithCorrelationID("corr-9")

	require.NoError(t, p.Publish(context.Background(), "marketplace.product.reviewed", ev))
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "marketplace.product.reviewed", msg.Topic)
	assert.Equal(t, []byte("p-3"), msg.Key)

	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "marketplace.product.reviewed", headers["event_type"])
	assert.Equal(t, "corr-9", headers["correlation_id"])
}

func TestProducer_PublishError(t *testing.T) {
	w := &recordingWriter{err: errors.New("broker down")}
	p := NewProducerWithWriter(w, nil, nil)

	ev, err := NewEvent("t", "1", "product", "marketplace", nil)
	require.NoError(t, err)
	err = p.Publish(context.Background(), "t", ev)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
}

func TestProducer_Close(t *testing.T) {
	w := &recordingWriter{}
	require.NoError(t, NewProducerWithWriter(w, nil, nil).Close())
	assert.True(t, w.closed)
}

func TestPingBrokers_NoBrokers(t *testing.T) {
	assert.Error(t, PingBrokers(context.Background(), nil))
}
