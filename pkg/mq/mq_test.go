package mq

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAck struct {
	acked, nacked, requeued bool
}

func (f *fakeAck) Ack(bool) error { f.acked = true; return nil }
func (f *fakeAck) Nack(_, requeue bool) error {
	f.nacked = true
	f.requeued = requeue
	return nil
}

func TestDispatchDecodesAndSettles(t *testing.T) {
	var got Event
	h := func(_ context.Context, e Event) error { got = e; return nil }

	body, err := encode(Event{Type: ThreadCreated, ThreadID: 42, At: time.Unix(1700000000, 0).UTC()})
	require.NoError(t, err)
	assert.Contains(t, string(body), `"thread_id":"42"`)

	ack := &fakeAck{}
	settle(ack, dispatch(context.Background(), body, h))
	assert.True(t, ack.acked)
	assert.Equal(t, ThreadCreated, got.Type)
	assert.EqualValues(t, 42, got.ThreadID)
}

func TestDispatchRejectsBadMessages(t *testing.T) {
	called := false
	h := func(context.Context, Event) error { called = true; return nil }

	for _, body := range []string{`not json`, `{"type":"thread.created"}`, `{"thread_id":"1"}`} {
		ack := &fakeAck{}
		settle(ack, dispatch(context.Background(), []byte(body), h))
		assert.True(t, ack.nacked, body)
		assert.False(t, ack.requeued, body)
	}
	assert.False(t, called)

	failing := func(context.Context, Event) error { return errors.New("index down") }
	body, _ := encode(Event{Type: ThreadDeleted, ThreadID: 1})
	ack := &fakeAck{}
	settle(ack, dispatch(context.Background(), body, failing))
	assert.True(t, ack.nacked)
}

func TestDirectAndNop(t *testing.T) {
	var seen []Event
	d := Direct{Handler: func(_ context.Context, e Event) error { seen = append(seen, e); return nil }}
	require.NoError(t, d.Publish(context.Background(), Event{Type: ThreadUpdated, ThreadID: 7}))
	assert.Len(t, seen, 1)

	var p Publisher = Nop{}
	assert.NoError(t, p.Publish(context.Background(), Event{Type: ThreadCreated, ThreadID: 1}))
	assert.NoError(t, p.Close())
}
