package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gameforum/models"
	"gameforum/pkg/metrics"
)

// Domain event types; they double as AMQP routing keys.
const (
	ThreadCreated = "thread.created"
	ThreadUpdated = "thread.updated"
	ThreadDeleted = "thread.deleted"
)

type Event struct {
	Type     string          `json:"type"`
	ThreadID models.ThreadID `json:"thread_id,string"`
	At       time.Time       `json:"at"`
}

// Handler reacts to one event. Returning an error rejects the delivery.
type Handler func(ctx context.Context, e Event) error

// Publisher hands events to whoever indexes or audits them. Publishing is
// best effort for callers: the write that produced the event has already
// committed.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Nop drops every event; used when neither a broker nor a search index is
// configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }

// Direct delivers events to a handler in the publishing goroutine, for
// single-process deployments without a broker.
type Direct struct {
	Handler Handler
}

func (d Direct) Publish(ctx context.Context, e Event) error {
	err := d.Handler(ctx, e)
	observe(e.Type, err)
	return err
}

func (Direct) Close() error { return nil }

func encode(e Event) ([]byte, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event failed: %w", err)
	}
	return b, nil
}

func decode(body []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(body, &e); err != nil {
		return Event{}, fmt.Errorf("unmarshal event failed: %w", err)
	}
	if e.Type == "" || e.ThreadID == 0 {
		return Event{}, fmt.Errorf("event is missing type or thread id")
	}
	return e, nil
}

func observe(eventType string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	metrics.EventsPublished.WithLabelValues(eventType, result).Inc()
}
