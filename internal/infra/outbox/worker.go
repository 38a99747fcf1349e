package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	appoutbox "staybook/internal/app/outbox"
)

var ErrWorkerNotConfigured = errors.New("outbox: worker requires a store and a producer")

// Store is the worker's view of the persisted outbox queue.
type Store interface {
	ClaimNext(ctx context.Context) (*appoutbox.Event, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, retryAt time.Time, reason string) error
}

// Producer publishes one event payload to a topic.
type Producer interface {
	Publish(ctx context.Context, topic string, key string, payload []byte, headers map[string]string) error
}

// Worker drains the outbox table and publishes reservation events to the
// broker. Runs until the context is cancelled.
type Worker struct {
	Store    Store
	Producer Producer
	Interval time.Duration

	TopicPrefix string
	Source      string
	Backoff     []time.Duration
	Logger      *slog.Logger
}

func (w *Worker) Run(ctx context.Context) error {
	if w.Store == nil || w.Producer == nil {
		return ErrWorkerNotConfigured
	}
	ticker := time.NewTicker(w.interval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.processOnce(ctx); err != nil {
				w.logger().Warn("outbox pass failed", "error", err)
			}
		}
	}
}

func (w *Worker) processOnce(ctx context.Context) error {
	for {
		evt, err := w.Store.ClaimNext(ctx)
		if err != nil {
			return err
		}
		if evt == nil {
			return nil
		}

		payload, err := w.envelope(evt)
		if err != nil {
			_ = w.Store.MarkFailed(ctx, evt.ID, w.nextRetry(evt.Attempts), err.Error())
			continue
		}
		headers := map[string]string{"content-type": "application/json"}
		if err := w.Producer.Publish(ctx, w.topicFor(evt.Name), evt.Aggregate, payload, headers); err != nil {
			_ = w.Store.MarkFailed(ctx, evt.ID, w.nextRetry(evt.Attempts), err.Error())
			w.logger().Warn("outbox publish failed", "event", evt.Name, "id", evt.ID, "error", err)
			continue
		}
		if err := w.Store.MarkSent(ctx, evt.ID); err != nil {
			return err
		}
	}
}

func (w *Worker) envelope(evt *appoutbox.Event) ([]byte, error) {
	return json.Marshal(map[string]any{
		"id":     evt.ID,
		"type":   evt.Name + ".v1",
		"source": w.source(),
		"time":   evt.OccurredAt,
		"data":   json.RawMessage(evt.Payload),
	})
}

// topicFor derives the topic from the event family: "reservation.created"
// publishes to "reservation.events.v1".
func (w *Worker) topicFor(name string) string {
	base := name
	if idx := strings.IndexRune(name, '.'); idx > 0 {
		base = name[:idx]
	}
	topic := base + ".events.v1"
	if w.TopicPrefix != "" {
		topic = w.TopicPrefix + topic
	}
	return topic
}

func (w *Worker) nextRetry(attempts int) time.Time {
	backoff := w.Backoff
	if len(backoff) == 0 {
		backoff = []time.Duration{5 * time.Second}
	}
	if attempts >= len(backoff) {
		attempts = len(backoff) - 1
	}
	return time.Now().Add(backoff[attempts])
}

func (w *Worker) interval() time.Duration {
	if w.Interval <= 0 {
		return 500 * time.Millisecond
	}
	return w.Interval
}

func (w *Worker) source() string {
	if w.Source != "" {
		return w.Source
	}
	return "staybook"
}

func (w *Worker) logger() *slog.Logger {
	if w.Logger != nil {
		return w.Logger
	}
	return slog.Default()
}
