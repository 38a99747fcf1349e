package memory

import (
	"context"
	"sync"
	"time"

	"staybook/internal/app/outbox"
)

// Outbox is an in-memory event queue implementing both the transactional
// recorder and the worker-facing store. Claim semantics mirror the database
// store: a claimed event is invisible until marked sent or failed.
type Outbox struct {
	mu       sync.Mutex
	events   []outbox.Event
	claimed  map[string]bool
	sent     map[string]bool
	retryAt  map[string]time.Time
	attempts map[string]int
}

func NewOutbox() *Outbox {
	return &Outbox{
		claimed:  make(map[string]bool),
		sent:     make(map[string]bool),
		retryAt:  make(map[string]time.Time),
		attempts: make(map[string]int),
	}
}

func (o *Outbox) Record(ctx context.Context, evt outbox.Event) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, evt)
	return nil
}

func (o *Outbox) ClaimNext(ctx context.Context) (*outbox.Event, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	now := time.Now()
	for i := range o.events {
		id := o.events[i].ID
		if o.sent[id] || o.claimed[id] || o.retryAt[id].After(now) {
			continue
		}
		o.claimed[id] = true
		evt := o.events[i]
		evt.Attempts = o.attempts[id]
		return &evt, nil
	}
	return nil, nil
}

func (o *Outbox) MarkSent(ctx context.Context, id string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.claimed, id)
	o.sent[id] = true
	return nil
}

func (o *Outbox) MarkFailed(ctx context.Context, id string, retryAt time.Time, reason string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.claimed, id)
	o.retryAt[id] = retryAt
	o.attempts[id]++
	return nil
}

// Recorded returns a snapshot of every recorded event.
func (o *Outbox) Recorded() []outbox.Event {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]outbox.Event, len(o.events))
	copy(out, o.events)
	return out
}

// Pending returns events not yet marked sent.
func (o *Outbox) Pending() []outbox.Event {
	o.mu.Lock()
	defer o.mu.Unlock()
	var out []outbox.Event
	for _, evt := range o.events {
		if !o.sent[evt.ID] {
			out = append(out, evt)
		}
	}
	return out
}
