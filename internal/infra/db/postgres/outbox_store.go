package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"staybook/internal/app/outbox"
)

// OutboxStore persists outbox events. Record runs inside the transaction
// that produced the event; the claim/mark methods are used by the publishing
// worker against the pool.
type OutboxStore struct {
	q sqlx.ExtContext
}

func NewOutboxStore(q sqlx.ExtContext) *OutboxStore {
	return &OutboxStore{q: q}
}

func (s *OutboxStore) Record(ctx context.Context, evt outbox.Event) error {
	query := `
		INSERT INTO outbox_events (id, name, aggregate_id, payload, occurred_at)
		VALUES ($1, $2, $3, $4, $5)`

	if _, err := s.q.ExecContext(ctx, query, evt.ID, evt.Name, evt.Aggregate, []byte(evt.Payload), evt.OccurredAt); err != nil {
		return classify("outbox insert failed", err)
	}
	return nil
}

// ClaimNext returns the oldest unsent, unclaimed event, skipping rows other
// workers hold. Returns nil when the queue is drained.
func (s *OutboxStore) ClaimNext(ctx context.Context) (*outbox.Event, error) {
	query := `
		UPDATE outbox_events
		SET claimed_at = NOW()
		WHERE id = (
			SELECT id FROM outbox_events
			WHERE sent_at IS NULL
			  AND (next_retry_at IS NULL OR next_retry_at <= NOW())
			  AND (claimed_at IS NULL OR claimed_at < NOW() - INTERVAL '1 minute')
			ORDER BY occurred_at ASC
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, name, aggregate_id, payload, occurred_at, attempts`

	var row struct {
		ID         string    `db:"id"`
		Name       string    `db:"name"`
		Aggregate  string    `db:"aggregate_id"`
		Payload    []byte    `db:"payload"`
		OccurredAt time.Time `db:"occurred_at"`
		Attempts   int       `db:"attempts"`
	}
	if err := sqlx.GetContext(ctx, s.q, &row, query); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("outbox claim failed: %w", err)
	}
	return &outbox.Event{
		ID:         row.ID,
		Name:       row.Name,
		Aggregate:  row.Aggregate,
		Payload:    row.Payload,
		OccurredAt: row.OccurredAt,
		Attempts:   row.Attempts,
	}, nil
}

func (s *OutboxStore) MarkSent(ctx context.Context, id string) error {
	if _, err := s.q.ExecContext(ctx, `UPDATE outbox_events SET sent_at = NOW() WHERE id = $1`, id); err != nil {
		return fmt.Errorf("outbox mark sent failed: %w", err)
	}
	return nil
}

func (s *OutboxStore) MarkFailed(ctx context.Context, id string, retryAt time.Time, reason string) error {
	query := `
		UPDATE outbox_events
		SET attempts = attempts + 1, next_retry_at = $2, last_error = $3, claimed_at = NULL
		WHERE id = $1`
	if _, err := s.q.ExecContext(ctx, query, id, retryAt, reason); err != nil {
		return fmt.Errorf("outbox mark failed failed: %w", err)
	}
	return nil
}
