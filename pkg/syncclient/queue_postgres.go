package syncclient

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// PostgresQueue is a Queue backed by a table in the producer's own database,
// so enqueueing a batch can share a transaction with the producer's writes.
type PostgresQueue struct {
	db *sql.DB
}

// NewPostgresQueue wraps an existing connection pool. Call Init once at
// startup to create the backing table.
func NewPostgresQueue(db *sql.DB) *PostgresQueue {
	return &PostgresQueue{db: db}
}

// Init creates the outbox table if it does not exist.
func (q *PostgresQueue) Init(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS tabled_outbox (
			id           BIGSERIAL PRIMARY KEY,
			payload      JSONB NOT NULL,
			attempts     INT NOT NULL DEFAULT 0,
			next_attempt TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	if err != nil {
		return fmt.Errorf("create outbox table: %w", err)
	}
	return nil
}

func (q *PostgresQueue) Enqueue(ctx context.Context, payload []json.RawMessage) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling payload: %w", err)
	}
	if _, err := q.db.ExecContext(ctx,
		`INSERT INTO tabled_outbox (payload) VALUES ($1)`, data); err != nil {
		return fmt.Errorf("enqueue: %w", err)
	}
	return nil
}

// Dequeue returns the oldest due item, locking it against concurrent workers.
func (q *PostgresQueue) Dequeue(ctx context.Context) (*Item, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT id, payload, attempts FROM tabled_outbox
		WHERE next_attempt <= NOW()
		ORDER BY id
		LIMIT 1
		FOR UPDATE SKIP LOCKED`)

	var (
		item Item
		data []byte
	)
	err := row.Scan(&item.ID, &data, &item.Attempts)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("dequeue: %w", err)
	}
	if err := json.Unmarshal(data, &item.Payload); err != nil {
		return nil, fmt.Errorf("decode payload for item %d: %w", item.ID, err)
	}
	return &item, nil
}

func (q *PostgresQueue) Ack(ctx context.Context, id int64) error {
	if _, err := q.db.ExecContext(ctx,
		`DELETE FROM tabled_outbox WHERE id = $1`, id); err != nil {
		return fmt.Errorf("ack item %d: %w", id, err)
	}
	return nil
}

func (q *PostgresQueue) Retry(ctx context.Context, id int64, nextAttempt time.Time) error {
	if _, err := q.db.ExecContext(ctx, `
		UPDATE tabled_outbox
		SET attempts = attempts + 1, next_attempt = $2
		WHERE id = $1`, id, nextAttempt); err != nil {
		return fmt.Errorf("retry item %d: %w", id, err)
	}
	return nil
}
