package syncclient

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unfulfilled expectations: %v", err)
		}
		db.Close()
	})
	return db, mock
}

func TestPostgresQueue_Enqueue(t *testing.T) {
	db, mock := newMockDB(t)
	q := NewPostgresQueue(db)

	mock.ExpectExec("INSERT INTO tabled_outbox").
		WithArgs([]byte(`[{"id":"1"}]`)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := q.Enqueue(context.Background(), []json.RawMessage{json.RawMessage(`{"id":"1"}`)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPostgresQueue_Dequeue(t *testing.T) {
	db, mock := newMockDB(t)
	q := NewPostgresQueue(db)

	rows := sqlmock.NewRows([]string{"id", "payload", "attempts"}).
		AddRow(7, []byte(`[{"id":"1"},{"id":"2"}]`), 3)
	mock.ExpectQuery("SELECT id, payload, attempts FROM tabled_outbox").
		WillReturnRows(rows)

	item, err := q.Dequeue(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item.ID != 7 || item.Attempts != 3 || len(item.Payload) != 2 {
		t.Fatalf("got %+v", item)
	}
}

func TestPostgresQueue_DequeueEmpty(t *testing.T) {
	db, mock := newMockDB(t)
	q := NewPostgresQueue(db)

	mock.ExpectQuery("SELECT id, payload, attempts FROM tabled_outbox").
		WillReturnRows(sqlmock.NewRows([]string{"id", "payload", "attempts"}))

	item, err := q.Dequeue(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item != nil {
		t.Fatalf("expected nil item, got %+v", item)
	}
}

func TestPostgresQueue_AckAndRetry(t *testing.T) {
	db, mock := newMockDB(t)
	q := NewPostgresQueue(db)

	mock.ExpectExec("DELETE FROM tabled_outbox WHERE id = \\$1").
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	if err := q.Ack(context.Background(), 7); err != nil {
		t.Fatalf("ack: %v", err)
	}

	next := time.Now().UTC().Add(time.Minute)
	mock.ExpectExec("UPDATE tabled_outbox").
		WithArgs(int64(8), next).
		WillReturnResult(sqlmock.NewResult(0, 1))
	if err := q.Retry(context.Background(), 8, next); err != nil {
		t.Fatalf("retry: %v", err)
	}
}
