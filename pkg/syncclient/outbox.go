package syncclient

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Item is one queued batch waiting to be pushed.
type Item struct {
	ID       int64
	Payload  []json.RawMessage
	Attempts int
}

// Queue is durable storage for batches awaiting delivery. Dequeue returns
// nil when nothing is due.
type Queue interface {
	Enqueue(ctx context.Context, payload []json.RawMessage) error
	Dequeue(ctx context.Context) (*Item, error)
	// Ack removes a delivered (or permanently rejected) item.
	Ack(ctx context.Context, id int64) error
	// Retry reschedules an item for a later attempt.
	Retry(ctx context.Context, id int64, nextAttempt time.Time) error
}

// Backoff bounds for retrying unavailable pushes.
const (
	baseBackoff = time.Second
	maxBackoff  = 5 * time.Minute
)

// Outbox drains a Queue through a Client, decoupling producer request latency
// from aggregator availability. Unavailable outcomes are retried with
// exponential backoff; rejected outcomes are dropped after the OnRejected
// callback because retrying an invalid batch can never succeed.
type Outbox struct {
	client   *Client
	queue    Queue
	interval time.Duration
	logger   *slog.Logger

	// OnRejected is called before a rejected item is dropped. Optional.
	OnRejected func(item *Item, outcome Outcome)

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOutbox creates an outbox worker polling the queue at the given interval.
func NewOutbox(client *Client, queue Queue, interval time.Duration, logger *slog.Logger) *Outbox {
	return &Outbox{
		client:   client,
		queue:    queue,
		interval: interval,
		logger:   logger,
	}
}

// Enqueue converts entities and stores the batch for later delivery. It
// returns an error only when the queue itself fails; delivery problems are
// handled by the worker.
func (o *Outbox) Enqueue(ctx context.Context, entities ...Converter) error {
	payload := make([]json.RawMessage, 0, len(entities))
	for _, e := range entities {
		data, err := json.Marshal(e.ToRecord())
		if err != nil {
			return fmt.Errorf("marshaling record: %w", err)
		}
		payload = append(payload, data)
	}
	return o.queue.Enqueue(ctx, payload)
}

// Start launches the worker goroutine.
func (o *Outbox) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	o.cancel = cancel

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		o.run(ctx)
	}()
}

// Stop cancels the worker and waits for the in-flight push (if any) to finish.
func (o *Outbox) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	o.wg.Wait()
}

func (o *Outbox) run(ctx context.Context) {
	ticker := time.NewTicker(o.interval)
	defer ticker.Stop()

	for {
		o.drain(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// drain pushes due items until the queue is empty or an item must wait.
func (o *Outbox) drain(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		item, err := o.queue.Dequeue(ctx)
		if err != nil {
			o.logger.Error("outbox dequeue failed", "err", err)
			return
		}
		if item == nil {
			return
		}

		outcome := o.client.pushPayload(ctx, item.Payload)
		switch outcome.Status {
		case StatusSuccess:
			if err := o.queue.Ack(ctx, item.ID); err != nil {
				o.logger.Error("outbox ack failed", "item", item.ID, "err", err)
				return
			}
			o.logger.Info("outbox delivered", "item", item.ID, "count", outcome.Count)

		case StatusRejected:
			if o.OnRejected != nil {
				o.OnRejected(item, outcome)
			}
			if err := o.queue.Ack(ctx, item.ID); err != nil {
				o.logger.Error("outbox ack failed", "item", item.ID, "err", err)
				return
			}
			o.logger.Warn("outbox batch rejected", "item", item.ID, "status", outcome.HTTPStatus, "detail", outcome.Detail)

		case StatusUnavailable:
			next := time.Now().UTC().Add(backoffFor(item.Attempts))
			if err := o.queue.Retry(ctx, item.ID, next); err != nil {
				o.logger.Error("outbox retry failed", "item", item.ID, "err", err)
			}
			o.logger.Warn("aggregator unavailable, will retry", "item", item.ID, "attempts", item.Attempts+1, "next", next)
			// No point trying further items while the aggregator is down.
			return
		}
	}
}

// backoffFor returns the exponential backoff delay after the given number of
// failed attempts, capped at maxBackoff.
func backoffFor(attempts int) time.Duration {
	d := baseBackoff << uint(attempts)
	if d <= 0 || d > maxBackoff {
		return maxBackoff
	}
	return d
}
