package server

import (
	"context"
	"log/slog"

	"github.com/groblegark/tabled/internal/events"
	"github.com/groblegark/tabled/internal/store"
)

// TabledServer serves the HTTP API backed by the given store and publisher.
type TabledServer struct {
	store     store.Store
	publisher events.Publisher
}

// NewTabledServer returns a new TabledServer backed by the given store and publisher.
func NewTabledServer(s store.Store, p events.Publisher) *TabledServer {
	return &TabledServer{
		store:     s,
		publisher: p,
	}
}

// publish emits an event to the publisher. Best-effort; failures are logged
// but do not block the caller.
func (s *TabledServer) publish(ctx context.Context, topic string, event any) {
	if err := s.publisher.Publish(ctx, topic, event); err != nil {
		slog.Warn("failed to publish event", "topic", topic, "error", err)
	}
}
