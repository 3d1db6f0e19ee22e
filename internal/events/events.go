package events

import (
	"context"

	"github.com/groblegark/tabled/internal/model"
)

// Event topic constants
const (
	TopicSchemaCreated     = "tabled.schema.created"
	TopicSchemaUpdated     = "tabled.schema.updated"
	TopicSchemaDeactivated = "tabled.schema.deactivated"
	TopicSchemaDeleted     = "tabled.schema.deleted"

	TopicRecordsPopulated = "tabled.records.populated"
	TopicRecordsCleared   = "tabled.records.cleared"
)

// Event types

type SchemaCreated struct {
	Schema *model.Schema `json:"schema"`
}

type SchemaUpdated struct {
	Schema *model.Schema `json:"schema"`
}

type SchemaDeactivated struct {
	Schema *model.Schema `json:"schema"`
}

type SchemaDeleted struct {
	SchemaID string `json:"schema_id"`
}

// RecordsPopulated is emitted after a populate batch commits. It carries the
// batch metadata, not the payloads; consumers query the records API for data.
type RecordsPopulated struct {
	SchemaID      string `json:"schema_id"`
	SourceService string `json:"source_service"`
	Count         int    `json:"count"`
}

type RecordsCleared struct {
	SchemaID string `json:"schema_id"`
	Count    int    `json:"count"`
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}
