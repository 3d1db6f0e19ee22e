package store

import (
	"context"

	"github.com/groblegark/tabled/internal/model"
)

// Store defines the persistence interface for schemas and records.
type Store interface {
	// Schema registry
	CreateSchema(ctx context.Context, schema *model.Schema) error
	GetSchema(ctx context.Context, id string) (*model.Schema, error)
	GetSchemaByName(ctx context.Context, name string) (*model.Schema, error)
	ListSchemas(ctx context.Context, filter model.SchemaFilter) ([]*model.Schema, int, error) // returns schemas, total count, error
	UpdateSchema(ctx context.Context, schema *model.Schema) error
	DeactivateSchema(ctx context.Context, id string) (*model.Schema, error)
	DeleteSchema(ctx context.Context, id string) error

	// Record store — records are insert-only; no update path exists.
	CreateRecord(ctx context.Context, record *model.Record) error
	GetRecord(ctx context.Context, id string) (*model.Record, error)
	ListRecords(ctx context.Context, filter model.RecordFilter) ([]*model.Record, int, error)
	ClearRecords(ctx context.Context, schemaID string) (int, error) // returns rows deleted

	// Transaction support — the populate pipeline commits each batch inside
	// one transaction via this hook.
	RunInTransaction(ctx context.Context, fn func(tx Store) error) error

	// Lifecycle
	Close() error
}
