// Package client provides a transport-agnostic interface for the tabled
// service and an HTTP/JSON implementation that talks to the tabled REST API.
package client

import (
	"context"
	"encoding/json"

	"github.com/groblegark/tabled/internal/model"
)

// TabledClient is the interface that all td CLI commands use to communicate
// with the tabled server. It is implemented by HTTPClient (default) and can
// be backed by any transport.
type TabledClient interface {
	// Schema registry
	CreateSchema(ctx context.Context, req *CreateSchemaRequest) (*model.Schema, error)
	GetSchema(ctx context.Context, id string) (*model.Schema, error)
	ListSchemas(ctx context.Context, req *ListSchemasRequest) (*ListSchemasResponse, error)
	UpdateSchema(ctx context.Context, id string, req *UpdateSchemaRequest) (*model.Schema, error)
	DeactivateSchema(ctx context.Context, id string) (*model.Schema, error)
	DeleteSchema(ctx context.Context, id string) error

	// Records
	Populate(ctx context.Context, schemaID string, req *PopulateRequest) (*PopulateResponse, error)
	GetRecord(ctx context.Context, id string) (*model.Record, error)
	ListRecords(ctx context.Context, req *ListRecordsRequest) (*ListRecordsResponse, error)
	ClearRecords(ctx context.Context, schemaID string) (*ClearRecordsResponse, error)

	// Health
	Health(ctx context.Context) (string, error)

	// Lifecycle
	Close() error
}

// CreateSchemaRequest holds parameters for creating a schema.
type CreateSchemaRequest struct {
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	FieldsConfig json.RawMessage `json:"fields_config"`
}

// UpdateSchemaRequest holds optional parameters for updating a schema.
// Nil pointer fields mean "don't change".
type UpdateSchemaRequest struct {
	Name         *string         `json:"name,omitempty"`
	Description  *string         `json:"description,omitempty"`
	FieldsConfig json.RawMessage `json:"fields_config,omitempty"`
}

// ListSchemasRequest holds parameters for listing schemas.
type ListSchemasRequest struct {
	Search          string
	IncludeInactive bool
	Limit           int
	Offset          int
}

// ListSchemasResponse is the response from ListSchemas.
type ListSchemasResponse struct {
	Schemas []*model.Schema `json:"schemas"`
	Total   int             `json:"total"`
}

// PopulateRequest holds the batch payload for a populate call.
type PopulateRequest struct {
	SourceService string            `json:"source_service"`
	Data          []json.RawMessage `json:"data"`
}

// PopulateResponse is the response from Populate.
type PopulateResponse struct {
	Message string          `json:"message"`
	Count   int             `json:"count"`
	Data    []*model.Record `json:"data"`
}

// ListRecordsRequest holds parameters for listing records.
type ListRecordsRequest struct {
	SchemaID      string
	SourceService string
	Limit         int
	Offset        int
}

// ListRecordsResponse is the response from ListRecords.
type ListRecordsResponse struct {
	Records []*model.Record `json:"records"`
	Total   int             `json:"total"`
}

// ClearRecordsResponse is the response from ClearRecords.
type ClearRecordsResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}
