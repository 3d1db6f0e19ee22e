package model

import (
	"encoding/json"
	"time"
)

// Record is one opaque JSON datum ingested into a schema. The payload is
// stored verbatim; records are immutable after creation and are removed only
// by a schema-scoped clear or by cascade when their schema is deleted.
type Record struct {
	ID            string          `json:"id"`
	SchemaID      string          `json:"schema_id"`
	SchemaName    string          `json:"schema_name,omitempty"` // joined in by queries, not stored
	Data          json.RawMessage `json:"data"`
	SourceService string          `json:"source_service"`
	SourceID      string          `json:"source_id"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// RecordFilter holds query parameters for listing records.
type RecordFilter struct {
	SchemaID      string
	SourceService string
	Limit         int
	Offset        int
}
