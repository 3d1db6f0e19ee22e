package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/groblegark/tabled/internal/model"
	"github.com/groblegark/tabled/internal/store"
)

// header is the first JSONL record written by ExportJSONL.
type header struct {
	Version     string    `json:"version"`
	Type        string    `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
	SchemaCount int       `json:"schema_count"`
	RecordCount int       `json:"record_count"`
}

// line wraps a single JSONL line with a type discriminator.
type line struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// ExportJSONL writes all schemas and records from the store as JSONL to w.
// Schemas and records are sorted by ID so repeated exports of the same state
// produce identical output.
func ExportJSONL(ctx context.Context, s store.Store, w io.Writer) error {
	// Fetch all schemas, active and inactive (no limit).
	schemas, _, err := s.ListSchemas(ctx, model.SchemaFilter{IncludeInactive: true})
	if err != nil {
		return fmt.Errorf("list schemas: %w", err)
	}
	sort.Slice(schemas, func(i, j int) bool {
		return schemas[i].ID < schemas[j].ID
	})

	records, _, err := s.ListRecords(ctx, model.RecordFilter{})
	if err != nil {
		return fmt.Errorf("list records: %w", err)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].ID < records[j].ID
	})

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(header{
		Version:     "1",
		Type:        "header",
		Timestamp:   time.Now().UTC(),
		SchemaCount: len(schemas),
		RecordCount: len(records),
	}); err != nil {
		return fmt.Errorf("encode header: %w", err)
	}

	for _, sc := range schemas {
		if err := enc.Encode(line{Type: "schema", Data: sc}); err != nil {
			return fmt.Errorf("encode schema %s: %w", sc.ID, err)
		}
	}

	for _, r := range records {
		if err := enc.Encode(line{Type: "record", Data: r}); err != nil {
			return fmt.Errorf("encode record %s: %w", r.ID, err)
		}
	}

	return nil
}
