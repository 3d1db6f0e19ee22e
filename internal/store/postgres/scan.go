package postgres

import (
	"database/sql"
	"encoding/json"

	"github.com/groblegark/tabled/internal/model"
)

// scannable is the interface satisfied by both *sql.Row and *sql.Rows.
type scannable interface {
	Scan(dest ...any) error
}

// scanSchema scans a single row into a model.Schema.
// The row must contain columns in the order defined by schemaColumns.
func scanSchema(row scannable) (*model.Schema, error) {
	var s model.Schema
	var (
		description  sql.NullString
		fieldsConfig []byte
	)

	err := row.Scan(
		&s.ID,
		&s.Name,
		&description,
		&fieldsConfig,
		&s.IsActive,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	s.Description = description.String
	if len(fieldsConfig) > 0 {
		s.FieldsConfig = json.RawMessage(fieldsConfig)
	}

	return &s, nil
}

// scanSchemaWithTotal scans a row that has a leading total_count column
// followed by the standard schema columns. Used by queryListSchemas with
// COUNT(*) OVER().
func scanSchemaWithTotal(row scannable) (*model.Schema, int, error) {
	var total int
	var s model.Schema
	var (
		description  sql.NullString
		fieldsConfig []byte
	)

	err := row.Scan(
		&total,
		&s.ID,
		&s.Name,
		&description,
		&fieldsConfig,
		&s.IsActive,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, 0, err
	}

	s.Description = description.String
	if len(fieldsConfig) > 0 {
		s.FieldsConfig = json.RawMessage(fieldsConfig)
	}

	return &s, total, nil
}

// scanRecord scans a single row into a model.Record.
// The row must contain columns in the order defined by recordColumns.
func scanRecord(row scannable) (*model.Record, error) {
	var r model.Record
	var (
		sourceID sql.NullString
		data     []byte
	)

	err := row.Scan(
		&r.ID,
		&r.SchemaID,
		&r.SchemaName,
		&data,
		&r.SourceService,
		&sourceID,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	r.SourceID = sourceID.String
	if len(data) > 0 {
		r.Data = json.RawMessage(data)
	}

	return &r, nil
}

// scanRecordWithTotal scans a row that has a leading total_count column
// followed by the standard record columns.
func scanRecordWithTotal(row scannable) (*model.Record, int, error) {
	var total int
	var r model.Record
	var (
		sourceID sql.NullString
		data     []byte
	)

	err := row.Scan(
		&total,
		&r.ID,
		&r.SchemaID,
		&r.SchemaName,
		&data,
		&r.SourceService,
		&sourceID,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return nil, 0, err
	}

	r.SourceID = sourceID.String
	if len(data) > 0 {
		r.Data = json.RawMessage(data)
	}

	return &r, total, nil
}

// jsonbBytes converts json.RawMessage to a []byte suitable for JSONB columns.
func jsonbBytes(m json.RawMessage) []byte {
	if len(m) == 0 {
		return nil
	}
	return []byte(m)
}
