package backup

import (
	"context"
	"database/sql"

	"github.com/groblegark/tabled/internal/model"
	"github.com/groblegark/tabled/internal/store"
)

// mockStore is an in-memory store.Store for export tests.
type mockStore struct {
	schemas []*model.Schema
	records []*model.Record

	listSchemasErr error
	listRecordsErr error
}

func (m *mockStore) CreateSchema(_ context.Context, schema *model.Schema) error {
	m.schemas = append(m.schemas, schema)
	return nil
}

func (m *mockStore) GetSchema(_ context.Context, id string) (*model.Schema, error) {
	for _, s := range m.schemas {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockStore) GetSchemaByName(_ context.Context, name string) (*model.Schema, error) {
	for _, s := range m.schemas {
		if s.Name == name {
			return s, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockStore) ListSchemas(_ context.Context, filter model.SchemaFilter) ([]*model.Schema, int, error) {
	if m.listSchemasErr != nil {
		return nil, 0, m.listSchemasErr
	}
	var result []*model.Schema
	for _, s := range m.schemas {
		if !filter.IncludeInactive && !s.IsActive {
			continue
		}
		result = append(result, s)
	}
	return result, len(result), nil
}

func (m *mockStore) UpdateSchema(_ context.Context, _ *model.Schema) error { return nil }

func (m *mockStore) DeactivateSchema(_ context.Context, id string) (*model.Schema, error) {
	return m.GetSchema(context.Background(), id)
}

func (m *mockStore) DeleteSchema(_ context.Context, _ string) error { return nil }

func (m *mockStore) CreateRecord(_ context.Context, record *model.Record) error {
	m.records = append(m.records, record)
	return nil
}

func (m *mockStore) GetRecord(_ context.Context, id string) (*model.Record, error) {
	for _, r := range m.records {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockStore) ListRecords(_ context.Context, filter model.RecordFilter) ([]*model.Record, int, error) {
	if m.listRecordsErr != nil {
		return nil, 0, m.listRecordsErr
	}
	var result []*model.Record
	for _, r := range m.records {
		if filter.SchemaID != "" && r.SchemaID != filter.SchemaID {
			continue
		}
		result = append(result, r)
	}
	return result, len(result), nil
}

func (m *mockStore) ClearRecords(_ context.Context, schemaID string) (int, error) {
	kept := m.records[:0]
	count := 0
	for _, r := range m.records {
		if r.SchemaID == schemaID {
			count++
			continue
		}
		kept = append(kept, r)
	}
	m.records = kept
	return count, nil
}

func (m *mockStore) RunInTransaction(_ context.Context, fn func(tx store.Store) error) error {
	return fn(m)
}

func (m *mockStore) Close() error { return nil }
