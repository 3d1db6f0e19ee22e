package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/groblegark/tabled/internal/model"
)

// schemaColumns is the column list used for SELECT statements on the schemas table.
const schemaColumns = `id, name, description, fields_config, is_active, created_at, updated_at`

// recordColumns is the column list used for SELECT statements on the records
// table. schema_name is joined in from schemas for display.
const recordColumns = `r.id, r.schema_id, s.name, r.data, r.source_service, r.source_id, r.created_at, r.updated_at`

// executor is the interface satisfied by both *sql.DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// escapeLike escapes LIKE/ILIKE metacharacters so a search term only ever
// matches literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func queryCreateSchema(ctx context.Context, db executor, s *model.Schema) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO schemas (id, name, description, fields_config, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		s.ID,
		s.Name,
		s.Description,
		jsonbBytes(s.FieldsConfig),
		s.IsActive,
		s.CreatedAt,
		s.UpdatedAt,
	)
	return err
}

func queryGetSchema(ctx context.Context, db executor, id string) (*model.Schema, error) {
	row := db.QueryRowContext(ctx, `SELECT `+schemaColumns+` FROM schemas WHERE id = $1`, id)
	return scanSchema(row)
}

func queryGetSchemaByName(ctx context.Context, db executor, name string) (*model.Schema, error) {
	row := db.QueryRowContext(ctx, `SELECT `+schemaColumns+` FROM schemas WHERE name = $1`, name)
	return scanSchema(row)
}

func queryListSchemas(ctx context.Context, db executor, filter model.SchemaFilter) ([]*model.Schema, int, error) {
	var (
		whereClauses []string
		args         []any
		argIdx       int
	)

	nextArg := func() string {
		argIdx++
		return fmt.Sprintf("$%d", argIdx)
	}

	if !filter.IncludeInactive {
		whereClauses = append(whereClauses, "is_active = TRUE")
	}

	if filter.Search != "" {
		p := nextArg()
		whereClauses = append(whereClauses, fmt.Sprintf("name ILIKE '%%' || %s || '%%'", p))
		args = append(args, escapeLike(filter.Search))
	}

	whereSQL := ""
	if len(whereClauses) > 0 {
		whereSQL = " WHERE " + strings.Join(whereClauses, " AND ")
	}

	// Single query with COUNT(*) OVER() to get total and rows atomically.
	// Newest-created schemas come first.
	dataQuery := "SELECT COUNT(*) OVER() AS total_count, " + schemaColumns +
		" FROM schemas" + whereSQL + " ORDER BY created_at DESC"

	if filter.Limit > 0 {
		dataQuery += " LIMIT " + nextArg()
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		dataQuery += " OFFSET " + nextArg()
		args = append(args, filter.Offset)
	}

	rows, err := db.QueryContext(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list schemas: %w", err)
	}
	defer rows.Close()

	var schemas []*model.Schema
	var total int
	for rows.Next() {
		s, t, err := scanSchemaWithTotal(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan schemas: %w", err)
		}
		total = t
		schemas = append(schemas, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("scan schemas: %w", err)
	}

	return schemas, total, nil
}

func queryUpdateSchema(ctx context.Context, db executor, s *model.Schema) error {
	return db.QueryRowContext(ctx, `
		UPDATE schemas SET
			name = $2,
			description = $3,
			fields_config = $4,
			is_active = $5,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		s.ID,
		s.Name,
		s.Description,
		jsonbBytes(s.FieldsConfig),
		s.IsActive,
	).Scan(&s.UpdatedAt)
}

func queryDeactivateSchema(ctx context.Context, db executor, id string) (*model.Schema, error) {
	row := db.QueryRowContext(ctx, `
		UPDATE schemas
		SET is_active = FALSE, updated_at = NOW()
		WHERE id = $1
		RETURNING `+schemaColumns,
		id,
	)
	return scanSchema(row)
}

func queryDeleteSchema(ctx context.Context, db executor, id string) error {
	// Records are removed by the ON DELETE CASCADE foreign key.
	res, err := db.ExecContext(ctx, `DELETE FROM schemas WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func queryCreateRecord(ctx context.Context, db executor, r *model.Record) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO records (id, schema_id, data, source_service, source_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		r.ID,
		r.SchemaID,
		jsonbBytes(r.Data),
		r.SourceService,
		r.SourceID,
		r.CreatedAt,
		r.UpdatedAt,
	)
	return err
}

func queryGetRecord(ctx context.Context, db executor, id string) (*model.Record, error) {
	row := db.QueryRowContext(ctx, `
		SELECT `+recordColumns+`
		FROM records r JOIN schemas s ON r.schema_id = s.id
		WHERE r.id = $1`, id)
	return scanRecord(row)
}

func queryListRecords(ctx context.Context, db executor, filter model.RecordFilter) ([]*model.Record, int, error) {
	var (
		whereClauses []string
		args         []any
		argIdx       int
	)

	nextArg := func() string {
		argIdx++
		return fmt.Sprintf("$%d", argIdx)
	}

	if filter.SchemaID != "" {
		whereClauses = append(whereClauses, "r.schema_id = "+nextArg())
		args = append(args, filter.SchemaID)
	}
	if filter.SourceService != "" {
		whereClauses = append(whereClauses, "r.source_service = "+nextArg())
		args = append(args, filter.SourceService)
	}

	whereSQL := ""
	if len(whereClauses) > 0 {
		whereSQL = " WHERE " + strings.Join(whereClauses, " AND ")
	}

	dataQuery := "SELECT COUNT(*) OVER() AS total_count, " + recordColumns +
		" FROM records r JOIN schemas s ON r.schema_id = s.id" + whereSQL +
		" ORDER BY r.created_at DESC"

	if filter.Limit > 0 {
		dataQuery += " LIMIT " + nextArg()
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		dataQuery += " OFFSET " + nextArg()
		args = append(args, filter.Offset)
	}

	rows, err := db.QueryContext(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var records []*model.Record
	var total int
	for rows.Next() {
		r, t, err := scanRecordWithTotal(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan records: %w", err)
		}
		total = t
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("scan records: %w", err)
	}

	return records, total, nil
}

func queryClearRecords(ctx context.Context, db executor, schemaID string) (int, error) {
	res, err := db.ExecContext(ctx, `DELETE FROM records WHERE schema_id = $1`, schemaID)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(n), nil
}
