package model

import (
	"encoding/json"
	"time"
)

// FieldDef is a single field declaration inside a schema's fields_config.
// Name and type are required; any extra keys producers attach are preserved
// in the raw fields_config but not modeled here.
type FieldDef struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Schema is a named structural contract for a category of aggregated records.
// FieldsConfig is validated structurally at definition time only; record
// payloads are never checked against the declared field types.
type Schema struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	FieldsConfig json.RawMessage `json:"fields_config"`
	IsActive     bool            `json:"is_active"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// FieldNames returns the ordered list of field names declared in
// fields_config. Used for display and reporting only, never for payload
// enforcement.
func (s *Schema) FieldNames() []string {
	var cfg struct {
		Fields []FieldDef `json:"fields"`
	}
	if err := json.Unmarshal(s.FieldsConfig, &cfg); err != nil {
		return nil
	}
	names := make([]string, 0, len(cfg.Fields))
	for _, f := range cfg.Fields {
		names = append(names, f.Name)
	}
	return names
}

// SchemaFilter holds query parameters for listing schemas.
type SchemaFilter struct {
	// Search matches a name substring, case-insensitively.
	Search string
	// IncludeInactive includes deactivated schemas; by default only active
	// schemas are listed.
	IncludeInactive bool
	Limit           int
	Offset          int
}
