package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// MaxSourceServiceLen bounds the source_service label on ingested records.
const MaxSourceServiceLen = 50

// ValidationError holds a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation failure on a named field.
type FieldError struct {
	Field   string
	Message string
}

// Error formats the validation error as a semicolon-separated list of field messages.
func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// HasErrors reports whether the validation error contains any field errors.
func (e *ValidationError) HasErrors() bool {
	return len(e.Errors) > 0
}

// FieldMap returns the errors as a field → message map, the shape used in
// HTTP 400 responses. When a field fails more than once the first message wins.
func (e *ValidationError) FieldMap() map[string]string {
	m := make(map[string]string, len(e.Errors))
	for _, fe := range e.Errors {
		if _, ok := m[fe.Field]; !ok {
			m[fe.Field] = fe.Message
		}
	}
	return m
}

// ValidateSchema checks a Schema definition for constraint violations.
// It returns a *ValidationError if any rules fail, or nil if the schema is
// valid. Only the definition is validated here; record payloads are never
// checked against it.
func ValidateSchema(s *Schema) error {
	var ve ValidationError

	if strings.TrimSpace(s.Name) == "" {
		ve.Errors = append(ve.Errors, FieldError{Field: "name", Message: "is required"})
	} else if len([]rune(s.Name)) > 100 {
		ve.Errors = append(ve.Errors, FieldError{Field: "name", Message: "must be 100 characters or fewer"})
	}

	ve.Errors = append(ve.Errors, validateFieldsConfig(s.FieldsConfig)...)

	if ve.HasErrors() {
		return &ve
	}
	return nil
}

// validateFieldsConfig enforces the structural contract on fields_config:
// a JSON object with a list-valued "fields" key whose entries each declare
// both "name" and "type". Extra keys on entries are allowed.
func validateFieldsConfig(raw json.RawMessage) []FieldError {
	if len(raw) == 0 {
		return []FieldError{{Field: "fields_config", Message: "is required"}}
	}

	var cfg map[string]json.RawMessage
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return []FieldError{{Field: "fields_config", Message: "must be an object"}}
	}

	fieldsRaw, ok := cfg["fields"]
	if !ok {
		return []FieldError{{Field: "fields_config", Message: `missing "fields" key`}}
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(fieldsRaw, &entries); err != nil {
		return []FieldError{{Field: "fields_config", Message: `"fields" must be an array`}}
	}

	for i, entry := range entries {
		var def map[string]json.RawMessage
		if err := json.Unmarshal(entry, &def); err != nil {
			return []FieldError{{
				Field:   "fields_config",
				Message: fmt.Sprintf("fields[%d] must be an object", i),
			}}
		}
		for _, key := range []string{"name", "type"} {
			if _, ok := def[key]; !ok {
				return []FieldError{{
					Field:   "fields_config",
					Message: fmt.Sprintf("fields[%d] must contain %q", i, key),
				}}
			}
		}
	}

	return nil
}

// PopulateRequest is the decoded body of a populate call. Data elements are
// kept raw so payloads are stored byte-for-byte as submitted.
type PopulateRequest struct {
	SourceService string            `json:"source_service"`
	Data          []json.RawMessage `json:"data"`
}

// ValidatePopulate checks the structural contract of a populate request:
// source_service present and bounded, data a non-empty array of JSON objects.
// It deliberately does NOT compare payload keys or types against the target
// schema's declared fields.
func ValidatePopulate(req *PopulateRequest) error {
	var ve ValidationError

	svc := strings.TrimSpace(req.SourceService)
	if svc == "" {
		ve.Errors = append(ve.Errors, FieldError{Field: "source_service", Message: "is required"})
	} else if len([]rune(svc)) > MaxSourceServiceLen {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "source_service",
			Message: fmt.Sprintf("must be %d characters or fewer", MaxSourceServiceLen),
		})
	}

	if len(req.Data) == 0 {
		ve.Errors = append(ve.Errors, FieldError{Field: "data", Message: "must be a non-empty array"})
	}
	for i, elem := range req.Data {
		if !isJSONObject(elem) {
			ve.Errors = append(ve.Errors, FieldError{
				Field:   "data",
				Message: fmt.Sprintf("element %d must be an object", i),
			})
			break
		}
	}

	if ve.HasErrors() {
		return &ve
	}
	return nil
}

// SourceIDOf extracts the "id" key of a payload element as a string, or ""
// when the key is absent. Non-string ids keep their raw JSON representation.
func SourceIDOf(elem json.RawMessage) string {
	var probe struct {
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(elem, &probe); err != nil || len(probe.ID) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(probe.ID, &s); err == nil {
		return s
	}
	return string(probe.ID)
}

// isJSONObject reports whether raw decodes to a JSON object (not a scalar,
// array, or null).
func isJSONObject(raw json.RawMessage) bool {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return false
	}
	return strings.TrimSpace(string(raw)) != "null"
}
