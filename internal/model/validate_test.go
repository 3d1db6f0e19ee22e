package model

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestValidateSchema_OK(t *testing.T) {
	s := &Schema{
		Name:         "employees",
		FieldsConfig: json.RawMessage(`{"fields":[{"name":"full_name","type":"string"},{"name":"email","type":"string"}]}`),
	}
	if err := ValidateSchema(s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateSchema_ExtraKeysAllowed(t *testing.T) {
	s := &Schema{
		Name:         "products",
		FieldsConfig: json.RawMessage(`{"fields":[{"name":"sku","type":"string","required":true}],"version":2}`),
	}
	if err := ValidateSchema(s); err != nil {
		t.Fatalf("extra keys should be permitted: %v", err)
	}
}

func TestValidateSchema_Invalid(t *testing.T) {
	for _, tc := range []struct {
		name   string
		schema *Schema
		field  string
	}{
		{
			name:   "missing name",
			schema: &Schema{FieldsConfig: json.RawMessage(`{"fields":[]}`)},
			field:  "name",
		},
		{
			name:   "missing fields_config",
			schema: &Schema{Name: "x"},
			field:  "fields_config",
		},
		{
			name:   "fields_config not an object",
			schema: &Schema{Name: "x", FieldsConfig: json.RawMessage(`[1,2]`)},
			field:  "fields_config",
		},
		{
			name:   "missing fields key",
			schema: &Schema{Name: "x", FieldsConfig: json.RawMessage(`{"columns":[]}`)},
			field:  "fields_config",
		},
		{
			name:   "fields not an array",
			schema: &Schema{Name: "x", FieldsConfig: json.RawMessage(`{"fields":{"name":"a"}}`)},
			field:  "fields_config",
		},
		{
			name:   "entry not an object",
			schema: &Schema{Name: "x", FieldsConfig: json.RawMessage(`{"fields":["name"]}`)},
			field:  "fields_config",
		},
		{
			name:   "entry missing type",
			schema: &Schema{Name: "x", FieldsConfig: json.RawMessage(`{"fields":[{"name":"a"}]}`)},
			field:  "fields_config",
		},
		{
			name:   "entry missing name",
			schema: &Schema{Name: "x", FieldsConfig: json.RawMessage(`{"fields":[{"type":"string"}]}`)},
			field:  "fields_config",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateSchema(tc.schema)
			if err == nil {
				t.Fatal("expected validation error")
			}
			ve, ok := err.(*ValidationError)
			if !ok {
				t.Fatalf("expected *ValidationError, got %T", err)
			}
			if _, ok := ve.FieldMap()[tc.field]; !ok {
				t.Errorf("expected error on field %q, got %v", tc.field, ve.FieldMap())
			}
		})
	}
}

func TestValidatePopulate(t *testing.T) {
	obj := json.RawMessage(`{"id":"1","full_name":"A B"}`)

	if err := ValidatePopulate(&PopulateRequest{SourceService: "user_service", Data: []json.RawMessage{obj}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, tc := range []struct {
		name  string
		req   *PopulateRequest
		field string
	}{
		{"missing source_service", &PopulateRequest{Data: []json.RawMessage{obj}}, "source_service"},
		{"source_service too long", &PopulateRequest{SourceService: strings.Repeat("x", 51), Data: []json.RawMessage{obj}}, "source_service"},
		{"empty data", &PopulateRequest{SourceService: "svc"}, "data"},
		{"scalar element", &PopulateRequest{SourceService: "svc", Data: []json.RawMessage{json.RawMessage(`42`)}}, "data"},
		{"array element", &PopulateRequest{SourceService: "svc", Data: []json.RawMessage{json.RawMessage(`[1]`)}}, "data"},
		{"null element", &PopulateRequest{SourceService: "svc", Data: []json.RawMessage{json.RawMessage(`null`)}}, "data"},
		{"mixed batch", &PopulateRequest{SourceService: "svc", Data: []json.RawMessage{obj, json.RawMessage(`"s"`)}}, "data"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidatePopulate(tc.req)
			if err == nil {
				t.Fatal("expected validation error")
			}
			ve, ok := err.(*ValidationError)
			if !ok {
				t.Fatalf("expected *ValidationError, got %T", err)
			}
			if _, ok := ve.FieldMap()[tc.field]; !ok {
				t.Errorf("expected error on field %q, got %v", tc.field, ve.FieldMap())
			}
		})
	}
}

func TestSourceIDOf(t *testing.T) {
	for _, tc := range []struct {
		elem string
		want string
	}{
		{`{"id":"42","name":"x"}`, "42"},
		{`{"id":7}`, "7"},
		{`{"name":"x"}`, ""},
		{`{}`, ""},
	} {
		if got := SourceIDOf(json.RawMessage(tc.elem)); got != tc.want {
			t.Errorf("SourceIDOf(%s) = %q, want %q", tc.elem, got, tc.want)
		}
	}
}

func TestFieldNames(t *testing.T) {
	s := &Schema{FieldsConfig: json.RawMessage(`{"fields":[{"name":"a","type":"int"},{"name":"b","type":"string"}]}`)}
	got := s.FieldNames()
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("FieldNames() = %v", got)
	}
}
