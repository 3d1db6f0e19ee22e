package main

import (
	"encoding/json"
	"testing"
)

func TestParseFieldDefs(t *testing.T) {
	raw, err := parseFieldDefs([]string{"full_name=string", "salary=decimal"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var cfg struct {
		Fields []struct {
			Name string `json:"name"`
			Type string `json:"type"`
		} `json:"fields"`
	}
	if err := json.Unmarshal(raw, &cfg); err != nil {
		t.Fatalf("bad JSON: %v", err)
	}
	if len(cfg.Fields) != 2 {
		t.Fatalf("got %d fields, want 2", len(cfg.Fields))
	}
	if cfg.Fields[0].Name != "full_name" || cfg.Fields[0].Type != "string" {
		t.Errorf("fields[0] = %+v", cfg.Fields[0])
	}
	if cfg.Fields[1].Name != "salary" || cfg.Fields[1].Type != "decimal" {
		t.Errorf("fields[1] = %+v", cfg.Fields[1])
	}
}

func TestParseFieldDefs_Invalid(t *testing.T) {
	for _, pair := range []string{"noequals", "=string", "name="} {
		if _, err := parseFieldDefs([]string{pair}); err == nil {
			t.Errorf("parseFieldDefs(%q) expected error", pair)
		}
	}
}
