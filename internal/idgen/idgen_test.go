package idgen

import (
	"strings"
	"testing"
)

func TestSchemaID(t *testing.T) {
	id, err := Schema()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(id, SchemaPrefix) {
		t.Errorf("id %q missing prefix %q", id, SchemaPrefix)
	}
	if len(id) != len(SchemaPrefix)+Length {
		t.Errorf("id %q has length %d, want %d", id, len(id), len(SchemaPrefix)+Length)
	}
}

func TestRecordIDsUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id, err := Record()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}
