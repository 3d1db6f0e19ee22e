package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/groblegark/tabled/internal/model"
)

func printSchemaJSON(schema *model.Schema) {
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling JSON: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

func printSchemaTable(schema *model.Schema) {
	fmt.Printf("ID:          %s\n", schema.ID)
	fmt.Printf("Name:        %s\n", schema.Name)
	if schema.Description != "" {
		fmt.Printf("Description: %s\n", schema.Description)
	}
	fmt.Printf("Active:      %t\n", schema.IsActive)
	if names := schema.FieldNames(); len(names) > 0 {
		fmt.Printf("Fields:      %s\n", strings.Join(names, ", "))
	}
	if !schema.CreatedAt.IsZero() {
		fmt.Printf("Created At:  %s\n", schema.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	if !schema.UpdatedAt.IsZero() {
		fmt.Printf("Updated At:  %s\n", schema.UpdatedAt.Format("2006-01-02 15:04:05"))
	}
}

func printSchemaListJSON(schemas []*model.Schema) {
	data, err := json.MarshalIndent(schemas, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling JSON: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

func printSchemaListTable(schemas []*model.Schema, total int) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tACTIVE\tFIELDS\tDESCRIPTION")
	for _, s := range schemas {
		description := s.Description
		if len(description) > 50 {
			description = description[:47] + "..."
		}
		fmt.Fprintf(w, "%s\t%s\t%t\t%d\t%s\n",
			s.ID,
			s.Name,
			s.IsActive,
			len(s.FieldNames()),
			description,
		)
	}
	w.Flush()
	fmt.Printf("\n%d schemas (%d total)\n", len(schemas), total)
}

func printRecordJSON(record *model.Record) {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling JSON: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

func printRecordTable(record *model.Record) {
	fmt.Printf("ID:          %s\n", record.ID)
	fmt.Printf("Schema:      %s", record.SchemaID)
	if record.SchemaName != "" {
		fmt.Printf(" (%s)", record.SchemaName)
	}
	fmt.Println()
	fmt.Printf("Source:      %s\n", record.SourceService)
	if record.SourceID != "" {
		fmt.Printf("Source ID:   %s\n", record.SourceID)
	}
	if !record.CreatedAt.IsZero() {
		fmt.Printf("Created At:  %s\n", record.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	fmt.Printf("Data:        %s\n", indentedJSON(record.Data))
}

// indentedJSON pretty-prints a raw payload, indented to line up under the
// "Data:" label. Falls back to the raw bytes when the payload is malformed.
func indentedJSON(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, strings.Repeat(" ", 13), "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}

func printRecordListJSON(records []*model.Record) {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling JSON: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

func printRecordListTable(records []*model.Record, total int) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCHEMA\tSOURCE\tSOURCE ID\tCREATED")
	for _, r := range records {
		schema := r.SchemaName
		if schema == "" {
			schema = r.SchemaID
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			r.ID,
			schema,
			r.SourceService,
			r.SourceID,
			r.CreatedAt.Format("2006-01-02 15:04:05"),
		)
	}
	w.Flush()
	fmt.Printf("\n%d records (%d total)\n", len(records), total)
}
