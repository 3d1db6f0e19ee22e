package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/groblegark/tabled/internal/client"
	"github.com/spf13/cobra"
)

// parseFieldDefs converts -f name=type pairs into a fields_config JSON object.
func parseFieldDefs(pairs []string) (json.RawMessage, error) {
	type fieldDef struct {
		Name string `json:"name"`
		Type string `json:"type"`
	}
	defs := make([]fieldDef, 0, len(pairs))
	for _, p := range pairs {
		name, typ, ok := strings.Cut(p, "=")
		if !ok || name == "" || typ == "" {
			return nil, fmt.Errorf("invalid field %q: expected name=type", p)
		}
		defs = append(defs, fieldDef{Name: name, Type: typ})
	}
	return json.Marshal(map[string]any{"fields": defs})
}

// resolveFieldsConfig picks the fields_config source: an explicit JSON
// document wins over repeatable -f pairs.
func resolveFieldsConfig(cmd *cobra.Command) (json.RawMessage, error) {
	rawJSON, _ := cmd.Flags().GetString("fields-config")
	pairs, _ := cmd.Flags().GetStringArray("field")

	if rawJSON != "" {
		if len(pairs) > 0 {
			return nil, fmt.Errorf("--fields-config and --field are mutually exclusive")
		}
		return json.RawMessage(rawJSON), nil
	}
	if len(pairs) == 0 {
		return nil, nil
	}
	return parseFieldDefs(pairs)
}

var schemaCmd = &cobra.Command{
	Use:     "schema",
	Short:   "Manage schemas",
	GroupID: "schemas",
}

var schemaCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new schema",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		description, _ := cmd.Flags().GetString("description")
		fieldsConfig, err := resolveFieldsConfig(cmd)
		if err != nil {
			return err
		}

		req := &client.CreateSchemaRequest{
			Name:         args[0],
			Description:  description,
			FieldsConfig: fieldsConfig,
		}

		schema, err := tabledClient.CreateSchema(context.Background(), req)
		if err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}

		if jsonOutput {
			printSchemaJSON(schema)
		} else {
			printSchemaTable(schema)
		}
		return nil
	},
}

var schemaListCmd = &cobra.Command{
	Use:   "list",
	Short: "List schemas",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		search, _ := cmd.Flags().GetString("search")
		all, _ := cmd.Flags().GetBool("all")
		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")

		resp, err := tabledClient.ListSchemas(context.Background(), &client.ListSchemasRequest{
			Search:          search,
			IncludeInactive: all,
			Limit:           limit,
			Offset:          offset,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			printSchemaListJSON(resp.Schemas)
		} else {
			printSchemaListTable(resp.Schemas, resp.Total)
		}
		return nil
	},
}

var schemaShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a schema",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		schema, err := tabledClient.GetSchema(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("fetching schema: %w", err)
		}

		if jsonOutput {
			printSchemaJSON(schema)
		} else {
			printSchemaTable(schema)
		}
		return nil
	},
}

var schemaUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a schema",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := &client.UpdateSchemaRequest{}
		if cmd.Flags().Changed("name") {
			name, _ := cmd.Flags().GetString("name")
			req.Name = &name
		}
		if cmd.Flags().Changed("description") {
			description, _ := cmd.Flags().GetString("description")
			req.Description = &description
		}
		fieldsConfig, err := resolveFieldsConfig(cmd)
		if err != nil {
			return err
		}
		req.FieldsConfig = fieldsConfig

		if req.Name == nil && req.Description == nil && req.FieldsConfig == nil {
			return fmt.Errorf("nothing to update: pass --name, --description, --fields-config or --field")
		}

		schema, err := tabledClient.UpdateSchema(context.Background(), args[0], req)
		if err != nil {
			return fmt.Errorf("updating schema: %w", err)
		}

		if jsonOutput {
			printSchemaJSON(schema)
		} else {
			printSchemaTable(schema)
		}
		return nil
	},
}

var schemaDeactivateCmd = &cobra.Command{
	Use:   "deactivate <id>",
	Short: "Deactivate a schema (records stay queryable)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		schema, err := tabledClient.DeactivateSchema(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("deactivating schema: %w", err)
		}

		if jsonOutput {
			printSchemaJSON(schema)
		} else {
			fmt.Printf("schema %s (%s) deactivated\n", schema.ID, schema.Name)
		}
		return nil
	},
}

var schemaDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a schema and all its records",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		if !force {
			return fmt.Errorf("deleting a schema removes all its records; re-run with --force")
		}

		if err := tabledClient.DeleteSchema(context.Background(), args[0]); err != nil {
			return fmt.Errorf("deleting schema: %w", err)
		}

		fmt.Printf("schema %s deleted\n", args[0])
		return nil
	},
}

func init() {
	schemaCreateCmd.Flags().StringP("description", "d", "", "schema description")
	schemaCreateCmd.Flags().StringArrayP("field", "f", nil, "field declaration (name=type, repeatable)")
	schemaCreateCmd.Flags().String("fields-config", "", "raw fields_config JSON (overrides --field)")

	schemaListCmd.Flags().StringP("search", "s", "", "filter by name substring")
	schemaListCmd.Flags().BoolP("all", "a", false, "include deactivated schemas")
	schemaListCmd.Flags().Int("limit", 20, "maximum number of schemas to return")
	schemaListCmd.Flags().Int("offset", 0, "offset for pagination")

	schemaUpdateCmd.Flags().String("name", "", "new schema name")
	schemaUpdateCmd.Flags().StringP("description", "d", "", "new schema description")
	schemaUpdateCmd.Flags().StringArrayP("field", "f", nil, "field declaration (name=type, repeatable)")
	schemaUpdateCmd.Flags().String("fields-config", "", "raw fields_config JSON (overrides --field)")

	schemaDeleteCmd.Flags().Bool("force", false, "confirm deleting the schema and its records")

	schemaCmd.AddCommand(schemaCreateCmd)
	schemaCmd.AddCommand(schemaListCmd)
	schemaCmd.AddCommand(schemaShowCmd)
	schemaCmd.AddCommand(schemaUpdateCmd)
	schemaCmd.AddCommand(schemaDeactivateCmd)
	schemaCmd.AddCommand(schemaDeleteCmd)
}
