package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/groblegark/tabled/internal/client"
	"github.com/spf13/cobra"
)

// readPopulateData reads the batch payload from a file, or stdin when the
// path is "-" or absent. Accepts either a JSON array or a single object.
func readPopulateData(path string) ([]json.RawMessage, error) {
	var r io.Reader = os.Stdin
	if path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading payload: %w", err)
	}

	var batch []json.RawMessage
	if err := json.Unmarshal(raw, &batch); err == nil {
		return batch, nil
	}
	var single map[string]json.RawMessage
	if err := json.Unmarshal(raw, &single); err == nil {
		return []json.RawMessage{raw}, nil
	}
	return nil, fmt.Errorf("payload must be a JSON array or object")
}

var populateCmd = &cobra.Command{
	Use:     "populate <schema-id> [file]",
	Short:   "Atomically ingest a batch of records into a schema",
	GroupID: "records",
	Args:    cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sourceService, _ := cmd.Flags().GetString("source")

		path := ""
		if len(args) == 2 {
			path = args[1]
		}
		data, err := readPopulateData(path)
		if err != nil {
			return err
		}

		resp, err := tabledClient.Populate(context.Background(), args[0], &client.PopulateRequest{
			SourceService: sourceService,
			Data:          data,
		})
		if err != nil {
			return fmt.Errorf("populating records: %w", err)
		}

		if jsonOutput {
			printRecordListJSON(resp.Data)
		} else {
			fmt.Println(resp.Message)
		}
		return nil
	},
}

var clearCmd = &cobra.Command{
	Use:     "clear <schema-id>",
	Short:   "Delete all records in a schema",
	GroupID: "records",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		if !force {
			return fmt.Errorf("clearing removes every record in the schema; re-run with --force")
		}

		resp, err := tabledClient.ClearRecords(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("clearing records: %w", err)
		}

		fmt.Println(resp.Message)
		return nil
	},
}

func init() {
	populateCmd.Flags().StringP("source", "s", "", "source service label for the batch (required)")
	_ = populateCmd.MarkFlagRequired("source")

	clearCmd.Flags().Bool("force", false, "confirm deleting every record in the schema")
}
