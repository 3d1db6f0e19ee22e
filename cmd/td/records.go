package main

import (
	"context"
	"fmt"
	"os"

	"github.com/groblegark/tabled/internal/client"
	"github.com/spf13/cobra"
)

var recordsCmd = &cobra.Command{
	Use:     "records",
	Short:   "Browse aggregated records",
	GroupID: "records",
}

var recordsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List records",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		schemaID, _ := cmd.Flags().GetString("schema")
		sourceService, _ := cmd.Flags().GetString("source")
		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")

		resp, err := tabledClient.ListRecords(context.Background(), &client.ListRecordsRequest{
			SchemaID:      schemaID,
			SourceService: sourceService,
			Limit:         limit,
			Offset:        offset,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			printRecordListJSON(resp.Records)
		} else {
			printRecordListTable(resp.Records, resp.Total)
		}
		return nil
	},
}

var recordsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a record with its full payload",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		record, err := tabledClient.GetRecord(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("fetching record: %w", err)
		}

		if jsonOutput {
			printRecordJSON(record)
		} else {
			printRecordTable(record)
		}
		return nil
	},
}

func init() {
	recordsListCmd.Flags().String("schema", "", "filter by schema ID")
	recordsListCmd.Flags().String("source", "", "filter by source service")
	recordsListCmd.Flags().Int("limit", 20, "maximum number of records to return")
	recordsListCmd.Flags().Int("offset", 0, "offset for pagination")

	recordsCmd.AddCommand(recordsListCmd)
	recordsCmd.AddCommand(recordsShowCmd)
}
