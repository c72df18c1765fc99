package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// IngestSummary mirrors the ingestion summary returned by the admin endpoints.
type IngestSummary struct {
	Processed   int   `json:"processed"`
	Discarded   int   `json:"discarded"`
	Failed      int   `json:"failed"`
	Skipped     int   `json:"skipped"`
	Services    int   `json:"services"`
	TotalChunks int64 `json:"total_chunks"`
}

// IngestRunResponse represents the rescan/rebuild API response.
type IngestRunResponse struct {
	Message string        `json:"message"`
	Summary IngestSummary `json:"summary"`
}

// RescanCmd creates the rescan command.
func RescanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rescan",
		Short: "Trigger a rescan of the watch directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runIngestEndpoint(cmd, "/admin/rescan", outputJSON)
		},
	}
}

// RebuildCmd creates the rebuild command.
func RebuildCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rebuild",
		Short: "Wipe both stores and re-ingest everything",
		Long:  "Deletes all stored services and chunks, then reprocesses the entire watch directory.",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runIngestEndpoint(cmd, "/admin/rebuild", outputJSON)
		},
	}
}

func runIngestEndpoint(cmd *cobra.Command, path string, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Post(path, nil)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	var runResp IngestRunResponse
	if err := json.Unmarshal(resp.Data, &runResp); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(runResp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Println(runResp.Message)
	fmt.Printf("%d processed, %d discarded, %d failed, %d skipped\n",
		runResp.Summary.Processed, runResp.Summary.Discarded,
		runResp.Summary.Failed, runResp.Summary.Skipped)
	fmt.Printf("%d services stored, %d chunks indexed\n",
		runResp.Summary.Services, runResp.Summary.TotalChunks)

	return nil
}
