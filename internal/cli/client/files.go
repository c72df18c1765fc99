package client

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"
)

// FileItem represents one processed file audit record.
type FileItem struct {
	ID             string  `json:"id"`
	FileName       string  `json:"file_name"`
	Status         string  `json:"status"`
	Classification string  `json:"classification,omitempty"`
	Confidence     float64 `json:"confidence"`
	ServicesCount  int     `json:"services_count"`
	Reason         string  `json:"reason,omitempty"`
	ProcessedAt    string  `json:"processed_at,omitempty"`
}

// FileListResponse represents the file list API response.
type FileListResponse struct {
	Items   []FileItem `json:"items"`
	Cursor  string     `json:"cursor,omitempty"`
	HasMore bool       `json:"has_more"`
}

// FilesCmd creates the files command.
func FilesCmd() *cobra.Command {
	var (
		limit  int
		cursor string
	)

	cmd := &cobra.Command{
		Use:   "files",
		Short: "List processed file records",
		Long:  "Lists the audit trail of every file the ingestion pipeline has observed.",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runFiles(cmd, limit, cursor, outputJSON)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of results")
	cmd.Flags().StringVar(&cursor, "cursor", "", "Pagination cursor from previous response")

	return cmd
}

func runFiles(cmd *cobra.Command, limit int, cursor string, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	if cursor != "" {
		params.Set("cursor", cursor)
	}

	resp, err := api.Get("/files?" + params.Encode())
	if err != nil {
		return fmt.Errorf("failed to list files: %w", err)
	}

	var listResp FileListResponse
	if err := json.Unmarshal(resp.Data, &listResp); err != nil {
		return fmt.Errorf("failed to parse file list: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(listResp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(listResp.Items) == 0 {
		fmt.Println("No files found.")
		return nil
	}

	for _, item := range listResp.Items {
		fmt.Printf("  %-12s %s", item.Status, item.FileName)
		if item.Classification != "" {
			fmt.Printf(" [%s %.0f%%]", item.Classification, item.Confidence*100)
		}
		if item.ServicesCount > 0 {
			fmt.Printf(" (%d services)", item.ServicesCount)
		}
		fmt.Println()
		if item.Reason != "" {
			fmt.Printf("    %s\n", item.Reason)
		}
	}
	if listResp.HasMore && listResp.Cursor != "" {
		fmt.Printf("\nMore results available. Use --cursor %s\n", listResp.Cursor)
	}

	return nil
}
