package client

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

// StatsResponse represents the stats API response.
type StatsResponse struct {
	TotalServices    int64            `json:"total_services"`
	ServicesBySource map[string]int64 `json:"services_by_source"`
	FilesByStatus    map[string]int64 `json:"files_by_status"`
	TotalChunks      int64            `json:"total_chunks"`
}

// StatsCmd creates the stats command.
func StatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show corpus statistics",
		Long:  "Shows stored service counts per source, file lifecycle counts and the vector index size.",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runStats(cmd, outputJSON)
		},
	}

	return cmd
}

func runStats(cmd *cobra.Command, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Get("/stats")
	if err != nil {
		return fmt.Errorf("failed to fetch stats: %w", err)
	}

	var stats StatsResponse
	if err := json.Unmarshal(resp.Data, &stats); err != nil {
		return fmt.Errorf("failed to parse stats: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(stats, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Printf("Services: %d\n", stats.TotalServices)
	for _, source := range sortedKeys(stats.ServicesBySource) {
		fmt.Printf("  %-12s %d\n", source, stats.ServicesBySource[source])
	}
	fmt.Printf("Chunks indexed: %d\n", stats.TotalChunks)
	fmt.Println("Files:")
	for _, status := range sortedKeys(stats.FilesByStatus) {
		fmt.Printf("  %-12s %d\n", status, stats.FilesByStatus[status])
	}

	return nil
}

func sortedKeys(m map[string]int64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
