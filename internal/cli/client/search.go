package client

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// SemanticSearchRequest represents the semantic search API request.
type SemanticSearchRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k,omitempty"`
}

// SemanticResult represents one ranked semantic match.
type SemanticResult struct {
	ID             string  `json:"id"`
	Text           string  `json:"text"`
	File           string  `json:"file"`
	Sheet          string  `json:"sheet"`
	RowIndex       int     `json:"row_index"`
	Classification string  `json:"classification"`
	Relevance      float64 `json:"relevance"`
}

// SemanticSearchResponse represents the semantic search API response.
type SemanticSearchResponse struct {
	Results []SemanticResult `json:"results"`
}

// SearchCmd creates the search command.
func SearchCmd() *cobra.Command {
	var topK int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Semantic search over indexed price tables",
		Long:  "Searches the chunk index by meaning and returns the closest rows with relevance scores.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runSearch(cmd, args[0], topK, outputJSON)
		},
	}

	cmd.Flags().IntVarP(&topK, "top-k", "k", 5, "Number of results to return")

	return cmd
}

func runSearch(cmd *cobra.Command, query string, topK int, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Post("/search", SemanticSearchRequest{
		Query: query,
		TopK:  topK,
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	var searchResp SemanticSearchResponse
	if err := json.Unmarshal(resp.Data, &searchResp); err != nil {
		return fmt.Errorf("failed to parse search results: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(searchResp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(searchResp.Results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Printf("Found %d results:\n\n", len(searchResp.Results))
	for i, result := range searchResp.Results {
		fmt.Printf("%d. [%s] %s, linha %d (%.2f)\n",
			i+1, result.Classification, result.File, result.RowIndex, result.Relevance)
		text := result.Text
		if len(text) > 200 {
			text = text[:197] + "..."
		}
		for _, line := range strings.Split(text, "\n") {
			fmt.Printf("   %s\n", line)
		}
		if i < len(searchResp.Results)-1 {
			fmt.Println(strings.Repeat("-", 40))
		}
	}

	return nil
}
