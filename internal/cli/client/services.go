package client

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// ServiceItem represents one canonical service row returned by the API.
type ServiceItem struct {
	ID          int64   `json:"id"`
	Source      string  `json:"source"`
	OriginFile  string  `json:"origin_file"`
	ServiceCode string  `json:"service_code"`
	BaseDate    string  `json:"base_date"`
	Description string  `json:"description"`
	Unit        string  `json:"unit,omitempty"`
	Value       float64 `json:"value"`
}

// ServiceListResponse represents the structured search API response.
type ServiceListResponse struct {
	Items []ServiceItem `json:"items"`
	Total int           `json:"total"`
}

// ServicesCmd creates the services command.
func ServicesCmd() *cobra.Command {
	var (
		source    string
		code      string
		limit     int
		cubFactor float64
	)

	cmd := &cobra.Command{
		Use:   "services [terms...]",
		Short: "Structured search over stored price rows",
		Long:  "Filters the relational store by AND-combined terms, source system and service code.",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runServices(cmd, args, source, code, limit, cubFactor, outputJSON)
		},
	}

	cmd.Flags().StringVarP(&source, "source", "s", "", "Filter by pricing system (sinapi, sicro, siconv, cpos, emop)")
	cmd.Flags().StringVarP(&code, "code", "c", "", "Filter by service code (punctuation ignored)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of results")
	cmd.Flags().Float64Var(&cubFactor, "cub-factor", 0, "Convert prices to this cost-index factor")

	return cmd
}

func runServices(cmd *cobra.Command, terms []string, source, code string, limit int, cubFactor float64, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	params := url.Values{}
	if len(terms) > 0 {
		params.Set("q", strings.Join(terms, " "))
	}
	if source != "" {
		params.Set("source", source)
	}
	if code != "" {
		params.Set("code", code)
	}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	if cubFactor > 0 {
		params.Set("cub_factor", strconv.FormatFloat(cubFactor, 'f', -1, 64))
	}

	resp, err := api.Get("/services?" + params.Encode())
	if err != nil {
		return fmt.Errorf("structured search failed: %w", err)
	}

	var listResp ServiceListResponse
	if err := json.Unmarshal(resp.Data, &listResp); err != nil {
		return fmt.Errorf("failed to parse results: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(listResp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(listResp.Items) == 0 {
		fmt.Println("No services found.")
		return nil
	}

	fmt.Printf("Found %d services:\n\n", listResp.Total)
	for _, item := range listResp.Items {
		desc := item.Description
		if len(desc) > 80 {
			desc = desc[:77] + "..."
		}
		fmt.Printf("  [%s] %s  R$ %.2f", item.Source, item.ServiceCode, item.Value)
		if item.Unit != "" {
			fmt.Printf("/%s", item.Unit)
		}
		fmt.Printf("  (%s)\n", item.BaseDate)
		fmt.Printf("    %s\n", desc)
	}

	return nil
}
