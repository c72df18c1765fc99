package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/construdata/precobase/internal/cli"
	"github.com/construdata/precobase/internal/cli/client"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "precobase",
		Short: "Precobase CLI - query government construction price tables",
		Long: `Precobase CLI provides commands to query ingested price tables.

Environment variables:
  PRECOBASE_API_URL   API base URL (default: http://localhost:8080)`,
		Version: version,
	}

	rootCmd.PersistentFlags().Bool("output", false, "Output as JSON")
	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides env)")
	cli.AddHelpJSONFlag(rootCmd)

	rootCmd.AddCommand(client.SearchCmd())
	rootCmd.AddCommand(client.ServicesCmd())
	rootCmd.AddCommand(client.FilesCmd())
	rootCmd.AddCommand(client.StatsCmd())
	rootCmd.AddCommand(client.RescanCmd())
	rootCmd.AddCommand(client.RebuildCmd())

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
