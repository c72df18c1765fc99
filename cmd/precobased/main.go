package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/construdata/precobase/internal/cli"
	"github.com/construdata/precobase/internal/cli/admin"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "precobased",
		Short: "Precobase daemon and admin CLI",
		Long:  "Precobase daemon for ingesting government price spreadsheets and serving the query API",
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(admin.ServeCmd())
	rootCmd.AddCommand(admin.IngestCmd())
	rootCmd.AddCommand(admin.RescanCmd())
	rootCmd.AddCommand(admin.RebuildCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
