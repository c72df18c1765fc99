package admin

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/construdata/precobase/internal/config"
	"github.com/construdata/precobase/internal/database"
	"github.com/construdata/precobase/internal/ingest"
	"github.com/construdata/precobase/internal/openai"
	"github.com/construdata/precobase/internal/repository"
)

func IngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest <path>",
		Short: "Ingest a single spreadsheet",
		Long:  "Classify, extract and store one spreadsheet without going through the watch directory",
		Args:  cobra.ExactArgs(1),
		RunE:  runIngest,
	}

	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")

	return cmd
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	outputFormat, _ := cmd.Flags().GetString("output")

	orchestrator, cleanup, err := buildOrchestrator(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	record, err := orchestrator.ProcessFile(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to ingest %s: %w", args[0], err)
	}
	if record == nil {
		fmt.Println("File unchanged since last run, skipped")
		return nil
	}

	if outputFormat == "json" {
		jsonBytes, _ := json.MarshalIndent(map[string]interface{}{
			"file":           record.FileName,
			"status":         record.Status,
			"classification": record.Classification,
			"confidence":     record.Confidence,
			"services":       record.ServicesCount,
			"reason":         record.Reason,
		}, "", "  ")
		fmt.Println(string(jsonBytes))
	} else {
		fmt.Printf("%s: %s (%s, %d services)\n",
			record.FileName, record.Status, record.Classification, record.ServicesCount)
		if record.Reason != "" {
			fmt.Printf("  reason: %s\n", record.Reason)
		}
	}

	return nil
}

func RescanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rescan",
		Short: "Ingest everything in the watch directory",
		Long:  "Walk the watch directory and process every supported file that is new or changed",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			orchestrator, cleanup, err := buildOrchestrator(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			summary, err := orchestrator.Rescan(ctx)
			if err != nil {
				return fmt.Errorf("rescan failed: %w", err)
			}
			printSummary(cmd, summary)
			return nil
		},
	}

	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")

	return cmd
}

func RebuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rebuild",
		Short: "Wipe both stores and re-ingest from scratch",
		Long:  "Delete all services and chunks, reset file records and reprocess the watch directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			orchestrator, cleanup, err := buildOrchestrator(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			summary, err := orchestrator.Rebuild(ctx)
			if err != nil {
				return fmt.Errorf("rebuild failed: %w", err)
			}
			printSummary(cmd, summary)
			return nil
		},
	}

	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")

	return cmd
}

func printSummary(cmd *cobra.Command, summary *ingest.Summary) {
	outputFormat, _ := cmd.Flags().GetString("output")
	if outputFormat == "json" {
		jsonBytes, _ := json.MarshalIndent(summary, "", "  ")
		fmt.Println(string(jsonBytes))
		return
	}
	fmt.Printf("%d processed, %d discarded, %d failed, %d skipped\n",
		summary.Processed, summary.Discarded, summary.Failed, summary.Skipped)
	fmt.Printf("%d services stored, %d chunks indexed\n", summary.Services, summary.TotalChunks)
}

func buildOrchestrator(ctx context.Context) (*ingest.Orchestrator, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if !cfg.HasOpenAI() {
		return nil, nil, fmt.Errorf("OPENAI_API_KEY is required")
	}

	pool, err := database.NewPool(ctx, database.Config{URL: cfg.DatabaseURL})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	embedder := openai.NewClient(cfg.OpenAIAPIKey)
	vectors, err := buildVectorStore(ctx, cfg, pool, embedder)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}

	orchestrator := ingest.NewOrchestrator(ingest.Options{
		WatchDir:     cfg.WatchDir,
		ProcessedDir: cfg.ProcessedDir,
		DiscardDir:   cfg.DiscardDir,
		BatchSize:    cfg.BatchSize,
		Workers:      cfg.IngestWorkers,
	}, repository.NewIngestStore(pool), repository.NewProcessedFileRepository(pool), vectors)

	return orchestrator, pool.Close, nil
}
