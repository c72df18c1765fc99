package admin

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"

	"github.com/construdata/precobase/internal/api/handlers"
	"github.com/construdata/precobase/internal/config"
	"github.com/construdata/precobase/internal/database"
	"github.com/construdata/precobase/internal/ingest"
	"github.com/construdata/precobase/internal/jobs"
	"github.com/construdata/precobase/internal/openai"
	"github.com/construdata/precobase/internal/repository"
	"github.com/construdata/precobase/internal/server"
	"github.com/construdata/precobase/internal/service"
	"github.com/construdata/precobase/internal/telemetry"
	"github.com/construdata/precobase/internal/vectorstore"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the ingestion daemon and API server",
		Long:  "Watch the spreadsheet drop directory, ingest price tables and serve the query API",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")
	cmd.Flags().Bool("no-watch", false, "Disable the filesystem watcher and rescan loop")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.SentryDSN != "" {
		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              cfg.SentryDSN,
			Environment:      cfg.SentryEnvironment,
			TracesSampleRate: cfg.SentrySampleRate,
			Debug:            cfg.Debug,
		})
		if err != nil {
			log.Printf("telemetry init failed (continuing without tracing): %v", err)
		} else {
			defer shutdownTelemetry()
		}
	}

	portFlag, _ := cmd.Flags().GetString("port")
	if portFlag != "" && portFlag != "8080" {
		cfg.Port = portFlag
	}

	pool, err := database.NewPool(ctx, database.Config{URL: cfg.DatabaseURL})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()
	log.Println("connected to database")

	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	if !noMigrate {
		if err := runMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	if !cfg.HasOpenAI() {
		return fmt.Errorf("OPENAI_API_KEY is required: both ingestion and semantic search embed text")
	}
	embedder := openai.NewClient(cfg.OpenAIAPIKey)

	vectors, err := buildVectorStore(ctx, cfg, pool, embedder)
	if err != nil {
		return err
	}

	serviceRepo := repository.NewServiceRepository(pool)
	fileRepo := repository.NewProcessedFileRepository(pool)
	ingestStore := repository.NewIngestStore(pool)

	orchestrator := ingest.NewOrchestrator(ingest.Options{
		WatchDir:     cfg.WatchDir,
		ProcessedDir: cfg.ProcessedDir,
		DiscardDir:   cfg.DiscardDir,
		BatchSize:    cfg.BatchSize,
		Workers:      cfg.IngestWorkers,
	}, ingestStore, fileRepo, vectors)

	querySvc := service.NewQueryService(serviceRepo, vectors)
	statsSvc := service.NewStatsService(serviceRepo, fileRepo, vectors)

	var rescanWorker *jobs.Worker
	noWatch, _ := cmd.Flags().GetBool("no-watch")
	if !noWatch {
		if err := os.MkdirAll(cfg.WatchDir, 0o755); err != nil {
			return fmt.Errorf("cannot create watch dir: %w", err)
		}

		watcher, err := ingest.NewWatcher(cfg.WatchDir)
		if err != nil {
			return fmt.Errorf("failed to watch %s: %w", cfg.WatchDir, err)
		}
		go watcher.Run(ctx)
		go func() {
			for path := range watcher.Events() {
				if _, err := orchestrator.ProcessFile(ctx, path); err != nil {
					log.Printf("ingest %s: %v", path, err)
				}
			}
		}()
		log.Printf("watching %s", cfg.WatchDir)

		rescanWorker = jobs.NewWorker(orchestrator, cfg.RescanInterval)
		go rescanWorker.Start(ctx)

		// Catch up on files that arrived while the daemon was down.
		go func() {
			if summary, err := orchestrator.Rescan(ctx); err != nil {
				log.Printf("startup rescan: %v", err)
			} else if summary.Processed > 0 || summary.Failed > 0 {
				log.Printf("startup rescan: %d processed, %d discarded, %d failed",
					summary.Processed, summary.Discarded, summary.Failed)
			}
		}()
	}

	router := server.NewRouter(server.RouterConfig{
		SearchHandler: handlers.NewSearchHandler(querySvc),
		FileHandler:   handlers.NewFileHandler(fileRepo),
		StatsHandler:  handlers.NewStatsHandler(statsSvc),
		IngestHandler: handlers.NewIngestHandler(orchestrator),
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	cancel()
	if rescanWorker != nil {
		rescanWorker.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}

func buildVectorStore(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, embedder vectorstore.Embedder) (vectorstore.Store, error) {
	if cfg.UseQdrant() {
		store, err := vectorstore.NewQdrant(vectorstore.QdrantConfig{
			Host:       cfg.QdrantHost,
			Port:       cfg.QdrantPort,
			UseTLS:     cfg.QdrantTLS,
			Collection: cfg.QdrantCollection,
			Dimensions: openai.DefaultEmbeddingDimensions,
		}, embedder)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to qdrant: %w", err)
		}
		if err := store.EnsureCollection(ctx); err != nil {
			return nil, fmt.Errorf("failed to ensure qdrant collection: %w", err)
		}
		log.Printf("vector store: qdrant collection '%s'", cfg.QdrantCollection)
		return store, nil
	}

	log.Println("vector store: pgvector")
	return vectorstore.NewPgvector(pool, embedder), nil
}

func runMigrations(databaseURL string) error {
	// golang-migrate needs database/sql, not a pgx pool
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	if err == migrate.ErrNilVersion {
		log.Println("migrations: database is up to date (no migrations applied)")
	} else if dirty {
		return fmt.Errorf("migration version %d is dirty - manual intervention required", version)
	} else if err == migrate.ErrNoChange {
		log.Printf("migrations: database is up to date (version %d)", version)
	} else {
		log.Printf("migrations: applied successfully (version %d)", version)
	}

	return nil
}
