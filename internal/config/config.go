package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	// Directories for the ingestion pipeline. Files land in WatchDir and
	// are moved to ProcessedDir or DiscardDir after handling.
	WatchDir     string `envconfig:"WATCH_DIR" default:"./data/incoming"`
	ProcessedDir string `envconfig:"PROCESSED_DIR" default:"./data/processed"`
	DiscardDir   string `envconfig:"DISCARD_DIR" default:"./data/discarded"`

	RescanInterval time.Duration `envconfig:"RESCAN_INTERVAL" default:"5m"`
	IngestWorkers  int           `envconfig:"INGEST_WORKERS" default:"4"`
	BatchSize      int           `envconfig:"BATCH_SIZE" default:"1000"`

	// VectorBackend selects the vector store: pgvector (default) or qdrant.
	VectorBackend string `envconfig:"VECTOR_BACKEND" default:"pgvector"`

	QdrantHost       string `envconfig:"QDRANT_HOST" default:"localhost"`
	QdrantPort       int    `envconfig:"QDRANT_PORT" default:"6334"`
	QdrantTLS        bool   `envconfig:"QDRANT_TLS" default:"false"`
	QdrantCollection string `envconfig:"QDRANT_COLLECTION" default:"service_chunks"`

	OpenAIAPIKey string `envconfig:"OPENAI_API_KEY"`

	SentryDSN         string  `envconfig:"SENTRY_DSN"`
	SentryEnvironment string  `envconfig:"SENTRY_ENVIRONMENT" default:"development"`
	SentrySampleRate  float64 `envconfig:"SENTRY_SAMPLE_RATE" default:"1.0"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("PRECOBASE", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}

func (c *Config) UseQdrant() bool {
	return c.VectorBackend == "qdrant"
}
