package container

import (
	"context"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"datasense/adapters/excel"
	"datasense/adapters/llm"
	"datasense/adapters/llm/heuristic"
	"datasense/adapters/memory"
	"datasense/adapters/postgres"
	"datasense/app"
	"datasense/internal/config"
	"datasense/internal/correlation"
	"datasense/internal/errors"
	"datasense/internal/migration"
	"datasense/internal/usage"
	"datasense/ports"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config

	// Infrastructure; DB is nil when the in-memory store is used
	DB *sqlx.DB

	// Repositories (data access layer)
	AnalysisRepo ports.AnalysisRepository
	UsageRepo    ports.LLMUsageRepository

	// Usage tracks LLM token spend
	Usage *usage.Service

	// AI components; Narrator is nil unless narratives are enabled
	Analyzer ports.DocumentAnalyzer
	Narrator ports.Narrator

	Service *app.AnalysisService
}

// New creates a new dependency injection container
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	return &Container{Config: cfg}, nil
}

// Init connects storage, builds the AI components and the analysis service
func (c *Container) Init(ctx context.Context) error {
	if err := c.initRepositories(ctx); err != nil {
		return fmt.Errorf("failed to initialize repositories: %w", err)
	}
	c.Usage = usage.NewService(c.UsageRepo)
	if err := c.initAIComponents(); err != nil {
		return fmt.Errorf("failed to initialize AI components: %w", err)
	}

	c.Service = app.NewAnalysisService(c.AnalysisRepo, c.Analyzer, c.Narrator, app.ServiceOptions{
		Reader: c.ReaderConfig(),
		Correlation: correlation.Options{
			NumericThreshold: c.Config.Analysis.NumericThreshold,
			ThemeThreshold:   c.Config.Analysis.ThemeThreshold,
		},
	})

	log.Printf("Container initialized (store: %s, provider: %s)", c.storeName(), c.Config.AI.Provider)
	return nil
}

// ReaderConfig returns the upload limits from configuration
func (c *Container) ReaderConfig() excel.ReaderConfig {
	return excel.ReaderConfig{
		MaxRows:      c.Config.Limits.MaxRows,
		MaxFileBytes: c.Config.Limits.MaxFileBytes,
	}
}

// initRepositories uses Postgres when a database URL is configured, else the in-memory store
func (c *Container) initRepositories(ctx context.Context) error {
	if c.Config.Database.URL == "" {
		c.AnalysisRepo = memory.NewAnalysisRepository()
		c.UsageRepo = memory.NewLLMUsageRepository()
		return nil
	}

	db, err := Connect(ctx, c.Config.Database.URL)
	if err != nil {
		return err
	}
	c.DB = db
	c.AnalysisRepo = postgres.NewAnalysisRepository(db)
	c.UsageRepo = postgres.NewLLMUsageRepository(db)
	return nil
}

// Connect opens the database and runs migrations
func Connect(ctx context.Context, url string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", url)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}
	if err := migration.NewRunner().Run(ctx, db); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "database migration failed")
	}
	return db, nil
}

// LLMConfig maps application settings onto the LLM adapter configuration
func (c *Container) LLMConfig() llm.Config {
	ai := c.Config.AI
	return llm.Config{
		Provider:            ai.Provider,
		Model:               ai.Model,
		APIKey:              ai.APIKey(),
		BaseURL:             ai.BaseURL,
		Temperature:         ai.Temperature,
		MaxTokens:           ai.MaxTokens,
		Timeout:             ai.Timeout,
		FallbackToHeuristic: true,
	}
}

// initAIComponents builds the document analyzer and, when enabled, the narrator
func (c *Container) initAIComponents() error {
	cfg := c.LLMConfig()
	analyzer, err := llm.NewDocumentAnalyzer(cfg, heuristic.NewAnalyzer(), c.Usage)
	if err != nil {
		return err
	}
	c.Analyzer = analyzer

	if !c.Config.AI.Narrative || cfg.Provider == llm.ProviderHeuristic {
		return nil
	}
	client, err := llm.NewClient(cfg)
	if err != nil {
		log.Printf("Warning: narratives disabled: %v", err)
		return nil
	}
	c.Narrator = llm.NewNarrator(cfg, client, c.Usage)
	return nil
}

// HealthCheck pings the database. The in-memory store is always healthy.
func (c *Container) HealthCheck(ctx context.Context) error {
	if c.DB == nil {
		return nil
	}
	return c.DB.PingContext(ctx)
}

func (c *Container) storeName() string {
	if c.DB != nil {
		return "postgres"
	}
	return "memory"
}

// Shutdown waits for pending usage writes and releases held resources
func (c *Container) Shutdown(ctx context.Context) error {
	if c.Usage != nil {
		c.Usage.Flush()
	}
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
