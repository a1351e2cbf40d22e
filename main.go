package main

import (
	"context"
	"log"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/contoso-bi/nlsql-engine/pkg/config"
	"github.com/contoso-bi/nlsql-engine/pkg/handlers"
	"github.com/contoso-bi/nlsql-engine/pkg/history"
	"github.com/contoso-bi/nlsql-engine/pkg/intent"
	"github.com/contoso-bi/nlsql-engine/pkg/llm"
	"github.com/contoso-bi/nlsql-engine/pkg/logging"
	"github.com/contoso-bi/nlsql-engine/pkg/pipeline"
	"github.com/contoso-bi/nlsql-engine/pkg/prompts"
	"github.com/contoso-bi/nlsql-engine/pkg/retry"
	"github.com/contoso-bi/nlsql-engine/pkg/schema"
	"github.com/contoso-bi/nlsql-engine/pkg/schema/mssql"
	"github.com/contoso-bi/nlsql-engine/pkg/sqlcheck"
	"github.com/contoso-bi/nlsql-engine/pkg/templates"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.NewLogger(cfg.LogLevel, cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Env),
		zap.Int("backend_chain", len(cfg.Backends.Chain)),
		zap.Bool("history_enabled", cfg.History.Enabled))

	ctx := context.Background()

	catalog := buildCatalog(ctx, cfg, logger)
	chain, correction := buildBackends(cfg, logger)
	sink := buildHistorySink(ctx, cfg, logger)

	current, err := catalog.Current()
	if err != nil {
		log.Fatalf("No schema catalog available: %v", err)
	}

	engine := pipeline.NewEngine(pipeline.EngineConfig{
		Classifier:        intent.NewClassifier(logger),
		Router:            templates.NewRouter(logger),
		PromptBuilder:     prompts.NewBuilder(catalog, logger),
		Chain:             chain,
		CorrectionBackend: correction,
		Normalizer:        sqlcheck.NewNormalizer(current.TableNames(), logger),
		Validator:         sqlcheck.NewValidator(logger),
		Sink:              sink,
		MaxAttempts:       cfg.Pipeline.MaxAttempts,
	}, logger)

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewTranslateHandler(engine, logger).RegisterRoutes(mux)

	addr := net.JoinHostPort(cfg.BindAddr, cfg.Port)
	logger.Info("Starting nlsql-engine",
		zap.String("addr", addr),
		zap.String("version", cfg.Version))
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// buildCatalog seeds the schema store with the built-in Contoso catalog and,
// when warehouse credentials are configured, refreshes it from sys.tables
// and keeps refreshing in the background.
func buildCatalog(ctx context.Context, cfg *config.Config, logger *zap.Logger) *schema.Store {
	var provider schema.Provider = schema.NewStaticProvider(schema.ContosoTables())

	if cfg.Warehouse.User != "" {
		discoverer, err := retry.DoWithResult(ctx, retry.DefaultConfig(), func() (*mssql.Discoverer, error) {
			return mssql.NewDiscoverer(ctx, cfg.Warehouse.ConnectionString(), logger)
		})
		if err != nil {
			logger.Warn("Warehouse unreachable, using built-in catalog", zap.Error(err))
		} else {
			provider = discoverer
		}
	}

	store := schema.NewStore(provider, logger)
	store.Seed(schema.NewCatalog(schema.ContosoTables()))

	if _, isStatic := provider.(*schema.StaticProvider); !isStatic {
		if err := store.Refresh(ctx); err != nil {
			logger.Warn("Initial catalog refresh failed, keeping built-in catalog", zap.Error(err))
		}
		if cfg.Warehouse.RefreshMinutes > 0 {
			go refreshLoop(ctx, store, time.Duration(cfg.Warehouse.RefreshMinutes)*time.Minute, logger)
		}
	}
	return store
}

func refreshLoop(ctx context.Context, store *schema.Store, interval time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := store.Refresh(ctx); err != nil {
				logger.Warn("Catalog refresh failed, keeping previous snapshot", zap.Error(err))
			}
		case <-ctx.Done():
			return
		}
	}
}

func buildBackends(cfg *config.Config, logger *zap.Logger) (*llm.Chain, llm.Backend) {
	var backends []llm.Backend
	for _, bc := range cfg.Backends.Chain {
		client, err := llm.NewClient(&llm.ClientConfig{
			Name:     bc.Name,
			Endpoint: bc.Endpoint,
			Model:    bc.Model,
			APIKey:   bc.APIKey,
			Timeout:  bc.Timeout(),
		}, logger)
		if err != nil {
			log.Fatalf("Failed to create backend %q: %v", bc.Name, err)
		}
		backends = append(backends, client)
	}
	if len(backends) == 0 {
		log.Fatalf("No generation backends configured")
	}

	var cache *llm.ResponseCache
	if cfg.Pipeline.EnableResponseCache {
		cache = llm.NewResponseCache()
	}
	chain := llm.NewChain(backends, cache, logger)

	// Anthropic, when configured, handles the correction pass; otherwise
	// the chain head does.
	var correction llm.Backend
	if cfg.Backends.Anthropic.APIKey != "" {
		anthropicBackend, err := llm.NewAnthropicBackend(&llm.AnthropicConfig{
			APIKey:  cfg.Backends.Anthropic.APIKey,
			Model:   cfg.Backends.Anthropic.Model,
			Timeout: cfg.Backends.Anthropic.Timeout(),
		}, logger)
		if err != nil {
			log.Fatalf("Failed to create Anthropic backend: %v", err)
		}
		correction = anthropicBackend
	}
	return chain, correction
}

func buildHistorySink(ctx context.Context, cfg *config.Config, logger *zap.Logger) history.Sink {
	if !cfg.History.Enabled {
		return history.NopSink{}
	}
	sink, err := retry.DoWithResult(ctx, retry.DefaultConfig(), func() (*history.PostgresSink, error) {
		return history.NewPostgresSink(ctx, &history.PostgresConfig{
			URL:            cfg.History.URL(),
			MigrationsPath: cfg.History.MigrationsPath,
			MaxConnections: cfg.History.MaxConnections,
		}, logger)
	})
	if err != nil {
		logger.Warn("History sink unavailable, continuing without persistence", zap.Error(err))
		return history.NopSink{}
	}
	return sink
}
