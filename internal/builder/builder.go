package builder

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/civix-app/civix-backend/internal/api"
	civicsapi "github.com/civix-app/civix-backend/internal/api/civics"
	decisionapi "github.com/civix-app/civix-backend/internal/api/decision"
	jurisdictionapi "github.com/civix-app/civix-backend/internal/api/jurisdiction"
	queryapi "github.com/civix-app/civix-backend/internal/api/query"
	"github.com/civix-app/civix-backend/internal/civics"
	"github.com/civix-app/civix-backend/internal/config"
	"github.com/civix-app/civix-backend/internal/integration/completion"
	"github.com/civix-app/civix-backend/internal/integration/embedding"
	"github.com/civix-app/civix-backend/internal/pkg/validator"
	"github.com/civix-app/civix-backend/internal/repository"
	"github.com/civix-app/civix-backend/internal/rules"
	"github.com/civix-app/civix-backend/internal/usecase/decision"
	"github.com/civix-app/civix-backend/internal/usecase/query"
	"go.uber.org/zap"
)

func Build() (*App, error) {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.LogLevel, cfg.Environment)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	logger.Info("Building application",
		zap.String("environment", cfg.Environment),
		zap.String("server_addr", cfg.ServerAddr),
	)

	// Setup database connection
	db, err := setupDatabase(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("setup database: %w", err)
	}

	// Run database migrations
	logger.Info("Running database migrations")
	if err := repository.RunMigrations(cfg.DatabaseURL); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("Database migrations completed successfully")

	// Initialize repositories
	jurisdictionRepo := repository.NewJurisdictionPostgres(db)
	ordinanceRepo := repository.NewOrdinancePostgres(db)
	rulesetRepo := repository.NewRulesetPostgres(db)
	logger.Info("Repositories initialized")

	// Initialize external service connectors (with mock support)
	var embedder query.EmbeddingConnector
	var completer query.CompletionProvider

	if cfg.EnableMocks {
		logger.Info("Using mock connectors for external services")
		embedder = embedding.NewMockConnector(logger)
		completer = completion.NewMockProvider(logger)
	} else {
		logger.Info("Using real connectors for external services",
			zap.String("completion_provider", cfg.CompletionConnectorCfg.Provider),
		)
		embedder = embedding.NewConnector(cfg.EmbeddingConnectorCfg, logger)
		completer, err = completion.NewProvider(cfg.CompletionConnectorCfg, logger)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("initialize completion provider: %w", err)
		}
	}

	// Initialize structured civics data
	civicsStore := civics.NewStore(cfg.RulesDataDir, logger)
	civicsMatcher := civics.NewMatcher(civicsStore)
	logger.Info("Structured civics store initialized", zap.String("rules_dir", cfg.RulesDataDir))

	// Initialize validators
	requestValidator := validator.NewRequestValidator(cfg.DefaultTopK, cfg.MaxTopK)

	// Initialize use cases
	queryUC := query.NewUsecase(
		jurisdictionRepo,
		ordinanceRepo,
		embedder,
		completer,
		requestValidator,
		cfg.CompletionConnectorCfg.MaxTokens,
		cfg.CompletionConnectorCfg.Temperature,
		logger,
	)

	decisionUC := decision.NewUsecase(
		jurisdictionRepo,
		rulesetRepo,
		rules.NewEvaluator(logger),
		requestValidator,
		logger,
	)
	logger.Info("Use cases initialized")

	// Setup API handlers
	queryHandler := queryapi.NewHandler(queryUC)
	decisionHandler := decisionapi.NewHandler(decisionUC)
	civicsHandler := civicsapi.NewHandler(civicsStore, civicsMatcher)
	jurisdictionHandler := jurisdictionapi.NewHandler(jurisdictionRepo)
	logger.Info("API handlers initialized")

	// Setup router
	router := api.SetupRouter(queryHandler, decisionHandler, civicsHandler, jurisdictionHandler, logger)
	logger.Info("HTTP router configured")

	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("Application built successfully")

	return &App{
		server: server,
		db:     db,
		logger: logger,
	}, nil
}
