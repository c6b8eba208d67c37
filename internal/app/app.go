package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"

	"DocForge/internal/config"
	"DocForge/internal/httpapi"
	"DocForge/internal/infrastructure/cache"
	"DocForge/internal/infrastructure/entity"
	"DocForge/internal/infrastructure/grammar"
	"DocForge/internal/infrastructure/llm"
	"DocForge/internal/infrastructure/sentiment"
	"DocForge/internal/infrastructure/storage"
	"DocForge/internal/infrastructure/summarize"
	"DocForge/internal/keypool"
	"DocForge/internal/logging"
	"DocForge/internal/ports"
	"DocForge/internal/usecase"
)

// Application wires configuration to adapters, the orchestrator, and the
// HTTP surface.
type Application struct {
	cfg    config.Config
	server *httpapi.Server
	db     *sql.DB
	logger *slog.Logger
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	if strings.EqualFold(cfg.Logging.Level, "debug") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	pool := keypool.New(cfg.Completions.APIKeys)
	dispatcher := llm.NewDispatcher(cfg.Completions, pool, logging.Component(baseLogger, "llm"))

	grammarChecker := grammar.NewChecker(cfg.Grammar.BaseURL, logging.Component(baseLogger, "grammar"))
	sentimentAnalyzer := sentiment.NewAnalyzer(cfg.NLP.Endpoint, cfg.NLP.APIKey, logging.Component(baseLogger, "sentiment"))
	entityExtractor := entity.NewExtractor(cfg.Entity.Endpoint, cfg.Entity.APIKey, logging.Component(baseLogger, "entity"))
	summarizer := summarize.NewService(dispatcher, logging.Component(baseLogger, "summarize"))

	var reportCache ports.ReportCache
	if cfg.Cache.RedisAddr != "" {
		reportCache = cache.NewRedisCache(cfg.Cache.RedisAddr, cfg.Cache.TTL(), logging.Component(baseLogger, "cache"))
		baseLogger.Info("report cache enabled", "addr", cfg.Cache.RedisAddr)
	}

	var db *sql.DB
	var repository ports.ReportRepository
	if cfg.Database.DSN != "" {
		opened, err := sql.Open("postgres", cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		db = opened
		repository = storage.NewPostgresRepository(db)
		baseLogger.Info("report history enabled")
	}

	analyzer := usecase.NewAnalyzer(usecase.AnalyzerDeps{
		Grammar:    grammarChecker,
		Sentiment:  sentimentAnalyzer,
		Entities:   entityExtractor,
		Summarizer: summarizer,
		Cache:      reportCache,
		Repository: repository,
		Logger:     logging.Component(baseLogger, "analyzer"),
	})

	server := httpapi.New(httpapi.Deps{
		Analyzer:  analyzer,
		Grammar:   grammarChecker,
		Sentiment: sentimentAnalyzer,
		Entities:  entityExtractor,
		Completer: dispatcher,
		Pool:      pool,
		Logger:    logging.Component(baseLogger, "http"),
	})

	return &Application{cfg: cfg, server: server, db: db, logger: baseLogger}, nil
}

// Run serves the HTTP API until ctx is cancelled, then shuts down
// gracefully.
func (a *Application) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    ":" + a.cfg.Server.Port,
		Handler: a.server.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("api listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("close database", "error", err)
		}
	}

	return nil
}
