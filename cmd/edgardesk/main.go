package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/edgardesk/edgardesk/internal/config"
	dbRedis "github.com/edgardesk/edgardesk/internal/db/redis"
	logpkg "github.com/edgardesk/edgardesk/internal/logger"
	"github.com/edgardesk/edgardesk/internal/metrics"
	budgetrepo "github.com/edgardesk/edgardesk/internal/repository/budget"
	companyrepo "github.com/edgardesk/edgardesk/internal/repository/company"
	"github.com/edgardesk/edgardesk/internal/repository/doccache"
	filingrepo "github.com/edgardesk/edgardesk/internal/repository/filing"
	chiTransport "github.com/edgardesk/edgardesk/internal/transport/chi"
	"github.com/edgardesk/edgardesk/internal/transport/edgar"
	openaiTransport "github.com/edgardesk/edgardesk/internal/transport/openai"
	analysisuc "github.com/edgardesk/edgardesk/internal/usecase/analysis"
	companyuc "github.com/edgardesk/edgardesk/internal/usecase/company"
	filinguc "github.com/edgardesk/edgardesk/internal/usecase/filing"
	healthuc "github.com/edgardesk/edgardesk/internal/usecase/health"
	searchuc "github.com/edgardesk/edgardesk/internal/usecase/search"
	usageuc "github.com/edgardesk/edgardesk/internal/usecase/usage"
	"github.com/edgardesk/edgardesk/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting edgardesk API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	// Wait for database to be ready
	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register domain metrics explicitly (no init())
	metrics.RegisterDomainMetrics()

	// Repositories and their search indexes
	companyRepo := companyrepo.New(store)
	filingRepo := filingrepo.New(store)
	if err := companyRepo.EnsureIndex(ctx); err != nil {
		logger.Fatal("Failed to create company index", zap.Error(err))
	}
	if err := filingRepo.EnsureIndex(ctx); err != nil {
		logger.Fatal("Failed to create filing index", zap.Error(err))
	}

	// EDGAR client + cached document fetcher
	edgarClient := edgar.NewClient(&edgar.Config{
		UserAgent:         cfg.Edgar.UserAgent,
		RequestsPerSecond: cfg.Edgar.RequestsPerSecond,
		Timeout:           time.Duration(cfg.Edgar.RequestTimeoutSec) * time.Second,
		Logger:            logger,
	})
	fetcher := doccache.New(
		edgarClient, store,
		time.Duration(cfg.Edgar.DocumentCacheTTLHr)*time.Hour,
		metrics.DocumentCacheTotal, logger,
	)

	// Analysis provider
	analyzer := openaiTransport.NewAnalyzer(&openaiTransport.Config{
		APIKey:   cfg.Analysis.APIKey,
		BaseURL:  cfg.Analysis.BaseURL,
		Model:    cfg.Analysis.Model,
		Provider: cfg.Analysis.Provider,
		Logger:   logger,
	})
	logger.Info("Analyzer created",
		zap.String("provider", cfg.Analysis.Provider),
		zap.String("model", cfg.Analysis.Model),
	)

	// Single BudgetTracker shared between the analysis and usage services.
	var budget *analysisuc.BudgetTracker
	budgetCfg := cfg.Analysis.Budget
	if budgetCfg.DailyTokenLimit > 0 || budgetCfg.MonthlyTokenLimit > 0 {
		action := analysisuc.BudgetActionWarn
		if budgetCfg.Action == "reject" {
			action = analysisuc.BudgetActionReject
		}
		budget = analysisuc.NewBudgetTracker(
			cfg.Analysis.Provider, budgetCfg.DailyTokenLimit, budgetCfg.MonthlyTokenLimit, action, logger,
		)
		// Connecting the persistence store loads current counters from DB.
		budgetStore := budgetrepo.New(store, 48*time.Hour, 62*24*time.Hour)
		budget.WithStore(ctx, budgetStore)
	}

	// Use case services
	filingSvc := filinguc.New(filingRepo, companyRepo, edgarClient, fetcher, logger)
	analysisSvc := analysisuc.New(filingSvc, analyzer, budget, &analysisuc.Config{
		TokensPerMinute: cfg.Analysis.TokensPerMinute,
		MaxChunkTokens:  cfg.Analysis.MaxChunkTokens,
		Concurrency:     cfg.Analysis.Concurrency,
		Model:           cfg.Analysis.Model,
		Provider:        cfg.Analysis.Provider,
	}, logger)
	companySvc := companyuc.New(companyRepo, filingRepo, edgarClient, logger)
	searchSvc := searchuc.New(companyRepo, cfg.Search.MaxResults, logger)

	// Pass nil interface (not typed nil pointer!) if budget is not configured.
	// Go gotcha: (*BudgetTracker)(nil) wrapped in BudgetReader != nil.
	var budgetReader usageuc.BudgetReader
	if budget != nil {
		budgetReader = budget
	}
	usageSvc := usageuc.New(budgetReader)

	healthSvc := healthuc.New(store).
		WithChecker("analyzer", analyzer).
		WithChecker("edgar", edgarClient)

	server := chiTransport.NewServer(
		filingSvc, analysisSvc, companySvc, searchSvc, usageSvc, healthSvc, edgarClient, logger,
	)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	if origins := nonEmpty(cfg.CORS.AllowedOrigins); len(origins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: origins,
			AllowedMethods: []string{http.MethodGet, http.MethodOptions},
			AllowedHeaders: []string{"Authorization", "Content-Type"},
			MaxAge:         300,
		}))
	}
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	// Seed the company search index from the SEC ticker file when empty.
	if cfg.Edgar.BootstrapTickers {
		go bootstrapTickers(ctx, companyRepo, edgarClient, logger)
	}

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// bootstrapTickers loads company_tickers.json into the company index when it
// holds no companies yet. Runs in the background so startup stays fast.
func bootstrapTickers(
	ctx context.Context,
	repo *companyrepo.Repo,
	client *edgar.Client,
	logger *zap.Logger,
) {
	count, err := repo.Count(ctx)
	if err != nil {
		logger.Warn("Ticker bootstrap: count failed", zap.Error(err))
		return
	}
	if count > 0 {
		logger.Info("Ticker bootstrap skipped", zap.Int("companies", count))
		return
	}

	companies, err := client.CompanyTickers(ctx)
	if err != nil {
		logger.Warn("Ticker bootstrap: fetch failed", zap.Error(err))
		return
	}
	if err := repo.UpsertMany(ctx, companies); err != nil {
		logger.Warn("Ticker bootstrap: persist failed", zap.Error(err))
		return
	}
	logger.Info("Ticker bootstrap complete", zap.Int("companies", len(companies)))
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
