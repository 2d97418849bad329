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
	"go.uber.org/zap"

	"github.com/kailas-cloud/petsearch/internal/config"
	dbRedis "github.com/kailas-cloud/petsearch/internal/db/redis"
	"github.com/kailas-cloud/petsearch/internal/domain"
	logpkg "github.com/kailas-cloud/petsearch/internal/logger"
	"github.com/kailas-cloud/petsearch/internal/metrics"
	catalogrepo "github.com/kailas-cloud/petsearch/internal/repository/catalog"
	"github.com/kailas-cloud/petsearch/internal/repository/embcache"
	profilerepo "github.com/kailas-cloud/petsearch/internal/repository/profile"
	chiTransport "github.com/kailas-cloud/petsearch/internal/transport/chi"
	openaiEmb "github.com/kailas-cloud/petsearch/internal/transport/openai"
	cataloguc "github.com/kailas-cloud/petsearch/internal/usecase/catalog"
	chatuc "github.com/kailas-cloud/petsearch/internal/usecase/chat"
	"github.com/kailas-cloud/petsearch/internal/usecase/compose"
	healthuc "github.com/kailas-cloud/petsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/petsearch/internal/usecase/search"
	sessionuc "github.com/kailas-cloud/petsearch/internal/usecase/session"
	"github.com/kailas-cloud/petsearch/internal/version"
)

func main() {
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

	logger.Info("Starting petsearch API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		DB:       cfg.Database.DB,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterSearchMetrics()

	// Embedder chain: OpenAI provider wrapped by the KV cache.
	base := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Provider:   cfg.Embedding.Provider,
		Logger:     logger,
	})
	cacheTTL := time.Duration(cfg.Search.CacheTTLSec) * time.Second
	embedder := embcache.New(base, store, cacheTTL, metrics.EmbeddingCacheTotal, logger)
	logger.Info("Embedder created",
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
	)

	profiles, err := profilerepo.Open(cfg.Profile.Path)
	if err != nil {
		logger.Fatal("Failed to open profile store", zap.Error(err))
	}
	defer profiles.Close()

	catalogRepo := catalogrepo.New(store, embedder, cfg.Embedding.Dimensions)
	composer := compose.New(embedder).WithAlpha(cfg.Search.Alpha)
	searchSvc := searchuc.New(catalogRepo, composer, logger)

	resolver := sessionuc.NewResolver(sessionuc.NewKeywordClassifier(), logger)
	chatSvc := chatuc.New(
		chatuc.NewRegistry(), resolver, searchSvc, profiles,
		cfg.Search.MaxResults, logger,
	)

	if cfg.Catalog.ProductsFile != "" {
		ingestCtx, cancel := context.WithTimeout(ctx,
			time.Duration(cfg.Catalog.IngestTimeout)*time.Second)
		catalogSvc := cataloguc.New(catalogRepo, embedder, logger)
		n, err := catalogSvc.IngestFile(ingestCtx, cfg.Catalog.ProductsFile)
		cancel()
		if err != nil {
			logger.Fatal("Catalog ingestion failed", zap.Int("ingested", n), zap.Error(err))
		}
	} else if err := catalogRepo.EnsureIndex(ctx); err != nil {
		logger.Fatal("Failed to ensure product index", zap.Error(err))
	}

	healthSvc := healthuc.New(store, newEmbeddingHealthChecker(base), profiles)

	server := chiTransport.NewServer(chatSvc, searchSvc, profiles, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	server.Register(r)

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

	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// embeddingHealthChecker wraps domain.Embedder to implement health.EmbeddingChecker.
type embeddingHealthChecker struct {
	embedder domain.Embedder
}

func newEmbeddingHealthChecker(embedder domain.Embedder) *embeddingHealthChecker {
	return &embeddingHealthChecker{embedder: embedder}
}

func (h *embeddingHealthChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := h.embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
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

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			reqLogger.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}
