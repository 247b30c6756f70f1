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

	"github.com/kailas-cloud/shotsearch/internal/config"
	"github.com/kailas-cloud/shotsearch/internal/db"
	dbBadger "github.com/kailas-cloud/shotsearch/internal/db/badger"
	dbRedis "github.com/kailas-cloud/shotsearch/internal/db/redis"
	"github.com/kailas-cloud/shotsearch/internal/domain"
	"github.com/kailas-cloud/shotsearch/internal/domain/search/request"
	logpkg "github.com/kailas-cloud/shotsearch/internal/logger"
	"github.com/kailas-cloud/shotsearch/internal/metrics"
	"github.com/kailas-cloud/shotsearch/internal/ocr"
	blobrepo "github.com/kailas-cloud/shotsearch/internal/repository/blob"
	budgetrepo "github.com/kailas-cloud/shotsearch/internal/repository/budget"
	shotrepo "github.com/kailas-cloud/shotsearch/internal/repository/screenshot"
	logrepo "github.com/kailas-cloud/shotsearch/internal/repository/searchlog"
	"github.com/kailas-cloud/shotsearch/internal/repository/visioncache"
	chiTransport "github.com/kailas-cloud/shotsearch/internal/transport/chi"
	openaiVision "github.com/kailas-cloud/shotsearch/internal/transport/openai"
	healthuc "github.com/kailas-cloud/shotsearch/internal/usecase/health"
	shotuc "github.com/kailas-cloud/shotsearch/internal/usecase/screenshot"
	searchuc "github.com/kailas-cloud/shotsearch/internal/usecase/search"
	uploaduc "github.com/kailas-cloud/shotsearch/internal/usecase/upload"
	usageuc "github.com/kailas-cloud/shotsearch/internal/usecase/usage"
	visionuc "github.com/kailas-cloud/shotsearch/internal/usecase/vision"
	"github.com/kailas-cloud/shotsearch/internal/version"
	"github.com/kailas-cloud/shotsearch/pkg/relevance"
)

func main() {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, logpkg.Options{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Service: "shotsearch",
		Version: version.Version,
	})
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting shotsearch API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.Bool("vision_enabled", cfg.Vision.Enabled()),
		zap.Bool("ocr_enabled", cfg.OCR.Enabled),
	)

	store, err := openStore(cfg.Database, logger)
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	metrics.RegisterVisionMetrics()
	metrics.RegisterSearchMetrics()

	prefix := cfg.Storage.KeyPrefix

	// One tracker shared by the describer chain and the usage report.
	var budget *visionuc.BudgetTracker
	if cfg.Vision.Enabled() {
		action, err := visionuc.ParseBudgetAction(cfg.Vision.Budget.Action)
		if err != nil {
			logger.Fatal("Invalid budget action", zap.Error(err))
		}
		budget = visionuc.NewBudgetTracker(
			prefix, cfg.Vision.Provider,
			cfg.Vision.Budget.DailyTokenLimit, cfg.Vision.Budget.MonthlyTokenLimit,
			action, logger,
		).WithStore(ctx, budgetrepo.New(store, 48*time.Hour, 62*24*time.Hour))
	}

	// Pass nil interface, not a typed nil pointer.
	var budgetChecker visionuc.BudgetChecker
	var budgetReader usageuc.BudgetReader
	if budget != nil {
		budgetChecker = budget
		budgetReader = budget
	}

	describer, visionCheck := buildDescriber(cfg.Vision, store, prefix, budgetChecker, logger)

	var recognizer uploaduc.Recognizer = noText{}
	if cfg.OCR.Enabled {
		transcriber := openaiVision.NewTranscriber(&openaiVision.Config{
			APIKey:   cfg.Vision.APIKey,
			BaseURL:  cfg.Vision.BaseURL,
			Model:    cfg.OCR.Model,
			Provider: cfg.Vision.Provider,
			Logger:   logger,
		})
		worker := ocr.NewWorker(
			visionuc.NewInstrumentedRecognizer(transcriber, cfg.Vision.Provider, cfg.OCR.Model, budgetChecker, logger),
			ocr.WithTimeout(time.Duration(cfg.OCR.TimeoutSec)*time.Second),
			ocr.WithConcurrency(cfg.OCR.Concurrency),
			ocr.WithGrayscale(*cfg.OCR.Grayscale),
			ocr.WithLogger(logger),
		)
		defer worker.Terminate()
		recognizer = worker
	}

	shots := shotrepo.New(store, prefix)
	blobs := blobrepo.New(store, prefix, cfg.Storage.PublicBaseURL)
	searches := logrepo.New(store, prefix, cfg.Search.LogRetention)

	engine := relevance.New(relevance.Policy{
		MinScore:           *cfg.Search.MinScore,
		TieEpsilon:         *cfg.Search.TieEpsilon,
		FilenameFallback:   cfg.Search.FilenameFallback,
		FilenameConfidence: cfg.Search.FilenameConfidence,
	})
	searchSvc := searchuc.New(shots, searches, engine).
		WithLimits(request.Limits{
			MaxQueryLength: cfg.Search.MaxQueryLength,
			DefaultLimit:   cfg.Search.DefaultLimit,
			MaxLimit:       cfg.Search.MaxLimit,
		}).
		WithLogTimeout(time.Duration(cfg.Search.LogTimeoutMs) * time.Millisecond)

	uploadSvc, err := uploaduc.New(shots, blobs, describer, recognizer, cfg.Upload.Workers)
	if err != nil {
		logger.Fatal("Failed to create upload worker pool", zap.Error(err))
	}
	defer uploadSvc.Close()
	uploadSvc.WithLimits(uploaduc.Limits{
		MaxFiles:    cfg.Upload.MaxFiles,
		MaxFileSize: cfg.Upload.MaxFileSizeMB << 20,
		WindowSize:  cfg.Upload.WindowSize,
		WindowPause: time.Duration(cfg.Upload.WindowPauseMs) * time.Millisecond,
	})

	shotSvc := shotuc.New(shots, blobs, searches)
	usageSvc := usageuc.New(budgetReader)
	healthSvc := healthuc.New(store, visionCheck)

	server := chiTransport.NewServer(searchSvc, uploadSvc, shotSvc, usageSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	chiTransport.HandlerWithOptions(server, chiTransport.ChiServerOptions{
		BaseRouter:       r,
		ErrorHandlerFunc: server.ParamErrorHandler,
	})

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

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
	searchSvc.Wait()

	logger.Info("Server stopped gracefully")
}

// openStore creates the record store for the configured driver. Valkey and
// Redis speak the same protocol and share one client.
func openStore(cfg config.DatabaseConfig, logger *zap.Logger) (db.Store, error) {
	switch cfg.Driver {
	case config.DriverValkey, config.DriverRedis:
		return dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Addrs,
			Username: cfg.Username,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
	case config.DriverBadger:
		return dbBadger.NewStore(dbBadger.Config{
			Path:     cfg.BadgerPath,
			InMemory: cfg.InMemory,
			Logger:   logger,
		})
	}
	return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
}

// buildDescriber assembles the decorator chain:
// OpenAI -> Cached -> Instrumented -> Fallback.
// Without an API key only the fallback remains and health skips the check.
func buildDescriber(
	cfg config.VisionConfig,
	store db.Store,
	prefix string,
	budget visionuc.BudgetChecker,
	logger *zap.Logger,
) (domain.Describer, healthuc.VisionChecker) {
	if !cfg.Enabled() {
		logger.Warn("Vision provider not configured, using generic descriptions")
		return visionuc.NewFallbackDescriber(nil, logger), nil
	}

	base := openaiVision.NewDescriber(&openaiVision.Config{
		APIKey:    cfg.APIKey,
		BaseURL:   cfg.BaseURL,
		Model:     cfg.Model,
		MaxTokens: cfg.MaxTokens,
		Prompt:    cfg.Prompt,
		Provider:  cfg.Provider,
		Logger:    logger,
	})

	var describer domain.Describer = base
	if cfg.Cache.Enabled {
		describer = visioncache.New(base, store, prefix+cfg.Model+":", logger,
			visioncache.WithTTL(time.Duration(cfg.Cache.TTLHours)*time.Hour),
			visioncache.WithCacheCounter(metrics.VisionCacheTotal),
		)
	}

	describer = visionuc.NewInstrumentedDescriber(describer, cfg.Provider, cfg.Model, budget, logger)

	logger.Info("Describer created",
		zap.String("provider", cfg.Provider),
		zap.String("model", cfg.Model),
		zap.Bool("cache", cfg.Cache.Enabled),
	)
	return visionuc.NewFallbackDescriber(describer, logger), base
}

// noText stands in for OCR when it is disabled.
type noText struct{}

func (noText) Recognize(context.Context, domain.Image) (string, error) { return "", nil }

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
						zap.String("path", r.URL.Path),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(chiTransport.ErrorResponse{Error: "Internal server error"})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits one canonical log line per request and propagates X-Request-ID.
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

			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("query", r.URL.RawQuery),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
				zap.String("vision_tokens", ww.Header().Get("X-Vision-Tokens")),
			)
		})
	}
}
