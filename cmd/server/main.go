package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"tablelab/internal/api"
	"tablelab/internal/config"
	"tablelab/internal/domain"
	"tablelab/internal/events"
	"tablelab/internal/logging"
	"tablelab/internal/metrics"
	"tablelab/internal/scenario"
	"tablelab/internal/service"
	"tablelab/internal/session"
	"tablelab/internal/sheets"
	"tablelab/internal/store"
	"tablelab/internal/worker"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	resultStore, err := initResultStore(cfg, &logger)
	if err != nil {
		return err
	}
	defer resultStore.Close()

	redisClient := initRedis(cfg, &logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	sessions := initSessions(cfg, redisClient, &logger)

	generator := initGenerator(cfg, &logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	syncer := initSheetSync(ctx, cfg, redisClient, &logger)

	eventBus := events.NewEventBus()
	subscribeEventLog(eventBus, &logger)

	experiment := service.NewExperimentService(generator, sessions, resultStore, eventBus, syncer, &logger)
	httpServer := api.NewHTTPServer(cfg.API, experiment, &logger)

	startMetrics(ctx, cfg, &logger)

	return startServer(ctx, httpServer, cfg, &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := logging.WithComponent(baseLogger, "server-main")

	return cfg, logger, closer, nil
}

func initResultStore(cfg *config.Config, logger *zerolog.Logger) (domain.ResultStore, error) {
	switch cfg.Results.Backend {
	case "sqlite":
		s, err := store.NewSQLiteStore(cfg.Results.Path, logger)
		if err != nil {
			logger.Error().Err(err).Str("path", cfg.Results.Path).Msg("init sqlite store")
			return nil, err
		}
		return s, nil
	default:
		s, err := store.NewFileStore(cfg.Results.Path)
		if err != nil {
			logger.Error().Err(err).Str("path", cfg.Results.Path).Msg("init file store")
			return nil, err
		}
		return s, nil
	}
}

func initRedis(cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if !cfg.Redis.Enabled || cfg.Redis.Address == "" {
		return nil
	}

	redisClient := session.NewRedisClient(cfg.Redis)
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing without redis")
		_ = redisClient.Close()
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return redisClient
}

// initSessions prefers redis with an in-memory fallback; without redis the
// in-memory repository carries the whole load.
func initSessions(cfg *config.Config, redisClient *redis.Client, logger *zerolog.Logger) domain.SessionRepository {
	ttl := time.Duration(cfg.Session.TTLSeconds) * time.Second
	memory := session.NewMemoryRepository(ttl)
	if redisClient == nil {
		return memory
	}
	return session.NewFailoverRepository(session.NewRedisRepository(redisClient, ttl), memory, logger)
}

func initGenerator(cfg *config.Config, logger *zerolog.Logger) *scenario.Generator {
	if cfg.Experiment.Seed != 0 {
		logger.Info().Int64("seed", cfg.Experiment.Seed).Msg("using fixed experiment seed")
		return scenario.NewSeeded(cfg.Experiment.Seed)
	}
	return scenario.NewSeeded(time.Now().UnixNano())
}

func initSheetSync(ctx context.Context, cfg *config.Config, redisClient *redis.Client, logger *zerolog.Logger) domain.SyncWorker {
	if cfg.Google.CredentialsFile == "" || cfg.Google.ResultsSpreadsheetID == "" {
		return nil
	}

	sheetsService, err := sheets.New(cfg.Google.CredentialsFile, cfg.Google.ResultsSpreadsheetID)
	if err != nil {
		logger.Warn().Err(err).Msg("google sheets init failed, continuing without sheet sync")
		return nil
	}
	if err := sheetsService.TestConnection(ctx); err != nil {
		logger.Warn().Err(err).Msg("google sheets unreachable, continuing without sheet sync")
		return nil
	}

	w := worker.NewResultsWorker(sheetsService, redisClient, worker.RetryPolicy{}, logger)
	go w.Run(ctx)

	logger.Info().Msg("google sheets sync enabled")
	return w
}

// subscribeEventLog wires a structured audit trail onto the in-process bus.
func subscribeEventLog(bus *events.EventBus, logger *zerolog.Logger) {
	audit := logging.WithComponent(logger, "events")
	for _, eventType := range []string{events.EventSessionStarted, events.EventTrialStarted, events.EventResultSaved} {
		bus.Subscribe(eventType, func(event *events.Event) error {
			audit.Info().Str("event", event.Type).RawJSON("payload", event.Payload).Msg("event")
			return nil
		})
	}
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	port := cfg.Monitoring.PrometheusPort
	if port == 0 {
		port = 9090
	}
	go startMetricsServer(ctx, port, logger)
}

func startServer(ctx context.Context, httpServer *api.HTTPServer, cfg *config.Config, logger *zerolog.Logger) error {
	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	logger.Info().Int("http_port", cfg.API.HTTP.Port).Msg("experiment server started")

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = httpServer.Shutdown(shutdownCtx)

	logger.Info().Msg("experiment server stopped")
	return nil
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
