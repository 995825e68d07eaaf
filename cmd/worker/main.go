package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"sportsync/ingestion/internal/cache"
	"sportsync/ingestion/internal/config"
	"sportsync/ingestion/internal/ingest"
	"sportsync/ingestion/internal/metrics"
	"sportsync/ingestion/internal/repository"
	"sportsync/ingestion/internal/scheduler"

	"github.com/bytedance/sonic"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load configuration
	cfg := config.MustLoad()

	// Setup logger
	setupLogger(cfg)

	log.Info().Msg("Starting sportsync ingestion worker")
	log.Info().
		Str("env", cfg.AppEnv).
		Str("provider", cfg.Provider).
		Str("league", cfg.League).
		Str("season", cfg.Season).
		Dur("job_interval", cfg.JobInterval).
		Msg("Configuration loaded")

	// Create context that listens for cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info().Msg("Received shutdown signal, gracefully shutting down...")
		cancel()
	}()

	// Initialize database connection
	db, err := repository.NewDatabase(ctx, ingest.DatabaseConfig(cfg))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := db.EnsureSchema(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to set up database schema")
	}

	// Initialize Redis client
	var jobCache ingest.Cache
	redisCache, err := cache.NewRedisCache(ingest.CacheConfig(cfg))
	if err != nil {
		log.Warn().Err(err).Msg("Failed to connect to Redis - continuing without cache")
	} else {
		defer redisCache.Close()
		jobCache = redisCache
		log.Info().Msg("Redis cache connected")
	}

	pipeline, err := ingest.NewPipeline(cfg, ingest.NewFetcher(cfg), db, jobCache)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build ingestion pipeline")
	}

	var jobs []scheduler.Job
	for _, job := range pipeline.Jobs(cfg.JobInterval) {
		if !cfg.JobEnabled(job.Name) {
			log.Info().Str("job", job.Name).Msg("Job disabled by ENABLED_JOBS")
			continue
		}
		jobs = append(jobs, job)
	}
	if len(jobs) == 0 {
		log.Fatal().Strs("enabled_jobs", cfg.EnabledJobs).Msg("No jobs to schedule")
	}

	sched := scheduler.New(jobs, scheduler.WithOnComplete(func(ctx context.Context, status scheduler.RunStatus) {
		if redisCache == nil {
			return
		}
		if err := redisCache.SetJSON(ctx, cache.Key("runs", status.Job), status, 0); err != nil {
			log.Ctx(ctx).Warn().Err(err).Msg("Failed to persist run status")
		}
	}))

	// Start metrics HTTP server
	if cfg.EnableMetrics {
		go startMetricsServer(strconv.Itoa(cfg.MetricsPort), sched, db)
	}

	// Update system uptime and pool metrics
	startTime := time.Now()
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				metrics.SystemUptime.Set(time.Since(startTime).Seconds())
				db.PoolStats()
			case <-ctx.Done():
				return
			}
		}
	}()

	log.Info().Int("jobs", len(jobs)).Msg("Starting scheduler...")
	if err := sched.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to start scheduler")
	}

	// Keep running until context is cancelled
	<-ctx.Done()

	// Graceful shutdown
	log.Info().Msg("Shutting down scheduler...")
	stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer stopCancel()
	if err := sched.Stop(stopCtx); err != nil {
		log.Warn().Err(err).Msg("Scheduler did not stop cleanly")
	}

	log.Info().Msg("Worker shutdown complete")
}

// setupLogger configures the zerolog logger
func setupLogger(cfg *config.Config) {
	// Pretty console logging in development
	if cfg.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	}

	// Set log level
	level := zerolog.InfoLevel
	if parsedLevel, err := zerolog.ParseLevel(cfg.LogLevel); err == nil && cfg.LogLevel != "" {
		level = parsedLevel
	}
	zerolog.SetGlobalLevel(level)

	// log.Ctx falls back to the global logger when a context carries none
	zerolog.DefaultContextLogger = &log.Logger

	log.Info().
		Str("level", level.String()).
		Msg("Logger initialized")
}

type healthResponse struct {
	Status   string                  `json:"status"`
	Database string                  `json:"database"`
	Jobs     []scheduler.JobSnapshot `json:"jobs"`
}

// startMetricsServer starts the Prometheus metrics HTTP server
func startMetricsServer(port string, sched *scheduler.Scheduler, db *repository.Database) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{Status: "healthy", Database: "ok", Jobs: sched.Snapshot()}
		code := http.StatusOK
		if err := db.Health(r.Context()); err != nil {
			resp.Status = "degraded"
			resp.Database = err.Error()
			code = http.StatusServiceUnavailable
		}

		body, err := sonic.Marshal(resp)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		w.Write(body)
	})

	addr := fmt.Sprintf(":%s", port)
	log.Info().Str("port", port).Msg("Starting metrics server")

	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error().Err(err).Msg("Metrics server failed")
	}
}
