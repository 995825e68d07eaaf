// Command manualfetch runs ingestion jobs once from the command line.
//
// Usage:
//
//	manualfetch run teams players
//	manualfetch run --provider sportsdataio --season 2024REG timeframes
//	manualfetch jobs
//	manualfetch runs --clear
//	manualfetch schema
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"sportsync/ingestion/internal/cache"
	"sportsync/ingestion/internal/config"
	"sportsync/ingestion/internal/ingest"
	"sportsync/ingestion/internal/repository"
	"sportsync/ingestion/internal/scheduler"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type overrides struct {
	provider string
	season   string
	noCache  bool
}

func main() {
	_ = godotenv.Load(".env")

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	zerolog.DefaultContextLogger = &log.Logger

	var ov overrides
	root := &cobra.Command{
		Use:           "manualfetch",
		Short:         "Run sportsync ingestion jobs on demand",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&ov.provider, "provider", "", "override PROVIDER (natstat or sportsdataio)")
	root.PersistentFlags().StringVar(&ov.season, "season", "", "override SEASON")

	run := runCmd(&ov)
	run.Flags().BoolVar(&ov.noCache, "no-cache", false, "do not connect to Redis")

	root.AddCommand(run, jobsCmd(&ov), runsCmd(&ov), schemaCmd())

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("manualfetch failed")
		os.Exit(1)
	}
}

func loadConfig(ov *overrides) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if ov == nil {
		return cfg, nil
	}
	if ov.provider != "" {
		cfg.Provider = strings.ToLower(ov.provider)
	}
	if ov.season != "" {
		cfg.Season = ov.season
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	return cfg, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runCmd(ov *overrides) *cobra.Command {
	return &cobra.Command{
		Use:   "run <job>...",
		Short: "Run the named jobs once, in the order given",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(ov)
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()

			db, err := repository.NewDatabase(ctx, ingest.DatabaseConfig(cfg))
			if err != nil {
				return err
			}
			defer db.Close()
			if err := db.EnsureSchema(ctx); err != nil {
				return err
			}

			var jobCache ingest.Cache
			if !ov.noCache {
				rc, err := cache.NewRedisCache(ingest.CacheConfig(cfg))
				if err != nil {
					log.Warn().Err(err).Msg("Failed to connect to Redis - continuing without cache")
				} else {
					defer rc.Close()
					jobCache = rc
				}
			}

			pipeline, err := ingest.NewPipeline(cfg, ingest.NewFetcher(cfg), db, jobCache)
			if err != nil {
				return err
			}
			sched := scheduler.New(pipeline.Jobs(cfg.JobInterval))

			failed := 0
			for _, name := range args {
				status, err := sched.RunNow(ctx, strings.ToLower(name))
				if err != nil {
					log.Error().Err(err).Str("job", name).Msg("Job did not succeed")
					failed++
					continue
				}
				event := log.Info().
					Str("job", status.Job).
					Str("run_id", status.RunID).
					Dur("duration", status.Duration)
				if kind, ok := ingest.JobKind(status.Job); ok {
					if n, err := db.Count(ctx, kind); err == nil {
						event = event.Int64("rows", n)
					}
				}
				event.Msg("Job succeeded")
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d jobs failed", failed, len(args))
			}
			return nil
		},
	}
}

func jobsCmd(ov *overrides) *cobra.Command {
	return &cobra.Command{
		Use:   "jobs",
		Short: "List the jobs available for the configured provider",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(ov)
			if err != nil {
				return err
			}
			pipeline, err := ingest.NewPipeline(cfg, nil, nil, nil)
			if err != nil {
				return err
			}
			for _, job := range pipeline.Jobs(cfg.JobInterval) {
				enabled := "disabled"
				if cfg.JobEnabled(job.Name) {
					enabled = "enabled"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-12s %s every %s\n", job.Name, enabled, job.Interval)
			}
			return nil
		},
	}
}

func runsCmd(ov *overrides) *cobra.Command {
	var reset bool
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Show the last recorded run of each job",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(ov)
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()

			rc, err := cache.NewRedisCache(ingest.CacheConfig(cfg))
			if err != nil {
				return err
			}
			defer rc.Close()

			pipeline, err := ingest.NewPipeline(cfg, nil, nil, nil)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, job := range pipeline.Jobs(cfg.JobInterval) {
				key := cache.Key("runs", job.Name)
				if reset {
					if err := rc.Delete(ctx, key); err != nil {
						return err
					}
					fmt.Fprintf(out, "%-12s cleared\n", job.Name)
					continue
				}

				var status scheduler.RunStatus
				err := rc.GetJSON(ctx, key, &status)
				switch {
				case errors.Is(err, cache.ErrCacheMiss):
					fmt.Fprintf(out, "%-12s never run\n", job.Name)
				case err != nil:
					return err
				default:
					fmt.Fprintf(out, "%-12s %-8s %s %s %s\n", job.Name, status.Status,
						status.FinishedAt.Format(time.RFC3339), status.Duration, status.Error)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&reset, "clear", false, "delete the recorded runs")
	return cmd
}

func schemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Create any missing tables and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(nil)
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()

			db, err := repository.NewDatabase(ctx, ingest.DatabaseConfig(cfg))
			if err != nil {
				return err
			}
			defer db.Close()
			return db.EnsureSchema(ctx)
		},
	}
}
