package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	chatservice "github.com/Jamolkhon5/lifesense/internal/ai/chat/service"
	"github.com/Jamolkhon5/lifesense/internal/ai/completion"
	"github.com/Jamolkhon5/lifesense/internal/config"
	"github.com/Jamolkhon5/lifesense/internal/handler"
	"github.com/Jamolkhon5/lifesense/internal/logger"
	"github.com/Jamolkhon5/lifesense/internal/ratelimit"
	"github.com/Jamolkhon5/lifesense/internal/repository"
	"github.com/Jamolkhon5/lifesense/internal/server"
	vitalshandler "github.com/Jamolkhon5/lifesense/internal/vitals/handler"
	vitalsservice "github.com/Jamolkhon5/lifesense/internal/vitals/service"
)

var (
	configPath string
	logLevel   string

	cfg *config.Config
	log zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "lifesense",
	Short: "LifeSense health dashboard backend",
	Long: `LifeSense serves the health chat proxy and the vitals dashboard API.

Configuration is read from the file given by --config (.env or yaml) and
from the environment. Secrets are never compiled in.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.NewConfig(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if logLevel != "" {
			cfg.Log.Level = logLevel
		}
		log = logger.New(cfg.Log.Level, cfg.Log.Pretty)
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API (and the gRPC health service when configured)",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the vitals tables (postgres driver only)",
	RunE:  runMigrate,
}

var vitalsCmd = &cobra.Command{
	Use:   "vitals",
	Short: "Print the current vitals summary as JSON",
	RunE:  runVitals,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", ".env", "config file (.env or yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level")

	rootCmd.AddCommand(serveCmd, migrateCmd, vitalsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, err := repository.NewRepository(cfg.Store, log)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer repo.Close()

	client := completion.NewClient(completion.Config{
		APIKey:  cfg.Completion.APIKey,
		BaseURL: cfg.Completion.BaseURL,
		Model:   cfg.Completion.Model,
		SiteURL: cfg.Completion.SiteURL,
		AppName: cfg.Completion.AppName,
		Timeout: cfg.Completion.Timeout,
	})
	if !client.Configured() {
		log.Warn().Msg("OPENROUTER_API_KEY not set, chat requests will fail")
	}

	enricher := chatservice.NewEnricher(repo, cfg.Dashboard.EnrichmentWindow, log)
	assistant := chatservice.NewHealthAssistant(client, enricher, cfg.Profile, log)
	dashboard := vitalsservice.NewDashboard(repo, assistant, cfg.Dashboard, log)

	var limiter ratelimit.Limiter
	if cfg.Redis.Addr != "" && cfg.Redis.RateLimitQPS > 0 {
		rdb, err := ratelimit.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Warn().Err(err).Msg("rate limiting disabled")
		} else {
			defer rdb.Close()
			limiter = ratelimit.NewRedisLimiter(rdb, cfg.Redis.RateLimitQPS)
		}
	}

	srv := server.New(
		cfg.Server,
		handler.NewHandler(assistant, log),
		vitalshandler.NewVitalsHandler(dashboard, cfg.Profile, log),
		limiter,
		log,
	)
	if err := srv.Run(ctx); err != nil {
		return err
	}
	log.Info().Msg("server exiting")
	return nil
}

func runMigrate(cmd *cobra.Command, args []string) error {
	if cfg.Store.Driver != config.DriverPostgres {
		return errors.New("migrate requires store.driver=postgres")
	}
	repo, err := repository.NewRepository(cfg.Store, log)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer repo.Close()

	if err := repository.Migrate(repo.DB()); err != nil {
		return err
	}
	log.Info().Msg("migrations applied")
	return nil
}

func runVitals(cmd *cobra.Command, args []string) error {
	repo, err := repository.NewRepository(cfg.Store, log)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer repo.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Store.Timeout)
	defer cancel()

	summary, err := vitalsservice.NewDashboard(repo, nil, cfg.Dashboard, log).Summary(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}
