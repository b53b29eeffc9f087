package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ehr/recipients/internal/config"
	"github.com/ehr/recipients/internal/domain/recipient"
	"github.com/ehr/recipients/internal/platform/locale"
	"github.com/ehr/recipients/internal/platform/middleware"
	"github.com/ehr/recipients/internal/platform/sandbox"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "recipients",
		Short:         "Synthetic organ-transplant recipient generator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().String("catalog", "", "lookup table file overriding the embedded catalog")

	rootCmd.AddCommand(generateCmd())
	rootCmd.AddCommand(checkCmd())
	rootCmd.AddCommand(serveCmd())

	return rootCmd
}

func generateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a batch of recipients and write it to a file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}
			cat, err := loadCatalog(cfg)
			if err != nil {
				logger.Error().Err(err).Msg("failed to load catalog")
				return err
			}

			seedCfg := sandbox.SeedConfig{Count: cfg.Count, Shape: cfg.Shape, Seed: cfg.Seed}
			if _, err := sandbox.RunBatch(seedCfg, cat, cfg.OutputPath, cfg.OutputFormat, logger); err != nil {
				logger.Error().Err(err).Str("path", cfg.OutputPath).Msg("batch generation failed")
				return err
			}
			return nil
		},
	}
	cmd.Flags().IntP("count", "n", 10, "number of recipients to generate")
	cmd.Flags().StringP("output", "o", "receptores.json", "output file path")
	cmd.Flags().Int64("seed", 0, "random seed (0 picks one from the clock)")
	cmd.Flags().String("shape", "full", "record shape: full or short")
	cmd.Flags().String("format", config.FormatJSON, "output format: json or ndjson")
	return cmd
}

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify that every state the locale can draw has a transplant center",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}
			cat, err := loadCatalog(cfg)
			if err != nil {
				logger.Error().Err(err).Msg("failed to load catalog")
				return err
			}

			faker := gofakeit.New(1)
			if _, err := recipient.NewGenerator(faker, cat, locale.NewPTBR(faker)); err != nil {
				logger.Error().Err(err).Msg("catalog check failed")
				return err
			}
			logger.Info().
				Int("states", len(cat.States())).
				Int("organs", len(cat.Organs())).
				Msg("catalog is consistent with the pt_BR locale")
			return nil
		},
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the sandbox HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}
			cat, err := loadCatalog(cfg)
			if err != nil {
				logger.Error().Err(err).Msg("failed to load catalog")
				return err
			}
			return runServer(cfg, cat, logger)
		},
	}
}

// setup loads config, applies command-line overrides and builds the logger.
func setup(cmd *cobra.Command) (*config.Config, zerolog.Logger, error) {
	logger := newLogger(cmd.OutOrStdout(), os.Getenv("ENV") == "development")

	cfg, err := config.Load()
	if err != nil {
		logger.Error().Err(err).Msg("failed to load config")
		return nil, logger, err
	}
	// ENV may come from .env, which is only visible after Load.
	logger = newLogger(cmd.OutOrStdout(), cfg.IsDev())
	applyFlags(cmd, cfg)

	if err := cfg.Validate(); err != nil {
		logger.Error().Err(err).Msg("invalid configuration")
		return nil, logger, err
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.Warn().Str("log_level", cfg.LogLevel).Msg("unknown log level, using info")
		level = zerolog.InfoLevel
	}
	return cfg, logger.Level(level), nil
}

func newLogger(w io.Writer, dev bool) zerolog.Logger {
	if dev {
		return zerolog.New(zerolog.ConsoleWriter{Out: w}).With().Timestamp().Logger()
	}
	return zerolog.New(w).With().Timestamp().Logger()
}

func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("count") {
		cfg.Count, _ = flags.GetInt("count")
	}
	if flags.Changed("output") {
		cfg.OutputPath, _ = flags.GetString("output")
	}
	if flags.Changed("seed") {
		cfg.Seed, _ = flags.GetInt64("seed")
	}
	if flags.Changed("shape") {
		shape, _ := flags.GetString("shape")
		cfg.Shape = strings.ToLower(shape)
	}
	if flags.Changed("format") {
		format, _ := flags.GetString("format")
		cfg.OutputFormat = strings.ToLower(format)
	}
	if flags.Changed("catalog") {
		cfg.CatalogPath, _ = flags.GetString("catalog")
	}
}

func loadCatalog(cfg *config.Config) (*recipient.Catalog, error) {
	if cfg.CatalogPath != "" {
		return recipient.LoadCatalog(cfg.CatalogPath)
	}
	return recipient.DefaultCatalog()
}

func runServer(cfg *config.Config, cat *recipient.Catalog, logger zerolog.Logger) error {
	e := newServer(cat, logger)

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	logger.Info().Msg("server stopped")
	return nil
}

const seedBodyLimit = "64KiB"

func newServer(cat *recipient.Catalog, logger zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.BodyLimit(seedBodyLimit))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})

	sandbox.NewSeedHandler(cat, logger).RegisterRoutes(e.Group("/api/v1/sandbox"))
	return e
}
