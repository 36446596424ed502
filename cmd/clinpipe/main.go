package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/clinpipe/clinpipe/internal/audit"
	"github.com/clinpipe/clinpipe/internal/config"
	"github.com/clinpipe/clinpipe/internal/deid"
	"github.com/clinpipe/clinpipe/internal/embed"
	"github.com/clinpipe/clinpipe/internal/ingest"
	"github.com/clinpipe/clinpipe/internal/ingest/ccda"
	"github.com/clinpipe/clinpipe/internal/ingest/fhir"
	"github.com/clinpipe/clinpipe/internal/ingest/hl7v2"
	"github.com/clinpipe/clinpipe/internal/model"
	"github.com/clinpipe/clinpipe/internal/pipeline"
	"github.com/clinpipe/clinpipe/internal/platform/db"
	"github.com/clinpipe/clinpipe/internal/server"
	"github.com/clinpipe/clinpipe/internal/vectorstore"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "clinpipe",
		Short: "Clinical data de-identification and embedding pipeline",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(deidCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger() zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return logger
}

// buildRunner assembles the pipeline from config. The cleanup func closes
// the database pool when one was opened.
func buildRunner(ctx context.Context, cfg *config.Config, logger zerolog.Logger, engine *deid.Engine) (*pipeline.Runner, func(), error) {
	embedder, err := embed.NewHashingEmbedder(cfg.EmbedDim)
	if err != nil {
		return nil, nil, err
	}
	router := ingest.NewRouter(logger,
		fhir.NewNormalizer(logger),
		hl7v2.NewNormalizer(logger),
		ccda.NewNormalizer(logger),
	)

	var store vectorstore.Store = vectorstore.NewMemoryStore()
	cleanup := func() {}
	var auditRepo audit.Repository

	if cfg.HasDatabase() {
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		cleanup = pool.Close

		pgStore := vectorstore.NewPGStore(pool)
		if err := pgStore.EnsureSchema(ctx); err != nil {
			cleanup()
			return nil, nil, err
		}
		store = pgStore

		pgAudit := audit.NewRepoPG(pool)
		if err := pgAudit.EnsureSchema(ctx); err != nil {
			cleanup()
			return nil, nil, err
		}
		auditRepo = pgAudit
		logger.Info().Msg("connected to database")
	}

	runner := pipeline.NewRunner(logger,
		pipeline.NewIngestStage(router),
		pipeline.NewDeidStage(engine),
		pipeline.NewChunkStage(),
		pipeline.NewEmbedStage(embedder),
		pipeline.NewStoreStage(store),
	)
	if auditRepo != nil {
		runner.WithAudit(auditRepo)
	}
	return runner, cleanup, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func runServer() error {
	logger := newLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	engine, err := deid.NewEngine(cfg.Policy(), logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid de-identification policy")
	}

	ctx := context.Background()
	runner, cleanup, err := buildRunner(ctx, cfg, logger, engine)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build pipeline")
	}
	defer cleanup()

	var secret []byte
	if cfg.AuthEnabled() {
		secret = []byte(cfg.JWTSecret)
	} else if cfg.IsDev() {
		logger.Warn().Msg("development mode: API authentication disabled")
	}

	s := server.New(logger, engine, runner, secret)

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Start(":" + cfg.Port)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		return s.Echo().Shutdown(shutdownCtx)
	}
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <file>",
		Short: "Run one document through the full pipeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			engine, err := deid.NewEngine(cfg.Policy(), logger)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			runner, cleanup, err := buildRunner(ctx, cfg, logger, engine)
			if err != nil {
				return err
			}
			defer cleanup()

			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			out, pc, err := runner.Run(ctx, data)
			if err != nil {
				return err
			}
			records, _ := out.([]vectorstore.Record)

			summary := map[string]any{
				"run_id": pc.RunID.String(),
				"chunks": len(records),
			}
			timings := make(map[string]int64, len(pc.Timings))
			for stage, d := range pc.Timings {
				timings[stage] = d.Milliseconds()
			}
			summary["timings_ms"] = timings

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(summary)
		},
	}
}

func deidCmd() *cobra.Command {
	var contentType string

	cmd := &cobra.Command{
		Use:   "deid <file>",
		Short: "De-identify one content graph and print the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			engine, err := deid.NewEngine(cfg.Policy(), logger)
			if err != nil {
				return err
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			var item any
			switch contentType {
			case "clinical":
				var content model.ClinicalContent
				if err := json.Unmarshal(data, &content); err != nil {
					return fmt.Errorf("parse clinical content: %w", err)
				}
				item = &content
			case "operational":
				var content model.OperationalContent
				if err := json.Unmarshal(data, &content); err != nil {
					return fmt.Errorf("parse operational content: %w", err)
				}
				item = &content
			default:
				return fmt.Errorf("--type must be clinical or operational, got %q", contentType)
			}

			out, _, err := engine.Process(item)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
	cmd.Flags().StringVar(&contentType, "type", "clinical", "content graph type (clinical or operational)")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "clinpipe", server.Version)
		},
	}
}
