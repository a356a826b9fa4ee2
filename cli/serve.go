package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/toolforge-ai/toolforge/engine/infra/server"
	"github.com/toolforge-ai/toolforge/engine/infra/store"
	"github.com/toolforge-ai/toolforge/pkg/config"
	"github.com/toolforge-ai/toolforge/pkg/logger"
)

func ServeCmd() *cobra.Command {
	var envFile string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the toolforge HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), envFile)
		},
	}
	cmd.Flags().StringVar(&envFile, "env-file", ".env", "environment file to load, if present")
	return cmd
}

func runServe(ctx context.Context, envFile string) error {
	// Missing env file is fine; the environment may already be set.
	_ = godotenv.Load(envFile)
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	log := setupLogger(cfg)
	ctx = logger.ContextWithLogger(ctx, log)
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := store.Setup(ctx, &cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	srv, err := server.New(ctx, cfg, db)
	if err != nil {
		return err
	}
	return srv.Run(ctx)
}

func setupLogger(cfg *config.Config) logger.Logger {
	logCfg := logger.DefaultConfig()
	logCfg.Level = logger.LogLevel(cfg.Log.Level)
	logCfg.JSON = cfg.Log.JSON
	logger.Init(logCfg)
	return logger.GetDefault()
}
