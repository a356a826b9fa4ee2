package cli

import (
	"context"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/toolforge-ai/toolforge/engine/infra/store"
	"github.com/toolforge-ai/toolforge/pkg/config"
	"github.com/toolforge-ai/toolforge/pkg/logger"
)

func MigrateCmd() *cobra.Command {
	var envFile string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMigrate(cmd.Context(), envFile)
		},
	}
	cmd.Flags().StringVar(&envFile, "env-file", ".env", "environment file to load, if present")
	return cmd
}

func runMigrate(ctx context.Context, envFile string) error {
	_ = godotenv.Load(envFile)
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	log := setupLogger(cfg)
	ctx = logger.ContextWithLogger(ctx, log)
	db, err := store.Setup(ctx, &cfg.Database)
	if err != nil {
		return err
	}
	db.Close()
	log.Info("migrations applied")
	return nil
}
