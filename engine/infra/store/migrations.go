package store

import (
	"context"
	"embed"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/toolforge-ai/toolforge/pkg/logger"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var (
	migrationOnce sync.Once
	migrationErr  error
)

// ResetMigrationsForTest resets the migration singleton. Test code only.
func ResetMigrationsForTest() {
	migrationOnce = sync.Once{}
	migrationErr = nil
}

// RunMigrations applies the embedded SQL migrations once per process,
// guarded by a PostgreSQL advisory lock for multi-instance safety.
func RunMigrations(ctx context.Context, db *DB) error {
	migrationOnce.Do(func() {
		sqlDB := stdlib.OpenDBFromPool(db.Pool())
		defer func() {
			if closeErr := sqlDB.Close(); closeErr != nil {
				logger.FromContext(ctx).Error("failed to close migration connection", "error", closeErr)
			}
		}()

		const lockID = 7319
		if _, err := sqlDB.ExecContext(ctx, "SELECT pg_advisory_lock($1)", lockID); err != nil {
			migrationErr = fmt.Errorf("failed to acquire migration lock: %w", err)
			return
		}
		defer func() {
			if _, unlockErr := sqlDB.ExecContext(ctx, "SELECT pg_advisory_unlock($1)", lockID); unlockErr != nil {
				logger.FromContext(ctx).Error("failed to release migration lock", "error", unlockErr)
			}
		}()

		goose.SetBaseFS(migrationsFS)
		if err := goose.SetDialect("postgres"); err != nil {
			migrationErr = fmt.Errorf("failed to set dialect: %w", err)
			return
		}
		if err := goose.UpContext(ctx, sqlDB, "migrations"); err != nil {
			migrationErr = fmt.Errorf("migration failed: %w", err)
			return
		}
	})
	return migrationErr
}
