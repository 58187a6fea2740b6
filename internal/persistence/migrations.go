package persistence

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// RunMigrations applies every *.sql script under dir, ordered by file name.
// Each script runs in its own transaction and is re-applied on every start,
// so scripts must be written with IF NOT EXISTS guards.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool, dir string, logger *zap.Logger) error {
	if pool == nil {
		logger.Warn("postgres unavailable, schema not migrated")
		return nil
	}

	scripts, err := migrationScripts(dir)
	if err != nil {
		return err
	}

	for _, script := range scripts {
		body, err := os.ReadFile(script)
		if err != nil {
			return fmt.Errorf("load %s: %w", filepath.Base(script), err)
		}
		err = pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
			_, err := tx.Exec(ctx, string(body))
			return err
		})
		if err != nil {
			return fmt.Errorf("migrate %s: %w", filepath.Base(script), err)
		}
		logger.Debug("schema script executed", zap.String("script", filepath.Base(script)))
	}

	logger.Info("schema up to date", zap.String("dir", dir), zap.Int("scripts", len(scripts)))
	return nil
}

func migrationScripts(dir string) ([]string, error) {
	if info, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("migrations dir: %w", err)
	} else if !info.IsDir() {
		return nil, fmt.Errorf("migrations dir: %s is not a directory", dir)
	}
	matches, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	if err != nil {
		return nil, err
	}
	scripts := matches[:0]
	for _, m := range matches {
		if info, err := os.Stat(m); err == nil && info.Mode().IsRegular() {
			scripts = append(scripts, m)
		}
	}
	sort.Strings(scripts)
	return scripts, nil
}
