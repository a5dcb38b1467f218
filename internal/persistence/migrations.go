package persistence

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/config"
)

// RunMigrations applies the SQL files from the configured migrations
// directory in lexical order.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool, cfg config.PostgresConfig, logger *zap.Logger) error {
	if pool == nil {
		logger.Warn("no postgres pool available; skipping migrations")
		return nil
	}

	files, err := collectMigrations(cfg.MigrationsDir)
	if err != nil {
		return err
	}

	for _, path := range files {
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", filepath.Base(path), err)
		}

		logger.Info("applying migration", zap.String("file", filepath.Base(path)))
		if _, err := pool.Exec(ctx, string(content)); err != nil {
			return fmt.Errorf("apply migration %s: %w", filepath.Base(path), err)
		}
	}

	logger.Info("migrations applied", zap.Int("count", len(files)))
	return nil
}

// collectMigrations lists the .sql files under dir, sorted by name.
// Lexical order is the application order.
func collectMigrations(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".sql" {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}

	sort.Strings(files)
	return files, nil
}

// sequenceConn is the slice of the pool the sequence alignment needs.
type sequenceConn interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// AlignTicketSequence points ticket_number_seq at the configured start,
// but only while the sequence is fresh. Once a number has been handed
// out the counter is never moved; restarting a live sequence could
// reissue ticket numbers.
func AlignTicketSequence(ctx context.Context, conn sequenceConn, start int64, logger *zap.Logger) error {
	if start <= 0 {
		return nil
	}

	var isCalled bool
	if err := conn.QueryRow(ctx, `SELECT is_called FROM ticket_number_seq`).Scan(&isCalled); err != nil {
		return fmt.Errorf("inspect ticket sequence: %w", err)
	}
	if isCalled {
		return nil
	}

	if _, err := conn.Exec(ctx, `SELECT setval('ticket_number_seq', $1, false)`, start); err != nil {
		return fmt.Errorf("align ticket sequence: %w", err)
	}
	logger.Info("ticket sequence aligned", zap.Int64("start", start))
	return nil
}
