package persistence

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// The ticket table mirrors the flat-file layout: all values are text, and
// seq preserves insertion order for row-for-row parity with the CSV backend.
const createTicketsTable = `
CREATE TABLE IF NOT EXISTS tickets (
    seq             BIGSERIAL PRIMARY KEY,
    ticket_id       TEXT NOT NULL,
    employee_email  TEXT NOT NULL,
    employee_name   TEXT NOT NULL,
    employee_role   TEXT NOT NULL,
    employee_id     TEXT NOT NULL,
    department      TEXT NOT NULL,
    concern         TEXT NOT NULL,
    description     TEXT NOT NULL,
    status          TEXT NOT NULL,
    created_at      TEXT NOT NULL,
    closed_at       TEXT NOT NULL DEFAULT '',
    last_updated_by TEXT NOT NULL
)`

// RunMigrations creates the ticket table when it does not exist.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) error {
	if pool == nil {
		logger.Warn("no postgres pool available; skipping migrations")
		return nil
	}

	if _, err := pool.Exec(ctx, createTicketsTable); err != nil {
		return fmt.Errorf("create tickets table: %w", err)
	}
	logger.Info("migrations applied")
	return nil
}
