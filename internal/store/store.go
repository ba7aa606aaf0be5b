// File: internal/store/store.go
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/xkilldash9x/autoscan-cli/internal/scenario"
)

// DBPool abstracts the pgxpool.Pool so tests can substitute a mock.
type DBPool interface {
	Ping(ctx context.Context) error
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Store keeps the history of verification runs in PostgreSQL. It satisfies
// scenario.RunRecorder.
type Store struct {
	pool DBPool
	log  *zap.Logger
}

// New creates a new store instance and verifies the connection.
func New(ctx context.Context, pool DBPool, logger *zap.Logger) (*Store, error) {
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &Store{
		pool: pool,
		log:  logger.Named("store"),
	}, nil
}

const sqlInsertRun = `
	INSERT INTO verification_runs
		(id, project_key, passed, difference_count, rule_count, total_missing, total_new, report, finished_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
`

// RecordRun inserts one verification run outcome.
func (s *Store) RecordRun(ctx context.Context, rec scenario.RunRecord) error {
	tag, err := s.pool.Exec(ctx, sqlInsertRun,
		rec.ID, rec.ProjectKey, rec.Passed,
		rec.DifferenceCount, rec.RuleCount, rec.TotalMissing, rec.TotalNew,
		rec.Report, rec.FinishedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert verification run: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("unexpected rows affected inserting verification run: %d", tag.RowsAffected())
	}
	s.log.Debug("Recorded verification run",
		zap.String("id", rec.ID),
		zap.Bool("passed", rec.Passed),
	)
	return nil
}
