// internal/store/store_test.go
package store

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xkilldash9x/autoscan-cli/internal/scenario"
)

// flexibleSQLMatcher creates a regex that is insensitive to whitespace for
// more robust SQL mock testing.
func flexibleSQLMatcher(sql string) string {
	trimmed := strings.TrimSpace(sql)
	return regexp.MustCompile(`\s+`).ReplaceAllString(regexp.QuoteMeta(trimmed), `\s+`)
}

func sampleRecord() scenario.RunRecord {
	return scenario.RunRecord{
		ID:              uuid.New().String(),
		ProjectKey:      "demo-project",
		Passed:          true,
		DifferenceCount: 2929,
		RuleCount:       2,
		TotalMissing:    1,
		TotalNew:        2,
		Report:          "Rule;Missing;New\n",
		FinishedAt:      time.Date(2024, 5, 17, 10, 0, 0, 0, time.UTC),
	}
}

func TestNewStore(t *testing.T) {
	t.Run("should return error if ping fails", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()

		pingErr := errors.New("database unavailable")
		mockPool.ExpectPing().WillReturnError(pingErr)

		_, err = New(context.Background(), mockPool, zap.NewNop())
		require.Error(t, err)
		assert.ErrorIs(t, err, pingErr)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestRecordRun(t *testing.T) {
	newStore := func(t *testing.T) (*Store, pgxmock.PgxPoolIface) {
		t.Helper()
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		t.Cleanup(mockPool.Close)

		mockPool.ExpectPing()
		s, err := New(context.Background(), mockPool, zap.NewNop())
		require.NoError(t, err)
		return s, mockPool
	}

	t.Run("should insert one row", func(t *testing.T) {
		s, mockPool := newStore(t)
		rec := sampleRecord()

		mockPool.ExpectExec(flexibleSQLMatcher(sqlInsertRun)).
			WithArgs(rec.ID, rec.ProjectKey, rec.Passed,
				rec.DifferenceCount, rec.RuleCount, rec.TotalMissing, rec.TotalNew,
				rec.Report, rec.FinishedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		require.NoError(t, s.RecordRun(context.Background(), rec))
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("should propagate exec errors", func(t *testing.T) {
		s, mockPool := newStore(t)
		rec := sampleRecord()

		execErr := errors.New("relation does not exist")
		mockPool.ExpectExec(flexibleSQLMatcher(sqlInsertRun)).
			WithArgs(rec.ID, rec.ProjectKey, rec.Passed,
				rec.DifferenceCount, rec.RuleCount, rec.TotalMissing, rec.TotalNew,
				rec.Report, rec.FinishedAt).
			WillReturnError(execErr)

		err := s.RecordRun(context.Background(), rec)
		require.Error(t, err)
		assert.ErrorIs(t, err, execErr)
	})

	t.Run("should reject unexpected row counts", func(t *testing.T) {
		s, mockPool := newStore(t)
		rec := sampleRecord()

		mockPool.ExpectExec(flexibleSQLMatcher(sqlInsertRun)).
			WithArgs(rec.ID, rec.ProjectKey, rec.Passed,
				rec.DifferenceCount, rec.RuleCount, rec.TotalMissing, rec.TotalNew,
				rec.Report, rec.FinishedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 0))

		err := s.RecordRun(context.Background(), rec)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rows affected")
	})
}
