package storage

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"outlay/internal/core"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestWithTx_CommitsOnSuccess(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	err := repo.WithTx(ctx, func(tx *sql.Tx) error {
		_, err := repo.InsertExpense(ctx, tx, core.Expense{
			UserID: 1,
			Amount: core.Money{Cents: 100},
			Date:   core.NewDate(2024, 1, 1),
		})
		return err
	})
	require.NoError(t, err)

	require.Equal(t, int64(1), countExpenses(t, repo, 1))
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	wantErr := errors.New("boom")
	err := repo.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := repo.InsertExpense(ctx, tx, core.Expense{
			UserID: 1,
			Amount: core.Money{Cents: 100},
			Date:   core.NewDate(2024, 1, 1),
		}); err != nil {
			return err
		}
		return wantErr
	})
	require.ErrorIs(t, err, wantErr)

	require.Zero(t, countExpenses(t, repo, 1))
}

func TestWithTx_RollsBackOnCancelledContext(t *testing.T) {
	repo := newTestRepo(t)
	ctx, cancel := context.WithCancel(context.Background())

	err := repo.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := repo.InsertExpense(ctx, tx, core.Expense{
			UserID: 1,
			Amount: core.Money{Cents: 100},
			Date:   core.NewDate(2024, 1, 1),
		}); err != nil {
			return err
		}
		cancel()
		return nil
	})
	require.Error(t, err)

	require.Zero(t, countExpenses(t, repo, 1))
}

func countExpenses(t *testing.T, repo *Repository, userID int64) int64 {
	t.Helper()
	var n int64
	err := repo.db.QueryRow("SELECT COUNT(*) FROM expenses WHERE user_id = ?", userID).Scan(&n)
	require.NoError(t, err)
	return n
}

func countDimensionRows(t *testing.T, repo *Repository, kind core.Dimension) int64 {
	t.Helper()
	meta, err := dimensionTable(kind)
	require.NoError(t, err)
	var n int64
	err = repo.db.QueryRow("SELECT COUNT(*) FROM " + meta.table).Scan(&n)
	require.NoError(t, err)
	return n
}
