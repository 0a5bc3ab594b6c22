package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"outlay/internal/core"
)

// insertChunkSize keeps batched inserts well under SQLite's bound-parameter
// limit (5 parameters per row).
const insertChunkSize = 500

// DimRef describes what to do with one nullable dimension reference during a
// partial update: leave it alone (Set false), clear it (Set true, ID nil) or
// point it at a resolved row.
type DimRef struct {
	Set bool
	ID  *int64
}

// ExpenseUpdate carries the fields of a partial update that survived
// validation. Nil pointers leave the column unchanged.
type ExpenseUpdate struct {
	Amount   *core.Money
	Date     *core.Date
	Store    DimRef
	Category DimRef
}

// InsertExpense writes one fact row and returns its id.
func (r *Repository) InsertExpense(ctx context.Context, q DBTX, e core.Expense) (int64, error) {
	var id int64
	err := q.QueryRowContext(ctx,
		`INSERT INTO expenses (user_id, amount_cents, date, store_id, category_id)
		 VALUES (?, ?, ?, ?, ?)
		 RETURNING id`,
		e.UserID, e.Amount.Cents, nullDate(e.Date), e.StoreID, e.CategoryID,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert expense: %w", err)
	}
	return id, nil
}

// InsertExpenses writes a batch of fact rows with one parameterized multi-row
// INSERT per chunk. The caller is responsible for running it inside a
// transaction when all-or-nothing semantics are required.
func (r *Repository) InsertExpenses(ctx context.Context, q DBTX, expenses []core.Expense) (int64, error) {
	var total int64
	for start := 0; start < len(expenses); start += insertChunkSize {
		end := start + insertChunkSize
		if end > len(expenses) {
			end = len(expenses)
		}
		chunk := expenses[start:end]

		var sb strings.Builder
		sb.WriteString("INSERT INTO expenses (user_id, amount_cents, date, store_id, category_id) VALUES ")
		args := make([]any, 0, len(chunk)*5)
		for i, e := range chunk {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString("(?, ?, ?, ?, ?)")
			args = append(args, e.UserID, e.Amount.Cents, nullDate(e.Date), e.StoreID, e.CategoryID)
		}

		res, err := q.ExecContext(ctx, sb.String(), args...)
		if err != nil {
			return 0, fmt.Errorf("insert expense batch: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("insert expense batch: %w", err)
		}
		total += n
	}
	return total, nil
}

// GetExpenseDetail loads one expense scoped to its owner, with dimension
// names joined. A missing row and a row owned by someone else are the same
// error: existence of other users' expenses must not leak.
func (r *Repository) GetExpenseDetail(ctx context.Context, userID, id int64) (core.ExpenseDetail, error) {
	var (
		detail core.ExpenseDetail
		cents  int64
		date   sql.NullString
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT e.id, e.amount_cents, e.date, COALESCE(s.name, ''), COALESCE(c.name, '')
		 FROM expenses e
		 LEFT JOIN stores s ON s.id = e.store_id
		 LEFT JOIN categories c ON c.id = e.category_id
		 WHERE e.id = ? AND e.user_id = ?`,
		id, userID,
	).Scan(&detail.ID, &cents, &date, &detail.Store, &detail.Category)
	if errors.Is(err, sql.ErrNoRows) {
		return core.ExpenseDetail{}, core.ErrNotFound
	}
	if err != nil {
		return core.ExpenseDetail{}, fmt.Errorf("get expense: %w", err)
	}
	detail.Amount = core.Money{Cents: cents}
	detail.Date = date.String
	return detail, nil
}

// expenseExists checks ownership inside the caller's transaction.
func (r *Repository) expenseExists(ctx context.Context, q DBTX, userID, id int64) (bool, error) {
	var found int64
	err := q.QueryRowContext(ctx,
		"SELECT id FROM expenses WHERE id = ? AND user_id = ?", id, userID,
	).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check expense: %w", err)
	}
	return true, nil
}

// UpdateExpense applies a partial update to one owned expense. Only columns
// named in upd change; a DimRef with Set and a nil ID writes NULL.
func (r *Repository) UpdateExpense(ctx context.Context, q DBTX, userID, id int64, upd ExpenseUpdate) error {
	exists, err := r.expenseExists(ctx, q, userID, id)
	if err != nil {
		return err
	}
	if !exists {
		return core.ErrNotFound
	}

	sets := []string{"updated_at = datetime('now')"}
	var args []any

	if upd.Amount != nil {
		sets = append(sets, "amount_cents = ?")
		args = append(args, upd.Amount.Cents)
	}
	if upd.Date != nil {
		sets = append(sets, "date = ?")
		args = append(args, upd.Date.String())
	}
	if upd.Store.Set {
		sets = append(sets, "store_id = ?")
		args = append(args, upd.Store.ID)
	}
	if upd.Category.Set {
		sets = append(sets, "category_id = ?")
		args = append(args, upd.Category.ID)
	}

	args = append(args, id, userID)
	query := fmt.Sprintf("UPDATE expenses SET %s WHERE id = ? AND user_id = ?", strings.Join(sets, ", "))
	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	return nil
}

// DeleteExpenses removes the given rows if the caller owns them. Ids that do
// not exist or belong to another user are silently skipped; the returned
// count covers only what was actually deleted.
func (r *Repository) DeleteExpenses(ctx context.Context, q DBTX, userID int64, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	args := make([]any, 0, len(ids)+1)
	for _, id := range ids {
		args = append(args, id)
	}
	args = append(args, userID)

	query := fmt.Sprintf("DELETE FROM expenses WHERE id IN (%s) AND user_id = ?", placeholders(len(ids)))
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete expenses: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete expenses: %w", err)
	}
	return n, nil
}

func nullDate(d core.Date) any {
	if d.IsZero() {
		return nil
	}
	return d.String()
}
