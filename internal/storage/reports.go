package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"outlay/internal/core"
)

// Column maps for validated sort keys. Only these identifiers ever reach an
// ORDER BY; the sort spec itself never carries SQL.
var (
	summaryOrderColumns = map[string]string{
		"amount":   "e.amount_cents",
		"date":     "e.date",
		"store":    "s.name",
		"category": "c.name",
	}
	aggregateOrderColumns = map[string]string{
		"amount": "total_cents",
		"name":   "d.name",
	}
)

// ListSummary returns one row per expense with dimension names joined,
// filtered by owner and optional date range, ordered by the validated sort.
func (r *Repository) ListSummary(ctx context.Context, userID int64, rng core.DateRange, sort core.SortSpec) ([]core.ExpenseDetail, error) {
	order, err := orderClause(sort, summaryOrderColumns)
	if err != nil {
		return nil, err
	}

	conds := []string{"e.user_id = ?"}
	args := []any{userID}
	conds, args = appendDateRange(conds, args, rng)

	query := fmt.Sprintf(
		`SELECT e.id, e.amount_cents, e.date, COALESCE(s.name, ''), COALESCE(c.name, '')
		 FROM expenses e
		 LEFT JOIN stores s ON s.id = e.store_id
		 LEFT JOIN categories c ON c.id = e.category_id
		 WHERE %s
		 ORDER BY %s`,
		strings.Join(conds, " AND "), order)

	return r.queryDetails(ctx, query, args...)
}

// DailyOverview sums amounts grouped by exact date, date ascending. Rows
// without a date are excluded; they have no day to land on.
func (r *Repository) DailyOverview(ctx context.Context, userID int64, rng core.DateRange) ([]core.DailyTotal, error) {
	conds := []string{"e.user_id = ?", "e.date IS NOT NULL"}
	args := []any{userID}
	conds, args = appendDateRange(conds, args, rng)

	query := fmt.Sprintf(
		`SELECT e.date, SUM(e.amount_cents)
		 FROM expenses e
		 WHERE %s
		 GROUP BY e.date
		 ORDER BY e.date`,
		strings.Join(conds, " AND "))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("daily overview: %w", err)
	}
	defer rows.Close()

	var totals []core.DailyTotal
	for rows.Next() {
		var (
			t     core.DailyTotal
			cents int64
		)
		if err := rows.Scan(&t.Date, &cents); err != nil {
			return nil, fmt.Errorf("scan daily total: %w", err)
		}
		t.Amount = core.Money{Cents: cents}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

// MonthlyTrend sums amounts for one dimension instance grouped by calendar
// month, month ascending. Dates are stored as YYYY-MM-DD text, so the month
// is their first seven characters.
func (r *Repository) MonthlyTrend(ctx context.Context, userID int64, kind core.Dimension, dimID int64, rng core.DateRange) ([]core.MonthlyTotal, error) {
	meta, err := dimensionTable(kind)
	if err != nil {
		return nil, err
	}

	conds := []string{"e.user_id = ?", fmt.Sprintf("e.%s = ?", meta.fkColumn), "e.date IS NOT NULL"}
	args := []any{userID, dimID}
	conds, args = appendDateRange(conds, args, rng)

	query := fmt.Sprintf(
		`SELECT substr(e.date, 1, 7) AS month, SUM(e.amount_cents)
		 FROM expenses e
		 WHERE %s
		 GROUP BY month
		 ORDER BY month`,
		strings.Join(conds, " AND "))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("monthly trend: %w", err)
	}
	defer rows.Close()

	var totals []core.MonthlyTotal
	for rows.Next() {
		var (
			t     core.MonthlyTotal
			cents int64
		)
		if err := rows.Scan(&t.Month, &cents); err != nil {
			return nil, fmt.Errorf("scan monthly total: %w", err)
		}
		t.Amount = core.Money{Cents: cents}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

// DimensionDetail lists the expenses behind one dimension instance with the
// other dimension's name joined, ordered by date.
func (r *Repository) DimensionDetail(ctx context.Context, userID int64, kind core.Dimension, dimID int64, rng core.DateRange) ([]core.ExpenseDetail, error) {
	meta, err := dimensionTable(kind)
	if err != nil {
		return nil, err
	}

	conds := []string{"e.user_id = ?", fmt.Sprintf("e.%s = ?", meta.fkColumn)}
	args := []any{userID, dimID}
	conds, args = appendDateRange(conds, args, rng)

	query := fmt.Sprintf(
		`SELECT e.id, e.amount_cents, e.date, COALESCE(s.name, ''), COALESCE(c.name, '')
		 FROM expenses e
		 LEFT JOIN stores s ON s.id = e.store_id
		 LEFT JOIN categories c ON c.id = e.category_id
		 WHERE %s
		 ORDER BY e.date`,
		strings.Join(conds, " AND "))

	return r.queryDetails(ctx, query, args...)
}

// AggregateByDimension sums amounts per dimension instance for instances
// with at least one matching expense, ordered by the validated sort, with
// display names attached.
func (r *Repository) AggregateByDimension(ctx context.Context, userID int64, kind core.Dimension, rng core.DateRange, sort core.SortSpec) ([]core.DimensionTotal, error) {
	meta, err := dimensionTable(kind)
	if err != nil {
		return nil, err
	}
	order, err := orderClause(sort, aggregateOrderColumns)
	if err != nil {
		return nil, err
	}

	conds := []string{"e.user_id = ?"}
	args := []any{userID}
	conds, args = appendDateRange(conds, args, rng)

	query := fmt.Sprintf(
		`SELECT d.id, d.name, SUM(e.amount_cents) AS total_cents
		 FROM %s d
		 JOIN expenses e ON e.%s = d.id
		 WHERE %s
		 GROUP BY d.id, d.name
		 ORDER BY %s`,
		meta.table, meta.fkColumn, strings.Join(conds, " AND "), order)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("aggregate by %s: %w", kind, err)
	}
	defer rows.Close()

	var totals []core.DimensionTotal
	for rows.Next() {
		var (
			t     core.DimensionTotal
			cents int64
		)
		if err := rows.Scan(&t.ID, &t.Name, &cents); err != nil {
			return nil, fmt.Errorf("scan %s total: %w", kind, err)
		}
		t.Amount = core.Money{Cents: cents}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

func (r *Repository) queryDetails(ctx context.Context, query string, args ...any) ([]core.ExpenseDetail, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var details []core.ExpenseDetail
	for rows.Next() {
		var (
			d     core.ExpenseDetail
			cents int64
			date  sql.NullString
		)
		if err := rows.Scan(&d.ID, &cents, &date, &d.Store, &d.Category); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		d.Amount = core.Money{Cents: cents}
		d.Date = date.String
		details = append(details, d)
	}
	return details, rows.Err()
}
