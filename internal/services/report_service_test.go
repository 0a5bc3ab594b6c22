package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"outlay/internal/core"
)

// seedReports loads a small ledger for user 1 plus one row for user 2.
func seedReports(t *testing.T) (*ExpenseService, *ReportService) {
	t.Helper()
	expenses, reports := newTestServices(t)
	ctx := context.Background()

	_, err := expenses.Ingest(ctx, 1, []core.ExpenseInput{
		{Amount: "12.50", Date: "2024-01-05", Store: "Costco", Category: "Groceries"},
		{Amount: "30.00", Date: "2024-01-05", Store: "Target", Category: "Household"},
		{Amount: "8.25", Date: "2024-02-10", Store: "Costco", Category: "Groceries"},
		{Amount: "-5.00", Date: "2024-02-12", Store: "Costco", Category: "Groceries"},
	})
	require.NoError(t, err)

	_, err = expenses.Ingest(ctx, 2, []core.ExpenseInput{
		{Amount: "99.99", Date: "2024-01-05", Store: "Costco", Category: "Travel"},
	})
	require.NoError(t, err)

	return expenses, reports
}

func TestReports_RequireOwner(t *testing.T) {
	_, reports := newTestServices(t)
	ctx := context.Background()

	_, err := reports.Summary(ctx, 0, core.DateRange{}, core.SortSpec{Key: "date"})
	require.ErrorIs(t, err, core.ErrMissingOwner)

	_, err = reports.DailyOverview(ctx, 0, core.DateRange{})
	require.ErrorIs(t, err, core.ErrMissingOwner)

	_, err = reports.AggregateByDimension(ctx, 0, core.DimensionStore, core.DateRange{}, core.SortSpec{Key: "name"})
	require.ErrorIs(t, err, core.ErrMissingOwner)

	_, err = reports.DimensionLabels(ctx, 0, core.DimensionStore)
	require.ErrorIs(t, err, core.ErrMissingOwner)
}

func TestTrendAndDetail_RequireDimensionID(t *testing.T) {
	_, reports := seedReports(t)
	ctx := context.Background()

	_, err := reports.MonthlyTrend(ctx, 1, core.DimensionStore, 0, core.DateRange{})
	require.ErrorIs(t, err, core.ErrMissingDimensionID)

	_, err = reports.DimensionDetail(ctx, 1, core.DimensionCategory, 0, core.DateRange{})
	require.ErrorIs(t, err, core.ErrMissingDimensionID)
}

func TestDailyOverview_MatchesSummaryTotals(t *testing.T) {
	_, reports := seedReports(t)
	ctx := context.Background()

	details, err := reports.Summary(ctx, 1, core.DateRange{}, core.SortSpec{Key: "date"})
	require.NoError(t, err)

	var total int64
	for _, d := range details {
		total += d.Amount.Cents
	}

	days, err := reports.DailyOverview(ctx, 1, core.DateRange{})
	require.NoError(t, err)
	require.Len(t, days, 3)

	var dailyTotal int64
	for _, d := range days {
		dailyTotal += d.Amount.Cents
	}
	assert.Equal(t, total, dailyTotal)
}

func TestMonthlyTrend_GroupsByMonth(t *testing.T) {
	_, reports := seedReports(t)
	ctx := context.Background()

	totals, err := reports.AggregateByDimension(ctx, 1, core.DimensionStore, core.DateRange{}, core.SortSpec{Key: "name"})
	require.NoError(t, err)
	require.Len(t, totals, 2)
	costco := totals[0]
	require.Equal(t, "Costco", costco.Name)

	months, err := reports.MonthlyTrend(ctx, 1, core.DimensionStore, costco.ID, core.DateRange{})
	require.NoError(t, err)
	require.Len(t, months, 2)
	assert.Equal(t, "2024-01", months[0].Month)
	assert.Equal(t, int64(1250), months[0].Amount.Cents)
	assert.Equal(t, "2024-02", months[1].Month)
	assert.Equal(t, int64(325), months[1].Amount.Cents, "refund offsets the February total")
}

func TestAggregate_OwnerScoped(t *testing.T) {
	_, reports := seedReports(t)
	ctx := context.Background()

	totals, err := reports.AggregateByDimension(ctx, 1, core.DimensionCategory, core.DateRange{}, core.SortSpec{Key: "amount", Descending: true})
	require.NoError(t, err)
	require.Len(t, totals, 2, "user 2's Travel category must not appear")
	assert.Equal(t, "Household", totals[0].Name)
	assert.Equal(t, int64(3000), totals[0].Amount.Cents)
	assert.Equal(t, "Groceries", totals[1].Name)
	assert.Equal(t, int64(1575), totals[1].Amount.Cents)
}

func TestDimensionDetail_JoinsOtherDimension(t *testing.T) {
	_, reports := seedReports(t)
	ctx := context.Background()

	totals, err := reports.AggregateByDimension(ctx, 1, core.DimensionCategory, core.DateRange{}, core.SortSpec{Key: "name"})
	require.NoError(t, err)
	var groceriesID int64
	for _, tot := range totals {
		if tot.Name == "Groceries" {
			groceriesID = tot.ID
		}
	}
	require.NotZero(t, groceriesID)

	details, err := reports.DimensionDetail(ctx, 1, core.DimensionCategory, groceriesID, core.DateRange{})
	require.NoError(t, err)
	require.Len(t, details, 3)
	for _, d := range details {
		assert.Equal(t, "Costco", d.Store)
	}
}

func TestSummary_RangeFilters(t *testing.T) {
	_, reports := seedReports(t)
	ctx := context.Background()

	from, err := core.ParseDate("2024-02-01")
	require.NoError(t, err)

	details, err := reports.Summary(ctx, 1, core.DateRange{Start: from}, core.SortSpec{Key: "date"})
	require.NoError(t, err)
	assert.Len(t, details, 2)
}
