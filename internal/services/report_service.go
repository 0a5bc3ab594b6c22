package services

import (
	"context"
	"errors"

	"outlay/internal/core"
	"outlay/internal/log"
	"outlay/internal/storage"
)

// ReportService serves the read shapes. Reads run without explicit
// transactions and see committed state only.
type ReportService struct {
	repo   *storage.Repository
	logger *log.Logger
}

func NewReportService(repo *storage.Repository, logger *log.Logger) *ReportService {
	return &ReportService{
		repo:   repo,
		logger: logger.WithComponent(log.ComponentReport),
	}
}

// Summary lists the owner's expenses over the range, dimension names joined,
// ordered by the validated sort.
func (s *ReportService) Summary(ctx context.Context, userID int64, rng core.DateRange, sort core.SortSpec) ([]core.ExpenseDetail, error) {
	if userID == 0 {
		return nil, core.ErrMissingOwner
	}
	return s.repo.ListSummary(ctx, userID, rng, sort)
}

// DailyOverview sums the owner's expenses per day.
func (s *ReportService) DailyOverview(ctx context.Context, userID int64, rng core.DateRange) ([]core.DailyTotal, error) {
	if userID == 0 {
		return nil, core.ErrMissingOwner
	}
	return s.repo.DailyOverview(ctx, userID, rng)
}

// MonthlyTrend sums one dimension instance's expenses per calendar month.
// The dimension id is required and checked before any query runs.
func (s *ReportService) MonthlyTrend(ctx context.Context, userID int64, kind core.Dimension, dimID int64, rng core.DateRange) ([]core.MonthlyTotal, error) {
	if userID == 0 {
		return nil, core.ErrMissingOwner
	}
	if dimID == 0 {
		return nil, core.ErrMissingDimensionID
	}
	return s.repo.MonthlyTrend(ctx, userID, kind, dimID, rng)
}

// DimensionDetail lists the expenses behind one dimension instance, with the
// other dimension's name attached, ordered by date.
func (s *ReportService) DimensionDetail(ctx context.Context, userID int64, kind core.Dimension, dimID int64, rng core.DateRange) ([]core.ExpenseDetail, error) {
	if userID == 0 {
		return nil, core.ErrMissingOwner
	}
	if dimID == 0 {
		return nil, core.ErrMissingDimensionID
	}
	return s.repo.DimensionDetail(ctx, userID, kind, dimID, rng)
}

// AggregateByDimension sums per dimension instance; only instances with at
// least one matching expense appear.
func (s *ReportService) AggregateByDimension(ctx context.Context, userID int64, kind core.Dimension, rng core.DateRange, sort core.SortSpec) ([]core.DimensionTotal, error) {
	if userID == 0 {
		return nil, core.ErrMissingOwner
	}
	return s.repo.AggregateByDimension(ctx, userID, kind, rng, sort)
}

// DimensionLabels lists the distinct dimension names the owner has used.
func (s *ReportService) DimensionLabels(ctx context.Context, userID int64, kind core.Dimension) ([]string, error) {
	if userID == 0 {
		return nil, core.ErrMissingOwner
	}
	return s.repo.ListDimensionNames(ctx, userID, kind)
}

// isDomainErr reports whether err is one of the sentinels that must surface
// unwrapped so callers can map it to a status.
func isDomainErr(err error) bool {
	for _, sentinel := range []error{
		core.ErrInvalidAmount,
		core.ErrInvalidDate,
		core.ErrInvalidSort,
		core.ErrNotFound,
		core.ErrMissingDimensionID,
		core.ErrUnknownDimension,
		core.ErrMissingOwner,
		core.ErrNoIDs,
		core.ErrBatchTooLarge,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
