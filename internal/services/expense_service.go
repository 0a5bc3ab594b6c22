package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"outlay/internal/core"
	"outlay/internal/log"
	"outlay/internal/storage"
)

// ExpenseService owns every mutation of the expense table. Each public
// method runs inside exactly one transaction: dimension resolution and the
// fact write either all commit or all roll back.
type ExpenseService struct {
	repo     *storage.Repository
	maxBatch int
	logger   *log.Logger
}

func NewExpenseService(repo *storage.Repository, maxBatch int, logger *log.Logger) *ExpenseService {
	return &ExpenseService{
		repo:     repo,
		maxBatch: maxBatch,
		logger:   logger.WithComponent(log.ComponentExpense),
	}
}

// Create validates a single record, resolves its dimensions and inserts it.
// Amount and date are required here, unlike bulk ingestion.
func (s *ExpenseService) Create(ctx context.Context, userID int64, in core.ExpenseInput) (int64, error) {
	if userID == 0 {
		return 0, core.ErrMissingOwner
	}

	amount, err := core.ParseAmount(in.Amount)
	if err != nil {
		return 0, err
	}
	date, err := core.ParseDate(in.Date)
	if err != nil {
		return 0, err
	}

	var id int64
	err = s.repo.WithTx(ctx, func(tx *sql.Tx) error {
		storeID, err := s.repo.ResolveDimension(ctx, tx, core.DimensionStore, in.Store)
		if err != nil {
			return err
		}
		categoryID, err := s.repo.ResolveDimension(ctx, tx, core.DimensionCategory, in.Category)
		if err != nil {
			return err
		}

		id, err = s.repo.InsertExpense(ctx, tx, core.Expense{
			UserID:     userID,
			Amount:     amount,
			Date:       date,
			StoreID:    storeID,
			CategoryID: categoryID,
		})
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("create expense: %w", err)
	}

	s.logger.InfoContext(ctx, "Expense created",
		log.FieldUserID, userID,
		log.FieldExpenseID, id,
		log.FieldOperation, log.OpCreate)
	return id, nil
}

// Ingest persists a batch of raw records atomically. All rows are parsed
// before anything touches storage, each distinct store and category label is
// resolved once, and the fact rows go in as one batched write. Any failure
// rolls the whole batch back; an empty batch succeeds with zero rows.
func (s *ExpenseService) Ingest(ctx context.Context, userID int64, inputs []core.ExpenseInput) (int64, error) {
	if userID == 0 {
		return 0, core.ErrMissingOwner
	}
	if len(inputs) == 0 {
		return 0, nil
	}
	if s.maxBatch > 0 && len(inputs) > s.maxBatch {
		return 0, fmt.Errorf("%w: %d records, limit %d", core.ErrBatchTooLarge, len(inputs), s.maxBatch)
	}

	expenses := make([]core.Expense, len(inputs))
	for i, in := range inputs {
		e := core.Expense{UserID: userID}

		if strings.TrimSpace(in.Amount) != "" {
			amount, err := core.ParseAmount(in.Amount)
			if err != nil {
				return 0, fmt.Errorf("record %d: %w", i, err)
			}
			e.Amount = amount
		}
		if strings.TrimSpace(in.Date) != "" {
			date, err := core.ParseDate(in.Date)
			if err != nil {
				return 0, fmt.Errorf("record %d: %w", i, err)
			}
			e.Date = date
		}
		expenses[i] = e
	}

	storeLabels := make([]string, len(inputs))
	categoryLabels := make([]string, len(inputs))
	for i, in := range inputs {
		storeLabels[i] = in.Store
		categoryLabels[i] = in.Category
	}

	var inserted int64
	err := s.repo.WithTx(ctx, func(tx *sql.Tx) error {
		storeIDs, err := s.repo.ResolveLabels(ctx, tx, core.DimensionStore, storeLabels)
		if err != nil {
			return err
		}
		categoryIDs, err := s.repo.ResolveLabels(ctx, tx, core.DimensionCategory, categoryLabels)
		if err != nil {
			return err
		}

		for i := range expenses {
			expenses[i].StoreID = storeIDs[inputs[i].Store]
			expenses[i].CategoryID = categoryIDs[inputs[i].Category]
		}

		inserted, err = s.repo.InsertExpenses(ctx, tx, expenses)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("ingest expenses: %w", err)
	}

	s.logger.InfoContext(ctx, "Expense batch ingested",
		log.FieldUserID, userID,
		log.FieldRowCount, inserted,
		log.FieldOperation, log.OpIngest)
	return inserted, nil
}

// Get returns one owned expense with dimension names resolved.
func (s *ExpenseService) Get(ctx context.Context, userID, id int64) (core.ExpenseDetail, error) {
	if userID == 0 {
		return core.ExpenseDetail{}, core.ErrMissingOwner
	}
	return s.repo.GetExpenseDetail(ctx, userID, id)
}

// Update applies a partial update. Supplied store or category text is
// trimmed; an empty result clears the reference rather than leaving it
// unchanged. The amount only changes when it is present and parses; a bad
// amount is skipped, matching the permissive source behavior. An empty date
// string leaves the date alone.
func (s *ExpenseService) Update(ctx context.Context, userID, id int64, patch core.ExpensePatch) error {
	if userID == 0 {
		return core.ErrMissingOwner
	}

	upd := storage.ExpenseUpdate{}

	if patch.Amount != nil {
		if amount, err := core.ParseAmount(*patch.Amount); err == nil {
			upd.Amount = &amount
		}
	}
	if patch.Date != nil && strings.TrimSpace(*patch.Date) != "" {
		date, err := core.ParseDate(*patch.Date)
		if err != nil {
			return err
		}
		upd.Date = &date
	}

	err := s.repo.WithTx(ctx, func(tx *sql.Tx) error {
		if patch.Store != nil {
			upd.Store.Set = true
			if trimmed := strings.TrimSpace(*patch.Store); trimmed != "" {
				id, err := s.repo.ResolveDimension(ctx, tx, core.DimensionStore, trimmed)
				if err != nil {
					return err
				}
				upd.Store.ID = id
			}
		}
		if patch.Category != nil {
			upd.Category.Set = true
			if trimmed := strings.TrimSpace(*patch.Category); trimmed != "" {
				id, err := s.repo.ResolveDimension(ctx, tx, core.DimensionCategory, trimmed)
				if err != nil {
					return err
				}
				upd.Category.ID = id
			}
		}

		return s.repo.UpdateExpense(ctx, tx, userID, id, upd)
	})
	if err != nil {
		if isDomainErr(err) {
			return err
		}
		return fmt.Errorf("update expense: %w", err)
	}

	s.logger.InfoContext(ctx, "Expense updated",
		log.FieldUserID, userID,
		log.FieldExpenseID, id,
		log.FieldOperation, log.OpUpdate)
	return nil
}

// Delete removes the caller's rows among ids. Unknown or foreign ids are
// ignored; an empty id set or missing owner is a validation error.
func (s *ExpenseService) Delete(ctx context.Context, userID int64, ids []int64) error {
	if userID == 0 {
		return core.ErrMissingOwner
	}
	if len(ids) == 0 {
		return core.ErrNoIDs
	}

	var deleted int64
	err := s.repo.WithTx(ctx, func(tx *sql.Tx) error {
		var err error
		deleted, err = s.repo.DeleteExpenses(ctx, tx, userID, ids)
		return err
	})
	if err != nil {
		return fmt.Errorf("delete expenses: %w", err)
	}

	s.logger.InfoContext(ctx, "Expenses deleted",
		log.FieldUserID, userID,
		log.FieldRowCount, deleted,
		log.FieldOperation, log.OpDelete)
	return nil
}
