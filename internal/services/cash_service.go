package services

import (
	"context"
	"log/slog"

	"coopledger/internal/core"
	"coopledger/internal/storage"
)

// CashService records discrete debit/credit cash movements. There is no
// cross-entry invariant; the category kind is the only contract the period
// aggregator relies on.
type CashService struct {
	store storage.Store
}

func NewCashService(store storage.Store) *CashService {
	return &CashService{store: store}
}

// Record stores a cash entry. A free-text category label is mapped onto the
// closed category enumeration; unrecognized labels land on general.
func (s *CashService) Record(ctx context.Context, direction core.CashDirection, categoryLabel, description string, amount core.Money, date core.Date) (core.CashEntry, error) {
	entry := core.CashEntry{
		Direction:     direction,
		Category:      core.CategoryFromLabel(categoryLabel),
		Description:   description,
		Amount:        amount,
		Date:          date,
		Authorization: core.AuthorizationPending,
	}
	if err := entry.Validate(); err != nil {
		return core.CashEntry{}, err
	}
	if err := s.store.CreateCashEntry(ctx, &entry); err != nil {
		return core.CashEntry{}, err
	}

	slog.InfoContext(ctx, "Cash entry recorded",
		"id", entry.ID,
		"direction", string(direction),
		"category", string(entry.Category),
		"amount", amount.String())
	return entry, nil
}

func (s *CashService) Get(ctx context.Context, id int64) (core.CashEntry, error) {
	return s.store.GetCashEntry(ctx, id)
}

func (s *CashService) List(ctx context.Context, start, end core.Date) ([]core.CashEntry, error) {
	if err := core.ValidatePeriod(start, end); err != nil {
		return nil, err
	}
	return s.store.ListCashEntries(ctx, start, end)
}

func (s *CashService) Update(ctx context.Context, id int64, patch core.CashEntryPatch) (core.CashEntry, error) {
	existing, err := s.store.GetCashEntry(ctx, id)
	if err != nil {
		return core.CashEntry{}, err
	}

	merged := core.MergeCashEntry(existing, patch)
	if err := merged.Validate(); err != nil {
		return core.CashEntry{}, err
	}
	if err := s.store.UpdateCashEntry(ctx, merged); err != nil {
		return core.CashEntry{}, err
	}

	slog.InfoContext(ctx, "Cash entry updated", "id", id, "category", string(merged.Category))
	return merged, nil
}

func (s *CashService) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteCashEntry(ctx, id); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Cash entry deleted", "id", id)
	return nil
}
