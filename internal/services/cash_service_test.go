package services

import (
	"context"
	"errors"
	"testing"

	"coopledger/internal/core"
	"coopledger/internal/storage"
)

func TestRecordCashEntry(t *testing.T) {
	svc := NewCashService(storage.NewMemoryStore())
	ctx := context.Background()

	entry, err := svc.Record(ctx, core.Debit, "transport", "fuel for member visits",
		core.Money{Cents: 5_000_000}, core.NewDate(2025, 3, 12))
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	if entry.Category != core.CategoryTransport {
		t.Errorf("Category = %q, want transport", entry.Category)
	}
	if entry.Authorization != core.AuthorizationPending {
		t.Errorf("Authorization = %q, want pending", entry.Authorization)
	}
}

func TestRecordCashEntry_LegacyLabels(t *testing.T) {
	svc := NewCashService(storage.NewMemoryStore())
	ctx := context.Background()

	tests := []struct {
		label        string
		wantCategory core.CashCategory
		wantInternal bool
	}{
		{"Bank Transfer", core.CategoryBankTransfer, true},
		{"cash withdrawal to bank", core.CategoryBankWithdrawal, true},
		{"member loan disbursement", core.CategoryLoanDisbursement, true},
		{"transport", core.CategoryTransport, false},
		{"office stationery", core.CategorySupplies, false},
		{"something unrecognized", core.CategoryGeneral, false},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			entry, err := svc.Record(ctx, core.Credit, tt.label, "entry: "+tt.label,
				core.Money{Cents: 1_000_000}, core.NewDate(2025, 4, 1))
			if err != nil {
				t.Fatalf("Record() error = %v", err)
			}
			if entry.Category != tt.wantCategory {
				t.Errorf("Category = %q, want %q", entry.Category, tt.wantCategory)
			}
			if entry.Category.Internal() != tt.wantInternal {
				t.Errorf("Internal() = %v, want %v", entry.Category.Internal(), tt.wantInternal)
			}
		})
	}
}

func TestRecordCashEntry_Validation(t *testing.T) {
	svc := NewCashService(storage.NewMemoryStore())
	ctx := context.Background()

	if _, err := svc.Record(ctx, "sideways", "general", "odd direction",
		core.Money{Cents: 1_000}, core.NewDate(2025, 1, 1)); !errors.Is(err, core.ErrInvalidDirection) {
		t.Errorf("invalid direction error = %v, want ErrInvalidDirection", err)
	}
	if _, err := svc.Record(ctx, core.Debit, "general", "  ",
		core.Money{Cents: 1_000}, core.NewDate(2025, 1, 1)); !errors.Is(err, core.ErrEmptyDescription) {
		t.Errorf("empty description error = %v, want ErrEmptyDescription", err)
	}
	if _, err := svc.Record(ctx, core.Debit, "general", "zero amount",
		core.Money{}, core.NewDate(2025, 1, 1)); !errors.Is(err, core.ErrInvalidAmount) {
		t.Errorf("zero amount error = %v, want ErrInvalidAmount", err)
	}
}

func TestUpdateCashEntry(t *testing.T) {
	svc := NewCashService(storage.NewMemoryStore())
	ctx := context.Background()

	entry, err := svc.Record(ctx, core.Debit, "general", "pending purchase",
		core.Money{Cents: 2_000_000}, core.NewDate(2025, 5, 2))
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	approved := core.AuthorizationApproved
	newAmount := core.Money{Cents: 2_500_000}
	updated, err := svc.Update(ctx, entry.ID, core.CashEntryPatch{
		Amount:        &newAmount,
		Authorization: &approved,
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if updated.Amount.Cents != 2_500_000 {
		t.Errorf("Amount = %d, want 2500000", updated.Amount.Cents)
	}
	if updated.Authorization != core.AuthorizationApproved {
		t.Errorf("Authorization = %q, want approved", updated.Authorization)
	}
	// Unpatched fields survive.
	if updated.Description != "pending purchase" {
		t.Errorf("Description = %q, want unchanged", updated.Description)
	}
	if updated.Direction != core.Debit {
		t.Errorf("Direction = %q, want debit", updated.Direction)
	}
}

func TestListCashEntries_RangeAndOrder(t *testing.T) {
	svc := NewCashService(storage.NewMemoryStore())
	ctx := context.Background()

	dates := []core.Date{
		core.NewDate(2025, 3, 20),
		core.NewDate(2025, 3, 5),
		core.NewDate(2025, 4, 1), // outside the queried window
	}
	for i, d := range dates {
		if _, err := svc.Record(ctx, core.Debit, "general", "entry", core.Money{Cents: int64(1000 * (i + 1))}, d); err != nil {
			t.Fatalf("Record(%d) error = %v", i, err)
		}
	}

	entries, err := svc.List(ctx, core.NewDate(2025, 3, 1), core.NewDate(2025, 3, 31))
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	if entries[0].Date.After(entries[1].Date.Time) {
		t.Error("entries not sorted by date ascending")
	}

	if _, err := svc.List(ctx, core.NewDate(2025, 3, 31), core.NewDate(2025, 3, 1)); !errors.Is(err, core.ErrInvalidPeriod) {
		t.Errorf("inverted range error = %v, want ErrInvalidPeriod", err)
	}
}

func TestDeleteCashEntry(t *testing.T) {
	svc := NewCashService(storage.NewMemoryStore())
	ctx := context.Background()

	entry, err := svc.Record(ctx, core.Credit, "general", "donation",
		core.Money{Cents: 500_000}, core.NewDate(2025, 6, 1))
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	if err := svc.Delete(ctx, entry.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := svc.Get(ctx, entry.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
	}
}
