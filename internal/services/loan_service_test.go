package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"coopledger/internal/core"
	"coopledger/internal/storage"
)

func newTestStore(t *testing.T) (*storage.MemoryStore, core.Member) {
	t.Helper()
	store := storage.NewMemoryStore()
	m := core.Member{Code: "M-001", Name: "Member One"}
	if err := store.SeedMember(context.Background(), &m); err != nil {
		t.Fatalf("SeedMember() error = %v", err)
	}
	return store, m
}

// newTestLoan creates the reference loan: principal 1,200,000.00 at 12% over
// 12 months, so total payable is 1,344,000.00 and the installment 112,000.00.
func newTestLoan(t *testing.T, svc *LoanService, memberID int64) core.Loan {
	t.Helper()
	loan, err := svc.CreateLoan(context.Background(), memberID,
		core.Money{Cents: 120_000_000}, 1200, 12, core.NewDate(2025, 1, 15))
	if err != nil {
		t.Fatalf("CreateLoan() error = %v", err)
	}
	return loan
}

func TestCreateLoan(t *testing.T) {
	store, member := newTestStore(t)
	svc := NewLoanService(store)

	loan := newTestLoan(t, svc, member.ID)

	if loan.OutstandingBalance.Cents != 134_400_000 {
		t.Errorf("OutstandingBalance = %d, want 134400000", loan.OutstandingBalance.Cents)
	}
	if loan.MonthlyInstallment.Cents != 11_200_000 {
		t.Errorf("MonthlyInstallment = %d, want 11200000", loan.MonthlyInstallment.Cents)
	}
	if loan.Status != core.LoanActive {
		t.Errorf("Status = %q, want active", loan.Status)
	}
}

func TestCreateLoan_UnknownMember(t *testing.T) {
	store, _ := newTestStore(t)
	svc := NewLoanService(store)

	_, err := svc.CreateLoan(context.Background(), 9999,
		core.Money{Cents: 100_000}, 1000, 6, core.NewDate(2025, 1, 1))
	if !errors.Is(err, core.ErrMemberNotFound) {
		t.Errorf("CreateLoan() error = %v, want ErrMemberNotFound", err)
	}
}

func TestCreateLoan_InvalidTerms(t *testing.T) {
	store, member := newTestStore(t)
	svc := NewLoanService(store)

	tests := []struct {
		name       string
		principal  int64
		rateBps    int64
		termMonths int
	}{
		{"zero principal", 0, 1200, 12},
		{"negative rate", 100_000, -1, 12},
		{"zero term", 100_000, 1200, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateLoan(context.Background(), member.ID,
				core.Money{Cents: tt.principal}, tt.rateBps, tt.termMonths, core.NewDate(2025, 1, 1))
			if !errors.Is(err, core.ErrInvalidLoanTerms) {
				t.Errorf("CreateLoan() error = %v, want ErrInvalidLoanTerms", err)
			}
		})
	}
}

func TestRecordPayment(t *testing.T) {
	store, member := newTestStore(t)
	svc := NewLoanService(store)
	ctx := context.Background()
	loan := newTestLoan(t, svc, member.ID)

	result, err := svc.RecordPayment(ctx, loan.ID, 1,
		core.Money{Cents: 10_000_000}, core.Money{Cents: 1_200_000},
		core.NewDate(2025, 2, 10), "")
	if err != nil {
		t.Fatalf("RecordPayment() error = %v", err)
	}

	if result.Payment.TotalAmount.Cents != 11_200_000 {
		t.Errorf("TotalAmount = %d, want 11200000", result.Payment.TotalAmount.Cents)
	}
	if result.Loan.OutstandingBalance.Cents != 123_200_000 {
		t.Errorf("OutstandingBalance = %d, want 123200000", result.Loan.OutstandingBalance.Cents)
	}
	if result.Payment.RemainingAfterPayment.Cents != 123_200_000 {
		t.Errorf("RemainingAfterPayment = %d, want 123200000", result.Payment.RemainingAfterPayment.Cents)
	}
	if result.Payment.Status != core.PaymentPaid {
		t.Errorf("Status = %q, want paid (on time for installment 1)", result.Payment.Status)
	}
	if result.Warning != "" {
		t.Errorf("Warning = %q, want none", result.Warning)
	}
}

func TestRecordPayment_LateClassification(t *testing.T) {
	store, member := newTestStore(t)
	svc := NewLoanService(store)
	loan := newTestLoan(t, svc, member.ID)

	// Installment 1 is due 2025-02-15; paying on the 20th is late.
	result, err := svc.RecordPayment(context.Background(), loan.ID, 1,
		core.Money{Cents: 11_200_000}, core.Money{}, core.NewDate(2025, 2, 20), "")
	if err != nil {
		t.Fatalf("RecordPayment() error = %v", err)
	}
	if result.Payment.Status != core.PaymentLate {
		t.Errorf("Status = %q, want late", result.Payment.Status)
	}
}

func TestRecordPayment_DuplicateInstallment(t *testing.T) {
	store, member := newTestStore(t)
	svc := NewLoanService(store)
	ctx := context.Background()
	loan := newTestLoan(t, svc, member.ID)

	if _, err := svc.RecordPayment(ctx, loan.ID, 1,
		core.Money{Cents: 11_200_000}, core.Money{}, core.NewDate(2025, 2, 10), ""); err != nil {
		t.Fatalf("first RecordPayment() error = %v", err)
	}
	_, err := svc.RecordPayment(ctx, loan.ID, 1,
		core.Money{Cents: 11_200_000}, core.Money{}, core.NewDate(2025, 2, 11), "")
	if !errors.Is(err, core.ErrDuplicateInstallment) {
		t.Errorf("second RecordPayment() error = %v, want ErrDuplicateInstallment", err)
	}

	// The failed create must not have moved the balance.
	got, _ := svc.GetLoan(ctx, loan.ID)
	if got.OutstandingBalance.Cents != 123_200_000 {
		t.Errorf("OutstandingBalance = %d, want 123200000", got.OutstandingBalance.Cents)
	}
}

func TestRecordPayment_ClampToZero(t *testing.T) {
	store, member := newTestStore(t)
	svc := NewLoanService(store)
	ctx := context.Background()

	loan, err := svc.CreateLoan(ctx, member.ID,
		core.Money{Cents: 10_000_000}, 0, 1, core.NewDate(2025, 1, 1))
	if err != nil {
		t.Fatalf("CreateLoan() error = %v", err)
	}

	// Overpay: the balance clamps at zero with a warning instead of failing.
	result, err := svc.RecordPayment(ctx, loan.ID, 1,
		core.Money{Cents: 12_000_000}, core.Money{}, core.NewDate(2025, 2, 1), "")
	if err != nil {
		t.Fatalf("RecordPayment() error = %v", err)
	}
	if result.Loan.OutstandingBalance.Cents != 0 {
		t.Errorf("OutstandingBalance = %d, want 0", result.Loan.OutstandingBalance.Cents)
	}
	if result.Warning == "" {
		t.Error("Warning is empty, want clamp warning")
	}
	if result.Loan.Status != core.LoanPaid {
		t.Errorf("Status = %q, want paid", result.Loan.Status)
	}
}

func TestUpdatePayment_AppliesDelta(t *testing.T) {
	store, member := newTestStore(t)
	svc := NewLoanService(store)
	ctx := context.Background()
	loan := newTestLoan(t, svc, member.ID)

	created, err := svc.RecordPayment(ctx, loan.ID, 1,
		core.Money{Cents: 10_000_000}, core.Money{Cents: 1_200_000},
		core.NewDate(2025, 2, 10), "")
	if err != nil {
		t.Fatalf("RecordPayment() error = %v", err)
	}

	// Raise the principal portion by 1,000.00: the balance moves by the delta.
	newPrincipal := core.Money{Cents: 10_100_000}
	result, err := svc.UpdatePayment(ctx, loan.ID, created.Payment.ID, core.PaymentPatch{
		PrincipalPortion: &newPrincipal,
	})
	if err != nil {
		t.Fatalf("UpdatePayment() error = %v", err)
	}

	if result.Payment.TotalAmount.Cents != 11_300_000 {
		t.Errorf("TotalAmount = %d, want 11300000", result.Payment.TotalAmount.Cents)
	}
	if result.Loan.OutstandingBalance.Cents != 123_100_000 {
		t.Errorf("OutstandingBalance = %d, want 123100000", result.Loan.OutstandingBalance.Cents)
	}

	// Untouched fields keep their stored values.
	if result.Payment.InterestPortion.Cents != 1_200_000 {
		t.Errorf("InterestPortion = %d, want 1200000", result.Payment.InterestPortion.Cents)
	}
	if result.Payment.InstallmentNumber != 1 {
		t.Errorf("InstallmentNumber = %d, want 1", result.Payment.InstallmentNumber)
	}
}

func TestUpdatePayment_WrongLoan(t *testing.T) {
	store, member := newTestStore(t)
	svc := NewLoanService(store)
	ctx := context.Background()
	loanA := newTestLoan(t, svc, member.ID)
	loanB, err := svc.CreateLoan(ctx, member.ID,
		core.Money{Cents: 50_000_000}, 1000, 6, core.NewDate(2025, 3, 1))
	if err != nil {
		t.Fatalf("CreateLoan() error = %v", err)
	}

	created, err := svc.RecordPayment(ctx, loanA.ID, 1,
		core.Money{Cents: 11_200_000}, core.Money{}, core.NewDate(2025, 2, 10), "")
	if err != nil {
		t.Fatalf("RecordPayment() error = %v", err)
	}

	if _, err := svc.UpdatePayment(ctx, loanB.ID, created.Payment.ID, core.PaymentPatch{}); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("UpdatePayment() on wrong loan error = %v, want ErrNotFound", err)
	}
	if _, err := svc.DeletePayment(ctx, loanB.ID, created.Payment.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("DeletePayment() on wrong loan error = %v, want ErrNotFound", err)
	}
}

func TestDeletePayment_RestoresBalance(t *testing.T) {
	store, member := newTestStore(t)
	svc := NewLoanService(store)
	ctx := context.Background()
	loan := newTestLoan(t, svc, member.ID)

	created, err := svc.RecordPayment(ctx, loan.ID, 1,
		core.Money{Cents: 11_200_000}, core.Money{}, core.NewDate(2025, 2, 10), "")
	if err != nil {
		t.Fatalf("RecordPayment() error = %v", err)
	}

	result, err := svc.DeletePayment(ctx, loan.ID, created.Payment.ID)
	if err != nil {
		t.Fatalf("DeletePayment() error = %v", err)
	}
	if result.NewOutstandingBalance.Cents != 134_400_000 {
		t.Errorf("NewOutstandingBalance = %d, want 134400000", result.NewOutstandingBalance.Cents)
	}
	if result.Warning != "" {
		t.Errorf("Warning = %q, want none (no cap engaged)", result.Warning)
	}
}

// Recording a payment, deleting it and recording an identical one lands back
// on the same balance whenever the cap never engages.
func TestDeletePayment_RoundTripLaw(t *testing.T) {
	store, member := newTestStore(t)
	svc := NewLoanService(store)
	ctx := context.Background()
	loan := newTestLoan(t, svc, member.ID)

	record := func() PaymentResult {
		t.Helper()
		r, err := svc.RecordPayment(ctx, loan.ID, 2,
			core.Money{Cents: 10_000_000}, core.Money{Cents: 1_200_000},
			core.NewDate(2025, 3, 10), "")
		if err != nil {
			t.Fatalf("RecordPayment() error = %v", err)
		}
		return r
	}

	first := record()
	before := first.Loan.OutstandingBalance

	if _, err := svc.DeletePayment(ctx, loan.ID, first.Payment.ID); err != nil {
		t.Fatalf("DeletePayment() error = %v", err)
	}
	second := record()

	if second.Loan.OutstandingBalance.Cents != before.Cents {
		t.Errorf("balance after delete+recreate = %d, want %d",
			second.Loan.OutstandingBalance.Cents, before.Cents)
	}
}

// Spec-level scenario: deleting a payment never pushes the balance above the
// loan's total payable, even after edits changed amounts in between.
func TestDeletePayment_CapsAtTotalPayable(t *testing.T) {
	store, member := newTestStore(t)
	svc := NewLoanService(store)
	ctx := context.Background()
	loan := newTestLoan(t, svc, member.ID)

	created, err := svc.RecordPayment(ctx, loan.ID, 1,
		core.Money{Cents: 11_200_000}, core.Money{}, core.NewDate(2025, 2, 10), "")
	if err != nil {
		t.Fatalf("RecordPayment() error = %v", err)
	}

	// Simulate the drift an inconsistent edit sequence can cause: the stored
	// balance already sits at the maximum while the payment row still exists.
	// Restoring the deleted total would land at 1,456,000.00 without the cap.
	drifted, _ := svc.GetLoan(ctx, loan.ID)
	drifted.OutstandingBalance = core.Money{Cents: 134_400_000}
	if err := store.UpdateLoan(ctx, drifted); err != nil {
		t.Fatalf("UpdateLoan() error = %v", err)
	}

	capped, err := svc.DeletePayment(ctx, loan.ID, created.Payment.ID)
	if err != nil {
		t.Fatalf("DeletePayment() error = %v", err)
	}
	if capped.NewOutstandingBalance.Cents != 134_400_000 {
		t.Errorf("NewOutstandingBalance = %d, want capped 134400000 (not 145600000)",
			capped.NewOutstandingBalance.Cents)
	}
	if capped.Warning == "" {
		t.Error("Warning is empty, want cap warning")
	}
}

func TestLoanClosureAndReopen(t *testing.T) {
	store, member := newTestStore(t)
	svc := NewLoanService(store)
	ctx := context.Background()

	loan, err := svc.CreateLoan(ctx, member.ID,
		core.Money{Cents: 10_000_000}, 0, 2, core.NewDate(2025, 1, 1))
	if err != nil {
		t.Fatalf("CreateLoan() error = %v", err)
	}

	paid, err := svc.RecordPayment(ctx, loan.ID, 1,
		core.Money{Cents: 10_000_000}, core.Money{}, core.NewDate(2025, 2, 1), "")
	if err != nil {
		t.Fatalf("RecordPayment() error = %v", err)
	}
	if paid.Loan.Status != core.LoanPaid {
		t.Errorf("Status after full payment = %q, want paid", paid.Loan.Status)
	}

	// Deleting the closing payment reopens the loan.
	res, err := svc.DeletePayment(ctx, loan.ID, paid.Payment.ID)
	if err != nil {
		t.Fatalf("DeletePayment() error = %v", err)
	}
	if res.NewOutstandingBalance.Cents != 10_000_000 {
		t.Errorf("NewOutstandingBalance = %d, want 10000000", res.NewOutstandingBalance.Cents)
	}
	reopened, _ := svc.GetLoan(ctx, loan.ID)
	if reopened.Status != core.LoanActive {
		t.Errorf("Status after delete = %q, want active", reopened.Status)
	}
}

// Concurrent mutations under one loan serialize on the per-loan lock: after
// any interleaving the invariant 0 <= balance <= totalPayable holds and the
// balance equals totalPayable minus the surviving payments.
func TestConcurrentPayments_SameLoan(t *testing.T) {
	store, member := newTestStore(t)
	svc := NewLoanService(store)
	ctx := context.Background()
	loan := newTestLoan(t, svc, member.ID)

	const workers = 8
	var wg sync.WaitGroup
	for i := 1; i <= workers; i++ {
		wg.Add(1)
		go func(installment int) {
			defer wg.Done()
			_, err := svc.RecordPayment(ctx, loan.ID, installment,
				core.Money{Cents: 11_200_000}, core.Money{},
				core.NewDate(2025, 1+installment, 10), "")
			if err != nil {
				t.Errorf("RecordPayment(%d) error = %v", installment, err)
			}
		}(i)
	}
	wg.Wait()

	got, err := svc.GetLoan(ctx, loan.ID)
	if err != nil {
		t.Fatalf("GetLoan() error = %v", err)
	}
	want := int64(134_400_000 - workers*11_200_000)
	if got.OutstandingBalance.Cents != want {
		t.Errorf("OutstandingBalance = %d, want %d", got.OutstandingBalance.Cents, want)
	}
}

// balanceWriteFailStore makes UpdateLoan fail on demand so the rollback path
// of payment mutations can be driven.
type balanceWriteFailStore struct {
	*storage.MemoryStore
	failBalanceWrite bool
}

func (s *balanceWriteFailStore) UpdateLoan(ctx context.Context, loan core.Loan) error {
	if s.failBalanceWrite {
		return errors.New("disk full")
	}
	return s.MemoryStore.UpdateLoan(ctx, loan)
}

// A failed balance write must not leave the payment set out of step with the
// stored balance: each mutation rolls its payment write back.
func TestPaymentMutations_RollBackOnBalanceWriteFailure(t *testing.T) {
	inner, member := newTestStore(t)
	store := &balanceWriteFailStore{MemoryStore: inner}
	svc := NewLoanService(store)
	ctx := context.Background()
	loan := newTestLoan(t, svc, member.ID)

	recorded, err := svc.RecordPayment(ctx, loan.ID, 1,
		core.Money{Cents: 11_200_000}, core.Money{}, core.NewDate(2025, 2, 10), "")
	if err != nil {
		t.Fatalf("RecordPayment() error = %v", err)
	}

	store.failBalanceWrite = true

	// Record: the new payment row must not survive.
	if _, err := svc.RecordPayment(ctx, loan.ID, 2,
		core.Money{Cents: 11_200_000}, core.Money{}, core.NewDate(2025, 3, 10), ""); err == nil {
		t.Fatal("RecordPayment() succeeded, want balance write error")
	}

	// Update: the prior row must be restored.
	bigger := core.Money{Cents: 20_000_000}
	if _, err := svc.UpdatePayment(ctx, loan.ID, recorded.Payment.ID,
		core.PaymentPatch{PrincipalPortion: &bigger}); err == nil {
		t.Fatal("UpdatePayment() succeeded, want balance write error")
	}

	// Delete: the row must be re-inserted.
	if _, err := svc.DeletePayment(ctx, loan.ID, recorded.Payment.ID); err == nil {
		t.Fatal("DeletePayment() succeeded, want balance write error")
	}

	store.failBalanceWrite = false

	payments, err := svc.ListPayments(ctx, loan.ID)
	if err != nil {
		t.Fatalf("ListPayments() error = %v", err)
	}
	if len(payments) != 1 {
		t.Fatalf("len(payments) = %d, want 1 (failed mutations rolled back)", len(payments))
	}
	if payments[0].TotalAmount.Cents != 11_200_000 {
		t.Errorf("TotalAmount = %d, want original 11200000", payments[0].TotalAmount.Cents)
	}

	got, err := svc.GetLoan(ctx, loan.ID)
	if err != nil {
		t.Fatalf("GetLoan() error = %v", err)
	}
	if got.OutstandingBalance.Cents != 123_200_000 {
		t.Errorf("OutstandingBalance = %d, want unchanged 123200000", got.OutstandingBalance.Cents)
	}
}

func TestListPayments(t *testing.T) {
	store, member := newTestStore(t)
	svc := NewLoanService(store)
	ctx := context.Background()
	loan := newTestLoan(t, svc, member.ID)

	for i := 3; i >= 1; i-- {
		if _, err := svc.RecordPayment(ctx, loan.ID, i,
			core.Money{Cents: 11_200_000}, core.Money{},
			core.NewDate(2025, 1+i, 10), ""); err != nil {
			t.Fatalf("RecordPayment(%d) error = %v", i, err)
		}
	}

	payments, err := svc.ListPayments(ctx, loan.ID)
	if err != nil {
		t.Fatalf("ListPayments() error = %v", err)
	}
	if len(payments) != 3 {
		t.Fatalf("len(payments) = %d, want 3", len(payments))
	}
	for i, p := range payments {
		if p.InstallmentNumber != i+1 {
			t.Errorf("payments[%d].InstallmentNumber = %d, want %d", i, p.InstallmentNumber, i+1)
		}
	}

	if _, err := svc.ListPayments(ctx, 9999); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("ListPayments(missing loan) error = %v, want ErrNotFound", err)
	}
}
