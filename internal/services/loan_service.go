// Package services orchestrates ledger operations over the storage layer:
// loan reconciliation, contribution and cash bookkeeping, and period report
// generation. Services are the last line of defense; they re-check invariants
// even when callers already validated.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"coopledger/internal/core"
	"coopledger/internal/storage"
)

// PaymentResult carries the outcome of a payment mutation. Warning is set
// when an invariant clamp engaged; the operation still succeeded and the
// caller decides whether to alert a reviewer.
type PaymentResult struct {
	Payment core.LoanPayment
	Loan    core.Loan
	Warning string
}

// DeletePaymentResult reports the balance after removing a payment.
type DeletePaymentResult struct {
	NewOutstandingBalance core.Money
	Warning               string
}

// LoanService keeps each loan's outstanding balance consistent with its
// recorded payments. All payment mutations for one loan serialize on a
// per-loan mutex; operations on distinct loans run in parallel.
type LoanService struct {
	store storage.Store

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func NewLoanService(store storage.Store) *LoanService {
	return &LoanService{
		store: store,
		locks: make(map[int64]*sync.Mutex),
	}
}

// loanLock returns the mutex serializing writes for one loan. Locks are never
// released from the map; the set is bounded by the number of loans.
func (s *LoanService) loanLock(loanID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[loanID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[loanID] = l
	}
	return l
}

// CreateLoan approves a loan for a member: amortization is computed once here
// and the opening outstanding balance is the full payable amount.
func (s *LoanService) CreateLoan(ctx context.Context, memberID int64, principal core.Money, rateBps int64, termMonths int, origination core.Date) (core.Loan, error) {
	if _, err := s.store.GetMemberByID(ctx, memberID); err != nil {
		return core.Loan{}, err
	}

	am, err := core.Amortize(principal, rateBps, termMonths)
	if err != nil {
		return core.Loan{}, err
	}

	loan := core.Loan{
		MemberID:           memberID,
		Principal:          principal,
		RateBps:            rateBps,
		TermMonths:         termMonths,
		MonthlyInstallment: am.MonthlyInstallment,
		OriginationDate:    origination,
		Status:             core.LoanActive,
		OutstandingBalance: am.TotalPayable,
	}
	if err := loan.Validate(); err != nil {
		return core.Loan{}, err
	}
	if err := s.store.CreateLoan(ctx, &loan); err != nil {
		return core.Loan{}, fmt.Errorf("store loan: %w", err)
	}

	slog.InfoContext(ctx, "Loan created",
		"loan_id", loan.ID,
		"member_id", memberID,
		"total_payable", am.TotalPayable.String(),
		"installment", am.MonthlyInstallment.String())
	return loan, nil
}

func (s *LoanService) GetLoan(ctx context.Context, id int64) (core.Loan, error) {
	return s.store.GetLoan(ctx, id)
}

func (s *LoanService) ListLoans(ctx context.Context) ([]core.Loan, error) {
	return s.store.ListLoans(ctx)
}

func (s *LoanService) ListPayments(ctx context.Context, loanID int64) ([]core.LoanPayment, error) {
	if _, err := s.store.GetLoan(ctx, loanID); err != nil {
		return nil, err
	}
	return s.store.ListPaymentsByLoan(ctx, loanID)
}

// RecordPayment applies a new installment against the loan's balance. The
// payment status defaults to paid/late classified against the installment's
// due date when the caller does not supply one.
func (s *LoanService) RecordPayment(ctx context.Context, loanID int64, installmentNumber int, principalPortion, interestPortion core.Money, paymentDate core.Date, status core.PaymentStatus) (PaymentResult, error) {
	lock := s.loanLock(loanID)
	lock.Lock()
	defer lock.Unlock()

	loan, err := s.store.GetLoan(ctx, loanID)
	if err != nil {
		return PaymentResult{}, err
	}

	payment := core.LoanPayment{
		LoanID:            loanID,
		InstallmentNumber: installmentNumber,
		PrincipalPortion:  principalPortion,
		InterestPortion:   interestPortion,
		TotalAmount:       principalPortion.Add(interestPortion),
		PaymentDate:       paymentDate,
		Status:            status,
	}
	if payment.Status == "" {
		payment.Status = core.ClassifyPayment(loan.OriginationDate, installmentNumber, paymentDate)
	}
	if err := payment.Validate(); err != nil {
		return PaymentResult{}, err
	}

	newBalance, warning := applyDebit(loan.OutstandingBalance, payment.TotalAmount)
	payment.RemainingAfterPayment = newBalance

	if err := s.store.CreatePayment(ctx, &payment); err != nil {
		return PaymentResult{}, err
	}

	loan = settleLoanBalance(loan, newBalance)
	if err := s.store.UpdateLoan(ctx, loan); err != nil {
		// The payment row landed but the balance write failed; take the row
		// back out so the payment set stays consistent with the stored balance.
		if rbErr := s.store.DeletePayment(ctx, payment.ID); rbErr != nil {
			slog.ErrorContext(ctx, "Rollback of payment failed, ledger needs manual reconciliation",
				"loan_id", loanID, "payment_id", payment.ID, "error", rbErr)
		}
		return PaymentResult{}, fmt.Errorf("reconcile loan balance: %w", err)
	}

	slog.InfoContext(ctx, "Payment recorded",
		"loan_id", loanID,
		"installment", installmentNumber,
		"total", payment.TotalAmount.String(),
		"outstanding", newBalance.String())
	return PaymentResult{Payment: payment, Loan: loan, Warning: warning}, nil
}

// UpdatePayment merges a partial patch over the stored payment and moves the
// loan balance by the delta between new and old totals. The prior total is
// re-read under the loan lock so concurrent edits cannot drift the balance.
func (s *LoanService) UpdatePayment(ctx context.Context, loanID, paymentID int64, patch core.PaymentPatch) (PaymentResult, error) {
	lock := s.loanLock(loanID)
	lock.Lock()
	defer lock.Unlock()

	existing, err := s.store.GetPayment(ctx, paymentID)
	if err != nil {
		return PaymentResult{}, err
	}
	if existing.LoanID != loanID {
		return PaymentResult{}, core.ErrNotFound
	}

	loan, err := s.store.GetLoan(ctx, loanID)
	if err != nil {
		return PaymentResult{}, err
	}

	merged := core.MergePayment(existing, patch)
	if err := merged.Validate(); err != nil {
		return PaymentResult{}, err
	}

	delta := merged.TotalAmount.Sub(existing.TotalAmount)
	newBalance, warning := applyDebit(loan.OutstandingBalance, delta)
	merged.RemainingAfterPayment = newBalance

	if err := s.store.UpdatePayment(ctx, merged); err != nil {
		return PaymentResult{}, err
	}

	loan = settleLoanBalance(loan, newBalance)
	if err := s.store.UpdateLoan(ctx, loan); err != nil {
		// Restore the prior payment row so it stays consistent with the
		// stored balance.
		if rbErr := s.store.UpdatePayment(ctx, existing); rbErr != nil {
			slog.ErrorContext(ctx, "Rollback of payment edit failed, ledger needs manual reconciliation",
				"loan_id", loanID, "payment_id", paymentID, "error", rbErr)
		}
		return PaymentResult{}, fmt.Errorf("reconcile loan balance: %w", err)
	}

	slog.InfoContext(ctx, "Payment updated",
		"loan_id", loanID,
		"payment_id", paymentID,
		"delta", delta.String(),
		"outstanding", newBalance.String())
	return PaymentResult{Payment: merged, Loan: loan, Warning: warning}, nil
}

// DeletePayment restores the deleted total to the balance, capped at the
// loan's own total payable. The cap is a deliberate guard: an edit followed
// by a delete could otherwise push the balance above the loan's maximum.
func (s *LoanService) DeletePayment(ctx context.Context, loanID, paymentID int64) (DeletePaymentResult, error) {
	lock := s.loanLock(loanID)
	lock.Lock()
	defer lock.Unlock()

	payment, err := s.store.GetPayment(ctx, paymentID)
	if err != nil {
		return DeletePaymentResult{}, err
	}
	if payment.LoanID != loanID {
		return DeletePaymentResult{}, core.ErrNotFound
	}

	loan, err := s.store.GetLoan(ctx, loanID)
	if err != nil {
		return DeletePaymentResult{}, err
	}

	am, err := core.Amortize(loan.Principal, loan.RateBps, loan.TermMonths)
	if err != nil {
		return DeletePaymentResult{}, fmt.Errorf("recompute loan cap: %w", err)
	}

	restored := loan.OutstandingBalance.Add(payment.TotalAmount)
	var warning string
	if restored.Cents > am.TotalPayable.Cents {
		warning = fmt.Sprintf("outstanding balance capped at total payable %s (uncapped %s)",
			am.TotalPayable, restored)
		restored = am.TotalPayable
	}

	if err := s.store.DeletePayment(ctx, paymentID); err != nil {
		return DeletePaymentResult{}, err
	}

	loan = settleLoanBalance(loan, restored)
	if err := s.store.UpdateLoan(ctx, loan); err != nil {
		// Re-insert the deleted row (under a fresh id) so the payment set
		// stays consistent with the stored balance.
		reinserted := payment
		if rbErr := s.store.CreatePayment(ctx, &reinserted); rbErr != nil {
			slog.ErrorContext(ctx, "Rollback of payment delete failed, ledger needs manual reconciliation",
				"loan_id", loanID, "payment_id", paymentID, "error", rbErr)
		}
		return DeletePaymentResult{}, fmt.Errorf("reconcile loan balance: %w", err)
	}

	if warning != "" {
		slog.WarnContext(ctx, "Payment delete engaged balance cap",
			"loan_id", loanID,
			"payment_id", paymentID,
			"outstanding", restored.String())
	} else {
		slog.InfoContext(ctx, "Payment deleted",
			"loan_id", loanID,
			"payment_id", paymentID,
			"outstanding", restored.String())
	}
	return DeletePaymentResult{NewOutstandingBalance: restored, Warning: warning}, nil
}

// applyDebit subtracts amount from balance. A would-be-negative result is
// clamped to zero and flagged instead of failing: loan closure regularly
// overshoots by rounding and a hard failure would block corrective edits.
func applyDebit(balance, amount core.Money) (core.Money, string) {
	result := balance.Sub(amount)
	if result.Cents < 0 {
		return core.Money{}, fmt.Sprintf(
			"outstanding balance clamped to zero (would have been %s)", result)
	}
	return result, ""
}

// settleLoanBalance writes the new balance and keeps the status in step: a
// zero balance closes the loan, a positive one on a closed loan reopens it.
func settleLoanBalance(loan core.Loan, balance core.Money) core.Loan {
	loan.OutstandingBalance = balance
	switch {
	case balance.IsZero():
		loan.Status = core.LoanPaid
	case loan.Status == core.LoanPaid:
		loan.Status = core.LoanActive
	}
	return loan
}
