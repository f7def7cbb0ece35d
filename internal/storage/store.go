package storage

import (
	"context"

	"coopledger/internal/core"
)

// Store is the persistence contract the ledger services depend on. The SQLite
// repository is the production implementation; MemoryStore serves tests and
// the memory backend.
type Store interface {
	// Members. The directory is seeded by the membership collaborator; the
	// ledger only resolves references.
	SeedMember(ctx context.Context, m *core.Member) error
	GetMemberByID(ctx context.Context, id int64) (core.Member, error)
	GetMemberByCode(ctx context.Context, code string) (core.Member, error)

	// Loans.
	CreateLoan(ctx context.Context, loan *core.Loan) error
	GetLoan(ctx context.Context, id int64) (core.Loan, error)
	UpdateLoan(ctx context.Context, loan core.Loan) error
	ListLoans(ctx context.Context) ([]core.Loan, error)
	SumOutstandingByStatus(ctx context.Context, status core.LoanStatus) (core.Money, error)
	SumDisbursedBetween(ctx context.Context, start, end core.Date, statuses []core.LoanStatus) (core.Money, error)

	// Loan payments.
	CreatePayment(ctx context.Context, payment *core.LoanPayment) error
	GetPayment(ctx context.Context, id int64) (core.LoanPayment, error)
	UpdatePayment(ctx context.Context, payment core.LoanPayment) error
	DeletePayment(ctx context.Context, id int64) error
	ListPaymentsByLoan(ctx context.Context, loanID int64) ([]core.LoanPayment, error)
	SumPaymentsBetween(ctx context.Context, start, end core.Date) (core.Money, error)

	// Contributions. The period window is compared by calendar (year, month),
	// not by exact payment date.
	CreateContribution(ctx context.Context, c *core.Contribution) error
	GetContribution(ctx context.Context, id int64) (core.Contribution, error)
	UpdateContribution(ctx context.Context, c core.Contribution) error
	DeleteContribution(ctx context.Context, id int64) error
	ListContributionsByMember(ctx context.Context, memberID int64) ([]core.Contribution, error)
	SumContributionsBetween(ctx context.Context, start, end core.Date) (core.ContributionTotals, error)
	SumContributionsAllTime(ctx context.Context) (core.ContributionTotals, error)

	// Cash ledger. Sums exclude internal categories.
	CreateCashEntry(ctx context.Context, e *core.CashEntry) error
	GetCashEntry(ctx context.Context, id int64) (core.CashEntry, error)
	UpdateCashEntry(ctx context.Context, e core.CashEntry) error
	DeleteCashEntry(ctx context.Context, id int64) error
	ListCashEntries(ctx context.Context, start, end core.Date) ([]core.CashEntry, error)
	SumCashBetween(ctx context.Context, start, end core.Date) (debits, credits core.Money, err error)

	// Report snapshots: immutable, no update.
	CreateReportSnapshot(ctx context.Context, snap core.ReportSnapshot) error
	GetReportSnapshot(ctx context.Context, id string) (core.ReportSnapshot, error)
	ListReportSnapshots(ctx context.Context) ([]core.ReportSnapshot, error)
	DeleteReportSnapshot(ctx context.Context, id string) error

	Close() error
}
