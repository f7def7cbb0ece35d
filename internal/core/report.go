package core

import "time"

const (
	ReportMonthly   ReportType = "monthly"
	ReportQuarterly ReportType = "quarterly"
	ReportAnnual    ReportType = "annual"
)

type ReportType string

func (t ReportType) Valid() bool {
	switch t {
	case ReportMonthly, ReportQuarterly, ReportAnnual:
		return true
	}
	return false
}

// ContributionTotals carries the three independently tracked contribution
// sums over some range.
type ContributionTotals struct {
	MandatoryDues    Money
	VoluntarySavings Money
	MandatorySavings Money
}

// WindowTotals aggregates every ledger category over one date window. The
// same shape serves the requested period and the year-to-date window.
type WindowTotals struct {
	Contributions     ContributionTotals
	LoanPayments      Money
	CashCredits       Money
	CashDebits        Money
	LoanDisbursements Money

	TotalIncome  Money
	TotalExpense Money
	NetBalance   Money
}

// Derive fills the income/expense/net rollups from the category sums.
// Disbursements are modeled as a cash outflow.
func (t *WindowTotals) Derive() {
	t.TotalIncome = Money{Cents: t.Contributions.MandatoryDues.Cents +
		t.Contributions.VoluntarySavings.Cents +
		t.Contributions.MandatorySavings.Cents +
		t.LoanPayments.Cents +
		t.CashCredits.Cents}
	t.TotalExpense = Money{Cents: t.CashDebits.Cents + t.LoanDisbursements.Cents}
	t.NetBalance = t.TotalIncome.Sub(t.TotalExpense)
}

// BalanceSheet is the derived assets/liabilities/equity snapshot.
type BalanceSheet struct {
	CashAndBank Money
	Receivables Money
	Assets      Money
	Liabilities Money
	Equity      Money
}

// ReportSnapshot is an immutable point-in-time report. It holds no live
// references back to source rows; deleting source rows never touches a saved
// snapshot.
type ReportSnapshot struct {
	ID           string
	PeriodStart  Date
	PeriodEnd    Date
	ReportType   ReportType
	Period       WindowTotals
	YearToDate   WindowTotals
	BalanceSheet BalanceSheet
	Warnings     []string
	CreatedBy    string
	CreatedAt    time.Time
}

// ValidatePeriod rejects inverted date ranges before any aggregation work.
func ValidatePeriod(start, end Date) error {
	if err := start.Validate(); err != nil {
		return err
	}
	if err := end.Validate(); err != nil {
		return err
	}
	if start.After(end.Time) {
		return ErrInvalidPeriod
	}
	return nil
}
