package core

import "fmt"

// BalanceWarnTolerance is the default mismatch (in cents) tolerated between
// assets and liabilities+equity before the report carries a warning.
const BalanceWarnTolerance int64 = 100

// BuildBalanceSheet derives the cooperative's balance sheet from year-to-date
// aggregates and live loan state:
//
//	receivables = Σ outstanding balance over active loans
//	cashAndBank = YTD net balance (no separate bank reconciliation step)
//	assets      = cashAndBank + receivables
//	liabilities = all-time voluntary + mandatory savings (owed back to members)
//	equity      = all-time mandatory dues (permanent capital)
//
// A material mismatch between assets and liabilities+equity is surfaced as a
// warning string, never rejected: the snapshot stays useful for a human
// reviewer even when the books drift.
func BuildBalanceSheet(ytd WindowTotals, receivables Money, allTime ContributionTotals, toleranceCents int64) (BalanceSheet, string) {
	sheet := BalanceSheet{
		CashAndBank: ytd.NetBalance,
		Receivables: receivables,
	}
	sheet.Assets = sheet.CashAndBank.Add(sheet.Receivables)
	sheet.Liabilities = allTime.VoluntarySavings.Add(allTime.MandatorySavings)
	sheet.Equity = allTime.MandatoryDues

	if toleranceCents <= 0 {
		toleranceCents = BalanceWarnTolerance
	}

	diff := sheet.Assets.Cents - (sheet.Liabilities.Cents + sheet.Equity.Cents)
	if diff < 0 {
		diff = -diff
	}
	if diff > toleranceCents {
		return sheet, fmt.Sprintf(
			"balance sheet mismatch: assets %s vs liabilities+equity %s (difference %s)",
			sheet.Assets, sheet.Liabilities.Add(sheet.Equity), Money{Cents: diff})
	}
	return sheet, ""
}
