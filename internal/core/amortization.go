package core

import (
	"github.com/shopspring/decimal"
)

// Amortization is the result of the flat-rate loan computation used both at
// loan creation and whenever the reconciler needs the loan's maximum
// allowable balance.
type Amortization struct {
	TotalInterest      Money
	TotalPayable       Money
	MonthlyInstallment Money
}

var (
	bpsDivisor   = decimal.NewFromInt(10_000)
	monthsInYear = decimal.NewFromInt(12)
)

// Amortize computes total interest, total payable and the monthly installment
// for a flat-rate loan:
//
//	totalInterest = principal * (rateBps/10000) * (termMonths/12)
//	totalPayable  = principal + totalInterest
//	installment   = totalPayable / termMonths
//
// Results are half-up rounded to cents. Pure; no side effects.
func Amortize(principal Money, rateBps int64, termMonths int) (Amortization, error) {
	if principal.Cents <= 0 || termMonths <= 0 || rateBps < 0 {
		return Amortization{}, ErrInvalidLoanTerms
	}

	p := decimal.New(principal.Cents, -2)
	rate := decimal.NewFromInt(rateBps).Div(bpsDivisor)
	years := decimal.NewFromInt(int64(termMonths)).Div(monthsInYear)

	interest := p.Mul(rate).Mul(years).Round(2)
	payable := p.Add(interest)
	installment := payable.Div(decimal.NewFromInt(int64(termMonths))).Round(2)

	return Amortization{
		TotalInterest:      moneyFromDecimal(interest),
		TotalPayable:       moneyFromDecimal(payable),
		MonthlyInstallment: moneyFromDecimal(installment),
	}, nil
}

// moneyFromDecimal converts a cents-precise decimal to Money. The value is
// expected to already be rounded to two places.
func moneyFromDecimal(d decimal.Decimal) Money {
	return Money{Cents: d.Shift(2).IntPart()}
}

// PercentToBps converts a percentage string such as "12" or "12.5" to basis
// points. Negative rates are rejected.
func PercentToBps(s string) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidLoanTerms
	}
	if d.IsNegative() {
		return 0, ErrInvalidLoanTerms
	}
	return d.Mul(decimal.NewFromInt(100)).Round(0).IntPart(), nil
}

// BpsToPercent renders basis points back as a percentage string for responses.
func BpsToPercent(bps int64) string {
	return decimal.NewFromInt(bps).Div(decimal.NewFromInt(100)).String()
}
