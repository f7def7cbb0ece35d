package http

import (
	"time"

	"coopledger/internal/core"
)

// Response shapes. Monetary amounts travel as decimal strings ("112000.00")
// so clients never handle raw cents; rates travel as percent strings.

type loanResponse struct {
	ID                 int64  `json:"id"`
	MemberID           int64  `json:"member_id"`
	Principal          string `json:"principal"`
	RatePercent        string `json:"rate_percent"`
	TermMonths         int    `json:"term_months"`
	MonthlyInstallment string `json:"monthly_installment"`
	OriginationDate    string `json:"origination_date"`
	Status             string `json:"status"`
	OutstandingBalance string `json:"outstanding_balance"`
}

func toLoanResponse(l core.Loan) loanResponse {
	return loanResponse{
		ID:                 l.ID,
		MemberID:           l.MemberID,
		Principal:          l.Principal.String(),
		RatePercent:        core.BpsToPercent(l.RateBps),
		TermMonths:         l.TermMonths,
		MonthlyInstallment: l.MonthlyInstallment.String(),
		OriginationDate:    l.OriginationDate.String(),
		Status:             string(l.Status),
		OutstandingBalance: l.OutstandingBalance.String(),
	}
}

type paymentResponse struct {
	ID                    int64  `json:"id"`
	LoanID                int64  `json:"loan_id"`
	InstallmentNumber     int    `json:"installment_number"`
	PrincipalPortion      string `json:"principal_portion"`
	InterestPortion       string `json:"interest_portion"`
	TotalAmount           string `json:"total_amount"`
	RemainingAfterPayment string `json:"remaining_after_payment"`
	PaymentDate           string `json:"payment_date"`
	Status                string `json:"status"`
}

func toPaymentResponse(p core.LoanPayment) paymentResponse {
	return paymentResponse{
		ID:                    p.ID,
		LoanID:                p.LoanID,
		InstallmentNumber:     p.InstallmentNumber,
		PrincipalPortion:      p.PrincipalPortion.String(),
		InterestPortion:       p.InterestPortion.String(),
		TotalAmount:           p.TotalAmount.String(),
		RemainingAfterPayment: p.RemainingAfterPayment.String(),
		PaymentDate:           p.PaymentDate.String(),
		Status:                string(p.Status),
	}
}

type contributionResponse struct {
	ID               int64  `json:"id"`
	MemberID         int64  `json:"member_id"`
	Month            int    `json:"month"`
	Year             int    `json:"year"`
	MandatoryDues    string `json:"mandatory_dues"`
	VoluntarySavings string `json:"voluntary_savings"`
	MandatorySavings string `json:"mandatory_savings"`
	PaymentDate      string `json:"payment_date"`
	Status           string `json:"status"`
}

func toContributionResponse(c core.Contribution) contributionResponse {
	return contributionResponse{
		ID:               c.ID,
		MemberID:         c.MemberID,
		Month:            c.Month,
		Year:             c.Year,
		MandatoryDues:    c.MandatoryDues.String(),
		VoluntarySavings: c.VoluntarySavings.String(),
		MandatorySavings: c.MandatorySavings.String(),
		PaymentDate:      c.PaymentDate.String(),
		Status:           string(c.Status),
	}
}

type cashEntryResponse struct {
	ID            int64  `json:"id"`
	Direction     string `json:"direction"`
	Category      string `json:"category"`
	Description   string `json:"description"`
	Amount        string `json:"amount"`
	Date          string `json:"date"`
	Authorization string `json:"authorization"`
}

func toCashEntryResponse(e core.CashEntry) cashEntryResponse {
	return cashEntryResponse{
		ID:            e.ID,
		Direction:     string(e.Direction),
		Category:      string(e.Category),
		Description:   e.Description,
		Amount:        e.Amount.String(),
		Date:          e.Date.String(),
		Authorization: string(e.Authorization),
	}
}

type windowTotalsResponse struct {
	MandatoryDues     string `json:"mandatory_dues"`
	VoluntarySavings  string `json:"voluntary_savings"`
	MandatorySavings  string `json:"mandatory_savings"`
	LoanPayments      string `json:"loan_payments"`
	CashCredits       string `json:"cash_credits"`
	CashDebits        string `json:"cash_debits"`
	LoanDisbursements string `json:"loan_disbursements"`
	TotalIncome       string `json:"total_income"`
	TotalExpense      string `json:"total_expense"`
	NetBalance        string `json:"net_balance"`
}

func toWindowTotalsResponse(t core.WindowTotals) windowTotalsResponse {
	return windowTotalsResponse{
		MandatoryDues:     t.Contributions.MandatoryDues.String(),
		VoluntarySavings:  t.Contributions.VoluntarySavings.String(),
		MandatorySavings:  t.Contributions.MandatorySavings.String(),
		LoanPayments:      t.LoanPayments.String(),
		CashCredits:       t.CashCredits.String(),
		CashDebits:        t.CashDebits.String(),
		LoanDisbursements: t.LoanDisbursements.String(),
		TotalIncome:       t.TotalIncome.String(),
		TotalExpense:      t.TotalExpense.String(),
		NetBalance:        t.NetBalance.String(),
	}
}

type balanceSheetResponse struct {
	CashAndBank string `json:"cash_and_bank"`
	Receivables string `json:"receivables"`
	Assets      string `json:"assets"`
	Liabilities string `json:"liabilities"`
	Equity      string `json:"equity"`
}

type reportResponse struct {
	ID           string               `json:"id,omitempty"`
	PeriodStart  string               `json:"period_start"`
	PeriodEnd    string               `json:"period_end"`
	ReportType   string               `json:"report_type"`
	Period       windowTotalsResponse `json:"period"`
	YearToDate   windowTotalsResponse `json:"year_to_date"`
	BalanceSheet balanceSheetResponse `json:"balance_sheet"`
	Warnings     []string             `json:"warnings,omitempty"`
	CreatedBy    string               `json:"created_by,omitempty"`
	CreatedAt    string               `json:"created_at,omitempty"`
}

func toReportResponse(snap core.ReportSnapshot) reportResponse {
	resp := reportResponse{
		ID:          snap.ID,
		PeriodStart: snap.PeriodStart.String(),
		PeriodEnd:   snap.PeriodEnd.String(),
		ReportType:  string(snap.ReportType),
		Period:      toWindowTotalsResponse(snap.Period),
		YearToDate:  toWindowTotalsResponse(snap.YearToDate),
		BalanceSheet: balanceSheetResponse{
			CashAndBank: snap.BalanceSheet.CashAndBank.String(),
			Receivables: snap.BalanceSheet.Receivables.String(),
			Assets:      snap.BalanceSheet.Assets.String(),
			Liabilities: snap.BalanceSheet.Liabilities.String(),
			Equity:      snap.BalanceSheet.Equity.String(),
		},
		Warnings:  snap.Warnings,
		CreatedBy: snap.CreatedBy,
	}
	if !snap.CreatedAt.IsZero() {
		resp.CreatedAt = snap.CreatedAt.Format(time.RFC3339)
	}
	return resp
}
