package core

import "testing"

func TestCategoryFromLabel(t *testing.T) {
	tests := []struct {
		label string
		want  CashCategory
	}{
		{"bank transfer", CategoryBankTransfer},
		{"Bank Transfer to BRI", CategoryBankTransfer},
		{"cash withdrawal to bank", CategoryBankWithdrawal},
		{"member loan disbursement", CategoryLoanDisbursement},
		{"LOAN DISBURSEMENT", CategoryLoanDisbursement},
		{"transport", CategoryTransport},
		{"electricity bill", CategoryUtilities},
		{"office supplies", CategorySupplies},
		{"annual meeting catering", CategoryEvents},
		{"something else entirely", CategoryGeneral},
		{"", CategoryGeneral},
		{"bank_withdrawal", CategoryBankWithdrawal}, // exact kind name
	}

	for _, tt := range tests {
		if got := CategoryFromLabel(tt.label); got != tt.want {
			t.Errorf("CategoryFromLabel(%q) = %v, want %v", tt.label, got, tt.want)
		}
	}
}

func TestCategoryInternal(t *testing.T) {
	internal := map[CashCategory]bool{
		CategoryBankTransfer:     true,
		CategoryBankWithdrawal:   true,
		CategoryLoanDisbursement: true,
	}

	for _, c := range AllCategories() {
		if got := c.Internal(); got != internal[c] {
			t.Errorf("%v.Internal() = %v, want %v", c, got, internal[c])
		}
	}
}

func TestClassifyPayment(t *testing.T) {
	origination := NewDate(2025, 1, 15)

	tests := []struct {
		name        string
		installment int
		paymentDate Date
		want        PaymentStatus
	}{
		{"on due date", 1, NewDate(2025, 2, 15), PaymentPaid},
		{"early", 2, NewDate(2025, 3, 1), PaymentPaid},
		{"one day late", 1, NewDate(2025, 2, 16), PaymentLate},
		{"very late", 3, NewDate(2025, 8, 1), PaymentLate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyPayment(origination, tt.installment, tt.paymentDate)
			if got != tt.want {
				t.Errorf("ClassifyPayment() = %v, want %v", got, tt.want)
			}
		})
	}
}
