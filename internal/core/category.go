package core

import "strings"

// CashCategory is a closed enumeration of cash movement kinds. Internal kinds
// (transfers between the cooperative's own accounts and loan disbursements,
// which are already represented on the loan ledger) are excluded from income
// and expense totals.
type CashCategory string

const (
	CategoryGeneral          CashCategory = "general"
	CategoryTransport        CashCategory = "transport"
	CategoryUtilities        CashCategory = "utilities"
	CategorySupplies         CashCategory = "supplies"
	CategoryEvents           CashCategory = "events"
	CategoryBankTransfer     CashCategory = "bank_transfer"
	CategoryBankWithdrawal   CashCategory = "bank_withdrawal"
	CategoryLoanDisbursement CashCategory = "loan_disbursement"
)

// AllCategories lists every known category kind.
func AllCategories() []CashCategory {
	return []CashCategory{
		CategoryGeneral,
		CategoryTransport,
		CategoryUtilities,
		CategorySupplies,
		CategoryEvents,
		CategoryBankTransfer,
		CategoryBankWithdrawal,
		CategoryLoanDisbursement,
	}
}

func (c CashCategory) Valid() bool {
	for _, k := range AllCategories() {
		if c == k {
			return true
		}
	}
	return false
}

// Internal reports whether the category is an internal transfer or a movement
// already tracked on the loan ledger. Internal entries never count toward
// general income or expense totals.
func (c CashCategory) Internal() bool {
	switch c {
	case CategoryBankTransfer, CategoryBankWithdrawal, CategoryLoanDisbursement:
		return true
	}
	return false
}

// labelPatterns maps free-text fragments onto category kinds. Matching is
// case-insensitive substring, most specific pattern first, so legacy labels
// like "cash withdrawal to bank" or "member loan disbursement" land on the
// right kind.
var labelPatterns = []struct {
	fragment string
	kind     CashCategory
}{
	{"withdrawal to bank", CategoryBankWithdrawal},
	{"bank withdrawal", CategoryBankWithdrawal},
	{"bank transfer", CategoryBankTransfer},
	{"loan disbursement", CategoryLoanDisbursement},
	{"disbursement", CategoryLoanDisbursement},
	{"transfer", CategoryBankTransfer},
	{"transport", CategoryTransport},
	{"utilit", CategoryUtilities},
	{"electric", CategoryUtilities},
	{"water", CategoryUtilities},
	{"suppl", CategorySupplies},
	{"stationer", CategorySupplies},
	{"event", CategoryEvents},
	{"meeting", CategoryEvents},
}

// CategoryFromLabel resolves a free-text category label to a kind. Exact kind
// names win; otherwise the label is matched case-insensitively against known
// fragments; anything unrecognized is general.
func CategoryFromLabel(label string) CashCategory {
	label = strings.ToLower(strings.TrimSpace(label))
	if label == "" {
		return CategoryGeneral
	}
	if kind := CashCategory(label); kind.Valid() {
		return kind
	}
	for _, p := range labelPatterns {
		if strings.Contains(label, p.fragment) {
			return p.kind
		}
	}
	return CategoryGeneral
}

// InternalCategories returns the kinds excluded from general totals.
func InternalCategories() []CashCategory {
	return []CashCategory{CategoryBankTransfer, CategoryBankWithdrawal, CategoryLoanDisbursement}
}
