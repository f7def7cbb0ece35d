package core

// Partial-update types: every field is optional and merge logic is a pure
// function, so "keep old value when the caller sent nothing" is testable in
// isolation instead of being scattered through handlers.

// PaymentPatch carries the fields a payment update may change. TotalAmount is
// always recomputed from the merged portions, never patched directly.
type PaymentPatch struct {
	InstallmentNumber *int
	PrincipalPortion  *Money
	InterestPortion   *Money
	PaymentDate       *Date
	Status            *PaymentStatus
}

// MergePayment applies a patch over an existing payment and returns the
// updated value. TotalAmount is rederived from the merged portions.
func MergePayment(existing LoanPayment, patch PaymentPatch) LoanPayment {
	out := existing
	if patch.InstallmentNumber != nil {
		out.InstallmentNumber = *patch.InstallmentNumber
	}
	if patch.PrincipalPortion != nil {
		out.PrincipalPortion = *patch.PrincipalPortion
	}
	if patch.InterestPortion != nil {
		out.InterestPortion = *patch.InterestPortion
	}
	if patch.PaymentDate != nil {
		out.PaymentDate = *patch.PaymentDate
	}
	if patch.Status != nil {
		out.Status = *patch.Status
	}
	out.TotalAmount = out.PrincipalPortion.Add(out.InterestPortion)
	return out
}

// ContributionPatch carries the fields a contribution update may change. The
// (member, month, year) key is immutable; a mis-keyed entry is deleted and
// re-recorded.
type ContributionPatch struct {
	MandatoryDues    *Money
	VoluntarySavings *Money
	MandatorySavings *Money
	PaymentDate      *Date
	Status           *ContributionStatus
}

func MergeContribution(existing Contribution, patch ContributionPatch) Contribution {
	out := existing
	if patch.MandatoryDues != nil {
		out.MandatoryDues = *patch.MandatoryDues
	}
	if patch.VoluntarySavings != nil {
		out.VoluntarySavings = *patch.VoluntarySavings
	}
	if patch.MandatorySavings != nil {
		out.MandatorySavings = *patch.MandatorySavings
	}
	if patch.PaymentDate != nil {
		out.PaymentDate = *patch.PaymentDate
	}
	if patch.Status != nil {
		out.Status = *patch.Status
	}
	return out
}

// CashEntryPatch carries the fields a cash entry update may change.
type CashEntryPatch struct {
	Direction     *CashDirection
	Category      *CashCategory
	Description   *string
	Amount        *Money
	Date          *Date
	Authorization *AuthorizationStatus
}

func MergeCashEntry(existing CashEntry, patch CashEntryPatch) CashEntry {
	out := existing
	if patch.Direction != nil {
		out.Direction = *patch.Direction
	}
	if patch.Category != nil {
		out.Category = *patch.Category
	}
	if patch.Description != nil {
		out.Description = *patch.Description
	}
	if patch.Amount != nil {
		out.Amount = *patch.Amount
	}
	if patch.Date != nil {
		out.Date = *patch.Date
	}
	if patch.Authorization != nil {
		out.Authorization = *patch.Authorization
	}
	return out
}
