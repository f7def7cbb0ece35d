package core

import "testing"

func TestMergePayment(t *testing.T) {
	existing := LoanPayment{
		ID:                7,
		LoanID:            3,
		InstallmentNumber: 2,
		PrincipalPortion:  Money{Cents: 10_000_000},
		InterestPortion:   Money{Cents: 1_200_000},
		TotalAmount:       Money{Cents: 11_200_000},
		PaymentDate:       NewDate(2025, 3, 10),
		Status:            PaymentPaid,
	}

	t.Run("empty patch keeps everything", func(t *testing.T) {
		got := MergePayment(existing, PaymentPatch{})
		if got != existing {
			t.Errorf("MergePayment() = %+v, want unchanged %+v", got, existing)
		}
	})

	t.Run("total recomputed from merged portions", func(t *testing.T) {
		newPrincipal := Money{Cents: 9_000_000}
		got := MergePayment(existing, PaymentPatch{PrincipalPortion: &newPrincipal})
		if got.PrincipalPortion != newPrincipal {
			t.Errorf("PrincipalPortion = %v, want %v", got.PrincipalPortion, newPrincipal)
		}
		if got.InterestPortion != existing.InterestPortion {
			t.Errorf("InterestPortion changed unexpectedly: %v", got.InterestPortion)
		}
		if got.TotalAmount.Cents != 10_200_000 {
			t.Errorf("TotalAmount = %d, want 10200000", got.TotalAmount.Cents)
		}
	})

	t.Run("all fields patched", func(t *testing.T) {
		n := 5
		pr := Money{Cents: 100}
		in := Money{Cents: 20}
		d := NewDate(2025, 4, 1)
		st := PaymentLate
		got := MergePayment(existing, PaymentPatch{
			InstallmentNumber: &n,
			PrincipalPortion:  &pr,
			InterestPortion:   &in,
			PaymentDate:       &d,
			Status:            &st,
		})
		if got.InstallmentNumber != 5 || got.TotalAmount.Cents != 120 || got.Status != PaymentLate {
			t.Errorf("MergePayment() = %+v", got)
		}
		if got.ID != existing.ID || got.LoanID != existing.LoanID {
			t.Error("identifiers must never be patched")
		}
	})
}

func TestMergeContribution(t *testing.T) {
	existing := Contribution{
		ID:               1,
		MemberID:         9,
		Month:            6,
		Year:             2025,
		MandatoryDues:    Money{Cents: 5_000_000},
		VoluntarySavings: Money{Cents: 1_000_000},
		MandatorySavings: Money{Cents: 2_000_000},
		PaymentDate:      NewDate(2025, 6, 5),
		Status:           ContributionPaid,
	}

	vol := Money{Cents: 3_000_000}
	got := MergeContribution(existing, ContributionPatch{VoluntarySavings: &vol})

	if got.VoluntarySavings != vol {
		t.Errorf("VoluntarySavings = %v, want %v", got.VoluntarySavings, vol)
	}
	if got.MandatoryDues != existing.MandatoryDues || got.MandatorySavings != existing.MandatorySavings {
		t.Error("unpatched amounts changed")
	}
	if got.MemberID != 9 || got.Month != 6 || got.Year != 2025 {
		t.Error("the (member, month, year) key must be immutable")
	}
}

func TestMergeCashEntry(t *testing.T) {
	existing := CashEntry{
		ID:            4,
		Direction:     Debit,
		Category:      CategoryTransport,
		Description:   "fuel for the member visit",
		Amount:        Money{Cents: 5_000_000},
		Date:          NewDate(2025, 2, 14),
		Authorization: AuthorizationPending,
	}

	auth := AuthorizationApproved
	amount := Money{Cents: 4_500_000}
	got := MergeCashEntry(existing, CashEntryPatch{
		Authorization: &auth,
		Amount:        &amount,
	})

	if got.Authorization != AuthorizationApproved {
		t.Errorf("Authorization = %v, want approved", got.Authorization)
	}
	if got.Amount != amount {
		t.Errorf("Amount = %v, want %v", got.Amount, amount)
	}
	if got.Category != CategoryTransport || got.Direction != Debit {
		t.Error("unpatched fields changed")
	}
}
