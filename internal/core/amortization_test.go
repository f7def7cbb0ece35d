package core

import (
	"errors"
	"testing"
)

func TestAmortize(t *testing.T) {
	tests := []struct {
		name            string
		principal       int64 // cents
		rateBps         int64
		termMonths      int
		wantInterest    int64
		wantPayable     int64
		wantInstallment int64
	}{
		{
			name:            "standard one year loan",
			principal:       120_000_000, // 1,200,000.00
			rateBps:         1200,        // 12%
			termMonths:      12,
			wantInterest:    14_400_000,  // 144,000.00
			wantPayable:     134_400_000, // 1,344,000.00
			wantInstallment: 11_200_000,  // 112,000.00
		},
		{
			name:            "zero interest",
			principal:       60_000_00,
			rateBps:         0,
			termMonths:      6,
			wantInterest:    0,
			wantPayable:     60_000_00,
			wantInstallment: 10_000_00,
		},
		{
			name:            "six month loan at 10 percent",
			principal:       100_000_00,
			rateBps:         1000,
			termMonths:      6,
			wantInterest:    5_000_00,  // 100,000 * 10% * 0.5
			wantPayable:     105_000_00,
			wantInstallment: 17_500_00,
		},
		{
			name:            "installment rounding half up",
			principal:       10_000, // 100.00
			rateBps:         500,
			termMonths:      7,
			wantInterest:    292,   // 100 * 5% * 7/12 = 2.9166 -> 2.92
			wantPayable:     10292, // 102.92
			wantInstallment: 1470,  // 102.92/7 = 14.7028 -> 14.70
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Amortize(Money{Cents: tt.principal}, tt.rateBps, tt.termMonths)
			if err != nil {
				t.Fatalf("Amortize() error = %v", err)
			}
			if got.TotalInterest.Cents != tt.wantInterest {
				t.Errorf("TotalInterest = %d, want %d", got.TotalInterest.Cents, tt.wantInterest)
			}
			if got.TotalPayable.Cents != tt.wantPayable {
				t.Errorf("TotalPayable = %d, want %d", got.TotalPayable.Cents, tt.wantPayable)
			}
			if got.MonthlyInstallment.Cents != tt.wantInstallment {
				t.Errorf("MonthlyInstallment = %d, want %d", got.MonthlyInstallment.Cents, tt.wantInstallment)
			}
		})
	}
}

func TestAmortizeInvalidTerms(t *testing.T) {
	tests := []struct {
		name       string
		principal  int64
		rateBps    int64
		termMonths int
	}{
		{"zero principal", 0, 1200, 12},
		{"negative principal", -100, 1200, 12},
		{"zero term", 100_000, 1200, 0},
		{"negative term", 100_000, 1200, -3},
		{"negative rate", 100_000, -100, 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Amortize(Money{Cents: tt.principal}, tt.rateBps, tt.termMonths)
			if !errors.Is(err, ErrInvalidLoanTerms) {
				t.Errorf("Amortize() error = %v, want ErrInvalidLoanTerms", err)
			}
		})
	}
}

// Installments must reconstruct the payable within one minor unit per term.
func TestAmortizeInstallmentCoversPayable(t *testing.T) {
	cases := []struct {
		principal  int64
		rateBps    int64
		termMonths int
	}{
		{120_000_000, 1200, 12},
		{50_000_00, 850, 24},
		{33_333_33, 999, 7},
		{1_000_00, 1, 36},
	}

	for _, c := range cases {
		got, err := Amortize(Money{Cents: c.principal}, c.rateBps, c.termMonths)
		if err != nil {
			t.Fatalf("Amortize(%d, %d, %d) error = %v", c.principal, c.rateBps, c.termMonths, err)
		}
		sum := got.MonthlyInstallment.Cents * int64(c.termMonths)
		diff := sum - got.TotalPayable.Cents
		if diff < 0 {
			diff = -diff
		}
		// Rounding each installment can drift at most half a cent per month.
		if diff > int64(c.termMonths) {
			t.Errorf("installments sum %d drifts %d cents from payable %d", sum, diff, got.TotalPayable.Cents)
		}
	}
}

func TestPercentToBps(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"12", 1200, false},
		{"12.5", 1250, false},
		{"0", 0, false},
		{"0.01", 1, false},
		{"-1", 0, true},
		{"abc", 0, true},
	}

	for _, tt := range tests {
		got, err := PercentToBps(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("PercentToBps(%q) expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("PercentToBps(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PercentToBps(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
