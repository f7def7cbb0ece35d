package core

import "testing"

func TestParseDecimalToCents(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"112000", 11_200_000, false},
		{"12.34", 1234, false},
		{"12,34", 1234, false},
		{"12.345", 1235, false},
		{"12.346", 1235, false},
		{"0.01", 1, false},
		{"", 0, true},
		{"0", 0, true},
		{"-5", 0, true},
		{"+5", 0, true},
		{"1.2.3", 0, true},
		{"abc", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseDecimalToCents(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseDecimalToCents(%q) expected error, got %d", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseDecimalToCents(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseDecimalToCents(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestParseOptionalMoney(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"", 0, false},
		{"  ", 0, false},
		{"0", 0, false},
		{"0.00", 0, false},
		{"0.004", 0, false}, // rounds down to zero, still accepted
		{"0.006", 1, false},
		{"12.34", 1234, false},
		{"-5", 0, true},
		{"abc", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseOptionalMoney(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseOptionalMoney(%q) expected error, got %d", tt.in, got.Cents)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseOptionalMoney(%q) error = %v", tt.in, err)
			continue
		}
		if got.Cents != tt.want {
			t.Errorf("ParseOptionalMoney(%q) = %d, want %d", tt.in, got.Cents, tt.want)
		}
	}
}

func TestMoneyString(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{11_200_000, "112000.00"},
		{1234, "12.34"},
		{5, "0.05"},
		{-1234, "-12.34"},
		{0, "0.00"},
	}

	for _, tt := range tests {
		if got := (Money{Cents: tt.cents}).String(); got != tt.want {
			t.Errorf("Money{%d}.String() = %q, want %q", tt.cents, got, tt.want)
		}
	}
}

func TestContributionValidate(t *testing.T) {
	valid := Contribution{
		MemberID:      1,
		Month:         6,
		Year:          2025,
		MandatoryDues: Money{Cents: 5_000_000},
		PaymentDate:   NewDate(2025, 6, 5),
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	bad := valid
	bad.Month = 13
	if err := bad.Validate(); err == nil {
		t.Error("month 13 should fail validation")
	}

	empty := valid
	empty.MandatoryDues = Money{}
	if err := empty.Validate(); err == nil {
		t.Error("all-zero amounts should fail validation")
	}
}
