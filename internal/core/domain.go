package core

import (
	"errors"
	"strings"
	"time"
)

const (
	LoanPending  LoanStatus = "pending"
	LoanActive   LoanStatus = "active"
	LoanPaid     LoanStatus = "paid"
	LoanRejected LoanStatus = "rejected"
	LoanUnpaid   LoanStatus = "unpaid"
)

const (
	PaymentPaid   PaymentStatus = "paid"
	PaymentLate   PaymentStatus = "late"
	PaymentUnpaid PaymentStatus = "unpaid"
)

const (
	ContributionPaid   ContributionStatus = "paid"
	ContributionUnpaid ContributionStatus = "unpaid"
)

const (
	Debit  CashDirection = "debit"
	Credit CashDirection = "credit"
)

const (
	AuthorizationPending  AuthorizationStatus = "pending"
	AuthorizationApproved AuthorizationStatus = "approved"
	AuthorizationRejected AuthorizationStatus = "rejected"
)

type (
	LoanStatus          string
	PaymentStatus       string
	ContributionStatus  string
	CashDirection       string
	AuthorizationStatus string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Member is a reference row owned by the membership collaborator.
	// The ledger only resolves codes to ids; it never mutates members.
	Member struct {
		ID   int64
		Code string
		Name string
	}

	Loan struct {
		ID                 int64
		MemberID           int64
		Principal          Money
		RateBps            int64 // annual interest rate in basis points (12% = 1200)
		TermMonths         int
		MonthlyInstallment Money
		OriginationDate    Date
		Status             LoanStatus
		OutstandingBalance Money
	}

	LoanPayment struct {
		ID                    int64
		LoanID                int64
		InstallmentNumber     int
		PrincipalPortion      Money
		InterestPortion       Money
		TotalAmount           Money // always PrincipalPortion + InterestPortion
		RemainingAfterPayment Money
		PaymentDate           Date
		Status                PaymentStatus
	}

	Contribution struct {
		ID               int64
		MemberID         int64
		Month            int // 1-12
		Year             int
		MandatoryDues    Money
		VoluntarySavings Money
		MandatorySavings Money
		PaymentDate      Date
		Status           ContributionStatus
	}

	CashEntry struct {
		ID            int64
		Direction     CashDirection
		Category      CashCategory
		Description   string
		Amount        Money
		Date          Date
		Authorization AuthorizationStatus
	}
)

var (
	ErrInvalidLoanTerms       = errors.New("invalid loan terms")
	ErrDuplicateInstallment   = errors.New("installment number already recorded for this loan")
	ErrDuplicatePeriodEntry   = errors.New("contribution already recorded for this member and period")
	ErrMemberNotFound         = errors.New("member not found")
	ErrNotFound               = errors.New("not found")
	ErrInvalidPeriod          = errors.New("period start is after period end")
	ErrInvalidAmount          = errors.New("invalid amount")
	ErrInvalidMonth           = errors.New("invalid month")
	ErrEmptyDescription       = errors.New("empty description")
	ErrInvalidDirection       = errors.New("invalid cash direction")
	ErrInvalidPrincipalShare  = errors.New("principal portion must be positive")
)

// NewDate creates a Date at midnight UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	return nil
}

// Day returns the day of the month.
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month as an int in 1-12.
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the calendar year.
func (d Date) Year() int {
	return d.Time.Year()
}

// String renders the date in the ISO layout used across storage and wire
// messages.
func (d Date) String() string {
	return d.Time.Format("2006-01-02")
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool {
	return m.Cents == 0
}

func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

func (m Money) Sub(o Money) Money {
	return Money{Cents: m.Cents - o.Cents}
}

func (s LoanStatus) Valid() bool {
	switch s {
	case LoanPending, LoanActive, LoanPaid, LoanRejected, LoanUnpaid:
		return true
	}
	return false
}

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPaid, PaymentLate, PaymentUnpaid:
		return true
	}
	return false
}

func (d CashDirection) Valid() bool {
	return d == Debit || d == Credit
}

func (s AuthorizationStatus) Valid() bool {
	switch s {
	case AuthorizationPending, AuthorizationApproved, AuthorizationRejected:
		return true
	}
	return false
}

func (l Loan) Validate() error {
	if l.MemberID <= 0 {
		return errors.New("loan must reference a member")
	}
	if l.Principal.Cents <= 0 || l.TermMonths <= 0 || l.RateBps < 0 {
		return ErrInvalidLoanTerms
	}
	if err := l.OriginationDate.Validate(); err != nil {
		return errors.New("invalid origination date: " + err.Error())
	}
	return nil
}

func (p LoanPayment) Validate() error {
	if p.LoanID <= 0 {
		return errors.New("payment must reference a loan")
	}
	if p.InstallmentNumber <= 0 {
		return errors.New("installment number must be positive")
	}
	if p.PrincipalPortion.Cents <= 0 {
		return ErrInvalidPrincipalShare
	}
	if p.InterestPortion.Cents < 0 {
		return ErrInvalidAmount
	}
	if err := p.PaymentDate.Validate(); err != nil {
		return errors.New("invalid payment date: " + err.Error())
	}
	return nil
}

func (c Contribution) Validate() error {
	if c.MemberID <= 0 {
		return ErrMemberNotFound
	}
	if c.Month < 1 || c.Month > 12 {
		return ErrInvalidMonth
	}
	if c.Year < 1900 {
		return errors.New("invalid year")
	}
	// Individual amounts may be zero; a fully empty entry is meaningless.
	if c.MandatoryDues.Cents < 0 || c.VoluntarySavings.Cents < 0 || c.MandatorySavings.Cents < 0 {
		return ErrInvalidAmount
	}
	if c.MandatoryDues.Cents+c.VoluntarySavings.Cents+c.MandatorySavings.Cents == 0 {
		return ErrInvalidAmount
	}
	if err := c.PaymentDate.Validate(); err != nil {
		return errors.New("invalid payment date: " + err.Error())
	}
	return nil
}

func (e CashEntry) Validate() error {
	if !e.Direction.Valid() {
		return ErrInvalidDirection
	}
	if len(strings.TrimSpace(e.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(e.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if err := e.Date.Validate(); err != nil {
		return errors.New("invalid entry date: " + err.Error())
	}
	if e.Authorization != "" && !e.Authorization.Valid() {
		return errors.New("invalid authorization status")
	}
	return nil
}
