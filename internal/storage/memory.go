package storage

import (
	"context"
	"sort"
	"sync"

	"coopledger/internal/core"
)

// MemoryStore is an in-memory Store used by tests and the memory backend. It
// mirrors the SQLite repository's semantics, including unique-constraint and
// not-found translation, so services behave identically against either.
type MemoryStore struct {
	mu sync.RWMutex

	members       map[int64]core.Member
	membersByCode map[string]int64
	loans         map[int64]core.Loan
	payments      map[int64]core.LoanPayment
	contributions map[int64]core.Contribution
	cashEntries   map[int64]core.CashEntry
	snapshots     map[string]core.ReportSnapshot
	snapshotOrder []string

	nextID int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		members:       make(map[int64]core.Member),
		membersByCode: make(map[string]int64),
		loans:         make(map[int64]core.Loan),
		payments:      make(map[int64]core.LoanPayment),
		contributions: make(map[int64]core.Contribution),
		cashEntries:   make(map[int64]core.CashEntry),
		snapshots:     make(map[string]core.ReportSnapshot),
	}
}

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) nextSeq() int64 {
	s.nextID++
	return s.nextID
}

func (s *MemoryStore) SeedMember(_ context.Context, m *core.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m.ID = s.nextSeq()
	s.members[m.ID] = *m
	s.membersByCode[m.Code] = m.ID
	return nil
}

func (s *MemoryStore) GetMemberByID(_ context.Context, id int64) (core.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.members[id]
	if !ok {
		return core.Member{}, core.ErrMemberNotFound
	}
	return m, nil
}

func (s *MemoryStore) GetMemberByCode(_ context.Context, code string) (core.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.membersByCode[code]
	if !ok {
		return core.Member{}, core.ErrMemberNotFound
	}
	return s.members[id], nil
}

func (s *MemoryStore) CreateLoan(_ context.Context, loan *core.Loan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	loan.ID = s.nextSeq()
	s.loans[loan.ID] = *loan
	return nil
}

func (s *MemoryStore) GetLoan(_ context.Context, id int64) (core.Loan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	loan, ok := s.loans[id]
	if !ok {
		return core.Loan{}, core.ErrNotFound
	}
	return loan, nil
}

func (s *MemoryStore) UpdateLoan(_ context.Context, loan core.Loan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.loans[loan.ID]; !ok {
		return core.ErrNotFound
	}
	s.loans[loan.ID] = loan
	return nil
}

func (s *MemoryStore) ListLoans(_ context.Context) ([]core.Loan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	loans := make([]core.Loan, 0, len(s.loans))
	for _, l := range s.loans {
		loans = append(loans, l)
	}
	sort.Slice(loans, func(i, j int) bool { return loans[i].ID < loans[j].ID })
	return loans, nil
}

func (s *MemoryStore) SumOutstandingByStatus(_ context.Context, status core.LoanStatus) (core.Money, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var cents int64
	for _, l := range s.loans {
		if l.Status == status {
			cents += l.OutstandingBalance.Cents
		}
	}
	return core.Money{Cents: cents}, nil
}

func (s *MemoryStore) SumDisbursedBetween(_ context.Context, start, end core.Date, statuses []core.LoanStatus) (core.Money, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	allowed := make(map[core.LoanStatus]bool, len(statuses))
	for _, st := range statuses {
		allowed[st] = true
	}
	var cents int64
	for _, l := range s.loans {
		if allowed[l.Status] && inRange(l.OriginationDate, start, end) {
			cents += l.Principal.Cents
		}
	}
	return core.Money{Cents: cents}, nil
}

func inRange(d, start, end core.Date) bool {
	return !d.Before(start.Time) && !d.After(end.Time)
}

func (s *MemoryStore) CreatePayment(_ context.Context, p *core.LoanPayment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.payments {
		if existing.LoanID == p.LoanID && existing.InstallmentNumber == p.InstallmentNumber {
			return core.ErrDuplicateInstallment
		}
	}
	p.ID = s.nextSeq()
	s.payments[p.ID] = *p
	return nil
}

func (s *MemoryStore) GetPayment(_ context.Context, id int64) (core.LoanPayment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.payments[id]
	if !ok {
		return core.LoanPayment{}, core.ErrNotFound
	}
	return p, nil
}

func (s *MemoryStore) UpdatePayment(_ context.Context, p core.LoanPayment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.payments[p.ID]; !ok {
		return core.ErrNotFound
	}
	for _, existing := range s.payments {
		if existing.ID != p.ID && existing.LoanID == p.LoanID &&
			existing.InstallmentNumber == p.InstallmentNumber {
			return core.ErrDuplicateInstallment
		}
	}
	s.payments[p.ID] = p
	return nil
}

func (s *MemoryStore) DeletePayment(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.payments[id]; !ok {
		return core.ErrNotFound
	}
	delete(s.payments, id)
	return nil
}

func (s *MemoryStore) ListPaymentsByLoan(_ context.Context, loanID int64) ([]core.LoanPayment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var payments []core.LoanPayment
	for _, p := range s.payments {
		if p.LoanID == loanID {
			payments = append(payments, p)
		}
	}
	sort.Slice(payments, func(i, j int) bool {
		return payments[i].InstallmentNumber < payments[j].InstallmentNumber
	})
	return payments, nil
}

func (s *MemoryStore) SumPaymentsBetween(_ context.Context, start, end core.Date) (core.Money, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var cents int64
	for _, p := range s.payments {
		if inRange(p.PaymentDate, start, end) {
			cents += p.TotalAmount.Cents
		}
	}
	return core.Money{Cents: cents}, nil
}

func (s *MemoryStore) CreateContribution(_ context.Context, c *core.Contribution) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.contributions {
		if existing.MemberID == c.MemberID && existing.Month == c.Month && existing.Year == c.Year {
			return core.ErrDuplicatePeriodEntry
		}
	}
	c.ID = s.nextSeq()
	s.contributions[c.ID] = *c
	return nil
}

func (s *MemoryStore) GetContribution(_ context.Context, id int64) (core.Contribution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.contributions[id]
	if !ok {
		return core.Contribution{}, core.ErrNotFound
	}
	return c, nil
}

func (s *MemoryStore) UpdateContribution(_ context.Context, c core.Contribution) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.contributions[c.ID]; !ok {
		return core.ErrNotFound
	}
	s.contributions[c.ID] = c
	return nil
}

func (s *MemoryStore) DeleteContribution(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.contributions[id]; !ok {
		return core.ErrNotFound
	}
	delete(s.contributions, id)
	return nil
}

func (s *MemoryStore) ListContributionsByMember(_ context.Context, memberID int64) ([]core.Contribution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var entries []core.Contribution
	for _, c := range s.contributions {
		if c.MemberID == memberID {
			entries = append(entries, c)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Year != entries[j].Year {
			return entries[i].Year < entries[j].Year
		}
		return entries[i].Month < entries[j].Month
	})
	return entries, nil
}

func (s *MemoryStore) SumContributionsBetween(_ context.Context, start, end core.Date) (core.ContributionTotals, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	lo := start.Year()*100 + start.Month()
	hi := end.Year()*100 + end.Month()
	var t core.ContributionTotals
	for _, c := range s.contributions {
		key := c.Year*100 + c.Month
		if key >= lo && key <= hi {
			t.MandatoryDues.Cents += c.MandatoryDues.Cents
			t.VoluntarySavings.Cents += c.VoluntarySavings.Cents
			t.MandatorySavings.Cents += c.MandatorySavings.Cents
		}
	}
	return t, nil
}

func (s *MemoryStore) SumContributionsAllTime(_ context.Context) (core.ContributionTotals, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var t core.ContributionTotals
	for _, c := range s.contributions {
		t.MandatoryDues.Cents += c.MandatoryDues.Cents
		t.VoluntarySavings.Cents += c.VoluntarySavings.Cents
		t.MandatorySavings.Cents += c.MandatorySavings.Cents
	}
	return t, nil
}

func (s *MemoryStore) CreateCashEntry(_ context.Context, e *core.CashEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = s.nextSeq()
	s.cashEntries[e.ID] = *e
	return nil
}

func (s *MemoryStore) GetCashEntry(_ context.Context, id int64) (core.CashEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.cashEntries[id]
	if !ok {
		return core.CashEntry{}, core.ErrNotFound
	}
	return e, nil
}

func (s *MemoryStore) UpdateCashEntry(_ context.Context, e core.CashEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cashEntries[e.ID]; !ok {
		return core.ErrNotFound
	}
	s.cashEntries[e.ID] = e
	return nil
}

func (s *MemoryStore) DeleteCashEntry(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cashEntries[id]; !ok {
		return core.ErrNotFound
	}
	delete(s.cashEntries, id)
	return nil
}

func (s *MemoryStore) ListCashEntries(_ context.Context, start, end core.Date) ([]core.CashEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var entries []core.CashEntry
	for _, e := range s.cashEntries {
		if inRange(e.Date, start, end) {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].Date.Equal(entries[j].Date.Time) {
			return entries[i].Date.Before(entries[j].Date.Time)
		}
		return entries[i].ID < entries[j].ID
	})
	return entries, nil
}

func (s *MemoryStore) SumCashBetween(_ context.Context, start, end core.Date) (core.Money, core.Money, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var debits, credits int64
	for _, e := range s.cashEntries {
		if !inRange(e.Date, start, end) || e.Category.Internal() {
			continue
		}
		switch e.Direction {
		case core.Debit:
			debits += e.Amount.Cents
		case core.Credit:
			credits += e.Amount.Cents
		}
	}
	return core.Money{Cents: debits}, core.Money{Cents: credits}, nil
}

func (s *MemoryStore) CreateReportSnapshot(_ context.Context, snap core.ReportSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[snap.ID] = snap
	s.snapshotOrder = append(s.snapshotOrder, snap.ID)
	return nil
}

func (s *MemoryStore) GetReportSnapshot(_ context.Context, id string) (core.ReportSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snapshots[id]
	if !ok {
		return core.ReportSnapshot{}, core.ErrNotFound
	}
	return snap, nil
}

func (s *MemoryStore) ListReportSnapshots(_ context.Context) ([]core.ReportSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snaps := make([]core.ReportSnapshot, 0, len(s.snapshots))
	// Most recent first.
	for i := len(s.snapshotOrder) - 1; i >= 0; i-- {
		if snap, ok := s.snapshots[s.snapshotOrder[i]]; ok {
			snaps = append(snaps, snap)
		}
	}
	return snaps, nil
}

func (s *MemoryStore) DeleteReportSnapshot(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.snapshots[id]; !ok {
		return core.ErrNotFound
	}
	delete(s.snapshots, id)
	return nil
}
