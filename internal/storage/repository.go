package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"coopledger/internal/core"

	_ "modernc.org/sqlite"
)

const dateLayout = "2006-01-02"

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func dateToStr(d core.Date) string {
	return d.Format(dateLayout)
}

func strToDate(s string) (core.Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return core.Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return core.Date{Time: t}, nil
}

// translateErr maps raw storage errors onto domain sentinels so callers never
// see driver-specific errors for constraint violations.
func translateErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return core.ErrNotFound
	}
	msg := err.Error()
	if strings.Contains(msg, "UNIQUE constraint failed") {
		switch {
		case strings.Contains(msg, "loan_payments"):
			return core.ErrDuplicateInstallment
		case strings.Contains(msg, "contributions"):
			return core.ErrDuplicatePeriodEntry
		}
	}
	return err
}

// --- members ---

func (r *SQLiteRepository) GetMemberByID(ctx context.Context, id int64) (core.Member, error) {
	var m core.Member
	err := r.db.QueryRowContext(ctx,
		`SELECT id, code, name FROM members WHERE id = ?`, id).
		Scan(&m.ID, &m.Code, &m.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Member{}, core.ErrMemberNotFound
	}
	if err != nil {
		return core.Member{}, fmt.Errorf("get member by id: %w", err)
	}
	return m, nil
}

func (r *SQLiteRepository) GetMemberByCode(ctx context.Context, code string) (core.Member, error) {
	var m core.Member
	err := r.db.QueryRowContext(ctx,
		`SELECT id, code, name FROM members WHERE code = ?`, code).
		Scan(&m.ID, &m.Code, &m.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Member{}, core.ErrMemberNotFound
	}
	if err != nil {
		return core.Member{}, fmt.Errorf("get member by code: %w", err)
	}
	return m, nil
}

// --- loans ---

func (r *SQLiteRepository) CreateLoan(ctx context.Context, loan *core.Loan) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO loans (member_id, principal_cents, rate_bps, term_months,
		 installment_cents, origination_date, status, outstanding_cents)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		loan.MemberID, loan.Principal.Cents, loan.RateBps, loan.TermMonths,
		loan.MonthlyInstallment.Cents, dateToStr(loan.OriginationDate),
		string(loan.Status), loan.OutstandingBalance.Cents)
	if err != nil {
		return fmt.Errorf("create loan: %w", translateErr(err))
	}
	loan.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("loan insert id: %w", err)
	}

	slog.InfoContext(ctx, "Loan stored",
		"id", loan.ID,
		"member_id", loan.MemberID,
		"principal_cents", loan.Principal.Cents,
		"term_months", loan.TermMonths)
	return nil
}

func (r *SQLiteRepository) scanLoan(row interface{ Scan(...any) error }) (core.Loan, error) {
	var (
		l       core.Loan
		origStr string
		status  string
	)
	err := row.Scan(&l.ID, &l.MemberID, &l.Principal.Cents, &l.RateBps, &l.TermMonths,
		&l.MonthlyInstallment.Cents, &origStr, &status, &l.OutstandingBalance.Cents)
	if err != nil {
		return core.Loan{}, translateErr(err)
	}
	l.Status = core.LoanStatus(status)
	l.OriginationDate, err = strToDate(origStr)
	if err != nil {
		return core.Loan{}, err
	}
	return l, nil
}

const loanColumns = `id, member_id, principal_cents, rate_bps, term_months,
	installment_cents, origination_date, status, outstanding_cents`

func (r *SQLiteRepository) GetLoan(ctx context.Context, id int64) (core.Loan, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+loanColumns+` FROM loans WHERE id = ?`, id)
	loan, err := r.scanLoan(row)
	if err != nil {
		return core.Loan{}, fmt.Errorf("get loan: %w", err)
	}
	return loan, nil
}

func (r *SQLiteRepository) UpdateLoan(ctx context.Context, loan core.Loan) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE loans SET status = ?, outstanding_cents = ? WHERE id = ?`,
		string(loan.Status), loan.OutstandingBalance.Cents, loan.ID)
	if err != nil {
		return fmt.Errorf("update loan: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) ListLoans(ctx context.Context) ([]core.Loan, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+loanColumns+` FROM loans ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list loans: %w", err)
	}
	defer rows.Close()

	var loans []core.Loan
	for rows.Next() {
		loan, err := r.scanLoan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan loan: %w", err)
		}
		loans = append(loans, loan)
	}
	return loans, rows.Err()
}

func (r *SQLiteRepository) SumOutstandingByStatus(ctx context.Context, status core.LoanStatus) (core.Money, error) {
	var cents int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(outstanding_cents), 0) FROM loans WHERE status = ?`,
		string(status)).Scan(&cents)
	if err != nil {
		return core.Money{}, fmt.Errorf("sum outstanding: %w", err)
	}
	return core.Money{Cents: cents}, nil
}

func (r *SQLiteRepository) SumDisbursedBetween(ctx context.Context, start, end core.Date, statuses []core.LoanStatus) (core.Money, error) {
	if len(statuses) == 0 {
		return core.Money{}, nil
	}
	placeholders := strings.Repeat("?,", len(statuses))
	placeholders = placeholders[:len(placeholders)-1]
	args := []any{dateToStr(start), dateToStr(end)}
	for _, s := range statuses {
		args = append(args, string(s))
	}

	var cents int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(principal_cents), 0) FROM loans
		 WHERE origination_date BETWEEN ? AND ? AND status IN (`+placeholders+`)`,
		args...).Scan(&cents)
	if err != nil {
		return core.Money{}, fmt.Errorf("sum disbursed: %w", err)
	}
	return core.Money{Cents: cents}, nil
}

// --- loan payments ---

func (r *SQLiteRepository) CreatePayment(ctx context.Context, p *core.LoanPayment) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO loan_payments (loan_id, installment_number, principal_cents,
		 interest_cents, total_cents, remaining_cents, payment_date, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.LoanID, p.InstallmentNumber, p.PrincipalPortion.Cents,
		p.InterestPortion.Cents, p.TotalAmount.Cents, p.RemainingAfterPayment.Cents,
		dateToStr(p.PaymentDate), string(p.Status))
	if err != nil {
		return fmt.Errorf("create payment: %w", translateErr(err))
	}
	p.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("payment insert id: %w", err)
	}

	slog.InfoContext(ctx, "Loan payment stored",
		"id", p.ID,
		"loan_id", p.LoanID,
		"installment", p.InstallmentNumber,
		"total_cents", p.TotalAmount.Cents)
	return nil
}

const paymentColumns = `id, loan_id, installment_number, principal_cents,
	interest_cents, total_cents, remaining_cents, payment_date, status`

func (r *SQLiteRepository) scanPayment(row interface{ Scan(...any) error }) (core.LoanPayment, error) {
	var (
		p       core.LoanPayment
		dateStr string
		status  string
	)
	err := row.Scan(&p.ID, &p.LoanID, &p.InstallmentNumber, &p.PrincipalPortion.Cents,
		&p.InterestPortion.Cents, &p.TotalAmount.Cents, &p.RemainingAfterPayment.Cents,
		&dateStr, &status)
	if err != nil {
		return core.LoanPayment{}, translateErr(err)
	}
	p.Status = core.PaymentStatus(status)
	p.PaymentDate, err = strToDate(dateStr)
	if err != nil {
		return core.LoanPayment{}, err
	}
	return p, nil
}

func (r *SQLiteRepository) GetPayment(ctx context.Context, id int64) (core.LoanPayment, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+paymentColumns+` FROM loan_payments WHERE id = ?`, id)
	p, err := r.scanPayment(row)
	if err != nil {
		return core.LoanPayment{}, fmt.Errorf("get payment: %w", err)
	}
	return p, nil
}

func (r *SQLiteRepository) UpdatePayment(ctx context.Context, p core.LoanPayment) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE loan_payments SET installment_number = ?, principal_cents = ?,
		 interest_cents = ?, total_cents = ?, remaining_cents = ?, payment_date = ?,
		 status = ? WHERE id = ?`,
		p.InstallmentNumber, p.PrincipalPortion.Cents, p.InterestPortion.Cents,
		p.TotalAmount.Cents, p.RemainingAfterPayment.Cents, dateToStr(p.PaymentDate),
		string(p.Status), p.ID)
	if err != nil {
		return fmt.Errorf("update payment: %w", translateErr(err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) DeletePayment(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM loan_payments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete payment: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) ListPaymentsByLoan(ctx context.Context, loanID int64) ([]core.LoanPayment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+paymentColumns+` FROM loan_payments WHERE loan_id = ? ORDER BY installment_number`,
		loanID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var payments []core.LoanPayment
	for rows.Next() {
		p, err := r.scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func (r *SQLiteRepository) SumPaymentsBetween(ctx context.Context, start, end core.Date) (core.Money, error) {
	var cents int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(total_cents), 0) FROM loan_payments
		 WHERE payment_date BETWEEN ? AND ?`,
		dateToStr(start), dateToStr(end)).Scan(&cents)
	if err != nil {
		return core.Money{}, fmt.Errorf("sum payments: %w", err)
	}
	return core.Money{Cents: cents}, nil
}

// --- contributions ---

func (r *SQLiteRepository) CreateContribution(ctx context.Context, c *core.Contribution) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO contributions (member_id, month, year, mandatory_dues_cents,
		 voluntary_savings_cents, mandatory_savings_cents, payment_date, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.MemberID, c.Month, c.Year, c.MandatoryDues.Cents,
		c.VoluntarySavings.Cents, c.MandatorySavings.Cents,
		dateToStr(c.PaymentDate), string(c.Status))
	if err != nil {
		return fmt.Errorf("create contribution: %w", translateErr(err))
	}
	c.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("contribution insert id: %w", err)
	}

	slog.InfoContext(ctx, "Contribution stored",
		"id", c.ID,
		"member_id", c.MemberID,
		"month", c.Month,
		"year", c.Year)
	return nil
}

const contributionColumns = `id, member_id, month, year, mandatory_dues_cents,
	voluntary_savings_cents, mandatory_savings_cents, payment_date, status`

func (r *SQLiteRepository) scanContribution(row interface{ Scan(...any) error }) (core.Contribution, error) {
	var (
		c       core.Contribution
		dateStr string
		status  string
	)
	err := row.Scan(&c.ID, &c.MemberID, &c.Month, &c.Year, &c.MandatoryDues.Cents,
		&c.VoluntarySavings.Cents, &c.MandatorySavings.Cents, &dateStr, &status)
	if err != nil {
		return core.Contribution{}, translateErr(err)
	}
	c.Status = core.ContributionStatus(status)
	c.PaymentDate, err = strToDate(dateStr)
	if err != nil {
		return core.Contribution{}, err
	}
	return c, nil
}

func (r *SQLiteRepository) GetContribution(ctx context.Context, id int64) (core.Contribution, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+contributionColumns+` FROM contributions WHERE id = ?`, id)
	c, err := r.scanContribution(row)
	if err != nil {
		return core.Contribution{}, fmt.Errorf("get contribution: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) UpdateContribution(ctx context.Context, c core.Contribution) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE contributions SET mandatory_dues_cents = ?, voluntary_savings_cents = ?,
		 mandatory_savings_cents = ?, payment_date = ?, status = ? WHERE id = ?`,
		c.MandatoryDues.Cents, c.VoluntarySavings.Cents, c.MandatorySavings.Cents,
		dateToStr(c.PaymentDate), string(c.Status), c.ID)
	if err != nil {
		return fmt.Errorf("update contribution: %w", translateErr(err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) DeleteContribution(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM contributions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete contribution: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) ListContributionsByMember(ctx context.Context, memberID int64) ([]core.Contribution, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+contributionColumns+` FROM contributions
		 WHERE member_id = ? ORDER BY year, month`, memberID)
	if err != nil {
		return nil, fmt.Errorf("list contributions: %w", err)
	}
	defer rows.Close()

	var entries []core.Contribution
	for rows.Next() {
		c, err := r.scanContribution(rows)
		if err != nil {
			return nil, fmt.Errorf("scan contribution: %w", err)
		}
		entries = append(entries, c)
	}
	return entries, rows.Err()
}

// SumContributionsBetween sums by calendar (year, month) membership in the
// window, not by exact payment date: dues are period-indexed.
func (r *SQLiteRepository) SumContributionsBetween(ctx context.Context, start, end core.Date) (core.ContributionTotals, error) {
	var t core.ContributionTotals
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(mandatory_dues_cents), 0),
		        COALESCE(SUM(voluntary_savings_cents), 0),
		        COALESCE(SUM(mandatory_savings_cents), 0)
		 FROM contributions
		 WHERE (year * 100 + month) BETWEEN ? AND ?`,
		start.Year()*100+start.Month(), end.Year()*100+end.Month()).
		Scan(&t.MandatoryDues.Cents, &t.VoluntarySavings.Cents, &t.MandatorySavings.Cents)
	if err != nil {
		return core.ContributionTotals{}, fmt.Errorf("sum contributions: %w", err)
	}
	return t, nil
}

func (r *SQLiteRepository) SumContributionsAllTime(ctx context.Context) (core.ContributionTotals, error) {
	var t core.ContributionTotals
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(mandatory_dues_cents), 0),
		        COALESCE(SUM(voluntary_savings_cents), 0),
		        COALESCE(SUM(mandatory_savings_cents), 0)
		 FROM contributions`).
		Scan(&t.MandatoryDues.Cents, &t.VoluntarySavings.Cents, &t.MandatorySavings.Cents)
	if err != nil {
		return core.ContributionTotals{}, fmt.Errorf("sum contributions all time: %w", err)
	}
	return t, nil
}

// --- cash ledger ---

func (r *SQLiteRepository) CreateCashEntry(ctx context.Context, e *core.CashEntry) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO cash_entries (direction, category, description, amount_cents,
		 entry_date, authorization) VALUES (?, ?, ?, ?, ?, ?)`,
		string(e.Direction), string(e.Category), e.Description, e.Amount.Cents,
		dateToStr(e.Date), string(e.Authorization))
	if err != nil {
		return fmt.Errorf("create cash entry: %w", err)
	}
	e.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("cash entry insert id: %w", err)
	}

	slog.InfoContext(ctx, "Cash entry stored",
		"id", e.ID,
		"direction", string(e.Direction),
		"category", string(e.Category),
		"amount_cents", e.Amount.Cents)
	return nil
}

const cashColumns = `id, direction, category, description, amount_cents, entry_date, authorization`

func (r *SQLiteRepository) scanCashEntry(row interface{ Scan(...any) error }) (core.CashEntry, error) {
	var (
		e         core.CashEntry
		direction string
		category  string
		dateStr   string
		auth      string
	)
	err := row.Scan(&e.ID, &direction, &category, &e.Description, &e.Amount.Cents, &dateStr, &auth)
	if err != nil {
		return core.CashEntry{}, translateErr(err)
	}
	e.Direction = core.CashDirection(direction)
	e.Category = core.CashCategory(category)
	e.Authorization = core.AuthorizationStatus(auth)
	e.Date, err = strToDate(dateStr)
	if err != nil {
		return core.CashEntry{}, err
	}
	return e, nil
}

func (r *SQLiteRepository) GetCashEntry(ctx context.Context, id int64) (core.CashEntry, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+cashColumns+` FROM cash_entries WHERE id = ?`, id)
	e, err := r.scanCashEntry(row)
	if err != nil {
		return core.CashEntry{}, fmt.Errorf("get cash entry: %w", err)
	}
	return e, nil
}

func (r *SQLiteRepository) UpdateCashEntry(ctx context.Context, e core.CashEntry) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE cash_entries SET direction = ?, category = ?, description = ?,
		 amount_cents = ?, entry_date = ?, authorization = ? WHERE id = ?`,
		string(e.Direction), string(e.Category), e.Description, e.Amount.Cents,
		dateToStr(e.Date), string(e.Authorization), e.ID)
	if err != nil {
		return fmt.Errorf("update cash entry: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) DeleteCashEntry(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cash_entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete cash entry: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) ListCashEntries(ctx context.Context, start, end core.Date) ([]core.CashEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+cashColumns+` FROM cash_entries
		 WHERE entry_date BETWEEN ? AND ? ORDER BY entry_date, id`,
		dateToStr(start), dateToStr(end))
	if err != nil {
		return nil, fmt.Errorf("list cash entries: %w", err)
	}
	defer rows.Close()

	var entries []core.CashEntry
	for rows.Next() {
		e, err := r.scanCashEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan cash entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// SumCashBetween sums debits and credits in the window, excluding internal
// transfer categories so they never double-count against the loan ledger.
func (r *SQLiteRepository) SumCashBetween(ctx context.Context, start, end core.Date) (core.Money, core.Money, error) {
	internal := core.InternalCategories()
	placeholders := strings.Repeat("?,", len(internal))
	placeholders = placeholders[:len(placeholders)-1]

	args := []any{dateToStr(start), dateToStr(end)}
	for _, c := range internal {
		args = append(args, string(c))
	}

	var debits, credits int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(CASE WHEN direction = 'debit' THEN amount_cents ELSE 0 END), 0),
		        COALESCE(SUM(CASE WHEN direction = 'credit' THEN amount_cents ELSE 0 END), 0)
		 FROM cash_entries
		 WHERE entry_date BETWEEN ? AND ? AND category NOT IN (`+placeholders+`)`,
		args...).Scan(&debits, &credits)
	if err != nil {
		return core.Money{}, core.Money{}, fmt.Errorf("sum cash entries: %w", err)
	}
	return core.Money{Cents: debits}, core.Money{Cents: credits}, nil
}

// --- report snapshots ---

// snapshotPayload is the JSON body persisted per snapshot. The snapshot is
// immutable so a schema-less payload column is safe: it is written once and
// only ever read back whole.
type snapshotPayload struct {
	Period       core.WindowTotals `json:"period"`
	YearToDate   core.WindowTotals `json:"year_to_date"`
	BalanceSheet core.BalanceSheet `json:"balance_sheet"`
	Warnings     []string          `json:"warnings,omitempty"`
}

func (r *SQLiteRepository) CreateReportSnapshot(ctx context.Context, snap core.ReportSnapshot) error {
	payload, err := json.Marshal(snapshotPayload{
		Period:       snap.Period,
		YearToDate:   snap.YearToDate,
		BalanceSheet: snap.BalanceSheet,
		Warnings:     snap.Warnings,
	})
	if err != nil {
		return fmt.Errorf("marshal snapshot payload: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO report_snapshots (id, period_start, period_end, report_type,
		 payload, created_by, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		snap.ID, dateToStr(snap.PeriodStart), dateToStr(snap.PeriodEnd),
		string(snap.ReportType), string(payload), snap.CreatedBy,
		snap.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("create report snapshot: %w", err)
	}

	slog.InfoContext(ctx, "Report snapshot stored",
		"id", snap.ID,
		"report_type", string(snap.ReportType),
		"period_start", dateToStr(snap.PeriodStart),
		"period_end", dateToStr(snap.PeriodEnd))
	return nil
}

const snapshotColumns = `id, period_start, period_end, report_type, payload, created_by, created_at`

func (r *SQLiteRepository) scanSnapshot(row interface{ Scan(...any) error }) (core.ReportSnapshot, error) {
	var (
		snap       core.ReportSnapshot
		startStr   string
		endStr     string
		reportType string
		payload    string
		createdAt  string
	)
	err := row.Scan(&snap.ID, &startStr, &endStr, &reportType, &payload,
		&snap.CreatedBy, &createdAt)
	if err != nil {
		return core.ReportSnapshot{}, translateErr(err)
	}

	snap.ReportType = core.ReportType(reportType)
	if snap.PeriodStart, err = strToDate(startStr); err != nil {
		return core.ReportSnapshot{}, err
	}
	if snap.PeriodEnd, err = strToDate(endStr); err != nil {
		return core.ReportSnapshot{}, err
	}
	if snap.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return core.ReportSnapshot{}, fmt.Errorf("parse created_at: %w", err)
	}

	var body snapshotPayload
	if err := json.Unmarshal([]byte(payload), &body); err != nil {
		return core.ReportSnapshot{}, fmt.Errorf("unmarshal snapshot payload: %w", err)
	}
	snap.Period = body.Period
	snap.YearToDate = body.YearToDate
	snap.BalanceSheet = body.BalanceSheet
	snap.Warnings = body.Warnings
	return snap, nil
}

func (r *SQLiteRepository) GetReportSnapshot(ctx context.Context, id string) (core.ReportSnapshot, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+snapshotColumns+` FROM report_snapshots WHERE id = ?`, id)
	snap, err := r.scanSnapshot(row)
	if err != nil {
		return core.ReportSnapshot{}, fmt.Errorf("get report snapshot: %w", err)
	}
	return snap, nil
}

func (r *SQLiteRepository) ListReportSnapshots(ctx context.Context) ([]core.ReportSnapshot, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+snapshotColumns+` FROM report_snapshots ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list report snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []core.ReportSnapshot
	for rows.Next() {
		snap, err := r.scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan report snapshot: %w", err)
		}
		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}

func (r *SQLiteRepository) DeleteReportSnapshot(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM report_snapshots WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete report snapshot: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// SeedMember inserts a member directory row. Production rows arrive from the
// membership collaborator; this is for bootstrap and tests.
func (r *SQLiteRepository) SeedMember(ctx context.Context, m *core.Member) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO members (code, name) VALUES (?, ?)`, m.Code, m.Name)
	if err != nil {
		return fmt.Errorf("seed member: %w", err)
	}
	m.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("member insert id: %w", err)
	}
	return nil
}
