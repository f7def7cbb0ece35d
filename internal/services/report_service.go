package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"coopledger/internal/amqp"
	"coopledger/internal/core"
	"coopledger/internal/storage"
)

// disbursedStatuses are the loan statuses whose principal counts as money
// that actually left the cooperative.
var disbursedStatuses = []core.LoanStatus{core.LoanActive, core.LoanPaid}

// ReportService aggregates the ledgers into period reports and manages the
// immutable snapshot store. The AMQP client is optional; when nil, saved
// snapshots are simply not announced.
type ReportService struct {
	store          storage.Store
	amqpClient     *amqp.Client
	toleranceCents int64
}

func NewReportService(store storage.Store, amqpClient *amqp.Client, toleranceCents int64) *ReportService {
	if toleranceCents <= 0 {
		toleranceCents = core.BalanceWarnTolerance
	}
	return &ReportService{
		store:          store,
		amqpClient:     amqpClient,
		toleranceCents: toleranceCents,
	}
}

// Generate builds a report for the window without persisting anything.
// Calling it twice over the same data yields the same report.
func (s *ReportService) Generate(ctx context.Context, start, end core.Date, reportType core.ReportType) (core.ReportSnapshot, error) {
	if err := core.ValidatePeriod(start, end); err != nil {
		return core.ReportSnapshot{}, err
	}
	if !reportType.Valid() {
		return core.ReportSnapshot{}, fmt.Errorf("%w: unknown report type %q", core.ErrInvalidPeriod, reportType)
	}

	// Year-to-date runs from January 1 of the period's opening year, so a
	// window crossing a year boundary keeps its prior-year activity.
	ytdStart := core.NewDate(start.Year(), 1, 1)

	var (
		period      core.WindowTotals
		ytd         core.WindowTotals
		receivables core.Money
		allTime     core.ContributionTotals
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		totals, err := s.aggregateWindow(gctx, start, end)
		if err != nil {
			return fmt.Errorf("aggregate period window: %w", err)
		}
		period = totals
		return nil
	})
	g.Go(func() error {
		totals, err := s.aggregateWindow(gctx, ytdStart, end)
		if err != nil {
			return fmt.Errorf("aggregate year-to-date window: %w", err)
		}
		ytd = totals
		return nil
	})
	g.Go(func() error {
		sum, err := s.store.SumOutstandingByStatus(gctx, core.LoanActive)
		if err != nil {
			return fmt.Errorf("sum outstanding receivables: %w", err)
		}
		receivables = sum
		return nil
	})
	g.Go(func() error {
		totals, err := s.store.SumContributionsAllTime(gctx)
		if err != nil {
			return fmt.Errorf("sum all-time contributions: %w", err)
		}
		allTime = totals
		return nil
	})
	if err := g.Wait(); err != nil {
		return core.ReportSnapshot{}, err
	}

	sheet, warning := core.BuildBalanceSheet(ytd, receivables, allTime, s.toleranceCents)

	snap := core.ReportSnapshot{
		PeriodStart:  start,
		PeriodEnd:    end,
		ReportType:   reportType,
		Period:       period,
		YearToDate:   ytd,
		BalanceSheet: sheet,
	}
	if warning != "" {
		snap.Warnings = append(snap.Warnings, warning)
	}
	return snap, nil
}

// aggregateWindow sums every ledger over one date window and derives the
// income/expense rollups.
func (s *ReportService) aggregateWindow(ctx context.Context, start, end core.Date) (core.WindowTotals, error) {
	var totals core.WindowTotals

	contributions, err := s.store.SumContributionsBetween(ctx, start, end)
	if err != nil {
		return totals, err
	}
	totals.Contributions = contributions

	totals.LoanPayments, err = s.store.SumPaymentsBetween(ctx, start, end)
	if err != nil {
		return totals, err
	}

	totals.CashDebits, totals.CashCredits, err = s.store.SumCashBetween(ctx, start, end)
	if err != nil {
		return totals, err
	}

	totals.LoanDisbursements, err = s.store.SumDisbursedBetween(ctx, start, end, disbursedStatuses)
	if err != nil {
		return totals, err
	}

	totals.Derive()
	return totals, nil
}

// Save generates the report and persists it as an immutable snapshot. The
// announcement publish is best-effort and never fails the save.
func (s *ReportService) Save(ctx context.Context, start, end core.Date, reportType core.ReportType, createdBy string) (core.ReportSnapshot, error) {
	snap, err := s.Generate(ctx, start, end, reportType)
	if err != nil {
		return core.ReportSnapshot{}, err
	}

	snap.ID = uuid.NewString()
	snap.CreatedBy = createdBy
	snap.CreatedAt = time.Now().UTC()

	if err := s.store.CreateReportSnapshot(ctx, snap); err != nil {
		return core.ReportSnapshot{}, fmt.Errorf("persist snapshot: %w", err)
	}

	s.publishAnnouncement(ctx, snap)

	return snap, nil
}

func (s *ReportService) publishAnnouncement(ctx context.Context, snap core.ReportSnapshot) {
	if s.amqpClient == nil {
		return
	}
	msg := amqp.NewReportPublishedMessage(
		snap.ID,
		string(snap.ReportType),
		snap.PeriodStart.String(),
		snap.PeriodEnd.String(),
		snap.CreatedBy,
	)
	if err := s.amqpClient.PublishReportPublished(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish report announcement",
			"error", err,
			"snapshot_id", snap.ID)
	}
}

func (s *ReportService) Get(ctx context.Context, id string) (core.ReportSnapshot, error) {
	return s.store.GetReportSnapshot(ctx, id)
}

// List returns saved snapshots, newest first.
func (s *ReportService) List(ctx context.Context) ([]core.ReportSnapshot, error) {
	return s.store.ListReportSnapshots(ctx)
}

func (s *ReportService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteReportSnapshot(ctx, id); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Deleted report snapshot", "snapshot_id", id)
	return nil
}
