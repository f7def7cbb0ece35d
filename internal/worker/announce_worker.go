// Package worker processes report announcements for downstream consumers.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"coopledger/internal/amqp"
	"coopledger/internal/core"
	"coopledger/internal/storage"
)

// AnnounceWorker consumes report announcements and hands the resolved
// snapshot to downstream consumers (document rendering, member messaging).
// The consumers are external collaborators; the worker's contract is fetching
// the snapshot and invoking each registered sink.
type AnnounceWorker struct {
	store storage.Store
	sinks []Sink
}

// Sink receives a resolved snapshot. A sink error requeues the announcement.
type Sink func(ctx context.Context, snap core.ReportSnapshot) error

func NewAnnounceWorker(store storage.Store, sinks ...Sink) *AnnounceWorker {
	if len(sinks) == 0 {
		sinks = []Sink{LogSink}
	}
	return &AnnounceWorker{store: store, sinks: sinks}
}

// HandleAnnouncement resolves the announced snapshot and fans it out to every
// sink. A snapshot deleted between save and delivery is dropped, not retried.
func (w *AnnounceWorker) HandleAnnouncement(ctx context.Context, msg *amqp.ReportPublishedMessage) error {
	snap, err := w.store.GetReportSnapshot(ctx, msg.SnapshotID)
	if errors.Is(err, core.ErrNotFound) {
		slog.WarnContext(ctx, "Announced snapshot no longer exists, dropping",
			"snapshot_id", msg.SnapshotID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("fetch snapshot %s: %w", msg.SnapshotID, err)
	}

	for _, sink := range w.sinks {
		if err := sink(ctx, snap); err != nil {
			return fmt.Errorf("deliver snapshot %s: %w", snap.ID, err)
		}
	}
	return nil
}

// LogSink is the default sink: it logs the report summary. Deployments
// register real rendering/messaging sinks in its place.
func LogSink(ctx context.Context, snap core.ReportSnapshot) error {
	slog.InfoContext(ctx, "Report snapshot ready for delivery",
		"snapshot_id", snap.ID,
		"report_type", string(snap.ReportType),
		"period_start", snap.PeriodStart.String(),
		"period_end", snap.PeriodEnd.String(),
		"net_balance", snap.Period.NetBalance.String(),
		"ytd_net_balance", snap.YearToDate.NetBalance.String(),
		"assets", snap.BalanceSheet.Assets.String(),
		"warnings", len(snap.Warnings),
		"created_by", snap.CreatedBy)
	return nil
}
