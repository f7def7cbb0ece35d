package services

import (
	"context"
	"errors"
	"testing"

	"coopledger/internal/core"
)

func testContribution(memberID int64, month, year int) core.Contribution {
	return core.Contribution{
		MemberID:         memberID,
		Month:            month,
		Year:             year,
		MandatoryDues:    core.Money{Cents: 50_000_000},
		VoluntarySavings: core.Money{Cents: 10_000_000},
		MandatorySavings: core.Money{Cents: 5_000_000},
		PaymentDate:      core.NewDate(year, month, 5),
	}
}

func TestRecordContribution(t *testing.T) {
	store, member := newTestStore(t)
	svc := NewContributionService(store)

	recorded, err := svc.Record(context.Background(), testContribution(member.ID, 3, 2025))
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if recorded.ID == 0 {
		t.Error("Record() did not assign an id")
	}
	if recorded.Status != core.ContributionPaid {
		t.Errorf("Status = %q, want paid (defaulted)", recorded.Status)
	}
}

func TestRecordContribution_DuplicatePeriod(t *testing.T) {
	store, member := newTestStore(t)
	svc := NewContributionService(store)
	ctx := context.Background()

	if _, err := svc.Record(ctx, testContribution(member.ID, 3, 2025)); err != nil {
		t.Fatalf("first Record() error = %v", err)
	}
	_, err := svc.Record(ctx, testContribution(member.ID, 3, 2025))
	if !errors.Is(err, core.ErrDuplicatePeriodEntry) {
		t.Errorf("second Record() error = %v, want ErrDuplicatePeriodEntry", err)
	}

	// Same member, different month: fine. Different member, same month: fine.
	if _, err := svc.Record(ctx, testContribution(member.ID, 4, 2025)); err != nil {
		t.Errorf("Record() different month error = %v", err)
	}
	other := core.Member{Code: "M-002", Name: "Member Two"}
	if err := store.SeedMember(ctx, &other); err != nil {
		t.Fatalf("SeedMember() error = %v", err)
	}
	if _, err := svc.Record(ctx, testContribution(other.ID, 3, 2025)); err != nil {
		t.Errorf("Record() different member error = %v", err)
	}
}

func TestRecordContribution_UnknownMember(t *testing.T) {
	store, _ := newTestStore(t)
	svc := NewContributionService(store)

	_, err := svc.Record(context.Background(), testContribution(9999, 1, 2025))
	if !errors.Is(err, core.ErrMemberNotFound) {
		t.Errorf("Record() error = %v, want ErrMemberNotFound", err)
	}
}

func TestRecordContribution_Validation(t *testing.T) {
	store, member := newTestStore(t)
	svc := NewContributionService(store)
	ctx := context.Background()

	bad := testContribution(member.ID, 13, 2025)
	if _, err := svc.Record(ctx, bad); !errors.Is(err, core.ErrInvalidMonth) {
		t.Errorf("Record() month 13 error = %v, want ErrInvalidMonth", err)
	}

	empty := testContribution(member.ID, 5, 2025)
	empty.MandatoryDues = core.Money{}
	empty.VoluntarySavings = core.Money{}
	empty.MandatorySavings = core.Money{}
	if _, err := svc.Record(ctx, empty); !errors.Is(err, core.ErrInvalidAmount) {
		t.Errorf("Record() all-zero error = %v, want ErrInvalidAmount", err)
	}
}

func TestResolveMemberCode_Cached(t *testing.T) {
	store, member := newTestStore(t)
	svc := NewContributionService(store)
	ctx := context.Background()

	resolved, err := svc.ResolveMemberCode(ctx, "M-001")
	if err != nil {
		t.Fatalf("ResolveMemberCode() error = %v", err)
	}
	if resolved.ID != member.ID {
		t.Errorf("ID = %d, want %d", resolved.ID, member.ID)
	}

	// Second lookup hits the cache; even a store-level removal of the row
	// does not surface until the entry expires.
	again, err := svc.ResolveMemberCode(ctx, "M-001")
	if err != nil {
		t.Fatalf("cached ResolveMemberCode() error = %v", err)
	}
	if again.ID != member.ID {
		t.Errorf("cached ID = %d, want %d", again.ID, member.ID)
	}

	if _, err := svc.ResolveMemberCode(ctx, "missing"); !errors.Is(err, core.ErrMemberNotFound) {
		t.Errorf("ResolveMemberCode(missing) error = %v, want ErrMemberNotFound", err)
	}
}

func TestListByMemberCode(t *testing.T) {
	store, member := newTestStore(t)
	svc := NewContributionService(store)
	ctx := context.Background()

	for month := 1; month <= 3; month++ {
		if _, err := svc.Record(ctx, testContribution(member.ID, month, 2025)); err != nil {
			t.Fatalf("Record(%d) error = %v", month, err)
		}
	}

	entries, err := svc.ListByMemberCode(ctx, "M-001")
	if err != nil {
		t.Fatalf("ListByMemberCode() error = %v", err)
	}
	if len(entries) != 3 {
		t.Errorf("len(entries) = %d, want 3", len(entries))
	}

	if _, err := svc.ListByMemberCode(ctx, "missing"); !errors.Is(err, core.ErrMemberNotFound) {
		t.Errorf("ListByMemberCode(missing) error = %v, want ErrMemberNotFound", err)
	}
}

func TestUpdateContribution_PartialPatch(t *testing.T) {
	store, member := newTestStore(t)
	svc := NewContributionService(store)
	ctx := context.Background()

	recorded, err := svc.Record(ctx, testContribution(member.ID, 6, 2025))
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	newVoluntary := core.Money{Cents: 25_000_000}
	updated, err := svc.Update(ctx, recorded.ID, core.ContributionPatch{
		VoluntarySavings: &newVoluntary,
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if updated.VoluntarySavings.Cents != 25_000_000 {
		t.Errorf("VoluntarySavings = %d, want 25000000", updated.VoluntarySavings.Cents)
	}
	// Unpatched fields survive.
	if updated.MandatoryDues.Cents != 50_000_000 {
		t.Errorf("MandatoryDues = %d, want 50000000", updated.MandatoryDues.Cents)
	}
	if updated.Month != 6 || updated.Year != 2025 {
		t.Errorf("period = %d/%d, want 6/2025", updated.Month, updated.Year)
	}
}

func TestDeleteContribution(t *testing.T) {
	store, member := newTestStore(t)
	svc := NewContributionService(store)
	ctx := context.Background()

	recorded, err := svc.Record(ctx, testContribution(member.ID, 7, 2025))
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	if err := svc.Delete(ctx, recorded.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := svc.Get(ctx, recorded.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
	}
	if err := svc.Delete(ctx, recorded.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}

	// The period is free again after deletion.
	if _, err := svc.Record(ctx, testContribution(member.ID, 7, 2025)); err != nil {
		t.Errorf("Record() after delete error = %v", err)
	}
}

func TestSeedMember(t *testing.T) {
	store, _ := newTestStore(t)
	svc := NewContributionService(store)
	ctx := context.Background()

	m, err := svc.SeedMember(ctx, "M-100", "New Member")
	if err != nil {
		t.Fatalf("SeedMember() error = %v", err)
	}
	if m.ID == 0 {
		t.Error("SeedMember() did not assign an id")
	}

	resolved, err := svc.ResolveMemberCode(ctx, "M-100")
	if err != nil {
		t.Fatalf("ResolveMemberCode() error = %v", err)
	}
	if resolved.Name != "New Member" {
		t.Errorf("Name = %q, want New Member", resolved.Name)
	}

	if _, err := svc.SeedMember(ctx, "", "Anonymous"); err == nil {
		t.Error("SeedMember() with empty code succeeded, want error")
	}
}
