package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"coopledger/internal/cache"
	"coopledger/internal/core"
	"coopledger/internal/storage"
)

const (
	memberCacheSize = 512
	memberCacheTTL  = 5 * time.Minute
)

// ContributionService records per-member monthly dues entries. Uniqueness per
// (member, month, year) is the only cross-entry invariant; amounts are
// independent per entry.
type ContributionService struct {
	store       storage.Store
	memberCache *cache.LRU[core.Member]
}

func NewContributionService(store storage.Store) *ContributionService {
	return &ContributionService{
		store:       store,
		memberCache: cache.NewLRU[core.Member](memberCacheSize, memberCacheTTL),
	}
}

// SeedMember stores a directory row pushed by the membership collaborator.
// Codes must be unique; re-seeding an existing code replaces the cached row.
func (s *ContributionService) SeedMember(ctx context.Context, code, name string) (core.Member, error) {
	if code == "" {
		return core.Member{}, fmt.Errorf("member code is required")
	}
	m := core.Member{Code: code, Name: name}
	if err := s.store.SeedMember(ctx, &m); err != nil {
		return core.Member{}, err
	}
	s.memberCache.Delete(code)

	slog.InfoContext(ctx, "Member seeded", "member_id", m.ID, "code", code)
	return m, nil
}

// ResolveMemberCode maps an external member code to the internal member row.
// Lookups are cached; the directory is seeded by the membership collaborator
// and changes rarely.
func (s *ContributionService) ResolveMemberCode(ctx context.Context, code string) (core.Member, error) {
	if m, ok := s.memberCache.Get(code); ok {
		return m, nil
	}
	m, err := s.store.GetMemberByCode(ctx, code)
	if err != nil {
		return core.Member{}, err
	}
	s.memberCache.Set(code, m)
	return m, nil
}

// Record creates a dues entry for a member and period. The storage layer's
// unique constraint is authoritative; a violation surfaces as
// ErrDuplicatePeriodEntry.
func (s *ContributionService) Record(ctx context.Context, c core.Contribution) (core.Contribution, error) {
	if _, err := s.store.GetMemberByID(ctx, c.MemberID); err != nil {
		return core.Contribution{}, err
	}
	if c.Status == "" {
		c.Status = core.ContributionPaid
	}
	if err := c.Validate(); err != nil {
		return core.Contribution{}, err
	}
	if err := s.store.CreateContribution(ctx, &c); err != nil {
		return core.Contribution{}, err
	}

	slog.InfoContext(ctx, "Contribution recorded",
		"id", c.ID,
		"member_id", c.MemberID,
		"period", fmt.Sprintf("%04d-%02d", c.Year, c.Month))
	return c, nil
}

func (s *ContributionService) Get(ctx context.Context, id int64) (core.Contribution, error) {
	return s.store.GetContribution(ctx, id)
}

func (s *ContributionService) ListByMember(ctx context.Context, memberID int64) ([]core.Contribution, error) {
	if _, err := s.store.GetMemberByID(ctx, memberID); err != nil {
		return nil, err
	}
	return s.store.ListContributionsByMember(ctx, memberID)
}

// ListByMemberCode resolves an external member code first; member-facing
// views hand the ledger a code, not an internal id.
func (s *ContributionService) ListByMemberCode(ctx context.Context, code string) ([]core.Contribution, error) {
	m, err := s.ResolveMemberCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return s.store.ListContributionsByMember(ctx, m.ID)
}

// Update merges a partial patch; the (member, month, year) key is immutable.
func (s *ContributionService) Update(ctx context.Context, id int64, patch core.ContributionPatch) (core.Contribution, error) {
	existing, err := s.store.GetContribution(ctx, id)
	if err != nil {
		return core.Contribution{}, err
	}

	merged := core.MergeContribution(existing, patch)
	if err := merged.Validate(); err != nil {
		return core.Contribution{}, err
	}
	if err := s.store.UpdateContribution(ctx, merged); err != nil {
		return core.Contribution{}, err
	}

	slog.InfoContext(ctx, "Contribution updated", "id", id, "member_id", merged.MemberID)
	return merged, nil
}

func (s *ContributionService) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteContribution(ctx, id); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Contribution deleted", "id", id)
	return nil
}
