package repository

import (
	"context"
	"sort"
	"sync"

	"bloodlink/pkg/apperror"
	"bloodlink/pkg/domain"
)

// MemoryRepository in-memory реализация для разработки и тестов
type MemoryRepository struct {
	mu          sync.RWMutex
	nextID      int64
	transitions map[string][]Transition
	donations   []domain.Donation
	donationIDs map[string]struct{}
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		transitions: make(map[string][]Transition),
		donationIDs: make(map[string]struct{}),
	}
}

func (r *MemoryRepository) RecordTransition(_ context.Context, t Transition) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	t.ID = r.nextID
	r.transitions[t.RequestID] = append(r.transitions[t.RequestID], t)
	return nil
}

func (r *MemoryRepository) RecordDonation(_ context.Context, d domain.Donation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, dup := r.donationIDs[d.ID]; dup {
		return apperror.Newf(apperror.CodeConflict, "donation %s already recorded", d.ID)
	}
	r.donationIDs[d.ID] = struct{}{}
	r.donations = append(r.donations, d)
	return nil
}

func (r *MemoryRepository) RecordConfirmation(ctx context.Context, t Transition, d domain.Donation) error {
	if err := r.RecordDonation(ctx, d); err != nil {
		return err
	}
	return r.RecordTransition(ctx, t)
}

func (r *MemoryRepository) ListTransitions(_ context.Context, requestID string) ([]Transition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]Transition{}, r.transitions[requestID]...), nil
}

func (r *MemoryRepository) ListDonations(_ context.Context, limit int) ([]domain.Donation, error) {
	r.mu.RLock()
	out := make([]domain.Donation, 0, len(r.donations))
	for i := len(r.donations) - 1; i >= 0; i-- {
		out = append(out, r.donations[i])
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DonatedAt.After(out[j].DonatedAt)
	})

	if limit = normalizeLimit(limit); len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryRepository) Close() error {
	return nil
}
