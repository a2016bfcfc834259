package repository

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bloodlink/pkg/apperror"
	"bloodlink/pkg/config"
	"bloodlink/pkg/domain"
	"bloodlink/pkg/metrics"
	"bloodlink/services/matching-svc/internal/events"
)

func TestTransitionFromEvent(t *testing.T) {
	donor := &domain.Donor{ID: "d1"}
	req := &domain.BloodRequest{
		ID:           "r1",
		Status:       domain.StatusMatched,
		Source:       domain.SourceDonorMatch,
		MatchedDonor: donor,
		Distance:     6,
	}

	tr := TransitionFromEvent(events.Event{
		Type:       events.RequestMatched,
		Request:    req,
		From:       domain.StatusPending,
		OccurredAt: epoch,
	})

	assert.Equal(t, Transition{
		RequestID:  "r1",
		Event:      "request.matched",
		From:       domain.StatusPending,
		To:         domain.StatusMatched,
		Source:     domain.SourceDonorMatch,
		DonorID:    "d1",
		Distance:   6,
		OccurredAt: epoch,
	}, tr)
}

func TestRecorder_Handle(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	m := metrics.NewMetrics(prometheus.NewRegistry(), "test", "recorder")
	rec := NewRecorder(repo, m)

	req := &domain.BloodRequest{ID: "r1", Status: domain.StatusPending}
	require.NoError(t, rec.Handle(ctx, events.Event{Type: events.RequestCreated, Request: req, OccurredAt: epoch}))

	confirmed := &domain.BloodRequest{ID: "r1", Status: domain.StatusFulfilled, Source: domain.SourceDonorMatch}
	d := donation("c1", epoch)
	require.NoError(t, rec.Handle(ctx, events.Event{
		Type:       events.MatchConfirmed,
		Request:    confirmed,
		From:       domain.StatusMatched,
		Donor:      &domain.Donor{ID: d.DonorID},
		Donation:   &d,
		OccurredAt: epoch,
	}))

	// событие без запроса игнорируется
	require.NoError(t, rec.Handle(ctx, events.Event{Type: events.RequestDeferred}))

	history, err := repo.ListTransitions(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "request.confirmed", history[1].Event)
	assert.Equal(t, d.DonorID, history[1].DonorID)

	donations, err := repo.ListDonations(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []domain.Donation{d}, donations)

	assert.Equal(t, 2, testutil.CollectAndCount(m.RepositoryDuration))
}

// flakyRepository отказывает первые failures записей
type flakyRepository struct {
	*MemoryRepository
	failures int
	err      error
	calls    int
}

func (f *flakyRepository) RecordTransition(ctx context.Context, t Transition) error {
	f.calls++
	if f.calls <= f.failures {
		return f.err
	}
	return f.MemoryRepository.RecordTransition(ctx, t)
}

func TestRecorder_RetriesTransientErrors(t *testing.T) {
	ctx := context.Background()
	repo := &flakyRepository{
		MemoryRepository: NewMemoryRepository(),
		failures:         2,
		err:              apperror.New(apperror.CodeDatabase, "connection reset"),
	}
	rec := NewRecorder(repo, nil).WithRetry(config.RetryConfig{MaxAttempts: 3, InitialBackoff: time.Millisecond, BackoffMultiplier: 2})

	req := &domain.BloodRequest{ID: "r1", Status: domain.StatusPending}
	require.NoError(t, rec.Handle(ctx, events.Event{Type: events.RequestCreated, Request: req, OccurredAt: epoch}))
	assert.Equal(t, 3, repo.calls)

	history, err := repo.ListTransitions(ctx, "r1")
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestRecorder_DoesNotRetryConflicts(t *testing.T) {
	repo := &flakyRepository{
		MemoryRepository: NewMemoryRepository(),
		failures:         5,
		err:              apperror.New(apperror.CodeConflict, "duplicate"),
	}
	rec := NewRecorder(repo, nil).WithRetry(config.RetryConfig{MaxAttempts: 3, InitialBackoff: time.Millisecond})

	err := rec.Handle(context.Background(), events.Event{Type: events.RequestCreated, Request: &domain.BloodRequest{ID: "r1"}})
	assert.True(t, apperror.Is(err, apperror.CodeConflict))
	assert.Equal(t, 1, repo.calls)
}
