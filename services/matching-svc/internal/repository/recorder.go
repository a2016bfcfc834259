package repository

import (
	"context"
	"time"

	"bloodlink/pkg/apperror"
	"bloodlink/pkg/config"
	"bloodlink/pkg/metrics"
	"bloodlink/services/matching-svc/internal/events"
)

// Recorder подписчик событий, который пишет журнал в Repository
type Recorder struct {
	repo    Repository
	metrics *metrics.Metrics
	retry   config.RetryConfig
}

// NewRecorder; m может быть nil. Без WithRetry запись делается один раз.
func NewRecorder(repo Repository, m *metrics.Metrics) *Recorder {
	return &Recorder{repo: repo, metrics: m, retry: config.RetryConfig{MaxAttempts: 1}}
}

// WithRetry повторяет запись при сбоях хранилища (CodeDatabase,
// CodeUnavailable). Конфликты и прочие ошибки не повторяются.
func (r *Recorder) WithRetry(cfg config.RetryConfig) *Recorder {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.BackoffMultiplier < 1 {
		cfg.BackoffMultiplier = 1
	}
	r.retry = cfg
	return r
}

// TransitionFromEvent строит запись журнала из события
func TransitionFromEvent(evt events.Event) Transition {
	t := Transition{
		Event:      string(evt.Type),
		From:       evt.From,
		OccurredAt: evt.OccurredAt,
	}
	if req := evt.Request; req != nil {
		t.RequestID = req.ID
		t.To = req.Status
		t.Source = req.Source
		t.Distance = req.Distance
		if req.MatchedDonor != nil {
			t.DonorID = req.MatchedDonor.ID
		}
	}
	if evt.Donor != nil {
		t.DonorID = evt.Donor.ID
	}
	return t
}

func (r *Recorder) Handle(ctx context.Context, evt events.Event) error {
	if evt.Request == nil {
		return nil
	}

	start := time.Now()
	t := TransitionFromEvent(evt)

	op := "record_transition"
	write := func() error { return r.repo.RecordTransition(ctx, t) }
	if evt.Type == events.MatchConfirmed && evt.Donation != nil {
		op = "record_confirmation"
		donation := *evt.Donation
		write = func() error { return r.repo.RecordConfirmation(ctx, t, donation) }
	}

	err := r.withRetry(ctx, write)

	if r.metrics != nil {
		r.metrics.RecordRepository(op, err, time.Since(start))
	}
	return err
}

func (r *Recorder) withRetry(ctx context.Context, write func() error) error {
	backoff := r.retry.InitialBackoff
	var err error
	for attempt := 1; ; attempt++ {
		err = write()
		if err == nil || attempt >= r.retry.MaxAttempts || !transient(err) {
			return err
		}

		select {
		case <-ctx.Done():
			return err
		case <-time.After(backoff):
		}

		backoff = time.Duration(float64(backoff) * r.retry.BackoffMultiplier)
		if r.retry.MaxBackoff > 0 && backoff > r.retry.MaxBackoff {
			backoff = r.retry.MaxBackoff
		}
	}
}

func transient(err error) bool {
	switch apperror.Code(err) {
	case apperror.CodeDatabase, apperror.CodeUnavailable:
		return true
	}
	return false
}
