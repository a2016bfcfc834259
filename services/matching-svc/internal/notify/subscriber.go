package notify

import (
	"context"

	"bloodlink/pkg/logger"
	"bloodlink/pkg/metrics"
	"bloodlink/services/matching-svc/internal/events"
)

// Subscriber turns engine events into donor alerts. Failures are reported to
// the dispatcher; they never reach the engine.
type Subscriber struct {
	notifier Notifier
	names    func(id string) string
	metrics  *metrics.Metrics
}

type SubscriberOption func(*Subscriber)

// WithLocationNames renders the request location by display name.
func WithLocationNames(names func(id string) string) SubscriberOption {
	return func(s *Subscriber) { s.names = names }
}

func WithMetrics(m *metrics.Metrics) SubscriberOption {
	return func(s *Subscriber) { s.metrics = m }
}

func NewSubscriber(n Notifier, opts ...SubscriberOption) *Subscriber {
	s := &Subscriber{
		notifier: n,
		names:    func(id string) string { return id },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Subscriber) Handle(ctx context.Context, evt events.Event) error {
	alert, ok := s.alertFor(evt)
	if !ok {
		return nil
	}

	err := s.notifier.Notify(ctx, alert)
	if s.metrics != nil {
		s.metrics.RecordNotification(s.notifier.Channel(), err)
	}
	if err != nil {
		logger.WithContext(ctx).Warn("Donor alert failed",
			"channel", s.notifier.Channel(),
			"request_id", alert.RequestID,
			"donor_id", alert.DonorID,
			"error", err,
		)
	}
	return err
}

func (s *Subscriber) alertFor(evt events.Event) (Alert, bool) {
	req := evt.Request
	if req == nil {
		return Alert{}, false
	}

	donor := evt.Donor
	if donor == nil {
		donor = req.MatchedDonor
	}
	if donor == nil {
		return Alert{}, false
	}

	a := Alert{
		RequestID:  req.ID,
		DonorID:    donor.ID,
		DonorName:  donor.Name,
		Phone:      donor.Phone,
		Email:      donor.Email,
		BloodType:  req.BloodType,
		Units:      req.Units,
		Hospital:   req.Hospital,
		LocationID: req.LocationID,
		At:         evt.OccurredAt,
	}

	switch evt.Type {
	case events.RequestMatched:
		a.Kind = KindMatch
		a.Distance = req.Distance
		a.Route = append([]string(nil), req.Route...)
		a.Message = matchMessage(a, s.names(req.LocationID))
		if len(a.Route) > 0 {
			a.Message += " Route: " + routeText(a.Route) + "."
		}
	case events.MatchConfirmed:
		a.Kind = KindThankYou
		if evt.Donation != nil {
			a.Units = evt.Donation.Units
		}
		a.Message = thankYouMessage(a)
	default:
		return Alert{}, false
	}
	return a, true
}

var _ events.Handler = (*Subscriber)(nil)

