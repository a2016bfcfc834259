package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bloodlink/pkg/domain"
	"bloodlink/pkg/metrics"
	"bloodlink/services/matching-svc/internal/events"
)

var at = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

type recordingNotifier struct {
	alerts []Alert
	err    error
}

func (r *recordingNotifier) Channel() string { return "test" }

func (r *recordingNotifier) Notify(_ context.Context, a Alert) error {
	r.alerts = append(r.alerts, a)
	return r.err
}

type fakePublisher struct {
	channel string
	payload []byte
	err     error
}

func (f *fakePublisher) Publish(_ context.Context, channel string, message any) *redis.IntCmd {
	f.channel = channel
	f.payload, _ = message.([]byte)
	return redis.NewIntResult(1, f.err)
}

func matchedEvent() events.Event {
	donor := &domain.Donor{ID: "1", Name: "Ali Hussain", BloodType: domain.ONegative, LocationID: "model_town", Phone: "0300-1234567"}
	return events.Event{
		Type: events.RequestMatched,
		Request: &domain.BloodRequest{
			ID:           "r1",
			Hospital:     "Services Hospital",
			BloodType:    domain.ONegative,
			Units:        2,
			LocationID:   "township",
			Status:       domain.StatusMatched,
			MatchedDonor: donor,
			Route:        []string{"Model Town", "Township"},
			Distance:     4,
		},
		From:       domain.StatusPending,
		Donor:      donor,
		OccurredAt: at,
	}
}

func TestSubscriber_MatchAlert(t *testing.T) {
	n := &recordingNotifier{}
	s := NewSubscriber(n, WithLocationNames(func(id string) string {
		if id == "township" {
			return "Township"
		}
		return id
	}))

	require.NoError(t, s.Handle(context.Background(), matchedEvent()))

	require.Len(t, n.alerts, 1)
	a := n.alerts[0]
	assert.Equal(t, KindMatch, a.Kind)
	assert.Equal(t, "1", a.DonorID)
	assert.Equal(t, "0300-1234567", a.Phone)
	assert.Equal(t, 4, a.Distance)
	assert.Equal(t, []string{"Model Town", "Township"}, a.Route)
	assert.Equal(t,
		"Ali Hussain, a patient at Services Hospital, Township needs 2 unit(s) of O- blood. You are 4 km away. Route: Model Town -> Township.",
		a.Message)
}

func TestSubscriber_ThankYouAlert(t *testing.T) {
	n := &recordingNotifier{}
	s := NewSubscriber(n)

	evt := matchedEvent()
	evt.Type = events.MatchConfirmed
	evt.Request.Status = domain.StatusFulfilled
	evt.Donation = &domain.Donation{ID: "don1", DonorID: "1", RequestID: "r1", BloodType: domain.ONegative, Units: 2, DonatedAt: at}

	require.NoError(t, s.Handle(context.Background(), evt))

	require.Len(t, n.alerts, 1)
	assert.Equal(t, KindThankYou, n.alerts[0].Kind)
	assert.Empty(t, n.alerts[0].Route)
	assert.Equal(t, "Thank you Ali Hussain! Your O- donation for request r1 has been recorded.", n.alerts[0].Message)
}

func TestSubscriber_IgnoresOtherEvents(t *testing.T) {
	n := &recordingNotifier{}
	s := NewSubscriber(n)

	for _, typ := range []events.Type{events.RequestCreated, events.RequestFulfilled, events.RequestDeferred, events.RequestCancelled, events.RequestCompleted} {
		evt := matchedEvent()
		evt.Type = typ
		require.NoError(t, s.Handle(context.Background(), evt))
	}
	require.NoError(t, s.Handle(context.Background(), events.Event{Type: events.RequestMatched}))

	assert.Empty(t, n.alerts)
}

func TestSubscriber_FailureIsReturnedAndCounted(t *testing.T) {
	m := metrics.NewMetrics(prometheus.NewRegistry(), "test", "notify")
	n := &recordingNotifier{err: errors.New("gateway down")}
	s := NewSubscriber(n, WithMetrics(m))

	err := s.Handle(context.Background(), matchedEvent())

	assert.ErrorContains(t, err, "gateway down")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NotificationsTotal.WithLabelValues("test", "failed")))
}

func TestRedisNotifier_PublishesJSON(t *testing.T) {
	pub := &fakePublisher{}
	n := NewRedisNotifier(pub, "bloodlink:alerts")

	a := Alert{Kind: KindMatch, RequestID: "r1", DonorID: "1", BloodType: domain.ABNegative, Units: 1, Message: "hi", At: at}
	require.NoError(t, n.Notify(context.Background(), a))

	assert.Equal(t, "bloodlink:alerts", pub.channel)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(pub.payload, &decoded))
	assert.Equal(t, "match", decoded["kind"])
	assert.Equal(t, "AB-", decoded["blood_type"])
	assert.Equal(t, "r1", decoded["request_id"])
	assert.NotContains(t, decoded, "route")
}

func TestRedisNotifier_PublishError(t *testing.T) {
	n := NewRedisNotifier(&fakePublisher{err: errors.New("READONLY")}, "alerts")

	err := n.Notify(context.Background(), Alert{Kind: KindMatch})
	assert.ErrorContains(t, err, "publish alert to alerts")
}

func TestLogNotifier(t *testing.T) {
	var n Notifier = LogNotifier{}
	assert.Equal(t, "log", n.Channel())
	assert.NoError(t, n.Notify(context.Background(), Alert{Kind: KindThankYou}))
}
