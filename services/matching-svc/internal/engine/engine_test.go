package engine

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bloodlink/pkg/apperror"
	"bloodlink/pkg/domain"
	"bloodlink/services/matching-svc/internal/events"
	"bloodlink/services/matching-svc/internal/graph"
	"bloodlink/services/matching-svc/internal/routing"
	"bloodlink/services/matching-svc/internal/seed"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(evt events.Event) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return true
}

func (p *recordingPublisher) types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Type, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

func (p *recordingPublisher) last() events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.events[len(p.events)-1]
}

var testEpoch = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func testOptions(pub Publisher) Options {
	var seq atomic.Int64
	var tick atomic.Int64
	return Options{
		Clock: func() time.Time {
			return testEpoch.Add(time.Duration(tick.Add(1)) * time.Second)
		},
		NewID: func() string {
			return fmt.Sprintf("id-%d", seq.Add(1))
		},
		Publisher: pub,
	}
}

// hubEngine: hospital "h" with donor areas at 4 km ("near") and 7 km ("far").
func hubEngine(t *testing.T, donors []domain.Donor, inventory []domain.InventoryEntry, mutate ...func(*Options)) (*Engine, *recordingPublisher) {
	t.Helper()

	g, err := graph.New(
		[]domain.Location{{ID: "h", Name: "Hospital"}, {ID: "near", Name: "Near"}, {ID: "far", Name: "Far"}},
		[]domain.RoadEdge{{From: "h", To: "near", Distance: 4}, {From: "h", To: "far", Distance: 7}},
	)
	require.NoError(t, err)

	store, err := NewStore(donors, inventory)
	require.NoError(t, err)

	pub := &recordingPublisher{}
	opts := testOptions(pub)
	for _, m := range mutate {
		m(&opts)
	}
	e, err := New(routing.NewRouter(g), store, opts)
	require.NoError(t, err)
	return e, pub
}

func create(t *testing.T, e *Engine, bt domain.BloodType, units int, priority domain.Priority) *domain.BloodRequest {
	t.Helper()
	req, err := e.CreateRequest(NewRequest{
		BloodType:  bt,
		Units:      units,
		LocationID: "h",
		Priority:   priority,
	})
	require.NoError(t, err)
	return req
}

func entryFor(e *Engine, bt domain.BloodType) domain.InventoryEntry {
	for _, entry := range e.Inventory() {
		if entry.BloodType == bt {
			return entry
		}
	}
	return domain.InventoryEntry{}
}

func donorFor(t *testing.T, e *Engine, id string) domain.Donor {
	t.Helper()
	d, err := e.Donor(id)
	require.NoError(t, err)
	return d
}

// =============================================================================
// Scenarios
// =============================================================================

func TestProcessRequest_MatchesNearestDonor(t *testing.T) {
	e, pub := hubEngine(t, []domain.Donor{
		{ID: "d-far", Name: "Far Donor", BloodType: domain.APositive, LocationID: "far", Available: true},
		{ID: "d-near", Name: "Near Donor", BloodType: domain.APositive, LocationID: "near", Available: true},
	}, nil)
	req := create(t, e, domain.APositive, 1, domain.PriorityUrgent)
	versionBefore := e.Version()

	got, err := e.ProcessRequest(req.ID)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusMatched, got.Status)
	assert.Equal(t, domain.SourceDonorMatch, got.Source)
	require.NotNil(t, got.MatchedDonor)
	assert.Equal(t, "d-near", got.MatchedDonor.ID)
	assert.Equal(t, 4, got.Distance)
	assert.Equal(t, []string{"Hospital", "Near"}, got.Route)

	assert.False(t, donorFor(t, e, "d-near").Available)
	assert.True(t, donorFor(t, e, "d-far").Available)
	assert.Greater(t, e.Version(), versionBefore)

	assert.Equal(t, []events.Type{events.RequestCreated, events.RequestMatched}, pub.types())
	matched := pub.last()
	assert.Equal(t, domain.StatusPending, matched.From)
	require.NotNil(t, matched.Donor)
	assert.Equal(t, "d-near", matched.Donor.ID)
}

func TestProcessRequest_ReservedStockDefers(t *testing.T) {
	e, pub := hubEngine(t, nil, []domain.InventoryEntry{
		{BloodType: domain.ONegative, Total: 5, Reserved: 3},
	})
	req := create(t, e, domain.ONegative, 3, domain.PriorityUrgent)

	got, err := e.ProcessRequest(req.ID)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPending, got.Status)
	assert.Equal(t, domain.SourceNone, got.Source)
	assert.Equal(t, domain.InventoryEntry{BloodType: domain.ONegative, Total: 5, Reserved: 3}, entryFor(e, domain.ONegative))
	assert.Equal(t, events.RequestDeferred, pub.last().Type)
}

func TestProcessRequest_FallsBackToBank(t *testing.T) {
	e, pub := hubEngine(t, []domain.Donor{
		{ID: "busy", BloodType: domain.BPositive, LocationID: "near", Available: false},
		{ID: "other-type", BloodType: domain.OPositive, LocationID: "near", Available: true},
	}, []domain.InventoryEntry{
		{BloodType: domain.BPositive, Total: 10},
	})
	req := create(t, e, domain.BPositive, 2, domain.PriorityScheduled)

	got, err := e.ProcessRequest(req.ID)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusFulfilled, got.Status)
	assert.Equal(t, domain.SourceBankInventory, got.Source)
	assert.Nil(t, got.MatchedDonor)
	assert.Equal(t, 8, entryFor(e, domain.BPositive).Total)
	assert.True(t, donorFor(t, e, "other-type").Available)
	assert.Equal(t, events.RequestFulfilled, pub.last().Type)
}

func TestProcessRequest_DonorPreferredOverBank(t *testing.T) {
	e, _ := hubEngine(t, []domain.Donor{
		{ID: "d", BloodType: domain.ABPositive, LocationID: "far", Available: true},
	}, []domain.InventoryEntry{
		{BloodType: domain.ABPositive, Total: 50},
	})
	req := create(t, e, domain.ABPositive, 1, domain.PriorityScheduled)

	got, err := e.ProcessRequest(req.ID)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusMatched, got.Status)
	assert.Equal(t, 50, entryFor(e, domain.ABPositive).Total)
}

func TestProcessRequest_DonorAtRequestLocationIsSkipped(t *testing.T) {
	e, _ := hubEngine(t, []domain.Donor{
		{ID: "same", BloodType: domain.APositive, LocationID: "h", Available: true},
	}, []domain.InventoryEntry{{BloodType: domain.APositive, Total: 1}})
	req := create(t, e, domain.APositive, 1, domain.PriorityUrgent)

	got, err := e.ProcessRequest(req.ID)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusFulfilled, got.Status)
	assert.True(t, donorFor(t, e, "same").Available)
}

func TestProcessRequest_EmergencyReserveOverride(t *testing.T) {
	inventory := []domain.InventoryEntry{{BloodType: domain.ONegative, Total: 5, Reserved: 3}}

	t.Run("disabled by default", func(t *testing.T) {
		e, _ := hubEngine(t, nil, inventory)
		req := create(t, e, domain.ONegative, 4, domain.PriorityEmergency)

		got, err := e.ProcessRequest(req.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusPending, got.Status)
	})

	t.Run("enabled for emergencies", func(t *testing.T) {
		e, _ := hubEngine(t, nil, inventory, func(o *Options) { o.EmergencyDrawsReserve = true })

		urgent := create(t, e, domain.ONegative, 4, domain.PriorityUrgent)
		got, err := e.ProcessRequest(urgent.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusPending, got.Status, "only Emergency may draw the reserve")

		emergency := create(t, e, domain.ONegative, 4, domain.PriorityEmergency)
		got, err = e.ProcessRequest(emergency.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusFulfilled, got.Status)

		entry := entryFor(e, domain.ONegative)
		assert.Equal(t, 1, entry.Total)
		assert.Equal(t, 1, entry.Reserved)
	})
}

// =============================================================================
// Idempotence and lifecycle
// =============================================================================

func TestProcessRequest_IdempotentOnceDecided(t *testing.T) {
	e, pub := hubEngine(t, []domain.Donor{
		{ID: "d1", BloodType: domain.APositive, LocationID: "near", Available: true},
		{ID: "d2", BloodType: domain.APositive, LocationID: "far", Available: true},
	}, []domain.InventoryEntry{{BloodType: domain.BPositive, Total: 10}})

	matched := create(t, e, domain.APositive, 1, domain.PriorityUrgent)
	first, err := e.ProcessRequest(matched.ID)
	require.NoError(t, err)
	eventsAfterFirst := len(pub.types())

	second, err := e.ProcessRequest(matched.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.True(t, donorFor(t, e, "d2").Available, "second call must not match another donor")
	assert.Len(t, pub.types(), eventsAfterFirst)

	banked := create(t, e, domain.BPositive, 3, domain.PriorityUrgent)
	_, err = e.ProcessRequest(banked.ID)
	require.NoError(t, err)
	_, err = e.ProcessRequest(banked.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, entryFor(e, domain.BPositive).Total)
}

func TestProcessRequest_PendingCanBeRetried(t *testing.T) {
	e, _ := hubEngine(t, nil, nil)
	req := create(t, e, domain.ANegative, 2, domain.PriorityUrgent)

	got, err := e.ProcessRequest(req.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusPending, got.Status)

	_, err = e.AddUnits(domain.ANegative, 2)
	require.NoError(t, err)

	got, err = e.ProcessRequest(req.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFulfilled, got.Status)
	assert.Equal(t, 0, entryFor(e, domain.ANegative).Total)
}

func TestProcessRequest_Errors(t *testing.T) {
	e, _ := hubEngine(t, nil, nil)

	_, err := e.ProcessRequest("missing")
	assert.True(t, apperror.Is(err, apperror.CodeNotFound))

	req := create(t, e, domain.APositive, 1, domain.PriorityUrgent)
	_, err = e.CancelRequest(req.ID)
	require.NoError(t, err)

	_, err = e.ProcessRequest(req.ID)
	assert.True(t, apperror.Is(err, apperror.CodeInvalidState))
}

func TestConfirmMatch(t *testing.T) {
	e, pub := hubEngine(t, []domain.Donor{
		{ID: "d1", Name: "Sara", BloodType: domain.APositive, LocationID: "near", Available: true},
		{ID: "d2", BloodType: domain.APositive, LocationID: "far", Available: true},
	}, []domain.InventoryEntry{{BloodType: domain.APositive, Total: 9, Reserved: 2}})
	req := create(t, e, domain.APositive, 2, domain.PriorityUrgent)
	matched, err := e.ProcessRequest(req.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusMatched, matched.Status)

	// An equally near donor appears; confirmation must not re-rank.
	_, err = e.RegisterDonor(NewDonor{Name: "Late", BloodType: domain.APositive, LocationID: "near", Available: true})
	require.NoError(t, err)
	inventoryBefore := e.Inventory()

	got, err := e.ConfirmMatch(req.ID)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusFulfilled, got.Status)
	assert.Equal(t, domain.SourceDonorMatch, got.Source)
	assert.Equal(t, "d1", got.MatchedDonor.ID)
	assert.Equal(t, matched.Route, got.Route)
	assert.Equal(t, matched.Distance, got.Distance)
	assert.Equal(t, inventoryBefore, e.Inventory())
	assert.False(t, donorFor(t, e, "d1").Available)

	evt := pub.last()
	assert.Equal(t, events.MatchConfirmed, evt.Type)
	assert.Equal(t, domain.StatusMatched, evt.From)
	require.NotNil(t, evt.Donation)
	assert.Equal(t, "d1", evt.Donation.DonorID)
	assert.Equal(t, "Sara", evt.Donation.DonorName)
	assert.Equal(t, 2, evt.Donation.Units)
	assert.Equal(t, req.ID, evt.Donation.RequestID)

	_, err = e.ConfirmMatch(req.ID)
	assert.True(t, apperror.Is(err, apperror.CodeInvalidState))
}

func TestConfirmMatch_RequiresMatched(t *testing.T) {
	e, _ := hubEngine(t, nil, nil)
	req := create(t, e, domain.APositive, 1, domain.PriorityUrgent)

	_, err := e.ConfirmMatch(req.ID)
	assert.True(t, apperror.Is(err, apperror.CodeInvalidState))

	_, err = e.ConfirmMatch("nope")
	assert.True(t, apperror.Is(err, apperror.CodeNotFound))
}

func TestCancelRequest(t *testing.T) {
	e, pub := hubEngine(t, []domain.Donor{
		{ID: "d1", BloodType: domain.OPositive, LocationID: "near", Available: true},
	}, []domain.InventoryEntry{{BloodType: domain.BNegative, Total: 4}})

	matched := create(t, e, domain.OPositive, 1, domain.PriorityUrgent)
	_, err := e.ProcessRequest(matched.ID)
	require.NoError(t, err)
	require.False(t, donorFor(t, e, "d1").Available)

	cancelled, err := e.CancelRequest(matched.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, cancelled.Status)
	assert.True(t, donorFor(t, e, "d1").Available, "matched donor is released")
	assert.Equal(t, events.RequestCancelled, pub.last().Type)
	assert.Equal(t, domain.StatusMatched, pub.last().From)

	again, err := e.CancelRequest(matched.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, again.Status)

	banked := create(t, e, domain.BNegative, 1, domain.PriorityUrgent)
	_, err = e.ProcessRequest(banked.ID)
	require.NoError(t, err)
	_, err = e.CancelRequest(banked.ID)
	assert.True(t, apperror.Is(err, apperror.CodeInvalidState))

	_, err = e.CancelRequest("missing")
	assert.True(t, apperror.Is(err, apperror.CodeNotFound))
}

func TestConfirmMatch_DonationCarriesRequestContext(t *testing.T) {
	e, pub := hubEngine(t, []domain.Donor{
		{ID: "d1", Name: "Sara", BloodType: domain.BNegative, LocationID: "near", Available: true},
	}, nil)
	req, err := e.CreateRequest(NewRequest{
		BloodType:   domain.BNegative,
		Units:       1,
		LocationID:  "h",
		Priority:    domain.PriorityEmergency,
		PatientName: "Bilal",
		Hospital:    "Mayo Hospital",
	})
	require.NoError(t, err)
	_, err = e.ProcessRequest(req.ID)
	require.NoError(t, err)

	_, err = e.ConfirmMatch(req.ID)
	require.NoError(t, err)

	donation := pub.last().Donation
	require.NotNil(t, donation)
	assert.Equal(t, "Bilal", donation.PatientName)
	assert.Equal(t, "Mayo Hospital", donation.Hospital)
}

func TestCancelRequest_KeepsDonorHeldByAnotherMatch(t *testing.T) {
	e, _ := hubEngine(t, []domain.Donor{
		{ID: "d1", BloodType: domain.OPositive, LocationID: "near", Available: true},
	}, nil)

	first := create(t, e, domain.OPositive, 1, domain.PriorityUrgent)
	_, err := e.ProcessRequest(first.ID)
	require.NoError(t, err)

	// re-enabled by an admin and matched again before the first is cancelled
	_, err = e.SetDonorAvailability("d1", true)
	require.NoError(t, err)
	second := create(t, e, domain.OPositive, 1, domain.PriorityUrgent)
	got, err := e.ProcessRequest(second.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusMatched, got.Status)

	_, err = e.CancelRequest(first.ID)
	require.NoError(t, err)
	assert.False(t, donorFor(t, e, "d1").Available, "donor is still committed to the second request")

	_, err = e.CancelRequest(second.ID)
	require.NoError(t, err)
	assert.True(t, donorFor(t, e, "d1").Available)
}

func TestCompleteRequest(t *testing.T) {
	e, pub := hubEngine(t, []domain.Donor{
		{ID: "d1", BloodType: domain.APositive, LocationID: "near", Available: true},
	}, []domain.InventoryEntry{{BloodType: domain.ONegative, Total: 3}})

	pending := create(t, e, domain.ONegative, 5, domain.PriorityUrgent)
	got, err := e.CompleteRequest(pending.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFulfilled, got.Status)
	assert.Equal(t, domain.SourceNone, got.Source)
	assert.Equal(t, 3, entryFor(e, domain.ONegative).Total, "completion does not draw stock")

	evt := pub.last()
	assert.Equal(t, events.RequestCompleted, evt.Type)
	assert.Equal(t, domain.StatusPending, evt.From)
	assert.Nil(t, evt.Donation)

	matched := create(t, e, domain.APositive, 1, domain.PriorityUrgent)
	_, err = e.ProcessRequest(matched.ID)
	require.NoError(t, err)
	got, err = e.CompleteRequest(matched.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFulfilled, got.Status)
	assert.Equal(t, domain.SourceDonorMatch, got.Source)
	assert.False(t, donorFor(t, e, "d1").Available)
	assert.Equal(t, domain.StatusMatched, pub.last().From)

	published := len(pub.types())
	again, err := e.CompleteRequest(matched.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFulfilled, again.Status)
	assert.Len(t, pub.types(), published, "completing twice publishes nothing")

	cancelled := create(t, e, domain.APositive, 1, domain.PriorityUrgent)
	_, err = e.CancelRequest(cancelled.ID)
	require.NoError(t, err)
	_, err = e.CompleteRequest(cancelled.ID)
	assert.True(t, apperror.Is(err, apperror.CodeInvalidState))

	_, err = e.CompleteRequest("missing")
	assert.True(t, apperror.Is(err, apperror.CodeNotFound))
}

func TestCreateRequest_Validation(t *testing.T) {
	e, _ := hubEngine(t, nil, nil)

	tests := []struct {
		name string
		in   NewRequest
		code apperror.ErrorCode
	}{
		{"no blood type", NewRequest{Units: 1, LocationID: "h", Priority: domain.PriorityUrgent}, apperror.CodeUnknownBloodType},
		{"zero units", NewRequest{BloodType: domain.APositive, LocationID: "h", Priority: domain.PriorityUrgent}, apperror.CodeInvalidQuantity},
		{"negative units", NewRequest{BloodType: domain.APositive, Units: -1, LocationID: "h", Priority: domain.PriorityUrgent}, apperror.CodeInvalidQuantity},
		{"unknown location", NewRequest{BloodType: domain.APositive, Units: 1, LocationID: "mars", Priority: domain.PriorityUrgent}, apperror.CodeUnknownLocation},
		{"no priority", NewRequest{BloodType: domain.APositive, Units: 1, LocationID: "h"}, apperror.CodeInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.CreateRequest(tt.in)
			require.Error(t, err)
			assert.Equal(t, tt.code, apperror.Code(err))
		})
	}
	assert.Empty(t, e.ListRequests(domain.StatusUnspecified))
}

func TestCreateRequest_Defaults(t *testing.T) {
	e, _ := hubEngine(t, nil, nil)

	req, err := e.CreateRequest(NewRequest{
		BloodType:   domain.ABNegative,
		Units:       2,
		LocationID:  "h",
		Priority:    domain.PriorityScheduled,
		PatientName: "  Patient  ",
		Requester:   domain.Requester{Name: "R", Relation: "Sibling"},
	})
	require.NoError(t, err)

	assert.Equal(t, "id-1", req.ID)
	assert.Equal(t, "Patient", req.PatientName)
	assert.Equal(t, domain.StatusPending, req.Status)
	assert.Equal(t, testEpoch.Add(time.Second), req.CreatedAt)

	stored, err := e.GetRequest(req.ID)
	require.NoError(t, err)
	assert.Equal(t, req, stored)

	_, err = e.GetRequest("nope")
	assert.True(t, apperror.Is(err, apperror.CodeNotFound))
}

func TestListRequests_FilterAndOrder(t *testing.T) {
	e, _ := hubEngine(t, nil, []domain.InventoryEntry{{BloodType: domain.APositive, Total: 10}})
	r1 := create(t, e, domain.APositive, 1, domain.PriorityUrgent)
	r2 := create(t, e, domain.BPositive, 1, domain.PriorityUrgent)
	_, err := e.ProcessRequest(r1.ID)
	require.NoError(t, err)

	all := e.ListRequests(domain.StatusUnspecified)
	require.Len(t, all, 2)
	assert.Equal(t, r1.ID, all[0].ID)
	assert.Equal(t, r2.ID, all[1].ID)

	pending := e.ListRequests(domain.StatusPending)
	require.Len(t, pending, 1)
	assert.Equal(t, r2.ID, pending[0].ID)
}

func TestReturnedRequestsAreCopies(t *testing.T) {
	e, _ := hubEngine(t, []domain.Donor{
		{ID: "d1", BloodType: domain.APositive, LocationID: "near", Available: true},
	}, nil)
	req := create(t, e, domain.APositive, 1, domain.PriorityUrgent)
	got, err := e.ProcessRequest(req.ID)
	require.NoError(t, err)

	got.Status = domain.StatusCancelled
	got.Route[0] = "tampered"
	got.MatchedDonor.Available = true

	stored, err := e.GetRequest(req.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusMatched, stored.Status)
	assert.Equal(t, "Hospital", stored.Route[0])
	assert.False(t, donorFor(t, e, "d1").Available)
}

// =============================================================================
// Previews
// =============================================================================

func TestRankDonorsPreview(t *testing.T) {
	e, _ := hubEngine(t, []domain.Donor{
		{ID: "far", BloodType: domain.ONegative, LocationID: "far", Available: true},
		{ID: "near", BloodType: domain.ONegative, LocationID: "near", Available: true},
		{ID: "compatible", BloodType: domain.ONegative, LocationID: "near", Available: false},
	}, nil)

	got, err := e.RankDonors(domain.ONegative, "h")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "near", got[0].Donor.ID)
	assert.Equal(t, []string{"h", "near"}, got[0].Path)

	// Preview does not mutate.
	assert.True(t, donorFor(t, e, "near").Available)

	_, err = e.RankDonors(domain.BloodTypeUnspecified, "h")
	assert.True(t, apperror.Is(err, apperror.CodeUnknownBloodType))
	_, err = e.RankDonors(domain.ONegative, "nowhere")
	assert.True(t, apperror.Is(err, apperror.CodeUnknownLocation))
}

func TestCompatibleDonorsPreview(t *testing.T) {
	e, _ := hubEngine(t, []domain.Donor{
		{ID: "oneg", BloodType: domain.ONegative, LocationID: "far", Available: true},
		{ID: "aneg", BloodType: domain.ANegative, LocationID: "near", Available: true},
		{ID: "bpos", BloodType: domain.BPositive, LocationID: "near", Available: true},
	}, nil)

	got, err := e.CompatibleDonors(domain.APositive, "h")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "aneg", got[0].Donor.ID)
	assert.Equal(t, "oneg", got[1].Donor.ID)
}

func TestRoute(t *testing.T) {
	e, _ := hubEngine(t, nil, nil)

	route, err := e.Route("near", "far")
	require.NoError(t, err)
	assert.Equal(t, 11, route.Distance)
	assert.Equal(t, []string{"near", "h", "far"}, route.Path)

	route, err = e.Route("near", "near")
	require.NoError(t, err)
	assert.False(t, route.Found())

	_, err = e.Route("x", "near")
	assert.True(t, apperror.Is(err, apperror.CodeUnknownLocation))
	_, err = e.Route("near", "x")
	assert.True(t, apperror.Is(err, apperror.CodeUnknownLocation))
}

// =============================================================================
// Construction
// =============================================================================

func TestNew_RejectsDonorAtUnknownLocation(t *testing.T) {
	store, err := NewStore([]domain.Donor{{ID: "d", BloodType: domain.APositive, LocationID: "atlantis"}}, nil)
	require.NoError(t, err)

	_, err = New(routing.NewRouter(graph.MustNew(seed.Locations(), seed.Roads())), store, Options{})
	assert.True(t, apperror.Is(err, apperror.CodeUnknownLocation))

	_, err = New(nil, store, Options{})
	assert.True(t, apperror.Is(err, apperror.CodeNilInput))
}

func TestNewStore_Validation(t *testing.T) {
	_, err := NewStore([]domain.Donor{
		{ID: "d", BloodType: domain.APositive, LocationID: "h"},
		{ID: "d", BloodType: domain.APositive, LocationID: "h"},
	}, nil)
	assert.True(t, apperror.Is(err, apperror.CodeConflict))

	_, err = NewStore([]domain.Donor{{ID: "d"}}, nil)
	assert.True(t, apperror.Is(err, apperror.CodeUnknownBloodType))

	_, err = NewStore(nil, []domain.InventoryEntry{{BloodType: domain.APositive, Total: -1}})
	assert.True(t, apperror.Is(err, apperror.CodeInvalidQuantity))

	s, err := NewStore(nil, []domain.InventoryEntry{{BloodType: domain.APositive, Total: 2, Reserved: 9}})
	require.NoError(t, err)
	assert.Equal(t, 2, s.entry(domain.APositive).Reserved, "reserve is clamped on load")
	assert.Len(t, s.inventorySnapshot(), 8)
}

func TestSeedScenario(t *testing.T) {
	store, err := NewStore(seed.Donors(), seed.Inventory())
	require.NoError(t, err)
	e, err := New(routing.NewRouter(graph.MustNew(seed.Locations(), seed.Roads())), store, testOptions(nil))
	require.NoError(t, err)

	// Two O- donors: Sara (dha) and Ali (allama_iqbal_town). From township Ali is 4 km away.
	req, err := e.CreateRequest(NewRequest{
		BloodType:  domain.ONegative,
		Units:      1,
		LocationID: "township",
		Priority:   domain.PriorityEmergency,
	})
	require.NoError(t, err)

	got, err := e.ProcessRequest(req.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ali Hussain", got.MatchedDonor.Name)
	assert.Equal(t, 4, got.Distance)
	assert.Equal(t, []string{"Township", "Allama Iqbal Town"}, got.Route)
}
