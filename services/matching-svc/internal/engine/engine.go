// Package engine implements request fulfillment: it decides between matching
// a donor, drawing from the bank and deferring, and applies the resulting
// state changes atomically.
package engine

import (
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"bloodlink/pkg/apperror"
	"bloodlink/pkg/domain"
	"bloodlink/services/matching-svc/internal/events"
	"bloodlink/services/matching-svc/internal/ranking"
	"bloodlink/services/matching-svc/internal/routing"
)

// Publisher receives events after the engine has committed them. Publish is
// called with the engine lock held, so events of one request arrive in
// commit order; it must not block.
type Publisher interface {
	Publish(evt events.Event) bool
}

// Options tunes the engine. Zero values are usable.
type Options struct {
	// EmergencyDrawsReserve lets Emergency requests draw reserved bank units.
	EmergencyDrawsReserve bool
	Clock                 func() time.Time
	NewID                 func() string
	Publisher             Publisher
}

// Engine owns the store and serializes every mutation behind one mutex.
// Ranking, stock checks and the resulting writes of one call never
// interleave with another call.
type Engine struct {
	mu     sync.Mutex
	store  *Store
	router *routing.Router
	ranker *ranking.Ranker
	opts   Options

	// version changes whenever the donor registry changes in a way that can
	// alter a ranking.
	version atomic.Uint64
}

// New builds an engine over router and store. Donor locations must exist
// in the router's graph.
func New(router *routing.Router, store *Store, opts Options) (*Engine, error) {
	if router == nil || store == nil {
		return nil, apperror.New(apperror.CodeNilInput, "engine requires a router and a store")
	}
	for _, d := range store.donors {
		if !router.Graph().Has(d.LocationID) {
			return nil, apperror.Newf(apperror.CodeUnknownLocation, "donor %s is at unknown location %q", d.ID, d.LocationID).
				WithField("location_id")
		}
	}

	if opts.Clock == nil {
		opts.Clock = func() time.Time { return time.Now().UTC() }
	}
	if opts.NewID == nil {
		opts.NewID = func() string { return uuid.NewString() }
	}

	e := &Engine{
		store:  store,
		router: router,
		ranker: ranking.NewRanker(router),
		opts:   opts,
	}
	e.version.Store(1)
	return e, nil
}

// Router exposes the routing layer for read-only queries.
func (e *Engine) Router() *routing.Router {
	return e.router
}

// Version identifies the current donor registry state.
func (e *Engine) Version() uint64 {
	return e.version.Load()
}

func (e *Engine) bump() {
	e.version.Add(1)
}

// publishLocked hands evt to the publisher; e.mu must be held.
func (e *Engine) publishLocked(evt events.Event) {
	if e.opts.Publisher == nil {
		return
	}
	e.opts.Publisher.Publish(evt)
}

func (e *Engine) event(t events.Type, req *domain.BloodRequest, from domain.RequestStatus) events.Event {
	return events.Event{
		Type:       t,
		Request:    req.Clone(),
		From:       from,
		OccurredAt: req.UpdatedAt,
	}
}

// =============================================================================
// Request lifecycle
// =============================================================================

// NewRequest is the validated intake payload.
type NewRequest struct {
	BloodType   domain.BloodType
	Units       int
	LocationID  string
	Priority    domain.Priority
	PatientName string
	Hospital    string
	Requester   domain.Requester
}

func (e *Engine) validateNewRequest(in NewRequest) error {
	verrs := apperror.NewValidationErrors()
	if !in.BloodType.Valid() {
		verrs.AddErrorWithField(apperror.CodeUnknownBloodType, "blood type is required", "blood_type")
	}
	if in.Units <= 0 {
		verrs.AddErrorWithField(apperror.CodeInvalidQuantity, "units must be positive", "units")
	}
	if !e.router.Graph().Has(in.LocationID) {
		verrs.AddErrorWithField(apperror.CodeUnknownLocation, "unknown location "+quote(in.LocationID), "location_id")
	}
	if !in.Priority.Valid() {
		verrs.AddErrorWithField(apperror.CodeInvalidArgument, "priority is required", "priority")
	}
	return verrs.Err()
}

// CreateRequest registers a Pending request.
func (e *Engine) CreateRequest(in NewRequest) (*domain.BloodRequest, error) {
	if err := e.validateNewRequest(in); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.opts.Clock()
	req := &domain.BloodRequest{
		ID:          e.opts.NewID(),
		PatientName: strings.TrimSpace(in.PatientName),
		Hospital:    strings.TrimSpace(in.Hospital),
		BloodType:   in.BloodType,
		Units:       in.Units,
		LocationID:  in.LocationID,
		Priority:    in.Priority,
		Status:      domain.StatusPending,
		Requester:   in.Requester,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	e.store.putRequest(req)
	e.publishLocked(e.event(events.RequestCreated, req, domain.StatusUnspecified))
	return req.Clone(), nil
}

// ProcessRequest runs one fulfillment attempt:
//  1. a request that is not Pending is returned unchanged (Cancelled ones
//     are rejected with INVALID_STATE);
//  2. the nearest available donor of the exact blood type is matched and
//     marked unavailable;
//  3. otherwise the bank is drawn if enough unreserved units exist;
//  4. otherwise the request stays Pending.
func (e *Engine) ProcessRequest(id string) (*domain.BloodRequest, error) {
	req, _, err := e.Process(id)
	return req, err
}

// Process is ProcessRequest that also reports whether this call made the
// allocation attempt. It is false when the request had already left Pending,
// including when a concurrent call decided it first.
func (e *Engine) Process(id string) (*domain.BloodRequest, bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	req, ok := e.store.request(id)
	if !ok {
		return nil, false, apperror.Newf(apperror.CodeNotFound, "request %s not found", quote(id)).WithField("request_id")
	}

	switch req.Status {
	case domain.StatusPending:
	case domain.StatusCancelled:
		return nil, false, apperror.Newf(apperror.CodeInvalidState, "request %s is cancelled", id).
			WithDetails("status", req.Status.String())
	default:
		return req.Clone(), false, nil
	}

	e.publishLocked(e.allocateLocked(req))
	return req.Clone(), true, nil
}

func (e *Engine) allocateLocked(req *domain.BloodRequest) events.Event {
	now := e.opts.Clock()

	candidates := e.ranker.RankDonors(req.BloodType, req.LocationID, e.store.donorSnapshot())
	if len(candidates) > 0 {
		best := candidates[0]
		donor, _ := e.store.donor(best.Donor.ID)
		donor.Available = false
		e.bump()

		matched := *donor
		req.Status = domain.StatusMatched
		req.Source = domain.SourceDonorMatch
		req.MatchedDonor = &matched
		req.Route = e.router.Names(best.Path)
		req.Distance = best.Distance
		req.UpdatedAt = now

		evt := e.event(events.RequestMatched, req, domain.StatusPending)
		evt.Donor = &matched
		return evt
	}

	includeReserve := e.opts.EmergencyDrawsReserve && req.Priority == domain.PriorityEmergency
	if e.store.entry(req.BloodType).Draw(req.Units, includeReserve) {
		req.Status = domain.StatusFulfilled
		req.Source = domain.SourceBankInventory
		req.UpdatedAt = now
		return e.event(events.RequestFulfilled, req, domain.StatusPending)
	}

	req.UpdatedAt = now
	return e.event(events.RequestDeferred, req, domain.StatusPending)
}

// ConfirmMatch records that the matched donor actually donated. The request
// moves Matched -> Fulfilled; ranking and inventory are untouched.
func (e *Engine) ConfirmMatch(id string) (*domain.BloodRequest, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	req, ok := e.store.request(id)
	if !ok {
		return nil, apperror.Newf(apperror.CodeNotFound, "request %s not found", quote(id)).WithField("request_id")
	}
	if req.Status != domain.StatusMatched {
		return nil, apperror.Newf(apperror.CodeInvalidState, "request %s is %s, only Matched requests can be confirmed", id, req.Status).
			WithDetails("status", req.Status.String())
	}

	req.Status = domain.StatusFulfilled
	req.UpdatedAt = e.opts.Clock()

	evt := e.event(events.MatchConfirmed, req, domain.StatusMatched)
	if req.MatchedDonor != nil {
		donor := *req.MatchedDonor
		evt.Donor = &donor
		evt.Donation = &domain.Donation{
			ID:          e.opts.NewID(),
			DonorID:     donor.ID,
			DonorName:   donor.Name,
			RequestID:   req.ID,
			PatientName: req.PatientName,
			Hospital:    req.Hospital,
			BloodType:   req.BloodType,
			Units:       req.Units,
			DonatedAt:   req.UpdatedAt,
		}
	}
	e.publishLocked(evt)
	return req.Clone(), nil
}

// CompleteRequest is the administrative shortcut that marks a Pending or
// Matched request Fulfilled without recording a donation. A matched donor
// stays unavailable. Completing a Fulfilled request is a no-op.
func (e *Engine) CompleteRequest(id string) (*domain.BloodRequest, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	req, ok := e.store.request(id)
	if !ok {
		return nil, apperror.Newf(apperror.CodeNotFound, "request %s not found", quote(id)).WithField("request_id")
	}

	from := req.Status
	switch from {
	case domain.StatusFulfilled:
		return req.Clone(), nil
	case domain.StatusCancelled:
		return nil, apperror.Newf(apperror.CodeInvalidState, "request %s is cancelled", id).
			WithDetails("status", from.String())
	}

	req.Status = domain.StatusFulfilled
	req.UpdatedAt = e.opts.Clock()
	e.publishLocked(e.event(events.RequestCompleted, req, from))
	return req.Clone(), nil
}

// CancelRequest cancels a Pending or Matched request. A matched donor is
// released back to the available pool. Cancelling twice is a no-op.
func (e *Engine) CancelRequest(id string) (*domain.BloodRequest, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	req, ok := e.store.request(id)
	if !ok {
		return nil, apperror.Newf(apperror.CodeNotFound, "request %s not found", quote(id)).WithField("request_id")
	}

	from := req.Status
	switch from {
	case domain.StatusCancelled:
		return req.Clone(), nil
	case domain.StatusFulfilled:
		return nil, apperror.Newf(apperror.CodeInvalidState, "request %s is already fulfilled", id).
			WithDetails("status", from.String())
	}

	req.Status = domain.StatusCancelled
	req.UpdatedAt = e.opts.Clock()
	if from == domain.StatusMatched && req.MatchedDonor != nil {
		e.releaseDonorLocked(req.MatchedDonor.ID)
	}

	e.publishLocked(e.event(events.RequestCancelled, req, from))
	return req.Clone(), nil
}

// releaseDonorLocked makes a donor available again unless another Matched
// request still holds them.
func (e *Engine) releaseDonorLocked(donorID string) {
	donor, ok := e.store.donor(donorID)
	if !ok || donor.Available {
		return
	}
	if e.store.matchedTo(donorID) {
		return
	}
	donor.Available = true
	e.bump()
}

// GetRequest returns a copy of one request.
func (e *Engine) GetRequest(id string) (*domain.BloodRequest, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	req, ok := e.store.request(id)
	if !ok {
		return nil, apperror.Newf(apperror.CodeNotFound, "request %s not found", quote(id)).WithField("request_id")
	}
	return req.Clone(), nil
}

// ListRequests returns requests in creation order, optionally filtered by
// status (StatusUnspecified means all).
func (e *Engine) ListRequests(status domain.RequestStatus) []*domain.BloodRequest {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.requestSnapshot(status)
}

// =============================================================================
// Ranking previews
// =============================================================================

func (e *Engine) checkTarget(bt domain.BloodType, locationID string) error {
	if !bt.Valid() {
		return apperror.NewWithField(apperror.CodeUnknownBloodType, "unknown blood type", "blood_type")
	}
	if !e.router.Graph().Has(locationID) {
		return apperror.NewWithField(apperror.CodeUnknownLocation, "unknown location "+quote(locationID), "location_id")
	}
	return nil
}

// RankDonors previews the exact-type candidates for a location. The donor
// snapshot is taken under the lock; routing runs outside it.
func (e *Engine) RankDonors(bt domain.BloodType, locationID string) ([]domain.Candidate, error) {
	if err := e.checkTarget(bt, locationID); err != nil {
		return nil, err
	}
	return e.ranker.RankDonors(bt, locationID, e.Donors()), nil
}

// CompatibleDonors previews every medically compatible available donor.
func (e *Engine) CompatibleDonors(recipient domain.BloodType, locationID string) ([]domain.Candidate, error) {
	if err := e.checkTarget(recipient, locationID); err != nil {
		return nil, err
	}
	return e.ranker.RankCompatible(recipient, locationID, e.Donors()), nil
}

// Route validates both ids and returns the shortest route by id. An unknown
// id is a caller error here; an unreachable target is domain.NoRoute.
func (e *Engine) Route(from, to string) (domain.Route, error) {
	g := e.router.Graph()
	if !g.Has(from) {
		return domain.NoRoute, apperror.NewWithField(apperror.CodeUnknownLocation, "unknown location "+quote(from), "from")
	}
	if !g.Has(to) {
		return domain.NoRoute, apperror.NewWithField(apperror.CodeUnknownLocation, "unknown location "+quote(to), "to")
	}
	return e.router.Route(from, to), nil
}

func quote(s string) string {
	return "\"" + s + "\""
}
