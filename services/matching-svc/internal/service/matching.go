// Package service реализует bloodlink.v1.MatchingService поверх движка
package service

import (
	"bytes"
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"bloodlink/pkg/api/bloodlinkv1"
	"bloodlink/pkg/apperror"
	"bloodlink/pkg/cache"
	"bloodlink/pkg/domain"
	"bloodlink/pkg/logger"
	"bloodlink/pkg/metrics"
	"bloodlink/pkg/telemetry"
	"bloodlink/services/matching-svc/internal/engine"
	"bloodlink/services/matching-svc/internal/export"
	"bloodlink/services/matching-svc/internal/repository"
)

type MatchingService struct {
	bloodlinkv1.UnimplementedMatchingServiceServer

	engine  *engine.Engine
	repo    repository.Repository
	ranks   *cache.RankCache
	metrics *metrics.Metrics
	clock   func() time.Time
}

type Option func(*MatchingService)

// WithRankCache включает кэш превью ранжирования
func WithRankCache(rc *cache.RankCache) Option {
	return func(s *MatchingService) { s.ranks = rc }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *MatchingService) { s.metrics = m }
}

func WithClock(clock func() time.Time) Option {
	return func(s *MatchingService) { s.clock = clock }
}

func NewMatchingService(eng *engine.Engine, repo repository.Repository, opts ...Option) *MatchingService {
	s := &MatchingService{
		engine: eng,
		repo:   repo,
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = metrics.Get()
	}
	s.refreshInventoryGauges(s.engine.Inventory())
	return s
}

// fail отмечает ошибку в спане и переводит её в статус gRPC
func fail(ctx context.Context, err error) error {
	telemetry.SetError(ctx, err)
	return apperror.ToGRPC(err)
}

// =============================================================================
// Запросы
// =============================================================================

func (s *MatchingService) CreateRequest(ctx context.Context, req *bloodlinkv1.CreateRequestRequest) (*bloodlinkv1.RequestResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "MatchingService.CreateRequest")
	defer span.End()

	created, err := s.engine.CreateRequest(engine.NewRequest{
		BloodType:   req.BloodType,
		Units:       req.Units,
		LocationID:  req.LocationID,
		Priority:    req.Priority,
		PatientName: req.PatientName,
		Hospital:    req.Hospital,
		Requester:   req.Requester,
	})
	if err != nil {
		return nil, fail(ctx, err)
	}
	span.SetAttributes(telemetry.RequestAttributes(created)...)

	logger.WithContext(ctx).Info("Blood request created",
		"request_id", created.ID,
		"blood_type", created.BloodType.String(),
		"units", created.Units,
		"priority", created.Priority.String(),
	)
	return &bloodlinkv1.RequestResponse{Request: created}, nil
}

func (s *MatchingService) ProcessRequest(ctx context.Context, req *bloodlinkv1.RequestRef) (*bloodlinkv1.RequestResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "MatchingService.ProcessRequest",
		telemetry.WithAttributes(attribute.String(telemetry.AttrRequestID, req.RequestID)),
	)
	defer span.End()

	processed, attempted, err := s.engine.Process(req.RequestID)
	if err != nil {
		return nil, fail(ctx, err)
	}
	span.SetAttributes(telemetry.RequestAttributes(processed)...)

	// повторная обработка решённого запроса ничего не меняет
	if attempted {
		outcome := processOutcome(processed)
		s.metrics.RecordProcessed(outcome, processed.BloodType.String(), processed.Distance)
		if processed.Source == domain.SourceBankInventory {
			s.refreshInventoryGauges(s.engine.Inventory())
		}
		logger.WithContext(ctx).Info("Blood request processed",
			"request_id", processed.ID,
			"outcome", outcome,
			"status", processed.Status.String(),
		)
	}
	return &bloodlinkv1.RequestResponse{Request: processed}, nil
}

func processOutcome(r *domain.BloodRequest) string {
	switch r.Status {
	case domain.StatusMatched:
		return "matched"
	case domain.StatusFulfilled:
		return "bank"
	default:
		return "deferred"
	}
}

func (s *MatchingService) ConfirmMatch(ctx context.Context, req *bloodlinkv1.RequestRef) (*bloodlinkv1.RequestResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "MatchingService.ConfirmMatch",
		telemetry.WithAttributes(attribute.String(telemetry.AttrRequestID, req.RequestID)),
	)
	defer span.End()

	confirmed, err := s.engine.ConfirmMatch(req.RequestID)
	if err != nil {
		return nil, fail(ctx, err)
	}
	span.SetAttributes(telemetry.RequestAttributes(confirmed)...)
	return &bloodlinkv1.RequestResponse{Request: confirmed}, nil
}

// CompleteRequest закрывает запрос вручную, без записи донации
func (s *MatchingService) CompleteRequest(ctx context.Context, req *bloodlinkv1.RequestRef) (*bloodlinkv1.RequestResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "MatchingService.CompleteRequest",
		telemetry.WithAttributes(attribute.String(telemetry.AttrRequestID, req.RequestID)),
	)
	defer span.End()

	completed, err := s.engine.CompleteRequest(req.RequestID)
	if err != nil {
		return nil, fail(ctx, err)
	}
	span.SetAttributes(telemetry.RequestAttributes(completed)...)

	logger.WithContext(ctx).Info("Blood request completed manually",
		"request_id", completed.ID,
		"source", completed.Source.String(),
	)
	return &bloodlinkv1.RequestResponse{Request: completed}, nil
}

func (s *MatchingService) CancelRequest(ctx context.Context, req *bloodlinkv1.RequestRef) (*bloodlinkv1.RequestResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "MatchingService.CancelRequest",
		telemetry.WithAttributes(attribute.String(telemetry.AttrRequestID, req.RequestID)),
	)
	defer span.End()

	cancelled, err := s.engine.CancelRequest(req.RequestID)
	if err != nil {
		return nil, fail(ctx, err)
	}
	return &bloodlinkv1.RequestResponse{Request: cancelled}, nil
}

func (s *MatchingService) GetRequest(ctx context.Context, req *bloodlinkv1.RequestRef) (*bloodlinkv1.RequestResponse, error) {
	r, err := s.engine.GetRequest(req.RequestID)
	if err != nil {
		return nil, fail(ctx, err)
	}
	return &bloodlinkv1.RequestResponse{Request: r}, nil
}

func (s *MatchingService) ListRequests(_ context.Context, req *bloodlinkv1.ListRequestsRequest) (*bloodlinkv1.ListRequestsResponse, error) {
	return &bloodlinkv1.ListRequestsResponse{Requests: s.engine.ListRequests(req.Status)}, nil
}

// =============================================================================
// Ранжирование и маршруты
// =============================================================================

func (s *MatchingService) RankDonors(ctx context.Context, req *bloodlinkv1.RankDonorsRequest) (*bloodlinkv1.RankDonorsResponse, error) {
	return s.rank(ctx, "MatchingService.RankDonors", cache.RankExact, req, s.engine.RankDonors)
}

func (s *MatchingService) CompatibleDonors(ctx context.Context, req *bloodlinkv1.RankDonorsRequest) (*bloodlinkv1.RankDonorsResponse, error) {
	return s.rank(ctx, "MatchingService.CompatibleDonors", cache.RankCompatible, req, s.engine.CompatibleDonors)
}

func (s *MatchingService) rank(
	ctx context.Context,
	spanName string,
	mode cache.RankMode,
	req *bloodlinkv1.RankDonorsRequest,
	compute func(domain.BloodType, string) ([]domain.Candidate, error),
) (*bloodlinkv1.RankDonorsResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, spanName)
	defer span.End()

	// версия читается до вычисления: запись под старым ключом
	// никогда не переживёт изменение реестра
	version := s.engine.Version()
	run := func() ([]domain.Candidate, error) {
		return compute(req.BloodType, req.LocationID)
	}

	var (
		candidates []domain.Candidate
		hit        bool
		err        error
	)
	if s.ranks != nil {
		candidates, hit, err = s.ranks.GetOrCompute(ctx, cache.RankKey(mode, req.BloodType, req.LocationID, version), run)
	} else {
		candidates, err = run()
	}
	if err != nil {
		return nil, fail(ctx, err)
	}
	if candidates == nil {
		candidates = []domain.Candidate{}
	}

	span.SetAttributes(telemetry.RankAttributes(req.BloodType, req.LocationID, len(candidates), hit)...)
	s.metrics.RecordCandidates(len(candidates))

	return &bloodlinkv1.RankDonorsResponse{
		Candidates: candidates,
		Version:    version,
		Cached:     hit,
	}, nil
}

func (s *MatchingService) Route(ctx context.Context, req *bloodlinkv1.RouteRequest) (*bloodlinkv1.RouteResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "MatchingService.Route",
		trace.WithAttributes(attribute.String("route.from", req.From), attribute.String("route.to", req.To)),
	)
	defer span.End()

	route, err := s.engine.Route(req.From, req.To)
	if err != nil {
		return nil, fail(ctx, err)
	}
	if !route.Found() {
		return &bloodlinkv1.RouteResponse{Found: false}, nil
	}

	span.SetAttributes(attribute.Int(telemetry.AttrDistance, route.Distance))
	return &bloodlinkv1.RouteResponse{
		Found:    true,
		Path:     route.Path,
		Names:    s.engine.Router().Names(route.Path),
		Distance: route.Distance,
	}, nil
}

// =============================================================================
// Склад
// =============================================================================

func (s *MatchingService) AdjustInventory(ctx context.Context, req *bloodlinkv1.AdjustInventoryRequest) (*bloodlinkv1.InventoryEntryResponse, error) {
	op, err := engine.ParseAdjustOp(req.Op)
	if err != nil {
		return nil, fail(ctx, err)
	}

	entry, err := s.engine.AdjustInventory(req.BloodType, op, req.Units)
	if err != nil {
		return nil, fail(ctx, err)
	}
	s.metrics.SetInventory(entry.BloodType.String(), entry.Total, entry.Reserved)

	logger.WithContext(ctx).Info("Inventory adjusted",
		"blood_type", entry.BloodType.String(),
		"op", op.String(),
		"units", req.Units,
		"total", entry.Total,
		"reserved", entry.Reserved,
	)
	return &bloodlinkv1.InventoryEntryResponse{Entry: entry}, nil
}

func (s *MatchingService) GetInventory(context.Context, *bloodlinkv1.GetInventoryRequest) (*bloodlinkv1.GetInventoryResponse, error) {
	return &bloodlinkv1.GetInventoryResponse{Entries: s.engine.Inventory()}, nil
}

func (s *MatchingService) refreshInventoryGauges(entries []domain.InventoryEntry) {
	for _, e := range entries {
		s.metrics.SetInventory(e.BloodType.String(), e.Total, e.Reserved)
	}
}

// =============================================================================
// Доноры
// =============================================================================

func (s *MatchingService) RegisterDonor(ctx context.Context, req *bloodlinkv1.RegisterDonorRequest) (*bloodlinkv1.DonorResponse, error) {
	available := true
	if req.Available != nil {
		available = *req.Available
	}

	donor, err := s.engine.RegisterDonor(engine.NewDonor{
		Name:       req.Name,
		BloodType:  req.BloodType,
		LocationID: req.LocationID,
		Phone:      req.Phone,
		Email:      req.Email,
		Available:  available,
	})
	if err != nil {
		return nil, fail(ctx, err)
	}

	logger.WithContext(ctx).Info("Donor registered",
		"donor_id", donor.ID,
		"blood_type", donor.BloodType.String(),
		"location_id", donor.LocationID,
	)
	return &bloodlinkv1.DonorResponse{Donor: donor}, nil
}

func (s *MatchingService) RemoveDonor(ctx context.Context, req *bloodlinkv1.DonorRef) (*bloodlinkv1.Empty, error) {
	if err := s.engine.RemoveDonor(req.DonorID); err != nil {
		return nil, fail(ctx, err)
	}
	logger.WithContext(ctx).Info("Donor removed", "donor_id", req.DonorID)
	return &bloodlinkv1.Empty{}, nil
}

func (s *MatchingService) SetDonorAvailability(ctx context.Context, req *bloodlinkv1.SetDonorAvailabilityRequest) (*bloodlinkv1.DonorResponse, error) {
	donor, err := s.engine.SetDonorAvailability(req.DonorID, req.Available)
	if err != nil {
		return nil, fail(ctx, err)
	}
	return &bloodlinkv1.DonorResponse{Donor: donor}, nil
}

func (s *MatchingService) ListDonors(_ context.Context, req *bloodlinkv1.ListDonorsRequest) (*bloodlinkv1.ListDonorsResponse, error) {
	all := s.engine.Donors()
	out := make([]domain.Donor, 0, len(all))
	for _, d := range all {
		if req.BloodType != domain.BloodTypeUnspecified && d.BloodType != req.BloodType {
			continue
		}
		if req.LocationID != "" && d.LocationID != req.LocationID {
			continue
		}
		if req.AvailableOnly && !d.Available {
			continue
		}
		out = append(out, d)
	}
	return &bloodlinkv1.ListDonorsResponse{Donors: out}, nil
}

// =============================================================================
// Журнал и выгрузка
// =============================================================================

func (s *MatchingService) ListDonations(ctx context.Context, req *bloodlinkv1.ListDonationsRequest) (*bloodlinkv1.ListDonationsResponse, error) {
	start := time.Now()
	donations, err := s.repo.ListDonations(ctx, req.Limit)
	s.metrics.RecordRepository("list_donations", err, time.Since(start))
	if err != nil {
		return nil, fail(ctx, apperror.Wrap(err, apperror.CodeDatabase, "list donations"))
	}
	if donations == nil {
		donations = []domain.Donation{}
	}
	return &bloodlinkv1.ListDonationsResponse{Donations: donations}, nil
}

func (s *MatchingService) ListTransitions(ctx context.Context, req *bloodlinkv1.RequestRef) (*bloodlinkv1.ListTransitionsResponse, error) {
	if _, err := s.engine.GetRequest(req.RequestID); err != nil {
		return nil, fail(ctx, err)
	}

	start := time.Now()
	history, err := s.repo.ListTransitions(ctx, req.RequestID)
	s.metrics.RecordRepository("list_transitions", err, time.Since(start))
	if err != nil {
		return nil, fail(ctx, apperror.Wrap(err, apperror.CodeDatabase, "list transitions"))
	}

	out := make([]bloodlinkv1.Transition, len(history))
	for i, t := range history {
		out[i] = bloodlinkv1.Transition{
			Event:      t.Event,
			From:       t.From,
			To:         t.To,
			Source:     t.Source,
			DonorID:    t.DonorID,
			Distance:   t.Distance,
			OccurredAt: t.OccurredAt,
		}
	}
	return &bloodlinkv1.ListTransitionsResponse{Transitions: out}, nil
}

func (s *MatchingService) ExportWorkbook(ctx context.Context, _ *bloodlinkv1.ExportWorkbookRequest) (*bloodlinkv1.ExportWorkbookResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "MatchingService.ExportWorkbook")
	defer span.End()

	var buf bytes.Buffer
	if err := export.WriteWorkbook(&buf, s.engine.Snapshot()); err != nil {
		return nil, fail(ctx, apperror.Wrap(err, apperror.CodeInternal, "export workbook"))
	}
	span.SetAttributes(attribute.Int("export.bytes", buf.Len()))

	return &bloodlinkv1.ExportWorkbookResponse{
		Filename: export.Filename(s.clock()),
		Content:  buf.Bytes(),
	}, nil
}

var _ bloodlinkv1.MatchingServiceServer = (*MatchingService)(nil)
