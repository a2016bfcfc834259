package telemetry

import (
	"go.opentelemetry.io/otel/attribute"

	"bloodlink/pkg/domain"
)

// Ключи атрибутов предметной области
const (
	// Запрос
	AttrRequestID       = "bloodlink.request.id"
	AttrRequestStatus   = "bloodlink.request.status"
	AttrRequestPriority = "bloodlink.request.priority"
	AttrRequestSource   = "bloodlink.request.source"
	AttrBloodType       = "bloodlink.blood_type"
	AttrUnits           = "bloodlink.units"
	AttrLocationID      = "bloodlink.location_id"

	// Подбор
	AttrDonorID    = "bloodlink.donor.id"
	AttrCandidates = "bloodlink.match.candidates"
	AttrDistance   = "bloodlink.match.distance"

	// Кэш ранжирования
	AttrCacheHit = "bloodlink.cache.hit"
)

// RequestAttributes описывает запрос на переливание
func RequestAttributes(r *domain.BloodRequest) []attribute.KeyValue {
	if r == nil {
		return nil
	}
	attrs := []attribute.KeyValue{
		attribute.String(AttrRequestID, r.ID),
		attribute.String(AttrRequestStatus, r.Status.String()),
		attribute.String(AttrRequestPriority, r.Priority.String()),
		attribute.String(AttrBloodType, r.BloodType.String()),
		attribute.Int(AttrUnits, r.Units),
		attribute.String(AttrLocationID, r.LocationID),
	}
	if r.Source != domain.SourceNone {
		attrs = append(attrs, attribute.String(AttrRequestSource, r.Source.String()))
	}
	if r.MatchedDonor != nil {
		attrs = append(attrs,
			attribute.String(AttrDonorID, r.MatchedDonor.ID),
			attribute.Int(AttrDistance, r.Distance),
		)
	}
	return attrs
}

// RankAttributes описывает запрос ранжирования доноров
func RankAttributes(bt domain.BloodType, locationID string, candidates int, cacheHit bool) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrBloodType, bt.String()),
		attribute.String(AttrLocationID, locationID),
		attribute.Int(AttrCandidates, candidates),
		attribute.Bool(AttrCacheHit, cacheHit),
	}
}
