// Package repository хранит историю переходов запросов и подтверждённые
// сдачи крови. Движок держит рабочее состояние в памяти, сюда пишется
// только журнал.
package repository

import (
	"context"
	"time"

	"bloodlink/pkg/domain"
)

const defaultDonationLimit = 50

// Transition одна запись журнала: что произошло с запросом
type Transition struct {
	ID         int64
	RequestID  string
	Event      string
	From       domain.RequestStatus
	To         domain.RequestStatus
	Source     domain.FulfillmentSource
	DonorID    string
	Distance   int
	OccurredAt time.Time
}

// Repository журнал переходов и сдач
type Repository interface {
	RecordTransition(ctx context.Context, t Transition) error
	RecordDonation(ctx context.Context, d domain.Donation) error
	// RecordConfirmation пишет сдачу и переход в одной транзакции
	RecordConfirmation(ctx context.Context, t Transition, d domain.Donation) error
	// ListTransitions возвращает записи запроса в порядке записи
	ListTransitions(ctx context.Context, requestID string) ([]Transition, error)
	// ListDonations возвращает последние limit сдач, новые первыми
	ListDonations(ctx context.Context, limit int) ([]domain.Donation, error)
	Close() error
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return defaultDonationLimit
	}
	return limit
}

func parseStatus(s string) domain.RequestStatus {
	st, err := domain.ParseRequestStatus(s)
	if err != nil {
		return domain.StatusUnspecified
	}
	return st
}

func parseSource(s string) domain.FulfillmentSource {
	src, err := domain.ParseFulfillmentSource(s)
	if err != nil {
		return domain.SourceNone
	}
	return src
}

// statusText пишет "" для незаданного статуса, как и MarshalText
func statusText(s domain.RequestStatus) string {
	if s == domain.StatusUnspecified {
		return ""
	}
	return s.String()
}

func sourceText(s domain.FulfillmentSource) string {
	if s == domain.SourceNone {
		return ""
	}
	return s.String()
}
