package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"bloodlink/pkg/apperror"
	"bloodlink/pkg/database"
	"bloodlink/pkg/domain"
	"bloodlink/pkg/telemetry"
)

const (
	pgUniqueViolation = "23505"

	pgInsertTransition = `
		INSERT INTO request_transitions (
			request_id, event_type, from_status, to_status,
			source, donor_id, distance, occurred_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	pgInsertDonation = `
		INSERT INTO donations (
			id, donor_id, donor_name, request_id, patient_name, hospital,
			blood_type, units, donated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
)

// PostgresRepository журнал в PostgreSQL через pgx
type PostgresRepository struct {
	db database.DB
}

func NewPostgresRepository(db database.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) RecordTransition(ctx context.Context, t Transition) error {
	ctx, span := telemetry.StartSpan(ctx, "PostgresRepository.RecordTransition")
	defer span.End()

	_, err := r.db.Exec(ctx, pgInsertTransition,
		t.RequestID,
		t.Event,
		statusText(t.From),
		statusText(t.To),
		sourceText(t.Source),
		t.DonorID,
		t.Distance,
		t.OccurredAt,
	)
	if err != nil {
		telemetry.SetError(ctx, err)
		return apperror.Wrap(err, apperror.CodeDatabase, "failed to record transition")
	}
	return nil
}

func (r *PostgresRepository) RecordDonation(ctx context.Context, d domain.Donation) error {
	ctx, span := telemetry.StartSpan(ctx, "PostgresRepository.RecordDonation")
	defer span.End()

	_, err := r.db.Exec(ctx, pgInsertDonation,
		d.ID,
		d.DonorID,
		d.DonorName,
		d.RequestID,
		d.PatientName,
		d.Hospital,
		d.BloodType.String(),
		d.Units,
		d.DonatedAt,
	)
	if err != nil {
		telemetry.SetError(ctx, err)
		return donationError(err, d.ID)
	}
	return nil
}

func donationError(err error, id string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return apperror.Wrap(err, apperror.CodeConflict, fmt.Sprintf("donation %s already recorded", id))
	}
	return apperror.Wrap(err, apperror.CodeDatabase, "failed to record donation")
}

func (r *PostgresRepository) RecordConfirmation(ctx context.Context, t Transition, d domain.Donation) error {
	ctx, span := telemetry.StartSpan(ctx, "PostgresRepository.RecordConfirmation")
	defer span.End()

	err := database.WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, pgInsertDonation,
			d.ID, d.DonorID, d.DonorName, d.RequestID, d.PatientName, d.Hospital,
			d.BloodType.String(), d.Units, d.DonatedAt,
		); err != nil {
			return donationError(err, d.ID)
		}
		if _, err := tx.Exec(ctx, pgInsertTransition,
			t.RequestID, t.Event, statusText(t.From), statusText(t.To),
			sourceText(t.Source), t.DonorID, t.Distance, t.OccurredAt,
		); err != nil {
			return apperror.Wrap(err, apperror.CodeDatabase, "failed to record transition")
		}
		return nil
	})
	if err != nil {
		telemetry.SetError(ctx, err)
	}
	return err
}

func (r *PostgresRepository) ListTransitions(ctx context.Context, requestID string) ([]Transition, error) {
	ctx, span := telemetry.StartSpan(ctx, "PostgresRepository.ListTransitions")
	defer span.End()

	query := `
		SELECT id, request_id, event_type, from_status, to_status,
		       source, donor_id, distance, occurred_at
		FROM request_transitions
		WHERE request_id = $1
		ORDER BY id
	`

	rows, err := r.db.Query(ctx, query, requestID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeDatabase, "failed to list transitions")
	}
	defer rows.Close()

	out := []Transition{}
	for rows.Next() {
		var (
			t                Transition
			from, to, source string
		)
		if err := rows.Scan(&t.ID, &t.RequestID, &t.Event, &from, &to, &source, &t.DonorID, &t.Distance, &t.OccurredAt); err != nil {
			return nil, apperror.Wrap(err, apperror.CodeDatabase, "failed to scan transition")
		}
		t.From, t.To, t.Source = parseStatus(from), parseStatus(to), parseSource(source)
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeDatabase, "failed to iterate transitions")
	}
	return out, nil
}

func (r *PostgresRepository) ListDonations(ctx context.Context, limit int) ([]domain.Donation, error) {
	ctx, span := telemetry.StartSpan(ctx, "PostgresRepository.ListDonations")
	defer span.End()

	query := `
		SELECT id, donor_id, donor_name, request_id, patient_name, hospital,
		       blood_type, units, donated_at
		FROM donations
		ORDER BY donated_at DESC, id DESC
		LIMIT $1
	`

	rows, err := r.db.Query(ctx, query, normalizeLimit(limit))
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeDatabase, "failed to list donations")
	}
	defer rows.Close()

	out := []domain.Donation{}
	for rows.Next() {
		var (
			d  domain.Donation
			bt string
		)
		if err := rows.Scan(&d.ID, &d.DonorID, &d.DonorName, &d.RequestID, &d.PatientName, &d.Hospital, &bt, &d.Units, &d.DonatedAt); err != nil {
			return nil, apperror.Wrap(err, apperror.CodeDatabase, "failed to scan donation")
		}
		if d.BloodType, err = domain.ParseBloodType(bt); err != nil {
			return nil, apperror.Wrap(err, apperror.CodeDatabase, "corrupt donation row").WithDetails("id", d.ID)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeDatabase, "failed to iterate donations")
	}
	return out, nil
}

func (r *PostgresRepository) Close() error {
	r.db.Close()
	return nil
}
