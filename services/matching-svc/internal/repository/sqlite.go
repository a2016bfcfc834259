package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"bloodlink/pkg/apperror"
	"bloodlink/pkg/database"
	"bloodlink/pkg/domain"
	"bloodlink/pkg/telemetry"
)

// Фиксированная ширина, чтобы ORDER BY по тексту совпадал с порядком времени
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteRepository журнал в локальном файле SQLite (modernc, без cgo)
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(sqliteTimeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

const (
	sqliteInsertTransition = `
		INSERT INTO request_transitions (
			request_id, event_type, from_status, to_status,
			source, donor_id, distance, occurred_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	sqliteInsertDonation = `
		INSERT INTO donations (
			id, donor_id, donor_name, request_id, patient_name, hospital,
			blood_type, units, donated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
)

// execer общий знаменатель *sql.DB и *sql.Tx
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertTransition(ctx context.Context, ex execer, t Transition) error {
	_, err := ex.ExecContext(ctx, sqliteInsertTransition,
		t.RequestID,
		t.Event,
		statusText(t.From),
		statusText(t.To),
		sourceText(t.Source),
		t.DonorID,
		t.Distance,
		formatTime(t.OccurredAt),
	)
	if err != nil {
		return apperror.Wrap(err, apperror.CodeDatabase, "failed to record transition")
	}
	return nil
}

func insertDonation(ctx context.Context, ex execer, d domain.Donation) error {
	_, err := ex.ExecContext(ctx, sqliteInsertDonation,
		d.ID,
		d.DonorID,
		d.DonorName,
		d.RequestID,
		d.PatientName,
		d.Hospital,
		d.BloodType.String(),
		d.Units,
		formatTime(d.DonatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return apperror.Wrap(err, apperror.CodeConflict, fmt.Sprintf("donation %s already recorded", d.ID))
		}
		return apperror.Wrap(err, apperror.CodeDatabase, "failed to record donation")
	}
	return nil
}

func (r *SQLiteRepository) RecordTransition(ctx context.Context, t Transition) error {
	ctx, span := telemetry.StartSpan(ctx, "SQLiteRepository.RecordTransition")
	defer span.End()

	err := insertTransition(ctx, r.db, t)
	if err != nil {
		telemetry.SetError(ctx, err)
	}
	return err
}

func (r *SQLiteRepository) RecordDonation(ctx context.Context, d domain.Donation) error {
	ctx, span := telemetry.StartSpan(ctx, "SQLiteRepository.RecordDonation")
	defer span.End()

	err := insertDonation(ctx, r.db, d)
	if err != nil {
		telemetry.SetError(ctx, err)
	}
	return err
}

func (r *SQLiteRepository) RecordConfirmation(ctx context.Context, t Transition, d domain.Donation) error {
	ctx, span := telemetry.StartSpan(ctx, "SQLiteRepository.RecordConfirmation")
	defer span.End()

	return database.WithSQLTransaction(ctx, r.db, func(tx *sql.Tx) error {
		if err := insertDonation(ctx, tx, d); err != nil {
			return err
		}
		return insertTransition(ctx, tx, t)
	})
}

func (r *SQLiteRepository) ListTransitions(ctx context.Context, requestID string) ([]Transition, error) {
	ctx, span := telemetry.StartSpan(ctx, "SQLiteRepository.ListTransitions")
	defer span.End()

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, request_id, event_type, from_status, to_status,
		       source, donor_id, distance, occurred_at
		FROM request_transitions
		WHERE request_id = ?
		ORDER BY id`, requestID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeDatabase, "failed to list transitions")
	}
	defer rows.Close()

	out := []Transition{}
	for rows.Next() {
		var (
			t                          Transition
			from, to, source, occurred string
		)
		if err := rows.Scan(&t.ID, &t.RequestID, &t.Event, &from, &to, &source, &t.DonorID, &t.Distance, &occurred); err != nil {
			return nil, apperror.Wrap(err, apperror.CodeDatabase, "failed to scan transition")
		}
		if t.OccurredAt, err = parseTime(occurred); err != nil {
			return nil, apperror.Wrap(err, apperror.CodeDatabase, "corrupt transition row").WithDetails("id", t.ID)
		}
		t.From, t.To, t.Source = parseStatus(from), parseStatus(to), parseSource(source)
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeDatabase, "failed to iterate transitions")
	}
	return out, nil
}

func (r *SQLiteRepository) ListDonations(ctx context.Context, limit int) ([]domain.Donation, error) {
	ctx, span := telemetry.StartSpan(ctx, "SQLiteRepository.ListDonations")
	defer span.End()

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, donor_id, donor_name, request_id, patient_name, hospital,
		       blood_type, units, donated_at
		FROM donations
		ORDER BY donated_at DESC, rowid DESC
		LIMIT ?`, normalizeLimit(limit))
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeDatabase, "failed to list donations")
	}
	defer rows.Close()

	out := []domain.Donation{}
	for rows.Next() {
		var (
			d             domain.Donation
			bt, donatedAt string
		)
		if err := rows.Scan(&d.ID, &d.DonorID, &d.DonorName, &d.RequestID, &d.PatientName, &d.Hospital, &bt, &d.Units, &donatedAt); err != nil {
			return nil, apperror.Wrap(err, apperror.CodeDatabase, "failed to scan donation")
		}
		if d.BloodType, err = domain.ParseBloodType(bt); err != nil {
			return nil, apperror.Wrap(err, apperror.CodeDatabase, "corrupt donation row").WithDetails("id", d.ID)
		}
		if d.DonatedAt, err = parseTime(donatedAt); err != nil {
			return nil, apperror.Wrap(err, apperror.CodeDatabase, "corrupt donation row").WithDetails("id", d.ID)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeDatabase, "failed to iterate donations")
	}
	return out, nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}
