package availability

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of pgxpool.Pool the repository uses; pgxmock satisfies it
// in tests.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type PgRepository struct {
	db DB
}

func NewPgRepository(db DB) *PgRepository {
	return &PgRepository{db: db}
}

const ruleColumns = `id, doctor_id, kind, rule_date, day_of_week, day_of_month,
	start_date, end_date, is_available, time_windows, slot_duration_minutes,
	buffer_minutes, max_appointments, priority, reason, created_at, updated_at`

func scanRule(row pgx.Row) (*Rule, error) {
	var r Rule
	var dayOfWeek *int16
	var dayOfMonth *int16
	var windowsJSON []byte
	var reason *string

	err := row.Scan(
		&r.ID,
		&r.DoctorID,
		&r.Kind,
		&r.Date,
		&dayOfWeek,
		&dayOfMonth,
		&r.StartDate,
		&r.EndDate,
		&r.IsAvailable,
		&windowsJSON,
		&r.SlotDuration,
		&r.BufferTime,
		&r.MaxAppointments,
		&r.Priority,
		&reason,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRuleNotFound
		}
		return nil, err
	}

	if dayOfWeek != nil {
		wd := time.Weekday(*dayOfWeek)
		r.DayOfWeek = &wd
	}
	if dayOfMonth != nil {
		dom := int(*dayOfMonth)
		r.DayOfMonth = &dom
	}
	if reason != nil {
		r.Reason = *reason
	}
	if len(windowsJSON) > 0 {
		if err := json.Unmarshal(windowsJSON, &r.TimeWindows); err != nil {
			return nil, fmt.Errorf("decode time windows: %w", err)
		}
	}

	return &r, nil
}

// Create validates and inserts a rule. Malformed rules are rejected here and
// never reach resolution.
func (repo *PgRepository) Create(ctx context.Context, r *Rule) error {
	if err := Validate(r); err != nil {
		return err
	}

	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}

	windowsJSON, err := json.Marshal(r.TimeWindows)
	if err != nil {
		return fmt.Errorf("encode time windows: %w", err)
	}

	var dayOfWeek *int16
	if r.DayOfWeek != nil {
		wd := int16(*r.DayOfWeek)
		dayOfWeek = &wd
	}
	var dayOfMonth *int16
	if r.DayOfMonth != nil {
		dom := int16(*r.DayOfMonth)
		dayOfMonth = &dom
	}
	var reason *string
	if r.Reason != "" {
		reason = &r.Reason
	}

	row := repo.db.QueryRow(ctx, `
		INSERT INTO availability_rules (
			id, doctor_id, kind, rule_date, day_of_week, day_of_month,
			start_date, end_date, is_available, time_windows,
			slot_duration_minutes, buffer_minutes, max_appointments,
			priority, reason, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, now(), now())
		RETURNING created_at, updated_at
	`, r.ID, r.DoctorID, r.Kind, r.Date, dayOfWeek, dayOfMonth,
		r.StartDate, r.EndDate, r.IsAvailable, windowsJSON,
		r.SlotDuration, r.BufferTime, r.MaxAppointments, r.Priority, reason)

	if err := row.Scan(&r.CreatedAt, &r.UpdatedAt); err != nil {
		return fmt.Errorf("insert availability rule: %w", err)
	}

	return nil
}

func (repo *PgRepository) GetByID(ctx context.Context, id uuid.UUID) (*Rule, error) {
	row := repo.db.QueryRow(ctx, `
		SELECT `+ruleColumns+`
		FROM availability_rules
		WHERE id = $1
	`, id)
	return scanRule(row)
}

func (repo *PgRepository) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]Rule, error) {
	rows, err := repo.db.Query(ctx, `
		SELECT `+ruleColumns+`
		FROM availability_rules
		WHERE doctor_id = $1
		ORDER BY priority DESC, created_at
	`, doctorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Rule
	for rows.Next() {
		r, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *r)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (repo *PgRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := repo.db.Exec(ctx, `
		DELETE FROM availability_rules
		WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("delete availability rule: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRuleNotFound
	}
	return nil
}
