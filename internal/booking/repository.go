package booking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrAppointmentNotFound = errors.New("appointment not found")

	// ErrDuplicateBooking is the storage-level uniqueness violation on
	// (doctor_id, start_at). It is the final arbiter of booking races and is
	// always translated to a slot-unavailable rejection before leaving the
	// service.
	ErrDuplicateBooking = errors.New("another appointment holds this slot")
)

// Repository contains all appointment store interactions the service needs.
type Repository interface {
	// InsertIfAbsent atomically creates the appointment unless an occupying
	// appointment already exists for (DoctorID, StartAt); then it returns
	// ErrDuplicateBooking and writes nothing.
	InsertIfAbsent(ctx context.Context, a *Appointment) (*Appointment, error)

	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)

	// ListByDoctorBetween returns the doctor's appointments with start_at in
	// [from, to), all statuses.
	ListByDoctorBetween(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]Appointment, error)

	// UpdateStatus is a compare-and-swap transition; it fails with
	// ErrAppointmentNotFound when the appointment is not in `from`.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) (*Appointment, error)

	// FindStalePending returns pending appointments created before the cutoff
	// whose slot has already started. Used by the cleanup worker.
	FindStalePending(ctx context.Context, createdBefore, startedBefore time.Time) ([]Appointment, error)
}
