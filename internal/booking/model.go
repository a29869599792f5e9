package booking

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusApproved   Status = "approved"
	StatusConfirmed  Status = "confirmed"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
	StatusNoShow     Status = "no_show"
)

// Occupies reports whether an appointment in this status blocks its slot for
// future bookings. Completed appointments occupied their slot historically
// but never compete with new ones, since slots in the past are unavailable
// anyway.
func (s Status) Occupies() bool {
	switch s {
	case StatusPending, StatusApproved, StatusConfirmed, StatusInProgress:
		return true
	default:
		return false
	}
}

// Appointment is a booked slot. StartAt is a civil Colombia instant; the
// store enforces uniqueness of (DoctorID, StartAt) across occupying statuses.
type Appointment struct {
	ID        uuid.UUID
	DoctorID  uuid.UUID
	PatientID uuid.UUID
	StartAt   time.Time
	Duration  int // minutes
	Status    Status
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (a *Appointment) EndAt() time.Time {
	return a.StartAt.Add(time.Duration(a.Duration) * time.Minute)
}
