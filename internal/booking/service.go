package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/citamed/citamed-scheduling/internal/availability"
	"github.com/citamed/citamed-scheduling/internal/clock"
	redisclient "github.com/citamed/citamed-scheduling/internal/redis"
)

// ErrDependencyUnavailable marks failures of the rule store, appointment
// store, or lock backend. They are retryable by the caller; the service never
// substitutes empty data for a failed fetch.
var ErrDependencyUnavailable = errors.New("dependency unavailable")

const ReasonSlotUnavailable = "SLOT_UNAVAILABLE"

// Rejection is a refused booking. Reason is the machine code, Message the
// human-readable cause. When the database race decides, the message stays
// generic because the service cannot know which cause won.
type Rejection struct {
	Reason  string
	Message string
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("booking rejected: %s: %s", r.Reason, r.Message)
}

func rejectSlot(message string) *Rejection {
	return &Rejection{Reason: ReasonSlotUnavailable, Message: message}
}

func depErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrDependencyUnavailable, op, err)
}

// BookRequest is one attempt to take a slot.
type BookRequest struct {
	DoctorID  uuid.UUID
	PatientID uuid.UUID
	Date      time.Time // Bogota midnight
	Start     availability.TimeOfDay
	Duration  int // minutes; 0 means the resolved slot duration
	Notes     string
}

type Service struct {
	rules  availability.Repository
	appts  Repository
	locker redisclient.Locker
	clk    clock.Clock
}

func NewService(rules availability.Repository, appts Repository, locker redisclient.Locker, clk clock.Clock) *Service {
	return &Service{
		rules:  rules,
		appts:  appts,
		locker: locker,
		clk:    clk,
	}
}

// ComputeAvailability derives the doctor's slots for one date from the rule
// set, the booked appointments, and the current Bogota instant. It is a pure
// read, safe for any number of concurrent callers, and returns the same
// output for the same stored state.
func (s *Service) ComputeAvailability(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]availability.Slot, error) {
	date = clock.Midnight(date)

	slots, _, err := s.computeDay(ctx, doctorID, date)
	return slots, err
}

// ComputeAvailabilityRange runs ComputeAvailability for each date in
// [from, to], inclusive.
func (s *Service) ComputeAvailabilityRange(ctx context.Context, doctorID uuid.UUID, from, to time.Time) (map[string][]availability.Slot, error) {
	from = clock.Midnight(from)
	to = clock.Midnight(to)
	if to.Before(from) {
		return nil, fmt.Errorf("range end %s before start %s", to.Format("2006-01-02"), from.Format("2006-01-02"))
	}

	rules, err := s.rules.ListByDoctor(ctx, doctorID)
	if err != nil {
		return nil, depErr("load availability rules", err)
	}

	appts, err := s.appts.ListByDoctorBetween(ctx, doctorID, from, to.AddDate(0, 0, 1))
	if err != nil {
		return nil, depErr("load appointments", err)
	}

	now := s.clk.Now()
	out := make(map[string][]availability.Slot)

	for date := from; !date.After(to); date = date.AddDate(0, 0, 1) {
		resolved := availability.Resolve(rules, date)
		raw := availability.GenerateSlots(doctorID, date, resolved)
		out[date.Format("2006-01-02")] = availability.FilterSlots(raw, occupyingBusy(appts), now)
	}

	return out, nil
}

// computeDay loads fresh state and produces the filtered slot list plus the
// resolved day, shared by display reads and the booking re-validation.
func (s *Service) computeDay(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]availability.Slot, availability.ResolvedDay, error) {
	rules, err := s.rules.ListByDoctor(ctx, doctorID)
	if err != nil {
		return nil, availability.ResolvedDay{}, depErr("load availability rules", err)
	}

	resolved := availability.Resolve(rules, date)
	raw := availability.GenerateSlots(doctorID, date, resolved)

	appts, err := s.appts.ListByDoctorBetween(ctx, doctorID, date, date.AddDate(0, 0, 1))
	if err != nil {
		return nil, availability.ResolvedDay{}, depErr("load appointments", err)
	}

	filtered := availability.FilterSlots(raw, occupyingBusy(appts), s.clk.Now())
	return filtered, resolved, nil
}

func occupyingBusy(appts []Appointment) []availability.Busy {
	var busy []availability.Busy
	for _, a := range appts {
		if !a.Status.Occupies() {
			continue
		}
		busy = append(busy, availability.Busy{
			AppointmentID: a.ID,
			Start:         a.StartAt,
			Minutes:       a.Duration,
		})
	}
	return busy
}

// AttemptBook admits or rejects a booking as one logical decision.
//
// The requested slot is re-validated against the freshest rules and
// appointments, then handed to the store's atomic create-if-absent. The
// pre-check catches most conflicts with a specific message; a concurrent
// insert that slips past it surfaces as ErrDuplicateBooking and collapses to
// a generic slot-unavailable rejection. A per-slot Redis lock serializes
// attempts for the same slot, but the unique index is what guarantees that at
// most one of two racing attempts succeeds.
func (s *Service) AttemptBook(ctx context.Context, req BookRequest) (*Appointment, error) {
	if req.DoctorID == uuid.Nil || req.PatientID == uuid.Nil {
		return nil, &Rejection{Reason: ReasonSlotUnavailable, Message: "doctor and patient are required"}
	}
	if req.Duration < 0 {
		return nil, &Rejection{Reason: ReasonSlotUnavailable, Message: "duration must not be negative"}
	}

	date := clock.Midnight(req.Date)
	startAt := req.Start.At(date)

	var created *Appointment

	err := s.locker.WithSlotLock(ctx, req.DoctorID, startAt, func(lockCtx context.Context) error {
		slots, resolved, err := s.computeDay(lockCtx, req.DoctorID, date)
		if err != nil {
			return err
		}

		slot, found := findSlot(slots, req.Start)
		if !found {
			return rejectSlot("requested time is outside the doctor's working hours")
		}
		if slot.Occupied {
			return rejectSlot("slot is already booked")
		}
		if !slot.Available {
			if !startAt.After(s.clk.Now()) {
				return rejectSlot("slot is in the past")
			}
			return rejectSlot("slot is no longer available")
		}

		duration := req.Duration
		if duration == 0 {
			duration = resolved.SlotDuration
		}

		appt, err := s.appts.InsertIfAbsent(lockCtx, &Appointment{
			DoctorID:  req.DoctorID,
			PatientID: req.PatientID,
			StartAt:   startAt,
			Duration:  duration,
			Status:    StatusPending,
			Notes:     req.Notes,
		})
		if err != nil {
			if errors.Is(err, ErrDuplicateBooking) {
				return rejectSlot("slot is no longer available")
			}
			return depErr("insert appointment", err)
		}

		created = appt
		return nil
	})

	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, rejectSlot("slot is currently being booked, please retry")
		}
		return nil, err
	}

	return created, nil
}

func findSlot(slots []availability.Slot, start availability.TimeOfDay) (availability.Slot, bool) {
	for _, s := range slots {
		if s.Start == start {
			return s, true
		}
	}
	return availability.Slot{}, false
}
