package availability

import (
	"errors"
	"fmt"
)

var ErrInvalidRule = errors.New("invalid availability rule")

// Validate rejects malformed rules at write time so resolution never has to
// tolerate them.
func Validate(r *Rule) error {
	switch r.Kind {
	case KindSpecificDate:
		if r.Date == nil {
			return fmt.Errorf("%w: specific_date rule requires a date", ErrInvalidRule)
		}
	case KindWeeklyRecurring:
		if r.DayOfWeek == nil {
			return fmt.Errorf("%w: weekly_recurring rule requires day_of_week", ErrInvalidRule)
		}
		if *r.DayOfWeek < 0 || *r.DayOfWeek > 6 {
			return fmt.Errorf("%w: day_of_week %d out of range 0-6", ErrInvalidRule, *r.DayOfWeek)
		}
	case KindMonthlyRecurring:
		if r.DayOfMonth == nil {
			return fmt.Errorf("%w: monthly_recurring rule requires day_of_month", ErrInvalidRule)
		}
		if *r.DayOfMonth < 1 || *r.DayOfMonth > 31 {
			return fmt.Errorf("%w: day_of_month %d out of range 1-31", ErrInvalidRule, *r.DayOfMonth)
		}
	case KindException:
		if r.StartDate == nil || r.EndDate == nil {
			return fmt.Errorf("%w: exception rule requires start_date and end_date", ErrInvalidRule)
		}
		if r.EndDate.Before(*r.StartDate) {
			return fmt.Errorf("%w: exception end_date before start_date", ErrInvalidRule)
		}
		if r.IsAvailable {
			return fmt.Errorf("%w: exception rules are blackouts and must be unavailable", ErrInvalidRule)
		}
		// Blackouts carry no windows or slot parameters.
		return nil
	default:
		return fmt.Errorf("%w: unknown rule kind %q", ErrInvalidRule, r.Kind)
	}

	if r.IsAvailable {
		if len(r.TimeWindows) == 0 {
			return fmt.Errorf("%w: available rule requires at least one time window", ErrInvalidRule)
		}
		if r.SlotDuration <= 0 {
			return fmt.Errorf("%w: slot_duration must be positive, got %d", ErrInvalidRule, r.SlotDuration)
		}
		if r.BufferTime < 0 {
			return fmt.Errorf("%w: buffer_time must not be negative, got %d", ErrInvalidRule, r.BufferTime)
		}
		if r.MaxAppointments < 0 {
			return fmt.Errorf("%w: max_appointments must not be negative, got %d", ErrInvalidRule, r.MaxAppointments)
		}
	}

	for _, w := range r.TimeWindows {
		if w.Start >= w.End {
			return fmt.Errorf("%w: window start %s must be before end %s", ErrInvalidRule, w.Start, w.End)
		}
	}

	return nil
}
