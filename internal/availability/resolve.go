package availability

import (
	"time"

	"github.com/citamed/citamed-scheduling/internal/clock"
)

// Specificity ranking used to break priority ties between applicable rules.
// A rule pinned to an exact date beats a weekly pattern, which beats a
// monthly pattern. Exceptions are handled before ranking and never compete.
func specificity(k RuleKind) int {
	switch k {
	case KindSpecificDate:
		return 3
	case KindWeeklyRecurring:
		return 2
	case KindMonthlyRecurring:
		return 1
	default:
		return 0
	}
}

// civilBefore compares calendar dates component-wise, ignoring both clock
// time and location. Rule dates scanned from Postgres DATE columns arrive as
// UTC midnights while target dates are Bogota midnights; converting either
// through the other's zone would shift the day.
func civilBefore(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	if ay != by {
		return ay < by
	}
	if am != bm {
		return am < bm
	}
	return ad < bd
}

func applies(r *Rule, date time.Time) bool {
	switch r.Kind {
	case KindSpecificDate:
		return r.Date != nil && clock.SameDate(*r.Date, date)
	case KindWeeklyRecurring:
		return r.DayOfWeek != nil && *r.DayOfWeek == date.Weekday()
	case KindMonthlyRecurring:
		return r.DayOfMonth != nil && *r.DayOfMonth == date.Day()
	case KindException:
		if r.StartDate == nil || r.EndDate == nil {
			return false
		}
		// Inclusive range, compared on civil dates.
		return !civilBefore(date, *r.StartDate) && !civilBefore(*r.EndDate, date)
	default:
		return false
	}
}

// Resolve computes the availability outcome for one calendar date from a
// doctor's full rule set.
//
// Resolution order:
//  1. keep only rules applicable to the date
//  2. any applicable exception blackout makes the whole day unavailable
//  3. otherwise the applicable rule with the highest priority wins, ties
//     broken by specificity (specific date > weekly > monthly)
//  4. no applicable rule means the day is unavailable (fail closed)
func Resolve(rules []Rule, date time.Time) ResolvedDay {
	var best *Rule

	for i := range rules {
		r := &rules[i]
		if !applies(r, date) {
			continue
		}
		if r.Kind == KindException {
			if !r.IsAvailable {
				return ResolvedDay{Available: false, Notes: r.Reason}
			}
			continue
		}
		if best == nil {
			best = r
			continue
		}
		if r.Priority > best.Priority {
			best = r
			continue
		}
		if r.Priority == best.Priority && specificity(r.Kind) > specificity(best.Kind) {
			best = r
		}
	}

	if best == nil || !best.IsAvailable {
		return ResolvedDay{Available: false}
	}

	return ResolvedDay{
		Available:       true,
		TimeWindows:     best.TimeWindows,
		SlotDuration:    best.SlotDuration,
		BufferTime:      best.BufferTime,
		MaxAppointments: best.MaxAppointments,
	}
}
