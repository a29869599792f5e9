package clock

import "time"

// Colombia uses a fixed UTC-5 offset year round, there is no DST to account for.
var Bogota = time.FixedZone("America/Bogota", -5*60*60)

// Clock supplies the current instant in Colombia civil time. Business logic
// takes a Clock instead of reading the wall clock so tests can pin "now".
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

// System returns a Clock backed by the system UTC time converted to Bogota.
func System() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now().In(Bogota)
}

type fixedClock struct {
	at time.Time
}

// Fixed returns a Clock frozen at the given instant, rebased to Bogota.
func Fixed(at time.Time) Clock {
	return fixedClock{at: at.In(Bogota)}
}

func (c fixedClock) Now() time.Time {
	return c.at
}

// Midnight truncates an instant to the start of its Bogota calendar day.
func Midnight(t time.Time) time.Time {
	y, m, d := t.In(Bogota).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, Bogota)
}

// Date builds a Bogota midnight from calendar components.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, Bogota)
}

// ParseDate parses a YYYY-MM-DD string into a Bogota midnight.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, err
	}
	return Date(t.Year(), t.Month(), t.Day()), nil
}

// SameDate reports whether two instants fall on the same calendar date,
// comparing civil components as observed in each value's own location.
func SameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
