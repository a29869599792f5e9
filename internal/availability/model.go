package availability

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

type RuleKind string

const (
	KindSpecificDate     RuleKind = "specific_date"
	KindWeeklyRecurring  RuleKind = "weekly_recurring"
	KindMonthlyRecurring RuleKind = "monthly_recurring"
	KindException        RuleKind = "exception"
)

// TimeOfDay is a civil wall-clock time expressed as minutes from midnight.
type TimeOfDay int

// ParseTimeOfDay parses "HH:MM" into a TimeOfDay.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time format %q, want HH:MM", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", s, err)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", s, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("time %q out of range", s)
	}
	return TimeOfDay(hour*60 + minute), nil
}

func (t TimeOfDay) Hour() int   { return int(t) / 60 }
func (t TimeOfDay) Minute() int { return int(t) % 60 }

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// At places the time of day on the given calendar date, in that date's location.
func (t TimeOfDay) At(date time.Time) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), 0, 0, date.Location())
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// TimeWindow is a contiguous bookable span within a single day.
type TimeWindow struct {
	Start TimeOfDay `json:"start_time"`
	End   TimeOfDay `json:"end_time"`
	Label string    `json:"label,omitempty"`
}

// Rule is one declarative availability statement for a doctor. Exactly one of
// the kind-specific fields is set depending on Kind:
//
//	specific_date     -> Date
//	weekly_recurring  -> DayOfWeek
//	monthly_recurring -> DayOfMonth
//	exception         -> StartDate, EndDate (blackout range, inclusive)
type Rule struct {
	ID       uuid.UUID
	DoctorID uuid.UUID
	Kind     RuleKind

	Date       *time.Time
	DayOfWeek  *time.Weekday
	DayOfMonth *int
	StartDate  *time.Time
	EndDate    *time.Time

	IsAvailable     bool
	TimeWindows     []TimeWindow
	SlotDuration    int // minutes
	BufferTime      int // minutes between consecutive slots
	MaxAppointments int // 0 = no cap
	Priority        int
	Reason          string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ResolvedDay is the availability outcome for one doctor on one calendar date
// after rule resolution.
type ResolvedDay struct {
	Available       bool
	TimeWindows     []TimeWindow
	SlotDuration    int
	BufferTime      int
	MaxAppointments int
	Notes           string
}

// Slot is a candidate booking interval. Slots are derived on demand and never
// persisted; (DoctorID, Date, Start) is the natural key.
type Slot struct {
	DoctorID      uuid.UUID  `json:"doctor_id"`
	Date          time.Time  `json:"date"`
	Start         TimeOfDay  `json:"start_time"`
	End           TimeOfDay  `json:"end_time"`
	Available     bool       `json:"is_available"`
	Occupied      bool       `json:"is_occupied"`
	AppointmentID *uuid.UUID `json:"appointment_id,omitempty"`
}

// Busy is the projection of an occupying appointment that conflict filtering
// needs: an absolute start instant and a duration.
type Busy struct {
	AppointmentID uuid.UUID
	Start         time.Time
	Minutes       int
}
