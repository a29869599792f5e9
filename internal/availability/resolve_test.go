package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/citamed/citamed-scheduling/internal/clock"
)

// 2026-08-31 is a Monday.
var monday = clock.Date(2026, time.August, 31)

func weeklyRule(day time.Weekday, priority int) Rule {
	return Rule{
		Kind:         KindWeeklyRecurring,
		DayOfWeek:    weekday(day),
		IsAvailable:  true,
		TimeWindows:  []TimeWindow{window("08:00", "12:00")},
		SlotDuration: 20,
		Priority:     priority,
	}
}

func TestResolveFailClosed(t *testing.T) {
	got := Resolve(nil, monday)
	assert.False(t, got.Available, "no rules must mean no availability")

	// Rules that exist but do not apply to the date behave the same.
	got = Resolve([]Rule{weeklyRule(time.Tuesday, 0)}, monday)
	assert.False(t, got.Available)
}

func TestResolveWeeklyMatch(t *testing.T) {
	got := Resolve([]Rule{weeklyRule(time.Monday, 0)}, monday)

	assert.True(t, got.Available)
	assert.Equal(t, 20, got.SlotDuration)
	assert.Len(t, got.TimeWindows, 1)
}

func TestResolveMonthlyMatch(t *testing.T) {
	rule := Rule{
		Kind:         KindMonthlyRecurring,
		DayOfMonth:   intp(31),
		IsAvailable:  true,
		TimeWindows:  []TimeWindow{window("09:00", "11:00")},
		SlotDuration: 30,
	}

	got := Resolve([]Rule{rule}, monday)
	assert.True(t, got.Available)
	assert.Equal(t, 30, got.SlotDuration)

	got = Resolve([]Rule{rule}, clock.Date(2026, time.September, 1))
	assert.False(t, got.Available)
}

func TestResolveExceptionBeatsEverything(t *testing.T) {
	blackout := Rule{
		Kind:      KindException,
		StartDate: datep(2026, time.August, 28),
		EndDate:   datep(2026, time.September, 2),
		Reason:    "congreso médico",
	}
	// The weekly rule has a huge priority; the exception still wins.
	weekly := weeklyRule(time.Monday, 1000)

	got := Resolve([]Rule{weekly, blackout}, monday)
	assert.False(t, got.Available)
	assert.Equal(t, "congreso médico", got.Notes)
}

func TestResolveExceptionRangeInclusive(t *testing.T) {
	blackout := Rule{
		Kind:      KindException,
		StartDate: datep(2026, time.August, 31),
		EndDate:   datep(2026, time.August, 31),
	}
	weekly := weeklyRule(time.Monday, 0)

	assert.False(t, Resolve([]Rule{weekly, blackout}, monday).Available)

	// The Monday one week later is outside the range.
	nextMonday := clock.Date(2026, time.September, 7)
	assert.True(t, Resolve([]Rule{weekly, blackout}, nextMonday).Available)
}

func TestResolvePriorityWins(t *testing.T) {
	low := weeklyRule(time.Monday, 0)
	high := weeklyRule(time.Monday, 5)
	high.TimeWindows = []TimeWindow{window("14:00", "18:00")}
	high.SlotDuration = 30

	got := Resolve([]Rule{low, high}, monday)
	assert.True(t, got.Available)
	assert.Equal(t, 30, got.SlotDuration)
	assert.Equal(t, window("14:00", "18:00"), got.TimeWindows[0])
}

func TestResolveSpecificityBreaksTies(t *testing.T) {
	weekly := weeklyRule(time.Monday, 1)

	specific := Rule{
		Kind:         KindSpecificDate,
		Date:         datep(2026, time.August, 31),
		IsAvailable:  true,
		TimeWindows:  []TimeWindow{window("10:00", "13:00")},
		SlotDuration: 15,
		Priority:     1,
	}

	monthly := Rule{
		Kind:         KindMonthlyRecurring,
		DayOfMonth:   intp(31),
		IsAvailable:  true,
		TimeWindows:  []TimeWindow{window("06:00", "07:00")},
		SlotDuration: 60,
		Priority:     1,
	}

	// All three apply with equal priority; the specific date wins.
	got := Resolve([]Rule{monthly, weekly, specific}, monday)
	assert.Equal(t, 15, got.SlotDuration)

	// Without it, weekly beats monthly.
	got = Resolve([]Rule{monthly, weekly}, monday)
	assert.Equal(t, 20, got.SlotDuration)
}

func TestResolveUnavailableSpecificDateOverride(t *testing.T) {
	weekly := weeklyRule(time.Monday, 0)

	dayOff := Rule{
		Kind:        KindSpecificDate,
		Date:        datep(2026, time.August, 31),
		IsAvailable: false,
		Priority:    1,
	}

	got := Resolve([]Rule{weekly, dayOff}, monday)
	assert.False(t, got.Available)
}

func TestResolveRuleDateFromUTCStore(t *testing.T) {
	// Dates scanned from DATE columns arrive as UTC midnights; resolution
	// must compare civil components, not instants.
	utcDate := time.Date(2026, time.August, 31, 0, 0, 0, 0, time.UTC)
	specific := Rule{
		Kind:         KindSpecificDate,
		Date:         &utcDate,
		IsAvailable:  true,
		TimeWindows:  []TimeWindow{window("08:00", "10:00")},
		SlotDuration: 20,
	}

	got := Resolve([]Rule{specific}, monday)
	assert.True(t, got.Available)
}
