package availability

import (
	"time"

	"github.com/google/uuid"
)

// GenerateSlots expands a resolved day into concrete fixed-duration slots.
//
// Within each window the cursor starts at the window start, emits a slot of
// SlotDuration minutes, then advances by SlotDuration+BufferTime; a slot is
// only emitted while it still fits entirely inside the window. Windows are
// processed in declaration order and never produce slots that cross their
// boundary. MaxAppointments > 0 caps the total emitted for the day.
//
// Occupancy and past-cutoff flags are assigned later by FilterSlots; every
// slot starts out available.
func GenerateSlots(doctorID uuid.UUID, date time.Time, day ResolvedDay) []Slot {
	if !day.Available || day.SlotDuration <= 0 {
		return nil
	}

	step := day.SlotDuration + day.BufferTime
	var slots []Slot

	for _, w := range day.TimeWindows {
		for cursor := w.Start; int(cursor)+day.SlotDuration <= int(w.End); cursor += TimeOfDay(step) {
			if day.MaxAppointments > 0 && len(slots) >= day.MaxAppointments {
				return slots
			}
			slots = append(slots, Slot{
				DoctorID:  doctorID,
				Date:      date,
				Start:     cursor,
				End:       cursor + TimeOfDay(day.SlotDuration),
				Available: true,
			})
		}
	}

	return slots
}

// FilterSlots annotates generated slots with real availability: a slot is
// occupied when any busy interval intersects it (half-open intervals, so a
// long appointment blocks every slot it spills into), and unavailable when
// its start instant is not strictly after now. The pass is pure; inputs are
// never mutated and repeated application yields the same output.
func FilterSlots(slots []Slot, busy []Busy, now time.Time) []Slot {
	out := make([]Slot, len(slots))
	copy(out, slots)

	for i := range out {
		slotStart := out[i].Start.At(out[i].Date)
		slotEnd := out[i].End.At(out[i].Date)

		for _, b := range busy {
			busyEnd := b.Start.Add(time.Duration(b.Minutes) * time.Minute)
			if b.Start.Before(slotEnd) && slotStart.Before(busyEnd) {
				out[i].Occupied = true
				out[i].Available = false
				id := b.AppointmentID
				out[i].AppointmentID = &id
				break
			}
		}

		if !slotStart.After(now) {
			out[i].Available = false
		}
	}

	return out
}
