package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/citamed/citamed-scheduling/internal/availability"
	"github.com/citamed/citamed-scheduling/internal/booking"
)

type BookAppointmentRequest struct {
	DoctorID        string `json:"doctor_id"`
	PatientID       string `json:"patient_id"`
	Date            string `json:"date"`       // YYYY-MM-DD
	StartTime       string `json:"start_time"` // HH:MM
	DurationMinutes int    `json:"duration_minutes,omitempty"`
	Notes           string `json:"notes,omitempty"`
}

type AppointmentResponse struct {
	ID        uuid.UUID `json:"id"`
	DoctorID  uuid.UUID `json:"doctor_id"`
	PatientID uuid.UUID `json:"patient_id"`
	Date      string    `json:"date"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	Duration  int       `json:"duration_minutes"`
	Status    string    `json:"status"`
	Notes     string    `json:"notes,omitempty"`
}

func toAppointmentResponse(a *booking.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:        a.ID,
		DoctorID:  a.DoctorID,
		PatientID: a.PatientID,
		Date:      a.StartAt.Format("2006-01-02"),
		StartTime: a.StartAt.Format("15:04"),
		EndTime:   a.EndAt().Format("15:04"),
		Duration:  a.Duration,
		Status:    string(a.Status),
		Notes:     a.Notes,
	}
}

type SlotResponse struct {
	Date          string     `json:"date"`
	StartTime     string     `json:"start_time"`
	EndTime       string     `json:"end_time"`
	Available     bool       `json:"is_available"`
	Occupied      bool       `json:"is_occupied"`
	AppointmentID *uuid.UUID `json:"appointment_id,omitempty"`
}

func toSlotResponses(slots []availability.Slot) []SlotResponse {
	out := make([]SlotResponse, 0, len(slots))
	for _, s := range slots {
		out = append(out, SlotResponse{
			Date:          s.Date.Format("2006-01-02"),
			StartTime:     s.Start.String(),
			EndTime:       s.End.String(),
			Available:     s.Available,
			Occupied:      s.Occupied,
			AppointmentID: s.AppointmentID,
		})
	}
	return out
}

type AvailabilityResponse struct {
	DoctorID uuid.UUID      `json:"doctor_id"`
	Date     string         `json:"date"`
	Slots    []SlotResponse `json:"slots"`
}

type AvailabilityRangeResponse struct {
	DoctorID uuid.UUID                 `json:"doctor_id"`
	Days     map[string][]SlotResponse `json:"days"`
}

type TimeWindowRequest struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Label     string `json:"label,omitempty"`
}

type CreateRuleRequest struct {
	Kind                string              `json:"kind"`
	Date                string              `json:"date,omitempty"`
	DayOfWeek           *int                `json:"day_of_week,omitempty"`
	DayOfMonth          *int                `json:"day_of_month,omitempty"`
	StartDate           string              `json:"start_date,omitempty"`
	EndDate             string              `json:"end_date,omitempty"`
	IsAvailable         bool                `json:"is_available"`
	TimeWindows         []TimeWindowRequest `json:"time_windows,omitempty"`
	SlotDurationMinutes int                 `json:"slot_duration_minutes,omitempty"`
	BufferMinutes       int                 `json:"buffer_minutes,omitempty"`
	MaxAppointments     int                 `json:"max_appointments,omitempty"`
	Priority            int                 `json:"priority,omitempty"`
	Reason              string              `json:"reason,omitempty"`
}

type RuleResponse struct {
	ID                  uuid.UUID           `json:"id"`
	DoctorID            uuid.UUID           `json:"doctor_id"`
	Kind                string              `json:"kind"`
	Date                string              `json:"date,omitempty"`
	DayOfWeek           *int                `json:"day_of_week,omitempty"`
	DayOfMonth          *int                `json:"day_of_month,omitempty"`
	StartDate           string              `json:"start_date,omitempty"`
	EndDate             string              `json:"end_date,omitempty"`
	IsAvailable         bool                `json:"is_available"`
	TimeWindows         []TimeWindowRequest `json:"time_windows,omitempty"`
	SlotDurationMinutes int                 `json:"slot_duration_minutes,omitempty"`
	BufferMinutes       int                 `json:"buffer_minutes,omitempty"`
	MaxAppointments     int                 `json:"max_appointments,omitempty"`
	Priority            int                 `json:"priority"`
	Reason              string              `json:"reason,omitempty"`
	CreatedAt           time.Time           `json:"created_at"`
}

func toRuleResponse(r *availability.Rule) RuleResponse {
	resp := RuleResponse{
		ID:                  r.ID,
		DoctorID:            r.DoctorID,
		Kind:                string(r.Kind),
		IsAvailable:         r.IsAvailable,
		SlotDurationMinutes: r.SlotDuration,
		BufferMinutes:       r.BufferTime,
		MaxAppointments:     r.MaxAppointments,
		Priority:            r.Priority,
		Reason:              r.Reason,
		CreatedAt:           r.CreatedAt,
	}
	if r.Date != nil {
		resp.Date = r.Date.Format("2006-01-02")
	}
	if r.DayOfWeek != nil {
		wd := int(*r.DayOfWeek)
		resp.DayOfWeek = &wd
	}
	resp.DayOfMonth = r.DayOfMonth
	if r.StartDate != nil {
		resp.StartDate = r.StartDate.Format("2006-01-02")
	}
	if r.EndDate != nil {
		resp.EndDate = r.EndDate.Format("2006-01-02")
	}
	for _, w := range r.TimeWindows {
		resp.TimeWindows = append(resp.TimeWindows, TimeWindowRequest{
			StartTime: w.Start.String(),
			EndTime:   w.End.String(),
			Label:     w.Label,
		})
	}
	return resp
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
