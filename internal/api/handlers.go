package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/citamed/citamed-scheduling/internal/availability"
	"github.com/citamed/citamed-scheduling/internal/booking"
	"github.com/citamed/citamed-scheduling/internal/clock"
)

// BookingService is the slice of the booking service the handlers need;
// tests substitute a stub.
type BookingService interface {
	ComputeAvailability(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]availability.Slot, error)
	ComputeAvailabilityRange(ctx context.Context, doctorID uuid.UUID, from, to time.Time) (map[string][]availability.Slot, error)
	AttemptBook(ctx context.Context, req booking.BookRequest) (*booking.Appointment, error)
}

func availabilityHandler(svc BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctorID, err := uuid.Parse(chi.URLParam(r, "doctorID"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_doctor_id", "doctorID must be a valid UUID")
			return
		}

		date, err := clock.ParseDate(r.URL.Query().Get("date"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD")
			return
		}

		slots, err := svc.ComputeAvailability(r.Context(), doctorID, date)
		if err != nil {
			handleServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, AvailabilityResponse{
			DoctorID: doctorID,
			Date:     date.Format("2006-01-02"),
			Slots:    toSlotResponses(slots),
		})
	}
}

func availabilityRangeHandler(svc BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctorID, err := uuid.Parse(chi.URLParam(r, "doctorID"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_doctor_id", "doctorID must be a valid UUID")
			return
		}

		from, err := clock.ParseDate(r.URL.Query().Get("from"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", "from must be YYYY-MM-DD")
			return
		}
		to, err := clock.ParseDate(r.URL.Query().Get("to"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", "to must be YYYY-MM-DD")
			return
		}
		if to.Before(from) {
			writeError(w, http.StatusBadRequest, "invalid_range", "to must not be before from")
			return
		}
		if to.Sub(from) > 62*24*time.Hour {
			writeError(w, http.StatusBadRequest, "invalid_range", "range must not exceed two months")
			return
		}

		days, err := svc.ComputeAvailabilityRange(r.Context(), doctorID, from, to)
		if err != nil {
			handleServiceError(w, err)
			return
		}

		resp := AvailabilityRangeResponse{
			DoctorID: doctorID,
			Days:     make(map[string][]SlotResponse, len(days)),
		}
		for date, slots := range days {
			resp.Days[date] = toSlotResponses(slots)
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

func bookAppointmentHandler(svc BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req BookAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		doctorID, err := uuid.Parse(req.DoctorID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_doctor_id", "doctor_id must be a valid UUID")
			return
		}
		patientID, err := uuid.Parse(req.PatientID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_patient_id", "patient_id must be a valid UUID")
			return
		}
		date, err := clock.ParseDate(req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD")
			return
		}
		start, err := availability.ParseTimeOfDay(req.StartTime)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_start_time", "start_time must be HH:MM")
			return
		}
		if req.DurationMinutes < 0 {
			writeError(w, http.StatusBadRequest, "invalid_duration", "duration_minutes must not be negative")
			return
		}

		appt, err := svc.AttemptBook(r.Context(), booking.BookRequest{
			DoctorID:  doctorID,
			PatientID: patientID,
			Date:      date,
			Start:     start,
			Duration:  req.DurationMinutes,
			Notes:     req.Notes,
		})
		if err != nil {
			handleServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toAppointmentResponse(appt))
	}
}

func handleServiceError(w http.ResponseWriter, err error) {
	var rejection *booking.Rejection
	switch {
	case errors.As(err, &rejection):
		writeError(w, http.StatusConflict, "slot_unavailable", rejection.Message)
	case errors.Is(err, booking.ErrDependencyUnavailable):
		writeError(w, http.StatusServiceUnavailable, "dependency_unavailable", "a backing service did not respond, please retry")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
