package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/citamed/citamed-scheduling/internal/availability"
	"github.com/citamed/citamed-scheduling/internal/booking"
	"github.com/citamed/citamed-scheduling/internal/clock"
)

type stubService struct {
	slots   []availability.Slot
	appt    *booking.Appointment
	err     error
	lastReq booking.BookRequest
}

func (s *stubService) ComputeAvailability(_ context.Context, doctorID uuid.UUID, date time.Time) ([]availability.Slot, error) {
	return s.slots, s.err
}

func (s *stubService) ComputeAvailabilityRange(_ context.Context, doctorID uuid.UUID, from, to time.Time) (map[string][]availability.Slot, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make(map[string][]availability.Slot)
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		out[d.Format("2006-01-02")] = s.slots
	}
	return out, nil
}

func (s *stubService) AttemptBook(_ context.Context, req booking.BookRequest) (*booking.Appointment, error) {
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return s.appt, nil
}

type stubRules struct {
	rules     []availability.Rule
	createErr error
	deleteErr error
}

func (s *stubRules) Create(_ context.Context, r *availability.Rule) error {
	if s.createErr != nil {
		return s.createErr
	}
	r.ID = uuid.New()
	s.rules = append(s.rules, *r)
	return nil
}

func (s *stubRules) GetByID(_ context.Context, _ uuid.UUID) (*availability.Rule, error) {
	return nil, availability.ErrRuleNotFound
}

func (s *stubRules) ListByDoctor(_ context.Context, _ uuid.UUID) ([]availability.Rule, error) {
	return s.rules, nil
}

func (s *stubRules) Delete(_ context.Context, _ uuid.UUID) error { return s.deleteErr }

func newTestRouter(svc BookingService, rules availability.Repository) http.Handler {
	return NewRouter(RouterConfig{
		Service: svc,
		Rules:   rules,
		Env:     "test",
		Version: "test",
	})
}

func testSlot(t *testing.T) availability.Slot {
	t.Helper()
	start, err := availability.ParseTimeOfDay("08:00")
	if err != nil {
		t.Fatalf("parse time: %v", err)
	}
	return availability.Slot{
		DoctorID:  uuid.New(),
		Date:      clock.Date(2026, time.August, 31),
		Start:     start,
		End:       start + 20,
		Available: true,
	}
}

func TestAvailabilityHandler(t *testing.T) {
	router := newTestRouter(&stubService{slots: []availability.Slot{testSlot(t)}}, &stubRules{})

	url := fmt.Sprintf("/doctors/%s/availability?date=2026-08-31", uuid.New())
	req := httptest.NewRequest(http.MethodGet, url, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp AvailabilityResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Slots) != 1 {
		t.Fatalf("expected 1 slot, got %d", len(resp.Slots))
	}
	if resp.Slots[0].StartTime != "08:00" || resp.Slots[0].EndTime != "08:20" {
		t.Errorf("wrong slot times: %+v", resp.Slots[0])
	}
}

func TestAvailabilityHandlerBadInput(t *testing.T) {
	router := newTestRouter(&stubService{}, &stubRules{})

	cases := []string{
		"/doctors/not-a-uuid/availability?date=2026-08-31",
		fmt.Sprintf("/doctors/%s/availability?date=31-08-2026", uuid.New()),
		fmt.Sprintf("/doctors/%s/availability", uuid.New()),
	}
	for _, url := range cases {
		req := httptest.NewRequest(http.MethodGet, url, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", url, rec.Code)
		}
	}
}

func TestBookAppointmentHandler(t *testing.T) {
	doctorID := uuid.New()
	patientID := uuid.New()
	startAt := clock.Date(2026, time.August, 31).Add(8 * time.Hour)

	svc := &stubService{appt: &booking.Appointment{
		ID:        uuid.New(),
		DoctorID:  doctorID,
		PatientID: patientID,
		StartAt:   startAt,
		Duration:  20,
		Status:    booking.StatusPending,
	}}
	router := newTestRouter(svc, &stubRules{})

	body, _ := json.Marshal(BookAppointmentRequest{
		DoctorID:  doctorID.String(),
		PatientID: patientID.String(),
		Date:      "2026-08-31",
		StartTime: "08:00",
	})
	req := httptest.NewRequest(http.MethodPost, "/appointments", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp AppointmentResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "pending" || resp.StartTime != "08:00" {
		t.Errorf("unexpected response: %+v", resp)
	}

	if svc.lastReq.Start.String() != "08:00" {
		t.Errorf("service received wrong start time: %s", svc.lastReq.Start)
	}
}

func TestBookAppointmentHandlerRejection(t *testing.T) {
	svc := &stubService{err: &booking.Rejection{
		Reason:  booking.ReasonSlotUnavailable,
		Message: "slot is already booked",
	}}
	router := newTestRouter(svc, &stubRules{})

	body, _ := json.Marshal(BookAppointmentRequest{
		DoctorID:  uuid.New().String(),
		PatientID: uuid.New().String(),
		Date:      "2026-08-31",
		StartTime: "08:00",
	})
	req := httptest.NewRequest(http.MethodPost, "/appointments", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}

	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Error != "slot_unavailable" {
		t.Errorf("expected slot_unavailable, got %q", resp.Error)
	}
	if resp.Details != "slot is already booked" {
		t.Errorf("rejection message must pass through, got %q", resp.Details)
	}
}

func TestBookAppointmentHandlerDependencyFailure(t *testing.T) {
	svc := &stubService{err: fmt.Errorf("%w: load appointments: timeout", booking.ErrDependencyUnavailable)}
	router := newTestRouter(svc, &stubRules{})

	body, _ := json.Marshal(BookAppointmentRequest{
		DoctorID:  uuid.New().String(),
		PatientID: uuid.New().String(),
		Date:      "2026-08-31",
		StartTime: "08:00",
	})
	req := httptest.NewRequest(http.MethodPost, "/appointments", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestCreateRuleHandler(t *testing.T) {
	rules := &stubRules{}
	router := newTestRouter(&stubService{}, rules)

	doctorID := uuid.New()
	body, _ := json.Marshal(CreateRuleRequest{
		Kind:        "weekly_recurring",
		DayOfWeek:   intPtr(1),
		IsAvailable: true,
		TimeWindows: []TimeWindowRequest{
			{StartTime: "08:00", EndTime: "12:00"},
		},
		SlotDurationMinutes: 20,
	})
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/doctors/%s/availability-rules", doctorID), bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(rules.rules) != 1 {
		t.Fatalf("rule was not stored")
	}
	if rules.rules[0].DoctorID != doctorID {
		t.Errorf("rule stored with wrong doctor")
	}
}

func TestCreateRuleHandlerInvalidRule(t *testing.T) {
	rules := &stubRules{createErr: fmt.Errorf("%w: window start 12:00 must be before end 08:00", availability.ErrInvalidRule)}
	router := newTestRouter(&stubService{}, rules)

	body, _ := json.Marshal(CreateRuleRequest{
		Kind:        "weekly_recurring",
		DayOfWeek:   intPtr(1),
		IsAvailable: true,
		TimeWindows: []TimeWindowRequest{
			{StartTime: "12:00", EndTime: "08:00"},
		},
		SlotDurationMinutes: 20,
	})
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/doctors/%s/availability-rules", uuid.New()), bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Error != "invalid_rule" {
		t.Errorf("expected invalid_rule, got %q", resp.Error)
	}
}

func TestDeleteRuleHandlerNotFound(t *testing.T) {
	rules := &stubRules{deleteErr: availability.ErrRuleNotFound}
	router := newTestRouter(&stubService{}, rules)

	req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/availability-rules/%s", uuid.New()), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestAvailabilityRangeHandlerValidation(t *testing.T) {
	router := newTestRouter(&stubService{}, &stubRules{})

	url := fmt.Sprintf("/doctors/%s/availability/range?from=2026-09-01&to=2026-08-01", uuid.New())
	req := httptest.NewRequest(http.MethodGet, url, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for inverted range, got %d", rec.Code)
	}
}

func intPtr(n int) *int { return &n }
