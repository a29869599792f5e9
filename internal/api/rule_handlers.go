package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/citamed/citamed-scheduling/internal/availability"
	"github.com/citamed/citamed-scheduling/internal/clock"
)

func createRuleHandler(rules availability.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctorID, err := uuid.Parse(chi.URLParam(r, "doctorID"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_doctor_id", "doctorID must be a valid UUID")
			return
		}

		var req CreateRuleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		rule, err := ruleFromRequest(doctorID, req)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_rule", err.Error())
			return
		}

		if err := rules.Create(r.Context(), rule); err != nil {
			if errors.Is(err, availability.ErrInvalidRule) {
				writeError(w, http.StatusBadRequest, "invalid_rule", err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		writeJSON(w, http.StatusCreated, toRuleResponse(rule))
	}
}

func listRulesHandler(rules availability.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctorID, err := uuid.Parse(chi.URLParam(r, "doctorID"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_doctor_id", "doctorID must be a valid UUID")
			return
		}

		list, err := rules.ListByDoctor(r.Context(), doctorID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		resp := make([]RuleResponse, 0, len(list))
		for i := range list {
			resp = append(resp, toRuleResponse(&list[i]))
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

func deleteRuleHandler(rules availability.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_rule_id", "id must be a valid UUID")
			return
		}

		if err := rules.Delete(r.Context(), id); err != nil {
			if errors.Is(err, availability.ErrRuleNotFound) {
				writeError(w, http.StatusNotFound, "rule_not_found", err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func ruleFromRequest(doctorID uuid.UUID, req CreateRuleRequest) (*availability.Rule, error) {
	rule := &availability.Rule{
		DoctorID:        doctorID,
		Kind:            availability.RuleKind(req.Kind),
		IsAvailable:     req.IsAvailable,
		SlotDuration:    req.SlotDurationMinutes,
		BufferTime:      req.BufferMinutes,
		MaxAppointments: req.MaxAppointments,
		Priority:        req.Priority,
		Reason:          req.Reason,
	}

	parseDate := func(s, field string) (*time.Time, error) {
		if s == "" {
			return nil, nil
		}
		d, err := clock.ParseDate(s)
		if err != nil {
			return nil, errors.New(field + " must be YYYY-MM-DD")
		}
		return &d, nil
	}

	var err error
	if rule.Date, err = parseDate(req.Date, "date"); err != nil {
		return nil, err
	}
	if rule.StartDate, err = parseDate(req.StartDate, "start_date"); err != nil {
		return nil, err
	}
	if rule.EndDate, err = parseDate(req.EndDate, "end_date"); err != nil {
		return nil, err
	}

	if req.DayOfWeek != nil {
		wd := time.Weekday(*req.DayOfWeek)
		rule.DayOfWeek = &wd
	}
	rule.DayOfMonth = req.DayOfMonth

	for _, w := range req.TimeWindows {
		start, err := availability.ParseTimeOfDay(w.StartTime)
		if err != nil {
			return nil, err
		}
		end, err := availability.ParseTimeOfDay(w.EndTime)
		if err != nil {
			return nil, err
		}
		rule.TimeWindows = append(rule.TimeWindows, availability.TimeWindow{
			Start: start,
			End:   end,
			Label: w.Label,
		})
	}

	return rule, nil
}
