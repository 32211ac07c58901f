package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"pft/internal/app"
	"pft/internal/core"
	"pft/internal/log"
	"pft/internal/students"
	"pft/internal/view"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.tracker.Load(r.Context(), s.tracker.Snapshot().Active)
	NewHTMXResponse().BodyNode(view.TrackerPage(s.tracker.Snapshot())).Write(w)
}

// handleSwitchSection routes a navigation click. The clicked button comes
// in the trigger field.
func (s *Server) handleSwitchSection(w http.ResponseWriter, r *http.Request) {
	fields, errResp := parseFields(w, r, "trigger")
	if errResp != nil {
		errResp.Write(w)
		return
	}
	ctrl, ok := app.ControlByID(fields["trigger"])
	if !ok {
		BadRequestError("Unknown navigation control").Write(w)
		return
	}

	if err := s.tracker.SwitchSection(r.Context(), r.PathValue("name"), ctrl); err != nil {
		if errors.Is(err, app.ErrUnknownSection) {
			NotFoundError("Unknown section").Write(w)
			return
		}
		BadRequestError(err.Error()).Write(w)
		return
	}
	NewHTMXResponse().BodyNode(view.App(s.tracker.Snapshot())).Write(w)
}

// handleLoadSection re-runs one loader and returns that section only.
func (s *Server) handleLoadSection(w http.ResponseWriter, r *http.Request) {
	sec, err := app.ParseSection(r.PathValue("name"))
	if err != nil {
		NotFoundError("Unknown section").Write(w)
		return
	}
	s.tracker.Load(r.Context(), sec)
	NewHTMXResponse().BodyNode(view.SectionFragment(sec, s.tracker.Snapshot())).Write(w)
}

func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	fields, errResp := parseFields(w, r, "title", "amount")
	if errResp != nil {
		errResp.Write(w)
		return
	}
	added, err := s.tracker.AddExpense(r.Context(), app.ExpenseForm{Title: fields["title"], Amount: fields["amount"]})
	s.writeAddResult(w, r, core.KindExpense, added, err)
}

func (s *Server) handleAddIncome(w http.ResponseWriter, r *http.Request) {
	fields, errResp := parseFields(w, r, "source", "amount")
	if errResp != nil {
		errResp.Write(w)
		return
	}
	added, err := s.tracker.AddIncome(r.Context(), app.IncomeForm{Source: fields["source"], Amount: fields["amount"]})
	s.writeAddResult(w, r, core.KindIncome, added, err)
}

// writeAddResult answers an add form. Validation failures return only the
// alert with 422; anything else re-renders the whole app.
func (s *Server) writeAddResult(w http.ResponseWriter, r *http.Request, kind core.RecordKind, added bool, err error) {
	if err != nil {
		log.FromContext(r.Context()).WithComponent(string(kind)).DebugContext(r.Context(),
			"Add rejected", log.FieldOperation, log.OpValidate, log.FieldError, err)
		NewHTMXResponse().
			Status(http.StatusUnprocessableEntity).
			TriggerAlert(err.Error()).
			Retarget("#alert", "outerHTML").
			BodyNode(view.Alert(err.Error())).
			Write(w)
		return
	}

	resp := NewHTMXResponse().BodyNode(view.App(s.tracker.Snapshot()))
	if added {
		resp.TriggerRecordCreated(string(kind)).TriggerFormReset().TriggerDashboardRefresh()
	}
	resp.Write(w)
}

func (s *Server) handleDismissAlert(w http.ResponseWriter, _ *http.Request) {
	s.tracker.DismissAlert()
	NewHTMXResponse().BodyNode(view.Alert("")).Write(w)
}

func (s *Server) handleStudents(w http.ResponseWriter, r *http.Request) {
	cards := students.Cards(students.Roster())
	log.FromContext(r.Context()).WithComponent(log.ComponentStudents).DebugContext(r.Context(),
		"Rendering marks cards", log.FieldOperation, log.OpRender, log.FieldCount, len(cards))
	NewHTMXResponse().BodyNode(view.StudentsPage(cards)).Write(w)
}

// handleHealth is the liveness probe.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	})
}

// handleReady checks that the finance API answers the dashboard endpoint.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := map[string]string{}
	status, code := "ready", http.StatusOK
	if s.ready == nil {
		checks["finance_api"] = "not_configured"
		status, code = "not_ready", http.StatusServiceUnavailable
	} else if _, err := s.ready.ReadDashboard(ctx); err != nil {
		s.logger.WarnContext(ctx, "Readiness check failed", log.FieldError, err)
		checks["finance_api"] = "failed: " + err.Error()
		status, code = "not_ready", http.StatusServiceUnavailable
	} else {
		checks["finance_api"] = "ok"
	}

	writeJSON(w, code, map[string]any{"status": status, "checks": checks})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
