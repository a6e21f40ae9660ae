package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/wealthpath/edu-gateway/internal/curriculum"
	"github.com/wealthpath/edu-gateway/internal/education"
	"github.com/wealthpath/edu-gateway/internal/identity"
	"github.com/wealthpath/edu-gateway/internal/timeproof"
)

// MountEducation wires the learner-facing education surface onto a router
// that already carries identity middleware.
func MountEducation(r chi.Router, gw *education.Gateway) {
	r.Post("/{tutorial}/started", MarkStartedHandler(gw))
	r.Get("/{tutorial}/dashboard", DashboardHandler(gw))
	r.Get("/{tutorial}/units/{unit}", UnitStateHandler(gw))
	r.Post("/{tutorial}/units/{unit}/tasks/{task}", SubmitTaskHandler(gw))
}

// MountTimeProof exposes token issuance from the in-process time-tracking
// collaborator. Deployments with an external time logger leave this unmounted.
func MountTimeProof(r chi.Router, svc timeproof.Collaborator) {
	r.Post("/{tutorial}/units/{unit}/tasks/{task}/timeproof", IssueTimeProofHandler(svc))
}

func MarkStartedHandler(gw *education.Gateway) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tutorial, err := curriculum.ParseTutorial(chi.URLParam(r, "tutorial"))
		if err != nil {
			http.Error(w, "unknown tutorial", http.StatusNotFound)
			return
		}
		userID := identity.UserIDFromContext(r.Context())
		if err := gw.MarkStarted(r.Context(), userID, tutorial); err != nil {
			writeError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
	}
}

func DashboardHandler(gw *education.Gateway) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tutorial, err := curriculum.ParseTutorial(chi.URLParam(r, "tutorial"))
		if err != nil {
			http.Error(w, "unknown tutorial", http.StatusNotFound)
			return
		}
		userID := identity.UserIDFromContext(r.Context())
		state, err := gw.GetDashboard(r.Context(), userID, tutorial)
		if err != nil {
			writeError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(state)
	}
}

func UnitStateHandler(gw *education.Gateway) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tutorial, err := curriculum.ParseTutorial(chi.URLParam(r, "tutorial"))
		if err != nil {
			http.Error(w, "unknown tutorial", http.StatusNotFound)
			return
		}
		unit, err := strconv.Atoi(chi.URLParam(r, "unit"))
		if err != nil {
			http.Error(w, "unit must be a number", http.StatusBadRequest)
			return
		}
		userID := identity.UserIDFromContext(r.Context())
		up, err := gw.GetUnitState(r.Context(), userID, tutorial, unit)
		if err != nil {
			writeError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(up)
	}
}

func SubmitTaskHandler(gw *education.Gateway) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tutorial, err := curriculum.ParseTutorial(chi.URLParam(r, "tutorial"))
		if err != nil {
			http.Error(w, "unknown tutorial", http.StatusNotFound)
			return
		}
		unit, err := strconv.Atoi(chi.URLParam(r, "unit"))
		if err != nil {
			http.Error(w, "unit must be a number", http.StatusBadRequest)
			return
		}
		task, err := strconv.Atoi(chi.URLParam(r, "task"))
		if err != nil {
			http.Error(w, "task must be a number", http.StatusBadRequest)
			return
		}
		var req struct {
			Type      string          `json:"type,omitempty"`
			TimeToken string          `json:"time_token"`
			IsRetry   bool            `json:"is_retry"`
			Payload   json.RawMessage `json:"payload,omitempty"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		outcome, err := gw.SubmitTask(r.Context(), education.TaskSubmission{
			UserID:    identity.UserIDFromContext(r.Context()),
			Tutorial:  tutorial,
			Unit:      unit,
			Task:      task,
			Type:      curriculum.TaskType(req.Type),
			Payload:   req.Payload,
			TimeToken: req.TimeToken,
			IsRetry:   req.IsRetry,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(outcome)
	}
}

func IssueTimeProofHandler(svc timeproof.Collaborator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tutorial, err := curriculum.ParseTutorial(chi.URLParam(r, "tutorial"))
		if err != nil {
			http.Error(w, "unknown tutorial", http.StatusNotFound)
			return
		}
		unit, err := strconv.Atoi(chi.URLParam(r, "unit"))
		if err != nil {
			http.Error(w, "unit must be a number", http.StatusBadRequest)
			return
		}
		task, err := strconv.Atoi(chi.URLParam(r, "task"))
		if err != nil {
			http.Error(w, "task must be a number", http.StatusBadRequest)
			return
		}
		token, err := svc.IssueTimeProof(r.Context(), timeproof.Binding{Tutorial: tutorial, Unit: unit, Task: task})
		if err != nil {
			http.Error(w, "issue token", http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"time_token": token})
	}
}
