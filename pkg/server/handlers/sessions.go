package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"deflect-hq/roicalc/pkg/calculator"
	"deflect-hq/roicalc/pkg/server/types"
	"deflect-hq/roicalc/pkg/sessions"
	"deflect-hq/roicalc/pkg/telemetry/logging"
)

// CreateSession starts a calculator session, optionally on a given plan and
// volume.
func (a *API) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req types.CreateSessionRequest
	if !a.decode(w, r, &req, true) {
		return
	}

	s, err := a.cfg.Sessions.Create(r.Context())
	if err != nil {
		a.writeSessionError(w, r, err)
		return
	}

	var resp types.SessionResponse
	err = a.cfg.Sessions.Do(s.ID, func(c *calculator.Controller) error {
		if req.PlanID != "" {
			if err := c.SelectPlan(req.PlanID); err != nil {
				return err
			}
		}
		if req.Volume != nil {
			c.SetVolume(*req.Volume)
		}
		resp = sessionResponse(s.ID, c)
		return nil
	})
	if err != nil {
		_ = a.cfg.Sessions.Delete(s.ID)
		a.writeSessionError(w, r, err)
		return
	}

	logging.FromContext(logging.WithSession(r.Context(), s.ID), a.logger).Info("session created",
		"plan", resp.State.Plan.ID,
		"volume", resp.State.Volume,
	)
	types.WriteJSON(w, http.StatusCreated, resp)
}

// GetSession returns the session's state and the frame displayed now.
func (a *API) GetSession(w http.ResponseWriter, r *http.Request) {
	a.withSession(w, r, func(*calculator.Controller) error { return nil })
}

// SelectPlan switches the session's plan.
func (a *API) SelectPlan(w http.ResponseWriter, r *http.Request) {
	var req types.SelectPlanRequest
	if !a.decode(w, r, &req, false) {
		return
	}
	a.withSession(w, r, func(c *calculator.Controller) error {
		return c.SelectPlan(req.PlanID)
	})
}

// SetVolume moves the session's slider.
func (a *API) SetVolume(w http.ResponseWriter, r *http.Request) {
	var req types.SetVolumeRequest
	if !a.decode(w, r, &req, false) {
		return
	}
	a.withSession(w, r, func(c *calculator.Controller) error {
		c.SetVolume(*req.Volume)
		return nil
	})
}

// DeleteSession discards the session.
func (a *API) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := a.cfg.Sessions.Delete(chi.URLParam(r, "id")); err != nil {
		a.writeSessionError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// withSession applies fn to the session named in the URL and writes the
// resulting state.
func (a *API) withSession(w http.ResponseWriter, r *http.Request, fn func(*calculator.Controller) error) {
	id := chi.URLParam(r, "id")

	var resp types.SessionResponse
	err := a.cfg.Sessions.Do(id, func(c *calculator.Controller) error {
		if err := fn(c); err != nil {
			return err
		}
		resp = sessionResponse(id, c)
		return nil
	})
	if err != nil {
		a.writeSessionError(w, r, err)
		return
	}
	types.WriteJSON(w, http.StatusOK, resp)
}

func sessionResponse(id string, c *calculator.Controller) types.SessionResponse {
	return types.SessionResponse{
		ID:    id,
		State: c.State(),
		Frame: c.Current(),
	}
}

func (a *API) writeSessionError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, sessions.ErrNotFound):
		types.WriteError(w, types.NewNotFoundError("Session not found or expired", types.CodeUnknownSession))
	case errors.Is(err, sessions.ErrFull):
		types.WriteError(w, types.NewServiceUnavailableError("Too many active sessions, try again later", types.CodeSessionLimit))
	case errors.Is(err, calculator.ErrDefaultPlan):
		writeCatalogMismatch(w, r, a.logger, err)
	case errors.Is(err, calculator.ErrUnknownPlan):
		writeUnknownPlan(w, err)
	default:
		logging.FromContext(r.Context(), a.logger).Error("session operation failed", "error", err)
		types.WriteError(w, types.NewServerError("An internal error occurred. Please try again later."))
	}
}
