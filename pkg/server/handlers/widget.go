package handlers

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"

	"deflect-hq/roicalc/pkg/calculator"
	"deflect-hq/roicalc/pkg/render"
	"deflect-hq/roicalc/pkg/server/types"
)

// Calculator renders the HTML widget. The optional plan and volume query
// parameters are applied the way the interactive calculator applies a plan
// pick followed by a slider move, so an over-cap volume shows the limit
// warning.
func (a *API) Calculator(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var volume *int
	if raw := q.Get("volume"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			types.WriteError(w, types.NewInvalidRequestError(
				"volume must be a non-negative integer", "volume", types.CodeInvalidValue))
			return
		}
		volume = &v
	}

	c, err := a.cfg.NewController()
	if errors.Is(err, calculator.ErrDefaultPlan) {
		writeCatalogMismatch(w, r, a.logger, err)
		return
	}
	if err != nil {
		a.logger.Error("failed to create calculator", "error", err)
		types.WriteError(w, types.NewServerError("An internal error occurred. Please try again later."))
		return
	}
	defer c.Close()

	if plan := q.Get("plan"); plan != "" {
		if err := c.SelectPlan(plan); err != nil {
			if errors.Is(err, calculator.ErrUnknownPlan) {
				writeUnknownPlan(w, err)
				return
			}
			types.WriteError(w, types.NewServerError("An internal error occurred. Please try again later."))
			return
		}
	}
	if volume != nil {
		c.SetVolume(*volume)
	}

	var buf bytes.Buffer
	if err := render.WritePage(&buf, render.NewView(c)); err != nil {
		a.logger.Error("failed to render calculator", "error", err)
		types.WriteError(w, types.NewServerError("An internal error occurred. Please try again later."))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
