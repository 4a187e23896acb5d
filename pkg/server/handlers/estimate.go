package handlers

import (
	"net/http"

	"deflect-hq/roicalc/pkg/costmodel"
	"deflect-hq/roicalc/pkg/server/types"
	"deflect-hq/roicalc/pkg/telemetry/metrics"
)

// ListPlans returns the current catalog.
func (a *API) ListPlans(w http.ResponseWriter, r *http.Request) {
	catalog := a.cfg.Source.Catalog()
	types.WriteJSON(w, http.StatusOK, types.PlansResponse{
		Version:     catalog.Version(),
		DefaultPlan: catalog.Default().ID,
		Plans:       catalog.Plans(),
	})
}

// Estimate computes a one-off breakdown. Volume above the plan's cap is
// clamped to it, mirroring the interactive calculator.
func (a *API) Estimate(w http.ResponseWriter, r *http.Request) {
	var req types.EstimateRequest
	if !a.decode(w, r, &req, false) {
		return
	}

	plan, err := a.cfg.Source.Catalog().Lookup(req.PlanID)
	if err != nil {
		writeUnknownPlan(w, err)
		return
	}

	preset := a.cfg.Preset
	if req.Preset != "" {
		if preset, err = costmodel.PresetByName(req.Preset); err != nil {
			types.WriteError(w, types.NewInvalidRequestError(err.Error(), "preset", types.CodeUnknownPreset))
			return
		}
	}

	volume := plan.Clamp(req.Volume)
	limitReached := volume != req.Volume
	if limitReached {
		a.cfg.Collector.RecordClamp(plan.ID, metrics.ClampPlanCap)
	}

	b := costmodel.Compute(volume, plan, preset)
	a.cfg.Collector.RecordCalculation(plan.ID, metrics.SourceAPI, b.Savings)

	types.WriteJSON(w, http.StatusOK, types.EstimateResponse{
		Plan:         plan,
		Preset:       preset.Name,
		LimitReached: limitReached,
		Breakdown:    b,
	})
}

// Teaser computes the homepage teaser figures.
func (a *API) Teaser(w http.ResponseWriter, r *http.Request) {
	var req types.TeaserRequest
	if !a.decode(w, r, &req, false) {
		return
	}
	res := costmodel.TeaserSavings(req.Volume, a.cfg.TeaserPreset)
	a.cfg.Collector.RecordCalculation("teaser", metrics.SourceTeaser, float64(res.MoneySaved))
	types.WriteJSON(w, http.StatusOK, res)
}
