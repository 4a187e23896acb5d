package types

import (
	"deflect-hq/roicalc/pkg/calculator"
	"deflect-hq/roicalc/pkg/costmodel"
	"deflect-hq/roicalc/pkg/plans"
)

// PlansResponse lists the current catalog.
type PlansResponse struct {
	Version     string       `json:"version"`
	DefaultPlan string       `json:"default_plan"`
	Plans       []plans.Plan `json:"plans"`
}

// EstimateRequest asks for a one-off cost breakdown.
type EstimateRequest struct {
	Volume int    `json:"volume" validate:"gte=0,lte=10000000"`
	PlanID string `json:"plan_id" validate:"required"`
	Preset string `json:"preset,omitempty"`
}

// EstimateResponse is the breakdown for an EstimateRequest. Volume above the
// plan's cap is clamped before computing, with LimitReached set.
type EstimateResponse struct {
	Plan         plans.Plan          `json:"plan"`
	Preset       string              `json:"preset"`
	LimitReached bool                `json:"limit_reached"`
	Breakdown    costmodel.Breakdown `json:"breakdown"`
}

// TeaserRequest asks for the homepage teaser figures.
type TeaserRequest struct {
	Volume int `json:"volume" validate:"gte=0,lte=10000000"`
}

// CreateSessionRequest optionally seeds a new session.
type CreateSessionRequest struct {
	PlanID string `json:"plan_id,omitempty"`
	Volume *int   `json:"volume,omitempty" validate:"omitempty,gte=0"`
}

// SelectPlanRequest switches a session's plan.
type SelectPlanRequest struct {
	PlanID string `json:"plan_id" validate:"required"`
}

// SetVolumeRequest moves a session's slider.
type SetVolumeRequest struct {
	Volume *int `json:"volume" validate:"required,gte=0"`
}

// SessionResponse is a session's state with the frame displayed now.
type SessionResponse struct {
	ID    string           `json:"id"`
	State calculator.State `json:"state"`
	Frame calculator.Frame `json:"frame"`
}

// Frame stream message types.
const (
	MessageFrame = "frame"
	MessageError = "error"
)

// FrameMessage is sent by the server on the frame stream.
type FrameMessage struct {
	Type  string            `json:"type"`
	State *calculator.State `json:"state,omitempty"`
	Frame *calculator.Frame `json:"frame,omitempty"`
	Error *ErrorDetail      `json:"error,omitempty"`
}

// ClientMessage is sent by the client on the frame stream. Either field may
// be set; a plan change is applied before a volume change.
type ClientMessage struct {
	PlanID string `json:"plan_id,omitempty"`
	Volume *int   `json:"volume,omitempty"`
}
