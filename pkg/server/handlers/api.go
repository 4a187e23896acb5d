package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"deflect-hq/roicalc/pkg/costmodel"
	"deflect-hq/roicalc/pkg/plans"
	"deflect-hq/roicalc/pkg/server/types"
	"deflect-hq/roicalc/pkg/sessions"
	"deflect-hq/roicalc/pkg/telemetry/logging"
	"deflect-hq/roicalc/pkg/telemetry/metrics"
)

// maxBodyBytes bounds request bodies. Every request in this API is tiny.
const maxBodyBytes = 64 << 10

// Config wires the API to its collaborators.
type Config struct {
	// Source supplies the current plan catalog.
	Source *plans.Source

	// Sessions holds calculator sessions. Session routes are not mounted
	// when nil.
	Sessions *sessions.Store

	// NewController builds a standalone controller for the HTML widget.
	NewController sessions.Factory

	Preset       costmodel.Preset
	TeaserPreset costmodel.TeaserPreset

	// FrameInterval paces the frame stream.
	FrameInterval time.Duration

	// AllowedOrigins limits WebSocket upgrades by Origin header. Empty or
	// "*" allows any origin.
	AllowedOrigins []string

	Logger    *slog.Logger
	Collector *metrics.Collector
}

// API serves the calculator endpoints.
type API struct {
	cfg      Config
	logger   *slog.Logger
	validate *validator.Validate

	closing   chan struct{}
	closeOnce sync.Once
}

// New creates the API.
func New(cfg Config) *API {
	if cfg.FrameInterval <= 0 {
		cfg.FrameInterval = 16 * time.Millisecond
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &API{
		cfg:      cfg,
		logger:   logger.With("component", "api"),
		validate: newValidator(),
		closing:  make(chan struct{}),
	}
}

// Close ends every open frame stream. Plain HTTP requests are unaffected.
func (a *API) Close() {
	a.closeOnce.Do(func() { close(a.closing) })
}

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Routes mounts every endpoint on r.
func (a *API) Routes(r chi.Router) {
	r.Get("/calculator", a.Calculator)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/plans", a.ListPlans)
		r.Post("/estimate", a.Estimate)
		r.Post("/teaser", a.Teaser)

		if a.cfg.Sessions != nil {
			r.Route("/sessions", func(r chi.Router) {
				r.Post("/", a.CreateSession)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", a.GetSession)
					r.Delete("/", a.DeleteSession)
					r.Put("/plan", a.SelectPlan)
					r.Put("/volume", a.SetVolume)
					r.Get("/frames", a.Frames)
				})
			})
		}
	})
}

// NotFound answers unmatched routes.
func NotFound(w http.ResponseWriter, r *http.Request) {
	types.WriteError(w, types.NewNotFoundError(
		fmt.Sprintf("No route for %s %s", r.Method, r.URL.Path), types.CodeRouteNotFound))
}

// MethodNotAllowed answers a known route with the wrong method.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	types.WriteError(w, types.NewErrorResponse(
		fmt.Sprintf("Method %s not allowed on %s", r.Method, r.URL.Path),
		types.ErrorTypeMethodNotAllowed, "", types.CodeMethodNotAllowed))
}

// decode reads a JSON body into v and validates it. On failure it writes the
// error response and returns false. An empty body is accepted when
// allowEmpty is set.
func (a *API) decode(w http.ResponseWriter, r *http.Request, v any, allowEmpty bool) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) && allowEmpty {
			return a.check(w, v)
		}
		types.WriteError(w, types.NewInvalidRequestError(
			fmt.Sprintf("Invalid JSON body: %v", err), "", types.CodeInvalidJSON))
		return false
	}
	return a.check(w, v)
}

func (a *API) check(w http.ResponseWriter, v any) bool {
	err := a.validate.Struct(v)
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		code := types.CodeInvalidValue
		if fe.Tag() == "required" {
			code = types.CodeMissingField
		}
		param := fe.Field()
		types.WriteError(w, types.NewInvalidRequestError(
			fmt.Sprintf("Field %s failed %s validation", param, fe.Tag()), param, code))
		return false
	}

	types.WriteError(w, types.NewInvalidRequestError(err.Error(), "", types.CodeInvalidValue))
	return false
}

func writeUnknownPlan(w http.ResponseWriter, err error) {
	types.WriteError(w, types.NewInvalidRequestError(err.Error(), "plan_id", types.CodeUnknownPlan))
}

// writeCatalogMismatch reports a loaded catalog that lacks the configured
// default plan. The client did nothing wrong, so it is a 503.
func writeCatalogMismatch(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	logging.FromContext(r.Context(), logger).Error("catalog does not match calculator settings", "error", err)
	types.WriteError(w, types.NewServiceUnavailableError(
		"Pricing catalog is unavailable, try again later", types.CodeCatalogMismatch))
}
