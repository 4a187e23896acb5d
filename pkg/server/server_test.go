package server

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"deflect-hq/roicalc/pkg/analytics"
	"deflect-hq/roicalc/pkg/config"
	"deflect-hq/roicalc/pkg/costmodel"
	"deflect-hq/roicalc/pkg/plans"
	"deflect-hq/roicalc/pkg/server/types"
	"deflect-hq/roicalc/pkg/telemetry/health"
	"deflect-hq/roicalc/pkg/telemetry/logging"
	"deflect-hq/roicalc/pkg/telemetry/metrics"
)

func newTestServer(t *testing.T, mutate func(*config.Config)) *Server {
	t.Helper()

	cfg := config.Default()
	cfg.Server.RateLimit.Enabled = false
	cfg.Calculator.AnimationDuration = 100 * time.Millisecond
	cfg.Analytics.Debounce = 0
	if mutate != nil {
		mutate(cfg)
	}

	s, err := New(cfg, Options{
		Logger:    logging.Discard(),
		Collector: metrics.NewCollector(cfg.Telemetry.Metrics, prometheus.NewRegistry()),
		Tracker:   analytics.Nop{},
		Build:     BuildInfo{Version: "1.2.3", Commit: "abc123", BuildTime: "2026-10-01"},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(s.store.Close)
	return s
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestServer_HealthEndpoints(t *testing.T) {
	h := newTestServer(t, nil).Handler()

	if w := do(t, h, http.MethodGet, "/health", ""); w.Code != http.StatusOK {
		t.Errorf("/health status = %d", w.Code)
	}

	w := do(t, h, http.MethodGet, "/ready", "")
	if w.Code != http.StatusOK {
		t.Fatalf("/ready status = %d", w.Code)
	}
	status := decode[health.Status](t, w)
	for _, name := range []string{"catalog", "sessions"} {
		if status.Checks[name].Status != "ok" {
			t.Errorf("check %s = %+v", name, status.Checks[name])
		}
	}

	w = do(t, h, http.MethodGet, "/version", "")
	info := decode[health.VersionInfo](t, w)
	if info.Version != "1.2.3" || info.Commit != "abc123" {
		t.Errorf("version = %+v", info)
	}

	if w := do(t, h, http.MethodGet, "/health", ""); w.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID response header")
	}
}

func TestServer_ReadyDegradedWhenSessionsFull(t *testing.T) {
	s := newTestServer(t, func(c *config.Config) { c.Sessions.MaxSessions = 1 })
	if _, err := s.Sessions().Create(context.Background()); err != nil {
		t.Fatal(err)
	}

	w := do(t, s.Handler(), http.MethodGet, "/ready", "")
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("/ready status = %d, want 503", w.Code)
	}
}

func TestServer_CatalogWithoutDefaultPlan(t *testing.T) {
	s := newTestServer(t, func(c *config.Config) { c.Calculator.DefaultPlan = "growth" })
	h := s.Handler()

	bad, err := plans.NewCatalog("no-growth", "", []plans.Plan{
		{ID: "free", Name: "Free", OverageRate: 0.12, MaxVolume: 250},
		{ID: "scale", Name: "Scale", IncludedInteractions: 2000, OverageRate: 0.08, BaseFee: 99},
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.checkCatalog(bad); err == nil {
		t.Fatal("checkCatalog() accepted a catalog without the default plan")
	}

	s.Source().Swap(bad)

	w := do(t, h, http.MethodGet, "/ready", "")
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("/ready status = %d, want 503", w.Code)
	}
	if status := decode[health.Status](t, w); status.Checks["catalog"].Status == "ok" {
		t.Errorf("catalog check = %+v, want failing", status.Checks["catalog"])
	}

	tests := []struct {
		name   string
		method string
		path   string
	}{
		{"create session", http.MethodPost, "/v1/sessions"},
		{"render calculator", http.MethodGet, "/calculator"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, tt.method, tt.path, "")
			if w.Code != http.StatusServiceUnavailable {
				t.Fatalf("status = %d, want 503", w.Code)
			}
			if resp := decode[types.ErrorResponse](t, w); resp.Error.Code != types.CodeCatalogMismatch {
				t.Errorf("code = %q, want %q", resp.Error.Code, types.CodeCatalogMismatch)
			}
		})
	}
}

func TestServer_ListPlans(t *testing.T) {
	w := do(t, newTestServer(t, nil).Handler(), http.MethodGet, "/v1/plans", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	resp := decode[types.PlansResponse](t, w)
	if resp.DefaultPlan != "growth" {
		t.Errorf("default plan = %q", resp.DefaultPlan)
	}
	if len(resp.Plans) != 4 {
		t.Fatalf("plans = %d, want 4", len(resp.Plans))
	}
	if resp.Plans[0].ID != "free" || resp.Plans[0].MaxVolume != 250 {
		t.Errorf("first plan = %+v", resp.Plans[0])
	}
}

func TestServer_Estimate(t *testing.T) {
	h := newTestServer(t, nil).Handler()

	w := do(t, h, http.MethodPost, "/v1/estimate", `{"volume":500,"plan_id":"growth"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body)
	}
	resp := decode[types.EstimateResponse](t, w)
	if !approx(resp.Breakdown.PlanCost, 25) {
		t.Errorf("PlanCost = %v, want 25", resp.Breakdown.PlanCost)
	}
	if !approx(resp.Breakdown.Savings, 1286.80) {
		t.Errorf("Savings = %v, want 1286.80", resp.Breakdown.Savings)
	}
	if resp.LimitReached || resp.Preset != costmodel.FullyLoaded.Name {
		t.Errorf("response = %+v", resp)
	}

	w = do(t, h, http.MethodPost, "/v1/estimate", `{"volume":1000,"plan_id":"free"}`)
	resp = decode[types.EstimateResponse](t, w)
	if !resp.LimitReached || resp.Breakdown.Volume != 250 {
		t.Errorf("free over cap = limit %v volume %d, want clamp to 250", resp.LimitReached, resp.Breakdown.Volume)
	}
}

func TestServer_EstimateErrors(t *testing.T) {
	h := newTestServer(t, nil).Handler()

	tests := []struct {
		name      string
		body      string
		wantCode  string
		wantParam string
	}{
		{"missing plan", `{"volume":500}`, types.CodeMissingField, "plan_id"},
		{"negative volume", `{"volume":-1,"plan_id":"growth"}`, types.CodeInvalidValue, "volume"},
		{"unknown plan", `{"volume":500,"plan_id":"enterprise"}`, types.CodeUnknownPlan, "plan_id"},
		{"unknown preset", `{"volume":500,"plan_id":"growth","preset":"cheap"}`, types.CodeUnknownPreset, "preset"},
		{"invalid json", `{"volume":`, types.CodeInvalidJSON, ""},
		{"unknown field", `{"volume":1,"plan_id":"growth","extra":true}`, types.CodeInvalidJSON, ""},
		{"empty body", ``, types.CodeInvalidJSON, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/estimate", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", w.Code)
			}
			resp := decode[types.ErrorResponse](t, w)
			if resp.Error.Type != types.ErrorTypeInvalidRequest {
				t.Errorf("type = %q", resp.Error.Type)
			}
			if resp.Error.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", resp.Error.Code, tt.wantCode)
			}
			if resp.Error.Param != tt.wantParam {
				t.Errorf("param = %q, want %q", resp.Error.Param, tt.wantParam)
			}
		})
	}
}

func TestServer_Teaser(t *testing.T) {
	w := do(t, newTestServer(t, nil).Handler(), http.MethodPost, "/v1/teaser", `{"volume":500}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	resp := decode[costmodel.TeaserResult](t, w)
	if resp.HoursSaved != 49 || resp.MoneySaved != 686 {
		t.Errorf("teaser = %+v, want 49 hours and $686", resp)
	}
}

func TestServer_SessionLifecycle(t *testing.T) {
	h := newTestServer(t, nil).Handler()

	w := do(t, h, http.MethodPost, "/v1/sessions", "")
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", w.Code, w.Body)
	}
	created := decode[types.SessionResponse](t, w)
	if created.ID == "" || created.State.Plan.ID != "growth" || created.State.Volume != 500 {
		t.Fatalf("created = %+v", created)
	}
	base := "/v1/sessions/" + created.ID

	w = do(t, h, http.MethodPut, base+"/plan", `{"plan_id":"free"}`)
	got := decode[types.SessionResponse](t, w)
	if got.State.Volume != 250 || !got.State.LimitReached {
		t.Errorf("after free: volume %d limit %v, want 250 and true", got.State.Volume, got.State.LimitReached)
	}

	w = do(t, h, http.MethodPut, base+"/volume", `{"volume":100}`)
	got = decode[types.SessionResponse](t, w)
	if got.State.Volume != 100 || got.State.LimitReached {
		t.Errorf("after volume 100: volume %d limit %v", got.State.Volume, got.State.LimitReached)
	}

	w = do(t, h, http.MethodPut, base+"/plan", `{"plan_id":"nope"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown plan status = %d", w.Code)
	}

	w = do(t, h, http.MethodPut, base+"/volume", `{}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing volume status = %d", w.Code)
	}

	w = do(t, h, http.MethodGet, base, "")
	got = decode[types.SessionResponse](t, w)
	if got.State.Plan.ID != "free" || got.State.Volume != 100 {
		t.Errorf("get = %s@%d", got.State.Plan.ID, got.State.Volume)
	}

	if w := do(t, h, http.MethodDelete, base, ""); w.Code != http.StatusNoContent {
		t.Errorf("delete status = %d", w.Code)
	}

	w = do(t, h, http.MethodGet, base, "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("get after delete status = %d", w.Code)
	}
	if resp := decode[types.ErrorResponse](t, w); resp.Error.Code != types.CodeUnknownSession {
		t.Errorf("code = %q", resp.Error.Code)
	}
}

func TestServer_CreateSessionSeeded(t *testing.T) {
	s := newTestServer(t, nil)
	h := s.Handler()

	w := do(t, h, http.MethodPost, "/v1/sessions", `{"plan_id":"scale","volume":3000}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d", w.Code)
	}
	resp := decode[types.SessionResponse](t, w)
	if resp.State.Plan.ID != "scale" || resp.State.Volume != 3000 {
		t.Errorf("seeded = %s@%d", resp.State.Plan.ID, resp.State.Volume)
	}

	w = do(t, h, http.MethodPost, "/v1/sessions", `{"plan_id":"nope"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown plan status = %d", w.Code)
	}
	if n := s.Sessions().Len(); n != 1 {
		t.Errorf("sessions = %d, a failed create must not leave a session", n)
	}
}

func TestServer_SessionLimit(t *testing.T) {
	h := newTestServer(t, func(c *config.Config) { c.Sessions.MaxSessions = 1 }).Handler()

	if w := do(t, h, http.MethodPost, "/v1/sessions", ""); w.Code != http.StatusCreated {
		t.Fatalf("first create status = %d", w.Code)
	}
	w := do(t, h, http.MethodPost, "/v1/sessions", "")
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("second create status = %d, want 503", w.Code)
	}
}

func TestServer_Calculator(t *testing.T) {
	h := newTestServer(t, nil).Handler()

	w := do(t, h, http.MethodGet, "/calculator?plan=free&volume=1000", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
	body := w.Body.String()
	if !strings.Contains(body, `id="limit-warning"`) {
		t.Error("limit warning missing for free over cap")
	}
	if !strings.Contains(body, `<option value="free" selected>`) {
		t.Error("free plan not selected")
	}

	first := do(t, h, http.MethodGet, "/calculator?volume=1500", "").Body.String()
	second := do(t, h, http.MethodGet, "/calculator?volume=1500", "").Body.String()
	if first != second {
		t.Error("identical requests rendered different pages")
	}

	for _, q := range []string{"volume=abc", "volume=-5", "plan=nope"} {
		if w := do(t, h, http.MethodGet, "/calculator?"+q, ""); w.Code != http.StatusBadRequest {
			t.Errorf("%s status = %d, want 400", q, w.Code)
		}
	}
}

func TestServer_RoutingErrors(t *testing.T) {
	h := newTestServer(t, nil).Handler()

	w := do(t, h, http.MethodGet, "/nope", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown route status = %d", w.Code)
	}
	if resp := decode[types.ErrorResponse](t, w); resp.Error.Code != types.CodeRouteNotFound {
		t.Errorf("code = %q", resp.Error.Code)
	}

	if w := do(t, h, http.MethodPost, "/calculator", ""); w.Code != http.StatusMethodNotAllowed {
		t.Errorf("wrong method status = %d", w.Code)
	}
}

func TestServer_Metrics(t *testing.T) {
	h := newTestServer(t, nil).Handler()
	do(t, h, http.MethodPost, "/v1/estimate", `{"volume":500,"plan_id":"growth"}`)

	w := do(t, h, http.MethodGet, "/metrics", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{
		`roicalc_http_requests_total{method="POST",route="/v1/estimate",status="200"} 1`,
		`roicalc_calculator_calculations_total{plan="growth",source="api"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %s", want)
		}
	}
}

func TestServer_MetricsDisabled(t *testing.T) {
	h := newTestServer(t, func(c *config.Config) { c.Telemetry.Metrics.Enabled = false }).Handler()
	if w := do(t, h, http.MethodGet, "/metrics", ""); w.Code != http.StatusNotFound {
		t.Errorf("/metrics status = %d with metrics disabled", w.Code)
	}
}

func TestServer_RateLimit(t *testing.T) {
	h := newTestServer(t, func(c *config.Config) {
		c.Server.RateLimit = config.RateLimitConfig{
			Enabled:           true,
			RequestsPerSecond: 0.001,
			Burst:             1,
			StaleAfter:        time.Minute,
		}
	}).Handler()

	if w := do(t, h, http.MethodGet, "/health", ""); w.Code != http.StatusOK {
		t.Fatalf("first request status = %d", w.Code)
	}
	w := do(t, h, http.MethodGet, "/health", "")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want 429", w.Code)
	}
	if resp := decode[types.ErrorResponse](t, w); resp.Error.Type != types.ErrorTypeRateLimitExceeded {
		t.Errorf("type = %q", resp.Error.Type)
	}
}

func TestServer_FrameStream(t *testing.T) {
	s := newTestServer(t, nil)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()
	defer s.api.Close()

	resp, err := http.Post(ts.URL+"/v1/sessions", "application/json", bytes.NewReader(nil))
	if err != nil {
		t.Fatal(err)
	}
	var created types.SessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/v1/sessions/" + created.ID + "/frames"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	read := func() types.FrameMessage {
		t.Helper()
		var msg types.FrameMessage
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read: %v", err)
		}
		return msg
	}

	first := read()
	if first.Type != types.MessageFrame || first.Frame == nil || !first.Frame.Settled {
		t.Fatalf("first message = %+v, want a settled frame", first)
	}

	if err := conn.WriteJSON(types.ClientMessage{Volume: intPtr(2000)}); err != nil {
		t.Fatal(err)
	}

	var (
		unsettled int
		last      types.FrameMessage
	)
	for {
		last = read()
		if last.Type != types.MessageFrame {
			t.Fatalf("unexpected message %+v", last)
		}
		if last.Frame.Settled {
			break
		}
		unsettled++
	}
	if unsettled == 0 {
		t.Error("no animated frames before settling")
	}
	if last.State.Volume != 2000 || last.Frame.Savings != last.State.Breakdown.Savings {
		t.Errorf("settled frame = %+v for state %+v", last.Frame, last.State.Breakdown)
	}

	if err := conn.WriteJSON(types.ClientMessage{PlanID: "nope"}); err != nil {
		t.Fatal(err)
	}
	msg := read()
	if msg.Type != types.MessageError || msg.Error == nil || msg.Error.Code != types.CodeUnknownPlan {
		t.Errorf("message = %+v, want unknown_plan error", msg)
	}
}

func TestServer_FrameStreamUnknownSession(t *testing.T) {
	h := newTestServer(t, nil).Handler()
	if w := do(t, h, http.MethodGet, "/v1/sessions/missing/frames", ""); w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestServer_StartShutdown(t *testing.T) {
	s := newTestServer(t, func(c *config.Config) {
		c.Server.ListenAddress = "127.0.0.1:0"
		c.Server.ShutdownTimeout = time.Second
	})

	errCh := make(chan error, 1)
	go func() { errCh <- s.Start(context.Background()) }()

	deadline := time.Now().Add(2 * time.Second)
	for !s.IsRunning() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if !s.IsRunning() {
		t.Fatal("server did not start")
	}

	s.Stop()
	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Start() returned %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
	if s.IsRunning() {
		t.Error("IsRunning() = true after stop")
	}
}

func TestNew_InvalidPreset(t *testing.T) {
	cfg := config.Default()
	cfg.Calculator.Preset = "cheap"
	if _, err := New(cfg, Options{Logger: logging.Discard()}); err == nil {
		t.Error("New() with unknown preset should fail")
	}
}

func intPtr(v int) *int { return &v }
