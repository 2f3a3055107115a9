package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	cfgpkg "github.com/taoyao-code/imu-node/internal/config"
	"github.com/taoyao-code/imu-node/internal/health"
	"github.com/taoyao-code/imu-node/internal/imu"
	appmetrics "github.com/taoyao-code/imu-node/internal/metrics"
)

type staticChecker struct{ status health.Status }

func (c staticChecker) Name() string { return "static" }
func (c staticChecker) Check(ctx context.Context) health.CheckResult {
	return health.CheckResult{Status: c.status}
}

func newTestServer(status health.Status) *Server {
	cfg := cfgpkg.HTTPConfig{Addr: ":0", ReadTimeout: time.Second, WriteTimeout: time.Second}
	reg := appmetrics.NewRegistry()
	agg := health.NewAggregator(0)
	agg.Register(staticChecker{status: status})
	state := imu.NewTelemetryState(imu.DefaultIntegratorConfig(), func() uint64 { return 1_000_000 })
	return New(cfg, "/metrics", appmetrics.Handler(reg), agg, state)
}

func TestHealthzReadyzMetrics(t *testing.T) {
	srv := newTestServer(health.StatusHealthy)

	// healthz
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	srv.srv.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("/healthz code=%d", rr.Code)
	}

	// readyz ok
	rr = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/readyz", nil)
	srv.srv.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("/readyz code=%d", rr.Code)
	}

	// metrics
	rr = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	srv.srv.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("/metrics code=%d", rr.Code)
	}
}

func TestReadyzNotReady(t *testing.T) {
	srv := newTestServer(health.StatusUnhealthy)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	srv.srv.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("/readyz not-ready code=%d", rr.Code)
	}
}

func TestHealthReport(t *testing.T) {
	srv := newTestServer(health.StatusDegraded)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	srv.srv.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("/health degraded code=%d", rr.Code)
	}
	var rep health.Report
	if err := json.Unmarshal(rr.Body.Bytes(), &rep); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if rep.Status != health.StatusDegraded {
		t.Fatalf("report status=%s", rep.Status)
	}
	if _, ok := rep.Checks["static"]; !ok {
		t.Fatalf("report missing check entry: %+v", rep.Checks)
	}
}

func TestTelemetryEndpoint(t *testing.T) {
	srv := newTestServer(health.StatusHealthy)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/telemetry", nil)
	srv.srv.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("/api/v1/telemetry code=%d", rr.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	// 无样本时时间戳回退到注入时钟
	if body["micros"].(float64) != 1_000_000 {
		t.Fatalf("micros=%v", body["micros"])
	}
	for _, key := range []string{"roll", "pitch", "yaw", "velocity", "accel"} {
		if _, ok := body[key]; !ok {
			t.Fatalf("missing field %q", key)
		}
	}
}
