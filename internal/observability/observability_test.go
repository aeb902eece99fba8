package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewLogger_ProductionIsJSON(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, "production").Info("hello", "k", "v")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("production log line is not JSON: %q", buf.String())
	}
	if entry["msg"] != "hello" || entry["k"] != "v" {
		t.Errorf("log entry = %v", entry)
	}
}

func TestNewLogger_DevelopmentLogsDebug(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, "development").Debug("details")

	if !strings.Contains(buf.String(), "msg=details") {
		t.Errorf("debug line missing from development logger: %q", buf.String())
	}
}

func TestMetricsMiddleware_RecordsRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, path := range []string{"/users/1", "/users/2"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	got := testutil.ToFloat64(m.RequestsTotal.WithLabelValues(http.MethodGet, "/users/{id}", "404"))
	if got != 2 {
		t.Errorf("requests_total{route=/users/{id},status=404} = %v, want 2", got)
	}
	if v := testutil.ToFloat64(m.InFlight); v != 0 {
		t.Errorf("in-flight gauge = %v after requests finished, want 0", v)
	}
}

func TestObserveLogin(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	m.ObserveLogin(LoginSuccess)
	m.ObserveLogin(LoginRejected)
	m.ObserveLogin(LoginRejected)

	if v := testutil.ToFloat64(m.LoginAttempts.WithLabelValues(LoginRejected)); v != 2 {
		t.Errorf("rejected logins = %v, want 2", v)
	}
	if n, err := testutil.GatherAndCount(reg, "userhub_login_attempts_total"); err != nil || n != 2 {
		t.Errorf("userhub_login_attempts_total series = %d (err %v), want 2", n, err)
	}

	var nilMetrics *Metrics
	nilMetrics.ObserveLogin(LoginSuccess)
}

func TestSetupTracing_DisabledWithoutEndpoint(t *testing.T) {
	shutdown, err := SetupTracing(context.Background(), "userhub", "", false)
	if err != nil {
		t.Fatalf("SetupTracing() unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown() unexpected error: %v", err)
	}
}
