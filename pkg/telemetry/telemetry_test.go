package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"

	"github.com/getsentry/sentry-go"
	"go.opentelemetry.io/otel"

	"github.com/ghuser/stockledger/pkg/config"
)

func baseConfig() *config.Config {
	return &config.Config{
		ServiceName:    "test-service",
		ServiceVersion: "test",
		Environment:    "testing",
		OtelEndpoint:   "", // disabled
	}
}

func TestSetup_NoOtelEndpoint(t *testing.T) {
	shutdown, handler, err := Setup(context.Background(), baseConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if shutdown == nil {
		t.Fatal("expected non-nil shutdown")
	}
	if handler == nil {
		t.Fatal("expected non-nil metrics handler")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}
}

func TestSetup_MetricsHandlerServesPrometheusFormat(t *testing.T) {
	shutdown, handler, err := Setup(context.Background(), baseConfig())
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	defer shutdown(context.Background()) //nolint:errcheck

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", http.NoBody))

	if rr.Code != 200 {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	ct := rr.Header().Get("Content-Type")
	if !strings.Contains(ct, "text/plain") {
		t.Errorf("expected text/plain content-type, got %q", ct)
	}
}

func TestSetup_InstallsTraceContextPropagator(t *testing.T) {
	shutdown, _, err := Setup(context.Background(), baseConfig())
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	defer shutdown(context.Background()) //nolint:errcheck

	if !slices.Contains(otel.GetTextMapPropagator().Fields(), "traceparent") {
		t.Fatal("traceparent propagation not installed")
	}
}

func TestSetup_ExportsDomainCounters(t *testing.T) {
	shutdown, handler, err := Setup(context.Background(), baseConfig())
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	defer shutdown(context.Background()) //nolint:errcheck

	c, err := otel.Meter("inventory").Int64Counter("inventory.item.transitions")
	if err != nil {
		t.Fatalf("counter: %v", err)
	}
	c.Add(context.Background(), 2)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", http.NoBody))
	body := rr.Body.String()
	if !strings.Contains(body, "inventory_item_transitions") {
		t.Fatalf("expected the transitions counter in /metrics output")
	}
	if !strings.Contains(body, `service_namespace="`+Namespace+`"`) {
		t.Errorf("expected the service namespace on target_info")
	}
}

func TestScrubEvent_DropsCredentials(t *testing.T) {
	event := &sentry.Event{Request: &sentry.Request{
		URL:     "http://localhost/api/auth/login",
		Method:  http.MethodPost,
		Data:    `{"user_id":"111111","password":"password1"}`,
		Cookies: "stockledger_session=abc",
		Headers: map[string]string{
			"cookie":       "stockledger_session=abc",
			"Content-Type": "application/json",
		},
	}}

	got := scrubEvent(event)
	if got.Request.Data != "" || got.Request.Cookies != "" {
		t.Fatalf("expected body and cookies removed, got %+v", got.Request)
	}
	if _, ok := got.Request.Headers["cookie"]; ok {
		t.Error("expected the cookie header removed")
	}
	if got.Request.Headers["Content-Type"] != "application/json" {
		t.Error("unrelated headers must survive")
	}
	if got.Request.URL == "" {
		t.Error("the request URL must survive")
	}
	if scrubEvent(&sentry.Event{}) == nil {
		t.Error("events without a request pass through")
	}
}
