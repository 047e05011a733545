package logger

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ghuser/stockledger/pkg/config"
)

func TestNewWithWriter_RedactsCredentials(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&config.Config{LogLevel: "debug"}, &buf)

	log.InfoContext(context.Background(), "login attempt",
		"user_id", "123456",
		"password", "hunter22",
		"new_password", "letmein99",
	)

	out := buf.String()
	if strings.Contains(out, "hunter22") || strings.Contains(out, "letmein99") {
		t.Fatalf("password leaked into log: %s", out)
	}
	entry := parseLastLine(t, &buf)
	if entry["password"] != "[REDACTED]" {
		t.Errorf("expected redacted password, got %v", entry["password"])
	}
	if entry["user_id"] != "123456" {
		t.Errorf("user_id must not be redacted, got %v", entry["user_id"])
	}
}

func TestNewWithWriter_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&config.Config{LogLevel: "warn"}, &buf)

	log.Info("dropped")
	if buf.Len() != 0 {
		t.Fatalf("info must be filtered at warn level, got %s", buf.String())
	}
	log.Warn("kept")
	if !strings.Contains(buf.String(), "kept") {
		t.Fatal("warn message missing")
	}
}

func TestMiddleware_LevelFollowsStatus(t *testing.T) {
	tests := []struct {
		status int
		level  string
	}{
		{http.StatusOK, "INFO"},
		{http.StatusForbidden, "WARN"},
		{http.StatusInternalServerError, "ERROR"},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			var buf bytes.Buffer
			log := newTestLogger(&buf)
			h := Middleware(log)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte("body"))
			}))
			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", http.NoBody))

			entry := parseLastLine(t, &buf)
			if entry["level"] != tt.level {
				t.Fatalf("expected level %s, got %v", tt.level, entry["level"])
			}
			if entry["bytes"] != float64(4) {
				t.Fatalf("expected bytes=4, got %v", entry["bytes"])
			}
		})
	}
}

func TestRecovery_ReturnsJSON500(t *testing.T) {
	var buf bytes.Buffer
	log := newTestLogger(&buf)
	h := Recovery(log)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("kaboom")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", http.NoBody))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	if strings.Contains(rr.Body.String(), "kaboom") {
		t.Fatal("panic value leaked to client")
	}
	if !strings.Contains(buf.String(), "panic recovered") {
		t.Fatal("expected panic to be logged")
	}
}
