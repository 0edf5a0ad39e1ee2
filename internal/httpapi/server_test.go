package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/AJMedia-landers/ads-console/internal/reconcile"
)

func TestParseID(t *testing.T) {
	if _, err := parseID("abc"); err == nil {
		t.Fatalf("expected error for non-numeric id")
	}
	if _, err := parseID("0"); err == nil {
		t.Fatalf("expected error for zero id")
	}
	if _, err := parseID("-3"); err == nil {
		t.Fatalf("expected error for negative id")
	}

	id, err := parseID(" 42 ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 42 {
		t.Fatalf("expected id=42, got %d", id)
	}
}

func TestParsePositiveInt(t *testing.T) {
	value, err := parsePositiveInt("", 50, 1, 500)
	if err != nil {
		t.Fatalf("unexpected error for empty value: %v", err)
	}
	if value != 50 {
		t.Fatalf("expected default 50, got %d", value)
	}

	if _, err := parsePositiveInt("nope", 50, 1, 500); err == nil {
		t.Fatalf("expected error for non-integer")
	}
	if _, err := parsePositiveInt("501", 50, 1, 500); err == nil {
		t.Fatalf("expected error for out-of-range value")
	}
}

func TestParseBoolParam(t *testing.T) {
	for _, raw := range []string{"1", "true", "TRUE", " yes "} {
		if !parseBoolParam(raw) {
			t.Fatalf("expected %q to parse as true", raw)
		}
	}
	for _, raw := range []string{"", "0", "false", "no", "maybe"} {
		if parseBoolParam(raw) {
			t.Fatalf("expected %q to parse as false", raw)
		}
	}
}

type blockingExecutor struct {
	release chan struct{}
}

func (e *blockingExecutor) Execute(ctx context.Context) (reconcile.Stats, error) {
	<-e.release
	return reconcile.Stats{}, nil
}

func TestNormaliseEndpointSingleFlight(t *testing.T) {
	exec := &blockingExecutor{release: make(chan struct{})}
	runner := reconcile.NewRunner(exec, zerolog.Nop())
	server := NewServer(nil, nil, runner, zerolog.Nop(), Options{})
	e := server.buildEcho()

	first := httptest.NewRecorder()
	e.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/api/url-mapping/categories/normalise", nil))
	if first.Code != http.StatusAccepted {
		t.Fatalf("expected 202 on fresh start, got %d: %s", first.Code, first.Body.String())
	}

	second := httptest.NewRecorder()
	e.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/api/url-mapping/categories/normalise", nil))
	if second.Code != http.StatusOK {
		t.Fatalf("expected 200 while running, got %d: %s", second.Code, second.Body.String())
	}

	var envelope struct {
		Status string           `json:"status"`
		Data   reconcile.Status `json:"data"`
	}
	if err := json.Unmarshal(second.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Status != "success" {
		t.Fatalf("expected jsend success, got %q", envelope.Status)
	}
	if envelope.Data.State != reconcile.StateRunning {
		t.Fatalf("expected running state, got %q", envelope.Data.State)
	}

	close(exec.release)
	waitForState(t, e, reconcile.StateCompleted)
}

func TestNormaliseStatusIdle(t *testing.T) {
	runner := reconcile.NewRunner(&blockingExecutor{release: make(chan struct{})}, zerolog.Nop())
	server := NewServer(nil, nil, runner, zerolog.Nop(), Options{})
	e := server.buildEcho()

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/url-mapping/categories/normalise/status", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"idle"`) {
		t.Fatalf("expected idle status, got %s", rec.Body.String())
	}
}

func waitForState(t *testing.T, e http.Handler, want reconcile.State) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/url-mapping/categories/normalise/status", nil))

		var envelope struct {
			Data reconcile.Status `json:"data"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err == nil && envelope.Data.State == want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("run never reached state %q", want)
}
