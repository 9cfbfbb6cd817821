package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/newthinker/bankroll/internal/notifier"
	"github.com/newthinker/bankroll/internal/sweep"
)

func TestWebhook_ImplementsNotifier(t *testing.T) {
	var _ notifier.Notifier = (*Webhook)(nil)
}

func TestWebhook_RequiresURL(t *testing.T) {
	if _, err := New("", nil); err == nil {
		t.Error("expected error for missing URL")
	}
}

func TestWebhook_Name(t *testing.T) {
	w, err := New("http://example.com/hook", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.Name() != "webhook" {
		t.Errorf("expected 'webhook', got %s", w.Name())
	}
}

func TestWebhook_Notify(t *testing.T) {
	var receivedPayload map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&receivedPayload)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	w, _ := New(server.URL, nil)

	ev := notifier.Event{
		SweepID:    "sweep-1",
		Status:     notifier.StatusCompleted,
		Points:     10,
		Failed:     1,
		Best:       &sweep.Result{CapitalPerTrade: 0.4, EndingEquity: 1520.5},
		FinishedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	if err := w.Notify(context.Background(), ev); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if receivedPayload["type"] != "sweep" {
		t.Errorf("expected type sweep, got %v", receivedPayload["type"])
	}
	if receivedPayload["sweep_id"] != "sweep-1" {
		t.Errorf("expected sweep_id sweep-1, got %v", receivedPayload["sweep_id"])
	}
	if receivedPayload["points"].(float64) != 10 {
		t.Errorf("expected points 10, got %v", receivedPayload["points"])
	}
	best, ok := receivedPayload["best"].(map[string]any)
	if !ok || best["ending_equity"].(float64) != 1520.5 {
		t.Errorf("expected best ending equity 1520.5, got %v", receivedPayload["best"])
	}
}

func TestWebhook_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	w, _ := New(server.URL, nil)

	err := w.Notify(context.Background(), notifier.Event{SweepID: "sweep-1"})
	if err == nil {
		t.Error("expected error for server error response")
	}
}

func TestWebhook_CustomHeaders(t *testing.T) {
	var receivedHeaders http.Header

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedHeaders = r.Header
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	headers := map[string]string{
		"Authorization": "Bearer test-token",
		"X-Custom":      "value",
	}
	w, _ := New(server.URL, headers)

	w.Notify(context.Background(), notifier.Event{SweepID: "sweep-1"})

	if receivedHeaders.Get("Authorization") != "Bearer test-token" {
		t.Error("expected Authorization header")
	}
	if receivedHeaders.Get("X-Custom") != "value" {
		t.Error("expected X-Custom header")
	}
	if receivedHeaders.Get("Content-Type") != "application/json" {
		t.Error("expected JSON content type")
	}
}
