package notifier

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/newthinker/bankroll/internal/sweep"
)

type mockNotifier struct {
	name       string
	calls      int
	last       Event
	shouldFail bool
}

func (m *mockNotifier) Name() string { return m.name }

func (m *mockNotifier) Notify(ctx context.Context, ev Event) error {
	m.calls++
	m.last = ev
	if m.shouldFail {
		return errors.New("notify failed")
	}
	return nil
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()

	mock := &mockNotifier{name: "test"}
	if err := r.Register(mock); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Duplicate registration should fail
	if err := r.Register(mock); err == nil {
		t.Error("expected error for duplicate registration")
	}
}

func TestRegistry_Get(t *testing.T) {
	r := NewRegistry()
	r.Register(&mockNotifier{name: "test"})

	n, err := r.Get("test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.Name() != "test" {
		t.Errorf("expected name 'test', got %s", n.Name())
	}

	if _, err := r.Get("missing"); err == nil {
		t.Error("expected error for missing notifier")
	}
}

func TestRegistry_Names(t *testing.T) {
	r := NewRegistry()
	r.Register(&mockNotifier{name: "webhook"})
	r.Register(&mockNotifier{name: "telegram"})

	names := r.Names()
	if len(names) != 2 || names[0] != "telegram" || names[1] != "webhook" {
		t.Errorf("expected [telegram webhook], got %v", names)
	}
}

func TestRegistry_NotifyAll(t *testing.T) {
	r := NewRegistry()

	ok := &mockNotifier{name: "ok"}
	failing := &mockNotifier{name: "failing", shouldFail: true}
	r.Register(ok)
	r.Register(failing)

	errs := r.NotifyAll(context.Background(), Event{SweepID: "sweep-1"})

	if ok.calls != 1 || failing.calls != 1 {
		t.Errorf("expected every notifier called once, got %d and %d", ok.calls, failing.calls)
	}
	if ok.last.SweepID != "sweep-1" {
		t.Errorf("expected sweep-1, got %s", ok.last.SweepID)
	}
	if len(errs) != 1 || errs["failing"] == nil {
		t.Errorf("expected one error keyed by 'failing', got %v", errs)
	}
}

func TestNewEvent(t *testing.T) {
	rep := &sweep.Report{
		ID: "sweep-1",
		Outcomes: []sweep.Outcome{
			{Point: sweep.Point{CapitalPerTrade: 0.5}, Result: &sweep.Result{CapitalPerTrade: 0.5, EndingEquity: 1100}},
			{Point: sweep.Point{CapitalPerTrade: 1.0}, Result: &sweep.Result{CapitalPerTrade: 1.0, EndingEquity: 1200}},
			{Point: sweep.Point{CapitalPerTrade: 1.5}, Err: errors.New("boom")},
		},
	}
	at := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	ev := NewEvent(rep, []string{"sweeps/sweep-1/results.csv"}, at)

	if ev.Status != StatusCompleted || ev.Points != 3 || ev.Failed != 1 {
		t.Errorf("unexpected event counts: %+v", ev)
	}
	if ev.Best == nil || ev.Best.EndingEquity != 1200 {
		t.Errorf("expected best ending equity 1200, got %+v", ev.Best)
	}
	if !ev.FinishedAt.Equal(at) || len(ev.Archived) != 1 {
		t.Errorf("unexpected event: %+v", ev)
	}
}
