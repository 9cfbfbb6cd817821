// Package notifier announces finished sweeps to external channels.
package notifier

import (
	"context"
	"time"

	"github.com/newthinker/bankroll/internal/sweep"
)

// Event statuses
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Event summarizes one finished sweep.
type Event struct {
	SweepID    string        `json:"sweep_id"`
	Status     string        `json:"status"`
	Points     int           `json:"points"`
	Failed     int           `json:"failed"`
	Best       *sweep.Result `json:"best,omitempty"`
	Archived   []string      `json:"archived,omitempty"`
	Error      string        `json:"error,omitempty"`
	FinishedAt time.Time     `json:"finished_at"`
}

// NewEvent builds the event of a completed sweep report.
func NewEvent(rep *sweep.Report, archived []string, finishedAt time.Time) Event {
	return Event{
		SweepID:    rep.ID,
		Status:     StatusCompleted,
		Points:     len(rep.Outcomes),
		Failed:     len(rep.Failures()),
		Best:       rep.Best(),
		Archived:   archived,
		FinishedAt: finishedAt,
	}
}

// Notifier delivers sweep events
type Notifier interface {
	// Name returns the unique identifier for this notifier
	Name() string

	// Notify sends one event
	Notify(ctx context.Context, ev Event) error
}
