package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/newthinker/bankroll/internal/api/job"
	"github.com/newthinker/bankroll/internal/api/response"
	"github.com/newthinker/bankroll/internal/app"
	"github.com/newthinker/bankroll/internal/core"
	"github.com/newthinker/bankroll/internal/sweep"
	"go.uber.org/zap"
)

const (
	sweepTimeout = 10 * time.Minute
	jobTypeSweep = "sweep"
)

// SweepRequest is the request body for starting a sweep. Omitted fields fall
// back to the server configuration.
type SweepRequest struct {
	CapitalPerTrade      *sweep.Range `json:"capital_per_trade,omitempty"`
	LossStreakThresholds []int        `json:"loss_streak_thresholds,omitempty"`
	StartingCapital      *float64     `json:"starting_capital,omitempty"`
	MarginFactor         *float64     `json:"margin_factor,omitempty"`
	LossStreakThreshold  *int         `json:"loss_streak_threshold,omitempty"`
	Workers              int          `json:"workers,omitempty"`
}

// SweepJobResult is stored on a completed sweep job.
type SweepJobResult struct {
	SweepID  string         `json:"sweep_id"`
	Results  []sweep.Result `json:"results"`
	Best     *sweep.Result  `json:"best,omitempty"`
	Failures []FailedPoint  `json:"failures,omitempty"`
	Archived []string       `json:"archived,omitempty"`
	Warning  string         `json:"warning,omitempty"`
}

// FailedPoint is a grid point whose iteration failed.
type FailedPoint struct {
	sweep.Point
	Error string `json:"error"`
}

// SweepsHandler runs sweeps as background jobs.
type SweepsHandler struct {
	jobStore  *job.Store
	app       *app.App
	maxActive int
	logger    *zap.Logger
}

// NewSweepsHandler creates a new sweeps handler. At most maxActive sweeps run
// at once; further requests are rejected.
func NewSweepsHandler(jobStore *job.Store, a *app.App, maxActive int, logger *zap.Logger) *SweepsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxActive < 1 {
		maxActive = 1
	}
	return &SweepsHandler{
		jobStore:  jobStore,
		app:       a,
		maxActive: maxActive,
		logger:    logger,
	}
}

// Create validates the request and starts a sweep job.
func (h *SweepsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req SweepRequest
	if r.ContentLength != 0 {
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest,
				core.WrapError(core.ErrInvalidRequest, err))
			return
		}
	}

	sweepReq, err := h.build(req)
	if err != nil {
		response.Error(w, response.StatusFor(err), err)
		return
	}

	if h.jobStore.Active() >= h.maxActive {
		response.Error(w, http.StatusTooManyRequests, core.ErrTooManyJobs)
		return
	}

	j := h.jobStore.Create(jobTypeSweep)

	go h.runSweep(j.ID, sweepReq)

	response.JSON(w, http.StatusAccepted, map[string]any{
		"job_id": j.ID,
		"status": j.Status,
	})
}

// build merges the request with configuration and rejects bad grids before a
// job is created.
func (h *SweepsHandler) build(req SweepRequest) (app.SweepRequest, error) {
	base := h.app.BaseParams()
	if req.StartingCapital != nil {
		base.StartingCapital = *req.StartingCapital
	}
	if req.MarginFactor != nil {
		base.MarginFactor = *req.MarginFactor
	}
	if req.LossStreakThreshold != nil {
		base.LossStreakThreshold = *req.LossStreakThreshold
	}

	grid := h.app.DefaultGrid()
	if req.CapitalPerTrade != nil {
		grid.CapitalPerTrade = *req.CapitalPerTrade
	}
	if req.LossStreakThresholds != nil {
		grid.LossStreakThresholds = req.LossStreakThresholds
	}

	points, err := grid.Points(base.LossStreakThreshold)
	if err != nil {
		return app.SweepRequest{}, err
	}
	probe := base
	probe.CapitalPerTrade = points[0].CapitalPerTrade
	if err := probe.Validate(); err != nil {
		return app.SweepRequest{}, err
	}
	if req.Workers < 0 {
		return app.SweepRequest{}, core.WrapError(core.ErrInvalidRequest, nil)
	}

	return app.SweepRequest{Base: &base, Grid: &grid, Workers: req.Workers}, nil
}

// runSweep executes the sweep and updates job status.
func (h *SweepsHandler) runSweep(jobID string, req app.SweepRequest) {
	h.jobStore.Update(jobID, func(j *job.Job) {
		j.Status = job.StatusRunning
	})

	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()
	out, err := h.app.Sweep(ctx, req)

	if out == nil {
		h.logger.Warn("sweep job failed", zap.String("job_id", jobID), zap.Error(err))
		h.jobStore.Update(jobID, func(j *job.Job) {
			j.Status = job.StatusFailed
			j.Error = asCoreError(err)
		})
		return
	}

	result := summarize(out)
	if err != nil {
		// the sweep ran but persisting it did not fully succeed
		result.Warning = err.Error()
	}

	h.jobStore.Update(jobID, func(j *job.Job) {
		j.Status = job.StatusComplete
		j.Progress = 100
		j.Result = result
	})
}

func summarize(out *app.SweepOutput) SweepJobResult {
	rep := out.Report
	res := SweepJobResult{
		SweepID:  rep.ID,
		Results:  rep.Results(),
		Best:     rep.Best(),
		Archived: out.Archived,
	}
	for _, f := range rep.Failures() {
		res.Failures = append(res.Failures, FailedPoint{Point: f.Point, Error: f.Err.Error()})
	}
	return res
}

func asCoreError(err error) *core.Error {
	var ce *core.Error
	if errors.As(err, &ce) {
		return ce
	}
	return &core.Error{Code: "SWEEP_FAILED", Message: "sweep failed", Cause: err}
}

// GetStatus returns the status of a sweep job.
func (h *SweepsHandler) GetStatus(w http.ResponseWriter, r *http.Request, jobID string) {
	j, err := h.jobStore.Get(jobID)
	if err != nil {
		response.Error(w, http.StatusNotFound, err)
		return
	}

	resp := map[string]any{
		"job_id":   j.ID,
		"status":   j.Status,
		"progress": j.Progress,
	}

	if j.Status == job.StatusComplete {
		resp["result"] = j.Result
	}
	if j.Status == job.StatusFailed && j.Error != nil {
		resp["error"] = map[string]string{
			"code":    j.Error.Code,
			"message": j.Error.Message,
		}
	}

	response.JSON(w, http.StatusOK, resp)
}

// List returns every known job, newest first.
func (h *SweepsHandler) List(w http.ResponseWriter, r *http.Request) {
	h.jobStore.Prune()
	jobs := h.jobStore.List()
	response.List(w, jobs, len(jobs), 0, 0)
}
