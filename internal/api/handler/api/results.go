package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/newthinker/bankroll/internal/api/response"
	"github.com/newthinker/bankroll/internal/core"
	"github.com/newthinker/bankroll/internal/storage/results"
)

const (
	defaultLimit = 100
	maxLimit     = 1000
)

// ResultsHandler serves the stored sweep-result history.
type ResultsHandler struct {
	store results.Store
}

// NewResultsHandler creates a new results handler.
func NewResultsHandler(store results.Store) *ResultsHandler {
	return &ResultsHandler{store: store}
}

// List returns results matching query parameters.
func (h *ResultsHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		response.Error(w, http.StatusBadRequest, err)
		return
	}

	records, err := h.store.List(r.Context(), filter)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, err)
		return
	}

	countFilter := filter
	countFilter.Limit, countFilter.Offset = 0, 0
	total, err := h.store.Count(r.Context(), countFilter)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, err)
		return
	}

	response.List(w, records, total, filter.Limit, filter.Offset)
}

func parseFilter(r *http.Request) (results.ListFilter, error) {
	q := r.URL.Query()
	filter := results.ListFilter{
		SweepID: q.Get("sweep_id"),
		RunID:   q.Get("run_id"),
		Limit:   defaultLimit,
	}

	var err error
	if filter.From, err = parseTime(q.Get("from")); err != nil {
		return filter, err
	}
	if filter.To, err = parseTime(q.Get("to")); err != nil {
		return filter, err
	}

	if limit := q.Get("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 1 {
			return filter, core.WrapError(core.ErrInvalidRequest, err)
		}
		filter.Limit = min(n, maxLimit)
	}
	if offset := q.Get("offset"); offset != "" {
		n, err := strconv.Atoi(offset)
		if err != nil || n < 0 {
			return filter, core.WrapError(core.ErrInvalidRequest, err)
		}
		filter.Offset = n
	}
	return filter, nil
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, core.WrapError(core.ErrInvalidRequest, err)
	}
	return t, nil
}
