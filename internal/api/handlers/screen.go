// Package handlers contains the HTTP handlers for the screening API.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/wonny/sift/internal/contracts"
	"github.com/wonny/sift/internal/output"
	"github.com/wonny/sift/internal/strategyconfig"
	"github.com/wonny/sift/pkg/logger"
)

// Runner executes one screening pass for the strategy it was built
// around. *screener.Screener is the production implementation.
type Runner interface {
	Run(ctx context.Context, asOf time.Time) (*contracts.ScreenReport, error)
}

// ScreenHandler serves strategy listings, screening runs, and the latest
// report artifact.
// ⭐ SSOT: screening API handlers live in this struct only
type ScreenHandler struct {
	registry        *strategyconfig.Registry
	runners         map[string]Runner
	store           *output.Store
	defaultStrategy string
	logger          *logger.Logger

	mu     sync.RWMutex
	latest *contracts.ScreenReport
}

// NewScreenHandler creates a screen handler. store may be nil when
// artifact persistence is disabled.
func NewScreenHandler(registry *strategyconfig.Registry, runners map[string]Runner, store *output.Store, defaultStrategy string, log *logger.Logger) *ScreenHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &ScreenHandler{
		registry:        registry,
		runners:         runners,
		store:           store,
		defaultStrategy: defaultStrategy,
		logger:          log,
	}
}

// strategySummary is the wire form of a strategy profile.
type strategySummary struct {
	Name          string   `json:"name"`
	MaxCandidates int      `json:"max_candidates"`
	Timeframes    []string `json:"timeframes"`
	Stages        []string `json:"stages"`
	DeriveSetups  bool     `json:"derive_setups"`
}

// ListStrategies returns the registered strategy profiles
// GET /api/v1/strategies
func (h *ScreenHandler) ListStrategies(w http.ResponseWriter, r *http.Request) {
	names := h.registry.Names()
	summaries := make([]strategySummary, 0, len(names))
	for _, name := range names {
		p, err := h.registry.Get(name)
		if err != nil {
			continue
		}
		summaries = append(summaries, strategySummary{
			Name:          p.Name,
			MaxCandidates: p.MaxCandidates,
			Timeframes:    p.Timeframes,
			Stages:        p.Stages,
			DeriveSetups:  p.DeriveSetups,
		})
	}

	respondSuccess(w, http.StatusOK, summaries)
}

// runRequest is the POST /screen body. Both fields are optional.
type runRequest struct {
	Strategy string `json:"strategy"`
	Date     string `json:"date"` // YYYY-MM-DD; empty means today
}

// Run triggers a synchronous screening run
// POST /api/v1/screen
func (h *ScreenHandler) Run(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	strategy := req.Strategy
	if strategy == "" {
		strategy = h.defaultStrategy
	}
	runner, ok := h.runners[strategy]
	if !ok {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("unknown strategy %q", strategy))
		return
	}

	var asOf time.Time
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid date, want YYYY-MM-DD")
			return
		}
		asOf = parsed
	}

	report, err := runner.Run(r.Context(), asOf)
	if err != nil {
		h.logger.WithError(err).WithField("strategy", strategy).Error("Screening run failed")
		respondError(w, http.StatusInternalServerError, "screening run failed")
		return
	}

	h.remember(report)
	if h.store != nil {
		if _, err := h.store.Save(report); err != nil {
			h.logger.WithError(err).Warn("Failed to save report artifact")
		}
	}

	respondSuccess(w, http.StatusOK, report)
}

// Latest returns the most recent report, falling back to the artifact
// store across restarts
// GET /api/v1/screen/latest
func (h *ScreenHandler) Latest(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	report := h.latest
	h.mu.RUnlock()

	if report == nil && h.store != nil {
		loaded, err := h.store.Latest()
		switch {
		case errors.Is(err, output.ErrNoReports):
			// nothing persisted either
		case err != nil:
			h.logger.WithError(err).Error("Failed to load latest report")
			respondError(w, http.StatusInternalServerError, "failed to load latest report")
			return
		default:
			h.remember(loaded)
			report = loaded
		}
	}

	if report == nil {
		respondError(w, http.StatusNotFound, "no screening run recorded yet")
		return
	}

	respondSuccess(w, http.StatusOK, report)
}

func (h *ScreenHandler) remember(report *contracts.ScreenReport) {
	h.mu.Lock()
	h.latest = report
	h.mu.Unlock()
}

// Helper functions

// envelope is the uniform response wrapper.
type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func respondSuccess(w http.ResponseWriter, status int, data interface{}) {
	respondJSON(w, status, envelope{Success: true, Data: data})
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, envelope{Success: false, Error: message})
}
