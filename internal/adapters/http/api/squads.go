package api

import (
	"context"
	"net/http"

	"github.com/okian/escala/internal/domain/model"
	"github.com/okian/escala/internal/domain/types"
	"github.com/okian/escala/pkg/logger"
)

// SquadDependencies defines the allocation operations the handler needs.
type SquadDependencies interface {
	Allocate(ctx context.Context, sc model.Scenario) (model.Roster, error)
	AllocateBatch(ctx context.Context, scenarios []model.Scenario) ([]model.ScenarioResult, error)
}

// SquadsHandler handles roster allocation requests.
type SquadsHandler struct {
	deps   SquadDependencies
	logger logger.Logger
}

// NewSquadsHandler creates a new squads handler.
func NewSquadsHandler(deps SquadDependencies, log logger.Logger) *SquadsHandler {
	return &SquadsHandler{deps: deps, logger: log}
}

// HandlePostSquad handles POST /squads requests.
func (h *SquadsHandler) HandlePostSquad(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_squad"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req types.SquadRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}

	roster, err := h.deps.Allocate(r.Context(), req.Scenario())
	if err != nil {
		h.logger.Warn(r.Context(), "allocation failed",
			logger.Float64("budget", req.Budget),
			logger.String("formation", req.Formation),
			logger.Error(err),
		)
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, roster)
}

// HandlePostBatch handles POST /squads/batch requests. Per-scenario
// failures are reported inside a 200 response.
func (h *SquadsHandler) HandlePostBatch(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_batch"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req types.BatchRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}

	scenarios := make([]model.Scenario, len(req.Scenarios))
	for i, s := range req.Scenarios {
		scenarios[i] = s.Scenario()
	}
	results, err := h.deps.AllocateBatch(r.Context(), scenarios)
	if err != nil {
		h.logger.Warn(r.Context(), "batch failed",
			logger.Int("scenarios", len(scenarios)),
			logger.Error(err),
		)
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, types.NewBatchResponse(results))
}
