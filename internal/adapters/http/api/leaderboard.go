package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/escala/internal/adapters/repository"
	"github.com/okian/escala/internal/domain/model"
)

const (
	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 100
)

// LeaderboardDependencies defines the roster history reads the handler needs.
type LeaderboardDependencies interface {
	Leaderboard(ctx context.Context, n int) ([]repository.Entry, error)
	Roster(ctx context.Context, id string) (model.Roster, error)
	RosterRank(ctx context.Context, id string) (repository.Entry, error)
}

// LeaderboardResponse lists the best stored rosters.
type LeaderboardResponse struct {
	Count   int                `json:"count"`
	Entries []repository.Entry `json:"entries"`
}

// LeaderboardHandler serves the roster history.
type LeaderboardHandler struct {
	deps     LeaderboardDependencies
	maxLimit int
}

// NewLeaderboardHandler creates a new leaderboard handler.
func NewLeaderboardHandler(deps LeaderboardDependencies, maxLimit int) *LeaderboardHandler {
	if maxLimit < 1 {
		maxLimit = maxLeaderboardLimit
	}
	return &LeaderboardHandler{
		deps:     deps,
		maxLimit: maxLimit,
	}
}

// HandleGetLeaderboard handles GET /leaderboard?limit=N requests. A
// missing limit means ten.
func (h *LeaderboardHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_leaderboard"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	n := defaultLeaderboardLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		v, err := strconv.Atoi(limitStr)
		if err != nil || v < 1 {
			writeFailure(w, NewKind(op, ErrBadRequest))
			return
		}
		n = v
	}
	if n > h.maxLimit {
		writeError(w, http.StatusBadRequest, "limit_exceeded", NewKind(op, ErrBadRequest))
		return
	}
	entries, err := h.deps.Leaderboard(r.Context(), n)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, LeaderboardResponse{Count: len(entries), Entries: entries})
}

// HandleGetRoster handles GET /rosters/{id} and GET /rosters/{id}/rank
// requests.
func (h *LeaderboardHandler) HandleGetRoster(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_roster"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	id, wantRank := strings.CutSuffix(strings.TrimPrefix(r.URL.Path, "/rosters/"), "/rank")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}

	var (
		body any
		err  error
	)
	if wantRank {
		body, err = h.deps.RosterRank(r.Context(), id)
	} else {
		body, err = h.deps.Roster(r.Context(), id)
	}
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			err = Wrap(op, err)
		}
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, body)
}
