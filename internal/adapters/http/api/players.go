package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/okian/escala/internal/adapters/feed"
	service "github.com/okian/escala/internal/app"
	"github.com/okian/escala/internal/domain/model"
	"github.com/okian/escala/internal/domain/types"
)

// PlayerDependencies defines the market read the handler needs.
type PlayerDependencies interface {
	Players(ctx context.Context, f service.PlayerFilter) (feed.Snapshot, error)
}

// PlayersHandler handles market listing requests.
type PlayersHandler struct {
	deps PlayerDependencies
}

// NewPlayersHandler creates a new players handler.
func NewPlayersHandler(deps PlayerDependencies) *PlayersHandler {
	return &PlayersHandler{deps: deps}
}

// HandleGetPlayers handles GET /players?position=&status=&eligible= requests.
func (h *PlayersHandler) HandleGetPlayers(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_players"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	f, err := parsePlayerFilter(r)
	if err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	snap, err := h.deps.Players(r.Context(), f)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, types.PlayersResponse{
		MarketOpen: snap.MarketOpen,
		FetchedAt:  snap.FetchedAt,
		Count:      len(snap.Players),
		Players:    snap.Players,
	})
}

func parsePlayerFilter(r *http.Request) (service.PlayerFilter, error) {
	var f service.PlayerFilter
	q := r.URL.Query()
	if v := q.Get("position"); v != "" {
		p, err := model.ParsePosition(v)
		if err != nil {
			return f, err
		}
		f.Position = p
	}
	if v := q.Get("status"); v != "" {
		s, err := model.ParseStatus(v)
		if err != nil {
			return f, err
		}
		f.Status = &s
	}
	if v := q.Get("eligible"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return f, err
		}
		f.EligibleOnly = b
	}
	return f, nil
}
