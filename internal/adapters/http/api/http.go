// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/okian/escala/internal/adapters/feed"
	"github.com/okian/escala/internal/adapters/repository"
	service "github.com/okian/escala/internal/app"
	"github.com/okian/escala/internal/domain/formation"
	"github.com/okian/escala/internal/domain/model"
	"github.com/okian/escala/pkg/logger"
)

const maxBodyBytes = 1 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Allocate builds one roster; zero scenario fields take the defaults.
	Allocate(ctx context.Context, sc model.Scenario) (model.Roster, error)
	// AllocateBatch builds one roster per scenario over one market snapshot.
	AllocateBatch(ctx context.Context, scenarios []model.Scenario) ([]model.ScenarioResult, error)

	// Read operations expose the market and the formation catalog.
	Players(ctx context.Context, f service.PlayerFilter) (feed.Snapshot, error)
	Formations() []formation.Formation
	DefaultFormation() string

	// History reads the stored rosters.
	Leaderboard(ctx context.Context, n int) ([]repository.Entry, error)
	Roster(ctx context.Context, id string) (model.Roster, error)
	RosterRank(ctx context.Context, id string) (repository.Entry, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	formationHandler *FormationsHandler
	playersHandler   *PlayersHandler
	squadsHandler    *SquadsHandler
	boardHandler     *LeaderboardHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, log logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		formationHandler: NewFormationsHandler(deps),
		playersHandler:   NewPlayersHandler(deps),
		squadsHandler:    NewSquadsHandler(deps, log.Named("api")),
		boardHandler:     NewLeaderboardHandler(deps, maxLeaderboardLimit),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/formations", MetricsMiddleware(s.formationHandler.HandleGetFormations, "formations"))
	mux.HandleFunc("/players", MetricsMiddleware(s.playersHandler.HandleGetPlayers, "players"))
	mux.HandleFunc("/squads", MetricsMiddleware(s.squadsHandler.HandlePostSquad, "squads"))
	mux.HandleFunc("/squads/batch", MetricsMiddleware(s.squadsHandler.HandlePostBatch, "squads_batch"))
	mux.HandleFunc("/leaderboard", MetricsMiddleware(s.boardHandler.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("/rosters/", MetricsMiddleware(s.boardHandler.HandleGetRoster, "rosters"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure classifies err and writes the matching response.
func writeFailure(w http.ResponseWriter, err error) {
	status, code := classify(err)
	writeError(w, status, code, err)
}

// decodeBody reads a JSON body into v. An empty body leaves v untouched.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
