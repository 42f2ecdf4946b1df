package api

import (
	"net/http"

	"github.com/okian/escala/internal/domain/formation"
	"github.com/okian/escala/internal/domain/types"
)

// FormationDependencies defines the catalog reads the handler needs.
type FormationDependencies interface {
	Formations() []formation.Formation
	DefaultFormation() string
}

// FormationsHandler handles formation catalog requests.
type FormationsHandler struct {
	deps FormationDependencies
}

// NewFormationsHandler creates a new formations handler.
func NewFormationsHandler(deps FormationDependencies) *FormationsHandler {
	return &FormationsHandler{deps: deps}
}

// HandleGetFormations handles GET /formations requests.
func (h *FormationsHandler) HandleGetFormations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	all := h.deps.Formations()
	resp := types.FormationsResponse{
		Default:    h.deps.DefaultFormation(),
		Formations: make([]types.FormationView, 0, len(all)),
	}
	for _, f := range all {
		view := types.FormationView{Name: f.Name, Total: f.Total()}
		for _, q := range f.Slots {
			view.Slots = append(view.Slots, types.SlotView{Position: q.Position, Count: q.Count})
		}
		resp.Formations = append(resp.Formations, view)
	}
	writeJSON(w, http.StatusOK, resp)
}
