// Package types contains the request and response bodies shared by the
// service and the HTTP API.
package types

import (
	"time"

	"github.com/okian/escala/internal/domain/model"
)

// SquadRequest asks for one roster. Zero fields take the service defaults.
type SquadRequest struct {
	Budget    float64 `json:"budget"`
	Formation string  `json:"formation"`
}

// Scenario converts the request to its domain form.
func (r SquadRequest) Scenario() model.Scenario {
	return model.Scenario{Budget: r.Budget, Formation: r.Formation}
}

// BatchRequest asks for several rosters over the same market snapshot.
type BatchRequest struct {
	Scenarios []SquadRequest `json:"scenarios"`
}

// BatchItem is the outcome of one scenario. Exactly one of Roster and
// Error is set.
type BatchItem struct {
	Index     int           `json:"index"`
	Budget    float64       `json:"budget"`
	Formation string        `json:"formation"`
	Roster    *model.Roster `json:"roster,omitempty"`
	Error     string        `json:"error,omitempty"`
}

// BatchResponse lists batch outcomes in request order.
type BatchResponse struct {
	Results   []BatchItem `json:"results"`
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
}

// NewBatchResponse builds a response from scenario results.
func NewBatchResponse(results []model.ScenarioResult) BatchResponse {
	out := BatchResponse{Results: make([]BatchItem, len(results))}
	for i, r := range results {
		item := BatchItem{
			Index:     r.Index,
			Budget:    r.Scenario.Budget,
			Formation: r.Scenario.Formation,
			Roster:    r.Roster,
		}
		if r.Err != nil {
			item.Error = r.Err.Error()
			item.Roster = nil
			out.Failed++
		} else {
			out.Succeeded++
		}
		out.Results[i] = item
	}
	return out
}

// PlayersResponse is a filtered view of the current market.
type PlayersResponse struct {
	MarketOpen bool           `json:"market_open"`
	FetchedAt  time.Time      `json:"fetched_at"`
	Count      int            `json:"count"`
	Players    []model.Player `json:"players"`
}

// FormationsResponse lists the formations the engine accepts.
type FormationsResponse struct {
	Default    string          `json:"default"`
	Formations []FormationView `json:"formations"`
}

// FormationView is one formation with its slots in allocation order.
type FormationView struct {
	Name  string     `json:"name"`
	Slots []SlotView `json:"slots"`
	Total int        `json:"total"`
}

// SlotView is one position quota.
type SlotView struct {
	Position model.Position `json:"position"`
	Count    int            `json:"count"`
}
