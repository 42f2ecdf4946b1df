package model

// Scenario is one allocation request inside a batch. Zero values mean
// "use the service default".
type Scenario struct {
	Budget    float64 `json:"budget"`
	Formation string  `json:"formation"`
}

// ScenarioResult pairs a scenario with its roster or its error. Index is
// the scenario's position in the submitted batch.
type ScenarioResult struct {
	Index    int      `json:"index"`
	Scenario Scenario `json:"scenario"`
	Roster   *Roster  `json:"roster,omitempty"`
	Err      error    `json:"-"`
}
