// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"strings"
)

// Position is the tactical role a player is registered under.
type Position int

const (
	PositionUnknown Position = iota
	Goalkeeper
	FullBack
	CenterBack
	Midfielder
	Forward
	Coach
)

var positionCodes = map[Position]string{
	Goalkeeper: "GOL",
	FullBack:   "LAT",
	CenterBack: "ZAG",
	Midfielder: "MEI",
	Forward:    "ATA",
	Coach:      "TEC",
}

// Positions lists every known position in feed id order.
func Positions() []Position {
	return []Position{Goalkeeper, FullBack, CenterBack, Midfielder, Forward, Coach}
}

// String returns the short position code (GOL, LAT, ...).
func (p Position) String() string {
	if code, ok := positionCodes[p]; ok {
		return code
	}
	return "UNK"
}

// IsDefensive reports whether the position benefits from clean sheets.
func (p Position) IsDefensive() bool {
	return p == Goalkeeper || p == FullBack || p == CenterBack
}

// ParsePosition maps a short code, case-insensitively, to a Position.
func ParsePosition(code string) (Position, error) {
	c := strings.ToUpper(strings.TrimSpace(code))
	for p, known := range positionCodes {
		if known == c {
			return p, nil
		}
	}
	return PositionUnknown, fmt.Errorf("%w: %q", ErrUnknownPosition, code)
}

// PositionFromID maps the upstream posicao_id (1..6) to a Position.
func PositionFromID(id int) Position {
	if id >= int(Goalkeeper) && id <= int(Coach) {
		return Position(id)
	}
	return PositionUnknown
}

// MarshalText encodes the position as its short code.
func (p Position) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a short code.
func (p *Position) UnmarshalText(b []byte) error {
	parsed, err := ParsePosition(string(b))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Status is the availability flag published for the next round.
type Status int

const (
	StatusUnknown Status = iota
	Probable
	Doubtful
	Injured
	Suspended
	StatusNull
)

var statusNames = map[Status]string{
	StatusUnknown: "unknown",
	Probable:      "probable",
	Doubtful:      "doubtful",
	Injured:       "injured",
	Suspended:     "suspended",
	StatusNull:    "null",
}

// String returns the lower-case status name.
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unknown"
}

// StatusFromID maps the upstream status_id to a Status.
func StatusFromID(id int) Status {
	switch id {
	case 7:
		return Probable
	case 2:
		return Doubtful
	case 5:
		return Injured
	case 3:
		return Suspended
	case 6:
		return StatusNull
	default:
		return StatusUnknown
	}
}

// ParseStatus maps a status name to a Status.
func ParseStatus(name string) (Status, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for s, known := range statusNames {
		if known == n {
			return s, nil
		}
	}
	return StatusUnknown, fmt.Errorf("%w: %q", ErrUnknownStatus, name)
}

// MarshalText encodes the status name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a status name.
func (s *Status) UnmarshalText(b []byte) error {
	parsed, err := ParseStatus(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Venue tells whether the player's club hosts its next fixture.
type Venue int

const (
	VenueUnknown Venue = iota
	Home
	Away
)

// String returns home, away or unknown.
func (v Venue) String() string {
	switch v {
	case Home:
		return "home"
	case Away:
		return "away"
	default:
		return "unknown"
	}
}

// MarshalText encodes the venue name.
func (v Venue) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText decodes a venue name; anything unrecognised is VenueUnknown.
func (v *Venue) UnmarshalText(b []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(b))) {
	case "home":
		*v = Home
	case "away":
		*v = Away
	default:
		*v = VenueUnknown
	}
	return nil
}

// Player is a normalized, priced player record. It is read-only for the
// duration of an allocation run.
type Player struct {
	ID           int      `json:"id"`
	Nickname     string   `json:"nickname"`
	Position     Position `json:"position"`
	Price        float64  `json:"price"`
	AverageScore float64  `json:"average_score"`
	GamesPlayed  int      `json:"games_played"`
	Status       Status   `json:"status"`
	Venue        Venue    `json:"venue"`

	// Display only.
	Club     string `json:"club,omitempty"`
	Opponent string `json:"opponent,omitempty"`
	PhotoURL string `json:"photo_url,omitempty"`
}

// Eligible reports whether the player may be picked at all.
func (p Player) Eligible() bool {
	return p.Status == Probable
}

// HighAppreciation reports whether the player's average beats their price,
// which tends to push the price up after the round.
func (p Player) HighAppreciation() bool {
	return p.AverageScore > p.Price
}

// Candidate is a player with the scores used to rank it.
type Candidate struct {
	Player
	CostBenefit float64 `json:"cost_benefit"`
	Elite       float64 `json:"elite_score"`
}
