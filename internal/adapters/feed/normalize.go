package feed

import (
	"strconv"
	"strings"

	"github.com/okian/escala/internal/domain/model"
)

// Defaults applied when the upstream omits a field.
const (
	defaultPrice = 5.0
	photoSize    = "140x140"
	marketOpen   = 1
)

type marketPayload struct {
	StatusMercado int                    `json:"status_mercado"`
	Atletas       []athlete              `json:"atletas"`
	Clubes        map[string]clubPayload `json:"clubes"`
}

type athlete struct {
	AtletaID  int      `json:"atleta_id"`
	Apelido   string   `json:"apelido"`
	ClubeID   int      `json:"clube_id"`
	PosicaoID int      `json:"posicao_id"`
	StatusID  int      `json:"status_id"`
	PrecoNum  *float64 `json:"preco_num"`
	MediaNum  *float64 `json:"media_num"`
	JogosNum  *int     `json:"jogos_num"`
	Foto      *string  `json:"foto"`
}

type clubPayload struct {
	ID         int    `json:"id"`
	Abreviacao string `json:"abreviacao"`
}

type fixturesPayload struct {
	Partidas []fixture `json:"partidas"`
}

type fixture struct {
	ClubeCasaID      int `json:"clube_casa_id"`
	ClubeVisitanteID int `json:"clube_visitante_id"`
}

type matchup struct {
	venue    model.Venue
	opponent int
}

// matchups indexes fixtures by club id.
func matchups(fs []fixture) map[int]matchup {
	out := make(map[int]matchup, len(fs)*2)
	for _, f := range fs {
		out[f.ClubeCasaID] = matchup{venue: model.Home, opponent: f.ClubeVisitanteID}
		out[f.ClubeVisitanteID] = matchup{venue: model.Away, opponent: f.ClubeCasaID}
	}
	return out
}

// clubCodes maps club id to its abbreviation. The map key is used when the
// embedded id is missing.
func clubCodes(cs map[string]clubPayload) map[int]string {
	out := make(map[int]string, len(cs))
	for key, c := range cs {
		id := c.ID
		if id == 0 {
			id, _ = strconv.Atoi(key)
		}
		out[id] = c.Abreviacao
	}
	return out
}

// normalize turns the two upstream payloads into players. Athletes with an
// unknown position id are dropped; clubs without a fixture get VenueUnknown.
func normalize(m marketPayload, f fixturesPayload) []model.Player {
	clubs := clubCodes(m.Clubes)
	games := matchups(f.Partidas)

	players := make([]model.Player, 0, len(m.Atletas))
	for _, a := range m.Atletas {
		pos := model.PositionFromID(a.PosicaoID)
		if pos == model.PositionUnknown {
			continue
		}
		p := model.Player{
			ID:       a.AtletaID,
			Nickname: a.Apelido,
			Position: pos,
			Price:    defaultPrice,
			Status:   model.StatusFromID(a.StatusID),
			Club:     clubs[a.ClubeID],
		}
		if a.PrecoNum != nil {
			p.Price = *a.PrecoNum
		}
		if a.MediaNum != nil {
			p.AverageScore = *a.MediaNum
		}
		if a.JogosNum != nil {
			p.GamesPlayed = *a.JogosNum
		}
		if a.Foto != nil {
			p.PhotoURL = strings.ReplaceAll(*a.Foto, "FORMATO", photoSize)
		}
		if g, ok := games[a.ClubeID]; ok {
			p.Venue = g.venue
			p.Opponent = clubs[g.opponent]
		}
		players = append(players, p)
	}
	return players
}
