package squad

import (
	"errors"

	"github.com/okian/escala/internal/domain/formation"
)

// Fatal conditions. A roster with unfilled slots is not an error.
var (
	ErrUnknownFormation = formation.ErrUnknownFormation
	ErrInvalidBudget    = errors.New("invalid budget")
	ErrDegenerateSquad  = errors.New("squad has no player eligible for captain")
)
