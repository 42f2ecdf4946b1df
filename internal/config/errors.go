package config

import (
	"errors"
)

// ErrLoadConfig wraps file, env and decode failures in Load.
// ErrInvalidConfig wraps every Validate and Catalog rejection.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)
