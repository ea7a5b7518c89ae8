package config

import (
	"errors"
)

// ErrInvalidConfig wraps values rejected by Config.Validate.
// ErrLoadConfig wraps failures reading the YAML file, the environment, or
// decoding either into a Config.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)
