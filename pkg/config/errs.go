package config

import "errors"

var (
	// ErrInvalidConfig indicates a configuration that fails validation.
	ErrInvalidConfig = errors.New("config: invalid configuration")
	// ErrUnknownMaterial indicates a quality that names an undefined material.
	ErrUnknownMaterial = errors.New("config: unknown material")
	// ErrUnknownQuality indicates a requested quality id that is not configured.
	ErrUnknownQuality = errors.New("config: unknown quality")
)
