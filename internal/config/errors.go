/*
PURPOSE:
  Sentinel errors for Config.Validate.

USAGE:
  if errors.Is(err, config.ErrInvalidIterations) { ... }
*/

package config

import "errors"

// Configuration validation errors returned by Config.Validate().
// Callers can match them with errors.Is().
var (
	ErrNoBackgrounds      = errors.New("no backgrounds configured")
	ErrInvalidLength      = errors.New("invalid payload: index_length and key_length must be positive")
	ErrInvalidQuietZone   = errors.New("invalid quiet zone: must be non-negative")
	ErrInvalidIterations  = errors.New("invalid iterations: must be positive")
	ErrInvalidWorkers     = errors.New("invalid workers: must be positive")
	ErrNoVariants         = errors.New("every sweep dimension needs at least one value")
	ErrInvalidBoxSize     = errors.New("invalid box size: must be positive")
	ErrInvalidQuality     = errors.New("invalid JPEG quality: must be within 1..100")
	ErrInvalidSize        = errors.New("invalid size: width and height must be positive")
	ErrInvalidBorderColor = errors.New("invalid border color: want #RRGGBB")
)
