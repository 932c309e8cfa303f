/*
PURPOSE:
  The sweep dimensions that are more than a plain int: error-correction
  level, image size, and the Params tuple naming one configuration.

REQUIREMENTS:
  - ECLevel and Size round-trip through text (YAML, CSV, SQLite).
  - Size strings are WIDTHxHEIGHT.

RELATED FILES:
  - internal/model/types.go
*/

package model

import (
	"fmt"
	"strconv"
	"strings"
)

// ECLevel is a QR error-correction level.
type ECLevel int

// Levels L, M, Q and H recover roughly 7%, 15%, 25% and 30% of damaged codewords.
const (
	ECLevelL ECLevel = iota
	ECLevelM
	ECLevelQ
	ECLevelH
)

func (l ECLevel) String() string {
	switch l {
	case ECLevelL:
		return "L"
	case ECLevelM:
		return "M"
	case ECLevelQ:
		return "Q"
	case ECLevelH:
		return "H"
	default:
		return "?"
	}
}

// ParseECLevel accepts "L", "M", "Q" or "H" (case-insensitive).
func ParseECLevel(s string) (ECLevel, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "L":
		return ECLevelL, nil
	case "M":
		return ECLevelM, nil
	case "Q":
		return ECLevelQ, nil
	case "H":
		return ECLevelH, nil
	}
	return 0, fmt.Errorf("unknown error correction level %q (want L, M, Q or H)", s)
}

func (l ECLevel) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

func (l *ECLevel) UnmarshalText(text []byte) error {
	v, err := ParseECLevel(string(text))
	if err != nil {
		return err
	}
	*l = v
	return nil
}

// Size is a target image size in pixels.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// IsZero reports whether no size was configured.
func (s Size) IsZero() bool {
	return s.Width == 0 && s.Height == 0
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// ParseSize parses "WIDTHxHEIGHT", e.g. "1400x350".
func ParseSize(s string) (Size, error) {
	w, h, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return Size{}, fmt.Errorf("invalid size %q (want WIDTHxHEIGHT)", s)
	}
	width, err := strconv.Atoi(w)
	if err != nil {
		return Size{}, fmt.Errorf("invalid width in size %q: %w", s, err)
	}
	height, err := strconv.Atoi(h)
	if err != nil {
		return Size{}, fmt.Errorf("invalid height in size %q: %w", s, err)
	}
	return Size{Width: width, Height: height}, nil
}

func (s Size) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Size) UnmarshalText(text []byte) error {
	v, err := ParseSize(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
