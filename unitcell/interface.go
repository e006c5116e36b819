package unitcell

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrValueOutOfRange reports an input value outside its allowed range
var ErrValueOutOfRange = errors.New("value out of range")

// Allowed unit cell sizes in Angstroms: 0.1 Angstroms - 1 millimetre
const (
	minUnitCellSize = 0.1
	maxUnitCellSize = 1.0e7
)

// Settings holds the unit cell options read from the input file
type Settings struct {
	CrystalStructure string
	Size             [3]float64 // Angstroms
	UnitCellFile     string
}

// DefaultSettings returns a simple cubic cell with a 3.54 Angstrom lattice
func DefaultSettings() Settings {
	return Settings{
		CrystalStructure: "sc",
		Size:             [3]float64{3.54, 3.54, 3.54},
	}
}

// MatchInputParameter applies one key:word = value !unit input line. It
// returns false when the keyword does not belong to this module, so the
// caller can report it as not found.
func (s *Settings) MatchInputParameter(key, word, value, unit string, line int) (bool, error) {
	switch key {
	case "material":
		if word == "unit-cell-file" {
			name := strings.ReplaceAll(value, "\"", "")
			if name == "" {
				logger.Errorf("empty filename in control statement material:%s on line %d of input file", word, line)
				return false, nil
			}
			s.UnitCellFile = name
			return true, nil
		}
	case "create":
		if word == "crystal-structure" {
			s.CrystalStructure = strings.Trim(value, "\"")
			return true, nil
		}
	case "dimensions":
		axes := map[string][]int{
			"unit-cell-size":   {0, 1, 2},
			"unit-cell-size-x": {0},
			"unit-cell-size-y": {1},
			"unit-cell-size-z": {2},
		}
		idx, ok := axes[word]
		if !ok {
			return false, nil
		}
		a, err := parseLength(value, unit)
		if err != nil {
			return true, fmt.Errorf("dimensions:%s on line %d: %w", word, line, err)
		}
		if a < minUnitCellSize || a > maxUnitCellSize {
			return true, fmt.Errorf("dimensions:%s = %g on line %d must be within 0.1 Angstroms - 1 millimetre: %w",
				word, a, line, ErrValueOutOfRange)
		}
		for _, i := range idx {
			s.Size[i] = a
		}
		return true, nil
	}
	return false, nil
}

// parseLength converts a length value to Angstroms
func parseLength(value, unit string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, err
	}
	switch unit {
	case "", "A", "Angstroms":
		return v, nil
	case "nm":
		return v * 10, nil
	case "m":
		return v * 1e10, nil
	}
	return 0, fmt.Errorf("unknown length unit %q", unit)
}
