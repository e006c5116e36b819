package config

import (
	"fmt"
	"strings"

	"github.com/101Room/vampire/create"
	"github.com/101Room/vampire/micromagnetic"
	"github.com/101Room/vampire/partitions"
	"github.com/101Room/vampire/unitcell"
	"gonum.org/v1/gonum/spatial/r3"
)

// keyword is one input value routed through a module keyword matcher
type keyword struct {
	key, word, text string
	path            bool // taken whole, without a trailing unit
}

// UnitCellSettings applies the unit cell keywords through the unit cell
// module's matcher. Per-axis sizes override the cubic size.
func (c *Config) UnitCellSettings() (unitcell.Settings, error) {
	s := unitcell.DefaultSettings()
	d := c.Dimensions
	for line, kw := range []keyword{
		{"create", "crystal-structure", c.Create.CrystalStructure, false},
		{"material", "unit-cell-file", c.Create.UnitCellFile, true},
		{"dimensions", "unit-cell-size", d.UnitCellSize, false},
		{"dimensions", "unit-cell-size-x", d.UnitCellSizeX, false},
		{"dimensions", "unit-cell-size-y", d.UnitCellSizeY, false},
		{"dimensions", "unit-cell-size-z", d.UnitCellSizeZ, false},
	} {
		if kw.text == "" {
			continue
		}
		value, unit := kw.text, ""
		if !kw.path {
			value, unit = splitUnit(kw.text)
		}
		found, err := s.MatchInputParameter(kw.key, kw.word, value, unit, line+1)
		if err != nil {
			return s, err
		}
		if !found {
			return s, fmt.Errorf("%s:%s not recognised by the unit cell module", kw.key, kw.word)
		}
	}
	return s, nil
}

// splitUnit separates "3.54 nm" into its value and unit
func splitUnit(text string) (value, unit string) {
	fields := strings.Fields(text)
	if len(fields) == 2 {
		return fields[0], fields[1]
	}
	return strings.TrimSpace(text), ""
}

// System returns the simulated volume
func (c *Config) System() create.System {
	return create.System{
		Size: r3.Vec{X: c.Dimensions.SystemSizeX, Y: c.Dimensions.SystemSizeY, Z: c.Dimensions.SystemSizeZ},
		Periodic: [3]bool{
			c.Create.PeriodicX,
			c.Create.PeriodicY,
			c.Create.PeriodicZ,
		},
	}
}

// CellSize returns the macro-cell size
func (c *Config) CellSize() r3.Vec {
	return r3.Vec{X: c.Cells.MacroCellSizeX, Y: c.Cells.MacroCellSizeY, Z: c.Cells.MacroCellSizeZ}
}

// MicromagneticOptions returns the micromagnetic run settings
func (c *Config) MicromagneticOptions() (micromagnetic.Options, error) {
	mm := c.Micromagnetic
	d, err := micromagnetic.ParseDiscretisation(mm.Discretisation)
	if err != nil {
		return micromagnetic.Options{}, err
	}
	var strategy partitions.PartitionStrategy
	switch mm.Partitioning {
	case "", "linear-chunk":
		strategy = partitions.LinearChunk
	case "round-robin":
		strategy = partitions.RoundRobin
	default:
		return micromagnetic.Options{}, fmt.Errorf("unknown partitioning %q", mm.Partitioning)
	}
	return micromagnetic.Options{
		Discretisation:          d,
		Strategy:                strategy,
		ExternalField:           r3.Vec(c.Sim.AppliedField),
		SpinPolarization:        r3.Vec(c.SpinTorque.Polarization),
		MicromagneticCorrection: mm.MicromagneticCorrection,
		EnableResistance:        mm.EnableResistance,
		ResistanceLayers:        [2]int{mm.ResistanceLayer1, mm.ResistanceLayer2},
		OverlapAreaOverride:     mm.OverlapAreaOverride,
	}, nil
}

// BiasField returns the uniform bias magnet field of every cell, nil when
// none is configured
func (c *Config) BiasField(numCells int) []r3.Vec {
	b := r3.Vec(c.Micromagnetic.BiasField)
	if r3.Norm2(b) == 0 {
		return nil
	}
	out := make([]r3.Vec, numCells)
	for i := range out {
		out[i] = b
	}
	return out
}
