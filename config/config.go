// Package config reads the simulation input file.
//
// The input is an INI-style file with [create], [dimensions], [cells],
// [sim], [micromagnetic], [spin-torque] and one [material "<index>"]
// section per material. Unknown variables and sections do not fail the
// read; they are returned to the caller as not found.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/gcfg.v1"
	"gopkg.in/warnings.v0"
)

var logger = logrus.WithField("module", "config")

// Vec3 is a vector written as "x, y, z"
type Vec3 r3.Vec

// UnmarshalText parses three comma or space separated components
func (v *Vec3) UnmarshalText(text []byte) error {
	fields := strings.FieldsFunc(string(text), func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	if len(fields) != 3 {
		return fmt.Errorf("vector %q needs 3 components, has %d", text, len(fields))
	}
	var c [3]float64
	for i, f := range fields {
		x, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return fmt.Errorf("vector %q: %w", text, err)
		}
		c[i] = x
	}
	*v = Vec3{X: c[0], Y: c[1], Z: c[2]}
	return nil
}

// CreateConfig is the [create] section
type CreateConfig struct {
	CrystalStructure string `gcfg:"crystal-structure"`
	PeriodicX        bool   `gcfg:"periodic-boundaries-x"`
	PeriodicY        bool   `gcfg:"periodic-boundaries-y"`
	PeriodicZ        bool   `gcfg:"periodic-boundaries-z"`

	// Replaces the built-in structure; relative to the input file when
	// loaded from disk
	UnitCellFile string `gcfg:"unit-cell-file"`
}

// DimensionsConfig is the [dimensions] section. Unit cell sizes keep their
// raw text, optionally followed by a length unit.
type DimensionsConfig struct {
	UnitCellSize  string  `gcfg:"unit-cell-size"`
	UnitCellSizeX string  `gcfg:"unit-cell-size-x"`
	UnitCellSizeY string  `gcfg:"unit-cell-size-y"`
	UnitCellSizeZ string  `gcfg:"unit-cell-size-z"`
	SystemSizeX   float64 `gcfg:"system-size-x"`
	SystemSizeY   float64 `gcfg:"system-size-y"`
	SystemSizeZ   float64 `gcfg:"system-size-z"`
}

// CellsConfig is the [cells] section
type CellsConfig struct {
	MacroCellSize  float64 `gcfg:"macro-cell-size"`
	MacroCellSizeX float64 `gcfg:"macro-cell-size-x"`
	MacroCellSizeY float64 `gcfg:"macro-cell-size-y"`
	MacroCellSizeZ float64 `gcfg:"macro-cell-size-z"`
}

// SimConfig is the [sim] section
type SimConfig struct {
	Temperature  float64
	Ranks        int
	Seed         uint64
	AppliedField Vec3 `gcfg:"applied-field"`
}

// MicromagneticConfig is the [micromagnetic] section
type MicromagneticConfig struct {
	Discretisation          string
	Partitioning            string
	MicromagneticCorrection bool    `gcfg:"micromagnetic-correction"`
	EnableResistance        bool    `gcfg:"enable-resistance"`
	ResistanceLayer1        int     `gcfg:"resistance-layer-1"`
	ResistanceLayer2        int     `gcfg:"resistance-layer-2"`
	OverlapAreaOverride     float64 `gcfg:"overlap-area-override"`
	BiasField               Vec3    `gcfg:"bias-field"`
}

// SpinTorqueConfig is the [spin-torque] section
type SpinTorqueConfig struct {
	Polarization Vec3 `gcfg:"polarization-unit-vector"`
}

// Config is the whole input file
type Config struct {
	Create        CreateConfig
	Dimensions    DimensionsConfig
	Cells         CellsConfig
	Sim           SimConfig
	Micromagnetic MicromagneticConfig
	SpinTorque    SpinTorqueConfig `gcfg:"spin-torque"`
	Material      map[string]*MaterialConfig
}

// Load reads and checks an input file
func Load(path string) (*Config, []string, error) {
	cfg := &Config{}
	notFound, err := collect(gcfg.ReadFileInto(cfg, path))
	if err != nil {
		return nil, notFound, fmt.Errorf("reading %s: %w", path, err)
	}
	if f := strings.Trim(cfg.Create.UnitCellFile, "\""); f != "" && !filepath.IsAbs(f) {
		cfg.Create.UnitCellFile = filepath.Join(filepath.Dir(path), f)
	}
	return finish(cfg, notFound)
}

// Parse reads and checks input text
func Parse(text string) (*Config, []string, error) {
	cfg := &Config{}
	notFound, err := collect(gcfg.ReadStringInto(cfg, text))
	if err != nil {
		return nil, notFound, err
	}
	return finish(cfg, notFound)
}

func finish(cfg *Config, notFound []string) (*Config, []string, error) {
	for _, nf := range notFound {
		logger.Debugf("not found: %s", nf)
	}
	if err := cfg.CheckInit(); err != nil {
		return nil, notFound, err
	}
	return cfg, notFound, nil
}

// collect separates gcfg warnings, which name unknown sections and
// variables, from the fatal error
func collect(err error) ([]string, error) {
	if err == nil {
		return nil, nil
	}
	var list warnings.List
	if !errors.As(err, &list) {
		return nil, err
	}
	notFound := make([]string, 0, len(list.Warnings))
	for _, w := range list.Warnings {
		notFound = append(notFound, w.Error())
	}
	return notFound, list.Fatal
}

// CheckInit validates values and fills defaults
func (c *Config) CheckInit() error {
	d := &c.Dimensions
	if d.SystemSizeX <= 0 || d.SystemSizeY <= 0 || d.SystemSizeZ <= 0 {
		return fmt.Errorf("system size must be positive along every axis, got (%g, %g, %g)",
			d.SystemSizeX, d.SystemSizeY, d.SystemSizeZ)
	}

	cs := &c.Cells
	for _, s := range []*float64{&cs.MacroCellSizeX, &cs.MacroCellSizeY, &cs.MacroCellSizeZ} {
		if *s == 0 {
			*s = cs.MacroCellSize
		}
		if *s <= 0 {
			return fmt.Errorf("macro-cell-size must be positive, got %g", *s)
		}
	}

	if c.Sim.Ranks == 0 {
		c.Sim.Ranks = 1
	} else if c.Sim.Ranks < 0 {
		return fmt.Errorf("ranks must be positive, got %d", c.Sim.Ranks)
	}
	if c.Sim.Temperature < 0 {
		return fmt.Errorf("temperature must not be negative, got %g", c.Sim.Temperature)
	}

	if len(c.Material) == 0 {
		return fmt.Errorf("no [material] sections defined")
	}
	for name, m := range c.Material {
		if err := m.CheckInit(name); err != nil {
			return err
		}
	}
	return nil
}
