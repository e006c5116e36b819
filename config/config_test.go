package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/101Room/vampire/micromagnetic"
	"github.com/101Room/vampire/partitions"
	"github.com/101Room/vampire/unitcell"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

const bilayerInput = `
[create]
crystal-structure = sc
periodic-boundaries-x = true

[dimensions]
unit-cell-size = 0.3 nm
system-size-x = 12
system-size-y = 12
system-size-z = 12

[cells]
macro-cell-size = 6

[sim]
temperature = 300
ranks = 2
seed = 42
applied-field = 0, 0, 0.5

[micromagnetic]
discretisation = micromagnetic
partitioning = round-robin
micromagnetic-correction = true

[spin-torque]
polarization-unit-vector = 0 0 1

[material "0"]
name = bottom
atomic-spin-moment = 2.2
curie-temperature = 1043
maximum-height = 0.5
exchange-matrix = 1e-21
exchange-matrix = 5e-22

[material "1"]
name = top
minimum-height = 0.5
random-spins
atomistic-only = true
enable-saf = true
saf = 0.2
saf = 0
pinning-field-unit-vector = 1, 0, 0
`

func TestParse(t *testing.T) {
	cfg, notFound, err := Parse(bilayerInput)
	require.NoError(t, err)
	assert.Empty(t, notFound)

	s, err := cfg.UnitCellSettings()
	require.NoError(t, err)
	assert.Equal(t, "sc", s.CrystalStructure)
	assert.Equal(t, [3]float64{3, 3, 3}, s.Size)

	sys := cfg.System()
	assert.Equal(t, r3.Vec{X: 12, Y: 12, Z: 12}, sys.Size)
	assert.Equal(t, [3]bool{true, false, false}, sys.Periodic)
	assert.Equal(t, r3.Vec{X: 6, Y: 6, Z: 6}, cfg.CellSize())
	assert.Equal(t, 2, cfg.Sim.Ranks)
	assert.Equal(t, uint64(42), cfg.Sim.Seed)

	opts, err := cfg.MicromagneticOptions()
	require.NoError(t, err)
	assert.Equal(t, micromagnetic.Micromagnetic, opts.Discretisation)
	assert.Equal(t, partitions.RoundRobin, opts.Strategy)
	assert.Equal(t, r3.Vec{Z: 0.5}, opts.ExternalField)
	assert.Equal(t, r3.Vec{Z: 1}, opts.SpinPolarization)
	assert.True(t, opts.MicromagneticCorrection)
}

func TestMaterials(t *testing.T) {
	cfg, _, err := Parse(bilayerInput)
	require.NoError(t, err)
	mats, err := cfg.Materials()
	require.NoError(t, err)
	require.Len(t, mats, 2)

	bottom, top := mats[0], mats[1]
	assert.Equal(t, "bottom", bottom.Name)
	assert.InDelta(t, 2.2*9.2740100783e-24, bottom.MuS, 1e-30)
	assert.Equal(t, 0.5, bottom.MaxHeight)
	assert.Equal(t, []float64{1e-21, 5e-22}, bottom.Exchange)
	assert.True(t, bottom.MicromagneticEnabled)
	assert.Equal(t, 1.0, bottom.Alpha, "default damping")

	assert.True(t, top.RandomSpins)
	assert.False(t, top.MicromagneticEnabled)
	assert.True(t, top.EnableSAF)
	assert.Equal(t, []float64{0.2, 0}, top.SAF)
	assert.Equal(t, r3.Vec{X: 1}, top.PinningFieldUnitVector)
	assert.Equal(t, 1.0, top.MaxHeight)
}

func TestParseNotFound(t *testing.T) {
	input := bilayerInput + `
[sim]
time-step = 1e-16

[gpu]
device = 0
`
	cfg, notFound, err := Parse(input)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.True(t, mentions(notFound, "time-step"), "%v", notFound)
	assert.True(t, mentions(notFound, "gpu"), "%v", notFound)
	assert.Equal(t, 300.0, cfg.Sim.Temperature)
}

func mentions(list []string, word string) bool {
	for _, s := range list {
		if strings.Contains(s, word) {
			return true
		}
	}
	return false
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"no system size", "[material \"0\"]\nname = a\n[cells]\nmacro-cell-size = 1\n"},
		{"no materials", "[dimensions]\nsystem-size-x = 1\nsystem-size-y = 1\nsystem-size-z = 1\n[cells]\nmacro-cell-size = 1\n"},
		{"bad vector", bilayerInput + "\n[spin-torque]\npolarization-unit-vector = 1 2\n"},
		{"bad number", bilayerInput + "\n[sim]\ntemperature = hot\n"},
		{"material name", bilayerInput + "\n[material \"top\"]\nname = x\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Parse(tt.input)
			assert.Error(t, err)
		})
	}
}

func TestUnitCellSizeOutOfRange(t *testing.T) {
	cfg, _, err := Parse(bilayerInput + "\n[dimensions]\nunit-cell-size-z = 0.001\n")
	require.NoError(t, err)
	_, err = cfg.UnitCellSettings()
	assert.True(t, errors.Is(err, unitcell.ErrValueOutOfRange))
}

func TestMaterialIndicesMustBeDense(t *testing.T) {
	cfg, _, err := Parse(bilayerInput + "\n[material \"3\"]\nname = gap\n")
	require.NoError(t, err)
	_, err = cfg.Materials()
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.gcfg")
	require.NoError(t, os.WriteFile(path, []byte(bilayerInput), 0o644))

	cfg, _, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 300.0, cfg.Sim.Temperature)

	_, _, err = Load(filepath.Join(t.TempDir(), "missing.gcfg"))
	assert.Error(t, err)
}

func TestUnknownOptions(t *testing.T) {
	cfg, _, err := Parse(bilayerInput)
	require.NoError(t, err)

	cfg.Micromagnetic.Partitioning = "metis"
	_, err = cfg.MicromagneticOptions()
	assert.Error(t, err)

	cfg.Micromagnetic.Partitioning = ""
	cfg.Micromagnetic.Discretisation = "spectral"
	_, err = cfg.MicromagneticOptions()
	assert.Error(t, err)
}

func TestLoadUnitCellFile(t *testing.T) {
	dir := t.TempDir()
	chain := "3 3 3\n1 0 0\n0 1 0\n0 0 1\n1 1\n0 0 0 0 0\n2 isotropic\n0 0 0 1 0 0 1\n1 0 0 -1 0 0 1\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "chain.ucf"), []byte(chain), 0o644))
	path := filepath.Join(dir, "input.gcfg")
	text := bilayerInput + "\n[create]\nunit-cell-file = chain.ucf\n"
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))

	cfg, notFound, err := Load(path)
	require.NoError(t, err)
	assert.Empty(t, notFound)
	s, err := cfg.UnitCellSettings()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "chain.ucf"), s.UnitCellFile)

	uc, err := unitcell.New(s)
	require.NoError(t, err)
	require.NoError(t, unitcell.CalculateInteractions(uc))
	assert.Equal(t, "chain.ucf", uc.Structure)
	assert.Len(t, uc.Interactions, 2)
}

func TestBiasField(t *testing.T) {
	cfg, _, err := Parse(bilayerInput)
	require.NoError(t, err)
	assert.Nil(t, cfg.BiasField(8))

	cfg, _, err = Parse(bilayerInput + "\n[micromagnetic]\nbias-field = 0, 0.2, 0\n")
	require.NoError(t, err)
	b := cfg.BiasField(8)
	require.Len(t, b, 8)
	assert.Equal(t, r3.Vec{Y: 0.2}, b[7])
}
