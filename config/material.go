package config

import (
	"fmt"
	"strconv"

	"github.com/101Room/vampire/material"
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/spatial/r3"
)

// MaterialConfig is one [material "<index>"] section. Pairwise lists are
// given as repeated variables, one per other material in index order.
type MaterialConfig struct {
	Name string

	AtomicSpinMoment           float64 `gcfg:"atomic-spin-moment"` // Bohr magnetons
	CurieTemperature           float64 `gcfg:"curie-temperature"`
	Antiferromagnet            bool
	DampingConstant            float64 `gcfg:"damping-constant"`
	GyromagneticRatio          float64 `gcfg:"gyromagnetic-ratio"`
	UniaxialAnisotropyConstant float64 `gcfg:"uniaxial-anisotropy-constant"`
	EasyAxis                   Vec3    `gcfg:"easy-axis"`

	OneOverChiParallel      float64 `gcfg:"inverse-parallel-susceptibility"`
	OneOverChiPerpendicular float64 `gcfg:"inverse-perpendicular-susceptibility"`

	RandomSpins          bool `gcfg:"random-spins"`
	InitialSpinDirection Vec3 `gcfg:"initial-spin-direction"`

	AtomisticOnly bool `gcfg:"atomistic-only"`
	PinningField  Vec3 `gcfg:"pinning-field-unit-vector"`

	EnableSAF         bool      `gcfg:"enable-saf"`
	SAF               []float64 `gcfg:"saf"`
	OverrideAtomistic []bool    `gcfg:"override-atomistic"`
	EFMM              []float64 `gcfg:"ef-mm"`
	Exchange          []float64 `gcfg:"exchange-matrix"` // Joules

	SlonczewskiAJ float64 `gcfg:"slonczewski-aj"`
	SlonczewskiBJ float64 `gcfg:"slonczewski-bj"`

	MinimumHeight float64 `gcfg:"minimum-height"`
	MaximumHeight float64 `gcfg:"maximum-height"`
}

// CheckInit validates a material section
func (m *MaterialConfig) CheckInit(name string) error {
	if _, err := strconv.Atoi(name); err != nil {
		return fmt.Errorf("material section %q must be named by its index", name)
	}
	if m.AtomicSpinMoment < 0 {
		return fmt.Errorf("material %s: atomic-spin-moment must not be negative, got %g", name, m.AtomicSpinMoment)
	}
	if m.CurieTemperature < 0 {
		return fmt.Errorf("material %s: curie-temperature must not be negative, got %g; "+
			"mark antiferromagnets with antiferromagnet = true", name, m.CurieTemperature)
	}
	if m.MinimumHeight < 0 || m.MaximumHeight > 1 {
		return fmt.Errorf("material %s: height band [%g, %g] outside [0, 1]", name, m.MinimumHeight, m.MaximumHeight)
	}
	return nil
}

// material converts the section, taking unset values from material.Default
func (m *MaterialConfig) material(index string) material.Material {
	name := m.Name
	if name == "" {
		name = "material-" + index
	}
	out := material.Default(name)
	if m.AtomicSpinMoment > 0 {
		out.MuS = m.AtomicSpinMoment * material.BohrMagneton
	}
	if m.CurieTemperature > 0 {
		out.Tc = m.CurieTemperature
	}
	if m.Antiferromagnet {
		out.Tc = -out.Tc
	}
	setIfNonZero(&out.Alpha, m.DampingConstant)
	setIfNonZero(&out.Gamma, m.GyromagneticRatio)
	setIfNonZero(&out.OneOverChiPara, m.OneOverChiParallel)
	setIfNonZero(&out.OneOverChiPerp, m.OneOverChiPerpendicular)
	out.Ku = m.UniaxialAnisotropyConstant
	if v := r3.Vec(m.EasyAxis); r3.Norm2(v) > 0 {
		out.EasyAxis = r3.Unit(v)
	}
	out.RandomSpins = m.RandomSpins
	if v := r3.Vec(m.InitialSpinDirection); r3.Norm2(v) > 0 {
		out.InitialSpin = v
	}
	out.MicromagneticEnabled = !m.AtomisticOnly
	out.PinningFieldUnitVector = r3.Vec(m.PinningField)
	out.EnableSAF = m.EnableSAF
	out.SAF = m.SAF
	out.OverrideAtomistic = m.OverrideAtomistic
	out.EFMM = m.EFMM
	out.Exchange = m.Exchange
	out.SlonczewskiAJ = m.SlonczewskiAJ
	out.SlonczewskiBJ = m.SlonczewskiBJ
	out.MinHeight = m.MinimumHeight
	if m.MaximumHeight > 0 {
		out.MaxHeight = m.MaximumHeight
	}
	return out
}

func setIfNonZero(dst *float64, v float64) {
	if v != 0 {
		*dst = v
	}
}

// Materials builds the material table. Sections must be numbered 0..n-1.
func (c *Config) Materials() (material.Table, error) {
	indices := make([]int, 0, len(c.Material))
	names := make(map[int]string, len(c.Material))
	for name := range c.Material {
		i, err := strconv.Atoi(name)
		if err != nil {
			return nil, fmt.Errorf("material section %q must be named by its index", name)
		}
		if prev, dup := names[i]; dup {
			return nil, fmt.Errorf("material sections %q and %q share index %d", prev, name, i)
		}
		names[i] = name
		indices = append(indices, i)
	}
	slices.Sort(indices)
	table := make(material.Table, len(indices))
	for pos, i := range indices {
		if i != pos {
			return nil, fmt.Errorf("material indices must run from 0 to %d, found %d", len(indices)-1, i)
		}
		table[i] = c.Material[names[i]].material(strconv.Itoa(i))
	}
	if err := table.Validate(); err != nil {
		return nil, err
	}
	return table, nil
}
