// Package material holds the per-material parameter table and the behaviour
// tables derived from it once at setup.
package material

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// BohrMagneton in J/T
const BohrMagneton = 9.2740100783e-24

// Material is one entry of the material table. Pairwise slices (SAF,
// OverrideAtomistic, EFMM, Exchange) are indexed by the other material and
// are either empty or as long as the table.
type Material struct {
	Name string

	MuS   float64 // atomic moment, J/T
	Tc    float64 // Curie temperature, K; negative marks an antiferromagnet
	Alpha float64
	Gamma float64

	Ku       float64 // uniaxial anisotropy energy density
	EasyAxis r3.Vec

	OneOverChiPara float64
	OneOverChiPerp float64

	RandomSpins bool
	InitialSpin r3.Vec

	MicromagneticEnabled   bool
	PinningFieldUnitVector r3.Vec

	EnableSAF         bool
	SAF               []float64
	OverrideAtomistic []bool
	EFMM              []float64

	SlonczewskiAJ float64
	SlonczewskiBJ float64

	// Height band as a fraction of the system height
	MinHeight, MaxHeight float64

	Exchange []float64 // J_ij to each material, Joules
}

// Default returns a ferromagnet with the usual fallback values
func Default(name string) Material {
	return Material{
		Name:                 name,
		MuS:                  1.72 * BohrMagneton,
		Tc:                   1043,
		Alpha:                1.0,
		Gamma:                1.0,
		EasyAxis:             r3.Vec{Z: 1},
		OneOverChiPara:       1.0,
		OneOverChiPerp:       1.0,
		InitialSpin:          r3.Vec{Z: 1},
		MicromagneticEnabled: true,
		MinHeight:            0.0,
		MaxHeight:            1.0,
	}
}

// Table is the ordered list of materials; a material id is its index
type Table []Material

// Validate checks the pairwise parameter shapes
func (t Table) Validate() error {
	n := len(t)
	if n == 0 {
		return fmt.Errorf("material table is empty")
	}
	for i, m := range t {
		for name, l := range map[string]int{
			"saf":                len(m.SAF),
			"override-atomistic": len(m.OverrideAtomistic),
			"ef-mm":              len(m.EFMM),
			"exchange":           len(m.Exchange),
		} {
			if l != 0 && l != n {
				return fmt.Errorf("material %d (%s): %s has %d entries, want 0 or %d", i, m.Name, name, l, n)
			}
		}
		if m.MaxHeight < m.MinHeight {
			return fmt.Errorf("material %d (%s): maximum height %g below minimum height %g",
				i, m.Name, m.MaxHeight, m.MinHeight)
		}
	}
	return nil
}

// ExchangeBetween returns J_ij between materials i and j, zero if unset
func (t Table) ExchangeBetween(i, j int) float64 {
	if j < len(t[i].Exchange) {
		return t[i].Exchange[j]
	}
	return 0
}

// Thickness returns the height of the material band in Angstroms for a
// system of the given height
func (t Table) Thickness(mat int, systemZ float64) float64 {
	return (t[mat].MaxHeight - t[mat].MinHeight) * systemZ
}

// HasHeightBands reports whether any material is restricted to a band
// narrower than the full system height
func (t Table) HasHeightBands() bool {
	for _, m := range t {
		if m.MinHeight > 0 || m.MaxHeight < 1 {
			return true
		}
	}
	return false
}

// MaterialAtHeight returns the first material whose band holds the
// fractional height h, or -1
func (t Table) MaterialAtHeight(h float64) int {
	for i, m := range t {
		if h >= m.MinHeight && (h < m.MaxHeight || (m.MaxHeight >= 1 && h <= 1)) {
			return i
		}
	}
	return -1
}
