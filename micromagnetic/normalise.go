package micromagnetic

import (
	"github.com/101Room/vampire/material"
	"gonum.org/v1/gonum/spatial/r3"
)

// Normalisation holds the per-material totals over the cells each material
// dominates, and the derived prefactor
// 1 / (thickness * MaterialMs/MaterialVolume).
type Normalisation struct {
	MaterialVolume []float64
	MaterialMs     []float64
	Prefactor      []float64
}

// Normalise computes the per-material totals and prefactors. A material
// with no volume, moment or thickness gets a zero prefactor.
func Normalise(p *CellParameters, mats material.Table, systemZ float64) *Normalisation {
	n := &Normalisation{
		MaterialVolume: make([]float64, len(mats)),
		MaterialMs:     make([]float64, len(mats)),
		Prefactor:      make([]float64, len(mats)),
	}
	for cell := 0; cell < p.NumCells; cell++ {
		mat := p.Material[cell]
		n.MaterialVolume[mat] += p.Volume[cell]
		n.MaterialMs[mat] += p.Ms[cell]
	}
	for mat := range mats {
		t := mats.Thickness(mat, systemZ)
		if t == 0 || n.MaterialVolume[mat] == 0 || n.MaterialMs[mat] == 0 {
			continue
		}
		n.Prefactor[mat] = 1 / (t * n.MaterialMs[mat] / n.MaterialVolume[mat])
	}
	return n
}

// PinningFields scales each cell's material pinning direction by the
// material prefactor. Cells whose material has no pinning direction get a
// zero field.
func PinningFields(p *CellParameters, mats material.Table, prefactor []float64) []r3.Vec {
	fields := make([]r3.Vec, p.NumCells)
	for cell := 0; cell < p.NumCells; cell++ {
		mat := p.Material[cell]
		u := mats[mat].PinningFieldUnitVector
		if r3.Norm2(u) == 0 {
			continue
		}
		fields[cell] = r3.Scale(prefactor[mat], u)
	}
	return fields
}

// ApplyMicromagneticCorrection rescales every pinning field component by
// 2/cellSize along its axis, in place
func ApplyMicromagneticCorrection(fields []r3.Vec, cellSize r3.Vec) {
	for i, f := range fields {
		fields[i] = r3.Vec{
			X: 2 * f.X / cellSize.X,
			Y: 2 * f.Y / cellSize.Y,
			Z: 2 * f.Z / cellSize.Z,
		}
	}
}
