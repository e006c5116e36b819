// Package micromagnetic implements the continuum side of the multiscale
// model: per-cell parameters, the macro-neighbour exchange list, the
// atomistic/continuum partition and the Landau-Lifshitz-Bloch effective
// field.
package micromagnetic

import (
	"fmt"

	"github.com/101Room/vampire/material"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/spatial/r3"
)

var logger = logrus.WithField("module", "micromagnetic")

// CellParameters owns the per-cell material parameters. Me, AlphaPara and
// AlphaPerp are rewritten by the field calculator every timestep.
type CellParameters struct {
	NumCells int

	Ms     []float64 // total moment, J/T
	Alpha  []float64
	Gamma  []float64
	Tc     []float64 // negative when the cell holds antiferromagnetic atoms
	Ku     []float64
	KuAxis []r3.Vec

	OneOverChiPara []float64
	OneOverChiPerp []float64

	Me        []float64
	AlphaPara []float64
	AlphaPerp []float64

	Material []int // dominant material
	Volume   []float64
}

// CalculateParameters aggregates atom properties into their cells
func CalculateParameters(atomMaterial, cellOfAtom []int, volumes []float64, mats material.Table) (*CellParameters, error) {
	if len(atomMaterial) != len(cellOfAtom) {
		return nil, fmt.Errorf("%d atom materials for %d cell memberships", len(atomMaterial), len(cellOfAtom))
	}
	n := len(volumes)
	p := &CellParameters{
		NumCells:       n,
		Ms:             make([]float64, n),
		Alpha:          make([]float64, n),
		Gamma:          make([]float64, n),
		Tc:             make([]float64, n),
		Ku:             make([]float64, n),
		KuAxis:         make([]r3.Vec, n),
		OneOverChiPara: make([]float64, n),
		OneOverChiPerp: make([]float64, n),
		Me:             make([]float64, n),
		AlphaPara:      make([]float64, n),
		AlphaPerp:      make([]float64, n),
		Material:       make([]int, n),
		Volume:         append([]float64(nil), volumes...),
	}

	count := make([]int, n)
	afm := make([]bool, n)
	easy := make([]r3.Vec, n)
	perMaterial := make([][]int, n)
	for atom, cell := range cellOfAtom {
		if cell < 0 || cell >= n {
			return nil, fmt.Errorf("atom %d is in cell %d of %d", atom, cell, n)
		}
		mat := atomMaterial[atom]
		if mat < 0 || mat >= len(mats) {
			return nil, fmt.Errorf("atom %d has material %d, %d materials defined", atom, mat, len(mats))
		}
		m := mats[mat]
		count[cell]++
		p.Ms[cell] += m.MuS
		p.Alpha[cell] += m.Alpha
		p.Gamma[cell] += m.Gamma
		p.Tc[cell] += m.Tc
		p.Ku[cell] += m.Ku
		p.OneOverChiPara[cell] += m.OneOverChiPara
		p.OneOverChiPerp[cell] += m.OneOverChiPerp
		easy[cell] = r3.Add(easy[cell], m.EasyAxis)
		if m.Tc < 0 {
			afm[cell] = true
		}
		if perMaterial[cell] == nil {
			perMaterial[cell] = make([]int, len(mats))
		}
		perMaterial[cell][mat]++
	}

	for cell := 0; cell < n; cell++ {
		if count[cell] == 0 {
			continue
		}
		inv := 1 / float64(count[cell])
		p.Alpha[cell] *= inv
		p.Gamma[cell] *= inv
		p.Tc[cell] *= inv
		p.Ku[cell] *= inv
		p.OneOverChiPara[cell] *= inv
		p.OneOverChiPerp[cell] *= inv
		if afm[cell] && p.Tc[cell] >= 0 {
			p.Tc[cell] = -1
		}

		e := easy[cell]
		if norm := r3.Norm(e); norm > 0 {
			e = r3.Scale(1/norm, e)
		}
		p.KuAxis[cell] = r3.Vec{
			X: p.Ku[cell] * (1 - e.X*e.X),
			Y: p.Ku[cell] * (1 - e.Y*e.Y),
			Z: p.Ku[cell] * (1 - e.Z*e.Z),
		}
		p.Material[cell] = dominant(perMaterial[cell])
	}
	return p, nil
}

// dominant returns the most frequent material, the lowest id on ties
func dominant(counts []int) int {
	best := 0
	for mat, c := range counts {
		if c > counts[best] {
			best = mat
		}
	}
	return best
}

// SetSusceptibility replaces the inverse susceptibilities of a cell
func (p *CellParameters) SetSusceptibility(cell int, oneOverChiPara, oneOverChiPerp float64) {
	p.OneOverChiPara[cell] = oneOverChiPara
	p.OneOverChiPerp[cell] = oneOverChiPerp
}

// Magnetisation returns the reduced magnetisation of every cell, the moment
// weighted mean of its atom spins
func Magnetisation(spins []r3.Vec, atomMaterial, cellOfAtom []int, mats material.Table, numCells int) []r3.Vec {
	sum := make([]r3.Vec, numCells)
	ms := make([]float64, numCells)
	for atom, cell := range cellOfAtom {
		mu := mats[atomMaterial[atom]].MuS
		sum[cell] = r3.Add(sum[cell], r3.Scale(mu, spins[atom]))
		ms[cell] += mu
	}
	for cell := range sum {
		if ms[cell] > 0 {
			sum[cell] = r3.Scale(1/ms[cell], sum[cell])
		}
	}
	return sum
}
