package micromagnetic

import (
	"math"

	"github.com/101Room/vampire/material"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	criticalExponent = 0.365
	exchangeExponent = 1.66

	// below this temperature m_e and the longitudinal damping are floored
	lowTemperature   = 0.1
	lowTempAlphaPara = 0.001
)

// FieldSource supplies a precomputed per-cell field, such as the dipolar
// or environment field
type FieldSource interface {
	Field(cell int) r3.Vec
}

// CellFields is a FieldSource backed by a slice
type CellFields []r3.Vec

// Field returns the stored field of a cell
func (f CellFields) Field(cell int) r3.Vec { return f[cell] }

// SpinTorque is the Slonczewski spin-transfer torque configuration. AJ and
// BJ are the adiabatic and non-adiabatic coefficients per material.
type SpinTorque struct {
	Polarization r3.Vec
	AJ, BJ       []float64
}

// NewSpinTorque collects the per-material coefficients
func NewSpinTorque(mats material.Table, polarization r3.Vec) SpinTorque {
	st := SpinTorque{
		Polarization: polarization,
		AJ:           make([]float64, len(mats)),
		BJ:           make([]float64, len(mats)),
	}
	for i, m := range mats {
		st.AJ[i] = m.SlonczewskiAJ
		st.BJ[i] = m.SlonczewskiBJ
	}
	return st
}

// field returns aj*(m x p) + bj*p
func (st SpinTorque) field(mat int, m r3.Vec) r3.Vec {
	if mat >= len(st.AJ) {
		return r3.Vec{}
	}
	return r3.Add(r3.Scale(st.AJ[mat], r3.Cross(m, st.Polarization)), r3.Scale(st.BJ[mat], st.Polarization))
}

// FieldCalculator evaluates the LLB effective field of continuum cells.
// Optional contributions are disabled by leaving them nil.
type FieldCalculator struct {
	Params    *CellParameters
	Macro     *MacroNeighbours
	Couplings [][]material.Coupling
	Prefactor []float64

	External   r3.Vec
	Pinning    []r3.Vec
	SpinTorque SpinTorque

	Dipole      FieldSource
	Environment FieldSource
	TrackField  []r3.Vec
	BiasField   []r3.Vec
}

// EffectiveField returns the field on cell with reduced magnetisation m at
// temperature T. mag holds the current magnetisation of every cell, halo
// cells included, and supplies the neighbour and self terms of the
// exchange and spin torque. The cell's Me, AlphaPara and AlphaPerp are
// updated as a side effect.
func (fc *FieldCalculator) EffectiveField(m r3.Vec, T float64, cell int, mag []r3.Vec) r3.Vec {
	p := fc.Params
	tc := p.Tc[cell]
	alpha := p.Alpha[cell]

	if T <= tc {
		p.Me[cell] = math.Pow((tc-T)/tc, criticalExponent)
		p.AlphaPara[cell] = (2.0 / 3.0) * alpha * T / tc
		p.AlphaPerp[cell] = alpha * (1.0 - T/(3.0*tc))
	} else {
		p.Me[cell] = 0
		p.AlphaPara[cell] = alpha * (2.0 / 3.0) * T / tc
		p.AlphaPerp[cell] = p.AlphaPara[cell]
	}
	if T < lowTemperature {
		p.Me[cell] = 1.0
		p.AlphaPara[cell] = lowTempAlphaPara
	}

	mSq := r3.Norm2(m)
	var pf float64
	if T <= tc {
		me := p.Me[cell]
		pf = 0.5 * p.OneOverChiPara[cell] * (1.0 - mSq/(me*me))
	} else {
		pf = -p.OneOverChiPara[cell] * (1.0 + tc/(T-tc)*3.0*mSq/5.0)
	}

	mat := p.Material[cell]
	self := mag[cell]
	var exchange r3.Vec
	if p.NumCells > 1 && fc.Macro != nil {
		ids, coeffs := fc.Macro.Range(cell)
		for k, cellj := range ids {
			if cellj == cell {
				continue
			}
			mj := mag[cellj]
			scale := math.Pow(r3.Norm(mj), exchangeExponent)
			ac := coeffs[k] * scale
			if fc.Couplings != nil {
				coupling := fc.Couplings[mat][p.Material[cellj]]
				switch coupling.Rule {
				case material.CouplingSAF:
					ac = -scale * fc.Prefactor[p.Material[cellj]] * coupling.Coefficient
				case material.CouplingInterlayer:
					ac = -2 * scale * coupling.Coefficient / p.Ms[cell]
				}
			}
			exchange = r3.Sub(exchange, r3.Scale(ac, r3.Sub(mj, self)))
		}
	}

	chiPerp := p.OneOverChiPerp[cell]
	ku := p.KuAxis[cell]
	h := r3.Vec{
		X: pf*m.X - ku.X*chiPerp*m.X,
		Y: pf*m.Y - ku.Y*chiPerp*m.Y,
		Z: pf*m.Z - ku.Z*chiPerp*m.Z,
	}
	h = r3.Add(h, fc.External)
	h = r3.Add(h, exchange)
	h = r3.Add(h, fc.SpinTorque.field(mat, self))
	if fc.Pinning != nil {
		h = r3.Add(h, fc.Pinning[cell])
	}
	if fc.Dipole != nil {
		h = r3.Add(h, fc.Dipole.Field(cell))
	}
	if fc.Environment != nil {
		h = r3.Add(h, fc.Environment.Field(cell))
	}
	if len(fc.TrackField) != 0 {
		h = r3.Add(h, fc.TrackField[cell])
	}
	if fc.BiasField != nil {
		h = r3.Add(h, fc.BiasField[cell])
	}
	return h
}

// Fields evaluates EffectiveField for each listed cell using mag[cell] as
// its magnetisation
func (fc *FieldCalculator) Fields(T float64, cells []int, mag []r3.Vec) []r3.Vec {
	out := make([]r3.Vec, len(cells))
	for i, cell := range cells {
		out[i] = fc.EffectiveField(mag[cell], T, cell, mag)
	}
	return out
}
