package material

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/spatial/r3"
)

// SpinInitialiser produces the starting spin of an atom
type SpinInitialiser interface {
	InitialSpin(rng *rand.Rand) r3.Vec
}

// FixedSpin starts every atom along the configured direction
type FixedSpin struct {
	Spin r3.Vec
}

// InitialSpin returns the normalised configured spin, +z if it has no length
func (f FixedSpin) InitialSpin(*rand.Rand) r3.Vec {
	return normalise(f.Spin)
}

// RandomSpin draws three uniform components in [-1,1] and normalises them
type RandomSpin struct{}

// InitialSpin returns a random unit vector
func (RandomSpin) InitialSpin(rng *rand.Rand) r3.Vec {
	v := r3.Vec{
		X: 2.0*rng.Float64() - 1.0,
		Y: 2.0*rng.Float64() - 1.0,
		Z: 2.0*rng.Float64() - 1.0,
	}
	return normalise(v)
}

func normalise(v r3.Vec) r3.Vec {
	n := r3.Norm(v)
	if n == 0 || math.IsNaN(n) {
		return r3.Vec{Z: 1}
	}
	return r3.Scale(1/n, v)
}

// SpinInitialisers selects the initialiser of every material once
func (t Table) SpinInitialisers() []SpinInitialiser {
	out := make([]SpinInitialiser, len(t))
	for i, m := range t {
		if m.RandomSpins {
			out[i] = RandomSpin{}
		} else {
			out[i] = FixedSpin{Spin: m.InitialSpin}
		}
	}
	return out
}

// CouplingRule selects how the intercell exchange between two materials is
// evaluated
type CouplingRule uint8

const (
	CouplingExchange   CouplingRule = iota // A[link]*|m_j|^1.66
	CouplingSAF                            // synthetic antiferromagnet override
	CouplingInterlayer                     // interlayer exchange field override
)

func (c CouplingRule) String() string {
	switch c {
	case CouplingSAF:
		return "saf"
	case CouplingInterlayer:
		return "interlayer"
	}
	return "exchange"
}

// Coupling is the rule and coefficient for one ordered material pair
type Coupling struct {
	Rule        CouplingRule
	Coefficient float64 // SAF[j] or EFMM[j], unused for CouplingExchange
}

// CouplingRules builds the ordered pair table [mat][matj]. The interlayer
// override takes precedence over SAF coupling.
func (t Table) CouplingRules() [][]Coupling {
	n := len(t)
	rules := make([][]Coupling, n)
	for i, mi := range t {
		rules[i] = make([]Coupling, n)
		for j, mj := range t {
			c := Coupling{Rule: CouplingExchange}
			if mi.EnableSAF && mj.EnableSAF && i != j {
				c = Coupling{Rule: CouplingSAF, Coefficient: valueAt(mi.SAF, j)}
			}
			if j < len(mi.OverrideAtomistic) && mi.OverrideAtomistic[j] {
				c = Coupling{Rule: CouplingInterlayer, Coefficient: valueAt(mi.EFMM, j)}
			}
			rules[i][j] = c
		}
	}
	return rules
}

func valueAt(s []float64, i int) float64 {
	if i < len(s) {
		return s[i]
	}
	return 0
}
