package micromagnetic

import (
	"fmt"

	"github.com/101Room/vampire/material"
	"github.com/101Room/vampire/topology"
	"github.com/101Room/vampire/unitcell"
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/mat"
)

// MacroNeighbours is the cell level neighbour list, using the same
// start/end encoding as the atomic list. A[j] is the exchange coefficient
// of link j.
type MacroNeighbours struct {
	Start []int
	End   []int
	IDs   []int
	A     []float64
}

// Range returns the neighbour cells and coefficients of a cell
func (mn *MacroNeighbours) Range(cell int) (ids []int, a []float64) {
	lo, hi := mn.Start[cell], mn.End[cell]+1
	return mn.IDs[lo:hi], mn.A[lo:hi]
}

// BuildMacroNeighbours links two cells when any atomic neighbour pair
// crosses them. The coefficient of link (cell, cellj) is
// -sum(J_ij * tr(Jtensor)/3) / Ms[cell] over the crossing pairs.
func BuildMacroNeighbours(nl *topology.NeighbourList, interactions []unitcell.Interaction,
	atomMaterial, cellOfAtom []int, mats material.Table, ms []float64) (*MacroNeighbours, error) {
	if nl.Len() != len(cellOfAtom) {
		return nil, fmt.Errorf("neighbour list covers %d atoms, %d cell memberships", nl.Len(), len(cellOfAtom))
	}
	numCells := len(ms)

	scale := make([]float64, len(interactions))
	for i, in := range interactions {
		if in.Jij == nil {
			scale[i] = 1
			continue
		}
		scale[i] = mat.Trace(in.Jij) / 3
	}

	sums := make([]map[int]float64, numCells)
	for atom := 0; atom < nl.Len(); atom++ {
		cell := cellOfAtom[atom]
		ids, types := nl.Range(atom)
		for k, j := range ids {
			cellj := cellOfAtom[j]
			if cellj == cell {
				continue
			}
			if types[k] < 0 || types[k] >= len(scale) {
				return nil, fmt.Errorf("atom %d neighbour %d has interaction type %d of %d", atom, j, types[k], len(scale))
			}
			if sums[cell] == nil {
				sums[cell] = make(map[int]float64)
			}
			jij := mats.ExchangeBetween(atomMaterial[atom], atomMaterial[j])
			sums[cell][cellj] += jij * scale[types[k]]
		}
	}

	mn := &MacroNeighbours{
		Start: make([]int, numCells),
		End:   make([]int, numCells),
	}
	for cell := 0; cell < numCells; cell++ {
		mn.Start[cell] = len(mn.IDs)
		keys := make([]int, 0, len(sums[cell]))
		for cellj := range sums[cell] {
			keys = append(keys, cellj)
		}
		slices.Sort(keys)
		for _, cellj := range keys {
			a := 0.0
			if ms[cell] > 0 {
				a = -sums[cell][cellj] / ms[cell]
			}
			mn.IDs = append(mn.IDs, cellj)
			mn.A = append(mn.A, a)
		}
		mn.End[cell] = len(mn.IDs) - 1
	}
	logger.Infof("Built %d macro-neighbour links between %d cells", len(mn.IDs), numCells)
	return mn, nil
}
