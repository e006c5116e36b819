// Package create generates the atomic configuration of the simulated system
// by replicating the unit cell, and derives each atom's neighbour candidates
// from the unit-cell interactions.
package create

import (
	"fmt"
	"math"

	"github.com/101Room/vampire/material"
	"github.com/101Room/vampire/unitcell"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/spatial/r3"
)

var logger = logrus.WithField("module", "create")

// System describes the simulated volume
type System struct {
	Size     r3.Vec // Angstroms
	Periodic [3]bool
}

// Catom is one generated atom
type Catom struct {
	Position r3.Vec
	Material int
	Category int
	Grain    int
	UnitCell [3]int // replicated unit cell coordinates
	BasisID  int    // atom index within the unit cell
}

// Neighbour is one neighbour candidate of an atom
type Neighbour struct {
	NN int // neighbour atom id
	I  int // interaction id, used as the interaction type tag
}

// Crystal is the generated configuration. Neighbours[i] lists the
// candidates of Atoms[i].
type Crystal struct {
	Atoms      []Catom
	Neighbours [][]Neighbour
	NumCells   [3]int // replicated unit cells per axis
}

// Generate replicates the unit cell over the system. Atoms are numbered with
// the basis index fastest, then x, y and z, so that layers in z occupy
// contiguous id ranges. When any material is restricted to a height band,
// atoms take the first material whose band holds them and atoms outside
// every band are removed.
func Generate(uc *unitcell.UnitCell, mats material.Table, sys System) (*Crystal, error) {
	if len(uc.Interactions) == 0 {
		return nil, fmt.Errorf("unit cell has %w", unitcell.ErrNoInteractions)
	}
	if err := mats.Validate(); err != nil {
		return nil, err
	}

	size := [3]float64{sys.Size.X, sys.Size.Y, sys.Size.Z}
	var n [3]int
	for d := 0; d < 3; d++ {
		if size[d] <= 0 {
			return nil, fmt.Errorf("system size along axis %d must be positive, got %g", d, size[d])
		}
		n[d] = int(math.Ceil(size[d]/uc.Dimensions[d] - 1e-9))
		if n[d] < 1 {
			n[d] = 1
		}
		if sys.Periodic[d] && n[d] < 2*uc.InteractionRange+1 {
			return nil, fmt.Errorf("periodic axis %d has %d unit cells, need at least %d for interaction range %d",
				d, n[d], 2*uc.InteractionRange+1, uc.InteractionRange)
		}
	}
	na := len(uc.Atoms)
	index := func(cx, cy, cz, a int) int {
		return ((cz*n[1]+cy)*n[0]+cx)*na + a
	}

	bands := mats.HasHeightBands()
	total := n[0] * n[1] * n[2] * na
	all := make([]Catom, total)
	keep := make([]int, total) // new id, or -1 when removed
	kept := 0
	for cz := 0; cz < n[2]; cz++ {
		for cy := 0; cy < n[1]; cy++ {
			for cx := 0; cx < n[0]; cx++ {
				for a, atom := range uc.Atoms {
					id := index(cx, cy, cz, a)
					c := Catom{
						Position: r3.Vec{
							X: (atom.X + float64(cx)) * uc.Dimensions[0],
							Y: (atom.Y + float64(cy)) * uc.Dimensions[1],
							Z: (atom.Z + float64(cz)) * uc.Dimensions[2],
						},
						Material: atom.Material,
						Category: atom.Category,
						UnitCell: [3]int{cx, cy, cz},
						BasisID:  a,
					}
					if bands {
						c.Material = mats.MaterialAtHeight(c.Position.Z / sys.Size.Z)
					}
					if c.Material < 0 {
						keep[id] = -1
						continue
					}
					if c.Material >= len(mats) {
						return nil, fmt.Errorf("unit cell atom %d uses material %d but only %d materials are defined",
							a, c.Material, len(mats))
					}
					all[id] = c
					keep[id] = kept
					kept++
				}
			}
		}
	}

	from := make([][]int, na)
	for a := range uc.Atoms {
		from[a] = uc.InteractionsFrom(a)
	}

	crystal := &Crystal{
		Atoms:      make([]Catom, 0, kept),
		Neighbours: make([][]Neighbour, 0, kept),
		NumCells:   n,
	}
	for id, c := range all {
		if keep[id] < 0 {
			continue
		}
		nbrs := make([]Neighbour, 0, len(from[c.BasisID]))
		for _, ii := range from[c.BasisID] {
			in := uc.Interactions[ii]
			t, ok := target(c.UnitCell, [3]int{in.Dx, in.Dy, in.Dz}, n, sys.Periodic)
			if !ok {
				continue
			}
			j := keep[index(t[0], t[1], t[2], in.J)]
			if j < 0 {
				continue
			}
			nbrs = append(nbrs, Neighbour{NN: j, I: ii})
		}
		crystal.Atoms = append(crystal.Atoms, c)
		crystal.Neighbours = append(crystal.Neighbours, nbrs)
	}

	logger.Infof("Generated %d atoms in %d x %d x %d unit cells", len(crystal.Atoms), n[0], n[1], n[2])
	return crystal, nil
}

// target applies a cell offset, wrapping periodic axes
func target(cell, offset, n [3]int, periodic [3]bool) ([3]int, bool) {
	var t [3]int
	for d := 0; d < 3; d++ {
		t[d] = cell[d] + offset[d]
		if t[d] >= 0 && t[d] < n[d] {
			continue
		}
		if !periodic[d] {
			return t, false
		}
		t[d] = ((t[d] % n[d]) + n[d]) % n[d]
	}
	return t, true
}

// NumNeighbours returns the total number of neighbour candidates
func (c *Crystal) NumNeighbours() int {
	total := 0
	for _, nbrs := range c.Neighbours {
		total += len(nbrs)
	}
	return total
}
