// Package topology flattens the generated crystal into the per-atom arrays
// and the arena neighbour list used during time integration.
package topology

import (
	"errors"
	"fmt"

	"github.com/101Room/vampire/create"
	"github.com/101Room/vampire/material"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/spatial/r3"
)

var logger = logrus.WithField("module", "topology")

// ErrInvalidNeighbourList is returned when the start/end ranges of a
// neighbour list are inconsistent
var ErrInvalidNeighbourList = errors.New("invalid neighbour list")

// NeighbourList stores all neighbours in one arena. The neighbours of atom
// a are IDs[Start[a] : End[a]+1]; an atom without neighbours has
// End[a] == Start[a]-1.
type NeighbourList struct {
	Start []int
	End   []int
	IDs   []int
	Types []int // interaction type tag of each entry
}

// Len returns the number of atoms covered by the list
func (nl *NeighbourList) Len() int { return len(nl.Start) }

// Count returns the number of neighbours of atom a
func (nl *NeighbourList) Count(a int) int { return nl.End[a] - nl.Start[a] + 1 }

// Range returns the neighbour ids and type tags of atom a as views into
// the arena
func (nl *NeighbourList) Range(a int) (ids, types []int) {
	lo, hi := nl.Start[a], nl.End[a]+1
	return nl.IDs[lo:hi], nl.Types[lo:hi]
}

// Validate checks that every slice is well formed, that slices are laid out
// in order without overlap and that they cover the arena exactly
func (nl *NeighbourList) Validate() error {
	if len(nl.End) != len(nl.Start) {
		return fmt.Errorf("%w: %d start entries, %d end entries", ErrInvalidNeighbourList, len(nl.Start), len(nl.End))
	}
	if len(nl.Types) != len(nl.IDs) {
		return fmt.Errorf("%w: %d ids, %d type tags", ErrInvalidNeighbourList, len(nl.IDs), len(nl.Types))
	}
	next := 0
	for a := range nl.Start {
		if nl.Start[a] != next {
			return fmt.Errorf("%w: atom %d starts at %d, expected %d", ErrInvalidNeighbourList, a, nl.Start[a], next)
		}
		if nl.End[a] < nl.Start[a]-1 {
			return fmt.Errorf("%w: atom %d ends at %d before its start %d", ErrInvalidNeighbourList, a, nl.End[a], nl.Start[a])
		}
		next = nl.End[a] + 1
	}
	if next != len(nl.IDs) {
		return fmt.Errorf("%w: slices cover %d entries, arena holds %d", ErrInvalidNeighbourList, next, len(nl.IDs))
	}
	for i, id := range nl.IDs {
		if id < 0 || id >= len(nl.Start) {
			return fmt.Errorf("%w: entry %d refers to atom %d of %d", ErrInvalidNeighbourList, i, id, len(nl.Start))
		}
	}
	return nil
}

// Atoms holds the per-atom arrays. The last NumHalo entries are halo
// atoms replicated from other ranks.
type Atoms struct {
	Position []r3.Vec
	Material []int
	Category []int
	Grain    []int
	Cell     []int

	Spin          []r3.Vec
	SpinField     []r3.Vec
	ExternalField []r3.Vec
	DipolarField  []r3.Vec

	NumHalo int
}

// Len returns the number of atoms including halo atoms
func (a *Atoms) Len() int { return len(a.Position) }

// NumLocal returns the number of atoms owned by this rank
func (a *Atoms) NumLocal() int { return len(a.Position) - a.NumHalo }

// Topology is the flattened atomic system
type Topology struct {
	Atoms      Atoms
	Neighbours NeighbourList
}

// Options controls flattening
type Options struct {
	CellOfAtom   []int // optional, zero when nil
	NumHaloAtoms int
	Seed         uint64 // random spin stream
}

// Flatten copies the crystal into per-atom arrays, initialises spins from
// each material's strategy and writes every neighbour candidate into a
// single arena.
func Flatten(c *create.Crystal, mats material.Table, opts Options) (*Topology, error) {
	n := len(c.Atoms)
	if len(c.Neighbours) != n {
		return nil, fmt.Errorf("crystal has %d atoms but %d neighbour lists", n, len(c.Neighbours))
	}
	if opts.CellOfAtom != nil && len(opts.CellOfAtom) != n {
		return nil, fmt.Errorf("cell membership covers %d atoms, crystal has %d", len(opts.CellOfAtom), n)
	}
	if opts.NumHaloAtoms < 0 || opts.NumHaloAtoms > n {
		return nil, fmt.Errorf("halo atom count %d outside [0,%d]", opts.NumHaloAtoms, n)
	}

	initialisers := mats.SpinInitialisers()
	rng := rand.New(rand.NewSource(opts.Seed))

	t := &Topology{
		Atoms: Atoms{
			Position:      make([]r3.Vec, n),
			Material:      make([]int, n),
			Category:      make([]int, n),
			Grain:         make([]int, n),
			Cell:          make([]int, n),
			Spin:          make([]r3.Vec, n),
			SpinField:     make([]r3.Vec, n),
			ExternalField: make([]r3.Vec, n),
			DipolarField:  make([]r3.Vec, n),
			NumHalo:       opts.NumHaloAtoms,
		},
	}
	for i, a := range c.Atoms {
		if a.Material < 0 || a.Material >= len(mats) {
			return nil, fmt.Errorf("atom %d has material %d, %d materials defined", i, a.Material, len(mats))
		}
		t.Atoms.Position[i] = a.Position
		t.Atoms.Material[i] = a.Material
		t.Atoms.Category[i] = a.Category
		t.Atoms.Grain[i] = a.Grain
		if opts.CellOfAtom != nil {
			t.Atoms.Cell[i] = opts.CellOfAtom[i]
		}
		t.Atoms.Spin[i] = initialisers[a.Material].InitialSpin(rng)
	}

	total := c.NumNeighbours()
	nl := NeighbourList{
		Start: make([]int, n),
		End:   make([]int, n),
		IDs:   make([]int, 0, total),
		Types: make([]int, 0, total),
	}
	for i, nbrs := range c.Neighbours {
		nl.Start[i] = len(nl.IDs)
		for _, nb := range nbrs {
			nl.IDs = append(nl.IDs, nb.NN)
			nl.Types = append(nl.Types, nb.I)
		}
		nl.End[i] = len(nl.IDs) - 1
	}
	t.Neighbours = nl

	if err := nl.Validate(); err != nil {
		return nil, err
	}
	logger.Infof("Flattened %d atoms with %d neighbour entries", n, total)
	return t, nil
}
