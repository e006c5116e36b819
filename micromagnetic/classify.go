package micromagnetic

import (
	"context"
	"fmt"

	"github.com/101Room/vampire/material"
	"github.com/101Room/vampire/partitions"
	"github.com/101Room/vampire/vmpi"
	"golang.org/x/exp/slices"
)

// Discretisation selects how the system is represented
type Discretisation int

const (
	Atomistic     Discretisation = iota // every atom resolved, no continuum cells
	Micromagnetic                       // every cell continuum
	Multiscale                          // per-cell choice
)

func (d Discretisation) String() string {
	switch d {
	case Atomistic:
		return "atomistic"
	case Micromagnetic:
		return "micromagnetic"
	case Multiscale:
		return "multiscale"
	}
	return fmt.Sprintf("Discretisation(%d)", int(d))
}

// ParseDiscretisation maps an input keyword to a Discretisation
func ParseDiscretisation(s string) (Discretisation, error) {
	switch s {
	case "atomistic":
		return Atomistic, nil
	case "", "micromagnetic":
		return Micromagnetic, nil
	case "multiscale":
		return Multiscale, nil
	}
	return 0, fmt.Errorf("unknown discretisation %q", s)
}

// Thresholds below which a cell carries no usable moment or ordering
const (
	uniformMsEpsilon = 1e-40
	mixedMsEpsilon   = 1e-30
	tcEpsilon        = 0.1
)

// SelectDiscretisation makes the one mode decision for the run: a
// micromagnetic request becomes multiscale when any cell holds an
// antiferromagnet.
func SelectDiscretisation(requested Discretisation, tc []float64) Discretisation {
	if requested != Micromagnetic {
		return requested
	}
	for _, t := range tc {
		if t < 0 {
			return Multiscale
		}
	}
	return Micromagnetic
}

// Run is a half-open range [Begin, End) of consecutive atom ids
type Run struct {
	Begin, End int
}

// CompactRuns splits a sorted id list into maximal runs of consecutive ids
func CompactRuns(ids []int) []Run {
	if len(ids) == 0 {
		return nil
	}
	runs := make([]Run, 0, 1)
	begin := ids[0]
	for i := 1; i < len(ids); i++ {
		if ids[i] != ids[i-1]+1 {
			runs = append(runs, Run{Begin: begin, End: ids[i-1] + 1})
			begin = ids[i]
		}
	}
	return append(runs, Run{Begin: begin, End: ids[len(ids)-1] + 1})
}

// Classification owns the partition of atoms and cells. MagneticCells are
// the continuum cells this rank evaluates.
type Classification struct {
	Discretisation Discretisation

	CellIsContinuum []bool

	AtomisticAtoms    []int
	NonAtomisticAtoms []int
	MagneticCells     []int
	EmptyCells        []int

	Runs []Run

	// Global distribution of magnetic cells, set in micromagnetic mode
	Layout *partitions.PartitionLayout
}

// ClassifyInput is what Classify needs from setup
type ClassifyInput struct {
	Params       *CellParameters
	AtomMaterial []int
	CellOfAtom   []int
	Materials    material.Table

	Requested Discretisation
	Strategy  partitions.PartitionStrategy

	// Cells held by this rank in multiscale mode, all cells when nil
	LocalCells []int
}

// Classify decides per cell and per atom which representation applies.
// In micromagnetic mode the magnetic cells are distributed over the ranks
// of comm, bracketed by two barriers.
func Classify(ctx context.Context, comm vmpi.Comm, in ClassifyInput) (*Classification, error) {
	p := in.Params
	mode := SelectDiscretisation(in.Requested, p.Tc)
	c := &Classification{
		Discretisation:  mode,
		CellIsContinuum: make([]bool, p.NumCells),
	}
	numAtoms := len(in.CellOfAtom)

	switch mode {
	case Atomistic:
		c.AtomisticAtoms = sequence(numAtoms)
		c.EmptyCells = sequence(p.NumCells)

	case Multiscale:
		for cell := 0; cell < p.NumCells; cell++ {
			mat := p.Material[cell]
			if mat < len(in.Materials) {
				c.CellIsContinuum[cell] = in.Materials[mat].MicromagneticEnabled
			}
			if p.Tc[cell] < 0 {
				c.CellIsContinuum[cell] = false
			}
		}
		for atom, cell := range in.CellOfAtom {
			if c.CellIsContinuum[cell] {
				c.NonAtomisticAtoms = append(c.NonAtomisticAtoms, atom)
			} else {
				c.AtomisticAtoms = append(c.AtomisticAtoms, atom)
			}
		}
		local := in.LocalCells
		if local == nil {
			local = sequence(p.NumCells)
		}
		for _, cell := range local {
			if c.CellIsContinuum[cell] && p.Ms[cell] > mixedMsEpsilon {
				c.MagneticCells = append(c.MagneticCells, cell)
			} else {
				c.EmptyCells = append(c.EmptyCells, cell)
			}
		}

	default:
		if err := comm.Barrier(ctx); err != nil {
			return nil, err
		}
		var magnetic []int
		for cell := 0; cell < p.NumCells; cell++ {
			if p.Ms[cell] > uniformMsEpsilon && p.Tc[cell] > tcEpsilon {
				magnetic = append(magnetic, cell)
				c.CellIsContinuum[cell] = true
			} else {
				c.EmptyCells = append(c.EmptyCells, cell)
			}
		}
		pb := &partitions.PartitionBuilder{Cells: magnetic, NumRanks: comm.Size(), Strategy: in.Strategy}
		layout, err := pb.BuildPartitions()
		if err != nil {
			return nil, err
		}
		c.Layout = layout
		c.MagneticCells = slices.Clone(layout.Local(comm.Rank()))
		logger.Debugf("rank %d owns %d of %d magnetic cells", comm.Rank(), len(c.MagneticCells), len(magnetic))
		if err := comm.Barrier(ctx); err != nil {
			return nil, err
		}
		c.NonAtomisticAtoms = sequence(numAtoms)
	}

	c.Runs = CompactRuns(c.AtomisticAtoms)
	logger.Infof("Classified %s: %d atomistic atoms in %d runs, %d continuum cells, %d empty cells",
		mode, len(c.AtomisticAtoms), len(c.Runs), len(c.MagneticCells), len(c.EmptyCells))
	return c, nil
}

// Validate checks that atoms and cells are each split into disjoint sets
// covering numAtoms atoms and the given cells
func (c *Classification) Validate(numAtoms int, cells []int) error {
	atoms := append(slices.Clone(c.AtomisticAtoms), c.NonAtomisticAtoms...)
	slices.Sort(atoms)
	if !slices.Equal(atoms, sequence(numAtoms)) {
		return fmt.Errorf("atom classification does not partition %d atoms", numAtoms)
	}
	got := append(slices.Clone(c.MagneticCells), c.EmptyCells...)
	want := slices.Clone(cells)
	slices.Sort(got)
	slices.Sort(want)
	if !slices.Equal(got, want) {
		return fmt.Errorf("cell classification does not partition %d cells", len(cells))
	}
	return nil
}

func sequence(n int) []int {
	s := make([]int, n)
	for i := range s {
		s[i] = i
	}
	return s
}
