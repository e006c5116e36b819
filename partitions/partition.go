// Package partitions distributes continuum cells across ranks.
package partitions

import (
	"errors"
	"fmt"

	"golang.org/x/exp/slices"
)

// ErrInvalidLayout is returned when a layout does not assign every cell to
// exactly one rank
var ErrInvalidLayout = errors.New("invalid partition layout")

// Partition is the set of cells one rank owns
type Partition struct {
	// Rank owning this partition
	ID int

	// Global cell ids, in the order they were handed out
	Cells    []int
	NumCells int
}

// PartitionLayout is the complete cell to rank decomposition
type PartitionLayout struct {
	Partitions []Partition

	TotalCells    int // Sum of cells across partitions
	NumPartitions int

	// Cell to rank mapping for every distributed cell
	CellToRank map[int]int
}

// RankOf returns the rank owning a cell, or -1 when the cell was not
// distributed
func (pl *PartitionLayout) RankOf(cell int) int {
	if r, ok := pl.CellToRank[cell]; ok {
		return r
	}
	return -1
}

// Owners returns a dense cell to rank array over numCells cells, -1 for
// cells that were not distributed
func (pl *PartitionLayout) Owners(numCells int) []int {
	out := make([]int, numCells)
	for i := range out {
		out[i] = -1
	}
	for cell, r := range pl.CellToRank {
		if cell >= 0 && cell < numCells {
			out[cell] = r
		}
	}
	return out
}

// Local returns the cells owned by rank, nil for an unknown rank
func (pl *PartitionLayout) Local(rank int) []int {
	if rank < 0 || rank >= len(pl.Partitions) {
		return nil
	}
	return pl.Partitions[rank].Cells
}

// ValidateLayout checks that the partitions are disjoint and that together
// they hold exactly the distributed cells
func (pl *PartitionLayout) ValidateLayout() error {
	if len(pl.Partitions) != pl.NumPartitions {
		return fmt.Errorf("%w: %d partitions, expected %d", ErrInvalidLayout, len(pl.Partitions), pl.NumPartitions)
	}
	seen := make(map[int]int, pl.TotalCells)
	total := 0
	for i, p := range pl.Partitions {
		if p.ID != i {
			return fmt.Errorf("%w: partition %d has ID %d", ErrInvalidLayout, i, p.ID)
		}
		if p.NumCells != len(p.Cells) {
			return fmt.Errorf("%w: partition %d: NumCells %d != %d cells", ErrInvalidLayout, i, p.NumCells, len(p.Cells))
		}
		for _, c := range p.Cells {
			if owner, dup := seen[c]; dup {
				return fmt.Errorf("%w: cell %d owned by ranks %d and %d", ErrInvalidLayout, c, owner, i)
			}
			seen[c] = i
			if r, ok := pl.CellToRank[c]; !ok || r != i {
				return fmt.Errorf("%w: cell %d in partition %d maps to rank %d", ErrInvalidLayout, c, i, pl.RankOf(c))
			}
		}
		total += p.NumCells
	}
	if total != pl.TotalCells {
		return fmt.Errorf("%w: partitions hold %d cells, expected %d", ErrInvalidLayout, total, pl.TotalCells)
	}
	if len(pl.CellToRank) != total {
		return fmt.Errorf("%w: %d mapped cells, %d partitioned", ErrInvalidLayout, len(pl.CellToRank), total)
	}
	return nil
}

// Covers reports whether the layout distributes exactly the given cells
func (pl *PartitionLayout) Covers(cells []int) bool {
	all := make([]int, 0, pl.TotalCells)
	for _, p := range pl.Partitions {
		all = append(all, p.Cells...)
	}
	want := slices.Clone(cells)
	slices.Sort(all)
	slices.Sort(want)
	return slices.Equal(all, want)
}
