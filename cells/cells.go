// Package cells bins atoms into the macro-cells used by the micromagnetic
// representation.
package cells

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/spatial/r3"
)

var logger = logrus.WithField("module", "cells")

// Cells is a dense grid of macro-cells. Cell ids run x fastest, then y,
// then z; empty cells keep their id.
type Cells struct {
	Dims [3]int
	Size r3.Vec // macro-cell size, Angstroms

	CellOfAtom  []int
	AtomsInCell []int
	Centres     []r3.Vec // centre of mass, or bin centre for empty cells
	Volumes     []float64
}

// NumCells returns the number of cells in the grid
func (c *Cells) NumCells() int {
	return c.Dims[0] * c.Dims[1] * c.Dims[2]
}

// Index returns the id of the cell at grid coordinates (ix, iy, iz)
func (c *Cells) Index(ix, iy, iz int) int {
	return (iz*c.Dims[1]+iy)*c.Dims[0] + ix
}

// Members returns the atom ids of every cell, in ascending order
func (c *Cells) Members() [][]int {
	members := make([][]int, c.NumCells())
	for cell, n := range c.AtomsInCell {
		members[cell] = make([]int, 0, n)
	}
	for atom, cell := range c.CellOfAtom {
		members[cell] = append(members[cell], atom)
	}
	return members
}

// Bin assigns every position to a cell of the given size. Cell volumes are
// the atom count times the atomic volume.
func Bin(positions []r3.Vec, cellSize, systemSize r3.Vec, atomVolume float64) (*Cells, error) {
	size := [3]float64{cellSize.X, cellSize.Y, cellSize.Z}
	extent := [3]float64{systemSize.X, systemSize.Y, systemSize.Z}
	c := &Cells{Size: cellSize}
	for d := 0; d < 3; d++ {
		if size[d] <= 0 {
			return nil, fmt.Errorf("cell size along axis %d must be positive, got %g", d, size[d])
		}
		if extent[d] <= 0 {
			return nil, fmt.Errorf("system size along axis %d must be positive, got %g", d, extent[d])
		}
		c.Dims[d] = int(math.Ceil(extent[d]/size[d] - 1e-9))
		if c.Dims[d] < 1 {
			c.Dims[d] = 1
		}
	}
	if atomVolume < 0 {
		return nil, fmt.Errorf("atomic volume must not be negative, got %g", atomVolume)
	}

	n := c.NumCells()
	c.CellOfAtom = make([]int, len(positions))
	c.AtomsInCell = make([]int, n)
	c.Centres = make([]r3.Vec, n)
	c.Volumes = make([]float64, n)

	for atom, p := range positions {
		coord := [3]float64{p.X, p.Y, p.Z}
		var idx [3]int
		for d := 0; d < 3; d++ {
			idx[d] = clamp(int(math.Floor(coord[d]/size[d])), c.Dims[d])
		}
		cell := c.Index(idx[0], idx[1], idx[2])
		c.CellOfAtom[atom] = cell
		c.AtomsInCell[cell]++
		c.Centres[cell] = r3.Add(c.Centres[cell], p)
	}

	for iz := 0; iz < c.Dims[2]; iz++ {
		for iy := 0; iy < c.Dims[1]; iy++ {
			for ix := 0; ix < c.Dims[0]; ix++ {
				cell := c.Index(ix, iy, iz)
				count := c.AtomsInCell[cell]
				if count == 0 {
					c.Centres[cell] = r3.Vec{
						X: (float64(ix) + 0.5) * size[0],
						Y: (float64(iy) + 0.5) * size[1],
						Z: (float64(iz) + 0.5) * size[2],
					}
					continue
				}
				c.Centres[cell] = r3.Scale(1/float64(count), c.Centres[cell])
				c.Volumes[cell] = float64(count) * atomVolume
			}
		}
	}

	logger.Infof("Binned %d atoms into %d x %d x %d cells", len(positions), c.Dims[0], c.Dims[1], c.Dims[2])
	return c, nil
}

func clamp(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
