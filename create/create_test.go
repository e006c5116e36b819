package create

import (
	"testing"

	"github.com/101Room/vampire/material"
	"github.com/101Room/vampire/unitcell"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func simpleCubic(t *testing.T) *unitcell.UnitCell {
	t.Helper()
	uc, err := unitcell.New(unitcell.Settings{CrystalStructure: "sc", Size: [3]float64{2, 2, 2}})
	require.NoError(t, err)
	require.NoError(t, unitcell.CalculateInteractions(uc))
	return uc
}

func TestGeneratePeriodic(t *testing.T) {
	uc := simpleCubic(t)
	c, err := Generate(uc, material.Table{material.Default("fe")}, System{
		Size:     r3.Vec{X: 6, Y: 6, Z: 6},
		Periodic: [3]bool{true, true, true},
	})
	require.NoError(t, err)

	assert.Equal(t, [3]int{3, 3, 3}, c.NumCells)
	require.Len(t, c.Atoms, 27)
	for i, nbrs := range c.Neighbours {
		assert.Len(t, nbrs, 6, "atom %d", i)
		for _, nb := range nbrs {
			assert.NotEqual(t, i, nb.NN)
			assert.Less(t, nb.I, len(uc.Interactions))
		}
	}
	assert.Equal(t, 27*6, c.NumNeighbours())
}

func TestGenerateOpenBoundaries(t *testing.T) {
	uc := simpleCubic(t)
	c, err := Generate(uc, material.Table{material.Default("fe")}, System{Size: r3.Vec{X: 6, Y: 6, Z: 6}})
	require.NoError(t, err)

	// 3 * (n-1) * n^2 bonds, each listed from both ends
	assert.Equal(t, 2*3*2*9, c.NumNeighbours())
	assert.Len(t, c.Neighbours[0], 3, "corner atom")
	assert.Len(t, c.Neighbours[13], 6, "centre atom")
	assert.Equal(t, r3.Vec{X: 2, Y: 2, Z: 2}, c.Atoms[13].Position)
}

func TestGenerateNeighboursAreSymmetric(t *testing.T) {
	uc, err := unitcell.New(unitcell.Settings{CrystalStructure: "bcc", Size: [3]float64{2.87, 2.87, 2.87}})
	require.NoError(t, err)
	require.NoError(t, unitcell.CalculateInteractions(uc))

	c, err := Generate(uc, material.Table{material.Default("fe")}, System{
		Size:     r3.Vec{X: 10, Y: 10, Z: 10},
		Periodic: [3]bool{true, false, true},
	})
	require.NoError(t, err)

	links := make(map[[2]int]bool)
	for i, nbrs := range c.Neighbours {
		for _, nb := range nbrs {
			links[[2]int{i, nb.NN}] = true
		}
	}
	for l := range links {
		assert.True(t, links[[2]int{l[1], l[0]}], "link %v has no reverse", l)
	}
}

func TestGenerateHeightBands(t *testing.T) {
	uc := simpleCubic(t)
	bottom, top := material.Default("bottom"), material.Default("top")
	bottom.MaxHeight = 0.3
	top.MinHeight = 0.6
	c, err := Generate(uc, material.Table{bottom, top}, System{Size: r3.Vec{X: 4, Y: 4, Z: 8}})
	require.NoError(t, err)

	// layers at fractional heights 0, .25, .5, .75; the .5 layer is removed
	require.Len(t, c.Atoms, 12)
	for _, a := range c.Atoms {
		switch a.UnitCell[2] {
		case 0, 1:
			assert.Equal(t, 0, a.Material)
		case 3:
			assert.Equal(t, 1, a.Material)
		default:
			t.Errorf("atom in removed layer %d", a.UnitCell[2])
		}
	}
	for i, nbrs := range c.Neighbours {
		for _, nb := range nbrs {
			assert.Less(t, nb.NN, len(c.Atoms), "atom %d", i)
		}
	}
	// the top layer lost its neighbours below
	assert.Len(t, c.Neighbours[8], 2)
}

func TestGenerateErrors(t *testing.T) {
	uc := simpleCubic(t)
	mats := material.Table{material.Default("fe")}

	_, err := Generate(uc, mats, System{Size: r3.Vec{X: 4, Y: 4, Z: 4}, Periodic: [3]bool{true, false, false}})
	assert.Error(t, err, "two periodic cells duplicate neighbours")

	_, err = Generate(uc, mats, System{Size: r3.Vec{X: 0, Y: 4, Z: 4}})
	assert.Error(t, err)

	rs, err := unitcell.New(unitcell.Settings{CrystalStructure: "rocksalt", Size: [3]float64{4, 4, 4}})
	require.NoError(t, err)
	require.NoError(t, unitcell.CalculateInteractions(rs))
	_, err = Generate(rs, mats, System{Size: r3.Vec{X: 8, Y: 8, Z: 8}})
	assert.Error(t, err, "rocksalt needs two materials")

	empty := *uc
	empty.Interactions = nil
	_, err = Generate(&empty, mats, System{Size: r3.Vec{X: 4, Y: 4, Z: 4}})
	assert.ErrorIs(t, err, unitcell.ErrNoInteractions)
}
