package micromagnetic

import (
	"testing"

	"github.com/101Room/vampire/material"
	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/spatial/r3"
)

func layeredMaterials() material.Table {
	bottom, top, unused := material.Default("bottom"), material.Default("top"), material.Default("unused")
	bottom.MaxHeight = 0.5
	bottom.PinningFieldUnitVector = r3.Vec{Z: 1}
	top.MinHeight = 0.5
	return material.Table{bottom, top, unused}
}

func layeredParams() *CellParameters {
	return &CellParameters{
		NumCells: 3,
		Ms:       []float64{1, 3, 2},
		Volume:   []float64{10, 10, 5},
		Material: []int{0, 0, 1},
	}
}

func TestNormalise(t *testing.T) {
	n := Normalise(layeredParams(), layeredMaterials(), 20)

	assert.Equal(t, []float64{20, 5, 0}, n.MaterialVolume)
	assert.Equal(t, []float64{4, 2, 0}, n.MaterialMs)
	assert.InDelta(t, 0.5, n.Prefactor[0], 1e-12)
	assert.InDelta(t, 0.25, n.Prefactor[1], 1e-12)
	assert.Equal(t, 0.0, n.Prefactor[2], "material without cells")
}

func TestPinningFields(t *testing.T) {
	p := layeredParams()
	mats := layeredMaterials()
	n := Normalise(p, mats, 20)

	fields := PinningFields(p, mats, n.Prefactor)
	assert.Equal(t, []r3.Vec{{Z: 0.5}, {Z: 0.5}, {}}, fields)
}

func TestMicromagneticCorrection(t *testing.T) {
	fields := []r3.Vec{{X: 1, Y: 2, Z: 3}, {}}
	want := []r3.Vec{{X: 1 * 2 / 2.0, Y: 2 * 2 / 4.0, Z: 3 * 2 / 5.0}, {}}

	ApplyMicromagneticCorrection(fields, r3.Vec{X: 2, Y: 4, Z: 5})
	assert.Equal(t, want, fields)
}

func TestOverlapArea(t *testing.T) {
	mn := &MacroNeighbours{
		Start: []int{0, 1, 2},
		End:   []int{0, 1, 3},
		IDs:   []int{2, 2, 0, 1},
		A:     make([]float64, 4),
	}
	material := []int{0, 0, 1}
	size := r3.Vec{X: 2, Y: 3, Z: 1}

	assert.Equal(t, 12.0, OverlapArea(mn, material, 0, 1, size))
	assert.Equal(t, 12.0, OverlapArea(mn, material, 1, 0, size))
	assert.Equal(t, 0.0, OverlapArea(mn, material, 0, 0, size))

	assert.Equal(t, 12.0, ResolveOverlapArea(12, 0))
	assert.Equal(t, 48000.0, ResolveOverlapArea(12, 240*200))
}
