package micromagnetic

import (
	"testing"

	"github.com/101Room/vampire/material"
	"github.com/101Room/vampire/topology"
	"github.com/101Room/vampire/unitcell"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

func testMaterials() material.Table {
	a := material.Default("a")
	a.Tc, a.Alpha, a.Ku = 1000, 0.5, 2
	b := material.Default("b")
	b.Tc, b.Alpha = 500, 1
	b.MicromagneticEnabled = false
	afm := material.Default("afm")
	afm.Tc = -1
	return material.Table{a, b, afm}
}

func TestCalculateParameters(t *testing.T) {
	mats := testMaterials()
	atomMat := []int{0, 1, 0, 0, 2}
	cellOf := []int{0, 0, 1, 3, 3}
	p, err := CalculateParameters(atomMat, cellOf, []float64{2, 1, 0, 2}, mats)
	require.NoError(t, err)

	assert.Equal(t, 4, p.NumCells)
	mu := mats[0].MuS
	assert.InDelta(t, 2*mu, p.Ms[0], 1e-40)
	assert.InDelta(t, mu, p.Ms[1], 1e-40)
	assert.Equal(t, 0.0, p.Ms[2])

	assert.InDelta(t, 750, p.Tc[0], 1e-9)
	assert.InDelta(t, 0.75, p.Alpha[0], 1e-12)
	assert.Equal(t, 0, p.Material[0], "ties go to the lowest id")
	assert.Equal(t, 0, p.Material[2], "empty cells default to material 0")
	assert.Less(t, p.Tc[3], 0.0, "any antiferromagnetic atom marks the cell")

	assert.InDelta(t, 2, p.KuAxis[1].X, 1e-12)
	assert.InDelta(t, 2, p.KuAxis[1].Y, 1e-12)
	assert.InDelta(t, 0, p.KuAxis[1].Z, 1e-12)
	assert.Equal(t, []float64{2, 1, 0, 2}, p.Volume)

	p.SetSusceptibility(1, 4, 5)
	assert.Equal(t, 4.0, p.OneOverChiPara[1])
	assert.Equal(t, 5.0, p.OneOverChiPerp[1])
}

func TestCalculateParametersErrors(t *testing.T) {
	mats := testMaterials()
	_, err := CalculateParameters([]int{0}, []int{0, 1}, []float64{1, 1}, mats)
	assert.Error(t, err)
	_, err = CalculateParameters([]int{0}, []int{2}, []float64{1, 1}, mats)
	assert.Error(t, err)
	_, err = CalculateParameters([]int{7}, []int{0}, []float64{1}, mats)
	assert.Error(t, err)
}

func TestDominantMaterial(t *testing.T) {
	assert.Equal(t, 2, dominant([]int{1, 0, 3}))
	assert.Equal(t, 0, dominant([]int{2, 2}))
}

func TestMagnetisation(t *testing.T) {
	mats := material.Table{material.Default("a")}
	spins := []r3.Vec{{Z: 1}, {X: 1}, {Y: 1}}
	m := Magnetisation(spins, []int{0, 0, 0}, []int{0, 0, 1}, mats, 3)

	assert.InDelta(t, 0.5, m[0].X, 1e-12)
	assert.InDelta(t, 0.5, m[0].Z, 1e-12)
	assert.Equal(t, r3.Vec{Y: 1}, m[1])
	assert.Equal(t, r3.Vec{}, m[2])
}

// pairList links atoms 0-1 inside cell 0 and atom 1 to atom 2 in cell 1
func pairList() *topology.NeighbourList {
	return &topology.NeighbourList{
		Start: []int{0, 1, 3},
		End:   []int{0, 2, 3},
		IDs:   []int{1, 0, 2, 1},
		Types: []int{0, 0, 1, 1},
	}
}

func TestBuildMacroNeighbours(t *testing.T) {
	a := material.Default("a")
	a.Exchange = []float64{1e-21}
	mats := material.Table{a}
	interactions := []unitcell.Interaction{
		{Jij: mat.NewDiagDense(3, []float64{1, 1, 1})},
		{Jij: mat.NewDiagDense(3, []float64{2, 2, 2})},
	}
	ms := []float64{2 * a.MuS, a.MuS}

	mn, err := BuildMacroNeighbours(pairList(), interactions, []int{0, 0, 0}, []int{0, 0, 1}, mats, ms)
	require.NoError(t, err)

	ids, coeffs := mn.Range(0)
	require.Equal(t, []int{1}, ids)
	assert.InDelta(t, -2e-21/ms[0], coeffs[0], 1e-9)
	ids, coeffs = mn.Range(1)
	require.Equal(t, []int{0}, ids)
	assert.InDelta(t, -2e-21/ms[1], coeffs[0], 1e-9)
}

func TestBuildMacroNeighboursZeroMoment(t *testing.T) {
	a := material.Default("a")
	a.Exchange = []float64{1e-21}
	interactions := []unitcell.Interaction{{}, {}}
	mn, err := BuildMacroNeighbours(pairList(), interactions, []int{0, 0, 0}, []int{0, 0, 1}, material.Table{a}, []float64{0, 1})
	require.NoError(t, err)
	assert.Equal(t, 0.0, mn.A[0])

	_, err = BuildMacroNeighbours(pairList(), interactions[:1], []int{0, 0, 0}, []int{0, 0, 1}, material.Table{a}, []float64{1, 1})
	assert.Error(t, err, "interaction type out of range")
}
