package unitcell

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildStructure(t *testing.T, structure string, size [3]float64) *UnitCell {
	t.Helper()
	uc, err := New(Settings{CrystalStructure: structure, Size: size})
	require.NoError(t, err)
	require.NoError(t, CalculateInteractions(uc))
	return uc
}

func TestSimpleCubicNearestNeighbours(t *testing.T) {
	uc := buildStructure(t, "sc", [3]float64{3.54, 3.54, 3.54})

	require.Len(t, uc.Interactions, 6)
	assert.Equal(t, 1, uc.InteractionRange)

	offsets := make(map[[3]int]bool)
	for _, in := range uc.Interactions {
		assert.Equal(t, 0, in.I)
		assert.Equal(t, 0, in.J)
		offsets[[3]int{in.Dx, in.Dy, in.Dz}] = true
	}
	for _, want := range [][3]int{
		{1, 0, 0}, {-1, 0, 0},
		{0, 1, 0}, {0, -1, 0},
		{0, 0, 1}, {0, 0, -1},
	} {
		assert.True(t, offsets[want], "missing offset %v", want)
	}
}

func TestCoordinationNumbers(t *testing.T) {
	tests := []struct {
		structure string
		perAtom   int
	}{
		{"sc", 6},
		{"bcc", 8},
		{"fcc", 12},
		{"rocksalt", 6},
	}
	for _, tt := range tests {
		t.Run(tt.structure, func(t *testing.T) {
			uc := buildStructure(t, tt.structure, [3]float64{2.5, 2.5, 2.5})
			count := make([]int, len(uc.Atoms))
			for _, in := range uc.Interactions {
				count[in.I]++
			}
			for i, c := range count {
				assert.Equal(t, tt.perAtom, c, "atom %d", i)
			}
			assert.Equal(t, 1, uc.InteractionRange)
		})
	}
}

func TestInteractionsInsideEllipsoidalCutoff(t *testing.T) {
	// a tetragonal cell: the range test is anisotropic, so stretching the
	// cell must not change the neighbour set
	uc := buildStructure(t, "bcc", [3]float64{2.0, 2.0, 5.0})
	require.Len(t, uc.Interactions, 16)

	rcut := uc.CutoffRadius * cutoffTolerance
	for _, in := range uc.Interactions {
		a, b := uc.Atoms[in.I], uc.Atoms[in.J]
		dx := b.X + float64(in.Dx) - a.X
		dy := b.Y + float64(in.Dy) - a.Y
		dz := b.Z + float64(in.Dz) - a.Z
		assert.LessOrEqual(t, dx*dx+dy*dy+dz*dz, rcut*rcut)
		if in.I == in.J {
			assert.False(t, in.Dx == 0 && in.Dy == 0 && in.Dz == 0, "self interaction")
		}
	}
}

func TestDefaultExchangeTensorIsIdentity(t *testing.T) {
	uc := buildStructure(t, "sc", [3]float64{1, 1, 1})
	for _, in := range uc.Interactions {
		r, c := in.Jij.Dims()
		require.Equal(t, 3, r)
		require.Equal(t, 3, c)
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				want := 0.0
				if i == j {
					want = 1.0
				}
				assert.Equal(t, want, in.Jij.At(i, j))
			}
		}
	}
}

func TestCutoffTooSmall(t *testing.T) {
	uc, err := New(DefaultSettings())
	require.NoError(t, err)
	uc.CutoffRadius = 0.5

	err = CalculateInteractions(uc)
	assert.ErrorIs(t, err, ErrNoInteractions)
	assert.Contains(t, err.Error(), "sc crystal structure")
	assert.Empty(t, uc.Interactions)
}

func TestLongerCutoffWidensRange(t *testing.T) {
	uc, err := New(DefaultSettings())
	require.NoError(t, err)
	uc.CutoffRadius = 2.0
	require.NoError(t, CalculateInteractions(uc))
	assert.Equal(t, 2, uc.InteractionRange)
	// |r|^2 <= 4.008: 6 + 12 + 8 + 6 (second axis shell) shells
	assert.Len(t, uc.Interactions, 32)
}

func TestInteractionsFrom(t *testing.T) {
	uc := buildStructure(t, "bcc", [3]float64{1, 1, 1})
	from1 := uc.InteractionsFrom(1)
	assert.Len(t, from1, 8)
	for _, n := range from1 {
		assert.Equal(t, 1, uc.Interactions[n].I)
		assert.Equal(t, 0, uc.Interactions[n].J)
	}
}

func TestNewUnknownStructure(t *testing.T) {
	_, err := New(Settings{CrystalStructure: "kagome", Size: [3]float64{1, 1, 1}})
	assert.Error(t, err)

	_, err = New(Settings{CrystalStructure: "sc", Size: [3]float64{1, 0, 1}})
	assert.Error(t, err)
}
