package unitcell

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchInputParameter(t *testing.T) {
	s := DefaultSettings()

	ok, err := s.MatchInputParameter("create", "crystal-structure", `"fcc"`, "", 1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "fcc", s.CrystalStructure)

	ok, err = s.MatchInputParameter("dimensions", "unit-cell-size", "2.87", "", 2)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, [3]float64{2.87, 2.87, 2.87}, s.Size)

	ok, err = s.MatchInputParameter("dimensions", "unit-cell-size-z", "0.5", "nm", 3)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, [3]float64{2.87, 2.87, 5.0}, s.Size)
}

func TestMatchInputParameterNotFound(t *testing.T) {
	s := DefaultSettings()
	for _, kw := range [][2]string{
		{"create", "periodic-boundaries-x"},
		{"dimensions", "system-size"},
		{"material", "atomic-spin-moment"},
	} {
		ok, err := s.MatchInputParameter(kw[0], kw[1], "1", "", 7)
		assert.NoError(t, err)
		assert.False(t, ok, "%s:%s", kw[0], kw[1])
	}
	assert.Equal(t, DefaultSettings(), s)
}

func TestMatchInputParameterOutOfRange(t *testing.T) {
	s := DefaultSettings()
	ok, err := s.MatchInputParameter("dimensions", "unit-cell-size-x", "0.01", "", 12)
	assert.True(t, ok)
	assert.ErrorIs(t, err, ErrValueOutOfRange)
	assert.Contains(t, err.Error(), "line 12")

	_, err = s.MatchInputParameter("dimensions", "unit-cell-size", "abc", "", 13)
	assert.Error(t, err)

	_, err = s.MatchInputParameter("dimensions", "unit-cell-size", "3", "furlong", 14)
	assert.Error(t, err)
}

func TestMatchInputParameterUnitCellFile(t *testing.T) {
	s := DefaultSettings()
	ok, err := s.MatchInputParameter("material", "unit-cell-file", `"Co.ucf"`, "", 3)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Co.ucf", s.UnitCellFile)

	// an empty name leaves the previous file in place
	ok, err = s.MatchInputParameter("material", "unit-cell-file", `""`, "", 4)
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "Co.ucf", s.UnitCellFile)
}
