// Package unitcell describes the periodic crystal unit cell and derives the
// canonical set of neighbour interactions for one representative cell.
package unitcell

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"
)

var logger = logrus.WithField("module", "unitcell")

// Atom is one basis atom of the unit cell. X, Y, Z are fractional
// coordinates in [0,1).
type Atom struct {
	Material int
	Category int // height category (layer) within the cell
	X, Y, Z  float64
}

// Interaction links basis atom I in the reference cell to basis atom J in
// the cell displaced by (Dx, Dy, Dz) unit cells.
type Interaction struct {
	I, J       int
	Dx, Dy, Dz int
	Jij        mat.Matrix // 3x3 normalised exchange tensor
}

// UnitCell is the periodic cell the crystal is built from. Dimensions are in
// Angstroms, CutoffRadius is in unit-cell units.
type UnitCell struct {
	Structure    string
	Dimensions   [3]float64
	CutoffRadius float64
	Atoms        []Atom

	// Name of the unit cell file the cell and its interactions were read
	// from, empty for built-in structures
	FromFile string

	// Filled by CalculateInteractions
	Interactions     []Interaction
	InteractionRange int
}

// NumMaterials returns one more than the largest basis material id
func (uc *UnitCell) NumMaterials() int {
	n := 0
	for _, a := range uc.Atoms {
		if a.Material+1 > n {
			n = a.Material + 1
		}
	}
	return n
}

// Volume returns the unit cell volume in cubic Angstroms
func (uc *UnitCell) Volume() float64 {
	return uc.Dimensions[0] * uc.Dimensions[1] * uc.Dimensions[2]
}

// New builds one of the built-in crystal structures with the cell
// dimensions taken from the settings, or reads the configured unit cell
// file, whose size and structure take precedence.
func New(s Settings) (*UnitCell, error) {
	if s.UnitCellFile != "" {
		logger.Infof("Reading unit cell file %s", s.UnitCellFile)
		return LoadUnitCellFile(s.UnitCellFile)
	}
	uc := &UnitCell{
		Structure:  s.CrystalStructure,
		Dimensions: s.Size,
	}
	switch s.CrystalStructure {
	case "sc":
		uc.CutoffRadius = 1.0
		uc.Atoms = []Atom{
			{0, 0, 0.0, 0.0, 0.0},
		}
	case "bcc":
		uc.CutoffRadius = math.Sqrt(3.0) / 2.0
		uc.Atoms = []Atom{
			{0, 0, 0.0, 0.0, 0.0},
			{0, 1, 0.5, 0.5, 0.5},
		}
	case "fcc":
		uc.CutoffRadius = math.Sqrt(2.0) / 2.0
		uc.Atoms = []Atom{
			{0, 0, 0.0, 0.0, 0.0},
			{0, 0, 0.5, 0.5, 0.0},
			{0, 1, 0.5, 0.0, 0.5},
			{0, 1, 0.0, 0.5, 0.5},
		}
	case "rocksalt":
		uc.CutoffRadius = 0.5
		uc.Atoms = []Atom{
			{0, 0, 0.0, 0.0, 0.0},
			{1, 0, 0.5, 0.0, 0.0},
			{1, 0, 0.0, 0.5, 0.0},
			{0, 0, 0.5, 0.5, 0.0},
			{1, 1, 0.0, 0.0, 0.5},
			{0, 1, 0.5, 0.0, 0.5},
			{0, 1, 0.0, 0.5, 0.5},
			{1, 1, 0.5, 0.5, 0.5},
		}
	default:
		return nil, fmt.Errorf("unknown crystal structure %q", s.CrystalStructure)
	}
	for i, d := range uc.Dimensions {
		if d <= 0 {
			return nil, fmt.Errorf("unit cell dimension %d must be positive, got %g", i, d)
		}
	}
	return uc, nil
}

// identityExchange is the isotropic default tensor
func identityExchange() mat.Matrix {
	return mat.NewDiagDense(3, []float64{1, 1, 1})
}
