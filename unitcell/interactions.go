package unitcell

import (
	"errors"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
)

// ErrNoInteractions reports a cutoff too small for the crystal structure
var ErrNoInteractions = errors.New("no interactions generated")

// cutoffTolerance widens the cutoff so that shells exactly at the cutoff
// survive rounding
const cutoffTolerance = 1.001

// replicatedAtom is a basis atom placed in one of the replicated cells
type replicatedAtom struct {
	x, y, z       float64 // Angstroms
	id            int     // basis atom index
	idx, idy, idz int     // replicated cell index
}

// CalculateInteractions fills uc.Interactions and uc.InteractionRange.
// Every atom of the central cell of a (1+2*ceil(rcut))^3 block of replicas
// is tested against every replicated atom with an ellipsoidal range
// condition scaled by the cell dimensions. A cell read from a unit cell
// file keeps its listed interactions.
func CalculateInteractions(uc *UnitCell) error {
	if uc.FromFile != "" {
		uc.InteractionRange = interactionRange(uc.Interactions)
		return reportInteractions(uc)
	}
	rcut := uc.CutoffRadius * cutoffTolerance
	rcutSq := rcut * rcut

	ucsx, ucsy, ucsz := uc.Dimensions[0], uc.Dimensions[1], uc.Dimensions[2]

	n := 1 + 2*int(math.Ceil(rcut))
	logger.Infof("Generating neighbour interactions for a lattice of %d x %d x %d unit cells", n, n, n)

	ratoms := make([]replicatedAtom, 0, n*n*n*len(uc.Atoms))
	for x := 0; x < n; x++ {
		for y := 0; y < n; y++ {
			for z := 0; z < n; z++ {
				for a, atom := range uc.Atoms {
					ratoms = append(ratoms, replicatedAtom{
						x:   (atom.X + float64(x)) * ucsx,
						y:   (atom.Y + float64(y)) * ucsy,
						z:   (atom.Z + float64(z)) * ucsz,
						id:  a,
						idx: x, idy: y, idz: z,
					})
				}
			}
		}
	}

	mid := (n - 1) / 2

	// elliptic neighbour range in units of the cell dimensions
	invRxSq := 1.0 / (ucsx * ucsx)
	invRySq := 1.0 / (ucsy * ucsy)
	invRzSq := 1.0 / (ucsz * ucsz)

	interactions := make([]Interaction, 0)
	for i := range ratoms {
		ri := &ratoms[i]
		if ri.idx != mid || ri.idy != mid || ri.idz != mid {
			continue
		}
		for j := range ratoms {
			if i == j {
				continue
			}
			rj := &ratoms[j]
			rx, ry, rz := rj.x-ri.x, rj.y-ri.y, rj.z-ri.z
			if rx*rx*invRxSq+ry*ry*invRySq+rz*rz*invRzSq > rcutSq {
				continue
			}
			interactions = append(interactions, Interaction{
				I:   ri.id,
				J:   rj.id,
				Dx:  rj.idx - ri.idx,
				Dy:  rj.idy - ri.idy,
				Dz:  rj.idz - ri.idz,
				Jij: identityExchange(),
			})
		}
	}

	uc.Interactions = interactions
	uc.InteractionRange = interactionRange(interactions)
	return reportInteractions(uc)
}

// reportInteractions logs every interaction and rejects an empty set
func reportInteractions(uc *UnitCell) error {
	interactions := uc.Interactions
	for i, in := range interactions {
		logger.WithFields(logrus.Fields{
			"n": i, "i": in.I, "j": in.J, "dx": in.Dx, "dy": in.Dy, "dz": in.Dz,
		}).Debug("interaction")
	}

	if len(interactions) == 0 {
		return fmt.Errorf("%w for %s crystal structure, try increasing the interaction range",
			ErrNoInteractions, uc.Structure)
	}
	return nil
}

// interactionRange is the largest absolute cell offset in any direction
func interactionRange(interactions []Interaction) int {
	r := 0
	for _, in := range interactions {
		for _, d := range [3]int{in.Dx, in.Dy, in.Dz} {
			if d < 0 {
				d = -d
			}
			if d > r {
				r = d
			}
		}
	}
	return r
}

// InteractionsFrom returns the interactions whose source basis atom is i
func (uc *UnitCell) InteractionsFrom(i int) []int {
	var ids []int
	for n, in := range uc.Interactions {
		if in.I == i {
			ids = append(ids, n)
		}
	}
	return ids
}
