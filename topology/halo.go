package topology

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// HaloConnector manages the pick and place indices that fill each rank's
// halo atoms from the ranks that own them
type HaloConnector struct {
	NumRanks   int
	NumAtoms   int
	AtomToRank []int

	// Rank mappings. Local numbering lists owned atoms first, in global
	// order, followed by halo atoms in order of first reference.
	AtomsPerRank  []int
	HaloPerRank   []int
	GlobalToLocal []map[int]int // [rank][globalAtom] → localAtom
	LocalToGlobal [][]int       // [rank][localAtom] → globalAtom

	PickIndices  [][]PickBuffer  // [sourceRank][targetRank]
	PlaceIndices [][]PlaceBuffer // [targetRank][sourceRank]
}

// PickBuffer contains owned local atom indices to send
type PickBuffer struct {
	Indices    []int
	TargetRank int
}

// PlaceBuffer contains halo local atom indices receiving values
type PlaceBuffer struct {
	Indices    []int
	SourceRank int
}

// NewHaloConnector builds the halo exchange for an atom to rank map over
// the given neighbour list
func NewHaloConnector(atomToRank []int, nl *NeighbourList) (*HaloConnector, error) {
	if len(atomToRank) != nl.Len() {
		return nil, fmt.Errorf("atomToRank length %d does not match %d atoms", len(atomToRank), nl.Len())
	}
	numRanks := 0
	for a, r := range atomToRank {
		if r < 0 {
			return nil, fmt.Errorf("atom %d has no rank", a)
		}
		if r+1 > numRanks {
			numRanks = r + 1
		}
	}

	hc := &HaloConnector{
		NumRanks:   numRanks,
		NumAtoms:   len(atomToRank),
		AtomToRank: atomToRank,
	}
	hc.buildRankMappings()
	hc.initializeBuffers()
	hc.buildIndices(nl)

	return hc, nil
}

func (hc *HaloConnector) buildRankMappings() {
	hc.AtomsPerRank = make([]int, hc.NumRanks)
	hc.HaloPerRank = make([]int, hc.NumRanks)
	for _, r := range hc.AtomToRank {
		hc.AtomsPerRank[r]++
	}

	hc.GlobalToLocal = make([]map[int]int, hc.NumRanks)
	hc.LocalToGlobal = make([][]int, hc.NumRanks)
	for r := 0; r < hc.NumRanks; r++ {
		hc.GlobalToLocal[r] = make(map[int]int, hc.AtomsPerRank[r])
		hc.LocalToGlobal[r] = make([]int, 0, hc.AtomsPerRank[r])
	}
	for atom, r := range hc.AtomToRank {
		hc.GlobalToLocal[r][atom] = len(hc.LocalToGlobal[r])
		hc.LocalToGlobal[r] = append(hc.LocalToGlobal[r], atom)
	}
}

func (hc *HaloConnector) initializeBuffers() {
	hc.PickIndices = make([][]PickBuffer, hc.NumRanks)
	hc.PlaceIndices = make([][]PlaceBuffer, hc.NumRanks)
	for p := 0; p < hc.NumRanks; p++ {
		hc.PickIndices[p] = make([]PickBuffer, hc.NumRanks)
		hc.PlaceIndices[p] = make([]PlaceBuffer, hc.NumRanks)
		for q := 0; q < hc.NumRanks; q++ {
			hc.PickIndices[p][q] = PickBuffer{TargetRank: q}
			hc.PlaceIndices[p][q] = PlaceBuffer{SourceRank: q}
		}
	}
}

// buildIndices appends a halo slot to rank p for every off-rank neighbour
// of an owned atom, once per neighbour atom
func (hc *HaloConnector) buildIndices(nl *NeighbourList) {
	for p := 0; p < hc.NumRanks; p++ {
		owned := hc.AtomsPerRank[p]
		for local := 0; local < owned; local++ {
			ids, _ := nl.Range(hc.LocalToGlobal[p][local])
			for _, j := range ids {
				q := hc.AtomToRank[j]
				if q == p {
					continue
				}
				if _, seen := hc.GlobalToLocal[p][j]; seen {
					continue
				}
				slot := len(hc.LocalToGlobal[p])
				hc.GlobalToLocal[p][j] = slot
				hc.LocalToGlobal[p] = append(hc.LocalToGlobal[p], j)
				hc.HaloPerRank[p]++

				hc.PickIndices[q][p].Indices = append(hc.PickIndices[q][p].Indices, hc.GlobalToLocal[q][j])
				hc.PlaceIndices[p][q].Indices = append(hc.PlaceIndices[p][q].Indices, slot)
			}
		}
	}
}

// GetPickIndices returns the local atoms source sends to target
func (hc *HaloConnector) GetPickIndices(source, target int) []int {
	if source < 0 || source >= hc.NumRanks || target < 0 || target >= hc.NumRanks {
		return nil
	}
	return hc.PickIndices[source][target].Indices
}

// GetPlaceIndices returns the halo slots of target filled by source
func (hc *HaloConnector) GetPlaceIndices(target, source int) []int {
	if source < 0 || source >= hc.NumRanks || target < 0 || target >= hc.NumRanks {
		return nil
	}
	return hc.PlaceIndices[target][source].Indices
}

// NumLocal returns owned plus halo atoms of a rank
func (hc *HaloConnector) NumLocal(rank int) int {
	return len(hc.LocalToGlobal[rank])
}

// Exchange copies owned values into the halo slots of every rank. values
// is indexed [rank][localAtom] and each rank slice must hold NumLocal
// entries.
func (hc *HaloConnector) Exchange(values [][]r3.Vec) error {
	if len(values) != hc.NumRanks {
		return fmt.Errorf("got values for %d ranks, want %d", len(values), hc.NumRanks)
	}
	for r := range values {
		if len(values[r]) != hc.NumLocal(r) {
			return fmt.Errorf("rank %d holds %d values, want %d", r, len(values[r]), hc.NumLocal(r))
		}
	}
	for p := 0; p < hc.NumRanks; p++ {
		for q := 0; q < hc.NumRanks; q++ {
			pick := hc.PickIndices[p][q].Indices
			place := hc.PlaceIndices[q][p].Indices
			for i, src := range pick {
				values[q][place[i]] = values[p][src]
			}
		}
	}
	return nil
}

// Verify checks index validity and conservation
func (hc *HaloConnector) Verify() error {
	for p := 0; p < hc.NumRanks; p++ {
		owned := hc.AtomsPerRank[p]
		for q := 0; q < hc.NumRanks; q++ {
			for _, idx := range hc.PickIndices[p][q].Indices {
				if idx < 0 || idx >= owned {
					return fmt.Errorf("invalid pick index %d for rank %d (max %d)", idx, p, owned-1)
				}
			}
			for _, idx := range hc.PlaceIndices[p][q].Indices {
				if idx < owned || idx >= owned+hc.HaloPerRank[p] {
					return fmt.Errorf("invalid place index %d for rank %d (halo %d..%d)",
						idx, p, owned, owned+hc.HaloPerRank[p]-1)
				}
			}
		}
	}

	for p := 0; p < hc.NumRanks; p++ {
		for q := 0; q < hc.NumRanks; q++ {
			pickLen := len(hc.PickIndices[p][q].Indices)
			placeLen := len(hc.PlaceIndices[q][p].Indices)
			if pickLen != placeLen {
				return fmt.Errorf("length mismatch: pick[%d][%d]=%d, place[%d][%d]=%d",
					p, q, pickLen, q, p, placeLen)
			}
		}
	}

	totalPicks, totalHalo := 0, 0
	for p := 0; p < hc.NumRanks; p++ {
		totalHalo += hc.HaloPerRank[p]
		for q := 0; q < hc.NumRanks; q++ {
			totalPicks += len(hc.PickIndices[p][q].Indices)
		}
	}
	if totalPicks != totalHalo {
		return fmt.Errorf("conservation error: total picks %d != total halo atoms %d", totalPicks, totalHalo)
	}
	return nil
}

// DecomposeByCells assigns every atom to the rank owning its cell. Atoms in
// cells without an owner (cellToRank < 0) go to rank cell mod numRanks.
func DecomposeByCells(cellOfAtom, cellToRank []int, numRanks int) ([]int, error) {
	if numRanks < 1 {
		return nil, fmt.Errorf("number of ranks must be positive, got %d", numRanks)
	}
	out := make([]int, len(cellOfAtom))
	for a, cell := range cellOfAtom {
		if cell < 0 || cell >= len(cellToRank) {
			return nil, fmt.Errorf("atom %d is in cell %d of %d", a, cell, len(cellToRank))
		}
		r := cellToRank[cell]
		if r >= numRanks {
			return nil, fmt.Errorf("cell %d owned by rank %d of %d", cell, r, numRanks)
		}
		if r < 0 {
			r = cell % numRanks
		}
		out[a] = r
	}
	return out, nil
}
