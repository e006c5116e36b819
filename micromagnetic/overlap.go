package micromagnetic

import "gonum.org/v1/gonum/spatial/r3"

// OverlapArea sums the x-y face area of every macro-neighbour link from a
// cell of layer1 to a cell of layer2. It is zero when the layers are the
// same material.
func OverlapArea(mn *MacroNeighbours, cellMaterial []int, layer1, layer2 int, cellSize r3.Vec) float64 {
	if layer1 == layer2 {
		return 0
	}
	face := cellSize.X * cellSize.Y
	area := 0.0
	for cell, mat := range cellMaterial {
		if mat != layer1 {
			continue
		}
		ids, _ := mn.Range(cell)
		for _, cellj := range ids {
			if cellMaterial[cellj] == layer2 {
				area += face
			}
		}
	}
	return area
}

// ResolveOverlapArea returns the configured override when it is positive,
// logging that the computed area is discarded, and the computed area
// otherwise
func ResolveOverlapArea(computed, override float64) float64 {
	if override <= 0 {
		return computed
	}
	logger.WithField("computed", computed).Warnf("Overlap area overridden to %g", override)
	return override
}
