package micromagnetic

import (
	"context"
	"fmt"

	"github.com/101Room/vampire/cells"
	"github.com/101Room/vampire/material"
	"github.com/101Room/vampire/partitions"
	"github.com/101Room/vampire/topology"
	"github.com/101Room/vampire/unitcell"
	"github.com/101Room/vampire/vmpi"
	"gonum.org/v1/gonum/spatial/r3"
)

// Options are the micromagnetic run settings
type Options struct {
	Discretisation Discretisation
	Strategy       partitions.PartitionStrategy

	ExternalField    r3.Vec
	SpinPolarization r3.Vec

	MicromagneticCorrection bool

	EnableResistance    bool
	ResistanceLayers    [2]int
	OverlapAreaOverride float64 // replaces the computed overlap area when positive

	// Optional per-cell fields, nil when the collaborator is disabled
	Dipole      FieldSource
	Environment FieldSource
	TrackField  []r3.Vec
	BiasField   []r3.Vec
}

// Input is the generated system handed to Initialize
type Input struct {
	Topology     *topology.Topology
	Interactions []unitcell.Interaction
	Cells        *cells.Cells
	Materials    material.Table
	SystemSize   r3.Vec

	// Cells this rank holds in multiscale mode, all cells when nil
	LocalCells []int

	Options Options
}

// State is everything Initialize derives, owned by the caller for the rest
// of the run
type State struct {
	Params         *CellParameters
	Macro          *MacroNeighbours
	Classification *Classification
	Normalisation  *Normalisation
	Pinning        []r3.Vec
	OverlapArea    float64
	Magnetisation  []r3.Vec
	Fields         *FieldCalculator
}

// Initialize performs the one-time setup of the micromagnetic model
func Initialize(ctx context.Context, comm vmpi.Comm, in Input) (*State, error) {
	logger.Info("Initialising micromagnetic module")
	atoms := &in.Topology.Atoms
	cellOf := in.Cells.CellOfAtom
	if len(cellOf) != atoms.Len() {
		return nil, fmt.Errorf("cells cover %d atoms, topology holds %d", len(cellOf), atoms.Len())
	}

	params, err := CalculateParameters(atoms.Material, cellOf, in.Cells.Volumes, in.Materials)
	if err != nil {
		return nil, fmt.Errorf("cell parameters: %w", err)
	}
	for name, f := range map[string][]r3.Vec{"track": in.Options.TrackField, "bias": in.Options.BiasField} {
		if f != nil && len(f) != params.NumCells {
			return nil, fmt.Errorf("%s field has %d cells, want %d", name, len(f), params.NumCells)
		}
	}
	macro, err := BuildMacroNeighbours(&in.Topology.Neighbours, in.Interactions, atoms.Material, cellOf, in.Materials, params.Ms)
	if err != nil {
		return nil, fmt.Errorf("macro-neighbour list: %w", err)
	}

	class, err := Classify(ctx, comm, ClassifyInput{
		Params:       params,
		AtomMaterial: atoms.Material,
		CellOfAtom:   cellOf,
		Materials:    in.Materials,
		Requested:    in.Options.Discretisation,
		Strategy:     in.Options.Strategy,
		LocalCells:   in.LocalCells,
	})
	if err != nil {
		return nil, fmt.Errorf("classification: %w", err)
	}

	norm := Normalise(params, in.Materials, in.SystemSize.Z)
	pinning := PinningFields(params, in.Materials, norm.Prefactor)
	if in.Options.MicromagneticCorrection {
		ApplyMicromagneticCorrection(pinning, in.Cells.Size)
	}

	s := &State{
		Params:         params,
		Macro:          macro,
		Classification: class,
		Normalisation:  norm,
		Pinning:        pinning,
		Magnetisation:  Magnetisation(atoms.Spin, atoms.Material, cellOf, in.Materials, params.NumCells),
	}
	if in.Options.EnableResistance {
		l1, l2 := in.Options.ResistanceLayers[0], in.Options.ResistanceLayers[1]
		s.OverlapArea = ResolveOverlapArea(
			OverlapArea(macro, params.Material, l1, l2, in.Cells.Size),
			in.Options.OverlapAreaOverride)
	}

	s.Fields = &FieldCalculator{
		Params:      params,
		Macro:       macro,
		Couplings:   in.Materials.CouplingRules(),
		Prefactor:   norm.Prefactor,
		External:    in.Options.ExternalField,
		Pinning:     pinning,
		SpinTorque:  NewSpinTorque(in.Materials, in.Options.SpinPolarization),
		Dipole:      in.Options.Dipole,
		Environment: in.Options.Environment,
		TrackField:  in.Options.TrackField,
		BiasField:   in.Options.BiasField,
	}
	logger.Info("End of micromagnetic initialisation")
	return s, nil
}
