// Package simulation wires the setup pipeline: unit cell interactions,
// crystal generation, cell binning, topology flattening and micromagnetic
// initialisation.
package simulation

import (
	"context"
	"fmt"

	"github.com/101Room/vampire/cells"
	"github.com/101Room/vampire/config"
	"github.com/101Room/vampire/create"
	"github.com/101Room/vampire/material"
	"github.com/101Room/vampire/micromagnetic"
	"github.com/101Room/vampire/partitions"
	"github.com/101Room/vampire/topology"
	"github.com/101Room/vampire/unitcell"
	"github.com/101Room/vampire/vmpi"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/spatial/r3"
)

var logger = logrus.WithField("module", "simulation")

// Simulation is the set-up system as seen by one rank
type Simulation struct {
	Rank, Size int

	UnitCell  *unitcell.UnitCell
	Materials material.Table
	Crystal   *create.Crystal
	Cells     *cells.Cells
	Topology  *topology.Topology
	State     *micromagnetic.State

	// Atom halo exchange, nil on a single rank
	Halo *topology.HaloConnector
	// Spins in halo numbering: owned atoms, then halo atoms
	LocalSpins []r3.Vec

	Temperature float64
}

// Setup runs the full setup for the calling rank
func Setup(ctx context.Context, comm vmpi.Comm, cfg *config.Config) (*Simulation, error) {
	log := logger.WithField("rank", comm.Rank())
	s := &Simulation{Rank: comm.Rank(), Size: comm.Size(), Temperature: cfg.Sim.Temperature}

	settings, err := cfg.UnitCellSettings()
	if err != nil {
		return nil, err
	}
	s.UnitCell, err = unitcell.New(settings)
	if err != nil {
		return nil, err
	}
	if err := unitcell.CalculateInteractions(s.UnitCell); err != nil {
		return nil, err
	}

	s.Materials, err = cfg.Materials()
	if err != nil {
		return nil, err
	}
	sys := cfg.System()
	s.Crystal, err = create.Generate(s.UnitCell, s.Materials, sys)
	if err != nil {
		return nil, err
	}

	positions := make([]r3.Vec, len(s.Crystal.Atoms))
	for i, a := range s.Crystal.Atoms {
		positions[i] = a.Position
	}
	atomVolume := s.UnitCell.Volume() / float64(len(s.UnitCell.Atoms))
	s.Cells, err = cells.Bin(positions, cfg.CellSize(), sys.Size, atomVolume)
	if err != nil {
		return nil, err
	}

	s.Topology, err = topology.Flatten(s.Crystal, s.Materials, topology.Options{
		CellOfAtom: s.Cells.CellOfAtom,
		Seed:       cfg.Sim.Seed,
	})
	if err != nil {
		return nil, err
	}

	opts, err := cfg.MicromagneticOptions()
	if err != nil {
		return nil, err
	}
	numCells := s.Cells.NumCells()
	opts.BiasField = cfg.BiasField(numCells)
	start, end := partitions.ChunkRange(numCells, comm.Size(), comm.Rank())
	local := make([]int, 0, end-start)
	for c := start; c < end; c++ {
		local = append(local, c)
	}

	s.State, err = micromagnetic.Initialize(ctx, comm, micromagnetic.Input{
		Topology:     s.Topology,
		Interactions: s.UnitCell.Interactions,
		Cells:        s.Cells,
		Materials:    s.Materials,
		SystemSize:   sys.Size,
		LocalCells:   local,
		Options:      opts,
	})
	if err != nil {
		return nil, err
	}

	if comm.Size() > 1 {
		if err := s.buildHalo(comm.Size()); err != nil {
			return nil, err
		}
		if s.LocalSpins, err = s.ExchangeSpins(); err != nil {
			return nil, err
		}
	}
	log.Infof("Setup complete: %d atoms, %d cells, %d local continuum cells",
		len(s.Crystal.Atoms), numCells, len(s.State.Classification.MagneticCells))
	return s, nil
}

// buildHalo decomposes atoms by the owner of their cell
func (s *Simulation) buildHalo(numRanks int) error {
	numCells := s.Cells.NumCells()
	var owners []int
	if layout := s.State.Classification.Layout; layout != nil {
		owners = layout.Owners(numCells)
	} else {
		owners = make([]int, numCells)
		for r := 0; r < numRanks; r++ {
			start, end := partitions.ChunkRange(numCells, numRanks, r)
			for c := start; c < end; c++ {
				owners[c] = r
			}
		}
	}
	atomToRank, err := topology.DecomposeByCells(s.Cells.CellOfAtom, owners, numRanks)
	if err != nil {
		return err
	}
	s.Halo, err = topology.NewHaloConnector(atomToRank, &s.Topology.Neighbours)
	if err != nil {
		return err
	}
	if err := s.Halo.Verify(); err != nil {
		return fmt.Errorf("halo connector: %w", err)
	}
	return nil
}

// ExchangeSpins returns this rank's owned spins followed by its halo
// spins, filled through the halo connector from the owning ranks. It is
// nil on a single rank.
func (s *Simulation) ExchangeSpins() ([]r3.Vec, error) {
	h := s.Halo
	if h == nil {
		return nil, nil
	}
	values := make([][]r3.Vec, h.NumRanks)
	for r := range values {
		values[r] = make([]r3.Vec, h.NumLocal(r))
		for local := 0; local < h.AtomsPerRank[r]; local++ {
			values[r][local] = s.Topology.Atoms.Spin[h.LocalToGlobal[r][local]]
		}
	}
	if err := h.Exchange(values); err != nil {
		return nil, fmt.Errorf("halo exchange: %w", err)
	}
	if s.Rank >= h.NumRanks {
		return nil, nil
	}
	return values[s.Rank], nil
}

// CellField is the effective field of one continuum cell
type CellField struct {
	Cell  int
	Field r3.Vec
}

// Fields evaluates the effective field of every continuum cell this rank
// owns at temperature T
func (s *Simulation) Fields(T float64) []CellField {
	owned := s.State.Classification.MagneticCells
	h := s.State.Fields.Fields(T, owned, s.State.Magnetisation)
	out := make([]CellField, len(owned))
	for i, cell := range owned {
		out[i] = CellField{Cell: cell, Field: h[i]}
	}
	return out
}
