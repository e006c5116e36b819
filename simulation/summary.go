package simulation

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
)

// Summary describes a rank's setup
type Summary struct {
	Rank           int     `yaml:"rank"`
	Ranks          int     `yaml:"ranks"`
	Structure      string  `yaml:"crystal_structure"`
	Interactions   int     `yaml:"interactions"`
	Range          int     `yaml:"interaction_range"`
	Atoms          int     `yaml:"atoms"`
	Neighbours     int     `yaml:"neighbours"`
	Cells          int     `yaml:"cells"`
	Discretisation string  `yaml:"discretisation"`
	ContinuumCells int     `yaml:"continuum_cells"`
	EmptyCells     int     `yaml:"empty_cells"`
	AtomisticAtoms int     `yaml:"atomistic_atoms"`
	AtomisticRuns  int     `yaml:"atomistic_runs"`
	Imbalance      float64 `yaml:"imbalance,omitempty"`
	HaloAtoms      int     `yaml:"halo_atoms,omitempty"`
	LocalAtoms     int     `yaml:"local_atoms,omitempty"`
	OverlapArea    float64 `yaml:"overlap_area,omitempty"`
	Temperature    float64 `yaml:"temperature"`
	MeanField      float64 `yaml:"mean_field"`
	MaxField       float64 `yaml:"max_field"`
}

// Summarise evaluates the fields at the configured temperature and
// reports the setup
func (s *Simulation) Summarise() Summary {
	class := s.State.Classification
	sum := Summary{
		Rank:           s.Rank,
		Ranks:          s.Size,
		Structure:      s.UnitCell.Structure,
		Interactions:   len(s.UnitCell.Interactions),
		Range:          s.UnitCell.InteractionRange,
		Atoms:          s.Topology.Atoms.Len(),
		Neighbours:     len(s.Topology.Neighbours.IDs),
		Cells:          s.Cells.NumCells(),
		Discretisation: class.Discretisation.String(),
		ContinuumCells: len(class.MagneticCells),
		EmptyCells:     len(class.EmptyCells),
		AtomisticAtoms: len(class.AtomisticAtoms),
		AtomisticRuns:  len(class.Runs),
		LocalAtoms:     len(s.LocalSpins),
		OverlapArea:    s.State.OverlapArea,
		Temperature:    s.Temperature,
	}
	if class.Layout != nil {
		sum.Imbalance = class.Layout.PartitionStatistics().Imbalance
	}
	if s.Halo != nil && s.Rank < s.Halo.NumRanks {
		sum.HaloAtoms = s.Halo.HaloPerRank[s.Rank]
	}

	fields := s.Fields(s.Temperature)
	if len(fields) > 0 {
		norms := make([]float64, len(fields))
		for i, f := range fields {
			norms[i] = r3.Norm(f.Field)
		}
		sum.MeanField = floats.Sum(norms) / float64(len(norms))
		sum.MaxField = floats.Max(norms)
	}
	return sum
}
