package partitions

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
)

var logger = logrus.WithField("module", "partitions")

// PartitionBuilder distributes a list of cells over ranks
type PartitionBuilder struct {
	Cells    []int // global cell ids, in distribution order
	NumRanks int
	Strategy PartitionStrategy
}

// PartitionStrategy defines how cells are grouped
type PartitionStrategy int

const (
	LinearChunk PartitionStrategy = iota // Consecutive runs, remainder to the last rank
	RoundRobin                           // Distribute cyclically
)

func (s PartitionStrategy) String() string {
	switch s {
	case LinearChunk:
		return "linear-chunk"
	case RoundRobin:
		return "round-robin"
	}
	return fmt.Sprintf("PartitionStrategy(%d)", int(s))
}

// ChunkRange returns the half-open range [start, end) of n items owned by
// rank. Every rank receives n/ranks items except the last, which also takes
// the remainder.
func ChunkRange(n, ranks, rank int) (start, end int) {
	chunk := n / ranks
	start = rank * chunk
	end = start + chunk
	if rank == ranks-1 {
		end = n
	}
	return start, end
}

// BuildPartitions creates the layout
func (pb *PartitionBuilder) BuildPartitions() (*PartitionLayout, error) {
	if pb.NumRanks < 1 {
		return nil, fmt.Errorf("number of ranks must be positive, got %d", pb.NumRanks)
	}

	owner := pb.assignCells()

	layout := &PartitionLayout{
		Partitions:    make([]Partition, pb.NumRanks),
		TotalCells:    len(pb.Cells),
		NumPartitions: pb.NumRanks,
		CellToRank:    make(map[int]int, len(pb.Cells)),
	}
	for r := range layout.Partitions {
		layout.Partitions[r].ID = r
	}
	for i, c := range pb.Cells {
		r := owner[i]
		layout.Partitions[r].Cells = append(layout.Partitions[r].Cells, c)
		layout.CellToRank[c] = r
	}
	for r := range layout.Partitions {
		layout.Partitions[r].NumCells = len(layout.Partitions[r].Cells)
		logger.WithFields(logrus.Fields{
			"rank":  r,
			"cells": layout.Partitions[r].NumCells,
		}).Debug("Rank ownership")
	}

	if err := layout.ValidateLayout(); err != nil {
		return nil, err
	}
	return layout, nil
}

// assignCells returns the rank of each entry of Cells
func (pb *PartitionBuilder) assignCells() []int {
	owner := make([]int, len(pb.Cells))
	switch pb.Strategy {
	case RoundRobin:
		for i := range pb.Cells {
			owner[i] = i % pb.NumRanks
		}
	default:
		for r := 0; r < pb.NumRanks; r++ {
			start, end := ChunkRange(len(pb.Cells), pb.NumRanks, r)
			for i := start; i < end; i++ {
				owner[i] = r
			}
		}
	}
	return owner
}

// PartitionStats holds load balance metrics
type PartitionStats struct {
	NumPartitions int
	MinCells      int
	MaxCells      int
	AvgCells      float64
	Imbalance     float64 // MaxCells / AvgCells, 0 for an empty layout
}

// PartitionStatistics computes load balance metrics
func (pl *PartitionLayout) PartitionStatistics() PartitionStats {
	counts := make([]float64, len(pl.Partitions))
	for i, p := range pl.Partitions {
		counts[i] = float64(p.NumCells)
	}
	stats := PartitionStats{NumPartitions: pl.NumPartitions}
	if len(counts) == 0 {
		return stats
	}
	stats.MinCells = int(floats.Min(counts))
	stats.MaxCells = int(floats.Max(counts))
	stats.AvgCells = floats.Sum(counts) / float64(len(counts))
	if stats.AvgCells > 0 {
		stats.Imbalance = float64(stats.MaxCells) / stats.AvgCells
	}
	return stats
}
