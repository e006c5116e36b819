// Package vmpi provides the rank-level collaboration primitives used during
// setup: rank identity, world size and full barriers.
//
// The setup code is written against Comm so that the same logic runs as a
// single serial process, or as several ranks inside one process (World),
// where each rank is a goroutine with its own rank-local state.
package vmpi

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

var logger = logrus.WithField("module", "vmpi")

// Comm is the view a single rank has of the set of cooperating ranks
type Comm interface {
	Rank() int
	Size() int
	// Barrier blocks until every rank has entered it, or ctx is done
	Barrier(ctx context.Context) error
}

type serialComm struct{}

// Serial returns a communicator for a single-rank run
func Serial() Comm { return serialComm{} }

func (serialComm) Rank() int { return 0 }
func (serialComm) Size() int { return 1 }

func (serialComm) Barrier(ctx context.Context) error {
	return ctx.Err()
}

// World is a group of in-process ranks sharing one reusable barrier.
// A World whose Run returned an error must not be reused.
type World struct {
	size int

	mu      sync.Mutex
	arrived int
	release chan struct{}
}

// NewWorld creates a world of size ranks (at least one)
func NewWorld(size int) *World {
	if size < 1 {
		size = 1
	}
	return &World{
		size:    size,
		release: make(chan struct{}),
	}
}

// Size returns the number of ranks in the world
func (w *World) Size() int { return w.size }

// Run executes fn once per rank, concurrently. The first error returned by
// any rank cancels the context seen by the others and is returned.
func (w *World) Run(ctx context.Context, fn func(ctx context.Context, comm Comm) error) error {
	logger.Debugf("starting %d ranks", w.size)
	g, gctx := errgroup.WithContext(ctx)
	for rank := 0; rank < w.size; rank++ {
		comm := &rankComm{world: w, rank: rank}
		g.Go(func() error {
			return fn(gctx, comm)
		})
	}
	return g.Wait()
}

// barrier is a generation barrier: the last rank to arrive closes the
// current release channel and installs a fresh one for the next round.
func (w *World) barrier(ctx context.Context) error {
	w.mu.Lock()
	release := w.release
	w.arrived++
	if w.arrived == w.size {
		w.arrived = 0
		w.release = make(chan struct{})
		w.mu.Unlock()
		close(release)
		return nil
	}
	w.mu.Unlock()

	select {
	case <-release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type rankComm struct {
	world *World
	rank  int
}

func (c *rankComm) Rank() int { return c.rank }
func (c *rankComm) Size() int { return c.world.size }

func (c *rankComm) Barrier(ctx context.Context) error {
	return c.world.barrier(ctx)
}
