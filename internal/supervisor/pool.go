// Phalanx - Process-per-core HTTP Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/phalanx

package supervisor

import (
	"context"
	"sync/atomic"

	"github.com/tomtom215/phalanx/internal/logging"
)

// Pool runs a fixed number of workers in the tree's workers layer.
type Pool struct {
	tree    *SupervisorTree
	workers []*WorkerService

	remaining atomic.Int32
	retired   chan struct{}
}

// NewPool adds count workers to tree.
func NewPool(tree *SupervisorTree, starter Starter, count int, config WorkerConfig) *Pool {
	p := &Pool{
		tree:    tree,
		workers: make([]*WorkerService, count),
		retired: make(chan struct{}),
	}
	p.remaining.Store(int32(count))

	for i := range p.workers {
		w := NewWorkerService(i, starter, config)
		w.onRetire = p.retire
		p.workers[i] = w
		tree.AddWorker(w)
	}
	return p
}

// retire counts a worker that will not be restarted.
func (p *Pool) retire() {
	if p.remaining.Add(-1) == 0 {
		close(p.retired)
	}
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return len(p.workers)
}

// Serve runs the tree until ctx is cancelled or, with restarts disabled,
// until every worker has exited.
func (p *Pool) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	logging.Info().Int("workers", len(p.workers)).Msg("Starting worker pool")
	errCh := p.tree.ServeBackground(ctx)

	select {
	case err := <-errCh:
		return err
	case <-p.retired:
		logging.Info().Msg("All workers exited, stopping")
		cancel()
		<-errCh
		return nil
	}
}
