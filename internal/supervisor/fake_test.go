// Phalanx - Process-per-core HTTP Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/phalanx

package supervisor

import (
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// fakeProcess is an in-memory Process driven by the test.
type fakeProcess struct {
	index int
	pid   int

	ready     chan struct{}
	readyOnce sync.Once
	exit      chan error

	// ignoreTerm keeps the process alive after SIGTERM.
	ignoreTerm bool
	signals    chan os.Signal
	killed     atomic.Bool
}

func (p *fakeProcess) Pid() int               { return p.pid }
func (p *fakeProcess) Ready() <-chan struct{} { return p.ready }
func (p *fakeProcess) Wait() error            { return <-p.exit }

func (p *fakeProcess) Signal(sig os.Signal) error {
	p.signals <- sig
	if !p.ignoreTerm {
		p.finish(nil)
	}
	return nil
}

func (p *fakeProcess) Kill() error {
	p.killed.Store(true)
	p.finish(errors.New("signal: killed"))
	return nil
}

// markReady simulates the worker reporting readiness.
func (p *fakeProcess) markReady() {
	p.readyOnce.Do(func() { close(p.ready) })
}

// finish makes Wait return err. Only the first call has an effect.
func (p *fakeProcess) finish(err error) {
	select {
	case p.exit <- err:
	default:
	}
}

// fakeStarter hands out fakeProcesses and publishes each on started.
type fakeStarter struct {
	mu         sync.Mutex
	nextPid    int
	err        error
	ignoreTerm bool
	started    chan *fakeProcess
}

func newFakeStarter() *fakeStarter {
	return &fakeStarter{nextPid: 1000, started: make(chan *fakeProcess, 64)}
}

func (s *fakeStarter) Start(index int) (Process, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return nil, s.err
	}
	s.nextPid++
	p := &fakeProcess{
		index:      index,
		pid:        s.nextPid,
		ready:      make(chan struct{}),
		exit:       make(chan error, 1),
		ignoreTerm: s.ignoreTerm,
		signals:    make(chan os.Signal, 4),
	}
	s.started <- p
	return p, nil
}

// next waits for the next started process.
func (s *fakeStarter) next(timeout time.Duration) *fakeProcess {
	select {
	case p := <-s.started:
		return p
	case <-time.After(timeout):
		return nil
	}
}
