// Phalanx - Process-per-core HTTP Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/phalanx

package supervisor

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
)

// Process is a started worker process.
type Process interface {
	// Pid returns the operating system process id.
	Pid() int

	// Ready is closed once the worker reports that it is serving. It is
	// never closed for a worker that dies before reporting.
	Ready() <-chan struct{}

	// Wait blocks until the process exits. It is called exactly once.
	Wait() error

	Signal(sig os.Signal) error
	Kill() error
}

// Starter starts the worker process with the given index.
type Starter interface {
	Start(index int) (Process, error)
}

// ExecStarter starts workers by re-executing a binary, by default the
// running executable.
type ExecStarter struct {
	// Path is the binary to run. Empty means os.Executable().
	Path string

	// Args are passed to the binary. Nil means the master's own arguments.
	Args []string

	// Env is appended to the master's environment.
	Env []string

	// Listener is the listening socket handed to the worker as fd 3.
	Listener *os.File

	// Stdout and Stderr receive the worker's output. Nil means the
	// master's own stdout and stderr.
	Stdout io.Writer
	Stderr io.Writer
}

// Start implements Starter.
func (s *ExecStarter) Start(index int) (Process, error) {
	path := s.Path
	if path == "" {
		exe, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("resolve executable: %w", err)
		}
		path = exe
	}

	args := s.Args
	if args == nil && len(os.Args) > 1 {
		args = os.Args[1:]
	}

	readyR, readyW, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("create readiness pipe: %w", err)
	}

	cmd := exec.Command(path, args...)
	cmd.Env = append(os.Environ(), s.Env...)
	cmd.Env = append(cmd.Env, WorkerEnvVar+"="+strconv.Itoa(index))
	cmd.Stdout = s.Stdout
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	cmd.Stderr = s.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}
	// Index i becomes fd 3+i in the child.
	cmd.ExtraFiles = []*os.File{s.Listener, readyW}

	if err := cmd.Start(); err != nil {
		_ = readyR.Close()
		_ = readyW.Close()
		return nil, fmt.Errorf("start %s: %w", path, err)
	}
	// The child holds its own copy; closing ours lets the reader see EOF
	// when the child exits.
	_ = readyW.Close()

	p := &execProcess{cmd: cmd, ready: make(chan struct{})}
	go p.watchReady(readyR)
	return p, nil
}

// execProcess is a Process backed by os/exec.
type execProcess struct {
	cmd       *exec.Cmd
	ready     chan struct{}
	readyOnce sync.Once
}

func (p *execProcess) Pid() int               { return p.cmd.Process.Pid }
func (p *execProcess) Ready() <-chan struct{} { return p.ready }
func (p *execProcess) Wait() error            { return p.cmd.Wait() }
func (p *execProcess) Kill() error            { return p.cmd.Process.Kill() }

func (p *execProcess) Signal(sig os.Signal) error {
	return p.cmd.Process.Signal(sig)
}

// watchReady reads the readiness pipe until the child closes it.
func (p *execProcess) watchReady(r io.ReadCloser) {
	defer r.Close()

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if strings.HasPrefix(scanner.Text(), readyMessage) {
			p.readyOnce.Do(func() { close(p.ready) })
		}
	}
}
