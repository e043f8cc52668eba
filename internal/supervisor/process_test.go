// Phalanx - Process-per-core HTTP Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/phalanx

package supervisor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"
	"testing"
	"time"
)

const helperEnv = "PHALANX_TEST_HELPER"

// TestHelperWorkerProcess is not a real test. ExecStarter re-runs the test
// binary with helperEnv set, and this function then plays the worker.
func TestHelperWorkerProcess(t *testing.T) {
	mode := os.Getenv(helperEnv)
	if mode == "" {
		return
	}

	switch mode {
	case "ready-exit":
		if err := NotifyReady(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		os.Exit(0)

	case "fail":
		os.Exit(3)

	case "serve":
		l, err := InheritedListener()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		index, _ := WorkerIndex()

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
		defer stop()

		server := &http.Server{
			Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprintf(w, "worker %d", index)
			}),
			ReadHeaderTimeout: time.Second,
		}
		go func() { _ = server.Serve(l) }()
		if err := NotifyReady(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}

		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
		os.Exit(0)
	}
}

func helperStarter(t *testing.T, mode string, listener *os.File) *ExecStarter {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("inherited file descriptors are not supported on windows")
	}
	return &ExecStarter{
		Path:     os.Args[0],
		Args:     []string{"-test.run=^TestHelperWorkerProcess$"},
		Env:      []string{helperEnv + "=" + mode},
		Listener: listener,
		Stdout:   io.Discard,
	}
}

func waitReady(t *testing.T, p Process) {
	t.Helper()
	select {
	case <-p.Ready():
	case <-time.After(10 * time.Second):
		t.Fatal("worker never reported ready")
	}
}

func TestExecStarter_ReadyThenExit(t *testing.T) {
	t.Parallel()

	p, err := helperStarter(t, "ready-exit", nil).Start(0)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if p.Pid() <= 0 {
		t.Errorf("Pid() = %d", p.Pid())
	}

	waitReady(t, p)
	if err := p.Wait(); err != nil {
		t.Errorf("Wait() = %v, want nil", err)
	}
}

func TestExecStarter_FailureBeforeReady(t *testing.T) {
	t.Parallel()

	p, err := helperStarter(t, "fail", nil).Start(1)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	err = p.Wait()
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) || exitErr.ExitCode() != 3 {
		t.Fatalf("Wait() = %v, want exit status 3", err)
	}

	// Give the pipe reader a moment to observe EOF.
	time.Sleep(50 * time.Millisecond)
	select {
	case <-p.Ready():
		t.Error("a worker that never reported must not be ready")
	default:
	}
}

func TestExecStarter_ServesInheritedListener(t *testing.T) {
	t.Parallel()

	socket, addr, err := Listen("127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer socket.Close()

	p, err := helperStarter(t, "serve", socket).Start(7)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	waitReady(t, p)

	resp, err := http.Get("http://" + addr.String() + "/")
	if err != nil {
		_ = p.Kill()
		_ = p.Wait()
		t.Fatalf("GET: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != "worker 7" {
		t.Errorf("body = %q, want %q", body, "worker 7")
	}

	if err := p.Signal(syscall.SIGTERM); err != nil {
		t.Fatalf("Signal: %v", err)
	}
	if err := p.Wait(); err != nil {
		t.Errorf("Wait() after SIGTERM = %v, want clean exit", err)
	}
}

func TestExecStarter_MissingBinary(t *testing.T) {
	t.Parallel()

	s := &ExecStarter{Path: "/nonexistent/phalanx-worker"}
	if _, err := s.Start(0); err == nil {
		t.Fatal("Start should fail for a missing binary")
	}
}
