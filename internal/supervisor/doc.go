// Phalanx - Process-per-core HTTP Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/phalanx

/*
Package supervisor runs the process-per-core worker pool using suture v4.

# Overview

The master process binds the listen socket once and re-executes its own
binary for every worker. Each child inherits the socket, so the kernel
spreads incoming connections across all workers.

	RootSupervisor ("phalanx")
	├── WorkerSupervisor ("workers")       master only
	│   ├── WorkerService ("worker-0")
	│   ├── WorkerService ("worker-1")
	│   └── ...
	└── APISupervisor ("api")              worker only
	    └── HTTPServerService

# Worker protocol

A child is started with PHALANX_WORKER=<index> in its environment and two
inherited files:

	fd 3  the listening socket (see InheritedListener)
	fd 4  write end of the readiness pipe (see NotifyReady)

The worker writes "ready <pid>\n" to fd 4 once its HTTP server is serving.
The master logs the event and counts the worker in phalanx_workers_ready.

# Restarts

When a worker exits, its WorkerService waits the configured delay and then
returns an error, so suture starts it again. With restart disabled the
service returns suture.ErrDoNotRestart instead, and the Pool stops once its
last worker has exited. Suture's failure backoff still applies on top of the
delay when workers crash in a tight loop.

# Shutdown

Cancelling the context sends SIGTERM to every worker. A worker that has not
exited after the shutdown timeout is killed. Inside a worker, SIGTERM cancels
the worker's own tree and HTTPServerService drains open connections with
http.Server.Shutdown.

# Usage Example

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.TreeConfig{
	    ShutdownTimeout: cfg.Phalanx.ShutdownTimeout + 5*time.Second,
	})
	if err != nil {
	    return err
	}

	socket, addr, err := supervisor.Listen(cfg.Phalanx.Address())
	if err != nil {
	    return err
	}
	defer socket.Close()

	pool := supervisor.NewPool(tree, &supervisor.ExecStarter{Listener: socket}, cfg.Phalanx.Count, supervisor.WorkerConfig{
	    Restart:         cfg.Phalanx.Restart,
	    Delay:           cfg.Phalanx.Delay,
	    ShutdownTimeout: cfg.Phalanx.ShutdownTimeout,
	})
	logging.Info().Stringer("addr", addr).Msg("Listening")
	return pool.Serve(ctx)
*/
package supervisor
