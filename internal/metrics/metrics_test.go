// Phalanx - Process-per-core HTTP Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/phalanx

package metrics

import (
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordHTTPRequest(t *testing.T) {
	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/users/{id}", "404"))

	RecordHTTPRequest("GET", "/users/{id}", 404, 12*time.Millisecond)

	after := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/users/{id}", "404"))
	if after-before != 1 {
		t.Errorf("requests counter delta = %v, want 1", after-before)
	}
}

func TestRecordNormalizedError(t *testing.T) {
	tests := []struct {
		status int
		kind   string
	}{
		{400, "status"},
		{402, "bag"},
		{500, "exception"},
	}

	for _, tt := range tests {
		c := ErrorsNormalizedTotal.WithLabelValues(strconv.Itoa(tt.status), tt.kind)
		before := testutil.ToFloat64(c)
		RecordNormalizedError(tt.status, tt.kind)
		if got := testutil.ToFloat64(c) - before; got != 1 {
			t.Errorf("RecordNormalizedError(%d, %q) delta = %v, want 1", tt.status, tt.kind, got)
		}
	}
}

func TestTrackActiveRequest_Concurrent(t *testing.T) {
	before := testutil.ToFloat64(HTTPActiveRequests)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			TrackActiveRequest(true)
			TrackActiveRequest(false)
		}()
	}
	wg.Wait()

	if got := testutil.ToFloat64(HTTPActiveRequests); got != before {
		t.Errorf("active requests = %v, want %v", got, before)
	}
}

func TestWorkerMetrics(t *testing.T) {
	starts := WorkerStartsTotal.WithLabelValues("3")
	exits := WorkerExitsTotal.WithLabelValues("3", "exit")
	startsBefore := testutil.ToFloat64(starts)
	exitsBefore := testutil.ToFloat64(exits)

	RecordWorkerStart(3)
	RecordWorkerExit(3, "exit", 2*time.Second)

	if got := testutil.ToFloat64(starts) - startsBefore; got != 1 {
		t.Errorf("starts delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(exits) - exitsBefore; got != 1 {
		t.Errorf("exits delta = %v, want 1", got)
	}

	readyBefore := testutil.ToFloat64(WorkersReady)
	TrackWorkerReady(true)
	if got := testutil.ToFloat64(WorkersReady); got != readyBefore+1 {
		t.Errorf("ready = %v, want %v", got, readyBefore+1)
	}
	TrackWorkerReady(false)
	if got := testutil.ToFloat64(WorkersReady); got != readyBefore {
		t.Errorf("ready = %v, want %v", got, readyBefore)
	}
}
