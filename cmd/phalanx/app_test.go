// Phalanx - Process-per-core HTTP Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/phalanx

package main

import (
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/tidwall/gjson"

	"github.com/tomtom215/phalanx/internal/config"
	"github.com/tomtom215/phalanx/internal/errorlog"
	"github.com/tomtom215/phalanx/internal/server"
)

type sinkRecorder struct {
	mu      sync.Mutex
	records []string
}

func (s *sinkRecorder) sink(record string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record)
}

func (s *sinkRecorder) last() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.records) == 0 {
		return ""
	}
	return s.records[len(s.records)-1]
}

func newDemo(t *testing.T, locals map[string]any) (http.Handler, *sinkRecorder) {
	t.Helper()
	rec := &sinkRecorder{}
	cfg := &config.Config{
		HTTP:     config.HTTPConfig{RateLimitDisabled: true},
		Settings: map[string]any{"foo": "BAR!", "baz": 123},
		Locals:   locals,
	}
	n := errorlog.New(errorlog.Options{Logger: rec.sink})
	return server.NewRouter(cfg, n, nil, demoApp, server.WithWorker(0)), rec
}

// frames matches one or more stack frame lines.
const frames = `(\n    at .+)+$`

func TestDemoApp_ErrorRoutes(t *testing.T) {
	tests := []struct {
		path        string
		wantStatus  int
		wantBody    string
		wantRecord  string
		wantPattern bool
	}{
		{"/test-1", 400, `{"status":400,"message":"Bad Request"}`, "GET /test-1 (400) - Bad Request", false},
		{"/test-2", 500, `{"status":500,"message":"Unknown status 499"}`, "GET /test-2 (500) - Unknown status 499", false},
		{"/test-3", 500, `{"status":500,"message":"Unknown status 999"}`, "GET /test-3 (500) - Unknown status 999", false},
		{"/test-4", 401, `{"status":401,"message":"message for test-4"}`, "GET /test-4 (401) - message for test-4", false},
		{
			"/test-5", 402,
			`{"status":402,"message":"Payment Required","details":{"testname":"test-5"}}`,
			"GET /test-5 (402) - Payment Required\n  >>> {\"testname\":\"test-5\"}", false,
		},
		{
			"/test-6", 403,
			`{"status":403,"message":"message for test-6","details":{"testname":"test-6"}}`,
			"GET /test-6 (403) - message for test-6\n  >>> {\"testname\":\"test-6\"}", false,
		},
		{
			"/test-7", 500,
			`{"status":500,"message":"message for test-7","details":{"testname":"test-7"}}`,
			"GET /test-7 (500) - message for test-7\n  >>> {\"testname\":\"test-7\"}", false,
		},
		{
			"/test-8", 500,
			`{"status":500,"message":"exception message for test-8"}`,
			`^GET /test-8 \(500\) - exception message for test-8` + "\n" +
				`  Exception: exception message for test-8` + frames, true,
		},
		{
			"/test-9", 410,
			`{"status":410,"message":"exception message for test-9","details":{"testname":"test-9"}}`,
			`^GET /test-9 \(410\) - exception message for test-9` + "\n" +
				`  >>> \{"testname":"test-9"\}` + "\n" +
				`  >>> \{"extra":"this only gets logged!"\}` + "\n" +
				`  Exception: exception message for test-9` + frames, true,
		},
		{
			"/test-0", 411,
			`{"status":411,"message":"message for test-0","details":{"testname":"test-0"}}`,
			`^GET /test-0 \(411\) - message for test-0` + "\n" +
				`  >>> \{"testname":"test-0"\}` + "\n" +
				`  >>> \{"more1":"some more in test 0","more2":"even more in test 0"\}` + "\n" +
				`  Exception: exception message for test-0` + frames, true,
		},
	}

	h, sink := newDemo(t, nil)
	for _, tt := range tests {
		t.Run(strings.TrimPrefix(tt.path, "/"), func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if got := rec.Body.String(); got != tt.wantBody {
				t.Errorf("body = %s, want %s", got, tt.wantBody)
			}

			got := sink.last()
			if tt.wantPattern {
				if !regexp.MustCompile(tt.wantRecord).MatchString(got) {
					t.Errorf("record = %q, want match for %q", got, tt.wantRecord)
				}
			} else if got != tt.wantRecord {
				t.Errorf("record = %q, want %q", got, tt.wantRecord)
			}
		})
	}
}

func TestDemoApp_Greeting(t *testing.T) {
	tests := []struct {
		name   string
		locals map[string]any
		want   string
	}{
		{"configured", map[string]any{"salute": "Bonjour!"}, "Bonjour!\n"},
		{"unset", nil, defaultSalute + "\n"},
		{"not a string", map[string]any{"salute": 42}, defaultSalute + "\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newDemo(t, tt.locals)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

			if rec.Code != http.StatusOK || rec.Body.String() != tt.want {
				t.Errorf("GET / = %d %q, want 200 %q", rec.Code, rec.Body.String(), tt.want)
			}
		})
	}
}

func TestDemoApp_Settings(t *testing.T) {
	h, _ := newDemo(t, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/settings", nil))

	body := rec.Body.String()
	if gjson.Get(body, "foo").String() != "BAR!" || gjson.Get(body, "baz").Int() != 123 {
		t.Errorf("body = %s", body)
	}
}

func TestDemoApp_CreateGreeting(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		check      func(t *testing.T, body, record string)
	}{
		{
			name:       "valid",
			body:       `{"name":"Ada","language":"fr"}`,
			wantStatus: http.StatusCreated,
			check: func(t *testing.T, body, _ string) {
				if gjson.Get(body, "name").String() != "Ada" || gjson.Get(body, "worker").Int() != 0 {
					t.Errorf("body = %s", body)
				}
			},
		},
		{
			name:       "malformed",
			body:       `{"name":`,
			wantStatus: http.StatusBadRequest,
			check: func(t *testing.T, body, record string) {
				if gjson.Get(body, "message").String() != "Request body must be a JSON object" {
					t.Errorf("body = %s", body)
				}
				if !strings.Contains(record, "\n  ") {
					t.Errorf("record = %q, want the decode error logged", record)
				}
			},
		},
		{
			name:       "missing name",
			body:       `{}`,
			wantStatus: http.StatusBadRequest,
			check: func(t *testing.T, body, record string) {
				if gjson.Get(body, "details.0.field").String() != "name" {
					t.Errorf("body = %s", body)
				}
				if !strings.HasPrefix(record, "POST /greetings (400) - name is required") {
					t.Errorf("record = %q", record)
				}
			},
		},
		{
			name:       "several failures",
			body:       `{"language":"xx"}`,
			wantStatus: http.StatusBadRequest,
			check: func(t *testing.T, body, _ string) {
				if gjson.Get(body, "message").String() != "Validation failed" || gjson.Get(body, "details.#").Int() != 2 {
					t.Errorf("body = %s", body)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, sink := newDemo(t, nil)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/greetings", strings.NewReader(tt.body)))

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			tt.check(t, rec.Body.String(), sink.last())
		})
	}
}

func TestErrorSink(t *testing.T) {
	if errorSink(nil) == nil {
		t.Fatal("errorSink(nil) returned nil")
	}

	var b strings.Builder
	errorSink(&b)("GET / (404) - Not Found")
	if b.String() != "GET / (404) - Not Found\n" {
		t.Errorf("written = %q", b.String())
	}
}
