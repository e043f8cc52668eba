// Phalanx - Process-per-core HTTP Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/phalanx

package main

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/phalanx/internal/errorlog"
	"github.com/tomtom215/phalanx/internal/logging"
	"github.com/tomtom215/phalanx/internal/server"
	"github.com/tomtom215/phalanx/internal/validation"
)

const defaultSalute = "Hello, world!"

// greetingRequest is the body accepted by POST /greetings.
type greetingRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=64"`
	Language string `json:"language" validate:"omitempty,oneof=en fr de it"`
}

// demoApp mounts the demo routes.
func demoApp(r chi.Router, env server.Env) {
	logging.Info().Int("worker", env.Worker).Msg("Application starting")

	h := env.Errors.Handle

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = fmt.Fprintln(w, salute(env.Locals))
	})
	r.Get("/settings", h(func(w http.ResponseWriter, _ *http.Request) error {
		return writeJSON(w, http.StatusOK, env.Settings)
	}))
	r.Post("/greetings", h(func(w http.ResponseWriter, r *http.Request) error {
		return createGreeting(w, r, env)
	}))

	r.Get("/test-1", h(func(http.ResponseWriter, *http.Request) error {
		return errorlog.Status(http.StatusBadRequest)
	}))
	r.Get("/test-2", h(func(http.ResponseWriter, *http.Request) error {
		return errorlog.Status(499)
	}))
	r.Get("/test-3", h(func(http.ResponseWriter, *http.Request) error {
		return errorlog.Status(999)
	}))
	r.Get("/test-4", h(func(http.ResponseWriter, *http.Request) error {
		return &errorlog.Bag{Status: http.StatusUnauthorized, Message: "message for test-4"}
	}))
	r.Get("/test-5", h(func(http.ResponseWriter, *http.Request) error {
		return &errorlog.Bag{Status: http.StatusPaymentRequired, Details: testDetails("test-5")}
	}))
	r.Get("/test-6", h(func(http.ResponseWriter, *http.Request) error {
		return &errorlog.Bag{Status: http.StatusForbidden, Message: "message for test-6", Details: testDetails("test-6")}
	}))
	r.Get("/test-7", h(func(http.ResponseWriter, *http.Request) error {
		return &errorlog.Bag{Message: "message for test-7", Details: testDetails("test-7")}
	}))
	r.Get("/test-8", func(http.ResponseWriter, *http.Request) {
		panic(errorlog.NewException("exception message for test-8"))
	})
	r.Get("/test-9", h(func(http.ResponseWriter, *http.Request) error {
		return errorlog.NewException("exception message for test-9").
			WithStatus(http.StatusGone).
			WithDetails(testDetails("test-9")).
			WithField("extra", "this only gets logged!")
	}))
	r.Get("/test-0", h(func(http.ResponseWriter, *http.Request) error {
		return &errorlog.Bag{
			Status:  http.StatusLengthRequired,
			Message: "message for test-0",
			Details: testDetails("test-0"),
			Err: errorlog.NewException("exception message for test-0").
				WithField("more1", "some more in test 0").
				WithField("more2", "even more in test 0"),
		}
	}))
}

func testDetails(name string) map[string]any {
	return map[string]any{"testname": name}
}

// salute returns locals.salute, or a default when it is unset or not a string.
func salute(locals map[string]any) string {
	if s, ok := locals["salute"].(string); ok && s != "" {
		return s
	}
	return defaultSalute
}

func createGreeting(w http.ResponseWriter, r *http.Request, env server.Env) error {
	var req greetingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return &errorlog.Bag{
			Status:  http.StatusBadRequest,
			Message: "Request body must be a JSON object",
			Err:     errorlog.Wrap(err),
		}
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		return verr.ToBag()
	}

	return writeJSON(w, http.StatusCreated, map[string]any{
		"greeting": salute(env.Locals),
		"name":     req.Name,
		"language": req.Language,
		"worker":   env.Worker,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return errorlog.Wrap(err)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, err = w.Write(body)
	if err != nil {
		logging.Debug().Err(err).Msg("Response not delivered")
	}
	return nil
}
