// Phalanx - Process-per-core HTTP Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/phalanx

// Package httpstatus holds the process-wide HTTP status registry.
//
// The registry maps every registered status code to its reason phrase. It is
// built once when the package is initialized and is read-only afterwards, so
// lookups are safe from any goroutine without locking.
//
//	phrase, ok := httpstatus.Reason(402) // "Payment Required", true
//	httpstatus.Known(499)                // false
package httpstatus

import (
	"net/http"
	"sort"
)

const (
	// MinCode is the lowest code a status line can carry.
	MinCode = 100
	// MaxCode is the highest code a status line can carry.
	MaxCode = 599
)

// reasons is populated once by load and never written again.
var reasons = load()

// load snapshots net/http's status table for every three digit code.
func load() map[int]string {
	m := make(map[int]string, 64)
	for code := MinCode; code <= MaxCode; code++ {
		if phrase := http.StatusText(code); phrase != "" {
			m[code] = phrase
		}
	}
	return m
}

// Reason returns the registered reason phrase for code.
// The second return value is false when code is not registered.
func Reason(code int) (string, bool) {
	phrase, ok := reasons[code]
	return phrase, ok
}

// Known reports whether code is in the registry.
func Known(code int) bool {
	_, ok := reasons[code]
	return ok
}

// Codes returns all registered codes in ascending order.
func Codes() []int {
	codes := make([]int, 0, len(reasons))
	for code := range reasons {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	return codes
}
