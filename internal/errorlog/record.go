// Phalanx - Process-per-core HTTP Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/phalanx

package errorlog

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/tidwall/sjson"
)

const (
	annotationPrefix = "  >>> "
	exceptionIndent  = "  "
	frameIndent      = "    at "
)

// record assembles the multi-line log record for one normalized error.
// details and fields are pre-rendered JSON lines; either may be nil.
func record(method, url string, status int, message string, details, fields []byte, exc error) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s (%d) - %s", method, url, status, message)

	if details != nil {
		b.WriteByte('\n')
		b.WriteString(annotationPrefix)
		b.Write(details)
	}
	if fields != nil {
		b.WriteByte('\n')
		b.WriteString(annotationPrefix)
		b.Write(fields)
	}

	if exc != nil {
		b.WriteByte('\n')
		b.WriteString(exceptionIndent)
		b.WriteString(exceptionName(exc))
		b.WriteString(": ")
		b.WriteString(exc.Error())
		for _, frame := range exceptionStack(exc) {
			b.WriteByte('\n')
			b.WriteString(frameIndent)
			b.WriteString(frame)
		}
	}

	return b.String()
}

// marshalLine renders v as compact JSON without HTML escaping. A value whose
// MarshalJSON panics is reported as an error.
func marshalLine(v any) (out []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("marshal %T: panic: %v", v, r)
		}
	}()
	return json.MarshalNoEscape(v)
}

// fieldsLine renders fields as one JSON object, keys in attachment order.
// It returns nil for no fields.
func fieldsLine(fields []Field) ([]byte, error) {
	if len(fields) == 0 {
		return nil, nil
	}

	obj := []byte("{}")
	for _, f := range fields {
		if f.Key == "" {
			return nil, fmt.Errorf("field with empty key")
		}
		val, err := marshalLine(f.Value)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Key, err)
		}
		obj, err = sjson.SetRawBytes(obj, fieldPath(f.Key), val)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Key, err)
		}
	}
	return obj, nil
}

// fieldPath escapes the sjson path syntax characters in a field key so the
// key is set literally at the top level.
func fieldPath(key string) string {
	var b strings.Builder
	for _, r := range key {
		switch r {
		case '\\', '.', '*', '?', '|', '#', '@', ':':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
