// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package capture implements the side channel used by the legacy timing
// protocol.
//
// # Overview
//
// The instrumented sort can report its duration as a text line instead of a
// callback. A Channel is the single place those lines go. Callers open a
// Scope around exactly the sort call(s) they want to attribute, then parse
// the scope's text with ParseTotal or ParseSortTimes.
//
//	ch := capture.NewChannel()
//	text, err := capture.Within(ch, func(w io.Writer) error {
//	    return sorter.Sort(values, sorter.LineHook{W: w, Prefix: capture.TotalPrefix})
//	})
//	ticks, err := capture.ParseTotal(text)
//
// # Thread Safety
//
// Channel is safe for concurrent use, but at most one Scope may be open at a
// time. A second Acquire while a scope is open fails with ErrScopeActive
// instead of blocking, so an overlapping measurement is surfaced rather than
// silently serialized.
package capture

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"
)

var (
	// ErrScopeActive indicates Acquire was called while another scope is open.
	ErrScopeActive = errors.New("capture scope already active")

	// ErrScopeReleased indicates a write to a scope after Release.
	ErrScopeReleased = errors.New("capture scope released")
)

// Channel is the shared side channel.
type Channel struct {
	mu     sync.Mutex
	active *Scope
}

// NewChannel returns an idle channel.
func NewChannel() *Channel {
	return &Channel{}
}

// Acquire opens a new capture scope.
//
// Outputs:
//   - *Scope: The open scope. Caller must call Release on every path.
//   - error: ErrScopeActive if a scope is already open.
func (c *Channel) Acquire() (*Scope, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active != nil {
		return nil, ErrScopeActive
	}
	s := &Scope{ch: c}
	c.active = s
	return s, nil
}

// Active reports whether a scope is currently open.
func (c *Channel) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active != nil
}

func (c *Channel) release(s *Scope) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == s {
		c.active = nil
	}
}

// Scope buffers everything written during one capture interval.
type Scope struct {
	ch       *Channel
	mu       sync.Mutex
	buf      bytes.Buffer
	released bool
}

// Write implements io.Writer.
func (s *Scope) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return 0, ErrScopeReleased
	}
	return s.buf.Write(p)
}

// Text returns the text captured so far.
func (s *Scope) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

// Release closes the scope and frees the channel.
//
// Safe to call more than once; every call returns the captured text.
func (s *Scope) Release() string {
	s.mu.Lock()
	first := !s.released
	s.released = true
	text := s.buf.String()
	s.mu.Unlock()

	if first {
		s.ch.release(s)
	}
	return text
}

// Within runs fn inside a fresh scope on ch and returns the captured text.
//
// Description:
//
//	The scope is released on every exit path, including when fn returns an
//	error or panics. The captured text is returned alongside fn's error so
//	a caller can include it in diagnostics.
//
// Inputs:
//   - ch: The channel. Must not have an open scope.
//   - fn: Work to capture. Receives the scope as an io.Writer.
//
// Outputs:
//   - string: Everything written to the scope.
//   - error: ErrScopeActive, or fn's error wrapped.
func Within(ch *Channel, fn func(w io.Writer) error) (text string, err error) {
	scope, err := ch.Acquire()
	if err != nil {
		return "", err
	}
	defer func() {
		text = scope.Release()
	}()

	if err := fn(scope); err != nil {
		return "", fmt.Errorf("captured call failed: %w", err)
	}
	return "", nil
}
