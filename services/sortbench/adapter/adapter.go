// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package adapter turns one instrumented sort call into a duration sample.
//
// # Overview
//
// The adapter is the only component that talks to the sorter's
// instrumentation. It supports two timing modes:
//
//	ModeCallback - the sorter reports ticks through a callback (default)
//	ModeCapture  - the sorter writes text lines into a capture scope which
//	               the adapter parses afterwards (legacy protocol)
//
// Structural performs one sort per measurement and yields one sample. Shape
// sorts the raw sequence and then its tuple-wrapped copy and yields a Pair
// whose order matches the call order.
//
// # Thread Safety
//
// Adapters hold no per-call state. In ModeCapture all calls share the
// adapter's capture channel, so concurrent calls fail with
// capture.ErrScopeActive instead of mixing measurements.
package adapter

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/AleutianAI/sortbench/services/sortbench/capture"
	"github.com/AleutianAI/sortbench/services/sortbench/catalog"
	"github.com/AleutianAI/sortbench/services/sortbench/sorter"
)

// -----------------------------------------------------------------------------
// Errors
// -----------------------------------------------------------------------------

var (
	// ErrMissingReport indicates the sorter did not report exactly once per call.
	ErrMissingReport = errors.New("sort did not report exactly one duration")

	// ErrUnknownMode indicates an unsupported timing mode.
	ErrUnknownMode = errors.New("unknown timing mode")
)

// -----------------------------------------------------------------------------
// Modes
// -----------------------------------------------------------------------------

// Mode selects how a duration travels from the sorter to the adapter.
type Mode string

const (
	// ModeCallback receives durations through sorter.HookFunc.
	ModeCallback Mode = "callback"

	// ModeCapture receives durations as text lines on a capture channel.
	ModeCapture Mode = "capture"
)

// ParseMode converts a configuration string to a Mode. Empty means
// ModeCallback.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeCallback:
		return ModeCallback, nil
	case ModeCapture:
		return ModeCapture, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// SortFunc is the instrumented sort entry point. sorter.Sort in production.
type SortFunc func(values []catalog.Value, hook sorter.Hook) error

// -----------------------------------------------------------------------------
// Interfaces
// -----------------------------------------------------------------------------

// Timer yields one duration sample per sequence.
type Timer interface {
	Time(ctx context.Context, values []catalog.Value) (uint64, error)
}

// Pair holds the two samples of one shape measurement.
type Pair struct {
	// Scalar is the ticks for sorting the raw sequence.
	Scalar uint64
	// Tuple is the ticks for sorting the tuple-wrapped sequence.
	Tuple uint64
}

// PairTimer yields a scalar and a tuple sample per sequence.
type PairTimer interface {
	TimePair(ctx context.Context, values []catalog.Value) (Pair, error)
}

// -----------------------------------------------------------------------------
// Structural
// -----------------------------------------------------------------------------

// Structural times one sort call per sequence.
type Structural struct {
	mode    Mode
	channel *capture.Channel
	sort    SortFunc
}

// Option configures an adapter.
type Option func(*options)

type options struct {
	channel *capture.Channel
	sort    SortFunc
}

// WithChannel shares an existing capture channel. Only used in ModeCapture.
func WithChannel(ch *capture.Channel) Option {
	return func(o *options) { o.channel = ch }
}

// WithSortFunc replaces the sort entry point.
func WithSortFunc(fn SortFunc) Option {
	return func(o *options) { o.sort = fn }
}

func buildOptions(opts []Option) options {
	o := options{sort: sorter.Sort}
	for _, opt := range opts {
		opt(&o)
	}
	if o.channel == nil {
		o.channel = capture.NewChannel()
	}
	return o
}

// NewStructural creates a structural adapter.
//
// Inputs:
//   - mode: ModeCallback or ModeCapture.
//   - opts: Optional channel and sort function overrides.
//
// Outputs:
//   - *Structural: The adapter.
//   - error: ErrUnknownMode for an unsupported mode.
func NewStructural(mode Mode, opts ...Option) (*Structural, error) {
	if mode != ModeCallback && mode != ModeCapture {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
	o := buildOptions(opts)
	return &Structural{mode: mode, channel: o.channel, sort: o.sort}, nil
}

// Time sorts values in place and returns the reported ticks.
//
// Description:
//
//	In ModeCallback the sort reports through a callback and exactly one
//	report is required. In ModeCapture the sort writes "TOT <n>" into a
//	capture scope that covers only this call; the scope is released before
//	the text is parsed.
//
// Outputs:
//   - uint64: Ticks attributed to this sort call.
//   - error: Sort failure, ErrMissingReport, capture.ErrScopeActive, or a
//     *capture.ParseError with the raw captured text.
func (a *Structural) Time(ctx context.Context, values []catalog.Value) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	if a.mode == ModeCallback {
		ticks, err := timeCall(a.sort, values)
		if err != nil {
			return 0, fmt.Errorf("sort: %w", err)
		}
		return ticks, nil
	}

	text, err := capture.Within(a.channel, func(w io.Writer) error {
		return a.sort(values, sorter.LineHook{W: w, Prefix: capture.TotalPrefix})
	})
	if err != nil {
		return 0, withCaptured(fmt.Errorf("sort: %w", err), text)
	}
	return capture.ParseTotal(text)
}

// -----------------------------------------------------------------------------
// Shape
// -----------------------------------------------------------------------------

// Shape times a sort of the raw sequence followed by a sort of its
// tuple-wrapped copy.
type Shape struct {
	mode    Mode
	channel *capture.Channel
	sort    SortFunc
}

// NewShape creates a shape adapter. See NewStructural.
func NewShape(mode Mode, opts ...Option) (*Shape, error) {
	if mode != ModeCallback && mode != ModeCapture {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
	o := buildOptions(opts)
	return &Shape{mode: mode, channel: o.channel, sort: o.sort}, nil
}

// TimePair sorts values and a tuple-wrapped copy of the unsorted values.
//
// Description:
//
//	The tuples are built before the scalar sort so both calls see the same
//	input order. In ModeCallback each call must report exactly once. Both
//	calls share one capture scope in ModeCapture; the first parsed line is
//	the scalar sort and the second the tuple sort.
//
// Outputs:
//   - Pair: Scalar and tuple ticks, in call order.
//   - error: As for Structural.Time.
func (a *Shape) TimePair(ctx context.Context, values []catalog.Value) (Pair, error) {
	if err := ctx.Err(); err != nil {
		return Pair{}, err
	}
	tuples := catalog.Tuplify(values)

	if a.mode == ModeCallback {
		scalar, err := timeCall(a.sort, values)
		if err != nil {
			return Pair{}, fmt.Errorf("scalar sort: %w", err)
		}
		tuple, err := timeCall(a.sort, tuples)
		if err != nil {
			return Pair{}, fmt.Errorf("tuple sort: %w", err)
		}
		return Pair{Scalar: scalar, Tuple: tuple}, nil
	}

	text, err := capture.Within(a.channel, func(w io.Writer) error {
		hook := sorter.LineHook{W: w, Prefix: capture.SortTimePrefix}
		if err := a.sort(values, hook); err != nil {
			return fmt.Errorf("scalar sort: %w", err)
		}
		if err := a.sort(tuples, hook); err != nil {
			return fmt.Errorf("tuple sort: %w", err)
		}
		return nil
	})
	if err != nil {
		return Pair{}, withCaptured(err, text)
	}
	scalar, tuple, err := capture.ParseSortTimes(text)
	if err != nil {
		return Pair{}, err
	}
	return Pair{Scalar: scalar, Tuple: tuple}, nil
}

// timeCall runs one sort with its own recorder, so a report can only be
// credited to the call that produced it.
func timeCall(sort SortFunc, values []catalog.Value) (uint64, error) {
	rec := &recorder{}
	if err := sort(values, rec); err != nil {
		return 0, err
	}
	got, err := rec.exactly(1)
	if err != nil {
		return 0, err
	}
	return got[0], nil
}

// withCaptured appends whatever a failed call wrote to its capture scope.
func withCaptured(err error, text string) error {
	if text == "" {
		return err
	}
	return fmt.Errorf("%w (captured %q)", err, text)
}

// recorder collects callback reports in call order.
type recorder struct {
	ticks []uint64
}

func (r *recorder) Report(ticks uint64) error {
	r.ticks = append(r.ticks, ticks)
	return nil
}

func (r *recorder) exactly(n int) ([]uint64, error) {
	if len(r.ticks) != n {
		return nil, fmt.Errorf("%w: want %d, got %d", ErrMissingReport, n, len(r.ticks))
	}
	return r.ticks, nil
}
