// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package driver runs the benchmark loop over a catalog.
//
// For every iteration and every catalog entry in order, the driver sums the
// samples of one sequence per size and appends the sum to that entry's
// series. It owns no randomness; sequences come from the catalog and samples
// from an adapter. A run either completes and returns its result or fails
// and returns nothing.
package driver

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/AleutianAI/sortbench/services/sortbench/adapter"
	"github.com/AleutianAI/sortbench/services/sortbench/catalog"
	"github.com/AleutianAI/sortbench/services/sortbench/results"
)

// Harness names used in logs, metrics and spans.
const (
	HarnessStructural = "structural"
	HarnessShape      = "shape"
)

var defaultTracer = otel.Tracer("sortbench.driver")

// SampleError describes where a run failed.
type SampleError struct {
	Harness   string
	Iteration int
	Label     string
	Size      int
	Err       error
}

func (e *SampleError) Error() string {
	return fmt.Sprintf("%s iteration %d, label %q, size %d: %v", e.Harness, e.Iteration, e.Label, e.Size, e.Err)
}

func (e *SampleError) Unwrap() error { return e.Err }

// Driver runs benchmark passes over a catalog.
//
// Thread Safety: A Driver may run several benchmarks concurrently as long as
// the timers it is given are safe for that. Capture-mode adapters sharing one
// channel are not.
type Driver struct {
	cat      *catalog.Catalog
	logger   *slog.Logger
	progress Progress
	metrics  *Metrics
	tracer   trace.Tracer
}

// Option configures a Driver.
type Option func(*Driver)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(d *Driver) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithProgress sets the progress receiver.
func WithProgress(p Progress) Option {
	return func(d *Driver) {
		if p != nil {
			d.progress = p
		}
	}
}

// WithMetrics enables Prometheus collection.
func WithMetrics(m *Metrics) Option {
	return func(d *Driver) { d.metrics = m }
}

// WithTracer overrides the OpenTelemetry tracer.
func WithTracer(t trace.Tracer) Option {
	return func(d *Driver) {
		if t != nil {
			d.tracer = t
		}
	}
}

// New creates a driver over cat.
func New(cat *catalog.Catalog, opts ...Option) *Driver {
	d := &Driver{
		cat:      cat,
		logger:   slog.Default(),
		progress: nopProgress{},
		tracer:   defaultTracer,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// RunStructural runs the structural harness.
//
// Description:
//
//	For each iteration, for each entry, the totals of timer over every size
//	in p.Sizes() are summed and appended to the entry's label.
//
// Inputs:
//   - ctx: Checked between iterations and passed to the timer.
//   - timer: Produces one sample per sequence.
//   - p: Run parameters. Validated first.
//
// Outputs:
//   - *results.Series: One list of Iterations totals per catalog label.
//   - error: ErrInvalidParams, a *SampleError, or the context error.
//
// Example:
//
//	series, err := driver.New(catalog.Structural()).RunStructural(ctx, timer, driver.DefaultStructural())
func (d *Driver) RunStructural(ctx context.Context, timer adapter.Timer, p Params) (*results.Series, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	series := results.NewSeries(d.cat.Labels())

	err := d.run(ctx, HarnessStructural, p, func(ctx context.Context, e catalog.Entry, values []catalog.Value, acc *[2]uint64) error {
		ticks, err := timer.Time(ctx, values)
		if err != nil {
			return err
		}
		acc[0] += ticks
		d.metrics.observeSample(HarnessStructural, e.Label, results.VariantScalar, ticks)
		return nil
	}, func(label string, acc [2]uint64) error {
		return series.Append(label, acc[0])
	})
	if err != nil {
		return nil, err
	}
	return series, nil
}

// RunShape runs the element-shape harness.
//
// Each sequence yields a scalar and a tuple sample, summed separately into
// the two halves of the result.
func (d *Driver) RunShape(ctx context.Context, timer adapter.PairTimer, p Params) (*results.ShapeSeries, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	shape := results.NewShapeSeries(d.cat.Labels())

	err := d.run(ctx, HarnessShape, p, func(ctx context.Context, e catalog.Entry, values []catalog.Value, acc *[2]uint64) error {
		pair, err := timer.TimePair(ctx, values)
		if err != nil {
			return err
		}
		acc[0] += pair.Scalar
		acc[1] += pair.Tuple
		d.metrics.observeSample(HarnessShape, e.Label, results.VariantScalar, pair.Scalar)
		d.metrics.observeSample(HarnessShape, e.Label, results.VariantTuple, pair.Tuple)
		return nil
	}, func(label string, acc [2]uint64) error {
		if err := shape.Scalar.Append(label, acc[0]); err != nil {
			return err
		}
		return shape.Tuple.Append(label, acc[1])
	})
	if err != nil {
		return nil, err
	}
	return shape, nil
}

// ---- Loop ----

type sampleFunc func(ctx context.Context, e catalog.Entry, values []catalog.Value, acc *[2]uint64) error

type commitFunc func(label string, acc [2]uint64) error

func (d *Driver) run(ctx context.Context, harness string, p Params, sample sampleFunc, commit commitFunc) (err error) {
	ctx, span := d.tracer.Start(ctx, "driver.Run", trace.WithAttributes(
		attribute.String("harness", harness),
		attribute.Int("iterations", p.Iterations),
		attribute.Int("start_size", p.StartSize),
		attribute.Int("step", p.Step),
		attribute.Int("end_size", p.EndSize),
		attribute.Int("entries", d.cat.Len()),
	))
	defer span.End()

	start := time.Now()
	logger := d.logger.With(slog.String("harness", harness))
	logger.Info("benchmark started", slog.String("params", p.String()), slog.Int("entries", d.cat.Len()))

	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			d.metrics.recordFailure(harness)
			logger.Error("benchmark aborted", slog.String("error", err.Error()))
		}
	}()

	entries := d.cat.Entries()
	sizes := p.Sizes()
	d.metrics.setIterations(harness, 0)
	d.progress.Started(harness, p.Iterations)

	for it := 0; it < p.Iterations; it++ {
		if cerr := ctx.Err(); cerr != nil {
			return fmt.Errorf("%s canceled before iteration %d: %w", harness, it, cerr)
		}
		if err := d.iteration(ctx, harness, it, entries, sizes, sample, commit); err != nil {
			return err
		}
		d.metrics.setIterations(harness, it+1)
		d.progress.Iteration(it+1, p.Iterations)
		logger.Debug("iteration complete", slog.Int("iteration", it))
	}

	d.progress.Finished()
	span.SetStatus(codes.Ok, "")
	logger.Info("benchmark ended", slog.Duration("elapsed", time.Since(start)))
	return nil
}

func (d *Driver) iteration(ctx context.Context, harness string, it int, entries []catalog.Entry, sizes []int, sample sampleFunc, commit commitFunc) error {
	ctx, span := d.tracer.Start(ctx, "driver.Iteration", trace.WithAttributes(
		attribute.Int("iteration", it),
	))
	defer span.End()

	for _, e := range entries {
		var acc [2]uint64
		for _, n := range sizes {
			values, err := e.Generate(n)
			if err == nil {
				err = sample(ctx, e, values, &acc)
			}
			if err != nil {
				span.SetStatus(codes.Error, err.Error())
				return &SampleError{Harness: harness, Iteration: it, Label: e.Label, Size: n, Err: err}
			}
		}
		if err := commit(e.Label, acc); err != nil {
			return fmt.Errorf("%s iteration %d, label %q: %w", harness, it, e.Label, err)
		}
	}
	return nil
}
