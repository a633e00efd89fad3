// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package driver

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/AleutianAI/sortbench/services/sortbench/adapter"
	"github.com/AleutianAI/sortbench/services/sortbench/catalog"
)

// ---- Stubs ----

type constTimer struct {
	ticks uint64
	calls int
	sizes []int
}

func (c *constTimer) Time(_ context.Context, values []catalog.Value) (uint64, error) {
	c.calls++
	c.sizes = append(c.sizes, len(values))
	return c.ticks, nil
}

type lenTimer struct{}

func (lenTimer) Time(_ context.Context, values []catalog.Value) (uint64, error) {
	return uint64(len(values)), nil
}

type pairTimer struct{}

func (pairTimer) TimePair(_ context.Context, values []catalog.Value) (adapter.Pair, error) {
	return adapter.Pair{Scalar: 1, Tuple: uint64(len(values))}, nil
}

type failingTimer struct {
	after int
	err   error
	calls int
}

func (f *failingTimer) Time(context.Context, []catalog.Value) (uint64, error) {
	f.calls++
	if f.calls > f.after {
		return 0, f.err
	}
	return 1, nil
}

type cancelingTimer struct {
	cancel context.CancelFunc
}

func (c cancelingTimer) Time(context.Context, []catalog.Value) (uint64, error) {
	c.cancel()
	return 1, nil
}

type recordingProgress struct {
	harness    string
	iterations int
	steps      [][2]int
	finished   bool
}

func (r *recordingProgress) Started(harness string, iterations int) {
	r.harness, r.iterations = harness, iterations
}
func (r *recordingProgress) Iteration(done, total int) { r.steps = append(r.steps, [2]int{done, total}) }
func (r *recordingProgress) Finished()                 { r.finished = true }

func zeros(n int) ([]catalog.Value, error) {
	out := make([]catalog.Value, n)
	for i := range out {
		out[i] = catalog.NewInt(0)
	}
	return out, nil
}

func singleCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New(catalog.Entry{Label: "zero", Generate: zeros})
	require.NoError(t, err)
	return cat
}

// ---- Params ----

func TestParams_Validate(t *testing.T) {
	tests := []struct {
		name string
		p    Params
		ok   bool
	}{
		{"defaults structural", DefaultStructural(), true},
		{"defaults shape", DefaultShape(), true},
		{"zero iterations", Params{0, 0, 1, 0}, true},
		{"negative iterations", Params{-1, 0, 1, 1}, false},
		{"negative start", Params{1, -1, 1, 1}, false},
		{"zero step", Params{1, 0, 0, 1}, false},
		{"end below start", Params{1, 5, 1, 4}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.p.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidParams)
			}
		})
	}
}

func TestParams_Sizes(t *testing.T) {
	assert.Equal(t, []int{0, 1, 2}, Params{Step: 1, EndSize: 3}.Sizes())
	assert.Equal(t, []int{10}, Params{StartSize: 10, Step: 10, EndSize: 20}.Sizes())
	assert.Equal(t, []int{1, 4}, Params{StartSize: 1, Step: 3, EndSize: 5}.Sizes())
	assert.Empty(t, Params{StartSize: 5, Step: 1, EndSize: 5}.Sizes())

	sizes := DefaultStructural().Sizes()
	assert.Len(t, sizes, 90)
	assert.Equal(t, 1000, sizes[0])
	assert.Equal(t, 9900, sizes[len(sizes)-1])
}

// ---- RunStructural ----

func TestRunStructural_SumsSizesPerIteration(t *testing.T) {
	timer := &constTimer{ticks: 1}
	series, err := New(singleCatalog(t)).RunStructural(context.Background(), timer, Params{2, 0, 1, 3})
	require.NoError(t, err)

	got, ok := series.Get("zero")
	require.True(t, ok)
	assert.Equal(t, []uint64{3, 3}, got)
	assert.Equal(t, 6, timer.calls)
	assert.Equal(t, []int{0, 1, 2, 0, 1, 2}, timer.sizes)
}

func TestRunStructural_ZeroIterations(t *testing.T) {
	series, err := New(catalog.Structural()).RunStructural(context.Background(), &constTimer{}, Params{0, 0, 1, 3})
	require.NoError(t, err)
	assert.Equal(t, 8, series.Len())
	assert.Equal(t, 0, series.Iterations())
}

func TestRunStructural_EmptySizeRange(t *testing.T) {
	series, err := New(singleCatalog(t)).RunStructural(context.Background(), &constTimer{ticks: 9}, Params{2, 5, 1, 5})
	require.NoError(t, err)
	got, _ := series.Get("zero")
	assert.Equal(t, []uint64{0, 0}, got)
}

func TestRunStructural_InvalidParams(t *testing.T) {
	timer := &constTimer{}
	_, err := New(singleCatalog(t)).RunStructural(context.Background(), timer, Params{1, 0, 0, 3})
	assert.ErrorIs(t, err, ErrInvalidParams)
	assert.Zero(t, timer.calls)
}

func TestRunStructural_EndToEnd(t *testing.T) {
	timer, err := adapter.NewStructural(adapter.ModeCallback)
	require.NoError(t, err)

	series, err := New(catalog.Structural()).RunStructural(context.Background(), timer, Params{1, 10, 10, 20})
	require.NoError(t, err)

	assert.Equal(t, catalog.Structural().Labels(), series.Labels())
	for _, label := range series.Labels() {
		got, _ := series.Get(label)
		assert.Len(t, got, 1, label)
	}
}

func TestRunStructural_CaptureModeEndToEnd(t *testing.T) {
	timer, err := adapter.NewStructural(adapter.ModeCapture)
	require.NoError(t, err)

	series, err := New(catalog.Structural()).RunStructural(context.Background(), timer, Params{2, 0, 5, 15})
	require.NoError(t, err)
	assert.Equal(t, 2, series.Iterations())
}

func TestRunStructural_CatalogOrderPreserved(t *testing.T) {
	series, err := New(catalog.Structural()).RunStructural(context.Background(), lenTimer{}, Params{1, 1, 1, 4})
	require.NoError(t, err)

	assert.Equal(t, []string{"*sort", `\sort`, "/sort", "3sort", "+sort", "%sort", "~sort", "=sort"}, series.Labels())
	got, _ := series.Get("*sort")
	assert.Equal(t, []uint64{1 + 2 + 3}, got)
	got, _ = series.Get("+sort")
	assert.Equal(t, []uint64{11 + 12 + 13}, got)
}

func TestRunStructural_TimerErrorAbortsWithContext(t *testing.T) {
	boom := errors.New("sort exploded")
	timer := &failingTimer{after: 4, err: boom}

	series, err := New(singleCatalog(t)).RunStructural(context.Background(), timer, Params{3, 0, 1, 3})
	assert.Nil(t, series)
	require.ErrorIs(t, err, boom)

	var se *SampleError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, HarnessStructural, se.Harness)
	assert.Equal(t, 1, se.Iteration)
	assert.Equal(t, "zero", se.Label)
	assert.Equal(t, 1, se.Size)
	assert.Contains(t, err.Error(), `label "zero"`)
}

func TestRunStructural_GeneratorError(t *testing.T) {
	boom := errors.New("no values")
	cat, err := catalog.New(catalog.Entry{Label: "bad", Generate: func(int) ([]catalog.Value, error) { return nil, boom }})
	require.NoError(t, err)

	_, err = New(cat).RunStructural(context.Background(), &constTimer{}, Params{1, 0, 1, 1})
	assert.ErrorIs(t, err, boom)
}

func TestRunStructural_CanceledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	timer := &constTimer{}
	series, err := New(singleCatalog(t)).RunStructural(ctx, timer, Params{1, 0, 1, 2})
	assert.Nil(t, series)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, timer.calls)
}

func TestRunStructural_CanceledBetweenIterations(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	progress := &recordingProgress{}
	series, err := New(singleCatalog(t), WithProgress(progress)).
		RunStructural(ctx, cancelingTimer{cancel: cancel}, Params{3, 0, 1, 1})
	assert.Nil(t, series)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, progress.steps, 1)
	assert.False(t, progress.finished)
}

// ---- RunShape ----

func TestRunShape_SumsBothVariants(t *testing.T) {
	shape, err := New(singleCatalog(t)).RunShape(context.Background(), pairTimer{}, Params{2, 1, 1, 4})
	require.NoError(t, err)

	scalar, _ := shape.Scalar.Get("zero")
	tuple, _ := shape.Tuple.Get("zero")
	assert.Equal(t, []uint64{3, 3}, scalar)
	assert.Equal(t, []uint64{6, 6}, tuple)
}

func TestRunShape_EndToEnd(t *testing.T) {
	timer, err := adapter.NewShape(adapter.ModeCallback)
	require.NoError(t, err)

	shape, err := New(catalog.Shape()).RunShape(context.Background(), timer, Params{1, 10, 10, 20})
	require.NoError(t, err)

	want := []string{"float", "small_int", "int", "latin_string", "string", "heterogeneous"}
	assert.Equal(t, want, shape.Scalar.Labels())
	assert.Equal(t, want, shape.Tuple.Labels())
	assert.Equal(t, 1, shape.Scalar.Iterations())
	assert.Equal(t, 1, shape.Tuple.Iterations())
}

func TestRunShape_InvalidParams(t *testing.T) {
	_, err := New(singleCatalog(t)).RunShape(context.Background(), pairTimer{}, Params{1, 3, 1, 2})
	assert.ErrorIs(t, err, ErrInvalidParams)
}

// ---- Observability ----

func TestRun_ReportsProgress(t *testing.T) {
	progress := &recordingProgress{}
	_, err := New(singleCatalog(t), WithProgress(progress)).
		RunStructural(context.Background(), &constTimer{}, Params{4, 0, 1, 1})
	require.NoError(t, err)

	assert.Equal(t, HarnessStructural, progress.harness)
	assert.Equal(t, 4, progress.iterations)
	assert.Equal(t, [][2]int{{1, 4}, {2, 4}, {3, 4}, {4, 4}}, progress.steps)
	assert.True(t, progress.finished)
}

func TestRun_RecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	_, err := New(singleCatalog(t), WithMetrics(m)).
		RunShape(context.Background(), pairTimer{}, Params{2, 0, 1, 3})
	require.NoError(t, err)

	assert.Equal(t, float64(12), testutil.ToFloat64(m.samples.WithLabelValues(HarnessShape, "zero")))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.iterations.WithLabelValues(HarnessShape)))
	assert.Equal(t, 2, testutil.CollectAndCount(m.sampleTicks))
}

func TestRun_RecordsFailureMetric(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	_, err := New(singleCatalog(t), WithMetrics(m)).
		RunStructural(context.Background(), &failingTimer{err: errors.New("x")}, Params{1, 0, 1, 1})
	require.Error(t, err)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.failures.WithLabelValues(HarnessStructural)))
}

func TestRun_EmitsSpans(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	defer tp.Shutdown(context.Background())

	_, err := New(singleCatalog(t), WithTracer(tp.Tracer("test"))).
		RunStructural(context.Background(), &constTimer{}, Params{2, 0, 1, 1})
	require.NoError(t, err)

	spans := rec.Ended()
	require.Len(t, spans, 3)
	assert.Equal(t, "driver.Iteration", spans[0].Name())
	assert.Equal(t, "driver.Iteration", spans[1].Name())
	assert.Equal(t, "driver.Run", spans[2].Name())
	assert.Equal(t, codes.Ok, spans[2].Status().Code)
	assert.Equal(t, spans[2].SpanContext().SpanID(), spans[0].Parent().SpanID())
}

func TestRun_ErrorSpanStatus(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	defer tp.Shutdown(context.Background())

	_, err := New(singleCatalog(t), WithTracer(tp.Tracer("test"))).
		RunStructural(context.Background(), &failingTimer{err: errors.New("x")}, Params{1, 0, 1, 1})
	require.Error(t, err)

	spans := rec.Ended()
	require.NotEmpty(t, spans)
	root := spans[len(spans)-1]
	assert.Equal(t, "driver.Run", root.Name())
	assert.Equal(t, codes.Error, root.Status().Code)
}
