// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package results

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type writeRecorder struct {
	mu     sync.Mutex
	bodies []string
	query  []string
}

func (w *writeRecorder) handler(status int) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v2/write" {
			http.NotFound(rw, r)
			return
		}
		body, _ := io.ReadAll(r.Body)
		w.mu.Lock()
		w.bodies = append(w.bodies, string(body))
		w.query = append(w.query, r.URL.Query().Get("org")+"/"+r.URL.Query().Get("bucket"))
		w.mu.Unlock()
		rw.WriteHeader(status)
	}
}

func (w *writeRecorder) lines() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []string
	for _, b := range w.bodies {
		for _, l := range strings.Split(strings.TrimSpace(b), "\n") {
			if l != "" {
				out = append(out, l)
			}
		}
	}
	return out
}

func TestInfluxSink_ExportSeries(t *testing.T) {
	rec := &writeRecorder{}
	srv := httptest.NewServer(rec.handler(http.StatusNoContent))
	defer srv.Close()

	sink := NewInfluxSink(InfluxConfig{URL: srv.URL, Token: "t", Org: "lab", Bucket: "bench"})
	defer sink.Close()

	s := NewSeries([]string{"a", "b"})
	require.NoError(t, s.Append("a", 5))
	require.NoError(t, s.Append("a", 6))
	require.NoError(t, s.Append("b", 7))

	start := time.Unix(1700000000, 0)
	require.NoError(t, sink.ExportSeries(context.Background(), "run-1", "structural", VariantScalar, start, s))

	lines := rec.lines()
	require.Len(t, lines, 3)
	for _, l := range lines {
		assert.True(t, strings.HasPrefix(l, Measurement+","), l)
		assert.Contains(t, l, "run_id=run-1")
		assert.Contains(t, l, "harness=structural")
		assert.Contains(t, l, "variant=scalar")
	}
	assert.Contains(t, lines[0], "label=a")
	assert.Contains(t, lines[0], "total_ticks=5")
	assert.Contains(t, lines[1], "total_ticks=6")
	assert.Contains(t, lines[2], "label=b")
	assert.Equal(t, "lab/bench", rec.query[0])
}

func TestInfluxSink_ExportShape(t *testing.T) {
	rec := &writeRecorder{}
	srv := httptest.NewServer(rec.handler(http.StatusNoContent))
	defer srv.Close()

	sink := NewInfluxSink(InfluxConfig{URL: srv.URL, Org: "lab", Bucket: "bench"})
	defer sink.Close()

	s := NewShapeSeries([]string{"float"})
	require.NoError(t, s.Scalar.Append("float", 1))
	require.NoError(t, s.Tuple.Append("float", 2))

	require.NoError(t, sink.ExportShape(context.Background(), "run-2", "shape", time.Now(), s))

	lines := rec.lines()
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "variant=scalar")
	assert.Contains(t, lines[1], "variant=tuple")
}

func TestInfluxSink_EmptySeriesSkipsWrite(t *testing.T) {
	rec := &writeRecorder{}
	srv := httptest.NewServer(rec.handler(http.StatusNoContent))
	defer srv.Close()

	sink := NewInfluxSink(InfluxConfig{URL: srv.URL, Org: "lab", Bucket: "bench"})
	defer sink.Close()

	require.NoError(t, sink.ExportSeries(context.Background(), "r", "structural", VariantScalar, time.Now(), NewSeries([]string{"a"})))
	assert.Empty(t, rec.lines())
}

func TestInfluxSink_ServerError(t *testing.T) {
	rec := &writeRecorder{}
	srv := httptest.NewServer(rec.handler(http.StatusBadRequest))
	defer srv.Close()

	sink := NewInfluxSink(InfluxConfig{URL: srv.URL, Org: "lab", Bucket: "bench"})
	defer sink.Close()

	s := NewSeries([]string{"a"})
	require.NoError(t, s.Append("a", 1))
	err := sink.ExportSeries(context.Background(), "r", "structural", VariantScalar, time.Now(), s)
	assert.Error(t, err)
}
