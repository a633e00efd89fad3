// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package sorter is the instrumented comparison sort under benchmark.
//
// # Overview
//
// Sort is treated by the harness as a black box: it orders a slice of
// catalog values in place and, when it finishes, reports the number of
// elapsed ticks through a Hook. The unit of a tick belongs to this package;
// callers must treat it as an opaque monotonic count.
//
// Two hook styles exist:
//
//	HookFunc  - direct callback, one call per sort
//	LineHook  - legacy side channel, writes "<prefix><ticks>\n" to a writer
//
// # Thread Safety
//
// Sort is safe for concurrent use on distinct slices. Hooks are invoked on
// the calling goroutine.
package sorter

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"time"

	"github.com/AleutianAI/sortbench/services/sortbench/catalog"
)

// ErrIncomparable indicates the input mixes values that cannot be ordered
// against each other, e.g. text and numbers.
var ErrIncomparable = errors.New("values are not mutually comparable")

// Hook receives the measured duration of one sort call.
type Hook interface {
	Report(ticks uint64) error
}

// HookFunc adapts a function to the Hook interface.
type HookFunc func(ticks uint64) error

// Report implements Hook.
func (f HookFunc) Report(ticks uint64) error { return f(ticks) }

// LineHook writes one text line per sort call to W.
//
// The line is Prefix followed by the decimal tick count and a newline, e.g.
// "TOT 1234\n".
type LineHook struct {
	W      io.Writer
	Prefix string
}

// Report implements Hook.
func (h LineHook) Report(ticks uint64) error {
	line := make([]byte, 0, len(h.Prefix)+21)
	line = append(line, h.Prefix...)
	line = strconv.AppendUint(line, ticks, 10)
	line = append(line, '\n')
	if _, err := h.W.Write(line); err != nil {
		return fmt.Errorf("write sort time: %w", err)
	}
	return nil
}

// Sort stably orders values in place and reports the elapsed ticks to hook.
//
// Description:
//
//	Validates that every element shares one comparability class, then
//	sorts with catalog.Compare. The clock covers only the sort itself; the
//	validation pass is not timed. The hook is invoked exactly once on
//	success and never on failure. A nil hook disables reporting.
//
// Inputs:
//   - values: Slice to sort. Modified in place.
//   - hook: Receiver of the elapsed ticks. May be nil.
//
// Outputs:
//   - error: ErrIncomparable if the slice mixes classes, or the hook's error.
func Sort(values []catalog.Value, hook Hook) error {
	if err := checkComparable(values); err != nil {
		return err
	}

	start := time.Now()
	slices.SortStableFunc(values, catalog.Compare)
	elapsed := time.Since(start)

	if hook == nil {
		return nil
	}
	return hook.Report(uint64(max(elapsed, 0)))
}

func checkComparable(values []catalog.Value) error {
	if len(values) == 0 {
		return nil
	}
	want := catalog.Class(values[0])
	for i, v := range values[1:] {
		if got := catalog.Class(v); got != want {
			return fmt.Errorf("%w: element %d is %s, element 0 is %s", ErrIncomparable, i+1, got, want)
		}
	}
	return nil
}
