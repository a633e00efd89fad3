// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ux

import (
	"fmt"
	"sync"
	"time"
)

const progressBarWidth = 30

// BenchmarkProgress prints run progress for a benchmark harness.
//
// Plain mode reproduces the classic transcript exactly:
//
//	Benchmark started
//	10%
//	20%
//	...
//	Benchmark ended
//
// Styled mode prints the same events with a title, a bar per iteration and
// the elapsed time.
//
// Thread Safety: Safe for concurrent use.
type BenchmarkProgress struct {
	p       *Printer
	mu      sync.Mutex
	started time.Time
	now     func() time.Time
}

// NewBenchmarkProgress creates a progress printer.
func NewBenchmarkProgress(p *Printer) *BenchmarkProgress {
	return &BenchmarkProgress{p: p, now: time.Now}
}

// Started prints the start banner.
func (b *BenchmarkProgress) Started(harness string, iterations int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.started = b.now()

	if b.p.styled() {
		b.p.Title(fmt.Sprintf("Benchmark started %s %s harness, %d iterations", IconArrow, harness, iterations))
		return
	}
	fmt.Fprintln(b.p.W, "Benchmark started")
}

// Iteration prints the completed fraction as a whole percentage.
func (b *BenchmarkProgress) Iteration(done, total int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	pct := 100
	if total > 0 {
		pct = done * 100 / total
	}
	fmt.Fprintln(b.p.W, ProgressBar(b.p.Mode, pct, progressBarWidth))
}

// Finished prints the end banner.
func (b *BenchmarkProgress) Finished() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.p.styled() {
		elapsed := b.now().Sub(b.started).Round(time.Millisecond)
		b.p.Success(fmt.Sprintf("Benchmark ended in %s", elapsed))
		return
	}
	fmt.Fprintln(b.p.W, "Benchmark ended")
}
