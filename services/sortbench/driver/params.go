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
	"errors"
	"fmt"
)

// ErrInvalidParams indicates a parameter set that cannot describe a run.
var ErrInvalidParams = errors.New("invalid benchmark parameters")

// Params describes one benchmark run.
//
// Each of Iterations passes visits every catalog entry and times one
// sequence per size in [StartSize, EndSize) stepping by Step.
type Params struct {
	Iterations int `yaml:"iterations" json:"iterations" validate:"gte=0"`
	StartSize  int `yaml:"start_size" json:"start_size" validate:"gte=0"`
	Step       int `yaml:"step" json:"step" validate:"gt=0"`
	EndSize    int `yaml:"end_size" json:"end_size" validate:"gtefield=StartSize"`
}

// DefaultStructural returns the structural harness defaults.
func DefaultStructural() Params {
	return Params{Iterations: 500, StartSize: 1000, Step: 100, EndSize: 10000}
}

// DefaultShape returns the element-shape harness defaults.
func DefaultShape() Params {
	return Params{Iterations: 1000, StartSize: 1000, Step: 100, EndSize: 10000}
}

// Validate reports the first constraint p violates, wrapped in ErrInvalidParams.
func (p Params) Validate() error {
	switch {
	case p.Iterations < 0:
		return fmt.Errorf("%w: iterations must be >= 0, got %d", ErrInvalidParams, p.Iterations)
	case p.StartSize < 0:
		return fmt.Errorf("%w: start size must be >= 0, got %d", ErrInvalidParams, p.StartSize)
	case p.Step <= 0:
		return fmt.Errorf("%w: step must be > 0, got %d", ErrInvalidParams, p.Step)
	case p.EndSize < p.StartSize:
		return fmt.Errorf("%w: end size %d is below start size %d", ErrInvalidParams, p.EndSize, p.StartSize)
	}
	return nil
}

// Sizes lists the sequence lengths of one pass. EndSize is exclusive.
// p must be valid.
func (p Params) Sizes() []int {
	if p.Step <= 0 || p.EndSize <= p.StartSize {
		return nil
	}
	out := make([]int, 0, (p.EndSize-p.StartSize+p.Step-1)/p.Step)
	for n := p.StartSize; n < p.EndSize; n += p.Step {
		out = append(out, n)
	}
	return out
}

// String formats p for logs.
func (p Params) String() string {
	return fmt.Sprintf("iterations=%d sizes=[%d:%d:%d]", p.Iterations, p.StartSize, p.EndSize, p.Step)
}
