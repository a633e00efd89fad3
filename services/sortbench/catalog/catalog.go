// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package catalog

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

// -----------------------------------------------------------------------------
// Errors
// -----------------------------------------------------------------------------

var (
	// ErrNegativeSize indicates a generator was asked for a negative size.
	ErrNegativeSize = errors.New("size must be non-negative")

	// ErrDuplicateLabel indicates two entries share a label.
	ErrDuplicateLabel = errors.New("duplicate distribution label")

	// ErrEmptyLabel indicates an entry has no label.
	ErrEmptyLabel = errors.New("distribution label must not be empty")

	// ErrNilGenerator indicates an entry has no generator.
	ErrNilGenerator = errors.New("distribution generator must not be nil")

	// ErrUnknownLabel indicates a lookup for a label not in the catalog.
	ErrUnknownLabel = errors.New("unknown distribution label")
)

// -----------------------------------------------------------------------------
// Entries
// -----------------------------------------------------------------------------

// Generator produces the input sequence for size n.
//
// Generators must be deterministic in n and return a freshly allocated
// slice on every call.
type Generator func(n int) ([]Value, error)

// Entry is one named distribution.
type Entry struct {
	// Label identifies the distribution in results.
	Label string

	// Generate builds the input for a given size.
	Generate Generator
}

// Catalog is an ordered, immutable collection of distribution entries.
//
// Description:
//
//	The order of entries is part of the contract: the driver iterates in
//	this order and results are serialized in this order. A Catalog is built
//	once with New (or Structural/Shape) and never mutated.
//
// Thread Safety: Safe for concurrent read access.
type Catalog struct {
	entries []Entry
	index   map[string]int
}

// New builds a catalog from entries in the given order.
//
// Inputs:
//   - entries: Distribution entries. Labels must be unique and non-empty.
//
// Outputs:
//   - *Catalog: The catalog. Never nil when err is nil.
//   - error: ErrEmptyLabel, ErrNilGenerator or ErrDuplicateLabel.
func New(entries ...Entry) (*Catalog, error) {
	c := &Catalog{
		entries: make([]Entry, 0, len(entries)),
		index:   make(map[string]int, len(entries)),
	}
	for _, e := range entries {
		if e.Label == "" {
			return nil, ErrEmptyLabel
		}
		if e.Generate == nil {
			return nil, fmt.Errorf("%w: %q", ErrNilGenerator, e.Label)
		}
		if _, dup := c.index[e.Label]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateLabel, e.Label)
		}
		c.index[e.Label] = len(c.entries)
		c.entries = append(c.entries, e)
	}
	return c, nil
}

// mustNew is used for the built-in catalogs whose labels are known unique.
func mustNew(entries ...Entry) *Catalog {
	c, err := New(entries...)
	if err != nil {
		panic(err)
	}
	return c
}

// Entries returns a copy of the entries in catalog order.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Labels returns the labels in catalog order.
func (c *Catalog) Labels() []string {
	out := make([]string, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.Label
	}
	return out
}

// Len returns the number of entries.
func (c *Catalog) Len() int { return len(c.entries) }

// Lookup returns the entry with the given label.
func (c *Catalog) Lookup(label string) (Entry, error) {
	i, ok := c.index[label]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %q", ErrUnknownLabel, label)
	}
	return c.entries[i], nil
}

// -----------------------------------------------------------------------------
// Seeding
// -----------------------------------------------------------------------------

// seedStream is the fixed second word of every generator seed.
const seedStream = 0x736f7274 // "sort"

// SeedFor returns a fresh random source seeded only from n.
//
// Description:
//
//	Every generator reseeds per call so the same n always yields the same
//	sequence, across iterations and across generators. Two generators that
//	both draw from SeedFor(n) in the same way produce the same values.
func SeedFor(n int) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(n), seedStream))
}

// intBetween returns a uniform integer in [lo, hi]. hi < lo is clamped to lo.
func intBetween(r *rand.Rand, lo, hi int64) int64 {
	if hi <= lo {
		return lo
	}
	return lo + r.Int64N(hi-lo+1)
}

func checkSize(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d", ErrNegativeSize, n)
	}
	return nil
}
