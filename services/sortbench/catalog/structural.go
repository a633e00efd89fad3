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

// Structural distribution labels, in catalog order.
const (
	LabelRandom   = "*sort"
	LabelReverse  = `\sort`
	LabelSorted   = "/sort"
	LabelSwapped  = "3sort"
	LabelAppended = "+sort"
	LabelSprinkle = "%sort"
	LabelBuckets  = "~sort"
	LabelEqual    = "=sort"
)

const (
	// swapCount is the number of random swaps applied by RandomSwaps.
	swapCount = 3

	// appendCount is the number of random elements appended by Appended.
	appendCount = 10

	// bucketCount is the number of distinct values produced by Buckets.
	bucketCount = 4
)

var structural = mustNew(
	Entry{Label: LabelRandom, Generate: Random},
	Entry{Label: LabelReverse, Generate: Reverse},
	Entry{Label: LabelSorted, Generate: Sorted},
	Entry{Label: LabelSwapped, Generate: RandomSwaps},
	Entry{Label: LabelAppended, Generate: Appended},
	Entry{Label: LabelSprinkle, Generate: Sprinkled},
	Entry{Label: LabelBuckets, Generate: Buckets},
	Entry{Label: LabelEqual, Generate: Equal},
)

// Structural returns the catalog of distributions that stress algorithmic
// cases: random, reversed, sorted, nearly sorted, duplicated, constant.
func Structural() *Catalog { return structural }

// ascending returns 0..n-1 as Ints.
func ascending(n int) []Value {
	out := make([]Value, n)
	for i := range out {
		out[i] = NewInt(int64(i))
	}
	return out
}

// Random returns n uniform integers in [-2^31, 2^31].
func Random(n int) ([]Value, error) {
	if err := checkSize(n); err != nil {
		return nil, err
	}
	r := SeedFor(n)
	out := make([]Value, n)
	for i := range out {
		out[i] = NewInt(intBetween(r, -1<<31, 1<<31))
	}
	return out, nil
}

// Reverse returns n-1 down to 0.
func Reverse(n int) ([]Value, error) {
	if err := checkSize(n); err != nil {
		return nil, err
	}
	out := make([]Value, n)
	for i := range out {
		out[i] = NewInt(int64(n - 1 - i))
	}
	return out, nil
}

// Sorted returns 0 up to n-1.
func Sorted(n int) ([]Value, error) {
	if err := checkSize(n); err != nil {
		return nil, err
	}
	return ascending(n), nil
}

// RandomSwaps returns 0..n-1 with exactly three random index swaps.
// A swap may pick the same index twice and leave the slice unchanged.
func RandomSwaps(n int) ([]Value, error) {
	if err := checkSize(n); err != nil {
		return nil, err
	}
	r := SeedFor(n)
	out := ascending(n)
	if n == 0 {
		return out, nil
	}
	for range swapCount {
		a := intBetween(r, 0, int64(n-1))
		b := intBetween(r, 0, int64(n-1))
		out[a], out[b] = out[b], out[a]
	}
	return out, nil
}

// Appended returns 0..n-1 followed by ten random integers in [0, n-1].
func Appended(n int) ([]Value, error) {
	if err := checkSize(n); err != nil {
		return nil, err
	}
	r := SeedFor(n)
	out := make([]Value, 0, n+appendCount)
	out = append(out, ascending(n)...)
	for range appendCount {
		out = append(out, NewInt(intBetween(r, 0, int64(n-1))))
	}
	return out, nil
}

// Sprinkled returns 0..n-1 with n/100 random indices overwritten by random
// values in [0, n-1]. The length is unchanged.
func Sprinkled(n int) ([]Value, error) {
	if err := checkSize(n); err != nil {
		return nil, err
	}
	r := SeedFor(n)
	out := ascending(n)
	for range n / 100 {
		idx := intBetween(r, 0, int64(n-1))
		out[idx] = NewInt(intBetween(r, 0, int64(n-1)))
	}
	return out, nil
}

// Buckets returns n/4 copies of each of 0, 1, 2 and 3, shuffled.
// The n%4 residual elements are dropped.
func Buckets(n int) ([]Value, error) {
	if err := checkSize(n); err != nil {
		return nil, err
	}
	r := SeedFor(n)
	per := n / bucketCount
	out := make([]Value, 0, per*bucketCount)
	for v := range bucketCount {
		for range per {
			out = append(out, NewInt(int64(v)))
		}
	}
	r.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out, nil
}

// Equal returns n zeros.
func Equal(n int) ([]Value, error) {
	if err := checkSize(n); err != nil {
		return nil, err
	}
	out := make([]Value, n)
	for i := range out {
		out[i] = NewInt(0)
	}
	return out, nil
}
