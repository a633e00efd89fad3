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
	"math"
	"math/big"
	"strconv"
)

// Element-shape distribution labels, in catalog order.
const (
	LabelFloat         = "float"
	LabelSmallInt      = "small_int"
	LabelInt           = "int"
	LabelLatinString   = "latin_string"
	LabelString        = "string"
	LabelHeterogeneous = "heterogeneous"
)

// MaxCodepointText is the single-character string appended by Strings. It
// is the largest code point of the Basic Multilingual Plane and forces the
// sort off any Latin-1 fast path.
const MaxCodepointText Text = "\uffff"

// wideInt is 2^64, appended by Ints to force arbitrary precision comparison.
var wideInt = NewBigInt(new(big.Int).Lsh(big.NewInt(1), 64))

var shape = mustNew(
	Entry{Label: LabelFloat, Generate: Floats},
	Entry{Label: LabelSmallInt, Generate: SmallInts},
	Entry{Label: LabelInt, Generate: Ints},
	Entry{Label: LabelLatinString, Generate: LatinStrings},
	Entry{Label: LabelString, Generate: Strings},
	Entry{Label: LabelHeterogeneous, Generate: Heterogeneous},
)

// Shape returns the catalog of distributions that stress element-type
// dispatch: floats, small and wide integers, Latin and non-Latin text, and a
// mixed int/float list.
func Shape() *Catalog { return shape }

// Floats returns n uniform floats in [0, 1).
func Floats(n int) ([]Value, error) {
	if err := checkSize(n); err != nil {
		return nil, err
	}
	r := SeedFor(n)
	out := make([]Value, n)
	for i := range out {
		out[i] = Float(r.Float64())
	}
	return out, nil
}

// SmallInts returns n integers trunc(2^31*r - 2^30), all within int32.
func SmallInts(n int) ([]Value, error) {
	if err := checkSize(n); err != nil {
		return nil, err
	}
	r := SeedFor(n)
	out := make([]Value, n)
	for i := range out {
		out[i] = NewInt(int64(math.Trunc(math.Exp2(31)*r.Float64() - math.Exp2(30))))
	}
	return out, nil
}

// Ints returns SmallInts(n) followed by 2^64.
func Ints(n int) ([]Value, error) {
	out, err := SmallInts(n)
	if err != nil {
		return nil, err
	}
	return append(out, wideInt), nil
}

// LatinStrings returns n decimal renderings of uniform floats. Every
// character is ASCII.
func LatinStrings(n int) ([]Value, error) {
	if err := checkSize(n); err != nil {
		return nil, err
	}
	r := SeedFor(n)
	out := make([]Value, n)
	for i := range out {
		out[i] = Text(strconv.FormatFloat(r.Float64(), 'g', -1, 64))
	}
	return out, nil
}

// Strings returns LatinStrings(n) followed by MaxCodepointText.
func Strings(n int) ([]Value, error) {
	out, err := LatinStrings(n)
	if err != nil {
		return nil, err
	}
	return append(out, MaxCodepointText), nil
}

// Heterogeneous returns Floats(n) followed by the integer 0.
func Heterogeneous(n int) ([]Value, error) {
	out, err := Floats(n)
	if err != nil {
		return nil, err
	}
	return append(out, NewInt(0)), nil
}
