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
	"cmp"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// -----------------------------------------------------------------------------
// Value Model
// -----------------------------------------------------------------------------

// Kind identifies the concrete element type of a Value.
type Kind uint8

const (
	// KindInt is an arbitrary precision signed integer.
	KindInt Kind = iota + 1
	// KindFloat is an IEEE-754 double.
	KindFloat
	// KindText is a Unicode string.
	KindText
	// KindTuple is a single-element ordered tuple.
	KindTuple
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindText:
		return "text"
	case KindTuple:
		return "tuple"
	default:
		return "unknown"
	}
}

// Value is one orderable element of a generated sequence.
//
// Description:
//
//	Value is a closed set: Int, Float, Text and Tuple are the only
//	implementations. Use Compare to order two values and Class to check
//	whether two values can be compared at all.
type Value interface {
	Kind() Kind
	String() string
}

// Int is a signed integer that may exceed the 64-bit machine word.
//
// The int64 fast path is used whenever the value fits; big is non-nil only
// for out-of-range values.
type Int struct {
	small int64
	big   *big.Int
}

// NewInt returns an Int holding v.
func NewInt(v int64) Int {
	return Int{small: v}
}

// NewBigInt returns an Int holding a copy of v, normalized to the int64
// representation when it fits.
func NewBigInt(v *big.Int) Int {
	if v.IsInt64() {
		return Int{small: v.Int64()}
	}
	return Int{big: new(big.Int).Set(v)}
}

// Kind implements Value.
func (Int) Kind() Kind { return KindInt }

// IsInt64 reports whether the value fits in an int64.
func (i Int) IsInt64() bool { return i.big == nil }

// Int64 returns the value truncated to int64. Only meaningful when IsInt64.
func (i Int) Int64() int64 { return i.small }

// Big returns the value as a newly allocated *big.Int.
func (i Int) Big() *big.Int {
	if i.big != nil {
		return new(big.Int).Set(i.big)
	}
	return big.NewInt(i.small)
}

// String implements Value.
func (i Int) String() string {
	if i.big != nil {
		return i.big.String()
	}
	return strconv.FormatInt(i.small, 10)
}

// Float is an IEEE-754 double.
type Float float64

// Kind implements Value.
func (Float) Kind() Kind { return KindFloat }

// String implements Value.
func (f Float) String() string {
	return strconv.FormatFloat(float64(f), 'g', -1, 64)
}

// Text is a Unicode string ordered by code point.
type Text string

// Kind implements Value.
func (Text) Kind() Kind { return KindText }

// String implements Value.
func (t Text) String() string { return strconv.Quote(string(t)) }

// Tuple is a single-element ordered tuple wrapping another value.
type Tuple struct {
	Elem Value
}

// Kind implements Value.
func (Tuple) Kind() Kind { return KindTuple }

// String implements Value.
func (t Tuple) String() string { return "(" + t.Elem.String() + ",)" }

// Tuplify wraps every element of values in a one-element Tuple.
//
// The input is not modified; the result is freshly allocated.
func Tuplify(values []Value) []Value {
	out := make([]Value, len(values))
	for i, v := range values {
		out[i] = Tuple{Elem: v}
	}
	return out
}

// -----------------------------------------------------------------------------
// Ordering
// -----------------------------------------------------------------------------

// Class returns the comparability class of v.
//
// Description:
//
//	Two values are comparable exactly when their classes are equal. Int and
//	Float share the "number" class; tuples carry the class of their element,
//	so (1,) and (2.5,) are comparable while (1,) and ("a",) are not.
//
// Outputs:
//   - string: The class name, e.g. "number", "text", "tuple(number)".
func Class(v Value) string {
	switch x := v.(type) {
	case Int, Float:
		return "number"
	case Text:
		return "text"
	case Tuple:
		if x.Elem == nil {
			return "tuple()"
		}
		return "tuple(" + Class(x.Elem) + ")"
	default:
		return "unknown"
	}
}

// Compare orders two values of the same class.
//
// Description:
//
//	Returns -1, 0 or +1. Integers and floats are compared exactly, including
//	integers beyond the int64 range. Text compares by code point. Tuples
//	compare by their element. Callers must check Class first; comparing
//	values of different classes falls back to ordering by class name so the
//	result is still a consistent total order.
//
// Thread Safety: This function is stateless and safe for concurrent use.
func Compare(a, b Value) int {
	switch x := a.(type) {
	case Int:
		switch y := b.(type) {
		case Int:
			return compareInts(x, y)
		case Float:
			return compareIntFloat(x, float64(y))
		}
	case Float:
		switch y := b.(type) {
		case Float:
			return cmp.Compare(float64(x), float64(y))
		case Int:
			return -compareIntFloat(y, float64(x))
		}
	case Text:
		if y, ok := b.(Text); ok {
			// Byte order of UTF-8 matches code point order.
			return strings.Compare(string(x), string(y))
		}
	case Tuple:
		if y, ok := b.(Tuple); ok {
			return Compare(x.Elem, y.Elem)
		}
	}
	return strings.Compare(Class(a), Class(b))
}

func compareInts(x, y Int) int {
	if x.big == nil && y.big == nil {
		return cmp.Compare(x.small, y.small)
	}
	return x.Big().Cmp(y.Big())
}

// maxExactFloatInt is 2^53, the largest magnitude below which every integer
// is exactly representable as a float64.
const maxExactFloatInt = 1 << 53

func compareIntFloat(x Int, f float64) int {
	if math.IsNaN(f) {
		// NaN sorts before every number, matching cmp.Compare.
		return 1
	}
	if x.big == nil && x.small > -maxExactFloatInt && x.small < maxExactFloatInt {
		return cmp.Compare(float64(x.small), f)
	}
	if math.IsInf(f, 1) {
		return -1
	}
	if math.IsInf(f, -1) {
		return 1
	}
	return new(big.Float).SetInt(x.Big()).Cmp(big.NewFloat(f))
}
