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
	"math/big"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSizes = []int{0, 1, 2, 3, 7, 10, 99, 100, 101, 1000, 1003}

func TestStructural_Order(t *testing.T) {
	want := []string{"*sort", `\sort`, "/sort", "3sort", "+sort", "%sort", "~sort", "=sort"}
	assert.Equal(t, want, Structural().Labels())
	assert.Equal(t, 8, Structural().Len())
}

func TestShape_Order(t *testing.T) {
	want := []string{"float", "small_int", "int", "latin_string", "string", "heterogeneous"}
	assert.Equal(t, want, Shape().Labels())
}

func TestGenerators_Idempotent(t *testing.T) {
	for _, cat := range []*Catalog{Structural(), Shape()} {
		for _, e := range cat.Entries() {
			t.Run(e.Label, func(t *testing.T) {
				for _, n := range testSizes {
					first, err := e.Generate(n)
					require.NoError(t, err)
					second, err := e.Generate(n)
					require.NoError(t, err)
					require.Equal(t, len(first), len(second), "n=%d", n)
					for i := range first {
						assert.Zero(t, Compare(first[i], second[i]), "n=%d i=%d", n, i)
					}
				}
			})
		}
	}
}

func TestGenerators_FreshSlices(t *testing.T) {
	first, err := Sorted(10)
	require.NoError(t, err)
	first[0] = NewInt(42)

	second, err := Sorted(10)
	require.NoError(t, err)
	assert.Equal(t, "0", second[0].String())
}

func TestStructural_Lengths(t *testing.T) {
	extra := map[string]int{LabelAppended: appendCount}

	for _, e := range Structural().Entries() {
		t.Run(e.Label, func(t *testing.T) {
			for _, n := range testSizes {
				got, err := e.Generate(n)
				require.NoError(t, err)
				want := n + extra[e.Label]
				if e.Label == LabelBuckets {
					want = n / bucketCount * bucketCount
				}
				assert.Len(t, got, want, "n=%d", n)
			}
		})
	}
}

func TestShape_Lengths(t *testing.T) {
	extra := map[string]int{LabelInt: 1, LabelString: 1, LabelHeterogeneous: 1}

	for _, e := range Shape().Entries() {
		t.Run(e.Label, func(t *testing.T) {
			for _, n := range testSizes {
				got, err := e.Generate(n)
				require.NoError(t, err)
				assert.Len(t, got, n+extra[e.Label], "n=%d", n)
			}
		})
	}
}

func TestGenerators_NegativeSize(t *testing.T) {
	for _, cat := range []*Catalog{Structural(), Shape()} {
		for _, e := range cat.Entries() {
			_, err := e.Generate(-1)
			assert.ErrorIs(t, err, ErrNegativeSize, e.Label)
		}
	}
}

func TestEqual_AllSameValue(t *testing.T) {
	for _, n := range testSizes {
		got, err := Equal(n)
		require.NoError(t, err)
		require.Len(t, got, n)
		for _, v := range got {
			assert.Zero(t, Compare(v, got[0]))
		}
	}
}

func TestBuckets_Multiset(t *testing.T) {
	for _, n := range testSizes {
		got, err := Buckets(n)
		require.NoError(t, err)

		counts := map[string]int{}
		for _, v := range got {
			counts[v.String()]++
		}
		if n < bucketCount {
			assert.Empty(t, counts, "n=%d", n)
			continue
		}
		assert.Equal(t, map[string]int{"0": n / 4, "1": n / 4, "2": n / 4, "3": n / 4}, counts, "n=%d", n)
	}
}

func TestReverse_Descending(t *testing.T) {
	got, err := Reverse(5)
	require.NoError(t, err)
	assert.Equal(t, []string{"4", "3", "2", "1", "0"}, stringsOf(got))
}

func TestRandomSwaps_IsPermutation(t *testing.T) {
	got, err := RandomSwaps(1000)
	require.NoError(t, err)

	sorted := slices.Clone(got)
	slices.SortFunc(sorted, Compare)
	want, _ := Sorted(1000)
	assert.Equal(t, stringsOf(want), stringsOf(sorted))

	displaced := 0
	for i, v := range got {
		if v.(Int).Int64() != int64(i) {
			displaced++
		}
	}
	assert.LessOrEqual(t, displaced, 2*swapCount)
}

func TestAppended_TailInRange(t *testing.T) {
	n := 50
	got, err := Appended(n)
	require.NoError(t, err)
	for _, v := range got[n:] {
		x := v.(Int).Int64()
		assert.GreaterOrEqual(t, x, int64(0))
		assert.Less(t, x, int64(n))
	}
}

func TestSprinkled_OverwritesStayInRange(t *testing.T) {
	n := 1000
	got, err := Sprinkled(n)
	require.NoError(t, err)

	changed := 0
	for i, v := range got {
		x := v.(Int).Int64()
		assert.GreaterOrEqual(t, x, int64(0))
		assert.Less(t, x, int64(n))
		if x != int64(i) {
			changed++
		}
	}
	assert.LessOrEqual(t, changed, n/100)
}

func TestRandom_Range(t *testing.T) {
	got, err := Random(2000)
	require.NoError(t, err)
	for _, v := range got {
		x := v.(Int).Int64()
		assert.GreaterOrEqual(t, x, int64(-1<<31))
		assert.LessOrEqual(t, x, int64(1<<31))
	}
}

func TestInts_ReusesSmallInts(t *testing.T) {
	small, err := SmallInts(20)
	require.NoError(t, err)
	wide, err := Ints(20)
	require.NoError(t, err)

	assert.Equal(t, stringsOf(small), stringsOf(wide[:20]))
	last := wide[20].(Int)
	assert.False(t, last.IsInt64())
	assert.Equal(t, "18446744073709551616", last.String())
}

func TestSmallInts_Range(t *testing.T) {
	got, err := SmallInts(2000)
	require.NoError(t, err)
	for _, v := range got {
		x := v.(Int).Int64()
		assert.GreaterOrEqual(t, x, int64(-1<<30))
		assert.Less(t, x, int64(1<<30))
	}
}

func TestStrings_AppendsMaxCodepoint(t *testing.T) {
	got, err := Strings(5)
	require.NoError(t, err)
	require.Len(t, got, 6)
	assert.Equal(t, MaxCodepointText, got[5])

	for _, v := range got[:5] {
		for _, r := range string(v.(Text)) {
			assert.Less(t, r, rune(0x80))
		}
	}
}

func TestHeterogeneous_MixesIntZero(t *testing.T) {
	got, err := Heterogeneous(3)
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, KindFloat, got[0].Kind())
	assert.Equal(t, KindInt, got[3].Kind())
}

func TestNew_Validation(t *testing.T) {
	gen := func(n int) ([]Value, error) { return nil, nil }

	_, err := New(Entry{Label: "a", Generate: gen}, Entry{Label: "a", Generate: gen})
	assert.ErrorIs(t, err, ErrDuplicateLabel)

	_, err = New(Entry{Generate: gen})
	assert.ErrorIs(t, err, ErrEmptyLabel)

	_, err = New(Entry{Label: "a"})
	assert.ErrorIs(t, err, ErrNilGenerator)

	c, err := New(Entry{Label: "b", Generate: gen}, Entry{Label: "a", Generate: gen})
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, c.Labels())

	_, err = c.Lookup("a")
	assert.NoError(t, err)
	_, err = c.Lookup("missing")
	assert.ErrorIs(t, err, ErrUnknownLabel)
}

func TestCatalog_EntriesIsCopy(t *testing.T) {
	entries := Structural().Entries()
	entries[0].Label = "mutated"
	assert.Equal(t, LabelRandom, Structural().Labels()[0])
}

func TestCompare(t *testing.T) {
	huge := NewBigInt(new(big.Int).Lsh(big.NewInt(1), 64))

	tests := []struct {
		name string
		a, b Value
		want int
	}{
		{"int less", NewInt(1), NewInt(2), -1},
		{"int equal", NewInt(7), NewInt(7), 0},
		{"big vs small", huge, NewInt(1 << 62), 1},
		{"float vs int", Float(0.5), NewInt(0), 1},
		{"int vs float equal", NewInt(3), Float(3), 0},
		{"big vs float", huge, Float(1e20), -1},
		{"big above float", huge, Float(1e19), 1},
		{"text order", Text("a"), Text("b"), -1},
		{"max codepoint", Text("zzz"), MaxCodepointText, -1},
		{"tuple by element", Tuple{Elem: NewInt(2)}, Tuple{Elem: NewInt(1)}, 1},
		{"tuple mixed numbers", Tuple{Elem: Float(0.1)}, Tuple{Elem: NewInt(0)}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Compare(tt.a, tt.b))
			assert.Equal(t, -tt.want, Compare(tt.b, tt.a))
		})
	}
}

func TestClass(t *testing.T) {
	assert.Equal(t, Class(NewInt(1)), Class(Float(1)))
	assert.NotEqual(t, Class(NewInt(1)), Class(Text("1")))
	assert.Equal(t, "tuple(number)", Class(Tuple{Elem: Float(2)}))
	assert.NotEqual(t, Class(Tuple{Elem: Text("x")}), Class(Tuple{Elem: NewInt(1)}))
}

func TestTuplify(t *testing.T) {
	in := []Value{NewInt(1), Text("a")}
	out := Tuplify(in)
	require.Len(t, out, 2)
	assert.Equal(t, KindTuple, out[0].Kind())
	assert.Equal(t, "(1,)", out[0].String())
	assert.Equal(t, KindInt, in[0].Kind())
}

func stringsOf(values []Value) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = v.String()
	}
	return out
}
