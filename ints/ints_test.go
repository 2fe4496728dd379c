// Copyright 2023 Sneller, Inc.
//
//  Licensed under the Apache License, Version 2.0 (the "License");
//  you may not use this file except in compliance with the License.
//  You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
//  Unless required by applicable law or agreed to in writing, software
//  distributed under the License is distributed on an "AS IS" BASIS,
//  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//  See the License for the specific language governing permissions and
//  limitations under the License.

package ints

import (
	"math"
	"testing"
)

func TestBitset(t *testing.T) {
	var b Bitset
	if !b.Empty() || b.Len() != 0 || b.First() != -1 {
		t.Fatal("zero Bitset should be empty")
	}
	for _, k := range []int{3, 64, 130} {
		b.Set(k)
	}
	if b.Len() != 131 {
		t.Errorf("Len() = %d, want 131", b.Len())
	}
	if b.Count() != 3 {
		t.Errorf("Count() = %d, want 3", b.Count())
	}
	if b.First() != 3 {
		t.Errorf("First() = %d, want 3", b.First())
	}
	for k := 0; k < 200; k++ {
		want := k == 3 || k == 64 || k == 130
		if b.Test(k) != want {
			t.Errorf("Test(%d) = %v", k, !want)
		}
	}
	if b.Test(-1) {
		t.Error("Test(-1) should be false")
	}
	var got []int
	b.Each(func(k int) { got = append(got, k) })
	if len(got) != 3 || got[0] != 3 || got[1] != 64 || got[2] != 130 {
		t.Errorf("Each visited %v", got)
	}
	var o Bitset
	o.Set(64)
	if !b.Intersects(o) {
		t.Error("expected intersection at 64")
	}
	var p Bitset
	p.Set(1)
	if b.Intersects(p) {
		t.Error("unexpected intersection")
	}
}

func TestNarrow(t *testing.T) {
	tcs := []struct {
		in      int64
		out     int8
		clamped bool
	}{
		{0, 0, false},
		{127, 127, false},
		{128, 127, true},
		{-128, -128, false},
		{-129, -128, true},
		{math.MaxInt64, 127, true},
	}
	for i := range tcs {
		got, clamped := Narrow[int8](tcs[i].in)
		if got != tcs[i].out || clamped != tcs[i].clamped {
			t.Errorf("Narrow[int8](%d) = %d, %v; want %d, %v",
				tcs[i].in, got, clamped, tcs[i].out, tcs[i].clamped)
		}
	}
	if v, c := Narrow[int32](-1 << 40); v != math.MinInt32 || !c {
		t.Errorf("Narrow[int32] = %d, %v", v, c)
	}
	if v, c := NarrowUnsigned[uint16](-4); v != 0 || !c {
		t.Errorf("NarrowUnsigned(-4) = %d, %v", v, c)
	}
	if v, c := NarrowUnsigned[uint16](70000); v != math.MaxUint16 || !c {
		t.Errorf("NarrowUnsigned(70000) = %d, %v", v, c)
	}
	if v, c := NarrowUnsigned[uint16](2024); v != 2024 || c {
		t.Errorf("NarrowUnsigned(2024) = %d, %v", v, c)
	}
}

func TestRoundFloat(t *testing.T) {
	tcs := []struct {
		in      float64
		out     int64
		clamped bool
	}{
		{1.4, 1, false},
		{1.5, 2, false},
		{-1.5, -2, false},
		{math.NaN(), 0, true},
		{math.Inf(1), math.MaxInt64, true},
		{math.Inf(-1), math.MinInt64, true},
		{1e300, math.MaxInt64, true},
	}
	for i := range tcs {
		got, clamped := RoundFloat(tcs[i].in)
		if got != tcs[i].out || clamped != tcs[i].clamped {
			t.Errorf("RoundFloat(%g) = %d, %v", tcs[i].in, got, clamped)
		}
	}
}
