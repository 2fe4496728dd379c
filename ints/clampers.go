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

// Package ints provides int-related common functions.
package ints

import (
	"math"
	"unsafe"

	"golang.org/x/exp/constraints"
)

// Min returns the smaller value of x and y
func Min[T constraints.Integer](x, y T) T {
	if x <= y {
		return x
	}
	return y
}

// Max returns the greater value of x and y
func Max[T constraints.Integer](x, y T) T {
	if x >= y {
		return x
	}
	return y
}

// Clamp returns x if it is in [lo, hi]. Otherwise, the nearest bounding value is returned
func Clamp[T constraints.Integer](x, lo, hi T) T {
	return Max(lo, Min(x, hi))
}

// SignedBounds returns the smallest and
// largest values representable by T.
func SignedBounds[T constraints.Signed]() (lo, hi int64) {
	var zero T
	width := unsafe.Sizeof(zero) * 8
	hi = int64(uint64(1)<<(width-1) - 1)
	return -hi - 1, hi
}

// Narrow converts x to the signed type T,
// clamping it to the range of T. The second
// return value reports whether clamping
// took place.
func Narrow[T constraints.Signed](x int64) (T, bool) {
	lo, hi := SignedBounds[T]()
	c := Clamp(x, lo, hi)
	return T(c), c != x
}

// NarrowUnsigned converts x to the unsigned
// type T, clamping it to [0, max(T)]. The second
// return value reports whether clamping took place.
func NarrowUnsigned[T constraints.Unsigned](x int64) (T, bool) {
	var zero T
	width := unsafe.Sizeof(zero) * 8
	if x < 0 {
		return 0, true
	}
	if width < 64 && uint64(x) > uint64(1)<<width-1 {
		return T(uint64(1)<<width - 1), true
	}
	return T(x), false
}

// RoundFloat converts f to an int64 by rounding
// half away from zero and clamping to the int64
// range. NaN converts to zero. The second return
// value reports whether the rounded value of f
// was out of range (or NaN).
func RoundFloat(f float64) (int64, bool) {
	if math.IsNaN(f) {
		return 0, true
	}
	r := math.Round(f)
	if r >= math.MaxInt64 {
		return math.MaxInt64, true
	}
	if r < math.MinInt64 {
		return math.MinInt64, true
	}
	return int64(r), false
}
