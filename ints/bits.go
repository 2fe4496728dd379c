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
	"math/bits"
	"unsafe"

	"golang.org/x/exp/constraints"
)

// TestBit check if the k-th bit is set in range "in"
func TestBit[T, K constraints.Integer](in []T, k K) bool {
	return (in[uintptr(k)/(unsafe.Sizeof(in[0])*8)] & (T(1) << (uintptr(k) % (unsafe.Sizeof(in[0]) * 8)))) != 0
}

// SetBit sets the k-th bit in range "in"
func SetBit[T, K constraints.Integer](in []T, k K) {
	in[uintptr(k)/(unsafe.Sizeof(in[0])*8)] |= (T(1) << (uintptr(k) % (unsafe.Sizeof(in[0]) * 8)))
}

// Bitset is a growable set of small
// non-negative integers.
//
// The zero value is an empty set.
type Bitset []uint64

// Set adds k to the set, growing it as necessary.
func (b *Bitset) Set(k int) {
	if k < 0 {
		panic("ints.Bitset: negative index")
	}
	words := k/64 + 1
	for len(*b) < words {
		*b = append(*b, 0)
	}
	SetBit(*b, k)
}

// Test returns whether k is in the set.
func (b Bitset) Test(k int) bool {
	if k < 0 || k/64 >= len(b) {
		return false
	}
	return TestBit(b, k)
}

// Len returns one more than the largest
// member of the set, or 0 if the set is empty.
func (b Bitset) Len() int {
	for i := len(b) - 1; i >= 0; i-- {
		if b[i] != 0 {
			return i*64 + 64 - bits.LeadingZeros64(b[i])
		}
	}
	return 0
}

// Count returns the number of members of the set.
func (b Bitset) Count() int {
	n := 0
	for i := range b {
		n += bits.OnesCount64(b[i])
	}
	return n
}

// Empty returns whether the set has no members.
func (b Bitset) Empty() bool {
	return b.Len() == 0
}

// First returns the smallest member of
// the set, or -1 if the set is empty.
func (b Bitset) First() int {
	for i := range b {
		if b[i] != 0 {
			return i*64 + bits.TrailingZeros64(b[i])
		}
	}
	return -1
}

// Intersects returns whether b and o
// share at least one member.
func (b Bitset) Intersects(o Bitset) bool {
	n := len(b)
	if len(o) < n {
		n = len(o)
	}
	for i := 0; i < n; i++ {
		if b[i]&o[i] != 0 {
			return true
		}
	}
	return false
}

// Each calls fn for every member of
// the set in ascending order.
func (b Bitset) Each(fn func(k int)) {
	for i := range b {
		w := b[i]
		for w != 0 {
			j := bits.TrailingZeros64(w)
			fn(i*64 + j)
			w &= w - 1
		}
	}
}
