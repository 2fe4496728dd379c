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

package overload

import (
	"fmt"
	"strings"

	"github.com/SnellerInc/sqltypes/ints"
	"github.com/SnellerInc/sqltypes/types"
)

// InputSet is a group of argument positions
// that are coerced to one common target family.
type InputSet struct {
	// Target is the family the covered arguments
	// are coerced to. A nil Target accepts any
	// family; for a picking set it means the
	// common family is chosen from the arguments.
	Target    *types.Family
	covering  ints.Bitset
	remaining bool
	picking   bool
}

func newSet(target *types.Family, remaining, picking bool, pos []int) InputSet {
	s := InputSet{Target: target, remaining: remaining, picking: picking}
	for _, p := range pos {
		s.covering.Set(p)
	}
	return s
}

// Covers returns a set covering the given positions.
func Covers(target *types.Family, pos ...int) InputSet {
	return newSet(target, false, false, pos)
}

// Vararg returns a set covering the given
// positions and every position after them.
func Vararg(target *types.Family, pos ...int) InputSet {
	return newSet(target, true, false, pos)
}

// PickingCovers is like Covers, but the
// result type of the overload is derived
// from the arguments matched by the set.
func PickingCovers(target *types.Family, pos ...int) InputSet {
	return newSet(target, false, true, pos)
}

// PickingVararg is like Vararg, but the
// result type of the overload is derived
// from the arguments matched by the set.
func PickingVararg(target *types.Family, pos ...int) InputSet {
	return newSet(target, true, true, pos)
}

// Covers returns whether argument position pos
// belongs to the set.
func (s *InputSet) Covers(pos int) bool {
	return s.covering.Test(pos) || (s.remaining && pos >= s.covering.Len())
}

// CoversRemaining returns whether the set
// covers every position beyond its explicit
// positions.
func (s *InputSet) CoversRemaining() bool { return s.remaining }

// Picking returns whether the set
// determines the result type.
func (s *InputSet) Picking() bool { return s.picking }

// Degenerate returns whether the set covers nothing.
func (s *InputSet) Degenerate() bool {
	return s.covering.Empty() && !s.remaining
}

// positions returns the explicit positions of the set.
func (s *InputSet) positions() []int {
	var out []int
	s.covering.Each(func(k int) { out = append(out, k) })
	return out
}

func (s *InputSet) String() string {
	var b strings.Builder
	target := "ANY"
	if s.Target != nil {
		target = s.Target.Name().Name
	}
	b.WriteString(target)
	b.WriteByte('[')
	for i, p := range s.positions() {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%d", p)
	}
	if s.remaining {
		if !s.covering.Empty() {
			b.WriteByte(',')
		}
		b.WriteString("...")
	}
	b.WriteByte(']')
	if s.picking {
		b.WriteString(" picking")
	}
	return b.String()
}
