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

package types

import (
	"fmt"
	"strconv"
	"strings"
)

type nullability uint8

const (
	nullUnset nullability = iota
	nullNo
	nullYes
)

// Instance is a Family bound to concrete
// attribute values and a nullability flag.
//
// Instances are owned by whoever created them;
// they are not safe for concurrent mutation.
type Instance struct {
	family   *Family
	attrs    [MaxAttributes]int
	nullable nullability
}

// Family returns the family of in.
func (in *Instance) Family() *Family { return in.family }

// Attr returns the i-th attribute of in.
func (in *Instance) Attr(i int) int {
	if i < 0 || i >= len(in.family.attrs) {
		panic(fmt.Sprintf("%s: attribute %d out of range", in.family.name, i))
	}
	return in.attrs[i]
}

// Attrs returns the attributes of in.
func (in *Instance) Attrs() []int {
	return append([]int(nil), in.attrs[:len(in.family.attrs)]...)
}

// NullableSet reports whether the
// nullability of in has been set.
func (in *Instance) NullableSet() bool { return in.nullable != nullUnset }

// Nullable returns whether values of in
// may be NULL. Reading the nullability before
// it has been set is a programming error.
func (in *Instance) Nullable() bool {
	if in.nullable == nullUnset {
		panic(fmt.Sprintf("%s: nullability read before it was set", in.family.name))
	}
	return in.nullable == nullYes
}

func (in *Instance) nullableOr(def bool) bool {
	if in.nullable == nullUnset {
		return def
	}
	return in.nullable == nullYes
}

// SetNullable sets the nullability of in.
// It may be called exactly once.
func (in *Instance) SetNullable(b bool) {
	if in.nullable != nullUnset {
		panic(fmt.Sprintf("%s: nullability set twice", in.family.name))
	}
	if b {
		in.nullable = nullYes
	} else {
		in.nullable = nullNo
	}
}

// WithNullable returns a copy of in
// with the given nullability.
func (in *Instance) WithNullable(b bool) *Instance {
	out := &Instance{family: in.family, attrs: in.attrs}
	out.SetNullable(b)
	return out
}

// Compatible returns whether in and o can be
// used interchangeably for storage and comparison:
// same family and same attributes. Nullability
// is not considered.
func (in *Instance) Compatible(o *Instance) bool {
	if in == nil || o == nil {
		return in == o
	}
	return in.family.Equal(o.family) && in.attrs == o.attrs
}

// Equal returns whether in and o are compatible
// and have the same nullability.
func (in *Instance) Equal(o *Instance) bool {
	return in.Compatible(o) && in.nullable == o.nullable
}

// String returns a SQL-like description
// such as "VARCHAR(32, 0) NOT NULL".
func (in *Instance) String() string {
	if in == nil {
		return "<untyped>"
	}
	var b strings.Builder
	b.WriteString(in.family.name.Name)
	if n := len(in.family.attrs); n > 0 {
		b.WriteByte('(')
		for i := 0; i < n; i++ {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(strconv.Itoa(in.attrs[i]))
		}
		b.WriteByte(')')
	}
	switch in.nullable {
	case nullYes:
		b.WriteString(" NULL")
	case nullNo:
		b.WriteString(" NOT NULL")
	}
	return b.String()
}

// Compare is shorthand for in.Family().Compare(in, a, b).
func (in *Instance) Compare(a, b ValueSource) int {
	return in.family.Compare(in, a, b)
}

// Collator is shorthand for in.Family().Collator(in).
func (in *Instance) Collator() Collator {
	return in.family.Collator(in)
}

// NewValue returns a NULL value of
// the kind underlying in.
func (in *Instance) NewValue() *Value {
	return NewValue(in.family.kind)
}

// Format is shorthand for in.Family().Format(in, src, nil).
func (in *Instance) Format(src ValueSource) string {
	return string(in.family.Format(in, src, nil))
}
