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

// Kind is the physical representation
// underlying a type family.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindBool
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindUint16
	KindFloat32
	KindFloat64
	KindBytes
	KindString

	maxKind
)

var kindNames = [maxKind]string{
	KindInvalid: "INVALID",
	KindBool:    "BOOL",
	KindInt8:    "INT8",
	KindInt16:   "INT16",
	KindInt32:   "INT32",
	KindInt64:   "INT64",
	KindUint16:  "UINT16",
	KindFloat32: "FLOAT32",
	KindFloat64: "FLOAT64",
	KindBytes:   "BYTES",
	KindString:  "STRING",
}

func (k Kind) String() string {
	if k < maxKind {
		return kindNames[k]
	}
	return "INVALID"
}

// Valid returns whether k is a concrete kind.
func (k Kind) Valid() bool { return k > KindInvalid && k < maxKind }

// Size returns the number of bytes occupied
// by a value of kind k, or -1 if values of
// kind k have variable size.
func (k Kind) Size() int {
	switch k {
	case KindBool, KindInt8:
		return 1
	case KindInt16, KindUint16:
		return 2
	case KindInt32, KindFloat32:
		return 4
	case KindInt64, KindFloat64:
		return 8
	default:
		return -1
	}
}

// Integer returns whether k is a signed
// or unsigned integer kind.
func (k Kind) Integer() bool {
	return k >= KindInt8 && k <= KindUint16
}

// Float returns whether k is a floating-point kind.
func (k Kind) Float() bool {
	return k == KindFloat32 || k == KindFloat64
}

// Kinds returns every valid kind in
// declaration order.
func Kinds() []Kind {
	out := make([]Kind, 0, maxKind-1)
	for k := KindBool; k < maxKind; k++ {
		out = append(out, k)
	}
	return out
}
