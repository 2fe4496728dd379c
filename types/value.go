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
	"math"
	"strconv"

	"github.com/SnellerInc/sqltypes/ints"
)

// ValueSource is a readable value container.
//
// Accessors other than Kind and IsNull may
// only be called on non-null sources and
// only for the source's own kind; anything
// else is a programming error and panics.
type ValueSource interface {
	Kind() Kind
	IsNull() bool
	Bool() bool
	Int8() int8
	Int16() int16
	Int32() int32
	Int64() int64
	Uint16() uint16
	Float32() float32
	Float64() float64
	Bytes() []byte
	Text() string
}

// ValueTarget is a writable value container.
// Put methods other than PutNull must match
// the target's kind.
type ValueTarget interface {
	Kind() Kind
	PutNull()
	PutBool(b bool)
	PutInt8(i int8)
	PutInt16(i int16)
	PutInt32(i int32)
	PutInt64(i int64)
	PutUint16(u uint16)
	PutFloat32(f float32)
	PutFloat64(f float64)
	PutBytes(b []byte)
	PutText(s string)
}

// Value is the general-purpose value container.
// A Value has a fixed Kind and is either NULL
// or holds one value of that kind.
//
// The zero Value is unusable; see NewValue.
type Value struct {
	kind Kind
	null bool
	num  uint64
	buf  []byte
	str  string
}

// NewValue returns a NULL Value of kind k.
func NewValue(k Kind) *Value {
	v := &Value{}
	v.Reset(k)
	return v
}

// Reset sets v to a NULL of kind k,
// retaining any allocated storage.
func (v *Value) Reset(k Kind) {
	if !k.Valid() {
		panic(fmt.Sprintf("types.Value: invalid kind %d", k))
	}
	v.kind = k
	v.null = true
	v.num = 0
	v.buf = v.buf[:0]
	v.str = ""
}

func (v *Value) Kind() Kind   { return v.kind }
func (v *Value) IsNull() bool { return v.null }

func (v *Value) check(k Kind) {
	if v.kind != k {
		panic(fmt.Sprintf("types.Value: %s access to %s value", k, v.kind))
	}
}

func (v *Value) get(k Kind) uint64 {
	v.check(k)
	if v.null {
		panic(fmt.Sprintf("types.Value: %s read of NULL", k))
	}
	return v.num
}

func (v *Value) put(k Kind, n uint64) {
	v.check(k)
	v.null = false
	v.num = n
}

func (v *Value) Bool() bool       { return v.get(KindBool) != 0 }
func (v *Value) Int8() int8       { return int8(v.get(KindInt8)) }
func (v *Value) Int16() int16     { return int16(v.get(KindInt16)) }
func (v *Value) Int32() int32     { return int32(v.get(KindInt32)) }
func (v *Value) Int64() int64     { return int64(v.get(KindInt64)) }
func (v *Value) Uint16() uint16   { return uint16(v.get(KindUint16)) }
func (v *Value) Float32() float32 { return math.Float32frombits(uint32(v.get(KindFloat32))) }
func (v *Value) Float64() float64 { return math.Float64frombits(v.get(KindFloat64)) }

// Bytes returns the contents of a BYTES value.
// The returned slice is owned by v.
func (v *Value) Bytes() []byte {
	v.get(KindBytes)
	return v.buf
}

func (v *Value) Text() string {
	v.get(KindString)
	return v.str
}

func (v *Value) PutNull() {
	v.null = true
	v.num = 0
}

func (v *Value) PutBool(b bool) {
	n := uint64(0)
	if b {
		n = 1
	}
	v.put(KindBool, n)
}

func (v *Value) PutInt8(i int8)       { v.put(KindInt8, uint64(i)) }
func (v *Value) PutInt16(i int16)     { v.put(KindInt16, uint64(i)) }
func (v *Value) PutInt32(i int32)     { v.put(KindInt32, uint64(i)) }
func (v *Value) PutInt64(i int64)     { v.put(KindInt64, uint64(i)) }
func (v *Value) PutUint16(u uint16)   { v.put(KindUint16, uint64(u)) }
func (v *Value) PutFloat32(f float32) { v.put(KindFloat32, uint64(math.Float32bits(f))) }
func (v *Value) PutFloat64(f float64) { v.put(KindFloat64, math.Float64bits(f)) }

// PutBytes copies b into v.
func (v *Value) PutBytes(b []byte) {
	v.put(KindBytes, 0)
	v.buf = append(v.buf[:0], b...)
}

func (v *Value) PutText(s string) {
	v.put(KindString, 0)
	v.str = s
}

// String implements fmt.Stringer for debugging;
// it is not the SQL display form of the value.
func (v *Value) String() string {
	if v.null {
		return "NULL"
	}
	switch v.kind {
	case KindBool:
		return strconv.FormatBool(v.Bool())
	case KindFloat32:
		return strconv.FormatFloat(float64(v.Float32()), 'g', -1, 32)
	case KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'g', -1, 64)
	case KindUint16:
		return strconv.FormatUint(uint64(v.Uint16()), 10)
	case KindBytes:
		return fmt.Sprintf("%x", v.buf)
	case KindString:
		return strconv.Quote(v.str)
	default:
		return strconv.FormatInt(IntOf(v), 10)
	}
}

// Copy performs the canonical copy of src into
// dst. Both must have the same kind.
func Copy(src ValueSource, dst ValueTarget) {
	if src.Kind() != dst.Kind() {
		panic(fmt.Sprintf("types.Copy: %s source into %s target", src.Kind(), dst.Kind()))
	}
	if src.IsNull() {
		dst.PutNull()
		return
	}
	switch src.Kind() {
	case KindBool:
		dst.PutBool(src.Bool())
	case KindInt8:
		dst.PutInt8(src.Int8())
	case KindInt16:
		dst.PutInt16(src.Int16())
	case KindInt32:
		dst.PutInt32(src.Int32())
	case KindInt64:
		dst.PutInt64(src.Int64())
	case KindUint16:
		dst.PutUint16(src.Uint16())
	case KindFloat32:
		dst.PutFloat32(src.Float32())
	case KindFloat64:
		dst.PutFloat64(src.Float64())
	case KindBytes:
		dst.PutBytes(src.Bytes())
	case KindString:
		dst.PutText(src.Text())
	}
}

// IntOf reads a non-null integer or
// boolean source as an int64.
func IntOf(src ValueSource) int64 {
	switch src.Kind() {
	case KindBool:
		if src.Bool() {
			return 1
		}
		return 0
	case KindInt8:
		return int64(src.Int8())
	case KindInt16:
		return int64(src.Int16())
	case KindInt32:
		return int64(src.Int32())
	case KindInt64:
		return src.Int64()
	case KindUint16:
		return int64(src.Uint16())
	}
	panic(fmt.Sprintf("types.IntOf: %s is not an integer kind", src.Kind()))
}

// FloatOf reads a non-null numeric source as a float64.
func FloatOf(src ValueSource) float64 {
	switch src.Kind() {
	case KindFloat32:
		return float64(src.Float32())
	case KindFloat64:
		return src.Float64()
	}
	return float64(IntOf(src))
}

// PutInt writes x into an integer or boolean
// target, clamping it to the range of the
// target's kind. PutInt reports whether x
// had to be clamped.
func PutInt(dst ValueTarget, x int64) bool {
	switch dst.Kind() {
	case KindBool:
		dst.PutBool(x != 0)
		return false
	case KindInt8:
		v, c := ints.Narrow[int8](x)
		dst.PutInt8(v)
		return c
	case KindInt16:
		v, c := ints.Narrow[int16](x)
		dst.PutInt16(v)
		return c
	case KindInt32:
		v, c := ints.Narrow[int32](x)
		dst.PutInt32(v)
		return c
	case KindInt64:
		dst.PutInt64(x)
		return false
	case KindUint16:
		v, c := ints.NarrowUnsigned[uint16](x)
		dst.PutUint16(v)
		return c
	}
	panic(fmt.Sprintf("types.PutInt: %s is not an integer kind", dst.Kind()))
}

// PutFloat writes f into a floating-point target.
// Values beyond the range of a FLOAT32 target
// are clamped to the largest finite value of the
// same sign; PutFloat reports whether that happened.
func PutFloat(dst ValueTarget, f float64) bool {
	switch dst.Kind() {
	case KindFloat64:
		dst.PutFloat64(f)
		return false
	case KindFloat32:
		if !math.IsInf(f, 0) && math.Abs(f) > math.MaxFloat32 {
			dst.PutFloat32(float32(math.Copysign(math.MaxFloat32, f)))
			return true
		}
		dst.PutFloat32(float32(f))
		return false
	}
	panic(fmt.Sprintf("types.PutFloat: %s is not a float kind", dst.Kind()))
}

// Equal returns whether two sources hold
// identical values (or are both NULL).
// Floating-point values are compared with ==.
func Equal(a, b ValueSource) bool {
	if a.Kind() != b.Kind() || a.IsNull() != b.IsNull() {
		return false
	}
	if a.IsNull() {
		return true
	}
	switch a.Kind() {
	case KindFloat32:
		return a.Float32() == b.Float32()
	case KindFloat64:
		return a.Float64() == b.Float64()
	case KindBytes:
		return string(a.Bytes()) == string(b.Bytes())
	case KindString:
		return a.Text() == b.Text()
	}
	return IntOf(a) == IntOf(b)
}

// PutZero stores the zero value of dst's kind
// (false, 0, 0.0 or the empty string) in dst.
func PutZero(dst ValueTarget) {
	switch k := dst.Kind(); k {
	case KindBool:
		dst.PutBool(false)
	case KindFloat32, KindFloat64:
		PutFloat(dst, 0)
	case KindBytes:
		dst.PutBytes(nil)
	case KindString:
		dst.PutText("")
	default:
		PutInt(dst, 0)
	}
}
