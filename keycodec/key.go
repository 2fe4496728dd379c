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

package keycodec

import (
	"encoding/binary"
	"math"

	"github.com/SnellerInc/sqltypes/types"
)

// segment markers
const (
	markerNull     = 0x00
	markerValue    = 0x01
	markerCollated = 0x02
)

// Key is a buffer of encoded column segments.
//
// A Key may borrow a caller-owned buffer with
// Attach; the buffer is handed back (possibly
// reallocated) by Detach, after which the Key
// holds no reference to it.
type Key struct {
	buf  []byte
	ends []int
}

// Attach makes k append to buf[:0].
func (k *Key) Attach(buf []byte) {
	k.buf = buf[:0]
	k.ends = k.ends[:0]
}

// Detach returns the encoded key and
// releases the buffer.
func (k *Key) Detach() []byte {
	b := k.buf
	k.buf = nil
	k.ends = k.ends[:0]
	return b
}

// Reset discards the encoded segments
// but keeps the buffer.
func (k *Key) Reset() {
	k.buf = k.buf[:0]
	k.ends = k.ends[:0]
}

// Bytes returns the encoded key. The result
// aliases the buffer of k.
func (k *Key) Bytes() []byte { return k.buf }

// Len returns the size of the encoded key.
func (k *Key) Len() int { return len(k.buf) }

// Segments returns the number of encoded segments.
func (k *Key) Segments() int { return len(k.ends) }

// Segment returns the i-th encoded segment.
func (k *Key) Segment(i int) []byte {
	start := 0
	if i > 0 {
		start = k.ends[i-1]
	}
	return k.buf[start:k.ends[i]]
}

// truncate drops everything past byte n
// and any segment ending beyond it.
func (k *Key) truncate(n int) {
	k.buf = k.buf[:n]
	for len(k.ends) > 0 && k.ends[len(k.ends)-1] > n {
		k.ends = k.ends[:len(k.ends)-1]
	}
}

// finish closes the segment that started
// at byte start, inverting it if desc is set.
func (k *Key) finish(start int, desc bool) {
	if desc {
		seg := k.buf[start:]
		for i := range seg {
			seg[i] = ^seg[i]
		}
	}
	k.ends = append(k.ends, len(k.buf))
}

// AppendNull appends a NULL segment.
func (k *Key) AppendNull(desc bool) {
	start := len(k.buf)
	k.buf = append(k.buf, markerNull)
	k.finish(start, desc)
}

// AppendBool appends a boolean segment.
func (k *Key) AppendBool(b bool, desc bool) {
	start := len(k.buf)
	v := byte(0)
	if b {
		v = 1
	}
	k.buf = append(k.buf, markerValue, v)
	k.finish(start, desc)
}

// AppendInt8 appends a TINYINT segment.
func (k *Key) AppendInt8(x int8, desc bool) {
	start := len(k.buf)
	k.buf = append(k.buf, markerValue, uint8(x)^0x80)
	k.finish(start, desc)
}

// AppendInt16 appends a 16-bit integer segment.
func (k *Key) AppendInt16(x int16, desc bool) {
	start := len(k.buf)
	k.buf = append(k.buf, markerValue)
	k.buf = binary.BigEndian.AppendUint16(k.buf, uint16(x)^0x8000)
	k.finish(start, desc)
}

// AppendInt32 appends a 32-bit integer segment.
func (k *Key) AppendInt32(x int32, desc bool) {
	start := len(k.buf)
	k.buf = append(k.buf, markerValue)
	k.buf = binary.BigEndian.AppendUint32(k.buf, uint32(x)^(1<<31))
	k.finish(start, desc)
}

// AppendInt64 appends a 64-bit integer segment.
func (k *Key) AppendInt64(x int64, desc bool) {
	start := len(k.buf)
	k.buf = append(k.buf, markerValue)
	k.buf = binary.BigEndian.AppendUint64(k.buf, uint64(x)^(1<<63))
	k.finish(start, desc)
}

// AppendUint16 appends an unsigned 16-bit integer segment.
func (k *Key) AppendUint16(x uint16, desc bool) {
	start := len(k.buf)
	k.buf = append(k.buf, markerValue)
	k.buf = binary.BigEndian.AppendUint16(k.buf, x)
	k.finish(start, desc)
}

// AppendFloat32 appends a REAL segment.
func (k *Key) AppendFloat32(f float32, desc bool) {
	start := len(k.buf)
	k.buf = append(k.buf, markerValue)
	k.buf = binary.BigEndian.AppendUint32(k.buf, fold32(f))
	k.finish(start, desc)
}

// AppendFloat64 appends a DOUBLE segment.
func (k *Key) AppendFloat64(f float64, desc bool) {
	start := len(k.buf)
	k.buf = append(k.buf, markerValue)
	k.buf = binary.BigEndian.AppendUint64(k.buf, fold64(f))
	k.finish(start, desc)
}

// AppendBytes appends a binary segment.
func (k *Key) AppendBytes(b []byte, desc bool) {
	start := len(k.buf)
	k.buf = append(k.buf, markerValue)
	k.buf = appendEscaped(k.buf, b)
	k.finish(start, desc)
}

// AppendString appends a text segment
// ordered by UTF-8 byte values.
func (k *Key) AppendString(s string, desc bool) {
	start := len(k.buf)
	k.buf = append(k.buf, markerValue)
	k.buf = appendEscaped(k.buf, s)
	k.finish(start, desc)
}

// AppendCollated appends a text segment ordered
// by collation c. The segment holds the sort
// key produced by c followed by the original
// text, so that it can be decoded.
func (k *Key) AppendCollated(s string, c types.Collator, desc bool) {
	start := len(k.buf)
	k.buf = append(k.buf, markerCollated)
	mark := len(k.buf)
	k.buf = c.AppendKey(k.buf, s)
	// escape the sort key in place
	sk := append([]byte(nil), k.buf[mark:]...)
	k.buf = appendEscaped(k.buf[:mark], sk)
	k.buf = appendEscaped(k.buf, s)
	k.finish(start, desc)
}

// appendEscaped appends s with every 0x00 byte
// followed by 0xFF, then the terminator 0x00 0x01,
// so that shorter strings sort before longer ones
// sharing the same prefix.
func appendEscaped[T string | []byte](dst []byte, s T) []byte {
	for i := 0; i < len(s); i++ {
		dst = append(dst, s[i])
		if s[i] == 0 {
			dst = append(dst, 0xFF)
		}
	}
	return append(dst, 0x00, 0x01)
}

// the encoding of every NaN
const (
	nan32 = 0xFFC00000
	nan64 = 0xFFF8000000000000
)

func fold32(f float32) uint32 {
	if f != f {
		return nan32
	}
	if f == 0 {
		f = 0
	}
	u := math.Float32bits(f)
	if u>>31 != 0 {
		return ^u
	}
	return u | 1<<31
}

func unfold32(u uint32) float32 {
	if u>>31 != 0 {
		return math.Float32frombits(u &^ (1 << 31))
	}
	return math.Float32frombits(^u)
}

func fold64(f float64) uint64 {
	if f != f {
		return nan64
	}
	if f == 0 {
		f = 0
	}
	u := math.Float64bits(f)
	if u>>63 != 0 {
		return ^u
	}
	return u | 1<<63
}

func unfold64(u uint64) float64 {
	if u>>63 != 0 {
		return math.Float64frombits(u &^ (1 << 63))
	}
	return math.Float64frombits(^u)
}
