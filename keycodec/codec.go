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

// Package keycodec encodes typed values into
// byte-comparable key segments for an ordered
// key-value store, and decodes them back.
//
// Each column of a key is one self-delimiting
// segment starting with a marker byte (0x00 for
// NULL, 0x01 for a value, 0x02 for a collated
// string). Comparing two segments of the same
// column bytewise gives the same result as
// comparing the values they encode.
package keycodec

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/SnellerInc/sqltypes/types"
)

const (
	// DefaultMaxSegment is the default limit
	// on the size of one encoded column.
	DefaultMaxSegment = 4096
	// DefaultMaxKey is the default limit
	// on the size of a whole key.
	DefaultMaxKey = 10000
)

// KeyTooLongError is returned when an encoded
// segment or key exceeds its size limit.
// Size is the encoded byte count (markers,
// escapes and terminators included) of the
// segment, or of the whole key when the key
// limit was exceeded, and Max is that limit.
type KeyTooLongError struct {
	Size, Max int
	// Desc is the description supplied by the caller
	// (typically the index and column being encoded).
	Desc string
}

func (e *KeyTooLongError) Error() string {
	return fmt.Sprintf("key too long: %s needs %d bytes, maximum is %d", e.Desc, e.Size, e.Max)
}

// ErrCorrupt is returned when decoding
// a key that is not well-formed.
var ErrCorrupt = errors.New("keycodec: corrupt key")

// Column describes how one column of a key is encoded.
type Column struct {
	Instance   *types.Instance
	Descending bool
}

func (c Column) mask() byte {
	if c.Descending {
		return 0xFF
	}
	return 0
}

// handler describes the payload of one kind
type handler struct {
	// size is the fixed payload size, or -1
	// for escaped variable-length payloads
	size int
	read func(p []byte, dst *types.Value)
}

// Codec encodes and decodes key segments.
// A Codec is immutable and safe for concurrent use.
type Codec struct {
	maxSegment, maxKey int
	kinds              []handler
}

// New returns a Codec with the given limits.
// Non-positive limits select the defaults.
func New(maxSegment, maxKey int) *Codec {
	if maxSegment <= 0 {
		maxSegment = DefaultMaxSegment
	}
	if maxKey <= 0 {
		maxKey = DefaultMaxKey
	}
	c := &Codec{maxSegment: maxSegment, maxKey: maxKey}
	c.kinds = make([]handler, len(types.Kinds())+1)
	for _, k := range types.Kinds() {
		c.kinds[k] = newHandler(k)
	}
	return c
}

func (c *Codec) MaxSegment() int { return c.maxSegment }
func (c *Codec) MaxKey() int     { return c.maxKey }

func newHandler(k types.Kind) handler {
	switch k {
	case types.KindBool:
		return handler{size: 1, read: func(p []byte, dst *types.Value) { dst.PutBool(p[0] != 0) }}
	case types.KindInt8:
		return handler{size: 1, read: func(p []byte, dst *types.Value) { dst.PutInt8(int8(p[0] ^ 0x80)) }}
	case types.KindInt16:
		return handler{size: 2, read: func(p []byte, dst *types.Value) {
			dst.PutInt16(int16(binary.BigEndian.Uint16(p) ^ 0x8000))
		}}
	case types.KindInt32:
		return handler{size: 4, read: func(p []byte, dst *types.Value) {
			dst.PutInt32(int32(binary.BigEndian.Uint32(p) ^ (1 << 31)))
		}}
	case types.KindInt64:
		return handler{size: 8, read: func(p []byte, dst *types.Value) {
			dst.PutInt64(int64(binary.BigEndian.Uint64(p) ^ (1 << 63)))
		}}
	case types.KindUint16:
		return handler{size: 2, read: func(p []byte, dst *types.Value) { dst.PutUint16(binary.BigEndian.Uint16(p)) }}
	case types.KindFloat32:
		return handler{size: 4, read: func(p []byte, dst *types.Value) {
			dst.PutFloat32(unfold32(binary.BigEndian.Uint32(p)))
		}}
	case types.KindFloat64:
		return handler{size: 8, read: func(p []byte, dst *types.Value) {
			dst.PutFloat64(unfold64(binary.BigEndian.Uint64(p)))
		}}
	case types.KindBytes:
		return handler{size: -1, read: func(p []byte, dst *types.Value) { dst.PutBytes(unescape(nil, p)) }}
	case types.KindString:
		return handler{size: -1, read: func(p []byte, dst *types.Value) { dst.PutText(string(unescape(nil, p))) }}
	}
	panic(fmt.Sprintf("keycodec: no handler for %s", k))
}

func (c *Codec) handler(k types.Kind) *handler {
	if int(k) >= len(c.kinds) || c.kinds[k].read == nil {
		panic(fmt.Sprintf("keycodec: invalid kind %s", k))
	}
	return &c.kinds[k]
}

// keyTarget appends the value moved into it
// to a key as one segment.
type keyTarget struct {
	key  *Key
	kind types.Kind
	desc bool
}

func (t *keyTarget) Kind() types.Kind     { return t.kind }
func (t *keyTarget) PutNull()             { t.key.AppendNull(t.desc) }
func (t *keyTarget) PutBool(b bool)       { t.key.AppendBool(b, t.desc) }
func (t *keyTarget) PutInt8(x int8)       { t.key.AppendInt8(x, t.desc) }
func (t *keyTarget) PutInt16(x int16)     { t.key.AppendInt16(x, t.desc) }
func (t *keyTarget) PutInt32(x int32)     { t.key.AppendInt32(x, t.desc) }
func (t *keyTarget) PutInt64(x int64)     { t.key.AppendInt64(x, t.desc) }
func (t *keyTarget) PutUint16(x uint16)   { t.key.AppendUint16(x, t.desc) }
func (t *keyTarget) PutFloat32(f float32) { t.key.AppendFloat32(f, t.desc) }
func (t *keyTarget) PutFloat64(f float64) { t.key.AppendFloat64(f, t.desc) }
func (t *keyTarget) PutBytes(b []byte)    { t.key.AppendBytes(b, t.desc) }
func (t *keyTarget) PutText(s string)     { t.key.AppendString(s, t.desc) }

func (t *keyTarget) PutCollated(s string, c types.Collator) {
	t.key.AppendCollated(s, c, t.desc)
}

// Encode appends src, a value of col.Instance, to
// key as one segment. If the segment or the whole
// key would exceed the codec's limits, key is left
// unchanged and a *KeyTooLongError carrying desc
// is returned.
func (c *Codec) Encode(key *Key, col Column, src types.ValueSource, desc string) error {
	f := col.Instance.Family()
	start := len(key.buf)
	t := keyTarget{key: key, kind: f.Kind(), desc: col.Descending}
	f.WriteCollating(col.Instance, src, &t)
	if n := len(key.buf) - start; n > c.maxSegment {
		key.truncate(start)
		return &KeyTooLongError{Size: n, Max: c.maxSegment, Desc: desc}
	}
	if n := len(key.buf); n > c.maxKey {
		key.truncate(start)
		return &KeyTooLongError{Size: n, Max: c.maxKey, Desc: desc}
	}
	return nil
}

// scanEscaped returns the length of the escaped
// run at the start of b, including its terminator.
func scanEscaped(b []byte, mask byte) (int, error) {
	for i := 0; i+1 < len(b); i++ {
		if b[i]^mask != 0 {
			continue
		}
		switch b[i+1] ^ mask {
		case 0xFF:
			i++
		case 0x01:
			return i + 2, nil
		default:
			return 0, ErrCorrupt
		}
	}
	return 0, ErrCorrupt
}

// unescape appends the unescaped contents
// of an escaped run (which must be
// well-formed and not inverted) to dst.
func unescape(dst, run []byte) []byte {
	for i := 0; i < len(run); i++ {
		if run[i] == 0 {
			if run[i+1] == 0x01 {
				break
			}
			i++
		}
		dst = append(dst, run[i])
	}
	return dst
}

// scan returns the size of the segment of column
// col at the start of b and the size of its prefix
// that determines its order.
func (c *Codec) scan(b []byte, col Column) (n, cmp int, err error) {
	if len(b) == 0 {
		return 0, 0, ErrCorrupt
	}
	mask := col.mask()
	h := c.handler(col.Instance.Family().Kind())
	switch b[0] ^ mask {
	case markerNull:
		return 1, 1, nil
	case markerValue:
		if h.size >= 0 {
			if len(b) < 1+h.size {
				return 0, 0, ErrCorrupt
			}
			return 1 + h.size, 1 + h.size, nil
		}
		run, err := scanEscaped(b[1:], mask)
		if err != nil {
			return 0, 0, err
		}
		return 1 + run, 1 + run, nil
	case markerCollated:
		if h.size >= 0 {
			return 0, 0, ErrCorrupt
		}
		sk, err := scanEscaped(b[1:], mask)
		if err != nil {
			return 0, 0, err
		}
		orig, err := scanEscaped(b[1+sk:], mask)
		if err != nil {
			return 0, 0, err
		}
		return 1 + sk + orig, 1 + sk, nil
	}
	return 0, 0, ErrCorrupt
}

// CompareColumn compares two segments of column
// col (each at the start of a and b) without
// decoding them. The result agrees with the
// column's Compare (reversed for descending
// columns).
func (c *Codec) CompareColumn(col Column, a, b []byte) (int, error) {
	_, na, err := c.scan(a, col)
	if err != nil {
		return 0, err
	}
	_, nb, err := c.scan(b, col)
	if err != nil {
		return 0, err
	}
	return bytes.Compare(a[:na], b[:nb]), nil
}

// Split returns the start offsets of the
// segments of key, which must hold one segment
// per column in cols.
func (c *Codec) Split(key []byte, cols []Column) ([]int, error) {
	out := make([]int, 0, len(cols))
	off := 0
	for i := range cols {
		n, _, err := c.scan(key[off:], cols[i])
		if err != nil {
			return nil, fmt.Errorf("column %d: %w", i, err)
		}
		out = append(out, off)
		off += n
	}
	if off != len(key) {
		return nil, fmt.Errorf("%d trailing bytes: %w", len(key)-off, ErrCorrupt)
	}
	return out, nil
}
