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
	"bytes"
	"fmt"

	"github.com/SnellerInc/sqltypes/types"
)

// Decoder reads the columns of keys encoded
// with a fixed list of columns. Columns are
// decoded lazily and at most once per Attach.
//
// A Decoder is owned by one goroutine.
type Decoder struct {
	codec   *Codec
	cols    []Column
	key     []byte
	offsets []int
	sources []Source
}

// NewDecoder returns a Decoder for keys
// made of the given columns.
func (c *Codec) NewDecoder(cols []Column) *Decoder {
	d := &Decoder{
		codec:   c,
		cols:    cols,
		offsets: make([]int, 1, len(cols)+1),
		sources: make([]Source, len(cols)),
	}
	for i := range d.sources {
		d.sources[i].col = cols[i]
		d.sources[i].h = c.handler(cols[i].Instance.Family().Kind())
	}
	return d
}

// Attach makes d read from key, discarding
// every previously decoded column. The Decoder
// references key until Detach or the next Attach.
func (d *Decoder) Attach(key []byte) {
	d.key = key
	d.offsets = d.offsets[:1]
	for i := range d.sources {
		d.sources[i].reset()
	}
}

// Detach drops the reference to the attached key.
func (d *Decoder) Detach() {
	d.Attach(nil)
}

// locate finds the segment of column i
func (d *Decoder) locate(i int) error {
	if i < 0 || i >= len(d.cols) {
		return fmt.Errorf("keycodec: column %d out of range [0, %d)", i, len(d.cols))
	}
	for len(d.offsets) <= i+1 {
		j := len(d.offsets) - 1
		off := d.offsets[j]
		n, cmp, err := d.codec.scan(d.key[off:], d.cols[j])
		if err != nil {
			return fmt.Errorf("column %d: %w", j, err)
		}
		d.offsets = append(d.offsets, off+n)
		d.sources[j].attach(d.key[off:off+n], cmp)
	}
	return nil
}

// Column returns a source reading column i
// of the attached key. The source is valid
// until the next Attach.
func (d *Decoder) Column(i int) (*Source, error) {
	if err := d.locate(i); err != nil {
		return nil, err
	}
	return &d.sources[i], nil
}

// CompareAt compares column pos of two keys
// encoded with the decoder's columns, without
// decoding any value.
func (d *Decoder) CompareAt(a, b []byte, pos int) (int, error) {
	sa, ca, err := d.find(a, pos)
	if err != nil {
		return 0, err
	}
	sb, cb, err := d.find(b, pos)
	if err != nil {
		return 0, err
	}
	return bytes.Compare(sa[:ca], sb[:cb]), nil
}

func (d *Decoder) find(key []byte, pos int) ([]byte, int, error) {
	if pos < 0 || pos >= len(d.cols) {
		return nil, 0, fmt.Errorf("keycodec: column %d out of range [0, %d)", pos, len(d.cols))
	}
	off := 0
	for i := 0; ; i++ {
		n, cmp, err := d.codec.scan(key[off:], d.cols[i])
		if err != nil {
			return nil, 0, fmt.Errorf("column %d: %w", i, err)
		}
		if i == pos {
			return key[off : off+n], cmp, nil
		}
		off += n
	}
}

// Source is a types.ValueSource reading one
// column of a key. The value is decoded on the
// first accessor call that needs it; IsNull
// only inspects the segment marker.
type Source struct {
	col     Column
	h       *handler
	seg     []byte
	cmp     int
	decoded bool
	val     types.Value
	scratch []byte
	decodes int
}

func (s *Source) reset() {
	s.seg = nil
	s.cmp = 0
	s.decoded = false
}

func (s *Source) attach(seg []byte, cmp int) {
	s.seg = seg
	s.cmp = cmp
	s.decoded = false
}

// Segment returns the encoded segment.
func (s *Source) Segment() []byte { return s.seg }

// Comparable returns the prefix of the segment
// that determines its order.
func (s *Source) Comparable() []byte { return s.seg[:s.cmp] }

// Instance returns the instance of the column.
func (s *Source) Instance() *types.Instance { return s.col.Instance }

func (s *Source) Kind() types.Kind { return s.col.Instance.Family().Kind() }

func (s *Source) marker() byte { return s.seg[0] ^ s.col.mask() }

func (s *Source) IsNull() bool { return s.marker() == markerNull }

func (s *Source) value() *types.Value {
	if s.decoded {
		return &s.val
	}
	s.decodes++
	s.val.Reset(s.Kind())
	seg := s.seg
	if s.col.Descending {
		s.scratch = append(s.scratch[:0], seg...)
		for i := range s.scratch {
			s.scratch[i] = ^s.scratch[i]
		}
		seg = s.scratch
	}
	switch seg[0] {
	case markerValue:
		s.h.read(seg[1:], &s.val)
	case markerCollated:
		// skip the sort key; the original
		// text follows it
		s.h.read(seg[s.cmp:], &s.val)
	}
	s.decoded = true
	return &s.val
}

func (s *Source) Bool() bool       { return s.value().Bool() }
func (s *Source) Int8() int8       { return s.value().Int8() }
func (s *Source) Int16() int16     { return s.value().Int16() }
func (s *Source) Int32() int32     { return s.value().Int32() }
func (s *Source) Int64() int64     { return s.value().Int64() }
func (s *Source) Uint16() uint16   { return s.value().Uint16() }
func (s *Source) Float32() float32 { return s.value().Float32() }
func (s *Source) Float64() float64 { return s.value().Float64() }
func (s *Source) Bytes() []byte    { return s.value().Bytes() }
func (s *Source) Text() string     { return s.value().Text() }

// Read moves the decoded value into dst,
// undoing any collation transform applied
// when it was encoded.
func (s *Source) Read(dst types.ValueTarget) {
	in := s.col.Instance
	in.Family().ReadCollating(in, s, dst)
}
