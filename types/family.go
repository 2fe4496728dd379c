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
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// MaxAttributes is the largest number
// of attributes a family may declare.
const MaxAttributes = 4

// ErrClamped is returned by parse functions
// that stored a substitute value because the
// input was out of range for the target.
var ErrClamped = errors.New("value out of range")

// Category is the coarse classification
// of a type family reported to the
// information schema.
type Category string

const (
	CategoryBoolean  Category = "BOOLEAN"
	CategoryNumeric  Category = "NUMERIC"
	CategoryString   Category = "STRING"
	CategoryBinary   Category = "BINARY"
	CategoryDateTime Category = "DATETIME"
)

// CombineMode selects how two instances of
// the same family are merged into one.
type CombineMode uint8

const (
	// CombineWiden produces an instance that
	// can hold any value of either input
	// (e.g. the larger of two VARCHAR lengths).
	CombineWiden CombineMode = iota
	// CombineConcat produces an instance that
	// can hold the concatenation of values of
	// both inputs (e.g. the sum of two lengths).
	CombineConcat
)

func (m CombineMode) String() string {
	switch m {
	case CombineWiden:
		return "widen"
	case CombineConcat:
		return "concat"
	}
	return "invalid"
}

// Attribute is one attribute slot of a family.
type Attribute struct {
	Name    string
	Default int
}

// Funcs is the function table that
// customizes a family. Every member is
// optional; nil members fall back to
// behavior derived from the family's Kind.
type Funcs struct {
	// Parse parses the textual form of a value
	// into dst. It returns ErrClamped (possibly
	// wrapped) if it stored a substitute value.
	Parse func(inst *Instance, text string, dst ValueTarget) error
	// Format appends the display form of
	// a non-null value to dst.
	Format func(inst *Instance, src ValueSource, dst []byte) []byte
	// FormatLiteral appends the SQL literal
	// form of a non-null value to dst.
	FormatLiteral func(inst *Instance, src ValueSource, dst []byte) []byte
	// FormatJSON appends the JSON form of
	// a non-null value to dst.
	FormatJSON func(inst *Instance, src ValueSource, dst []byte) []byte
	// Combine merges two instances of the family.
	Combine func(mode CombineMode, a, b *Instance) (*Instance, error)
	// Compare orders two non-null values
	// of the same instance.
	Compare func(inst *Instance, a, b ValueSource) int
	// Collator returns the collation of a text
	// instance, or nil for binary ordering.
	Collator func(inst *Instance) Collator
	// WriteCollating moves a value into a target
	// that orders values (such as a key),
	// applying the instance's collation.
	WriteCollating func(inst *Instance, src ValueSource, dst CollatingTarget)
	// ReadCollating is the inverse of WriteCollating.
	ReadCollating func(inst *Instance, src ValueSource, dst ValueTarget)
}

// Def describes a family to be created with NewFamily.
type Def struct {
	Name       Name
	Kind       Kind
	Category   Category
	Attributes []Attribute
	// InternalVersion is the version of the
	// in-memory representation; it changes when
	// stored data would need to be migrated.
	InternalVersion int
	// SerializationVersion is the version of
	// the serialized (key) format.
	SerializationVersion int
	// Size overrides the fixed serialized size
	// implied by Kind; zero means "use Kind.Size()".
	Size int
	// Indexable reports whether values of
	// the family may appear in index keys.
	Indexable bool
	Funcs     Funcs
}

// Family is the immutable definition
// of a SQL type. Families are compared
// by identity (see Name).
type Family struct {
	name      Name
	kind      Kind
	category  Category
	attrs     []Attribute
	iversion  int
	sversion  int
	size      int
	indexable bool
	fn        Funcs
}

// NewFamily validates d and creates a Family.
func NewFamily(d Def) (*Family, error) {
	if d.Name.Name == "" {
		return nil, fmt.Errorf("family has no name")
	}
	if !d.Kind.Valid() {
		return nil, fmt.Errorf("family %s: invalid kind %d", d.Name, d.Kind)
	}
	if len(d.Attributes) > MaxAttributes {
		return nil, fmt.Errorf("family %s: %d attributes exceeds the maximum of %d",
			d.Name, len(d.Attributes), MaxAttributes)
	}
	attrs := make([]Attribute, len(d.Attributes))
	seen := make(map[string]bool, len(d.Attributes))
	for i := range d.Attributes {
		n, err := normalizeIdent(d.Attributes[i].Name, false)
		if err != nil {
			return nil, fmt.Errorf("family %s: attribute %d: %w", d.Name, i, err)
		}
		if seen[n] {
			return nil, fmt.Errorf("family %s: duplicate attribute %s", d.Name, n)
		}
		seen[n] = true
		attrs[i] = Attribute{Name: n, Default: d.Attributes[i].Default}
	}
	size := d.Size
	if size == 0 {
		size = d.Kind.Size()
	}
	if d.InternalVersion < 0 || d.SerializationVersion < 0 {
		return nil, fmt.Errorf("family %s: negative version", d.Name)
	}
	cat := d.Category
	if cat == "" {
		cat = defaultCategory(d.Kind)
	}
	return &Family{
		name:      d.Name,
		kind:      d.Kind,
		category:  cat,
		attrs:     attrs,
		iversion:  d.InternalVersion,
		sversion:  d.SerializationVersion,
		size:      size,
		indexable: d.Indexable,
		fn:        d.Funcs,
	}, nil
}

// MustFamily is like NewFamily, but panics on error.
func MustFamily(d Def) *Family {
	f, err := NewFamily(d)
	if err != nil {
		panic(err)
	}
	return f
}

func defaultCategory(k Kind) Category {
	switch k {
	case KindBool:
		return CategoryBoolean
	case KindBytes:
		return CategoryBinary
	case KindString:
		return CategoryString
	}
	return CategoryNumeric
}

func (f *Family) Name() Name                { return f.name }
func (f *Family) Kind() Kind                { return f.kind }
func (f *Family) Category() Category        { return f.category }
func (f *Family) InternalVersion() int      { return f.iversion }
func (f *Family) SerializationVersion() int { return f.sversion }
func (f *Family) Indexable() bool           { return f.indexable }

// Size returns the fixed serialized size of
// values of the family, or -1 if it is variable.
func (f *Family) Size() int { return f.size }

// NAttrs returns the number of attribute slots.
func (f *Family) NAttrs() int { return len(f.attrs) }

// Attributes returns the attribute slots of f.
func (f *Family) Attributes() []Attribute {
	return append([]Attribute(nil), f.attrs...)
}

// AttributeNames returns the names of
// the attribute slots of f, in order.
func (f *Family) AttributeNames() []string {
	out := make([]string, len(f.attrs))
	for i := range f.attrs {
		out[i] = f.attrs[i].Name
	}
	return out
}

// AttributeIndex returns the position of the
// named attribute, or -1 if there is none.
func (f *Family) AttributeIndex(name string) int {
	for i := range f.attrs {
		if strings.EqualFold(f.attrs[i].Name, name) {
			return i
		}
	}
	return -1
}

// Equal returns whether f and o are the same family.
func (f *Family) Equal(o *Family) bool {
	if f == nil || o == nil {
		return f == o
	}
	return f.name.Equal(o.name)
}

func (f *Family) String() string { return f.name.Name }

// Instance returns an instance of f with the
// given attributes. Nullability is left unset.
// Supplying the wrong number of attributes is
// a configuration error and panics.
func (f *Family) Instance(attrs ...int) *Instance {
	if len(attrs) != len(f.attrs) {
		panic(fmt.Sprintf("%s: expected %d attributes, got %d", f.name, len(f.attrs), len(attrs)))
	}
	in := &Instance{family: f}
	copy(in.attrs[:], attrs)
	return in
}

// NullableInstance is like Instance, but
// also sets the nullability of the result.
func (f *Family) NullableInstance(nullable bool, attrs ...int) *Instance {
	in := f.Instance(attrs...)
	in.SetNullable(nullable)
	return in
}

// DefaultInstance returns a nullable instance
// of f with every attribute at its default.
func (f *Family) DefaultInstance() *Instance {
	in := &Instance{family: f}
	for i := range f.attrs {
		in.attrs[i] = f.attrs[i].Default
	}
	in.SetNullable(true)
	return in
}

func (f *Family) owns(in *Instance) bool {
	return in != nil && in.family.Equal(f)
}

// Combine merges two instances of f according
// to mode. Both instances must belong to f.
// The result is nullable if either input is.
func (f *Family) Combine(mode CombineMode, a, b *Instance) (*Instance, error) {
	if !f.owns(a) || !f.owns(b) {
		return nil, fmt.Errorf("%s: cannot combine %s and %s", f.name, a, b)
	}
	var out *Instance
	if f.fn.Combine != nil {
		var err error
		out, err = f.fn.Combine(mode, a, b)
		if err != nil {
			return nil, err
		}
	} else {
		out = &Instance{family: f}
		for i := range f.attrs {
			x, y := a.attrs[i], b.attrs[i]
			switch mode {
			case CombineConcat:
				out.attrs[i] = x + y
			default:
				if y > x {
					x = y
				}
				out.attrs[i] = x
			}
		}
	}
	if !out.NullableSet() {
		out.SetNullable(a.nullableOr(true) || b.nullableOr(true))
	}
	return out, nil
}

// Compare orders two values of instance in
// according to SQL semantics. NULL sorts
// before every non-null value.
func (f *Family) Compare(in *Instance, a, b ValueSource) int {
	an, bn := a.IsNull(), b.IsNull()
	switch {
	case an && bn:
		return 0
	case an:
		return -1
	case bn:
		return 1
	}
	if f.fn.Compare != nil {
		return f.fn.Compare(in, a, b)
	}
	return compareKind(f.kind, f.Collator(in), a, b)
}

func compareKind(k Kind, c Collator, a, b ValueSource) int {
	switch k {
	case KindFloat32, KindFloat64:
		return CompareFloat(FloatOf(a), FloatOf(b))
	case KindBytes:
		return bytes.Compare(a.Bytes(), b.Bytes())
	case KindString:
		if c != nil {
			return c.Compare(a.Text(), b.Text())
		}
		return strings.Compare(a.Text(), b.Text())
	}
	x, y := IntOf(a), IntOf(b)
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	}
	return 0
}

// CompareFloat orders floating-point values
// the way SQL does: -0 equals +0, and NaN
// is equal to itself and greater than any
// other value.
func CompareFloat(x, y float64) int {
	xn, yn := math.IsNaN(x), math.IsNaN(y)
	switch {
	case xn && yn:
		return 0
	case xn:
		return 1
	case yn:
		return -1
	case x < y:
		return -1
	case x > y:
		return 1
	}
	return 0
}

// Collator returns the collation of a text
// instance of f, or nil if f orders its
// values without a collation.
func (f *Family) Collator(in *Instance) Collator {
	if f.fn.Collator == nil {
		return nil
	}
	return f.fn.Collator(in)
}

// Parse parses text into dst.
func (f *Family) Parse(in *Instance, text string, dst ValueTarget) error {
	if f.fn.Parse != nil {
		return f.fn.Parse(in, text, dst)
	}
	return parseKind(text, dst)
}

func parseKind(text string, dst ValueTarget) error {
	switch k := dst.Kind(); k {
	case KindString:
		dst.PutText(text)
		return nil
	case KindBytes:
		dst.PutBytes([]byte(text))
		return nil
	case KindBool:
		switch strings.ToLower(strings.TrimSpace(text)) {
		case "true", "1":
			dst.PutBool(true)
		case "false", "0":
			dst.PutBool(false)
		default:
			return fmt.Errorf("invalid boolean %q", text)
		}
		return nil
	case KindFloat32, KindFloat64:
		v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return err
		}
		if math.IsInf(v, 0) && err != nil {
			v = math.Copysign(math.MaxFloat64, v)
		}
		if PutFloat(dst, v) || err != nil {
			return fmt.Errorf("%q: %w", text, ErrClamped)
		}
		return nil
	default:
		v, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return err
		}
		if PutInt(dst, v) || err != nil {
			return fmt.Errorf("%q: %w", text, ErrClamped)
		}
		return nil
	}
}

// Format appends the display form of src
// to dst. NULL is formatted as "NULL".
func (f *Family) Format(in *Instance, src ValueSource, dst []byte) []byte {
	if src.IsNull() {
		return append(dst, "NULL"...)
	}
	if f.fn.Format != nil {
		return f.fn.Format(in, src, dst)
	}
	return formatKind(src, dst)
}

func formatKind(src ValueSource, dst []byte) []byte {
	switch src.Kind() {
	case KindBool:
		return strconv.AppendBool(dst, src.Bool())
	case KindFloat32:
		return strconv.AppendFloat(dst, float64(src.Float32()), 'g', -1, 32)
	case KindFloat64:
		return strconv.AppendFloat(dst, src.Float64(), 'g', -1, 64)
	case KindBytes:
		return append(dst, src.Bytes()...)
	case KindString:
		return append(dst, src.Text()...)
	}
	return strconv.AppendInt(dst, IntOf(src), 10)
}

// FormatLiteral appends the SQL literal form of src to dst.
func (f *Family) FormatLiteral(in *Instance, src ValueSource, dst []byte) []byte {
	if src.IsNull() {
		return append(dst, "NULL"...)
	}
	if f.fn.FormatLiteral != nil {
		return f.fn.FormatLiteral(in, src, dst)
	}
	switch f.category {
	case CategoryBoolean:
		if src.Bool() {
			return append(dst, "TRUE"...)
		}
		return append(dst, "FALSE"...)
	case CategoryBinary:
		dst = append(dst, "X'"...)
		dst = append(dst, strings.ToUpper(hex.EncodeToString(src.Bytes()))...)
		return append(dst, '\'')
	case CategoryString, CategoryDateTime:
		dst = append(dst, '\'')
		for _, c := range f.Format(in, src, nil) {
			if c == '\'' {
				dst = append(dst, '\'')
			}
			dst = append(dst, c)
		}
		return append(dst, '\'')
	}
	return f.Format(in, src, dst)
}

// FormatJSON appends the JSON form of src to dst.
func (f *Family) FormatJSON(in *Instance, src ValueSource, dst []byte) []byte {
	if src.IsNull() {
		return append(dst, "null"...)
	}
	if f.fn.FormatJSON != nil {
		return f.fn.FormatJSON(in, src, dst)
	}
	switch f.category {
	case CategoryBoolean:
		return strconv.AppendBool(dst, src.Bool())
	case CategoryNumeric:
		if f.kind.Float() {
			v := FloatOf(src)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return strconv.AppendQuote(dst, string(f.Format(in, src, nil)))
			}
		}
		return f.Format(in, src, dst)
	case CategoryBinary:
		dst = append(dst, '"')
		dst = append(dst, hex.EncodeToString(src.Bytes())...)
		return append(dst, '"')
	}
	buf, _ := json.Marshal(string(f.Format(in, src, nil)))
	return append(dst, buf...)
}

// CopyCanonical copies src into dst without
// any collation transform.
func (f *Family) CopyCanonical(src ValueSource, dst ValueTarget) {
	Copy(src, dst)
}

// WriteCollating moves src into a collating
// target such as an index key. Text values
// carry the instance's collation along.
func (f *Family) WriteCollating(in *Instance, src ValueSource, dst CollatingTarget) {
	if f.fn.WriteCollating != nil {
		f.fn.WriteCollating(in, src, dst)
		return
	}
	if f.kind == KindString && !src.IsNull() {
		if c := f.Collator(in); c != nil && !c.Binary() {
			dst.PutCollated(src.Text(), c)
			return
		}
	}
	Copy(src, dst)
}

// ReadCollating moves a value that was written
// with WriteCollating back into a plain target.
func (f *Family) ReadCollating(in *Instance, src ValueSource, dst ValueTarget) {
	if f.fn.ReadCollating != nil {
		f.fn.ReadCollating(in, src, dst)
		return
	}
	Copy(src, dst)
}
