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
	"errors"
	"strings"
	"testing"
)

var testBundle = MustBundle("test", "6c3b8a7e-2f4e-4d1c-9a3f-1b2c3d4e5f60")

func mustPanic(t *testing.T, what string, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Helper()
			t.Errorf("%s: expected a panic", what)
		}
	}()
	fn()
}

func testFamily(t *testing.T, name string, k Kind, attrs ...string) *Family {
	t.Helper()
	def := Def{
		Name:      MustName(testBundle, name),
		Kind:      k,
		Indexable: true,
	}
	for i := range attrs {
		def.Attributes = append(def.Attributes, Attribute{Name: attrs[i], Default: i + 1})
	}
	f, err := NewFamily(def)
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func TestNames(t *testing.T) {
	n, err := NewName(testBundle, "varchar")
	if err != nil {
		t.Fatal(err)
	}
	if n.String() != "TEST.VARCHAR" {
		t.Errorf("got %q", n.String())
	}
	other := MustBundle("renamed", testBundle.ID.String())
	if !n.Equal(Name{Bundle: other, Name: "VARCHAR"}) {
		t.Error("names in bundles with the same UUID should be equal")
	}
	if n.Hash() != MustName(other, "VARCHAR").Hash() {
		t.Error("hash should not depend on the bundle name")
	}
	if n.Hash() == MustName(testBundle, "INT").Hash() {
		t.Error("distinct names should (almost certainly) hash differently")
	}
	for _, bad := range []string{"", "int4", "two words", "_x", "x_", "a__b"} {
		if _, err := NewName(testBundle, bad); err == nil {
			t.Errorf("NewName(%q) should fail", bad)
		}
	}
	if _, err := NewName(testBundle, "double_precision"); err != nil {
		t.Errorf("underscore-separated names are allowed: %s", err)
	}
	if _, err := NewBundle("my_bundle", testBundle.ID); err == nil {
		t.Error("bundle names must be purely alphabetic")
	}
}

func TestInstanceAttributes(t *testing.T) {
	f := testFamily(t, "varchar", KindString, "length", "collation")
	if got := strings.Join(f.AttributeNames(), ","); got != "LENGTH,COLLATION" {
		t.Errorf("attribute names %q", got)
	}
	in := f.Instance(32, 7)
	if in.Attr(0) != 32 || in.Attr(1) != 7 {
		t.Errorf("attributes read back as %v", in.Attrs())
	}
	if got := in.Attrs(); len(got) != 2 {
		t.Errorf("Attrs() = %v", got)
	}
	mustPanic(t, "wrong arity", func() { f.Instance(1) })
	mustPanic(t, "too many attributes", func() { f.Instance(1, 2, 3) })
	mustPanic(t, "attribute out of range", func() { in.Attr(2) })

	def := f.DefaultInstance()
	if def.Attr(0) != 1 || def.Attr(1) != 2 || !def.Nullable() {
		t.Errorf("default instance %s", def)
	}
}

func TestNullability(t *testing.T) {
	f := testFamily(t, "int", KindInt32)
	in := f.Instance()
	if in.NullableSet() {
		t.Fatal("fresh instance has nullability")
	}
	mustPanic(t, "read before set", func() { in.Nullable() })
	in.SetNullable(false)
	if in.Nullable() {
		t.Error("expected NOT NULL")
	}
	mustPanic(t, "set twice", func() { in.SetNullable(true) })
	if in.String() != "INT NOT NULL" {
		t.Errorf("String() = %q", in.String())
	}
	n := in.WithNullable(true)
	if !n.Compatible(in) || n.Equal(in) {
		t.Error("nullability must not affect compatibility, only equality")
	}
}

func TestCombine(t *testing.T) {
	f := testFamily(t, "varchar", KindString, "length")
	g := testFamily(t, "int", KindInt32)
	a := f.NullableInstance(false, 10)
	b := f.NullableInstance(true, 25)
	w, err := f.Combine(CombineWiden, a, b)
	if err != nil {
		t.Fatal(err)
	}
	if w.Attr(0) != 25 || !w.Nullable() {
		t.Errorf("widen gave %s", w)
	}
	c, err := f.Combine(CombineConcat, a, b)
	if err != nil {
		t.Fatal(err)
	}
	if c.Attr(0) != 35 {
		t.Errorf("concat gave %s", c)
	}
	if _, err := f.Combine(CombineWiden, a, g.Instance()); err == nil {
		t.Error("combining instances of different families should fail")
	}
}

func TestParseFormat(t *testing.T) {
	i8 := testFamily(t, "tiny", KindInt8)
	in := i8.Instance()
	v := in.NewValue()
	if err := i8.Parse(in, " 42 ", v); err != nil {
		t.Fatal(err)
	}
	if v.Int8() != 42 {
		t.Errorf("parsed %d", v.Int8())
	}
	err := i8.Parse(in, "1000", v)
	if !errors.Is(err, ErrClamped) {
		t.Fatalf("expected ErrClamped, got %v", err)
	}
	if v.Int8() != 127 {
		t.Errorf("clamped to %d", v.Int8())
	}
	if err := i8.Parse(in, "abc", v); err == nil || errors.Is(err, ErrClamped) {
		t.Errorf("expected a parse error, got %v", err)
	}

	s := testFamily(t, "text", KindString)
	sv := NewValue(KindString)
	sv.PutText("it's")
	si := s.Instance()
	if got := string(s.FormatLiteral(si, sv, nil)); got != "'it''s'" {
		t.Errorf("literal %q", got)
	}
	if got := string(s.FormatJSON(si, sv, nil)); got != `"it's"` {
		t.Errorf("json %q", got)
	}
	sv.PutNull()
	if got := string(s.FormatJSON(si, sv, nil)); got != "null" {
		t.Errorf("json null %q", got)
	}
	b := testFamily(t, "blob", KindBytes)
	bv := NewValue(KindBytes)
	bv.PutBytes([]byte{0xde, 0xad})
	if got := string(b.FormatLiteral(b.Instance(), bv, nil)); got != "X'DEAD'" {
		t.Errorf("binary literal %q", got)
	}
}

func TestCompareNulls(t *testing.T) {
	f := testFamily(t, "dbl", KindFloat64)
	in := f.Instance()
	null := NewValue(KindFloat64)
	one := NewValue(KindFloat64)
	one.PutFloat64(1)
	if in.Compare(null, one) >= 0 || in.Compare(one, null) <= 0 || in.Compare(null, null) != 0 {
		t.Error("NULL must sort before non-null values")
	}
	if CompareFloat(0, negzero()) != 0 {
		t.Error("-0 should equal 0")
	}
}

func negzero() float64 {
	z := 0.0
	return -z
}

func TestValueKindMismatch(t *testing.T) {
	v := NewValue(KindInt32)
	mustPanic(t, "wrong put", func() { v.PutInt64(1) })
	mustPanic(t, "read of NULL", func() { v.Int32() })
	v.PutInt32(-5)
	mustPanic(t, "wrong read", func() { v.Int16() })
	w := NewValue(KindInt32)
	Copy(v, w)
	if !Equal(v, w) {
		t.Error("copy should produce an equal value")
	}
	mustPanic(t, "copy across kinds", func() { Copy(v, NewValue(KindString)) })
}
