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

package cast

import (
	"errors"
	"strings"
	"testing"

	"github.com/SnellerInc/sqltypes/types"
)

var (
	sqlBundle = types.MustBundle("sql", "5c3ac67c-6f4d-4f3e-9d0b-0c5d8e0a7f11")
	extBundle = types.MustBundle("ext", "8f0b0a57-3c1e-4b8e-a3a1-5b0e6a6e2d42")
)

type testTypes struct {
	varchar, tinyint, integer, bigint, date, time *types.Family
}

func (tt *testTypes) all() []*types.Family {
	return []*types.Family{tt.varchar, tt.tinyint, tt.integer, tt.bigint, tt.date, tt.time}
}

func newTestTypes() *testTypes {
	fam := func(b types.Bundle, name string, k types.Kind, attrs ...types.Attribute) *types.Family {
		return types.MustFamily(types.Def{
			Name:       types.MustName(b, name),
			Kind:       k,
			Attributes: attrs,
		})
	}
	return &testTypes{
		varchar: fam(sqlBundle, "varchar", types.KindString, types.Attribute{Name: "length", Default: 255}),
		tinyint: fam(sqlBundle, "tinyint", types.KindInt8),
		integer: fam(extBundle, "int", types.KindInt32),
		bigint:  fam(sqlBundle, "bigint", types.KindInt64),
		date:    fam(extBundle, "date", types.KindInt32),
		time:    fam(sqlBundle, "time", types.KindInt32),
	}
}

func execFor(from, to *types.Instance) *types.ExecContext {
	return types.NewPrepContext([]*types.Instance{from}, to, 0).NewExecContext(nil)
}

func int64Value(x int64) *types.Value {
	v := types.NewValue(types.KindInt64)
	v.PutInt64(x)
	return v
}

func textValue(s string) *types.Value {
	v := types.NewValue(types.KindString)
	v.PutText(s)
	return v
}

func basicBuilder(tt *testTypes) *Builder {
	b := &Builder{}
	b.Rule(tt.bigint, tt.tinyint, Immutable, Integer)
	b.Rule(tt.integer, tt.bigint, Immutable, Integer)
	b.Rule(tt.bigint, tt.integer, Immutable, Integer)
	b.Rule(tt.bigint, tt.date, Immutable, Integer)
	b.Path(tt.integer, tt.bigint, tt.date)
	b.Strings(tt.varchar)
	return b
}

func TestNarrowingClamps(t *testing.T) {
	tt := newTestTypes()
	g, err := basicBuilder(tt).Build(tt.all())
	if err != nil {
		t.Fatal(err)
	}
	c, err := g.Caster(tt.bigint, tt.tinyint)
	if err != nil {
		t.Fatal(err)
	}
	ctx := execFor(tt.bigint.NullableInstance(false), tt.tinyint.NullableInstance(false))
	dst := types.NewValue(types.KindInt8)
	c.Evaluate(ctx, int64Value(300), dst)
	if dst.Int8() != 127 {
		t.Errorf("300 -> %d", dst.Int8())
	}
	c.Evaluate(ctx, int64Value(-3), dst)
	if dst.Int8() != -3 {
		t.Errorf("-3 -> %d", dst.Int8())
	}
	w := ctx.Warnings()
	if len(w) != 1 {
		t.Fatalf("got %d warnings", len(w))
	}
	if w[0].Code != types.WarnOverflow || w[0].Attempted != "300" || w[0].Substituted != "127" {
		t.Errorf("unexpected warning %s", w[0])
	}
}

func TestNullSkipsConversion(t *testing.T) {
	tt := newTestTypes()
	b := &Builder{}
	b.Rule(tt.bigint, tt.integer, Immutable, func(*types.ExecContext, types.ValueSource, types.ValueTarget) {
		panic("conversion called for a NULL source")
	})
	b.Rule(tt.integer, tt.date, Immutable, Integer)
	b.Path(tt.bigint, tt.integer, tt.date)
	g, err := b.Build(tt.all())
	if err != nil {
		t.Fatal(err)
	}
	for _, to := range []*types.Family{tt.integer, tt.date} {
		c, err := g.Caster(tt.bigint, to)
		if err != nil {
			t.Fatal(err)
		}
		dst := types.NewValue(to.Kind())
		dst.PutInt32(1)
		c.Evaluate(execFor(tt.bigint.DefaultInstance(), to.DefaultInstance()), types.NewValue(types.KindInt64), dst)
		if !dst.IsNull() {
			t.Errorf("cast to %s: expected NULL", to)
		}
	}
}

func TestRulePreferredOverPath(t *testing.T) {
	tt := newTestTypes()
	b := basicBuilder(tt)
	g, err := b.Build(tt.all())
	if err != nil {
		t.Fatal(err)
	}
	l, ok := g.Lookup(tt.integer, tt.date)
	if !ok || l.Path == nil || l.Rule != nil {
		t.Fatalf("expected path, got %+v", l)
	}
	if c, _ := g.StrongCost(tt.integer, tt.date); c != 0 {
		t.Error("no strong casts were declared")
	}

	b = basicBuilder(tt)
	b.Rule(tt.integer, tt.date, Volatile, Integer)
	g, err = b.Build(tt.all())
	if err != nil {
		t.Fatal(err)
	}
	l, ok = g.Lookup(tt.integer, tt.date)
	if !ok || l.Rule == nil || l.Path != nil {
		t.Fatalf("expected rule, got %+v", l)
	}
	c, _ := g.Caster(tt.integer, tt.date)
	if c.Constness() != Volatile {
		t.Error("caster should be the direct rule")
	}
}

func TestPathEvaluate(t *testing.T) {
	tt := newTestTypes()
	b := &Builder{}
	b.Rule(tt.integer, tt.bigint, Immutable, Integer)
	b.Rule(tt.bigint, tt.tinyint, Immutable, Integer)
	b.Rule(tt.tinyint, tt.date, Stable, Integer)
	b.Path(tt.integer, tt.bigint, tt.tinyint, tt.date)
	g, err := b.Build(tt.all())
	if err != nil {
		t.Fatal(err)
	}
	c, err := g.Caster(tt.integer, tt.date)
	if err != nil {
		t.Fatal(err)
	}
	if ch, ok := c.(*Chain); !ok || len(ch.Path()) != 4 {
		t.Fatalf("expected a 4-family chain, got %T", c)
	}
	if c.Constness() != Stable {
		t.Errorf("chain constness %s", c.Constness())
	}
	ctx := execFor(tt.integer.DefaultInstance(), tt.date.DefaultInstance())
	src := types.NewValue(types.KindInt32)
	src.PutInt32(1000)
	dst := types.NewValue(types.KindInt32)
	c.Evaluate(ctx, src, dst)
	if dst.Int32() != 127 {
		t.Errorf("got %d", dst.Int32())
	}
	if len(ctx.Warnings()) != 1 {
		t.Errorf("the clamped hop should warn through the outer context; got %v", ctx.Warnings())
	}
}

func TestStrongBundle(t *testing.T) {
	tt := newTestTypes()
	b := basicBuilder(tt)
	b.Strong(From(tt.varchar, InBundle(extBundle, nil)))
	g, err := b.Build(tt.all())
	if err != nil {
		t.Fatal(err)
	}
	ids := g.StrongIDs()
	if len(ids) != 2 {
		t.Fatalf("got %d strong casts: %v", len(ids), ids)
	}
	want := []Pair{
		{From: tt.varchar.Name(), To: tt.date.Name()},
		{From: tt.varchar.Name(), To: tt.integer.Name()},
	}
	for i := range want {
		if !ids[i].From.Equal(want[i].From) || !ids[i].To.Equal(want[i].To) {
			t.Errorf("strong cast %d: got %v want %v", i, ids[i], want[i])
		}
	}
	if !g.IsStrong(tt.varchar, tt.integer) || g.IsStrong(tt.integer, tt.varchar) {
		t.Error("strong casts are directional")
	}
}

func TestStrongCosts(t *testing.T) {
	tt := newTestTypes()
	b := basicBuilder(tt)
	b.Strong(
		To(tt.date, Families(tt.integer, tt.bigint, tt.date)),
		From(tt.tinyint, InBundle(sqlBundle, func(f *types.Family) bool {
			return f == tt.varchar
		})),
	)
	g, err := b.Build(tt.all())
	if err != nil {
		t.Fatal(err)
	}
	if c, ok := g.StrongCost(tt.bigint, tt.date); !ok || c != 1 {
		t.Errorf("BIGINT -> DATE: cost %d", c)
	}
	if c, ok := g.StrongCost(tt.integer, tt.date); !ok || c != 2 {
		t.Errorf("INT -> DATE: cost %d", c)
	}
	if g.IsStrong(tt.date, tt.date) {
		t.Error("a family is never strongly cast to itself")
	}
	if len(g.StrongIDs()) != 3 {
		t.Errorf("strong ids: %v", g.StrongIDs())
	}
}

func TestBuildErrors(t *testing.T) {
	tt := newTestTypes()
	other := types.MustFamily(types.Def{
		Name: types.MustName(sqlBundle, "other"),
		Kind: types.KindInt64,
	})
	testcases := []struct {
		name    string
		declare func(b *Builder)
		want    string
	}{
		{
			name: "duplicate rule",
			declare: func(b *Builder) {
				b.Rule(tt.integer, tt.bigint, Immutable, Integer)
				b.Rule(tt.integer, tt.bigint, Immutable, Integer)
			},
			want: "duplicate rule",
		},
		{
			name:    "missing function",
			declare: func(b *Builder) { b.Rule(tt.integer, tt.bigint, Immutable, nil) },
			want:    "no conversion function",
		},
		{
			name:    "unknown family",
			declare: func(b *Builder) { b.Rule(tt.integer, other, Immutable, Integer) },
			want:    "unknown family",
		},
		{
			name:    "short path",
			declare: func(b *Builder) { b.Path(tt.integer, tt.bigint) },
			want:    "fewer than 3",
		},
		{
			name: "path without rule",
			declare: func(b *Builder) {
				b.Rule(tt.integer, tt.bigint, Immutable, Integer)
				b.Path(tt.integer, tt.bigint, tt.time)
			},
			want: "no rule from",
		},
		{
			name:    "unbacked strong cast",
			declare: func(b *Builder) { b.Strong(From(tt.time, Families(tt.date))) },
			want:    "no rule or path",
		},
	}
	for i := range testcases {
		tc := &testcases[i]
		t.Run(tc.name, func(t *testing.T) {
			b := &Builder{}
			tc.declare(b)
			_, err := b.Build(tt.all())
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestUndeclaredCast(t *testing.T) {
	tt := newTestTypes()
	g, err := basicBuilder(tt).Build(tt.all())
	if err != nil {
		t.Fatal(err)
	}
	_, err = g.Caster(tt.time, tt.date)
	var nc *NoCastError
	if !errors.As(err, &nc) || nc.From != tt.time || nc.To != tt.date {
		t.Fatalf("expected NoCastError, got %v", err)
	}
	if _, err := g.Caster(tt.date, tt.date); err == nil {
		t.Error("identity is not a cast")
	}
}

func TestStringCasts(t *testing.T) {
	tt := newTestTypes()
	g, err := basicBuilder(tt).Build(tt.all())
	if err != nil {
		t.Fatal(err)
	}
	parse, err := g.Caster(tt.varchar, tt.tinyint)
	if err != nil {
		t.Fatal(err)
	}
	testcases := []struct {
		text string
		want int8
		code types.WarningCode
	}{
		{"12", 12, 0},
		{" -7 ", -7, 0},
		{"1000", 127, types.WarnOverflow},
		{"99999999999999999999", 127, types.WarnOverflow},
		{"abc", 0, types.WarnInvalid},
	}
	for _, tc := range testcases {
		ctx := execFor(tt.varchar.DefaultInstance(), tt.tinyint.DefaultInstance())
		dst := types.NewValue(types.KindInt8)
		parse.Evaluate(ctx, textValue(tc.text), dst)
		if dst.Int8() != tc.want {
			t.Errorf("%q: got %d want %d", tc.text, dst.Int8(), tc.want)
		}
		w := ctx.Warnings()
		if tc.code == 0 {
			if len(w) != 0 {
				t.Errorf("%q: unexpected warnings %v", tc.text, w)
			}
			continue
		}
		if len(w) != 1 || w[0].Code != tc.code {
			t.Errorf("%q: got warnings %v, want %s", tc.text, w, tc.code)
		}
	}

	format, err := g.Caster(tt.bigint, tt.varchar)
	if err != nil {
		t.Fatal(err)
	}
	ctx := execFor(tt.bigint.DefaultInstance(), tt.varchar.NullableInstance(true, 3))
	dst := types.NewValue(types.KindString)
	format.Evaluate(ctx, int64Value(12345), dst)
	if dst.Text() != "123" {
		t.Errorf("got %q", dst.Text())
	}
	if w := ctx.Warnings(); len(w) != 1 || w[0].Code != types.WarnTruncated || w[0].Attempted != "12345" {
		t.Errorf("unexpected warnings %v", w)
	}
}

func TestListing(t *testing.T) {
	tt := newTestTypes()
	g, err := basicBuilder(tt).Build(tt.all())
	if err != nil {
		t.Fatal(err)
	}
	rules := g.Rules()
	// 4 explicit rules and 2 generated per non-text family
	if len(rules) != 4+2*5 {
		t.Errorf("got %d rules", len(rules))
	}
	for i := 1; i < len(rules); i++ {
		a, b := rules[i-1], rules[i]
		if lessPair(Pair{b.From.Name(), b.To.Name()}, Pair{a.From.Name(), a.To.Name()}) {
			t.Errorf("rules out of order: %s before %s", a, b)
		}
	}
	if p := g.Paths(); len(p) != 1 || p[0].String() != "EXT.INT -> SQL.BIGINT -> EXT.DATE" {
		t.Errorf("paths: %v", p)
	}
	if f, ok := g.Family(tt.date.Name()); !ok || f != tt.date {
		t.Error("Family lookup failed")
	}
}
