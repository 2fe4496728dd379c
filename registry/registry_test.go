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

package registry

import (
	"bytes"
	"log"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/SnellerInc/sqltypes/builtin"
	"github.com/SnellerInc/sqltypes/cast"
	"github.com/SnellerInc/sqltypes/keycodec"
	"github.com/SnellerInc/sqltypes/overload"
	"github.com/SnellerInc/sqltypes/types"
)

const yamlConfig = `
max_key_segment: 512
max_key_size: 2048
collations:
  - name: fr_ci
    locale: fr
    options:
      ignore_case: true
      ignore_diacritics: true
  - name: de
    locale: de
`

func TestDecodeConfig(t *testing.T) {
	c, err := DecodeConfig(strings.NewReader(yamlConfig), ".yaml")
	if err != nil {
		t.Fatal(err)
	}
	if c.MaxKeySegment != 512 || c.MaxKeySize != 2048 {
		t.Errorf("limits %d %d", c.MaxKeySegment, c.MaxKeySize)
	}
	if len(c.Collations) != 2 || !c.Collations[0].Options.IgnoreDiacritics || c.Collations[1].Locale != "de" {
		t.Errorf("collations %+v", c.Collations)
	}

	j, err := DecodeConfig(strings.NewReader(`{"collations": [{"name": "sv", "locale": "sv"}]}`), ".json")
	if err != nil {
		t.Fatal(err)
	}
	if j.MaxKeySize != keycodec.DefaultMaxKey || len(j.Collations) != 1 {
		t.Errorf("unexpected %+v", j)
	}

	bad := []struct {
		text, ext string
	}{
		{`{"max_key_sise": 10}`, ".json"},
		{"max_key_segment: [", ".yml"},
		{"max_key_segment: 100\nmax_key_size: 10\n", ".yaml"},
		{"collations:\n  - locale: fr\n", ".yaml"},
		{`{"max_key_size": -1}`, ""},
	}
	for _, b := range bad {
		if _, err := DecodeConfig(strings.NewReader(b.text), b.ext); err == nil {
			t.Errorf("%q: expected an error", b.text)
		}
	}
	huge := strings.Repeat(" ", maxConfigSize+1)
	if _, err := DecodeConfig(strings.NewReader(huge), ".json"); err == nil {
		t.Error("oversized config accepted")
	}
}

func TestOpenConfig(t *testing.T) {
	fsys := fstest.MapFS{
		"etc/types.yaml": &fstest.MapFile{Data: []byte(yamlConfig)},
	}
	c, err := OpenConfig(fsys, "etc/types.yaml")
	if err != nil {
		t.Fatal(err)
	}
	r, err := New(c)
	if err != nil {
		t.Fatal(err)
	}
	if r.Codec().MaxSegment() != 512 || r.Codec().MaxKey() != 2048 {
		t.Errorf("codec limits %d %d", r.Codec().MaxSegment(), r.Codec().MaxKey())
	}
	fr, err := r.Types().Text(10, "FR_CI")
	if err != nil {
		t.Fatal(err)
	}
	a, b := fr.NewValue(), fr.NewValue()
	a.PutText("École")
	b.PutText("ecole")
	if fr.Compare(a, b) != 0 {
		t.Error("fr_ci should ignore case and accents")
	}
	if _, err := OpenConfig(fsys, "etc/missing.yaml"); err == nil {
		t.Error("expected an error")
	}
}

func TestDefaults(t *testing.T) {
	var logs bytes.Buffer
	r, err := New(nil, WithLogger(log.New(&logs, "", 0)))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(logs.String(), "13 families") {
		t.Errorf("unexpected log output %q", logs.String())
	}
	infos := r.TypeInfos()
	if len(infos) != 13 {
		t.Fatalf("%d types", len(infos))
	}
	ids := make(map[uint64]string)
	for _, ti := range infos {
		if prev, ok := ids[ti.ID]; ok {
			t.Errorf("%s and %s share TYPE_ID %d", prev, ti.Name, ti.ID)
		}
		ids[ti.ID] = ti.Name
		if ti.Bundle != builtin.Bundle.Name {
			t.Errorf("%s in bundle %s", ti.Name, ti.Bundle)
		}
	}
	for _, ti := range infos {
		if ti.Name == "VARCHAR" {
			if len(ti.Attributes) != 2 || ti.Attributes[0].Default != builtin.DefaultLength {
				t.Errorf("varchar attributes %+v", ti.Attributes)
			}
		}
	}

	var paths, strong int
	for _, ci := range r.CastInfos() {
		if ci.Path != nil {
			paths++
			if ci.From != "SQL.INT" || ci.To != "SQL.DATE" || len(ci.Path) != 3 {
				t.Errorf("unexpected path %+v", ci)
			}
		}
		if ci.Strong {
			strong++
		}
	}
	if paths != 1 {
		t.Errorf("%d paths", paths)
	}
	if strong != len(r.Casts().StrongIDs()) {
		t.Errorf("%d strong casts listed, %d declared", strong, len(r.Casts().StrongIDs()))
	}

	res, err := r.Resolver().Resolve("PLUS", []*types.Instance{r.Types().Int.Instance(), r.Types().SmallInt.Instance()})
	if err != nil {
		t.Fatal(err)
	}
	if res.Overload.ID != "plus_bigint" {
		t.Errorf("resolved %s", res.Overload)
	}
}

func TestBadConfig(t *testing.T) {
	cfgs := []*Config{
		{Collations: []CollationConfig{{Name: "x", Locale: "not a locale!"}}},
		{Collations: []CollationConfig{{Name: "x", Locale: "fr"}, {Name: "X", Locale: "de"}}},
		{MaxKeySegment: 20000},
	}
	for i, c := range cfgs {
		if _, err := New(c); err == nil {
			t.Errorf("config %d: expected an error", i)
		}
	}
}

var geo = types.MustBundle("geo", "8d2f4b0e-6a3c-4e1f-a7b9-0c5d3e2f1a46")

func pointModule() Module {
	point := types.MustFamily(types.Def{
		Name:      types.MustName(geo, "point"),
		Kind:      types.KindInt64,
		Category:  "GEOMETRY",
		Indexable: true,
	})
	return Module{
		Name:     "geo",
		Families: []*types.Family{point},
		Casts: func(t *builtin.Types, b *cast.Builder) {
			b.Strong(cast.From(t.Varchar, cast.Families(point)))
		},
		Overloads: func(t *builtin.Types) []*overload.Overload {
			return []*overload.Overload{{
				ID:     "point_x",
				Names:  []string{"point_x"},
				Inputs: []overload.InputSet{overload.Covers(point, 0)},
				Result: overload.Fixed(t.Int.Instance()),
				Scalar: func(ctx *types.ExecContext, in []types.ValueSource, out types.ValueTarget) {
					out.PutInt32(int32(in[0].Int64() >> 32))
				},
			}}
		},
	}
}

func TestModule(t *testing.T) {
	base, err := New(nil)
	if err != nil {
		t.Fatal(err)
	}
	r, err := New(nil, WithModule(pointModule()))
	if err != nil {
		t.Fatal(err)
	}
	if len(r.Families()) != 14 {
		t.Fatalf("%d families", len(r.Families()))
	}
	point, ok := r.Family(types.MustName(geo, "POINT"))
	if !ok {
		t.Fatal("geo.point not registered")
	}
	text := r.Types().Varchar.DefaultInstance()
	res, err := r.Resolver().Resolve("point_x", []*types.Instance{text})
	if err != nil {
		t.Fatal(err)
	}
	if res.Inputs[0].Family() != point || res.Casts[0] == nil {
		t.Errorf("text argument should be cast to %s", point)
	}
	if base.Fingerprint() == r.Fingerprint() {
		t.Error("module did not change the fingerprint")
	}
	again, err := New(nil, WithModule(pointModule()))
	if err != nil {
		t.Fatal(err)
	}
	if again.Fingerprint() != r.Fingerprint() {
		t.Error("fingerprint is not stable")
	}
	if _, err := New(nil, WithModule(pointModule()), WithModule(pointModule())); err == nil {
		t.Error("registering a family twice should fail")
	}
}
