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

package main

import (
	"testing"

	"github.com/SnellerInc/sqltypes/collation"
	"github.com/SnellerInc/sqltypes/registry"
)

func testRegistry(t *testing.T) *registry.Registry {
	r, err := registry.New(&registry.Config{
		Collations: []registry.CollationConfig{
			{Name: "sv_ci", Locale: "sv", Options: collation.Options{IgnoreCase: true}},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestParseType(t *testing.T) {
	r := testRegistry(t)
	testcases := []struct {
		spec string
		want string
	}{
		{"int", "INT NULL"},
		{"sql.BigInt", "BIGINT NULL"},
		{"VARCHAR", "VARCHAR(255, 0) NULL"},
		{"varchar(12)", "VARCHAR(12, 0) NULL"},
		{"varchar(12, sv_ci)", "VARCHAR(12, 1) NULL"},
		{"VARBINARY( 3 )", "VARBINARY(3) NULL"},
	}
	for _, tc := range testcases {
		in, err := parseType(r, tc.spec)
		if err != nil {
			t.Errorf("%s: %s", tc.spec, err)
			continue
		}
		if got := in.String(); got != tc.want {
			t.Errorf("%s: got %s want %s", tc.spec, got, tc.want)
		}
	}
	in, err := parseType(r, "null")
	if in != nil || err != nil {
		t.Errorf("NULL: %v %v", in, err)
	}
	for _, bad := range []string{"nosuch", "int(3)", "varchar(1, 2, 3)", "varchar(x)", "varchar(3, nope)", "varchar(3"} {
		if _, err := parseType(r, bad); err == nil {
			t.Errorf("%s: expected an error", bad)
		}
	}
}

func TestParseColumn(t *testing.T) {
	r := testRegistry(t)
	c, err := parseColumn(r, "DESC:date=2020-02-29")
	if err != nil {
		t.Fatal(err)
	}
	if !c.desc || c.in.Family() != r.Types().Date || c.val.IsNull() {
		t.Errorf("unexpected column %+v", c)
	}
	c, err = parseColumn(r, "int=NULL")
	if err != nil {
		t.Fatal(err)
	}
	if c.desc || !c.val.IsNull() {
		t.Errorf("unexpected column %+v", c)
	}
	for _, bad := range []string{"int", "null=3", "date=2021-02-29", "int(4)=1"} {
		if _, err := parseColumn(r, bad); err == nil {
			t.Errorf("%s: expected an error", bad)
		}
	}
}
