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
	"fmt"
	"strconv"
	"strings"

	"github.com/SnellerInc/sqltypes/registry"
	"github.com/SnellerInc/sqltypes/types"
)

// parseType parses a type written as
// NAME or BUNDLE.NAME, optionally followed
// by a parenthesized attribute list, e.g.
// "VARCHAR(20, fr_ci)". Missing trailing
// attributes take their defaults. The
// literal NULL denotes an untyped NULL and
// yields a nil instance.
func parseType(r *registry.Registry, spec string) (*types.Instance, error) {
	spec = strings.TrimSpace(spec)
	if strings.EqualFold(spec, "null") {
		return nil, nil
	}
	name, args := spec, ""
	if i := strings.IndexByte(spec, '('); i >= 0 {
		if !strings.HasSuffix(spec, ")") {
			return nil, fmt.Errorf("type %q: missing )", spec)
		}
		name, args = strings.TrimSpace(spec[:i]), spec[i+1:len(spec)-1]
	}
	f := findFamily(r, name)
	if f == nil {
		return nil, fmt.Errorf("unknown type %q", name)
	}
	attrs := make([]int, f.NAttrs())
	for i, a := range f.Attributes() {
		attrs[i] = a.Default
	}
	if args != "" {
		list := strings.Split(args, ",")
		if len(list) > len(attrs) {
			return nil, fmt.Errorf("type %s takes at most %d attributes", f, len(attrs))
		}
		for i, s := range list {
			s = strings.TrimSpace(s)
			n, err := strconv.Atoi(s)
			if err == nil {
				attrs[i] = n
				continue
			}
			if !strings.EqualFold(f.Attributes()[i].Name, "collation") {
				return nil, fmt.Errorf("type %s: attribute %s: %q is not a number", f, f.Attributes()[i].Name, s)
			}
			c, ok := r.Collations().Lookup(s)
			if !ok {
				return nil, fmt.Errorf("unknown collation %q", s)
			}
			attrs[i] = c.ID()
		}
	}
	return f.NullableInstance(true, attrs...), nil
}

func findFamily(r *registry.Registry, name string) *types.Family {
	qualified := strings.ContainsRune(name, '.')
	for _, f := range r.Families() {
		n := f.Name()
		if qualified && strings.EqualFold(n.String(), name) {
			return f
		}
		if !qualified && strings.EqualFold(n.Name, name) {
			return f
		}
	}
	return nil
}

// column is one argument of the encode command:
// [desc:]TYPE=VALUE, where VALUE may be NULL.
type column struct {
	in   *types.Instance
	desc bool
	val  *types.Value
}

func parseColumn(r *registry.Registry, arg string) (column, error) {
	var c column
	if rest, ok := cutPrefixFold(arg, "desc:"); ok {
		c.desc, arg = true, rest
	}
	spec, text, ok := strings.Cut(arg, "=")
	if !ok {
		return c, fmt.Errorf("column %q: expected TYPE=VALUE", arg)
	}
	in, err := parseType(r, spec)
	if err != nil {
		return c, err
	}
	if in == nil {
		return c, fmt.Errorf("column %q: key columns must be typed", arg)
	}
	c.in = in
	c.val = in.NewValue()
	if strings.EqualFold(text, "null") {
		return c, nil
	}
	if err := in.Family().Parse(in, text, c.val); err != nil {
		return c, err
	}
	return c, nil
}

func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix) {
		return s[len(prefix):], true
	}
	return s, false
}
