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
	"fmt"

	"github.com/SnellerInc/sqltypes/types"
)

// Set is a set of families named either
// explicitly or as "every family in a bundle",
// resolved against the registered families
// when the graph is built.
type Set struct {
	explicit []*types.Family
	bundle   *types.Bundle
	filter   func(f *types.Family) bool
}

// Families returns the set of the given families.
func Families(f ...*types.Family) Set {
	return Set{explicit: f}
}

// InBundle returns the set of all families in
// bundle b for which filter returns true.
// A nil filter selects every family.
func InBundle(b types.Bundle, filter func(f *types.Family) bool) Set {
	return Set{bundle: &b, filter: filter}
}

func (s *Set) resolve(all []*types.Family) []*types.Family {
	if s.bundle == nil {
		return s.explicit
	}
	var out []*types.Family
	for _, f := range all {
		if !f.Name().Bundle.Equal(*s.bundle) {
			continue
		}
		if s.filter == nil || s.filter(f) {
			out = append(out, f)
		}
	}
	return out
}

// Strong is a declaration that a family converts
// implicitly to (or from) every family in a Set.
type Strong struct {
	anchor *types.Family
	to     bool
	set    Set
}

// From declares strong casts from src to every family in targets.
func From(src *types.Family, targets Set) Strong {
	return Strong{anchor: src, set: targets}
}

// To declares strong casts from every family in sources to dst.
func To(dst *types.Family, sources Set) Strong {
	return Strong{anchor: dst, to: true, set: sources}
}

// Builder collects cast declarations.
// The zero value is ready to use.
type Builder struct {
	rules   []*Rule
	paths   []Path
	strong  []Strong
	varchar *types.Family
}

// Rule declares a direct conversion.
func (b *Builder) Rule(from, to *types.Family, c Constness, fn Func) {
	b.rules = append(b.rules, &Rule{From: from, To: to, Const: c, Fn: fn})
}

// Path declares a multi-hop conversion.
func (b *Builder) Path(p ...*types.Family) {
	b.paths = append(b.paths, Path(p))
}

// Strong adds strong cast declarations.
func (b *Builder) Strong(s ...Strong) {
	b.strong = append(b.strong, s...)
}

// Strings sets the text family for which
// conversions to and from every other family
// are generated (see StringCasts) unless a
// rule for the pair is declared explicitly.
func (b *Builder) Strings(varchar *types.Family) {
	b.varchar = varchar
}

// Build validates the declarations against the
// complete list of registered families and
// returns the resulting Graph.
//
// Rules and paths are collected first; strong
// declarations are resolved afterwards, so that
// bundle-wide declarations see every family.
func (b *Builder) Build(families []*types.Family) (*Graph, error) {
	g := &Graph{
		families: make(map[types.NameKey]*types.Family, len(families)),
		rules:    make(map[pair]*Rule),
		chains:   make(map[pair]*Chain),
		strong:   make(map[pair]int),
	}
	for _, f := range families {
		k := f.Name().Key()
		if g.families[k] != nil {
			return nil, fmt.Errorf("cast: duplicate family %s", f.Name())
		}
		g.families[k] = f
	}
	known := func(f *types.Family) error {
		if f == nil {
			return fmt.Errorf("cast: nil family")
		}
		if g.families[f.Name().Key()] != f {
			return fmt.Errorf("cast: unknown family %s", f.Name())
		}
		return nil
	}

	for _, r := range b.rules {
		if err := known(r.From); err != nil {
			return nil, err
		}
		if err := known(r.To); err != nil {
			return nil, err
		}
		if r.Fn == nil {
			return nil, fmt.Errorf("cast: rule %s has no conversion function", r)
		}
		k := pairOf(r.From, r.To)
		if g.rules[k] != nil {
			return nil, fmt.Errorf("cast: duplicate rule %s", r)
		}
		g.rules[k] = r
	}
	if b.varchar != nil {
		if err := known(b.varchar); err != nil {
			return nil, err
		}
		for _, f := range families {
			if f == b.varchar {
				continue
			}
			to, from := StringCasts(f, b.varchar)
			for _, r := range []*Rule{to, from} {
				if k := pairOf(r.From, r.To); g.rules[k] == nil {
					g.rules[k] = r
				}
			}
		}
	}
	for _, p := range b.paths {
		if len(p) < 3 {
			return nil, fmt.Errorf("cast: path %s has fewer than 3 families", p)
		}
		c := &Chain{path: p}
		for i := range p {
			if err := known(p[i]); err != nil {
				return nil, fmt.Errorf("path %s: %w", p, err)
			}
			if i == 0 {
				continue
			}
			r := g.rules[pairOf(p[i-1], p[i])]
			if r == nil {
				return nil, fmt.Errorf("cast: path %s: no rule from %s to %s",
					p, p[i-1].Name(), p[i].Name())
			}
			c.rules = append(c.rules, r)
		}
		if p[0] == p[len(p)-1] {
			return nil, fmt.Errorf("cast: path %s is a cycle", p)
		}
		k := pairOf(p[0], p[len(p)-1])
		if g.chains[k] != nil {
			return nil, fmt.Errorf("cast: duplicate path from %s to %s",
				p[0].Name(), p[len(p)-1].Name())
		}
		g.chains[k] = c
	}

	for i := range b.strong {
		s := &b.strong[i]
		if err := known(s.anchor); err != nil {
			return nil, err
		}
		for _, f := range s.set.resolve(families) {
			if err := known(f); err != nil {
				return nil, err
			}
			if f == s.anchor {
				continue
			}
			from, to := s.anchor, f
			if s.to {
				from, to = f, s.anchor
			}
			cost := g.cost(from, to)
			if cost == 0 {
				return nil, fmt.Errorf("cast: strong cast from %s to %s has no rule or path",
					from.Name(), to.Name())
			}
			g.strong[pairOf(from, to)] = cost
		}
	}
	return g, nil
}
