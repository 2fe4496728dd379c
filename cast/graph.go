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
	"github.com/SnellerInc/sqltypes/types"

	"golang.org/x/exp/slices"
)

type pair struct {
	from, to types.NameKey
}

func pairOf(from, to *types.Family) pair {
	return pair{from: from.Name().Key(), to: to.Name().Key()}
}

// Graph is the immutable result of Builder.Build.
// It is safe for concurrent use.
type Graph struct {
	families map[types.NameKey]*types.Family
	rules    map[pair]*Rule
	chains   map[pair]*Chain
	strong   map[pair]int
}

// Lookup is the result of Graph.Lookup:
// exactly one of Rule and Path is set.
type Lookup struct {
	Rule *Rule
	Path Path
}

// Lookup finds the conversion from one family
// to another. A direct rule is preferred over
// a path between the same families.
func (g *Graph) Lookup(from, to *types.Family) (Lookup, bool) {
	k := pairOf(from, to)
	if r := g.rules[k]; r != nil {
		return Lookup{Rule: r}, true
	}
	if c := g.chains[k]; c != nil {
		return Lookup{Path: c.path}, true
	}
	return Lookup{}, false
}

// Caster returns the executable conversion
// from one family to another, or a *NoCastError
// if there is none. Two identical families
// are converted only if a rule is declared
// for the pair (such as a length-truncating
// self-cast); otherwise no cast is needed and
// none is returned.
func (g *Graph) Caster(from, to *types.Family) (Caster, error) {
	k := pairOf(from, to)
	if r := g.rules[k]; r != nil {
		return r, nil
	}
	if c := g.chains[k]; c != nil {
		return c, nil
	}
	return nil, &NoCastError{From: from, To: to}
}

func (g *Graph) cost(from, to *types.Family) int {
	k := pairOf(from, to)
	if g.rules[k] != nil {
		return 1
	}
	if g.chains[k] != nil {
		return 2
	}
	return 0
}

// IsStrong returns whether a strong cast
// is declared from one family to another.
func (g *Graph) IsStrong(from, to *types.Family) bool {
	return g.strong[pairOf(from, to)] != 0
}

// StrongCost returns the cost of the strong
// cast from one family to another: 1 when it is
// backed by a direct rule, 2 when by a path.
// The second result is false if no strong cast
// is declared.
func (g *Graph) StrongCost(from, to *types.Family) (int, bool) {
	c := g.strong[pairOf(from, to)]
	return c, c != 0
}

// Family returns the registered family with the given name.
func (g *Graph) Family(n types.Name) (*types.Family, bool) {
	f, ok := g.families[n.Key()]
	return f, ok
}

// Pair identifies a conversion by the
// names of its source and target.
type Pair struct {
	From, To types.Name
}

func lessName(a, b types.Name) bool {
	if a.Bundle.Name != b.Bundle.Name {
		return a.Bundle.Name < b.Bundle.Name
	}
	return a.Name < b.Name
}

func lessPair(a, b Pair) bool {
	if !a.From.Equal(b.From) {
		return lessName(a.From, b.From)
	}
	return lessName(a.To, b.To)
}

// StrongIDs returns the resolved strong
// casts, sorted by source and target name.
func (g *Graph) StrongIDs() []Pair {
	out := make([]Pair, 0, len(g.strong))
	for k := range g.strong {
		out = append(out, Pair{
			From: g.families[k.from].Name(),
			To:   g.families[k.to].Name(),
		})
	}
	slices.SortFunc(out, lessPair)
	return out
}

// Rules returns every direct rule (including
// generated string conversions) sorted by
// source and target name.
func (g *Graph) Rules() []*Rule {
	out := make([]*Rule, 0, len(g.rules))
	for _, r := range g.rules {
		out = append(out, r)
	}
	slices.SortFunc(out, func(a, b *Rule) bool {
		return lessPair(Pair{a.From.Name(), a.To.Name()}, Pair{b.From.Name(), b.To.Name()})
	})
	return out
}

// Paths returns every declared path, sorted
// by source and target name.
func (g *Graph) Paths() []Path {
	out := make([]Path, 0, len(g.chains))
	for _, c := range g.chains {
		out = append(out, c.path)
	}
	slices.SortFunc(out, func(a, b Path) bool {
		return lessPair(Pair{a[0].Name(), a[len(a)-1].Name()},
			Pair{b[0].Name(), b[len(b)-1].Name()})
	})
	return out
}
