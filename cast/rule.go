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

// Package cast implements the cast graph:
// the set of conversions between type families
// that the planner may insert into an expression.
//
// A Graph is assembled with a Builder from
// three kinds of declarations:
//
//   - Rules, which convert directly from one
//     family to another,
//   - Paths, which chain existing rules into
//     a sanctioned multi-hop conversion, and
//   - Strong declarations, which mark a set of
//     (source, target) pairs as implicitly
//     applicable during overload resolution.
//
// A Graph is immutable once built.
package cast

import (
	"fmt"

	"github.com/SnellerInc/sqltypes/types"
)

// Constness describes what the result
// of a conversion depends on.
type Constness uint8

const (
	// Immutable conversions depend only on their input
	// and may be constant-folded at plan time.
	Immutable Constness = iota
	// Stable conversions also depend on session
	// state that is fixed for one statement.
	Stable
	// Volatile conversions may produce a
	// different result on every call.
	Volatile
)

func (c Constness) String() string {
	switch c {
	case Immutable:
		return "immutable"
	case Stable:
		return "stable"
	case Volatile:
		return "volatile"
	}
	return "invalid"
}

// Func converts a non-null source value into dst.
// The input and output instances are ctx.Input(0)
// and ctx.Output(). Out-of-range values are clamped
// and reported with ctx.Warn.
type Func func(ctx *types.ExecContext, src types.ValueSource, dst types.ValueTarget)

// Caster is an executable conversion
// between two families.
type Caster interface {
	Source() *types.Family
	Target() *types.Family
	Constness() Constness
	// Evaluate converts src into dst.
	// A NULL source produces a NULL result
	// without invoking any conversion.
	Evaluate(ctx *types.ExecContext, src types.ValueSource, dst types.ValueTarget)
}

// Rule is a direct conversion
// from one family to another.
type Rule struct {
	From, To *types.Family
	Const    Constness
	Fn       Func
}

func (r *Rule) Source() *types.Family { return r.From }
func (r *Rule) Target() *types.Family { return r.To }
func (r *Rule) Constness() Constness  { return r.Const }

// Evaluate implements Caster.Evaluate.
func (r *Rule) Evaluate(ctx *types.ExecContext, src types.ValueSource, dst types.ValueTarget) {
	if src.IsNull() {
		dst.PutNull()
		return
	}
	r.Fn(ctx, src, dst)
}

func (r *Rule) String() string {
	return fmt.Sprintf("%s -> %s", r.From.Name(), r.To.Name())
}

// Path is a sequence of at least three
// families; each consecutive pair must be
// connected by a Rule.
type Path []*types.Family

func (p Path) String() string {
	var buf []byte
	for i := range p {
		if i > 0 {
			buf = append(buf, " -> "...)
		}
		buf = append(buf, p[i].Name().String()...)
	}
	return string(buf)
}

// Chain is the executable form of a Path.
type Chain struct {
	path  Path
	rules []*Rule
}

func (c *Chain) Source() *types.Family { return c.path[0] }
func (c *Chain) Target() *types.Family { return c.path[len(c.path)-1] }

// Path returns the families the chain visits.
func (c *Chain) Path() Path { return c.path }

// Constness returns the least constant
// constness of the chain's rules.
func (c *Chain) Constness() Constness {
	out := Immutable
	for _, r := range c.rules {
		if r.Const > out {
			out = r.Const
		}
	}
	return out
}

// Evaluate runs each hop of the chain in
// turn. Intermediate values are held in
// default instances of the intermediate
// families; each hop is evaluated in a context
// derived from ctx, so warnings raised by any
// hop reach the caller.
func (c *Chain) Evaluate(ctx *types.ExecContext, src types.ValueSource, dst types.ValueTarget) {
	if src.IsNull() {
		dst.PutNull()
		return
	}
	in := c.Source().DefaultInstance()
	if ctx.NInputs() > 0 && ctx.Input(0) != nil {
		in = ctx.Input(0)
	}
	cur := src
	last := len(c.rules) - 1
	for i, r := range c.rules {
		if i == last {
			out := ctx.Output()
			if out == nil {
				out = r.To.DefaultInstance()
			}
			r.Evaluate(ctx.Derive([]*types.Instance{in}, out), cur, dst)
			return
		}
		out := r.To.DefaultInstance()
		v := out.NewValue()
		r.Evaluate(ctx.Derive([]*types.Instance{in}, out), cur, v)
		cur, in = v, out
	}
}

// NoCastError is returned when no conversion
// is declared between two families.
type NoCastError struct {
	From, To *types.Family
}

func (e *NoCastError) Error() string {
	return fmt.Sprintf("no cast from %s to %s", e.From.Name(), e.To.Name())
}
