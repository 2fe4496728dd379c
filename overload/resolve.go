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

package overload

import (
	"fmt"
	"strings"

	"github.com/SnellerInc/sqltypes/cast"
	"github.com/SnellerInc/sqltypes/types"

	"golang.org/x/exp/slices"
)

// NoMatchError is returned when no overload
// of an operator accepts the arguments.
type NoMatchError struct {
	Name string
	Args []*types.Instance
	// Candidates is the number of overloads
	// registered under Name.
	Candidates int
}

func argList(args []*types.Instance) string {
	var b strings.Builder
	b.WriteByte('(')
	for i := range args {
		if i > 0 {
			b.WriteString(", ")
		}
		if args[i] == nil {
			b.WriteString("NULL")
			continue
		}
		b.WriteString(args[i].Family().Name().Name)
	}
	b.WriteByte(')')
	return b.String()
}

func (e *NoMatchError) Error() string {
	if e.Candidates == 0 {
		return fmt.Sprintf("unknown function %s", e.Name)
	}
	return fmt.Sprintf("no overload of %s matches %s", e.Name, argList(e.Args))
}

// AmbiguousError is returned when more than one
// overload matches equally well.
type AmbiguousError struct {
	Name      string
	Args      []*types.Instance
	Overloads []*Overload
}

// ResultError is returned when the best
// overload for a call matches its arguments
// but its result type cannot be computed,
// for example when two VARCHAR arguments
// use different collations.
type ResultError struct {
	Name     string
	Args     []*types.Instance
	Overload *Overload
	Err      error
}

func (e *ResultError) Error() string {
	return fmt.Sprintf("call %s%s: result of %s: %s", e.Name, argList(e.Args), e.Overload.ID, e.Err)
}

func (e *ResultError) Unwrap() error { return e.Err }

func (e *AmbiguousError) Error() string {
	ids := make([]string, len(e.Overloads))
	for i := range e.Overloads {
		ids[i] = e.Overloads[i].ID
	}
	return fmt.Sprintf("call %s%s is ambiguous between %s",
		e.Name, argList(e.Args), strings.Join(ids, ", "))
}

// Resolution is the result of resolving a call.
type Resolution struct {
	Overload *Overload
	// Args are the argument instances
	// the call was resolved for.
	Args []*types.Instance
	// Inputs are the instances the arguments
	// are coerced to; Casts[i] is the conversion
	// for argument i, or nil if the argument is
	// used as-is.
	Inputs []*types.Instance
	Casts  []cast.Caster
	// Output is the result instance. It is nil
	// if the result type depends only on untyped
	// NULL arguments.
	Output *types.Instance
	// Cost is the total cost of the argument
	// conversions: 0 for an exact match, 1 for a
	// strong cast backed by a rule, 2 for one
	// backed by a path.
	Cost int
}

// Convert applies the conversion of argument i
// to src, a value of Args[i]. Warnings raised by
// the conversion are reported through ctx.
func (r *Resolution) Convert(ctx *types.ExecContext, i int, src types.ValueSource) types.ValueSource {
	c := r.Casts[i]
	if c == nil {
		return src
	}
	v := r.Inputs[i].NewValue()
	c.Evaluate(ctx.Derive([]*types.Instance{r.Args[i]}, r.Inputs[i]), src, v)
	return v
}

// PrepContext returns a context for evaluating
// the resolved call with nslots cache slots.
func (r *Resolution) PrepContext(nslots int) *types.PrepContext {
	return types.NewPrepContext(r.Inputs, r.Output, nslots)
}

// Resolver matches calls against a Set
// using the strong casts of a Graph.
// A Resolver is safe for concurrent use.
type Resolver struct {
	set   *Set
	casts *cast.Graph
}

// NewResolver returns a Resolver for the
// overloads of s and the casts of g.
func NewResolver(s *Set, g *cast.Graph) *Resolver {
	return &Resolver{set: s, casts: g}
}

func nullable(in *types.Instance) bool {
	return in == nil || !in.NullableSet() || in.Nullable()
}

// Resolve returns the overload registered
// under name that best matches args. An untyped
// NULL argument is represented by nil and
// matches any position.
//
// Candidates are ranked by their priority
// lists and then by conversion cost; if the
// two best candidates tie, Resolve returns an
// *AmbiguousError. If no candidate matches,
// it returns a *NoMatchError.
func (r *Resolver) Resolve(name string, args []*types.Instance) (*Resolution, error) {
	cands := r.set.Lookup(name)
	var matches []*Resolution
	for _, o := range cands {
		if res, ok := r.match(o, args); ok {
			matches = append(matches, res)
		}
	}
	if len(matches) == 0 {
		return nil, &NoMatchError{Name: name, Args: args, Candidates: len(cands)}
	}
	// stable: ambiguous overloads are reported
	// in registration order
	slices.SortStableFunc(matches, better)
	if len(matches) > 1 && !better(matches[0], matches[1]) {
		amb := &AmbiguousError{Name: name, Args: args}
		for _, m := range matches {
			if better(matches[0], m) {
				break
			}
			amb.Overloads = append(amb.Overloads, m.Overload)
		}
		return nil, amb
	}
	res := matches[0]
	out, err := r.output(res, args)
	if err != nil {
		return nil, &ResultError{Name: name, Args: args, Overload: res.Overload, Err: err}
	}
	res.Output = out
	return res, nil
}

// comparePriority compares priority lists
// element by element; missing elements are 0.
func comparePriority(a, b []int) int {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		var x, y int
		if i < len(a) {
			x = a[i]
		}
		if i < len(b) {
			y = b[i]
		}
		if x != y {
			if x < y {
				return -1
			}
			return 1
		}
	}
	return 0
}

func better(a, b *Resolution) bool {
	if c := comparePriority(a.Overload.Priority, b.Overload.Priority); c != 0 {
		return c > 0
	}
	return a.Cost < b.Cost
}

// coerce returns the cost of using an argument of
// family from at a position targeting family to.
func (r *Resolver) coerce(from, to *types.Family, exact bool) (int, bool) {
	if from == to {
		return 0, true
	}
	if exact {
		return 0, false
	}
	return r.casts.StrongCost(from, to)
}

// common picks the family that the arguments of a
// picking set with no target are coerced to: the
// family of one of the arguments to which all the
// others convert at the lowest total cost.
func (r *Resolver) common(o *Overload, s *InputSet, args []*types.Instance) (*types.Family, bool) {
	var best *types.Family
	bestCost := -1
	for i := range args {
		if args[i] == nil || !s.Covers(i) {
			continue
		}
		c := args[i].Family()
		if c == best {
			continue
		}
		total := 0
		ok := true
		for j := range args {
			if args[j] == nil || !s.Covers(j) {
				continue
			}
			cost, cok := r.coerce(args[j].Family(), c, o.exact(j))
			if !cok {
				ok = false
				break
			}
			total += cost
		}
		if ok && (bestCost < 0 || total < bestCost) {
			best, bestCost = c, total
		}
	}
	return best, best != nil || !anyTyped(s, args)
}

func anyTyped(s *InputSet, args []*types.Instance) bool {
	for i := range args {
		if args[i] != nil && s.Covers(i) {
			return true
		}
	}
	return false
}

func (r *Resolver) match(o *Overload, args []*types.Instance) (*Resolution, bool) {
	if !o.accepts(len(args)) {
		return nil, false
	}
	res := &Resolution{
		Overload: o,
		Args:     args,
		Inputs:   make([]*types.Instance, len(args)),
		Casts:    make([]cast.Caster, len(args)),
	}
	targets := make(map[*InputSet]*types.Family, len(o.Inputs))
	for i := range o.Inputs {
		s := &o.Inputs[i]
		t := s.Target
		if t == nil && s.picking {
			var ok bool
			t, ok = r.common(o, s, args)
			if !ok {
				return nil, false
			}
		}
		targets[s] = t
	}
	for i, arg := range args {
		s := o.set(i)
		if s == nil {
			return nil, false
		}
		t := targets[s]
		if arg == nil {
			if t != nil {
				res.Inputs[i] = t.DefaultInstance()
			}
			continue
		}
		if t == nil {
			res.Inputs[i] = arg
			continue
		}
		cost, ok := r.coerce(arg.Family(), t, o.exact(i))
		if !ok {
			return nil, false
		}
		res.Cost += cost
		if cost == 0 {
			res.Inputs[i] = arg
			continue
		}
		c, err := r.casts.Caster(arg.Family(), t)
		if err != nil {
			// strong casts are always backed
			// by a rule or a path
			panic(err)
		}
		res.Casts[i] = c
		res.Inputs[i] = t.DefaultInstance().WithNullable(nullable(arg))
	}
	return res, true
}

func (r *Resolver) output(res *Resolution, args []*types.Instance) (*types.Instance, error) {
	o := res.Overload
	anyNull := false
	for _, a := range args {
		if nullable(a) {
			anyNull = true
		}
	}
	switch o.Result.Kind() {
	case ResultFixed:
		out := o.Result.Fixed()
		if !out.NullableSet() {
			out = out.WithNullable(anyNull || o.IsAggregate())
		}
		return out, nil
	case ResultPicking:
		s := o.picking()
		var out *types.Instance
		for i, in := range res.Inputs {
			if in == nil || args[i] == nil || !s.Covers(i) {
				continue
			}
			if out == nil {
				out = in
				continue
			}
			var err error
			out, err = out.Family().Combine(o.Result.Mode(), out, in)
			if err != nil {
				return nil, err
			}
		}
		if out != nil {
			n := nullable(out) || o.IsAggregate() || (anyNull && !o.NullSafe)
			out = out.WithNullable(n)
		}
		return out, nil
	default:
		out, err := o.Result.Custom()(res.Inputs)
		if err != nil {
			return nil, err
		}
		if out == nil {
			return nil, fmt.Errorf("overload %s: no result type", o.ID)
		}
		if !out.NullableSet() {
			out = out.WithNullable(anyNull || o.IsAggregate())
		}
		return out, nil
	}
}
