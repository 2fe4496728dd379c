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

// Package overload describes operator signatures
// and resolves a call to the best-matching one.
//
// An Overload groups its argument positions into
// InputSets, each coerced to one target family,
// and derives its result type from a Result rule.
// A Resolver picks the Overload that applies to a
// list of argument instances using the strong
// casts of a cast.Graph.
package overload

import (
	"fmt"
	"strings"

	"github.com/SnellerInc/sqltypes/types"
)

// ResultKind is the category of a Result.
type ResultKind uint8

const (
	// ResultFixed results always have the same instance.
	ResultFixed ResultKind = iota + 1
	// ResultPicking results combine the instances
	// matched by the overload's picking set.
	ResultPicking
	// ResultCustom results are computed by a function
	// of the matched input instances.
	ResultCustom
)

func (k ResultKind) String() string {
	switch k {
	case ResultFixed:
		return "fixed"
	case ResultPicking:
		return "picking"
	case ResultCustom:
		return "custom"
	}
	return "invalid"
}

// CustomFunc computes a result instance from
// the (coerced) input instances of a call.
// Untyped NULL arguments are passed as nil.
type CustomFunc func(inputs []*types.Instance) (*types.Instance, error)

// Result is the rule that determines
// the result type of an overload.
type Result struct {
	kind   ResultKind
	fixed  *types.Instance
	mode   types.CombineMode
	custom CustomFunc
}

// Fixed returns a Result that is always in.
func Fixed(in *types.Instance) Result {
	return Result{kind: ResultFixed, fixed: in}
}

// Picking returns a Result that combines the
// instances matched by the picking set with mode.
func Picking(mode types.CombineMode) Result {
	return Result{kind: ResultPicking, mode: mode}
}

// Custom returns a Result computed by fn.
func Custom(fn CustomFunc) Result {
	return Result{kind: ResultCustom, custom: fn}
}

func (r Result) Kind() ResultKind { return r.kind }

func (r Result) check(k ResultKind) {
	if r.kind != k {
		panic(fmt.Sprintf("overload.Result: %s accessor used on a %s result", k, r.kind))
	}
}

// Fixed returns the instance of a fixed result.
// It panics if r is not a fixed result.
func (r Result) Fixed() *types.Instance {
	r.check(ResultFixed)
	return r.fixed
}

// Mode returns the combination mode of a picking
// result. It panics if r is not a picking result.
func (r Result) Mode() types.CombineMode {
	r.check(ResultPicking)
	return r.mode
}

// Custom returns the function of a custom result.
// It panics if r is not a custom result.
func (r Result) Custom() CustomFunc {
	r.check(ResultCustom)
	return r.custom
}

// ScalarFunc computes the result of a scalar
// operator. The input and output instances
// are available from ctx.
type ScalarFunc func(ctx *types.ExecContext, inputs []types.ValueSource, out types.ValueTarget)

// Aggregate is the implementation of an aggregate operator.
// The running result of the aggregate is kept in a
// Value of the output instance's kind.
type Aggregate struct {
	// Init resets the running result before the
	// first input. If Init is nil, the running
	// result starts out NULL.
	Init func(ctx *types.ExecContext, state *types.Value)
	// Step folds one non-null input into the running result.
	Step func(ctx *types.ExecContext, state *types.Value, input types.ValueSource)
}

// Overload is one signature of an operator.
type Overload struct {
	// ID uniquely identifies the overload.
	ID string
	// Display is the name used when
	// displaying calls to the overload.
	Display string
	// Names are the (case-insensitive)
	// names the overload is registered under.
	Names  []string
	Inputs []InputSet
	// Exact lists the argument positions that
	// must match their target family exactly
	// (without a cast).
	Exact []int
	// Priority breaks ties between overloads
	// that match the same arguments; higher
	// priorities are preferred, and lists are
	// compared element by element.
	Priority []int
	Result   Result
	// NullSafe disables null contamination:
	// by default a scalar overload produces NULL
	// without being called if any input is NULL.
	NullSafe bool

	Scalar    ScalarFunc
	Aggregate *Aggregate
}

func (o *Overload) String() string {
	var b strings.Builder
	b.WriteString(o.Display)
	b.WriteByte('(')
	for i := range o.Inputs {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(o.Inputs[i].String())
	}
	b.WriteString(") -> ")
	switch o.Result.kind {
	case ResultFixed:
		b.WriteString(o.Result.fixed.String())
	default:
		b.WriteString(o.Result.kind.String())
	}
	return b.String()
}

// IsAggregate returns whether o is an aggregate.
func (o *Overload) IsAggregate() bool { return o.Aggregate != nil }

// set returns the input set covering pos, or nil.
func (o *Overload) set(pos int) *InputSet {
	for i := range o.Inputs {
		if o.Inputs[i].Covers(pos) {
			return &o.Inputs[i]
		}
	}
	return nil
}

func (o *Overload) exact(pos int) bool {
	for _, p := range o.Exact {
		if p == pos {
			return true
		}
	}
	return false
}

func (o *Overload) picking() *InputSet {
	for i := range o.Inputs {
		if o.Inputs[i].picking {
			return &o.Inputs[i]
		}
	}
	return nil
}

// Arity returns the minimum number of arguments
// of o, and whether o accepts more than that.
func (o *Overload) Arity() (min int, variadic bool) {
	for i := range o.Inputs {
		if n := o.Inputs[i].covering.Len(); n > min {
			min = n
		}
		if o.Inputs[i].remaining {
			variadic = true
		}
	}
	return min, variadic
}

func (o *Overload) accepts(n int) bool {
	min, variadic := o.Arity()
	return n == min || (variadic && n > min)
}

// Validate checks that o is well-formed.
func (o *Overload) Validate() error {
	if o.ID == "" {
		return fmt.Errorf("overload has no id")
	}
	if len(o.Names) == 0 {
		return fmt.Errorf("overload %s has no names", o.ID)
	}
	if o.Display == "" {
		o.Display = strings.ToUpper(o.Names[0])
	}
	if (o.Scalar == nil) == (o.Aggregate == nil) {
		return fmt.Errorf("overload %s: exactly one of Scalar and Aggregate must be set", o.ID)
	}
	if o.Aggregate != nil && o.Aggregate.Step == nil {
		return fmt.Errorf("overload %s: aggregate has no step function", o.ID)
	}
	if len(o.Inputs) == 0 {
		return fmt.Errorf("overload %s has no inputs", o.ID)
	}
	var vararg, picking *InputSet
	for i := range o.Inputs {
		s := &o.Inputs[i]
		if s.Degenerate() {
			return fmt.Errorf("overload %s: input set %d covers no positions", o.ID, i)
		}
		if s.remaining {
			if vararg != nil {
				return fmt.Errorf("overload %s: more than one vararg input set", o.ID)
			}
			vararg = s
		}
		if s.picking {
			if picking != nil {
				return fmt.Errorf("overload %s: more than one picking input set", o.ID)
			}
			picking = s
		}
		for j := range o.Inputs[:i] {
			if s.covering.Intersects(o.Inputs[j].covering) {
				return fmt.Errorf("overload %s: input sets %d and %d overlap", o.ID, j, i)
			}
		}
	}
	min, _ := o.Arity()
	for p := 0; p < min; p++ {
		if o.set(p) == nil {
			return fmt.Errorf("overload %s: position %d is not covered", o.ID, p)
		}
	}
	if vararg != nil {
		// the open-ended range must start after
		// every explicitly covered position
		for i := range o.Inputs {
			if s := &o.Inputs[i]; s != vararg && s.covering.Len() > vararg.covering.Len() {
				return fmt.Errorf("overload %s: vararg input set overlaps %s", o.ID, s)
			}
		}
	}
	for _, p := range o.Exact {
		if p < 0 || (p >= min && vararg == nil) {
			return fmt.Errorf("overload %s: exact position %d is out of range", o.ID, p)
		}
	}
	switch o.Result.kind {
	case ResultFixed:
		if o.Result.fixed == nil {
			return fmt.Errorf("overload %s: nil fixed result", o.ID)
		}
	case ResultPicking:
		if picking == nil {
			return fmt.Errorf("overload %s: picking result without a picking input set", o.ID)
		}
	case ResultCustom:
		if o.Result.custom == nil {
			return fmt.Errorf("overload %s: nil custom result", o.ID)
		}
	default:
		return fmt.Errorf("overload %s has no result", o.ID)
	}
	return nil
}

// Evaluate computes a scalar overload. Unless
// the overload is NullSafe, a NULL input produces
// a NULL output without invoking the overload.
func (o *Overload) Evaluate(ctx *types.ExecContext, inputs []types.ValueSource, out types.ValueTarget) {
	if o.Scalar == nil {
		panic(fmt.Sprintf("overload %s is not a scalar", o.ID))
	}
	if !o.NullSafe {
		for _, in := range inputs {
			if in.IsNull() {
				out.PutNull()
				return
			}
		}
	}
	o.Scalar(ctx, inputs, out)
}

// Init prepares the running result of an aggregate.
func (o *Overload) Init(ctx *types.ExecContext, state *types.Value) {
	if o.Aggregate == nil {
		panic(fmt.Sprintf("overload %s is not an aggregate", o.ID))
	}
	state.Reset(state.Kind())
	if o.Aggregate.Init != nil {
		o.Aggregate.Init(ctx, state)
	}
}

// Step folds one input into the running result
// of an aggregate. NULL inputs are ignored.
func (o *Overload) Step(ctx *types.ExecContext, state *types.Value, input types.ValueSource) {
	if o.Aggregate == nil {
		panic(fmt.Sprintf("overload %s is not an aggregate", o.ID))
	}
	if input.IsNull() {
		return
	}
	o.Aggregate.Step(ctx, state, input)
}
