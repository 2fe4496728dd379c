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

package builtin

import (
	"fmt"
	"math"
	"strings"

	"github.com/SnellerInc/sqltypes/cast"
	"github.com/SnellerInc/sqltypes/overload"
	"github.com/SnellerInc/sqltypes/types"
	"github.com/SnellerInc/sqltypes/utf8"
)

// clamp64 stores the saturated result of an
// overflowing integer operation and warns.
func clamp64(ctx *types.ExecContext, attempted string, positive bool, out types.ValueTarget) {
	x := int64(math.MinInt64)
	if positive {
		x = math.MaxInt64
	}
	out.PutInt64(x)
	v := types.NewValue(types.KindInt64)
	v.PutInt64(x)
	cast.Warn(ctx, types.WarnOverflow, attempted, v)
}

func addInt(ctx *types.ExecContext, in []types.ValueSource, out types.ValueTarget) {
	a, b := in[0].Int64(), in[1].Int64()
	s := a + b
	if (a >= 0) == (b >= 0) && (s >= 0) != (a >= 0) {
		clamp64(ctx, fmt.Sprintf("%d + %d", a, b), a >= 0, out)
		return
	}
	out.PutInt64(s)
}

func subInt(ctx *types.ExecContext, in []types.ValueSource, out types.ValueTarget) {
	a, b := in[0].Int64(), in[1].Int64()
	s := a - b
	if (a >= 0) != (b >= 0) && (s >= 0) != (a >= 0) {
		clamp64(ctx, fmt.Sprintf("%d - %d", a, b), a >= 0, out)
		return
	}
	out.PutInt64(s)
}

func absInt(ctx *types.ExecContext, in []types.ValueSource, out types.ValueTarget) {
	a := in[0].Int64()
	switch {
	case a == math.MinInt64:
		clamp64(ctx, fmt.Sprintf("abs(%d)", a), true, out)
	case a < 0:
		out.PutInt64(-a)
	default:
		out.PutInt64(a)
	}
}

func addFloat(ctx *types.ExecContext, in []types.ValueSource, out types.ValueTarget) {
	out.PutFloat64(in[0].Float64() + in[1].Float64())
}

func subFloat(ctx *types.ExecContext, in []types.ValueSource, out types.ValueTarget) {
	out.PutFloat64(in[0].Float64() - in[1].Float64())
}

func absFloat(ctx *types.ExecContext, in []types.ValueSource, out types.ValueTarget) {
	out.PutFloat64(math.Abs(in[0].Float64()))
}

// arith returns the BIGINT and DOUBLE overloads of a
// binary operator; the BIGINT form is preferred.
func (t *Types) arith(id string, names []string, i, f overload.ScalarFunc) []*overload.Overload {
	return []*overload.Overload{
		{
			ID:       id + "_bigint",
			Names:    names,
			Inputs:   []overload.InputSet{overload.Covers(t.BigInt, 0, 1)},
			Priority: []int{1},
			Result:   overload.Fixed(t.BigInt.Instance()),
			Scalar:   i,
		},
		{
			ID:       id + "_double",
			Names:    names,
			Inputs:   []overload.InputSet{overload.Covers(t.Double, 0, 1)},
			Priority: []int{0},
			Result:   overload.Fixed(t.Double.Instance()),
			Scalar:   f,
		},
	}
}

// Overloads returns the built-in operators.
func (t *Types) Overloads() []*overload.Overload {
	var out []*overload.Overload
	out = append(out, t.arith("plus", []string{"plus", "+"}, addInt, addFloat)...)
	out = append(out, t.arith("minus", []string{"minus", "-"}, subInt, subFloat)...)
	out = append(out,
		&overload.Overload{
			ID:       "abs_bigint",
			Names:    []string{"abs"},
			Inputs:   []overload.InputSet{overload.Covers(t.BigInt, 0)},
			Priority: []int{1},
			Result:   overload.Fixed(t.BigInt.Instance()),
			Scalar:   absInt,
		},
		&overload.Overload{
			ID:     "abs_double",
			Names:  []string{"abs"},
			Inputs: []overload.InputSet{overload.Covers(t.Double, 0)},
			Result: overload.Fixed(t.Double.Instance()),
			Scalar: absFloat,
		},
		&overload.Overload{
			ID:     "concat",
			Names:  []string{"concat", "||"},
			Inputs: []overload.InputSet{overload.Vararg(t.Varchar, 0)},
			Result: overload.Custom(t.concatResult),
			Scalar: func(ctx *types.ExecContext, in []types.ValueSource, out types.ValueTarget) {
				var b strings.Builder
				for _, s := range in {
					b.WriteString(s.Text())
				}
				cast.PutText(ctx, b.String(), out)
			},
		},
		&overload.Overload{
			ID:       "coalesce",
			Names:    []string{"coalesce", "ifnull"},
			Inputs:   []overload.InputSet{overload.PickingVararg(nil, 0)},
			Result:   overload.Picking(types.CombineWiden),
			NullSafe: true,
			Scalar: func(ctx *types.ExecContext, in []types.ValueSource, out types.ValueTarget) {
				for _, s := range in {
					if !s.IsNull() {
						types.Copy(s, out)
						return
					}
				}
				out.PutNull()
			},
		},
		&overload.Overload{
			ID:     "char_length",
			Names:  []string{"char_length", "character_length"},
			Inputs: []overload.InputSet{overload.Covers(t.Varchar, 0)},
			Result: overload.Fixed(t.BigInt.Instance()),
			Scalar: func(ctx *types.ExecContext, in []types.ValueSource, out types.ValueTarget) {
				out.PutInt64(int64(utf8.Length(in[0].Text())))
			},
		},
	)
	return append(out, t.aggregates()...)
}

func (t *Types) concatResult(in []*types.Instance) (*types.Instance, error) {
	var out *types.Instance
	for _, x := range in {
		if x == nil {
			continue
		}
		if out == nil {
			out = t.Varchar.Instance(x.Attrs()...)
			if x.NullableSet() {
				out.SetNullable(x.Nullable())
			}
			continue
		}
		var err error
		out, err = t.Varchar.Combine(types.CombineConcat, out, x)
		if err != nil {
			return nil, err
		}
	}
	if out == nil {
		return nil, fmt.Errorf("concat: no arguments")
	}
	return out, nil
}

func (t *Types) aggregates() []*overload.Overload {
	extreme := func(id string, want int) *overload.Overload {
		return &overload.Overload{
			ID:     id,
			Names:  []string{id},
			Inputs: []overload.InputSet{overload.PickingCovers(nil, 0)},
			Result: overload.Picking(types.CombineWiden),
			Aggregate: &overload.Aggregate{
				Step: func(ctx *types.ExecContext, state *types.Value, in types.ValueSource) {
					if state.IsNull() || ctx.Output().Compare(in, state)*want > 0 {
						types.Copy(in, state)
					}
				},
			},
		}
	}
	return []*overload.Overload{
		{
			ID:     "count",
			Names:  []string{"count"},
			Inputs: []overload.InputSet{overload.Covers(nil, 0)},
			Result: overload.Fixed(t.BigInt.NullableInstance(false)),
			Aggregate: &overload.Aggregate{
				Init: func(ctx *types.ExecContext, state *types.Value) {
					state.PutInt64(0)
				},
				Step: func(ctx *types.ExecContext, state *types.Value, in types.ValueSource) {
					state.PutInt64(state.Int64() + 1)
				},
			},
		},
		extreme("min", -1),
		extreme("max", 1),
		{
			ID:       "sum_bigint",
			Names:    []string{"sum"},
			Inputs:   []overload.InputSet{overload.Covers(t.BigInt, 0)},
			Priority: []int{1},
			Result:   overload.Fixed(t.BigInt.Instance()),
			Aggregate: &overload.Aggregate{
				Step: func(ctx *types.ExecContext, state *types.Value, in types.ValueSource) {
					if state.IsNull() {
						state.PutInt64(in.Int64())
						return
					}
					addInt(ctx, []types.ValueSource{state, in}, state)
				},
			},
		},
		{
			ID:     "sum_double",
			Names:  []string{"sum"},
			Inputs: []overload.InputSet{overload.Covers(t.Double, 0)},
			Result: overload.Fixed(t.Double.Instance()),
			Aggregate: &overload.Aggregate{
				Step: func(ctx *types.ExecContext, state *types.Value, in types.ValueSource) {
					if state.IsNull() {
						state.PutFloat64(in.Float64())
						return
					}
					state.PutFloat64(state.Float64() + in.Float64())
				},
			},
		},
	}
}
