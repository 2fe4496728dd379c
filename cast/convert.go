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
	"fmt"
	"strconv"

	"github.com/SnellerInc/sqltypes/ints"
	"github.com/SnellerInc/sqltypes/types"
	"github.com/SnellerInc/sqltypes/utf8"
)

// Warn reports that attempted could not be
// stored exactly in ctx.Output() and that
// sub was stored instead.
func Warn(ctx *types.ExecContext, code types.WarningCode, attempted string, sub types.ValueSource) {
	w := types.Warning{Code: code, Attempted: attempted}
	out := ctx.Output()
	if out != nil {
		w.Target = out.String()
		w.Substituted = out.Format(sub)
	} else if s, ok := sub.(fmt.Stringer); ok {
		w.Substituted = s.String()
	}
	ctx.Warn(w)
}

func warnInt(ctx *types.ExecContext, attempted string, dst types.ValueTarget, x int64) {
	v := types.NewValue(dst.Kind())
	types.PutInt(v, x)
	Warn(ctx, types.WarnOverflow, attempted, v)
}

// Integer converts between integer
// (and boolean) kinds, clamping values
// that do not fit the target.
func Integer(ctx *types.ExecContext, src types.ValueSource, dst types.ValueTarget) {
	x := types.IntOf(src)
	if types.PutInt(dst, x) {
		warnInt(ctx, strconv.FormatInt(x, 10), dst, x)
	}
}

// FloatToInteger converts a floating-point
// value to an integer kind, rounding half away
// from zero and clamping values that do not
// fit the target. NaN converts to 0.
func FloatToInteger(ctx *types.ExecContext, src types.ValueSource, dst types.ValueTarget) {
	f := types.FloatOf(src)
	x, clamped := ints.RoundFloat(f)
	if types.PutInt(dst, x) || clamped {
		warnInt(ctx, strconv.FormatFloat(f, 'g', -1, 64), dst, x)
	}
}

// ToFloat converts a numeric value to a
// floating-point kind. Values beyond the range
// of a FLOAT32 target are clamped.
func ToFloat(ctx *types.ExecContext, src types.ValueSource, dst types.ValueTarget) {
	f := types.FloatOf(src)
	if types.PutFloat(dst, f) {
		v := types.NewValue(dst.Kind())
		types.PutFloat(v, f)
		Warn(ctx, types.WarnOverflow, strconv.FormatFloat(f, 'g', -1, 64), v)
	}
}

// lengthOf returns the LENGTH attribute of a
// text instance, or -1 if it has none.
func lengthOf(in *types.Instance) int {
	if in == nil {
		return -1
	}
	i := in.Family().AttributeIndex("length")
	if i < 0 {
		return -1
	}
	return in.Attr(i)
}

// PutText stores s in a text target of instance
// ctx.Output(), truncating it to the instance's
// LENGTH (in characters) with a warning.
func PutText(ctx *types.ExecContext, s string, dst types.ValueTarget) {
	n := lengthOf(ctx.Output())
	if n < 0 || utf8.Length(s) <= n {
		dst.PutText(s)
		return
	}
	t, _ := utf8.Truncate(s, n)
	dst.PutText(t)
	v := types.NewValue(types.KindString)
	v.PutText(t)
	Warn(ctx, types.WarnTruncated, s, v)
}

// StringCasts returns the conversions between
// family f and the text family varchar, built
// from f's Format and Parse functions.
//
// Text that does not parse stores the zero
// value of f with a WarnInvalid warning; text
// that parses to an out-of-range value stores
// the clamped value with a WarnOverflow warning.
func StringCasts(f, varchar *types.Family) (to, from *Rule) {
	to = &Rule{
		From:  f,
		To:    varchar,
		Const: Immutable,
		Fn: func(ctx *types.ExecContext, src types.ValueSource, dst types.ValueTarget) {
			in := f.DefaultInstance()
			if ctx.NInputs() > 0 && ctx.Input(0) != nil {
				in = ctx.Input(0)
			}
			PutText(ctx, string(f.Format(in, src, nil)), dst)
		},
	}
	from = &Rule{
		From:  varchar,
		To:    f,
		Const: Immutable,
		Fn: func(ctx *types.ExecContext, src types.ValueSource, dst types.ValueTarget) {
			out := ctx.Output()
			if out == nil {
				out = f.DefaultInstance()
			}
			text := src.Text()
			v := types.NewValue(dst.Kind())
			err := f.Parse(out, text, v)
			switch {
			case err == nil:
			case errors.Is(err, types.ErrClamped):
				Warn(ctx, types.WarnOverflow, text, v)
			default:
				types.PutZero(v)
				Warn(ctx, types.WarnInvalid, text, v)
			}
			if dst.Kind() == types.KindString {
				PutText(ctx, v.Text(), dst)
				return
			}
			types.Copy(v, dst)
		},
	}
	return to, from
}
