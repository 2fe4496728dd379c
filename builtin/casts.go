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
	"strconv"

	"github.com/SnellerInc/sqltypes/cast"
	"github.com/SnellerInc/sqltypes/date"
	"github.com/SnellerInc/sqltypes/types"
)

const secondsPerDay = 24 * 60 * 60

func (t *Types) integers() []*types.Family {
	return []*types.Family{t.TinyInt, t.SmallInt, t.Int, t.BigInt}
}

func (t *Types) floats() []*types.Family {
	return []*types.Family{t.Real, t.Double}
}

// Casts declares the built-in casts and strong casts
// and makes VARCHAR the text family of b.
func (t *Types) Casts(b *cast.Builder) {
	b.Strings(t.Varchar)

	ints := t.integers()
	for _, from := range ints {
		for _, to := range ints {
			if from != to {
				b.Rule(from, to, cast.Immutable, cast.Integer)
			}
		}
		for _, to := range t.floats() {
			b.Rule(from, to, cast.Immutable, cast.ToFloat)
			b.Rule(to, from, cast.Immutable, cast.FloatToInteger)
		}
		b.Rule(t.Boolean, from, cast.Immutable, cast.Integer)
		b.Rule(from, t.Boolean, cast.Immutable, cast.Integer)
	}
	b.Rule(t.Real, t.Double, cast.Immutable, cast.ToFloat)
	b.Rule(t.Double, t.Real, cast.Immutable, cast.ToFloat)

	b.Rule(t.Year, t.Int, cast.Immutable, cast.Integer)
	b.Rule(t.Int, t.Year, cast.Immutable, intToYear)

	b.Rule(t.Binary, t.Varchar, cast.Immutable, func(ctx *types.ExecContext, src types.ValueSource, dst types.ValueTarget) {
		cast.PutText(ctx, string(src.Bytes()), dst)
	})
	b.Rule(t.Varchar, t.Binary, cast.Immutable, textToBinary)
	b.Rule(t.Varchar, t.Varchar, cast.Immutable, func(ctx *types.ExecContext, src types.ValueSource, dst types.ValueTarget) {
		cast.PutText(ctx, src.Text(), dst)
	})

	b.Rule(t.BigInt, t.Date, cast.Immutable, numberToDate)
	b.Path(t.Int, t.BigInt, t.Date)
	b.Rule(t.Date, t.DateTime, cast.Immutable, func(ctx *types.ExecContext, src types.ValueSource, dst types.ValueTarget) {
		dst.PutInt64(int64(src.Int32()) * secondsPerDay)
	})
	b.Rule(t.DateTime, t.Date, cast.Immutable, func(ctx *types.ExecContext, src types.ValueSource, dst types.ValueTarget) {
		days, _ := date.SplitDateTime(src.Int64())
		dst.PutInt32(days)
	})
	b.Rule(t.DateTime, t.Time, cast.Immutable, func(ctx *types.ExecContext, src types.ValueSource, dst types.ValueTarget) {
		_, clock := date.SplitDateTime(src.Int64())
		dst.PutInt32(clock)
	})

	b.Strong(
		cast.From(t.Varchar, cast.InBundle(Bundle, func(f *types.Family) bool {
			return f != t.Binary
		})),
		cast.To(t.BigInt, cast.Families(t.TinyInt, t.SmallInt, t.Int)),
		cast.To(t.Double, cast.Families(t.TinyInt, t.SmallInt, t.Int, t.BigInt, t.Real)),
		cast.From(t.Date, cast.Families(t.DateTime)),
	)
}

func intToYear(ctx *types.ExecContext, src types.ValueSource, dst types.ValueTarget) {
	y := types.IntOf(src)
	if putYear(dst, y) {
		v := types.NewValue(types.KindUint16)
		putYear(v, y)
		cast.Warn(ctx, types.WarnOverflow, strconv.FormatInt(y, 10), v)
	}
}

// textToBinary stores the bytes of a string,
// truncated to the LENGTH of the output (in bytes).
func textToBinary(ctx *types.ExecContext, src types.ValueSource, dst types.ValueTarget) {
	s := src.Text()
	out := ctx.Output()
	if out == nil || len(s) <= out.Attr(attrLength) {
		dst.PutBytes([]byte(s))
		return
	}
	b := []byte(s[:out.Attr(attrLength)])
	dst.PutBytes(b)
	v := types.NewValue(types.KindBytes)
	v.PutBytes(b)
	cast.Warn(ctx, types.WarnTruncated, s, v)
}

// numberToDate interprets an integer
// written as YYYYMMDD as a date.
func numberToDate(ctx *types.ExecContext, src types.ValueSource, dst types.ValueTarget) {
	n := types.IntOf(src)
	days, ok := date.FromNumber(n)
	dst.PutInt32(days)
	if !ok {
		v := types.NewValue(types.KindInt32)
		v.PutInt32(days)
		cast.Warn(ctx, types.WarnInvalid, strconv.FormatInt(n, 10), v)
	}
}
