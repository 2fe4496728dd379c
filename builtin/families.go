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

// Package builtin defines the SQL bundle:
// the standard families, the casts between
// them and a representative set of operators.
package builtin

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/SnellerInc/sqltypes/collation"
	"github.com/SnellerInc/sqltypes/date"
	"github.com/SnellerInc/sqltypes/types"
)

// Bundle is the bundle of the built-in families.
var Bundle = types.MustBundle("sql", "3f6c8b1e-2d4a-4c7e-9b5f-6a1d0e8c2b47")

// DefaultLength is the default LENGTH
// of VARCHAR and VARBINARY instances.
const DefaultLength = 255

// attribute positions of VARCHAR
const (
	attrLength    = 0
	attrCollation = 1
)

// Types holds the built-in families.
// Text families resolve their COLLATION
// attribute against the collation set
// supplied to New.
type Types struct {
	Boolean  *types.Family
	TinyInt  *types.Family
	SmallInt *types.Family
	Int      *types.Family
	BigInt   *types.Family
	Year     *types.Family
	Real     *types.Family
	Double   *types.Family
	Varchar  *types.Family
	Binary   *types.Family
	Date     *types.Family
	Time     *types.Family
	DateTime *types.Family

	collations *collation.Set
}

func name(s string) types.Name { return types.MustName(Bundle, s) }

// New creates the built-in families.
func New(c *collation.Set) *Types {
	t := &Types{collations: c}
	numeric := func(n string, k types.Kind) *types.Family {
		return types.MustFamily(types.Def{
			Name:      name(n),
			Kind:      k,
			Category:  types.CategoryNumeric,
			Indexable: true,
		})
	}
	t.Boolean = types.MustFamily(types.Def{
		Name:      name("boolean"),
		Kind:      types.KindBool,
		Indexable: true,
	})
	t.TinyInt = numeric("tinyint", types.KindInt8)
	t.SmallInt = numeric("smallint", types.KindInt16)
	t.Int = numeric("int", types.KindInt32)
	t.BigInt = numeric("bigint", types.KindInt64)
	t.Real = numeric("real", types.KindFloat32)
	t.Double = numeric("double", types.KindFloat64)
	t.Year = types.MustFamily(types.Def{
		Name:      name("year"),
		Kind:      types.KindUint16,
		Category:  types.CategoryDateTime,
		Indexable: true,
		Funcs: types.Funcs{
			Parse:  parseYear,
			Format: formatYear,
		},
	})
	t.Varchar = types.MustFamily(types.Def{
		Name:     name("varchar"),
		Kind:     types.KindString,
		Category: types.CategoryString,
		Attributes: []types.Attribute{
			{Name: "length", Default: DefaultLength},
			{Name: "collation", Default: 0},
		},
		Indexable: true,
		Funcs: types.Funcs{
			Combine:  t.combineText,
			Collator: t.collator,
		},
	})
	t.Binary = types.MustFamily(types.Def{
		Name:     name("varbinary"),
		Kind:     types.KindBytes,
		Category: types.CategoryBinary,
		Attributes: []types.Attribute{
			{Name: "length", Default: DefaultLength},
		},
		Indexable: true,
	})
	t.Date = types.MustFamily(types.Def{
		Name:      name("date"),
		Kind:      types.KindInt32,
		Category:  types.CategoryDateTime,
		Indexable: true,
		Funcs: types.Funcs{
			Parse: func(in *types.Instance, text string, dst types.ValueTarget) error {
				days, ok := date.ParseDate([]byte(text))
				if !ok {
					return fmt.Errorf("invalid DATE %q", text)
				}
				dst.PutInt32(days)
				return nil
			},
			Format: func(in *types.Instance, src types.ValueSource, dst []byte) []byte {
				return date.AppendDate(dst, src.Int32())
			},
		},
	})
	t.Time = types.MustFamily(types.Def{
		Name:      name("time"),
		Kind:      types.KindInt32,
		Category:  types.CategoryDateTime,
		Indexable: true,
		Funcs: types.Funcs{
			Parse: func(in *types.Instance, text string, dst types.ValueTarget) error {
				secs, ok := date.ParseClock([]byte(text))
				if !ok {
					return fmt.Errorf("invalid TIME %q", text)
				}
				dst.PutInt32(secs)
				return nil
			},
			Format: func(in *types.Instance, src types.ValueSource, dst []byte) []byte {
				return date.AppendClock(dst, src.Int32())
			},
		},
	})
	t.DateTime = types.MustFamily(types.Def{
		Name:      name("datetime"),
		Kind:      types.KindInt64,
		Category:  types.CategoryDateTime,
		Indexable: true,
		Funcs: types.Funcs{
			Parse: func(in *types.Instance, text string, dst types.ValueTarget) error {
				secs, ok := date.ParseDateTime([]byte(text))
				if !ok {
					return fmt.Errorf("invalid DATETIME %q", text)
				}
				dst.PutInt64(secs)
				return nil
			},
			Format: func(in *types.Instance, src types.ValueSource, dst []byte) []byte {
				return date.AppendDateTime(dst, src.Int64())
			},
		},
	})
	return t
}

// Families returns every built-in family.
func (t *Types) Families() []*types.Family {
	return []*types.Family{
		t.Boolean, t.TinyInt, t.SmallInt, t.Int, t.BigInt, t.Year,
		t.Real, t.Double, t.Varchar, t.Binary, t.Date, t.Time, t.DateTime,
	}
}

// Lookup returns the built-in family with
// the given (case-insensitive) name.
func (t *Types) Lookup(n string) (*types.Family, bool) {
	for _, f := range t.Families() {
		if strings.EqualFold(f.Name().Name, n) {
			return f, true
		}
	}
	return nil, false
}

// Text returns a VARCHAR instance of the given
// length and the named collation.
func (t *Types) Text(length int, coll string) (*types.Instance, error) {
	c, ok := t.collations.Lookup(coll)
	if !ok {
		return nil, fmt.Errorf("unknown collation %q", coll)
	}
	return t.Varchar.Instance(length, c.ID()), nil
}

func (t *Types) collator(in *types.Instance) types.Collator {
	if t.collations == nil {
		return nil
	}
	return t.collations.ByID(in.Attr(attrCollation))
}

func (t *Types) combineText(mode types.CombineMode, a, b *types.Instance) (*types.Instance, error) {
	if a.Attr(attrCollation) != b.Attr(attrCollation) {
		return nil, fmt.Errorf("cannot combine %s and %s: collations differ", a, b)
	}
	la, lb := a.Attr(attrLength), b.Attr(attrLength)
	n := la
	switch mode {
	case types.CombineConcat:
		n = la + lb
	default:
		if lb > n {
			n = lb
		}
	}
	return t.Varchar.Instance(n, a.Attr(attrCollation)), nil
}

func parseYear(in *types.Instance, text string, dst types.ValueTarget) error {
	y, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid YEAR %q", text)
	}
	if putYear(dst, y) {
		return fmt.Errorf("YEAR %q: %w", text, types.ErrClamped)
	}
	return nil
}

// putYear stores y, clamped to [0, date.MaxYear],
// and reports whether it was clamped.
func putYear(dst types.ValueTarget, y int64) bool {
	switch {
	case y < 0:
		dst.PutUint16(0)
		return true
	case y > date.MaxYear:
		dst.PutUint16(date.MaxYear)
		return true
	}
	dst.PutUint16(uint16(y))
	return false
}

func formatYear(in *types.Instance, src types.ValueSource, dst []byte) []byte {
	y := src.Uint16()
	for d := uint16(1000); d > 1 && y < d; d /= 10 {
		dst = append(dst, '0')
	}
	return strconv.AppendUint(dst, uint64(y), 10)
}
