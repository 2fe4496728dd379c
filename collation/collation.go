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

// Package collation provides the collation
// authorities used to order text values.
//
// Collation 0 is always the binary (UTF-8 byte
// order) collation; additional locale-aware
// collations are backed by golang.org/x/text/collate
// and are registered in a Set at startup.
package collation

import (
	"fmt"
	"strings"
	"sync"

	"github.com/SnellerInc/sqltypes/types"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// BinaryName is the name of the binary collation.
const BinaryName = "ucs_binary"

// Options are the strength options
// of a locale-aware collation.
type Options struct {
	IgnoreCase       bool `json:"ignore_case,omitempty"`
	IgnoreDiacritics bool `json:"ignore_diacritics,omitempty"`
	IgnoreWidth      bool `json:"ignore_width,omitempty"`
	Numeric          bool `json:"numeric,omitempty"`
}

func (o Options) collateOptions() []collate.Option {
	var out []collate.Option
	if o.IgnoreCase {
		out = append(out, collate.IgnoreCase)
	}
	if o.IgnoreDiacritics {
		out = append(out, collate.IgnoreDiacritics)
	}
	if o.IgnoreWidth {
		out = append(out, collate.IgnoreWidth)
	}
	if o.Numeric {
		out = append(out, collate.Numeric)
	}
	return out
}

type binary struct{}

func (binary) Name() string { return BinaryName }
func (binary) ID() int      { return 0 }
func (binary) Binary() bool { return true }

func (binary) AppendKey(dst []byte, s string) []byte {
	return append(dst, s...)
}

func (binary) Compare(a, b string) int {
	return strings.Compare(a, b)
}

// Binary returns the binary collation.
func Binary() types.Collator { return binary{} }

// a *collate.Collator carries iteration state
// and must not be shared between goroutines,
// so each locale collation keeps a pool of them
type entry struct {
	c   *collate.Collator
	buf collate.Buffer
}

type locale struct {
	name string
	id   int
	tag  language.Tag
	opts []collate.Option
	pool sync.Pool
}

func newLocale(name string, id int, tag language.Tag, o Options) *locale {
	l := &locale{name: name, id: id, tag: tag, opts: o.collateOptions()}
	l.pool.New = func() any {
		return &entry{c: collate.New(l.tag, l.opts...)}
	}
	return l
}

func (l *locale) Name() string { return l.name }
func (l *locale) ID() int      { return l.id }
func (l *locale) Binary() bool { return false }

func (l *locale) AppendKey(dst []byte, s string) []byte {
	e := l.pool.Get().(*entry)
	dst = append(dst, e.c.KeyFromString(&e.buf, s)...)
	e.buf.Reset()
	l.pool.Put(e)
	return dst
}

func (l *locale) Compare(a, b string) int {
	e := l.pool.Get().(*entry)
	r := e.c.CompareString(a, b)
	l.pool.Put(e)
	return r
}

// Set is a registry of collations
// addressed by name and by ID.
//
// A Set is populated during startup and is
// read-only (and safe for concurrent use)
// afterwards.
type Set struct {
	byID   []types.Collator
	byName map[string]types.Collator
}

// NewSet returns a Set containing
// only the binary collation.
func NewSet() *Set {
	s := &Set{byName: make(map[string]types.Collator)}
	s.byID = append(s.byID, binary{})
	s.byName[BinaryName] = binary{}
	return s
}

// Add registers a locale-aware collation
// under name and returns it. The collation
// is assigned the next free ID.
func (s *Set) Add(name, loc string, o Options) (types.Collator, error) {
	name = strings.ToLower(name)
	if name == "" {
		return nil, fmt.Errorf("collation has no name")
	}
	if _, ok := s.byName[name]; ok {
		return nil, fmt.Errorf("duplicate collation %q", name)
	}
	tag, err := language.Parse(loc)
	if err != nil {
		return nil, fmt.Errorf("collation %q: %w", name, err)
	}
	c := newLocale(name, len(s.byID), tag, o)
	s.byID = append(s.byID, c)
	s.byName[name] = c
	return c, nil
}

// ByID returns the collation with the
// given ID, or nil if there is none.
func (s *Set) ByID(id int) types.Collator {
	if id < 0 || id >= len(s.byID) {
		return nil
	}
	return s.byID[id]
}

// Lookup returns the collation with the given name.
func (s *Set) Lookup(name string) (types.Collator, bool) {
	c, ok := s.byName[strings.ToLower(name)]
	return c, ok
}

// All returns every collation in ID order.
func (s *Set) All() []types.Collator {
	return append([]types.Collator(nil), s.byID...)
}
