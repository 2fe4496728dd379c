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

// Package registry assembles the type engine
// at startup: the collation set, the built-in
// families, the cast graph, the overload set
// and the key codec.
//
// A Registry is immutable once New returns
// and may be shared by concurrent readers.
package registry

import (
	"fmt"
	"io"
	"log"

	"github.com/SnellerInc/sqltypes/builtin"
	"github.com/SnellerInc/sqltypes/cast"
	"github.com/SnellerInc/sqltypes/collation"
	"github.com/SnellerInc/sqltypes/keycodec"
	"github.com/SnellerInc/sqltypes/overload"
	"github.com/SnellerInc/sqltypes/types"
)

// Module extends a Registry with the
// families, casts and operators of
// another bundle.
type Module struct {
	Name     string
	Families []*types.Family
	// Casts, if non-nil, declares rules,
	// paths and strong casts. It may refer
	// to built-in families through t.
	Casts func(t *builtin.Types, b *cast.Builder)
	// Overloads, if non-nil, returns the
	// operators the module contributes.
	Overloads func(t *builtin.Types) []*overload.Overload
}

// Option is an optional argument to New.
type Option func(r *Registry)

// WithLogger is an option that can be
// passed to New to have it log diagnostic
// information. If no logger is set,
// nothing is logged.
func WithLogger(l *log.Logger) Option {
	return func(r *Registry) {
		r.logger = l
	}
}

// WithModule is an option that adds
// the contents of m to the registry.
func WithModule(m Module) Option {
	return func(r *Registry) {
		r.modules = append(r.modules, m)
	}
}

// Registry is the assembled type engine.
type Registry struct {
	cfg     Config
	logger  *log.Logger
	modules []Module

	collations *collation.Set
	builtin    *builtin.Types
	families   []*types.Family
	graph      *cast.Graph
	overloads  *overload.Set
	resolver   *overload.Resolver
	codec      *keycodec.Codec
}

// New builds a Registry from cfg. If cfg
// is nil, DefaultConfig is used. Any
// inconsistency in the declared families,
// casts or operators is returned as an error.
func New(cfg *Config, opt ...Option) (*Registry, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.check(); err != nil {
		return nil, err
	}
	r := &Registry{cfg: *cfg}
	for _, o := range opt {
		o(r)
	}
	if r.logger == nil {
		r.logger = log.New(io.Discard, "", 0)
	}

	r.collations = collation.NewSet()
	for _, c := range cfg.Collations {
		if _, err := r.collations.Add(c.Name, c.Locale, c.Options); err != nil {
			return nil, err
		}
		r.logger.Printf("collation %s (%s)", c.Name, c.Locale)
	}

	r.builtin = builtin.New(r.collations)
	r.families = append(r.families, r.builtin.Families()...)
	b := &cast.Builder{}
	r.builtin.Casts(b)
	list := r.builtin.Overloads()
	for _, m := range r.modules {
		r.families = append(r.families, m.Families...)
		if m.Casts != nil {
			m.Casts(r.builtin, b)
		}
		if m.Overloads != nil {
			list = append(list, m.Overloads(r.builtin)...)
		}
		r.logger.Printf("module %s: %d families", m.Name, len(m.Families))
	}

	var err error
	r.graph, err = b.Build(r.families)
	if err != nil {
		return nil, err
	}
	r.overloads, err = overload.NewSet(list...)
	if err != nil {
		return nil, err
	}
	r.resolver = overload.NewResolver(r.overloads, r.graph)

	seg, max := cfg.MaxKeySegment, cfg.MaxKeySize
	if seg == 0 {
		seg = keycodec.DefaultMaxSegment
	}
	if max == 0 {
		max = keycodec.DefaultMaxKey
	}
	if seg > max {
		return nil, fmt.Errorf("registry: key segment limit %d exceeds key limit %d", seg, max)
	}
	r.codec = keycodec.New(seg, max)
	r.logger.Printf("registry: %d families, %d rules, %d strong casts, %d overloads",
		len(r.families), len(r.graph.Rules()), len(r.graph.StrongIDs()), len(r.overloads.All()))
	return r, nil
}

// Config returns the configuration
// the registry was built from.
func (r *Registry) Config() Config { return r.cfg }

// Types returns the built-in families.
func (r *Registry) Types() *builtin.Types { return r.builtin }

// Families returns every registered family,
// built-in families first.
func (r *Registry) Families() []*types.Family { return r.families }

// Family returns the family with the given name.
func (r *Registry) Family(n types.Name) (*types.Family, bool) { return r.graph.Family(n) }

// Collations returns the collation set.
func (r *Registry) Collations() *collation.Set { return r.collations }

// Casts returns the cast graph.
func (r *Registry) Casts() *cast.Graph { return r.graph }

// Overloads returns the overload set.
func (r *Registry) Overloads() *overload.Set { return r.overloads }

// Resolver returns the overload resolver.
func (r *Registry) Resolver() *overload.Resolver { return r.resolver }

// Codec returns the key codec.
func (r *Registry) Codec() *keycodec.Codec { return r.codec }
