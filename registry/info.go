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

package registry

import (
	"encoding/hex"
	"encoding/json"

	"github.com/SnellerInc/sqltypes/cast"
	"github.com/SnellerInc/sqltypes/types"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/exp/slices"
)

// TypeInfo describes a family for
// the information schema.
type TypeInfo struct {
	// ID is the stable TYPE_ID of the family.
	ID         uint64            `json:"id"`
	Bundle     string            `json:"bundle"`
	BundleID   string            `json:"bundle_id"`
	Name       string            `json:"name"`
	Kind       string            `json:"kind"`
	Category   string            `json:"category"`
	Size       int               `json:"size"`
	Attributes []types.Attribute `json:"attributes,omitempty"`
	Indexable  bool              `json:"indexable"`
	Internal   int               `json:"internal_version"`
	Serialized int               `json:"serialization_version"`
}

// CastInfo describes one declared
// conversion. Exactly one of a rule
// (From, To) or a Path is described.
type CastInfo struct {
	From      string   `json:"from"`
	To        string   `json:"to"`
	Path      []string `json:"path,omitempty"`
	Constness string   `json:"constness"`
	Strong    bool     `json:"strong"`
	Cost      int      `json:"cost,omitempty"`
}

// OverloadInfo describes one overload.
type OverloadInfo struct {
	ID        string   `json:"id"`
	Display   string   `json:"display"`
	Names     []string `json:"names"`
	Signature string   `json:"signature"`
	Aggregate bool     `json:"aggregate,omitempty"`
	NullSafe  bool     `json:"null_safe,omitempty"`
}

// TypeInfos lists the registered families
// ordered by bundle and name.
func (r *Registry) TypeInfos() []TypeInfo {
	out := make([]TypeInfo, 0, len(r.families))
	for _, f := range r.families {
		n := f.Name()
		out = append(out, TypeInfo{
			ID:         n.Hash(),
			Bundle:     n.Bundle.Name,
			BundleID:   n.Bundle.ID.String(),
			Name:       n.Name,
			Kind:       f.Kind().String(),
			Category:   string(f.Category()),
			Size:       f.Size(),
			Attributes: f.Attributes(),
			Indexable:  f.Indexable(),
			Internal:   f.InternalVersion(),
			Serialized: f.SerializationVersion(),
		})
	}
	slices.SortFunc(out, func(a, b TypeInfo) bool {
		if a.Bundle != b.Bundle {
			return a.Bundle < b.Bundle
		}
		return a.Name < b.Name
	})
	return out
}

// CastInfos lists the declared rules
// followed by the declared paths.
func (r *Registry) CastInfos() []CastInfo {
	var out []CastInfo
	for _, rule := range r.graph.Rules() {
		ci := CastInfo{
			From:      rule.From.Name().String(),
			To:        rule.To.Name().String(),
			Constness: rule.Const.String(),
		}
		ci.Cost, ci.Strong = r.graph.StrongCost(rule.From, rule.To)
		out = append(out, ci)
	}
	for _, p := range r.graph.Paths() {
		from, to := p[0], p[len(p)-1]
		ci := CastInfo{
			From:      from.Name().String(),
			To:        to.Name().String(),
			Constness: r.pathConstness(p).String(),
		}
		for _, f := range p {
			ci.Path = append(ci.Path, f.Name().String())
		}
		if l, ok := r.graph.Lookup(from, to); ok && l.Rule == nil {
			ci.Cost, ci.Strong = r.graph.StrongCost(from, to)
		}
		out = append(out, ci)
	}
	return out
}

func (r *Registry) pathConstness(p cast.Path) cast.Constness {
	c := cast.Immutable
	for i := 0; i+1 < len(p); i++ {
		if l, ok := r.graph.Lookup(p[i], p[i+1]); ok && l.Rule != nil && l.Rule.Const > c {
			c = l.Rule.Const
		}
	}
	return c
}

// OverloadInfos lists the registered
// overloads ordered by ID.
func (r *Registry) OverloadInfos() []OverloadInfo {
	all := r.overloads.All()
	out := make([]OverloadInfo, 0, len(all))
	for _, o := range all {
		out = append(out, OverloadInfo{
			ID:        o.ID,
			Display:   o.Display,
			Names:     slices.Clone(o.Names),
			Signature: o.String(),
			Aggregate: o.IsAggregate(),
			NullSafe:  o.NullSafe,
		})
	}
	slices.SortFunc(out, func(a, b OverloadInfo) bool {
		return a.ID < b.ID
	})
	return out
}

// Fingerprint returns a hex digest of the
// families, casts, overloads, collations and
// key limits known to r. Registries with equal
// fingerprints plan and encode identically.
func (r *Registry) Fingerprint() string {
	cat := struct {
		Types     []TypeInfo        `json:"types"`
		Casts     []CastInfo        `json:"casts"`
		Overloads []OverloadInfo    `json:"overloads"`
		Coll      []CollationConfig `json:"collations"`
		MaxSeg    int               `json:"max_key_segment"`
		MaxKey    int               `json:"max_key_size"`
	}{
		Types:     r.TypeInfos(),
		Casts:     r.CastInfos(),
		Overloads: r.OverloadInfos(),
		Coll:      r.cfg.Collations,
		MaxSeg:    r.codec.MaxSegment(),
		MaxKey:    r.codec.MaxKey(),
	}
	buf, err := json.Marshal(&cat)
	if err != nil {
		panic(err)
	}
	sum := blake2b.Sum256(buf)
	return hex.EncodeToString(sum[:])
}
