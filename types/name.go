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

package types

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/dchest/siphash"
	"github.com/google/uuid"
)

// Bundle is a named namespace of related
// type families, such as the built-in types
// of one SQL dialect.
//
// Bundles are compared by ID; the name is
// cosmetic, but must be alphabetic.
type Bundle struct {
	ID   uuid.UUID
	Name string
}

// NewBundle validates name and returns a Bundle.
// The name is normalized to upper case.
func NewBundle(name string, id uuid.UUID) (Bundle, error) {
	if id == uuid.Nil {
		return Bundle{}, fmt.Errorf("bundle %q: nil UUID", name)
	}
	norm, err := normalizeIdent(name, false)
	if err != nil {
		return Bundle{}, fmt.Errorf("bundle name: %w", err)
	}
	return Bundle{ID: id, Name: norm}, nil
}

// MustBundle is like NewBundle, but panics on error.
// The UUID is parsed from its textual form.
func MustBundle(name, id string) Bundle {
	b, err := NewBundle(name, uuid.MustParse(id))
	if err != nil {
		panic(err)
	}
	return b
}

// Equal returns whether b and o name the same bundle.
func (b Bundle) Equal(o Bundle) bool { return b.ID == o.ID }

func (b Bundle) String() string { return b.Name }

// Name is the qualified name of a type family.
type Name struct {
	Bundle Bundle
	Name   string
}

// NameKey is the comparable identity of
// a Name; it is suitable as a map key.
type NameKey struct {
	Bundle uuid.UUID
	Name   string
}

// NewName validates name and returns a Name
// qualified by bundle. The unqualified name
// must be alphabetic (underscores may separate
// words) and is normalized to upper case.
func NewName(bundle Bundle, name string) (Name, error) {
	if bundle.ID == uuid.Nil {
		return Name{}, fmt.Errorf("type %q: bundle has no ID", name)
	}
	norm, err := normalizeIdent(name, true)
	if err != nil {
		return Name{}, fmt.Errorf("type name: %w", err)
	}
	return Name{Bundle: bundle, Name: norm}, nil
}

// MustName is like NewName, but panics on error.
func MustName(bundle Bundle, name string) Name {
	n, err := NewName(bundle, name)
	if err != nil {
		panic(err)
	}
	return n
}

// Key returns the comparable identity of n.
func (n Name) Key() NameKey {
	return NameKey{Bundle: n.Bundle.ID, Name: n.Name}
}

// Equal returns whether n and o are the same name.
func (n Name) Equal(o Name) bool { return n.Key() == o.Key() }

// String returns BUNDLE.NAME.
func (n Name) String() string {
	return n.Bundle.Name + "." + n.Name
}

// Hash returns a stable 64-bit hash of the
// identity of n; it is the same across processes
// and releases as long as the bundle UUID and the
// name do not change.
func (n Name) Hash() uint64 {
	k0 := binary.LittleEndian.Uint64(n.Bundle.ID[:8])
	k1 := binary.LittleEndian.Uint64(n.Bundle.ID[8:])
	return siphash.Hash(k0, k1, []byte(n.Name))
}

func normalizeIdent(s string, underscore bool) (string, error) {
	if s == "" {
		return "", fmt.Errorf("empty identifier")
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c == '_' && underscore && i > 0 && i < len(s)-1 && s[i-1] != '_':
		default:
			return "", fmt.Errorf("identifier %q is not alphabetic", s)
		}
	}
	return strings.ToUpper(s), nil
}
