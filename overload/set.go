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

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Set is a registry of overloads keyed by their
// (case-folded) names. A Set is populated at
// startup and is read-only afterwards.
type Set struct {
	byName map[string][]*Overload
	byID   map[string]*Overload
	all    []*Overload
}

// NewSet returns a Set holding the given overloads.
func NewSet(list ...*Overload) (*Set, error) {
	s := &Set{
		byName: make(map[string][]*Overload),
		byID:   make(map[string]*Overload),
	}
	for _, o := range list {
		if err := s.Add(o); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Add validates o and registers it
// under each of its names.
func (s *Set) Add(o *Overload) error {
	if err := o.Validate(); err != nil {
		return err
	}
	if s.byID[o.ID] != nil {
		return fmt.Errorf("duplicate overload id %s", o.ID)
	}
	seen := make(map[string]bool, len(o.Names))
	for _, n := range o.Names {
		key := strings.ToLower(n)
		if key == "" {
			return fmt.Errorf("overload %s: empty name", o.ID)
		}
		if seen[key] {
			return fmt.Errorf("overload %s: duplicate name %s", o.ID, n)
		}
		seen[key] = true
	}
	for key := range seen {
		s.byName[key] = append(s.byName[key], o)
	}
	s.byID[o.ID] = o
	s.all = append(s.all, o)
	return nil
}

// Lookup returns the overloads registered
// under name, in registration order.
func (s *Set) Lookup(name string) []*Overload {
	return s.byName[strings.ToLower(name)]
}

// ByID returns the overload with the given id.
func (s *Set) ByID(id string) (*Overload, bool) {
	o, ok := s.byID[id]
	return o, ok
}

// Names returns every registered name, sorted.
func (s *Set) Names() []string {
	names := maps.Keys(s.byName)
	slices.Sort(names)
	return names
}

// All returns every overload in registration order.
func (s *Set) All() []*Overload {
	return slices.Clone(s.all)
}
