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

import "fmt"

type slot struct {
	ok bool
	v  any
}

// PrepContext is the evaluation context of one
// expression node, built once at plan time.
// Values stored in its slots (constant-folded
// results, compiled patterns, ...) are shared by
// every ExecContext created from it.
type PrepContext struct {
	inputs []*Instance
	output *Instance
	slots  []slot
}

// NewPrepContext returns a context for an operator
// with the given input and output instances and
// nslots cache slots.
func NewPrepContext(inputs []*Instance, output *Instance, nslots int) *PrepContext {
	if nslots < 0 {
		panic("types.NewPrepContext: negative slot count")
	}
	return &PrepContext{
		inputs: inputs,
		output: output,
		slots:  make([]slot, nslots),
	}
}

// NInputs returns the number of inputs.
func (p *PrepContext) NInputs() int { return len(p.inputs) }

// Input returns the i-th input instance.
func (p *PrepContext) Input(i int) *Instance { return p.inputs[i] }

// Output returns the output instance.
func (p *PrepContext) Output() *Instance { return p.output }

// Slots returns the number of cache slots.
func (p *PrepContext) Slots() int { return len(p.slots) }

func checkSlot(i, n int) {
	if i < 0 || i >= n {
		panic(fmt.Sprintf("cache slot %d out of range [0, %d)", i, n))
	}
}

// Set stores v in prepare-time slot i.
func (p *PrepContext) Set(i int, v any) {
	checkSlot(i, len(p.slots))
	p.slots[i] = slot{ok: true, v: v}
}

// Get returns the contents of prepare-time slot i.
func (p *PrepContext) Get(i int) (any, bool) {
	checkSlot(i, len(p.slots))
	s := p.slots[i]
	return s.v, s.ok
}

// Has returns whether prepare-time slot i is set.
func (p *PrepContext) Has(i int) bool {
	_, ok := p.Get(i)
	return ok
}

// NewExecContext returns a fresh execution
// context sharing the prepare-time slots of p.
// Warnings raised in the context are recorded
// and, if n is non-nil, forwarded to n.
func (p *PrepContext) NewExecContext(n Notifier) *ExecContext {
	return &ExecContext{
		prep:     p,
		inputs:   p.inputs,
		output:   p.output,
		slots:    make([]slot, len(p.slots)),
		notifier: n,
	}
}

// ExecContext is the evaluation context of
// one call (typically one row). It is owned by
// a single goroutine.
type ExecContext struct {
	prep     *PrepContext
	inputs   []*Instance
	output   *Instance
	slots    []slot
	notifier Notifier
	warnings []Warning
	parent   *ExecContext
}

// NInputs returns the number of inputs.
func (e *ExecContext) NInputs() int { return len(e.inputs) }

// Input returns the i-th input instance.
func (e *ExecContext) Input(i int) *Instance { return e.inputs[i] }

// Output returns the output instance.
func (e *ExecContext) Output() *Instance { return e.output }

// Set stores v in execute-time slot i.
// Slot i must not be defined at prepare time;
// shadowing a prepare-time value is a logic
// error and panics.
func (e *ExecContext) Set(i int, v any) {
	checkSlot(i, len(e.slots))
	if e.prep.Has(i) {
		panic(fmt.Sprintf("cache slot %d is already defined at prepare time", i))
	}
	e.slots[i] = slot{ok: true, v: v}
}

// Get returns the contents of slot i, looking
// at the execute-time slot first and falling
// back to the prepare-time slot.
func (e *ExecContext) Get(i int) (any, bool) {
	checkSlot(i, len(e.slots))
	if s := e.slots[i]; s.ok {
		return s.v, true
	}
	return e.prep.Get(i)
}

// Warn records a warning and forwards it
// to the context's notifier.
func (e *ExecContext) Warn(w Warning) {
	if e.parent != nil {
		e.parent.Warn(w)
		return
	}
	e.warnings = append(e.warnings, w)
	if e.notifier != nil {
		e.notifier.Notify(w)
	}
}

// Warnings returns the warnings raised so far.
func (e *ExecContext) Warnings() []Warning {
	if e.parent != nil {
		return e.parent.Warnings()
	}
	return e.warnings
}

// Derive returns a context for a nested call
// (such as one hop of a multi-step cast) with
// its own instances and no cache slots.
// Warnings raised in the derived context are
// reported through e.
func (e *ExecContext) Derive(inputs []*Instance, output *Instance) *ExecContext {
	d := NewPrepContext(inputs, output, 0).NewExecContext(nil)
	d.parent = e
	return d
}

// Cached returns the value of slot i if it is
// defined at either prepare or execute time;
// otherwise it calls compute and stores the
// result in the execute-time slot.
func Cached[T any](e *ExecContext, i int, compute func() T) T {
	if v, ok := e.Get(i); ok {
		return v.(T)
	}
	v := compute()
	e.Set(i, v)
	return v
}
