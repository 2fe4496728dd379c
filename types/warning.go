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

// WarningCode classifies a recoverable
// condition raised during evaluation.
type WarningCode uint8

const (
	// WarnOverflow means a value was out of range
	// for its target and was clamped.
	WarnOverflow WarningCode = iota + 1
	// WarnTruncated means a value was shortened
	// (e.g. a string longer than its VARCHAR length).
	WarnTruncated
	// WarnInvalid means a value could not be
	// converted at all and a default was substituted.
	WarnInvalid
)

func (c WarningCode) String() string {
	switch c {
	case WarnOverflow:
		return "overflow"
	case WarnTruncated:
		return "truncated"
	case WarnInvalid:
		return "invalid"
	}
	return "unknown"
}

// Warning is a non-fatal condition reported
// to the client while execution continues
// with the substituted value.
type Warning struct {
	Code WarningCode
	// Target describes the type that
	// could not hold the attempted value.
	Target string
	// Attempted and Substituted are the display
	// forms of the original and the stored value.
	Attempted   string
	Substituted string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %q stored as %q in %s", w.Code, w.Attempted, w.Substituted, w.Target)
}

// Notifier receives warnings as they are raised.
type Notifier interface {
	Notify(w Warning)
}

// NotifierFunc is a function that implements Notifier.
type NotifierFunc func(w Warning)

func (f NotifierFunc) Notify(w Warning) { f(w) }
