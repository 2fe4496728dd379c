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

// Collator is a collation authority for
// text values. Implementations must be safe
// for concurrent use.
type Collator interface {
	// Name is the name of the collation.
	Name() string
	// ID is the small integer stored in the
	// COLLATION attribute of text instances.
	ID() int
	// Binary reports whether the collation
	// orders text by its UTF-8 bytes, in which
	// case the sort key of a string is the
	// string itself.
	Binary() bool
	// AppendKey appends the sort key of s to dst.
	// Sort keys compare (bytewise) the same way
	// that Compare compares their strings.
	AppendKey(dst []byte, s string) []byte
	// Compare compares two strings under
	// the collation.
	Compare(a, b string) int
}

// CollatingTarget is a ValueTarget that can
// accept text together with the collation
// under which it should be ordered.
type CollatingTarget interface {
	ValueTarget
	PutCollated(s string, c Collator)
}
