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

// Package types defines the identity and
// shape of SQL data types.
//
// A Family is the immutable definition of a
// type (INT, VARCHAR, ...), named by a Name
// that is qualified by a Bundle. An Instance
// binds a Family to concrete attribute values
// and a nullability flag; Instances are what
// columns, expressions and casts carry around.
//
// Values move between containers through the
// ValueSource and ValueTarget interfaces, and
// per-call evaluation state lives in PrepContext
// (built once at plan time) and ExecContext
// (built once per row or call).
//
// Everything except Instance, Value and the
// contexts is built once at startup and is
// safe for concurrent readers afterwards.
package types
