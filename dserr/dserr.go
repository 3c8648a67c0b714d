/*
 * Licensed to the Apache Software Foundation (ASF) under one or more
 * contributor license agreements.  See the NOTICE file distributed with
 * this work for additional information regarding copyright ownership.
 * The ASF licenses this file to You under the Apache License, Version 2.0
 * (the "License"); you may not use this file except in compliance with
 * the License.  You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package dserr provides the two error kinds shared by theta and hll:
// InvalidArgument for bad input, and IllegalState for an operation that
// would violate an internal invariant. Both are synchronous and terminal;
// callers should not retry.
package dserr

import "fmt"

// Kind classifies an Error.
type Kind int

const (
	// InvalidArgument covers bad configuration, corrupt or truncated
	// buffers, wrong serial version/type/family, seed mismatch, and
	// declared-vs-walked count mismatches.
	InvalidArgument Kind = iota
	// IllegalState covers violations of an internal invariant that
	// indicate a bug rather than bad input, e.g. numAtCurMin underflow
	// or a non-monotonic HIP update.
	IllegalState
)

func (k Kind) String() string {
	switch k {
	case InvalidArgument:
		return "invalid argument"
	case IllegalState:
		return "illegal state"
	default:
		return "unknown error kind"
	}
}

// Error is the concrete error type returned by this module's packages.
type Error struct {
	Kind Kind
	Op   string // e.g. "theta.Intersection", "hll.Sketch.Update"
	Msg  string
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Msg)
}

// Is makes errors.Is match any *Error target of the same Kind, whatever its
// Op and Msg; a target that is not an *Error never matches.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

// New constructs an *Error with the given kind, operation, and formatted message.
func New(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// InvalidArg is shorthand for New(InvalidArgument, op, format, args...).
func InvalidArg(op, format string, args ...any) *Error {
	return New(InvalidArgument, op, format, args...)
}

// IllegalStateErr is shorthand for New(IllegalState, op, format, args...).
func IllegalStateErr(op, format string, args ...any) *Error {
	return New(IllegalState, op, format, args...)
}

// IsInvalidArgument reports whether err is a *Error of kind InvalidArgument.
func IsInvalidArgument(err error) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == InvalidArgument
}

// IsIllegalState reports whether err is a *Error of kind IllegalState.
func IsIllegalState(err error) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == IllegalState
}
