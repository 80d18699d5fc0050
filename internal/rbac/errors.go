// Copyright 2026 The OpenTrusty Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package rbac

import "fmt"

// Kind classifies an error returned by the repository so that a transport
// layer can map it to a status code without string matching.
type Kind string

const (
	// KindInvalidInput marks a name that failed validation.
	KindInvalidInput Kind = "invalid_input"
	// KindNotFound marks a missing definition or assignment prerequisite.
	KindNotFound Kind = "not_found"
	// KindAlreadyExists marks a conditional create that collided with an
	// existing definition row.
	KindAlreadyExists Kind = "already_exists"
	// KindTransient marks a retryable storage error (throttling, timeout,
	// connection failure).
	KindTransient Kind = "transient"
	// KindInternal marks an unexpected store response shape or codec
	// parse failure. Not retryable; indicates a bug.
	KindInternal Kind = "internal"
)

// Error is the error type returned by every Repository operation.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is allows errors.Is(err, rbac.ErrNotFound) style checks against the kind
// sentinels declared below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Cause != nil {
		return false
	}
	return e.Kind == t.Kind
}

// Sentinel kind markers usable with errors.Is(err, rbac.ErrNotFound).
var (
	ErrInvalidInput  = &Error{Kind: KindInvalidInput}
	ErrNotFound      = &Error{Kind: KindNotFound}
	ErrAlreadyExists = &Error{Kind: KindAlreadyExists}
	ErrTransient     = &Error{Kind: KindTransient}
	ErrInternal      = &Error{Kind: KindInternal}
)

func newError(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

func invalidInputf(format string, args ...any) *Error {
	return newError(KindInvalidInput, fmt.Sprintf(format, args...), nil)
}

func notFoundf(format string, args ...any) *Error {
	return newError(KindNotFound, fmt.Sprintf(format, args...), nil)
}

func alreadyExistsf(format string, args ...any) *Error {
	return newError(KindAlreadyExists, fmt.Sprintf(format, args...), nil)
}

func wrapTransient(cause error, message string) *Error {
	return newError(KindTransient, message, cause)
}

func wrapInternal(cause error, message string) *Error {
	return newError(KindInternal, message, cause)
}

// KindOf returns the Kind of err if it is (or wraps) an *Error, and
// KindInternal otherwise — a storage or codec bug surfaced from somewhere
// that didn't go through the gateway's error translation.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if ok := asError(err, &e); ok {
		return e.Kind
	}
	return KindInternal
}

func asError(err error, target **Error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
