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

import "strings"

// DefaultScopeName is the canonical reserved scope name:
// GetPrincipalAccess with DefaultScopeName returns exactly the same result
// as the call with no scope at all, skipping per-scope filtering and
// existence checks.
const DefaultScopeName = "default"

// maxNameLength bounds a validated name; chosen to keep names well within
// DynamoDB's key-length limits once prefixed by a marker.
const maxNameLength = 512

// ValidationResult reports whether a raw name was accepted.
type ValidationResult struct {
	IsValid bool
	Reason  string
}

// NameValidator normalizes and validates a raw, caller-supplied name for one
// name class (resource, scope, or role). The repository treats
// result.IsValid == false as InvalidInput and uses normalized for all
// storage keys and comparisons, so two raw names that normalize identically
// address the same entity.
type NameValidator interface {
	Validate(raw string) (result ValidationResult, normalized string)
	// IsDefault identifies the reserved default scope name, which
	// short-circuits scope existence checks in GetPrincipalAccess.
	IsDefault(normalized string) bool
}

// DefaultValidator is a conservative NameValidator: it lower-cases and trims
// the raw input, rejects empty or overlong names, and rejects control
// characters and the literal "#" character (which the Key Codec uses as a
// component separator and which would otherwise let a crafted name collide
// with a marker boundary).
type DefaultValidator struct{}

var _ NameValidator = DefaultValidator{}

func (DefaultValidator) Validate(raw string) (ValidationResult, string) {
	normalized := strings.ToLower(strings.TrimSpace(raw))

	if normalized == "" {
		return ValidationResult{IsValid: false, Reason: "name must not be empty"}, ""
	}
	if len(normalized) > maxNameLength {
		return ValidationResult{IsValid: false, Reason: "name exceeds maximum length"}, ""
	}
	for _, r := range normalized {
		if r == '#' {
			return ValidationResult{IsValid: false, Reason: "name must not contain '#'"}, ""
		}
		if r < 0x20 || r == 0x7f {
			return ValidationResult{IsValid: false, Reason: "name must not contain control characters"}, ""
		}
	}

	return ValidationResult{IsValid: true}, normalized
}

func (DefaultValidator) IsDefault(normalized string) bool {
	return normalized == DefaultScopeName
}
