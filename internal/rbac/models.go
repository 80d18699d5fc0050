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

// Resource is the protected asset at the top of the containment hierarchy.
// Unique by ResourceName; immutable after creation.
type Resource struct {
	ResourceName string   `json:"resourceName"`
	ScopeNames   []string `json:"scopeNames"`
	RoleNames    []string `json:"roleNames"`
}

// ScopeDef is a named authorization boundary within a resource.
type ScopeDef struct {
	ResourceName string `json:"resourceName"`
	ScopeName    string `json:"scopeName"`
}

// RoleDef is a named permission label within a resource.
type RoleDef struct {
	ResourceName string `json:"resourceName"`
	RoleName     string `json:"roleName"`
}

// PrincipalAccess is the computed, never-stored result of GetPrincipalAccess:
// the set of scopes and set of roles a principal currently has on a
// resource, with the scope-gating rule applied.
type PrincipalAccess struct {
	PrincipalID  string   `json:"principalId"`
	ResourceName string   `json:"resourceName"`
	ScopeNames   []string `json:"scopeNames"`
	RoleNames    []string `json:"roleNames"`
}
