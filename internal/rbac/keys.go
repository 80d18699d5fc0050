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

// Key codec. Maps every stored row to a (PartitionKey, SortKey) pair such
// that one query with PartitionKey == X AND SortKey BEGINS_WITH prefix
// yields exactly the rows of one logical kind. One constructor per row kind
// emits the pair; no shared base type is needed.
package rbac

import "strings"

// Marker prefixes for partition and sort keys. Every marker is followed by a
// "#" before any variable component, which is what makes BEGINS_WITH queries
// unambiguous: ROLE# and ROLEASSIGNMENT# diverge at the character immediately
// following the shared "ROLE" substring ('#' vs 'A'), so neither can ever
// match the other's prefix query. Validated names may not contain "#"
// (validator.go), so no user-supplied name can forge a marker boundary.
const (
	markerResource        = "RESOURCE"
	markerScope           = "SCOPE"
	markerRole            = "ROLE"
	markerScopeAssignment = "SCOPEASSIGNMENT"
	markerRoleAssignment  = "ROLEASSIGNMENT"
	markerPrincipal       = "PRINCIPAL"

	sentinelResource = "RESOURCE"
)

// row is the wire shape of every item in the table. Every stored row
// materializes its original component fields as separate attributes so that
// parsing a row never requires splitting the sort key.
type row struct {
	PK string `dynamodbav:"pk"`
	SK string `dynamodbav:"sk"`

	ResourceName string `dynamodbav:"_resourceName,omitempty"`
	ScopeName    string `dynamodbav:"_scopeName,omitempty"`
	RoleName     string `dynamodbav:"_roleName,omitempty"`
	PrincipalID  string `dynamodbav:"_principalId,omitempty"`
}

func join(parts ...string) string {
	return strings.Join(parts, "#")
}

// --- Resource / Scope / Role definition keys ---

func resourcePartition(resource string) string {
	return join(markerResource, resource)
}

func resourceDefRow(resource string) row {
	return row{
		PK:           resourcePartition(resource),
		SK:           sentinelResource,
		ResourceName: resource,
	}
}

func scopeDefRow(resource, scope string) row {
	return row{
		PK:           resourcePartition(resource),
		SK:           join(markerScope, scope),
		ResourceName: resource,
		ScopeName:    scope,
	}
}

func roleDefRow(resource, role string) row {
	return row{
		PK:           resourcePartition(resource),
		SK:           join(markerRole, role),
		ResourceName: resource,
		RoleName:     role,
	}
}

func scopeDefPrefix() string { return markerScope + "#" }
func roleDefPrefix() string  { return markerRole + "#" }

// --- ScopeAssignment: dual index rows for (resource, scope, principal) ---

func scopeAssignmentByPrincipalRow(resource, scope, principal string) row {
	return row{
		PK:           join(markerPrincipal, principal),
		SK:           join(markerScopeAssignment, resource, scope),
		ResourceName: resource,
		ScopeName:    scope,
		PrincipalID:  principal,
	}
}

func scopeAssignmentByScopeRow(resource, scope, principal string) row {
	return row{
		PK:           resourcePartition(resource),
		SK:           join(markerScopeAssignment, scope, principal),
		ResourceName: resource,
		ScopeName:    scope,
		PrincipalID:  principal,
	}
}

func scopeAssignmentByPrincipalPrefix(resource string) string {
	return join(markerScopeAssignment, resource) + "#"
}

func scopeAssignmentAnyPrefix() string {
	return markerScopeAssignment + "#"
}

func scopeAssignmentByScopePrefix(scope string) string {
	return join(markerScopeAssignment, scope) + "#"
}

func scopeAssignmentPartitionByPrincipal(principal string) string {
	return join(markerPrincipal, principal)
}

// --- RoleAssignment: dual index rows for (resource, role, principal) ---

func roleAssignmentByPrincipalRow(resource, role, principal string) row {
	return row{
		PK:           join(markerPrincipal, principal),
		SK:           join(markerRoleAssignment, resource, role),
		ResourceName: resource,
		RoleName:     role,
		PrincipalID:  principal,
	}
}

func roleAssignmentByRoleRow(resource, role, principal string) row {
	return row{
		PK:           resourcePartition(resource),
		SK:           join(markerRoleAssignment, role, principal),
		ResourceName: resource,
		RoleName:     role,
		PrincipalID:  principal,
	}
}

func roleAssignmentByPrincipalPrefix(resource string) string {
	return join(markerRoleAssignment, resource) + "#"
}

func roleAssignmentByRolePrefix(role string) string {
	return join(markerRoleAssignment, role) + "#"
}

func roleAssignmentAnyPrefix() string {
	return markerRoleAssignment + "#"
}
