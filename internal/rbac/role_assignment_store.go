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

// Structurally identical to scope_assignment_store.go with role substituted
// for scope throughout.
package rbac

import (
	"context"
	"sort"
)

// CreateRoleAssignment pre-verifies the resource and role exist, then writes
// both dual-index rows in one batch.
func (r *Repository) CreateRoleAssignment(ctx context.Context, resource, role, principal string) error {
	ctx, span := r.tracer.Start(ctx, "rbac.CreateRoleAssignment")
	defer span.End()

	resResult, normResource := r.resourceValidator.Validate(resource)
	if !resResult.IsValid {
		return invalidInputf("invalid resource name: %s", resResult.Reason)
	}
	roleResult, normRole := r.roleValidator.Validate(role)
	if !roleResult.IsValid {
		return invalidInputf("invalid role name: %s", roleResult.Reason)
	}
	normPrincipal, err := validatePrincipal(principal)
	if err != nil {
		return err
	}

	if err := r.requireResourceExists(ctx, normResource); err != nil {
		return err
	}
	exists, err := r.roleExists(ctx, normResource, normRole)
	if err != nil {
		return err
	}
	if !exists {
		return notFoundf("role %q not found on resource %q", normRole, normResource)
	}

	rows := []row{
		roleAssignmentByPrincipalRow(normResource, normRole, normPrincipal),
		roleAssignmentByRoleRow(normResource, normRole, normPrincipal),
	}
	if err := r.gw.PutBatch(ctx, rows); err != nil {
		return err
	}

	r.audit.Log(ctx, AuditEvent{Type: AuditRoleAssigned, PrincipalID: normPrincipal, ResourceName: normResource, RoleName: normRole, Result: "success"})
	return nil
}

// DeleteRoleAssignment deletes both index rows in one batch. Absence of
// either row is not an error.
func (r *Repository) DeleteRoleAssignment(ctx context.Context, resource, role, principal string) error {
	ctx, span := r.tracer.Start(ctx, "rbac.DeleteRoleAssignment")
	defer span.End()

	resResult, normResource := r.resourceValidator.Validate(resource)
	if !resResult.IsValid {
		return invalidInputf("invalid resource name: %s", resResult.Reason)
	}
	roleResult, normRole := r.roleValidator.Validate(role)
	if !roleResult.IsValid {
		return invalidInputf("invalid role name: %s", roleResult.Reason)
	}
	normPrincipal, err := validatePrincipal(principal)
	if err != nil {
		return err
	}

	keys := []itemKey{
		keyOf(roleAssignmentByPrincipalRow(normResource, normRole, normPrincipal)),
		keyOf(roleAssignmentByRoleRow(normResource, normRole, normPrincipal)),
	}
	if err := r.gw.DeleteBatch(ctx, keys); err != nil {
		return err
	}

	r.audit.Log(ctx, AuditEvent{Type: AuditRoleRevoked, PrincipalID: normPrincipal, ResourceName: normResource, RoleName: normRole, Result: "success"})
	return nil
}

// GetPrincipalsForRole prefix-queries the by-role index on the resource
// partition, returning the sorted principal ids holding role on resource.
func (r *Repository) GetPrincipalsForRole(ctx context.Context, resource, role string) ([]string, error) {
	ctx, span := r.tracer.Start(ctx, "rbac.GetPrincipalsForRole")
	defer span.End()

	resResult, normResource := r.resourceValidator.Validate(resource)
	if !resResult.IsValid {
		return nil, invalidInputf("invalid resource name: %s", resResult.Reason)
	}
	roleResult, normRole := r.roleValidator.Validate(role)
	if !roleResult.IsValid {
		return nil, invalidInputf("invalid role name: %s", roleResult.Reason)
	}

	rows, err := r.gw.Query(ctx, resourcePartition(normResource), roleAssignmentByRolePrefix(normRole))
	if err != nil {
		return nil, err
	}
	principals := make([]string, 0, len(rows))
	for _, row := range rows {
		principals = append(principals, row.PrincipalID)
	}
	sort.Strings(principals)
	return principals, nil
}

// rolesForPrincipal prefix-queries the by-principal index on the
// principal's partition, returning the sorted role names principal holds on
// resource. Internal helper used by GetPrincipalAccess.
func (r *Repository) rolesForPrincipal(ctx context.Context, normPrincipal, normResource string) ([]string, error) {
	rows, err := r.gw.Query(ctx, scopeAssignmentPartitionByPrincipal(normPrincipal), roleAssignmentByPrincipalPrefix(normResource))
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(rows))
	for _, row := range rows {
		names = append(names, row.RoleName)
	}
	sort.Strings(names)
	return names, nil
}

// deleteRoleAssignmentsByPrincipal discovers every RoleAssignment held by
// principal and deletes the union of forward and mirror rows in one batch.
func (r *Repository) deleteRoleAssignmentsByPrincipal(ctx context.Context, normPrincipal string) error {
	rows, err := r.gw.Query(ctx, scopeAssignmentPartitionByPrincipal(normPrincipal), roleAssignmentAnyPrefix())
	if err != nil {
		return err
	}
	return r.deleteRoleAssignmentPairs(ctx, rows)
}

// deleteRoleAssignmentsByResource discovers every RoleAssignment on
// resource and deletes the union of forward and mirror rows in one batch.
func (r *Repository) deleteRoleAssignmentsByResource(ctx context.Context, normResource string) error {
	rows, err := r.gw.Query(ctx, resourcePartition(normResource), roleAssignmentAnyPrefix())
	if err != nil {
		return err
	}
	return r.deleteRoleAssignmentPairs(ctx, rows)
}

// deleteRoleAssignmentsByRole discovers every RoleAssignment on
// (resource, role) and deletes the union of forward and mirror rows in one
// batch.
func (r *Repository) deleteRoleAssignmentsByRole(ctx context.Context, normResource, normRole string) error {
	rows, err := r.gw.Query(ctx, resourcePartition(normResource), roleAssignmentByRolePrefix(normRole))
	if err != nil {
		return err
	}
	return r.deleteRoleAssignmentPairs(ctx, rows)
}

func (r *Repository) deleteRoleAssignmentPairs(ctx context.Context, hits []row) error {
	if len(hits) == 0 {
		return nil
	}
	keys := make([]itemKey, 0, len(hits)*2)
	for _, h := range hits {
		keys = append(keys,
			keyOf(roleAssignmentByPrincipalRow(h.ResourceName, h.RoleName, h.PrincipalID)),
			keyOf(roleAssignmentByRoleRow(h.ResourceName, h.RoleName, h.PrincipalID)),
		)
	}
	return r.gw.DeleteBatch(ctx, keys)
}
