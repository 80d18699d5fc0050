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

import "context"

// CreateRole writes one Role definition row, after verifying the parent
// resource exists. Fails with NotFound, not AlreadyExists, if the resource
// is absent.
func (r *Repository) CreateRole(ctx context.Context, resource, role string) (RoleDef, error) {
	ctx, span := r.tracer.Start(ctx, "rbac.CreateRole")
	defer span.End()

	resResult, normResource := r.resourceValidator.Validate(resource)
	if !resResult.IsValid {
		return RoleDef{}, invalidInputf("invalid resource name: %s", resResult.Reason)
	}
	roleResult, normRole := r.roleValidator.Validate(role)
	if !roleResult.IsValid {
		return RoleDef{}, invalidInputf("invalid role name: %s", roleResult.Reason)
	}

	if err := r.requireResourceExists(ctx, normResource); err != nil {
		return RoleDef{}, err
	}

	created, err := r.gw.PutIfNotExists(ctx, roleDefRow(normResource, normRole))
	if err != nil {
		return RoleDef{}, err
	}
	if !created {
		r.audit.Log(ctx, AuditEvent{Type: AuditRoleCreated, ResourceName: normResource, RoleName: normRole, Result: "already_exists"})
		return RoleDef{}, alreadyExistsf("role %q already exists on resource %q", normRole, normResource)
	}

	r.audit.Log(ctx, AuditEvent{Type: AuditRoleCreated, ResourceName: normResource, RoleName: normRole, Result: "success"})
	return RoleDef{ResourceName: normResource, RoleName: normRole}, nil
}

// GetRole returns (resourceName, roleName) for a live role definition.
func (r *Repository) GetRole(ctx context.Context, resource, role string) (RoleDef, error) {
	ctx, span := r.tracer.Start(ctx, "rbac.GetRole")
	defer span.End()

	resResult, normResource := r.resourceValidator.Validate(resource)
	if !resResult.IsValid {
		return RoleDef{}, invalidInputf("invalid resource name: %s", resResult.Reason)
	}
	roleResult, normRole := r.roleValidator.Validate(role)
	if !roleResult.IsValid {
		return RoleDef{}, invalidInputf("invalid role name: %s", roleResult.Reason)
	}

	item, err := r.gw.GetItem(ctx, keyOf(roleDefRow(normResource, normRole)))
	if err != nil {
		return RoleDef{}, err
	}
	if item == nil {
		return RoleDef{}, notFoundf("role %q not found on resource %q", normRole, normResource)
	}

	return RoleDef{ResourceName: normResource, RoleName: normRole}, nil
}

// roleExists reports whether role is a live definition of resource.
func (r *Repository) roleExists(ctx context.Context, normResource, normRole string) (bool, error) {
	item, err := r.gw.GetItem(ctx, keyOf(roleDefRow(normResource, normRole)))
	if err != nil {
		return false, err
	}
	return item != nil, nil
}
