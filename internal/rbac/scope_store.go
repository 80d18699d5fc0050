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

// CreateScope writes one Scope definition row, after verifying the parent
// resource exists. Fails with NotFound, not AlreadyExists, if the resource
// is absent.
func (r *Repository) CreateScope(ctx context.Context, resource, scope string) (ScopeDef, error) {
	ctx, span := r.tracer.Start(ctx, "rbac.CreateScope")
	defer span.End()

	resResult, normResource := r.resourceValidator.Validate(resource)
	if !resResult.IsValid {
		return ScopeDef{}, invalidInputf("invalid resource name: %s", resResult.Reason)
	}
	scopeResult, normScope := r.scopeValidator.Validate(scope)
	if !scopeResult.IsValid {
		return ScopeDef{}, invalidInputf("invalid scope name: %s", scopeResult.Reason)
	}

	if err := r.requireResourceExists(ctx, normResource); err != nil {
		return ScopeDef{}, err
	}

	created, err := r.gw.PutIfNotExists(ctx, scopeDefRow(normResource, normScope))
	if err != nil {
		return ScopeDef{}, err
	}
	if !created {
		r.audit.Log(ctx, AuditEvent{Type: AuditScopeCreated, ResourceName: normResource, ScopeName: normScope, Result: "already_exists"})
		return ScopeDef{}, alreadyExistsf("scope %q already exists on resource %q", normScope, normResource)
	}

	r.audit.Log(ctx, AuditEvent{Type: AuditScopeCreated, ResourceName: normResource, ScopeName: normScope, Result: "success"})
	return ScopeDef{ResourceName: normResource, ScopeName: normScope}, nil
}

// GetScope returns (resourceName, scopeName) for a live scope definition.
func (r *Repository) GetScope(ctx context.Context, resource, scope string) (ScopeDef, error) {
	ctx, span := r.tracer.Start(ctx, "rbac.GetScope")
	defer span.End()

	resResult, normResource := r.resourceValidator.Validate(resource)
	if !resResult.IsValid {
		return ScopeDef{}, invalidInputf("invalid resource name: %s", resResult.Reason)
	}
	scopeResult, normScope := r.scopeValidator.Validate(scope)
	if !scopeResult.IsValid {
		return ScopeDef{}, invalidInputf("invalid scope name: %s", scopeResult.Reason)
	}

	item, err := r.gw.GetItem(ctx, keyOf(scopeDefRow(normResource, normScope)))
	if err != nil {
		return ScopeDef{}, err
	}
	if item == nil {
		return ScopeDef{}, notFoundf("scope %q not found on resource %q", normScope, normResource)
	}

	return ScopeDef{ResourceName: normResource, ScopeName: normScope}, nil
}

// scopeExists reports whether scope is a live definition of resource,
// without allocating a ScopeDef. Used by the assignment prerequisite checks
// and by GetPrincipalAccess.
func (r *Repository) scopeExists(ctx context.Context, normResource, normScope string) (bool, error) {
	item, err := r.gw.GetItem(ctx, keyOf(scopeDefRow(normResource, normScope)))
	if err != nil {
		return false, err
	}
	return item != nil, nil
}
