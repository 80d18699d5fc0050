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

import (
	"context"
	"sort"
)

// CreateResource writes one Resource definition row. Fails with
// AlreadyExists if the row already exists.
func (r *Repository) CreateResource(ctx context.Context, name string) (Resource, error) {
	ctx, span := r.tracer.Start(ctx, "rbac.CreateResource")
	defer span.End()

	result, normalized := r.resourceValidator.Validate(name)
	if !result.IsValid {
		return Resource{}, invalidInputf("invalid resource name: %s", result.Reason)
	}

	created, err := r.gw.PutIfNotExists(ctx, resourceDefRow(normalized))
	if err != nil {
		return Resource{}, err
	}
	if !created {
		r.audit.Log(ctx, AuditEvent{Type: AuditResourceCreated, ResourceName: normalized, Result: "already_exists"})
		return Resource{}, alreadyExistsf("resource %q already exists", normalized)
	}

	r.audit.Log(ctx, AuditEvent{Type: AuditResourceCreated, ResourceName: normalized, Result: "success"})
	return Resource{ResourceName: normalized, ScopeNames: []string{}, RoleNames: []string{}}, nil
}

// GetResource returns a Resource populated with the sorted scope and role
// names of the resource, computed by two prefix queries on the resource
// partition. Returns NotFound if the resource definition row is absent.
func (r *Repository) GetResource(ctx context.Context, name string) (Resource, error) {
	ctx, span := r.tracer.Start(ctx, "rbac.GetResource")
	defer span.End()

	result, normalized := r.resourceValidator.Validate(name)
	if !result.IsValid {
		return Resource{}, invalidInputf("invalid resource name: %s", result.Reason)
	}

	if err := r.requireResourceExists(ctx, normalized); err != nil {
		return Resource{}, err
	}

	scopes, err := r.listScopes(ctx, normalized)
	if err != nil {
		return Resource{}, err
	}
	roles, err := r.listRoles(ctx, normalized)
	if err != nil {
		return Resource{}, err
	}

	return Resource{ResourceName: normalized, ScopeNames: scopes, RoleNames: roles}, nil
}

// requireResourceExists returns NotFound unless the resource definition row
// is present. Used as the prerequisite check ahead of Scope/Role/Assignment
// creates.
func (r *Repository) requireResourceExists(ctx context.Context, normalizedResource string) error {
	item, err := r.gw.GetItem(ctx, keyOf(resourceDefRow(normalizedResource)))
	if err != nil {
		return err
	}
	if item == nil {
		return notFoundf("resource %q not found", normalizedResource)
	}
	return nil
}

// listScopes returns the sorted-unique scope names of a resource (internal
// helper used by GetResource).
func (r *Repository) listScopes(ctx context.Context, normalizedResource string) ([]string, error) {
	rows, err := r.gw.Query(ctx, resourcePartition(normalizedResource), scopeDefPrefix())
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(rows))
	for _, row := range rows {
		names = append(names, row.ScopeName)
	}
	sort.Strings(names)
	return names, nil
}

// listRoles returns the sorted-unique role names of a resource.
func (r *Repository) listRoles(ctx context.Context, normalizedResource string) ([]string, error) {
	rows, err := r.gw.Query(ctx, resourcePartition(normalizedResource), roleDefPrefix())
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
