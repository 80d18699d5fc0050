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

func validatePrincipal(principal string) (string, error) {
	if principal == "" {
		return "", invalidInputf("principal id must not be empty")
	}
	return principal, nil
}

// CreateScopeAssignment pre-verifies the resource and scope exist, then
// writes both dual-index rows in one batch.
func (r *Repository) CreateScopeAssignment(ctx context.Context, resource, scope, principal string) error {
	ctx, span := r.tracer.Start(ctx, "rbac.CreateScopeAssignment")
	defer span.End()

	resResult, normResource := r.resourceValidator.Validate(resource)
	if !resResult.IsValid {
		return invalidInputf("invalid resource name: %s", resResult.Reason)
	}
	scopeResult, normScope := r.scopeValidator.Validate(scope)
	if !scopeResult.IsValid {
		return invalidInputf("invalid scope name: %s", scopeResult.Reason)
	}
	normPrincipal, err := validatePrincipal(principal)
	if err != nil {
		return err
	}

	if err := r.requireResourceExists(ctx, normResource); err != nil {
		return err
	}
	exists, err := r.scopeExists(ctx, normResource, normScope)
	if err != nil {
		return err
	}
	if !exists {
		return notFoundf("scope %q not found on resource %q", normScope, normResource)
	}

	rows := []row{
		scopeAssignmentByPrincipalRow(normResource, normScope, normPrincipal),
		scopeAssignmentByScopeRow(normResource, normScope, normPrincipal),
	}
	if err := r.gw.PutBatch(ctx, rows); err != nil {
		return err
	}

	r.audit.Log(ctx, AuditEvent{Type: AuditScopeAssigned, PrincipalID: normPrincipal, ResourceName: normResource, ScopeName: normScope, Result: "success"})
	return nil
}

// DeleteScopeAssignment deletes both index rows in one batch. Absence of
// either row is not an error.
func (r *Repository) DeleteScopeAssignment(ctx context.Context, resource, scope, principal string) error {
	ctx, span := r.tracer.Start(ctx, "rbac.DeleteScopeAssignment")
	defer span.End()

	resResult, normResource := r.resourceValidator.Validate(resource)
	if !resResult.IsValid {
		return invalidInputf("invalid resource name: %s", resResult.Reason)
	}
	scopeResult, normScope := r.scopeValidator.Validate(scope)
	if !scopeResult.IsValid {
		return invalidInputf("invalid scope name: %s", scopeResult.Reason)
	}
	normPrincipal, err := validatePrincipal(principal)
	if err != nil {
		return err
	}

	keys := []itemKey{
		keyOf(scopeAssignmentByPrincipalRow(normResource, normScope, normPrincipal)),
		keyOf(scopeAssignmentByScopeRow(normResource, normScope, normPrincipal)),
	}
	if err := r.gw.DeleteBatch(ctx, keys); err != nil {
		return err
	}

	r.audit.Log(ctx, AuditEvent{Type: AuditScopeRevoked, PrincipalID: normPrincipal, ResourceName: normResource, ScopeName: normScope, Result: "success"})
	return nil
}

// GetPrincipalsForScope prefix-queries the by-scope index on the resource
// partition, returning the sorted principal ids holding scope on resource.
func (r *Repository) GetPrincipalsForScope(ctx context.Context, resource, scope string) ([]string, error) {
	ctx, span := r.tracer.Start(ctx, "rbac.GetPrincipalsForScope")
	defer span.End()

	resResult, normResource := r.resourceValidator.Validate(resource)
	if !resResult.IsValid {
		return nil, invalidInputf("invalid resource name: %s", resResult.Reason)
	}
	scopeResult, normScope := r.scopeValidator.Validate(scope)
	if !scopeResult.IsValid {
		return nil, invalidInputf("invalid scope name: %s", scopeResult.Reason)
	}

	rows, err := r.gw.Query(ctx, resourcePartition(normResource), scopeAssignmentByScopePrefix(normScope))
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

// scopesForPrincipal prefix-queries the by-principal index on the
// principal's partition, returning the sorted scope names principal holds
// on resource. Internal helper used by GetPrincipalAccess.
func (r *Repository) scopesForPrincipal(ctx context.Context, normPrincipal, normResource string) ([]string, error) {
	rows, err := r.gw.Query(ctx, scopeAssignmentPartitionByPrincipal(normPrincipal), scopeAssignmentByPrincipalPrefix(normResource))
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

// deleteScopeAssignmentsByPrincipal discovers every ScopeAssignment held by
// principal (via the by-principal index, whose partition is known) and
// deletes the union of forward and mirror rows in one batch.
func (r *Repository) deleteScopeAssignmentsByPrincipal(ctx context.Context, normPrincipal string) error {
	rows, err := r.gw.Query(ctx, scopeAssignmentPartitionByPrincipal(normPrincipal), scopeAssignmentAnyPrefix())
	if err != nil {
		return err
	}
	return r.deleteScopeAssignmentPairs(ctx, rows)
}

// deleteScopeAssignmentsByResource discovers every ScopeAssignment on
// resource (via the by-scope index, whose partition is the resource) and
// deletes the union of forward and mirror rows in one batch.
func (r *Repository) deleteScopeAssignmentsByResource(ctx context.Context, normResource string) error {
	rows, err := r.gw.Query(ctx, resourcePartition(normResource), scopeAssignmentAnyPrefix())
	if err != nil {
		return err
	}
	return r.deleteScopeAssignmentPairs(ctx, rows)
}

// deleteScopeAssignmentsByScope discovers every ScopeAssignment on
// (resource, scope) and deletes the union of forward and mirror rows in one
// batch.
func (r *Repository) deleteScopeAssignmentsByScope(ctx context.Context, normResource, normScope string) error {
	rows, err := r.gw.Query(ctx, resourcePartition(normResource), scopeAssignmentByScopePrefix(normScope))
	if err != nil {
		return err
	}
	return r.deleteScopeAssignmentPairs(ctx, rows)
}

// deleteScopeAssignmentPairs synthesizes the mirror item for every
// discovered hit and deletes the union of forward and mirror rows in a
// single batch. The mirror row is not verified to exist first; deleting an
// absent row is a no-op, which is also what converges a half-linked
// assignment whose second write never landed.
func (r *Repository) deleteScopeAssignmentPairs(ctx context.Context, hits []row) error {
	if len(hits) == 0 {
		return nil
	}
	keys := make([]itemKey, 0, len(hits)*2)
	for _, h := range hits {
		keys = append(keys,
			keyOf(scopeAssignmentByPrincipalRow(h.ResourceName, h.ScopeName, h.PrincipalID)),
			keyOf(scopeAssignmentByScopeRow(h.ResourceName, h.ScopeName, h.PrincipalID)),
		)
	}
	return r.gw.DeleteBatch(ctx, keys)
}
