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

// Cascading deletes. Every delete here is idempotent and safe to re-run: a
// second call over an already-deleted tree finds nothing at each step and
// returns nil. The orphan sweep (SweepOrphans, run by cmd/rbac-sweep) is a
// separate, non-deleting operation that rewrites assignment index pairs.
package rbac

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// DeleteResource removes the resource definition row, then fans out to
// delete every scope, role, and assignment that referenced it. The
// definition row is deleted first so a concurrent reader sees the resource
// gone before its children finish unwinding, rather than the reverse (which
// would let a reader observe scopes/roles with no owning resource).
func (r *Repository) DeleteResource(ctx context.Context, resource string) error {
	ctx, span := r.tracer.Start(ctx, "rbac.DeleteResource")
	defer span.End()

	resResult, normResource := r.resourceValidator.Validate(resource)
	if !resResult.IsValid {
		return invalidInputf("invalid resource name: %s", resResult.Reason)
	}

	if err := r.gw.DeleteBatch(ctx, []itemKey{keyOf(resourceDefRow(normResource))}); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return r.deleteAllScopeDefs(gctx, normResource) })
	g.Go(func() error { return r.deleteAllRoleDefs(gctx, normResource) })
	g.Go(func() error { return r.deleteScopeAssignmentsByResource(gctx, normResource) })
	g.Go(func() error { return r.deleteRoleAssignmentsByResource(gctx, normResource) })
	if err := g.Wait(); err != nil {
		return err
	}

	r.audit.Log(ctx, AuditEvent{Type: AuditResourceDeleted, ResourceName: normResource, Result: "success"})
	return nil
}

// deleteAllScopeDefs removes every Scope definition row of resource.
func (r *Repository) deleteAllScopeDefs(ctx context.Context, normResource string) error {
	rows, err := r.gw.Query(ctx, resourcePartition(normResource), scopeDefPrefix())
	if err != nil {
		return err
	}
	return r.deleteDefRows(ctx, rows)
}

// deleteAllRoleDefs removes every Role definition row of resource.
func (r *Repository) deleteAllRoleDefs(ctx context.Context, normResource string) error {
	rows, err := r.gw.Query(ctx, resourcePartition(normResource), roleDefPrefix())
	if err != nil {
		return err
	}
	return r.deleteDefRows(ctx, rows)
}

func (r *Repository) deleteDefRows(ctx context.Context, rows []row) error {
	if len(rows) == 0 {
		return nil
	}
	keys := make([]itemKey, 0, len(rows))
	for _, row := range rows {
		keys = append(keys, itemKey{PK: row.PK, SK: row.SK})
	}
	return r.gw.DeleteBatch(ctx, keys)
}

// DeleteScope removes one Scope definition row and every ScopeAssignment
// that referenced (resource, scope).
func (r *Repository) DeleteScope(ctx context.Context, resource, scope string) error {
	ctx, span := r.tracer.Start(ctx, "rbac.DeleteScope")
	defer span.End()

	resResult, normResource := r.resourceValidator.Validate(resource)
	if !resResult.IsValid {
		return invalidInputf("invalid resource name: %s", resResult.Reason)
	}
	scopeResult, normScope := r.scopeValidator.Validate(scope)
	if !scopeResult.IsValid {
		return invalidInputf("invalid scope name: %s", scopeResult.Reason)
	}

	if err := r.gw.DeleteBatch(ctx, []itemKey{keyOf(scopeDefRow(normResource, normScope))}); err != nil {
		return err
	}
	if err := r.deleteScopeAssignmentsByScope(ctx, normResource, normScope); err != nil {
		return err
	}

	r.audit.Log(ctx, AuditEvent{Type: AuditScopeDeleted, ResourceName: normResource, ScopeName: normScope, Result: "success"})
	return nil
}

// DeleteRole removes one Role definition row and every RoleAssignment that
// referenced (resource, role).
func (r *Repository) DeleteRole(ctx context.Context, resource, role string) error {
	ctx, span := r.tracer.Start(ctx, "rbac.DeleteRole")
	defer span.End()

	resResult, normResource := r.resourceValidator.Validate(resource)
	if !resResult.IsValid {
		return invalidInputf("invalid resource name: %s", resResult.Reason)
	}
	roleResult, normRole := r.roleValidator.Validate(role)
	if !roleResult.IsValid {
		return invalidInputf("invalid role name: %s", roleResult.Reason)
	}

	if err := r.gw.DeleteBatch(ctx, []itemKey{keyOf(roleDefRow(normResource, normRole))}); err != nil {
		return err
	}
	if err := r.deleteRoleAssignmentsByRole(ctx, normResource, normRole); err != nil {
		return err
	}

	r.audit.Log(ctx, AuditEvent{Type: AuditRoleDeleted, ResourceName: normResource, RoleName: normRole, Result: "success"})
	return nil
}

// DeletePrincipal removes every ScopeAssignment and RoleAssignment held by
// principal across every resource, run concurrently since the two
// assignment kinds share no rows.
func (r *Repository) DeletePrincipal(ctx context.Context, principal string) error {
	ctx, span := r.tracer.Start(ctx, "rbac.DeletePrincipal")
	defer span.End()

	normPrincipal, err := validatePrincipal(principal)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return r.deleteScopeAssignmentsByPrincipal(gctx, normPrincipal) })
	g.Go(func() error { return r.deleteRoleAssignmentsByPrincipal(gctx, normPrincipal) })
	if err := g.Wait(); err != nil {
		return err
	}

	r.audit.Log(ctx, AuditEvent{Type: AuditPrincipalDeleted, PrincipalID: normPrincipal, Result: "success"})
	return nil
}

// SweepOrphans rewrites both index rows of every scope and role assignment
// found in resource's partition; it deletes nothing. This restores a
// missing by-principal row of a pair left half-linked by a prior partial
// failure. It is the operation behind
// cmd/rbac-sweep and logs one AuditOrphanSwept event regardless of whether
// anything was actually found, so operators can distinguish a sweep that
// ran from one that silently never fired.
func (r *Repository) SweepOrphans(ctx context.Context, resource string) error {
	ctx, span := r.tracer.Start(ctx, "rbac.SweepOrphans")
	defer span.End()

	resResult, normResource := r.resourceValidator.Validate(resource)
	if !resResult.IsValid {
		return invalidInputf("invalid resource name: %s", resResult.Reason)
	}
	if err := r.requireResourceExists(ctx, normResource); err != nil {
		return err
	}

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error { return r.sweepScopeAssignments(ctx, normResource) })
	g.Go(func() error { return r.sweepRoleAssignments(ctx, normResource) })
	if err := g.Wait(); err != nil {
		return err
	}

	r.audit.Log(ctx, AuditEvent{Type: AuditOrphanSwept, ResourceName: normResource, Result: "success"})
	return nil
}

// sweepScopeAssignments re-derives and rewrites both index rows for every
// ScopeAssignment found on the by-scope index (the resource partition),
// repairing a pair whose by-principal row is missing. A pair whose only
// surviving row is the by-principal row is not found by this query.
func (r *Repository) sweepScopeAssignments(ctx context.Context, normResource string) error {
	rows, err := r.gw.Query(ctx, resourcePartition(normResource), scopeAssignmentAnyPrefix())
	if err != nil {
		return err
	}
	return r.rewriteScopeAssignmentPairs(ctx, rows)
}

func (r *Repository) rewriteScopeAssignmentPairs(ctx context.Context, hits []row) error {
	if len(hits) == 0 {
		return nil
	}
	rows := make([]row, 0, len(hits)*2)
	for _, h := range hits {
		rows = append(rows,
			scopeAssignmentByPrincipalRow(h.ResourceName, h.ScopeName, h.PrincipalID),
			scopeAssignmentByScopeRow(h.ResourceName, h.ScopeName, h.PrincipalID),
		)
	}
	return r.gw.PutBatch(ctx, rows)
}

// sweepRoleAssignments is the role-assignment counterpart of
// sweepScopeAssignments.
func (r *Repository) sweepRoleAssignments(ctx context.Context, normResource string) error {
	rows, err := r.gw.Query(ctx, resourcePartition(normResource), roleAssignmentAnyPrefix())
	if err != nil {
		return err
	}
	return r.rewriteRoleAssignmentPairs(ctx, rows)
}

func (r *Repository) rewriteRoleAssignmentPairs(ctx context.Context, hits []row) error {
	if len(hits) == 0 {
		return nil
	}
	rows := make([]row, 0, len(hits)*2)
	for _, h := range hits {
		rows = append(rows,
			roleAssignmentByPrincipalRow(h.ResourceName, h.RoleName, h.PrincipalID),
			roleAssignmentByRoleRow(h.ResourceName, h.RoleName, h.PrincipalID),
		)
	}
	return r.gw.PutBatch(ctx, rows)
}
