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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDeleteResource_CascadeCompleteness verifies that after
// DeleteResource, every principal that ever held an assignment on the
// resource loses computed access and no longer appears in either assignment
// index, and the resource definition itself is NotFound.
func TestDeleteResource_CascadeCompleteness(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository()
	seedResourceWithScopeAndRole(t, repo)

	require.NoError(t, repo.CreateScopeAssignment(ctx, "billing", "read", "alice"))
	require.NoError(t, repo.CreateRoleAssignment(ctx, "billing", "auditor", "alice"))

	require.NoError(t, repo.DeleteResource(ctx, "billing"))

	_, err := repo.GetResource(ctx, "billing")
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))

	_, err = repo.GetPrincipalAccess(ctx, "alice", "billing", "")
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))

	principals, err := repo.GetPrincipalsForScope(ctx, "billing", "read")
	require.NoError(t, err)
	assert.Empty(t, principals)

	principals, err = repo.GetPrincipalsForRole(ctx, "billing", "auditor")
	require.NoError(t, err)
	assert.Empty(t, principals)
}

// TestDeleteResource_Idempotent verifies that a second DeleteResource on an
// already-deleted tree observes the same state and returns no error.
func TestDeleteResource_Idempotent(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository()
	seedResourceWithScopeAndRole(t, repo)
	require.NoError(t, repo.CreateScopeAssignment(ctx, "billing", "read", "alice"))

	require.NoError(t, repo.DeleteResource(ctx, "billing"))
	require.NoError(t, repo.DeleteResource(ctx, "billing"))

	_, err := repo.GetResource(ctx, "billing")
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}

// TestDeleteResource_RecreateAfterDelete verifies there are no tombstones:
// re-creating an already-deleted resource succeeds with a clean slate.
func TestDeleteResource_RecreateAfterDelete(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository()
	seedResourceWithScopeAndRole(t, repo)
	require.NoError(t, repo.DeleteResource(ctx, "billing"))

	res, err := repo.CreateResource(ctx, "billing")
	require.NoError(t, err)
	assert.Empty(t, res.ScopeNames)
	assert.Empty(t, res.RoleNames)
}

// TestDeleteScope_CascadesAssignments verifies that deleting a scope
// removes every ScopeAssignment that referenced it, without touching role
// assignments or other scopes on the same resource.
func TestDeleteScope_CascadesAssignments(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository()
	seedResourceWithScopeAndRole(t, repo)
	_, err := repo.CreateScope(ctx, "billing", "write")
	require.NoError(t, err)

	require.NoError(t, repo.CreateScopeAssignment(ctx, "billing", "read", "alice"))
	require.NoError(t, repo.CreateScopeAssignment(ctx, "billing", "write", "alice"))
	require.NoError(t, repo.CreateRoleAssignment(ctx, "billing", "auditor", "alice"))

	require.NoError(t, repo.DeleteScope(ctx, "billing", "read"))

	_, err = repo.GetScope(ctx, "billing", "read")
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))

	principals, err := repo.GetPrincipalsForScope(ctx, "billing", "read")
	require.NoError(t, err)
	assert.Empty(t, principals)

	principals, err = repo.GetPrincipalsForScope(ctx, "billing", "write")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, principals)

	access, err := repo.GetPrincipalAccess(ctx, "alice", "billing", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"write"}, access.ScopeNames)
	assert.Equal(t, []string{"auditor"}, access.RoleNames)
}

// TestDeleteRole_CascadesAssignments is the role-assignment counterpart of
// TestDeleteScope_CascadesAssignments.
func TestDeleteRole_CascadesAssignments(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository()
	seedResourceWithScopeAndRole(t, repo)

	require.NoError(t, repo.CreateScopeAssignment(ctx, "billing", "read", "alice"))
	require.NoError(t, repo.CreateRoleAssignment(ctx, "billing", "auditor", "alice"))

	require.NoError(t, repo.DeleteRole(ctx, "billing", "auditor"))

	_, err := repo.GetRole(ctx, "billing", "auditor")
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))

	principals, err := repo.GetPrincipalsForRole(ctx, "billing", "auditor")
	require.NoError(t, err)
	assert.Empty(t, principals)
}

// TestDeletePrincipal_RemovesAllAssignments verifies that after
// DeletePrincipal, GetPrincipalAccess reports empty scopes and roles even
// though the resource, scope, and role definitions still exist.
func TestDeletePrincipal_RemovesAllAssignments(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository()
	seedResourceWithScopeAndRole(t, repo)

	require.NoError(t, repo.CreateScopeAssignment(ctx, "billing", "read", "alice"))
	require.NoError(t, repo.CreateRoleAssignment(ctx, "billing", "auditor", "alice"))

	require.NoError(t, repo.DeletePrincipal(ctx, "alice"))

	access, err := repo.GetPrincipalAccess(ctx, "alice", "billing", "")
	require.NoError(t, err)
	assert.Empty(t, access.ScopeNames)
	assert.Empty(t, access.RoleNames)

	principals, err := repo.GetPrincipalsForScope(ctx, "billing", "read")
	require.NoError(t, err)
	assert.Empty(t, principals)

	// The resource definition itself is untouched by DeletePrincipal.
	_, err = repo.GetResource(ctx, "billing")
	require.NoError(t, err)
}

// TestDeletePrincipal_ScopedToOnePrincipal verifies the cascade only removes
// rows keyed to the deleted principal, leaving other principals' assignments
// intact.
func TestDeletePrincipal_ScopedToOnePrincipal(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository()
	seedResourceWithScopeAndRole(t, repo)

	require.NoError(t, repo.CreateScopeAssignment(ctx, "billing", "read", "alice"))
	require.NoError(t, repo.CreateScopeAssignment(ctx, "billing", "read", "bob"))

	require.NoError(t, repo.DeletePrincipal(ctx, "alice"))

	principals, err := repo.GetPrincipalsForScope(ctx, "billing", "read")
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, principals)
}

// TestSweepOrphans_IsIdempotentAndNoOp verifies that re-running the orphan
// sweep over a fully-converged resource leaves observable state unchanged.
func TestSweepOrphans_IsIdempotentAndNoOp(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository()
	seedResourceWithScopeAndRole(t, repo)
	require.NoError(t, repo.CreateScopeAssignment(ctx, "billing", "read", "alice"))
	require.NoError(t, repo.CreateRoleAssignment(ctx, "billing", "auditor", "alice"))

	require.NoError(t, repo.SweepOrphans(ctx, "billing"))
	require.NoError(t, repo.SweepOrphans(ctx, "billing"))

	access, err := repo.GetPrincipalAccess(ctx, "alice", "billing", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"read"}, access.ScopeNames)
	assert.Equal(t, []string{"auditor"}, access.RoleNames)
}

func TestSweepOrphans_RequiresResource(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository()

	err := repo.SweepOrphans(ctx, "missing")
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}
