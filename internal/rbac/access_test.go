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

func TestGetPrincipalAccess_ComposesScopesAndRoles(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository()
	seedResourceWithScopeAndRole(t, repo)

	require.NoError(t, repo.CreateScopeAssignment(ctx, "billing", "read", "alice"))
	require.NoError(t, repo.CreateRoleAssignment(ctx, "billing", "auditor", "alice"))

	access, err := repo.GetPrincipalAccess(ctx, "alice", "billing", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"read"}, access.ScopeNames)
	assert.Equal(t, []string{"auditor"}, access.RoleNames)
}

// TestGetPrincipalAccess_GatingRule verifies that holding no scopes forces
// the role list empty even when a role-assignment row exists independently.
func TestGetPrincipalAccess_GatingRule(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository()
	seedResourceWithScopeAndRole(t, repo)

	require.NoError(t, repo.CreateRoleAssignment(ctx, "billing", "auditor", "alice"))

	access, err := repo.GetPrincipalAccess(ctx, "alice", "billing", "")
	require.NoError(t, err)
	assert.Empty(t, access.ScopeNames)
	assert.Empty(t, access.RoleNames)
}

func TestGetPrincipalAccess_RequiresResource(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository()

	_, err := repo.GetPrincipalAccess(ctx, "alice", "missing", "")
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestGetPrincipalAccess_NarrowedToScope(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository()

	_, err := repo.CreateResource(ctx, "billing")
	require.NoError(t, err)
	_, err = repo.CreateScope(ctx, "billing", "read")
	require.NoError(t, err)
	_, err = repo.CreateScope(ctx, "billing", "write")
	require.NoError(t, err)

	require.NoError(t, repo.CreateScopeAssignment(ctx, "billing", "read", "alice"))
	require.NoError(t, repo.CreateScopeAssignment(ctx, "billing", "write", "alice"))

	access, err := repo.GetPrincipalAccess(ctx, "alice", "billing", "read")
	require.NoError(t, err)
	assert.Equal(t, []string{"read"}, access.ScopeNames)
}

func TestGetPrincipalAccess_UnknownScopeNotFound(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository()

	_, err := repo.CreateResource(ctx, "billing")
	require.NoError(t, err)

	_, err = repo.GetPrincipalAccess(ctx, "alice", "billing", "nonexistent")
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}

// TestGetPrincipalAccess_DefaultScopeEquivalence verifies that passing the
// reserved default scope name behaves exactly like the no-scope call.
func TestGetPrincipalAccess_DefaultScopeEquivalence(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository()
	seedResourceWithScopeAndRole(t, repo)

	require.NoError(t, repo.CreateScopeAssignment(ctx, "billing", "read", "alice"))
	require.NoError(t, repo.CreateRoleAssignment(ctx, "billing", "auditor", "alice"))

	withoutScope, err := repo.GetPrincipalAccess(ctx, "alice", "billing", "")
	require.NoError(t, err)
	withDefault, err := repo.GetPrincipalAccess(ctx, "alice", "billing", DefaultScopeName)
	require.NoError(t, err)

	assert.Equal(t, withoutScope, withDefault)
}
