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

func seedResourceWithScopeAndRole(t *testing.T, repo *Repository) {
	t.Helper()
	ctx := context.Background()
	_, err := repo.CreateResource(ctx, "billing")
	require.NoError(t, err)
	_, err = repo.CreateScope(ctx, "billing", "read")
	require.NoError(t, err)
	_, err = repo.CreateRole(ctx, "billing", "auditor")
	require.NoError(t, err)
}

func TestCreateScopeAssignment_RequiresLiveScope(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository()
	seedResourceWithScopeAndRole(t, repo)

	err := repo.CreateScopeAssignment(ctx, "billing", "missing-scope", "alice")
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestScopeAssignment_GrantRevokeRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository()
	seedResourceWithScopeAndRole(t, repo)

	require.NoError(t, repo.CreateScopeAssignment(ctx, "billing", "read", "alice"))

	principals, err := repo.GetPrincipalsForScope(ctx, "billing", "read")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, principals)

	require.NoError(t, repo.DeleteScopeAssignment(ctx, "billing", "read", "alice"))

	principals, err = repo.GetPrincipalsForScope(ctx, "billing", "read")
	require.NoError(t, err)
	assert.Empty(t, principals)
}

func TestDeleteScopeAssignment_AbsentRowIsNotAnError(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository()
	seedResourceWithScopeAndRole(t, repo)

	err := repo.DeleteScopeAssignment(ctx, "billing", "read", "ghost")
	assert.NoError(t, err)
}

func TestRoleAssignment_GrantRevokeRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository()
	seedResourceWithScopeAndRole(t, repo)

	require.NoError(t, repo.CreateRoleAssignment(ctx, "billing", "auditor", "bob"))

	principals, err := repo.GetPrincipalsForRole(ctx, "billing", "auditor")
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, principals)

	require.NoError(t, repo.DeleteRoleAssignment(ctx, "billing", "auditor", "bob"))

	principals, err = repo.GetPrincipalsForRole(ctx, "billing", "auditor")
	require.NoError(t, err)
	assert.Empty(t, principals)
}

func TestScopeAssignment_MultiplePrincipalsSortedByID(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository()
	seedResourceWithScopeAndRole(t, repo)

	require.NoError(t, repo.CreateScopeAssignment(ctx, "billing", "read", "zoe"))
	require.NoError(t, repo.CreateScopeAssignment(ctx, "billing", "read", "alice"))

	principals, err := repo.GetPrincipalsForScope(ctx, "billing", "read")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "zoe"}, principals)
}
