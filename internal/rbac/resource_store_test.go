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

func newTestRepository() *Repository {
	return NewRepository(NewMemoryGateway())
}

func TestCreateResource(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository()

	res, err := repo.CreateResource(ctx, "Billing")
	require.NoError(t, err)
	assert.Equal(t, "billing", res.ResourceName)
	assert.Empty(t, res.ScopeNames)
	assert.Empty(t, res.RoleNames)
}

func TestCreateResource_AlreadyExists(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository()

	_, err := repo.CreateResource(ctx, "billing")
	require.NoError(t, err)

	_, err = repo.CreateResource(ctx, "billing")
	require.Error(t, err)
	assert.Equal(t, KindAlreadyExists, KindOf(err))
}

func TestCreateResource_InvalidName(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository()

	_, err := repo.CreateResource(ctx, "")
	require.Error(t, err)
	assert.Equal(t, KindInvalidInput, KindOf(err))

	_, err = repo.CreateResource(ctx, "has#hash")
	require.Error(t, err)
	assert.Equal(t, KindInvalidInput, KindOf(err))
}

func TestGetResource_NotFound(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository()

	_, err := repo.GetResource(ctx, "missing")
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestGetResource_ListsScopesAndRoles(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository()

	_, err := repo.CreateResource(ctx, "billing")
	require.NoError(t, err)
	_, err = repo.CreateScope(ctx, "billing", "read")
	require.NoError(t, err)
	_, err = repo.CreateScope(ctx, "billing", "write")
	require.NoError(t, err)
	_, err = repo.CreateRole(ctx, "billing", "auditor")
	require.NoError(t, err)

	res, err := repo.GetResource(ctx, "billing")
	require.NoError(t, err)
	assert.Equal(t, []string{"read", "write"}, res.ScopeNames)
	assert.Equal(t, []string{"auditor"}, res.RoleNames)
}
