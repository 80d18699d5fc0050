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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultValidator_Validate(t *testing.T) {
	v := DefaultValidator{}

	tests := []struct {
		name       string
		raw        string
		wantValid  bool
		normalized string
	}{
		{name: "lowercases", raw: "Billing", wantValid: true, normalized: "billing"},
		{name: "trims whitespace", raw: "  billing  ", wantValid: true, normalized: "billing"},
		{name: "urls pass through", raw: "api://svc", wantValid: true, normalized: "api://svc"},
		{name: "empty rejected", raw: "", wantValid: false},
		{name: "whitespace only rejected", raw: "   ", wantValid: false},
		{name: "hash rejected", raw: "a#b", wantValid: false},
		{name: "control char rejected", raw: "a\x00b", wantValid: false},
		{name: "overlong rejected", raw: strings.Repeat("x", maxNameLength+1), wantValid: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result, normalized := v.Validate(tc.raw)
			assert.Equal(t, tc.wantValid, result.IsValid)
			if tc.wantValid {
				assert.Equal(t, tc.normalized, normalized)
			}
		})
	}
}

func TestDefaultValidator_IsDefault(t *testing.T) {
	v := DefaultValidator{}
	assert.True(t, v.IsDefault(DefaultScopeName))
	assert.False(t, v.IsDefault("prod"))
}

// TestNormalizationEquivalence verifies that two raw names normalizing
// identically address the same entity for writes, reads, and deletes.
func TestNormalizationEquivalence(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository()

	_, err := repo.CreateResource(ctx, "Billing")
	require.NoError(t, err)

	res, err := repo.GetResource(ctx, "  bIlLiNg ")
	require.NoError(t, err)
	assert.Equal(t, "billing", res.ResourceName)

	_, err = repo.CreateResource(ctx, "BILLING")
	require.Error(t, err)
	assert.Equal(t, KindAlreadyExists, KindOf(err))

	require.NoError(t, repo.DeleteResource(ctx, "BiLLinG"))

	_, err = repo.GetResource(ctx, "billing")
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}

// TestMarkerPrefixDisambiguation pins the property that makes BEGINS_WITH
// queries unambiguous: a role named so that its sort key shares the "ROLE"
// substring with role-assignment rows must never surface in the assignment
// prefix query, and vice versa.
func TestMarkerPrefixDisambiguation(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository()

	_, err := repo.CreateResource(ctx, "billing")
	require.NoError(t, err)
	_, err = repo.CreateRole(ctx, "billing", "assignment")
	require.NoError(t, err)
	_, err = repo.CreateScope(ctx, "billing", "assignment")
	require.NoError(t, err)

	require.NoError(t, repo.CreateRoleAssignment(ctx, "billing", "assignment", "alice"))
	require.NoError(t, repo.CreateScopeAssignment(ctx, "billing", "assignment", "alice"))

	res, err := repo.GetResource(ctx, "billing")
	require.NoError(t, err)
	assert.Equal(t, []string{"assignment"}, res.RoleNames)
	assert.Equal(t, []string{"assignment"}, res.ScopeNames)

	principals, err := repo.GetPrincipalsForRole(ctx, "billing", "assignment")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, principals)
}
