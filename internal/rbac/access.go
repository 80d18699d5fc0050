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

// Access composition: the read-only view of what a principal currently
// holds on a resource, optionally narrowed to one scope.
package rbac

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// GetPrincipalAccess computes the scopes and roles principal holds on
// resource. If scope is non-empty and not the default scope name, the
// returned ScopeNames is narrowed to that single scope, and the result
// reflects only the roles available through that scope's presence. The
// gating rule applies regardless: an empty ScopeNames forces RoleNames
// empty, since role grants are only meaningful in the context of a held
// scope.
func (r *Repository) GetPrincipalAccess(ctx context.Context, principal, resource, scope string) (PrincipalAccess, error) {
	ctx, span := r.tracer.Start(ctx, "rbac.GetPrincipalAccess")
	defer span.End()

	resResult, normResource := r.resourceValidator.Validate(resource)
	if !resResult.IsValid {
		return PrincipalAccess{}, invalidInputf("invalid resource name: %s", resResult.Reason)
	}
	normPrincipal, err := validatePrincipal(principal)
	if err != nil {
		return PrincipalAccess{}, err
	}

	if err := r.requireResourceExists(ctx, normResource); err != nil {
		return PrincipalAccess{}, err
	}

	var normScope string
	narrowToScope := false
	if scope != "" {
		scopeResult, n := r.scopeValidator.Validate(scope)
		if !scopeResult.IsValid {
			return PrincipalAccess{}, invalidInputf("invalid scope name: %s", scopeResult.Reason)
		}
		normScope = n
		if !r.scopeValidator.IsDefault(normScope) {
			exists, err := r.scopeExists(ctx, normResource, normScope)
			if err != nil {
				return PrincipalAccess{}, err
			}
			if !exists {
				return PrincipalAccess{}, notFoundf("scope %q not found on resource %q", normScope, normResource)
			}
			narrowToScope = true
		}
	}

	var scopes, roles []string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sctx, sspan := r.tracer.Start(gctx, "rbac.scopesForPrincipal")
		defer sspan.End()
		s, err := r.scopesForPrincipal(sctx, normPrincipal, normResource)
		if err != nil {
			return err
		}
		scopes = s
		return nil
	})
	g.Go(func() error {
		rctx, rspan := r.tracer.Start(gctx, "rbac.rolesForPrincipal")
		defer rspan.End()
		rl, err := r.rolesForPrincipal(rctx, normPrincipal, normResource)
		if err != nil {
			return err
		}
		roles = rl
		return nil
	})
	if err := g.Wait(); err != nil {
		return PrincipalAccess{}, err
	}

	if narrowToScope {
		scopes = filterToOne(scopes, normScope)
	}

	// Gating rule: no held scopes means no meaningful role grant, even if
	// role-assignment rows exist independently of any scope assignment.
	if len(scopes) == 0 {
		roles = []string{}
	}

	return PrincipalAccess{
		PrincipalID:  normPrincipal,
		ResourceName: normResource,
		ScopeNames:   scopes,
		RoleNames:    roles,
	}, nil
}

func filterToOne(names []string, want string) []string {
	for _, n := range names {
		if n == want {
			return []string{n}
		}
	}
	return []string{}
}
