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

// Package http is a thin chi-based transport mapping onto the rbac
// repository. It owns no domain logic of its own: every handler validates
// the request shape, calls into rbac.Repository, and maps the returned
// rbac.Kind onto an HTTP status code.
package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rbacforge/rbac/internal/rbac"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Handler holds the HTTP handlers and their dependencies.
type Handler struct {
	repo      *rbac.Repository
	jwtSecret []byte
}

// NewHandler creates a new HTTP handler over repo. jwtSecret verifies the
// HMAC signature of bearer tokens presented to AuthMiddleware.
func NewHandler(repo *rbac.Repository, jwtSecret []byte) *Handler {
	return &Handler{repo: repo, jwtSecret: jwtSecret}
}

// NewRouter creates the chi router exposing the RBAC API.
func NewRouter(h *Handler, rateLimiter *RateLimiter) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(RateLimitMiddleware(rateLimiter))
	r.Use(func(handler http.Handler) http.Handler {
		return otelhttp.NewHandler(handler, "http_request",
			otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
		)
	})
	r.Use(LoggingMiddleware())
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", h.HealthCheck)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(h.AuthMiddleware)

		r.Route("/resources", func(r chi.Router) {
			r.Post("/", h.CreateResource)
			r.Route("/{resource}", func(r chi.Router) {
				r.Get("/", h.GetResource)
				r.Delete("/", h.DeleteResource)

				r.Route("/scopes", func(r chi.Router) {
					r.Post("/", h.CreateScope)
					r.Route("/{scope}", func(r chi.Router) {
						r.Get("/", h.GetScope)
						r.Delete("/", h.DeleteScope)
						r.Get("/principals", h.GetPrincipalsForScope)
					})
				})

				r.Route("/roles", func(r chi.Router) {
					r.Post("/", h.CreateRole)
					r.Route("/{role}", func(r chi.Router) {
						r.Get("/", h.GetRole)
						r.Delete("/", h.DeleteRole)
						r.Get("/principals", h.GetPrincipalsForRole)
					})
				})

				r.Route("/assignments/scopes", func(r chi.Router) {
					r.Post("/", h.CreateScopeAssignment)
					r.Delete("/", h.DeleteScopeAssignment)
				})

				r.Route("/assignments/roles", func(r chi.Router) {
					r.Post("/", h.CreateRoleAssignment)
					r.Delete("/", h.DeleteRoleAssignment)
				})

				r.Get("/principals/{principal}/access", h.GetPrincipalAccess)
			})
		})

		r.Delete("/principals/{principal}", h.DeletePrincipal)
	})

	return r
}

// HealthCheck returns the health status.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "rbac",
	})
}

type createResourceRequest struct {
	Name string `json:"name"`
}

// CreateResource creates a Resource.
func (h *Handler) CreateResource(w http.ResponseWriter, r *http.Request) {
	var req createResourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.repo.CreateResource(r.Context(), req.Name)
	if err != nil {
		respondRBACError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, res)
}

// GetResource returns a Resource and its scope/role names.
func (h *Handler) GetResource(w http.ResponseWriter, r *http.Request) {
	res, err := h.repo.GetResource(r.Context(), chi.URLParam(r, "resource"))
	if err != nil {
		respondRBACError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

// DeleteResource cascades a Resource's deletion across its scopes, roles,
// and assignments.
func (h *Handler) DeleteResource(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.DeleteResource(r.Context(), chi.URLParam(r, "resource")); err != nil {
		respondRBACError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type createScopeRequest struct {
	Name string `json:"name"`
}

// CreateScope creates a Scope on a Resource.
func (h *Handler) CreateScope(w http.ResponseWriter, r *http.Request) {
	var req createScopeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	scope, err := h.repo.CreateScope(r.Context(), chi.URLParam(r, "resource"), req.Name)
	if err != nil {
		respondRBACError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, scope)
}

// GetScope returns a Scope definition.
func (h *Handler) GetScope(w http.ResponseWriter, r *http.Request) {
	scope, err := h.repo.GetScope(r.Context(), chi.URLParam(r, "resource"), chi.URLParam(r, "scope"))
	if err != nil {
		respondRBACError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, scope)
}

// DeleteScope cascades a Scope's deletion across its assignments.
func (h *Handler) DeleteScope(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.DeleteScope(r.Context(), chi.URLParam(r, "resource"), chi.URLParam(r, "scope")); err != nil {
		respondRBACError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetPrincipalsForScope lists every principal currently holding a scope.
func (h *Handler) GetPrincipalsForScope(w http.ResponseWriter, r *http.Request) {
	principals, err := h.repo.GetPrincipalsForScope(r.Context(), chi.URLParam(r, "resource"), chi.URLParam(r, "scope"))
	if err != nil {
		respondRBACError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"principals": principals})
}

type createRoleRequest struct {
	Name string `json:"name"`
}

// CreateRole creates a Role on a Resource.
func (h *Handler) CreateRole(w http.ResponseWriter, r *http.Request) {
	var req createRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	role, err := h.repo.CreateRole(r.Context(), chi.URLParam(r, "resource"), req.Name)
	if err != nil {
		respondRBACError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, role)
}

// GetRole returns a Role definition.
func (h *Handler) GetRole(w http.ResponseWriter, r *http.Request) {
	role, err := h.repo.GetRole(r.Context(), chi.URLParam(r, "resource"), chi.URLParam(r, "role"))
	if err != nil {
		respondRBACError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, role)
}

// DeleteRole cascades a Role's deletion across its assignments.
func (h *Handler) DeleteRole(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.DeleteRole(r.Context(), chi.URLParam(r, "resource"), chi.URLParam(r, "role")); err != nil {
		respondRBACError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetPrincipalsForRole lists every principal currently holding a role.
func (h *Handler) GetPrincipalsForRole(w http.ResponseWriter, r *http.Request) {
	principals, err := h.repo.GetPrincipalsForRole(r.Context(), chi.URLParam(r, "resource"), chi.URLParam(r, "role"))
	if err != nil {
		respondRBACError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"principals": principals})
}

type scopeAssignmentRequest struct {
	Scope     string `json:"scope"`
	Principal string `json:"principal"`
}

// CreateScopeAssignment grants a scope to a principal.
func (h *Handler) CreateScopeAssignment(w http.ResponseWriter, r *http.Request) {
	var req scopeAssignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.repo.CreateScopeAssignment(r.Context(), chi.URLParam(r, "resource"), req.Scope, req.Principal); err != nil {
		respondRBACError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// DeleteScopeAssignment revokes a scope from a principal.
func (h *Handler) DeleteScopeAssignment(w http.ResponseWriter, r *http.Request) {
	var req scopeAssignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.repo.DeleteScopeAssignment(r.Context(), chi.URLParam(r, "resource"), req.Scope, req.Principal); err != nil {
		respondRBACError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type roleAssignmentRequest struct {
	Role      string `json:"role"`
	Principal string `json:"principal"`
}

// CreateRoleAssignment grants a role to a principal.
func (h *Handler) CreateRoleAssignment(w http.ResponseWriter, r *http.Request) {
	var req roleAssignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.repo.CreateRoleAssignment(r.Context(), chi.URLParam(r, "resource"), req.Role, req.Principal); err != nil {
		respondRBACError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// DeleteRoleAssignment revokes a role from a principal.
func (h *Handler) DeleteRoleAssignment(w http.ResponseWriter, r *http.Request) {
	var req roleAssignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.repo.DeleteRoleAssignment(r.Context(), chi.URLParam(r, "resource"), req.Role, req.Principal); err != nil {
		respondRBACError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetPrincipalAccess returns the computed scopes and roles a principal
// holds on a resource, optionally narrowed to one scope via ?scope=.
func (h *Handler) GetPrincipalAccess(w http.ResponseWriter, r *http.Request) {
	scope := r.URL.Query().Get("scope")
	access, err := h.repo.GetPrincipalAccess(r.Context(), chi.URLParam(r, "principal"), chi.URLParam(r, "resource"), scope)
	if err != nil {
		respondRBACError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, access)
}

// DeletePrincipal removes every scope and role assignment held by a
// principal, across every resource.
func (h *Handler) DeletePrincipal(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.DeletePrincipal(r.Context(), chi.URLParam(r, "principal")); err != nil {
		respondRBACError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// respondRBACError maps an *rbac.Error's Kind onto an HTTP status code.
func respondRBACError(w http.ResponseWriter, err error) {
	var status int
	switch rbac.KindOf(err) {
	case rbac.KindInvalidInput:
		status = http.StatusBadRequest
	case rbac.KindNotFound:
		status = http.StatusNotFound
	case rbac.KindAlreadyExists:
		status = http.StatusConflict
	case rbac.KindTransient:
		status = http.StatusServiceUnavailable
	default:
		status = http.StatusInternalServerError
	}

	message := err.Error()
	var rerr *rbac.Error
	if errors.As(err, &rerr) {
		message = rerr.Message
	}
	respondError(w, status, message)
}
