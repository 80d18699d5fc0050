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

// Package rbac implements the core RBAC repository: a single facade over a
// wide key-value table, administering Resources, Scopes, Roles, and the two
// assignment relations between Principals and those entities.
//
// The package is organized as one struct (Repository) whose methods live in
// files grouped by sub-repository: resource_store.go, scope_store.go,
// role_store.go, scope_assignment_store.go, role_assignment_store.go,
// access.go, and cascade.go.
package rbac

import (
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Repository is the public surface of the authorization store: CRUD over
// resources/scopes/roles, assignment/revocation of scopes and roles, and
// computed access for a (principal, resource[, scope]) tuple.
type Repository struct {
	gw Gateway

	resourceValidator NameValidator
	scopeValidator    NameValidator
	roleValidator     NameValidator

	log    *slog.Logger
	audit  *AuditLogger
	tracer trace.Tracer
}

// Option configures a Repository constructed by NewRepository.
type Option func(*Repository)

// WithValidators overrides the default per-name-class NameValidator. All
// three default to DefaultValidator{} if not supplied.
func WithValidators(resourceV, scopeV, roleV NameValidator) Option {
	return func(r *Repository) {
		if resourceV != nil {
			r.resourceValidator = resourceV
		}
		if scopeV != nil {
			r.scopeValidator = scopeV
		}
		if roleV != nil {
			r.roleValidator = roleV
		}
	}
}

// WithLogger overrides the default slog.Logger (slog.Default() otherwise).
func WithLogger(log *slog.Logger) Option {
	return func(r *Repository) { r.log = log }
}

// WithAuditLogger attaches an AuditLogger that emits one structured event
// per mutating operation.
func WithAuditLogger(audit *AuditLogger) Option {
	return func(r *Repository) { r.audit = audit }
}

// NewRepository constructs a Repository over gw. gw is typically a
// dynamoGateway (NewDynamoGateway) in production or a memoryGateway
// (NewMemoryGateway) in tests.
func NewRepository(gw Gateway, opts ...Option) *Repository {
	r := &Repository{
		gw:                gw,
		resourceValidator: DefaultValidator{},
		scopeValidator:    DefaultValidator{},
		roleValidator:     DefaultValidator{},
		log:               slog.Default().With(slog.String("component", "rbac")),
		tracer:            otel.Tracer("rbac"),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.audit == nil {
		r.audit = NewAuditLogger(r.log)
	}
	return r
}
