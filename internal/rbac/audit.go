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
	"log/slog"

	"github.com/google/uuid"
	"github.com/rbacforge/rbac/internal/observability/logger"
)

// Audit event types, one per mutating Repository operation plus the orphan
// sweep that converges half-linked assignment rows.
const (
	AuditResourceCreated  = "resource_created"
	AuditResourceDeleted  = "resource_deleted"
	AuditScopeCreated     = "scope_created"
	AuditScopeDeleted     = "scope_deleted"
	AuditRoleCreated      = "role_created"
	AuditRoleDeleted      = "role_deleted"
	AuditScopeAssigned    = "scope_assignment_granted"
	AuditScopeRevoked     = "scope_assignment_revoked"
	AuditRoleAssigned     = "role_assignment_granted"
	AuditRoleRevoked      = "role_assignment_revoked"
	AuditPrincipalDeleted = "principal_deleted"
	AuditOrphanSwept      = "orphan_swept"
)

// AuditEvent is one structured, audit-relevant fact about the repository's
// state, carrying only the fields an RBAC repository actually emits.
type AuditEvent struct {
	Type         string
	PrincipalID  string
	ResourceName string
	ScopeName    string
	RoleName     string
	Result       string // success, already_exists
	Detail       string
}

// AuditLogger emits one structured log line per AuditEvent via slog.
type AuditLogger struct {
	log *slog.Logger
}

// NewAuditLogger wraps log for audit-event emission.
func NewAuditLogger(log *slog.Logger) *AuditLogger {
	return &AuditLogger{log: log.With(slog.String("component", "rbac.audit"))}
}

// Log emits event at info level (warn for orphan sweeps, which are logged
// once per swept resource whether or not any row was repaired). Each emitted
// line carries a
// fresh event id so operators can correlate a single audit fact across log
// aggregation even when PrincipalID/ResourceName repeat across many events.
func (a *AuditLogger) Log(ctx context.Context, event AuditEvent) {
	attrs := []slog.Attr{
		slog.String("event_id", uuid.NewString()),
		slog.String("event_type", event.Type),
		slog.String("result", event.Result),
	}
	if event.PrincipalID != "" {
		attrs = append(attrs, logger.PrincipalID(event.PrincipalID))
	}
	if event.ResourceName != "" {
		attrs = append(attrs, logger.ResourceName(event.ResourceName))
	}
	if event.ScopeName != "" {
		attrs = append(attrs, slog.String("scope", event.ScopeName))
	}
	if event.RoleName != "" {
		attrs = append(attrs, slog.String("role", event.RoleName))
	}
	if event.Detail != "" {
		attrs = append(attrs, slog.String("detail", event.Detail))
	}

	level := slog.LevelInfo
	if event.Type == AuditOrphanSwept {
		level = slog.LevelWarn
	}
	a.log.LogAttrs(ctx, level, "rbac_audit_event", attrs...)
}
