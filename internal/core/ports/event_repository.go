package ports

import (
	"context"

	"github.com/mybankuml/banking-portal/internal/core/domain"
)

// AuditRepository persists audit events.
type AuditRepository interface {
	// InsertEvent appends an event to the audit collection.
	InsertEvent(ctx context.Context, event *domain.AuditEvent) error
}

// AuditRecorder accepts audit events without blocking the caller.
type AuditRecorder interface {
	Record(event domain.AuditEvent)
}

// NopAuditor discards every event.
type NopAuditor struct{}

func (NopAuditor) Record(domain.AuditEvent) {}
