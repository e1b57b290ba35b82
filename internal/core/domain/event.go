package domain

import "time"

// AuditAction names a session event worth keeping in the audit trail.
type AuditAction string

const (
	ActionLogin        AuditAction = "login"
	ActionLoginFailed  AuditAction = "login_failed"
	ActionLogout       AuditAction = "logout"
	ActionAccessDenied AuditAction = "access_denied"
	ActionTransfer     AuditAction = "transfer"
	ActionETransfer    AuditAction = "etransfer"
	ActionRoleAssigned AuditAction = "role_assigned"
	ActionLoanDecision AuditAction = "loan_decision"
)

// AuditEvent is a single entry in the portal's access audit trail.
type AuditEvent struct {
	SessionID  string
	UserID     string // empty for anonymous sessions
	Role       string
	Action     AuditAction
	Detail     string
	OccurredAt time.Time
}
