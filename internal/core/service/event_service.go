package service

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/mybankuml/banking-portal/internal/core/domain"
	"github.com/mybankuml/banking-portal/internal/core/ports"
)

const maxAuditDetail = 512

// AuditService writes session events to the audit trail.
type AuditService interface {
	Process(ctx context.Context, event domain.AuditEvent) error
}

type auditService struct {
	repo ports.AuditRepository
	log  zerolog.Logger
	now  func() time.Time
}

// NewAuditService returns an AuditService backed by repo.
func NewAuditService(repo ports.AuditRepository, log zerolog.Logger) AuditService {
	return &auditService{repo: repo, log: log, now: time.Now}
}

// Process normalises and persists a single audit event.
func (s *auditService) Process(ctx context.Context, ev domain.AuditEvent) error {
	if ev.Action == "" {
		return errors.New("process audit event: missing action")
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = s.now().UTC()
	}
	ev.Detail = truncateDetail(ev.Detail, maxAuditDetail)

	if err := s.repo.InsertEvent(ctx, &ev); err != nil {
		return fmt.Errorf("process audit event: %w", err)
	}

	s.log.Debug().
		Str("session_id", ev.SessionID).
		Str("user_id", ev.UserID).
		Str("action", string(ev.Action)).
		Msg("audit event stored")
	return nil
}

// truncateDetail cuts s to at most max bytes without splitting a rune.
func truncateDetail(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
