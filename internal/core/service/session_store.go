package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mybankuml/banking-portal/internal/core/domain"
	"github.com/mybankuml/banking-portal/internal/core/ports"
)

// Credentials are the username/password pair submitted at login.
type Credentials struct {
	Username string
	Password string
}

// Store is the session and role authority for one browser session: who is
// logged in, what they may do, and the read-only account cache. Only its own
// methods mutate that state.
type Store struct {
	sessionID string
	api       ports.BankAPI
	storage   ports.SessionStorage
	audit     ports.AuditRecorder
	log       zerolog.Logger
	now       func() time.Time

	mu       sync.RWMutex
	identity *domain.Identity

	accounts Latest[[]domain.Account]
	searches Latest[[]domain.UserSummary]
}

// NewStore returns an unauthenticated store. Call Restore to pick up a
// persisted identity.
func NewStore(sessionID string, api ports.BankAPI, storage ports.SessionStorage, audit ports.AuditRecorder, log zerolog.Logger) *Store {
	if audit == nil {
		audit = ports.NopAuditor{}
	}
	return &Store{
		sessionID: sessionID,
		api:       api,
		storage:   storage,
		audit:     audit,
		log:       log.With().Str("session_id", sessionID).Logger(),
		now:       time.Now,
	}
}

// SessionID returns the browser session this store belongs to.
func (s *Store) SessionID() string { return s.sessionID }

// Restore loads the persisted identity. A missing or corrupt value leaves
// the session unauthenticated; a corrupt value is deleted. It reports false
// when storage could not be read, in which case the session is left as it
// was and Restore should be retried.
func (s *Store) Restore(ctx context.Context) bool {
	raw, err := s.storage.Load(ctx, domain.KeyUser)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.log.Warn().Err(err).Msg("session storage unavailable, continuing unauthenticated")
			return false
		}
		s.setIdentity(nil)
		return true
	}

	id, err := decodeIdentity(raw)
	if err != nil {
		s.log.Warn().Err(err).Msg("discarding corrupt persisted session")
		if delErr := s.storage.Delete(ctx, domain.KeyUser); delErr != nil {
			s.log.Warn().Err(delErr).Msg("failed to clear corrupt session")
		}
		s.setIdentity(nil)
		return true
	}
	s.setIdentity(&id)
	return true
}

// Login authenticates against the backend. On any failure the session is left
// exactly as it was.
func (s *Store) Login(ctx context.Context, creds Credentials) (domain.Identity, error) {
	username := strings.TrimSpace(creds.Username)
	if username == "" || creds.Password == "" {
		return domain.Identity{}, domain.Invalid("username and password are required")
	}

	res, err := s.api.Login(ctx, ports.LoginInput{Username: username, Password: creds.Password})
	if err != nil {
		s.record(domain.ActionLoginFailed, nil, "transport: "+err.Error())
		return domain.Identity{}, fmt.Errorf("login: %w", err)
	}
	if !res.Success || res.User == nil {
		authErr := &domain.AuthError{Message: res.Message}
		s.record(domain.ActionLoginFailed, nil, username+": "+authErr.Error())
		return domain.Identity{}, authErr
	}

	id, err := identityFromWire(*res.User)
	if err != nil {
		s.record(domain.ActionLoginFailed, nil, username+": "+err.Error())
		return domain.Identity{}, &domain.AuthError{Message: "Unsupported user role"}
	}

	s.mu.Lock()
	s.identity = &id
	s.mu.Unlock()
	s.accounts.Reset()
	s.searches.Reset()

	if err := s.persistIdentity(ctx, id); err != nil {
		s.log.Error().Err(err).Str("user_id", id.UserID).Msg("failed to persist session")
	}

	if id.UserRole == domain.RoleCustomer {
		if _, err := s.LoadAccounts(ctx, id.UserID); err != nil {
			s.log.Warn().Err(err).Str("user_id", id.UserID).Msg("accounts not loaded after login")
		}
	}

	s.record(domain.ActionLogin, &id, "")
	s.log.Info().Str("user_id", id.UserID).Str("role", id.UserRole.String()).Msg("login succeeded")
	return id, nil
}

// Logout clears the identity, the account cache and every persisted value of
// the session. It returns the login entry point.
func (s *Store) Logout(ctx context.Context) string {
	s.mu.Lock()
	prev := s.identity
	s.identity = nil
	s.mu.Unlock()

	s.accounts.Reset()
	s.searches.Reset()

	if err := s.storage.Delete(ctx, domain.KeyUser, domain.KeyLastReceipt); err != nil {
		s.log.Error().Err(err).Msg("failed to clear persisted session")
	}

	s.record(domain.ActionLogout, prev, "")
	return domain.PathLogin
}

// handOver moves the identity and account cache to next, persisting the
// identity under next's session, then clears this store and its persisted
// keys.
func (s *Store) handOver(ctx context.Context, next *Store) {
	id := s.snapshot()
	accounts := s.accounts.Value()

	s.setIdentity(nil)
	if err := s.storage.Delete(ctx, domain.KeyUser, domain.KeyLastReceipt); err != nil {
		s.log.Error().Err(err).Msg("failed to clear rotated session")
	}
	if id == nil {
		return
	}

	next.setIdentity(id)
	if err := next.persistIdentity(ctx, *id); err != nil {
		next.log.Error().Err(err).Str("user_id", id.UserID).Msg("failed to persist rotated session")
	}
	if accounts != nil {
		next.accounts.Commit(next.accounts.Begin(), cloneAccounts(accounts))
	}
}

// LoadAccounts refreshes the account cache. It does nothing except clear the
// cache when the active identity is not a customer. An empty customerID means
// the active identity. On failure the cache is emptied, never left stale.
func (s *Store) LoadAccounts(ctx context.Context, customerID string) ([]domain.Account, error) {
	id := s.snapshot()
	if id == nil || id.UserRole != domain.RoleCustomer {
		s.accounts.Reset()
		return nil, nil
	}
	if customerID == "" {
		customerID = id.UserID
	}

	seq := s.accounts.Begin()
	res, err := s.api.GetAccounts(ctx, customerID)
	if err != nil {
		s.accounts.Commit(seq, nil)
		return nil, fmt.Errorf("load accounts: %w", err)
	}
	if err := res.Failure(); err != nil {
		s.accounts.Commit(seq, nil)
		return nil, fmt.Errorf("load accounts: %w", err)
	}

	accounts := append([]domain.Account{}, res.Accounts...)
	if !s.accounts.Commit(seq, accounts) {
		s.log.Debug().Uint64("seq", seq).Msg("stale account list discarded")
	}
	return cloneAccounts(accounts), nil
}

// Identity returns a copy of the active identity.
func (s *Store) Identity() (domain.Identity, bool) {
	id := s.snapshot()
	if id == nil {
		return domain.Identity{}, false
	}
	return *id, true
}

// Flags derives the role flags from the active identity.
func (s *Store) Flags() domain.RoleFlags {
	return domain.FlagsFor(s.snapshot())
}

// Accounts returns a copy of the cached account list.
func (s *Store) Accounts() []domain.Account {
	return cloneAccounts(s.accounts.Value())
}

// Searches is the stale-response guard for this session's search views.
func (s *Store) Searches() *Latest[[]domain.UserSummary] {
	return &s.searches
}

// SaveReceipt persists the receipt of the last completed funds movement.
func (s *Store) SaveReceipt(ctx context.Context, r domain.Receipt) error {
	raw, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode receipt: %w", err)
	}
	if err := s.storage.Save(ctx, domain.KeyLastReceipt, raw); err != nil {
		return fmt.Errorf("save receipt: %w", err)
	}
	return nil
}

// LastReceipt returns the last persisted receipt or domain.ErrNotFound.
func (s *Store) LastReceipt(ctx context.Context) (domain.Receipt, error) {
	raw, err := s.storage.Load(ctx, domain.KeyLastReceipt)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Receipt{}, domain.ErrNotFound
		}
		return domain.Receipt{}, fmt.Errorf("load receipt: %w", err)
	}

	var r domain.Receipt
	if err := json.Unmarshal(raw, &r); err != nil || r.ReferenceNumber == "" {
		s.log.Warn().Msg("discarding corrupt receipt")
		if delErr := s.storage.Delete(ctx, domain.KeyLastReceipt); delErr != nil {
			s.log.Warn().Err(delErr).Msg("failed to clear corrupt receipt")
		}
		return domain.Receipt{}, domain.ErrNotFound
	}
	return r, nil
}

// Record adds an event for this session to the audit trail.
func (s *Store) Record(action domain.AuditAction, detail string) {
	s.record(action, s.snapshot(), detail)
}

func (s *Store) record(action domain.AuditAction, id *domain.Identity, detail string) {
	ev := domain.AuditEvent{
		SessionID:  s.sessionID,
		Action:     action,
		Detail:     detail,
		OccurredAt: s.now().UTC(),
	}
	if id != nil {
		ev.UserID = id.UserID
		ev.Role = id.UserRole.String()
	}
	s.audit.Record(ev)
}

func (s *Store) snapshot() *domain.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return nil
	}
	id := *s.identity
	return &id
}

func (s *Store) setIdentity(id *domain.Identity) {
	s.mu.Lock()
	prev := s.identity
	s.identity = id
	s.mu.Unlock()

	if prev == nil || id == nil || *prev != *id {
		s.accounts.Reset()
		s.searches.Reset()
	}
}

func (s *Store) persistIdentity(ctx context.Context, id domain.Identity) error {
	raw, err := json.Marshal(id)
	if err != nil {
		return fmt.Errorf("encode identity: %w", err)
	}
	return s.storage.Save(ctx, domain.KeyUser, raw)
}

func decodeIdentity(raw []byte) (domain.Identity, error) {
	var id domain.Identity
	if err := json.Unmarshal(raw, &id); err != nil {
		return domain.Identity{}, fmt.Errorf("decode identity: %w", err)
	}
	if id.UserID == "" || !id.UserRole.Valid() {
		return domain.Identity{}, errors.New("decode identity: missing user id or role")
	}
	return id, nil
}

func identityFromWire(u ports.WireUser) (domain.Identity, error) {
	if u.UserID == "" {
		return domain.Identity{}, errors.New("backend returned a user without id")
	}
	role, err := domain.ParseRole(u.UserRole)
	if err != nil {
		return domain.Identity{}, err
	}
	return domain.Identity{
		UserID:    u.UserID,
		UserName:  u.UserName,
		UserEmail: u.UserEmail,
		UserRole:  role,
	}, nil
}

func cloneAccounts(in []domain.Account) []domain.Account {
	if len(in) == 0 {
		return []domain.Account{}
	}
	return append([]domain.Account(nil), in...)
}
