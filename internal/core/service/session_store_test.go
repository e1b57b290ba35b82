package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/mybankuml/banking-portal/internal/core/domain"
	"github.com/mybankuml/banking-portal/internal/core/ports"
	"github.com/mybankuml/banking-portal/internal/infrastructure/bankapi"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

// stubBankAPI implements only what the store calls; anything else panics
// through the nil embedded interface.
type stubBankAPI struct {
	ports.BankAPI

	mu            sync.Mutex
	loginFn       func(in ports.LoginInput) (*ports.LoginResult, error)
	getAccountsFn func(customerID string) (*ports.AccountsResult, error)
	loginCalls    int
	accountCalls  []string
}

func (s *stubBankAPI) Login(_ context.Context, in ports.LoginInput) (*ports.LoginResult, error) {
	s.mu.Lock()
	s.loginCalls++
	s.mu.Unlock()
	return s.loginFn(in)
}

func (s *stubBankAPI) GetAccounts(_ context.Context, customerID string) (*ports.AccountsResult, error) {
	s.mu.Lock()
	s.accountCalls = append(s.accountCalls, customerID)
	s.mu.Unlock()
	if s.getAccountsFn == nil {
		return &ports.AccountsResult{Envelope: ports.Envelope{Success: true}}, nil
	}
	return s.getAccountsFn(customerID)
}

func (s *stubBankAPI) accountCallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.accountCalls)
}

type memStorage struct {
	mu      sync.Mutex
	data    map[string][]byte
	loadErr error
	deletes int
}

func newMemStorage() *memStorage {
	return &memStorage{data: make(map[string][]byte)}
}

func (m *memStorage) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *memStorage) Save(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *memStorage) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes++
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func (m *memStorage) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok
}

type recordingAuditor struct {
	mu     sync.Mutex
	events []domain.AuditEvent
}

func (r *recordingAuditor) Record(ev domain.AuditEvent) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func loginAs(userID, role string) func(ports.LoginInput) (*ports.LoginResult, error) {
	return func(ports.LoginInput) (*ports.LoginResult, error) {
		return &ports.LoginResult{
			Envelope: ports.Envelope{Success: true},
			User:     &ports.WireUser{UserID: userID, UserName: "Name " + userID, UserRole: role},
		}, nil
	}
}

func newTestStore(api ports.BankAPI, storage ports.SessionStorage) *Store {
	return NewStore("sid-test", api, storage, nil, zerolog.Nop())
}

// ---------------------------------------------------------------------------
// Login
// ---------------------------------------------------------------------------

func TestStore_Login_ExactlyOneRoleFlag(t *testing.T) {
	for _, role := range domain.Roles {
		t.Run(role.String(), func(t *testing.T) {
			api := &stubBankAPI{loginFn: loginAs("u1", role.String())}
			store := newTestStore(api, newMemStorage())

			id, err := store.Login(context.Background(), Credentials{Username: "u1", Password: "p1"})
			if err != nil {
				t.Fatalf("login failed: %v", err)
			}
			if id.UserRole != role {
				t.Fatalf("expected role %s, got %s", role, id.UserRole)
			}

			f := store.Flags()
			if !f.IsAuthenticated {
				t.Fatal("expected authenticated")
			}
			set := 0
			for _, b := range []bool{f.IsCustomer, f.IsBanker, f.IsBankManager, f.IsAdmin} {
				if b {
					set++
				}
			}
			if set != 1 {
				t.Fatalf("expected exactly one role flag, got %+v", f)
			}
		})
	}
}

func TestStore_Login_PersistsIdentityAndLoadsCustomerAccounts(t *testing.T) {
	api := &stubBankAPI{
		loginFn: loginAs("u1", "customer"),
		getAccountsFn: func(customerID string) (*ports.AccountsResult, error) {
			return &ports.AccountsResult{
				Envelope: ports.Envelope{Success: true},
				Accounts: []domain.Account{{AccountID: "A1", AccountType: "Checking", Balance: 10, CustomerID: customerID}},
			}, nil
		},
	}
	storage := newMemStorage()
	store := newTestStore(api, storage)

	if _, err := store.Login(context.Background(), Credentials{Username: "u1", Password: "p1"}); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if !storage.has(domain.KeyUser) {
		t.Fatal("expected identity persisted")
	}
	if len(api.accountCalls) != 1 || api.accountCalls[0] != "u1" {
		t.Fatalf("expected eager account load for u1, got %v", api.accountCalls)
	}
	if got := store.Accounts(); len(got) != 1 || got[0].AccountID != "A1" {
		t.Fatalf("unexpected accounts: %+v", got)
	}
}

func TestStore_Login_NonCustomerSkipsAccounts(t *testing.T) {
	api := &stubBankAPI{loginFn: loginAs("b1", "banker")}
	store := newTestStore(api, newMemStorage())

	if _, err := store.Login(context.Background(), Credentials{Username: "b1", Password: "x"}); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if api.accountCallCount() != 0 {
		t.Fatalf("expected no account calls, got %d", api.accountCallCount())
	}
}

func TestStore_Login_RejectedLeavesStateUntouched(t *testing.T) {
	api := &stubBankAPI{loginFn: func(ports.LoginInput) (*ports.LoginResult, error) {
		return &ports.LoginResult{Envelope: ports.Envelope{Success: false, Message: "Invalid password"}}, nil
	}}
	storage := newMemStorage()
	audit := &recordingAuditor{}
	store := NewStore("sid", api, storage, audit, zerolog.Nop())

	_, err := store.Login(context.Background(), Credentials{Username: "u1", Password: "bad"})
	if !errors.Is(err, domain.ErrAuthenticationFailed) {
		t.Fatalf("expected ErrAuthenticationFailed, got %v", err)
	}
	var authErr *domain.AuthError
	if !errors.As(err, &authErr) || authErr.Message != "Invalid password" {
		t.Fatalf("expected backend message, got %v", err)
	}
	if store.Flags().IsAuthenticated {
		t.Fatal("expected unauthenticated")
	}
	if storage.has(domain.KeyUser) {
		t.Fatal("expected nothing persisted")
	}
	if len(audit.events) != 1 || audit.events[0].Action != domain.ActionLoginFailed {
		t.Fatalf("expected login_failed audit event, got %+v", audit.events)
	}
}

func TestStore_Login_TransportFailure(t *testing.T) {
	api := &stubBankAPI{loginFn: func(ports.LoginInput) (*ports.LoginResult, error) {
		return nil, domain.ErrRequestFailed
	}}
	store := newTestStore(api, newMemStorage())

	_, err := store.Login(context.Background(), Credentials{Username: "u1", Password: "p1"})
	if !errors.Is(err, domain.ErrRequestFailed) {
		t.Fatalf("expected ErrRequestFailed, got %v", err)
	}
	if store.Flags().IsAuthenticated {
		t.Fatal("expected unauthenticated after transport failure")
	}
}

func TestStore_Login_UnsupportedRole(t *testing.T) {
	api := &stubBankAPI{loginFn: loginAs("u1", "teller")}
	store := newTestStore(api, newMemStorage())

	_, err := store.Login(context.Background(), Credentials{Username: "u1", Password: "p1"})
	if !errors.Is(err, domain.ErrAuthenticationFailed) {
		t.Fatalf("expected ErrAuthenticationFailed, got %v", err)
	}
	if store.Flags().IsAuthenticated {
		t.Fatal("expected unauthenticated")
	}
}

func TestStore_Login_MissingCredentialsNeverCallsBackend(t *testing.T) {
	api := &stubBankAPI{loginFn: loginAs("u1", "customer")}
	store := newTestStore(api, newMemStorage())

	_, err := store.Login(context.Background(), Credentials{Username: "  ", Password: "p1"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if api.loginCalls != 0 {
		t.Fatalf("expected no backend call, got %d", api.loginCalls)
	}
}

// ---------------------------------------------------------------------------
// Logout
// ---------------------------------------------------------------------------

func TestStore_Logout_ClearsEverything(t *testing.T) {
	api := &stubBankAPI{loginFn: loginAs("u1", "customer")}
	storage := newMemStorage()
	store := newTestStore(api, storage)

	if _, err := store.Login(context.Background(), Credentials{Username: "u1", Password: "p1"}); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if err := store.SaveReceipt(context.Background(), domain.Receipt{ReferenceNumber: "R1", Amount: 5}); err != nil {
		t.Fatalf("save receipt: %v", err)
	}

	if got := store.Logout(context.Background()); got != domain.PathLogin {
		t.Fatalf("expected redirect to /login, got %q", got)
	}
	if store.Flags().IsAuthenticated {
		t.Fatal("expected unauthenticated after logout")
	}
	if storage.has(domain.KeyUser) || storage.has(domain.KeyLastReceipt) {
		t.Fatal("expected persisted identity and receipt removed")
	}
	if len(store.Accounts()) != 0 {
		t.Fatal("expected account cache cleared")
	}
}

func TestStore_Logout_WhenAnonymousStillClearsStorage(t *testing.T) {
	storage := newMemStorage()
	storage.data[domain.KeyLastReceipt] = []byte(`{"referenceNumber":"R9"}`)
	store := newTestStore(&stubBankAPI{}, storage)

	store.Logout(context.Background())
	if storage.has(domain.KeyLastReceipt) {
		t.Fatal("expected receipt cleared")
	}
	if store.Flags().IsAuthenticated {
		t.Fatal("expected unauthenticated")
	}
}

// ---------------------------------------------------------------------------
// LoadAccounts
// ---------------------------------------------------------------------------

func TestStore_LoadAccounts_NonCustomerNeverCallsBackend(t *testing.T) {
	for _, role := range []string{"", "banker", "bank_manager", "admin"} {
		api := &stubBankAPI{loginFn: loginAs("x1", role)}
		store := newTestStore(api, newMemStorage())
		if role != "" {
			if _, err := store.Login(context.Background(), Credentials{Username: "x1", Password: "p"}); err != nil {
				t.Fatalf("login as %q: %v", role, err)
			}
		}

		accounts, err := store.LoadAccounts(context.Background(), "c1")
		if err != nil {
			t.Fatalf("role %q: unexpected error %v", role, err)
		}
		if len(accounts) != 0 || len(store.Accounts()) != 0 {
			t.Fatalf("role %q: expected empty cache", role)
		}
		if api.accountCallCount() != 0 {
			t.Fatalf("role %q: expected no network call", role)
		}
	}
}

func TestStore_LoadAccounts_FailureEmptiesCache(t *testing.T) {
	fail := false
	api := &stubBankAPI{
		loginFn: loginAs("u1", "customer"),
		getAccountsFn: func(string) (*ports.AccountsResult, error) {
			if fail {
				return nil, domain.ErrRequestFailed
			}
			return &ports.AccountsResult{
				Envelope: ports.Envelope{Success: true},
				Accounts: []domain.Account{{AccountID: "A1"}},
			}, nil
		},
	}
	store := newTestStore(api, newMemStorage())
	if _, err := store.Login(context.Background(), Credentials{Username: "u1", Password: "p1"}); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if len(store.Accounts()) != 1 {
		t.Fatal("expected one cached account")
	}

	fail = true
	if _, err := store.LoadAccounts(context.Background(), ""); !errors.Is(err, domain.ErrRequestFailed) {
		t.Fatalf("expected ErrRequestFailed, got %v", err)
	}
	if len(store.Accounts()) != 0 {
		t.Fatal("expected cache emptied, not stale")
	}
}

func TestStore_LoadAccounts_BackendRefusalEmptiesCache(t *testing.T) {
	api := &stubBankAPI{
		loginFn: loginAs("u1", "customer"),
		getAccountsFn: func(string) (*ports.AccountsResult, error) {
			return &ports.AccountsResult{Envelope: ports.Envelope{Message: "User is not a customer"}}, nil
		},
	}
	store := newTestStore(api, newMemStorage())
	if _, err := store.Login(context.Background(), Credentials{Username: "u1", Password: "p1"}); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	_, err := store.LoadAccounts(context.Background(), "")
	if !errors.Is(err, domain.ErrRejected) {
		t.Fatalf("expected ErrRejected, got %v", err)
	}
	if len(store.Accounts()) != 0 {
		t.Fatal("expected empty cache")
	}
}

func TestStore_LoadAccounts_ReplacesWholesale(t *testing.T) {
	calls := 0
	api := &stubBankAPI{
		loginFn: loginAs("u1", "customer"),
		getAccountsFn: func(string) (*ports.AccountsResult, error) {
			calls++
			accounts := []domain.Account{{AccountID: "A1"}, {AccountID: "A2"}}
			if calls > 1 {
				accounts = []domain.Account{{AccountID: "A3"}}
			}
			return &ports.AccountsResult{Envelope: ports.Envelope{Success: true}, Accounts: accounts}, nil
		},
	}
	store := newTestStore(api, newMemStorage())
	if _, err := store.Login(context.Background(), Credentials{Username: "u1", Password: "p1"}); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if _, err := store.LoadAccounts(context.Background(), ""); err != nil {
		t.Fatalf("reload failed: %v", err)
	}

	got := store.Accounts()
	if len(got) != 1 || got[0].AccountID != "A3" {
		t.Fatalf("expected cache replaced by [A3], got %+v", got)
	}
}

// ---------------------------------------------------------------------------
// Restore
// ---------------------------------------------------------------------------

func TestStore_Restore_IsIdempotent(t *testing.T) {
	storage := newMemStorage()
	raw, _ := json.Marshal(domain.Identity{UserID: "u1", UserName: "Una", UserRole: domain.RoleBankManager})
	storage.data[domain.KeyUser] = raw
	store := newTestStore(&stubBankAPI{}, storage)

	store.Restore(context.Background())
	first, ok1 := store.Identity()
	flags1 := store.Flags()

	store.Restore(context.Background())
	second, ok2 := store.Identity()
	flags2 := store.Flags()

	if !ok1 || !ok2 || first != second || flags1 != flags2 {
		t.Fatalf("restore not idempotent: %+v/%+v vs %+v/%+v", first, flags1, second, flags2)
	}
	if !flags1.IsBankManager {
		t.Fatalf("expected bank manager flags, got %+v", flags1)
	}
}

func TestStore_Restore_CorruptValueIsDiscarded(t *testing.T) {
	for name, raw := range map[string]string{
		"not json":     "{user",
		"unknown role": `{"userID":"u1","userRole":"wizard"}`,
		"missing id":   `{"userRole":"customer"}`,
		"missing role": `{"userID":"u1"}`,
	} {
		t.Run(name, func(t *testing.T) {
			storage := newMemStorage()
			storage.data[domain.KeyUser] = []byte(raw)
			store := newTestStore(&stubBankAPI{}, storage)

			store.Restore(context.Background())
			if store.Flags().IsAuthenticated {
				t.Fatal("expected unauthenticated")
			}
			if storage.has(domain.KeyUser) {
				t.Fatal("expected corrupt value deleted")
			}

			store.Restore(context.Background())
			if store.Flags().IsAuthenticated {
				t.Fatal("expected unauthenticated on second restore")
			}
		})
	}
}

func TestStore_Restore_StorageErrorMeansNoSession(t *testing.T) {
	storage := newMemStorage()
	storage.loadErr = errors.New("redis down")
	store := newTestStore(&stubBankAPI{}, storage)

	if store.Restore(context.Background()) {
		t.Fatal("expected restore to report an unsettled session")
	}
	if store.Flags().IsAuthenticated {
		t.Fatal("expected unauthenticated")
	}
}

func TestStore_Restore_StorageErrorKeepsLiveIdentity(t *testing.T) {
	storage := newMemStorage()
	store := newTestStore(&stubBankAPI{loginFn: loginAs("b1", "banker")}, storage)
	if _, err := store.Login(context.Background(), Credentials{Username: "b1", Password: "p"}); err != nil {
		t.Fatalf("login: %v", err)
	}

	storage.mu.Lock()
	storage.loadErr = errors.New("redis down")
	storage.mu.Unlock()

	store.Restore(context.Background())
	if !store.Flags().IsBanker {
		t.Fatal("a storage error must not log the session out")
	}
}

// ---------------------------------------------------------------------------
// Receipts
// ---------------------------------------------------------------------------

func TestStore_LastReceipt(t *testing.T) {
	storage := newMemStorage()
	store := newTestStore(&stubBankAPI{}, storage)

	if _, err := store.LastReceipt(context.Background()); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	want := domain.Receipt{ReferenceNumber: "REF-1", Amount: 25.5, DateTimeIssued: "2026-01-02T03:04:05"}
	if err := store.SaveReceipt(context.Background(), want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := store.LastReceipt(context.Background())
	if err != nil || got != want {
		t.Fatalf("expected %+v, got %+v (%v)", want, got, err)
	}

	storage.data[domain.KeyLastReceipt] = []byte("garbage")
	if _, err := store.LastReceipt(context.Background()); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for corrupt receipt, got %v", err)
	}
	if storage.has(domain.KeyLastReceipt) {
		t.Fatal("expected corrupt receipt deleted")
	}
}

// ---------------------------------------------------------------------------
// Round trip against the real API client
// ---------------------------------------------------------------------------

func TestStore_RoundTrip_LoginThenLoadAccountsHitsCustomerPath(t *testing.T) {
	var (
		mu    sync.Mutex
		paths []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.Method+" "+r.URL.Path)
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/auth/login":
			var in ports.LoginInput
			_ = json.NewDecoder(r.Body).Decode(&in)
			if in.Username != "u1" || in.Password != "p1" {
				t.Errorf("unexpected credentials: %+v", in)
			}
			_, _ = w.Write([]byte(`{"success":true,"user":{"userID":"u1","userRole":"customer"}}`))
		case "/api/accounts/u1":
			_, _ = w.Write([]byte(`{"success":true,"accounts":[{"accountID":"A1","accountType":"Checking","balance":12.5,"customerID":"u1"}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := bankapi.New(srv.URL+"/api", &http.Client{Timeout: 2 * time.Second}, zerolog.Nop())
	store := newTestStore(client, newMemStorage())

	if _, err := store.Login(context.Background(), Credentials{Username: "u1", Password: "p1"}); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if !store.Flags().IsCustomer {
		t.Fatal("expected customer session")
	}
	if _, err := store.LoadAccounts(context.Background(), ""); err != nil {
		t.Fatalf("load accounts: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	last := paths[len(paths)-1]
	if last != "GET /api/accounts/u1" {
		t.Fatalf("expected GET /api/accounts/u1, got %v", paths)
	}
}
