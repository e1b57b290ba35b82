package handler

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/mybankuml/banking-portal/internal/api/middleware"
	"github.com/mybankuml/banking-portal/internal/core/domain"
	"github.com/mybankuml/banking-portal/internal/core/ports"
	"github.com/mybankuml/banking-portal/internal/core/service"
)

// stubBankAPI implements the methods handlers call; anything else panics
// through the nil embedded interface.
type stubBankAPI struct {
	ports.BankAPI

	mu    sync.Mutex
	calls map[string]int

	loginFn           func(in ports.LoginInput) (*ports.LoginResult, error)
	registerFn        func(in ports.RegisterInput) (*ports.RegisterResult, error)
	getAccountsFn     func(customerID string) (*ports.AccountsResult, error)
	accountDetailsFn  func(accountID string) (*ports.AccountDetailsResult, error)
	transferFn        func(in ports.TransferInput) (*ports.ReceiptResult, error)
	etransferFn       func(in ports.ETransferInput) (*ports.ReceiptResult, error)
	statementFn       func(in ports.StatementInput) (*ports.StatementResult, error)
	pendingLoansFn    func() (*ports.LoansResult, error)
	approveLoanFn     func(loanID, managerID string) (*ports.Envelope, error)
	adminStatsFn      func() (*ports.StatsResult, error)
	searchUsersFn     func(criteria ports.UserSearch) (*ports.UsersResult, error)
	searchCustomersFn func(criteria ports.UserSearch) (*ports.UsersResult, error)
	assignRoleFn      func(userID, role string) (*ports.Envelope, error)
}

func (s *stubBankAPI) count(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.calls == nil {
		s.calls = map[string]int{}
	}
	s.calls[name]++
}

func (s *stubBankAPI) callCount(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[name]
}

func (s *stubBankAPI) Login(_ context.Context, in ports.LoginInput) (*ports.LoginResult, error) {
	s.count("Login")
	return s.loginFn(in)
}

func (s *stubBankAPI) Register(_ context.Context, in ports.RegisterInput) (*ports.RegisterResult, error) {
	s.count("Register")
	return s.registerFn(in)
}

func (s *stubBankAPI) GetAccounts(_ context.Context, customerID string) (*ports.AccountsResult, error) {
	s.count("GetAccounts")
	if s.getAccountsFn == nil {
		return &ports.AccountsResult{Envelope: ports.Envelope{Success: true}}, nil
	}
	return s.getAccountsFn(customerID)
}

func (s *stubBankAPI) GetAccountDetails(_ context.Context, accountID string) (*ports.AccountDetailsResult, error) {
	s.count("GetAccountDetails")
	return s.accountDetailsFn(accountID)
}

func (s *stubBankAPI) Transfer(_ context.Context, in ports.TransferInput) (*ports.ReceiptResult, error) {
	s.count("Transfer")
	return s.transferFn(in)
}

func (s *stubBankAPI) ETransfer(_ context.Context, in ports.ETransferInput) (*ports.ReceiptResult, error) {
	s.count("ETransfer")
	return s.etransferFn(in)
}

func (s *stubBankAPI) GenerateStatement(_ context.Context, in ports.StatementInput) (*ports.StatementResult, error) {
	s.count("GenerateStatement")
	return s.statementFn(in)
}

func (s *stubBankAPI) PendingLoans(context.Context) (*ports.LoansResult, error) {
	s.count("PendingLoans")
	return s.pendingLoansFn()
}

func (s *stubBankAPI) ApproveLoan(_ context.Context, loanID, managerID string) (*ports.Envelope, error) {
	s.count("ApproveLoan")
	return s.approveLoanFn(loanID, managerID)
}

func (s *stubBankAPI) AdminStats(context.Context) (*ports.StatsResult, error) {
	s.count("AdminStats")
	return s.adminStatsFn()
}

func (s *stubBankAPI) SearchUsers(_ context.Context, criteria ports.UserSearch) (*ports.UsersResult, error) {
	s.count("SearchUsers")
	return s.searchUsersFn(criteria)
}

func (s *stubBankAPI) SearchCustomers(_ context.Context, criteria ports.UserSearch) (*ports.UsersResult, error) {
	s.count("SearchCustomers")
	return s.searchCustomersFn(criteria)
}

func (s *stubBankAPI) AssignRole(_ context.Context, userID, role string) (*ports.Envelope, error) {
	s.count("AssignRole")
	return s.assignRoleFn(userID, role)
}

type mapStorage struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMapStorage() *mapStorage { return &mapStorage{data: map[string][]byte{}} }

func (m *mapStorage) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return v, nil
}

func (m *mapStorage) Save(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *mapStorage) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

type fixedSessions struct {
	store *service.Store
}

func (f fixedSessions) Acquire(context.Context, string) *service.Store { return f.store }

type stubGuard struct {
	seen      map[string]bool
	forgotten []string
}

func (g *stubGuard) Claim(_ context.Context, sessionID, key string) (bool, error) {
	if g.seen == nil {
		g.seen = map[string]bool{}
	}
	k := sessionID + ":" + key
	if g.seen[k] {
		return false, nil
	}
	g.seen[k] = true
	return true, nil
}

func (g *stubGuard) Forget(_ context.Context, sessionID, key string) error {
	delete(g.seen, sessionID+":"+key)
	g.forgotten = append(g.forgotten, key)
	return nil
}

type stubNotifier struct {
	notices []ports.ETransferNotice
	err     error
}

func (n *stubNotifier) NotifyETransfer(_ context.Context, notice ports.ETransferNotice) error {
	n.notices = append(n.notices, notice)
	return n.err
}

// storeAs returns a store restored as userID with role; zero role is anonymous.
func storeAs(t *testing.T, api ports.BankAPI, userID string, role domain.Role) (*service.Store, *mapStorage) {
	t.Helper()
	storage := newMapStorage()
	if role != 0 {
		raw, err := json.Marshal(domain.Identity{UserID: userID, UserName: "Test " + userID, UserRole: role})
		if err != nil {
			t.Fatalf("marshal identity: %v", err)
		}
		storage.data[domain.KeyUser] = raw
	}
	store := service.NewStore("sid-"+userID, api, storage, nil, zerolog.Nop())
	store.Restore(context.Background())
	return store, storage
}

type request struct {
	method  string
	target  string
	body    string
	headers map[string]string
	params  map[string]string
}

// serve runs h behind the Session middleware bound to store and returns the
// recorder and the handler's error.
func serve(t *testing.T, store *service.Store, h echo.HandlerFunc, r request) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()

	req := httptest.NewRequest(r.method, r.target, strings.NewReader(r.body))
	if r.body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if len(r.params) > 0 {
		var names, values []string
		for name, value := range r.params {
			names = append(names, name)
			values = append(values, value)
		}
		c.SetParamNames(names...)
		c.SetParamValues(values...)
	}

	mw := middleware.Session(middleware.SessionConfig{Secret: "test", TTL: time.Hour, Sessions: fixedSessions{store: store}})
	return rec, mw(h)(c)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid json %q: %v", rec.Body.String(), err)
	}
	return out
}

func ok() ports.Envelope { return ports.Envelope{Success: true} }
