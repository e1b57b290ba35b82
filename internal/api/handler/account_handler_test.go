package handler

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/mybankuml/banking-portal/internal/core/domain"
	"github.com/mybankuml/banking-portal/internal/core/ports"
)

func TestAccountHandler_DashboardLoadFailureStillRenders(t *testing.T) {
	api := &stubBankAPI{
		getAccountsFn: func(string) (*ports.AccountsResult, error) {
			return nil, domain.ErrRequestFailed
		},
	}
	store, _ := storeAs(t, api, "c1", domain.RoleCustomer)
	h := NewAccountHandler(api, zerolog.Nop())

	rec, err := serve(t, store, h.Dashboard, request{method: http.MethodGet, target: "/dashboard"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	resp := decode[dashboardResponse](t, rec)
	if resp.Message != "Failed to load accounts" {
		t.Fatalf("expected load failure message, got %q", resp.Message)
	}
	if resp.Accounts == nil || len(resp.Accounts) != 0 {
		t.Fatalf("expected empty account list, got %v", resp.Accounts)
	}
	if resp.User.UserID != "c1" {
		t.Fatalf("expected profile in response, got %+v", resp.User)
	}
}

func TestAccountHandler_DetailsOwnerMismatch(t *testing.T) {
	cases := []struct {
		name  string
		owner string
	}{
		{"another customer", "someone-else"},
		{"owner missing", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			api := &stubBankAPI{
				accountDetailsFn: func(accountID string) (*ports.AccountDetailsResult, error) {
					return &ports.AccountDetailsResult{Envelope: ok(), Account: &domain.AccountDetails{
						Account: domain.Account{AccountID: accountID, CustomerID: tc.owner},
					}}, nil
				},
			}
			store, _ := storeAs(t, api, "c1", domain.RoleCustomer)
			h := NewAccountHandler(api, zerolog.Nop())

			_, err := serve(t, store, h.Details, request{
				method: http.MethodGet,
				target: "/accounts/A9",
				params: map[string]string{"accountID": "A9"},
			})
			if !errors.Is(err, domain.ErrAuthorizationDenied) {
				t.Fatalf("expected ErrAuthorizationDenied, got %v", err)
			}
		})
	}
}

func TestAccountHandler_DetailsOwnAccount(t *testing.T) {
	api := &stubBankAPI{
		accountDetailsFn: func(accountID string) (*ports.AccountDetailsResult, error) {
			return &ports.AccountDetailsResult{Envelope: ok(), Account: &domain.AccountDetails{
				Account:      domain.Account{AccountID: accountID, CustomerID: "c1", Balance: 10},
				Transactions: []domain.Transaction{{TransactionID: "T1"}},
			}}, nil
		},
	}
	store, _ := storeAs(t, api, "c1", domain.RoleCustomer)
	h := NewAccountHandler(api, zerolog.Nop())

	rec, err := serve(t, store, h.Details, request{
		method: http.MethodGet,
		target: "/accounts/A1",
		params: map[string]string{"accountID": "A1"},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	resp := decode[accountDetailsResponse](t, rec)
	if resp.Account == nil || resp.Account.AccountID != "A1" || len(resp.Account.Transactions) != 1 {
		t.Fatalf("unexpected details %+v", resp.Account)
	}
}

func TestAccountHandler_StatementPeriod(t *testing.T) {
	api := &stubBankAPI{
		statementFn: func(in ports.StatementInput) (*ports.StatementResult, error) {
			return &ports.StatementResult{Envelope: ok(), Statement: &domain.Statement{StatementID: "S1", Year: in.Year, Month: in.Month}}, nil
		},
	}
	store, _ := storeAs(t, api, "c1", domain.RoleCustomer)
	h := NewAccountHandler(api, zerolog.Nop())
	h.now = func() time.Time { return time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC) }

	cases := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"current month", `{"accountIDs":["A1"],"year":2026,"month":3}`, false},
		{"past year", `{"accountIDs":["A1","A2"],"year":2025,"month":12}`, false},
		{"next month", `{"accountIDs":["A1"],"year":2026,"month":4}`, true},
		{"next year", `{"accountIDs":["A1"],"year":2027,"month":1}`, true},
		{"no accounts", `{"accountIDs":[],"year":2025,"month":1}`, true},
		{"month out of range", `{"accountIDs":["A1"],"year":2025,"month":13}`, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := serve(t, store, h.Statement, request{method: http.MethodPost, target: "/statements", body: tc.body})
			if tc.wantErr {
				if !errors.Is(err, domain.ErrValidation) {
					t.Fatalf("expected ErrValidation, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})
	}

	if n := api.callCount("GenerateStatement"); n != 2 {
		t.Fatalf("expected 2 backend calls, got %d", n)
	}
}
