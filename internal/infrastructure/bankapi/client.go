// Package bankapi is the HTTP client for the banking backend. It is the only
// component of the portal that talks to the backend.
package bankapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mybankuml/banking-portal/internal/api/metrics"
	"github.com/mybankuml/banking-portal/internal/core/domain"
	"github.com/mybankuml/banking-portal/internal/core/ports"
)

const (
	defaultTimeout = 10 * time.Second
	failedMessage  = "Request failed"
	maxBodyBytes   = 4 << 20
)

// envelope is satisfied by every *Result type through the embedded
// ports.Envelope.
type envelope interface {
	MarkFailed(fallback string)
	Failure() error
}

// Client implements ports.BankAPI over HTTP/JSON.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

var _ ports.BankAPI = (*Client)(nil)

// New creates a Client for baseURL. A nil httpClient gets a client with a
// 10 second timeout.
func New(baseURL string, httpClient *http.Client, log zerolog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		log:     log.With().Str("component", "bankapi").Logger(),
	}
}

// ── Auth ──────────────────────────────────────────────────────────────────────

func (c *Client) Login(ctx context.Context, in ports.LoginInput) (*ports.LoginResult, error) {
	out := &ports.LoginResult{}
	if err := c.do(ctx, "login", http.MethodPost, "/auth/login", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Register(ctx context.Context, in ports.RegisterInput) (*ports.RegisterResult, error) {
	out := &ports.RegisterResult{}
	if err := c.do(ctx, "register", http.MethodPost, "/auth/register", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

// ── Accounts ──────────────────────────────────────────────────────────────────

func (c *Client) GetAccounts(ctx context.Context, customerID string) (*ports.AccountsResult, error) {
	out := &ports.AccountsResult{}
	if err := c.do(ctx, "get_accounts", http.MethodGet, "/accounts/"+url.PathEscape(customerID), nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateAccount(ctx context.Context, in ports.CreateAccountInput) (*ports.CreateAccountResult, error) {
	out := &ports.CreateAccountResult{}
	if err := c.do(ctx, "create_account", http.MethodPost, "/accounts/create", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetAccountDetails(ctx context.Context, accountID string) (*ports.AccountDetailsResult, error) {
	out := &ports.AccountDetailsResult{}
	if err := c.do(ctx, "get_account_details", http.MethodGet, "/accounts/details/"+url.PathEscape(accountID), nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

// ── Transactions ──────────────────────────────────────────────────────────────

func (c *Client) Transfer(ctx context.Context, in ports.TransferInput) (*ports.ReceiptResult, error) {
	out := &ports.ReceiptResult{}
	if err := c.do(ctx, "transfer", http.MethodPost, "/transactions/transfer", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ETransfer(ctx context.Context, in ports.ETransferInput) (*ports.ReceiptResult, error) {
	out := &ports.ReceiptResult{}
	if err := c.do(ctx, "etransfer", http.MethodPost, "/transactions/etransfer", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListTransactions lists transactions, filtered by customer when customerID
// is not blank.
func (c *Client) ListTransactions(ctx context.Context, customerID string) (*ports.TransactionsResult, error) {
	path := "/transactions"
	if id := strings.TrimSpace(customerID); id != "" {
		path += "?" + url.Values{"customerID": {id}}.Encode()
	}
	out := &ports.TransactionsResult{}
	if err := c.do(ctx, "list_transactions", http.MethodGet, path, nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

// ── Loans ─────────────────────────────────────────────────────────────────────

func (c *Client) RequestLoan(ctx context.Context, in ports.LoanInput) (*ports.LoanResult, error) {
	out := &ports.LoanResult{}
	if err := c.do(ctx, "request_loan", http.MethodPost, "/loans/request", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) PendingLoans(ctx context.Context) (*ports.LoansResult, error) {
	out := &ports.LoansResult{}
	if err := c.do(ctx, "pending_loans", http.MethodGet, "/loans/pending", nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ApproveLoan(ctx context.Context, loanID, managerID string) (*ports.Envelope, error) {
	return c.decideLoan(ctx, "approve_loan", loanID, "approve", managerID)
}

func (c *Client) RejectLoan(ctx context.Context, loanID, managerID string) (*ports.Envelope, error) {
	return c.decideLoan(ctx, "reject_loan", loanID, "reject", managerID)
}

func (c *Client) decideLoan(ctx context.Context, op, loanID, decision, managerID string) (*ports.Envelope, error) {
	out := &ports.Envelope{}
	path := "/loans/" + url.PathEscape(loanID) + "/" + decision
	if err := c.do(ctx, op, http.MethodPost, path, ports.LoanDecisionInput{ManagerID: managerID}, out); err != nil {
		return nil, err
	}
	return out, nil
}

// ── Statements ────────────────────────────────────────────────────────────────

func (c *Client) GenerateStatement(ctx context.Context, in ports.StatementInput) (*ports.StatementResult, error) {
	out := &ports.StatementResult{}
	if err := c.do(ctx, "generate_statement", http.MethodPost, "/statements/generate", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

// ── Administration ────────────────────────────────────────────────────────────

func (c *Client) AdminStats(ctx context.Context) (*ports.StatsResult, error) {
	out := &ports.StatsResult{}
	if err := c.do(ctx, "admin_stats", http.MethodGet, "/admin/stats", nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) SearchUsers(ctx context.Context, criteria ports.UserSearch) (*ports.UsersResult, error) {
	out := &ports.UsersResult{}
	if err := c.do(ctx, "search_users", http.MethodGet, "/admin/users/search"+searchQuery(criteria), nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) SearchCustomers(ctx context.Context, criteria ports.UserSearch) (*ports.UsersResult, error) {
	out := &ports.UsersResult{}
	if err := c.do(ctx, "search_customers", http.MethodGet, "/banker/users/search"+searchQuery(criteria), nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetUserDetails(ctx context.Context, userID string) (*ports.UserDetailsResult, error) {
	out := &ports.UserDetailsResult{}
	if err := c.do(ctx, "get_user_details", http.MethodGet, "/admin/users/"+url.PathEscape(userID), nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetCustomerDetails(ctx context.Context, customerID string) (*ports.CustomerDetailsResult, error) {
	out := &ports.CustomerDetailsResult{}
	if err := c.do(ctx, "get_customer_details", http.MethodGet, "/banker/customers/"+url.PathEscape(customerID), nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AssignRole(ctx context.Context, userID, role string) (*ports.Envelope, error) {
	out := &ports.Envelope{}
	path := "/admin/users/" + url.PathEscape(userID) + "/role"
	if err := c.do(ctx, "assign_role", http.MethodPost, path, ports.AssignRoleInput{Role: role}, out); err != nil {
		return nil, err
	}
	return out, nil
}

// searchQuery encodes only the criteria that are set.
func searchQuery(criteria ports.UserSearch) string {
	n := criteria.Normalize()
	q := url.Values{}
	for key, value := range map[string]string{
		"name":          n.Name,
		"accountNumber": n.AccountNumber,
		"phoneNumber":   n.PhoneNumber,
		"userType":      n.UserType,
	} {
		if value != "" {
			q.Set(key, value)
		}
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

// do sends one request and decodes the response into out. The returned error
// is non-nil only when the request itself failed; a non-2xx status is folded
// into out as a failed envelope.
func (c *Client) do(ctx context.Context, op, method, path string, body any, out envelope) error {
	start := time.Now()
	outcome := "error"
	defer func() {
		metrics.BackendRequestsTotal.WithLabelValues(op, outcome).Inc()
		metrics.BackendRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrRequestFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("op", op).Str("method", method).Msg("backend unreachable")
		return fmt.Errorf("%s: %w: %w", op, domain.ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%s: read response: %w: %w", op, domain.ErrRequestFailed, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// best effort: the backend usually still sends {success,message}
		_ = json.Unmarshal(raw, out)
		out.MarkFailed(failedMessage)
		outcome = "rejected"
		c.log.Debug().Str("op", op).Int("status", resp.StatusCode).Dur("took", time.Since(start)).Msg("backend refused request")
		return nil
	}

	if err := json.Unmarshal(raw, out); err != nil {
		c.log.Warn().Err(err).Str("op", op).Int("status", resp.StatusCode).Msg("undecodable backend response")
		return fmt.Errorf("%s: decode response: %w: %w", op, domain.ErrRequestFailed, err)
	}

	outcome = "ok"
	if out.Failure() != nil {
		outcome = "rejected"
	}
	c.log.Debug().Str("op", op).Str("outcome", outcome).Dur("took", time.Since(start)).Msg("backend call")
	return nil
}
