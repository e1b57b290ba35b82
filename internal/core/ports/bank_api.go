package ports

import (
	"context"
	"strings"

	"github.com/mybankuml/banking-portal/internal/core/domain"
)

// Envelope is the {success, message} shape shared by every backend response.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// Failure returns nil for a successful envelope and a *domain.RejectedError
// otherwise.
func (e Envelope) Failure() error {
	if e.Success {
		return nil
	}
	return &domain.RejectedError{Message: e.Message}
}

// MarkFailed forces the envelope into its failure shape. Every result type
// gets it through the embedded Envelope.
func (e *Envelope) MarkFailed(fallback string) {
	e.Success = false
	if strings.TrimSpace(e.Message) == "" {
		e.Message = fallback
	}
}

// --- Auth ---

type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// WireUser is the user object returned by the backend. The role stays a plain
// string here; callers convert it with domain.ParseRole.
type WireUser struct {
	UserID    string `json:"userID"`
	UserName  string `json:"userName"`
	UserEmail string `json:"userEmail"`
	UserRole  string `json:"userRole"`
}

type LoginResult struct {
	Envelope
	User *WireUser `json:"user,omitempty"`
}

type RegisterInput struct {
	UserID    string `json:"userID"`
	Password  string `json:"password"`
	UserName  string `json:"userName"`
	UserEmail string `json:"userEmail"`
	UserPhone string `json:"userPhone"`
	UserRole  string `json:"userRole,omitempty"`
}

type RegisterResult struct {
	Envelope
	User *WireUser `json:"user,omitempty"`
}

// --- Accounts ---

type AccountsResult struct {
	Envelope
	Accounts []domain.Account `json:"accounts,omitempty"`
}

type CreateAccountInput struct {
	CustomerID     string   `json:"customerID"`
	AccountID      string   `json:"accountID"`
	AccountType    string   `json:"accountType"`
	InitialBalance *float64 `json:"initialBalance,omitempty"`
	InterestRate   *float64 `json:"interestRate,omitempty"`
}

type CreateAccountResult struct {
	Envelope
	Account *domain.Account `json:"account,omitempty"`
}

type AccountDetailsResult struct {
	Envelope
	Account *domain.AccountDetails `json:"account,omitempty"`
}

// --- Transactions ---

type TransferInput struct {
	CustomerID           string  `json:"customerID"`
	SourceAccountID      string  `json:"sourceAccountID"`
	DestinationAccountID string  `json:"destinationAccountID"`
	Amount               float64 `json:"amount"`
}

type ETransferInput struct {
	CustomerID         string  `json:"customerID"`
	SourceAccountID    string  `json:"sourceAccountID"`
	RecipientEmail     string  `json:"recipientEmail"`
	RecipientName      string  `json:"recipientName"`
	RecipientPhone     string  `json:"recipientPhone"`
	Amount             float64 `json:"amount"`
	NotificationMethod string  `json:"notificationMethod"`
}

type ReceiptResult struct {
	Envelope
	Receipt *domain.Receipt `json:"receipt,omitempty"`
}

type TransactionsResult struct {
	Envelope
	Transactions []domain.Transaction `json:"transactions,omitempty"`
}

// --- Loans ---

type LoanInput struct {
	CustomerID    string  `json:"customerID"`
	Amount        float64 `json:"amount"`
	Purpose       string  `json:"purpose"`
	ProofOfIncome string  `json:"proofOfIncome"`
}

type LoanResult struct {
	Envelope
	LoanRequest *domain.LoanRequest `json:"loanRequest,omitempty"`
}

type LoansResult struct {
	Envelope
	Loans []domain.LoanRequest `json:"loans,omitempty"`
}

type LoanDecisionInput struct {
	ManagerID string `json:"managerID"`
}

// --- Statements ---

type StatementInput struct {
	CustomerID string   `json:"customerID"`
	AccountIDs []string `json:"accountIDs"`
	Year       int      `json:"year"`
	Month      int      `json:"month"`
}

type StatementResult struct {
	Envelope
	Statement *domain.Statement `json:"statement,omitempty"`
}

// --- Administration ---

type StatsResult struct {
	Envelope
	TotalUsers int `json:"totalUsers"`
}

// UserSearch holds optional search criteria. A blank field is not a filter.
type UserSearch struct {
	Name          string `query:"name"`
	AccountNumber string `query:"accountNumber"`
	PhoneNumber   string `query:"phoneNumber"`
	UserType      string `query:"userType"`
}

// Normalize trims every field so whitespace-only values count as absent.
func (s UserSearch) Normalize() UserSearch {
	return UserSearch{
		Name:          strings.TrimSpace(s.Name),
		AccountNumber: strings.TrimSpace(s.AccountNumber),
		PhoneNumber:   strings.TrimSpace(s.PhoneNumber),
		UserType:      strings.TrimSpace(s.UserType),
	}
}

// IsEmpty reports whether no criterion is set.
func (s UserSearch) IsEmpty() bool {
	n := s.Normalize()
	return n.Name == "" && n.AccountNumber == "" && n.PhoneNumber == "" && n.UserType == ""
}

type UsersResult struct {
	Envelope
	Users []domain.UserSummary `json:"users,omitempty"`
}

type UserDetailsResult struct {
	Envelope
	User *domain.UserDetails `json:"user,omitempty"`
}

type CustomerDetailsResult struct {
	Envelope
	Customer *domain.CustomerDetails `json:"customer,omitempty"`
}

type AssignRoleInput struct {
	Role string `json:"role"`
}

// BankAPI is the typed surface of the banking backend. Every method issues
// exactly one request. A returned error means the request itself failed
// (domain.ErrRequestFailed); backend refusals come back as an Envelope with
// Success=false.
type BankAPI interface {
	Login(ctx context.Context, in LoginInput) (*LoginResult, error)
	Register(ctx context.Context, in RegisterInput) (*RegisterResult, error)

	GetAccounts(ctx context.Context, customerID string) (*AccountsResult, error)
	CreateAccount(ctx context.Context, in CreateAccountInput) (*CreateAccountResult, error)
	GetAccountDetails(ctx context.Context, accountID string) (*AccountDetailsResult, error)

	Transfer(ctx context.Context, in TransferInput) (*ReceiptResult, error)
	ETransfer(ctx context.Context, in ETransferInput) (*ReceiptResult, error)
	ListTransactions(ctx context.Context, customerID string) (*TransactionsResult, error)

	RequestLoan(ctx context.Context, in LoanInput) (*LoanResult, error)
	PendingLoans(ctx context.Context) (*LoansResult, error)
	ApproveLoan(ctx context.Context, loanID, managerID string) (*Envelope, error)
	RejectLoan(ctx context.Context, loanID, managerID string) (*Envelope, error)

	GenerateStatement(ctx context.Context, in StatementInput) (*StatementResult, error)

	AdminStats(ctx context.Context) (*StatsResult, error)
	SearchUsers(ctx context.Context, criteria UserSearch) (*UsersResult, error)
	SearchCustomers(ctx context.Context, criteria UserSearch) (*UsersResult, error)
	GetUserDetails(ctx context.Context, userID string) (*UserDetailsResult, error)
	GetCustomerDetails(ctx context.Context, customerID string) (*CustomerDetailsResult, error)
	AssignRole(ctx context.Context, userID, role string) (*Envelope, error)
}
