package handler

import (
	"github.com/mybankuml/banking-portal/internal/core/domain"
	"github.com/mybankuml/banking-portal/internal/core/ports"
)

// ── Requests ──────────────────────────────────────────────────────────────────

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	UserID    string `json:"userID"    validate:"required"`
	Password  string `json:"password"  validate:"required,min=6"`
	UserName  string `json:"userName"  validate:"required"`
	UserEmail string `json:"userEmail" validate:"required,email"`
	UserPhone string `json:"userPhone" validate:"required"`
	UserRole  string `json:"userRole"  validate:"omitempty,oneof=customer banker bank_manager admin"`
}

type createAccountRequest struct {
	AccountID      string   `json:"accountID"      validate:"required"`
	AccountType    string   `json:"accountType"    validate:"required,oneof=Checking Saving"`
	InitialBalance *float64 `json:"initialBalance" validate:"omitempty,gte=0"`
	InterestRate   *float64 `json:"interestRate"   validate:"omitempty,gte=0"`
}

type transferRequest struct {
	SourceAccountID      string  `json:"sourceAccountID"      validate:"required"`
	DestinationAccountID string  `json:"destinationAccountID" validate:"required,nefield=SourceAccountID"`
	Amount               float64 `json:"amount"               validate:"gt=0"`
}

type etransferRequest struct {
	SourceAccountID    string  `json:"sourceAccountID"    validate:"required"`
	RecipientEmail     string  `json:"recipientEmail"     validate:"required,email"`
	RecipientName      string  `json:"recipientName"      validate:"required"`
	RecipientPhone     string  `json:"recipientPhone"     validate:"required_if=NotificationMethod sms"`
	Amount             float64 `json:"amount"             validate:"gt=0"`
	NotificationMethod string  `json:"notificationMethod" validate:"required,oneof=email sms"`
}

type loanRequest struct {
	Amount        float64 `json:"amount"        validate:"gt=0"`
	Purpose       string  `json:"purpose"       validate:"required"`
	ProofOfIncome string  `json:"proofOfIncome" validate:"required"`
}

type statementRequest struct {
	AccountIDs []string `json:"accountIDs" validate:"required,min=1,dive,required"`
	Year       int      `json:"year"       validate:"required,gte=1900"`
	Month      int      `json:"month"      validate:"required,min=1,max=12"`
}

type reversalRequest struct {
	TransactionID string `json:"transactionID" validate:"required"`
	Reason        string `json:"reason"        validate:"required"`
}

type assignRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=customer banker bank_manager admin"`
}

type searchRequest struct {
	Name          string `query:"name"`
	AccountNumber string `query:"accountNumber"`
	PhoneNumber   string `query:"phoneNumber"`
	UserType      string `query:"userType"`
}

// ── Responses ─────────────────────────────────────────────────────────────────

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type redirectResponse struct {
	Success  bool   `json:"success"`
	Redirect string `json:"redirect"`
}

type sessionResponse struct {
	Success bool             `json:"success"`
	User    *domain.Identity `json:"user,omitempty"`
	Flags   domain.RoleFlags `json:"flags"`
	Home    string           `json:"home,omitempty"`
}

type registerResponse struct {
	Success bool            `json:"success"`
	User    *ports.WireUser `json:"user,omitempty"`
	Home    string          `json:"home"`
}

type dashboardResponse struct {
	Success  bool             `json:"success"`
	User     domain.Identity  `json:"user"`
	Accounts []domain.Account `json:"accounts"`
	Message  string           `json:"message,omitempty"`
}

type accountsResponse struct {
	Success  bool             `json:"success"`
	Accounts []domain.Account `json:"accounts"`
}

type accountResponse struct {
	Success  bool             `json:"success"`
	Account  *domain.Account  `json:"account,omitempty"`
	Accounts []domain.Account `json:"accounts"`
}

type accountDetailsResponse struct {
	Success bool                   `json:"success"`
	Account *domain.AccountDetails `json:"account"`
}

type receiptResponse struct {
	Success  bool             `json:"success"`
	Receipt  *domain.Receipt  `json:"receipt"`
	Accounts []domain.Account `json:"accounts"`
}

type transactionsResponse struct {
	Success      bool                 `json:"success"`
	Transactions []domain.Transaction `json:"transactions"`
}

type loanResponse struct {
	Success     bool                `json:"success"`
	LoanRequest *domain.LoanRequest `json:"loanRequest,omitempty"`
}

type loansResponse struct {
	Success bool                 `json:"success"`
	Loans   []domain.LoanRequest `json:"loans"`
}

type statementResponse struct {
	Success   bool              `json:"success"`
	Statement *domain.Statement `json:"statement,omitempty"`
}

type usersResponse struct {
	Success bool                 `json:"success"`
	Users   []domain.UserSummary `json:"users"`
}

type userDetailsResponse struct {
	Success bool                `json:"success"`
	User    *domain.UserDetails `json:"user"`
}

type customerDetailsResponse struct {
	Success  bool                    `json:"success"`
	Customer *domain.CustomerDetails `json:"customer"`
}

type statsResponse struct {
	Success    bool `json:"success"`
	TotalUsers int  `json:"totalUsers"`
}

type managementResponse struct {
	Success      bool                 `json:"success"`
	User         domain.Identity      `json:"user"`
	Flags        domain.RoleFlags     `json:"flags"`
	TotalUsers   *int                 `json:"totalUsers,omitempty"`
	PendingLoans []domain.LoanRequest `json:"pendingLoans,omitempty"`
	Warnings     []string             `json:"warnings,omitempty"`
}
