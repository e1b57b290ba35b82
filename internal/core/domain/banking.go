package domain

// Account is a read-only view of a customer account. Balances are never
// computed locally; they are re-fetched after every funds movement.
type Account struct {
	AccountID   string  `json:"accountID"`
	AccountType string  `json:"accountType"`
	Balance     float64 `json:"balance"`
	CustomerID  string  `json:"customerID"`
}

// AccountDetails is a single account with its transaction history.
type AccountDetails struct {
	Account
	Transactions []Transaction `json:"transactions"`
}

// Account types accepted by the backend.
const (
	AccountTypeChecking = "Checking"
	AccountTypeSaving   = "Saving"
)

// Receipt records a completed funds movement.
type Receipt struct {
	ReferenceNumber string  `json:"referenceNumber"`
	Amount          float64 `json:"amount"`
	DateTimeIssued  string  `json:"dateTimeIssued"`
}

// Transaction is a ledger entry as reported by the backend.
type Transaction struct {
	TransactionID        string  `json:"transactionID"`
	CustomerID           string  `json:"customerID,omitempty"`
	Amount               float64 `json:"amount"`
	Type                 string  `json:"type"`
	Status               string  `json:"status"`
	SourceAccountID      *string `json:"sourceAccountID"`
	DestinationAccountID *string `json:"destinationAccountID"`
	InitiatedAt          string  `json:"initiatedAt"`
}

// LoanStatusPending is the status of a loan awaiting a manager decision.
const LoanStatusPending = "Pending"

// LoanRequest is a customer's loan application.
type LoanRequest struct {
	LoanID        string  `json:"loanID"`
	CustomerID    string  `json:"customerID,omitempty"`
	Amount        float64 `json:"amount"`
	Purpose       string  `json:"purpose"`
	Status        string  `json:"status"`
	DateSubmitted string  `json:"dateSubmitted"`
}

// Statement summarises one month of activity across accounts.
type Statement struct {
	StatementID  string  `json:"statementID"`
	Year         int     `json:"year"`
	Month        int     `json:"month"`
	StartBalance float64 `json:"startBalance"`
	EndBalance   float64 `json:"endBalance"`
	DateIssued   string  `json:"dateIssued"`
}

// Notification channels for e-transfers.
const (
	NotifyEmail = "email"
	NotifySMS   = "sms"
)

// Persisted session keys.
const (
	KeyUser        = "user"
	KeyLastReceipt = "lastReceipt"
)
