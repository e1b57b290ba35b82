package domain

import (
	"fmt"
	"strings"
)

// Role is the closed set of portal roles. The zero value is not a valid role.
type Role uint8

const (
	RoleCustomer Role = iota + 1
	RoleBanker
	RoleBankManager
	RoleAdmin
)

// Roles lists every valid role in display order.
var Roles = []Role{RoleCustomer, RoleBanker, RoleBankManager, RoleAdmin}

// ParseRole converts the backend's wire value into a Role.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "customer":
		return RoleCustomer, nil
	case "banker":
		return RoleBanker, nil
	case "bank_manager":
		return RoleBankManager, nil
	case "admin":
		return RoleAdmin, nil
	}
	return 0, fmt.Errorf("%w: unsupported role %q", ErrValidation, s)
}

func (r Role) String() string {
	switch r {
	case RoleCustomer:
		return "customer"
	case RoleBanker:
		return "banker"
	case RoleBankManager:
		return "bank_manager"
	case RoleAdmin:
		return "admin"
	}
	return ""
}

// Valid reports whether r is one of the declared roles.
func (r Role) Valid() bool { return r.String() != "" }

func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("marshal role: invalid value %d", r)
	}
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(b []byte) error {
	parsed, err := ParseRole(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Identity is the authenticated user's profile. It is replaced wholesale,
// never patched.
type Identity struct {
	UserID    string `json:"userID"`
	UserName  string `json:"userName"`
	UserEmail string `json:"userEmail"`
	UserRole  Role   `json:"userRole"`
}

// RoleFlags are derived from an Identity on every read.
type RoleFlags struct {
	IsAuthenticated bool `json:"isAuthenticated"`
	IsAdmin         bool `json:"isAdmin"`
	IsBanker        bool `json:"isBanker"`
	IsBankManager   bool `json:"isBankManager"`
	IsCustomer      bool `json:"isCustomer"`
}

// FlagsFor computes the role flags for id. A nil identity yields all false.
func FlagsFor(id *Identity) RoleFlags {
	if id == nil {
		return RoleFlags{}
	}
	f := RoleFlags{IsAuthenticated: true}
	switch id.UserRole {
	case RoleCustomer:
		f.IsCustomer = true
	case RoleBanker:
		f.IsBanker = true
	case RoleBankManager:
		f.IsBankManager = true
	case RoleAdmin:
		f.IsAdmin = true
	default:
		return RoleFlags{}
	}
	return f
}

// HomeFor returns the landing page for a role.
func HomeFor(r Role) string {
	switch r {
	case RoleCustomer:
		return PathDashboard
	case RoleBanker:
		return PathBanker
	case RoleBankManager, RoleAdmin:
		return PathManagement
	}
	return PathLogin
}

// UserSummary is a row of a user or customer search.
type UserSummary struct {
	UserID    string `json:"userID"`
	UserName  string `json:"userName"`
	UserEmail string `json:"userEmail"`
	UserPhone string `json:"userPhone,omitempty"`
	UserRole  string `json:"userRole"`
}

// AccountSummary is the account row embedded in administrative views.
type AccountSummary struct {
	AccountID   string  `json:"accountID"`
	AccountType string  `json:"accountType"`
	Balance     float64 `json:"balance"`
}

// UserDetails is the admin detail view of a user.
type UserDetails struct {
	UserSummary
	Accounts         []AccountSummary `json:"accounts,omitempty"`
	LoanRequestCount int              `json:"loanRequestCount,omitempty"`
}

// CustomerDetails is the banker detail view of a customer.
type CustomerDetails struct {
	UserSummary
	Accounts     []AccountSummary `json:"accounts"`
	Transactions []Transaction    `json:"transactions"`
}
