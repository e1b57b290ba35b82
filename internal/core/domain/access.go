package domain

// Portal entry points used as redirect targets.
const (
	PathLogin      = "/login"
	PathDashboard  = "/dashboard"
	PathBanker     = "/banker"
	PathManagement = "/dash"
)

// PageFamily groups pages that share the same access rule.
type PageFamily uint8

const (
	FamilyCustomer PageFamily = iota + 1
	FamilyBanker
	FamilyAdmin
	FamilyManagement
	FamilyManager
)

func (f PageFamily) String() string {
	switch f {
	case FamilyCustomer:
		return "customer"
	case FamilyBanker:
		return "banker"
	case FamilyAdmin:
		return "admin"
	case FamilyManagement:
		return "management"
	case FamilyManager:
		return "manager"
	}
	return "unknown"
}

// Decision is the outcome of an access check.
type Decision struct {
	Allowed  bool
	Redirect string
	Message  string
}

const msgLoginFirst = "Please login first"

// Authorize applies the page-family rule table to a set of role flags.
// Anonymous callers are always sent to the login page.
func Authorize(family PageFamily, flags RoleFlags) Decision {
	var (
		allowed  bool
		redirect string
		message  string
	)
	switch family {
	case FamilyCustomer:
		allowed = flags.IsCustomer
		redirect, message = PathDashboard, "Customer access required"
	case FamilyBanker:
		allowed = flags.IsBanker || flags.IsBankManager
		redirect, message = PathLogin, "Banker or Bank Manager access required"
	case FamilyAdmin:
		allowed = flags.IsAdmin
		redirect, message = PathLogin, "Admin access required"
	case FamilyManagement:
		allowed = flags.IsAdmin || flags.IsBankManager
		redirect, message = PathDashboard, "Admin or Bank Manager access required"
	case FamilyManager:
		allowed = flags.IsBankManager
		redirect, message = PathDashboard, "Bank Manager access required"
	default:
		return Decision{Redirect: PathLogin, Message: "Access denied"}
	}

	if !flags.IsAuthenticated {
		return Decision{Redirect: PathLogin, Message: msgLoginFirst}
	}
	if allowed {
		return Decision{Allowed: true}
	}
	return Decision{Redirect: redirect, Message: message}
}
