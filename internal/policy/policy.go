// Package policy holds the single authorization decision point used by the
// HTTP gate and by every service.
package policy

import "github.com/Bateyjosue/xenfi-systems/internal/models"

// Identity is the caller resolved from a valid session token.
type Identity struct {
	UserID uint
	Email  string
	Role   models.Role
}

func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == models.RoleAdmin
}

type Action string

const (
	CategoryRead  Action = "category:read"
	CategoryWrite Action = "category:write"

	ExpenseList   Action = "expense:list"
	ExpenseCreate Action = "expense:create"
	ExpenseRead   Action = "expense:read"
	ExpenseUpdate Action = "expense:update"
	ExpenseDelete Action = "expense:delete"

	DashboardView Action = "dashboard:view"
	ReceiptUpload Action = "receipt:upload"
	ExpenseExport Action = "expense:export"
	SelfView      Action = "self:view"

	AdminStats    Action = "admin:stats"
	AdminExpenses Action = "admin:expenses"
	AdminUsers    Action = "admin:users"
)

// Resource describes the record an action targets. OwnerID is zero for
// collections and for records without an owner.
type Resource struct {
	OwnerID uint
}

// CanAccess reports whether id may perform action on res. A nil identity is
// an anonymous caller.
func CanAccess(id *Identity, action Action, res Resource) bool {
	if action == CategoryRead {
		return true
	}
	if id == nil || id.UserID == 0 || !id.Role.Valid() {
		return false
	}

	switch action {
	case ExpenseList, ExpenseCreate, DashboardView, ReceiptUpload, ExpenseExport, SelfView:
		return true
	case ExpenseRead, ExpenseUpdate, ExpenseDelete:
		// admins see everything through the admin listing, but single-record
		// access stays owner-only
		return res.OwnerID == id.UserID
	case CategoryWrite, AdminStats, AdminExpenses, AdminUsers:
		return id.IsAdmin()
	}
	return false
}
