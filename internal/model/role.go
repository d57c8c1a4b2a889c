package model

// Role represents user roles in the system
type Role struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	Code        string      `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	Name        string      `gorm:"type:varchar(100)" json:"name"`
	Description string      `gorm:"type:text" json:"description"`
	Privileges  []Privilege `gorm:"many2many:role_privileges;" json:"privileges,omitempty"`
}

// Role codes as constants
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
	RoleSales = "sales"
)

// DefaultRoles defines the default roles in the system
var DefaultRoles = []Role{
	{
		Code:        RoleAdmin,
		Name:        "Administrator",
		Description: "Full access to inventory, orders, dashboards and users",
	},
	{
		Code:        RoleUser,
		Name:        "User",
		Description: "Read-only catalogue access",
	},
	{
		Code:        RoleSales,
		Name:        "Sales",
		Description: "Creates orders and tracks own sales performance",
	},
}

// PrivilegeCodes returns the "resource:action" codes granted to the role
func (r *Role) PrivilegeCodes() []string {
	codes := make([]string, len(r.Privileges))
	for i, p := range r.Privileges {
		codes[i] = p.Code
	}
	return codes
}
