// Package permission holds the role → resource → action grants and the
// capability check used by the HTTP layer.
package permission

import (
	"sort"
	"sync"

	"naratani-inventory/internal/model"
)

// Resources
const (
	Product          = "product"
	Category         = "category"
	Shop             = "shop"
	Order            = "order"
	Supplier         = "supplier"
	Dashboard        = "dashboard"
	SalesPerformance = "sales-performance"
	User             = "user"
)

// Actions
const (
	Create     = "create"
	Read       = "read"
	Update     = "update"
	Delete     = "delete"
	List       = "list"
	Revalidate = "revalidate"
)

// Statements maps a resource to the actions granted on it.
type Statements map[string][]string

var crud = []string{Create, Read, Update, Delete}

// Defaults are the grants seeded for each built-in role.
var Defaults = map[string]Statements{
	model.RoleAdmin: {
		Product:          crud,
		Category:         crud,
		Shop:             crud,
		Order:            crud,
		Supplier:         crud,
		Dashboard:        {Read, Revalidate},
		SalesPerformance: {Read},
		User:             {List, Create},
	},
	model.RoleUser: {
		Product:  {Read},
		Category: {Read},
		Shop:     {Read},
	},
	model.RoleSales: {
		Product:          {Read},
		Category:         {Read},
		Shop:             {Read},
		Order:            {Create, Read},
		SalesPerformance: {Read},
	},
}

// Codes flattens statements into sorted "resource:action" codes.
func (s Statements) Codes() []string {
	var codes []string
	for resource, actions := range s {
		for _, action := range actions {
			codes = append(codes, model.PrivilegeCode(resource, action))
		}
	}
	sort.Strings(codes)
	return codes
}

type Checker interface {
	HasPermission(role, resource, action string) bool
}

// RoleChecker answers permission checks from an in-memory grant table.
type RoleChecker struct {
	mu     sync.RWMutex
	grants map[string]map[string]struct{}
}

// NewRoleChecker builds a checker from persisted roles and their privileges.
func NewRoleChecker(roles []model.Role) *RoleChecker {
	c := &RoleChecker{}
	c.Load(roles)
	return c
}

// Static builds a checker straight from statements, without a database.
func Static(roles map[string]Statements) *RoleChecker {
	grants := make(map[string]map[string]struct{}, len(roles))
	for role, st := range roles {
		set := make(map[string]struct{})
		for _, code := range st.Codes() {
			set[code] = struct{}{}
		}
		grants[role] = set
	}
	return &RoleChecker{grants: grants}
}

// Load replaces the grant table.
func (c *RoleChecker) Load(roles []model.Role) {
	grants := make(map[string]map[string]struct{}, len(roles))
	for _, r := range roles {
		set := make(map[string]struct{}, len(r.Privileges))
		for _, code := range r.PrivilegeCodes() {
			set[code] = struct{}{}
		}
		grants[r.Code] = set
	}

	c.mu.Lock()
	c.grants = grants
	c.mu.Unlock()
}

func (c *RoleChecker) HasPermission(role, resource, action string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.grants[role][model.PrivilegeCode(resource, action)]
	return ok
}
