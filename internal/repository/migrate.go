package repository

import (
	"context"
	stderrors "errors"

	"naratani-inventory/internal/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Models lists every table in dependency order.
var Models = []interface{}{
	&model.Privilege{},
	&model.Role{},
	&model.User{},
	&model.ProductCategory{},
	&model.Shop{},
	&model.Supplier{},
	&model.Product{},
	&model.StockEntry{},
	&model.Order{},
	&model.OrderItem{},
	&model.OrderItemStockEntry{},
}

func Migrate(db *gorm.DB) error {
	return errors.Wrap(db.AutoMigrate(Models...), "auto migrate")
}

type SeedOptions struct {
	// Grants maps a role code to its "resource:action" privilege codes.
	Grants        map[string][]string
	AdminEmail    string
	AdminPassword string
}

// SeedResult reports what Seed created.
type SeedResult struct {
	AdminCreated bool
}

// Seed creates the privileges, roles and the first admin account when missing.
func Seed(ctx context.Context, db *gorm.DB, opts SeedOptions) (SeedResult, error) {
	var result SeedResult

	// 1. Privileges first
	var codes []string
	seen := map[string]bool{}
	for _, roleCodes := range opts.Grants {
		for _, code := range roleCodes {
			if !seen[code] {
				seen[code] = true
				codes = append(codes, code)
			}
		}
	}
	if err := NewPrivilegeRepo(db).SeedDefaults(ctx, codes); err != nil {
		return result, err
	}

	// 2. Roles with their privileges
	if err := NewRoleRepo(db).SeedDefaults(ctx, opts.Grants); err != nil {
		return result, err
	}

	// 3. Default admin
	if opts.AdminEmail == "" {
		return result, nil
	}
	users := NewUserRepo(db)
	_, err := users.FindByEmail(ctx, opts.AdminEmail)
	if err == nil {
		return result, nil
	}
	if !stderrors.Is(err, ErrNotFound) {
		return result, err
	}

	admin := &model.User{
		Name:  "Administrator",
		Email: opts.AdminEmail,
		Role:  model.RoleAdmin,
	}
	if err := admin.SetPassword(opts.AdminPassword); err != nil {
		return result, errors.Wrap(err, "hash admin password")
	}
	if err := users.Create(ctx, admin); err != nil {
		return result, err
	}
	result.AdminCreated = true
	return result, nil
}
