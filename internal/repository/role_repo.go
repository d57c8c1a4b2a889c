package repository

import (
	"context"
	stderrors "errors"

	"naratani-inventory/internal/model"

	"gorm.io/gorm"
)

type RoleRepository interface {
	FindAll(ctx context.Context) ([]model.Role, error)
	FindByCode(ctx context.Context, code string) (*model.Role, error)
	// SeedDefaults creates the default roles and attaches the privileges granted
	// to each code in grants.
	SeedDefaults(ctx context.Context, grants map[string][]string) error
}

type roleRepo struct {
	db *gorm.DB
}

func NewRoleRepo(db *gorm.DB) RoleRepository {
	return &roleRepo{db: db}
}

func (r *roleRepo) FindAll(ctx context.Context) ([]model.Role, error) {
	var roles []model.Role
	err := r.db.WithContext(ctx).Preload("Privileges").Find(&roles).Error
	return roles, translate(err, "list roles")
}

func (r *roleRepo) FindByCode(ctx context.Context, code string) (*model.Role, error) {
	var role model.Role
	err := r.db.WithContext(ctx).Preload("Privileges").Where("code = ?", code).First(&role).Error
	if err != nil {
		return nil, translate(err, "find role")
	}
	return &role, nil
}

func (r *roleRepo) SeedDefaults(ctx context.Context, grants map[string][]string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, defaultRole := range model.DefaultRoles {
			role := defaultRole
			var existing model.Role
			err := tx.Where("code = ?", role.Code).First(&existing).Error
			switch {
			case err == nil:
				role = existing
			case stderrors.Is(err, gorm.ErrRecordNotFound):
				if err := tx.Create(&role).Error; err != nil {
					return translate(err, "seed role "+role.Code)
				}
			default:
				return translate(err, "seed role "+role.Code)
			}

			privileges, err := NewPrivilegeRepo(tx).FindByCodes(ctx, grants[role.Code])
			if err != nil {
				return err
			}
			if err := tx.Model(&role).Association("Privileges").Replace(privileges); err != nil {
				return translate(err, "seed role privileges")
			}
		}
		return nil
	})
}
