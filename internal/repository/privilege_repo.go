package repository

import (
	"context"
	stderrors "errors"
	"strings"

	"naratani-inventory/internal/model"

	"gorm.io/gorm"
)

type PrivilegeRepository interface {
	FindByCodes(ctx context.Context, codes []string) ([]model.Privilege, error)
	FindAll(ctx context.Context) ([]model.Privilege, error)
	// SeedDefaults creates any missing privilege in codes.
	SeedDefaults(ctx context.Context, codes []string) error
}

type privilegeRepo struct {
	db *gorm.DB
}

func NewPrivilegeRepo(db *gorm.DB) PrivilegeRepository {
	return &privilegeRepo{db}
}

func (r *privilegeRepo) FindByCodes(ctx context.Context, codes []string) ([]model.Privilege, error) {
	var privileges []model.Privilege
	if len(codes) == 0 {
		return privileges, nil
	}
	err := r.db.WithContext(ctx).Where("code IN ?", codes).Find(&privileges).Error
	return privileges, translate(err, "find privileges")
}

func (r *privilegeRepo) FindAll(ctx context.Context) ([]model.Privilege, error) {
	var privileges []model.Privilege
	err := r.db.WithContext(ctx).Order("code").Find(&privileges).Error
	return privileges, translate(err, "list privileges")
}

func (r *privilegeRepo) SeedDefaults(ctx context.Context, codes []string) error {
	db := r.db.WithContext(ctx)
	for _, code := range codes {
		var existing model.Privilege
		err := db.Where("code = ?", code).First(&existing).Error
		if err == nil {
			continue
		}
		if !stderrors.Is(err, gorm.ErrRecordNotFound) {
			return translate(err, "seed privileges")
		}
		p := model.Privilege{Code: code, Name: privilegeName(code)}
		if err := db.Create(&p).Error; err != nil {
			return translate(err, "seed privileges")
		}
	}
	return nil
}

// privilegeName renders "sales-performance:read" as "Read Sales Performance".
func privilegeName(code string) string {
	resource, action, _ := strings.Cut(code, ":")
	words := strings.Fields(strings.ReplaceAll(action+" "+resource, "-", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
