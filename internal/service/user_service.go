package service

import (
	"context"
	"errors"
	"strings"

	"naratani-inventory/internal/cache"
	"naratani-inventory/internal/model"
	"naratani-inventory/internal/repository"
	"naratani-inventory/pkg/apperr"
	"naratani-inventory/pkg/pagination"
	"naratani-inventory/pkg/validator"

	"github.com/sirupsen/logrus"
)

type UserService interface {
	Create(ctx context.Context, req *CreateUserRequest) (*model.UserResponse, error)
	List(ctx context.Context, q *UserListQuery) (*pagination.Result[model.UserResponse], error)
	// Roles lists the roles and the privileges each one grants.
	Roles(ctx context.Context) ([]model.Role, error)
	Privileges(ctx context.Context) ([]model.Privilege, error)
}

type CreateUserRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"omitempty,oneof=admin user sales"`
}

type UserListQuery struct {
	ListQuery
	Search string `query:"search"`
	Role   string `query:"role" validate:"omitempty,oneof=admin user sales"`
}

type userService struct {
	users      repository.UserRepository
	roles      repository.RoleRepository
	privileges repository.PrivilegeRepository
	invalidator
}

func NewUserService(users repository.UserRepository, roles repository.RoleRepository, privileges repository.PrivilegeRepository, c cache.Cache, log logrus.FieldLogger) UserService {
	return &userService{
		users:       users,
		roles:       roles,
		privileges:  privileges,
		invalidator: invalidator{cache: c, log: log, module: "userService"},
	}
}

func (s *userService) Create(ctx context.Context, req *CreateUserRequest) (*model.UserResponse, error) {
	// 1. Validate request
	if err := validator.Struct(req); err != nil {
		return nil, err
	}

	// 2. Build user with hashed password
	user := &model.User{
		Name:  req.Name,
		Email: strings.ToLower(strings.TrimSpace(req.Email)),
		Role:  req.Role,
	}
	if user.Role == "" {
		user.Role = model.RoleUser
	}
	if err := user.SetPassword(req.Password); err != nil {
		return nil, apperr.Internal(err)
	}

	// 3. Insert
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.Conflict("User with this email already exists")
		}
		return nil, repoError(err, "")
	}
	s.invalidate(ctx, "Create", cache.TagUser)

	resp := user.ToResponse()
	return &resp, nil
}

func (s *userService) List(ctx context.Context, q *UserListQuery) (*pagination.Result[model.UserResponse], error) {
	if err := validator.Struct(q); err != nil {
		return nil, err
	}
	params, err := q.params(repository.UserSortColumns)
	if err != nil {
		return nil, err
	}
	users, total, err := s.users.List(ctx, repository.UserFilter{ListParams: params, Search: q.Search, Role: q.Role})
	if err != nil {
		return nil, repoError(err, "")
	}

	out := make([]model.UserResponse, len(users))
	for i := range users {
		out[i] = users[i].ToResponse()
	}
	return pagination.NewResult(out, params.Page, params.Limit, total), nil
}

func (s *userService) Roles(ctx context.Context) ([]model.Role, error) {
	roles, err := s.roles.FindAll(ctx)
	if err != nil {
		return nil, repoError(err, "")
	}
	return roles, nil
}

func (s *userService) Privileges(ctx context.Context) ([]model.Privilege, error) {
	privileges, err := s.privileges.FindAll(ctx)
	if err != nil {
		return nil, repoError(err, "")
	}
	if privileges == nil {
		privileges = []model.Privilege{}
	}
	return privileges, nil
}
