package service

import (
	"context"
	"errors"
	"strings"

	"naratani-inventory/internal/model"
	"naratani-inventory/internal/repository"
	"naratani-inventory/pkg/apperr"
	"naratani-inventory/pkg/jwt"
	"naratani-inventory/pkg/validator"

	"github.com/google/uuid"
)

type AuthService interface {
	Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error)
	// Authenticate resolves a bearer token into the acting user.
	Authenticate(ctx context.Context, token string) (Actor, error)
	Me(ctx context.Context, actor Actor) (*SessionResponse, error)
	ChangePassword(ctx context.Context, actor Actor, req *ChangePasswordRequest) error
	Logout(ctx context.Context, actor Actor) error
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

type SessionResponse struct {
	User       model.UserResponse `json:"user"`
	Role       string             `json:"role"`
	Privileges []string           `json:"privileges"`
}

type LoginResponse struct {
	Token string `json:"token"`
	SessionResponse
}

type authService struct {
	users repository.UserRepository
	roles repository.RoleRepository
	jwt   *jwt.Manager
}

func NewAuthService(users repository.UserRepository, roles repository.RoleRepository, manager *jwt.Manager) AuthService {
	return &authService{users: users, roles: roles, jwt: manager}
}

func (s *authService) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	// 1. Validate request
	if err := validator.Struct(req); err != nil {
		return nil, err
	}

	// 2. Find user and verify password
	user, err := s.users.FindByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.Unauthorized("Invalid email or password")
		}
		return nil, repoError(err, "")
	}
	if !user.CheckPassword(req.Password) {
		return nil, apperr.Unauthorized("Invalid email or password")
	}

	// 3. Banned accounts cannot sign in
	if user.Banned {
		return nil, apperr.Forbidden("User account is banned")
	}

	// 4. Single session: a new token version revokes older tokens
	version := uuid.New().String()
	if err := s.users.UpdateTokenVersion(ctx, user.ID, version); err != nil {
		return nil, repoError(err, "User not found")
	}

	token, err := s.jwt.GenerateToken(user.ID, user.Email, user.Name, user.Role, version)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	session, err := s.session(ctx, user)
	if err != nil {
		return nil, err
	}
	return &LoginResponse{Token: token, SessionResponse: *session}, nil
}

func (s *authService) Authenticate(ctx context.Context, token string) (Actor, error) {
	claims, err := s.jwt.ValidateToken(token)
	if err != nil {
		if errors.Is(err, jwt.ErrMissingToken) {
			return Actor{}, apperr.Unauthorized("")
		}
		return Actor{}, apperr.Unauthorized("Invalid or expired token")
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Actor{}, apperr.Unauthorized("User no longer exists")
		}
		return Actor{}, repoError(err, "")
	}
	if user.Banned {
		return Actor{}, apperr.Forbidden("User account is banned")
	}
	if user.TokenVersion != claims.TokenVersion {
		return Actor{}, apperr.Unauthorized("Session expired, logged in on another device")
	}
	return Actor{ID: user.ID, Name: user.Name, Email: user.Email, Role: user.Role}, nil
}

func (s *authService) Me(ctx context.Context, actor Actor) (*SessionResponse, error) {
	user, err := s.users.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, repoError(err, "User not found")
	}
	return s.session(ctx, user)
}

func (s *authService) ChangePassword(ctx context.Context, actor Actor, req *ChangePasswordRequest) error {
	if err := validator.Struct(req); err != nil {
		return err
	}
	user, err := s.users.FindByID(ctx, actor.ID)
	if err != nil {
		return repoError(err, "User not found")
	}
	if !user.CheckPassword(req.OldPassword) {
		return apperr.BadRequest("Current password is incorrect")
	}
	if err := user.SetPassword(req.NewPassword); err != nil {
		return apperr.Internal(err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, user.Password); err != nil {
		return repoError(err, "User not found")
	}
	return nil
}

func (s *authService) Logout(ctx context.Context, actor Actor) error {
	return repoError(s.users.UpdateTokenVersion(ctx, actor.ID, uuid.New().String()), "User not found")
}

func (s *authService) session(ctx context.Context, user *model.User) (*SessionResponse, error) {
	out := &SessionResponse{User: user.ToResponse(), Role: user.Role, Privileges: []string{}}
	role, err := s.roles.FindByCode(ctx, user.Role)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return out, nil
		}
		return nil, repoError(err, "")
	}
	out.Privileges = role.PrivilegeCodes()
	return out, nil
}
