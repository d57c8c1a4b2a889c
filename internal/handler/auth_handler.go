package handler

import (
	"naratani-inventory/internal/service"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login handles user authentication
// POST /auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req service.LoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	response, err := h.authService.Login(c.UserContext(), &req)
	if err != nil {
		return err
	}
	return success(c, response, "Login successful")
}

// Me returns the current session
// GET /auth/me
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	session, err := h.authService.Me(c.UserContext(), actor(c))
	if err != nil {
		return err
	}
	return success(c, session, "")
}

// ChangePassword handles password change for the caller
// POST /auth/change-password
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	var req service.ChangePasswordRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	if err := h.authService.ChangePassword(c.UserContext(), actor(c), &req); err != nil {
		return err
	}
	return success(c, nil, "Password updated successfully")
}

// POST /auth/logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.authService.Logout(c.UserContext(), actor(c)); err != nil {
		return err
	}
	return success(c, nil, "Logged out")
}
