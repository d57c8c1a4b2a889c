package handler

import (
	"naratani-inventory/internal/service"

	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GET /users
func (h *UserHandler) List(c *fiber.Ctx) error {
	var q service.UserListQuery
	if err := parseQuery(c, &q); err != nil {
		return err
	}
	res, err := h.userService.List(c.UserContext(), &q)
	if err != nil {
		return err
	}
	return success(c, res, "")
}

// POST /users
func (h *UserHandler) Create(c *fiber.Ctx) error {
	var req service.CreateUserRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	user, err := h.userService.Create(c.UserContext(), &req)
	if err != nil {
		return err
	}
	return created(c, user, "User created successfully")
}

// Privileges returns every privilege code known to the system
// GET /privileges
func (h *UserHandler) Privileges(c *fiber.Ctx) error {
	privileges, err := h.userService.Privileges(c.UserContext())
	if err != nil {
		return err
	}
	return success(c, privileges, "")
}

// Roles returns all roles with their privileges
// GET /roles
func (h *UserHandler) Roles(c *fiber.Ctx) error {
	roles, err := h.userService.Roles(c.UserContext())
	if err != nil {
		return err
	}
	return success(c, roles, "")
}
