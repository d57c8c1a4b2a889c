package middleware

import (
	"strings"

	"naratani-inventory/internal/permission"
	"naratani-inventory/internal/service"
	"naratani-inventory/pkg/apperr"

	"github.com/gofiber/fiber/v2"
)

const actorKey = "actor"

// RequireAuth validates the bearer token and stores the caller in the request locals.
func RequireAuth(auth service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := bearerToken(c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return err
		}
		return authenticate(c, auth, token)
	}
}

// RequireStreamAuth is RequireAuth for websocket upgrades. Browsers cannot set
// headers on a websocket handshake, so the token may also come from ?token=.
func RequireStreamAuth(auth service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := bearerToken(c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return err
		}
		if token == "" {
			token = c.Query("token")
		}
		return authenticate(c, auth, token)
	}
}

func authenticate(c *fiber.Ctx, auth service.AuthService, token string) error {
	actor, err := auth.Authenticate(c.UserContext(), token)
	if err != nil {
		return err
	}
	c.Locals(actorKey, actor)
	return c.Next()
}

// RequirePermission rejects callers whose role lacks any of the given actions on resource.
// It must run after RequireAuth.
func RequirePermission(checker permission.Checker, resource string, actions ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := ActorFrom(c)
		if !ok {
			return apperr.Unauthorized("")
		}
		for _, action := range actions {
			if !checker.HasPermission(actor.Role, resource, action) {
				return apperr.Forbidden("")
			}
		}
		return c.Next()
	}
}

// ActorFrom returns the caller stored by RequireAuth.
func ActorFrom(c *fiber.Ctx) (service.Actor, bool) {
	actor, ok := c.Locals(actorKey).(service.Actor)
	return actor, ok
}

// bearerToken extracts the token from "Bearer <token>". An empty header yields an empty token.
func bearerToken(header string) (string, error) {
	if header == "" {
		return "", nil
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", apperr.Unauthorized("Invalid authorization format. Use: Bearer <token>")
	}
	return parts[1], nil
}
