package handler

import (
	"errors"

	"naratani-inventory/internal/middleware"
	"naratani-inventory/internal/service"
	"naratani-inventory/pkg/apperr"
	"naratani-inventory/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Envelope wraps every response body.
type Envelope struct {
	Data    any        `json:"data"`
	Message string     `json:"message"`
	Error   *ErrorBody `json:"error"`
}

type ErrorBody struct {
	Code    apperr.Kind `json:"code"`
	Details any         `json:"details,omitempty"`
}

func success(c *fiber.Ctx, data any, message string) error {
	if message == "" {
		message = "ok"
	}
	return c.Status(fiber.StatusOK).JSON(Envelope{Data: data, Message: message})
}

func created(c *fiber.Ctx, data any, message string) error {
	if message == "" {
		message = "Resource created successfully"
	}
	return c.Status(fiber.StatusCreated).JSON(Envelope{Data: data, Message: message})
}

// ErrorHandler is the outermost error boundary. Domain errors keep their kind,
// fiber errors keep their status and anything else becomes a logged 500.
func ErrorHandler(log logrus.FieldLogger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		if e, ok := apperr.As(err); ok {
			if e.Kind == apperr.KindInternal {
				logger.LogError(log, "handler", "ErrorHandler", c.Method()+" "+c.Path(), nil, err)
			}
			return c.Status(e.Status()).JSON(Envelope{
				Message: e.Message,
				Error:   &ErrorBody{Code: e.Kind, Details: e.Details},
			})
		}

		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(Envelope{
				Message: fe.Message,
				Error:   &ErrorBody{Code: kindForStatus(fe.Code)},
			})
		}

		logger.LogError(log, "handler", "ErrorHandler", c.Method()+" "+c.Path(), nil, err)
		internal := apperr.Internal(err)
		return c.Status(fiber.StatusInternalServerError).JSON(Envelope{
			Message: internal.Message,
			Error:   &ErrorBody{Code: internal.Kind},
		})
	}
}

func kindForStatus(status int) apperr.Kind {
	switch status {
	case fiber.StatusUnauthorized:
		return apperr.KindUnauthorized
	case fiber.StatusForbidden:
		return apperr.KindForbidden
	case fiber.StatusNotFound:
		return apperr.KindNotFound
	case fiber.StatusConflict:
		return apperr.KindConflict
	}
	if status >= 500 {
		return apperr.KindInternal
	}
	return apperr.KindBadRequest
}

// actor returns the authenticated caller; routes behind RequireAuth always have one.
func actor(c *fiber.Ctx) service.Actor {
	a, _ := middleware.ActorFrom(c)
	return a
}

func parseBody(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return apperr.BadRequest("Invalid JSON body")
	}
	return nil
}

func parseQuery(c *fiber.Ctx, dst any) error {
	if err := c.QueryParser(dst); err != nil {
		return apperr.Validation("Invalid query parameters", nil)
	}
	return nil
}

func paramUUID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, apperr.BadRequest("Invalid " + name)
	}
	return id, nil
}
