package service

import (
	"context"
	"errors"

	"naratani-inventory/internal/cache"
	"naratani-inventory/internal/model"
	"naratani-inventory/internal/repository"
	"naratani-inventory/internal/ws"
	"naratani-inventory/pkg/apperr"
	"naratani-inventory/pkg/logger"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Actor is the authenticated caller of an operation.
type Actor struct {
	ID    uuid.UUID
	Name  string
	Email string
	Role  string
}

func (a Actor) IsAdmin() bool {
	return a.Role == model.RoleAdmin
}

func (a Actor) wsActor() *ws.Actor {
	return &ws.Actor{ID: a.ID.String(), Name: a.Name, Email: a.Email}
}

// EventPublisher receives domain events after their transaction commits.
type EventPublisher interface {
	Publish(ev ws.Event)
}

type nopPublisher struct{}

func (nopPublisher) Publish(ws.Event) {}

// NopPublisher discards every event.
var NopPublisher EventPublisher = nopPublisher{}

// orderTags are the dashboard tags affected by any order mutation.
var orderTags = []string{
	cache.TagSales, cache.TagOrders, cache.TagGrossProfit, cache.TagAvgMargin, cache.TagShops, cache.TagProductValue,
}

// invalidator drops dashboard cache tags after writes. A failed invalidation is
// logged and never fails the write that triggered it.
type invalidator struct {
	cache  cache.Cache
	log    logrus.FieldLogger
	module string
}

func (i invalidator) invalidate(ctx context.Context, funcName string, tags ...string) {
	if i.cache == nil {
		return
	}
	if err := i.cache.InvalidateTags(ctx, tags...); err != nil {
		logger.LogError(i.log, i.module, funcName, "invalidate dashboard cache", tags, err)
	}
}

// repoError converts repository sentinels into apperr kinds. notFound is the
// message used for ErrNotFound.
func repoError(err error, notFound string) error {
	if err == nil {
		return nil
	}
	if _, ok := apperr.As(err); ok {
		return err
	}
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperr.NotFound(notFound)
	case errors.Is(err, repository.ErrDuplicate):
		return apperr.Conflict("")
	case errors.Is(err, repository.ErrReferenced):
		return apperr.BadRequest("Resource is still referenced by other records")
	case errors.Is(err, repository.ErrInsufficientStock):
		return apperr.BadRequest("Insufficient product stock")
	case errors.Is(err, repository.ErrInsufficientLot):
		return apperr.BadRequest("Insufficient stock entry quantity")
	case errors.Is(err, repository.ErrStatusConflict):
		return apperr.BadRequest("Order status has changed, reload and try again")
	default:
		return apperr.Internal(err)
	}
}
