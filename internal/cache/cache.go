// Package cache stores dashboard results under invalidation tags.
package cache

import (
	"context"
	"time"
)

// Dashboard tags. Each cached result is written under one or more of them.
const (
	TagUser         = "dashboard-user"
	TagSales        = "dashboard-sales"
	TagOrders       = "dashboard-orders"
	TagGrossProfit  = "dashboard-gross-profit"
	TagAvgMargin    = "dashboard-avg-margin"
	TagShops        = "dashboard-shops"
	TagProductValue = "dashboard-product-value"
)

var AllTags = []string{TagUser, TagSales, TagOrders, TagGrossProfit, TagAvgMargin, TagShops, TagProductValue}

type Cache interface {
	// Get decodes the value stored at key into dest and reports whether it was found.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration, tags ...string) error
	// InvalidateTags drops every key written under any of tags. Invalidating an
	// empty tag is a no-op.
	InvalidateTags(ctx context.Context, tags ...string) error
}
