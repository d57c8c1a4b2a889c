package service

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"naratani-inventory/internal/cache"
	"naratani-inventory/internal/model"
	"naratani-inventory/pkg/apperr"
	"naratani-inventory/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProductService(store *memStore) (ProductService, *recordedEvents, *cache.MemoryCache) {
	events := &recordedEvents{}
	c := cache.NewMemoryCache()
	return NewProductService(store, events, c, logger.NewWithOutput("error", "text", io.Discard)), events, c
}

func TestProductCreateAndLookup(t *testing.T) {
	store := newMemStore()
	svc, events, _ := newProductService(store)
	ctx := context.Background()
	actor := Actor{ID: uuid.New(), Name: "Admin", Role: model.RoleAdmin}
	category := store.db.categories
	cat := model.ProductCategory{Name: "Pupuk"}
	cat.ID = uuid.New()
	category[cat.ID] = cat

	created, err := svc.Create(ctx, actor, &CreateProductRequest{Name: "Pupuk NPK Phonska", Price: 120000, Stock: 5, CategoryID: &cat.ID})
	require.NoError(t, err)
	assert.Equal(t, "pupuk-npk-phonska", created.Slug)
	require.NotNil(t, created.Category)
	assert.Equal(t, "Pupuk", created.Category.Name)

	bySlug, err := svc.Get(ctx, "pupuk-npk-phonska")
	require.NoError(t, err)
	assert.Equal(t, created.ID, bySlug.ID)
	byID, err := svc.Get(ctx, created.ID.String())
	require.NoError(t, err)
	assert.Equal(t, created.ID, byID.ID)

	_, err = svc.Get(ctx, uuid.NewString())
	requireKind(t, err, apperr.KindNotFound)

	_, err = svc.Create(ctx, actor, &CreateProductRequest{Name: "pupuk npk phonska", Price: 1})
	requireKind(t, err, apperr.KindConflict)
	_, err = svc.Create(ctx, actor, &CreateProductRequest{Name: "!!!", Price: 1})
	requireKind(t, err, apperr.KindBadRequest)
	missing := uuid.New()
	_, err = svc.Create(ctx, actor, &CreateProductRequest{Name: "Benih", CategoryID: &missing})
	requireKind(t, err, apperr.KindNotFound)

	assert.Equal(t, []string{"product_created"}, events.actions())
}

func TestProductUpdate(t *testing.T) {
	store := newMemStore()
	svc, _, c := newProductService(store)
	ctx := context.Background()
	actor := Actor{Name: "Admin", Role: model.RoleAdmin}
	cat := model.ProductCategory{Name: "Benih"}
	cat.ID = uuid.New()
	store.db.categories[cat.ID] = cat
	p := store.db.addProduct("Benih Jagung", 1500, 10)
	p.CategoryID = &cat.ID
	store.db.products[p.ID] = p
	store.db.addProduct("Benih Padi", 1200, 10)

	require.NoError(t, c.Set(ctx, "dashboard:product-value", StockValue{TotalStockValue: 1}, time.Hour, cache.TagProductValue))

	t.Run("absent category is kept", func(t *testing.T) {
		var req UpdateProductRequest
		require.NoError(t, json.Unmarshal([]byte(`{"price": 1700}`), &req))
		got, err := svc.Update(ctx, actor, p.Slug, &req)
		require.NoError(t, err)
		assert.Equal(t, int64(1700), got.Price)
		require.NotNil(t, got.CategoryID)
		assert.Equal(t, cat.ID, *got.CategoryID)
	})

	t.Run("null category clears it", func(t *testing.T) {
		var req UpdateProductRequest
		require.NoError(t, json.Unmarshal([]byte(`{"categoryId": null}`), &req))
		got, err := svc.Update(ctx, actor, p.ID.String(), &req)
		require.NoError(t, err)
		assert.Nil(t, got.CategoryID)
	})

	t.Run("rename re-derives slug", func(t *testing.T) {
		name := "Benih Jagung Hibrida"
		got, err := svc.Update(ctx, actor, p.ID.String(), &UpdateProductRequest{Name: &name})
		require.NoError(t, err)
		assert.Equal(t, "benih-jagung-hibrida", got.Slug)
	})

	t.Run("rename onto another slug conflicts", func(t *testing.T) {
		name := "Benih Padi"
		_, err := svc.Update(ctx, actor, p.ID.String(), &UpdateProductRequest{Name: &name})
		requireKind(t, err, apperr.KindConflict)
	})

	t.Run("negative stock is invalid", func(t *testing.T) {
		stock := -1
		_, err := svc.Update(ctx, actor, p.ID.String(), &UpdateProductRequest{Stock: &stock})
		requireKind(t, err, apperr.KindValidation)
	})

	var v StockValue
	found, err := c.Get(ctx, "dashboard:product-value", &v)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestProductDeleteReferenced(t *testing.T) {
	store := newMemStore()
	svc, _, _ := newProductService(store)
	ctx := context.Background()
	p := store.db.addProduct("Pestisida", 900, 10)
	store.db.addLot(p.ID, store.db.addSupplier("PT Tani").ID, 10, 500)
	free := store.db.addProduct("Sekop", 50000, 2)

	requireKind(t, svc.Delete(ctx, Actor{}, p.Slug), apperr.KindBadRequest)
	require.NoError(t, svc.Delete(ctx, Actor{}, free.Slug))
	assert.NotContains(t, store.db.products, free.ID)
}

func TestProductList(t *testing.T) {
	store := newMemStore()
	svc, _, _ := newProductService(store)
	ctx := context.Background()
	store.db.addProduct("Pupuk Urea", 800, 0)
	store.db.addProduct("Pupuk Kandang", 500, 4)
	store.db.addProduct("Sekop", 50000, 1)

	res, err := svc.List(ctx, &ProductListQuery{Search: "pupuk", InStock: "true"})
	require.NoError(t, err)
	require.Len(t, res.Data, 1)
	assert.Equal(t, "Pupuk Kandang", res.Data[0].Name)

	maxPrice := int64(1000)
	res, err = svc.List(ctx, &ProductListQuery{MaxPrice: &maxPrice})
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Pagination.Total)

	_, err = svc.List(ctx, &ProductListQuery{InStock: "yes"})
	requireKind(t, err, apperr.KindValidation)
	_, err = svc.List(ctx, &ProductListQuery{Category: "nope"})
	requireKind(t, err, apperr.KindValidation)
}

func TestCategoryService(t *testing.T) {
	store := newMemStore()
	svc := NewCategoryService(store)
	ctx := context.Background()

	cat, err := svc.Create(ctx, &CategoryRequest{Name: "Pupuk"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, &CategoryRequest{Name: "Pupuk"})
	requireKind(t, err, apperr.KindConflict)
	_, err = svc.Create(ctx, &CategoryRequest{})
	requireKind(t, err, apperr.KindValidation)

	p := store.db.addProduct("Pupuk Urea", 800, 1)
	p.CategoryID = &cat.ID
	store.db.products[p.ID] = p

	res, err := svc.List(ctx, &NamedListQuery{IncludeCount: "true"})
	require.NoError(t, err)
	require.Len(t, res.Data, 1)
	require.NotNil(t, res.Data[0].ProductCount)
	assert.Equal(t, int64(1), *res.Data[0].ProductCount)

	name := "Pupuk Organik"
	updated, err := svc.Update(ctx, cat.ID, &UpdateCategoryRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)

	// deleting the category leaves its products uncategorised
	require.NoError(t, svc.Delete(ctx, cat.ID))
	assert.Nil(t, store.db.products[p.ID].CategoryID)
	requireKind(t, svc.Delete(ctx, cat.ID), apperr.KindNotFound)
}

func TestShopService(t *testing.T) {
	store := newMemStore()
	c := cache.NewMemoryCache()
	svc := NewShopService(store, c, logger.NewWithOutput("error", "text", io.Discard))
	ctx := context.Background()

	shop, err := svc.Create(ctx, &ShopRequest{Name: "Toko Maju"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, &ShopRequest{Name: "Toko Maju"})
	requireKind(t, err, apperr.KindConflict)

	require.NoError(t, c.Set(ctx, "dashboard:shops:x", []int{1}, time.Hour, cache.TagShops))
	name := "Toko Maju Jaya"
	_, err = svc.Update(ctx, shop.ID, &UpdateShopRequest{Name: &name})
	require.NoError(t, err)
	var cached []int
	found, _ := c.Get(ctx, "dashboard:shops:x", &cached)
	assert.False(t, found)

	order := model.Order{ShopID: shop.ID, Status: model.OrderPending}
	order.ID = uuid.New()
	store.db.orders[order.ID] = order
	requireKind(t, svc.Delete(ctx, shop.ID), apperr.KindBadRequest)

	delete(store.db.orders, order.ID)
	require.NoError(t, svc.Delete(ctx, shop.ID))
	_, err = svc.Get(ctx, shop.ID)
	requireKind(t, err, apperr.KindNotFound)
}

func TestSupplierService(t *testing.T) {
	store := newMemStore()
	svc := NewSupplierService(store)
	ctx := context.Background()
	email := "sales@sumber.co.id"
	phone := "0812"

	supplier, err := svc.Create(ctx, &SupplierRequest{Name: "PT Sumber", Email: &email, Phone: &phone})
	require.NoError(t, err)

	bad := "not-an-email"
	_, err = svc.Create(ctx, &SupplierRequest{Name: "CV Lain", Email: &bad})
	requireKind(t, err, apperr.KindValidation)

	var req UpdateSupplierRequest
	require.NoError(t, json.Unmarshal([]byte(`{"email": null, "address": "Jl. Merdeka 1"}`), &req))
	updated, err := svc.Update(ctx, supplier.ID, &req)
	require.NoError(t, err)
	assert.Nil(t, updated.Email)
	require.NotNil(t, updated.Phone)
	assert.Equal(t, phone, *updated.Phone)
	require.NotNil(t, updated.Address)
	assert.Equal(t, "Jl. Merdeka 1", *updated.Address)

	require.NoError(t, json.Unmarshal([]byte(`{"email": "nope"}`), &req))
	_, err = svc.Update(ctx, supplier.ID, &req)
	requireKind(t, err, apperr.KindValidation)

	store.db.addLot(store.db.addProduct("Urea", 800, 0).ID, supplier.ID, 1, 1)
	requireKind(t, svc.Delete(ctx, supplier.ID), apperr.KindBadRequest)
}
