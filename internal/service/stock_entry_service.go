package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"naratani-inventory/internal/cache"
	"naratani-inventory/internal/model"
	"naratani-inventory/internal/repository"
	"naratani-inventory/internal/ws"
	"naratani-inventory/pkg/apperr"
	"naratani-inventory/pkg/pagination"
	"naratani-inventory/pkg/validator"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type StockEntryService interface {
	Create(ctx context.Context, actor Actor, req *CreateStockEntryRequest) (*model.StockEntry, error)
	Get(ctx context.Context, id uuid.UUID) (*model.StockEntry, error)
	List(ctx context.Context, q *StockEntryListQuery) (*pagination.Result[model.StockEntry], error)
	// ListAvailable returns the lots of a product that still hold stock, oldest first.
	ListAvailable(ctx context.Context, productID uuid.UUID) ([]model.StockEntry, error)
	Delete(ctx context.Context, actor Actor, id uuid.UUID) error
}

type CreateStockEntryRequest struct {
	ProductID    uuid.UUID  `json:"productId" validate:"uuid_required"`
	SupplierID   uuid.UUID  `json:"supplierId" validate:"uuid_required"`
	Quantity     int        `json:"quantity" validate:"gt=0"`
	UnitCost     int64      `json:"unitCost" validate:"gte=0"`
	PurchaseDate *time.Time `json:"purchaseDate"`
	Notes        *string    `json:"notes" validate:"omitempty,max=500"`
}

type StockEntryListQuery struct {
	Page       int    `query:"page" validate:"gte=0"`
	Limit      int    `query:"limit" validate:"gte=0,lte=100"`
	ProductID  string `query:"productId"`
	SupplierID string `query:"supplierId"`
	HasStock   string `query:"hasStock" validate:"omitempty,oneof=true false"`
}

type stockEntryService struct {
	store  repository.Store
	events EventPublisher
	invalidator
	now func() time.Time
}

func NewStockEntryService(store repository.Store, events EventPublisher, c cache.Cache, log logrus.FieldLogger) StockEntryService {
	return &stockEntryService{
		store:       store,
		events:      events,
		invalidator: invalidator{cache: c, log: log, module: "stockEntryService"},
		now:         time.Now,
	}
}

func (s *stockEntryService) Create(ctx context.Context, actor Actor, req *CreateStockEntryRequest) (*model.StockEntry, error) {
	// 1. Validate request
	if err := validator.Struct(req); err != nil {
		return nil, err
	}
	repos := s.store.Repositories()

	// 2. Product and supplier must exist
	product, err := repos.Products.FindByID(ctx, req.ProductID)
	if err != nil {
		return nil, repoError(err, "Product not found")
	}
	supplier, err := repos.Suppliers.FindByID(ctx, req.SupplierID)
	if err != nil {
		return nil, repoError(err, "Supplier not found")
	}

	entry := &model.StockEntry{
		ProductID:    req.ProductID,
		SupplierID:   req.SupplierID,
		Quantity:     req.Quantity,
		UnitCost:     req.UnitCost,
		TotalCost:    int64(req.Quantity) * req.UnitCost,
		RemainingQty: req.Quantity,
		PurchaseDate: s.now(),
		Notes:        req.Notes,
	}
	if req.PurchaseDate != nil {
		entry.PurchaseDate = *req.PurchaseDate
	}

	// 3. Insert the lot and raise product stock together
	err = s.store.Transaction(ctx, func(tx repository.Repositories) error {
		if err := tx.StockEntries.Create(ctx, entry); err != nil {
			return err
		}
		return tx.Products.AddStock(ctx, entry.ProductID, entry.Quantity)
	})
	if err != nil {
		return nil, repoError(err, "Product not found")
	}

	entry.Product = product
	entry.Supplier = supplier
	s.afterChange(ctx, "Create", actor, "stock_entry_created", entry,
		fmt.Sprintf("%s added %d %s from %s", actor.Name, entry.Quantity, product.Name, supplier.Name))
	return entry, nil
}

func (s *stockEntryService) Get(ctx context.Context, id uuid.UUID) (*model.StockEntry, error) {
	entry, err := s.store.Repositories().StockEntries.FindByID(ctx, id)
	if err != nil {
		return nil, repoError(err, "Stock entry not found")
	}
	return entry, nil
}

func (s *stockEntryService) List(ctx context.Context, q *StockEntryListQuery) (*pagination.Result[model.StockEntry], error) {
	if err := validator.Struct(q); err != nil {
		return nil, err
	}
	productID, err := parseOptionalUUID(q.ProductID, "productId")
	if err != nil {
		return nil, err
	}
	supplierID, err := parseOptionalUUID(q.SupplierID, "supplierId")
	if err != nil {
		return nil, err
	}

	page, limit := pagination.Normalize(q.Page, q.Limit, pagination.MaxLimit)
	entries, total, err := s.store.Repositories().StockEntries.List(ctx, repository.StockEntryFilter{
		Page:       page,
		Limit:      limit,
		ProductID:  productID,
		SupplierID: supplierID,
		HasStock:   parseOptionalBool(q.HasStock),
	})
	if err != nil {
		return nil, repoError(err, "Stock entry not found")
	}
	return pagination.NewResult(entries, page, limit, total), nil
}

func (s *stockEntryService) ListAvailable(ctx context.Context, productID uuid.UUID) ([]model.StockEntry, error) {
	repos := s.store.Repositories()
	if _, err := repos.Products.FindByID(ctx, productID); err != nil {
		return nil, repoError(err, "Product not found")
	}
	entries, err := repos.StockEntries.ListAvailable(ctx, productID)
	if err != nil {
		return nil, repoError(err, "Stock entry not found")
	}
	return entries, nil
}

func (s *stockEntryService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	repos := s.store.Repositories()
	entry, err := repos.StockEntries.FindByID(ctx, id)
	if err != nil {
		return repoError(err, "Stock entry not found")
	}

	// 1. Only untouched, unreferenced lots can go
	if !entry.Untouched() {
		return apperr.BadRequest("Stock entry has been partially used and cannot be deleted")
	}
	refs, err := repos.StockEntries.CountAllocations(ctx, id)
	if err != nil {
		return repoError(err, "Stock entry not found")
	}
	if refs > 0 {
		return apperr.BadRequest("Stock entry is allocated to orders and cannot be deleted")
	}

	// 2. Drop the lot and its stock together
	err = s.store.Transaction(ctx, func(tx repository.Repositories) error {
		if err := tx.StockEntries.Delete(ctx, id); err != nil {
			return err
		}
		return tx.Products.RemoveStock(ctx, entry.ProductID, entry.Quantity)
	})
	if err != nil {
		if errors.Is(err, repository.ErrInsufficientStock) {
			return apperr.BadRequest("Product stock from this entry is already committed to orders")
		}
		return repoError(err, "Stock entry not found")
	}

	name := entry.ProductID.String()
	if entry.Product != nil {
		name = entry.Product.Name
	}
	s.afterChange(ctx, "Delete", actor, "stock_entry_deleted", map[string]interface{}{
		"id":        entry.ID,
		"productId": entry.ProductID,
		"quantity":  entry.Quantity,
	}, fmt.Sprintf("%s removed a stock entry of %d %s", actor.Name, entry.Quantity, name))
	return nil
}

func (s *stockEntryService) afterChange(ctx context.Context, funcName string, actor Actor, action string, data interface{}, message string) {
	s.invalidate(ctx, funcName, cache.TagProductValue)
	s.events.Publish(ws.Event{
		Type:    ws.TypeStockUpdate,
		Action:  action,
		Data:    data,
		User:    actor.wsActor(),
		Message: message,
	})
}
