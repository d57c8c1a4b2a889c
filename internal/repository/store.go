package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repositories bundles the repositories that take part in domain transactions.
type Repositories struct {
	Products     ProductRepository
	Categories   CategoryRepository
	Shops        ShopRepository
	Suppliers    SupplierRepository
	StockEntries StockEntryRepository
	Orders       OrderRepository
	Users        UserRepository
}

// Store hands out repositories bound either to the pool or to one transaction.
type Store interface {
	Repositories() Repositories
	// Transaction runs fn inside a database transaction. Any error returned by fn
	// rolls back every write made through the supplied repositories.
	Transaction(ctx context.Context, fn func(Repositories) error) error
}

type store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) Store {
	return &store{db: db}
}

func newRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Products:     NewProductRepo(db),
		Categories:   NewCategoryRepo(db),
		Shops:        NewShopRepo(db),
		Suppliers:    NewSupplierRepo(db),
		StockEntries: NewStockEntryRepo(db),
		Orders:       NewOrderRepo(db),
		Users:        NewUserRepo(db),
	}
}

func (s *store) Repositories() Repositories {
	return newRepositories(s.db)
}

func (s *store) Transaction(ctx context.Context, fn func(Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(newRepositories(tx))
	})
}
