package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"naratani-inventory/internal/model"
	"naratani-inventory/internal/repository"
	"naratani-inventory/internal/ws"

	"github.com/google/uuid"
)

// memDB is an in-memory stand-in for the database behind repository.Store.
// Transactions snapshot every table and restore them when fn fails.
type memDB struct {
	products    map[uuid.UUID]model.Product
	categories  map[uuid.UUID]model.ProductCategory
	shops       map[uuid.UUID]model.Shop
	suppliers   map[uuid.UUID]model.Supplier
	entries     map[uuid.UUID]model.StockEntry
	orders      map[uuid.UUID]model.Order
	allocations []model.OrderItemStockEntry
	users       map[uuid.UUID]model.User

	// fail makes the named operation return err once reached.
	fail map[string]error
	now  time.Time
}

func newMemDB() *memDB {
	return &memDB{
		products:   map[uuid.UUID]model.Product{},
		categories: map[uuid.UUID]model.ProductCategory{},
		shops:      map[uuid.UUID]model.Shop{},
		suppliers:  map[uuid.UUID]model.Supplier{},
		entries:    map[uuid.UUID]model.StockEntry{},
		orders:     map[uuid.UUID]model.Order{},
		users:      map[uuid.UUID]model.User{},
		fail:       map[string]error{},
		now:        time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
	}
}

func (db *memDB) clone() memDB {
	c := *db
	c.products = copyMap(db.products)
	c.categories = copyMap(db.categories)
	c.shops = copyMap(db.shops)
	c.suppliers = copyMap(db.suppliers)
	c.entries = copyMap(db.entries)
	c.users = copyMap(db.users)
	c.orders = make(map[uuid.UUID]model.Order, len(db.orders))
	for id, o := range db.orders {
		o.OrderItems = append([]model.OrderItem(nil), o.OrderItems...)
		c.orders[id] = o
	}
	c.allocations = append([]model.OrderItemStockEntry(nil), db.allocations...)
	return c
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (db *memDB) check(op string) error {
	return db.fail[op]
}

// tick returns a strictly increasing timestamp for created rows.
func (db *memDB) tick() time.Time {
	db.now = db.now.Add(time.Second)
	return db.now
}

type memStore struct {
	db *memDB
}

func newMemStore() *memStore {
	return &memStore{db: newMemDB()}
}

func (s *memStore) Repositories() repository.Repositories {
	return repository.Repositories{
		Products:     memProducts{s.db},
		Categories:   memCategories{s.db},
		Shops:        memShops{s.db},
		Suppliers:    memSuppliers{s.db},
		StockEntries: memEntries{s.db},
		Orders:       memOrders{s.db},
		Users:        memUsers{s.db},
	}
}

func (s *memStore) Transaction(_ context.Context, fn func(repository.Repositories) error) error {
	snapshot := s.db.clone()
	if err := fn(s.Repositories()); err != nil {
		*s.db = snapshot
		return err
	}
	return nil
}

func pageOf[T any](items []T, p repository.ListParams) ([]T, int64) {
	total := int64(len(items))
	start := (p.Page - 1) * p.Limit
	if p.Limit <= 0 || start < 0 {
		return items, total
	}
	if start >= len(items) {
		return []T{}, total
	}
	end := start + p.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end], total
}

func contains(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

// products

type memProducts struct{ db *memDB }

func (r memProducts) Create(_ context.Context, p *model.Product) error {
	for _, other := range r.db.products {
		if other.Slug == p.Slug {
			return repository.ErrDuplicate
		}
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = r.db.tick()
	p.UpdatedAt = p.CreatedAt
	stored := *p
	stored.Category = nil
	r.db.products[p.ID] = stored
	return nil
}

func (r memProducts) load(p model.Product) *model.Product {
	if p.CategoryID != nil {
		if c, ok := r.db.categories[*p.CategoryID]; ok {
			p.Category = &c
		}
	}
	return &p
}

func (r memProducts) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := r.db.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r.load(p), nil
}

func (r memProducts) FindBySlug(_ context.Context, slug string) (*model.Product, error) {
	for _, p := range r.db.products {
		if p.Slug == slug {
			return r.load(p), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r memProducts) FindByIDs(_ context.Context, ids []uuid.UUID) ([]model.Product, error) {
	var out []model.Product
	for _, id := range ids {
		if p, ok := r.db.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r memProducts) SlugExists(_ context.Context, slug string, excludeID uuid.UUID) (bool, error) {
	for _, p := range r.db.products {
		if p.Slug == slug && p.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r memProducts) List(_ context.Context, f repository.ProductFilter) ([]model.Product, int64, error) {
	var out []model.Product
	for _, p := range r.db.products {
		if f.CategoryID != nil && (p.CategoryID == nil || *p.CategoryID != *f.CategoryID) {
			continue
		}
		if f.Search != "" && !contains(p.Name, f.Search) && !contains(p.Slug, f.Search) {
			continue
		}
		if f.MinPrice != nil && p.Price < *f.MinPrice {
			continue
		}
		if f.MaxPrice != nil && p.Price > *f.MaxPrice {
			continue
		}
		if f.InStock != nil && (p.Stock > 0) != *f.InStock {
			continue
		}
		out = append(out, *r.load(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	page, total := pageOf(out, f.ListParams)
	return page, total, nil
}

func (r memProducts) Update(_ context.Context, p *model.Product) error {
	if _, ok := r.db.products[p.ID]; !ok {
		return repository.ErrNotFound
	}
	for _, other := range r.db.products {
		if other.Slug == p.Slug && other.ID != p.ID {
			return repository.ErrDuplicate
		}
	}
	stored := *p
	stored.Category = nil
	r.db.products[p.ID] = stored
	return nil
}

func (r memProducts) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.db.products[id]; !ok {
		return repository.ErrNotFound
	}
	for _, e := range r.db.entries {
		if e.ProductID == id {
			return repository.ErrReferenced
		}
	}
	for _, o := range r.db.orders {
		for _, item := range o.OrderItems {
			if item.ProductID == id {
				return repository.ErrReferenced
			}
		}
	}
	delete(r.db.products, id)
	return nil
}

func (r memProducts) update(id uuid.UUID, fn func(p *model.Product) error) error {
	p, ok := r.db.products[id]
	if !ok {
		return repository.ErrNotFound
	}
	if err := fn(&p); err != nil {
		return err
	}
	r.db.products[id] = p
	return nil
}

func (r memProducts) Reserve(_ context.Context, id uuid.UUID, qty int) error {
	if err := r.db.check("Products.Reserve"); err != nil {
		return err
	}
	return r.update(id, func(p *model.Product) error {
		if p.Stock < qty {
			return repository.ErrInsufficientStock
		}
		p.Stock -= qty
		p.ReservedStock += qty
		return nil
	})
}

func (r memProducts) ReleaseReservation(_ context.Context, id uuid.UUID, qty int) error {
	return r.update(id, func(p *model.Product) error {
		p.ReservedStock = max(p.ReservedStock-qty, 0)
		return nil
	})
}

func (r memProducts) Restock(_ context.Context, id uuid.UUID, qty int, release bool) error {
	return r.update(id, func(p *model.Product) error {
		p.Stock += qty
		if release {
			p.ReservedStock = max(p.ReservedStock-qty, 0)
		}
		return nil
	})
}

func (r memProducts) AddStock(_ context.Context, id uuid.UUID, qty int) error {
	return r.update(id, func(p *model.Product) error {
		p.Stock += qty
		return nil
	})
}

func (r memProducts) RemoveStock(_ context.Context, id uuid.UUID, qty int) error {
	return r.update(id, func(p *model.Product) error {
		if p.Stock < qty {
			return repository.ErrInsufficientStock
		}
		p.Stock -= qty
		return nil
	})
}

// categories, shops, suppliers

type memCategories struct{ db *memDB }

func (r memCategories) Create(_ context.Context, c *model.ProductCategory) error {
	for _, other := range r.db.categories {
		if other.Name == c.Name {
			return repository.ErrDuplicate
		}
	}
	c.ID = uuid.New()
	c.CreatedAt = r.db.tick()
	r.db.categories[c.ID] = *c
	return nil
}

func (r memCategories) FindByID(_ context.Context, id uuid.UUID) (*model.ProductCategory, error) {
	c, ok := r.db.categories[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (r memCategories) List(_ context.Context, f repository.NamedFilter) ([]model.ProductCategory, int64, error) {
	var out []model.ProductCategory
	for _, c := range r.db.categories {
		if f.Search != "" && !contains(c.Name, f.Search) {
			continue
		}
		if f.IncludeCount {
			var n int64
			for _, p := range r.db.products {
				if p.CategoryID != nil && *p.CategoryID == c.ID {
					n++
				}
			}
			c.ProductCount = &n
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	page, total := pageOf(out, f.ListParams)
	return page, total, nil
}

func (r memCategories) Update(_ context.Context, c *model.ProductCategory) error {
	if _, ok := r.db.categories[c.ID]; !ok {
		return repository.ErrNotFound
	}
	for _, other := range r.db.categories {
		if other.Name == c.Name && other.ID != c.ID {
			return repository.ErrDuplicate
		}
	}
	r.db.categories[c.ID] = *c
	return nil
}

func (r memCategories) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.db.categories[id]; !ok {
		return repository.ErrNotFound
	}
	for pid, p := range r.db.products {
		if p.CategoryID != nil && *p.CategoryID == id {
			p.CategoryID = nil
			r.db.products[pid] = p
		}
	}
	delete(r.db.categories, id)
	return nil
}

type memShops struct{ db *memDB }

func (r memShops) Create(_ context.Context, s *model.Shop) error {
	for _, other := range r.db.shops {
		if other.Name == s.Name {
			return repository.ErrDuplicate
		}
	}
	s.ID = uuid.New()
	s.CreatedAt = r.db.tick()
	r.db.shops[s.ID] = *s
	return nil
}

func (r memShops) FindByID(_ context.Context, id uuid.UUID) (*model.Shop, error) {
	s, ok := r.db.shops[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &s, nil
}

func (r memShops) List(_ context.Context, f repository.NamedFilter) ([]model.Shop, int64, error) {
	var out []model.Shop
	for _, s := range r.db.shops {
		if f.Search != "" && !contains(s.Name, f.Search) {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	page, total := pageOf(out, f.ListParams)
	return page, total, nil
}

func (r memShops) Update(_ context.Context, s *model.Shop) error {
	if _, ok := r.db.shops[s.ID]; !ok {
		return repository.ErrNotFound
	}
	r.db.shops[s.ID] = *s
	return nil
}

func (r memShops) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.db.shops[id]; !ok {
		return repository.ErrNotFound
	}
	for _, o := range r.db.orders {
		if o.ShopID == id {
			return repository.ErrReferenced
		}
	}
	delete(r.db.shops, id)
	return nil
}

type memSuppliers struct{ db *memDB }

func (r memSuppliers) Create(_ context.Context, s *model.Supplier) error {
	s.ID = uuid.New()
	s.CreatedAt = r.db.tick()
	r.db.suppliers[s.ID] = *s
	return nil
}

func (r memSuppliers) FindByID(_ context.Context, id uuid.UUID) (*model.Supplier, error) {
	s, ok := r.db.suppliers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &s, nil
}

func (r memSuppliers) List(_ context.Context, f repository.NamedFilter) ([]model.Supplier, int64, error) {
	var out []model.Supplier
	for _, s := range r.db.suppliers {
		if f.Search != "" && !contains(s.Name, f.Search) {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	page, total := pageOf(out, f.ListParams)
	return page, total, nil
}

func (r memSuppliers) Update(_ context.Context, s *model.Supplier) error {
	if _, ok := r.db.suppliers[s.ID]; !ok {
		return repository.ErrNotFound
	}
	r.db.suppliers[s.ID] = *s
	return nil
}

func (r memSuppliers) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.db.suppliers[id]; !ok {
		return repository.ErrNotFound
	}
	for _, e := range r.db.entries {
		if e.SupplierID == id {
			return repository.ErrReferenced
		}
	}
	delete(r.db.suppliers, id)
	return nil
}

// stock entries

type memEntries struct{ db *memDB }

func (r memEntries) Create(_ context.Context, e *model.StockEntry) error {
	if err := r.db.check("StockEntries.Create"); err != nil {
		return err
	}
	e.ID = uuid.New()
	e.CreatedAt = r.db.tick()
	stored := *e
	stored.Product, stored.Supplier = nil, nil
	r.db.entries[e.ID] = stored
	return nil
}

func (r memEntries) load(e model.StockEntry) model.StockEntry {
	if p, ok := r.db.products[e.ProductID]; ok {
		e.Product = &p
	}
	if s, ok := r.db.suppliers[e.SupplierID]; ok {
		e.Supplier = &s
	}
	return e
}

func (r memEntries) FindByID(_ context.Context, id uuid.UUID) (*model.StockEntry, error) {
	e, ok := r.db.entries[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	e = r.load(e)
	return &e, nil
}

func (r memEntries) FindByIDs(_ context.Context, ids []uuid.UUID) ([]model.StockEntry, error) {
	var out []model.StockEntry
	for _, id := range ids {
		if e, ok := r.db.entries[id]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r memEntries) List(_ context.Context, f repository.StockEntryFilter) ([]model.StockEntry, int64, error) {
	var out []model.StockEntry
	for _, e := range r.db.entries {
		if f.ProductID != nil && e.ProductID != *f.ProductID {
			continue
		}
		if f.SupplierID != nil && e.SupplierID != *f.SupplierID {
			continue
		}
		if f.HasStock != nil && (e.RemainingQty > 0) != *f.HasStock {
			continue
		}
		out = append(out, r.load(e))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PurchaseDate.After(out[j].PurchaseDate) })
	page, total := pageOf(out, repository.ListParams{Page: f.Page, Limit: f.Limit})
	return page, total, nil
}

func (r memEntries) ListAvailable(_ context.Context, productID uuid.UUID) ([]model.StockEntry, error) {
	var out []model.StockEntry
	for _, e := range r.db.entries {
		if e.ProductID == productID && e.RemainingQty > 0 {
			out = append(out, r.load(e))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PurchaseDate.Before(out[j].PurchaseDate) })
	return out, nil
}

func (r memEntries) CountAllocations(_ context.Context, id uuid.UUID) (int64, error) {
	var n int64
	for _, a := range r.db.allocations {
		if a.StockEntryID == id {
			n++
		}
	}
	return n, nil
}

func (r memEntries) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.db.entries[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.db.entries, id)
	return nil
}

func (r memEntries) Allocate(_ context.Context, id uuid.UUID, qty int) error {
	if err := r.db.check("StockEntries.Allocate"); err != nil {
		return err
	}
	e, ok := r.db.entries[id]
	if !ok || e.RemainingQty < qty {
		return repository.ErrInsufficientLot
	}
	e.RemainingQty -= qty
	r.db.entries[id] = e
	return nil
}

func (r memEntries) Restore(_ context.Context, id uuid.UUID, qty int) error {
	e, ok := r.db.entries[id]
	if !ok {
		return repository.ErrNotFound
	}
	e.RemainingQty = min(e.RemainingQty+qty, e.Quantity)
	r.db.entries[id] = e
	return nil
}

// orders

type memOrders struct{ db *memDB }

func (r memOrders) Create(_ context.Context, o *model.Order) error {
	o.ID = uuid.New()
	o.CreatedAt = r.db.tick()
	o.UpdatedAt = o.CreatedAt
	for i := range o.OrderItems {
		o.OrderItems[i].ID = uuid.New()
		o.OrderItems[i].OrderID = o.ID
	}
	stored := *o
	stored.Shop, stored.Creator = nil, nil
	stored.OrderItems = append([]model.OrderItem(nil), o.OrderItems...)
	r.db.orders[o.ID] = stored
	return nil
}

func (r memOrders) load(o model.Order) *model.Order {
	if s, ok := r.db.shops[o.ShopID]; ok {
		o.Shop = &s
	}
	if o.CreatedBy != nil {
		if u, ok := r.db.users[*o.CreatedBy]; ok {
			o.Creator = &u
		}
	}
	items := make([]model.OrderItem, len(o.OrderItems))
	for i, item := range o.OrderItems {
		if p, ok := r.db.products[item.ProductID]; ok {
			item.Product = &p
		}
		item.Allocations = nil
		for _, a := range r.db.allocations {
			if a.OrderItemID == item.ID {
				item.Allocations = append(item.Allocations, a)
			}
		}
		items[i] = item
	}
	o.OrderItems = items
	return &o
}

func (r memOrders) FindByID(_ context.Context, id uuid.UUID) (*model.Order, error) {
	o, ok := r.db.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r.load(o), nil
}

func (r memOrders) List(_ context.Context, f repository.OrderFilter) ([]model.Order, int64, error) {
	var out []model.Order
	for _, o := range r.db.orders {
		if f.Status != nil && o.Status != *f.Status {
			continue
		}
		if f.ShopID != nil && o.ShopID != *f.ShopID {
			continue
		}
		if f.CreatedBy != nil && !o.IsCreatedBy(*f.CreatedBy) {
			continue
		}
		out = append(out, *r.load(o))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	page, total := pageOf(out, f.ListParams)
	return page, total, nil
}

func (r memOrders) ListByCreator(_ context.Context, userID uuid.UUID, start, end time.Time) ([]model.Order, error) {
	var out []model.Order
	for _, o := range r.db.orders {
		if o.IsCreatedBy(userID) && !o.CreatedAt.Before(start) && o.CreatedAt.Before(end) {
			out = append(out, *r.load(o))
		}
	}
	return out, nil
}

func (r memOrders) TransitionStatus(_ context.Context, id uuid.UUID, from []model.OrderStatus, to model.OrderStatus) error {
	o, ok := r.db.orders[id]
	if !ok {
		return repository.ErrNotFound
	}
	for _, st := range from {
		if o.Status == st {
			o.Status = to
			r.db.orders[id] = o
			return nil
		}
	}
	return repository.ErrStatusConflict
}

func (r memOrders) CreateAllocations(_ context.Context, rows []model.OrderItemStockEntry) error {
	for _, a := range rows {
		a.ID = uuid.New()
		r.db.allocations = append(r.db.allocations, a)
	}
	return nil
}

func (r memOrders) UpdateItemCosts(_ context.Context, itemID uuid.UUID, totalCost, totalMargin int64, avgMarginRate float64) error {
	if err := r.db.check("Orders.UpdateItemCosts"); err != nil {
		return err
	}
	for id, o := range r.db.orders {
		for i, item := range o.OrderItems {
			if item.ID != itemID {
				continue
			}
			cost, margin, rate := totalCost, totalMargin, avgMarginRate
			item.TotalCost, item.TotalMargin, item.AvgMarginRate = &cost, &margin, &rate
			items := append([]model.OrderItem(nil), o.OrderItems...)
			items[i] = item
			o.OrderItems = items
			r.db.orders[id] = o
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r memOrders) AllocationsByOrder(_ context.Context, orderID uuid.UUID) ([]model.OrderItemStockEntry, error) {
	o, ok := r.db.orders[orderID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	items := make(map[uuid.UUID]bool, len(o.OrderItems))
	for _, item := range o.OrderItems {
		items[item.ID] = true
	}
	var out []model.OrderItemStockEntry
	for _, a := range r.db.allocations {
		if items[a.OrderItemID] {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r memOrders) Delete(_ context.Context, id uuid.UUID) error {
	o, ok := r.db.orders[id]
	if !ok {
		return repository.ErrNotFound
	}
	items := make(map[uuid.UUID]bool, len(o.OrderItems))
	for _, item := range o.OrderItems {
		items[item.ID] = true
	}
	kept := r.db.allocations[:0:0]
	for _, a := range r.db.allocations {
		if !items[a.OrderItemID] {
			kept = append(kept, a)
		}
	}
	r.db.allocations = kept
	delete(r.db.orders, id)
	return nil
}

// users

type memUsers struct{ db *memDB }

func (r memUsers) FindByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range r.db.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r memUsers) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := r.db.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r memUsers) Create(_ context.Context, u *model.User) error {
	for _, other := range r.db.users {
		if strings.EqualFold(other.Email, u.Email) {
			return repository.ErrDuplicate
		}
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = r.db.tick()
	}
	r.db.users[u.ID] = *u
	return nil
}

func (r memUsers) List(_ context.Context, f repository.UserFilter) ([]model.User, int64, error) {
	var out []model.User
	for _, u := range r.db.users {
		if f.Search != "" && !contains(u.Name, f.Search) && !contains(u.Email, f.Search) {
			continue
		}
		if f.Role != "" && u.Role != f.Role {
			continue
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	page, total := pageOf(out, f.ListParams)
	return page, total, nil
}

func (r memUsers) UpdatePassword(_ context.Context, id uuid.UUID, hashed string) error {
	u, ok := r.db.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Password = hashed
	r.db.users[id] = u
	return nil
}

func (r memUsers) UpdateTokenVersion(_ context.Context, id uuid.UUID, version string) error {
	u, ok := r.db.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.TokenVersion = version
	r.db.users[id] = u
	return nil
}

// roles

type memRoles struct {
	roles map[string]model.Role
}

func (r memRoles) FindAll(context.Context) ([]model.Role, error) {
	var out []model.Role
	for _, role := range r.roles {
		out = append(out, role)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (r memRoles) FindByCode(_ context.Context, code string) (*model.Role, error) {
	role, ok := r.roles[code]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &role, nil
}

func (r memRoles) SeedDefaults(context.Context, map[string][]string) error {
	return nil
}

// privileges

type memPrivileges []model.Privilege

func (p memPrivileges) FindByCodes(_ context.Context, codes []string) ([]model.Privilege, error) {
	var out []model.Privilege
	for _, priv := range p {
		for _, code := range codes {
			if priv.Code == code {
				out = append(out, priv)
			}
		}
	}
	return out, nil
}

func (p memPrivileges) FindAll(context.Context) ([]model.Privilege, error) {
	return p, nil
}

func (p memPrivileges) SeedDefaults(context.Context, []string) error {
	return nil
}

// events

type recordedEvents struct {
	events []ws.Event
}

func (r *recordedEvents) Publish(ev ws.Event) {
	r.events = append(r.events, ev)
}

func (r *recordedEvents) actions() []string {
	out := make([]string, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Action
	}
	return out
}

// fixtures

func (db *memDB) addProduct(name string, price int64, stock int) model.Product {
	p := model.Product{Name: name, Slug: strings.ToLower(strings.ReplaceAll(name, " ", "-")), Price: price, Stock: stock}
	p.ID = uuid.New()
	p.CreatedAt = db.tick()
	db.products[p.ID] = p
	return p
}

func (db *memDB) addShop(name string) model.Shop {
	s := model.Shop{Name: name}
	s.ID = uuid.New()
	s.CreatedAt = db.tick()
	db.shops[s.ID] = s
	return s
}

func (db *memDB) addSupplier(name string) model.Supplier {
	s := model.Supplier{Name: name}
	s.ID = uuid.New()
	s.CreatedAt = db.tick()
	db.suppliers[s.ID] = s
	return s
}

// addLot records a purchased lot without touching product stock.
func (db *memDB) addLot(productID, supplierID uuid.UUID, qty int, unitCost int64) model.StockEntry {
	e := model.StockEntry{
		ProductID:    productID,
		SupplierID:   supplierID,
		Quantity:     qty,
		UnitCost:     unitCost,
		TotalCost:    int64(qty) * unitCost,
		RemainingQty: qty,
		PurchaseDate: db.tick(),
	}
	e.ID = uuid.New()
	e.CreatedAt = e.PurchaseDate
	db.entries[e.ID] = e
	return e
}

func (db *memDB) addUser(name, email, role string) model.User {
	u := model.User{Name: name, Email: email, Role: role}
	u.ID = uuid.New()
	u.CreatedAt = db.tick()
	db.users[u.ID] = u
	return u
}
