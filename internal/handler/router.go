package handler

import (
	"naratani-inventory/internal/middleware"
	"naratani-inventory/internal/permission"
	"naratani-inventory/internal/service"
	"naratani-inventory/internal/ws"

	"github.com/gofiber/fiber/v2"
)

// Handlers groups everything Register mounts.
type Handlers struct {
	Auth             *AuthHandler
	Users            *UserHandler
	Products         *ProductHandler
	Categories       *CategoryHandler
	Shops            *ShopHandler
	Suppliers        *SupplierHandler
	StockEntries     *StockEntryHandler
	Orders           *OrderHandler
	Dashboard        *DashboardHandler
	SalesPerformance *SalesPerformanceHandler
	Hub              *ws.Hub
}

// Register mounts every route on r. Each protected route declares the
// resource and action its caller's role must hold.
func Register(r fiber.Router, h Handlers, auth service.AuthService, checker permission.Checker) {
	requireAuth := middleware.RequireAuth(auth)
	can := func(resource string, actions ...string) fiber.Handler {
		return middleware.RequirePermission(checker, resource, actions...)
	}

	// ============ PUBLIC ROUTES ============
	authGroup := r.Group("/auth")
	authGroup.Post("/login", h.Auth.Login)
	authGroup.Get("/me", requireAuth, h.Auth.Me)
	authGroup.Post("/change-password", requireAuth, h.Auth.ChangePassword)
	authGroup.Post("/logout", requireAuth, h.Auth.Logout)

	// live dashboard events
	if h.Hub != nil {
		r.Use("/ws", middleware.RequireStreamAuth(auth), can(permission.Dashboard, permission.Read), upgradeOnly)
		r.Get("/ws", stream(h.Hub))
	}

	// ============ PROTECTED ROUTES ============
	p := r.Group("", requireAuth)

	p.Get("/users", can(permission.User, permission.List), h.Users.List)
	p.Post("/users", can(permission.User, permission.Create), h.Users.Create)
	p.Get("/roles", can(permission.User, permission.List), h.Users.Roles)
	p.Get("/privileges", can(permission.User, permission.List), h.Users.Privileges)

	p.Get("/products", can(permission.Product, permission.Read), h.Products.List)
	p.Post("/products", can(permission.Product, permission.Create), h.Products.Create)
	p.Get("/products/:idOrSlug", can(permission.Product, permission.Read), h.Products.Get)
	p.Put("/products/:idOrSlug", can(permission.Product, permission.Update), h.Products.Update)
	p.Patch("/products/:idOrSlug", can(permission.Product, permission.Update), h.Products.Update)
	p.Delete("/products/:idOrSlug", can(permission.Product, permission.Delete), h.Products.Delete)

	catalog(p, "/categories", permission.Category, h.Categories, can)
	catalog(p, "/shops", permission.Shop, h.Shops, can)
	catalog(p, "/suppliers", permission.Supplier, h.Suppliers, can)

	// stock entries are guarded by the supplier resource
	p.Get("/stock-entries", can(permission.Supplier, permission.Read), h.StockEntries.List)
	p.Post("/stock-entries", can(permission.Supplier, permission.Create), h.StockEntries.Create)
	p.Get("/stock-entries/product/:productId", can(permission.Supplier, permission.Read), h.StockEntries.ByProduct)
	p.Get("/stock-entries/:id", can(permission.Supplier, permission.Read), h.StockEntries.Get)
	p.Delete("/stock-entries/:id", can(permission.Supplier, permission.Delete), h.StockEntries.Delete)

	p.Get("/orders", can(permission.Order, permission.Read), h.Orders.List)
	p.Post("/orders", can(permission.Order, permission.Create), h.Orders.Create)
	p.Get("/orders/:id", can(permission.Order, permission.Read), h.Orders.Get)
	p.Delete("/orders/:id", can(permission.Order, permission.Delete), h.Orders.Delete)
	p.Put("/orders/:id/accept", can(permission.Order, permission.Update), h.Orders.Accept)
	p.Put("/orders/:id/cancel", can(permission.Order, permission.Update), h.Orders.Cancel)
	p.Put("/orders/:id/complete", can(permission.Order, permission.Update), h.Orders.Complete)

	dash := p.Group("/dashboard")
	dash.Get("/sales", can(permission.Dashboard, permission.Read), h.Dashboard.Sales)
	dash.Get("/orders", can(permission.Dashboard, permission.Read), h.Dashboard.Orders)
	dash.Get("/user", can(permission.Dashboard, permission.Read), h.Dashboard.Users)
	dash.Get("/shops", can(permission.Dashboard, permission.Read), h.Dashboard.Shops)
	dash.Get("/gross-profit", can(permission.Dashboard, permission.Read), h.Dashboard.GrossProfit)
	dash.Get("/total-avg-margin", can(permission.Dashboard, permission.Read), h.Dashboard.AvgMargin)
	dash.Get("/product-left-value", can(permission.Dashboard, permission.Read), h.Dashboard.ProductValue)
	dash.Post("/revalidate", can(permission.Dashboard, permission.Revalidate), h.Dashboard.Revalidate)

	p.Get("/sales-performance/me", can(permission.SalesPerformance, permission.Read), h.SalesPerformance.Me)
	p.Get("/sales-performance/leaderboard", can(permission.SalesPerformance, permission.Read), h.SalesPerformance.Leaderboard)
}

func catalog[T, C, U any](r fiber.Router, path, resource string, h *CatalogHandler[T, C, U], can func(string, ...string) fiber.Handler) {
	r.Get(path, can(resource, permission.Read), h.List)
	r.Post(path, can(resource, permission.Create), h.Create)
	r.Get(path+"/:id", can(resource, permission.Read), h.Get)
	r.Put(path+"/:id", can(resource, permission.Update), h.Update)
	r.Delete(path+"/:id", can(resource, permission.Delete), h.Delete)
}
