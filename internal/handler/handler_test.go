package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"naratani-inventory/internal/model"
	"naratani-inventory/internal/permission"
	"naratani-inventory/internal/service"
	"naratani-inventory/internal/ws"
	"naratani-inventory/pkg/apperr"
	"naratani-inventory/pkg/logger"
	"naratani-inventory/pkg/pagination"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuth struct {
	service.AuthService
	sessions map[string]service.Actor
}

func (s stubAuth) Authenticate(_ context.Context, token string) (service.Actor, error) {
	if token == "" {
		return service.Actor{}, apperr.Unauthorized("")
	}
	a, ok := s.sessions[token]
	if !ok {
		return service.Actor{}, apperr.Unauthorized("Invalid or expired token")
	}
	return a, nil
}

type stubProducts struct {
	service.ProductService
	created *service.CreateProductRequest
	getErr  error
}

func (s *stubProducts) Create(_ context.Context, _ service.Actor, req *service.CreateProductRequest) (*model.Product, error) {
	if req.Name == "" {
		return nil, apperr.Validation("Validation failed on field 'name'", []map[string]string{{"field": "name", "tag": "required"}})
	}
	s.created = req
	p := &model.Product{Name: req.Name, Price: req.Price}
	p.ID = uuid.New()
	return p, nil
}

func (s *stubProducts) Get(_ context.Context, idOrSlug string) (*model.Product, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return &model.Product{Name: idOrSlug, Slug: idOrSlug}, nil
}

func (s *stubProducts) List(_ context.Context, q *service.ProductListQuery) (*pagination.Result[model.Product], error) {
	data := []model.Product{{Name: q.Search}}
	return pagination.NewResult(data, q.Page, 10, 25), nil
}

type stubOrders struct {
	service.OrderService
	accepted *service.AcceptOrderRequest
	by       service.Actor
}

func (s *stubOrders) Accept(_ context.Context, actor service.Actor, id uuid.UUID, req *service.AcceptOrderRequest) (*model.Order, error) {
	s.accepted, s.by = req, actor
	o := &model.Order{Status: model.OrderProcessing}
	o.ID = id
	return o, nil
}

type envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   *struct {
		Code    string          `json:"code"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

var (
	admin = service.Actor{ID: uuid.New(), Name: "Admin", Role: model.RoleAdmin}
	sales = service.Actor{ID: uuid.New(), Name: "Sari", Role: model.RoleSales}
)

func newTestApp(products *stubProducts, orders *stubOrders) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(logger.NewWithOutput("error", "text", io.Discard))})
	auth := stubAuth{sessions: map[string]service.Actor{"admin-token": admin, "sales-token": sales}}
	Register(app, Handlers{
		Auth:             NewAuthHandler(auth),
		Users:            NewUserHandler(nil),
		Products:         NewProductHandler(products),
		Categories:       NewCategoryHandler(nil),
		Shops:            NewShopHandler(nil),
		Suppliers:        NewSupplierHandler(nil),
		StockEntries:     NewStockEntryHandler(nil),
		Orders:           NewOrderHandler(orders),
		Dashboard:        NewDashboardHandler(nil),
		SalesPerformance: NewSalesPerformanceHandler(nil),
		Hub:              ws.NewHub(logger.NewWithOutput("error", "text", io.Discard)),
	}, auth, permission.Static(permission.Defaults))
	return app
}

func do(t *testing.T, app *fiber.App, method, path, token, body string) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	return resp.StatusCode, env
}

func TestRoutesRequireSession(t *testing.T) {
	app := newTestApp(&stubProducts{}, &stubOrders{})

	status, env := do(t, app, http.MethodGet, "/products", "", "")
	assert.Equal(t, http.StatusUnauthorized, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "UNAUTHORIZED", env.Error.Code)
	assert.Equal(t, "You are not authenticated", env.Message)

	status, _ = do(t, app, http.MethodGet, "/products", "stale", "")
	assert.Equal(t, http.StatusUnauthorized, status)

	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	req.Header.Set("Authorization", "Token abc")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRoutesCheckPermission(t *testing.T) {
	products := &stubProducts{}
	app := newTestApp(products, &stubOrders{})

	status, env := do(t, app, http.MethodPost, "/products", "sales-token", `{"name":"Urea","price":800}`)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)
	assert.Nil(t, products.created)

	status, _ = do(t, app, http.MethodPost, "/dashboard/revalidate", "sales-token", "")
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = do(t, app, http.MethodGet, "/products/urea", "sales-token", "")
	assert.Equal(t, http.StatusOK, status)
}

func TestCreateReturnsEnvelope(t *testing.T) {
	products := &stubProducts{}
	app := newTestApp(products, &stubOrders{})

	status, env := do(t, app, http.MethodPost, "/products", "admin-token", `{"name":"Urea","price":800}`)
	assert.Equal(t, http.StatusCreated, status)
	assert.Nil(t, env.Error)
	assert.Equal(t, "Product created successfully", env.Message)
	var p model.Product
	require.NoError(t, json.Unmarshal(env.Data, &p))
	assert.Equal(t, "Urea", p.Name)
	require.NotNil(t, products.created)
	assert.Equal(t, int64(800), products.created.Price)
}

func TestErrorMapping(t *testing.T) {
	products := &stubProducts{}
	app := newTestApp(products, &stubOrders{})

	t.Run("validation carries details", func(t *testing.T) {
		status, env := do(t, app, http.MethodPost, "/products", "admin-token", `{"price":1}`)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
		assert.Contains(t, string(env.Error.Details), `"field":"name"`)
	})

	t.Run("malformed body", func(t *testing.T) {
		status, env := do(t, app, http.MethodPost, "/products", "admin-token", `{"name":`)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "BAD_REQUEST", env.Error.Code)
	})

	t.Run("not found", func(t *testing.T) {
		products.getErr = apperr.NotFound("Product not found")
		defer func() { products.getErr = nil }()
		status, env := do(t, app, http.MethodGet, "/products/nope", "admin-token", "")
		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, "NOT_FOUND", env.Error.Code)
		assert.Equal(t, "Product not found", env.Message)
	})

	t.Run("unknown errors are hidden", func(t *testing.T) {
		products.getErr = errors.New("pq: connection refused")
		defer func() { products.getErr = nil }()
		status, env := do(t, app, http.MethodGet, "/products/x", "admin-token", "")
		assert.Equal(t, http.StatusInternalServerError, status)
		assert.Equal(t, "INTERNAL_SERVER_ERROR", env.Error.Code)
		assert.Equal(t, "Internal server error", env.Message)
	})

	t.Run("bad id param", func(t *testing.T) {
		status, env := do(t, app, http.MethodPut, "/orders/not-a-uuid/accept", "admin-token", `{"items":[]}`)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "BAD_REQUEST", env.Error.Code)
	})
}

func TestListPagination(t *testing.T) {
	app := newTestApp(&stubProducts{}, &stubOrders{})

	status, env := do(t, app, http.MethodGet, "/products?search=urea&page=0", "sales-token", "")
	require.Equal(t, http.StatusOK, status)
	var res struct {
		Data       []model.Product `json:"data"`
		Pagination struct {
			Page       int   `json:"page"`
			Total      int64 `json:"total"`
			TotalPages int   `json:"totalPages"`
			HasNext    bool  `json:"hasNext"`
			HasPrev    bool  `json:"hasPrev"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &res))
	require.Len(t, res.Data, 1)
	assert.Equal(t, "urea", res.Data[0].Name)
	assert.Equal(t, 3, res.Pagination.TotalPages)
	assert.True(t, res.Pagination.HasNext)
	assert.False(t, res.Pagination.HasPrev)
}

func TestAcceptPassesActorAndBody(t *testing.T) {
	orders := &stubOrders{}
	app := newTestApp(&stubProducts{}, orders)
	id := uuid.New()
	itemID := uuid.New()
	lotID := uuid.New()

	body := `{"items":[{"orderItemId":"` + itemID.String() + `","allocations":[{"stockEntryId":"` + lotID.String() + `","quantity":10}]}]}`
	status, env := do(t, app, http.MethodPut, "/orders/"+id.String()+"/accept", "admin-token", body)
	require.Equal(t, http.StatusOK, status, env.Message)
	assert.Equal(t, "Order accepted successfully", env.Message)
	assert.Equal(t, admin.ID, orders.by.ID)
	require.Len(t, orders.accepted.Items, 1)
	assert.Equal(t, itemID, orders.accepted.Items[0].OrderItemID)
	assert.Equal(t, lotID, orders.accepted.Items[0].Allocations[0].StockEntryID)
	assert.Equal(t, 10, orders.accepted.Items[0].Allocations[0].Quantity)

	// sales may create and read orders, not move them through the lifecycle
	status, _ = do(t, app, http.MethodPut, "/orders/"+id.String()+"/accept", "sales-token", body)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestEventStreamRequiresDashboardAccess(t *testing.T) {
	app := newTestApp(&stubProducts{}, &stubOrders{})
	upgrade := func(target string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		req.Header.Set("Connection", "Upgrade")
		req.Header.Set("Upgrade", "websocket")
		req.Header.Set("Sec-WebSocket-Version", "13")
		req.Header.Set("Sec-WebSocket-Key", "dGhlIHNhbXBsZSBub25jZQ==")
		return req
	}

	resp, err := app.Test(upgrade("/ws"), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, err = app.Test(upgrade("/ws?token=stale"), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// sales roles have no dashboard access
	resp, err = app.Test(upgrade("/ws?token=sales-token"), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// an authorised caller gets through to the upgrade check
	status, env := do(t, app, http.MethodGet, "/ws?token=admin-token", "", "")
	assert.Equal(t, http.StatusUpgradeRequired, status)
	require.NotNil(t, env.Error)
}
