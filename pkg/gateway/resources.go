package gateway

import (
	"context"
	"net/http"
	"net/url"

	"rent-admin/internal/model"
	"rent-admin/pkg/logger"
	"rent-admin/prometheus"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// list performs a paginated GET and normalises the answer
func list[T any](ctx context.Context, c *Client, op, path, key string, query url.Values) (Page[T], error) {
	body, err := c.do(ctx, op, http.MethodGet, path, query, nil)
	if err != nil {
		return EmptyPage[T](), err
	}
	page, err := DecodePage[T](body, key)
	if page.Malformed > 0 {
		prometheus.RecordMalformedRecords(op, page.Malformed)
		logger.FromContext(ctx).Warn("Dropped undecodable list records",
			zap.String("operation", op),
			zap.Int("dropped", page.Malformed),
			zap.Int("kept", len(page.Items)))
	}
	return page, errors.Wrapf(err, "%s", op)
}

// Auth

// Login exchanges admin credentials for a bearer token
func (c *Client) Login(ctx context.Context, creds model.Credentials) (*model.AuthResponse, error) {
	body, err := c.do(ctx, "auth.login", http.MethodPost, "/auth/login", nil, creds)
	if err != nil {
		return nil, err
	}
	var out model.AuthResponse
	if err := decodeData(body, &out); err != nil {
		return nil, errors.Wrap(err, "auth.login")
	}
	return &out, nil
}

// CurrentUser returns the account the token belongs to
func (c *Client) CurrentUser(ctx context.Context) (*model.User, error) {
	return getOne[model.User](ctx, c, "auth.me", http.MethodGet, "/auth/me", "user", nil)
}

// Health reports the rental API health payload
func (c *Client) Health(ctx context.Context) (map[string]string, error) {
	body, err := c.do(ctx, "health", http.MethodGet, "/health", nil, nil)
	if err != nil {
		return nil, err
	}
	out := map[string]string{}
	return out, errors.Wrap(json.Unmarshal(body, &out), "health")
}

// Categories

func (c *Client) ListCategories(ctx context.Context, page, limit int, filters map[string]string) (Page[model.Category], error) {
	return list[model.Category](ctx, c, "categories.list", "/categories", "categories", listQuery(page, limit, filters))
}

func (c *Client) GetCategory(ctx context.Context, id string) (*model.Category, error) {
	return getOne[model.Category](ctx, c, "categories.get", http.MethodGet, "/categories/"+url.PathEscape(id), "category", nil)
}

func (c *Client) CreateCategory(ctx context.Context, in model.CategoryInput) (*model.Category, error) {
	return getOne[model.Category](ctx, c, "categories.create", http.MethodPost, "/categories", "category", in)
}

func (c *Client) UpdateCategory(ctx context.Context, id string, in model.CategoryInput) (*model.Category, error) {
	return getOne[model.Category](ctx, c, "categories.update", http.MethodPut, "/categories/"+url.PathEscape(id), "category", in)
}

func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	_, err := c.do(ctx, "categories.delete", http.MethodDelete, "/categories/"+url.PathEscape(id), nil, nil)
	return err
}

// Merchants

func (c *Client) ListMerchants(ctx context.Context, page, limit int, filters map[string]string) (Page[model.Merchant], error) {
	return list[model.Merchant](ctx, c, "merchants.list", "/merchants", "merchants", listQuery(page, limit, filters))
}

func (c *Client) GetMerchant(ctx context.Context, id string) (*model.Merchant, error) {
	return getOne[model.Merchant](ctx, c, "merchants.get", http.MethodGet, "/merchants/"+url.PathEscape(id), "merchant", nil)
}

func (c *Client) CreateMerchant(ctx context.Context, in model.MerchantInput) (*model.Merchant, error) {
	return getOne[model.Merchant](ctx, c, "merchants.create", http.MethodPost, "/merchants", "merchant", in)
}

func (c *Client) UpdateMerchant(ctx context.Context, id string, in model.MerchantInput) (*model.Merchant, error) {
	return getOne[model.Merchant](ctx, c, "merchants.update", http.MethodPut, "/merchants/"+url.PathEscape(id), "merchant", in)
}

func (c *Client) DeleteMerchant(ctx context.Context, id string) error {
	_, err := c.do(ctx, "merchants.delete", http.MethodDelete, "/merchants/"+url.PathEscape(id), nil, nil)
	return err
}

// Products

func (c *Client) ListProducts(ctx context.Context, page, limit int, filters map[string]string) (Page[model.Product], error) {
	return list[model.Product](ctx, c, "products.list", "/products", "products", listQuery(page, limit, filters))
}

func (c *Client) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	return getOne[model.Product](ctx, c, "products.get", http.MethodGet, "/products/"+url.PathEscape(id), "product", nil)
}

func (c *Client) CreateProduct(ctx context.Context, in model.ProductInput) (*model.Product, error) {
	return getOne[model.Product](ctx, c, "products.create", http.MethodPost, "/products", "product", in)
}

func (c *Client) UpdateProduct(ctx context.Context, id string, in model.ProductInput) (*model.Product, error) {
	return getOne[model.Product](ctx, c, "products.update", http.MethodPut, "/products/"+url.PathEscape(id), "product", in)
}

func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	_, err := c.do(ctx, "products.delete", http.MethodDelete, "/products/"+url.PathEscape(id), nil, nil)
	return err
}

// Highlighted products

// ListHighlighted returns the highlighted set in its persisted order
func (c *Client) ListHighlighted(ctx context.Context) ([]model.Product, error) {
	page, err := list[model.Product](ctx, c, "highlight.list", "/products/highlighted", "products", nil)
	return page.Items, err
}

func (c *Client) HighlightProduct(ctx context.Context, id string) (*model.Product, error) {
	return getOne[model.Product](ctx, c, "highlight.add", http.MethodPost, "/products/highlight/"+url.PathEscape(id), "product", nil)
}

func (c *Client) UnhighlightProduct(ctx context.Context, id string) error {
	_, err := c.do(ctx, "highlight.remove", http.MethodDelete, "/products/highlight/"+url.PathEscape(id), nil, nil)
	return err
}

// UpdateHighlightOrder persists the full rank list in one call
func (c *Client) UpdateHighlightOrder(ctx context.Context, ranks []model.HighlightRank) error {
	payload := struct {
		Products []model.HighlightRank `json:"products"`
	}{Products: ranks}
	_, err := c.do(ctx, "highlight.order", http.MethodPut, "/products/highlight/order", nil, payload)
	return err
}

// Orders

func (c *Client) ListOrders(ctx context.Context, page, limit int, filters map[string]string) (Page[model.Order], error) {
	return list[model.Order](ctx, c, "orders.list", "/orders", "orders", listQuery(page, limit, filters))
}

func (c *Client) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	return getOne[model.Order](ctx, c, "orders.get", http.MethodGet, "/orders/"+url.PathEscape(id), "order", nil)
}

func (c *Client) UpdateOrderStatus(ctx context.Context, id string, in model.OrderStatusInput) (*model.Order, error) {
	return getOne[model.Order](ctx, c, "orders.status", http.MethodPut, "/orders/"+url.PathEscape(id)+"/status", "order", in)
}

func (c *Client) CancelOrder(ctx context.Context, id, adminNotes string) (*model.Order, error) {
	payload := struct {
		AdminNotes string `json:"adminNotes,omitempty"`
	}{AdminNotes: adminNotes}
	return getOne[model.Order](ctx, c, "orders.cancel", http.MethodPut, "/orders/"+url.PathEscape(id)+"/cancel", "order", payload)
}

func (c *Client) OrderStats(ctx context.Context) (*model.DashboardStats, error) {
	return getOne[model.DashboardStats](ctx, c, "orders.stats", http.MethodGet, "/orders/stats/summary", "summary", nil)
}

// Users

func (c *Client) ListUsers(ctx context.Context, page, limit int, filters map[string]string) (Page[model.User], error) {
	return list[model.User](ctx, c, "users.list", "/users", "users", listQuery(page, limit, filters))
}

func (c *Client) GetUser(ctx context.Context, id string) (*model.User, error) {
	return getOne[model.User](ctx, c, "users.get", http.MethodGet, "/users/"+url.PathEscape(id), "user", nil)
}

func (c *Client) DeleteUser(ctx context.Context, id string) error {
	_, err := c.do(ctx, "users.delete", http.MethodDelete, "/users/"+url.PathEscape(id), nil, nil)
	return err
}

func (c *Client) ToggleUserStatus(ctx context.Context, id string) (*model.User, error) {
	return getOne[model.User](ctx, c, "users.toggle", http.MethodPut, "/users/"+url.PathEscape(id)+"/toggle-status", "user", nil)
}

func (c *Client) UserStats(ctx context.Context) (*model.DashboardStats, error) {
	return getOne[model.DashboardStats](ctx, c, "users.stats", http.MethodGet, "/users/stats/summary", "summary", nil)
}

// Bookings

// ListBookings returns every booking; the endpoint is not paginated
func (c *Client) ListBookings(ctx context.Context) ([]model.Booking, error) {
	page, err := list[model.Booking](ctx, c, "bookings.list", "/bookings", "bookings", nil)
	return page.Items, err
}

func (c *Client) GetBooking(ctx context.Context, id string) (*model.Booking, error) {
	return getOne[model.Booking](ctx, c, "bookings.get", http.MethodGet, "/bookings/"+url.PathEscape(id), "booking", nil)
}

func (c *Client) CreateBooking(ctx context.Context, in model.BookingInput) (*model.Booking, error) {
	return getOne[model.Booking](ctx, c, "bookings.create", http.MethodPost, "/bookings", "booking", in)
}

func (c *Client) UpdateBooking(ctx context.Context, id string, in model.BookingInput) (*model.Booking, error) {
	return getOne[model.Booking](ctx, c, "bookings.update", http.MethodPut, "/bookings/"+url.PathEscape(id), "booking", in)
}

func (c *Client) DeleteBooking(ctx context.Context, id string) error {
	_, err := c.do(ctx, "bookings.delete", http.MethodDelete, "/bookings/"+url.PathEscape(id), nil, nil)
	return err
}
