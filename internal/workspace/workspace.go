// Package workspace holds the screen controllers of each admin session.
//
// A Workspace is created lazily on the first authenticated request of a
// session and lives until logout, a rejected token, or idle eviction. Every
// controller in it talks to the rental API through a gateway client bound to
// that session's token.
package workspace

import (
	"context"
	"sync"
	"time"

	"rent-admin/internal/calendar"
	"rent-admin/internal/debounce"
	"rent-admin/internal/form"
	"rent-admin/internal/highlight"
	"rent-admin/internal/listing"
	"rent-admin/internal/model"
	"rent-admin/internal/notify"
	"rent-admin/internal/picker"
	"rent-admin/internal/upload"
	"rent-admin/pkg/config"
	"rent-admin/pkg/gateway"
	"rent-admin/pkg/logger"
	"rent-admin/prometheus"

	"go.uber.org/zap"
)

// Workspace is the state of one admin session
type Workspace struct {
	ID      string
	Gateway *gateway.Client
	Notes   *notify.Center
	Bus     *notify.Bus

	Products   *listing.Controller[model.Product]
	Categories *listing.Controller[model.Category]
	Merchants  *listing.Controller[model.Merchant]
	Users      *listing.Controller[model.User]
	Orders     *listing.Controller[model.Order]

	ProductForm  *form.ProductForm
	CategoryForm *form.CategoryForm
	MerchantForm *form.MerchantForm
	BookingForm  *form.BookingForm
	OrderForm    *form.OrderStatusForm

	Picker    *picker.Picker
	Binder    *calendar.Binder
	Calendar  *calendar.Calendar
	Highlight *highlight.Reconciler
	Uploader  *upload.Uploader

	MaxImages int

	mu       sync.Mutex
	lastUsed time.Time
}

// New wires the controllers of one session around gw
func New(id string, gw *gateway.Client, cfg *config.Config, clock debounce.Clock) *Workspace {
	notes := notify.NewCenter(logger.GetLogger().With(zap.String("session_id", id)))
	bus := notify.NewBus()
	binder := calendar.NewBinder(cfg.Location())

	w := &Workspace{
		ID:      id,
		Gateway: gw,
		Notes:   notes,
		Bus:     bus,

		Products:   listing.New[model.Product]("products", listing.ProductPageSize, gw.ListProducts, notes),
		Categories: listing.New[model.Category]("categories", listing.DefaultPageSize, gw.ListCategories, notes),
		Merchants:  listing.New[model.Merchant]("merchants", listing.DefaultPageSize, gw.ListMerchants, notes),
		Users:      listing.New[model.User]("users", listing.DefaultPageSize, gw.ListUsers, notes),
		Orders:     listing.New[model.Order]("orders", listing.DefaultPageSize, gw.ListOrders, notes),

		ProductForm:  form.NewProductForm(gw, notes, bus),
		CategoryForm: form.NewCategoryForm(gw, notes, bus),
		MerchantForm: form.NewMerchantForm(gw, notes, bus),
		BookingForm:  form.NewBookingForm(gw, notes, bus),
		OrderForm:    form.NewOrderStatusForm(gw, notes, bus),

		Picker:    picker.New(gw.ListProducts, cfg.Picker.Limit, cfg.Picker.Debounce, clock),
		Binder:    binder,
		Highlight: highlight.NewReconciler(gw, notes),
		Uploader:  upload.NewUploader(cfg.Upload, notes),
		MaxImages: cfg.Upload.MaxImages,
		lastUsed:  time.Now(),
	}
	w.Calendar = calendar.New(binder, gw, w.BookingForm, bus)

	w.Products.Subscribe(bus, notify.TopicProducts)
	w.Products.Subscribe(bus, notify.TopicHighlighted)
	w.Categories.Subscribe(bus, notify.TopicCategories)
	w.Merchants.Subscribe(bus, notify.TopicMerchants)
	w.Users.Subscribe(bus, notify.TopicUsers)
	w.Orders.Subscribe(bus, notify.TopicOrders)
	bus.Subscribe(notify.TopicProducts, func(ctx context.Context) { w.Highlight.Refresh(ctx) })
	return w
}

// Touch marks the workspace as used now
func (w *Workspace) Touch(now time.Time) {
	w.mu.Lock()
	w.lastUsed = now
	w.mu.Unlock()
}

// LastUsed is the time of the most recent request of the session
func (w *Workspace) LastUsed() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastUsed
}

// Close stops background work of the workspace
func (w *Workspace) Close() {
	w.Picker.Close()
}

// Registry maps session ids to workspaces
type Registry struct {
	cfg   *config.Config
	base  *gateway.Client
	clock debounce.Clock
	now   func() time.Time

	mu    sync.Mutex
	items map[string]*Workspace
}

func NewRegistry(cfg *config.Config, base *gateway.Client) *Registry {
	return &Registry{
		cfg:   cfg,
		base:  base,
		clock: debounce.RealClock,
		now:   time.Now,
		items: make(map[string]*Workspace),
	}
}

// WithClock replaces the debounce clock of workspaces created afterwards
func (r *Registry) WithClock(clock debounce.Clock) *Registry {
	r.clock = clock
	return r
}

// Get returns the workspace of the session, creating it on first use
func (r *Registry) Get(id string, tokens gateway.TokenSource) *Workspace {
	r.mu.Lock()
	defer r.mu.Unlock()

	if w, ok := r.items[id]; ok {
		w.Touch(r.now())
		return w
	}
	w := New(id, r.base.WithTokens(tokens), r.cfg, r.clock)
	r.items[id] = w
	prometheus.SessionsActiveGauge.Set(float64(len(r.items)))
	logger.GetLogger().Info("Workspace opened", zap.String("session_id", id))
	return w
}

// Drop closes and forgets the workspace of the session
func (r *Registry) Drop(id string) {
	r.mu.Lock()
	w, ok := r.items[id]
	delete(r.items, id)
	n := len(r.items)
	r.mu.Unlock()

	if ok {
		w.Close()
		prometheus.SessionsActiveGauge.Set(float64(n))
		logger.GetLogger().Info("Workspace closed", zap.String("session_id", id))
	}
}

// Len is the number of open workspaces
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

// Evict drops workspaces idle for longer than idle and returns their ids
func (r *Registry) Evict(idle time.Duration) []string {
	cutoff := r.now().Add(-idle)
	r.mu.Lock()
	var stale []string
	for id, w := range r.items {
		if w.LastUsed().Before(cutoff) {
			stale = append(stale, id)
		}
	}
	r.mu.Unlock()

	for _, id := range stale {
		r.Drop(id)
	}
	return stale
}

// Run evicts idle workspaces every interval until ctx is done
func (r *Registry) Run(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if ids := r.Evict(idle); len(ids) > 0 {
				logger.GetLogger().Info("Evicted idle workspaces", zap.Int("count", len(ids)))
			}
		}
	}
}

// Close drops every workspace
func (r *Registry) Close() {
	r.mu.Lock()
	ids := make([]string, 0, len(r.items))
	for id := range r.items {
		ids = append(ids, id)
	}
	r.mu.Unlock()
	for _, id := range ids {
		r.Drop(id)
	}
}
