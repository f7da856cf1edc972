package listing

import (
	"context"
	"sync"

	"rent-admin/internal/notify"
	"rent-admin/pkg/gateway"
	"rent-admin/pkg/logger"
	"rent-admin/prometheus"

	"go.uber.org/zap"
)

// Page sizes used by the admin screens
const (
	ProductPageSize = 12
	DefaultPageSize = 10
)

// Fetcher performs the gateway list call for one entity
type Fetcher[T any] func(ctx context.Context, page, limit int, filters map[string]string) (gateway.Page[T], error)

// Query selects the page to show
type Query struct {
	Page     int               `json:"page"`
	PageSize int               `json:"pageSize"`
	Filters  map[string]string `json:"filters"`
}

// State is what a list screen renders
type State[T any] struct {
	Items      []T               `json:"items"`
	Page       int               `json:"page"`
	PageSize   int               `json:"pageSize"`
	TotalPages int               `json:"totalPages"`
	Total      int               `json:"total"`
	Filters    map[string]string `json:"filters"`
	Loading    bool              `json:"loading"`
}

// Controller holds the paginated, filtered view of one entity list.
// Only the response of the most recent Load is applied.
type Controller[T any] struct {
	entity   string
	fetch    Fetcher[T]
	notes    *notify.Center
	mu       sync.Mutex
	query    Query
	page     gateway.Page[T]
	seq      uint64
	inflight int
}

// New creates a controller for entity ("products", "users", ...)
func New[T any](entity string, pageSize int, fetch Fetcher[T], notes *notify.Center) *Controller[T] {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return &Controller[T]{
		entity: entity,
		fetch:  fetch,
		notes:  notes,
		query:  Query{Page: 1, PageSize: pageSize, Filters: map[string]string{}},
		page:   gateway.EmptyPage[T](),
	}
}

// Entity returns the entity name of the list
func (c *Controller[T]) Entity() string { return c.entity }

// Load fetches the page selected by q and applies it unless a newer Load
// started meanwhile. On failure the previous items stay visible.
func (c *Controller[T]) Load(ctx context.Context, q Query) (State[T], error) {
	c.mu.Lock()
	q = c.normalize(q)
	c.query = q
	c.seq++
	seq := c.seq
	c.inflight++
	c.mu.Unlock()

	page, err := c.fetch(ctx, q.Page, q.PageSize, q.Filters)

	c.mu.Lock()
	c.inflight--
	if seq != c.seq {
		c.mu.Unlock()
		prometheus.RecordStaleResponse(c.entity)
		logger.FromContext(ctx).Debug("Discarding superseded list response",
			zap.String("entity", c.entity),
			zap.Uint64("seq", seq))
		return c.State(), nil
	}
	if err != nil {
		c.mu.Unlock()
		logger.FromContext(ctx).Error("Failed to load list", zap.String("entity", c.entity), zap.Error(err))
		c.notes.Error("Failed to load " + c.entity)
		return c.State(), err
	}
	c.page = page
	c.mu.Unlock()

	return c.State(), nil
}

// Reload fetches the current query again
func (c *Controller[T]) Reload(ctx context.Context) (State[T], error) {
	return c.Load(ctx, c.Query())
}

// SetPage moves to page p and reloads
func (c *Controller[T]) SetPage(ctx context.Context, p int) (State[T], error) {
	q := c.Query()
	q.Page = p
	return c.Load(ctx, q)
}

// SetPageSize changes the page size and reloads
func (c *Controller[T]) SetPageSize(ctx context.Context, size int) (State[T], error) {
	q := c.Query()
	q.PageSize = size
	return c.Load(ctx, q)
}

// SetFilter sets one filter value and reloads. An empty value removes it.
func (c *Controller[T]) SetFilter(ctx context.Context, key, value string) (State[T], error) {
	q := c.Query()
	q.Filters[key] = value
	return c.Load(ctx, q)
}

// Next moves forward one page, stopping at the last page
func (c *Controller[T]) Next(ctx context.Context) (State[T], error) {
	c.mu.Lock()
	p := min(c.query.Page+1, c.page.TotalPages)
	c.mu.Unlock()
	return c.SetPage(ctx, p)
}

// Prev moves back one page, stopping at the first page
func (c *Controller[T]) Prev(ctx context.Context) (State[T], error) {
	c.mu.Lock()
	p := max(c.query.Page-1, 1)
	c.mu.Unlock()
	return c.SetPage(ctx, p)
}

// Subscribe reloads the current page whenever topic is published
func (c *Controller[T]) Subscribe(bus *notify.Bus, topic notify.Topic) error {
	return bus.Subscribe(topic, func(ctx context.Context) {
		c.Reload(ctx)
	})
}

// Loading reports whether any Load is in flight
func (c *Controller[T]) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inflight > 0
}

// Query returns a copy of the current query
func (c *Controller[T]) Query() Query {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.copyQuery()
}

// State returns a snapshot of the list
func (c *Controller[T]) State() State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	q := c.copyQuery()
	return State[T]{
		Items:      append([]T{}, c.page.Items...),
		Page:       q.Page,
		PageSize:   q.PageSize,
		TotalPages: c.page.TotalPages,
		Total:      c.page.Total,
		Filters:    q.Filters,
		Loading:    c.inflight > 0,
	}
}

func (c *Controller[T]) copyQuery() Query {
	q := c.query
	q.Filters = make(map[string]string, len(c.query.Filters))
	for k, v := range c.query.Filters {
		q.Filters[k] = v
	}
	return q
}

// normalize clamps the page and drops empty filters. Callers hold c.mu.
func (c *Controller[T]) normalize(q Query) Query {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = c.query.PageSize
	}
	filters := make(map[string]string, len(q.Filters))
	for k, v := range q.Filters {
		if v != "" {
			filters[k] = v
		}
	}
	q.Filters = filters
	return q
}
