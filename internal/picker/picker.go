// Package picker implements the debounced product search of the booking form.
package picker

import (
	"context"
	"strings"
	"sync"
	"time"

	"rent-admin/internal/debounce"
	"rent-admin/internal/model"
	"rent-admin/pkg/gateway"
	"rent-admin/pkg/logger"
	"rent-admin/prometheus"

	"go.uber.org/zap"
)

// DefaultLimit is the number of products fetched per search
const DefaultLimit = 100

// Searcher is the gateway product list call
type Searcher func(ctx context.Context, page, limit int, filters map[string]string) (gateway.Page[model.Product], error)

// State is what the picker renders
type State struct {
	Search  string          `json:"search"`
	Items   []model.Product `json:"items"`
	Loading bool            `json:"loading"`
}

// Picker keeps the product candidates for the booking form
type Picker struct {
	search   Searcher
	limit    int
	debounce *debounce.Debouncer[string]

	mu       sync.Mutex
	text     string
	ctx      context.Context
	products []model.Product
	seq      uint64
	inflight int
}

func New(search Searcher, limit int, window time.Duration, clock debounce.Clock) *Picker {
	if limit < 1 {
		limit = DefaultLimit
	}
	p := &Picker{search: search, limit: limit, products: []model.Product{}, ctx: context.Background()}
	p.debounce = debounce.New(window, clock, func(text string) {
		p.mu.Lock()
		ctx := p.ctx
		p.mu.Unlock()
		p.fetch(ctx, text)
	})
	return p
}

// Load fetches the unfiltered candidate list
func (p *Picker) Load(ctx context.Context) State {
	p.fetch(ctx, "")
	return p.State()
}

// Type records the search text and schedules a fetch once typing pauses.
// The local filter applies immediately.
func (p *Picker) Type(ctx context.Context, text string) State {
	p.mu.Lock()
	p.text = text
	p.ctx = context.WithoutCancel(ctx)
	p.mu.Unlock()
	p.debounce.Trigger(text)
	return p.State()
}

func (p *Picker) fetch(ctx context.Context, text string) {
	p.mu.Lock()
	p.seq++
	seq := p.seq
	p.inflight++
	p.mu.Unlock()

	filters := map[string]string{}
	if text != "" {
		filters["search"] = text
	}
	page, err := p.search(ctx, 1, p.limit, filters)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.inflight--
	if seq != p.seq {
		prometheus.RecordStaleResponse("picker")
		return
	}
	if err != nil {
		logger.FromContext(ctx).Error("Error fetching products", zap.String("search", text), zap.Error(err))
		p.products = []model.Product{}
		return
	}
	p.products = page.Items
}

// State returns the candidates matching the current text
func (p *Picker) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return State{
		Search:  p.text,
		Items:   Filter(p.products, p.text),
		Loading: p.inflight > 0,
	}
}

// Find looks up a fetched product by id, ignoring the text filter
func (p *Picker) Find(id string) (model.Product, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, prod := range p.products {
		if prod.ID == id {
			return prod, true
		}
	}
	return model.Product{}, false
}

// Close cancels a pending search
func (p *Picker) Close() {
	p.debounce.Stop()
}

// Filter keeps products whose name, description or brand contains text,
// ignoring case
func Filter(products []model.Product, text string) []model.Product {
	needle := strings.ToLower(text)
	out := make([]model.Product, 0, len(products))
	for _, prod := range products {
		if strings.Contains(strings.ToLower(prod.Name), needle) ||
			strings.Contains(strings.ToLower(prod.Description), needle) ||
			strings.Contains(strings.ToLower(prod.Brand), needle) {
			out = append(out, prod)
		}
	}
	return out
}
