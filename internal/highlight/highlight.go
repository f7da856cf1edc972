package highlight

import (
	"context"
	"fmt"
	"sync"

	"rent-admin/internal/model"
	"rent-admin/internal/notify"
	"rent-admin/pkg/gateway"
	"rent-admin/pkg/logger"
	"rent-admin/prometheus"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// PoolLimit is the number of products fetched as highlight candidates
const PoolLimit = 100

var ErrOutOfRange = errors.New("highlight: index out of range")

// Reorder moves the element at from to position to and returns a new slice.
// The input is never modified.
func Reorder[T any](list []T, from, to int) ([]T, error) {
	if from < 0 || from >= len(list) || to < 0 || to >= len(list) {
		return nil, fmt.Errorf("%w: move %d to %d in %d items", ErrOutOfRange, from, to, len(list))
	}
	out := make([]T, 0, len(list))
	moved := list[from]
	for i, item := range list {
		if i != from {
			out = append(out, item)
		}
	}
	out = append(out, moved)
	copy(out[to+1:], out[to:len(out)-1])
	out[to] = moved
	return out, nil
}

// Ranks assigns dense 1-based positions in list order
func Ranks(list []model.Product) []model.HighlightRank {
	ranks := make([]model.HighlightRank, len(list))
	for i, p := range list {
		ranks[i] = model.HighlightRank{ID: p.ID, Order: i + 1}
	}
	return ranks
}

// Gateway is the rental API surface of the highlight screen
type Gateway interface {
	ListHighlighted(ctx context.Context) ([]model.Product, error)
	HighlightProduct(ctx context.Context, id string) (*model.Product, error)
	UnhighlightProduct(ctx context.Context, id string) error
	UpdateHighlightOrder(ctx context.Context, ranks []model.HighlightRank) error
	ListProducts(ctx context.Context, page, limit int, filters map[string]string) (gateway.Page[model.Product], error)
}

// State is what the highlight screen renders
type State struct {
	Highlighted []model.Product `json:"highlighted"`
	Available   []model.Product `json:"available"`
	Loading     bool            `json:"loading"`
}

// Reconciler keeps the ordered highlighted list in step with the rental API
type Reconciler struct {
	gw    Gateway
	notes *notify.Center

	mu          sync.Mutex
	highlighted []model.Product
	pool        []model.Product
	inflight    int
	// version changes on every local mutation so a rollback never
	// overwrites a newer move.
	version uint64
	// seq numbers refreshes; a move also advances it so an older fetch
	// cannot bring back the order it replaced.
	seq uint64
}

func NewReconciler(gw Gateway, notes *notify.Center) *Reconciler {
	return &Reconciler{gw: gw, notes: notes, highlighted: []model.Product{}, pool: []model.Product{}}
}

// Refresh refetches the highlighted list and the candidate pool. A response
// superseded by a later refresh or move is discarded.
func (r *Reconciler) Refresh(ctx context.Context) (State, error) {
	r.mu.Lock()
	r.seq++
	seq := r.seq
	r.inflight++
	r.mu.Unlock()

	log := logger.FromContext(ctx)
	highlighted, hErr := r.gw.ListHighlighted(ctx)
	pool, pErr := r.gw.ListProducts(ctx, 1, PoolLimit, nil)

	r.mu.Lock()
	r.inflight--
	if seq != r.seq {
		r.mu.Unlock()
		prometheus.RecordStaleResponse("highlight")
		return r.State(), nil
	}
	if hErr == nil {
		if highlighted == nil {
			highlighted = []model.Product{}
		}
		r.highlighted = highlighted
		r.version++
	}
	if pErr == nil {
		r.pool = pool.Items
	}
	r.mu.Unlock()

	if hErr != nil {
		log.Error("Error fetching highlighted products", zap.Error(hErr))
	}
	if pErr != nil {
		log.Error("Error fetching products", zap.Error(pErr))
		r.notes.Error("Failed to fetch products")
	}
	if hErr != nil {
		return r.State(), hErr
	}
	return r.State(), pErr
}

// Move reorders the highlighted list and persists the new ranks in one call.
// The list changes immediately; if the save fails it is restored.
func (r *Reconciler) Move(ctx context.Context, from, to int) (State, error) {
	r.mu.Lock()
	snapshot := r.highlighted
	next, err := Reorder(snapshot, from, to)
	if err != nil {
		r.mu.Unlock()
		return r.State(), err
	}
	r.highlighted = next
	r.version++
	r.seq++
	version := r.version
	r.mu.Unlock()

	if err := r.gw.UpdateHighlightOrder(ctx, Ranks(next)); err != nil {
		logger.FromContext(ctx).Error("Error updating order", zap.Int("from", from), zap.Int("to", to), zap.Error(err))
		r.mu.Lock()
		if r.version == version {
			r.highlighted = snapshot
			r.version++
			prometheus.HighlightRollbacks.Inc()
		}
		r.mu.Unlock()
		r.notes.Error("Failed to update order")
		return r.State(), err
	}
	return r.State(), nil
}

// Highlight adds a product to the highlighted list, then refetches
func (r *Reconciler) Highlight(ctx context.Context, id string) (State, error) {
	if _, err := r.gw.HighlightProduct(ctx, id); err != nil {
		logger.FromContext(ctx).Error("Error highlighting product", zap.String("product_id", id), zap.Error(err))
		r.notes.Error(gateway.MessageOr(err, "Failed to highlight product"))
		return r.State(), err
	}
	return r.Refresh(ctx)
}

// Unhighlight removes a product from the highlighted list, then refetches
func (r *Reconciler) Unhighlight(ctx context.Context, id string) (State, error) {
	if err := r.gw.UnhighlightProduct(ctx, id); err != nil {
		logger.FromContext(ctx).Error("Error unhighlighting product", zap.String("product_id", id), zap.Error(err))
		r.notes.Error(gateway.MessageOr(err, "Failed to unhighlight product"))
		return r.State(), err
	}
	return r.Refresh(ctx)
}

// State returns a snapshot of the screen
func (r *Reconciler) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return State{
		Highlighted: append([]model.Product{}, r.highlighted...),
		Available:   Available(r.pool),
		Loading:     r.inflight > 0,
	}
}

// Available keeps the products that are not highlighted
func Available(pool []model.Product) []model.Product {
	out := make([]model.Product, 0, len(pool))
	for _, p := range pool {
		if !p.IsHighlighted {
			out = append(out, p)
		}
	}
	return out
}
