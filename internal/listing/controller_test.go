package listing

import (
	"context"
	"sync"
	"testing"

	"rent-admin/internal/notify"
	"rent-admin/pkg/gateway"

	"github.com/pkg/errors"
)

type call struct {
	page, limit int
	filters     map[string]string
}

func pageOf(items ...string) gateway.Page[string] {
	return gateway.Page[string]{Items: items, TotalPages: 3, CurrentPage: 1, Total: len(items)}
}

func TestLoadNormalizesQuery(t *testing.T) {
	var calls []call
	fetch := func(ctx context.Context, page, limit int, filters map[string]string) (gateway.Page[string], error) {
		calls = append(calls, call{page, limit, filters})
		return pageOf("a", "b"), nil
	}
	c := New[string]("users", DefaultPageSize, fetch, notify.NewCenter(nil))

	state, err := c.Load(context.Background(), Query{Page: 0, Filters: map[string]string{"search": "", "role": "admin"}})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(calls) != 1 {
		t.Fatalf("calls = %d, want exactly one", len(calls))
	}
	got := calls[0]
	if got.page != 1 || got.limit != DefaultPageSize {
		t.Errorf("page/limit = %d/%d", got.page, got.limit)
	}
	if _, ok := got.filters["search"]; ok || got.filters["role"] != "admin" {
		t.Errorf("filters = %v", got.filters)
	}
	if len(state.Items) != 2 || state.TotalPages != 3 || state.Loading {
		t.Errorf("state = %+v", state)
	}
}

func TestLoadFailureKeepsItems(t *testing.T) {
	fail := false
	fetch := func(ctx context.Context, page, limit int, filters map[string]string) (gateway.Page[string], error) {
		if fail {
			return gateway.Page[string]{}, errors.New("boom")
		}
		return pageOf("a"), nil
	}
	notes := notify.NewCenter(nil)
	c := New[string]("merchants", DefaultPageSize, fetch, notes)

	if _, err := c.Load(context.Background(), Query{Page: 1}); err != nil {
		t.Fatalf("Load: %v", err)
	}
	fail = true
	state, err := c.SetPage(context.Background(), 2)
	if err == nil {
		t.Fatal("expected error")
	}
	if len(state.Items) != 1 || state.Items[0] != "a" {
		t.Errorf("items after failure = %v", state.Items)
	}
	if state.Loading {
		t.Error("loading must clear after failure")
	}
	msgs := notes.Drain()
	if len(msgs) != 1 || msgs[0].Message != "Failed to load merchants" {
		t.Errorf("notifications = %+v", msgs)
	}
}

func TestFirstLoadFailureIsEmpty(t *testing.T) {
	fetch := func(ctx context.Context, page, limit int, filters map[string]string) (gateway.Page[string], error) {
		return gateway.Page[string]{}, errors.New("down")
	}
	c := New[string]("orders", DefaultPageSize, fetch, notify.NewCenter(nil))
	state, _ := c.Reload(context.Background())
	if state.Items == nil || len(state.Items) != 0 || state.TotalPages != 1 {
		t.Errorf("state = %+v", state)
	}
}

func TestLatestRequestWins(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	fetch := func(ctx context.Context, page, limit int, filters map[string]string) (gateway.Page[string], error) {
		if filters["search"] == "slow" {
			close(started)
			<-release
			return pageOf("stale"), nil
		}
		return pageOf("fresh"), nil
	}
	c := New[string]("products", ProductPageSize, fetch, notify.NewCenter(nil))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.SetFilter(context.Background(), "search", "slow")
	}()
	<-started
	if !c.Loading() {
		t.Error("Loading must be true while a request is in flight")
	}

	if _, err := c.SetFilter(context.Background(), "search", "fast"); err != nil {
		t.Fatalf("SetFilter: %v", err)
	}
	close(release)
	wg.Wait()

	state := c.State()
	if len(state.Items) != 1 || state.Items[0] != "fresh" {
		t.Errorf("items = %v, want the later response", state.Items)
	}
	if state.Filters["search"] != "fast" || state.Loading {
		t.Errorf("state = %+v", state)
	}
}

func TestNextPrevClamp(t *testing.T) {
	fetch := func(ctx context.Context, page, limit int, filters map[string]string) (gateway.Page[string], error) {
		return gateway.Page[string]{Items: []string{}, TotalPages: 2}, nil
	}
	c := New[string]("categories", DefaultPageSize, fetch, notify.NewCenter(nil))
	ctx := context.Background()

	c.Reload(ctx)
	c.Next(ctx)
	state, _ := c.Next(ctx)
	if state.Page != 2 {
		t.Errorf("page after Next x2 = %d, want 2", state.Page)
	}
	c.Prev(ctx)
	state, _ = c.Prev(ctx)
	if state.Page != 1 {
		t.Errorf("page after Prev x2 = %d, want 1", state.Page)
	}
}

func TestReloadOnTopic(t *testing.T) {
	loads := 0
	fetch := func(ctx context.Context, page, limit int, filters map[string]string) (gateway.Page[string], error) {
		loads++
		return pageOf(), nil
	}
	bus := notify.NewBus()
	c := New[string]("categories", DefaultPageSize, fetch, notify.NewCenter(nil))
	if err := c.Subscribe(bus, notify.TopicCategories); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	bus.Publish(context.Background(), notify.TopicCategories)
	if loads != 1 {
		t.Errorf("loads = %d, want 1", loads)
	}
}
