package notify

import (
	"context"

	EventBus "github.com/asaskevich/EventBus"
)

// Topic names a reload signal. Forms publish after a successful submit and the
// matching list refetches its current page.
type Topic string

const (
	TopicProducts    Topic = "reload:products"
	TopicCategories  Topic = "reload:categories"
	TopicMerchants   Topic = "reload:merchants"
	TopicUsers       Topic = "reload:users"
	TopicOrders      Topic = "reload:orders"
	TopicBookings    Topic = "reload:bookings"
	TopicHighlighted Topic = "reload:highlighted"
)

// Bus carries reload signals inside one workspace. Handlers run synchronously
// on the publishing goroutine.
type Bus struct {
	bus EventBus.Bus
}

func NewBus() *Bus {
	return &Bus{bus: EventBus.New()}
}

// Subscribe registers fn for topic
func (b *Bus) Subscribe(topic Topic, fn func(ctx context.Context)) error {
	return b.bus.Subscribe(string(topic), fn)
}

// Publish runs every handler of topic with ctx
func (b *Bus) Publish(ctx context.Context, topic Topic) {
	if !b.bus.HasCallback(string(topic)) {
		return
	}
	b.bus.Publish(string(topic), ctx)
}
