package form

import (
	"context"
	"strings"

	"rent-admin/internal/model"
	"rent-admin/internal/notify"
	"rent-admin/pkg/gateway"
	"rent-admin/pkg/logger"

	"github.com/spf13/cast"
	"go.uber.org/zap"
)

// OrderStatusDraft is the editable state of the order status dialog
type OrderStatusDraft struct {
	OrderStatus   model.OrderStatus   `json:"orderStatus"`
	PaymentStatus model.PaymentStatus `json:"paymentStatus"`
	AdminNotes    string              `json:"adminNotes"`
}

func (d OrderStatusDraft) Clone() OrderStatusDraft { return d }

func defaultOrderStatus() OrderStatusDraft {
	return OrderStatusDraft{OrderStatus: model.OrderPending, PaymentStatus: model.PaymentPending}
}

// OrderWriter is the gateway surface of the order actions
type OrderWriter interface {
	UpdateOrderStatus(ctx context.Context, id string, in model.OrderStatusInput) (*model.Order, error)
	CancelOrder(ctx context.Context, id, adminNotes string) (*model.Order, error)
}

// OrderStatusForm updates the status of one order. It only has an edit path.
type OrderStatusForm struct {
	*Controller[OrderStatusDraft]
	orders OrderWriter
	notes  *notify.Center
	bus    *notify.Bus
}

func NewOrderStatusForm(w OrderWriter, notes *notify.Center, bus *notify.Bus) *OrderStatusForm {
	return &OrderStatusForm{
		Controller: NewController(Hooks[OrderStatusDraft]{
			Entity:   "Order status",
			Defaults: defaultOrderStatus,
			Validate: func(d OrderStatusDraft) ([]string, error) {
				if !d.OrderStatus.Valid() {
					return nil, invalid("orderStatus", "Invalid order status %q", d.OrderStatus)
				}
				if !d.PaymentStatus.Valid() {
					return nil, invalid("paymentStatus", "Invalid payment status %q", d.PaymentStatus)
				}
				return nil, nil
			},
			Create: func(ctx context.Context, d OrderStatusDraft) error { return ErrNotOpen },
			Update: func(ctx context.Context, id string, d OrderStatusDraft) error {
				_, err := w.UpdateOrderStatus(ctx, id, model.OrderStatusInput(d))
				return err
			},
			Topic: notify.TopicOrders,
		}, notes, bus),
		orders: w,
		notes:  notes,
		bus:    bus,
	}
}

// EditOrder opens the dialog seeded with the order's statuses
func (f *OrderStatusForm) EditOrder(o *model.Order) State[OrderStatusDraft] {
	return f.OpenEdit(o.ID, OrderStatusDraft{
		OrderStatus:   o.OrderStatus,
		PaymentStatus: o.PaymentStatus,
		AdminNotes:    o.AdminNotes,
	})
}

func (f *OrderStatusForm) Set(field string, value interface{}) (State[OrderStatusDraft], error) {
	return f.Edit(func(d *OrderStatusDraft) error {
		switch field {
		case "orderStatus":
			d.OrderStatus = model.OrderStatus(cast.ToString(value))
		case "paymentStatus":
			d.PaymentStatus = model.PaymentStatus(cast.ToString(value))
		case "adminNotes":
			d.AdminNotes = cast.ToString(value)
		default:
			return invalid(field, "Unknown order status field %q", field)
		}
		return nil
	})
}

// CancelNote is the admin note attached to cancellations from the back-office
const CancelNote = "Order cancelled by admin"

// Cancellable reports whether the order can still be cancelled
func Cancellable(s model.OrderStatus) bool {
	return s != model.OrderCancelled && s != model.OrderDelivered
}

// CancelOrder cancels order id and reloads the order list
func (f *OrderStatusForm) CancelOrder(ctx context.Context, id string) error {
	_, err := f.orders.CancelOrder(ctx, id, CancelNote)
	return finish(ctx, f.notes, f.bus, notify.TopicOrders, err,
		"Order cancelled successfully", "Failed to cancel order", zap.String("order_id", id))
}

// Delete removes one entity through del and reloads its list on success.
// entity is the capitalised display name ("Product").
func Delete(ctx context.Context, entity, id string, del func(context.Context, string) error, notes *notify.Center, bus *notify.Bus, topic notify.Topic) error {
	err := del(ctx, id)
	return finish(ctx, notes, bus, topic, err,
		entity+" deleted successfully", "Failed to delete "+strings.ToLower(entity), zap.String("id", id))
}

// UserWriter is the gateway surface of the user actions
type UserWriter interface {
	ToggleUserStatus(ctx context.Context, id string) (*model.User, error)
	DeleteUser(ctx context.Context, id string) error
}

// ToggleUser flips the active flag of a user and reloads the user list
func ToggleUser(ctx context.Context, w UserWriter, id string, notes *notify.Center, bus *notify.Bus) error {
	_, err := w.ToggleUserStatus(ctx, id)
	return finish(ctx, notes, bus, notify.TopicUsers, err,
		"User status updated successfully", "Failed to update user status", zap.String("user_id", id))
}

// finish turns the outcome of a one-shot action into a notification and,
// on success, a reload signal
func finish(ctx context.Context, notes *notify.Center, bus *notify.Bus, topic notify.Topic, err error, ok, fallback string, fields ...zap.Field) error {
	if err != nil {
		logger.FromContext(ctx).Error(fallback, append(fields, zap.Error(err))...)
		notes.Error(gateway.MessageOr(err, fallback))
		return err
	}
	notes.Success(ok)
	if bus != nil {
		bus.Publish(ctx, topic)
	}
	return nil
}
