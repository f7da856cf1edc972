package dashboard

import (
	"context"

	"rent-admin/internal/model"
	"rent-admin/internal/notify"
	"rent-admin/pkg/logger"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// StatsSource is the gateway surface of the dashboard
type StatsSource interface {
	OrderStats(ctx context.Context) (*model.DashboardStats, error)
	UserStats(ctx context.Context) (*model.DashboardStats, error)
}

// Slice is one segment of the order status chart
type Slice struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
	Color string `json:"color"`
}

// Summary is what the dashboard renders
type Summary struct {
	Stats     model.DashboardStats `json:"stats"`
	Breakdown []Slice              `json:"breakdown"`
}

// Merge combines the order aggregate with the user aggregate. Order fields
// come from orders, user fields from users.
func Merge(orders, users model.DashboardStats) model.DashboardStats {
	return model.DashboardStats{
		TotalUsers:      users.TotalUsers,
		ActiveUsers:     users.ActiveUsers,
		InactiveUsers:   users.InactiveUsers,
		AdminUsers:      users.AdminUsers,
		RegularUsers:    users.RegularUsers,
		TotalOrders:     orders.TotalOrders,
		PendingOrders:   orders.PendingOrders,
		CompletedOrders: orders.CompletedOrders,
		CancelledOrders: orders.CancelledOrders,
		TotalRevenue:    orders.TotalRevenue,
	}
}

// Breakdown is the order status chart data
func Breakdown(s model.DashboardStats) []Slice {
	return []Slice{
		{Name: "Pending", Value: s.PendingOrders, Color: "#F59E0B"},
		{Name: "Completed", Value: s.CompletedOrders, Color: "#10B981"},
		{Name: "Cancelled", Value: s.CancelledOrders, Color: "#EF4444"},
	}
}

// Load fetches both aggregates concurrently. A failure of either fails the
// whole load and posts one notification.
func Load(ctx context.Context, src StatsSource, notes *notify.Center) (*Summary, error) {
	var orders, users *model.DashboardStats
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, err := src.OrderStats(gctx)
		if err != nil {
			return errors.Wrap(err, "order stats")
		}
		orders = s
		return nil
	})
	g.Go(func() error {
		s, err := src.UserStats(gctx)
		if err != nil {
			return errors.Wrap(err, "user stats")
		}
		users = s
		return nil
	})
	if err := g.Wait(); err != nil {
		logger.FromContext(ctx).Error("Error fetching stats", zap.Error(err))
		notes.Error("Failed to load dashboard statistics")
		return nil, err
	}

	var o, u model.DashboardStats
	if orders != nil {
		o = *orders
	}
	if users != nil {
		u = *users
	}
	stats := Merge(o, u)
	return &Summary{Stats: stats, Breakdown: Breakdown(stats)}, nil
}
