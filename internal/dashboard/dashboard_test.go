package dashboard

import (
	"context"
	"testing"

	"rent-admin/internal/model"
	"rent-admin/internal/notify"

	"github.com/pkg/errors"
)

type fakeStats struct {
	orders, users *model.DashboardStats
	userErr       error
}

func (f *fakeStats) OrderStats(context.Context) (*model.DashboardStats, error) { return f.orders, nil }

func (f *fakeStats) UserStats(context.Context) (*model.DashboardStats, error) {
	return f.users, f.userErr
}

func TestLoadMergesAggregates(t *testing.T) {
	src := &fakeStats{
		orders: &model.DashboardStats{TotalOrders: 9, PendingOrders: 2, CompletedOrders: 6, CancelledOrders: 1, TotalRevenue: 1250.5, TotalUsers: 99},
		users:  &model.DashboardStats{TotalUsers: 40, ActiveUsers: 35, InactiveUsers: 5, AdminUsers: 2, RegularUsers: 38, TotalOrders: 99},
	}
	sum, err := Load(context.Background(), src, notify.NewCenter(nil))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	s := sum.Stats
	if s.TotalUsers != 40 || s.TotalOrders != 9 || s.TotalRevenue != 1250.5 || s.AdminUsers != 2 {
		t.Errorf("stats = %+v", s)
	}
	if len(sum.Breakdown) != 3 || sum.Breakdown[1].Name != "Completed" || sum.Breakdown[1].Value != 6 {
		t.Errorf("breakdown = %+v", sum.Breakdown)
	}
}

func TestLoadFailureNotifies(t *testing.T) {
	notes := notify.NewCenter(nil)
	src := &fakeStats{orders: &model.DashboardStats{}, userErr: errors.New("down")}
	if _, err := Load(context.Background(), src, notes); err == nil {
		t.Fatal("expected error")
	}
	msgs := notes.Drain()
	if len(msgs) != 1 || msgs[0].Kind != notify.KindError {
		t.Errorf("notifications = %+v", msgs)
	}
}
