package handler

import (
	"net/http"

	"rent-admin/internal/form"
	"rent-admin/internal/listing"
	"rent-admin/internal/model"
	"rent-admin/internal/workspace"
	"rent-admin/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func (h *Handler) registerOrders(g *echo.Group) {
	registerList(h, g, "/orders", func(w *workspace.Workspace) *listing.Controller[model.Order] { return w.Orders })
	g.GET("/orders/status", func(c echo.Context) error {
		w, err := current(c)
		if err != nil {
			return h.fail(c, err)
		}
		return c.JSON(http.StatusOK, w.OrderForm.State())
	})
	g.PATCH("/orders/status", patchForm[form.OrderStatusDraft](h,
		func(w *workspace.Workspace) func(string, interface{}) (form.State[form.OrderStatusDraft], error) {
			return w.OrderForm.Set
		},
		func(w *workspace.Workspace) func() form.State[form.OrderStatusDraft] { return w.OrderForm.State }))
	g.DELETE("/orders/status", func(c echo.Context) error {
		w, err := current(c)
		if err != nil {
			return h.fail(c, err)
		}
		w.OrderForm.Reset()
		return c.JSON(http.StatusOK, w.OrderForm.State())
	})
	g.POST("/orders/status/submit", h.SubmitOrderStatus)
	g.POST("/orders/:id/status", h.OpenOrderStatus)
	g.POST("/orders/:id/cancel", h.CancelOrder)
}

// OpenOrderStatus opens the status form of one order
func (h *Handler) OpenOrderStatus(c echo.Context) error {
	w, err := current(c)
	if err != nil {
		return h.fail(c, err)
	}
	order, err := w.Gateway.GetOrder(reqCtx(c), c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, w.OrderForm.EditOrder(order))
}

// SubmitOrderStatus sends the status form
func (h *Handler) SubmitOrderStatus(c echo.Context) error {
	w, err := current(c)
	if err != nil {
		return h.fail(c, err)
	}
	if err := w.OrderForm.Submit(reqCtx(c)); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, w.OrderForm.State())
}

// CancelOrder cancels an order that is neither delivered nor cancelled
func (h *Handler) CancelOrder(c echo.Context) error {
	w, err := current(c)
	if err != nil {
		return h.fail(c, err)
	}
	id := c.Param("id")
	order, err := w.Gateway.GetOrder(reqCtx(c), id)
	if err != nil {
		return h.fail(c, err)
	}
	if !form.Cancellable(order.OrderStatus) {
		logger.FromEcho(c).Info("Order cannot be cancelled",
			zap.String("order_id", id),
			zap.String("status", string(order.OrderStatus)))
		return c.JSON(http.StatusConflict, echo.Map{"error": "Order cannot be cancelled in status " + string(order.OrderStatus)})
	}
	if err := w.OrderForm.CancelOrder(reqCtx(c), id); err != nil {
		return h.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
