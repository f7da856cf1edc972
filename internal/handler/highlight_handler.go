package handler

import (
	"net/http"

	"rent-admin/internal/notify"

	"github.com/labstack/echo/v4"
)

type moveRequest struct {
	From *int `json:"from"`
	To   *int `json:"to"`
}

func (h *Handler) registerHighlighted(g *echo.Group) {
	g.GET("/highlighted", h.Highlighted)
	g.POST("/highlighted/move", h.MoveHighlighted)
	g.POST("/highlighted/:id", h.HighlightProduct)
	g.DELETE("/highlighted/:id", h.UnhighlightProduct)
}

// Highlighted returns the ordered highlighted products and the candidates
func (h *Handler) Highlighted(c echo.Context) error {
	w, err := current(c)
	if err != nil {
		return h.fail(c, err)
	}
	st, err := w.Highlight.Refresh(reqCtx(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, st)
}

// MoveHighlighted drags one highlighted product to a new position
func (h *Handler) MoveHighlighted(c echo.Context) error {
	w, err := current(c)
	if err != nil {
		return h.fail(c, err)
	}
	var req moveRequest
	if err := c.Bind(&req); err != nil || req.From == nil || req.To == nil {
		return badRequest(c, "from and to are required")
	}
	st, err := w.Highlight.Move(reqCtx(c), *req.From, *req.To)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, st)
}

// HighlightProduct appends a product to the highlighted list
func (h *Handler) HighlightProduct(c echo.Context) error {
	w, err := current(c)
	if err != nil {
		return h.fail(c, err)
	}
	st, err := w.Highlight.Highlight(reqCtx(c), c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	w.Bus.Publish(reqCtx(c), notify.TopicHighlighted)
	return c.JSON(http.StatusOK, st)
}

// UnhighlightProduct removes a product from the highlighted list
func (h *Handler) UnhighlightProduct(c echo.Context) error {
	w, err := current(c)
	if err != nil {
		return h.fail(c, err)
	}
	st, err := w.Highlight.Unhighlight(reqCtx(c), c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	w.Bus.Publish(reqCtx(c), notify.TopicHighlighted)
	return c.JSON(http.StatusOK, st)
}
