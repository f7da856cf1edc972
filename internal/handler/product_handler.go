package handler

import (
	"net/http"

	"rent-admin/internal/form"
	"rent-admin/internal/listing"
	"rent-admin/internal/model"
	"rent-admin/internal/notify"
	"rent-admin/internal/workspace"
	"rent-admin/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

type valueRequest struct {
	Value interface{} `json:"value"`
}

type sizeRequest struct {
	Field string      `json:"field"`
	Value interface{} `json:"value"`
}

func (h *Handler) registerProducts(g *echo.Group) {
	registerList(h, g, "/products", func(w *workspace.Workspace) *listing.Controller[model.Product] { return w.Products })

	g.GET("/products/form", h.productForm(func(f *form.ProductForm, _ echo.Context) (form.State[form.ProductDraft], error) {
		return f.State(), nil
	}))
	g.POST("/products/form", h.OpenProductForm)
	g.DELETE("/products/form", h.productForm(func(f *form.ProductForm, _ echo.Context) (form.State[form.ProductDraft], error) {
		f.Reset()
		return f.State(), nil
	}))
	g.PATCH("/products/form", patchForm[form.ProductDraft](h,
		func(w *workspace.Workspace) func(string, interface{}) (form.State[form.ProductDraft], error) {
			return w.ProductForm.Set
		},
		func(w *workspace.Workspace) func() form.State[form.ProductDraft] { return w.ProductForm.State }))

	g.POST("/products/form/tags", h.productForm(func(f *form.ProductForm, _ echo.Context) (form.State[form.ProductDraft], error) {
		return f.AddTag()
	}))
	g.PUT("/products/form/tags/:index", h.productRow(func(f *form.ProductForm, i int, c echo.Context) (form.State[form.ProductDraft], error) {
		var req valueRequest
		if err := c.Bind(&req); err != nil {
			return f.State(), errBadBody
		}
		return f.UpdateTag(i, cast.ToString(req.Value))
	}))
	g.DELETE("/products/form/tags/:index", h.productRow(func(f *form.ProductForm, i int, _ echo.Context) (form.State[form.ProductDraft], error) {
		return f.RemoveTag(i)
	}))

	g.POST("/products/form/images", h.productForm(func(f *form.ProductForm, c echo.Context) (form.State[form.ProductDraft], error) {
		var req valueRequest
		if err := c.Bind(&req); err != nil {
			return f.State(), errBadBody
		}
		return f.AddImage(cast.ToString(req.Value))
	}))
	g.PUT("/products/form/images/:index", h.productRow(func(f *form.ProductForm, i int, c echo.Context) (form.State[form.ProductDraft], error) {
		var req valueRequest
		if err := c.Bind(&req); err != nil {
			return f.State(), errBadBody
		}
		return f.UpdateImage(i, cast.ToString(req.Value))
	}))
	g.DELETE("/products/form/images/:index", h.productRow(func(f *form.ProductForm, i int, _ echo.Context) (form.State[form.ProductDraft], error) {
		return f.RemoveImage(i)
	}))

	g.POST("/products/form/sizes", h.productForm(func(f *form.ProductForm, _ echo.Context) (form.State[form.ProductDraft], error) {
		return f.AddSize()
	}))
	g.PUT("/products/form/sizes/:index", h.productRow(func(f *form.ProductForm, i int, c echo.Context) (form.State[form.ProductDraft], error) {
		var req sizeRequest
		if err := c.Bind(&req); err != nil {
			return f.State(), errBadBody
		}
		return f.UpdateSize(i, req.Field, req.Value)
	}))
	g.DELETE("/products/form/sizes/:index", h.productRow(func(f *form.ProductForm, i int, _ echo.Context) (form.State[form.ProductDraft], error) {
		return f.RemoveSize(i)
	}))

	g.POST("/products/form/categories/:id", h.productForm(func(f *form.ProductForm, c echo.Context) (form.State[form.ProductDraft], error) {
		return f.ToggleCategory(c.Param("id"))
	}))
	g.POST("/products/form/submit", h.SubmitProductForm)
	g.DELETE("/products/:id", h.DeleteProduct)
}

// productForm adapts a product form action to a handler
func (h *Handler) productForm(action func(*form.ProductForm, echo.Context) (form.State[form.ProductDraft], error)) echo.HandlerFunc {
	return func(c echo.Context) error {
		w, err := current(c)
		if err != nil {
			return h.fail(c, err)
		}
		st, err := action(w.ProductForm, c)
		if err != nil {
			return h.fail(c, err)
		}
		return c.JSON(http.StatusOK, st)
	}
}

// productRow adapts an indexed row action to a handler
func (h *Handler) productRow(action func(*form.ProductForm, int, echo.Context) (form.State[form.ProductDraft], error)) echo.HandlerFunc {
	return h.productForm(func(f *form.ProductForm, c echo.Context) (form.State[form.ProductDraft], error) {
		i, err := indexParam(c)
		if err != nil {
			return f.State(), form.ErrOutOfRange
		}
		return action(f, i, c)
	})
}

// OpenProductForm opens the product form for create, or for edit of the
// product named in the body
func (h *Handler) OpenProductForm(c echo.Context) error {
	w, err := current(c)
	if err != nil {
		return h.fail(c, err)
	}
	var req openRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request data")
	}
	if req.ID == "" {
		return c.JSON(http.StatusOK, w.ProductForm.OpenCreate())
	}
	p, err := w.Gateway.GetProduct(reqCtx(c), req.ID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, w.ProductForm.EditProduct(p))
}

// SubmitProductForm creates or updates the product in the form
func (h *Handler) SubmitProductForm(c echo.Context) error {
	w, err := current(c)
	if err != nil {
		return h.fail(c, err)
	}
	if err := w.ProductForm.Submit(reqCtx(c)); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, w.ProductForm.State())
}

// DeleteProduct removes a product and reloads the product list
func (h *Handler) DeleteProduct(c echo.Context) error {
	w, err := current(c)
	if err != nil {
		return h.fail(c, err)
	}
	id := c.Param("id")
	logger.FromEcho(c).Info("Deleting product", zap.String("product_id", id))
	if err := form.Delete(reqCtx(c), "Product", id, w.Gateway.DeleteProduct, w.Notes, w.Bus, notify.TopicProducts); err != nil {
		return h.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
