package handler

import (
	"context"
	"net/http"

	"rent-admin/internal/form"
	"rent-admin/internal/listing"
	"rent-admin/internal/model"
	"rent-admin/internal/notify"
	"rent-admin/internal/workspace"

	"github.com/labstack/echo/v4"
)

// entityForm is the part of a form controller the catalog routes drive
type entityForm[D any] interface {
	OpenCreate() form.State[D]
	State() form.State[D]
	Set(field string, value interface{}) (form.State[D], error)
	Submit(ctx context.Context) error
	Reset()
}

// catalogRoutes wires the form and delete routes of a simple entity
type catalogRoutes[D any] struct {
	path   string
	entity string
	topic  notify.Topic
	form   func(*workspace.Workspace) entityForm[D]
	edit   func(ctx context.Context, w *workspace.Workspace, id string) (form.State[D], error)
	del    func(*workspace.Workspace) func(context.Context, string) error
}

func (r catalogRoutes[D]) register(h *Handler, g *echo.Group) {
	g.GET(r.path+"/form", func(c echo.Context) error {
		w, err := current(c)
		if err != nil {
			return h.fail(c, err)
		}
		return c.JSON(http.StatusOK, r.form(w).State())
	})

	g.POST(r.path+"/form", func(c echo.Context) error {
		w, err := current(c)
		if err != nil {
			return h.fail(c, err)
		}
		var req openRequest
		if err := c.Bind(&req); err != nil {
			return badRequest(c, "Invalid request data")
		}
		if req.ID == "" {
			return c.JSON(http.StatusOK, r.form(w).OpenCreate())
		}
		st, err := r.edit(reqCtx(c), w, req.ID)
		if err != nil {
			return h.fail(c, err)
		}
		return c.JSON(http.StatusOK, st)
	})

	g.PATCH(r.path+"/form", patchForm[D](h,
		func(w *workspace.Workspace) func(string, interface{}) (form.State[D], error) { return r.form(w).Set },
		func(w *workspace.Workspace) func() form.State[D] { return r.form(w).State }))

	g.DELETE(r.path+"/form", func(c echo.Context) error {
		w, err := current(c)
		if err != nil {
			return h.fail(c, err)
		}
		f := r.form(w)
		f.Reset()
		return c.JSON(http.StatusOK, f.State())
	})

	g.POST(r.path+"/form/submit", func(c echo.Context) error {
		w, err := current(c)
		if err != nil {
			return h.fail(c, err)
		}
		f := r.form(w)
		if err := f.Submit(reqCtx(c)); err != nil {
			return h.fail(c, err)
		}
		return c.JSON(http.StatusOK, f.State())
	})

	g.DELETE(r.path+"/:id", func(c echo.Context) error {
		w, err := current(c)
		if err != nil {
			return h.fail(c, err)
		}
		if err := form.Delete(reqCtx(c), r.entity, c.Param("id"), r.del(w), w.Notes, w.Bus, r.topic); err != nil {
			return h.fail(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	})
}

func (h *Handler) registerCatalog(g *echo.Group) {
	registerList(h, g, "/categories", func(w *workspace.Workspace) *listing.Controller[model.Category] { return w.Categories })
	catalogRoutes[form.CategoryDraft]{
		path:   "/categories",
		entity: "Category",
		topic:  notify.TopicCategories,
		form:   func(w *workspace.Workspace) entityForm[form.CategoryDraft] { return w.CategoryForm },
		edit: func(ctx context.Context, w *workspace.Workspace, id string) (form.State[form.CategoryDraft], error) {
			cat, err := w.Gateway.GetCategory(ctx, id)
			if err != nil {
				return form.State[form.CategoryDraft]{}, err
			}
			return w.CategoryForm.EditCategory(cat), nil
		},
		del: func(w *workspace.Workspace) func(context.Context, string) error { return w.Gateway.DeleteCategory },
	}.register(h, g)

	registerList(h, g, "/merchants", func(w *workspace.Workspace) *listing.Controller[model.Merchant] { return w.Merchants })
	catalogRoutes[form.MerchantDraft]{
		path:   "/merchants",
		entity: "Merchant",
		topic:  notify.TopicMerchants,
		form:   func(w *workspace.Workspace) entityForm[form.MerchantDraft] { return w.MerchantForm },
		edit: func(ctx context.Context, w *workspace.Workspace, id string) (form.State[form.MerchantDraft], error) {
			m, err := w.Gateway.GetMerchant(ctx, id)
			if err != nil {
				return form.State[form.MerchantDraft]{}, err
			}
			return w.MerchantForm.EditMerchant(m), nil
		},
		del: func(w *workspace.Workspace) func(context.Context, string) error { return w.Gateway.DeleteMerchant },
	}.register(h, g)
}
