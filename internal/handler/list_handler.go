package handler

import (
	"net/http"

	"rent-admin/internal/listing"
	"rent-admin/internal/workspace"

	"github.com/labstack/echo/v4"
)

// listHandler serves one paginated list. Without query parameters the
// current page is reloaded. page and limit change only what they name; any
// other parameter replaces the active filters, so paging alone keeps them.
func listHandler[T any](h *Handler, pick func(*workspace.Workspace) *listing.Controller[T]) echo.HandlerFunc {
	return func(c echo.Context) error {
		w, err := current(c)
		if err != nil {
			return h.fail(c, err)
		}
		list := pick(w)

		params := c.QueryParams()
		if len(params) == 0 {
			st, err := list.Reload(reqCtx(c))
			if err != nil {
				return h.fail(c, err)
			}
			return c.JSON(http.StatusOK, st)
		}

		q := list.Query()
		if err := echo.QueryParamsBinder(c).
			Int("page", &q.Page).
			Int("limit", &q.PageSize).
			BindError(); err != nil {
			return badRequest(c, "page and limit must be numbers")
		}
		filters := map[string]string{}
		for key := range params {
			if key != "page" && key != "limit" {
				filters[key] = params.Get(key)
			}
		}
		if len(filters) > 0 {
			q.Filters = filters
		}

		st, err := list.Load(reqCtx(c), q)
		if err != nil {
			return h.fail(c, err)
		}
		return c.JSON(http.StatusOK, st)
	}
}

// pageStep serves the next/previous page buttons of a list
func pageStep[T any](h *Handler, pick func(*workspace.Workspace) *listing.Controller[T], forward bool) echo.HandlerFunc {
	return func(c echo.Context) error {
		w, err := current(c)
		if err != nil {
			return h.fail(c, err)
		}
		list := pick(w)
		var st listing.State[T]
		if forward {
			st, err = list.Next(reqCtx(c))
		} else {
			st, err = list.Prev(reqCtx(c))
		}
		if err != nil {
			return h.fail(c, err)
		}
		return c.JSON(http.StatusOK, st)
	}
}

func registerList[T any](h *Handler, g *echo.Group, path string, pick func(*workspace.Workspace) *listing.Controller[T]) {
	g.GET(path, listHandler(h, pick))
	g.POST(path+"/next", pageStep(h, pick, true))
	g.POST(path+"/prev", pageStep(h, pick, false))
}
