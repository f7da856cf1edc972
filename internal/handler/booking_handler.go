package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"rent-admin/internal/export"
	"rent-admin/internal/form"
	"rent-admin/internal/notify"
	"rent-admin/internal/workspace"
	"rent-admin/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type searchRequest struct {
	Search string `json:"search"`
}

func (h *Handler) registerBookings(g *echo.Group) {
	g.GET("/bookings/calendar", h.BookingCalendar)
	g.POST("/bookings/calendar/:id/select", h.SelectBooking)
	g.POST("/bookings/calendar/:id/edit", h.EditBooking)
	g.DELETE("/bookings/calendar/selection", h.CloseBooking)

	g.GET("/bookings/form", func(c echo.Context) error {
		w, err := current(c)
		if err != nil {
			return h.fail(c, err)
		}
		return c.JSON(http.StatusOK, w.BookingForm.State())
	})
	g.POST("/bookings/form", h.OpenBookingForm)
	g.PATCH("/bookings/form", patchForm[form.BookingDraft](h,
		func(w *workspace.Workspace) func(string, interface{}) (form.State[form.BookingDraft], error) {
			return w.BookingForm.Set
		},
		func(w *workspace.Workspace) func() form.State[form.BookingDraft] { return w.BookingForm.State }))
	g.POST("/bookings/form/dress/:id", h.SelectDress)
	g.POST("/bookings/form/submit", h.SubmitBookingForm)

	g.GET("/bookings/picker", h.PickerState)
	g.POST("/bookings/picker", h.PickerSearch)

	g.GET("/bookings/export", h.ExportBookings)
	g.DELETE("/bookings/:id", h.DeleteBooking)
}

// BookingCalendar refetches the bookings and returns the calendar
func (h *Handler) BookingCalendar(c echo.Context) error {
	w, err := current(c)
	if err != nil {
		return h.fail(c, err)
	}
	st, err := w.Calendar.Refresh(reqCtx(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, st)
}

// SelectBooking opens the read-only detail of a booking
func (h *Handler) SelectBooking(c echo.Context) error {
	w, err := current(c)
	if err != nil {
		return h.fail(c, err)
	}
	st, err := w.Calendar.Select(c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, st)
}

// EditBooking selects a booking and switches it to the edit form
func (h *Handler) EditBooking(c echo.Context) error {
	w, err := current(c)
	if err != nil {
		return h.fail(c, err)
	}
	if _, err := w.Calendar.Select(c.Param("id")); err != nil {
		return h.fail(c, err)
	}
	w.Picker.Load(reqCtx(c))
	st, err := w.Calendar.BeginEdit()
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, st)
}

// CloseBooking drops the selected booking and any edit in progress
func (h *Handler) CloseBooking(c echo.Context) error {
	w, err := current(c)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, w.Calendar.Close())
}

// OpenBookingForm starts a new booking and loads the dress candidates
func (h *Handler) OpenBookingForm(c echo.Context) error {
	w, err := current(c)
	if err != nil {
		return h.fail(c, err)
	}
	w.Calendar.Close()
	st := w.BookingForm.OpenCreate()
	w.Picker.Load(reqCtx(c))
	return c.JSON(http.StatusOK, st)
}

// SelectDress puts a product from the picker into the booking form
func (h *Handler) SelectDress(c echo.Context) error {
	w, err := current(c)
	if err != nil {
		return h.fail(c, err)
	}
	id := c.Param("id")
	p, ok := w.Picker.Find(id)
	if !ok {
		found, err := w.Gateway.GetProduct(reqCtx(c), id)
		if err != nil {
			return h.fail(c, err)
		}
		p = *found
	}
	st, err := w.BookingForm.SelectDress(p)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, st)
}

// SubmitBookingForm saves the calendar edit when one is open, otherwise it
// creates a new booking
func (h *Handler) SubmitBookingForm(c echo.Context) error {
	w, err := current(c)
	if err != nil {
		return h.fail(c, err)
	}
	if w.Calendar.State().Editing {
		st, err := w.Calendar.SaveEdit(reqCtx(c))
		if err != nil {
			return h.fail(c, err)
		}
		return c.JSON(http.StatusOK, st)
	}
	if err := w.BookingForm.Submit(reqCtx(c)); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, w.Calendar.State())
}

// PickerState returns the dress candidates for the current search
func (h *Handler) PickerState(c echo.Context) error {
	w, err := current(c)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, w.Picker.State())
}

// PickerSearch records typed search text; the gateway search runs once
// typing pauses
func (h *Handler) PickerSearch(c echo.Context) error {
	w, err := current(c)
	if err != nil {
		return h.fail(c, err)
	}
	var req searchRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request data")
	}
	return c.JSON(http.StatusOK, w.Picker.Type(reqCtx(c), req.Search))
}

// ExportBookings streams the bookings in the requested range as a file
func (h *Handler) ExportBookings(c echo.Context) error {
	w, err := current(c)
	if err != nil {
		return h.fail(c, err)
	}
	log := logger.FromEcho(c)

	format, err := export.ParseFormat(c.QueryParam("format"))
	if err != nil {
		return h.fail(c, err)
	}
	rng, err := export.ParseRange(w.Binder, c.QueryParam("from"), c.QueryParam("to"))
	if err != nil {
		return badRequest(c, err.Error())
	}

	bookings, err := w.Gateway.ListBookings(reqCtx(c))
	if err != nil {
		return h.fail(c, err)
	}
	rows, skipped := export.Rows(w.Binder, bookings, rng)

	var buf bytes.Buffer
	if err := export.Write(&buf, format, rows); err != nil {
		log.Error("Failed to write export", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to export bookings"})
	}

	log.Info("Bookings exported",
		zap.String("format", string(format)),
		zap.Int("rows", len(rows)),
		zap.Int("skipped", len(skipped)))
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%q", format.Filename(time.Now().In(w.Binder.Location()))))
	return c.Blob(http.StatusOK, format.ContentType(), buf.Bytes())
}

// DeleteBooking removes a booking and refreshes the calendar
func (h *Handler) DeleteBooking(c echo.Context) error {
	w, err := current(c)
	if err != nil {
		return h.fail(c, err)
	}
	if err := form.Delete(reqCtx(c), "Booking", c.Param("id"), w.Gateway.DeleteBooking, w.Notes, w.Bus, notify.TopicBookings); err != nil {
		return h.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
