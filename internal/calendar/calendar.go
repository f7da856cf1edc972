// Package calendar turns bookings into calendar events and holds the
// booking detail/edit state of the calendar screen.
package calendar

import (
	"context"
	"strings"
	"sync"
	"time"

	"rent-admin/internal/form"
	"rent-admin/internal/model"
	"rent-admin/internal/notify"
	"rent-admin/pkg/logger"
	"rent-admin/prometheus"

	"github.com/araddon/dateparse"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var (
	ErrNoSelection = errors.New("calendar: no booking selected")
	ErrNotFound    = errors.New("calendar: booking not found")
)

// Event is one booking on the calendar
type Event struct {
	ID      string        `json:"id"`
	Title   string        `json:"title"`
	Start   time.Time     `json:"start"`
	End     time.Time     `json:"end"`
	AllDay  bool          `json:"allDay"`
	Booking model.Booking `json:"resource"`
}

// Tooltip is the hover text of an event
func (e Event) Tooltip() string {
	return strings.Join([]string{
		e.Title,
		"Send: " + e.Start.Format("Jan 2, 2006"),
		"Return: " + e.End.Format("Jan 2, 2006"),
	}, "\n")
}

// Skipped is a booking left off the calendar
type Skipped struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// Binder converts bookings in a fixed location
type Binder struct {
	loc *time.Location
}

func NewBinder(loc *time.Location) *Binder {
	if loc == nil {
		loc = time.Local
	}
	return &Binder{loc: loc}
}

// Location returns the zone events are expressed in
func (b *Binder) Location() *time.Location { return b.loc }

// Parse reads a gateway date string in the binder's location
func (b *Binder) Parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("empty date")
	}
	// date input values first
	for _, layout := range []string{"2006-01-02", "2006-01-02T15:04"} {
		if t, err := time.ParseInLocation(layout, s, b.loc); err == nil {
			return t, nil
		}
	}
	t, err := dateparse.ParseIn(s, b.loc)
	if err != nil {
		return time.Time{}, err
	}
	return t.In(b.loc), nil
}

// midnight truncates t to the start of its day in the binder's location
func (b *Binder) midnight(t time.Time) time.Time {
	y, m, d := t.In(b.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, b.loc)
}

// ToEvents maps bookings to events in input order. A booking without a
// parseable send date is skipped; a missing receive date ends the event at
// midnight of its start day.
func (b *Binder) ToEvents(bookings []model.Booking) ([]Event, []Skipped) {
	events := make([]Event, 0, len(bookings))
	var skipped []Skipped
	for _, bk := range bookings {
		start, err := b.Parse(bk.SendDate)
		if err != nil {
			skipped = append(skipped, Skipped{ID: bk.ID, Reason: "invalid send date: " + err.Error()})
			continue
		}
		end := b.midnight(start)
		if bk.ReceiveDate != "" {
			receive, err := b.Parse(bk.ReceiveDate)
			if err != nil {
				skipped = append(skipped, Skipped{ID: bk.ID, Reason: "invalid receive date: " + err.Error()})
				continue
			}
			end = b.midnight(receive)
		}
		events = append(events, Event{
			ID:      bk.ID,
			Title:   Title(bk),
			Start:   start,
			End:     end,
			AllDay:  true,
			Booking: bk,
		})
	}
	return events, skipped
}

// Title is "<customer> - <dress name>", with "Dress" when the dress is not populated
func Title(bk model.Booking) string {
	name := bk.Dress.Name()
	if name == "" {
		name = "Dress"
	}
	return bk.Customer.Name + " - " + name
}

// Between keeps events overlapping [from, to]. Zero bounds are open.
func Between(events []Event, from, to time.Time) []Event {
	out := make([]Event, 0, len(events))
	for _, e := range events {
		if !from.IsZero() && e.End.Before(from) && e.Start.Before(from) {
			continue
		}
		if !to.IsZero() && e.Start.After(to) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// BookingSource is the gateway surface the calendar reads
type BookingSource interface {
	ListBookings(ctx context.Context) ([]model.Booking, error)
}

// State is what the calendar screen renders
type State struct {
	Events   []Event                        `json:"events"`
	Skipped  []Skipped                      `json:"skipped"`
	Selected *model.Booking                 `json:"selected,omitempty"`
	Editing  bool                           `json:"editing"`
	Form     *form.State[form.BookingDraft] `json:"form,omitempty"`
}

// Calendar holds the events and the single open booking
type Calendar struct {
	binder *Binder
	source BookingSource
	form   *form.BookingForm

	mu       sync.Mutex
	bookings []model.Booking
	events   []Event
	skipped  []Skipped
	selected *model.Booking
	editing  bool
	seq      uint64
	reloads  bool

	// OnRefresh runs after a successful edit, as the page-level refresh hook.
	OnRefresh func(ctx context.Context)
}

func New(binder *Binder, source BookingSource, bookingForm *form.BookingForm, bus *notify.Bus) *Calendar {
	c := &Calendar{binder: binder, source: source, form: bookingForm, events: []Event{}}
	if bus != nil {
		c.reloads = bus.Subscribe(notify.TopicBookings, func(ctx context.Context) { c.Refresh(ctx) }) == nil
	}
	return c
}

// Refresh refetches all bookings. Errors are logged and leave the previous
// events in place; a response superseded by a later refresh is discarded,
// failed or not.
func (c *Calendar) Refresh(ctx context.Context) (State, error) {
	c.mu.Lock()
	c.seq++
	seq := c.seq
	c.mu.Unlock()

	log := logger.FromContext(ctx)
	bookings, err := c.source.ListBookings(ctx)

	c.mu.Lock()
	if seq != c.seq {
		c.mu.Unlock()
		prometheus.RecordStaleResponse("calendar")
		return c.State(), nil
	}
	if err != nil {
		c.mu.Unlock()
		log.Error("Failed to load bookings", zap.Error(err))
		return c.State(), err
	}
	events, skipped := c.binder.ToEvents(bookings)
	for _, s := range skipped {
		prometheus.BookingsSkippedTotal.Inc()
		log.Warn("Booking left off calendar", zap.String("booking_id", s.ID), zap.String("reason", s.Reason))
	}
	c.bookings = bookings
	c.events = events
	c.skipped = skipped
	c.mu.Unlock()
	return c.State(), nil
}

// Events returns the current events
func (c *Calendar) Events() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Event{}, c.events...)
}

// Select opens the read-only detail of booking id, closing any edit
func (c *Calendar) Select(id string) (State, error) {
	c.mu.Lock()
	var found *model.Booking
	for i := range c.bookings {
		if c.bookings[i].ID == id {
			bk := c.bookings[i]
			found = &bk
			break
		}
	}
	if found == nil {
		c.mu.Unlock()
		return c.State(), ErrNotFound
	}
	c.selected = found
	c.editing = false
	c.mu.Unlock()
	c.form.Reset()
	return c.State(), nil
}

// BeginEdit switches the selected booking to the edit form
func (c *Calendar) BeginEdit() (State, error) {
	c.mu.Lock()
	if c.selected == nil {
		c.mu.Unlock()
		return c.State(), ErrNoSelection
	}
	bk := *c.selected
	c.editing = true
	c.mu.Unlock()
	c.form.EditBooking(&bk)
	return c.State(), nil
}

// SaveEdit submits the edit form through the update path. On success the
// detail closes and the bookings are refetched.
func (c *Calendar) SaveEdit(ctx context.Context) (State, error) {
	c.mu.Lock()
	editing := c.editing && c.selected != nil
	c.mu.Unlock()
	if !editing {
		return c.State(), ErrNoSelection
	}

	if err := c.form.Submit(ctx); err != nil {
		return c.State(), err
	}
	c.mu.Lock()
	c.selected = nil
	c.editing = false
	onRefresh := c.OnRefresh
	c.mu.Unlock()

	var err error
	if !c.reloads {
		_, err = c.Refresh(ctx)
	}
	if onRefresh != nil {
		onRefresh(ctx)
	}
	return c.State(), err
}

// Close drops the selection and any edit in progress
func (c *Calendar) Close() State {
	c.mu.Lock()
	c.selected = nil
	c.editing = false
	c.mu.Unlock()
	c.form.Reset()
	return c.State()
}

// State returns a snapshot of the calendar
func (c *Calendar) State() State {
	c.mu.Lock()
	st := State{
		Events:  append([]Event{}, c.events...),
		Skipped: append([]Skipped{}, c.skipped...),
		Editing: c.editing,
	}
	if c.selected != nil {
		bk := *c.selected
		st.Selected = &bk
	}
	editing := c.editing
	c.mu.Unlock()

	if editing {
		fs := c.form.State()
		st.Form = &fs
	}
	return st
}
