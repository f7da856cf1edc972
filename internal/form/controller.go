// Package form holds the create/edit state of the admin entity forms.
//
// A Controller owns one draft at a time. Opening the form seeds the draft
// from defaults or from an existing entity; Submit validates, sends the
// create or update call, and on success resets the draft and publishes the
// entity's reload topic so the matching list refetches.
package form

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"rent-admin/internal/notify"
	"rent-admin/pkg/gateway"
	"rent-admin/pkg/logger"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var (
	// ErrLastEntry is returned when removing the only remaining tag or size row
	ErrLastEntry = errors.New("form: cannot remove the last entry")
	// ErrOutOfRange is returned for a row index outside the list
	ErrOutOfRange = errors.New("form: index out of range")
	// ErrNotOpen is returned when submitting a closed form
	ErrNotOpen = errors.New("form: not open")
	// ErrBusy is returned when a submit is already running
	ErrBusy = errors.New("form: submit in progress")
)

// ValidationError is a blocking problem found before any gateway call
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Mode tells whether the form is closed, creating or editing
type Mode string

const (
	ModeClosed Mode = "closed"
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

// Draft is implemented by every form value
type Draft[D any] interface {
	Clone() D
}

// Hooks bind a Controller to one entity
type Hooks[D any] struct {
	// Entity is the capitalised display name used in notifications.
	Entity   string
	Defaults func() D
	// Validate returns non-blocking warnings and a blocking error.
	Validate func(D) ([]string, error)
	Create   func(ctx context.Context, d D) error
	Update   func(ctx context.Context, id string, d D) error
	Topic    notify.Topic
}

// State is what a form screen renders
type State[D any] struct {
	Mode       Mode     `json:"mode"`
	ID         string   `json:"id,omitempty"`
	Draft      D        `json:"draft"`
	Warnings   []string `json:"warnings"`
	Submitting bool     `json:"submitting"`
}

// Controller holds the draft of one entity form
type Controller[D Draft[D]] struct {
	hooks Hooks[D]
	notes *notify.Center
	bus   *notify.Bus

	mu         sync.Mutex
	mode       Mode
	id         string
	draft      D
	submitting bool
}

func NewController[D Draft[D]](hooks Hooks[D], notes *notify.Center, bus *notify.Bus) *Controller[D] {
	return &Controller[D]{
		hooks: hooks,
		notes: notes,
		bus:   bus,
		mode:  ModeClosed,
		draft: hooks.Defaults(),
	}
}

// OpenCreate starts a create form from the defaults
func (c *Controller[D]) OpenCreate() State[D] {
	c.mu.Lock()
	c.mode = ModeCreate
	c.id = ""
	c.draft = c.hooks.Defaults()
	c.mu.Unlock()
	return c.State()
}

// OpenEdit starts an edit form for id seeded with draft
func (c *Controller[D]) OpenEdit(id string, draft D) State[D] {
	c.mu.Lock()
	c.mode = ModeEdit
	c.id = id
	c.draft = draft.Clone()
	c.mu.Unlock()
	return c.State()
}

// Edit applies fn to the draft. The draft is left unchanged when fn fails.
func (c *Controller[D]) Edit(fn func(d *D) error) (State[D], error) {
	c.mu.Lock()
	next := c.draft.Clone()
	if err := fn(&next); err != nil {
		c.mu.Unlock()
		return c.State(), err
	}
	c.draft = next
	c.mu.Unlock()
	return c.State(), nil
}

// Reset restores the defaults and closes the form
func (c *Controller[D]) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = ModeClosed
	c.id = ""
	c.draft = c.hooks.Defaults()
}

// Draft returns a copy of the current draft
func (c *Controller[D]) Draft() D {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft.Clone()
}

// State returns a snapshot of the form
func (c *Controller[D]) State() State[D] {
	c.mu.Lock()
	draft := c.draft.Clone()
	st := State[D]{Mode: c.mode, ID: c.id, Draft: draft, Submitting: c.submitting}
	c.mu.Unlock()

	st.Warnings = []string{}
	if c.hooks.Validate != nil && st.Mode != ModeClosed {
		if warnings, _ := c.hooks.Validate(draft); warnings != nil {
			st.Warnings = warnings
		}
	}
	return st
}

// Submit sends the draft through the create or update path
func (c *Controller[D]) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.mode == ModeClosed {
		c.mu.Unlock()
		return ErrNotOpen
	}
	if c.submitting {
		c.mu.Unlock()
		return ErrBusy
	}
	mode, id, draft := c.mode, c.id, c.draft.Clone()
	c.submitting = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.submitting = false
		c.mu.Unlock()
	}()

	entity := c.hooks.Entity
	verb := "create"
	if mode == ModeEdit {
		verb = "update"
	}
	log := logger.FromContext(ctx).With(zap.String("entity", entity), zap.String("action", verb))

	if c.hooks.Validate != nil {
		if _, err := c.hooks.Validate(draft); err != nil {
			log.Info("Form validation failed", zap.Error(err))
			c.notes.Error(err.Error())
			return err
		}
	}

	var err error
	if mode == ModeEdit {
		err = c.hooks.Update(ctx, id, draft)
	} else {
		err = c.hooks.Create(ctx, draft)
	}
	if err != nil {
		log.Error("Form submit failed", zap.String("id", id), zap.Error(err))
		c.notes.Error(gateway.MessageOr(err, fmt.Sprintf("Failed to %s %s", verb, strings.ToLower(entity))))
		return err
	}

	c.notes.Success(fmt.Sprintf("%s %sd successfully", entity, verb))
	c.Reset()
	if c.bus != nil && c.hooks.Topic != "" {
		c.bus.Publish(ctx, c.hooks.Topic)
	}
	return nil
}

// removeAt deletes index i from list, refusing to empty it
func removeAt[T any](list []T, i int) ([]T, error) {
	if i < 0 || i >= len(list) {
		return list, ErrOutOfRange
	}
	if len(list) == 1 {
		return list, ErrLastEntry
	}
	out := make([]T, 0, len(list)-1)
	out = append(out, list[:i]...)
	return append(out, list[i+1:]...), nil
}

// nonBlank drops entries that are empty after trimming
func nonBlank(list []string) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}
