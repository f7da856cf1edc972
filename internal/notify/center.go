package notify

import (
	"sync"
	"time"

	"rent-admin/prometheus"

	"go.uber.org/zap"
)

// Kind classifies a notification
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindWarning Kind = "warning"
)

// Notification is a transient message shown to the admin once
type Notification struct {
	Kind    Kind      `json:"kind"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// maxPending bounds the queue of a session nobody polls
const maxPending = 50

// Center queues the notifications of one admin session
type Center struct {
	mu      sync.Mutex
	pending []Notification
	log     *zap.Logger
	now     func() time.Time
}

func NewCenter(log *zap.Logger) *Center {
	if log == nil {
		log = zap.NewNop()
	}
	return &Center{log: log, now: time.Now}
}

func (c *Center) Success(msg string) { c.push(KindSuccess, msg) }

func (c *Center) Error(msg string) { c.push(KindError, msg) }

func (c *Center) Warning(msg string) { c.push(KindWarning, msg) }

func (c *Center) push(kind Kind, msg string) {
	prometheus.RecordNotification(string(kind))
	if kind == KindError {
		c.log.Warn("Notification", zap.String("kind", string(kind)), zap.String("message", msg))
	} else {
		c.log.Debug("Notification", zap.String("kind", string(kind)), zap.String("message", msg))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = append(c.pending, Notification{Kind: kind, Message: msg, At: c.now()})
	if over := len(c.pending) - maxPending; over > 0 {
		c.pending = append([]Notification(nil), c.pending[over:]...)
	}
}

// Drain returns the queued notifications and empties the queue
func (c *Center) Drain() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.pending
	c.pending = nil
	if out == nil {
		out = []Notification{}
	}
	return out
}

// Peek returns a copy of the queue without consuming it
func (c *Center) Peek() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Notification{}, c.pending...)
}
