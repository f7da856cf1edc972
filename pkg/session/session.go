package session

import (
	"context"
	"time"

	"rent-admin/pkg/gateway"
	"rent-admin/pkg/jwtutil"
	"rent-admin/pkg/logger"
	"rent-admin/prometheus"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// expiryLeeway keeps tokens that expire within the next request from being sent
const expiryLeeway = 5 * time.Second

// Manager creates and resolves admin sessions
type Manager struct {
	store Store
	ttl   time.Duration
	now   func() time.Time
}

func NewManager(store Store, ttl time.Duration) *Manager {
	return &Manager{store: store, ttl: ttl, now: time.Now}
}

// Create stores token under a fresh session id. The lifetime is the
// configured TTL, shortened to the token's own expiry when it has one.
func (m *Manager) Create(ctx context.Context, token string) (*Session, error) {
	ttl := m.ttl
	if exp, ok := jwtutil.ExpiresAt(token); ok {
		left := exp.Sub(m.now())
		if left <= 0 {
			return nil, errors.Wrap(gateway.ErrNoToken, "token already expired")
		}
		if ttl <= 0 || left < ttl {
			ttl = left
		}
	}

	id := uuid.New().String()
	if err := m.store.Set(ctx, id, token, ttl); err != nil {
		return nil, errors.Wrap(err, "store session")
	}
	logger.FromContext(ctx).Info("Admin session created",
		zap.String("session_id", id),
		zap.Duration("ttl", ttl))
	return m.session(id), nil
}

// Lookup returns the session for id when a token is stored for it
func (m *Manager) Lookup(ctx context.Context, id string) (*Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	if _, err := m.store.Get(ctx, id); err != nil {
		return nil, err
	}
	return m.session(id), nil
}

// Destroy forgets the session
func (m *Manager) Destroy(ctx context.Context, id string) error {
	return m.store.Delete(ctx, id)
}

func (m *Manager) session(id string) *Session {
	return &Session{ID: id, store: m.store, now: m.now}
}

// Session is the explicit token holder handed to the gateway client of one
// admin workspace
type Session struct {
	ID    string
	store Store
	now   func() time.Time
}

// Token returns the stored token. Missing or expired tokens yield
// gateway.ErrNoToken, and expired ones are removed.
func (s *Session) Token(ctx context.Context) (string, error) {
	token, err := s.store.Get(ctx, s.ID)
	if errors.Is(err, ErrNotFound) {
		return "", gateway.ErrNoToken
	}
	if err != nil {
		return "", err
	}
	if jwtutil.Expired(token, s.now(), expiryLeeway) {
		logger.FromContext(ctx).Info("Session token expired", zap.String("session_id", s.ID))
		prometheus.SessionExpiredTotal.Inc()
		if err := s.store.Delete(ctx, s.ID); err != nil {
			return "", err
		}
		return "", gateway.ErrNoToken
	}
	return token, nil
}

// Clear drops the token after the gateway rejected it
func (s *Session) Clear(ctx context.Context) error {
	prometheus.SessionExpiredTotal.Inc()
	return s.store.Delete(ctx, s.ID)
}
