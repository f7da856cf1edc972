package session

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"rent-admin/pkg/gateway"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

func tokenExpiringAt(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	s, err := token.SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func testStore(t *testing.T, store Store) {
	ctx := context.Background()

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get missing = %v, want ErrNotFound", err)
	}
	if err := store.Set(ctx, "s1", "tok", time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := store.Get(ctx, "s1")
	if err != nil || got != "tok" {
		t.Errorf("Get = %q, %v", got, err)
	}
	if err := store.Delete(ctx, "s1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(ctx, "s1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete = %v, want ErrNotFound", err)
	}
}

func TestStores(t *testing.T) {
	t.Run("memory", func(t *testing.T) {
		testStore(t, NewMemoryStore())
	})
	t.Run("bolt", func(t *testing.T) {
		store, err := NewBoltStore(filepath.Join(t.TempDir(), "sessions.db"))
		if err != nil {
			t.Fatalf("NewBoltStore: %v", err)
		}
		defer store.Close()
		testStore(t, store)
	})
}

func TestMemoryStoreTTL(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	store := NewMemoryStore()
	store.now = func() time.Time { return now }

	store.Set(context.Background(), "s1", "tok", time.Minute)
	now = now.Add(2 * time.Minute)
	if _, err := store.Get(context.Background(), "s1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expired entry returned: %v", err)
	}
}

func TestSessionToken(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	manager := NewManager(NewMemoryStore(), time.Hour)

	sess, err := manager.Create(ctx, tokenExpiringAt(t, now.Add(30*time.Minute)))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := sess.Token(ctx); err != nil {
		t.Fatalf("Token: %v", err)
	}
	if _, err := manager.Lookup(ctx, sess.ID); err != nil {
		t.Fatalf("Lookup: %v", err)
	}

	if err := sess.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	_, err = sess.Token(ctx)
	if !errors.Is(err, gateway.ErrNoToken) || !errors.Is(err, gateway.ErrUnauthorized) {
		t.Errorf("Token after clear = %v", err)
	}
	if _, err := manager.Lookup(ctx, sess.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Lookup after clear = %v", err)
	}
}

func TestSessionExpiredToken(t *testing.T) {
	ctx := context.Background()
	manager := NewManager(NewMemoryStore(), time.Hour)

	if _, err := manager.Create(ctx, tokenExpiringAt(t, time.Now().Add(-time.Minute))); !errors.Is(err, gateway.ErrNoToken) {
		t.Errorf("Create with expired token = %v", err)
	}

	sess, err := manager.Create(ctx, tokenExpiringAt(t, time.Now().Add(time.Hour)))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	sess.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := sess.Token(ctx); !errors.Is(err, gateway.ErrNoToken) {
		t.Errorf("Token past expiry = %v", err)
	}
}

func TestLookupRejectsMalformedID(t *testing.T) {
	manager := NewManager(NewMemoryStore(), time.Hour)
	if _, err := manager.Lookup(context.Background(), "not-a-uuid"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Lookup = %v", err)
	}
}
