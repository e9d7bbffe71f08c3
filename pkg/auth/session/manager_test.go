package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	redislib "github.com/redis/go-redis/v9"
)

// memStore stands in for redis and doubles as the keyer.
type memStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemStore() *memStore {
	return &memStore{data: map[string]string{}}
}

func (m *memStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = fmt.Sprint(value)
	return nil
}

func (m *memStore) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if val, ok := m.data[key]; ok {
		return val, nil
	}
	return "", redislib.Nil
}

func (m *memStore) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func (m *memStore) AccessSessionKey(accessID string) string {
	return "sess:" + accessID
}

func newTestManager() (*Manager, *memStore) {
	store := newMemStore()
	return &Manager{store: store, keyer: store, ttl: time.Hour}, store
}

func TestManagerRotateReplacesSession(t *testing.T) {
	manager, store := newTestManager()
	ctx := context.Background()

	secret, err := manager.Generate(ctx, "access-123")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if got := store.data[store.AccessSessionKey("access-123")]; got != secret {
		t.Fatalf("stored secret: want %q, got %q", secret, got)
	}

	if _, _, err := manager.Rotate(ctx, "access-123", "wrong"); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("wrong secret: want ErrInvalidRefreshToken, got %v", err)
	}

	nextID, nextSecret, err := manager.Rotate(ctx, "access-123", secret)
	if err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if _, stale := store.data[store.AccessSessionKey("access-123")]; stale {
		t.Fatal("old session survived rotation")
	}
	if got := store.data[store.AccessSessionKey(nextID)]; got != nextSecret {
		t.Fatalf("new session: want %q, got %q", nextSecret, got)
	}
}

func TestManagerRotateUnknownSession(t *testing.T) {
	manager, _ := newTestManager()

	if _, _, err := manager.Rotate(context.Background(), "never-issued", "whatever"); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("want ErrInvalidRefreshToken, got %v", err)
	}
}

func TestManagerRevokeEndsSession(t *testing.T) {
	manager, _ := newTestManager()
	ctx := context.Background()

	if _, err := manager.Generate(ctx, "access-456"); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if active, err := manager.HasSession(ctx, "access-456"); err != nil || !active {
		t.Fatalf("want active session, got active=%v err=%v", active, err)
	}

	if err := manager.Revoke(ctx, "access-456"); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if active, err := manager.HasSession(ctx, "access-456"); err != nil || active {
		t.Fatalf("want revoked session, got active=%v err=%v", active, err)
	}
}
