package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Storage keys. The namespaces are disjoint on purpose: clearing one key
// must never affect the others.
const (
	KeyUserToken   = "auth:token"
	KeyAdminToken  = "auth:admin-token"
	KeyViewState   = "app:view-state"
	KeyTransaction = "payment:txn:" // + order id
)

// KV is the persisted key-value substrate shared by the view state machine,
// the session manager and the payment flow. Values are JSON strings.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// ErrNotFound is returned by Get when the key is absent.
var ErrNotFound = errNotFound{}

type errNotFound struct{}

func (errNotFound) Error() string { return "store: key not found" }

// SetJSON marshals v and stores it under key.
func SetJSON(ctx context.Context, kv KV, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("store.SetJSON: %w", err)
	}
	return kv.Set(ctx, key, string(data))
}

// GetJSON reads key and unmarshals it into v. A missing key yields
// ErrNotFound; corrupt JSON is reported as-is so callers can decide to
// treat it as absence of state.
func GetJSON(ctx context.Context, kv KV, key string, v any) error {
	raw, err := kv.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("store.GetJSON: %w", err)
	}
	return nil
}

// Memory is an in-process KV used in tests and as a fallback when no Redis
// is configured. Nothing survives a restart.
type Memory struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

func (m *Memory) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *Memory) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
