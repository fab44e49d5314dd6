package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"
)

const (
	BackendNone    = "none"
	DefaultTimeout = 30 * time.Second
)

type IGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Backend is a generation backend chosen once at startup.
// Configured reports false only for the no-op default.
type Backend interface {
	IGenerator
	Name() string
	Configured() bool
}

type BackendFactory func(args interface{}) (Backend, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]BackendFactory{}
)

func Register(name string, factory BackendFactory) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || factory == nil {
		return
	}
	registryMu.Lock()
	registry[key] = factory
	registryMu.Unlock()
}

// NewBackend builds the backend registered under name. An empty name selects
// the no-op backend.
func NewBackend(name string, args interface{}) (Backend, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		key = BackendNone
	}
	registryMu.RLock()
	factory := registry[key]
	registryMu.RUnlock()
	if factory == nil {
		return nil, fmt.Errorf("unsupported generation backend: %s", name)
	}
	return factory(args)
}

const noopMessage = "LLM non configuré. Voici les extraits pertinents."

type noopBackend struct{}

func NewNoopBackend() Backend {
	return noopBackend{}
}

func (noopBackend) Name() string {
	return BackendNone
}

func (noopBackend) Configured() bool {
	return false
}

func (noopBackend) Generate(ctx context.Context, prompt string) (string, error) {
	return noopMessage, nil
}

// WithTimeout bounds every Generate call of b by d.
func WithTimeout(b Backend, d time.Duration) Backend {
	if b == nil || !b.Configured() || d <= 0 {
		return b
	}
	return &timeoutBackend{next: b, timeout: d}
}

type timeoutBackend struct {
	next    Backend
	timeout time.Duration
}

func (t *timeoutBackend) Name() string {
	return t.next.Name()
}

func (t *timeoutBackend) Configured() bool {
	return true
}

func (t *timeoutBackend) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.Generate(ctx, prompt)
}

func decodeConfig(args interface{}, dst interface{}) error {
	if args == nil {
		return fmt.Errorf("generation backend config is required")
	}
	data, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("encode backend config: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode backend config: %w", err)
	}
	return nil
}

func init() {
	Register(BackendNone, func(args interface{}) (Backend, error) {
		return NewNoopBackend(), nil
	})
}
