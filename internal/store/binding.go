package store

import (
	"sync"

	"github.com/charmbracelet/log"
)

// Binding is a typed value mirrored to a key: it is read once when bound, and every Set writes
// the new value through to storage.
type Binding[T any] struct {
	kv     KV
	key    string
	logger *log.Logger

	mu    sync.Mutex
	value T
}

// Bind reads key (falling back to def on missing or malformed data) and returns the binding.
func Bind[T any](kv KV, key string, def T, opts ...Option) *Binding[T] {
	o := newOptions(opts)
	return &Binding[T]{
		kv:     kv,
		key:    key,
		logger: o.logger,
		value:  Read(kv, key, def, opts...),
	}
}

func (b *Binding[T]) Key() string { return b.key }

func (b *Binding[T]) Get() T {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.value
}

// Set replaces the value and persists it. The in-memory value changes even when the write fails;
// the error is logged and returned.
func (b *Binding[T]) Set(v T) error {
	b.mu.Lock()
	b.value = v
	b.mu.Unlock()

	if err := Write(b.kv, b.key, v); err != nil {
		b.logger.Error("persist failed", "key", b.key, "err", err)
		return err
	}
	return nil
}

// Reset removes the stored value and falls back to def in memory.
func (b *Binding[T]) Reset(def T) error {
	b.mu.Lock()
	b.value = def
	b.mu.Unlock()

	if err := b.kv.Delete(b.key); err != nil {
		b.logger.Error("reset failed", "key", b.key, "err", err)
		return err
	}
	return nil
}
