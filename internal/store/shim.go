package store

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/log"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"todo-app/internal/logging"
)

// StorageReadError reports stored data that could not be used. Callers of Read never see it;
// the default value is returned instead.
type StorageReadError struct {
	Key string
	Err error
}

func (e *StorageReadError) Error() string {
	return fmt.Sprintf("read %q: %v", e.Key, e.Err)
}

func (e *StorageReadError) Unwrap() error { return e.Err }

type options struct {
	schema *jsonschema.Schema
	logger *log.Logger
}

type Option func(*options)

// WithSchema validates the stored document before decoding it.
func WithSchema(s *jsonschema.Schema) Option {
	return func(o *options) { o.schema = s }
}

func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

func newOptions(opts []Option) options {
	var o options
	for _, fn := range opts {
		if fn != nil {
			fn(&o)
		}
	}
	o.logger = logging.OrDiscard(o.logger)
	return o
}

// Load decodes the value stored under key. A missing key (or a stored JSON null) yields def and
// a nil error; anything unusable yields def and a *StorageReadError.
func Load[T any](kv KV, key string, def T, opts ...Option) (T, error) {
	o := newOptions(opts)

	b, ok, err := kv.Get(key)
	if err != nil {
		return def, &StorageReadError{Key: key, Err: err}
	}
	b = bytes.TrimSpace(b)
	if !ok || len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return def, nil
	}

	if o.schema != nil {
		var doc any
		if err := json.Unmarshal(b, &doc); err != nil {
			return def, &StorageReadError{Key: key, Err: err}
		}
		if err := o.schema.Validate(doc); err != nil {
			return def, &StorageReadError{Key: key, Err: err}
		}
	}

	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return def, &StorageReadError{Key: key, Err: err}
	}
	return v, nil
}

// Read is Load for callers that must never fail: read problems are logged and def is returned.
func Read[T any](kv KV, key string, def T, opts ...Option) T {
	v, err := Load(kv, key, def, opts...)
	if err != nil {
		newOptions(opts).logger.Warn("falling back to default value", "key", key, "err", err)
	}
	return v
}

// Write encodes v as JSON and stores it under key.
func Write[T any](kv KV, key string, v T) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}
	if err := kv.Put(key, b); err != nil {
		return fmt.Errorf("write %q: %w", key, err)
	}
	return nil
}
