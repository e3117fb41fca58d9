package store

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// Well-known keys.
const (
	KeyTasks = "todos"
	KeyTheme = "theme"
)

type Backend string

const (
	BackendJSON   Backend = "json"
	BackendSQLite Backend = "sqlite"
)

// KV is the raw key-value storage behind the typed helpers. Values are opaque bytes
// (JSON documents in practice).
type KV interface {
	// Get returns ok=false when the key has never been written.
	Get(key string) (value []byte, ok bool, err error)
	Put(key string, value []byte) error
	Delete(key string) error
}

// Open returns the backend rooted at dir.
func Open(backend string, dir string) (KV, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("store: empty data dir")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	switch Backend(strings.ToLower(strings.TrimSpace(backend))) {
	case "", BackendJSON:
		return FileKV{Dir: dir}, nil
	case BackendSQLite:
		return SQLiteKV{Dir: dir}, nil
	default:
		return nil, fmt.Errorf("store: unknown backend %q (expected json|sqlite)", backend)
	}
}

var keyRe = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)

func checkKey(key string) error {
	if !keyRe.MatchString(key) {
		return fmt.Errorf("store: invalid key %q", key)
	}
	return nil
}
