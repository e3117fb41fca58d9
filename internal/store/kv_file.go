package store

import (
	"errors"
	"os"
	"path/filepath"
)

// FileKV stores each key as <Dir>/<key>.json.
type FileKV struct {
	Dir string
}

func (s FileKV) path(key string) string {
	return filepath.Join(s.Dir, key+".json")
}

func (s FileKV) Ensure() error {
	return os.MkdirAll(s.Dir, 0o755)
}

func (s FileKV) Get(key string) ([]byte, bool, error) {
	if err := checkKey(key); err != nil {
		return nil, false, err
	}
	b, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return b, true, nil
}

func (s FileKV) Put(key string, value []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if err := s.Ensure(); err != nil {
		return err
	}
	path := s.path(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, value, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func (s FileKV) Delete(key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
