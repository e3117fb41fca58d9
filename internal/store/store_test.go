package store

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"todo-app/internal/model"
)

func sampleTasks() []model.Task {
	created := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)
	done := created.Add(time.Hour)
	return []model.Task{
		{ID: "b", Title: "Read book", Description: "chapter 3", CreatedAt: created.Add(time.Minute)},
		{ID: "a", Title: "Buy milk", Completed: true, CreatedAt: created, CompletedAt: &done},
	}
}

func backends(t *testing.T) map[string]KV {
	t.Helper()
	return map[string]KV{
		"json":   FileKV{Dir: t.TempDir()},
		"sqlite": SQLiteKV{Dir: t.TempDir()},
	}
}

func TestTasks_RoundTrip(t *testing.T) {
	t.Parallel()

	for name, kv := range backends(t) {
		want := sampleTasks()
		if err := Write(kv, KeyTasks, want); err != nil {
			t.Fatalf("%s: Write: %v", name, err)
		}
		got, err := Load(kv, KeyTasks, []model.Task{}, WithSchema(TasksSchema()))
		if err != nil {
			t.Fatalf("%s: Load: %v", name, err)
		}
		if !reflect.DeepEqual(want, got) {
			t.Fatalf("%s: roundtrip mismatch:\nwant: %#v\ngot:  %#v", name, want, got)
		}
	}
}

func TestLoad_MissingKeyReturnsDefault(t *testing.T) {
	t.Parallel()

	for name, kv := range backends(t) {
		got, err := Load(kv, KeyTheme, model.ThemeLight)
		if err != nil {
			t.Fatalf("%s: Load: %v", name, err)
		}
		if got != model.ThemeLight {
			t.Fatalf("%s: expected default, got %q", name, got)
		}
	}
}

func TestLoad_CorruptDataFallsBackToDefault(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"not json":     `{"todos": [`,
		"wrong shape":  `{"id": "a"}`,
		"missing id":   `[{"title": "x", "completed": false, "createdAt": "2025-01-01T00:00:00Z"}]`,
		"bad datetime": `[{"id": "a", "title": "x", "completed": false, "createdAt": "yesterday"}]`,
	}
	for name, raw := range cases {
		kv := FileKV{Dir: t.TempDir()}
		if err := kv.Put(KeyTasks, []byte(raw)); err != nil {
			t.Fatalf("%s: put: %v", name, err)
		}

		got, err := Load(kv, KeyTasks, []model.Task{}, WithSchema(TasksSchema()))
		var sre *StorageReadError
		if !errors.As(err, &sre) {
			t.Fatalf("%s: expected StorageReadError, got %v", name, err)
		}
		if sre.Key != KeyTasks {
			t.Fatalf("%s: error key = %q", name, sre.Key)
		}
		if len(got) != 0 {
			t.Fatalf("%s: expected empty default, got %#v", name, got)
		}

		// Read never surfaces the error.
		if got := Read(kv, KeyTasks, []model.Task{}, WithSchema(TasksSchema())); len(got) != 0 {
			t.Fatalf("%s: Read should fall back to default, got %#v", name, got)
		}
	}
}

func TestLoad_NullIsTreatedAsMissing(t *testing.T) {
	t.Parallel()

	kv := FileKV{Dir: t.TempDir()}
	if err := kv.Put(KeyTasks, []byte("null")); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err := Load(kv, KeyTasks, []model.Task{}, WithSchema(TasksSchema()))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected the (non-nil) default, got %#v", got)
	}
}

func TestLoad_AcceptsMillisecondTimestamps(t *testing.T) {
	t.Parallel()

	kv := FileKV{Dir: t.TempDir()}
	raw := `[{"id":"1712345678901","title":"Walk dog","description":"","completed":true,` +
		`"createdAt":"2024-04-05T10:00:00.000Z","completedAt":"2024-04-05T11:00:00.000Z"},` +
		`{"id":"3","title":"fugiat veniam minus","description":"","completed":false,` +
		`"createdAt":"2024-04-05T10:00:00.000Z","completedAt":null}]`
	if err := kv.Put(KeyTasks, []byte(raw)); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err := Load(kv, KeyTasks, []model.Task{}, WithSchema(TasksSchema()))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 2 || got[0].CompletedAt == nil || got[1].CompletedAt != nil {
		t.Fatalf("unexpected decode: %#v", got)
	}
}

func TestFileKV_WritesAtomicallyAndDeletes(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	kv := FileKV{Dir: dir}
	if err := kv.Put(KeyTheme, []byte(`"dark"`)); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "theme.json.tmp")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("tmp file should be renamed away, stat err = %v", err)
	}
	if err := kv.Delete(KeyTheme); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, err := kv.Get(KeyTheme); err != nil || ok {
		t.Fatalf("expected key gone, ok=%v err=%v", ok, err)
	}
	// Deleting twice is fine.
	if err := kv.Delete(KeyTheme); err != nil {
		t.Fatalf("second delete: %v", err)
	}
}

func TestKV_RejectsPathLikeKeys(t *testing.T) {
	t.Parallel()

	kv := FileKV{Dir: t.TempDir()}
	if err := kv.Put("../escape", []byte("1")); err == nil {
		t.Fatalf("expected invalid key error")
	}
}

func TestOpen_SelectsBackend(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	kv, err := Open("sqlite", dir)
	if err != nil {
		t.Fatalf("Open sqlite: %v", err)
	}
	if _, ok := kv.(SQLiteKV); !ok {
		t.Fatalf("expected SQLiteKV, got %T", kv)
	}
	kv, err = Open("", dir)
	if err != nil {
		t.Fatalf("Open default: %v", err)
	}
	if _, ok := kv.(FileKV); !ok {
		t.Fatalf("expected FileKV, got %T", kv)
	}
	if _, err := Open("redis", dir); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}

func TestBinding_WritesThrough(t *testing.T) {
	t.Parallel()

	for name, kv := range backends(t) {
		b := Bind(kv, KeyTasks, []model.Task{}, WithSchema(TasksSchema()))
		if len(b.Get()) != 0 {
			t.Fatalf("%s: expected empty initial value", name)
		}
		want := sampleTasks()
		if err := b.Set(want); err != nil {
			t.Fatalf("%s: Set: %v", name, err)
		}

		// A fresh binding (the next "mount") sees the persisted value.
		again := Bind(kv, KeyTasks, []model.Task{}, WithSchema(TasksSchema()))
		if !reflect.DeepEqual(want, again.Get()) {
			t.Fatalf("%s: rebound value mismatch:\nwant: %#v\ngot:  %#v", name, want, again.Get())
		}
	}
}

type failingKV struct{ FileKV }

func (failingKV) Put(string, []byte) error { return errors.New("disk full") }

func TestBinding_SetKeepsValueWhenWriteFails(t *testing.T) {
	t.Parallel()

	b := Bind[model.Theme](failingKV{FileKV{Dir: t.TempDir()}}, KeyTheme, model.ThemeLight)
	if err := b.Set(model.ThemeDark); err == nil {
		t.Fatalf("expected write error")
	}
	if b.Get() != model.ThemeDark {
		t.Fatalf("in-memory value should still change, got %q", b.Get())
	}
}

func TestBinding_ResetDeletesStoredValue(t *testing.T) {
	t.Parallel()

	kv := FileKV{Dir: t.TempDir()}
	b := Bind(kv, KeyTheme, "light")
	if err := b.Set("dark"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := b.Reset("light"); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if b.Get() != "light" {
		t.Fatalf("Get after reset = %q", b.Get())
	}
	if _, ok, err := kv.Get(KeyTheme); err != nil || ok {
		t.Fatalf("expected key removed, ok=%v err=%v", ok, err)
	}
	if got := Bind(kv, KeyTheme, "fallback").Get(); got != "fallback" {
		t.Fatalf("rebinding should see no stored value, got %q", got)
	}
}
