package tasks

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"todo-app/internal/api"
	"todo-app/internal/model"
	"todo-app/internal/store"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("task-%d", n)
	}
}

func newController(t *testing.T, kv store.KV) *Controller {
	t.Helper()
	if kv == nil {
		kv = store.FileKV{Dir: t.TempDir()}
	}
	clock := &fakeClock{now: t0}
	return New(kv, WithClock(clock.Now), WithIDGenerator(seqIDs()))
}

func checkInvariants(t *testing.T, c *Controller) {
	t.Helper()
	seen := map[string]bool{}
	for _, task := range c.Tasks() {
		if seen[task.ID] {
			t.Fatalf("duplicate id %q", task.ID)
		}
		seen[task.ID] = true
		if strings.TrimSpace(task.Title) == "" {
			t.Fatalf("blank title on %q", task.ID)
		}
		if task.Completed != (task.CompletedAt != nil) {
			t.Fatalf("completed/completedAt mismatch on %q: %+v", task.ID, task)
		}
	}
}

type fakeSource struct {
	mu    sync.Mutex
	tasks []model.Task
	err   error
	calls int
	gate  chan struct{}
}

func (f *fakeSource) FetchTasks(ctx context.Context, limit int) ([]model.Task, error) {
	f.mu.Lock()
	f.calls++
	gate := f.gate
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	if limit < len(f.tasks) {
		return f.tasks[:limit], nil
	}
	return f.tasks, nil
}

func (f *fakeSource) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestAdd_PrependsTrimmedTask(t *testing.T) {
	t.Parallel()

	c := newController(t, nil)
	first, ok := c.Add("  Buy milk  ", "  2 liters ")
	if !ok {
		t.Fatalf("expected add to succeed")
	}
	second, _ := c.Add("Read book", "")

	got := c.Tasks()
	if want := []string{second.ID, first.ID}; !reflect.DeepEqual(ids(got), want) {
		t.Fatalf("order = %v, want %v", ids(got), want)
	}
	if got[1].Title != "Buy milk" || got[1].Description != "2 liters" {
		t.Fatalf("expected trimmed fields, got %+v", got[1])
	}
	if got[1].Completed || got[1].CompletedAt != nil || got[1].CreatedAt.IsZero() {
		t.Fatalf("unexpected new task state: %+v", got[1])
	}
	checkInvariants(t, c)
}

func TestAdd_BlankTitleIsNoop(t *testing.T) {
	t.Parallel()

	c := newController(t, nil)
	c.Add("keep", "")
	before := c.Tasks()
	for _, title := range []string{"", "   ", "\t\n"} {
		if _, ok := c.Add(title, "desc"); ok {
			t.Fatalf("Add(%q) should be rejected", title)
		}
	}
	if !reflect.DeepEqual(before, c.Tasks()) {
		t.Fatalf("collection changed after blank adds")
	}
}

func TestAdd_CapsLengths(t *testing.T) {
	t.Parallel()

	c := newController(t, nil)
	task, ok := c.Add(strings.Repeat("é", 250), strings.Repeat("d", 600))
	if !ok {
		t.Fatalf("expected add")
	}
	if n := len([]rune(task.Title)); n != model.MaxTitleLen {
		t.Fatalf("title runes = %d", n)
	}
	if n := len([]rune(task.Description)); n != model.MaxDescriptionLen {
		t.Fatalf("description runes = %d", n)
	}
}

func TestAdd_RetriesCollidingIDs(t *testing.T) {
	t.Parallel()

	kv := store.FileKV{Dir: t.TempDir()}
	gen := []string{"same", "same", "other"}
	i := 0
	c := New(kv, WithIDGenerator(func() string { id := gen[i]; i++; return id }))
	a, _ := c.Add("a", "")
	b, _ := c.Add("b", "")
	if a.ID != "same" || b.ID != "other" {
		t.Fatalf("ids = %q, %q", a.ID, b.ID)
	}
	checkInvariants(t, c)
}

func TestToggleComplete_IsItsOwnInverse(t *testing.T) {
	t.Parallel()

	c := newController(t, nil)
	task, _ := c.Add("Walk dog", "")

	if !c.ToggleComplete(task.ID) {
		t.Fatalf("toggle should apply")
	}
	got, _ := c.Find(task.ID)
	if !got.Completed || got.CompletedAt == nil {
		t.Fatalf("expected completed with timestamp, got %+v", got)
	}
	checkInvariants(t, c)

	c.ToggleComplete(task.ID)
	got, _ = c.Find(task.ID)
	if got.Completed || got.CompletedAt != nil {
		t.Fatalf("expected restored incomplete state, got %+v", got)
	}
	if !reflect.DeepEqual(got, task) {
		t.Fatalf("double toggle should restore the task:\nwant %+v\ngot  %+v", task, got)
	}

	if c.ToggleComplete("missing") {
		t.Fatalf("unknown id should be a no-op")
	}
}

func TestRemove(t *testing.T) {
	t.Parallel()

	c := newController(t, nil)
	a, _ := c.Add("a", "")
	b, _ := c.Add("b", "")
	if !c.Remove(a.ID) {
		t.Fatalf("remove should apply")
	}
	if c.Remove(a.ID) {
		t.Fatalf("second remove should be a no-op")
	}
	if want := []string{b.ID}; !reflect.DeepEqual(ids(c.Tasks()), want) {
		t.Fatalf("remaining = %v, want %v", ids(c.Tasks()), want)
	}
}

func TestEditTitle(t *testing.T) {
	t.Parallel()

	c := newController(t, nil)
	task, _ := c.Add("Old", "")

	cases := []struct {
		title string
		want  bool
	}{
		{"   ", false},
		{"Old", false},
		{"  Old  ", false},
		{"  New title ", true},
	}
	for _, tc := range cases {
		if got := c.EditTitle(task.ID, tc.title); got != tc.want {
			t.Fatalf("EditTitle(%q) = %v, want %v", tc.title, got, tc.want)
		}
	}
	got, _ := c.Find(task.ID)
	if got.Title != "New title" || !got.CreatedAt.Equal(task.CreatedAt) {
		t.Fatalf("unexpected task after edit: %+v", got)
	}
	if c.EditTitle("missing", "x") {
		t.Fatalf("unknown id should be a no-op")
	}
}

func TestClearCompleted_KeepsRelativeOrder(t *testing.T) {
	t.Parallel()

	c := newController(t, nil)
	var added []model.Task
	for _, title := range []string{"a", "b", "c", "d", "e"} {
		task, _ := c.Add(title, "")
		added = append(added, task)
	}
	c.ToggleComplete(added[1].ID)
	c.ToggleComplete(added[3].ID)
	before := c.Tasks()

	if n := c.ClearCompleted(); n != 2 {
		t.Fatalf("removed %d, want 2", n)
	}
	var want []string
	for _, task := range before {
		if !task.Completed {
			want = append(want, task.ID)
		}
	}
	if !reflect.DeepEqual(ids(c.Tasks()), want) {
		t.Fatalf("remaining = %v, want %v", ids(c.Tasks()), want)
	}
	if n := c.ClearCompleted(); n != 0 {
		t.Fatalf("second clear removed %d", n)
	}
}

func TestStats_CountCanonicalCollection(t *testing.T) {
	t.Parallel()

	c := newController(t, nil)
	a, _ := c.Add("a", "")
	c.Add("b", "")
	c.ToggleComplete(a.ID)
	if st := c.Stats(); st != (model.Stats{Total: 2, Active: 1, Completed: 1}) {
		t.Fatalf("stats = %+v", st)
	}
	// Views never change stats.
	_ = c.View(model.FilterCompleted, "zzz", model.SortAlphabetical)
	if st := c.Stats(); st.Total != 2 {
		t.Fatalf("stats after view = %+v", st)
	}
}

func TestMutations_PersistAcrossActivations(t *testing.T) {
	t.Parallel()

	kv := store.FileKV{Dir: t.TempDir()}
	c := newController(t, kv)
	a, _ := c.Add("a", "desc")
	c.Add("b", "")
	c.ToggleComplete(a.ID)
	want := c.Tasks()
	c.Close()

	again := New(kv)
	if !reflect.DeepEqual(want, again.Tasks()) {
		t.Fatalf("reloaded collection differs:\nwant %+v\ngot  %+v", want, again.Tasks())
	}
}

func TestNew_CorruptStorageYieldsEmptyCollection(t *testing.T) {
	t.Parallel()

	kv := store.FileKV{Dir: t.TempDir()}
	if err := kv.Put(store.KeyTasks, []byte(`{{{`)); err != nil {
		t.Fatalf("put: %v", err)
	}
	c := New(kv)
	if len(c.Tasks()) != 0 {
		t.Fatalf("expected empty collection, got %v", ids(c.Tasks()))
	}
}

func TestNew_RepairsInvariantViolations(t *testing.T) {
	t.Parallel()

	kv := store.FileKV{Dir: t.TempDir()}
	raw := `[
	 {"id":"1","title":"  ok ","completed":true,"createdAt":"2025-01-01T00:00:00Z","completedAt":null},
	 {"id":"1","title":"dup","completed":false,"createdAt":"2025-01-01T00:00:00Z"},
	 {"id":"2","title":"   ","completed":false,"createdAt":"2025-01-01T00:00:00Z"},
	 {"id":"3","title":"open","completed":false,"createdAt":"2025-01-01T00:00:00Z","completedAt":"2025-01-02T00:00:00Z"}
	]`
	if err := kv.Put(store.KeyTasks, []byte(raw)); err != nil {
		t.Fatalf("put: %v", err)
	}

	c := New(kv)
	if want := []string{"1", "3"}; !reflect.DeepEqual(ids(c.Tasks()), want) {
		t.Fatalf("ids = %v, want %v", ids(c.Tasks()), want)
	}
	checkInvariants(t, c)
	if got, _ := c.Find("1"); got.Title != "ok" {
		t.Fatalf("title not trimmed: %q", got.Title)
	}

	// Repairs are written back.
	if got := New(kv).Tasks(); !reflect.DeepEqual(got, c.Tasks()) {
		t.Fatalf("repair not persisted")
	}
}

func TestSeedIfEmpty_Success(t *testing.T) {
	t.Parallel()

	c := newController(t, nil)
	src := &fakeSource{tasks: []model.Task{open("1", "remote one", 1), done("2", "remote two", 1)}}

	if c.State() != StateIdle {
		t.Fatalf("initial state = %v", c.State())
	}
	if err := c.SeedIfEmpty(context.Background(), src); err != nil {
		t.Fatalf("SeedIfEmpty: %v", err)
	}
	if c.State() != StateReady {
		t.Fatalf("state = %v, want ready", c.State())
	}
	if want := []string{"1", "2"}; !reflect.DeepEqual(ids(c.Tasks()), want) {
		t.Fatalf("ids = %v, want %v", ids(c.Tasks()), want)
	}
	checkInvariants(t, c)

	// At most once per activation.
	if err := c.SeedIfEmpty(context.Background(), src); err != nil {
		t.Fatalf("second SeedIfEmpty: %v", err)
	}
	if src.Calls() != 1 {
		t.Fatalf("fetch calls = %d, want 1", src.Calls())
	}
}

func TestSeedIfEmpty_SkipsWhenTasksExist(t *testing.T) {
	t.Parallel()

	kv := store.FileKV{Dir: t.TempDir()}
	newController(t, kv).Add("local", "")

	c := New(kv)
	src := &fakeSource{tasks: []model.Task{open("1", "remote", 1)}}
	if err := c.SeedIfEmpty(context.Background(), src); err != nil {
		t.Fatalf("SeedIfEmpty: %v", err)
	}
	if src.Calls() != 0 {
		t.Fatalf("should not fetch when tasks exist")
	}
	if c.State() != StateReady || len(c.Tasks()) != 1 {
		t.Fatalf("state = %v tasks = %v", c.State(), ids(c.Tasks()))
	}
}

func TestSeedIfEmpty_FailureSetsError(t *testing.T) {
	t.Parallel()

	c := newController(t, nil)
	fetchErr := &api.FetchError{Op: "fetch tasks", Status: 500}
	err := c.SeedIfEmpty(context.Background(), &fakeSource{err: fetchErr})
	if !errors.Is(err, fetchErr) {
		t.Fatalf("expected fetch error, got %v", err)
	}
	if c.State() != StateErrored {
		t.Fatalf("state = %v, want errored", c.State())
	}
	if c.ErrorMessage() != "HTTP error! status: 500" {
		t.Fatalf("error message = %q", c.ErrorMessage())
	}
	if len(c.Tasks()) != 0 {
		t.Fatalf("collection should stay empty")
	}
	// Terminal for the activation: no retry in place.
	src := &fakeSource{tasks: []model.Task{open("1", "x", 1)}}
	_ = c.SeedIfEmpty(context.Background(), src)
	if src.Calls() != 0 || c.State() != StateErrored {
		t.Fatalf("errored activation must not seed again")
	}
}

func TestFinishSeed_AbandonedAfterLocalMutation(t *testing.T) {
	t.Parallel()

	c := newController(t, nil)
	ticket, ok := c.BeginSeed()
	if !ok || c.State() != StateLoading {
		t.Fatalf("expected loading, got %v", c.State())
	}
	local, _ := c.Add("typed while loading", "")

	if c.FinishSeed(ticket, []model.Task{open("1", "remote", 1)}, nil) {
		t.Fatalf("seed result should be discarded")
	}
	if want := []string{local.ID}; !reflect.DeepEqual(ids(c.Tasks()), want) {
		t.Fatalf("ids = %v, want %v", ids(c.Tasks()), want)
	}
	if c.State() != StateReady {
		t.Fatalf("state = %v, want ready", c.State())
	}
}

func TestFinishSeed_DiscardedAfterClose(t *testing.T) {
	t.Parallel()

	kv := store.FileKV{Dir: t.TempDir()}
	c := newController(t, kv)
	ticket, _ := c.BeginSeed()
	c.Close()
	if c.FinishSeed(ticket, []model.Task{open("1", "remote", 1)}, nil) {
		t.Fatalf("closed activation must not apply seed")
	}
	if got := New(kv).Tasks(); len(got) != 0 {
		t.Fatalf("nothing should be persisted, got %v", ids(got))
	}
}

func TestSeedIfEmpty_CloseCancelsFetch(t *testing.T) {
	t.Parallel()

	c := newController(t, nil)
	src := &fakeSource{tasks: []model.Task{open("1", "remote", 1)}, gate: make(chan struct{})}

	errc := make(chan error, 1)
	go func() { errc <- c.SeedIfEmpty(context.Background(), src) }()

	deadline := time.After(5 * time.Second)
	for src.Calls() == 0 {
		select {
		case <-deadline:
			t.Fatalf("fetch never started")
		case <-time.After(time.Millisecond):
		}
	}
	c.Close()

	select {
	case err := <-errc:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("SeedIfEmpty did not return after Close")
	}
	if len(c.Tasks()) != 0 {
		t.Fatalf("closed activation should not be seeded")
	}
}

func TestSeedIfEmpty_CloseRacingStartNeverHangs(t *testing.T) {
	t.Parallel()

	for i := 0; i < 200; i++ {
		c := newController(t, nil)
		// The gate never opens: only cancellation ends the fetch.
		src := &fakeSource{tasks: []model.Task{open("1", "remote", 1)}, gate: make(chan struct{})}

		errc := make(chan error, 1)
		go func() { errc <- c.SeedIfEmpty(context.Background(), src) }()
		c.Close()

		select {
		case err := <-errc:
			if err != nil && !errors.Is(err, context.Canceled) {
				t.Fatalf("iteration %d: unexpected error %v", i, err)
			}
		case <-time.After(5 * time.Second):
			t.Fatalf("iteration %d: fetch outlived Close", i)
		}
		if len(c.Tasks()) != 0 {
			t.Fatalf("iteration %d: closed activation was seeded", i)
		}
	}
}

func TestViewAndFind_ReturnDetachedCopies(t *testing.T) {
	t.Parallel()

	c := newController(t, nil)
	task, _ := c.Add("a", "")
	c.ToggleComplete(task.ID)
	before, _ := c.Find(task.ID)
	want := *before.CompletedAt

	v := c.View(model.FilterAll, "", model.SortNewest)
	*v[0].CompletedAt = time.Unix(0, 0)
	v[0].Title = "changed"

	found, _ := c.Find(task.ID)
	if !found.CompletedAt.Equal(want) || found.Title != "a" {
		t.Fatalf("view copy leaked into the collection: %+v", found)
	}

	*found.CompletedAt = time.Unix(0, 0)
	again, _ := c.Find(task.ID)
	if !again.CompletedAt.Equal(want) {
		t.Fatalf("find copy leaked into the collection: %v", again.CompletedAt)
	}
}

func TestView_UsesControllerLocale(t *testing.T) {
	t.Parallel()

	kv := store.FileKV{Dir: t.TempDir()}
	c := New(kv, WithLocale("sv"), WithIDGenerator(seqIDs()))
	c.Add("zebra", "")
	c.Add("Ödla", "")
	got := c.View(model.FilterAll, "", model.SortAlphabetical)
	if got[0].Title != "zebra" || got[1].Title != "Ödla" {
		t.Fatalf("swedish collation expected, got %q, %q", got[0].Title, got[1].Title)
	}
}

func TestLoadStateString(t *testing.T) {
	t.Parallel()

	for s, want := range map[LoadState]string{StateIdle: "idle", StateLoading: "loading", StateReady: "ready", StateErrored: "errored"} {
		if s.String() != want {
			t.Fatalf("%d.String() = %q, want %q", s, s.String(), want)
		}
	}
}
