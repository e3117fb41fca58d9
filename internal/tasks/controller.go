// Package tasks owns the canonical task collection: mutations, the derived view, statistics
// and the one-shot remote seed.
package tasks

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/text/language"

	"todo-app/internal/logging"
	"todo-app/internal/model"
	"todo-app/internal/store"
)

// LoadState tracks the seed for one activation: idle -> loading -> ready | errored.
// ready and errored are terminal until a new Controller is created.
type LoadState int

const (
	StateIdle LoadState = iota
	StateLoading
	StateReady
	StateErrored
)

func (s LoadState) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateErrored:
		return "errored"
	default:
		return "idle"
	}
}

// SeedSource provides the initial batch of tasks when nothing is stored locally.
type SeedSource interface {
	FetchTasks(ctx context.Context, limit int) ([]model.Task, error)
}

// SeedTicket identifies an in-flight seed. FinishSeed uses it to detect local mutations that
// happened while the fetch was outstanding.
type SeedTicket struct {
	version uint64
}

// Controller is one activation of the task list.
type Controller struct {
	tasks  *store.Binding[[]model.Task]
	logger *log.Logger
	now    func() time.Time
	newID  func() string
	locale language.Tag
	limit  int

	mu          sync.Mutex
	state       LoadState
	errMsg      string
	version     uint64
	closed      bool
	cancelFetch context.CancelFunc
}

type Option func(*Controller)

func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

func WithIDGenerator(fn func() string) Option {
	return func(c *Controller) {
		if fn != nil {
			c.newID = fn
		}
	}
}

func WithLogger(l *log.Logger) Option {
	return func(c *Controller) { c.logger = logging.OrDiscard(l) }
}

// WithLocale sets the collation locale for alphabetical sorting (BCP 47, e.g. "de", "sv").
// Unparseable tags keep English.
func WithLocale(tag string) Option {
	return func(c *Controller) {
		if strings.TrimSpace(tag) == "" {
			return
		}
		if t, err := language.Parse(tag); err == nil {
			c.locale = t
		}
	}
}

// WithSeedLimit bounds how many remote tasks SeedIfEmpty asks for.
func WithSeedLimit(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.limit = n
		}
	}
}

// New mounts the collection stored in kv. Stored data that breaks task invariants is repaired
// and written back; unreadable data yields an empty collection.
func New(kv store.KV, opts ...Option) *Controller {
	c := &Controller{
		logger: logging.Discard(),
		now:    time.Now,
		newID:  uuid.NewString,
		locale: language.English,
		limit:  10,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.tasks = store.Bind(kv, store.KeyTasks, []model.Task{},
		store.WithSchema(store.TasksSchema()),
		store.WithLogger(c.logger),
	)
	if fixed, changed := repair(c.tasks.Get()); changed {
		c.logger.Warn("repaired stored tasks", "before", len(c.tasks.Get()), "after", len(fixed))
		_ = c.tasks.Set(fixed)
	}
	return c
}

// Tasks returns a copy of the canonical collection in storage order.
func (c *Controller) Tasks() []model.Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	return clone(c.tasks.Get())
}

// View derives the presentation sequence for filter, search and sort.
func (c *Controller) View(filter model.Filter, search string, sortKey model.SortKey) []model.Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Derive(clone(c.tasks.Get()), Query{Filter: filter, Search: search, Sort: sortKey, Locale: c.locale})
}

func (c *Controller) Stats() model.Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ComputeStats(c.tasks.Get())
}

func (c *Controller) Find(id string) (model.Task, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	all := c.tasks.Get()
	if i := indexOf(all, id); i >= 0 {
		return clone(all[i : i+1])[0], true
	}
	return model.Task{}, false
}

// SeedLimit is the number of remote tasks requested by a seed.
func (c *Controller) SeedLimit() int { return c.limit }

func (c *Controller) State() LoadState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// ErrorMessage is the seed failure shown to the user (empty unless State is StateErrored).
func (c *Controller) ErrorMessage() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errMsg
}

// Add prepends a task. Blank titles are ignored. Title and description are trimmed and capped.
func (c *Controller) Add(title, description string) (model.Task, bool) {
	title = clampRunes(strings.TrimSpace(title), model.MaxTitleLen)
	if title == "" {
		return model.Task{}, false
	}
	var created model.Task
	ok := c.mutate(func(all []model.Task) ([]model.Task, bool) {
		created = model.Task{
			ID:          c.uniqueID(all),
			Title:       title,
			Description: clampRunes(strings.TrimSpace(description), model.MaxDescriptionLen),
			Completed:   false,
			CreatedAt:   c.now().UTC(),
		}
		return append([]model.Task{created}, all...), true
	})
	return created, ok
}

// ToggleComplete flips completion and keeps CompletedAt in step with it.
func (c *Controller) ToggleComplete(id string) bool {
	return c.mutate(func(all []model.Task) ([]model.Task, bool) {
		i := indexOf(all, id)
		if i < 0 {
			return all, false
		}
		t := &all[i]
		t.Completed = !t.Completed
		if t.Completed {
			at := c.now().UTC()
			t.CompletedAt = &at
		} else {
			t.CompletedAt = nil
		}
		return all, true
	})
}

func (c *Controller) Remove(id string) bool {
	return c.mutate(func(all []model.Task) ([]model.Task, bool) {
		i := indexOf(all, id)
		if i < 0 {
			return all, false
		}
		return append(all[:i], all[i+1:]...), true
	})
}

// EditTitle replaces a title in place. Blank or unchanged titles are ignored.
func (c *Controller) EditTitle(id, title string) bool {
	title = clampRunes(strings.TrimSpace(title), model.MaxTitleLen)
	if title == "" {
		return false
	}
	return c.mutate(func(all []model.Task) ([]model.Task, bool) {
		i := indexOf(all, id)
		if i < 0 || all[i].Title == title {
			return all, false
		}
		all[i].Title = title
		return all, true
	})
}

// ClearCompleted removes every completed task and returns how many were removed.
func (c *Controller) ClearCompleted() int {
	removed := 0
	c.mutate(func(all []model.Task) ([]model.Task, bool) {
		kept := all[:0]
		for _, t := range all {
			if t.Completed {
				removed++
				continue
			}
			kept = append(kept, t)
		}
		return kept, removed > 0
	})
	return removed
}

// mutate applies fn to a private copy of the collection and, when fn reports a change,
// bumps the version and persists the result.
func (c *Controller) mutate(fn func([]model.Task) ([]model.Task, bool)) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, changed := fn(clone(c.tasks.Get()))
	if !changed {
		return false
	}
	c.version++
	_ = c.tasks.Set(next)
	return true
}

// BeginSeed starts the seed for this activation. It returns false when the seed already ran,
// the activation is closed, or tasks exist locally (the state becomes ready).
func (c *Controller) BeginSeed() (SeedTicket, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.beginSeedLocked()
}

func (c *Controller) beginSeedLocked() (SeedTicket, bool) {
	if c.state != StateIdle || c.closed {
		return SeedTicket{}, false
	}
	if len(c.tasks.Get()) > 0 {
		c.state = StateReady
		return SeedTicket{}, false
	}
	c.state = StateLoading
	c.errMsg = ""
	return SeedTicket{version: c.version}, true
}

// FinishSeed applies a seed result. The result is discarded when the activation was closed or
// the collection was mutated locally after BeginSeed. It reports whether tasks were applied.
func (c *Controller) FinishSeed(ticket SeedTicket, seed []model.Task, err error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateLoading {
		return false
	}
	if c.closed {
		c.logger.Debug("discarding seed result for closed activation")
		return false
	}
	if c.version != ticket.version || len(c.tasks.Get()) > 0 {
		c.logger.Info("discarding seed result after local changes")
		c.state = StateReady
		return false
	}
	if err != nil {
		c.state = StateErrored
		c.errMsg = userMessage(err)
		c.logger.Error("loading tasks failed", "err", err)
		return false
	}

	fixed, _ := repair(seed)
	c.state = StateReady
	if len(fixed) == 0 {
		return false
	}
	c.version++
	_ = c.tasks.Set(fixed)
	c.logger.Info("seeded tasks", "count", len(fixed))
	return true
}

// SeedIfEmpty fetches the initial tasks from src when the collection is empty. It runs at
// most once per activation and returns the fetch error, if any.
func (c *Controller) SeedIfEmpty(ctx context.Context, src SeedSource) error {
	if src == nil {
		return errors.New("no seed source")
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Close must see the cancel func as soon as the seed has begun.
	c.mu.Lock()
	ticket, ok := c.beginSeedLocked()
	if ok {
		c.cancelFetch = cancel
	}
	c.mu.Unlock()
	if !ok {
		return nil
	}

	seed, err := src.FetchTasks(ctx, c.limit)
	c.FinishSeed(ticket, seed, err)
	return err
}

// Close tears the activation down. An outstanding SeedIfEmpty fetch is cancelled and any late
// seed result is discarded.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.cancelFetch != nil {
		c.cancelFetch()
		c.cancelFetch = nil
	}
}

func (c *Controller) uniqueID(all []model.Task) string {
	for {
		id := c.newID()
		if id != "" && indexOf(all, id) < 0 {
			return id
		}
	}
}

// repair enforces task invariants on data that did not come from this controller:
// duplicate ids keep the first occurrence, blank titles are dropped and CompletedAt
// follows Completed.
func repair(in []model.Task) ([]model.Task, bool) {
	out := make([]model.Task, 0, len(in))
	seen := make(map[string]bool, len(in))
	changed := false
	for _, t := range in {
		if t.ID == "" || seen[t.ID] {
			changed = true
			continue
		}
		title := strings.TrimSpace(t.Title)
		if title == "" {
			changed = true
			continue
		}
		if title != t.Title {
			t.Title = title
			changed = true
		}
		switch {
		case t.Completed && t.CompletedAt == nil:
			at := t.CreatedAt
			t.CompletedAt = &at
			changed = true
		case !t.Completed && t.CompletedAt != nil:
			t.CompletedAt = nil
			changed = true
		}
		seen[t.ID] = true
		out = append(out, t)
	}
	return out, changed
}

// userMessage drops operation prefixes from errors that carry a user-facing message.
func userMessage(err error) string {
	var m interface{ Message() string }
	if errors.As(err, &m) {
		return m.Message()
	}
	return err.Error()
}

func indexOf(all []model.Task, id string) int {
	for i := range all {
		if all[i].ID == id {
			return i
		}
	}
	return -1
}

func clone(in []model.Task) []model.Task {
	out := make([]model.Task, len(in))
	copy(out, in)
	for i := range out {
		if out[i].CompletedAt != nil {
			at := *out[i].CompletedAt
			out[i].CompletedAt = &at
		}
	}
	return out
}

func clampRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return strings.TrimSpace(string([]rune(s)[:n]))
}
