package server

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/vango-dev/vango-history/internal/errors"
	"github.com/vango-dev/vango-history/pkg/history"
)

// State is the JSON view of a history after an operation.
type State struct {
	Name     string   `json:"name"`
	Value    string   `json:"value"`
	Timeline []string `json:"timeline"`
	Pointer  int      `json:"pointer"`
	Capacity int      `json:"capacity"`
	CanUndo  bool     `json:"canUndo"`
	CanRedo  bool     `json:"canRedo"`

	// Changed is the boolean result of the operation that produced this state.
	Changed bool `json:"changed"`
}

// entry pairs a store with the lock that serializes access to it.
// Once deleted is set the entry is detached from the registry and every
// operation on it must report the history as missing.
type entry struct {
	mu      sync.Mutex
	store   *history.Store[string]
	hub     *hub
	deleted bool
}

func (e *entry) state(name string, changed bool) State {
	return State{
		Name:     name,
		Value:    e.store.Value(),
		Timeline: e.store.Timeline(),
		Pointer:  e.store.Pointer(),
		Capacity: e.store.Capacity(),
		CanUndo:  e.store.CanUndo(),
		CanRedo:  e.store.CanRedo(),
		Changed:  changed,
	}
}

// Registry holds named histories.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry

	opts   []history.Option
	logger *slog.Logger
}

// NewRegistry creates an empty registry. opts are applied to every store it
// creates. The options are validated once up front so that a bad capacity
// fails here rather than on the first write.
func NewRegistry(logger *slog.Logger, opts ...history.Option) (*Registry, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if _, err := history.New("", opts...); err != nil {
		return nil, err
	}
	return &Registry{
		entries: make(map[string]*entry),
		opts:    opts,
		logger:  logger,
	}, nil
}

func (r *Registry) lookup(name string) (*entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	return e, ok
}

// Do runs fn on the named history while holding its lock and returns the
// resulting state. Subscribers are notified when fn reports a change.
func (r *Registry) Do(name string, fn func(h *history.Store[string]) bool) (State, error) {
	e, ok := r.lookup(name)
	if !ok {
		return State{}, notFound(name)
	}
	return r.apply(name, e, fn)
}

// apply runs fn on an entry obtained from lookup. The entry may have been
// deleted in between, in which case fn does not run.
func (r *Registry) apply(name string, e *entry, fn func(h *history.Store[string]) bool) (State, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.deleted {
		return State{}, notFound(name)
	}

	changed := fn(e.store)
	st := e.state(name, changed)
	if changed {
		e.hub.broadcast(st)
	}
	return st, nil
}

// Write sets value on the named history, creating it with value as its
// initial entry if it does not exist yet.
func (r *Registry) Write(name, value string) (State, error) {
	r.mu.Lock()
	if _, ok := r.entries[name]; !ok {
		store, err := history.New(value, r.opts...)
		if err != nil {
			r.mu.Unlock()
			return State{}, err
		}
		e := &entry{store: store, hub: newHub(r.logger.With("history", name))}
		r.entries[name] = e
		r.mu.Unlock()

		r.logger.Info("history created", "history", name, "capacity", store.Capacity())

		e.mu.Lock()
		defer e.mu.Unlock()
		return e.state(name, true), nil
	}
	r.mu.Unlock()

	return r.Do(name, func(h *history.Store[string]) bool {
		return h.Set(value)
	})
}

// State returns the current state of the named history.
func (r *Registry) State(name string) (State, error) {
	e, ok := r.lookup(name)
	if !ok {
		return State{}, notFound(name)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.deleted {
		return State{}, notFound(name)
	}
	return e.state(name, false), nil
}

// subscribe attaches conn to the named entry and sends it the current state.
// It returns false, after closing conn, if the entry was deleted since it
// was looked up.
func (r *Registry) subscribe(name string, e *entry, conn *websocket.Conn) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.deleted {
		closeConn(conn, "history deleted")
		return false
	}
	e.hub.add(conn, e.state(name, false))
	return true
}

// Delete removes the named history and disconnects its subscribers.
func (r *Registry) Delete(name string) bool {
	r.mu.Lock()
	e, ok := r.entries[name]
	delete(r.entries, name)
	r.mu.Unlock()

	if !ok {
		return false
	}

	e.mu.Lock()
	e.deleted = true
	e.hub.close()
	e.mu.Unlock()

	r.logger.Info("history deleted", "history", name)
	return true
}

// Names returns the names of all histories in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	r.mu.RUnlock()

	sort.Strings(names)
	return names
}

// Close disconnects all subscribers.
func (r *Registry) Close() {
	r.mu.Lock()
	entries := make([]*entry, 0, len(r.entries))
	for _, e := range r.entries {
		entries = append(entries, e)
	}
	r.mu.Unlock()

	for _, e := range entries {
		e.mu.Lock()
		e.hub.close()
		e.mu.Unlock()
	}
}

func notFound(name string) error {
	return errors.New("H200").
		WithDetail("No history named " + name + " exists.").
		WithSuggestion("Create it with PUT /histories/" + name)
}
