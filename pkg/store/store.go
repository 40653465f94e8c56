// Package store is an explicit, injectable application state container.
//
// A [Store] holds named [Module]s. Each module owns a state map and the
// mutation handlers that may change it. State only changes through
// [Store.Commit]; mutation names are global, so one commit runs the handler
// of every module that registered that name.
//
// Components receive the narrowest capability they need: a [Reader] to
// observe state, a [Writer] to commit mutations. Plugins such as
// [Persister] subscribe to commits and mirror module state into a [KV]
// backend.
package store

import (
	"context"
	"encoding/json"
	"maps"
	"slices"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/kgview/pkg/errors"
)

// State is the state of one module.
type State map[string]any

// MutationFunc changes state in place.
type MutationFunc func(state State, payload any) error

// Module declares a slice of application state.
type Module struct {
	Name      string
	State     func() State // initial state; nil means empty
	Mutations map[string]MutationFunc
}

// Mutation describes a committed change, as seen by subscribers.
type Mutation struct {
	Type    string
	Payload any
}

// Reader observes store state.
type Reader interface {
	// Get returns one value of a module's state.
	Get(module, key string) (any, bool)
	// State returns a deep copy of a module's state.
	State(module string) (State, error)
	// Modules lists module names in registration order.
	Modules() []string
}

// Writer changes store state.
type Writer interface {
	Commit(ctx context.Context, mutation string, payload any) error
}

// Subscriber is notified after every successful commit.
type Subscriber func(ctx context.Context, m Mutation, r Reader)

// Store implements [Reader] and [Writer].
type Store struct {
	mu     sync.RWMutex
	order  []string
	states map[string]State
	muts   map[string]map[string]MutationFunc // mutation -> module -> handler
	subs   []Subscriber
	logger *log.Logger
}

// Option configures a [Store].
type Option func(*Store)

// WithLogger sets the store logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// New builds a store from modules. Module names must be unique and
// non-empty.
func New(modules []Module, opts ...Option) (*Store, error) {
	s := &Store{
		states: make(map[string]State, len(modules)),
		muts:   make(map[string]map[string]MutationFunc),
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	for _, m := range modules {
		if m.Name == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "store module needs a name")
		}
		if _, dup := s.states[m.Name]; dup {
			return nil, errors.New(errors.ErrCodeInvalidInput, "duplicate store module %q", m.Name)
		}
		st := State{}
		if m.State != nil {
			if init := m.State(); init != nil {
				st = init
			}
		}
		s.order = append(s.order, m.Name)
		s.states[m.Name] = st
		for name, fn := range m.Mutations {
			if s.muts[name] == nil {
				s.muts[name] = make(map[string]MutationFunc)
			}
			s.muts[name][m.Name] = fn
		}
	}
	return s, nil
}

// Commit runs every handler registered for mutation, then notifies
// subscribers. Handlers run in module registration order on copies of
// their module state, and the copies replace the live state only when all
// handlers succeed: the first error discards every change of the commit
// and subscribers are not notified.
func (s *Store) Commit(ctx context.Context, mutation string, payload any) error {
	s.mu.Lock()
	handlers, ok := s.muts[mutation]
	if !ok {
		s.mu.Unlock()
		return errors.New(errors.ErrCodeNotFound, "unknown mutation %q", mutation)
	}
	work := make(map[string]State, len(handlers))
	for _, name := range s.order {
		fn, ok := handlers[name]
		if !ok {
			continue
		}
		st := copyValue(s.states[name]).(State)
		if err := fn(st, payload); err != nil {
			s.mu.Unlock()
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "mutation %s on %s", mutation, name)
		}
		work[name] = st
	}
	maps.Copy(s.states, work)
	subs := slices.Clone(s.subs)
	s.mu.Unlock()

	s.logger.Debug("store commit", "mutation", mutation)
	m := Mutation{Type: mutation, Payload: payload}
	for _, sub := range subs {
		sub(ctx, m, s)
	}
	return nil
}

// Subscribe registers fn for every later commit.
func (s *Store) Subscribe(fn Subscriber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

func (s *Store) Get(module, key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.states[module]
	if !ok {
		return nil, false
	}
	v, ok := st[key]
	return v, ok
}

func (s *Store) State(module string) (State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.states[module]
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "unknown store module %q", module)
	}
	return cloneState(st)
}

func (s *Store) Modules() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.order)
}

// restore merges saved into the named modules' state. Unknown modules
// in saved are ignored.
func (s *Store) restore(saved map[string]State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for name, st := range saved {
		if cur, ok := s.states[name]; ok {
			mergeState(cur, st)
		}
	}
}

// cloneState deep-copies st through JSON, the form state is persisted in.
func cloneState(st State) (State, error) {
	data, err := json.Marshal(st)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "copy state")
	}
	var out State
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "copy state")
	}
	if out == nil {
		out = State{}
	}
	return out, nil
}

// copyValue deep-copies the maps and []any slices in v so a handler can
// change them in place. Other values are shared.
func copyValue(v any) any {
	switch t := v.(type) {
	case State:
		out := make(State, len(t))
		for k, x := range t {
			out[k] = copyValue(x)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, x := range t {
			out[k] = copyValue(x)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, x := range t {
			out[i] = copyValue(x)
		}
		return out
	}
	return v
}

// mergeState merges nested maps recursively; any other value, lists
// included, replaces the current one.
func mergeState(dst, src map[string]any) {
	for k, v := range src {
		sm, ok := asMap(v)
		if !ok {
			dst[k] = v
			continue
		}
		dm, ok := asMap(dst[k])
		if !ok {
			dm = map[string]any{}
			dst[k] = dm
		}
		mergeState(dm, sm)
	}
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, m != nil
	case State:
		return m, m != nil
	}
	return nil, false
}

var (
	_ Reader = (*Store)(nil)
	_ Writer = (*Store)(nil)
)
