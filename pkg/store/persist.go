package store

import (
	"context"
	"encoding/json"

	"github.com/matzehuels/kgview/pkg/errors"
)

// Persister mirrors selected modules into a [KV] under one key, and
// restores them when installed.
//
// The stored document maps module names to their state:
//
//	{"user": {"token": "...", "userInfo": {...}}}
type Persister struct {
	// Key is the storage key.
	Key string
	// Storage receives the serialized state.
	Storage KV
	// Modules selects the persisted modules; empty means all.
	Modules []string
	// Filter limits which mutations trigger a save; nil saves on every
	// mutation.
	Filter func(m Mutation) bool
	// Restore decides whether saved state is loaded on install; nil
	// always restores.
	Restore func(ctx context.Context, storage KV) (bool, error)
	// OnError receives save failures, which cannot fail the commit that
	// triggered them. Nil drops them.
	OnError func(error)
}

// Install restores saved state into s (subject to Restore) and subscribes
// to future commits.
func (p *Persister) Install(ctx context.Context, s *Store) error {
	if p.Key == "" || p.Storage == nil {
		return errors.New(errors.ErrCodeInvalidConfig, "persister needs a key and storage")
	}
	if err := p.restore(ctx, s); err != nil {
		return err
	}
	s.Subscribe(func(ctx context.Context, m Mutation, r Reader) {
		if p.Filter != nil && !p.Filter(m) {
			return
		}
		if err := p.Save(ctx, r); err != nil && p.OnError != nil {
			p.OnError(err)
		}
	})
	return nil
}

// Save writes the selected modules of r to storage.
func (p *Persister) Save(ctx context.Context, r Reader) error {
	modules := p.Modules
	if len(modules) == 0 {
		modules = r.Modules()
	}
	doc := make(map[string]State, len(modules))
	for _, name := range modules {
		st, err := r.State(name)
		if err != nil {
			return err
		}
		doc[name] = st
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode %s", p.Key)
	}
	return p.Storage.Set(ctx, p.Key, data)
}

func (p *Persister) restore(ctx context.Context, s *Store) error {
	if p.Restore != nil {
		ok, err := p.Restore(ctx, p.Storage)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}
	data, found, err := p.Storage.Get(ctx, p.Key)
	if err != nil {
		return err
	}
	if !found || len(data) == 0 {
		return nil
	}
	var saved map[string]State
	if err := json.Unmarshal(data, &saved); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPayload, err, "decode %s", p.Key)
	}
	if len(p.Modules) > 0 {
		keep := make(map[string]State, len(p.Modules))
		for _, name := range p.Modules {
			if st, ok := saved[name]; ok {
				keep[name] = st
			}
		}
		saved = keep
	}
	s.restore(saved)
	return nil
}

// MutationIn returns a Filter accepting only the named mutations.
func MutationIn(types ...string) func(Mutation) bool {
	set := make(map[string]struct{}, len(types))
	for _, t := range types {
		set[t] = struct{}{}
	}
	return func(m Mutation) bool {
		_, ok := set[m.Type]
		return ok
	}
}

// KeyExists returns a Restore guard that only restores when key is
// present in storage.
func KeyExists(key string) func(context.Context, KV) (bool, error) {
	return func(ctx context.Context, kv KV) (bool, error) {
		_, ok, err := kv.Get(ctx, key)
		return ok, err
	}
}
