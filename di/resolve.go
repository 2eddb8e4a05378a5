package di

import (
	"time"

	"github.com/kbukum/crudify/logger"
)

// Get returns the value for token, creating it if no valid cached value is
// visible from this injector.
func (i *Injector) Get(token Token) (any, error) {
	if token == nil {
		return nil, invalidProvider(nil, "get called without a token")
	}
	if i.s.disposed.Load() {
		return nil, disposedInjector(i.s.name, "get "+token.String())
	}
	if i.res != nil {
		return i.get(token)
	}
	view := &Injector{s: i.s, res: newResolution()}
	if err := i.s.enter(token); err != nil {
		return nil, err
	}
	defer i.s.leave()
	return view.get(token)
}

// Find returns the cached value for token if one is valid for this injector.
// It never creates anything.
func (i *Injector) Find(token Token) (any, bool, error) {
	if i.s.disposed.Load() {
		return nil, false, disposedInjector(i.s.name, "find "+tokenName(token))
	}
	view := i
	if i.res == nil {
		view = &Injector{s: i.s, res: newResolution()}
	}

	i.s.tree.mu.Lock()
	defer i.s.tree.mu.Unlock()
	if _, busy := view.res.inflight[token]; busy {
		return nil, false, circularDependency(token, view.res.path)
	}
	if err := i.s.reenteredLocked(token); err != nil {
		return nil, false, err
	}
	v, ok := view.findLocked(token)
	return v, ok, nil
}

// Optional resolves token like Get, but reports absence instead of failing
// when no injector in the chain provides token. Failures while creating the
// value, including missing dependencies, are still returned.
func (i *Injector) Optional(token Token) (any, bool, error) {
	if i.s.disposed.Load() {
		return nil, false, disposedInjector(i.s.name, "get "+tokenName(token))
	}
	if owner, _ := i.s.lookup(token); owner == nil {
		return nil, false, nil
	}
	v, err := i.Get(token)
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

// reenteredLocked reports a circular dependency when token is in flight on
// this scope. The error carries the cycle as seen by the innermost
// resolution creating token. Requires t.mu.
func (s *scope) reenteredLocked(token Token) error {
	owners := s.resolving[token]
	if len(owners) == 0 {
		return nil
	}
	path := owners[len(owners)-1].path
	for idx, t := range path {
		if t == token {
			path = path[idx:]
			break
		}
	}
	return circularDependency(token, path)
}

// doneLocked removes r from the resolutions creating token. Requires t.mu.
func (s *scope) doneLocked(token Token, r *resolution) {
	owners := s.resolving[token]
	for idx := len(owners) - 1; idx >= 0; idx-- {
		if owners[idx] == r {
			owners = append(owners[:idx], owners[idx+1:]...)
			break
		}
	}
	if len(owners) == 0 {
		delete(s.resolving, token)
		return
	}
	s.resolving[token] = owners
}

func newResolution() *resolution {
	return &resolution{inflight: make(map[Token]map[Token]struct{})}
}

// enter and leave count outermost calls, which block Dispose. enter fails
// when token is already being created for this scope: the call re-entered
// the injector from inside one of its own factories.
func (s *scope) enter(token Token) error {
	s.tree.mu.Lock()
	defer s.tree.mu.Unlock()
	if err := s.reenteredLocked(token); err != nil {
		return err
	}
	s.active++
	return nil
}

func (s *scope) leave() {
	s.tree.mu.Lock()
	s.active--
	s.tree.mu.Unlock()
}

// get implements the resolution algorithm for a view carrying a resolution.
func (i *Injector) get(token Token) (any, error) {
	s, r := i.s, i.res
	t := s.tree

	t.mu.Lock()
	if _, busy := r.inflight[token]; busy {
		t.mu.Unlock()
		return nil, circularDependency(token, r.path)
	}
	if err := s.reenteredLocked(token); err != nil {
		t.mu.Unlock()
		return nil, err
	}
	if v, ok := i.findLocked(token); ok {
		t.mu.Unlock()
		return v, nil
	}
	factoryScope, f := s.lookup(token)
	if f == nil {
		t.mu.Unlock()
		return nil, noFactory(token, s.name)
	}
	for _, deps := range r.inflight {
		deps[token] = struct{}{}
	}
	r.inflight[token] = make(map[Token]struct{})
	r.path = append(r.path, token)
	s.resolving[token] = append(s.resolving[token], r)
	t.mu.Unlock()

	start := time.Now()
	value, err := f.Create(i)
	took := time.Since(start)

	t.mu.Lock()
	deps := r.inflight[token]
	delete(r.inflight, token)
	r.path = r.path[:len(r.path)-1]
	s.doneLocked(token, r)
	if err != nil {
		t.mu.Unlock()
		return nil, wrapCreateError(token, s.name, err)
	}

	var releasable Disposable
	if f.AutoDispose {
		d, ok := value.(Disposable)
		if !ok {
			t.mu.Unlock()
			return nil, invalidProvider(token, "auto-disposed value does not implement Disposable")
		}
		releasable = d
	}

	owner := s
	for owner != factoryScope {
		if owner.defines(token) || owner.definesAny(deps) {
			break
		}
		owner = owner.parent
	}

	if owner.disposed.Load() {
		t.mu.Unlock()
		t.release(owner.name, token, releasable)
		return nil, disposedInjector(owner.name, "cache "+token.String())
	}
	if existing, raced := owner.instances[token]; raced {
		t.mu.Unlock()
		t.release(owner.name, token, releasable)
		return existing.value, nil
	}
	owner.instances[token] = &record{value: value, deps: deps}
	if releasable != nil {
		owner.handles = append(owner.handles, handle{token: token, value: releasable})
	}
	t.mu.Unlock()

	t.log.Debug("Instance created", map[string]interface{}{
		logger.FieldToken: token.String(),
		logger.FieldScope: owner.name,
		"requested_in":    s.name,
		"disposable":      releasable != nil,
		"duration_us":     took.Microseconds(),
	})
	if t.observer != nil {
		t.observer.InstanceCreated(owner.name, token, took)
	}
	return value, nil
}

// findLocked walks toward the root looking for a cached record of token
// that no scope between this one and the cache holder shadows. On a hit the
// record's dependencies, and the token itself, are added to every token
// this call is still creating, so their placement accounts for them.
// Requires t.mu.
func (i *Injector) findLocked(token Token) (any, bool) {
	for holder := i.s; holder != nil; holder = holder.parent {
		rec, ok := holder.instances[token]
		if !ok {
			continue
		}
		for a := i.s; a != holder; a = a.parent {
			if a.defines(token) || a.definesAny(rec.deps) {
				return nil, false
			}
		}
		for _, deps := range i.res.inflight {
			deps[token] = struct{}{}
			for d := range rec.deps {
				deps[d] = struct{}{}
			}
		}
		return rec.value, true
	}
	return nil, false
}

// resolveAll resolves tokens in order on behalf of a factory.
func (i *Injector) resolveAll(tokens []Token) ([]any, error) {
	args := make([]any, len(tokens))
	for idx, dep := range tokens {
		v, err := i.Get(dep)
		if err != nil {
			return nil, err
		}
		args[idx] = v
	}
	return args, nil
}
