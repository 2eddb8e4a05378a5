package di

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kbukum/crudify/logger"
)

// Observer receives instance lifecycle notifications from every injector in
// a tree. Implementations must be safe for concurrent use.
type Observer interface {
	InstanceCreated(scope string, token Token, took time.Duration)
	InstanceDisposed(scope string, token Token, err error)
}

// Option configures an Injector.
type Option func(*options)

type options struct {
	name     string
	log      *logger.Logger
	observer Observer
}

// WithName sets the scope name used in errors and logs.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithLogger sets the logger for the injector tree. Ignored by Fork.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithObserver sets the lifecycle observer for the injector tree. Ignored by Fork.
func WithObserver(obs Observer) Option {
	return func(o *options) { o.observer = obs }
}

// tree is shared by an injector and all of its forks. mu guards the
// instance caches, dispose stacks and listeners of every scope in the
// tree; it is never held while a factory or a release runs.
type tree struct {
	mu       sync.Mutex
	log      *logger.Logger
	observer Observer
	forks    atomic.Int64
}

type record struct {
	value any
	deps  map[Token]struct{}
}

type handle struct {
	token Token
	value Disposable
}

type listener struct {
	fn func(ctx context.Context) error
}

type scope struct {
	tree      *tree
	name      string
	parent    *scope
	factories map[Token]*Factory

	instances map[Token]*record
	// resolving holds, per token, the resolutions requested from this
	// scope that are creating it, innermost last.
	resolving map[Token][]*resolution
	handles   []handle
	listeners []*listener
	active    int
	disposed  atomic.Bool

	// detach removes the guard this scope installed on its parent.
	detach func()
}

// resolution is the bookkeeping of one outermost Get call: the tokens being
// created, in order, each with the dependencies observed so far.
type resolution struct {
	path     []Token
	inflight map[Token]map[Token]struct{}
}

// Injector is a scope in a tree of containers. Values are created on demand
// from the scope's own providers or an ancestor's, cached at the highest
// scope whose view of their dependencies is the same, and released in
// reverse creation order when their owning scope is disposed.
//
// Resolution bookkeeping belongs to each outermost Get call. The tokens an
// Injector is creating are also tracked on the Injector itself, so a factory
// that calls back into an injector it captured still fails with a circular
// dependency; an Injector must therefore be driven from one goroutine at a
// time, while sibling forks may resolve concurrently. The injector passed to
// a factory carries the bookkeeping of the call that invoked it and must not
// escape the factory.
type Injector struct {
	s   *scope
	res *resolution
}

// New creates a root injector from a provider list.
func New(providers []Provider, opts ...Option) (*Injector, error) {
	o := options{name: "root"}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logger.Get("di")
	}
	t := &tree{log: o.log, observer: o.observer}
	s, err := newScope(t, o.name, nil, providers)
	if err != nil {
		return nil, err
	}
	return &Injector{s: s}, nil
}

func newScope(t *tree, name string, parent *scope, providers []Provider) (*scope, error) {
	factories, err := Compile(name, providers...)
	if err != nil {
		return nil, err
	}
	return &scope{
		tree:      t,
		name:      name,
		parent:    parent,
		factories: factories,
		instances: make(map[Token]*record),
		resolving: make(map[Token][]*resolution),
	}, nil
}

// Fork creates a child injector whose providers shadow this injector's.
// The child must be disposed before this injector.
func (i *Injector) Fork(providers []Provider, opts ...Option) (*Injector, error) {
	if i.s.disposed.Load() {
		return nil, disposedInjector(i.s.name, "fork")
	}
	o := options{name: fmt.Sprintf("%s.%d", i.s.name, i.s.tree.forks.Add(1))}
	for _, opt := range opts {
		opt(&o)
	}
	child, err := newScope(i.s.tree, o.name, i.s, providers)
	if err != nil {
		return nil, err
	}
	detach, err := i.OnDispose(func(context.Context) error {
		if child.disposed.Load() {
			return nil
		}
		return parentDisposed(i.s.name, child.name)
	})
	if err != nil {
		return nil, err
	}
	child.detach = detach
	return &Injector{s: child}, nil
}

// OnDispose registers fn to run when the injector is disposed. Listeners run
// concurrently before any instance is released. The returned function
// removes the listener.
func (i *Injector) OnDispose(fn func(ctx context.Context) error) (func(), error) {
	s := i.s
	l := &listener{fn: fn}

	s.tree.mu.Lock()
	defer s.tree.mu.Unlock()
	if s.disposed.Load() {
		return nil, disposedInjector(s.name, "register dispose listener")
	}
	s.listeners = append(s.listeners, l)

	return func() {
		s.tree.mu.Lock()
		defer s.tree.mu.Unlock()
		if idx := slices.Index(s.listeners, l); idx >= 0 {
			s.listeners = slices.Delete(s.listeners, idx, idx+1)
		}
	}, nil
}

// Name returns the scope name.
func (i *Injector) Name() string { return i.s.name }

// Parent returns the parent injector, or nil for a root.
func (i *Injector) Parent() *Injector {
	if i.s.parent == nil {
		return nil
	}
	return &Injector{s: i.s.parent}
}

// Disposed reports whether Dispose has been called.
func (i *Injector) Disposed() bool { return i.s.disposed.Load() }

// Provides reports whether this injector's own provider list defines token.
func (i *Injector) Provides(token Token) bool {
	_, ok := i.s.factories[token]
	return ok
}

// Tokens returns the tokens this injector's own provider list defines,
// sorted by name.
func (i *Injector) Tokens() []Token {
	tokens := make([]Token, 0, len(i.s.factories))
	for t := range i.s.factories {
		tokens = append(tokens, t)
	}
	slices.SortFunc(tokens, func(a, b Token) int { return cmp.Compare(a.String(), b.String()) })
	return tokens
}

func (s *scope) defines(token Token) bool {
	_, ok := s.factories[token]
	return ok
}

func (s *scope) definesAny(tokens map[Token]struct{}) bool {
	for t := range tokens {
		if s.defines(t) {
			return true
		}
	}
	return false
}

func (s *scope) lookup(token Token) (*scope, *Factory) {
	for a := s; a != nil; a = a.parent {
		if f, ok := a.factories[token]; ok {
			return a, f
		}
	}
	return nil, nil
}
