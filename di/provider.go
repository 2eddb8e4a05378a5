package di

import (
	"context"
	"fmt"
)

// Disposable is implemented by values that hold resources to release when
// the owning Injector is disposed. A provider that opts into automatic
// disposal must produce a Disposable value.
type Disposable interface {
	Dispose(ctx context.Context) error
}

// Factory is the compiled form of a Provider.
type Factory struct {
	// AutoDispose registers the produced value for release with its owner.
	AutoDispose bool
	// Create produces the value. The injector passed in is the one the
	// value was requested from.
	Create func(inj *Injector) (any, error)
}

// Provider describes how to produce the value for one token. Providers are
// built with UseValue, UseFactory, UseClass, UseExisting and UseMethod; a
// bare *Class is also a Provider for itself.
type Provider interface {
	Provides() Token
	compile() (*Factory, error)
}

// ProviderOption configures a provider.
type ProviderOption func(*providerOptions)

type providerOptions struct {
	autoDispose *bool
}

// WithAutoDispose overrides the provider's default disposal participation.
func WithAutoDispose(enabled bool) ProviderOption {
	return func(o *providerOptions) { o.autoDispose = &enabled }
}

func resolveOptions(def bool, opts []ProviderOption) bool {
	var o providerOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.autoDispose != nil {
		return *o.autoDispose
	}
	return def
}

type provider struct {
	token   Token
	compose func() (*Factory, error)
}

func (p *provider) Provides() Token { return p.token }

func (p *provider) compile() (*Factory, error) {
	if p.token == nil {
		return nil, invalidProvider(nil, "missing token")
	}
	return p.compose()
}

// UseValue provides a precomputed value. The value is not disposed unless
// WithAutoDispose(true) is given.
func UseValue(token Token, value any, opts ...ProviderOption) Provider {
	autoDispose := resolveOptions(false, opts)
	return &provider{token: token, compose: func() (*Factory, error) {
		return &Factory{
			AutoDispose: autoDispose,
			Create:      func(*Injector) (any, error) { return value, nil },
		}, nil
	}}
}

// FactoryFunc builds a value from resolved dependencies, in the order they
// were declared.
type FactoryFunc func(args ...any) (any, error)

// UseFactory provides the result of fn applied to the values of deps.
// Automatic disposal is off unless WithAutoDispose(true) is given.
func UseFactory(token Token, deps []Token, fn FactoryFunc, opts ...ProviderOption) Provider {
	autoDispose := resolveOptions(false, opts)
	return &provider{token: token, compose: func() (*Factory, error) {
		if fn == nil {
			return nil, invalidProvider(token, "missing factory function")
		}
		tokens, err := copyDeps(token, deps)
		if err != nil {
			return nil, err
		}
		return &Factory{
			AutoDispose: autoDispose,
			Create: func(inj *Injector) (any, error) {
				args, err := inj.resolveAll(tokens)
				if err != nil {
					return nil, err
				}
				return fn(args...)
			},
		}, nil
	}}
}

// UseClass provides an instance of c for token. Class instances are disposed
// with their owner unless the class or the provider opts out.
func UseClass(token Token, c *Class, opts ...ProviderOption) Provider {
	return &provider{token: token, compose: func() (*Factory, error) {
		if c == nil {
			return nil, invalidProvider(token, "missing class")
		}
		return c.factory(token, resolveOptions(c.autoDispose, opts))
	}}
}

// UseExisting aliases token to target: both resolve to the same instance.
// The alias never owns the value, so it is never disposed through token.
func UseExisting(token, target Token) Provider {
	return &provider{token: token, compose: func() (*Factory, error) {
		if target == nil {
			return nil, invalidProvider(token, "missing alias target")
		}
		if target == token {
			return nil, invalidProvider(token, "alias refers to itself")
		}
		return &Factory{
			Create: func(inj *Injector) (any, error) { return inj.Get(target) },
		}, nil
	}}
}

// UseMethod provides a Bound call of m: the receiver and arguments are
// resolved when the token is resolved, and calling the Bound runs the method.
func UseMethod(token Token, m *Method, opts ...ProviderOption) Provider {
	autoDispose := resolveOptions(false, opts)
	return &provider{token: token, compose: func() (*Factory, error) {
		if m == nil {
			return nil, invalidProvider(token, "missing method")
		}
		return m.factory(token, autoDispose)
	}}
}

func copyDeps(owner Token, deps []Token) ([]Token, error) {
	tokens := make([]Token, len(deps))
	for i, dep := range deps {
		if dep == nil {
			return nil, invalidProvider(owner, fmt.Sprintf("dependency %d has no token", i))
		}
		tokens[i] = dep
	}
	return tokens, nil
}
