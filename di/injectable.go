package di

// BuildFunc constructs a class instance from its resolved dependencies.
type BuildFunc func(args []any) (any, error)

// Class is a constructible injection target with an explicit, ordered
// dependency list. A *Class is its own token, so it can be listed directly
// in a provider list. Only classes created with Injectable compile.
type Class struct {
	name        string
	deps        []Token
	build       BuildFunc
	autoDispose bool
	marked      bool
}

// Injectable declares a class. Pass WithAutoDispose(false) for classes whose
// instances hold nothing to release.
func Injectable(name string, deps []Token, build BuildFunc, opts ...ProviderOption) *Class {
	return &Class{
		name:        name,
		deps:        deps,
		build:       build,
		autoDispose: resolveOptions(true, opts),
		marked:      true,
	}
}

func (c *Class) String() string { return c.name }

// Provides returns the class itself.
func (c *Class) Provides() Token { return c }

// Deps returns a copy of the declared dependency tokens.
func (c *Class) Deps() []Token { return append([]Token(nil), c.deps...) }

func (c *Class) compile() (*Factory, error) {
	if c == nil {
		return nil, invalidProvider(nil, "nil class")
	}
	return c.factory(c, c.autoDispose)
}

func (c *Class) factory(token Token, autoDispose bool) (*Factory, error) {
	if !c.marked {
		return nil, invalidProvider(token, "class "+c.name+" is not injectable")
	}
	if c.build == nil {
		return nil, invalidProvider(token, "class "+c.name+" has no constructor")
	}
	tokens, err := copyDeps(token, c.deps)
	if err != nil {
		return nil, err
	}
	build := c.build
	return &Factory{
		AutoDispose: autoDispose,
		Create: func(inj *Injector) (any, error) {
			args, err := inj.resolveAll(tokens)
			if err != nil {
				return nil, err
			}
			return build(args)
		},
	}, nil
}

// Bound is the value produced by a method provider: the receiver and
// arguments are already resolved.
type Bound func() (any, error)

// CallFunc invokes a method on recv with its resolved arguments.
type CallFunc func(recv any, args []any) (any, error)

// Method is an injectable method of the value resolved for a receiver token.
// Only methods created with InjectableMethod compile.
type Method struct {
	receiver Token
	name     string
	deps     []Token
	call     CallFunc
	marked   bool
}

// InjectableMethod declares a method of receiver taking the values of deps.
func InjectableMethod(receiver Token, name string, deps []Token, call CallFunc) *Method {
	return &Method{
		receiver: receiver,
		name:     name,
		deps:     deps,
		call:     call,
		marked:   true,
	}
}

func (m *Method) String() string { return tokenName(m.receiver) + "." + m.name }

// Receiver returns the token whose value the method is called on.
func (m *Method) Receiver() Token { return m.receiver }

func (m *Method) factory(token Token, autoDispose bool) (*Factory, error) {
	if !m.marked {
		return nil, invalidProvider(token, "method "+m.name+" is not injectable")
	}
	if m.receiver == nil {
		return nil, invalidProvider(token, "method "+m.name+" has no receiver")
	}
	if m.call == nil {
		return nil, invalidProvider(token, "method "+m.String()+" has no body")
	}
	tokens, err := copyDeps(token, m.deps)
	if err != nil {
		return nil, err
	}
	receiver, call := m.receiver, m.call
	return &Factory{
		AutoDispose: autoDispose,
		Create: func(inj *Injector) (any, error) {
			recv, err := inj.Get(receiver)
			if err != nil {
				return nil, err
			}
			args, err := inj.resolveAll(tokens)
			if err != nil {
				return nil, err
			}
			return Bound(func() (any, error) { return call(recv, args) }), nil
		},
	}, nil
}
