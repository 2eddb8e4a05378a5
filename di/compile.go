package di

// Compile turns a provider list into a token to Factory table. It fails on
// the first malformed provider and on any token provided twice; scope names
// the owning injector in the duplicate error.
func Compile(scope string, providers ...Provider) (map[Token]*Factory, error) {
	factories := make(map[Token]*Factory, len(providers))
	for _, p := range providers {
		if p == nil {
			return nil, invalidProvider(nil, "nil provider in "+scope)
		}
		token := p.Provides()
		if token == nil {
			return nil, invalidProvider(nil, "provider without token in "+scope)
		}
		if _, exists := factories[token]; exists {
			return nil, duplicateProvider(token, scope)
		}
		f, err := p.compile()
		if err != nil {
			return nil, err
		}
		factories[token] = f
	}
	return factories, nil
}
