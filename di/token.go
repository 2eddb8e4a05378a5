package di

// Token names a capability an Injector can resolve. Tokens are map keys and
// compare by identity: two *Key values are distinct even when their names
// match, while Name tokens compare by their string.
type Token interface {
	String() string
}

// Key is a unique, typed token. The type parameter is used by the generic
// helpers Get, MustGet, TryGet and Find to return a typed value.
type Key[T any] struct {
	name string
}

// NewKey creates a new unique token for values of type T.
func NewKey[T any](name string) *Key[T] {
	return &Key[T]{name: name}
}

func (k *Key[T]) String() string { return k.name }

// Name is a string token.
type Name string

func (n Name) String() string { return string(n) }

func tokenName(t Token) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
