package di

import (
	"fmt"
)

// Get resolves key and returns its value as T.
func Get[T any](inj *Injector, key *Key[T]) (T, error) {
	v, err := inj.Get(key)
	if err != nil {
		var zero T
		return zero, err
	}
	return as[T](key, v)
}

// MustGet is like Get but panics on error. Intended for wiring code that
// runs once at startup.
func MustGet[T any](inj *Injector, key *Key[T]) T {
	v, err := Get(inj, key)
	if err != nil {
		panic(err)
	}
	return v
}

// TryGet is the typed form of Injector.Optional.
func TryGet[T any](inj *Injector, key *Key[T]) (T, bool, error) {
	var zero T
	v, ok, err := inj.Optional(key)
	if err != nil || !ok {
		return zero, false, err
	}
	typed, err := as[T](key, v)
	if err != nil {
		return zero, false, err
	}
	return typed, true, nil
}

// Find is the typed form of Injector.Find.
func Find[T any](inj *Injector, key *Key[T]) (T, bool, error) {
	var zero T
	v, ok, err := inj.Find(key)
	if err != nil || !ok {
		return zero, false, err
	}
	typed, err := as[T](key, v)
	if err != nil {
		return zero, false, err
	}
	return typed, true, nil
}

func as[T any](token Token, v any) (T, error) {
	if v == nil {
		var zero T
		return zero, nil
	}
	typed, ok := v.(T)
	if !ok {
		var zero T
		return zero, invalidProvider(token, fmt.Sprintf("resolved %T, not %s", v, typeName[T]()))
	}
	return typed, nil
}

func typeName[T any]() string {
	return fmt.Sprintf("%T", (*T)(nil))[1:]
}

// argError is a dependency that does not fit a typed adapter. The token
// being created is added when the error leaves its factory.
type argError struct {
	reason string
}

func (e *argError) Error() string { return e.reason }

// arg converts a resolved dependency for the typed adapters.
func arg[A any](args []any, idx int) (A, error) {
	var zero A
	if idx >= len(args) {
		return zero, &argError{reason: fmt.Sprintf("missing argument %d", idx)}
	}
	if args[idx] == nil {
		return zero, nil
	}
	v, ok := args[idx].(A)
	if !ok {
		return zero, &argError{reason: fmt.Sprintf("argument %d is %T, not %s", idx, args[idx], typeName[A]())}
	}
	return v, nil
}

// Func0 adapts a typed constructor without dependencies.
func Func0[T any](fn func() (T, error)) FactoryFunc {
	return func(...any) (any, error) { return fn() }
}

// Func1 adapts a typed constructor taking one dependency.
func Func1[A, T any](fn func(A) (T, error)) FactoryFunc {
	return func(args ...any) (any, error) {
		a, err := arg[A](args, 0)
		if err != nil {
			return nil, err
		}
		return fn(a)
	}
}

// Func2 adapts a typed constructor taking two dependencies.
func Func2[A, B, T any](fn func(A, B) (T, error)) FactoryFunc {
	return func(args ...any) (any, error) {
		a, err := arg[A](args, 0)
		if err != nil {
			return nil, err
		}
		b, err := arg[B](args, 1)
		if err != nil {
			return nil, err
		}
		return fn(a, b)
	}
}

// Func3 adapts a typed constructor taking three dependencies.
func Func3[A, B, C, T any](fn func(A, B, C) (T, error)) FactoryFunc {
	return func(args ...any) (any, error) {
		a, err := arg[A](args, 0)
		if err != nil {
			return nil, err
		}
		b, err := arg[B](args, 1)
		if err != nil {
			return nil, err
		}
		c, err := arg[C](args, 2)
		if err != nil {
			return nil, err
		}
		return fn(a, b, c)
	}
}

// Build adapts a FactoryFunc into a BuildFunc for Injectable.
func Build(fn FactoryFunc) BuildFunc {
	return func(args []any) (any, error) { return fn(args...) }
}
