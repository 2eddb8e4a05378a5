// Package errors provides the structured error type shared by the container,
// the module layer and the HTTP router. Every failure carries a machine
// readable code, an HTTP status hint and optional details, and renders to an
// RFC 7807 style body with ToResponse.
//
// Container failures use the DUPLICATE_PROVIDER, INVALID_PROVIDER,
// NO_FACTORY, CIRCULAR_DEPENDENCY and lifecycle codes. Because AppError
// matches by code, a code-only value built with Sentinel can be used as an
// errors.Is target:
//
//	if errors.Is(err, di.ErrNoFactory) { ... }
package errors
