package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Container configuration errors, raised while compiling provider lists.
const (
	// ErrCodeDuplicateProvider indicates two providers in one list target the same token.
	ErrCodeDuplicateProvider ErrorCode = "DUPLICATE_PROVIDER"
	// ErrCodeInvalidProvider indicates a malformed provider description.
	ErrCodeInvalidProvider ErrorCode = "INVALID_PROVIDER"
)

// Container resolution errors.
const (
	// ErrCodeNoFactory indicates no scope in the chain defines the token.
	ErrCodeNoFactory ErrorCode = "NO_FACTORY"
	// ErrCodeCircularDependency indicates a token transitively depends on itself.
	ErrCodeCircularDependency ErrorCode = "CIRCULAR_DEPENDENCY"
)

// Container lifecycle errors.
const (
	// ErrCodeDisposedInjector indicates use of an injector after disposal.
	ErrCodeDisposedInjector ErrorCode = "DISPOSED_INJECTOR"
	// ErrCodeParentDisposed indicates a parent was disposed while a fork was alive.
	ErrCodeParentDisposed ErrorCode = "PARENT_DISPOSED_BEFORE_CHILDREN"
	// ErrCodeResolutionInProgress indicates disposal was attempted during a resolution.
	ErrCodeResolutionInProgress ErrorCode = "RESOLUTION_IN_PROGRESS"
	// ErrCodeDisposalFailed indicates one or more release steps failed during teardown.
	ErrCodeDisposalFailed ErrorCode = "DISPOSAL_FAILED"
)

// Request errors
const (
	// ErrCodeNotFound indicates the requested resource was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeMethodNotAllowed indicates the route exists but not for this verb.
	ErrCodeMethodNotAllowed ErrorCode = "METHOD_NOT_ALLOWED"
	// ErrCodeConflict indicates a conflict with the current state of the resource.
	ErrCodeConflict ErrorCode = "CONFLICT"
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// Availability errors (retryable)
const (
	// ErrCodeServiceUnavailable indicates the service is temporarily unavailable.
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	// ErrCodeTimeout indicates the operation timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
)

// ErrCodeInternal indicates an internal server error.
const ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
