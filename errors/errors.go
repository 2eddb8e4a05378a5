package errors

import (
	"fmt"
	"net/http"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// HTTPStatus is the recommended HTTP status code for this error.
	HTTPStatus int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// Is reports whether target is an AppError carrying the same code, so a bare
// code-only AppError works as a sentinel with errors.Is.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// Sentinel returns a code-only AppError intended for errors.Is comparisons.
func Sentinel(code ErrorCode) *AppError {
	return &AppError{Code: code, Message: string(code), HTTPStatus: http.StatusInternalServerError}
}

// --- Container error constructors ---

// containerError builds a 500 error describing a wiring or lifecycle fault.
func containerError(code ErrorCode, details map[string]any, format string, args ...any) *AppError {
	return &AppError{
		Code:       code,
		Message:    fmt.Sprintf(format, args...),
		HTTPStatus: http.StatusInternalServerError,
		Details:    details,
	}
}

// DuplicateProvider reports two providers for the same token within one scope.
func DuplicateProvider(token, scope string) *AppError {
	return containerError(ErrCodeDuplicateProvider, map[string]any{"token": token, "scope": scope},
		"duplicate provider for %s in %s", token, scope)
}

// InvalidProvider reports a malformed provider description for a token.
func InvalidProvider(token, reason string) *AppError {
	return containerError(ErrCodeInvalidProvider, map[string]any{"token": token},
		"invalid provider for %s: %s", token, reason)
}

// NoFactory reports a token that no scope in the chain can produce.
func NoFactory(token, scope string) *AppError {
	return containerError(ErrCodeNoFactory, map[string]any{"token": token, "scope": scope},
		"no provider for %s in %s or its ancestors", token, scope)
}

// CircularDependency reports a resolution that re-entered token; path is the
// chain of tokens being resolved, ending with token.
func CircularDependency(token, path string) *AppError {
	return containerError(ErrCodeCircularDependency, map[string]any{"token": token, "path": path},
		"circular dependency on %s: %s", token, path)
}

// DisposedInjector reports an operation on an injector that was already disposed.
func DisposedInjector(scope, operation string) *AppError {
	return containerError(ErrCodeDisposedInjector, map[string]any{"scope": scope, "operation": operation},
		"cannot %s: injector %s is disposed", operation, scope)
}

// ParentDisposed reports a parent disposed while one of its forks was still alive.
func ParentDisposed(parent, child string) *AppError {
	return containerError(ErrCodeParentDisposed, map[string]any{"scope": parent, "child": child},
		"injector %s disposed before child %s", parent, child)
}

// ResolutionInProgress reports a dispose attempted while tokens were resolving.
func ResolutionInProgress(scope string, tokens []string) *AppError {
	return containerError(ErrCodeResolutionInProgress, map[string]any{"scope": scope, "tokens": tokens},
		"cannot dispose %s while resolving %v", scope, tokens)
}

// DisposalFailed aggregates every failure observed while tearing down a scope.
func DisposalFailed(scope string, failures int, cause error) *AppError {
	return containerError(ErrCodeDisposalFailed, map[string]any{"scope": scope, "failures": failures},
		"%d disposal step(s) failed in %s", failures, scope).WithCause(cause)
}

// --- Request error constructors ---

// ServiceUnavailable reports a service that cannot take requests right now,
// such as a router whose scope is already disposed.
func ServiceUnavailable(service string) *AppError {
	return &AppError{
		Code: ErrCodeServiceUnavailable, Message: fmt.Sprintf("The %s is temporarily unavailable. Please try again.", service),
		HTTPStatus: http.StatusServiceUnavailable, Retryable: true,
		Details: map[string]any{"service": service},
	}
}

// Timeout reports an operation that ran past its deadline.
func Timeout(operation string) *AppError {
	return &AppError{
		Code: ErrCodeTimeout, Message: "The request took too long. Please try again.",
		HTTPStatus: http.StatusGatewayTimeout, Retryable: true,
		Details: map[string]any{"operation": operation},
	}
}

// NotFound creates a new AppError for a resource that was not found.
func NotFound(resource, id string) *AppError {
	details := map[string]any{"resource": resource}
	if id != "" {
		details["id"] = id
	}
	return &AppError{
		Code: ErrCodeNotFound, Message: fmt.Sprintf("The requested %s was not found.", resource),
		HTTPStatus: http.StatusNotFound, Retryable: false, Details: details,
	}
}

// MethodNotAllowed creates a new AppError for a verb a route does not serve.
func MethodNotAllowed(method, path string) *AppError {
	return &AppError{
		Code: ErrCodeMethodNotAllowed, Message: fmt.Sprintf("%s is not allowed on %s", method, path),
		HTTPStatus: http.StatusMethodNotAllowed,
		Details:    map[string]any{"method": method, "path": path},
	}
}

// Conflict creates a new AppError for a conflict with the current state of the resource.
func Conflict(reason string) *AppError {
	return &AppError{
		Code: ErrCodeConflict, Message: reason,
		HTTPStatus: http.StatusConflict, Retryable: false,
	}
}

// InvalidInput creates a new AppError for invalid input.
func InvalidInput(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code: ErrCodeInvalidInput, Message: fmt.Sprintf("Invalid input: %s", reason),
		HTTPStatus: http.StatusBadRequest, Retryable: false, Details: details,
	}
}

// Validation creates a new AppError for validation errors.
func Validation(message string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidInput, Message: message,
		HTTPStatus: http.StatusBadRequest, Retryable: false,
	}
}

// Internal creates a new AppError for an internal server error.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An unexpected error occurred. Please try again or contact support.",
		HTTPStatus: http.StatusInternalServerError, Retryable: false, Cause: cause,
	}
}
