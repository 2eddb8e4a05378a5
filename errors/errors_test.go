package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestContainerErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     *AppError
		code    ErrorCode
		message string
	}{
		{"duplicate", DuplicateProvider("Logger", "root"), ErrCodeDuplicateProvider, "duplicate provider for Logger in root"},
		{"invalid", InvalidProvider("Logger", "no factory"), ErrCodeInvalidProvider, "invalid provider for Logger: no factory"},
		{"no factory", NoFactory("Logger", "root.1"), ErrCodeNoFactory, "no provider for Logger in root.1 or its ancestors"},
		{"circular", CircularDependency("A", "A -> B -> A"), ErrCodeCircularDependency, "circular dependency on A: A -> B -> A"},
		{"disposed", DisposedInjector("root", "get"), ErrCodeDisposedInjector, "cannot get: injector root is disposed"},
		{"parent disposed", ParentDisposed("root", "root.1"), ErrCodeParentDisposed, "injector root disposed before child root.1"},
		{"resolving", ResolutionInProgress("root", []string{"A"}), ErrCodeResolutionInProgress, "cannot dispose root while resolving [A]"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err.Code != tc.code {
				t.Errorf("expected code %s, got %s", tc.code, tc.err.Code)
			}
			if tc.err.Message != tc.message {
				t.Errorf("expected message %q, got %q", tc.message, tc.err.Message)
			}
			if tc.err.HTTPStatus != http.StatusInternalServerError || tc.err.Retryable {
				t.Errorf("expected non-retryable 500, got %d retryable=%v", tc.err.HTTPStatus, tc.err.Retryable)
			}
		})
	}
}

func TestAppError_Is_MatchesByCode(t *testing.T) {
	sentinel := Sentinel(ErrCodeNoFactory)
	err := NoFactory("Logger", "root")

	if !stderrors.Is(err, sentinel) {
		t.Error("expected NoFactory to match the NO_FACTORY sentinel")
	}
	if stderrors.Is(err, Sentinel(ErrCodeCircularDependency)) {
		t.Error("expected NoFactory not to match a different code")
	}

	wrapped := fmt.Errorf("resolving users: %w", err)
	if !stderrors.Is(wrapped, sentinel) {
		t.Error("expected wrapped error to match sentinel")
	}
}

func TestAppError_DisposalFailed_ReachesCauses(t *testing.T) {
	first := fmt.Errorf("close db")
	second := fmt.Errorf("flush cache")
	err := DisposalFailed("root", 2, stderrors.Join(first, second))

	if !stderrors.Is(err, first) || !stderrors.Is(err, second) {
		t.Error("expected errors.Is to reach every joined cause")
	}
	if err.Details["failures"] != 2 {
		t.Errorf("expected failures=2, got %v", err.Details["failures"])
	}
	if !strings.Contains(err.Error(), "close db") {
		t.Errorf("expected Error() to contain cause, got %q", err.Error())
	}
}

func TestAppError_ContainerConstructors_Table(t *testing.T) {
	tests := []struct {
		name    string
		err     *AppError
		code    ErrorCode
		message string
	}{
		{"DuplicateProvider", DuplicateProvider("Config", "root"), ErrCodeDuplicateProvider, "Config"},
		{"InvalidProvider", InvalidProvider("Users", "not injectable"), ErrCodeInvalidProvider, "not injectable"},
		{"NoFactory", NoFactory("Logger", "request"), ErrCodeNoFactory, "Logger"},
		{"CircularDependency", CircularDependency("A", "A -> B -> A"), ErrCodeCircularDependency, "A -> B -> A"},
		{"DisposedInjector", DisposedInjector("root", "get"), ErrCodeDisposedInjector, "disposed"},
		{"ParentDisposed", ParentDisposed("root", "child"), ErrCodeParentDisposed, "child"},
		{"ResolutionInProgress", ResolutionInProgress("root", []string{"A"}), ErrCodeResolutionInProgress, "resolving"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err.Code != tc.code {
				t.Errorf("expected code %s, got %s", tc.code, tc.err.Code)
			}
			if !strings.Contains(tc.err.Message, tc.message) {
				t.Errorf("expected message to contain %q, got %q", tc.message, tc.err.Message)
			}
			if tc.err.Retryable {
				t.Error("container errors should not be retryable")
			}
		})
	}
}

func TestAppError_NotFound_Success(t *testing.T) {
	err := NotFound("user", "123")
	if err.Code != ErrCodeNotFound {
		t.Errorf("expected NOT_FOUND, got %s", err.Code)
	}
	if err.HTTPStatus != http.StatusNotFound {
		t.Errorf("expected 404, got %d", err.HTTPStatus)
	}
	if err.Details["resource"] != "user" {
		t.Errorf("expected resource=user, got %v", err.Details["resource"])
	}
	if err.Details["id"] != "123" {
		t.Errorf("expected id=123, got %v", err.Details["id"])
	}
}

func TestAppError_NotFound_EmptyID(t *testing.T) {
	err := NotFound("user", "")
	if _, ok := err.Details["id"]; ok {
		t.Error("expected no 'id' key in details when id is empty")
	}
}

func TestAppError_Internal_Success(t *testing.T) {
	cause := fmt.Errorf("db connection lost")
	err := Internal(cause)
	if err.Code != ErrCodeInternal {
		t.Errorf("expected INTERNAL_ERROR, got %s", err.Code)
	}
	if err.HTTPStatus != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", err.HTTPStatus)
	}
	if err.Cause != cause {
		t.Error("expected cause to be set")
	}
}

func TestAppError_WithDetail_NilMap(t *testing.T) {
	err := &AppError{}
	err.WithDetail("key", "value")
	if err.Details["key"] != "value" {
		t.Errorf("expected key=value, got %v", err.Details["key"])
	}
}

func TestAppError_Unwrap_Success(t *testing.T) {
	cause := fmt.Errorf("underlying")
	err := Internal(cause)
	if err.Unwrap() != cause {
		t.Error("Unwrap should return the cause")
	}
	if NotFound("x", "").Unwrap() != nil {
		t.Error("Unwrap should return nil when no cause")
	}
}

func TestAppError_RequestConstructors_Table(t *testing.T) {
	tests := []struct {
		name      string
		err       *AppError
		code      ErrorCode
		status    int
		retryable bool
	}{
		{"ServiceUnavailable", ServiceUnavailable("api"), ErrCodeServiceUnavailable, http.StatusServiceUnavailable, true},
		{"Timeout", Timeout("query"), ErrCodeTimeout, http.StatusGatewayTimeout, true},
		{"MethodNotAllowed", MethodNotAllowed("PUT", "/users"), ErrCodeMethodNotAllowed, http.StatusMethodNotAllowed, false},
		{"Conflict", Conflict("version mismatch"), ErrCodeConflict, http.StatusConflict, false},
		{"InvalidInput", InvalidInput("email", "must be valid"), ErrCodeInvalidInput, http.StatusBadRequest, false},
		{"Validation", Validation("bad input"), ErrCodeInvalidInput, http.StatusBadRequest, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err.Code != tc.code {
				t.Errorf("expected code %s, got %s", tc.code, tc.err.Code)
			}
			if tc.err.HTTPStatus != tc.status {
				t.Errorf("expected status %d, got %d", tc.status, tc.err.HTTPStatus)
			}
			if tc.err.Retryable != tc.retryable {
				t.Errorf("expected retryable=%v, got %v", tc.retryable, tc.err.Retryable)
			}
		})
	}
}

func TestAppError_ToResponse_Success(t *testing.T) {
	resp := NotFound("user", "42").ToResponse("req-9")
	if resp.Error.RequestID != "req-9" {
		t.Errorf("expected request id req-9, got %q", resp.Error.RequestID)
	}
	if resp.Error.Code != ErrCodeNotFound {
		t.Errorf("expected code NOT_FOUND in response, got %s", resp.Error.Code)
	}
	if resp.Error.Details["resource"] != "user" {
		t.Error("expected resource=user in response details")
	}
}

func TestAppError_AsAppError_Success(t *testing.T) {
	wrapped := fmt.Errorf("wrap: %w", Internal(nil))

	got, ok := AsAppError(wrapped)
	if !ok {
		t.Fatal("expected AsAppError to succeed for wrapped AppError")
	}
	if got.Code != ErrCodeInternal {
		t.Errorf("expected INTERNAL_ERROR, got %s", got.Code)
	}
	if _, ok := AsAppError(fmt.Errorf("not an app error")); ok {
		t.Error("expected AsAppError to return false for non-AppError")
	}
}

func TestWrap(t *testing.T) {
	if Wrap(nil) != nil {
		t.Error("Wrap(nil) should return nil")
	}

	orig := NotFound("item", "1")
	if got := Wrap(fmt.Errorf("outer: %w", orig)); got != orig {
		t.Error("Wrap should return the AppError found in the chain")
	}

	plain := fmt.Errorf("something broke")
	got := Wrap(plain)
	if got.Code != ErrCodeInternal {
		t.Errorf("expected INTERNAL_ERROR, got %s", got.Code)
	}
	if got.Cause != plain {
		t.Error("expected cause to be the original error")
	}
}
