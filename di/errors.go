package di

import (
	stderrors "errors"
	"fmt"
	"strings"

	apperrors "github.com/kbukum/crudify/errors"
)

// Sentinels for errors.Is. Every error returned by this package is an
// *apperrors.AppError carrying one of these codes.
var (
	ErrDuplicateProvider            = apperrors.Sentinel(apperrors.ErrCodeDuplicateProvider)
	ErrInvalidProvider              = apperrors.Sentinel(apperrors.ErrCodeInvalidProvider)
	ErrNoFactory                    = apperrors.Sentinel(apperrors.ErrCodeNoFactory)
	ErrCircularDependency           = apperrors.Sentinel(apperrors.ErrCodeCircularDependency)
	ErrDisposed                     = apperrors.Sentinel(apperrors.ErrCodeDisposedInjector)
	ErrParentDisposedBeforeChildren = apperrors.Sentinel(apperrors.ErrCodeParentDisposed)
	ErrResolutionInProgress         = apperrors.Sentinel(apperrors.ErrCodeResolutionInProgress)
	ErrDisposalFailed               = apperrors.Sentinel(apperrors.ErrCodeDisposalFailed)
)

func duplicateProvider(token Token, scope string) error {
	return apperrors.DuplicateProvider(tokenName(token), scope)
}

func invalidProvider(token Token, reason string) error {
	return apperrors.InvalidProvider(tokenName(token), reason)
}

func noFactory(token Token, scope string) error {
	return apperrors.NoFactory(tokenName(token), scope)
}

func circularDependency(token Token, path []Token) error {
	names := make([]string, 0, len(path)+1)
	for _, t := range path {
		names = append(names, tokenName(t))
	}
	names = append(names, tokenName(token))
	return apperrors.CircularDependency(tokenName(token), strings.Join(names, " -> "))
}

func disposedInjector(scope, operation string) error {
	return apperrors.DisposedInjector(scope, operation)
}

func parentDisposed(parent, child string) error {
	return apperrors.ParentDisposed(parent, child)
}

// wrapCreateError passes container errors through untouched so callers can
// match them, and adds the token being created to anything else. Argument
// mismatches of the typed adapters become InvalidProvider for token.
func wrapCreateError(token Token, scope string, err error) error {
	var argErr *argError
	if stderrors.As(err, &argErr) {
		return invalidProvider(token, argErr.Error())
	}
	if _, ok := apperrors.AsAppError(err); ok {
		return err
	}
	return fmt.Errorf("creating %s in %s: %w", tokenName(token), scope, err)
}
