package auth

import (
	"errors"
	"fmt"
	"net/http"

	apperrors "github.com/RealCodeCrafter/trt-backend/pkg/util/errorutil"
)

// ErrorKind classifies authentication failures.
type ErrorKind string

const (
	KindMissing   ErrorKind = "missing"
	KindMalformed ErrorKind = "malformed"
	KindExpired   ErrorKind = "expired"
)

// AuthError reports why a bearer token was not accepted.
type AuthError struct {
	Kind ErrorKind
	Err  error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("token %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("token %s", e.Kind)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// KindOf returns the AuthError kind carried by err, if any.
func KindOf(err error) (ErrorKind, bool) {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr.Kind, true
	}
	return "", false
}

// ForbiddenError is an authorization decision against the request.
type ForbiddenError struct {
	Reason string
}

func (e *ForbiddenError) Error() string {
	return "forbidden: " + e.Reason
}

const (
	reasonMissingIdentity = "missing_identity"
	reasonRoleNotAllowed  = "role_not_allowed"
)

func unauthorized(authErr *AuthError) error {
	message := "invalid token"
	switch authErr.Kind {
	case KindMissing:
		message = "missing authorization header"
	case KindExpired:
		message = "token expired"
	}
	de := apperrors.NewDomainError("UNAUTHORIZED", message, http.StatusUnauthorized, map[string]any{"reason": string(authErr.Kind)})
	de.Err = authErr
	return de
}

func forbidden(reason, message string) error {
	de := apperrors.NewDomainError("FORBIDDEN", message, http.StatusForbidden, map[string]any{"reason": reason})
	de.Err = &ForbiddenError{Reason: reason}
	return de
}
