package domain

import (
	"errors"
	"fmt"
)

var (
	ErrCreditNotFound     = errors.New("credit not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrStoreNotFound      = errors.New("store not found")
	ErrAssignmentNotFound = errors.New("assignment not found")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid code or password")
	ErrSessionInvalid     = errors.New("session no longer valid")
	ErrDuplicateCode      = errors.New("code already in use")
	ErrCodeSpaceExhausted = errors.New("could not generate an unused code")
	ErrOwnAdminRemoval    = errors.New("cannot remove your own admin access")
	ErrSelfDelete         = errors.New("cannot delete your own account")
)

// ValidationError carries a user-facing message for malformed input.
// No state is changed when one is returned.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func Validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
