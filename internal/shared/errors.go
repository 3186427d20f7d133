package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrEmailTaken indicates an email collision on registration or profile update.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials indicates login failure. The same error covers an
	// unknown email and a wrong password so callers cannot enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrInvalidToken indicates a malformed, expired, or wrong-purpose token.
	ErrInvalidToken = errors.New("invalid token")
	// ErrUnauthenticated indicates a missing or unusable access/refresh token.
	ErrUnauthenticated = errors.New("could not validate credentials")
	// ErrUnverified indicates the account has not confirmed its email address.
	ErrUnverified = errors.New("email not verified")
	// ErrWrongPassword indicates a failed current-password check on password change.
	ErrWrongPassword = errors.New("current password is incorrect")
	// ErrForbidden indicates an ownership violation.
	ErrForbidden = errors.New("forbidden")
	// ErrDuplicate indicates a uniqueness constraint violation other than email.
	ErrDuplicate = errors.New("duplicate entry")
)
