package auth

import (
	"context"
	"errors"
	"net"
)

// Provider-level sentinels. IdentityProvider implementations return these
// (possibly wrapped); Classify turns them into a Failure for display.
var (
	ErrInvalidEmail     = errors.New("invalid email")
	ErrWeakPassword     = errors.New("weak password")
	ErrWrongCredentials = errors.New("wrong credentials")
	ErrEmailInUse       = errors.New("email already in use")
	ErrRateLimited      = errors.New("too many requests")
	ErrUnavailable      = errors.New("identity provider unavailable")
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrNotSupported     = errors.New("operation not supported by this provider")
)

// Category classifies an authentication failure.
type Category int

const (
	Unexpected Category = iota
	InvalidEmail
	WeakPassword
	WrongCredentials
	EmailInUse
	Network
	RateLimited
	Unavailable
	PasswordMismatch
)

func (c Category) String() string {
	switch c {
	case InvalidEmail:
		return "invalid_email"
	case WeakPassword:
		return "weak_password"
	case WrongCredentials:
		return "wrong_credentials"
	case EmailInUse:
		return "email_in_use"
	case Network:
		return "network"
	case RateLimited:
		return "rate_limited"
	case Unavailable:
		return "unavailable"
	case PasswordMismatch:
		return "password_mismatch"
	default:
		return "unexpected"
	}
}

// Failure is what the UI sees of a failed sign-up, sign-in or sign-out.
// Message is safe to display; Err is for logs only.
type Failure struct {
	Category Category
	Message  string
	Err      error
}

func (f *Failure) Error() string {
	if f.Err == nil {
		return "auth: " + f.Category.String()
	}
	return "auth: " + f.Category.String() + ": " + f.Err.Error()
}

func (f *Failure) Unwrap() error { return f.Err }

var messages = map[Category]string{
	InvalidEmail:     "Please enter a valid email address.",
	WeakPassword:     "Password should be at least 6 characters.",
	WrongCredentials: "Incorrect email or password.",
	EmailInUse:       "This email address is already in use.",
	Network:          "Could not connect to the authentication service. Please check your internet connection and try again.",
	RateLimited:      "Access to this account has been temporarily disabled due to many failed login attempts. You can immediately restore it by resetting your password or you can try again later.",
	Unavailable:      "Authentication is not available right now. Please try again later.",
	PasswordMismatch: "Passwords don't match",
	Unexpected:       "An unexpected error occurred. Please try again.",
}

// MessageFor returns the display sentence for c.
func MessageFor(c Category) string {
	return messages[c]
}

// Classify maps err to a Failure. A *Failure passes through unchanged.
func Classify(err error) *Failure {
	if err == nil {
		return nil
	}
	var f *Failure
	if errors.As(err, &f) {
		return f
	}
	c := categoryOf(err)
	return &Failure{Category: c, Message: MessageFor(c), Err: err}
}

func categoryOf(err error) Category {
	switch {
	case errors.Is(err, ErrInvalidEmail):
		return InvalidEmail
	case errors.Is(err, ErrWeakPassword):
		return WeakPassword
	case errors.Is(err, ErrWrongCredentials):
		return WrongCredentials
	case errors.Is(err, ErrEmailInUse):
		return EmailInUse
	case errors.Is(err, ErrRateLimited):
		return RateLimited
	case errors.Is(err, ErrUnavailable), errors.Is(err, ErrNotSupported):
		return Unavailable
	case errors.Is(err, ErrPasswordMismatch):
		return PasswordMismatch
	case errors.Is(err, context.DeadlineExceeded):
		return Network
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return Network
	}
	return Unexpected
}
