package domain

import (
	"github.com/go-playground/validator/v10"
)

// validatorInstance is a package-level validator instance.
// Using a single instance is more efficient as it caches struct information.
var validatorInstance = validator.New()

// UserProfile is the immutable snapshot of the signed-in user, owned by the
// session manager and refreshed only by re-authentication.
type UserProfile struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// LoginInput carries the credentials for a sign-in attempt.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Validate checks the input locally. A failure here means no request is sent.
func (in LoginInput) Validate() error {
	if err := validatorInstance.Struct(in); err != nil {
		return WrapFault(FaultValidation, "Email and password are required.", err)
	}
	return nil
}

// RegisterInput carries the fields for creating a new account. The confirm
// field never leaves the process; it exists only for the local equality check.
type RegisterInput struct {
	Username        string `json:"username" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"-" validate:"required"`
}

// Validate fails fast on malformed registration input, before any network
// call is made.
func (in RegisterInput) Validate() error {
	if in.Password != in.ConfirmPassword {
		return NewFault(FaultValidation, "Passwords do not match.")
	}
	if len(in.Password) < 6 {
		return NewFault(FaultValidation, "Password must be at least 6 characters long.")
	}
	if err := validatorInstance.Struct(in); err != nil {
		return WrapFault(FaultValidation, "Username and a valid email are required.", err)
	}
	return nil
}
