package profile

import (
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

var validate = validator.New()

// UpdateRequest is the body of PUT /auth/me. All fields are optional; omitted
// fields are left unchanged by the server. When Password is set the server
// re-checks CurrentPassword and answers 401 if it is wrong — that 401 belongs
// to the caller, not the session (see apiclient.Classify).
type UpdateRequest struct {
	Name            string `json:"name,omitempty" validate:"omitempty,min=1"`
	Email           string `json:"email,omitempty" validate:"omitempty,email"`
	Password        string `json:"password,omitempty"`
	CurrentPassword string `json:"current_password,omitempty" validate:"required_with=Password"`
}

// Validate checks the request client-side before it is sent.
func (r UpdateRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return errors.Wrap(err, "[UpdateRequest.Validate]")
	}
	if r.Password != "" {
		if err := ValidatePasswordStrength(r.Password); err != nil {
			return errors.Wrap(err, "[UpdateRequest.Validate]")
		}
	}
	return nil
}

// ChangesPassword reports whether the request carries a password change.
func (r UpdateRequest) ChangesPassword() bool {
	return r.Password != ""
}
