package auth

import (
	errors "github.com/frahmantamala/ngo-platform/internal"
	"github.com/frahmantamala/ngo-platform/internal/core/common/validation"
)

// LoginDTO is the transport shape used by the HTTP handler to accept login requests.
type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (d LoginDTO) Validate() *errors.AppError {
	validator := validation.NewValidator()

	validator.Field("email", d.Email).
		Required().
		Email()

	validator.Field("password", d.Password).
		Required().
		MaxLength(72)

	return validator.Validate()
}
