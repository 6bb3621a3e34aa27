package registration

import (
	"strings"

	errors "github.com/frahmantamala/ngo-platform/internal"
	"github.com/frahmantamala/ngo-platform/internal/core/common/validation"
)

type RequestLinkDTO struct {
	Email string `json:"email"`
}

func (dto RequestLinkDTO) Validate() *errors.AppError {
	return validation.ValidateEmail("email", strings.TrimSpace(dto.Email))
}

// SubmitApplicationDTO is the text part of the application form. The contact
// email is never taken from here; it comes from the registration token.
type SubmitApplicationDTO struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Mission  string `json:"mission"`
	Website  string `json:"website"`
}

func (dto SubmitApplicationDTO) Validate() *errors.AppError {
	validator := validation.NewValidator()

	validator.Field("name", dto.Name).
		Required().
		MinLength(2).
		MaxLength(150)

	validator.Field("category", dto.Category).
		Required().
		OneOf(Categories, errors.ErrCodeInvalidCategory)

	validator.Field("mission", dto.Mission).
		Required().
		MinLength(50).
		MaxLength(1000)

	validator.Field("website", dto.Website).
		MaxLength(255)

	return validator.Validate()
}

func (dto SubmitApplicationDTO) website() *string {
	w := strings.TrimSpace(dto.Website)
	if w == "" {
		return nil
	}
	return &w
}
