package donation

import (
	"strings"

	errors "github.com/frahmantamala/ngo-platform/internal"
	"github.com/frahmantamala/ngo-platform/internal/core/common/validation"
	"github.com/shopspring/decimal"
)

type IntentDTO struct {
	DonorName  string `json:"donor_name"`
	DonorEmail string `json:"donor_email"`
	Amount     string `json:"amount"`
}

// Validate checks the form and returns the amount in cents.
func (dto IntentDTO) Validate() (int64, *errors.AppError) {
	validator := validation.NewValidator()

	validator.Field("donor_email", strings.TrimSpace(dto.DonorEmail)).
		Required().
		Email().
		MaxLength(120)

	validator.Field("donor_name", strings.TrimSpace(dto.DonorName)).
		MaxLength(100)

	validator.Field("amount", dto.Amount).
		Required()

	if appErr := validator.Validate(); appErr != nil {
		return 0, appErr
	}

	return ParseAmount(dto.Amount)
}

// ParseAmount converts a decimal string such as "25.00" into cents. At most two
// fraction digits are accepted.
func ParseAmount(raw string) (int64, *errors.AppError) {
	amount, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return 0, errors.NewValidationFieldError("amount", "amount must be a number", errors.ErrCodeInvalidAmount)
	}
	if !amount.Equal(amount.Truncate(2)) {
		return 0, errors.NewValidationFieldError("amount", "amount must have at most 2 decimal places", errors.ErrCodeInvalidAmount)
	}

	if amount.LessThan(decimal.New(MinAmountCents, -2)) {
		return 0, errors.NewValidationFieldError("amount", "amount must be at least "+FormatCents(MinAmountCents), errors.ErrCodeAmountTooLow)
	}
	if amount.GreaterThan(decimal.New(MaxAmountCents, -2)) {
		return 0, errors.NewValidationFieldError("amount", "amount must not exceed "+FormatCents(MaxAmountCents), errors.ErrCodeAmountTooHigh)
	}
	cents := amount.Shift(2).IntPart()
	return cents, nil
}

func (dto IntentDTO) donorName() string {
	return strings.TrimSpace(dto.DonorName)
}
