package validation_test

import (
	"testing"

	errors "github.com/frahmantamala/ngo-platform/internal"
	"github.com/frahmantamala/ngo-platform/internal/core/common/validation"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestValidation(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Validation Suite")
}

var _ = Describe("ValidationBuilder", func() {
	It("collects one error per failing field", func() {
		v := validation.NewValidator()
		v.Field("name", "").Required().MinLength(2)
		v.Field("mission", "short").MinLength(50)
		v.Field("category", "Health").OneOf([]string{"Health", "Arts"}, errors.ErrCodeInvalidCategory)

		appErr := v.Validate()

		Expect(appErr).NotTo(BeNil())
		details, ok := appErr.Details.(errors.ValidationErrors)
		Expect(ok).To(BeTrue())
		Expect(details.Errors).To(HaveLen(2))
		Expect(details.Errors[0].Field).To(Equal("name"))
		Expect(details.Errors[1].Field).To(Equal("mission"))
	})

	It("returns nil when every field passes", func() {
		v := validation.NewValidator()
		v.Field("amount", int64(2500)).Required().MinInt(100, errors.ErrCodeAmountTooLow).MaxInt(99999999, errors.ErrCodeAmountTooHigh)
		Expect(v.Validate()).To(BeNil())
	})

	It("reports the configured code for range failures", func() {
		v := validation.NewValidator()
		v.Field("amount", int64(50)).MinInt(100, errors.ErrCodeAmountTooLow)

		appErr := v.Validate()
		Expect(appErr).NotTo(BeNil())
		Expect(appErr.Details.(errors.ValidationErrors).Errors[0].Code).To(Equal(string(errors.ErrCodeAmountTooLow)))
	})

	DescribeTable("email format",
		func(email string, valid bool) {
			Expect(validation.IsEmail(email)).To(Equal(valid))
		},
		Entry("plain address", "donor@example.org", true),
		Entry("subaddress", "donor+ngo@example.org", true),
		Entry("missing domain dot", "donor@localhost", false),
		Entry("display name form", "Donor <donor@example.org>", false),
		Entry("no at sign", "donor.example.org", false),
		Entry("empty", "", false),
	)

	It("validates email length and presence together", func() {
		Expect(validation.ValidateEmail("email", "")).NotTo(BeNil())
		Expect(validation.ValidateEmail("email", "ok@example.org")).To(BeNil())
	})
})
