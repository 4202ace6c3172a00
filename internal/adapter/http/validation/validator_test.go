package validation_test

import (
	"errors"
	"strings"
	"testing"

	. "github.com/onsi/gomega"

	"todoapi/internal/adapter/http/validation"
	"todoapi/internal/core/model/request"
)

func TestValidateStruct(t *testing.T) {
	RegisterTestingT(t)

	description := "details"

	Expect(validation.ValidateStruct(request.TodoRequest{Title: "Buy milk", Description: &description})).To(Succeed())
	Expect(validation.ValidateStruct(request.TodoRequest{Title: "Buy milk"})).To(Succeed())
}

func TestValidateStruct_MissingTitle(t *testing.T) {
	RegisterTestingT(t)

	err := validation.ValidateStruct(request.TodoRequest{})
	errs := validation.FormatValidationErrors(err)

	Expect(errs).To(HaveLen(1))
	Expect(errs[0].Field).To(Equal("title"))
	Expect(errs[0].Message).To(Equal("Title is required"))
}

func TestValidateStruct_BlankTitle(t *testing.T) {
	RegisterTestingT(t)

	err := validation.ValidateStruct(request.TodoRequest{Title: "   "})
	errs := validation.FormatValidationErrors(err)

	Expect(errs).To(HaveLen(1))
	Expect(errs[0].Message).To(Equal("Title must not be blank"))
}

func TestValidateStruct_TooLong(t *testing.T) {
	RegisterTestingT(t)

	description := strings.Repeat("d", 1001)

	err := validation.ValidateStruct(request.TodoRequest{
		Title:       strings.Repeat("t", 256),
		Description: &description,
	})
	errs := validation.FormatValidationErrors(err)

	Expect(errs).To(HaveLen(2))
	Expect(errs[0].Field).To(Equal("title"))
	Expect(errs[0].Message).To(Equal("Title must be at most 255 characters"))
	Expect(errs[1].Field).To(Equal("description"))
}

func TestFormatValidationErrors_OtherError(t *testing.T) {
	RegisterTestingT(t)

	Expect(validation.FormatValidationErrors(errors.New("boom"))).To(BeEmpty())
}
