package student

import (
	"github.com/go-playground/validator/v10"

	"github.com/elevezen/elevezen/core"
)

var (
	subjectTag  = "subject"
	subjectText = "unknown subject"
)

func init() {
	_ = core.Validate.RegisterValidation(subjectTag, subjectValidation)
	core.RegisterCustomTranslation(subjectTag, subjectText)
}

// subjectValidation checks that the provided subject is a known one.
func subjectValidation(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	for _, s := range Subjects {
		if s == val {
			return true
		}
	}
	return false
}
