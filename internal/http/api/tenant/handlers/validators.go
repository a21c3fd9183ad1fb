package handlers

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prajanews/newsdesk/internal/reporter"
)

// init registers the custom "mobile" validation with gin's binding engine:
// the field must normalize to at least ten digits.
func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("mobile", func(fl validator.FieldLevel) bool {
			_, err := reporter.NormalizeMobile(fl.Field().String())
			return err == nil
		})
	}
}
