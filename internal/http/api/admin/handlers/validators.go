package handlers

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prajanews/newsdesk/internal/models"
)

// init registers the custom "level" validation with gin's binding engine so
// request structs can declare administrative-level fields directly.
func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("level", func(fl validator.FieldLevel) bool {
			return models.ValidLevel(fl.Field().String())
		})
	}
}
