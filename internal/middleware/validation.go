package middleware

import (
	"errors"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/jwalitptl/clinic-dashboard/pkg/httputil"
)

// FHIRDateLayout is the accepted birthdate format.
const FHIRDateLayout = "2006-01-02"

// ValidationError represents a validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationConfig represents validation middleware configuration
type ValidationConfig struct {
	CustomValidators    map[string]validator.Func
	CustomErrorMessages map[string]string
}

func DefaultValidationConfig() ValidationConfig {
	return ValidationConfig{
		CustomValidators: map[string]validator.Func{
			"fhirdate": validateFHIRDate,
		},
		CustomErrorMessages: map[string]string{
			"required": "Field is required",
			"fhirdate": "Must be a date in YYYY-MM-DD format",
			"oneof":    "Value is not one of the allowed options",
			"max":      "Value is too long",
		},
	}
}

func validateFHIRDate(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" {
		return true
	}
	_, err := time.Parse(FHIRDateLayout, s)
	return err == nil
}

// fieldName reports the query or JSON name of a field in validation errors.
func fieldName(fld reflect.StructField) string {
	for _, tag := range []string{"form", "json"} {
		name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return fld.Name
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}

// RegisterValidators installs the custom rules on gin's validator engine.
func RegisterValidators(config ValidationConfig) error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	for tag, fn := range config.CustomValidators {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	v.RegisterTagNameFunc(fieldName)
	return nil
}

// FieldErrors lists the invalid fields of a validator failure. Other errors
// yield nil.
func (config ValidationConfig) FieldErrors(err error) []ValidationError {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return nil
	}
	out := make([]ValidationError, 0, len(errs))
	for _, e := range errs {
		msg := config.CustomErrorMessages[e.Tag()]
		if msg == "" {
			msg = e.Error()
		}
		out = append(out, ValidationError{Field: e.Field(), Message: msg})
	}
	return out
}

// Validation renders binding failures attached with c.Error as a 400
// listing each invalid field.
func Validation(config ValidationConfig) gin.HandlerFunc {
	if err := RegisterValidators(config); err != nil {
		panic(err)
	}

	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		var validationErrors []ValidationError
		for _, err := range c.Errors {
			validationErrors = append(validationErrors, config.FieldErrors(err.Err)...)
		}

		if len(validationErrors) > 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, httputil.Response{
				Status:  httputil.StatusError,
				Message: "Invalid request. Please check your input.",
				Data:    gin.H{"errors": validationErrors},
			})
		}
	}
}
