package validator

import (
	"reflect"
	"strings"
	"unicode"

	"naratani-inventory/pkg/apperr"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type ErrorResponse struct {
	FailedField string `json:"field"`
	Tag         string `json:"tag"`
	Value       string `json:"param,omitempty"`
}

var validate = validator.New()

func init() {
	// Report fields by their json/query names so clients can map errors back to inputs
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "query"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})

	// Register custom validation for UUID
	validate.RegisterValidation("uuid_required", func(fl validator.FieldLevel) bool {
		if id, ok := fl.Field().Interface().(uuid.UUID); ok {
			return id != uuid.Nil
		}
		return false
	})
}

func ValidateStruct(data interface{}) []*ErrorResponse {
	var errors []*ErrorResponse
	err := validate.Struct(data)
	if err != nil {
		validationErrors, ok := err.(validator.ValidationErrors)
		if !ok {
			return []*ErrorResponse{{FailedField: "", Tag: "invalid"}}
		}
		for _, err := range validationErrors {
			var element ErrorResponse
			element.FailedField = fieldPath(err.Namespace())
			element.Tag = err.Tag()
			element.Value = err.Param()
			errors = append(errors, &element)
		}
	}
	return errors
}

// Struct validates data and returns an apperr validation error listing every failed field.
func Struct(data interface{}) error {
	errs := ValidateStruct(data)
	if len(errs) == 0 {
		return nil
	}
	return apperr.Validation("Validation failed on field '"+errs[0].FailedField+"'", errs)
}

// fieldPath drops the root struct name, and any embedded struct names after it,
// from a validator namespace.
func fieldPath(ns string) string {
	parts := strings.Split(ns, ".")
	if len(parts) == 1 {
		return ns
	}
	i := 1
	for i < len(parts)-1 && parts[i] != "" && unicode.IsUpper(rune(parts[i][0])) {
		i++
	}
	return strings.Join(parts[i:], ".")
}
