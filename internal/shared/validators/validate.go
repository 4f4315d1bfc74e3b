package validators

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Custom tags backed by the predicates in this package.
const (
	TagName  = "personname"
	TagPhone = "phone"
	TagURL   = "absurl"
	TagDate  = "calendardate"
	TagEmail = "emailaddr"
)

var (
	sharedOnce sync.Once
	sharedV    *validator.Validate

	taggedOnce sync.Once
	taggedV    *validator.Validate
)

// shared is a plain instance used by the predicates themselves.
func shared() *validator.Validate {
	sharedOnce.Do(func() {
		sharedV = validator.New(validator.WithRequiredStructEnabled())
	})
	return sharedV
}

// Get returns the struct validator with the custom tags registered and
// field names reported by their json tag.
func Get() *validator.Validate {
	taggedOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(jsonFieldName)
		mustRegister(v, TagName, IsValidName)
		mustRegister(v, TagPhone, IsValidPhone)
		mustRegister(v, TagURL, IsValidURL)
		mustRegister(v, TagDate, IsValidDate)
		mustRegister(v, TagEmail, IsValidEmail)
		taggedV = v
	})
	return taggedV
}

func mustRegister(v *validator.Validate, tag string, pred func(string) bool) {
	err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		return pred(fl.Field().String())
	})
	if err != nil {
		panic(fmt.Sprintf("register validation %s: %v", tag, err))
	}
}

func jsonFieldName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}

// Message renders a human-readable message for a failed tag.
func Message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case TagName:
		return fmt.Sprintf("%s must be %d-%d characters and contain only letters, spaces, hyphens or apostrophes", field, NameMinLen, NameMaxLen)
	case TagEmail, "email":
		return field + " must be a valid email address"
	case TagPhone:
		return field + " must be a valid phone number"
	case TagURL, "url":
		return field + " must be a valid URL"
	case TagDate:
		return field + " must be a valid date"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	default:
		return field + " is invalid"
	}
}
