package core

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator is the shared struct validator. Field names in errors use the
// json tag so they match what clients sent.
var Validator = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("ioctype", func(fl validator.FieldLevel) bool {
		return IOCType(fl.Field().String()).IsValid()
	})
	_ = v.RegisterValidation("threatlevel", func(fl validator.FieldLevel) bool {
		return ThreatLevel(fl.Field().String()).IsValid()
	})
	_ = v.RegisterValidation("ioctag", func(fl validator.FieldLevel) bool {
		return TagPattern.MatchString(fl.Field().String())
	})
	return v
}

// ValidateStruct runs the shared validator and converts the first failure
// into a ValidationError naming the offending field.
func ValidateStruct(s interface{}) error {
	err := Validator.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	return &ValidationError{Field: fieldPath(fe), Message: describeFieldError(fe)}
}

// fieldPath strips the top-level struct name from the namespace,
// e.g. "IOCSubmission.tags[2]" becomes "tags[2]".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.String || fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must have length at least %s", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String || fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must have length at most %s", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "ioctype":
		return fmt.Sprintf("must be one of %v", AllIOCTypes)
	case "threatlevel":
		return fmt.Sprintf("must be one of %v", AllThreatLevels)
	case "ioctag":
		return "may only contain letters, digits, whitespace, commas, periods and hyphens"
	case "gtefield":
		return fmt.Sprintf("must not be before %s", fe.Param())
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}

// ValidateVar checks a single value against a validator tag and reports
// failures as a ValidationError for field.
func ValidateVar(field string, value interface{}, tag string) error {
	err := Validator.Var(value, tag)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	return &ValidationError{Field: field, Message: describeFieldError(verrs[0])}
}
