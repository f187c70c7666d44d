package entity

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"travel-booking-service/pkg/apperror"
)

var (
	iataPattern     = regexp.MustCompile(`^[A-Z]{3}$`)
	airlinePattern  = regexp.MustCompile(`^[A-Z0-9]{2,3}$`)
	currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)
	countryPattern  = regexp.MustCompile(`^[A-Z]{2}$`)
	slugPattern     = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	passportPattern = regexp.MustCompile(`^[A-Z0-9]{6,12}$`)

	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator returns the shared validator with the domain tags registered. The same
// instance backs entity Validate methods and the HTTP validation middleware.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "" {
				name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			}
			if name == "" {
				name = strings.SplitN(fld.Tag.Get("uri"), ",", 2)[0]
			}
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		mustRegister(v, "iata", regexValidator(iataPattern))
		mustRegister(v, "airline", regexValidator(airlinePattern))
		mustRegister(v, "currency", regexValidator(currencyPattern))
		mustRegister(v, "country", regexValidator(countryPattern))
		mustRegister(v, "slug", regexValidator(slugPattern))
		mustRegister(v, "passport", regexValidator(passportPattern))
		mustRegister(v, "isodate", func(fl validator.FieldLevel) bool {
			_, err := time.Parse(DateLayout, fl.Field().String())
			return err == nil
		})
		mustRegister(v, "timestamp", func(fl validator.FieldLevel) bool {
			_, err := ParseTimestamp(fl.Field().String())
			return err == nil
		})
		validate = v
	})
	return validate
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register validation %s: %v", tag, err))
	}
}

func regexValidator(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}
}

// ValidateStruct runs the tag rules over s and returns every violation
func ValidateStruct(s interface{}) []apperror.FieldViolation {
	return Violations(Validator().Struct(s))
}

// Violations converts a validator error into field violations
func Violations(err error) []apperror.FieldViolation {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []apperror.FieldViolation{{Field: "", Message: err.Error(), Code: "invalid"}}
	}
	out := make([]apperror.FieldViolation, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, apperror.FieldViolation{
			Field:   fieldPath(fe.Namespace()),
			Message: violationMessage(fe),
			Code:    fe.Tag(),
		})
	}
	return out
}

// fieldPath strips the root struct name and embedded struct names:
// "Booking.Lifecycle.status" -> "status", "Booking.flight.origin" -> "flight.origin"
func fieldPath(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	kept := parts[:0]
	for _, p := range parts {
		if p != "" && p[0] >= 'A' && p[0] <= 'Z' {
			continue
		}
		kept = append(kept, p)
	}
	return strings.Join(kept, ".")
}

func violationMessage(fe validator.FieldError) string {
	field := fieldPath(fe.Namespace())
	switch fe.Tag() {
	case "required", "required_with", "required_if":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "url", "http_url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte", "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "lte", "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "iata":
		return fmt.Sprintf("%s must be a 3-letter IATA code", field)
	case "airline":
		return fmt.Sprintf("%s must be a 2-3 character airline code", field)
	case "currency":
		return fmt.Sprintf("%s must be a 3-letter currency code", field)
	case "country":
		return fmt.Sprintf("%s must be a 2-letter country code", field)
	case "slug":
		return fmt.Sprintf("%s must contain lowercase letters, digits and dashes", field)
	case "passport":
		return fmt.Sprintf("%s must be 6-12 uppercase letters or digits", field)
	case "isodate":
		return fmt.Sprintf("%s must be a date in YYYY-MM-DD format", field)
	case "timestamp":
		return fmt.Sprintf("%s must be an ISO-8601 timestamp", field)
	}
	return fmt.Sprintf("%s failed the %s rule", field, fe.Tag())
}

// validationResult turns collected violations into the Validate return value
func validationResult(violations []apperror.FieldViolation) error {
	if len(violations) == 0 {
		return nil
	}
	return apperror.Validation(violations)
}

// decodeEntity decodes rec into dst and fills in its metadata
func decodeEntity(id string, rec Record, dst interface{}, meta *Meta) error {
	if rec == nil {
		rec = Record{}
	}
	if err := decodeRecord(rec, dst); err != nil {
		return err
	}
	meta.ID = id
	meta.normalize(rec)
	return nil
}

// dateAfter reports whether a > b for YYYY-MM-DD dates; unparsable inputs are left to
// the tag rules.
func dateAfter(a, b string) (bool, bool) {
	ta, errA := time.Parse(DateLayout, a)
	tb, errB := time.Parse(DateLayout, b)
	if errA != nil || errB != nil {
		return false, false
	}
	return ta.After(tb), true
}
