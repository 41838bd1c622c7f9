package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/yeremiapane/restaurant-booking/models"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// validateStruct runs the struct tags and converts failures to a ValidationError.
func validateStruct(s interface{}) *ValidationError {
	verr := &ValidationError{}
	err := validate.Struct(s)
	if err == nil {
		return verr
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		verr.add("request", err.Error())
		return verr
	}
	for _, fe := range fieldErrs {
		verr.add(fe.Field(), fieldMessage(fe))
	}
	return verr
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return "must be one of: " + fe.Param()
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	}
	return "is invalid"
}

// parseSlot parses a YYYY-MM-DD date and HH:MM time in loc. Field errors are
// recorded on verr under dateField/timeField.
func parseSlot(verr *ValidationError, dateField, date, timeField, clock string, loc *time.Location) (time.Time, bool) {
	if _, err := time.ParseInLocation(models.DateLayout, date, loc); err != nil {
		verr.add(dateField, "must be a date in YYYY-MM-DD format")
		return time.Time{}, false
	}
	if _, err := time.ParseInLocation(models.TimeLayout, clock, loc); err != nil {
		verr.add(timeField, "must be a time in HH:MM format")
		return time.Time{}, false
	}
	start, err := time.ParseInLocation(models.DateLayout+" "+models.TimeLayout, date+" "+clock, loc)
	if err != nil {
		verr.add(dateField, "is invalid")
		return time.Time{}, false
	}
	return start, true
}
