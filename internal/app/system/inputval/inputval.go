// Package inputval validates request input with struct tags.
//
// Rules come from go-playground/validator plus a few app-specific ones:
//
//	httpurl    absolute http(s) URL
//	objectid   24-character hex Mongo ObjectID
//	field      one of models.ChallengeFields
//	doctype    one of models.DocTypes
//
// The optional `label` tag names the field in messages ("Title is required.").
package inputval

import (
	"fmt"
	"net/url"
	"reflect"
	"strings"
	"sync"

	"github.com/dalemusser/docthrough/internal/domain/models"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	once sync.Once
	v    *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		v = validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			if l := f.Tag.Get("label"); l != "" {
				return l
			}
			return f.Name
		})
		_ = v.RegisterValidation("httpurl", func(fl validator.FieldLevel) bool {
			return IsValidHTTPURL(fl.Field().String())
		})
		_ = v.RegisterValidation("objectid", func(fl validator.FieldLevel) bool {
			return IsValidObjectID(fl.Field().String())
		})
		_ = v.RegisterValidation("field", func(fl validator.FieldLevel) bool {
			return oneOf(fl.Field().String(), models.ChallengeFields)
		})
		_ = v.RegisterValidation("doctype", func(fl validator.FieldLevel) bool {
			return oneOf(fl.Field().String(), models.DocTypes)
		})
	})
	return v
}

// FieldError is a single human-readable validation failure.
type FieldError struct {
	Field   string
	Message string
}

// Result holds the outcome of Validate.
type Result struct {
	Errors []FieldError
}

// HasErrors reports whether validation failed.
func (r *Result) HasErrors() bool { return len(r.Errors) > 0 }

// First returns the first message, or "" when valid.
func (r *Result) First() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0].Message
}

// All joins every message with "; ".
func (r *Result) All() string {
	msgs := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		msgs = append(msgs, e.Message)
	}
	return strings.Join(msgs, "; ")
}

// Validate checks input (a struct or pointer to struct) against its tags.
func Validate(input any) *Result {
	res := &Result{}
	err := instance().Struct(input)
	if err == nil {
		return res
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		res.Errors = append(res.Errors, FieldError{Message: err.Error()})
		return res
	}
	for _, fe := range verrs {
		res.Errors = append(res.Errors, FieldError{
			Field:   fe.StructField(),
			Message: message(fe),
		})
	}
	return res
}

func message(fe validator.FieldError) string {
	label := fe.Field()
	switch fe.Tag() {
	case "required":
		return label + " is required."
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters.", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s.", label, fe.Param())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters.", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s.", label, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s.", label, fe.Param())
	case "email":
		return "A valid email address is required."
	case "httpurl":
		return label + " must be a valid absolute URL (e.g., https://example.com)."
	case "objectid":
		return label + " is not a valid id."
	case "field":
		return label + " must be one of: " + strings.Join(models.ChallengeFields, ", ") + "."
	case "doctype":
		return label + " must be one of: " + strings.Join(models.DocTypes, ", ") + "."
	case "oneof":
		return label + " must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ") + "."
	}
	return label + " is invalid."
}

// IsValidHTTPURL reports whether s is an absolute http or https URL.
func IsValidHTTPURL(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// IsValidObjectID reports whether s is a hex ObjectID.
func IsValidObjectID(s string) bool {
	_, err := primitive.ObjectIDFromHex(strings.TrimSpace(s))
	return err == nil
}

func oneOf(s string, allowed []string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, a := range allowed {
		if s == a {
			return true
		}
	}
	return false
}
