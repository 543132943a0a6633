// Package response provides helpers for writing consistent JSON HTTP responses.
//
// Success responses may be any JSON shape. Client errors use one of two
// shapes:
//
//	{ "status": "error", "error": "request body is empty" }             // 400
//	{ "status": 422, "title": "...", "errors": { "name": ["..."] } }   // 422
package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Response is the envelope for plain client errors.
type Response struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

const (
	StatusOK    = "ok"
	StatusError = "error"
)

// ValidationProblem is the 422 body: one list of messages per field,
// keyed by the field's JSON name.
type ValidationProblem struct {
	Status int                 `json:"status"`
	Title  string              `json:"title"`
	Errors map[string][]string `json:"errors"`
}

// WriteJSON writes data as JSON with the given status code.
// Header() → WriteHeader() → body; headers are locked after WriteHeader.
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// GeneralError wraps err into the plain error envelope.
func GeneralError(err error) Response {
	return Response{
		Status: StatusError,
		Error:  err.Error(),
	}
}

// NewValidator returns a validator that reports fields by their JSON
// name, so messages match what the client sent.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// ValidationError converts a validator error into the 422 body. It
// returns false when err is not a validation failure.
func ValidationError(err error) (ValidationProblem, bool) {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return ValidationProblem{}, false
	}

	problem := ValidationProblem{
		Status: http.StatusUnprocessableEntity,
		Title:  "One or more validation errors occurred.",
		Errors: make(map[string][]string, len(errs)),
	}
	for _, e := range errs {
		problem.Errors[e.Field()] = append(problem.Errors[e.Field()], fieldMessage(e))
	}
	return problem, true
}

func fieldMessage(e validator.FieldError) string {
	isString := e.Kind() == reflect.String

	switch e.ActualTag() {
	case "required":
		return fmt.Sprintf("%s is required", e.Field())
	case "min":
		if isString {
			return fmt.Sprintf("%s must be at least %s characters long", e.Field(), e.Param())
		}
		return fmt.Sprintf("%s must be at least %s", e.Field(), e.Param())
	case "max":
		if isString {
			return fmt.Sprintf("%s must be at most %s characters long", e.Field(), e.Param())
		}
		return fmt.Sprintf("%s must be at most %s", e.Field(), e.Param())
	default:
		return fmt.Sprintf("%s is invalid", e.Field())
	}
}
