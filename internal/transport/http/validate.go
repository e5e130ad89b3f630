package http

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "query"} {
			name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return f.Name
	})
	return v
}

// decodeBody reads a JSON body into dst and validates it. It writes the error
// response itself and reports whether the handler may continue.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidRequest)
		return false
	}
	return validStruct(w, dst)
}

func validStruct(w http.ResponseWriter, v any) bool {
	err := validate.Struct(v)
	if err == nil {
		return true
	}
	var vErrs validator.ValidationErrors
	if !errors.As(err, &vErrs) {
		writeError(w, http.StatusBadRequest, msgInvalidRequest)
		return false
	}
	writeFieldErrors(w, fieldErrors(vErrs))
	return false
}

func fieldErrors(vErrs validator.ValidationErrors) []fieldError {
	out := make([]fieldError, 0, len(vErrs))
	for _, fe := range vErrs {
		out = append(out, fieldError{
			Path:    fieldPath(fe),
			Message: fieldMessage(fe),
			Code:    fe.Tag(),
		})
	}
	return out
}

// fieldPath drops the root struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Required"
	case "email":
		return "Invalid email"
	case "url":
		return "Invalid url"
	case "datetime":
		return fmt.Sprintf("Invalid format, expected %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("Expected one of: %s", strings.Join(strings.Fields(fe.Param()), ", "))
	case "min":
		return fmt.Sprintf("Must contain at least %s character(s)", fe.Param())
	case "gt":
		return fmt.Sprintf("Must be greater than %s", fe.Param())
	}
	return "Invalid value"
}

// pathID parses the {name} URL parameter as a positive id.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		writeFieldErrors(w, []fieldError{{
			Path:    name,
			Message: "Expected a positive integer",
			Code:    "invalid_type",
		}})
		return 0, false
	}
	return id, true
}
