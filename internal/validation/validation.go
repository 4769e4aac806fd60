// Package validation checks decoded request bodies against their struct tags.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/umar/usergroups/internal/apierror"
)

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// Struct validates v and returns one FieldError per failed rule, or nil.
func Struct(v interface{}) ([]apierror.FieldError, error) {
	err := instance().Struct(v)
	if err == nil {
		return nil, nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, err
	}
	fields := make([]apierror.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, apierror.FieldError{
			Field:   fe.Field(),
			Rule:    fe.Tag(),
			Message: message(fe),
		})
	}
	return fields, nil
}

// Normalizer is implemented by request bodies that clean up their fields,
// such as trimming whitespace, before validation.
type Normalizer interface {
	Normalize()
}

// DecodeAndValidate reads a JSON body into dst, normalizes it and checks its
// validate tags. An empty body decodes as an empty object so that required
// fields report 422 rather than 400.
func DecodeAndValidate(r *http.Request, dst interface{}) *apierror.Error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return apierror.BadRequest("invalid request body")
	}
	if n, ok := dst.(Normalizer); ok {
		n.Normalize()
	}
	fields, err := Struct(dst)
	if err != nil {
		slog.Error("failed to validate request", "error", err)
		return apierror.Internal()
	}
	if len(fields) > 0 {
		return apierror.Unprocessable("validation failed", fields...)
	}
	return nil
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", fe.Field())
	case "uuid":
		return fmt.Sprintf("%s must be a valid id", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	}
	return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
}
