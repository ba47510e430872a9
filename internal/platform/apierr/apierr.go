// Package apierr carries request-shape failures raised by the HTTP layer
// before an engine operation runs. Engine failures travel as domain errors.
package apierr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	CodeInvalidID    = "invalid_id"
	CodeInvalidBody  = "invalid_body"
	CodeUnauthorized = "unauthorized"
	CodeForbidden    = "forbidden"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	return fmt.Sprintf("request rejected (%d)", e.Status)
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// InvalidID rejects a path parameter that is not a non-nil UUID.
func InvalidID(param string) *Error {
	return New(http.StatusBadRequest, CodeInvalidID, fmt.Errorf("invalid %s", param))
}

func Unauthorized(reason string) *Error {
	return New(http.StatusUnauthorized, CodeUnauthorized, errors.New(reason))
}

func Forbidden(reason string) *Error {
	return New(http.StatusForbidden, CodeForbidden, errors.New(reason))
}

// InvalidBody rejects a request body that failed to decode or bind. Binding
// tag failures are flattened to "field failed tag" pairs.
func InvalidBody(err error) *Error {
	return New(http.StatusBadRequest, CodeInvalidBody, describeBodyErr(err))
}

func describeBodyErr(err error) error {
	if err == nil {
		return errors.New("request body is required")
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		parts := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			parts = append(parts, fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag()))
		}
		return fmt.Errorf("%s: %w", strings.Join(parts, "; "), err)
	}
	var syn *json.SyntaxError
	if errors.As(err, &syn) {
		return fmt.Errorf("malformed json at offset %d: %w", syn.Offset, err)
	}
	var typ *json.UnmarshalTypeError
	if errors.As(err, &typ) {
		return fmt.Errorf("%s must be %s: %w", typ.Field, typ.Type, err)
	}
	return err
}
