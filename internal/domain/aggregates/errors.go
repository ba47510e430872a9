package aggregates

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorCode standardizes failure semantics across the progress engine.
type ErrorCode string

const (
	CodeValidation       ErrorCode = "validation"
	CodeNotFound         ErrorCode = "not_found"
	CodeConflict         ErrorCode = "conflict"
	CodeStoreUnavailable ErrorCode = "store_unavailable"
	CodeInternal         ErrorCode = "internal"
)

// Error is the canonical coded error. Keys carry the natural key of the record involved
// so callers can retry store failures without re-deriving context.
type Error struct {
	Code    ErrorCode
	Op      string
	Message string
	Keys    map[string]string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	var b strings.Builder
	op := strings.TrimSpace(e.Op)
	msg := strings.TrimSpace(e.Message)
	switch {
	case op != "" && msg != "":
		fmt.Fprintf(&b, "%s: %s", op, msg)
	case op != "":
		b.WriteString(op)
	case msg != "":
		b.WriteString(msg)
	}
	if len(e.Keys) > 0 {
		names := make([]string, 0, len(e.Keys))
		for k := range e.Keys {
			names = append(names, k)
		}
		sort.Strings(names)
		b.WriteString(" [")
		for i, k := range names {
			if i > 0 {
				b.WriteString(" ")
			}
			fmt.Fprintf(&b, "%s=%s", k, e.Keys[k])
		}
		b.WriteString("]")
	}
	if b.Len() == 0 {
		return string(e.Code)
	}
	fmt.Fprintf(&b, " (%s)", e.Code)
	return b.String()
}

func (e *Error) Unwrap() error { return e.Cause }

// NewError builds a coded error with explicit operation.
func NewError(code ErrorCode, op, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Op:      strings.TrimSpace(op),
		Message: strings.TrimSpace(message),
		Cause:   cause,
	}
}

// WithKeys attaches record keys (alternating name, value) to the error.
func (e *Error) WithKeys(kv ...string) *Error {
	if e == nil || len(kv) == 0 {
		return e
	}
	if e.Keys == nil {
		e.Keys = make(map[string]string, len(kv)/2)
	}
	for i := 0; i+1 < len(kv); i += 2 {
		e.Keys[kv[i]] = kv[i+1]
	}
	return e
}

// Wrap annotates an existing error with a code.
func Wrap(code ErrorCode, op string, err error) *Error {
	if err == nil {
		return nil
	}
	return NewError(code, op, err.Error(), err)
}

func NotFound(op, what string) *Error {
	return NewError(CodeNotFound, op, what+" not found", nil)
}

func Conflict(op, msg string) *Error {
	return NewError(CodeConflict, op, msg, nil)
}

func Validation(op, msg string) *Error {
	return NewError(CodeValidation, op, msg, nil)
}

// IsCode checks whether err (or a wrapped err) carries the given code.
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

// CodeOf extracts the error code when available.
func CodeOf(err error) ErrorCode {
	var coded *Error
	if !errors.As(err, &coded) {
		return ""
	}
	return coded.Code
}
