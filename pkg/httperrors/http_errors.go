package httperrors

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

var (
	ErrBadRequest   = errors.New("bad request")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrInternal     = errors.New("internal server error")
)

type RestErr interface {
	Status() int
	Error() string
	Causes() interface{}
}

type RestError struct {
	ErrStatus int         `json:"status,omitempty"`
	ErrError  string      `json:"error,omitempty"`
	ErrCauses interface{} `json:"-"`
}

func (e RestError) Error() string {
	return fmt.Sprintf("status: %d - errors: %s - causes: %v", e.ErrStatus, e.ErrError, e.ErrCauses)
}

func (e RestError) Status() int {
	return e.ErrStatus
}

func (e RestError) Causes() interface{} {
	return e.ErrCauses
}

func NewRestError(status int, err string, causes interface{}) RestErr {
	return RestError{
		ErrStatus: status,
		ErrError:  err,
		ErrCauses: causes,
	}
}

// NewNotFoundError marks a missing container, track or task.
func NewNotFoundError(msg string) error {
	return errors.Wrap(ErrNotFound, msg)
}

// NewBadRequestError marks a precondition the caller violated.
func NewBadRequestError(msg string) error {
	return errors.Wrap(ErrBadRequest, msg)
}

// NewConflictError marks a lost optimistic-concurrency race. The caller should retry with fresh state.
func NewConflictError(msg string) error {
	return errors.Wrap(ErrConflict, msg)
}

func NewUnauthorizedError(msg string) error {
	return errors.Wrap(ErrUnauthorized, msg)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsBadRequest(err error) bool {
	return errors.Is(err, ErrBadRequest)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

func ParseErrors(err error) RestErr {
	switch {
	case errors.Is(err, sql.ErrNoRows), errors.Is(err, ErrNotFound):
		return NewRestError(http.StatusNotFound, trimSentinel(err, ErrNotFound), err)
	case errors.Is(err, ErrBadRequest):
		return NewRestError(http.StatusBadRequest, trimSentinel(err, ErrBadRequest), err)
	case errors.Is(err, ErrConflict):
		return NewRestError(http.StatusConflict, trimSentinel(err, ErrConflict), err)
	case errors.Is(err, ErrUnauthorized):
		return NewRestError(http.StatusUnauthorized, ErrUnauthorized.Error(), err)
	case errors.Is(err, ErrForbidden):
		return NewRestError(http.StatusForbidden, ErrForbidden.Error(), err)
	case errors.Is(err, context.DeadlineExceeded):
		return NewRestError(http.StatusRequestTimeout, "request timeout", err)
	}
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return NewRestError(http.StatusBadRequest, validationErrs.Error(), err)
	}
	if restErr, ok := errors.Cause(err).(RestErr); ok {
		return restErr
	}
	return NewRestError(http.StatusInternalServerError, ErrInternal.Error(), err)
}

func ErrorResponse(err error) (int, map[string]string) {
	restErr := ParseErrors(err)
	msg := restErr.Error()
	if re, ok := restErr.(RestError); ok {
		msg = re.ErrError
	}
	return restErr.Status(), map[string]string{"error": msg}
}

func trimSentinel(err error, sentinel error) string {
	msg := strings.TrimSuffix(err.Error(), ": "+sentinel.Error())
	if msg == "" {
		return sentinel.Error()
	}
	return msg
}
