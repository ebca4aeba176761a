package apperr

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

const (
	CodeValidation   = "VALIDATION"
	CodeNotFound     = "NOT_FOUND"
	CodeAccessDenied = "ACCESS_DENIED"
	CodeGone         = "GONE"
	CodeExhausted    = "EXHAUSTED_ATTEMPTS"
	CodeServer       = "SERVER_ERROR"
)

type Error struct {
	Code    string
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Status: fiber.StatusBadRequest, Message: msg}
}

func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Status: fiber.StatusNotFound, Message: msg}
}

func AccessDenied(msg string) *Error {
	return &Error{Code: CodeAccessDenied, Status: fiber.StatusForbidden, Message: msg}
}

func Gone(msg string) *Error {
	return &Error{Code: CodeGone, Status: fiber.StatusGone, Message: msg}
}

func Exhausted(msg string) *Error {
	return &Error{Code: CodeExhausted, Status: fiber.StatusInternalServerError, Message: msg}
}

// As unwraps err into *Error when possible.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

func Is(err error, code string) bool {
	e, ok := As(err)
	return ok && e.Code == code
}
