package resolver

import "fmt"

// Error is a resolver failure rendered as "<code> - <description>". The
// gateway layer parses the numeric prefix out of the message, so the format
// is part of the external contract.
type Error struct {
	Code    int
	Message string
}

// NewError creates an Error with a numeric code and a description.
func NewError(code int, message string) *Error {
	return &Error{Code: code, Message: message}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d - %s", e.Code, e.Message)
}

// BadArguments reports arguments that could not be decoded for an operation.
func BadArguments(err error) *Error {
	return NewError(400, fmt.Sprintf("Invalid arguments: %v", err))
}
