package errors

import (
	stdErrors "errors"
	"fmt"
)

type Code string

const (
	CodeValidation Code = "VALIDATION_ERROR"
	CodeNotFound   Code = "NOT_FOUND"
	CodeIO         Code = "IO_ERROR"
	CodeInternal   Code = "INTERNAL_ERROR"
)

// Exit statuses follow sysexits(3).
const (
	ExitDataErr  = 65
	ExitNoInput  = 66
	ExitSoftware = 70
	ExitIOErr    = 74
)

type Metadata struct {
	ExitCode       int
	Retryable      bool
	PublicMessage  string
	DetailsAllowed bool
}

var metadataByCode = map[Code]Metadata{
	CodeValidation: {
		ExitCode:       ExitDataErr,
		Retryable:      false,
		PublicMessage:  "invalid input",
		DetailsAllowed: true,
	},
	CodeNotFound: {
		ExitCode:       ExitNoInput,
		Retryable:      false,
		PublicMessage:  "input not found",
		DetailsAllowed: true,
	},
	CodeIO: {
		ExitCode:       ExitIOErr,
		Retryable:      true,
		PublicMessage:  "i/o failure",
		DetailsAllowed: true,
	},
	CodeInternal: {
		ExitCode:       ExitSoftware,
		Retryable:      false,
		PublicMessage:  "internal error",
		DetailsAllowed: false,
	},
}

func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

// ExitCode returns the process exit status for err. Untyped errors map to internal.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if te := As(err); te != nil {
		return MetadataFor(te.Code()).ExitCode
	}
	return MetadataFor(CodeInternal).ExitCode
}

type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Wrap(code Code, err error, message string) *Error {
	if err == nil {
		return New(code, message)
	}
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

func (e *Error) WithDetails(details any) *Error {
	if e == nil {
		return nil
	}
	e.details = details
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}
