package contract

import "errors"

var (
	ErrModelInvoke       = errors.New("model invoke failed")
	ErrSchemaViolation   = errors.New("model response violates schema")
	ErrUnknownCapability = errors.New("unknown capability")
	ErrMissingArgument   = errors.New("required argument is missing")
	ErrValidation        = errors.New("validation failed")
)
