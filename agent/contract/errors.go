package contract

import (
	"errors"

	calcx "github.com/tanpawarit/Chative-Vehicle-Advisor/agent/calc"
)

var (
	ErrModelInvoke     = errors.New("model invoke failed")
	ErrSchemaViolation = errors.New("model response violates schema")
	ErrPromptMissing   = errors.New("required prompt is missing")
	ErrValidation      = errors.New("validation failed")
	ErrUnknownTool     = errors.New("unknown tool")
	ErrNotFound        = errors.New("no matching record")

	// ErrInvalidInput is raised by calculators before any arithmetic that would divide by zero.
	ErrInvalidInput = calcx.ErrInvalidInput
)
