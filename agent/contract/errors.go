package contract

import "errors"

var (
	ErrModelInvoke     = errors.New("model invoke failed")
	ErrSchemaViolation = errors.New("model response violates schema")
	ErrValidation      = errors.New("validation failed")
	ErrConfig          = errors.New("invalid pipeline configuration")
	ErrToolNotAllowed  = errors.New("tool is not allowed for role")

	// ErrToolApplied marks a failure that happened after a tool call already
	// ran; repeating the task would repeat the tool's effects.
	ErrToolApplied = errors.New("failed after tool call was applied")
)
