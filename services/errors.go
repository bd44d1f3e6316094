package services

import "errors"

// Caller errors from the ingredient sync. All of them are raised before any
// mutation, so a failed sync never leaves partial writes behind.
var (
	ErrInvalidRow         = errors.New("invalid ingredient row")
	ErrIngredientNotFound = errors.New("ingredient not found")
	ErrUnitMismatch       = errors.New("unit does not match ingredient serving unit")
)

// AI plan-generation failures. Neither persists a plan; the caller may retry
// or fall back to the rule strategy as a separate explicit call.
var (
	ErrAIServiceUnavailable = errors.New("nutrition AI service unavailable")
	ErrInvalidAIOutput      = errors.New("invalid nutrition AI output")
)

var ErrInvalidInput = errors.New("invalid plan input")
