package onboarding

import "errors"

var (
	ErrEmployeeNotFound  = errors.New("employee not found")
	ErrModuleNotFound    = errors.New("training module not found")
	ErrDuplicateEmployee = errors.New("employee id already exists")
	ErrForbidden         = errors.New("not allowed for this viewer")
	ErrInvalidInput      = errors.New("invalid input")

	ErrTrainingIncomplete = errors.New("training is not complete")
)
