package project

import (
	"errors"
	"fmt"

	"github.com/ganot/sitecycle/internal/domain/failure"
)

var (
	// ErrProjectNotFound indicates the project doesn't exist.
	ErrProjectNotFound = errors.New("project not found")
	// ErrInvalidInput indicates invalid project input.
	ErrInvalidInput = fmt.Errorf("invalid project input: %w", failure.ErrValidation)
	// ErrInvalidRotation indicates the new current period is incomplete.
	ErrInvalidRotation = fmt.Errorf("invalid rotation: %w", failure.ErrValidation)
	// ErrUnknownField indicates an edit targeted a field that is not tracked.
	ErrUnknownField = fmt.Errorf("unknown field: %w", failure.ErrValidation)
)
