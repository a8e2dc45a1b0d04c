package report

import (
	"fmt"

	"github.com/ganot/sitecycle/internal/domain/failure"
)

var (
	// ErrEmptyReport indicates the report text is blank.
	ErrEmptyReport = fmt.Errorf("report text is empty: %w", failure.ErrValidation)
	// ErrInvalidInput indicates a missing project id.
	ErrInvalidInput = fmt.Errorf("invalid report input: %w", failure.ErrValidation)
)
