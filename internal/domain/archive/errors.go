package archive

import (
	"fmt"

	"github.com/ganot/sitecycle/internal/domain/failure"
)

// ErrInvalidInput indicates a missing project id.
var ErrInvalidInput = fmt.Errorf("invalid archive input: %w", failure.ErrValidation)
