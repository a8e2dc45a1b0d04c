package audit

import (
	"errors"
	"fmt"

	"github.com/ganot/sitecycle/internal/domain/failure"
)

var (
	// ErrInvalidInput indicates an incomplete edit request.
	ErrInvalidInput = fmt.Errorf("invalid audit input: %w", failure.ErrValidation)
	// ErrRecordNotWritten indicates the field change was saved but its audit
	// record was not.
	ErrRecordNotWritten = errors.New("field updated but audit record not written")
)
