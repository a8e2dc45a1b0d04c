package sqlite

import (
	"fmt"
	"strings"

	"github.com/ganot/sitecycle/internal/repository"
)

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func insertError(what string, err error) error {
	if isUniqueViolation(err) {
		return fmt.Errorf("failed to create %s: %w: duplicate id", what, repository.ErrInvalidInput)
	}
	return fmt.Errorf("failed to create %s: %w", what, err)
}
