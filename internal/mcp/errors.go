package mcp

import (
	"errors"
	"fmt"

	"github.com/ganot/sitecycle/internal/domain/audit"
	"github.com/ganot/sitecycle/internal/domain/failure"
	"github.com/ganot/sitecycle/internal/domain/project"
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *APIError) CodeValue() string {
	return e.Code
}

func (e *APIError) MessageValue() string {
	return e.Message
}

func (e *APIError) DetailsValue() any {
	return e.Details
}

func (e *APIError) RecoveryHintValue() string {
	return e.RecoveryHint
}

// MapError maps domain errors to MCP error codes.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	switch {
	case errors.Is(err, project.ErrProjectNotFound):
		return &APIError{Code: "PROJECT_NOT_FOUND", Message: "project not found", RecoveryHint: "Call list_projects for valid ids"}
	case errors.Is(err, failure.ErrValidation):
		return &APIError{Code: string(failure.KindValidation), Message: err.Error(), RecoveryHint: "Fix the input; nothing was written"}
	case errors.Is(err, audit.ErrRecordNotWritten):
		return &APIError{Code: "AUDIT_NOT_RECORDED", Message: err.Error(), RecoveryHint: "The field value is saved but has no audit record"}
	}
	switch failure.KindOf(err) {
	case failure.KindAuth:
		return &APIError{Code: string(failure.KindAuth), Message: err.Error(), RecoveryHint: "Sign in again with a valid token"}
	case failure.KindRead:
		return &APIError{Code: string(failure.KindRead), Message: err.Error(), RecoveryHint: "Check store access; reads are not retried"}
	case failure.KindWrite:
		return &APIError{Code: string(failure.KindWrite), Message: err.Error(), RecoveryHint: "The change was not applied; submit it again"}
	case failure.KindExport:
		return &APIError{Code: string(failure.KindExport), Message: err.Error(), RecoveryHint: "Nothing was deleted; check the export directory and retry"}
	default:
		return nil
	}
}
