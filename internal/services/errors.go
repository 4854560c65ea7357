package services

import (
	"errors"
	"fmt"

	apperrors "github.com/SAP-F-2025/quizer-service/internal/errors"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrForbidden        = errors.New("forbidden - insufficient permissions")
	ErrValidationFailed = errors.New("validation failed")
	ErrConflict         = errors.New("resource conflict")

	// Catalog errors
	ErrSubjectNotFound      = errors.New("subject not found")
	ErrSubjectDuplicateName = errors.New("subject name already exists")
	ErrTestNotFound         = errors.New("test not found")
	ErrTestRunning          = errors.New("test has an active run")

	// Question bank errors
	ErrQuestionNotFound = errors.New("question not found")

	// Run errors
	ErrRunNotFound            = errors.New("test run not found")
	ErrDuplicateRun           = errors.New("test is already running for this lecturer")
	ErrInsufficientQuestions  = errors.New("not enough questions to run the test")
	ErrAmbiguousRun           = errors.New("test is run by several lecturers, lecturer_id is required")
	ErrRunNotActive           = errors.New("test run was stopped before the attempt was submitted")
	ErrNoActiveAttempt        = errors.New("no active attempt")
	ErrInvalidQuestionRequest = errors.New("invalid question request")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

type BusinessRuleError struct {
	Rule    string                 `json:"rule"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
	cause   error
}

func (bre *BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule violation (%s): %s", bre.Rule, bre.Message)
}

func (bre *BusinessRuleError) Unwrap() error {
	return bre.cause
}

type PermissionError struct {
	UserID     string `json:"user_id"`
	ResourceID string `json:"resource_id"`
	Resource   string `json:"resource"`
	Action     string `json:"action"`
	Reason     string `json:"reason"`
}

func (pe *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: user %s cannot %s %s %s - %s",
		pe.UserID, pe.Action, pe.Resource, pe.ResourceID, pe.Reason)
}

func (pe *PermissionError) Unwrap() error {
	return ErrForbidden
}

// ===== ERROR HELPERS =====

// newInsufficientQuestionsError reports a pool smaller than the test's tasks count
func newInsufficientQuestionsError(testID uint, available int64, required int) *BusinessRuleError {
	return &BusinessRuleError{
		Rule:    "insufficient_questions",
		Message: fmt.Sprintf("test %d has %d questions but %d are required", testID, available, required),
		Context: map[string]interface{}{
			"test_id":   testID,
			"available": available,
			"required":  required,
		},
		cause: ErrInsufficientQuestions,
	}
}

func NewPermissionError(userID, resourceID, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrSubjectNotFound) ||
		errors.Is(err, ErrTestNotFound) ||
		errors.Is(err, ErrQuestionNotFound) ||
		errors.Is(err, ErrRunNotFound)
}

// IsUnauthorized checks if error represents a permission failure
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrForbidden)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) ||
		errors.Is(err, ErrInvalidQuestionRequest) {
		return true
	}
	return apperrors.IsValidationError(err)
}

// IsBusinessRule checks if error represents a business rule violation
func IsBusinessRule(err error) bool {
	var bre *BusinessRuleError
	return errors.As(err, &bre)
}

// IsConflict checks if error represents a resource conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrDuplicateRun) ||
		errors.Is(err, ErrNoActiveAttempt) ||
		errors.Is(err, ErrAmbiguousRun) ||
		errors.Is(err, ErrRunNotActive) ||
		errors.Is(err, ErrTestRunning) ||
		errors.Is(err, ErrSubjectDuplicateName)
}
