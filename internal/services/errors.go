package services

import (
	"errors"
	"fmt"

	"github.com/SAP-F-2025/lms-quiz-service/internal/validator"
)

// Quiz errors
var (
	ErrQuizNotFound        = errors.New("quiz not found")
	ErrQuestionNotFound    = errors.New("question not found")
	ErrInvalidSubmission   = errors.New("invalid submission")
	ErrDuplicateSubmission = errors.New("quiz already submitted")
	ErrQuizClosed          = errors.New("quiz is closed")
	ErrQuizNotStarted      = errors.New("quiz has not started yet")
	ErrQuizEnded           = errors.New("quiz has ended")
)

// Course and user errors
var (
	ErrCourseNotFound      = errors.New("course not found")
	ErrCourseAlreadyExists = errors.New("course with this title already exists")
	ErrUserNotFound        = errors.New("user not found")
)

// Generic errors
var (
	ErrInvalidArgument = errors.New("invalid argument")
)

// ValidationErrors carries field level details of a rejected request
type ValidationErrors = validator.ValidationErrors

// ValidationError is one field level detail
type ValidationError = validator.ValidationError

// NewValidationError builds a single field validation error
func NewValidationError(field, message string, value interface{}) ValidationErrors {
	return ValidationErrors{{Field: field, Message: message, Value: value}}
}

// SubmissionError rejects a submission and keeps the per-answer details
type SubmissionError struct {
	Details ValidationErrors
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidSubmission.Error(), e.Details.Error())
}

func (e *SubmissionError) Unwrap() error {
	return ErrInvalidSubmission
}

// PermissionError is returned when a user may not act on a resource
type PermissionError struct {
	UserID     string
	ResourceID uint
	Resource   string
	Action     string
	Reason     string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: user %s cannot %s %s %d: %s", e.UserID, e.Action, e.Resource, e.ResourceID, e.Reason)
}

func NewPermissionError(userID string, resourceID uint, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

// BusinessRuleError reports a violated domain rule that is not a field error
type BusinessRuleError struct {
	Rule    string
	Message string
	Context map[string]interface{}
}

func (e *BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule violation (%s): %s", e.Rule, e.Message)
}

func NewBusinessRuleError(rule, message string, context map[string]interface{}) *BusinessRuleError {
	return &BusinessRuleError{
		Rule:    rule,
		Message: message,
		Context: context,
	}
}
