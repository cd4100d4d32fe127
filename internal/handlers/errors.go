package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/lms-quiz-service/internal/services"
)

// handleServiceError maps service errors to HTTP responses. Unknown errors are
// logged and answered with a generic 500.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var submissionError *services.SubmissionError
	if errors.As(err, &submissionError) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid submission",
			Details: submissionError.Details,
		})
		return
	}

	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrors,
		})
		return
	}

	var businessRuleError *services.BusinessRuleError
	if errors.As(err, &businessRuleError) {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Message: businessRuleError.Message,
			Details: map[string]interface{}{
				"rule":    businessRuleError.Rule,
				"context": businessRuleError.Context,
			},
		})
		return
	}

	var permissionError *services.PermissionError
	if errors.As(err, &permissionError) {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Access denied",
			Details: map[string]interface{}{
				"resource": permissionError.Resource,
				"action":   permissionError.Action,
				"reason":   permissionError.Reason,
			},
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrQuizNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Quiz not found"})
	case errors.Is(err, services.ErrQuestionNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Question not found", Details: err.Error()})
	case errors.Is(err, services.ErrCourseNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Course not found"})
	case errors.Is(err, services.ErrUserNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "User not found"})
	case errors.Is(err, services.ErrDuplicateSubmission):
		c.JSON(http.StatusConflict, ErrorResponse{Message: "Quiz already submitted"})
	case errors.Is(err, services.ErrCourseAlreadyExists):
		c.JSON(http.StatusConflict, ErrorResponse{Message: "Course title already exists"})
	case errors.Is(err, services.ErrQuizClosed):
		c.JSON(http.StatusForbidden, ErrorResponse{Message: "Quiz is closed"})
	case errors.Is(err, services.ErrQuizEnded):
		c.JSON(http.StatusForbidden, ErrorResponse{Message: "Quiz has ended"})
	case errors.Is(err, services.ErrQuizNotStarted):
		c.JSON(http.StatusForbidden, ErrorResponse{Message: "Quiz has not started yet"})
	case errors.Is(err, services.ErrInvalidSubmission):
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid submission"})
	case errors.Is(err, services.ErrInvalidArgument):
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid argument", Details: err.Error()})
	default:
		h.LogError(c, err, "Unhandled service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Internal server error"})
	}
}
