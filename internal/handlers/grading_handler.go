package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/lms-quiz-service/internal/services"
	"github.com/SAP-F-2025/lms-quiz-service/internal/utils"
	"github.com/SAP-F-2025/lms-quiz-service/internal/validator"
)

type GradingHandler struct {
	BaseHandler
	gradingService services.GradingService
	validator      *validator.Validator
}

func NewGradingHandler(gradingService services.GradingService, validator *validator.Validator, logger utils.Logger) *GradingHandler {
	return &GradingHandler{
		BaseHandler:    NewBaseHandler(logger),
		gradingService: gradingService,
		validator:      validator,
	}
}

// GradeQuiz scores answers without storing a submission
// @Summary Grade answers
// @Tags grading
// @Accept json
// @Produce json
// @Param id path uint true "Quiz ID"
// @Param answers body validator.GradeQuizRequest true "Answers keyed by question ID"
// @Success 200 {object} services.GradeQuizResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /grading/quizzes/{id} [post]
func (h *GradingHandler) GradeQuiz(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	requester, ok := h.requester(c)
	if !ok {
		return
	}

	var req validator.GradeQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	result, err := h.gradingService.GradeQuiz(c.Request.Context(), id, req.Answers, requester)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
