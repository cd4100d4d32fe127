package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/lms-quiz-service/internal/services"
	"github.com/SAP-F-2025/lms-quiz-service/internal/utils"
	"github.com/SAP-F-2025/lms-quiz-service/internal/validator"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type QuizHandler struct {
	BaseHandler
	quizService         services.QuizService
	importExportService services.ImportExportService
}

func NewQuizHandler(quizService services.QuizService, importExportService services.ImportExportService, logger utils.Logger) *QuizHandler {
	return &QuizHandler{
		BaseHandler:         NewBaseHandler(logger),
		quizService:         quizService,
		importExportService: importExportService,
	}
}

// CreateQuiz creates a quiz together with its questions
// @Summary Create quiz
// @Tags quizzes
// @Accept json
// @Produce json
// @Param quiz body services.CreateQuizRequest true "Quiz data"
// @Success 201 {object} services.QuizDTO
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /quizzes [post]
func (h *QuizHandler) CreateQuiz(c *gin.Context) {
	var req services.CreateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	requester, ok := h.requester(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Creating quiz", "course_id", req.CourseID)

	quiz, err := h.quizService.CreateQuiz(c.Request.Context(), &req, requester.UserID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, quiz)
}

// GetQuizzesByCourse lists the quizzes of a course
// @Summary List quizzes of a course
// @Tags quizzes
// @Produce json
// @Param course_id path uint true "Course ID"
// @Success 200 {array} services.QuizDTO
// @Failure 404 {object} ErrorResponse
// @Router /quizzes/course/{course_id} [get]
func (h *QuizHandler) GetQuizzesByCourse(c *gin.Context) {
	courseID := h.parseIDParam(c, "course_id")
	if courseID == 0 {
		return
	}

	requester, ok := h.requester(c)
	if !ok {
		return
	}

	quizzes, err := h.quizService.GetQuizzesByCourse(c.Request.Context(), courseID, requester)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, quizzes)
}

// GetQuizDetails returns a quiz with the caller's result (students) or all submissions (staff)
// @Summary Get quiz
// @Tags quizzes
// @Produce json
// @Param id path uint true "Quiz ID"
// @Success 200 {object} services.QuizDTO
// @Failure 404 {object} ErrorResponse
// @Router /quizzes/{id} [get]
func (h *QuizHandler) GetQuizDetails(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	requester, ok := h.requester(c)
	if !ok {
		return
	}

	quiz, err := h.quizService.GetQuizDetails(c.Request.Context(), id, requester)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, quiz)
}

// GetQuizQuestions returns the ordered questions of a quiz
// @Summary Get quiz questions
// @Description Correct answers are only included for instructors and admins
// @Tags quizzes
// @Produce json
// @Param id path uint true "Quiz ID"
// @Success 200 {array} services.QuestionDTO
// @Failure 404 {object} ErrorResponse
// @Router /quizzes/{id}/questions [get]
func (h *QuizHandler) GetQuizQuestions(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	requester, ok := h.requester(c)
	if !ok {
		return
	}

	questions, err := h.quizService.GetQuizQuestions(c.Request.Context(), id, requester)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, questions)
}

// SubmitQuiz records the caller's single submission
// @Summary Submit quiz
// @Tags quizzes
// @Accept json
// @Produce json
// @Param id path uint true "Quiz ID"
// @Param submission body validator.SubmitQuizRequest true "Answers keyed by question ID"
// @Success 201 {object} services.SubmissionDTO
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /quizzes/{id}/submit [post]
func (h *QuizHandler) SubmitQuiz(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req validator.SubmitQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	requester, ok := h.requester(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Submitting quiz", "quiz_id", id, "answers", len(req.Answers))

	submission, err := h.quizService.SubmitQuiz(c.Request.Context(), requester.UserID, id, req.Answers)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, submission)
}

// CheckSubmission reports whether the caller already submitted the quiz
// @Router /quizzes/{id}/submissions/check [get]
func (h *QuizHandler) CheckSubmission(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	requester, ok := h.requester(c)
	if !ok {
		return
	}

	submitted, err := h.quizService.CheckSubmissionExists(c.Request.Context(), requester.UserID, id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"quiz_id": id, "submitted": submitted})
}

// GetQuizResults lists every submission of a quiz
// @Router /quizzes/{id}/results [get]
func (h *QuizHandler) GetQuizResults(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	results, err := h.quizService.GetQuizResults(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, results)
}

// ExportQuizResults downloads the submissions of a quiz as an xlsx workbook
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Router /quizzes/{id}/results/export [get]
func (h *QuizHandler) ExportQuizResults(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Exporting quiz results", "quiz_id", id)

	var buf bytes.Buffer
	if err := h.importExportService.ExportQuizResults(c.Request.Context(), id, &buf); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="quiz-%d-results.xlsx"`, id))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// CloseQuiz closes a quiz for good
// @Router /quizzes/{id}/close [patch]
func (h *QuizHandler) CloseQuiz(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Closing quiz", "quiz_id", id)

	ctx := c.Request.Context()
	if err := h.quizService.CloseQuiz(ctx, id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	status, err := h.quizService.GetQuizStatus(ctx, id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, status)
}

// GetQuizStatus reports whether the quiz is closed
// @Router /quizzes/{id}/status [get]
func (h *QuizHandler) GetQuizStatus(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	status, err := h.quizService.GetQuizStatus(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, status)
}

// UpdateQuestion edits the question at a zero-based position
// @Param index path int true "Question position, starting at 0"
// @Router /quizzes/{id}/questions/{index} [put]
func (h *QuizHandler) UpdateQuestion(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid index",
			Details: c.Param("index"),
		})
		return
	}

	var req services.UpdateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Updating question", "quiz_id", id, "index", index)

	question, err := h.quizService.UpdateQuestion(c.Request.Context(), id, index, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, question)
}

// UpdateCorrectAnswer changes the stored answer and rescores all submissions
// @Router /quizzes/questions/{question_id}/correct-answer [patch]
func (h *QuizHandler) UpdateCorrectAnswer(c *gin.Context) {
	questionID := h.parseIDParam(c, "question_id")
	if questionID == 0 {
		return
	}

	var req validator.UpdateCorrectAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Updating correct answer", "question_id", questionID)

	question, err := h.quizService.UpdateCorrectAnswer(c.Request.Context(), questionID, req.CorrectAnswer)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, question)
}

// DeleteQuiz removes a quiz with its questions, submissions and grades
// @Router /quizzes/{id} [delete]
func (h *QuizHandler) DeleteQuiz(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Deleting quiz", "quiz_id", id)

	if err := h.quizService.DeleteQuiz(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetMyGrades lists the caller's grades
// @Router /grades/me [get]
func (h *QuizHandler) GetMyGrades(c *gin.Context) {
	requester, ok := h.requester(c)
	if !ok {
		return
	}

	grades, err := h.quizService.GetMyGrades(c.Request.Context(), requester.UserID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, grades)
}
