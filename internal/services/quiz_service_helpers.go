package services

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/SAP-F-2025/lms-quiz-service/internal/events"
	"github.com/SAP-F-2025/lms-quiz-service/internal/models"
	"github.com/SAP-F-2025/lms-quiz-service/internal/repositories"
	"github.com/SAP-F-2025/lms-quiz-service/internal/validator"
)

// mapQuizError converts repository not-found errors into ErrQuizNotFound
func mapQuizError(err error) error {
	if repositories.IsNotFoundError(err) {
		return ErrQuizNotFound
	}
	return fmt.Errorf("failed to get quiz: %w", err)
}

// checkSubmissionWindow applies the closed flag first, then the open and close times
func checkSubmissionWindow(quiz *models.Quiz, now time.Time) error {
	if quiz.IsClosed {
		return ErrQuizClosed
	}
	if quiz.OpenTime != nil && now.Before(*quiz.OpenTime) {
		return ErrQuizNotStarted
	}
	if quiz.CloseTime != nil && now.After(*quiz.CloseTime) {
		return ErrQuizEnded
	}
	return nil
}

// validateAnswerSet requires exactly one well-formed answer per question
func validateAnswerSet(questions []*models.Question, answers models.AnswerSet) ValidationErrors {
	var errs ValidationErrors

	if len(answers) != len(questions) {
		errs = append(errs, ValidationError{
			Field:   "answers",
			Message: fmt.Sprintf("expected %d answers, got %d", len(questions), len(answers)),
			Value:   len(answers),
			Rule:    "answer_count",
		})
	}

	known := make(map[uint]bool, len(questions))
	for _, question := range questions {
		known[question.ID] = true
	}
	for _, id := range slices.Sorted(maps.Keys(answers)) {
		if !known[id] {
			errs = append(errs, ValidationError{
				Field:   answerField(id),
				Message: "question does not belong to this quiz",
				Value:   id,
				Rule:    "unknown_question",
			})
		}
	}

	for _, question := range questions {
		answer, ok := answers[question.ID]
		field := answerField(question.ID)
		switch {
		case !ok:
			errs = append(errs, ValidationError{Field: field, Message: "answer is missing", Rule: "required"})
		case strings.TrimSpace(answer) == "":
			errs = append(errs, ValidationError{Field: field, Message: "answer must not be blank", Value: answer, Rule: "non_blank"})
		case question.Type == models.MultipleChoice && !question.HasOption(answer):
			errs = append(errs, ValidationError{Field: field, Message: "answer must be one of the options", Value: answer, Rule: "option"})
		case question.Type == models.TrueFalse && !validator.IsTrueFalse(answer):
			errs = append(errs, ValidationError{Field: field, Message: "answer must be true or false", Value: answer, Rule: "true_false"})
		}
	}

	return errs
}

func answerField(questionID uint) string {
	return fmt.Sprintf("answers[%d]", questionID)
}

// rescoreQuiz recomputes every submission of a quiz and its grade within tx
func (s *quizService) rescoreQuiz(ctx context.Context, tx repositories.Repository, quizID uint) (int, error) {
	questions, err := tx.Question().GetByQuiz(ctx, quizID)
	if err != nil {
		return 0, fmt.Errorf("failed to get questions for rescoring: %w", err)
	}

	submissions, _, err := tx.Submission().ListByQuiz(ctx, quizID, repositories.SubmissionFilters{})
	if err != nil {
		return 0, fmt.Errorf("failed to list submissions for rescoring: %w", err)
	}

	for _, submission := range submissions {
		score := ScoreSubmission(questions, submission.AnswerMap()).Score
		if err := tx.Submission().UpdateScore(ctx, submission.ID, score); err != nil {
			return 0, err
		}
		if err := tx.Grade().UpdateScoreBySubmission(ctx, submission.ID, score); err != nil {
			return 0, err
		}
	}

	s.logger.Info("Quiz rescored", "quiz_id", quizID, "submissions", len(submissions))
	return len(submissions), nil
}

// applyQuestionUpdate copies the provided fields and reports whether scoring is affected
func applyQuestionUpdate(question *models.Question, req *UpdateQuestionRequest) bool {
	affectsScore := false

	if req.Text != nil {
		question.Text = strings.TrimSpace(*req.Text)
	}
	if req.Type != nil {
		question.Type = *req.Type
	}
	if req.Options != nil {
		question.Options = trimAll(req.Options)
	}
	if req.CorrectAnswer != nil {
		answer := strings.TrimSpace(*req.CorrectAnswer)
		if answer != question.CorrectAnswer {
			affectsScore = true
		}
		question.CorrectAnswer = answer
	}
	if req.Points != nil {
		if *req.Points != question.Points {
			affectsScore = true
		}
		question.Points = *req.Points
	}
	if req.Explanation != nil {
		question.Explanation = req.Explanation
	}

	return affectsScore
}

func (s *quizService) publishEvent(ctx context.Context, eventType string, data interface{}) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events.NewEvent(eventType, data)); err != nil {
		s.logger.Warn("Failed to publish event", "event_type", eventType, "error", err)
	}
}

// ===== CONVERSIONS =====

func toQuizDTO(quiz *models.Quiz, now time.Time) *QuizDTO {
	return &QuizDTO{
		ID:            quiz.ID,
		Title:         quiz.Title,
		Description:   quiz.Description,
		CourseID:      quiz.CourseID,
		IsClosed:      quiz.IsClosed,
		OpenTime:      quiz.OpenTime,
		CloseTime:     quiz.CloseTime,
		State:         quiz.StateAt(now),
		QuestionCount: len(quiz.Questions),
		TotalPoints:   quiz.TotalPoints(),
		CreatedBy:     quiz.CreatedBy,
		CreatedAt:     quiz.CreatedAt,
	}
}

func toQuestionDTO(question *models.Question, includeAnswer bool) *QuestionDTO {
	dto := &QuestionDTO{
		ID:          question.ID,
		Position:    question.Position,
		Type:        question.Type,
		Text:        question.Text,
		Points:      question.Points,
		Options:     []string(question.Options),
		Explanation: question.Explanation,
	}
	if dto.Options == nil {
		dto.Options = []string{}
	}
	if includeAnswer {
		answer := question.CorrectAnswer
		dto.CorrectAnswer = &answer
	}
	return dto
}

func toSubmissionDTO(submission *models.Submission, includeAnswers bool) *SubmissionDTO {
	dto := &SubmissionDTO{
		ID:             submission.ID,
		QuizID:         submission.QuizID,
		StudentID:      submission.StudentID,
		Score:          submission.Score,
		SubmissionDate: submission.SubmissionDate,
	}
	if includeAnswers {
		dto.Answers = submission.AnswerMap()
	}
	return dto
}

func toSubmissionDTOs(submissions []*models.Submission, includeAnswers bool) []*SubmissionDTO {
	result := make([]*SubmissionDTO, 0, len(submissions))
	for _, submission := range submissions {
		result = append(result, toSubmissionDTO(submission, includeAnswers))
	}
	return result
}

func questionPointers(questions []models.Question) []*models.Question {
	result := make([]*models.Question, len(questions))
	for i := range questions {
		result[i] = &questions[i]
	}
	return result
}

func trimAll(values []string) []string {
	if values == nil {
		return nil
	}
	result := make([]string, len(values))
	for i, v := range values {
		result[i] = strings.TrimSpace(v)
	}
	return result
}
