package services

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/SAP-F-2025/lms-quiz-service/internal/models"
	"github.com/SAP-F-2025/lms-quiz-service/internal/repositories"
)

type gradingService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewGradingService(repo repositories.Repository, logger *slog.Logger) GradingService {
	return &gradingService{
		repo:   repo,
		logger: logger,
	}
}

// GradeQuiz scores an ad-hoc answer set without persisting anything. Only the
// questions present in answers count toward the total. Per-question results
// would reveal the answer key, so only staff receive them.
func (s *gradingService) GradeQuiz(ctx context.Context, quizID uint, answers models.AnswerSet, requester Requester) (*GradeQuizResponse, error) {
	s.logger.Debug("Grading answers", "quiz_id", quizID, "answer_count", len(answers))

	quiz, err := s.repo.Quiz().GetByIDWithQuestions(ctx, quizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	byID := make(map[uint]*models.Question, len(quiz.Questions))
	for i := range quiz.Questions {
		byID[quiz.Questions[i].ID] = &quiz.Questions[i]
	}

	for _, id := range slices.Sorted(maps.Keys(answers)) {
		if _, ok := byID[id]; !ok {
			return nil, fmt.Errorf("%w: question %d does not belong to quiz %d", ErrQuestionNotFound, id, quizID)
		}
	}

	selected := make([]*models.Question, 0, len(answers))
	for i := range quiz.Questions {
		if _, ok := answers[quiz.Questions[i].ID]; ok {
			selected = append(selected, &quiz.Questions[i])
		}
	}

	result := ScoreAnswers(selected, answers)
	resp := &GradeQuizResponse{
		QuizID:       quizID,
		Score:        result.Score,
		EarnedPoints: result.EarnedPoints,
		TotalPoints:  result.TotalPoints,
	}
	if requester.Role.IsStaff() {
		resp.Results = result.Results
	}
	return resp, nil
}
