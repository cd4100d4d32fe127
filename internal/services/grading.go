package services

import (
	"strings"

	"github.com/SAP-F-2025/lms-quiz-service/internal/models"
)

// IsAnswerCorrect compares a raw answer with the stored answer, ignoring case and
// surrounding whitespace. A blank answer is never correct.
func IsAnswerCorrect(question *models.Question, answer string) bool {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return false
	}
	return strings.EqualFold(answer, strings.TrimSpace(question.CorrectAnswer))
}

// ScoreResult is the outcome of grading a set of answers
type ScoreResult struct {
	Score        int
	EarnedPoints int
	TotalPoints  int
	Results      []AnswerResult
}

// ScoreAnswers grades answers against questions, in question order. Every question
// counts toward the total, answered or not.
func ScoreAnswers(questions []*models.Question, answers models.AnswerSet) ScoreResult {
	result := ScoreResult{Results: make([]AnswerResult, 0, len(questions))}

	for _, question := range questions {
		points := max(question.Points, 0)
		result.TotalPoints += points

		correct := IsAnswerCorrect(question, answers[question.ID])
		if correct {
			result.EarnedPoints += points
		}
		result.Results = append(result.Results, AnswerResult{
			QuestionID: question.ID,
			Correct:    correct,
			Points:     points,
		})
	}

	result.Score = PercentageScore(result.EarnedPoints, result.TotalPoints)
	return result
}

// ScoreSubmission grades a complete submission. When no question carries points,
// every question weighs the same and the score is floor(100*correct/N).
func ScoreSubmission(questions []*models.Question, answers models.AnswerSet) ScoreResult {
	result := ScoreAnswers(questions, answers)
	if result.TotalPoints > 0 {
		return result
	}

	correct := 0
	for _, r := range result.Results {
		if r.Correct {
			correct++
		}
	}
	result.Score = PercentageScore(correct, len(questions))
	return result
}

// PercentageScore returns floor(100*earned/total), or 0 when nothing can be earned
func PercentageScore(earned, total int) int {
	if total <= 0 {
		return 0
	}
	return 100 * earned / total
}
