package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/datatypes"

	"github.com/SAP-F-2025/lms-quiz-service/internal/events"
	"github.com/SAP-F-2025/lms-quiz-service/internal/models"
	"github.com/SAP-F-2025/lms-quiz-service/internal/repositories"
	"github.com/SAP-F-2025/lms-quiz-service/internal/validator"
)

type quizService struct {
	repo           repositories.Repository
	logger         *slog.Logger
	validator      *validator.Validator
	eventPublisher events.EventPublisher
	now            func() time.Time
}

func NewQuizService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, eventPublisher events.EventPublisher) QuizService {
	return &quizService{
		repo:           repo,
		logger:         logger,
		validator:      validator,
		eventPublisher: eventPublisher,
		now:            time.Now,
	}
}

// ===== AUTHORING =====

func (s *quizService) CreateQuiz(ctx context.Context, req *CreateQuizRequest, instructorID string) (*QuizDTO, error) {
	s.logger.Info("Creating quiz", "course_id", req.CourseID, "instructor_id", instructorID, "questions", len(req.Questions))

	if errs := s.validator.ValidateQuizCreate(req); len(errs) > 0 {
		return nil, errs
	}

	exists, err := s.repo.Course().ExistsByID(ctx, req.CourseID)
	if err != nil {
		return nil, fmt.Errorf("failed to check course: %w", err)
	}
	if !exists {
		return nil, ErrCourseNotFound
	}

	quiz := &models.Quiz{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		CourseID:    req.CourseID,
		OpenTime:    req.OpenTime,
		CloseTime:   req.CloseTime,
		CreatedBy:   instructorID,
		Questions:   make([]models.Question, 0, len(req.Questions)),
	}
	for i, q := range req.Questions {
		quiz.Questions = append(quiz.Questions, models.Question{
			Position:      i,
			Type:          q.Type,
			Text:          strings.TrimSpace(q.Text),
			Points:        q.Points,
			Options:       datatypes.JSONSlice[string](trimAll(q.Options)),
			CorrectAnswer: strings.TrimSpace(q.CorrectAnswer),
			Explanation:   q.Explanation,
		})
	}

	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		return tx.Quiz().Create(ctx, quiz)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create quiz: %w", err)
	}

	s.publishEvent(ctx, events.QuizCreated, events.QuizCreatedEvent{
		QuizID:        quiz.ID,
		CourseID:      quiz.CourseID,
		Title:         quiz.Title,
		QuestionCount: len(quiz.Questions),
		CreatedBy:     instructorID,
	})

	s.logger.Info("Quiz created", "quiz_id", quiz.ID)
	return toQuizDTO(quiz, s.now()), nil
}

// UpdateQuestion edits the question at a zero-based position. Submissions are
// rescored in the same transaction when the answer or the points change.
func (s *quizService) UpdateQuestion(ctx context.Context, quizID uint, index int, req *UpdateQuestionRequest) (*QuestionDTO, error) {
	s.logger.Info("Updating question", "quiz_id", quizID, "index", index)

	var updated *models.Question
	rescored := -1

	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if _, err := tx.Quiz().GetByID(ctx, quizID); err != nil {
			return mapQuizError(err)
		}

		questions, err := tx.Question().GetByQuiz(ctx, quizID)
		if err != nil {
			return fmt.Errorf("failed to get questions: %w", err)
		}
		if index < 0 || index >= len(questions) {
			return fmt.Errorf("%w: question index %d out of range [0, %d)", ErrInvalidArgument, index, len(questions))
		}

		question := questions[index]
		if errs := s.validator.ValidateQuestionUpdate(req, question); len(errs) > 0 {
			return errs
		}

		affectsScore := applyQuestionUpdate(question, req)
		if err := tx.Question().Update(ctx, question); err != nil {
			return err
		}

		if affectsScore {
			count, err := s.rescoreQuiz(ctx, tx, quizID)
			if err != nil {
				return err
			}
			rescored = count
		}

		updated = question
		return nil
	})
	if err != nil {
		return nil, err
	}

	if rescored >= 0 {
		s.publishEvent(ctx, events.QuizRescored, events.QuizRescoredEvent{
			QuizID:          quizID,
			QuestionID:      updated.ID,
			SubmissionCount: rescored,
		})
	}

	return toQuestionDTO(updated, true), nil
}

// UpdateCorrectAnswer replaces the stored answer and rescores every submission of the quiz
func (s *quizService) UpdateCorrectAnswer(ctx context.Context, questionID uint, newAnswer string) (*QuestionDTO, error) {
	s.logger.Info("Updating correct answer", "question_id", questionID)

	var updated *models.Question
	var rescored int

	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		question, err := tx.Question().GetByID(ctx, questionID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrQuestionNotFound
			}
			return fmt.Errorf("failed to get question: %w", err)
		}

		newAnswer = strings.TrimSpace(newAnswer)
		if newAnswer == "" {
			return NewValidationError("correct_answer", "must not be blank", newAnswer)
		}
		if errs := s.validator.ValidateCorrectAnswer(question, newAnswer); len(errs) > 0 {
			return errs
		}

		question.CorrectAnswer = newAnswer
		if err := tx.Question().Update(ctx, question); err != nil {
			return err
		}

		rescored, err = s.rescoreQuiz(ctx, tx, question.QuizID)
		if err != nil {
			return err
		}

		updated = question
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.QuizRescored, events.QuizRescoredEvent{
		QuizID:          updated.QuizID,
		QuestionID:      updated.ID,
		SubmissionCount: rescored,
	})

	s.logger.Info("Correct answer updated", "question_id", questionID, "rescored_submissions", rescored)
	return toQuestionDTO(updated, true), nil
}

// CloseQuiz sets the closed flag. There is no way back.
func (s *quizService) CloseQuiz(ctx context.Context, quizID uint) error {
	s.logger.Info("Closing quiz", "quiz_id", quizID)

	quiz, err := s.repo.Quiz().GetByID(ctx, quizID)
	if err != nil {
		return mapQuizError(err)
	}
	if quiz.IsClosed {
		return nil
	}

	if err := s.repo.Quiz().MarkClosed(ctx, quizID); err != nil {
		return mapQuizError(err)
	}

	s.publishEvent(ctx, events.QuizClosed, events.QuizClosedEvent{QuizID: quizID})
	return nil
}

// DeleteQuiz removes grades, submissions, questions and the quiz in one transaction
func (s *quizService) DeleteQuiz(ctx context.Context, quizID uint) error {
	s.logger.Info("Deleting quiz", "quiz_id", quizID)

	var courseID uint
	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		quiz, err := tx.Quiz().GetByID(ctx, quizID)
		if err != nil {
			return mapQuizError(err)
		}
		courseID = quiz.CourseID

		if err := tx.Grade().DeleteByQuiz(ctx, quizID); err != nil {
			return err
		}
		if err := tx.Submission().DeleteByQuiz(ctx, quizID); err != nil {
			return err
		}
		if err := tx.Question().DeleteByQuiz(ctx, quizID); err != nil {
			return err
		}
		return tx.Quiz().Delete(ctx, quizID)
	})
	if err != nil {
		return err
	}

	s.publishEvent(ctx, events.QuizDeleted, events.QuizDeletedEvent{QuizID: quizID, CourseID: courseID})
	return nil
}

// ===== READS =====

func (s *quizService) GetQuizzesByCourse(ctx context.Context, courseID uint, requester Requester) ([]*QuizDTO, error) {
	exists, err := s.repo.Course().ExistsByID(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to check course: %w", err)
	}
	if !exists {
		return nil, ErrCourseNotFound
	}

	quizzes, err := s.repo.Quiz().GetByCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get quizzes: %w", err)
	}

	now := s.now()
	result := make([]*QuizDTO, 0, len(quizzes))
	for _, quiz := range quizzes {
		result = append(result, toQuizDTO(quiz, now))
	}
	return result, nil
}

// GetQuizDetails adds the caller's own result for students and the submission list for staff
func (s *quizService) GetQuizDetails(ctx context.Context, quizID uint, requester Requester) (*QuizDTO, error) {
	quiz, err := s.repo.Quiz().GetByIDWithQuestions(ctx, quizID)
	if err != nil {
		return nil, mapQuizError(err)
	}

	dto := toQuizDTO(quiz, s.now())

	if requester.Role.IsStaff() {
		submissions, _, err := s.repo.Submission().ListByQuiz(ctx, quizID, repositories.SubmissionFilters{SortOrder: "asc"})
		if err != nil {
			return nil, fmt.Errorf("failed to list submissions: %w", err)
		}
		dto.Submissions = toSubmissionDTOs(submissions, false)
		return dto, nil
	}

	submitted := false
	submission, err := s.repo.Submission().GetByStudentAndQuiz(ctx, requester.UserID, quizID)
	switch {
	case err == nil:
		submitted = true
		dto.Score = &submission.Score
	case !repositories.IsNotFoundError(err):
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	dto.Submitted = &submitted

	return dto, nil
}

// GetQuizQuestions returns questions in order. Correct answers are only shown to staff.
func (s *quizService) GetQuizQuestions(ctx context.Context, quizID uint, requester Requester) ([]*QuestionDTO, error) {
	if _, err := s.repo.Quiz().GetByID(ctx, quizID); err != nil {
		return nil, mapQuizError(err)
	}

	questions, err := s.repo.Question().GetByQuiz(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to get questions: %w", err)
	}

	includeAnswer := requester.Role.IsStaff()
	result := make([]*QuestionDTO, 0, len(questions))
	for _, question := range questions {
		result = append(result, toQuestionDTO(question, includeAnswer))
	}
	return result, nil
}

// GetQuizStatus reports closed when the flag is set or the close time has passed
func (s *quizService) GetQuizStatus(ctx context.Context, quizID uint) (*QuizStatusResponse, error) {
	quiz, err := s.repo.Quiz().GetByID(ctx, quizID)
	if err != nil {
		return nil, mapQuizError(err)
	}

	now := s.now()
	return &QuizStatusResponse{
		QuizID:   quiz.ID,
		IsClosed: quiz.IsEndedAt(now),
		State:    quiz.StateAt(now),
	}, nil
}

// ===== SUBMISSIONS =====

func (s *quizService) SubmitQuiz(ctx context.Context, studentID string, quizID uint, answers models.AnswerSet) (*SubmissionDTO, error) {
	s.logger.Info("Submitting quiz", "quiz_id", quizID, "student_id", studentID)

	quiz, err := s.repo.Quiz().GetByIDWithQuestions(ctx, quizID)
	if err != nil {
		return nil, mapQuizError(err)
	}

	now := s.now()
	if err := checkSubmissionWindow(quiz, now); err != nil {
		return nil, err
	}

	submitted, err := s.repo.Submission().ExistsByStudentAndQuiz(ctx, studentID, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing submission: %w", err)
	}
	if submitted {
		return nil, ErrDuplicateSubmission
	}

	studentExists, err := s.repo.User().ExistsByID(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to check student: %w", err)
	}
	if !studentExists {
		return nil, ErrUserNotFound
	}

	questions := questionPointers(quiz.Questions)
	if errs := validateAnswerSet(questions, answers); len(errs) > 0 {
		return nil, &SubmissionError{Details: errs}
	}

	result := ScoreSubmission(questions, answers)
	submission := &models.Submission{
		QuizID:         quizID,
		StudentID:      studentID,
		SubmissionDate: now,
		Score:          result.Score,
		IsSubmitted:    true,
		Answers:        datatypes.NewJSONType(answers),
	}

	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if err := tx.Submission().Create(ctx, submission); err != nil {
			if repositories.IsDuplicateKeyError(err) {
				return ErrDuplicateSubmission
			}
			return err
		}
		return tx.Grade().Create(ctx, &models.Grade{
			SubmissionID: submission.ID,
			QuizID:       quizID,
			StudentID:    studentID,
			Score:        result.Score,
		})
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateSubmission) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to save submission: %w", err)
	}

	s.publishEvent(ctx, events.QuizSubmitted, events.QuizSubmittedEvent{
		QuizID:       quizID,
		SubmissionID: submission.ID,
		StudentID:    studentID,
		Score:        result.Score,
	})

	s.logger.Info("Quiz submitted", "quiz_id", quizID, "student_id", studentID, "score", result.Score)
	return toSubmissionDTO(submission, true), nil
}

func (s *quizService) CheckSubmissionExists(ctx context.Context, studentID string, quizID uint) (bool, error) {
	if _, err := s.repo.Quiz().GetByID(ctx, quizID); err != nil {
		return false, mapQuizError(err)
	}

	exists, err := s.repo.Submission().ExistsByStudentAndQuiz(ctx, studentID, quizID)
	if err != nil {
		return false, fmt.Errorf("failed to check submission: %w", err)
	}
	return exists, nil
}

func (s *quizService) GetQuizResults(ctx context.Context, quizID uint) ([]*SubmissionDTO, error) {
	if _, err := s.repo.Quiz().GetByID(ctx, quizID); err != nil {
		return nil, mapQuizError(err)
	}

	submissions, _, err := s.repo.Submission().ListByQuiz(ctx, quizID, repositories.SubmissionFilters{SortOrder: "asc"})
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	return toSubmissionDTOs(submissions, true), nil
}

func (s *quizService) GetMyGrades(ctx context.Context, studentID string) ([]*GradeDTO, error) {
	grades, err := s.repo.Grade().ListByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list grades: %w", err)
	}

	result := make([]*GradeDTO, 0, len(grades))
	for _, grade := range grades {
		result = append(result, &GradeDTO{
			ID:           grade.ID,
			SubmissionID: grade.SubmissionID,
			QuizID:       grade.QuizID,
			Score:        grade.Score,
			GradedAt:     grade.UpdatedAt,
		})
	}
	return result, nil
}
