package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/lms-quiz-service/internal/models"
	"github.com/SAP-F-2025/lms-quiz-service/internal/repositories"
	"github.com/SAP-F-2025/lms-quiz-service/internal/validator"
)

type courseService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewCourseService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator) CourseService {
	return &courseService{
		repo:      repo,
		logger:    logger,
		validator: validator,
	}
}

// CreateCourse stores a course. An instructor creating a course without naming
// one becomes its instructor.
func (s *courseService) CreateCourse(ctx context.Context, req *CreateCourseRequest, requester Requester) (*models.Course, error) {
	s.logger.Info("Creating course", "title", req.Title, "requester_id", requester.UserID)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(req.Title)
	exists, err := s.repo.Course().ExistsByTitle(ctx, title, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to check course title: %w", err)
	}
	if exists {
		return nil, ErrCourseAlreadyExists
	}

	instructorID := req.InstructorID
	if instructorID == nil && requester.Role == models.RoleInstructor {
		instructorID = &requester.UserID
	}
	if instructorID != nil {
		if err := s.ensureInstructor(ctx, *instructorID); err != nil {
			return nil, err
		}
	}

	course := &models.Course{
		Title:        title,
		Description:  strings.TrimSpace(req.Description),
		Duration:     req.Duration,
		InstructorID: instructorID,
	}
	if err := s.repo.Course().Create(ctx, course); err != nil {
		if repositories.IsDuplicateKeyError(err) {
			return nil, ErrCourseAlreadyExists
		}
		return nil, fmt.Errorf("failed to create course: %w", err)
	}

	return course, nil
}

func (s *courseService) GetCourse(ctx context.Context, id uint) (*models.Course, error) {
	course, err := s.repo.Course().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	return course, nil
}

func (s *courseService) ListCourses(ctx context.Context, filters repositories.CourseFilters) (*CourseListResponse, error) {
	if filters.Limit <= 0 || filters.Limit > 100 {
		filters.Limit = 20
	}
	if filters.Offset < 0 {
		filters.Offset = 0
	}

	courses, total, err := s.repo.Course().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}

	return &CourseListResponse{
		Courses: courses,
		Total:   total,
		Page:    filters.Offset/filters.Limit + 1,
		Size:    filters.Limit,
	}, nil
}

// UpdateCourse lets admins edit any course and instructors only their own
func (s *courseService) UpdateCourse(ctx context.Context, id uint, req *UpdateCourseRequest, requester Requester) (*models.Course, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	course, err := s.GetCourse(ctx, id)
	if err != nil {
		return nil, err
	}

	if requester.Role != models.RoleAdmin && (course.InstructorID == nil || *course.InstructorID != requester.UserID) {
		return nil, NewPermissionError(requester.UserID, id, "course", "update", "not the course instructor")
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		exists, err := s.repo.Course().ExistsByTitle(ctx, title, &id)
		if err != nil {
			return nil, fmt.Errorf("failed to check course title: %w", err)
		}
		if exists {
			return nil, ErrCourseAlreadyExists
		}
		course.Title = title
	}
	if req.Description != nil {
		course.Description = strings.TrimSpace(*req.Description)
	}
	if req.Duration != nil {
		course.Duration = *req.Duration
	}

	if err := s.repo.Course().Update(ctx, course); err != nil {
		if repositories.IsDuplicateKeyError(err) {
			return nil, ErrCourseAlreadyExists
		}
		return nil, fmt.Errorf("failed to update course: %w", err)
	}
	return course, nil
}

func (s *courseService) AssignInstructor(ctx context.Context, courseID uint, instructorID string) (*models.Course, error) {
	s.logger.Info("Assigning instructor", "course_id", courseID, "instructor_id", instructorID)

	if err := s.ensureInstructor(ctx, instructorID); err != nil {
		return nil, err
	}

	if err := s.repo.Course().AssignInstructor(ctx, courseID, instructorID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to assign instructor: %w", err)
	}

	return s.GetCourse(ctx, courseID)
}

func (s *courseService) ensureInstructor(ctx context.Context, userID string) error {
	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}
	if !user.Role.IsStaff() {
		return NewBusinessRuleError("instructor_role", "only instructors or admins can teach a course", map[string]interface{}{
			"user_id": userID,
			"role":    user.Role,
		})
	}
	return nil
}
