package handlers

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/lms-quiz-service/internal/models"
	"github.com/SAP-F-2025/lms-quiz-service/internal/repositories"
	"github.com/SAP-F-2025/lms-quiz-service/internal/services"
	"github.com/SAP-F-2025/lms-quiz-service/internal/utils"
	"github.com/SAP-F-2025/lms-quiz-service/internal/validator"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func discardLogger() utils.Logger {
	return utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// headerAuth trusts X-Test-User and X-Test-Role so routes can be tested without tokens
type headerAuth struct{}

func (headerAuth) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Test-User")
		if id == "" {
			abortUnauthorized(c, "authorization header missing")
			return
		}
		setUser(c, &models.User{ID: id, Role: models.UserRole(c.GetHeader("X-Test-Role"))})
		c.Next()
	}
}

// Fakes embed the interface; calling a method a test did not stub panics.

type fakeQuizService struct {
	services.QuizService

	createQuiz          func(ctx context.Context, req *services.CreateQuizRequest, instructorID string) (*services.QuizDTO, error)
	updateQuestion      func(ctx context.Context, quizID uint, index int, req *services.UpdateQuestionRequest) (*services.QuestionDTO, error)
	updateCorrectAnswer func(ctx context.Context, questionID uint, newAnswer string) (*services.QuestionDTO, error)
	closeQuiz           func(ctx context.Context, quizID uint) error
	deleteQuiz          func(ctx context.Context, quizID uint) error
	getQuizStatus       func(ctx context.Context, quizID uint) (*services.QuizStatusResponse, error)
	submitQuiz          func(ctx context.Context, studentID string, quizID uint, answers models.AnswerSet) (*services.SubmissionDTO, error)
	getMyGrades         func(ctx context.Context, studentID string) ([]*services.GradeDTO, error)
}

func (f *fakeQuizService) CreateQuiz(ctx context.Context, req *services.CreateQuizRequest, instructorID string) (*services.QuizDTO, error) {
	return f.createQuiz(ctx, req, instructorID)
}

func (f *fakeQuizService) UpdateQuestion(ctx context.Context, quizID uint, index int, req *services.UpdateQuestionRequest) (*services.QuestionDTO, error) {
	return f.updateQuestion(ctx, quizID, index, req)
}

func (f *fakeQuizService) UpdateCorrectAnswer(ctx context.Context, questionID uint, newAnswer string) (*services.QuestionDTO, error) {
	return f.updateCorrectAnswer(ctx, questionID, newAnswer)
}

func (f *fakeQuizService) CloseQuiz(ctx context.Context, quizID uint) error {
	return f.closeQuiz(ctx, quizID)
}

func (f *fakeQuizService) DeleteQuiz(ctx context.Context, quizID uint) error {
	return f.deleteQuiz(ctx, quizID)
}

func (f *fakeQuizService) GetQuizStatus(ctx context.Context, quizID uint) (*services.QuizStatusResponse, error) {
	return f.getQuizStatus(ctx, quizID)
}

func (f *fakeQuizService) SubmitQuiz(ctx context.Context, studentID string, quizID uint, answers models.AnswerSet) (*services.SubmissionDTO, error) {
	return f.submitQuiz(ctx, studentID, quizID, answers)
}

func (f *fakeQuizService) GetMyGrades(ctx context.Context, studentID string) ([]*services.GradeDTO, error) {
	return f.getMyGrades(ctx, studentID)
}

type fakeGradingService struct {
	gradeQuiz func(ctx context.Context, quizID uint, answers models.AnswerSet, requester services.Requester) (*services.GradeQuizResponse, error)
}

func (f *fakeGradingService) GradeQuiz(ctx context.Context, quizID uint, answers models.AnswerSet, requester services.Requester) (*services.GradeQuizResponse, error) {
	return f.gradeQuiz(ctx, quizID, answers, requester)
}

type fakeCourseService struct {
	services.CourseService

	assignInstructor func(ctx context.Context, courseID uint, instructorID string) (*models.Course, error)
}

func (f *fakeCourseService) AssignInstructor(ctx context.Context, courseID uint, instructorID string) (*models.Course, error) {
	return f.assignInstructor(ctx, courseID, instructorID)
}

type fakeImportExportService struct {
	services.ImportExportService

	export func(ctx context.Context, quizID uint, w io.Writer) error
}

func (f *fakeImportExportService) ExportQuizResults(ctx context.Context, quizID uint, w io.Writer) error {
	return f.export(ctx, quizID, w)
}

type fakeServiceManager struct {
	quiz         *fakeQuizService
	grading      *fakeGradingService
	course       *fakeCourseService
	importExport *fakeImportExportService
	healthErr    error
}

func newFakeServiceManager() *fakeServiceManager {
	return &fakeServiceManager{
		quiz:         &fakeQuizService{},
		grading:      &fakeGradingService{},
		course:       &fakeCourseService{},
		importExport: &fakeImportExportService{},
	}
}

func (m *fakeServiceManager) Quiz() services.QuizService                 { return m.quiz }
func (m *fakeServiceManager) Grading() services.GradingService           { return m.grading }
func (m *fakeServiceManager) Course() services.CourseService             { return m.course }
func (m *fakeServiceManager) ImportExport() services.ImportExportService { return m.importExport }
func (m *fakeServiceManager) Initialize(ctx context.Context) error       { return nil }
func (m *fakeServiceManager) HealthCheck(ctx context.Context) error      { return m.healthErr }
func (m *fakeServiceManager) Shutdown(ctx context.Context) error         { return nil }

type fakeUserRepo struct {
	users     map[string]*models.User
	err       error
	upsertErr error
	lastQuery repositories.UserFilters
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[string]*models.User)}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	user, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) GetByIDs(ctx context.Context, ids []string) ([]*models.User, error) {
	var out []*models.User
	for _, id := range ids {
		if user, ok := r.users[id]; ok {
			out = append(out, user)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) List(ctx context.Context, filters repositories.UserFilters) ([]*models.User, int64, error) {
	r.lastQuery = filters
	var out []*models.User
	for _, user := range r.users {
		if filters.Role == nil || user.Role == *filters.Role {
			out = append(out, user)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeUserRepo) ExistsByID(ctx context.Context, id string) (bool, error) {
	_, ok := r.users[id]
	return ok, nil
}

func (r *fakeUserRepo) HasRole(ctx context.Context, id string, role models.UserRole) (bool, error) {
	user, ok := r.users[id]
	return ok && user.Role == role, nil
}

func (r *fakeUserRepo) Upsert(ctx context.Context, user *models.User) error {
	if r.upsertErr != nil {
		return r.upsertErr
	}
	v := *user
	r.users[user.ID] = &v
	return nil
}

func newTestRouter(sm *fakeServiceManager, userRepo *fakeUserRepo) *gin.Engine {
	logger := discardLogger()
	router := gin.New()
	SetupMiddleware(router, logger)
	NewHandlerManager(sm, validator.New(), logger, headerAuth{}, userRepo).SetupRoutes(router)
	return router
}

func doRequest(router http.Handler, method, path, body, userID string, role models.UserRole) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set("X-Test-User", userID)
		req.Header.Set("X-Test-Role", string(role))
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}
