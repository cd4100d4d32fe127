package services

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/lms-quiz-service/internal/models"
	"github.com/SAP-F-2025/lms-quiz-service/internal/repositories"
)

// memoryRepository is an in-memory repositories.Repository. WithTransaction
// restores a snapshot when fn fails.
type memoryRepository struct {
	mu sync.Mutex

	users       map[string]*models.User
	courses     map[uint]*models.Course
	quizzes     map[uint]*models.Quiz
	questions   map[uint]*models.Question
	submissions map[uint]*models.Submission
	grades      map[uint]*models.Grade
	nextID      uint

	// failures keyed by "<store>.<method>", e.g. "grade.create"
	failures map[string]error
	// deletes records DeleteByQuiz/Delete calls in order
	deletes []string
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{
		users:       map[string]*models.User{},
		courses:     map[uint]*models.Course{},
		quizzes:     map[uint]*models.Quiz{},
		questions:   map[uint]*models.Question{},
		submissions: map[uint]*models.Submission{},
		grades:      map[uint]*models.Grade{},
		failures:    map[string]error{},
	}
}

func (r *memoryRepository) id() uint {
	r.nextID++
	return r.nextID
}

func (r *memoryRepository) fail(op string) error {
	return r.failures[op]
}

func (r *memoryRepository) User() repositories.UserRepository             { return memoryUsers{r} }
func (r *memoryRepository) Course() repositories.CourseRepository         { return memoryCourses{r} }
func (r *memoryRepository) Quiz() repositories.QuizRepository             { return memoryQuizzes{r} }
func (r *memoryRepository) Question() repositories.QuestionRepository     { return memoryQuestions{r} }
func (r *memoryRepository) Submission() repositories.SubmissionRepository { return memorySubmissions{r} }
func (r *memoryRepository) Grade() repositories.GradeRepository           { return memoryGrades{r} }

func (r *memoryRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	r.mu.Lock()
	snapshot := r.snapshot()
	r.mu.Unlock()

	if err := fn(r); err != nil {
		r.mu.Lock()
		r.restore(snapshot)
		r.mu.Unlock()
		return err
	}
	return nil
}

func (r *memoryRepository) Ping(ctx context.Context) error { return r.fail("ping") }
func (r *memoryRepository) Close() error                   { return nil }

type memorySnapshot struct {
	courses     map[uint]models.Course
	quizzes     map[uint]models.Quiz
	questions   map[uint]models.Question
	submissions map[uint]models.Submission
	grades      map[uint]models.Grade
}

func (r *memoryRepository) snapshot() memorySnapshot {
	return memorySnapshot{
		courses:     copyValues(r.courses),
		quizzes:     copyValues(r.quizzes),
		questions:   copyValues(r.questions),
		submissions: copyValues(r.submissions),
		grades:      copyValues(r.grades),
	}
}

func (r *memoryRepository) restore(s memorySnapshot) {
	r.courses = copyPointers(s.courses)
	r.quizzes = copyPointers(s.quizzes)
	r.questions = copyPointers(s.questions)
	r.submissions = copyPointers(s.submissions)
	r.grades = copyPointers(s.grades)
}

func copyValues[T any](in map[uint]*T) map[uint]T {
	out := make(map[uint]T, len(in))
	for k, v := range in {
		out[k] = *v
	}
	return out
}

func copyPointers[T any](in map[uint]T) map[uint]*T {
	out := make(map[uint]*T, len(in))
	for k, v := range in {
		out[k] = &v
	}
	return out
}

func sortedValues[T any](in map[uint]*T, keep func(*T) bool) []*T {
	var out []*T
	for _, k := range slices.Sorted(maps.Keys(in)) {
		if keep(in[k]) {
			v := *in[k]
			out = append(out, &v)
		}
	}
	return out
}

// ===== FIXTURES =====

func (r *memoryRepository) addUser(id string, role models.UserRole) {
	r.users[id] = &models.User{ID: id, FullName: id, Email: id + "@example.com", Role: role}
}

func (r *memoryRepository) addCourse(title string) *models.Course {
	course := &models.Course{ID: r.id(), Title: title, Description: title, Duration: 10}
	r.courses[course.ID] = course
	v := *course
	return &v
}

// addQuiz stores a quiz and its questions as given and returns the stored copy
func (r *memoryRepository) addQuiz(quiz *models.Quiz) *models.Quiz {
	if err := (memoryQuizzes{r}).Create(context.Background(), quiz); err != nil {
		panic(err)
	}
	return quiz
}

func (r *memoryRepository) submissionFor(studentID string, quizID uint) *models.Submission {
	for _, s := range r.submissions {
		if s.StudentID == studentID && s.QuizID == quizID {
			return s
		}
	}
	return nil
}

func (r *memoryRepository) gradeFor(submissionID uint) *models.Grade {
	for _, g := range r.grades {
		if g.SubmissionID == submissionID {
			return g
		}
	}
	return nil
}

// ===== USERS =====

type memoryUsers struct{ r *memoryRepository }

func (m memoryUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	if err := m.r.fail("user.get"); err != nil {
		return nil, err
	}
	user, ok := m.r.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	v := *user
	return &v, nil
}

func (m memoryUsers) GetByIDs(ctx context.Context, ids []string) ([]*models.User, error) {
	var out []*models.User
	for _, id := range ids {
		if user, ok := m.r.users[id]; ok {
			v := *user
			out = append(out, &v)
		}
	}
	return out, nil
}

func (m memoryUsers) List(ctx context.Context, filters repositories.UserFilters) ([]*models.User, int64, error) {
	var out []*models.User
	for _, user := range m.r.users {
		if filters.Role == nil || user.Role == *filters.Role {
			v := *user
			out = append(out, &v)
		}
	}
	slices.SortFunc(out, func(a, b *models.User) int { return cmp.Compare(a.ID, b.ID) })
	return out, int64(len(out)), nil
}

func (m memoryUsers) ExistsByID(ctx context.Context, id string) (bool, error) {
	if err := m.r.fail("user.exists"); err != nil {
		return false, err
	}
	_, ok := m.r.users[id]
	return ok, nil
}

func (m memoryUsers) HasRole(ctx context.Context, id string, role models.UserRole) (bool, error) {
	user, ok := m.r.users[id]
	return ok && user.Role == role, nil
}

func (m memoryUsers) Upsert(ctx context.Context, user *models.User) error {
	if err := m.r.fail("user.upsert"); err != nil {
		return err
	}
	v := *user
	m.r.users[user.ID] = &v
	return nil
}

// ===== COURSES =====

type memoryCourses struct{ r *memoryRepository }

func (m memoryCourses) Create(ctx context.Context, course *models.Course) error {
	for _, existing := range m.r.courses {
		if existing.Title == course.Title {
			return fmt.Errorf("course title: %w", gorm.ErrDuplicatedKey)
		}
	}
	course.ID = m.r.id()
	course.CreatedAt = time.Now()
	v := *course
	m.r.courses[course.ID] = &v
	return nil
}

func (m memoryCourses) GetByID(ctx context.Context, id uint) (*models.Course, error) {
	course, ok := m.r.courses[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	v := *course
	return &v, nil
}

func (m memoryCourses) Update(ctx context.Context, course *models.Course) error {
	if _, ok := m.r.courses[course.ID]; !ok {
		return repositories.ErrNotFound
	}
	v := *course
	m.r.courses[course.ID] = &v
	return nil
}

func (m memoryCourses) List(ctx context.Context, filters repositories.CourseFilters) ([]*models.Course, int64, error) {
	all := sortedValues(m.r.courses, func(c *models.Course) bool {
		if filters.InstructorID != nil && (c.InstructorID == nil || *c.InstructorID != *filters.InstructorID) {
			return false
		}
		return filters.Query == "" || strings.Contains(strings.ToLower(c.Title), strings.ToLower(filters.Query))
	})
	total := int64(len(all))
	start := min(filters.Offset, len(all))
	end := len(all)
	if filters.Limit > 0 {
		end = min(start+filters.Limit, len(all))
	}
	return all[start:end], total, nil
}

func (m memoryCourses) ExistsByID(ctx context.Context, id uint) (bool, error) {
	_, ok := m.r.courses[id]
	return ok, nil
}

func (m memoryCourses) ExistsByTitle(ctx context.Context, title string, excludeID *uint) (bool, error) {
	for _, c := range m.r.courses {
		if strings.EqualFold(c.Title, title) && (excludeID == nil || c.ID != *excludeID) {
			return true, nil
		}
	}
	return false, nil
}

func (m memoryCourses) AssignInstructor(ctx context.Context, courseID uint, instructorID string) error {
	course, ok := m.r.courses[courseID]
	if !ok {
		return repositories.ErrNotFound
	}
	course.InstructorID = &instructorID
	return nil
}

// ===== QUIZZES =====

type memoryQuizzes struct{ r *memoryRepository }

func (m memoryQuizzes) Create(ctx context.Context, quiz *models.Quiz) error {
	if err := m.r.fail("quiz.create"); err != nil {
		return err
	}
	quiz.ID = m.r.id()
	quiz.CreatedAt = time.Now()
	for i := range quiz.Questions {
		question := &quiz.Questions[i]
		question.ID = m.r.id()
		question.QuizID = quiz.ID
		v := *question
		m.r.questions[question.ID] = &v
	}
	stored := *quiz
	stored.Questions = nil
	m.r.quizzes[quiz.ID] = &stored
	return nil
}

func (m memoryQuizzes) GetByID(ctx context.Context, id uint) (*models.Quiz, error) {
	quiz, ok := m.r.quizzes[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	v := *quiz
	return &v, nil
}

func (m memoryQuizzes) GetByIDWithQuestions(ctx context.Context, id uint) (*models.Quiz, error) {
	quiz, err := m.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	quiz.Questions = m.questionsOf(id)
	return quiz, nil
}

func (m memoryQuizzes) questionsOf(quizID uint) []models.Question {
	questions, _ := memoryQuestions(m).GetByQuiz(context.Background(), quizID)
	out := make([]models.Question, 0, len(questions))
	for _, q := range questions {
		out = append(out, *q)
	}
	return out
}

func (m memoryQuizzes) GetByCourse(ctx context.Context, courseID uint) ([]*models.Quiz, error) {
	quizzes := sortedValues(m.r.quizzes, func(q *models.Quiz) bool { return q.CourseID == courseID })
	for _, quiz := range quizzes {
		quiz.Questions = m.questionsOf(quiz.ID)
	}
	return quizzes, nil
}

func (m memoryQuizzes) MarkClosed(ctx context.Context, id uint) error {
	quiz, ok := m.r.quizzes[id]
	if !ok {
		return repositories.ErrNotFound
	}
	quiz.IsClosed = true
	return nil
}

func (m memoryQuizzes) Delete(ctx context.Context, id uint) error {
	if err := m.r.fail("quiz.delete"); err != nil {
		return err
	}
	if _, ok := m.r.quizzes[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(m.r.quizzes, id)
	m.r.deletes = append(m.r.deletes, "quiz")
	return nil
}

// ===== QUESTIONS =====

type memoryQuestions struct{ r *memoryRepository }

func (m memoryQuestions) GetByID(ctx context.Context, id uint) (*models.Question, error) {
	question, ok := m.r.questions[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	v := *question
	return &v, nil
}

func (m memoryQuestions) GetByQuiz(ctx context.Context, quizID uint) ([]*models.Question, error) {
	questions := sortedValues(m.r.questions, func(q *models.Question) bool { return q.QuizID == quizID })
	slices.SortStableFunc(questions, func(a, b *models.Question) int { return cmp.Compare(a.Position, b.Position) })
	return questions, nil
}

func (m memoryQuestions) Update(ctx context.Context, question *models.Question) error {
	if err := m.r.fail("question.update"); err != nil {
		return err
	}
	if _, ok := m.r.questions[question.ID]; !ok {
		return repositories.ErrNotFound
	}
	v := *question
	m.r.questions[question.ID] = &v
	return nil
}

func (m memoryQuestions) DeleteByQuiz(ctx context.Context, quizID uint) error {
	for id, q := range m.r.questions {
		if q.QuizID == quizID {
			delete(m.r.questions, id)
		}
	}
	m.r.deletes = append(m.r.deletes, "questions")
	return nil
}

// ===== SUBMISSIONS =====

type memorySubmissions struct{ r *memoryRepository }

func (m memorySubmissions) Create(ctx context.Context, submission *models.Submission) error {
	if err := m.r.fail("submission.create"); err != nil {
		return err
	}
	if m.r.submissionFor(submission.StudentID, submission.QuizID) != nil {
		return fmt.Errorf("submission: %w", gorm.ErrDuplicatedKey)
	}
	submission.ID = m.r.id()
	v := *submission
	m.r.submissions[submission.ID] = &v
	return nil
}

func (m memorySubmissions) GetByStudentAndQuiz(ctx context.Context, studentID string, quizID uint) (*models.Submission, error) {
	submission := m.r.submissionFor(studentID, quizID)
	if submission == nil {
		return nil, repositories.ErrNotFound
	}
	v := *submission
	return &v, nil
}

func (m memorySubmissions) ExistsByStudentAndQuiz(ctx context.Context, studentID string, quizID uint) (bool, error) {
	if err := m.r.fail("submission.exists"); err != nil {
		return false, err
	}
	return m.r.submissionFor(studentID, quizID) != nil, nil
}

func (m memorySubmissions) ListByQuiz(ctx context.Context, quizID uint, filters repositories.SubmissionFilters) ([]*models.Submission, int64, error) {
	submissions := sortedValues(m.r.submissions, func(s *models.Submission) bool { return s.QuizID == quizID })
	return submissions, int64(len(submissions)), nil
}

func (m memorySubmissions) UpdateScore(ctx context.Context, id uint, score int) error {
	submission, ok := m.r.submissions[id]
	if !ok {
		return repositories.ErrNotFound
	}
	submission.Score = score
	return nil
}

func (m memorySubmissions) DeleteByQuiz(ctx context.Context, quizID uint) error {
	for id, s := range m.r.submissions {
		if s.QuizID == quizID {
			delete(m.r.submissions, id)
		}
	}
	m.r.deletes = append(m.r.deletes, "submissions")
	return nil
}

// ===== GRADES =====

type memoryGrades struct{ r *memoryRepository }

func (m memoryGrades) Create(ctx context.Context, grade *models.Grade) error {
	if err := m.r.fail("grade.create"); err != nil {
		return err
	}
	grade.ID = m.r.id()
	grade.CreatedAt = time.Now()
	grade.UpdatedAt = grade.CreatedAt
	v := *grade
	m.r.grades[grade.ID] = &v
	return nil
}

func (m memoryGrades) UpdateScoreBySubmission(ctx context.Context, submissionID uint, score int) error {
	if err := m.r.fail("grade.update"); err != nil {
		return err
	}
	grade := m.r.gradeFor(submissionID)
	if grade == nil {
		return repositories.ErrNotFound
	}
	grade.Score = score
	return nil
}

func (m memoryGrades) ListByStudent(ctx context.Context, studentID string) ([]*models.Grade, error) {
	return sortedValues(m.r.grades, func(g *models.Grade) bool { return g.StudentID == studentID }), nil
}

func (m memoryGrades) DeleteByQuiz(ctx context.Context, quizID uint) error {
	for id, g := range m.r.grades {
		if g.QuizID == quizID {
			delete(m.r.grades, id)
		}
	}
	m.r.deletes = append(m.r.deletes, "grades")
	return nil
}
