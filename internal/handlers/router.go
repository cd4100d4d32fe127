package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/lms-quiz-service/internal/models"
	"github.com/SAP-F-2025/lms-quiz-service/internal/repositories"
	"github.com/SAP-F-2025/lms-quiz-service/internal/services"
	"github.com/SAP-F-2025/lms-quiz-service/internal/utils"
	"github.com/SAP-F-2025/lms-quiz-service/internal/validator"
)

const serviceName = "lms-quiz-service"

type HandlerManager struct {
	quizHandler    *QuizHandler
	gradingHandler *GradingHandler
	courseHandler  *CourseHandler
	userHandler    *UserHandler
	authProvider   AuthProvider
	serviceManager services.ServiceManager
	logger         utils.Logger
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	validator *validator.Validator,
	logger utils.Logger,
	authProvider AuthProvider,
	userRepo repositories.UserRepository,
) *HandlerManager {
	return &HandlerManager{
		quizHandler:    NewQuizHandler(serviceManager.Quiz(), serviceManager.ImportExport(), logger),
		gradingHandler: NewGradingHandler(serviceManager.Grading(), validator, logger),
		courseHandler:  NewCourseHandler(serviceManager.Course(), validator, logger),
		userHandler:    NewUserHandler(userRepo, logger),
		authProvider:   authProvider,
		serviceManager: serviceManager,
		logger:         logger,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	staff := RequireRoleMiddleware(models.RoleInstructor, models.RoleAdmin)
	studentOnly := RequireExactRoleMiddleware(models.RoleStudent)
	adminOnly := RequireRoleMiddleware(models.RoleAdmin)

	v1 := router.Group("/api/v1")
	v1.Use(hm.authProvider.AuthMiddleware())
	{
		quizzes := v1.Group("/quizzes")
		{
			// Authoring - Instructors and Admins only
			quizzes.POST("", staff, hm.quizHandler.CreateQuiz)
			quizzes.PUT("/:id/questions/:index", staff, hm.quizHandler.UpdateQuestion)
			quizzes.PATCH("/questions/:question_id/correct-answer", staff, hm.quizHandler.UpdateCorrectAnswer)
			quizzes.PATCH("/:id/close", staff, hm.quizHandler.CloseQuiz)
			quizzes.DELETE("/:id", staff, hm.quizHandler.DeleteQuiz)
			quizzes.GET("/:id/results", staff, hm.quizHandler.GetQuizResults)
			quizzes.GET("/:id/results/export", staff, hm.quizHandler.ExportQuizResults)

			// Reads - All authenticated users, answers redacted for students
			quizzes.GET("/course/:course_id", hm.quizHandler.GetQuizzesByCourse)
			quizzes.GET("/:id", hm.quizHandler.GetQuizDetails)
			quizzes.GET("/:id/questions", hm.quizHandler.GetQuizQuestions)
			quizzes.GET("/:id/status", hm.quizHandler.GetQuizStatus)

			// Submissions - Students only
			quizzes.POST("/:id/submit", studentOnly, hm.quizHandler.SubmitQuiz)
			quizzes.GET("/:id/submissions/check", studentOnly, hm.quizHandler.CheckSubmission)
		}

		v1.POST("/grading/quizzes/:id", hm.gradingHandler.GradeQuiz)
		v1.GET("/grades/me", studentOnly, hm.quizHandler.GetMyGrades)

		courses := v1.Group("/courses")
		{
			courses.POST("", staff, hm.courseHandler.CreateCourse)
			courses.GET("", hm.courseHandler.ListCourses)
			courses.GET("/:id", hm.courseHandler.GetCourse)
			courses.PUT("/:id", staff, hm.courseHandler.UpdateCourse)
			courses.POST("/:id/instructor", adminOnly, hm.courseHandler.AssignInstructor)
		}

		users := v1.Group("/users")
		users.Use(staff)
		{
			users.GET("", hm.userHandler.ListUsers)
			users.GET("/:id", hm.userHandler.GetUser)
		}
	}

	router.GET("/health", hm.HealthCheck)
}

// HealthCheck pings the database through the service manager
func (hm *HandlerManager) HealthCheck(c *gin.Context) {
	if err := hm.serviceManager.HealthCheck(c.Request.Context()); err != nil {
		utils.FromContext(c.Request.Context(), hm.logger).Error("Health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "unhealthy",
			"service": serviceName,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": serviceName,
	})
}
