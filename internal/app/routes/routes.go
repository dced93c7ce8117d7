package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avillegas/examcore/internal/app/controllers"
	"github.com/avillegas/examcore/internal/app/models"
	"github.com/avillegas/examcore/internal/middleware"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	assignmentController *controllers.ExamAssignmentController,
	responseController *controllers.ExamResponseController,
	authMiddleware *middleware.AuthMiddleware,
) {
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API version group
	v1 := router.Group("/api/v1")

	// --- Public Auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/login", authController.Login)
		auth.POST("/refresh-token", authController.RefreshToken)
	}

	// --- Authenticated Routes Group ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		// Student routes
		studentProtected := authenticated.Group("")
		studentProtected.Use(authMiddleware.RoleRequired(string(models.RoleStudent)))
		{
			studentProtected.GET("/students/me/exams", assignmentController.ListStudentExams)
			studentProtected.POST("/students/me/exams/send", assignmentController.SendToEvaluator)
			studentProtected.POST("/regrades", assignmentController.RequestRegrade)

			studentProtected.POST("/responses", responseController.CreateResponse)
			studentProtected.PUT("/responses/:id", responseController.UpdateResponse)
			studentProtected.GET("/exams/:examId/questions/:index", responseController.GetQuestionByIndex)
			studentProtected.GET("/exams/:examId/questions/:index/response", responseController.GetResponseByIndex)
		}

		// Teacher routes
		teacherProtected := authenticated.Group("")
		teacherProtected.Use(authMiddleware.RoleRequired(string(models.RoleTeacher), string(models.RoleAdmin)))
		{
			teacherProtected.POST("/exams/:examId/assignments", assignmentController.AssignExam)
			teacherProtected.GET("/teachers/me/evaluations", assignmentController.ListEvaluatorExams)
			teacherProtected.POST("/assignments/:id/grade", assignmentController.GradeAssignment)

			teacherProtected.GET("/teachers/me/regrades", assignmentController.ListPendingRegrades)
			teacherProtected.POST("/regrades/:id/resolve", assignmentController.ResolveRegrade)
			teacherProtected.PUT("/responses/:id/manual-points", responseController.UpdateManualPoints)
		}
	}
}
