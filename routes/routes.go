package routes

import (
	"ethics-review-api/controllers"
	"ethics-review-api/middleware"
	"ethics-review-api/models"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine) {
	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes
		public := v1.Group("")
		{
			// Authentication
			public.POST("/login", controllers.Login)

			// Health check
			public.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"status":  "ok",
					"message": "Ethics Review API is running",
				})
			})
		}

		// Protected routes (require authentication)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			// Auth management
			protected.POST("/refresh", controllers.RefreshToken)
			protected.GET("/profile", controllers.GetProfile)
			protected.PUT("/change-password", controllers.ChangePassword)

			// Boards & memberships
			boards := protected.Group("/boards")
			{
				boards.GET("", controllers.GetBoards)
				boards.GET("/:id", controllers.GetBoard)

				// Only admin manages boards and memberships
				boards.POST("", middleware.RequireRole(models.RoleAdmin, models.RoleSuperuser), controllers.CreateBoard)
				boards.PUT("/:id", middleware.RequireRole(models.RoleAdmin, models.RoleSuperuser), controllers.UpdateBoard)
				boards.GET("/:id/members", controllers.GetBoardMembers)
				boards.POST("/:id/members", middleware.RequireRole(models.RoleAdmin, models.RoleSuperuser), controllers.AddBoardMember)
				boards.DELETE("/:id/members/:user_id", middleware.RequireRole(models.RoleAdmin, models.RoleSuperuser), controllers.RemoveBoardMember)

				// Form definition
				boards.GET("/:id/sections", controllers.GetSections)
				boards.POST("/:id/sections", middleware.RequireRole(models.RoleStaff, models.RoleAdmin, models.RoleSuperuser), controllers.CreateSection)
				boards.GET("/:id/questions", controllers.GetQuestions)
				boards.POST("/:id/questions", middleware.RequireRole(models.RoleStaff, models.RoleAdmin, models.RoleSuperuser), controllers.CreateQuestion)
			}

			sections := protected.Group("/sections")
			{
				sections.PUT("/:id", middleware.RequireRole(models.RoleStaff, models.RoleAdmin, models.RoleSuperuser), controllers.UpdateSection)
			}

			questions := protected.Group("/questions")
			{
				questions.PUT("/:id", middleware.RequireRole(models.RoleStaff, models.RoleAdmin, models.RoleSuperuser), controllers.UpdateQuestion)
				questions.DELETE("/:id", middleware.RequireRole(models.RoleStaff, models.RoleAdmin, models.RoleSuperuser), controllers.RetireQuestion)
			}

			// Submission lifecycle
			submissions := protected.Group("/submissions")
			{
				submissions.GET("", controllers.GetSubmissions)
				submissions.POST("", controllers.CreateSubmission)
				submissions.GET("/:id", controllers.GetSubmission)
				submissions.PUT("/:id", controllers.UpdateSubmission)

				submissions.POST("/:id/responses", controllers.SaveResponses)
				submissions.GET("/:id/files", controllers.GetFiles)
				submissions.POST("/:id/files", controllers.AttachFile)

				submissions.POST("/:id/submit", controllers.SubmitSubmission)
				submissions.POST("/:id/triage", controllers.TriageSubmission)
				submissions.POST("/:id/assign-main", controllers.AssignMainReviewer)
				submissions.POST("/:id/assign-reviewers", controllers.AssignReviewers)
				submissions.POST("/:id/resubmit", controllers.ResubmitSubmission)
				submissions.POST("/:id/escalate", controllers.EscalateSubmission)

				submissions.GET("/:id/reviews", controllers.GetReviews)
				submissions.POST("/:id/reviews", controllers.RecordVerdict)
				submissions.GET("/:id/decision", controllers.GetDecision)
				submissions.POST("/:id/decision", controllers.IssueDecision)
				submissions.GET("/:id/history", controllers.GetHistory)

				// AI assist
				submissions.POST("/:id/ai-summary", controllers.GenerateAISummary)
				submissions.POST("/:id/ai-summary/approve", controllers.ApproveAISummary)
				submissions.POST("/:id/ai-prefill", controllers.PrefillResponses)
			}
		}
	}
}
