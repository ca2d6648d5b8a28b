package app

import (
	"edureach_backend/docs"
	"edureach_backend/internal/middleware"
	"edureach_backend/internal/model"
	"edureach_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 需要登录的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(a.services.auth))
	{
		authGroup.POST("/logout", c.auth.Logout)
		authGroup.GET("/session", c.auth.Session)
		authGroup.GET("/dashboard", c.dashboard.GetDashboard)
		authGroup.GET("/courses", c.course.ListCourses)
		authGroup.GET("/courses/:id", c.course.GetCourse)

		a.registerStudentRoutes(authGroup, c)
		a.registerTeacherRoutes(authGroup, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/login", c.auth.Login)
	}
}

func (a *App) registerStudentRoutes(rg *gin.RouterGroup, c *controllers) {
	student := rg.Group("/student")
	student.Use(middleware.RoleMiddleware(model.Student))
	{
		student.GET("/progress", c.course.GetProgress)

		// 测验
		student.GET("/quizzes", c.quiz.ListQuizzes)
		student.POST("/quizzes/:id/start", c.quiz.StartQuiz)
		student.GET("/quiz-attempt", c.quiz.CurrentAttempt)
		student.POST("/quiz-attempt/answer", c.quiz.SelectAnswer)
		student.POST("/quiz-attempt/advance", c.quiz.Advance)
		student.POST("/quiz-attempt/retry", c.quiz.Retry)
		student.DELETE("/quiz-attempt", c.quiz.Reset)
		student.GET("/quiz-attempt/review", c.quiz.Review)

		// 离线内容
		student.GET("/offline", c.offline.GetShelf)
		student.GET("/offline/lessons", c.offline.GetOfflineLessons)
		student.GET("/offline/ws", c.offline.HandleWS)
		student.POST("/offline/:id/download", c.offline.StartDownload)
		student.DELETE("/offline/:id/download", c.offline.CancelDownload)
		student.DELETE("/offline/:id", c.offline.DeleteContent)

		// AI 助教
		student.GET("/tutor", c.tutor.GetHistory)
		student.POST("/tutor", c.tutor.Ask)
	}
}

func (a *App) registerTeacherRoutes(rg *gin.RouterGroup, c *controllers) {
	teacher := rg.Group("/teacher")
	teacher.Use(middleware.RoleMiddleware(model.Teacher))
	{
		teacher.GET("/courses", c.course.TeacherCourses)
		teacher.GET("/analytics", c.analytics.TeacherAnalytics)
		teacher.POST("/offline/:id/package", c.offline.UploadPackage)
	}
}
