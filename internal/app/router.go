package app

import (
	"learnhub_backend/docs"
	"learnhub_backend/internal/middleware"
	"learnhub_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	api := router.Group("/api")
	api.GET("/health", c.health.HealthCheck)

	a.registerAuthRoutes(api, c)
	a.registerCourseRoutes(api, c)
	a.registerExamRoutes(api, c)
	a.registerResultRoutes(api, c)
	a.registerAdminRoutes(api, c)
}

func (a *App) registerAuthRoutes(api *gin.RouterGroup, c *controllers) {
	auth := api.Group("/auth")
	{
		// 公开接口
		auth.POST("/register", c.auth.Register)
		auth.POST("/login", c.auth.Login)
		auth.POST("/token/refresh", c.auth.Refresh)
		auth.GET("/leaderboard", c.leaderboard.Get)

		authorized := auth.Group("")
		authorized.Use(middleware.AuthMiddleware(a.Config))
		{
			authorized.GET("/me", c.user.Me)
			authorized.PUT("/me", c.user.UpdateMe)
			authorized.GET("/stats", c.user.Stats)
			authorized.GET("/profile/:id", c.user.Profile)
		}

		admin := auth.Group("/admin")
		admin.Use(middleware.AuthMiddleware(a.Config), middleware.StaffMiddleware())
		{
			admin.GET("/users", c.user.ListUsers)
			admin.POST("/users/:id/toggle-staff", middleware.SuperuserMiddleware(), c.user.ToggleStaff)
		}
	}
}

func (a *App) registerCourseRoutes(api *gin.RouterGroup, c *controllers) {
	courses := api.Group("/courses")
	{
		courses.GET("", c.course.List)
		courses.GET("/lessons/:id", middleware.AuthMiddleware(a.Config), c.course.Lesson)
		// 登录用户额外返回 user_status
		courses.GET("/:slug", middleware.TryAuthMiddleware(a.Config), c.course.Detail)
		courses.GET("/:slug/completers", c.course.Completers)

		manage := courses.Group("/admin/manage")
		manage.Use(middleware.AuthMiddleware(a.Config), middleware.StaffMiddleware())
		{
			manage.GET("", c.course.ListCourses)
			manage.POST("", c.course.CreateCourse)
			manage.GET("/:id", c.course.GetCourse)
			manage.PUT("/:id", c.course.UpdateCourse)
			manage.DELETE("/:id", c.course.DeleteCourse)
			manage.GET("/:id/lessons", c.course.ListLessons)
			manage.POST("/:id/lessons", c.course.CreateLesson)
			manage.GET("/lessons/:id", c.course.GetLesson)
			manage.PUT("/lessons/:id", c.course.UpdateLesson)
			manage.DELETE("/lessons/:id", c.course.DeleteLesson)
		}
	}
}

func (a *App) registerExamRoutes(api *gin.RouterGroup, c *controllers) {
	exams := api.Group("/exams")
	exams.Use(middleware.AuthMiddleware(a.Config))
	{
		exams.GET("/:id", c.exam.Get)
		exams.POST("/:id/submit", c.exam.Submit)

		admin := exams.Group("/admin")
		admin.Use(middleware.StaffMiddleware())
		{
			admin.GET("", c.exam.List)
			admin.POST("", c.exam.Create)
			admin.GET("/:id", c.exam.AdminGet)
			admin.PUT("/:id", c.exam.Update)
			admin.DELETE("/:id", c.exam.Delete)
		}
	}
}

func (a *App) registerResultRoutes(api *gin.RouterGroup, c *controllers) {
	results := api.Group("/results")
	{
		// 通过的证书公开可见，登录用户可看到自己未通过的记录与点赞状态
		results.GET("/attempts/:id", middleware.TryAuthMiddleware(a.Config), c.result.Attempt)
		results.GET("/attempts/:id/comments", c.result.Comments)

		authorized := results.Group("")
		authorized.Use(middleware.AuthMiddleware(a.Config))
		{
			authorized.GET("/history", c.result.History)
			authorized.POST("/attempts/:id/comments", c.result.AddComment)
			authorized.POST("/attempts/:id/like", c.result.ToggleLike)
		}
	}
}

func (a *App) registerAdminRoutes(api *gin.RouterGroup, c *controllers) {
	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware(a.Config), middleware.StaffMiddleware())
	{
		admin.GET("/overview", c.admin.Overview)
		admin.GET("/attempts/export", c.admin.ExportAttempts)
		admin.POST("/ranks/recompute", c.admin.RecomputeRanks)
	}
}
