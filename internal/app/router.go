package app

import (
	"quizhub_backend/docs"
	"quizhub_backend/internal/config"
	"quizhub_backend/internal/middleware"
	"quizhub_backend/internal/model"
	"quizhub_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 公共路由(无需登录)
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/auth/register", c.auth.Register)
		public.POST("/auth/login", c.auth.Login)
	}

	// 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		authGroup.GET("/auth/profile", c.auth.Profile)

		authGroup.GET("/quizzes", c.quiz.List)
		authGroup.GET("/quizzes/:id", c.quiz.Get)
		authGroup.POST("/quizzes/:id/submit", c.submission.Submit)

		authGroup.GET("/attempts/history", c.submission.History)
	}

	// 管理员相关接口
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(model.RoleAdmin))
	{
		admin.POST("/quizzes", c.quiz.Create)
		admin.PUT("/quizzes/:id", c.quiz.Update)
		admin.DELETE("/quizzes/:id", c.quiz.Delete)
		admin.GET("/quizzes/:id/results", c.quiz.Results)

		admin.GET("/users", c.user.List)
		admin.PUT("/users/:id/role", c.user.UpdateRole)
		admin.DELETE("/users/:id", c.user.Delete)
	}
}
