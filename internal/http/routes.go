package http

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/tazhibayda/tasks-service/internal/metrics"
)

func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(metrics.Middleware())
	r.Use(RateLimit(h.Cfg.RateLimitMax, h.Cfg.RateLimitWindow))

	r.GET("/healthz", h.Healthz)
	r.GET("/metrics", metrics.Handler())
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api")
	{
		api.POST("/users/register", h.Register)
		api.POST("/users/auth", h.Login)

		api.GET("/auth/google", h.GoogleAuth)
		api.GET("/auth/google/callback", h.GoogleCallback)
		api.GET("/auth/me", h.AuthRequired(), h.Me)

		tasks := api.Group("/tasks", h.AuthRequired())
		{
			tasks.POST("", h.CreateTask)
			tasks.GET("", h.ListTasks)
			tasks.PATCH("/:id", h.UpdateTask)
			tasks.DELETE("/:id", h.DeleteTask)
		}
	}

	return r
}
