package main

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

func newRouter(cfg *ServerConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:     true,
		LogStatus:  true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			cfg.Logger.Debug("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency))
			return nil
		},
	}))

	e.GET("/health", handlerHealth)

	api := e.Group("/api", cfg.withSession)
	api.GET("/view", cfg.handlerGetView)
	api.POST("/name", cfg.handlerSubmitName)
	api.POST("/age", cfg.handlerSubmitAge)
	api.POST("/quiz", cfg.handlerSubmitQuiz)
	api.POST("/profile", cfg.handlerSubmitProfile)
	api.POST("/role", cfg.handlerSubmitRole)
	api.POST("/restart", cfg.handlerRestart)

	api.POST("/resume", cfg.handlerUploadResume)
	api.GET("/resumes", cfg.handlerListResumes)
	api.POST("/resume/:id/extract", cfg.handlerExtractStoredResume)

	api.POST("/dashboard/tasks/:day/toggle", cfg.handlerToggleTask)
	api.POST("/dashboard/pacing", cfg.handlerSetPacing)

	api.POST("/architecture/toggle", cfg.handlerToggleArchitecture)
	api.GET("/architecture", cfg.handlerGetArchitecture)
	api.GET("/logs", cfg.handlerGetLogs)
	return e
}

func corsSettings(origins []string) *cors.Cors {
	return cors.New(cors.Options{
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedOrigins:   origins,
		AllowCredentials: true,
		AllowedHeaders:   []string{"Content-Type", sessionHeader},
		ExposedHeaders:   []string{sessionHeader},
	})
}
