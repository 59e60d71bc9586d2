package routes

import (
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/onurcolak/sms-sender/environments"
	"github.com/onurcolak/sms-sender/handlers"
	"github.com/onurcolak/sms-sender/internal/middlewares"
)

// RegisterRoutes registers all API routes with middleware
func RegisterRoutes(
	e *echo.Echo,
	healthHandler *handlers.HealthHandler,
	smsHandler *handlers.SMSHandler,
	providerHandler *handlers.ProviderHandler,
	schedulerHandler *handlers.SchedulerHandler,
	cfg *environments.Config,
) {
	e.GET("/health", healthHandler.Health)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	v1 := e.Group("/api/v1")

	// SMS and provider routes share the sms API key
	smsAuth := middlewares.APIKeyAuth(cfg.Auth.SMSAPIKey)

	smsGroup := v1.Group("/sms", smsAuth)

	smsGroup.POST("", smsHandler.SendSMS)
	smsGroup.GET("", smsHandler.GetLogs)
	smsGroup.POST("/queue", smsHandler.QueueSMS)
	smsGroup.POST("/flush", smsHandler.FlushQueue)
	smsGroup.GET("/stats", smsHandler.GetStats)
	smsGroup.GET("/cached", smsHandler.GetCachedResults)
	smsGroup.GET("/cached/:id", smsHandler.GetCachedResult)

	providers := v1.Group("/providers", smsAuth)

	providers.GET("", providerHandler.ListProviders)
	providers.PUT("/active", providerHandler.SetActiveProvider)
	providers.GET("/:name/messages/:id", providerHandler.GetMessageStatus)
	providers.GET("/:name/credit", providerHandler.GetCredit)
	providers.GET("/:name/reports", providerHandler.GetReports)

	schedulerGroup := v1.Group("/scheduler", middlewares.APIKeyAuth(cfg.Auth.SchedulerAPIKey))

	schedulerGroup.POST("/start", schedulerHandler.StartScheduler)
	schedulerGroup.POST("/stop", schedulerHandler.StopScheduler)
	schedulerGroup.GET("/status", schedulerHandler.GetSchedulerStatus)
}
