package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hasan-ston/forstudents/internal/models"
	"github.com/hasan-ston/forstudents/internal/services"
	"github.com/hasan-ston/forstudents/internal/utils"
)

type HandlerManager struct {
	authHandler     *AuthHandler
	documentHandler *DocumentHandler
	questionHandler *QuestionHandler
	billingHandler  *BillingHandler
	feedbackHandler *FeedbackHandler
	auditHandler    *AuditHandler
	authMiddleware  *JWTAuthMiddleware

	serviceManager services.ServiceManager
}

func NewHandlerManager(serviceManager services.ServiceManager, logger utils.Logger) *HandlerManager {
	return &HandlerManager{
		authHandler:     NewAuthHandler(serviceManager.Auth(), logger),
		documentHandler: NewDocumentHandler(serviceManager.Document(), logger),
		questionHandler: NewQuestionHandler(serviceManager.Question(), logger),
		billingHandler:  NewBillingHandler(serviceManager.Billing(), logger),
		feedbackHandler: NewFeedbackHandler(serviceManager.Feedback(), logger),
		auditHandler:    NewAuditHandler(serviceManager.Audit(), logger),
		authMiddleware:  NewJWTAuthMiddleware(serviceManager.Auth()),
		serviceManager:  serviceManager,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1")
	{
		// Auth routes, open to anonymous callers
		auth := v1.Group("/auth")
		{
			auth.POST("/register", hm.authHandler.Register)
			auth.POST("/login", hm.authHandler.Login)
		}

		v1.GET("/me", hm.authMiddleware.AuthMiddleware(), hm.authHandler.Me)

		// Document routes
		docs := v1.Group("/docs")
		{
			// Catalog browsing works anonymously, extra detail appears
			// for uploaders and admins
			docs.GET("", hm.authMiddleware.OptionalAuthMiddleware(), hm.documentHandler.List)
			docs.GET("/:id", hm.authMiddleware.OptionalAuthMiddleware(), hm.documentHandler.Get)

			docs.POST("", hm.authMiddleware.AuthMiddleware(), hm.documentHandler.Upload)
			docs.GET("/:id/download", hm.authMiddleware.AuthMiddleware(), hm.documentHandler.Download)
			docs.DELETE("/:id", hm.authMiddleware.AuthMiddleware(), hm.documentHandler.Delete)

			// Review workflow - admins only
			docs.POST("/:id/approve", hm.authMiddleware.AuthMiddleware(), hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin), hm.documentHandler.Approve)
			docs.POST("/:id/reject", hm.authMiddleware.AuthMiddleware(), hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin), hm.documentHandler.Reject)

			// Practice questions - paid users and admins, enforced in the service
			docs.POST("/:id/questions", hm.authMiddleware.AuthMiddleware(), hm.questionHandler.Generate)
			docs.GET("/:id/questions", hm.authMiddleware.AuthMiddleware(), hm.questionHandler.Get)
		}

		// Billing routes
		billing := v1.Group("/billing")
		{
			billing.POST("/checkout", hm.authMiddleware.AuthMiddleware(), hm.billingHandler.Checkout)
			// Provider callback, authenticated by signature instead of token
			billing.POST("/webhook", hm.billingHandler.Webhook)
		}

		// Feedback routes
		v1.POST("/feedback", hm.authMiddleware.OptionalAuthMiddleware(), hm.feedbackHandler.Submit)
		v1.GET("/feedback", hm.authMiddleware.AuthMiddleware(), hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin), hm.feedbackHandler.List)

		// Audit routes - admins only
		audits := v1.Group("/audits")
		audits.Use(hm.authMiddleware.AuthMiddleware(), hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin))
		{
			audits.GET("", hm.auditHandler.List)
			audits.GET("/export", hm.auditHandler.Export)
		}

		// User administration - admins only
		users := v1.Group("/users")
		users.Use(hm.authMiddleware.AuthMiddleware(), hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin))
		{
			users.POST("/:id/promote", hm.authHandler.Promote)
		}
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		if err := hm.serviceManager.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "forstudents",
		})
	})
}
