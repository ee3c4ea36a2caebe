package router

import (
	"github.com/gin-gonic/gin"

	"github.com/carelinkvn/carelink-backend/internal/config"
	"github.com/carelinkvn/carelink-backend/internal/http/handlers"
	"github.com/carelinkvn/carelink-backend/internal/http/middleware"
	"github.com/carelinkvn/carelink-backend/internal/models"
	"github.com/carelinkvn/carelink-backend/internal/service"
)

func SetupRouter(
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	matchingHandler *handlers.MatchingHandler,
	contractHandler *handlers.ContractHandler,
	transactionHandler *handlers.TransactionHandler,
	disputeHandler *handlers.DisputeHandler,
	withdrawalHandler *handlers.WithdrawalHandler,
	healthHandler *handlers.HealthHandler,
	tokenManager *service.TokenManager,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", healthHandler.Health)

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authRateLimit := middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod)
	authGroup.Use(authRateLimit)
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
	}

	protectedAuth := api.Group("/auth")
	protectedAuth.Use(middleware.AuthMiddleware(tokenManager))
	{
		protectedAuth.GET("/me", authHandler.Me)
	}

	adminOnly := middleware.RequireRoles(models.RoleAdmin)

	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(tokenManager))
	{
		protected.POST("/matchings", middleware.RequireRoles(models.RoleElderly), matchingHandler.Create)
		protected.GET("/matchings", matchingHandler.List)
		protected.GET("/matchings/:id", middleware.UUIDValidator("id"), matchingHandler.Get)
		protected.GET("/matchings/:id/contract", middleware.UUIDValidator("id"), contractHandler.GetByMatching)
		protected.PATCH("/matchings/:id/booking", middleware.UUIDValidator("id"), matchingHandler.UpdateBookingTime)
		protected.POST("/matchings/:id/sign", middleware.UUIDValidator("id"), matchingHandler.RecordSignature)
		protected.POST("/matchings/:id/violation", middleware.UUIDValidator("id"), matchingHandler.ReportViolation)
		protected.POST("/matchings/:id/complete", middleware.UUIDValidator("id"), adminOnly, matchingHandler.Complete)
		protected.POST("/matchings/:id/reset", middleware.UUIDValidator("id"), adminOnly, matchingHandler.Reset)
		protected.DELETE("/matchings/:id", middleware.UUIDValidator("id"), adminOnly, matchingHandler.Delete)

		protected.GET("/contracts", contractHandler.List)
		protected.GET("/contracts/:id", middleware.UUIDValidator("id"), contractHandler.Get)
		protected.PUT("/contracts/:id", middleware.UUIDValidator("id"), adminOnly, contractHandler.Update)
		protected.PUT("/contracts/:id/fill", middleware.UUIDValidator("id"), middleware.RequireRoles(models.RoleNurse, models.RoleAdmin), contractHandler.FillDetails)
		protected.POST("/contracts/:id/sign/request", middleware.UUIDValidator("id"), contractHandler.RequestSignatureCode)
		protected.POST("/contracts/:id/sign/confirm", middleware.UUIDValidator("id"), contractHandler.ConfirmSignature)
		protected.DELETE("/contracts/:id", middleware.UUIDValidator("id"), adminOnly, contractHandler.Delete)

		protected.GET("/transactions", adminOnly, transactionHandler.List)
		protected.GET("/transactions/my", transactionHandler.ListMine)
		protected.GET("/transactions/:id", middleware.UUIDValidator("id"), transactionHandler.Get)
		protected.POST("/transactions/from-contract/:contractId", middleware.UUIDValidator("contractId"), adminOnly, transactionHandler.Derive)
		protected.POST("/transactions/:id/pay", middleware.UUIDValidator("id"), middleware.RequireRoles(models.RoleElderly), transactionHandler.ProcessPayment)
		protected.POST("/transactions/:id/refund", middleware.UUIDValidator("id"), adminOnly, transactionHandler.Refund)
		protected.PATCH("/transactions/:id/status", middleware.UUIDValidator("id"), adminOnly, transactionHandler.UpdateStatus)

		protected.POST("/disputes", disputeHandler.Create)
		protected.GET("/disputes", disputeHandler.List)
		protected.GET("/disputes/:id", middleware.UUIDValidator("id"), disputeHandler.Get)
		protected.PATCH("/disputes/:id/status", middleware.UUIDValidator("id"), adminOnly, disputeHandler.UpdateStatus)

		protected.POST("/withdrawals", middleware.RequireRoles(models.RoleNurse), withdrawalHandler.Create)
		protected.GET("/withdrawals/my", middleware.RequireRoles(models.RoleNurse), withdrawalHandler.ListMine)
		protected.GET("/withdrawals/:id", middleware.UUIDValidator("id"), adminOnly, withdrawalHandler.Get)
		protected.PATCH("/withdrawals/:id/status", middleware.UUIDValidator("id"), adminOnly, withdrawalHandler.Process)
	}

	return r
}
