package handler

import (
	"merchant-payment-service/internal/adapter/http/middleware"
	redisStore "merchant-payment-service/internal/adapter/storage/redis"
	"merchant-payment-service/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	AuthSvc        ports.AuthService
	PaymentSvc     ports.PaymentService
	MerchantSvc    ports.MerchantService
	TokenSvc       ports.TokenService
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check (deep — verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	// API v1 routes
	v1 := r.Group("/api/v1")

	// --- Public routes (no auth) ---
	authHandler := NewAuthHandler(deps.AuthSvc)
	auth := v1.Group("/auth")
	{
		auth.POST("/register", rl("auth_register"), authHandler.Register)
		auth.POST("/login", rl("auth_login"), authHandler.Login)
	}

	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)
	paymentHandler := NewPaymentHandler(deps.PaymentSvc)

	// The callback endpoint is called by the upstream gateway, which
	// does not hold an operator token. It stays outside the JWT group.
	v1.POST("/payments/callback", rl("callbacks"), paymentHandler.ProcessCallback)

	// --- JWT-authenticated routes (operator API) ---
	payments := v1.Group("/payments", jwtAuth)
	{
		payments.POST("", rl("payments"), paymentHandler.CreatePayment)
		payments.GET("/:id", rl("payments"), paymentHandler.GetByID)
		payments.GET("/merchant/:merchantId", rl("payments"), paymentHandler.GetByMerchantID)
	}

	merchantHandler := NewMerchantHandler(deps.MerchantSvc)
	merchants := v1.Group("/merchants", jwtAuth)
	{
		merchants.GET("", rl("merchants"), merchantHandler.GetAll)
		merchants.GET("/:id", rl("merchants"), merchantHandler.GetByID)
		merchants.POST("", rl("merchants"), merchantHandler.Create)
		merchants.PUT("/:id", rl("merchants"), merchantHandler.Update)
		merchants.PATCH("/:id/status", rl("merchants"), merchantHandler.UpdateStatus)
		merchants.DELETE("/:id", rl("merchants"), merchantHandler.Delete)
	}

	return r
}
