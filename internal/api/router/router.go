package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ndmanh/marketplace-be/internal/api/domain"
	"github.com/ndmanh/marketplace-be/internal/api/handler"
	"github.com/ndmanh/marketplace-be/shared/postgresql"
	"github.com/ndmanh/marketplace-be/shared/rabbitmq"
	"github.com/redis/go-redis/v9"
)

// Options carries the router-level settings beyond handler dependencies
type Options struct {
	DBClient         *postgresql.Client
	RabbitClient     *rabbitmq.Client
	RedisClient      *redis.Client
	RateLimitEnabled bool
	RateLimit        int
	RateLimitWindow  time.Duration
}

// SetupRouter configures and returns the Gin router with all routes
func SetupRouter(deps *handler.Dependencies, opts *Options) *gin.Engine {
	r := gin.New()

	// Middleware
	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(deps.Logger))
	r.Use(CORSMiddleware())

	if opts != nil && opts.RateLimitEnabled && opts.RedisClient != nil {
		r.Use(RateLimitMiddleware(opts.RedisClient, deps.Logger, opts.RateLimit, opts.RateLimitWindow))
	}

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		status := http.StatusOK
		checks := gin.H{}

		if opts != nil && opts.DBClient != nil {
			if err := opts.DBClient.HealthCheck(c.Request.Context()); err != nil {
				checks["database"] = "down"
				status = http.StatusServiceUnavailable
			} else {
				checks["database"] = "up"
			}
		}

		if opts != nil && opts.RabbitClient != nil {
			if opts.RabbitClient.IsConnected() {
				checks["rabbitmq"] = "up"
			} else {
				checks["rabbitmq"] = "down"
				status = http.StatusServiceUnavailable
			}
		}

		statusLabel := "healthy"
		if status != http.StatusOK {
			statusLabel = "degraded"
		}

		c.JSON(status, gin.H{
			"status":  statusLabel,
			"service": "marketplace-api-service",
			"checks":  checks,
		})
	})

	authHandler := handler.NewAuthHandler(deps)
	buyerHandler := handler.NewBuyerHandler(deps)
	sellerHandler := handler.NewSellerHandler(deps)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		authRoutes := v1.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
		}

		buyers := v1.Group("/buyers", AuthMiddleware(deps.Tokens), RequireRole(domain.RoleBuyer))
		{
			buyers.GET("/deals", buyerHandler.ListDeals)
			buyers.GET("/deals/private", buyerHandler.ListPrivateDeals)
			buyers.GET("/sellers/:seller_id/deals", buyerHandler.ListSellerDeals)
			buyers.PUT("/webhook", buyerHandler.SetWebhook)
			buyers.POST("/access-requests", buyerHandler.CreateAccessRequest)
			buyers.GET("/deliveries", buyerHandler.ListDeliveries)
		}

		sellers := v1.Group("/sellers", AuthMiddleware(deps.Tokens), RequireRole(domain.RoleSeller))
		{
			sellers.POST("/deals", sellerHandler.CreateDeal)
			sellers.PUT("/deals/:deal_id", sellerHandler.UpdateDeal)
			sellers.POST("/access-requests/:buyer_id", sellerHandler.ResolveAccessRequest)
			sellers.DELETE("/authorizations/:buyer_id", sellerHandler.RevokeAuthorization)
		}
	}

	return r
}
