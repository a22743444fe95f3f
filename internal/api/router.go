package api

import (
	"growth_hub/internal/domain"     // Role names
	"growth_hub/internal/middleware" // Custom package for middleware

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"gorm.io/gorm"                 // GORM ORM library
)

// Deps is everything the HTTP handlers need
type Deps struct {
	DB           *gorm.DB      // Database handle
	Redis        *redis.Client // Cache and quota counters
	Upstream     Upstream      // LLM gateway behind /ai/generate
	JWTSecret    string        // HS256 signing secret
	AIDailyQuota int           // Generations per user per day, 0 disables
	AIRatePerMin int           // Sustained AI requests per user per minute, 0 disables
	AIRateBurst  int           // Burst size for AI requests

	PublicRatePerMin int // Marketplace requests per caller per minute, 0 disables
	PublicRateBurst  int // Burst size for marketplace requests
}

// NewRouter wires every route of the platform onto a Gin engine
func NewRouter(d Deps) *gin.Engine {
	r := gin.Default() // Gin router instance with logger and recovery
	auth := middleware.JWTAuthMiddleware(d.JWTSecret)

	// Auth routes
	r.POST("/user", RegisterHandler(d.DB))                 // Registration endpoint
	r.GET("/user", LoginHandler(d.DB, d.JWTSecret))        // Login endpoint
	r.POST("/user/login", LoginHandler(d.DB, d.JWTSecret)) // Login for clients that cannot send a GET body

	// Public marketplace; a token only gives the caller their own rate bucket
	r.GET("/marketplace",
		middleware.OptionalJWTMiddleware(d.JWTSecret),
		middleware.RateLimitMiddleware(d.PublicRatePerMin, d.PublicRateBurst),
		MarketplaceHandler(d.DB, d.Redis))

	// Wallet routes (protected by JWT)
	walletGroup := r.Group("/wallet", auth)
	walletGroup.POST("", CreateWalletHandler(d.DB, d.Redis))                      // Create wallet endpoint
	walletGroup.GET("", GetWalletHandler(d.DB, d.Redis))                          // Get wallet endpoint
	walletGroup.POST("/deposit", DepositHandler(d.DB, d.Redis))                   // Deposit endpoint
	walletGroup.POST("/transfer", TransferHandler(d.DB, d.Redis))                 // Transfer endpoint
	walletGroup.POST("/fund-campaign", FundCampaignHandler(d.DB, d.Redis))        // Campaign funding endpoint
	walletGroup.GET("/transactions", GetTransactionHistoryHandler(d.DB, d.Redis)) // Transaction history endpoint

	// Catalog routes (owner scoped)
	products := r.Group("/products", auth, middleware.RequireRoles(d.DB, domain.RoleSeller))
	products.POST("", CreateProductHandler(d.DB, d.Redis))
	products.GET("", ListProductsHandler(d.DB))
	products.GET("/:id", GetProductHandler(d.DB))
	products.PUT("/:id", UpdateProductHandler(d.DB, d.Redis))
	products.DELETE("/:id", DeleteProductHandler(d.DB, d.Redis))

	services := r.Group("/services", auth, middleware.RequireRoles(d.DB, domain.RoleProvider))
	services.POST("", CreateServiceHandler(d.DB, d.Redis))
	services.GET("", ListServicesHandler(d.DB))
	services.GET("/:id", GetServiceHandler(d.DB))
	services.PUT("/:id", UpdateServiceHandler(d.DB, d.Redis))
	services.DELETE("/:id", DeleteServiceHandler(d.DB, d.Redis))

	campaigns := r.Group("/campaigns", auth, middleware.RequireRoles(d.DB, domain.RoleSeller, domain.RoleProvider))
	campaigns.POST("", CreateCampaignHandler(d.DB, d.Redis))
	campaigns.GET("", ListCampaignsHandler(d.DB))
	campaigns.GET("/:id", GetCampaignHandler(d.DB))
	campaigns.PUT("/:id", UpdateCampaignHandler(d.DB, d.Redis))
	campaigns.DELETE("/:id", DeleteCampaignHandler(d.DB, d.Redis))

	r.GET("/dashboard/stats", auth, DashboardStatsHandler(d.DB, d.Redis))

	// AI routes; the limiter runs after auth so it can key on the user
	aiGroup := r.Group("/ai", auth)
	aiGroup.POST("/generate",
		middleware.RateLimitMiddleware(d.AIRatePerMin, d.AIRateBurst),
		GenerateHandler(d.DB, d.Redis, d.Upstream, d.AIDailyQuota))
	aiGroup.GET("/generations", ListGenerationsHandler(d.DB))

	// Admin routes (protected, admin only)
	adminGroup := r.Group("/admin", auth, middleware.AdminOnlyMiddleware(d.DB))
	adminGroup.GET("/users", ListUsersHandler(d.DB, d.Redis))               // List users endpoint
	adminGroup.GET("/transactions", ListTransactionsHandler(d.DB, d.Redis)) // List transactions endpoint
	adminGroup.GET("/generations", ListAllGenerationsHandler(d.DB))         // List generations endpoint

	return r
}
