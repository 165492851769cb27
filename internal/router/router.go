package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/uzmath/mathtest-backend/internal/config"
	"github.com/uzmath/mathtest-backend/internal/handler"
	"github.com/uzmath/mathtest-backend/internal/middleware"
	"github.com/uzmath/mathtest-backend/internal/response"
	"github.com/uzmath/mathtest-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth        *handler.AuthHandler
	User        *handler.UserHandler
	Test        *handler.TestHandler
	Leaderboard *handler.LeaderboardHandler
	Question    *handler.QuestionHandler
	WS          *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	// Serve question images statically with aggressive caching (1 year).
	uploadsGroup := router.Group("/uploads")
	uploadsGroup.Use(middleware.CacheControl(31536000))
	{
		uploadsGroup.Static("/", "./uploads")
	}

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for auth routes (30 requests per minute per IP).
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/register", handlers.Auth.Register)
		auth.POST("/login", handlers.Auth.Login)
	}

	// ─── 2. User Group (JWT) ───────────────────────────────────────────
	userAPI := router.Group("/api/v1/user")
	userAPI.Use(middleware.RequireAuth(authService))
	{
		userAPI.GET("/profile", handlers.User.GetProfile)
		userAPI.PUT("/profile", handlers.User.UpdateProfile)
		userAPI.GET("/statistics", handlers.User.GetStatistics)
		userAPI.GET("/achievements", handlers.User.GetAchievements)
		userAPI.POST("/check-achievements", handlers.User.CheckAchievements)
	}

	// ─── 3. Test Group (JWT) ───────────────────────────────────────────
	testAPI := router.Group("/api/v1/tests")
	testAPI.Use(middleware.RequireAuth(authService))
	{
		testAPI.POST("/start", handlers.Test.Start)
		testAPI.GET("/history", handlers.Test.History)
		testAPI.GET("/:id", handlers.Test.Detail)
		testAPI.GET("/:id/state", handlers.Test.State)
		testAPI.POST("/:id/save", handlers.Test.Save)
		testAPI.POST("/:id/submit", handlers.Test.Submit)
		testAPI.GET("/:id/resume", handlers.Test.Resume)
	}

	// ─── 4. Leaderboard Group (JWT) ────────────────────────────────────
	leaderboardAPI := router.Group("/api/v1/leaderboard")
	leaderboardAPI.Use(middleware.RequireAuth(authService))
	{
		leaderboardAPI.GET("", handlers.Leaderboard.Get)
		leaderboardAPI.GET("/region/:region", handlers.Leaderboard.Region)
		leaderboardAPI.GET("/user-rank", handlers.Leaderboard.MyRank)
	}

	// ─── 5. WebSocket Group (WS Auth via query token) ──────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireWSAuth(authService))
	{
		ws.GET("/tests/:id/stream", handlers.WS.SessionStream)
	}

	// ─── 6. Admin Group (JWT + Admin Role) ─────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(middleware.RequireAdmin(authService))
	{
		adminAPI.GET("/questions", handlers.Question.List)
		adminAPI.POST("/questions", handlers.Question.Create)
		adminAPI.GET("/questions/:id", handlers.Question.Get)
		adminAPI.PUT("/questions/:id", handlers.Question.Update)
		adminAPI.DELETE("/questions/:id", handlers.Question.Delete)
	}

	return router
}
