package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/boiko-school/nmt-backend/internal/config"
	"github.com/boiko-school/nmt-backend/internal/handler"
	"github.com/boiko-school/nmt-backend/internal/middleware"
	"github.com/boiko-school/nmt-backend/internal/response"
	"github.com/boiko-school/nmt-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth    *handler.AuthHandler
	Exam    *handler.ExamHandler
	Proctor *handler.ProctorHandler
	Results *handler.ResultsHandler
	WS      *handler.WSHandler
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
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

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
		auth.POST("/login", handlers.Auth.Login)
	}

	// ─── 2. Exam Group (Participant JWT) ───────────────────────────────
	examAPI := router.Group("/api/v1/exam")
	examAPI.Use(middleware.RequireParticipantJWT(authService))
	{
		examAPI.GET("/session", handlers.Exam.GetSession)
		examAPI.GET("/state", handlers.Exam.GetState)
		examAPI.GET("/paper", handlers.Exam.GetPaper)
		examAPI.POST("/submit", handlers.Exam.Submit)
	}

	// ─── 3. WebSocket Group (Participant WS Auth) ──────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireParticipantWSAuth(authService))
	{
		ws.GET("/exam/stream", handlers.WS.ExamStream)
	}

	// ─── 4. Proctor Group (Reviewer JWT) ───────────────────────────────
	proctorAPI := router.Group("/api/v1/proctor")
	proctorAPI.Use(middleware.RequireReviewerJWT(authService))
	{
		proctorAPI.GET("/session", handlers.Proctor.Get)
		proctorAPI.POST("/session/start", handlers.Proctor.Start)
		proctorAPI.POST("/session/pause", handlers.Proctor.Pause)
		proctorAPI.POST("/session/resume", handlers.Proctor.Resume)
		proctorAPI.POST("/session/stop", handlers.Proctor.Stop)
	}

	// ─── 5. Review Group (Reviewer JWT) ────────────────────────────────
	reviewAPI := router.Group("/api/v1/review")
	reviewAPI.Use(middleware.RequireReviewerJWT(authService))
	{
		reviewAPI.GET("/results", handlers.Results.List)
	}

	return router
}
