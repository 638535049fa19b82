package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/reflecta/reflecta-backend/internal/handlers"
	"github.com/reflecta/reflecta-backend/internal/middleware"
	"github.com/reflecta/reflecta-backend/internal/types"
)

type RouterConfig struct {
	AuthHandler      *handlers.AuthHandler
	AuthMiddleware   *middleware.AuthMiddleware
	JournalHandler   *handlers.JournalHandler
	RiskHandler      *handlers.RiskHandler
	CounselorHandler *handlers.CounselorHandler
	PrivacyHandler   *handlers.PrivacyHandler
	AllowOrigins     []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	origins := cfg.AllowOrigins
	if len(origins) == 0 {
		origins = []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5173",
		}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", handlers.HealthCheck)
	api := router.Group("/api")
	{
		api.POST("/register", cfg.AuthHandler.Register)
		api.POST("/login", cfg.AuthHandler.Login)
		api.POST("/refresh", cfg.AuthHandler.Refresh)
		api.POST("/auth/register-counselor", cfg.AuthHandler.RegisterCounselor)
	}

	// ===============
	// || Protected ||
	// ===============
	protected := api.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	// Auth
	protected.POST("/logout", cfg.AuthHandler.Logout)
	// Journal
	protected.POST("/journal", cfg.JournalHandler.CreateEntry)
	protected.GET("/journal", cfg.JournalHandler.ListEntries)
	protected.GET("/journal/:entryId", cfg.JournalHandler.GetEntry)
	// Risk analysis
	protected.POST("/journal/:entryId/analyze-risk", cfg.RiskHandler.AnalyzeEntry)
	protected.POST("/analyze-mood-patterns", cfg.RiskHandler.AnalyzeMoodPatterns)
	// Privacy
	protected.GET("/privacy-settings", cfg.PrivacyHandler.GetSettings)
	protected.PUT("/privacy-settings", cfg.PrivacyHandler.UpdateSettings)
	protected.GET("/counselors", cfg.PrivacyHandler.ListCounselors)

	// ===============
	// || Counselor ||
	// ===============
	counselor := protected.Group("/counselor")
	counselor.Use(cfg.AuthMiddleware.RequireRole(types.RoleCounselor))
	counselor.GET("/alerts", cfg.CounselorHandler.ListAlerts)
	counselor.GET("/alerts/:alertId", cfg.CounselorHandler.GetAlert)
	counselor.PATCH("/alerts/:alertId/status", cfg.CounselorHandler.UpdateAlertStatus)
	counselor.POST("/alerts/:alertId/notes", cfg.CounselorHandler.AddAlertNote)
	counselor.GET("/students/:studentId", cfg.CounselorHandler.GetStudentOverview)

	return router
}
