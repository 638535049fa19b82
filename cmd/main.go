package main

import (
	"fmt"
	"os"
	"time"

	redisclient "github.com/reflecta/reflecta-backend/internal/clients/redis"
	"github.com/reflecta/reflecta-backend/internal/db"
	"github.com/reflecta/reflecta-backend/internal/handlers"
	"github.com/reflecta/reflecta-backend/internal/middleware"
	"github.com/reflecta/reflecta-backend/internal/platform/envutil"
	"github.com/reflecta/reflecta-backend/internal/platform/logger"
	"github.com/reflecta/reflecta-backend/internal/platform/openai"
	"github.com/reflecta/reflecta-backend/internal/platform/sendgrid"
	"github.com/reflecta/reflecta-backend/internal/platform/twilio"
	"github.com/reflecta/reflecta-backend/internal/repos"
	"github.com/reflecta/reflecta-backend/internal/risk"
	"github.com/reflecta/reflecta-backend/internal/server"
	"github.com/reflecta/reflecta-backend/internal/services"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading environment variables from main...")
	jwtSecretKey := envutil.String("JWT_SECRET_KEY", "defaultsecret")
	accessTokenTTL := envutil.Int("ACCESS_TOKEN_TTL", 3600)
	refreshTokenTTL := envutil.Int("REFRESH_TOKEN_TTL", 86400)

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Warn("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up repos from main...")
	userRepo := repos.NewUserRepo(thePG, log)
	userTokenRepo := repos.NewUserTokenRepo(thePG, log)
	journalEntryRepo := repos.NewJournalEntryRepo(thePG, log)
	riskAlertRepo := repos.NewRiskAlertRepo(thePG, log)

	// Outbound clients. Each one is optional: a missing credential degrades
	// the channel it backs, never the whole server.
	log.Info("Setting up outbound clients from main...")
	openaiClient, err := openai.NewFromEnv(log)
	if err != nil {
		log.Warn("Could not init OpenAI client, falling back to keyword classifier", "error", err)
		openaiClient = nil
	}
	sendgridClient, err := sendgrid.NewFromEnv(log)
	if err != nil {
		log.Warn("Could not init SendGrid client, email channel disabled", "error", err)
		sendgridClient = nil
	}
	twilioClient, err := twilio.NewFromEnv(log)
	if err != nil {
		log.Warn("Could not init Twilio client, sms channel disabled", "error", err)
		twilioClient = nil
	}
	alertBus, err := redisclient.NewAlertBus(log)
	if err != nil {
		log.Warn("Could not init Redis alert bus, in-app channel disabled", "error", err)
		alertBus = nil
	}

	// Services
	log.Info("Setting up services from main...")
	classifier := risk.NewClassifier(log, openaiClient)
	authService := services.NewAuthService(thePG, log, userRepo, userTokenRepo, jwtSecretKey, time.Duration(accessTokenTTL)*time.Second, time.Duration(refreshTokenTTL)*time.Second)
	userService := services.NewUserService(thePG, log, userRepo)
	journalService := services.NewJournalService(thePG, log, journalEntryRepo)
	notificationService := services.NewNotificationService(thePG, log, riskAlertRepo, sendgridClient, twilioClient, alertBus)
	riskService := services.NewRiskDetectionService(thePG, log, userRepo, journalEntryRepo, riskAlertRepo, classifier, notificationService)
	alertService := services.NewAlertService(thePG, log, userRepo, riskAlertRepo)

	// Handlers
	log.Info("Setting up handlers from main...")
	authHandler := handlers.NewAuthHandler(authService)
	journalHandler := handlers.NewJournalHandler(journalService)
	riskHandler := handlers.NewRiskHandler(riskService)
	counselorHandler := handlers.NewCounselorHandler(alertService)
	privacyHandler := handlers.NewPrivacyHandler(userService)

	// Middleware
	log.Info("Setting up middleware from main...")
	authMiddleware := middleware.NewAuthMiddleware(log, authService)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		AuthHandler:      authHandler,
		AuthMiddleware:   authMiddleware,
		JournalHandler:   journalHandler,
		RiskHandler:      riskHandler,
		CounselorHandler: counselorHandler,
		PrivacyHandler:   privacyHandler,
	})

	port := envutil.String("PORT", "8080")
	fmt.Printf("Server listening on :%s\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Warn("Server failed", "error", err)
	}
}
