package main

import (
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"go.uber.org/zap"

	"monstager/configs"
	v1 "monstager/internal/api/v1"
	"monstager/internal/api/v1/handlers"
	"monstager/internal/auth"
	"monstager/internal/mailer"
	"monstager/internal/middleware"
	"monstager/internal/repository"
	"monstager/internal/store"
	"monstager/internal/tasks"
	"monstager/internal/ws"
	"monstager/pkg/database"
	"monstager/pkg/logger"
)

func main() {
	logger.InitLoggers()
	defer logger.SyncLoggers()
	logger.SystemLogger.Info("Starting application", zap.String("time", time.Now().Format(time.RFC3339)))

	cfg := configs.LoadConfig()

	db := database.ConnectDB(cfg)
	defer db.Close()
	logger.SystemLogger.Info("Database Connected")

	if err := repository.CreateTableIfNotExists(db); err != nil {
		log.Fatalf("Error creating tables: %v", err)
	}

	redisClient := database.ConnectRedis(cfg)
	defer redisClient.Close()

	smtpMailer := &mailer.SMTP{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPass,
		From:     cfg.SMTPFrom,
	}

	dataStore := store.NewPostgres(db)
	issuer := auth.NewTokenIssuer([]byte(cfg.JWTSecret), cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	authService := auth.NewService(dataStore, smtpMailer, cfg.AppBaseURL, logger.AuditLogger)
	taskService := tasks.NewService(dataStore)

	hub := ws.NewHub(logger.SystemLogger)
	go hub.Run()

	app := fiber.New()

	app.Use(middleware.ErrorHandler())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Storage:    database.NewRedisStorage(redisClient),
	}))

	v1.RegisterRoutes(app,
		handlers.NewAuthHandler(authService, issuer),
		handlers.NewTaskHandler(taskService, hub),
		issuer,
	)
	registerWebSocket(app, hub, issuer)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logger.SystemLogger.Info("Application ready", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		logger.ErrorLogger.Error("Application failed to start", zap.Error(err))
	}
}
