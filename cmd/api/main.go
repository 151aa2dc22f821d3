package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/uniact/activity-api/internal/config"
	"github.com/uniact/activity-api/internal/database"
	"github.com/uniact/activity-api/internal/handler"
	"github.com/uniact/activity-api/internal/middleware"
	"github.com/uniact/activity-api/internal/models"
	"github.com/uniact/activity-api/internal/repository"
	"github.com/uniact/activity-api/internal/router"
	"github.com/uniact/activity-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Semester{},
		&models.Student{},
		&models.Activity{},
		&models.ActivityRole{},
		&models.ActivityRegistration{},
		&models.ClassScheduleBlock{},
		&models.AuditLog{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	validate := validator.New(validator.WithRequiredStructEnabled())

	registrationRepo := repository.NewRegistrationRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	semesterRepo := repository.NewSemesterRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)

	auditService := service.NewAuditService(auditRepo, logger)
	pointService := service.NewPointService(registrationRepo, studentRepo, semesterRepo, redisClient, cfg.PointCacheTTL, logger)
	conflictService := service.NewConflictService(registrationRepo, studentRepo, semesterRepo, scheduleRepo, logger)
	importService := service.NewImportService(registrationRepo, activityRepo, validate, auditService, logger)
	registrationService := service.NewRegistrationService(registrationRepo, roleRepo, validate, auditService, logger)
	activityService := service.NewActivityService(activityRepo, roleRepo, semesterRepo, validate, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		ActivityHandler:     handler.NewActivityHandler(activityService, registrationService, logger),
		RegistrationHandler: handler.NewRegistrationHandler(registrationService, logger),
		PointHandler:        handler.NewPointHandler(pointService, logger),
		ConflictHandler:     handler.NewConflictHandler(conflictService, logger),
		ImportHandler:       handler.NewImportHandler(importService, logger),
		AuditHandler:        handler.NewAuditHandler(auditService, logger),
		JWTMiddleware:       middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
