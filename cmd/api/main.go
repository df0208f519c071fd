package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/reosmzreo0410-netizen/reiwa-no-tora-screening/internal/config"
	"github.com/reosmzreo0410-netizen/reiwa-no-tora-screening/internal/handlers"
	"github.com/reosmzreo0410-netizen/reiwa-no-tora-screening/internal/logger"
	"github.com/reosmzreo0410-netizen/reiwa-no-tora-screening/internal/queue"
	"github.com/reosmzreo0410-netizen/reiwa-no-tora-screening/internal/repositories"
	"github.com/reosmzreo0410-netizen/reiwa-no-tora-screening/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log.Println("✅ Config loaded successfully")

	zapLog := logger.New(cfg.Server.LogLevel, cfg.Server.LogFormat)
	defer zapLog.Sync()

	// Initialize database
	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}

	// Initialize repositories
	applicantRepo := repositories.NewApplicantRepository(db)
	questionRepo := repositories.NewQuestionRepository(db)
	answerRepo := repositories.NewVideoAnswerRepository(db)
	evalRepo := repositories.NewEvaluationRepository(db)
	adminRepo := repositories.NewAdminUserRepository(db)
	log.Println("✅ Repositories initialized successfully")

	// Initialize task queue
	redisClient := queue.NewRedisClient(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB)
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("❌ Failed to connect to Redis: %v", err)
	}
	taskQueue := queue.NewRedisQueue(redisClient, cfg.Worker.DequeueTimeout)
	log.Println("✅ Task queue initialized successfully")

	// Initialize media storage
	mediaStore, err := services.NewGCSMediaStore(context.Background(), cfg.Storage.Bucket)
	if err != nil {
		log.Fatalf("❌ Failed to initialize media storage: %v", err)
	}
	log.Println("✅ Media storage initialized successfully")

	// Initialize services
	intakeService := services.NewIntakeService(
		applicantRepo,
		questionRepo,
		answerRepo,
		mediaStore,
		taskQueue,
		zapLog,
	)
	authService := services.NewAuthService(adminRepo, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	log.Println("✅ Services initialized successfully")

	// Initialize handlers
	applicantHandler := handlers.NewApplicantHandler(applicantRepo, intakeService)
	questionHandler := handlers.NewQuestionHandler(questionRepo)
	videoAnswerHandler := handlers.NewVideoAnswerHandler(intakeService, cfg.Storage.MaxFileSize)
	adminHandler := handlers.NewAdminHandler(applicantRepo, answerRepo, evalRepo, authService)
	log.Println("✅ Handlers initialized")

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Tora Screening API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		BodyLimit:    int(cfg.Storage.MaxFileSize),
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	// Routes
	api := app.Group("/api/v1")

	// Health check
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	// Applicant-facing endpoints
	api.Post("/applicants", applicantHandler.HandleCreate)
	api.Get("/questions", questionHandler.HandleList)
	api.Post("/video-answers", videoAnswerHandler.HandleSubmit)
	api.Post("/video-answers/complete", applicantHandler.HandleCompleteSubmission)

	// Admin endpoints
	admin := api.Group("/admin")
	admin.Post("/login", adminHandler.HandleLogin)
	admin.Use(adminHandler.AuthMiddleware)
	admin.Get("/applicants", adminHandler.HandleListApplicants)
	admin.Get("/applicants/:id", adminHandler.HandleGetApplicant)
	admin.Put("/applicants/:id/status", adminHandler.HandleUpdateStatus)

	// Root route
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Tora Screening API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /api/v1/applicants",
				"GET /api/v1/questions",
				"POST /api/v1/video-answers",
				"POST /api/v1/video-answers/complete",
				"POST /api/v1/admin/login",
				"GET /api/v1/admin/applicants",
				"GET /api/v1/admin/applicants/:id",
				"PUT /api/v1/admin/applicants/:id/status",
			},
		})
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("\n🛑 Shutting down server...")
		if err := app.Shutdown(); err != nil {
			log.Printf("❌ Server forced to shutdown: %v", err)
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("🚀 Server starting on %s\n", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
