package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/reosmzreo0410-netizen/reiwa-no-tora-screening/internal/config"
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

	// Initialize Gemini AI
	geminiService, err := services.NewGeminiService(cfg.Gemini.APIKey, cfg.Gemini.TranscriptionModel)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Gemini AI: %v", err)
	}
	log.Println("✅ Gemini AI initialized successfully")

	transcriber := services.NewTranscriptionService(mediaStore, geminiService)
	scorer := services.NewScorerService(geminiService, cfg.Gemini.ScoringModel)

	// Initialize worker pools
	transcriptionWorker := services.NewTranscriptionWorker(
		taskQueue,
		answerRepo,
		questionRepo,
		transcriber,
		zapLog,
		cfg.Worker.TranscriptionConcurrency,
		cfg.Worker.TaskTimeout,
	)
	evaluationWorker := services.NewEvaluationWorker(
		taskQueue,
		evalRepo,
		answerRepo,
		applicantRepo,
		scorer,
		zapLog,
		cfg.Worker.EvaluationConcurrency,
		cfg.Worker.TaskTimeout,
	)
	log.Println("✅ Workers initialized successfully")

	// Start workers
	ctx := context.Background()
	transcriptionWorker.Start(ctx)
	evaluationWorker.Start(ctx)
	log.Println("✅ Workers started successfully")

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("\n🛑 Shutting down workers...")
	transcriptionWorker.Stop()
	evaluationWorker.Stop()
	log.Println("✅ Workers stopped")
}
