package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/boiko-school/nmt-backend/internal/config"
	"github.com/boiko-school/nmt-backend/internal/database"
	"github.com/boiko-school/nmt-backend/internal/handler"
	"github.com/boiko-school/nmt-backend/internal/logger"
	"github.com/boiko-school/nmt-backend/internal/repository"
	"github.com/boiko-school/nmt-backend/internal/router"
	"github.com/boiko-school/nmt-backend/internal/service"
	"github.com/boiko-school/nmt-backend/internal/validator"
	"github.com/boiko-school/nmt-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting NMT Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	participantRepo := repository.NewParticipantRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	sessionRepo := repository.NewSessionRepository(pool)
	submissionRepo := repository.NewSubmissionRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, rdb, participantRepo)
	questionService := service.NewQuestionService(questionRepo, rdb)
	sessionService := service.NewSessionService(sessionRepo, rdb, cfg)
	answerService := service.NewAnswerService(rdb)
	submissionService := service.NewSubmissionService(submissionRepo, questionService)
	resultsService := service.NewResultsService(submissionRepo)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:    handler.NewAuthHandler(authService),
		Exam:    handler.NewExamHandler(sessionService, questionService, answerService, submissionService, submissionRepo),
		Proctor: handler.NewProctorHandler(sessionService),
		Results: handler.NewResultsHandler(resultsService),
		WS:      handler.NewWSHandler(rdb, cfg, sessionService, answerService, submissionService),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	journalWorker := worker.NewJournalWorker(pool, rdb)
	go journalWorker.Start(workerCtx)

	// ─── Prewarm Redis Caches ─────────────────────────────────────────
	// Load the question bank into Redis BEFORE accepting traffic so the
	// first wave of participants never stampedes PostgreSQL.
	if err := questionService.WarmCache(ctx); err != nil {
		log.Warn().Err(err).Msg("Question cache prewarm failed")
	}

	// Re-publish the persisted descriptor so the Redis snapshot is warm
	// after a restart mid-exam.
	if _, err := sessionService.Get(ctx); err != nil {
		log.Warn().Err(err).Msg("Session descriptor warm failed")
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop the journal worker and wait for the queue to drain.
	workerCancel()
	time.Sleep(2 * time.Second)

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
