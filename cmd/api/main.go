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

	"github.com/edugrade/edugrade-api/internal/config"
	"github.com/edugrade/edugrade-api/internal/database"
	"github.com/edugrade/edugrade-api/internal/handler"
	"github.com/edugrade/edugrade-api/internal/middleware"
	"github.com/edugrade/edugrade-api/internal/router"
	"github.com/edugrade/edugrade-api/internal/scorer"
	"github.com/edugrade/edugrade-api/internal/service"
	"github.com/edugrade/edugrade-api/pkg/embedding"
	"github.com/edugrade/edugrade-api/pkg/grammar"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	embedder, err := embedding.NewOpenAIEmbedder(embedding.OpenAIConfig{
		APIKey: cfg.OpenAIAPIKey,
		Model:  cfg.EmbeddingModel,
		Logger: logger,
	})
	if err != nil {
		log.Fatalf("failed to create embedding client: %v", err)
	}

	cachedEmbedder := embedding.NewCachedEmbedder(embedder, redisClient, cfg.EmbeddingCacheTTL, logger)

	checker, err := grammar.NewLanguageToolChecker(grammar.LanguageToolConfig{
		BaseURL:  cfg.LanguageToolURL,
		Language: cfg.LanguageToolLanguage,
		Timeout:  cfg.ExternalCallTimeout,
		Logger:   logger,
	})
	if err != nil {
		log.Fatalf("failed to create grammar client: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	scorers := []scorer.Scorer{
		scorer.NewRelevanceScorer(cachedEmbedder, cfg.RelevanceMaxScore, logger),
		scorer.NewGrammarScorer(checker, cfg.GrammarMaxScore, cfg.GrammarUnitPenalty, cfg.GrammarFeedbackLimit, logger),
		scorer.NewWordCountScorer(cfg.WordCountMaxScore),
	}

	evaluationService := service.NewEvaluationService(scorers, cfg.ExternalCallTimeout, logger)
	evaluationHandler := handler.NewEvaluationHandler(evaluationService, validate, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		EvaluationHandler: evaluationHandler,
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
