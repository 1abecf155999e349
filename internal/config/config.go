package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the grading service.
type Config struct {
	AppName string
	AppEnv  string
	AppPort string

	RedisURL          string
	EmbeddingCacheTTL time.Duration

	OpenAIAPIKey   string
	EmbeddingModel string

	LanguageToolURL      string
	LanguageToolLanguage string

	ExternalCallTimeout time.Duration

	RelevanceMaxScore float64
	GrammarMaxScore   float64
	WordCountMaxScore float64

	GrammarUnitPenalty   float64
	GrammarFeedbackLimit int
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
// Malformed score or timeout configuration is rejected here so the process
// fails at startup rather than per request.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("EDUGRADE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "EduGrade API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("embedding.model", "text-embedding-3-small")
	v.SetDefault("embedding.cache_ttl", "15m")
	v.SetDefault("languagetool.url", "http://localhost:8010")
	v.SetDefault("languagetool.language", "en-US")
	v.SetDefault("external_call_timeout_ms", 10000)
	v.SetDefault("score.relevance_max", 50.0)
	v.SetDefault("score.grammar_max", 30.0)
	v.SetDefault("score.word_count_max", 20.0)
	v.SetDefault("score.grammar_unit_penalty", 3.0)
	v.SetDefault("score.grammar_feedback_limit", 3)

	ttlString := v.GetString("embedding.cache_ttl")
	if ttlString == "" {
		ttlString = "15m"
	}

	ttl, err := time.ParseDuration(ttlString)
	if err != nil {
		return Config{}, fmt.Errorf("invalid embedding cache ttl: %w", err)
	}

	timeoutMs := v.GetInt("external_call_timeout_ms")
	if timeoutMs <= 0 {
		return Config{}, fmt.Errorf("external call timeout must be a positive number of milliseconds")
	}

	cfg := Config{
		AppName:              v.GetString("app.name"),
		AppEnv:               v.GetString("app.env"),
		AppPort:              v.GetString("app.port"),
		RedisURL:             v.GetString("redis.url"),
		EmbeddingCacheTTL:    ttl,
		OpenAIAPIKey:         v.GetString("openai_api_key"),
		EmbeddingModel:       v.GetString("embedding.model"),
		LanguageToolURL:      v.GetString("languagetool.url"),
		LanguageToolLanguage: v.GetString("languagetool.language"),
		ExternalCallTimeout:  time.Duration(timeoutMs) * time.Millisecond,
		RelevanceMaxScore:    v.GetFloat64("score.relevance_max"),
		GrammarMaxScore:      v.GetFloat64("score.grammar_max"),
		WordCountMaxScore:    v.GetFloat64("score.word_count_max"),
		GrammarUnitPenalty:   v.GetFloat64("score.grammar_unit_penalty"),
		GrammarFeedbackLimit: v.GetInt("score.grammar_feedback_limit"),
	}

	if cfg.RelevanceMaxScore <= 0 || cfg.GrammarMaxScore <= 0 || cfg.WordCountMaxScore <= 0 {
		return Config{}, fmt.Errorf("criterion max scores must be positive")
	}

	if cfg.GrammarUnitPenalty <= 0 {
		return Config{}, fmt.Errorf("grammar unit penalty must be positive")
	}

	if cfg.GrammarFeedbackLimit <= 0 {
		cfg.GrammarFeedbackLimit = 3
	}

	return cfg, nil
}
