package embedding

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	embedDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "edugrade",
		Subsystem: "embedding",
		Name:      "request_duration_seconds",
		Help:      "Duration of embedding requests",
	}, []string{"model"})

	embedFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "edugrade",
		Subsystem: "embedding",
		Name:      "request_failures_total",
		Help:      "Number of failed embedding requests",
	}, []string{"model"})
)

// OpenAIConfig defines configuration options for the OpenAI embedder.
type OpenAIConfig struct {
	APIKey string
	Model  string
	Logger zerolog.Logger
}

// OpenAIEmbedder implements Embedder against the OpenAI embeddings API.
type OpenAIEmbedder struct {
	client *openai.Client
	cfg    OpenAIConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenAIEmbedder builds a new embedder using the provided configuration.
func NewOpenAIEmbedder(cfg OpenAIConfig) (*OpenAIEmbedder, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	if cfg.Model == "" {
		cfg.Model = string(openai.SmallEmbedding3)
	}

	tracer := otel.Tracer("github.com/edugrade/edugrade-api/pkg/embedding/openai")
	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	return &OpenAIEmbedder{
		client: openai.NewClient(cfg.APIKey),
		cfg:    cfg,
		tracer: tracer,
		logger: logger,
	}, nil
}

// Embed requests a vector for the supplied text. Oversized or otherwise
// rejected input surfaces as the API error it is; the caller decides how a
// failure degrades the criterion.
func (e *OpenAIEmbedder) Embed(parent context.Context, text string) ([]float32, error) {
	ctx, span := e.tracer.Start(parent, "embedding.embed", trace.WithAttributes(
		attribute.String("model", e.cfg.Model),
		attribute.Int("text_length", len(text)),
	))
	defer span.End()

	start := time.Now()
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(e.cfg.Model),
	})
	embedDuration.WithLabelValues(e.cfg.Model).Observe(time.Since(start).Seconds())
	if err != nil {
		embedFailures.WithLabelValues(e.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("openai embed: %w", err)
	}

	if len(resp.Data) == 0 {
		err := fmt.Errorf("no embedding data returned from openai")
		embedFailures.WithLabelValues(e.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	vector := resp.Data[0].Embedding
	span.SetAttributes(attribute.Int("vector_dimension", len(vector)))

	return vector, nil
}
