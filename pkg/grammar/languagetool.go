package grammar

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	checkDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "edugrade",
		Subsystem: "grammar",
		Name:      "check_duration_seconds",
		Help:      "Duration of grammar check requests",
	}, []string{"language"})

	checkFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "edugrade",
		Subsystem: "grammar",
		Name:      "check_failures_total",
		Help:      "Number of failed grammar check requests",
	}, []string{"language"})
)

// LanguageToolConfig defines configuration for the LanguageTool client.
type LanguageToolConfig struct {
	BaseURL  string
	Language string
	Timeout  time.Duration
	Logger   zerolog.Logger
}

// LanguageToolChecker implements Checker against a LanguageTool HTTP server.
type LanguageToolChecker struct {
	client   *http.Client
	baseURL  string
	language string
	tracer   trace.Tracer
	logger   zerolog.Logger
}

// NewLanguageToolChecker builds a checker for the given LanguageTool endpoint.
func NewLanguageToolChecker(cfg LanguageToolConfig) (*LanguageToolChecker, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("languagetool base url is required")
	}

	if cfg.Language == "" {
		cfg.Language = "en-US"
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	return &LanguageToolChecker{
		client:   &http.Client{Timeout: cfg.Timeout},
		baseURL:  strings.TrimSuffix(cfg.BaseURL, "/"),
		language: cfg.Language,
		tracer:   otel.Tracer("github.com/edugrade/edugrade-api/pkg/grammar/languagetool"),
		logger:   logger,
	}, nil
}

type languageToolResponse struct {
	Matches []struct {
		Message string `json:"message"`
		Rule    struct {
			Category struct {
				Name string `json:"name"`
			} `json:"category"`
		} `json:"rule"`
	} `json:"matches"`
}

// Check submits text to LanguageTool and returns the issues it reports, in
// the order the server returned them.
func (c *LanguageToolChecker) Check(parent context.Context, text string) ([]Issue, error) {
	ctx, span := c.tracer.Start(parent, "grammar.check", trace.WithAttributes(
		attribute.String("language", c.language),
		attribute.Int("text_length", len(text)),
	))
	defer span.End()

	form := url.Values{}
	form.Set("text", text)
	form.Set("language", c.language)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/check", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build languagetool request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	start := time.Now()
	resp, err := c.client.Do(req)
	checkDuration.WithLabelValues(c.language).Observe(time.Since(start).Seconds())
	if err != nil {
		checkFailures.WithLabelValues(c.language).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("languagetool check: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("languagetool returned status %d", resp.StatusCode)
		checkFailures.WithLabelValues(c.language).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	var payload languageToolResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		checkFailures.WithLabelValues(c.language).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("decode languagetool response: %w", err)
	}

	issues := make([]Issue, 0, len(payload.Matches))
	for _, match := range payload.Matches {
		issues = append(issues, Issue{
			Message:  match.Message,
			Category: match.Rule.Category.Name,
		})
	}

	span.SetAttributes(attribute.Int("issue_count", len(issues)))

	return issues, nil
}
