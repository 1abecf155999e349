package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/edugrade/edugrade-api/internal/dto"
	"github.com/edugrade/edugrade-api/internal/observability"
	"github.com/edugrade/edugrade-api/internal/scorer"
	"github.com/edugrade/edugrade-api/internal/textutil"
)

const emptyAnswerError = "student answer must not be empty"

const noFeedbackFallback = "Evaluation complete. No specific feedback items generated."

// EvaluationService grades a student answer against the configured criteria.
type EvaluationService interface {
	Evaluate(ctx context.Context, req dto.EvaluationRequest) dto.EvaluationResult
}

type evaluationService struct {
	scorers []scorer.Scorer
	timeout time.Duration
	logger  zerolog.Logger
}

// NewEvaluationService constructs the aggregator over the given scorers. The
// timeout bounds each scorer invocation; an expired deadline surfaces as that
// criterion's soft failure.
func NewEvaluationService(scorers []scorer.Scorer, timeout time.Duration, logger zerolog.Logger) EvaluationService {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &evaluationService{
		scorers: scorers,
		timeout: timeout,
		logger:  logger.With().Str("component", "evaluation_service").Logger(),
	}
}

// Evaluate runs every scorer against the normalized request and combines the
// partial results. A failure in one scorer never aborts the others; the
// caller always receives a well-formed result. An empty student answer is the
// single hard failure and short-circuits with no sub-scores.
func (s *evaluationService) Evaluate(ctx context.Context, req dto.EvaluationRequest) dto.EvaluationResult {
	tracer := otel.Tracer("github.com/edugrade/edugrade-api/internal/service/evaluation")
	ctx, span := tracer.Start(ctx, "evaluation.evaluate")
	defer span.End()

	start := time.Now()

	studentAnswer, wordCount := textutil.Normalize(req.StudentAnswer)
	if studentAnswer == "" {
		span.SetAttributes(attribute.Bool("evaluation.empty_answer", true))
		observability.Evaluations().WithLabelValues("true").Inc()
		observability.EvaluationLatency().Observe(time.Since(start).Seconds())

		return dto.EvaluationResult{
			TotalScore:         0,
			SubScores:          []dto.SubScore{},
			AutomatedFeedback:  noFeedbackFallback,
			Errors:             []string{emptyAnswerError},
			NeedsTeacherReview: true,
		}
	}

	referenceAnswer, _ := textutil.Normalize(req.ReferenceAnswer)

	input := scorer.Input{
		StudentAnswer:   studentAnswer,
		ReferenceAnswer: referenceAnswer,
		WordCount:       wordCount,
		MinWords:        req.MinWords,
		MaxWords:        req.MaxWords,
	}

	subScores := make([]dto.SubScore, len(s.scorers))

	group, groupCtx := errgroup.WithContext(ctx)
	for i, sc := range s.scorers {
		group.Go(func() error {
			subScores[i] = s.runScorer(groupCtx, sc, input)
			return nil
		})
	}
	_ = group.Wait()

	result := s.combine(subScores)

	span.SetAttributes(
		attribute.Float64("evaluation.total_score", result.TotalScore),
		attribute.Int("evaluation.word_count", wordCount),
		attribute.Bool("evaluation.needs_review", result.NeedsTeacherReview),
	)

	observability.Evaluations().WithLabelValues(fmt.Sprintf("%t", result.NeedsTeacherReview)).Inc()
	observability.EvaluationLatency().Observe(time.Since(start).Seconds())

	s.logger.Info().
		Str("question", req.Question).
		Int("word_count", wordCount).
		Float64("total_score", result.TotalScore).
		Bool("needs_review", result.NeedsTeacherReview).
		Msg("evaluation completed")

	return result
}

// runScorer isolates a single criterion: the configured timeout applies, and
// a panicking scorer is converted into a failed sub-score instead of taking
// down the evaluation.
func (s *evaluationService) runScorer(ctx context.Context, sc scorer.Scorer, input scorer.Input) (result dto.SubScore) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Interface("panic", r).Str("criterion", sc.Name()).Msg("scorer panicked")
			observability.CriterionFailures().WithLabelValues(sc.Name()).Inc()
			result = dto.SubScore{
				CriterionName: sc.Name(),
				Score:         0,
				MaxScore:      sc.MaxScore(),
				Feedback:      "Criterion could not be evaluated.",
				Error:         fmt.Sprintf("%s scoring failed unexpectedly", sc.Name()),
			}
		}
	}()

	scorerCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	result = sc.Evaluate(scorerCtx, input)
	if result.Failed() {
		observability.CriterionFailures().WithLabelValues(sc.Name()).Inc()
	}

	return result
}

func (s *evaluationService) combine(subScores []dto.SubScore) dto.EvaluationResult {
	var total float64
	feedback := make([]string, 0, len(subScores))
	errs := make([]string, 0)
	seen := make(map[string]struct{})

	for _, sub := range subScores {
		total += sub.Score

		if sub.Feedback != "" {
			feedback = append(feedback, fmt.Sprintf("%s: %s", sub.CriterionName, sub.Feedback))
		}

		if sub.Error != "" {
			if _, duplicate := seen[sub.Error]; !duplicate {
				seen[sub.Error] = struct{}{}
				errs = append(errs, sub.Error)
			}
		}
	}

	automated := strings.Join(feedback, "\n")
	if automated == "" {
		automated = noFeedbackFallback
	}

	return dto.EvaluationResult{
		TotalScore:         total,
		SubScores:          subScores,
		AutomatedFeedback:  automated,
		Errors:             errs,
		NeedsTeacherReview: len(errs) > 0,
	}
}
