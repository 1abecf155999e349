package service

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	promdto "github.com/prometheus/client_model/go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/edugrade/edugrade-api/internal/dto"
	"github.com/edugrade/edugrade-api/internal/observability"
	"github.com/edugrade/edugrade-api/internal/scorer"
	"github.com/edugrade/edugrade-api/pkg/grammar"
)

type stubEmbedder struct {
	vectors map[string][]float32
	err     error
}

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	if vector, ok := s.vectors[text]; ok {
		return vector, nil
	}
	return []float32{1, 0, 0}, nil
}

type stubChecker struct {
	issues []grammar.Issue
	err    error
}

func (s *stubChecker) Check(_ context.Context, _ string) ([]grammar.Issue, error) {
	return s.issues, s.err
}

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func newService(embedder *stubEmbedder, checker *stubChecker) EvaluationService {
	scorers := []scorer.Scorer{
		scorer.NewRelevanceScorer(embedder, 50, testLogger()),
		scorer.NewGrammarScorer(checker, 30, 3, 3, testLogger()),
		scorer.NewWordCountScorer(20),
	}

	return NewEvaluationService(scorers, time.Second, testLogger())
}

func TestEvaluateEmptyStudentAnswer(t *testing.T) {
	svc := newService(&stubEmbedder{}, &stubChecker{})

	for _, answer := range []string{"", "   ", "\n\t"} {
		result := svc.Evaluate(context.Background(), dto.EvaluationRequest{StudentAnswer: answer})
		require.Zero(t, result.TotalScore)
		require.Empty(t, result.SubScores)
		require.True(t, result.NeedsTeacherReview)
		require.Len(t, result.Errors, 1)
		require.Equal(t, "student answer must not be empty", result.Errors[0])
	}
}

func TestEvaluateIdenticalAnswers(t *testing.T) {
	embedder := &stubEmbedder{vectors: map[string][]float32{
		"The cat sat on the mat.": {0.2, 0.4, 0.6},
	}}
	svc := newService(embedder, &stubChecker{})

	result := svc.Evaluate(context.Background(), dto.EvaluationRequest{
		StudentAnswer:   "The cat sat on the mat.",
		ReferenceAnswer: "The cat sat on the mat.",
	})

	require.Len(t, result.SubScores, 3)
	require.Equal(t, scorer.CriterionRelevance, result.SubScores[0].CriterionName)
	require.InDelta(t, 50.0, result.SubScores[0].Score, 0.01)
	require.False(t, result.NeedsTeacherReview)
	require.Empty(t, result.Errors)
	require.InDelta(t, 100.0, result.TotalScore, 0.01)
}

func TestEvaluateMissingReferenceIsolation(t *testing.T) {
	svc := newService(&stubEmbedder{}, &stubChecker{})

	result := svc.Evaluate(context.Background(), dto.EvaluationRequest{
		StudentAnswer: "A reasonably complete answer about the water cycle.",
	})

	require.Len(t, result.SubScores, 3)
	relevance, grammarScore, wordCount := result.SubScores[0], result.SubScores[1], result.SubScores[2]

	require.Zero(t, relevance.Score)
	require.True(t, relevance.Failed())
	require.False(t, grammarScore.Failed())
	require.Equal(t, 30.0, grammarScore.Score)
	require.False(t, wordCount.Failed())
	require.Equal(t, 20.0, wordCount.Score)
	require.True(t, result.NeedsTeacherReview)
	require.Equal(t, []string{"no reference answer provided"}, result.Errors)
}

func TestEvaluateGrammarFailureIsolation(t *testing.T) {
	embedder := &stubEmbedder{vectors: map[string][]float32{
		"Water evaporates and condenses.": {1, 2, 3},
		"Evaporation and condensation.":   {1, 2, 3},
	}}
	checker := &stubChecker{err: errors.New("languagetool unreachable")}
	svc := newService(embedder, checker)

	result := svc.Evaluate(context.Background(), dto.EvaluationRequest{
		StudentAnswer:   "Water evaporates and condenses.",
		ReferenceAnswer: "Evaporation and condensation.",
	})

	require.Len(t, result.Errors, 1)
	require.Contains(t, result.Errors[0], "languagetool unreachable")
	require.True(t, result.NeedsTeacherReview)

	relevance, grammarScore, wordCount := result.SubScores[0], result.SubScores[1], result.SubScores[2]
	require.InDelta(t, 50.0, relevance.Score, 0.01)
	require.Zero(t, grammarScore.Score)
	require.Equal(t, 20.0, wordCount.Score)
	require.InDelta(t, relevance.Score+wordCount.Score, result.TotalScore, 1e-9)
}

func TestEvaluateFeedbackIsCriterionLabelled(t *testing.T) {
	svc := newService(&stubEmbedder{}, &stubChecker{})

	result := svc.Evaluate(context.Background(), dto.EvaluationRequest{
		StudentAnswer:   "Short answer.",
		ReferenceAnswer: "Short answer.",
	})

	require.Contains(t, result.AutomatedFeedback, "Relevance: ")
	require.Contains(t, result.AutomatedFeedback, "Grammar and Spelling: ")
	require.Contains(t, result.AutomatedFeedback, "Word Count Adherence: ")
}

func TestEvaluateIdempotent(t *testing.T) {
	embedder := &stubEmbedder{vectors: map[string][]float32{
		"Answer one.": {0.5, 0.1},
		"Answer two.": {0.4, 0.2},
	}}
	checker := &stubChecker{issues: []grammar.Issue{{Message: "typo", Category: "Possible Typo"}}}
	svc := newService(embedder, checker)

	req := dto.EvaluationRequest{
		StudentAnswer:   "Answer one.",
		ReferenceAnswer: "Answer two.",
		MinWords:        1,
		MaxWords:        10,
	}

	first := svc.Evaluate(context.Background(), req)
	second := svc.Evaluate(context.Background(), req)
	require.Equal(t, first, second)
}

func TestEvaluateWordCountViolationFeedback(t *testing.T) {
	svc := newService(&stubEmbedder{}, &stubChecker{})

	result := svc.Evaluate(context.Background(), dto.EvaluationRequest{
		StudentAnswer:   "Too short.",
		ReferenceAnswer: "Too short.",
		MinWords:        50,
	})

	wordCount := result.SubScores[2]
	require.Less(t, wordCount.Score, 20.0)
	require.Contains(t, wordCount.Feedback, "below the minimum")
}

func TestEvaluateDeduplicatesErrors(t *testing.T) {
	embedder := &stubEmbedder{err: errors.New("service down")}
	checker := &stubChecker{err: errors.New("service down")}
	scorers := []scorer.Scorer{
		scorer.NewRelevanceScorer(embedder, 50, testLogger()),
		scorer.NewRelevanceScorer(embedder, 50, testLogger()),
		scorer.NewGrammarScorer(checker, 30, 3, 3, testLogger()),
	}
	svc := NewEvaluationService(scorers, time.Second, testLogger())

	result := svc.Evaluate(context.Background(), dto.EvaluationRequest{
		StudentAnswer:   "answer",
		ReferenceAnswer: "reference",
	})

	require.Len(t, result.Errors, 2)
}

type panickingScorer struct {
	name     string
	maxScore float64
}

func (p panickingScorer) Name() string      { return p.name }
func (p panickingScorer) MaxScore() float64 { return p.maxScore }

func (p panickingScorer) Evaluate(_ context.Context, _ scorer.Input) dto.SubScore {
	panic("vector index out of range")
}

func TestEvaluatePanickingScorerIsolated(t *testing.T) {
	scorers := []scorer.Scorer{
		panickingScorer{name: scorer.CriterionRelevance, maxScore: 50},
		scorer.NewGrammarScorer(&stubChecker{}, 30, 3, 3, testLogger()),
		scorer.NewWordCountScorer(20),
	}
	svc := NewEvaluationService(scorers, time.Second, testLogger())

	result := svc.Evaluate(context.Background(), dto.EvaluationRequest{
		StudentAnswer: "A complete answer about the water cycle.",
	})

	relevance := result.SubScores[0]
	require.True(t, relevance.Failed())
	require.Zero(t, relevance.Score)
	require.Equal(t, 50.0, relevance.MaxScore)
	require.Equal(t, 30.0, result.SubScores[1].Score)
	require.Equal(t, 20.0, result.SubScores[2].Score)
	require.Equal(t, 50.0, result.TotalScore)
	require.True(t, result.NeedsTeacherReview)
}

type slowEmbedder struct{}

func (slowEmbedder) Embed(ctx context.Context, _ string) ([]float32, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestEvaluateScorerTimeoutIsSoftFailure(t *testing.T) {
	scorers := []scorer.Scorer{
		scorer.NewRelevanceScorer(slowEmbedder{}, 50, testLogger()),
		scorer.NewGrammarScorer(&stubChecker{}, 30, 3, 3, testLogger()),
		scorer.NewWordCountScorer(20),
	}
	svc := NewEvaluationService(scorers, 50*time.Millisecond, testLogger())

	result := svc.Evaluate(context.Background(), dto.EvaluationRequest{
		StudentAnswer:   "Water evaporates and condenses.",
		ReferenceAnswer: "Evaporation and condensation.",
	})

	relevance := result.SubScores[0]
	require.True(t, relevance.Failed())
	require.Contains(t, relevance.Error, "context deadline exceeded")
	require.Zero(t, relevance.Score)
	require.Equal(t, 30.0, result.SubScores[1].Score)
	require.Equal(t, 20.0, result.SubScores[2].Score)
	require.True(t, result.NeedsTeacherReview)
}

func latencySampleCount(t *testing.T) uint64 {
	t.Helper()

	metric := &promdto.Metric{}
	require.NoError(t, observability.EvaluationLatency().Write(metric))
	return metric.GetHistogram().GetSampleCount()
}

func TestEvaluateEmptyAnswerObservesLatency(t *testing.T) {
	svc := newService(&stubEmbedder{}, &stubChecker{})

	before := latencySampleCount(t)
	svc.Evaluate(context.Background(), dto.EvaluationRequest{StudentAnswer: "   "})
	require.Equal(t, before+1, latencySampleCount(t))
}

func TestEvaluateWorkedExample(t *testing.T) {
	// High but imperfect similarity between paraphrased answers.
	embedder := &stubEmbedder{vectors: map[string][]float32{
		"The cat sat on the mat.":     {0.9, 0.4, 0.1},
		"A cat was sitting on a mat.": {0.85, 0.5, 0.15},
	}}
	svc := newService(embedder, &stubChecker{})

	result := svc.Evaluate(context.Background(), dto.EvaluationRequest{
		StudentAnswer:   "The cat sat on the mat.",
		ReferenceAnswer: "A cat was sitting on a mat.",
	})

	require.False(t, result.NeedsTeacherReview)
	require.Empty(t, result.Errors)
	require.Greater(t, result.SubScores[0].Score, 0.7*50)
	require.Equal(t, 30.0, result.SubScores[1].Score)
	require.Equal(t, 20.0, result.SubScores[2].Score)
}
