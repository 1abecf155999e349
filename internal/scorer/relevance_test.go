package scorer

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type fakeEmbedder struct {
	vectors map[string][]float32
	err     error
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.vectors[text], nil
}

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func TestRelevanceScorerIdenticalAnswers(t *testing.T) {
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"the water cycle moves water": {0.3, 0.5, 0.8},
	}}
	s := NewRelevanceScorer(embedder, 50, testLogger())

	result := s.Evaluate(context.Background(), Input{
		StudentAnswer:   "the water cycle moves water",
		ReferenceAnswer: "the water cycle moves water",
	})

	require.Equal(t, CriterionRelevance, result.CriterionName)
	require.InDelta(t, 50.0, result.Score, 0.01)
	require.Equal(t, 50.0, result.MaxScore)
	require.False(t, result.Failed())
}

func TestRelevanceScorerOrthogonalAnswers(t *testing.T) {
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"apples": {1, 0},
		"trains": {0, 1},
	}}
	s := NewRelevanceScorer(embedder, 50, testLogger())

	result := s.Evaluate(context.Background(), Input{StudentAnswer: "apples", ReferenceAnswer: "trains"})
	require.Zero(t, result.Score)
	require.False(t, result.Failed())
}

func TestRelevanceScorerClampsNegativeSimilarity(t *testing.T) {
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"yes": {1, 0},
		"no":  {-1, 0},
	}}
	s := NewRelevanceScorer(embedder, 50, testLogger())

	result := s.Evaluate(context.Background(), Input{StudentAnswer: "yes", ReferenceAnswer: "no"})
	require.Zero(t, result.Score)
	require.False(t, result.Failed())
}

func TestRelevanceScorerMissingReference(t *testing.T) {
	s := NewRelevanceScorer(&fakeEmbedder{}, 50, testLogger())

	result := s.Evaluate(context.Background(), Input{StudentAnswer: "some answer"})
	require.Zero(t, result.Score)
	require.True(t, result.Failed())
	require.Equal(t, "no reference answer provided", result.Error)
	require.Contains(t, result.Feedback, "Reference answer not provided")
}

func TestRelevanceScorerEmbeddingFailure(t *testing.T) {
	embedder := &fakeEmbedder{err: errors.New("model unavailable")}
	s := NewRelevanceScorer(embedder, 50, testLogger())

	result := s.Evaluate(context.Background(), Input{StudentAnswer: "a", ReferenceAnswer: "b"})
	require.Zero(t, result.Score)
	require.True(t, result.Failed())
	require.Contains(t, result.Error, "model unavailable")
}

func TestCosineSimilarity(t *testing.T) {
	require.InDelta(t, 1.0, cosineSimilarity([]float32{1, 2, 3}, []float32{1, 2, 3}), 1e-9)
	require.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	require.Zero(t, cosineSimilarity(nil, nil))
	require.Zero(t, cosineSimilarity([]float32{1}, []float32{1, 2}))
	require.Zero(t, cosineSimilarity([]float32{0, 0}, []float32{1, 1}))
}
