package scorer

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/edugrade/edugrade-api/internal/dto"
	"github.com/edugrade/edugrade-api/pkg/embedding"
)

// RelevanceScorer measures semantic similarity between the student answer and
// the reference answer using an embedding service.
type RelevanceScorer struct {
	embedder embedding.Embedder
	maxScore float64
	logger   zerolog.Logger
}

// NewRelevanceScorer builds a relevance scorer with the given point budget.
func NewRelevanceScorer(embedder embedding.Embedder, maxScore float64, logger zerolog.Logger) *RelevanceScorer {
	return &RelevanceScorer{
		embedder: embedder,
		maxScore: maxScore,
		logger:   logger.With().Str("component", "relevance_scorer").Logger(),
	}
}

// Name returns the criterion name.
func (s *RelevanceScorer) Name() string {
	return CriterionRelevance
}

// MaxScore returns the criterion point budget.
func (s *RelevanceScorer) MaxScore() float64 {
	return s.maxScore
}

// Evaluate embeds both answers and maps their cosine similarity linearly onto
// [0, maxScore]. Negative similarity clamps to zero. A missing reference
// answer and any embedding failure are soft failures: the criterion scores
// zero and carries an error, the rest of the evaluation continues.
func (s *RelevanceScorer) Evaluate(ctx context.Context, input Input) dto.SubScore {
	if input.ReferenceAnswer == "" {
		return dto.SubScore{
			CriterionName: CriterionRelevance,
			Score:         0,
			MaxScore:      s.maxScore,
			Feedback:      "Reference answer not provided. Relevance could not be assessed.",
			Error:         "no reference answer provided",
		}
	}

	studentVector, err := s.embedder.Embed(ctx, input.StudentAnswer)
	if err != nil {
		return s.failed(err)
	}

	referenceVector, err := s.embedder.Embed(ctx, input.ReferenceAnswer)
	if err != nil {
		return s.failed(err)
	}

	similarity := cosineSimilarity(studentVector, referenceVector)
	if similarity < 0 {
		similarity = 0
	}

	return dto.SubScore{
		CriterionName: CriterionRelevance,
		Score:         round2(similarity * s.maxScore),
		MaxScore:      s.maxScore,
		Feedback:      "Relevance score based on semantic similarity to the reference answer.",
	}
}

func (s *RelevanceScorer) failed(err error) dto.SubScore {
	s.logger.Warn().Err(err).Msg("relevance scoring failed")

	return dto.SubScore{
		CriterionName: CriterionRelevance,
		Score:         0,
		MaxScore:      s.maxScore,
		Feedback:      "Relevance could not be assessed.",
		Error:         fmt.Sprintf("relevance scoring failed: %v", err),
	}
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
