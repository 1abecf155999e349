// Package scorer contains the per-criterion evaluators used by the grading
// pipeline. Each scorer converts every failure into a SubScore carrying an
// error string; no error crosses the scorer boundary.
package scorer

import (
	"context"
	"math"

	"github.com/edugrade/edugrade-api/internal/dto"
)

// Criterion names form a fixed closed set.
const (
	CriterionRelevance = "Relevance"
	CriterionGrammar   = "Grammar and Spelling"
	CriterionWordCount = "Word Count Adherence"
)

// Input carries the normalized slice of the request each scorer needs.
type Input struct {
	StudentAnswer   string
	ReferenceAnswer string
	WordCount       int
	MinWords        int
	MaxWords        int
}

// Scorer evaluates a single criterion. MaxScore exposes the fixed point
// budget so the aggregator can report it even when Evaluate never completes.
type Scorer interface {
	Name() string
	MaxScore() float64
	Evaluate(ctx context.Context, input Input) dto.SubScore
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}
