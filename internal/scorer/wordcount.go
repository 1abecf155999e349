package scorer

import (
	"context"
	"fmt"

	"github.com/edugrade/edugrade-api/internal/dto"
)

// WordCountScorer checks the answer length against the configured bounds.
// It performs no external calls and cannot fail.
type WordCountScorer struct {
	maxScore float64
}

// NewWordCountScorer builds a word-count scorer with the given point budget.
func NewWordCountScorer(maxScore float64) *WordCountScorer {
	return &WordCountScorer{maxScore: maxScore}
}

// Name returns the criterion name.
func (s *WordCountScorer) Name() string {
	return CriterionWordCount
}

// MaxScore returns the criterion point budget.
func (s *WordCountScorer) MaxScore() float64 {
	return s.maxScore
}

// Evaluate awards the full budget inside the bounds and scales the score
// proportionally to the shortfall or overage outside them. A max bound of
// zero means no upper limit. Negative bounds are ignored; min above max is
// tolerated and simply never satisfiable.
func (s *WordCountScorer) Evaluate(_ context.Context, input Input) dto.SubScore {
	minWords := input.MinWords
	if minWords < 0 {
		minWords = 0
	}

	maxWords := input.MaxWords
	if maxWords < 0 {
		maxWords = 0
	}

	count := input.WordCount

	switch {
	case count < minWords:
		return dto.SubScore{
			CriterionName: CriterionWordCount,
			Score:         round2(s.maxScore * float64(count) / float64(minWords)),
			MaxScore:      s.maxScore,
			Feedback:      fmt.Sprintf("Word count (%d) is below the minimum requirement of %d words.", count, minWords),
		}
	case maxWords > 0 && count > maxWords:
		return dto.SubScore{
			CriterionName: CriterionWordCount,
			Score:         round2(s.maxScore * float64(maxWords) / float64(count)),
			MaxScore:      s.maxScore,
			Feedback:      fmt.Sprintf("Word count (%d) exceeds the maximum limit of %d words.", count, maxWords),
		}
	default:
		return dto.SubScore{
			CriterionName: CriterionWordCount,
			Score:         s.maxScore,
			MaxScore:      s.maxScore,
			Feedback:      fmt.Sprintf("Word count (%d) is within the required limits.", count),
		}
	}
}
