package scorer

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/edugrade/edugrade-api/internal/dto"
	"github.com/edugrade/edugrade-api/pkg/grammar"
)

// GrammarScorer rates grammar and spelling by issue density: each reported
// issue subtracts a fixed penalty from the criterion budget, floored at zero.
type GrammarScorer struct {
	checker       grammar.Checker
	maxScore      float64
	unitPenalty   float64
	feedbackLimit int
	logger        zerolog.Logger
}

// NewGrammarScorer builds a grammar scorer. feedbackLimit caps how many issue
// descriptions make it into the feedback text.
func NewGrammarScorer(checker grammar.Checker, maxScore, unitPenalty float64, feedbackLimit int, logger zerolog.Logger) *GrammarScorer {
	if feedbackLimit <= 0 {
		feedbackLimit = 3
	}

	return &GrammarScorer{
		checker:       checker,
		maxScore:      maxScore,
		unitPenalty:   unitPenalty,
		feedbackLimit: feedbackLimit,
		logger:        logger.With().Str("component", "grammar_scorer").Logger(),
	}
}

// Name returns the criterion name.
func (s *GrammarScorer) Name() string {
	return CriterionGrammar
}

// MaxScore returns the criterion point budget.
func (s *GrammarScorer) MaxScore() float64 {
	return s.maxScore
}

// Evaluate checks the student answer and scores it by issue count. A checker
// failure scores zero with an error set: an unchecked answer earns no grammar
// points and is flagged for review instead of silently passing.
func (s *GrammarScorer) Evaluate(ctx context.Context, input Input) dto.SubScore {
	issues, err := s.checker.Check(ctx, input.StudentAnswer)
	if err != nil {
		s.logger.Warn().Err(err).Msg("grammar check failed")

		return dto.SubScore{
			CriterionName: CriterionGrammar,
			Score:         0,
			MaxScore:      s.maxScore,
			Feedback:      "Grammar and spelling could not be checked.",
			Error:         fmt.Sprintf("grammar check failed: %v", err),
		}
	}

	penalty := float64(len(issues)) * s.unitPenalty
	if penalty > s.maxScore {
		penalty = s.maxScore
	}

	return dto.SubScore{
		CriterionName: CriterionGrammar,
		Score:         round2(s.maxScore - penalty),
		MaxScore:      s.maxScore,
		Feedback:      s.describe(issues),
	}
}

func (s *GrammarScorer) describe(issues []grammar.Issue) string {
	if len(issues) == 0 {
		return "No grammar or spelling issues found."
	}

	descriptions := make([]string, 0, s.feedbackLimit)
	for _, issue := range issues {
		if len(descriptions) == s.feedbackLimit {
			break
		}
		if issue.Category != "" {
			descriptions = append(descriptions, fmt.Sprintf("%s (%s)", issue.Message, issue.Category))
			continue
		}
		descriptions = append(descriptions, issue.Message)
	}

	return fmt.Sprintf("Found %d grammar/spelling issue(s). First few issues: %s",
		len(issues), strings.Join(descriptions, "; "))
}
