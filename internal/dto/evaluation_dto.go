package dto

// EvaluationRequest is the JSON payload submitted for grading a free-text answer.
// Question is informational only and never scored. MaxWords of zero means no
// upper bound. The core tolerates MaxWords < MinWords rather than rejecting it.
type EvaluationRequest struct {
	Question        string `json:"question"`
	StudentAnswer   string `json:"student_answer"`
	ReferenceAnswer string `json:"reference_answer"`
	MinWords        int    `json:"min_words" validate:"gte=0"`
	MaxWords        int    `json:"max_words" validate:"gte=0"`
}

// SubScore is the immutable per-criterion result value object.
type SubScore struct {
	CriterionName string  `json:"criterion_name"`
	Score         float64 `json:"score"`
	MaxScore      float64 `json:"max_score"`
	Feedback      string  `json:"feedback"`
	Error         string  `json:"error,omitempty"`
}

// Failed reports whether the criterion could not be scored normally.
func (s SubScore) Failed() bool {
	return s.Error != ""
}

// EvaluationResult aggregates all criterion outcomes for one request.
type EvaluationResult struct {
	TotalScore         float64    `json:"total_score"`
	SubScores          []SubScore `json:"sub_scores"`
	AutomatedFeedback  string     `json:"automated_feedback"`
	Errors             []string   `json:"errors"`
	NeedsTeacherReview bool       `json:"needs_teacher_review"`
}
