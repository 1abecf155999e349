package grammar

import "context"

// Issue is a single grammar or spelling problem reported by the checker.
type Issue struct {
	Message  string `json:"message"`
	Category string `json:"category"`
}

// Checker describes a service that finds grammar and spelling issues in text.
type Checker interface {
	Check(ctx context.Context, text string) ([]Issue, error)
}
