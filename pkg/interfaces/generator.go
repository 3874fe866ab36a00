package interfaces

import "context"

// CompletionRequest is one text-in, text-out call to a language model.
type CompletionRequest struct {
	System    string
	Prompt    string
	MaxTokens int
}

// Completer returns the model's text reply. Implementations wrap an LLM
// provider; tests use canned replies.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}
