package driven

import "context"

// LLMService provides a single constrained text completion. It is the
// costly second stage of language detection and is optional - when nil,
// detection stops after the local classifier.
type LLMService interface {
	// Complete returns the model's completion for prompt under the
	// given system instruction. The instruction constrains the response
	// to a fixed vocabulary; callers must still validate the reply.
	Complete(ctx context.Context, system, prompt string) (string, error)
}
