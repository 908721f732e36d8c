// Package llm defines the boundary between the job pipeline and the
// external text generation capability. The pipeline consumes a single
// operation: complete a prompt, optionally with an attached image, and
// get the generated text back.
package llm

import "context"

// CompletionClient is the consumed interface of the generation capability.
// Implementations live under internal/platform; the pipeline never depends
// on a concrete provider.
type CompletionClient interface {
	// Complete sends the prompt (and, when image is non-nil, the image
	// bytes inlined alongside it in a single multimodal request) and
	// returns the generated text. The model and sampling parameters are
	// fixed configuration, not per-call arguments.
	//
	// Errors are typed (see errors.go); callers decide whether to degrade
	// or abort. The pipeline degrades: it substitutes an inline error
	// string and keeps going.
	Complete(ctx context.Context, prompt string, image []byte) (string, error)
}
