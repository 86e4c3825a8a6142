package generator

import "fmt"

// GenerationError covers transport failures, non-success responses and
// malformed payloads from the generative service. Attempts is zero when the
// error comes straight from a single call and is filled in by the retry
// layer once the budget is exhausted.
type GenerationError struct {
	Attempts int
	Err      error
}

func (e *GenerationError) Error() string {
	if e.Attempts > 0 {
		return fmt.Sprintf("generation failed after %d attempts: %v", e.Attempts, e.Err)
	}
	return fmt.Sprintf("generation failed: %v", e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// ValidationError marks a generator response that parsed but violates the
// generation contract. It counts against the same retry budget as
// GenerationError.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid generator response: " + e.Reason
}
