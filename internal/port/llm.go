package port

import "context"

// Generator produces a natural-language answer from a composed prompt.
type Generator interface {
	// Generate returns the model output for prompt at the given sampling
	// temperature. Failures are reported as *domain.GenerationError.
	Generate(ctx context.Context, prompt string, temperature float64) (string, error)

	// ModelName returns the name of the model.
	ModelName() string
}
