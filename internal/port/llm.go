package port

// LLM represents a language model for text generation.
type LLM interface {
	// Complete generates text for the given prompt.
	Complete(prompt string) (string, error)

	// ModelName returns the name of the model.
	ModelName() string
}
