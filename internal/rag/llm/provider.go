package llm

import "context"

// Schema declares the JSON shape a structured completion must return.
// Kept provider-neutral; each implementation maps it to its own schema type.
type Schema struct {
	Type       string
	Properties map[string]*Schema
	Items      *Schema
	Required   []string
}

// Provider is the text generation collaborator. Complete returns free text,
// CompleteStructured constrains the model to JSON conforming to schema.
type Provider interface {
	Complete(ctx context.Context, instructions string, prompt string) (string, error)
	CompleteStructured(ctx context.Context, instructions string, prompt string, schema *Schema) (string, error)
}
