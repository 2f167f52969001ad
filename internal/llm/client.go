package llm

import "context"

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string
	Content string
}

type Response struct {
	Content          string
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

type Client interface {
	Generate(ctx context.Context, messages []Message) (Response, error)
}

// ResponseFormat describes a JSON object the model must return.
// Schema is a JSON Schema document in map form.
type ResponseFormat struct {
	Name        string
	Description string
	Schema      map[string]interface{}
}

// StructuredClient is implemented by providers that can enforce a response schema.
type StructuredClient interface {
	Client
	GenerateStructured(ctx context.Context, messages []Message, format ResponseFormat) (Response, error)
}
