package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/sashabaranov/go-openai"
)

var errNoChoices = errors.New("chat completion returned no choices")

type OpenAIClient struct {
	client *openai.Client
	model  string
}

type headerTransport struct {
	rt      http.RoundTripper
	headers http.Header
}

func (t headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Clone request to avoid mutating the original
	cl := req.Clone(req.Context())
	for k, vs := range t.headers {
		for _, v := range vs {
			cl.Header.Add(k, v)
		}
	}
	return t.rt.RoundTrip(cl)
}

func NewOpenAI(apiKey, baseURL, model, referrer, title string) *OpenAIClient {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	// Inject optional headers (useful for OpenRouter)
	if referrer != "" || title != "" {
		h := http.Header{}
		if referrer != "" {
			h.Set("HTTP-Referer", referrer)
		}
		if title != "" {
			h.Set("X-Title", title)
		}
		base := http.DefaultTransport
		config.HTTPClient = &http.Client{Transport: headerTransport{rt: base, headers: h}}
	}
	return &OpenAIClient{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}
}

func (c *OpenAIClient) Generate(ctx context.Context, messages []Message) (Response, error) {
	return c.complete(ctx, c.request(messages))
}

// GenerateStructured asks the model for a JSON object matching format.Schema.
func (c *OpenAIClient) GenerateStructured(ctx context.Context, messages []Message, format ResponseFormat) (Response, error) {
	req := c.request(messages)
	schema, err := json.Marshal(format.Schema)
	if err != nil {
		return Response{}, fmt.Errorf("encode response schema: %w", err)
	}
	req.ResponseFormat = &openai.ChatCompletionResponseFormat{
		Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
		JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
			Name:        format.Name,
			Description: format.Description,
			Schema:      json.RawMessage(schema),
		},
	}
	return c.complete(ctx, req)
}

func (c *OpenAIClient) request(messages []Message) openai.ChatCompletionRequest {
	oaMsgs := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		oaMsgs = append(oaMsgs, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}
	return openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: oaMsgs,
	}
}

func (c *OpenAIClient) complete(ctx context.Context, req openai.ChatCompletionRequest) (Response, error) {
	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return Response{}, fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Response{}, errNoChoices
	}

	out := Response{
		Content: resp.Choices[0].Message.Content,
		Model:   c.model,
	}
	out.PromptTokens = resp.Usage.PromptTokens
	out.CompletionTokens = resp.Usage.CompletionTokens
	out.TotalTokens = resp.Usage.TotalTokens
	return out, nil
}
