package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"lovable-tutor/internal/config"
)

func TestFactoryUnknownProvider(t *testing.T) {
	f := NewFactory(&config.Config{OpenAIAPIKey: "k"})
	if _, err := f.CreateClient("mistral", "m"); err == nil {
		t.Fatalf("expected error for unknown provider")
	}
}

func TestFactoryOpenAIRequiresKey(t *testing.T) {
	f := NewFactory(&config.Config{})
	if _, err := f.CreateClient("openai", "m"); err == nil {
		t.Fatalf("expected error without api key")
	}
	f.OpenaiAPIKey = "k"
	c, err := f.CreateClient(" OpenAI ", "m")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, ok := c.(StructuredClient); !ok {
		t.Fatalf("openai client must support structured output")
	}
}

func TestOpenAIGenerateStructuredSendsSchemaAndHeaders(t *testing.T) {
	var body map[string]interface{}
	var referer string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		referer = r.Header.Get("HTTP-Referer")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"{\"reply\":\"hi\",\"score\":90}"}}],"usage":{"prompt_tokens":3,"completion_tokens":4,"total_tokens":7}}`)
	}))
	defer srv.Close()

	c := NewOpenAI("key", srv.URL, "test-model", "https://example.org", "tutor")
	resp, err := c.GenerateStructured(context.Background(), []Message{{Role: RoleUser, Content: "hello"}}, ResponseFormat{
		Name:   "tutor_turn",
		Schema: map[string]interface{}{"type": "object"},
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.Contains(resp.Content, `"reply"`) || resp.TotalTokens != 7 || resp.Model != "test-model" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if referer != "https://example.org" {
		t.Fatalf("referer header not injected: %q", referer)
	}
	rf, ok := body["response_format"].(map[string]interface{})
	if !ok || rf["type"] != "json_schema" {
		t.Fatalf("response_format missing: %v", body["response_format"])
	}
}

func TestOpenAIGenerateNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"1","object":"chat.completion","choices":[]}`)
	}))
	defer srv.Close()

	c := NewOpenAI("key", srv.URL, "m", "", "")
	if _, err := c.Generate(context.Background(), []Message{{Role: RoleUser, Content: "x"}}); err == nil {
		t.Fatalf("expected error on empty choices")
	}
}
