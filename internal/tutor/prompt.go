package tutor

import (
	"log"
	"os"
	"strings"

	"lovable-tutor/internal/llm"
)

const DefaultSystemPrompt = `You are Lovable, a friendly and professional English tutor.
The learner is practising conversational English with you.
For every learner message:
1. Reply naturally, as a conversation partner would, and keep the conversation going.
2. Assess the learner's sentence for grammar, word choice and flow.
3. Give a "score" from 0 to 100 for the learner's sentence.
4. Only if the sentence can be improved, give the corrected sentence in "improved" and a short, simple "explanation" of the change.
   A brief Hindi hint is welcome for tricky concepts.
Respond with a single JSON object and nothing else:
{"reply": "...", "score": 0-100, "improved": "... (optional)", "explanation": "... (optional)"}`

// responseFormat is the shape requested from providers with schema support.
var responseFormat = llm.ResponseFormat{
	Name:        "tutor_turn",
	Description: "Conversational reply plus an assessment of the learner's sentence",
	Schema: map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"reply": map[string]interface{}{
				"type":        "string",
				"description": "Your conversational response to the learner.",
			},
			"score": map[string]interface{}{
				"type":        "number",
				"description": "Accuracy of the learner's sentence, 0 to 100.",
			},
			"improved": map[string]interface{}{
				"type":        "string",
				"description": "Corrected version of the learner's sentence, only when it had mistakes.",
			},
			"explanation": map[string]interface{}{
				"type":        "string",
				"description": "Simple explanation of the changes.",
			},
		},
		"required": []string{"reply", "score"},
	},
}

// LoadSystemPrompt returns the prompt at path, or DefaultSystemPrompt when
// path is empty or unreadable.
func LoadSystemPrompt(path string) string {
	if path == "" {
		return DefaultSystemPrompt
	}
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("system prompt file not found or unreadable at %s: %v", path, err)
		return DefaultSystemPrompt
	}
	if s := strings.TrimSpace(string(data)); s != "" {
		return s
	}
	return DefaultSystemPrompt
}
