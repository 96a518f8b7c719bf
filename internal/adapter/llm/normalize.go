package llm

import (
	"encoding/json"
	"strings"
)

// Completion providers do not agree on a response shape: the same call may
// come back as a structured completion object, a looser mapping, or a bare
// string. NormalizeResponse extracts the first completion's text, trying
// shapes in a fixed priority order and falling back to the raw payload as
// a string. It never fails: an unrecognized shape is returned verbatim so
// the caller always gets plain text.
func NormalizeResponse(body []byte) string {
	// Structured completion object.
	var structured struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
			Text string `json:"text"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &structured); err == nil && len(structured.Choices) > 0 {
		if c := structured.Choices[0].Message.Content; c != "" {
			return c
		}
		if t := structured.Choices[0].Text; t != "" {
			return t
		}
	}

	// Loose mapping: walk choices[0].message.content by hand.
	var loose map[string]any
	if err := json.Unmarshal(body, &loose); err == nil {
		if text := contentFromMap(loose); text != "" {
			return text
		}
	}

	// Bare JSON string.
	var plain string
	if err := json.Unmarshal(body, &plain); err == nil {
		return plain
	}

	// Last resort: stringified raw payload.
	return strings.TrimSpace(string(body))
}

func contentFromMap(m map[string]any) string {
	choices, ok := m["choices"].([]any)
	if !ok || len(choices) == 0 {
		return ""
	}
	choice, ok := choices[0].(map[string]any)
	if !ok {
		return ""
	}
	if message, ok := choice["message"].(map[string]any); ok {
		if content, ok := message["content"].(string); ok {
			return content
		}
	}
	if text, ok := choice["text"].(string); ok {
		return text
	}
	return ""
}
