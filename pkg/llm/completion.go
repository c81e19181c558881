package llm

// Completion is a complete (non-streamed) model answer.
type Completion struct {
	Model        string `json:"model"`                   // Model version that produced the answer
	Text         string `json:"text"`                    // Concatenated answer text
	FinishReason string `json:"finish_reason,omitempty"` // Provider reason, e.g. "STOP"

	// Usage, when the provider reports it
	PromptTokens int `json:"prompt_tokens,omitempty"`
	OutputTokens int `json:"output_tokens,omitempty"`
}
