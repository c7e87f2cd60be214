package llm

// UsageMetadata captures token usage from LLM API calls.
type UsageMetadata struct {
	TokensIn  int // Input tokens consumed
	TokensOut int // Output tokens generated
}

// Completion is the standardized response from any LLM provider client.
// Both provider clients (anthropic, gemini) return this type so the
// nutrition providers can share one parse path.
type Completion struct {
	Text         string
	Model        string
	FinishReason string
	Usage        UsageMetadata
}
