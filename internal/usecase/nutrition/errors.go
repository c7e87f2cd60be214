package nutrition

import "fmt"

// ValidationError indicates a malformed analysis request. It is raised
// before any provider call is attempted.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid analysis request: %s", e.Reason)
}

// ConfigurationError indicates the engine has no providers at all.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("nutrition engine misconfigured: %s", e.Reason)
}

// AllProvidersFailedError indicates both adapters failed. There is no
// fallback estimate; the underlying reasons travel with the error.
type AllProvidersFailedError struct {
	ClaudeErr string
	GeminiErr string
}

func (e *AllProvidersFailedError) Error() string {
	return fmt.Sprintf("all nutrition providers failed: claude: %s; gemini: %s", e.ClaudeErr, e.GeminiErr)
}
