package providers

// Both hosted providers expose OpenAI-compatible chat-completion
// endpoints, so a single client implementation covers them; only the
// base URL and model catalog differ.

// Groq backs the reactive drafting agent, Gemini the proactive
// refinement agent.
const (
	ProviderGroq   = "groq"
	ProviderGemini = "gemini"
)

var defaultBaseURLs = map[string]string{
	ProviderGroq:   "https://api.groq.com/openai/v1",
	ProviderGemini: "https://generativelanguage.googleapis.com/v1beta/openai",
}

var defaultModels = map[string]string{
	ProviderGroq:   "llama-3.1-8b-instant",
	ProviderGemini: "gemini-2.5-flash",
}

var knownModels = map[string][]string{
	ProviderGroq:   {"llama-3.1-8b-instant", "llama-3.3-70b-versatile"},
	ProviderGemini: {"gemini-2.5-flash", "gemini-2.5-pro"},
}

// DefaultBaseURL returns the API endpoint for a known provider,
// empty string otherwise.
func DefaultBaseURL(name string) string {
	return defaultBaseURLs[name]
}

// DefaultModel returns the default model for a known provider.
func DefaultModel(name string) string {
	return defaultModels[name]
}

// KnownModels returns the selectable model catalog for a provider.
func KnownModels(name string) []string {
	return knownModels[name]
}
