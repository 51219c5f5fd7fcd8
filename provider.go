package tablebridge

// Provider identifies an LLM backend.
type Provider string

// String returns the provider identifier.
func (p Provider) String() string { return string(p) }

// Supported providers, in default selection order.
const (
	ProviderOpenRouter Provider = "openrouter"
	ProviderOpenAI     Provider = "openai"
	ProviderGemini     Provider = "gemini"
	ProviderAnthropic  Provider = "anthropic"
)

// ParseProvider maps a configuration string to a Provider.
// It reports false for unknown names.
func ParseProvider(s string) (Provider, bool) {
	switch p := Provider(s); p {
	case ProviderOpenRouter, ProviderOpenAI, ProviderGemini, ProviderAnthropic:
		return p, true
	case "google":
		return ProviderGemini, true
	}
	return "", false
}
