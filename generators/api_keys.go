package generators

import (
	"os"

	"github.com/wispworks/wisp/configs"
	"github.com/wispworks/wisp/vars"
)

// One named credential per provider, resolved from the config files first and
// the conventional environment variable second. All are optional here;
// startup validation decides whether the configured set is sufficient.
type (
	OpenAIAPIKey     string
	GroqAPIKey       string
	GeminiAPIKey     string
	DeepseekAPIKey   string
	OpenRouterAPIKey string
)

func (Module) OpenAIAPIKey(
	loader configs.Loader,
) OpenAIAPIKey {
	return OpenAIAPIKey(vars.FirstNonZero(
		configs.First[string](loader, "openai_api_key"),
		os.Getenv("OPENAI_API_KEY"),
	))
}

func (Module) GroqAPIKey(
	loader configs.Loader,
) GroqAPIKey {
	return GroqAPIKey(vars.FirstNonZero(
		configs.First[string](loader, "groq_api_key"),
		os.Getenv("GROQ_API_KEY"),
	))
}

func (Module) GeminiAPIKey(
	loader configs.Loader,
) GeminiAPIKey {
	return GeminiAPIKey(vars.FirstNonZero(
		configs.First[string](loader, "gemini_api_key"),
		os.Getenv("GEMINI_API_KEY"),
	))
}

func (Module) DeepseekAPIKey(
	loader configs.Loader,
) DeepseekAPIKey {
	return DeepseekAPIKey(vars.FirstNonZero(
		configs.First[string](loader, "deepseek_api_key"),
		os.Getenv("DEEPSEEK_API_KEY"),
	))
}

func (Module) OpenRouterAPIKey(
	loader configs.Loader,
) OpenRouterAPIKey {
	return OpenRouterAPIKey(vars.FirstNonZero(
		configs.First[string](loader, "openrouter_api_key"),
		os.Getenv("OPENROUTER_API_KEY"),
	))
}
