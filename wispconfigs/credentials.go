package wispconfigs

import (
	"os"
	"strings"

	"github.com/wispworks/wisp/configs"
	"github.com/wispworks/wisp/faults"
	"github.com/wispworks/wisp/generators"
	"github.com/wispworks/wisp/vars"
)

type CheckCredentials func() error

// CheckCredentials validates the credential surface once at startup so a
// missing key fails fast instead of surfacing mid-session. The default model
// is resolved to its provider and that provider's key must be present; a
// user-defined generator may carry its own key, and local ollama models need
// none. GUI automation, when enabled, needs its own key.
func (Module) CheckCredentials(
	loader configs.Loader,
	openAIKey generators.OpenAIAPIKey,
	groqKey generators.GroqAPIKey,
	geminiKey generators.GeminiAPIKey,
	deepseekKey generators.DeepseekAPIKey,
	openRouterKey generators.OpenRouterAPIKey,
	getSpecs generators.GetGeneratorSpecs,
	defaultModel generators.DefaultModelName,
) CheckCredentials {

	keyFor := func(providerType string) (key string, envVar string, known bool) {
		switch providerType {
		case "openai", "open-ai", "open_ai":
			return string(openAIKey), "OPENAI_API_KEY", true
		case "groq":
			return string(groqKey), "GROQ_API_KEY", true
		case "gemini":
			return string(geminiKey), "GEMINI_API_KEY", true
		case "deepseek":
			return string(deepseekKey), "DEEPSEEK_API_KEY", true
		case "open-router", "open_router", "openrouter":
			return string(openRouterKey), "OPENROUTER_API_KEY", true
		}
		return "", "", false
	}

	return func() error {
		model := string(defaultModel)

		if !strings.HasPrefix(model, "ollama:") {
			specs, err := getSpecs()
			if err != nil {
				return faults.New(faults.ClassConfiguration, "load generator specs: %v", err)
			}
			var spec *generators.GeneratorSpec
			for i := range specs {
				if specs[i].Name == model {
					spec = &specs[i]
					break
				}
			}
			switch {

			case spec != nil:
				if spec.APIKey == "" && !strings.EqualFold(spec.Type, "ollama") {
					key, envVar, known := keyFor(strings.ToLower(spec.Type))
					if known && key == "" {
						return faults.New(faults.ClassConfiguration,
							"generator %q has no api_key and %s is not set", model, envVar)
					}
				}

			default:
				if providerType, ok := builtinProvider(model); ok {
					key, envVar, _ := keyFor(providerType)
					if key == "" {
						return faults.New(faults.ClassConfiguration,
							"model %q needs %s", model, envVar)
					}
				}
				// an unknown name fails in GetGenerator with its own error
			}
		}

		// gui automation is optional, but half-configured is an error
		computerID := configs.First[string](loader, "orgo_computer_id")
		orgoKey := vars.FirstNonZero(
			configs.First[string](loader, "orgo_api_key"),
			os.Getenv("ORGO_API_KEY"),
		)
		if computerID != "" && orgoKey == "" {
			return faults.New(faults.ClassConfiguration,
				"gui automation enabled (orgo_computer_id set) but orgo_api_key is missing")
		}

		return nil
	}
}

// builtinProvider maps a built-in model name to the provider whose key it needs.
func builtinProvider(name string) (string, bool) {
	switch name {
	case "flash", "gemini-flash", "flash-lite", "gemini-flash-lite":
		return "gemini", true
	case "groq":
		return "groq", true
	case "deepseek":
		return "deepseek", true
	}
	return "", false
}
