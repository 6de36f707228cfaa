package generators

import (
	"github.com/wispworks/wisp/configs"
	"github.com/wispworks/wisp/vars"
)

type NewGroq func(args GeneratorArgs) *OpenAI

func (Module) NewGroq(
	apiKey GroqAPIKey,
	newOpenAI NewOpenAI,
) NewGroq {
	return func(args GeneratorArgs) *OpenAI {
		args.BaseURL = "https://api.groq.com/openai/v1"
		return newOpenAI(
			args,
			vars.FirstNonZero(
				args.APIKey,
				string(apiKey),
			),
		)
	}
}

type NewGemini func(args GeneratorArgs) *OpenAI

// NewGemini uses the OpenAI-compatible surface of the Gemini API.
func (Module) NewGemini(
	apiKey GeminiAPIKey,
	newOpenAI NewOpenAI,
	loader configs.Loader,
) NewGemini {
	return func(args GeneratorArgs) *OpenAI {
		if endpoint := configs.First[string](loader, "gemini_endpoint"); endpoint != "" {
			args.BaseURL = endpoint
		} else {
			args.BaseURL = "https://generativelanguage.googleapis.com/v1beta/openai"
		}
		return newOpenAI(
			args,
			vars.FirstNonZero(
				args.APIKey,
				string(apiKey),
			),
		)
	}
}

type NewDeepseek func(args GeneratorArgs) *OpenAI

func (Module) NewDeepseek(
	apiKey DeepseekAPIKey,
	newOpenAI NewOpenAI,
) NewDeepseek {
	return func(args GeneratorArgs) *OpenAI {
		args.BaseURL = "https://api.deepseek.com"
		return newOpenAI(
			args,
			vars.FirstNonZero(
				args.APIKey,
				string(apiKey),
			),
		)
	}
}

type NewOpenRouter func(args GeneratorArgs) *OpenAI

func (Module) NewOpenRouter(
	apiKey OpenRouterAPIKey,
	newOpenAI NewOpenAI,
	loader configs.Loader,
) NewOpenRouter {
	return func(args GeneratorArgs) *OpenAI {
		if endpoint := configs.First[string](loader, "openrouter_endpoint"); endpoint != "" {
			args.BaseURL = endpoint
		} else {
			args.BaseURL = "https://openrouter.ai/api/v1"
		}
		args.IsOpenRouter = true
		return newOpenAI(
			args,
			vars.FirstNonZero(
				args.APIKey,
				string(apiKey),
			),
		)
	}
}
