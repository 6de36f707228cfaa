package generators

import (
	"context"
	"fmt"
	"strings"

	"github.com/wispworks/wisp/vars"
)

type Generator interface {
	Args() GeneratorArgs
	CountTokens(string) (int, error)
	Generate(ctx context.Context, state State) (State, error)
}

type GetGenerator func(name string) (Generator, error)

func (Module) GetGenerator(
	newOpenAI NewOpenAI,
	newGroq NewGroq,
	newGemini NewGemini,
	newDeepseek NewDeepseek,
	newOpenRouter NewOpenRouter,
	getSpecs GetGeneratorSpecs,
) GetGenerator {
	return func(name string) (Generator, error) {

		// user-defined first
		specs, err := getSpecs()
		if err != nil {
			return nil, err
		}
		for _, spec := range specs {
			if spec.Name != name {
				continue
			}
			switch strings.ToLower(spec.Type) {
			case "openai", "open-ai", "open_ai":
				return newOpenAI(spec.GeneratorArgs, spec.APIKey), nil
			case "groq":
				return newGroq(spec.GeneratorArgs), nil
			case "gemini":
				return newGemini(spec.GeneratorArgs), nil
			case "deepseek":
				return newDeepseek(spec.GeneratorArgs), nil
			case "open-router", "open_router", "openrouter":
				return newOpenRouter(spec.GeneratorArgs), nil
			case "ollama":
				spec.GeneratorArgs.BaseURL = "http://127.0.0.1:11434/v1"
				return newOpenAI(spec.GeneratorArgs, ""), nil
			default:
				return nil, fmt.Errorf("unknown generator type: %q", spec.Type)
			}
		}

		// ollama
		provider, modelName, ok := strings.Cut(name, ":")
		if ok && provider == "ollama" {
			return newOpenAI(GeneratorArgs{
				BaseURL: "http://127.0.0.1:11434/v1",
				Model:   modelName,
			}, ""), nil
		}

		// built-ins
		switch name {

		case "flash", "gemini-flash":
			return newGemini(GeneratorArgs{
				Model:             "gemini-2.5-flash",
				ContextTokens:     192 * K,
				MaxGenerateTokens: vars.PtrTo(32 * K),
				Temperature:       vars.PtrTo(float32(0.1)),
			}), nil

		case "flash-lite", "gemini-flash-lite":
			return newGemini(GeneratorArgs{
				Model:             "gemini-2.5-flash-lite",
				ContextTokens:     192 * K,
				MaxGenerateTokens: vars.PtrTo(32 * K),
				Temperature:       vars.PtrTo(float32(0.1)),
			}), nil

		case "groq":
			return newGroq(GeneratorArgs{
				Model:             "llama-3.3-70b-versatile",
				ContextTokens:     128 * K,
				MaxGenerateTokens: vars.PtrTo(8 * K),
			}), nil

		case "deepseek":
			return newDeepseek(GeneratorArgs{
				Model:         "deepseek-chat",
				ContextTokens: 128 * K,
			}), nil

		}

		return nil, fmt.Errorf("invalid model: %s", name)
	}
}

const K = 1024
