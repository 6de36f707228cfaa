package generators

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/reusee/dscope"
	"github.com/wispworks/wisp/configs"
	"github.com/wispworks/wisp/modes"
)

func TestGetGenerator(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "test.cue")
	if err := os.WriteFile(configPath, []byte(`
generators: [
	{
		name: "my-model"
		type: "openai"
		base_url: "http://127.0.0.1:9999/v1"
		api_key: "secret"
		model: "my-model-v1"
	},
]
`), 0644); err != nil {
		t.Fatal(err)
	}

	dscope.New(
		new(Module),
		modes.ForTest(t),
		dscope.Provide(configs.NewLoader([]string{configPath}, "")),
	).Call(func(
		get GetGenerator,
	) {

		t.Run("user defined", func(t *testing.T) {
			generator, err := get("my-model")
			if err != nil {
				t.Fatal(err)
			}
			args := generator.Args()
			if args.BaseURL != "http://127.0.0.1:9999/v1" {
				t.Fatalf("got %+v", args)
			}
			if args.Model != "my-model-v1" {
				t.Fatalf("got %+v", args)
			}
		})

		t.Run("ollama prefix", func(t *testing.T) {
			generator, err := get("ollama:qwen3")
			if err != nil {
				t.Fatal(err)
			}
			args := generator.Args()
			if args.BaseURL != "http://127.0.0.1:11434/v1" {
				t.Fatalf("got %+v", args)
			}
			if args.Model != "qwen3" {
				t.Fatalf("got %+v", args)
			}
		})

		t.Run("built-in", func(t *testing.T) {
			generator, err := get("deepseek")
			if err != nil {
				t.Fatal(err)
			}
			args := generator.Args()
			if args.Model != "deepseek-chat" {
				t.Fatalf("got %+v", args)
			}
		})

		t.Run("unknown", func(t *testing.T) {
			_, err := get("no-such-model")
			if err == nil {
				t.Fatal("should error")
			}
		})

	})
}

func TestCountTokens(t *testing.T) {
	dscope.New(
		new(Module),
		modes.ForTest(t),
		dscope.Provide(configs.NewLoader(nil, "")),
	).Call(func(
		count BPETokenCounter,
	) {
		n, err := count("hello world")
		if err != nil {
			t.Fatal(err)
		}
		if n <= 0 {
			t.Fatalf("got %v", n)
		}
	})
}
