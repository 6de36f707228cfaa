package capabilities

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/wispworks/wisp/generators"
	"github.com/wispworks/wisp/logs"
	"github.com/wispworks/wisp/runners"
	"github.com/wispworks/wisp/sessions"
)

type mockGenerator struct {
	responses [][]generators.Part
}

var _ generators.Generator = new(mockGenerator)

func (m *mockGenerator) Args() generators.GeneratorArgs  { return generators.GeneratorArgs{} }
func (m *mockGenerator) CountTokens(string) (int, error) { return 0, nil }

func (m *mockGenerator) Generate(ctx context.Context, state generators.State) (generators.State, error) {
	if len(m.responses) == 0 {
		return nil, fmt.Errorf("no more responses")
	}
	parts := m.responses[0]
	m.responses = m.responses[1:]
	return state.AppendContent(&generators.Content{
		Role:  generators.RoleAssistant,
		Parts: parts,
	})
}

func testDispatch(t *testing.T) Dispatch {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	var module Module

	search := Search(func(ctx context.Context, query string, maxResults int) ([]SearchResult, error) {
		return []SearchResult{
			{
				Title:   "The Go Programming Language",
				Snippet: "Go is an open source programming language.",
				URL:     "https://go.dev/",
			},
		}, nil
	})

	readFile := ReadFile(func(path string) (string, error) {
		if path != "/tmp/note.txt" {
			return "", fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return "note content", nil
	})

	perform := PerformComputerAction(func(ctx context.Context, action string) (string, error) {
		return "action done: " + action, nil
	})

	generateCode := GenerateCode(func(ctx context.Context, generator generators.Generator, prompt string) (*sessions.Session, error) {
		return &sessions.Session{
			Status: sessions.StatusSucceeded,
			Attempts: []sessions.Attempt{
				{
					Result: runners.Result{
						Stdout: []string{"42"},
					},
				},
			},
		}, nil
	})

	var logsModule logs.Module
	return module.Dispatch(search, readFile, perform, generateCode, logsModule.NewSpan(logger), logger)
}

func TestDispatchDirectAnswer(t *testing.T) {
	dispatch := testDispatch(t)
	gen := &mockGenerator{
		responses: [][]generators.Part{
			{generators.Text("Go is a programming language.")},
		},
	}
	outcome, state, err := dispatch(t.Context(), gen, "what is go?", nil)
	if err != nil {
		t.Fatal(err)
	}
	if outcome.Kind != KindDirectAnswer {
		t.Fatalf("got %v", outcome.Kind)
	}
	if outcome.Report != "Go is a programming language." {
		t.Fatalf("got %q", outcome.Report)
	}
	if len(state.Contents()) != 2 {
		t.Fatalf("got %+v", state.Contents())
	}
}

func TestDispatchWebSearch(t *testing.T) {
	dispatch := testDispatch(t)
	gen := &mockGenerator{
		responses: [][]generators.Part{
			{generators.FuncCall{
				ID:   "call-1",
				Name: "web_search",
				Args: map[string]any{"query": "go language"},
			}},
			{generators.Text("See go.dev for details.")},
		},
	}
	outcome, state, err := dispatch(t.Context(), gen, "search for the go language", nil)
	if err != nil {
		t.Fatal(err)
	}
	if outcome.Kind != KindWebSearch {
		t.Fatalf("got %v", outcome.Kind)
	}
	if !strings.Contains(outcome.Report, "The Go Programming Language") {
		t.Fatalf("got %q", outcome.Report)
	}
	if !strings.Contains(outcome.Report, "https://go.dev/") {
		t.Fatalf("got %q", outcome.Report)
	}

	// the exchange retains the tool result turn
	hasToolTurn := false
	for _, content := range state.Contents() {
		if content.Role == generators.RoleTool {
			hasToolTurn = true
		}
	}
	if !hasToolTurn {
		t.Fatalf("got %+v", state.Contents())
	}
}

func TestDispatchRunCode(t *testing.T) {
	dispatch := testDispatch(t)
	gen := &mockGenerator{
		responses: [][]generators.Part{
			{generators.FuncCall{
				ID:   "call-1",
				Name: "run_code",
				Args: map[string]any{"task": "compute the answer"},
			}},
			{generators.Text("The answer is 42.")},
		},
	}
	outcome, _, err := dispatch(t.Context(), gen, "compute the answer", nil)
	if err != nil {
		t.Fatal(err)
	}
	if outcome.Kind != KindCodeGeneration {
		t.Fatalf("got %v", outcome.Kind)
	}
	if outcome.Report != "42" {
		t.Fatalf("got %q", outcome.Report)
	}
}

func TestDispatchFileRead(t *testing.T) {
	dispatch := testDispatch(t)
	gen := &mockGenerator{
		responses: [][]generators.Part{
			{generators.FuncCall{
				ID:   "call-1",
				Name: "read_file",
				Args: map[string]any{"path": "/tmp/note.txt"},
			}},
			{generators.Text("The note says: note content")},
		},
	}
	outcome, _, err := dispatch(t.Context(), gen, "show file /tmp/note.txt", nil)
	if err != nil {
		t.Fatal(err)
	}
	if outcome.Kind != KindFileRead {
		t.Fatalf("got %v", outcome.Kind)
	}
	if outcome.Report != "note content" {
		t.Fatalf("got %q", outcome.Report)
	}
}

func TestDispatchToolErrorFedBack(t *testing.T) {
	dispatch := testDispatch(t)
	gen := &mockGenerator{
		responses: [][]generators.Part{
			{generators.FuncCall{
				ID:   "call-1",
				Name: "read_file",
				Args: map[string]any{"path": "/no/such/file"},
			}},
			{generators.Text("The file does not exist.")},
		},
	}
	outcome, state, err := dispatch(t.Context(), gen, "show file /no/such/file", nil)
	if err != nil {
		t.Fatal(err)
	}
	// the fault stayed inside the exchange, the dispatch itself succeeded
	if outcome.Kind != KindDirectAnswer {
		t.Fatalf("got %v", outcome.Kind)
	}
	if outcome.Report != "The file does not exist." {
		t.Fatalf("got %q", outcome.Report)
	}
	found := false
	for _, content := range state.Contents() {
		for _, part := range content.Parts {
			if result, ok := part.(generators.CallResult); ok {
				if msg, ok := result.Results["error"].(string); ok && strings.Contains(msg, "file not found") {
					found = true
				}
			}
		}
	}
	if !found {
		t.Fatalf("got %+v", state.Contents())
	}
}

func TestDispatchKeywordFallback(t *testing.T) {
	dispatch := testDispatch(t)

	t.Run("web search", func(t *testing.T) {
		outcome, _, err := dispatch(t.Context(), nil, "search for the go language", nil)
		if err != nil {
			t.Fatal(err)
		}
		if outcome.Kind != KindWebSearch {
			t.Fatalf("got %v", outcome.Kind)
		}
		if !strings.Contains(outcome.Report, "The Go Programming Language") {
			t.Fatalf("got %q", outcome.Report)
		}
	})

	t.Run("file read", func(t *testing.T) {
		outcome, _, err := dispatch(t.Context(), nil, "read file /tmp/note.txt", nil)
		if err != nil {
			t.Fatal(err)
		}
		if outcome.Kind != KindFileRead {
			t.Fatalf("got %v", outcome.Kind)
		}
		if outcome.Report != "note content" {
			t.Fatalf("got %q", outcome.Report)
		}
	})

	t.Run("code generation needs a generator", func(t *testing.T) {
		_, _, err := dispatch(t.Context(), nil, "compute the first 10 primes", nil)
		if err == nil {
			t.Fatal("should error")
		}
	})
}

func TestDispatchStateReuse(t *testing.T) {
	dispatch := testDispatch(t)
	gen := &mockGenerator{
		responses: [][]generators.Part{
			{generators.Text("First answer.")},
			{generators.Text("Second answer.")},
		},
	}
	_, state, err := dispatch(t.Context(), gen, "first question", nil)
	if err != nil {
		t.Fatal(err)
	}
	outcome, state, err := dispatch(t.Context(), gen, "second question", state)
	if err != nil {
		t.Fatal(err)
	}
	if outcome.Report != "Second answer." {
		t.Fatalf("got %q", outcome.Report)
	}
	// both exchanges retained
	if len(state.Contents()) != 4 {
		t.Fatalf("got %+v", state.Contents())
	}
}
