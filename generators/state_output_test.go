package generators

import (
	"strings"
	"testing"
)

func TestOutput(t *testing.T) {
	buf := new(strings.Builder)
	state := State(NewOutput(NewPrompts("", nil), buf, true))

	state, err := state.AppendContent(&Content{
		Role:  RoleAssistant,
		Parts: []Part{Thought("hmm"), Text("hello")},
	})
	if err != nil {
		t.Fatal(err)
	}
	state, err = state.Flush()
	if err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	if !strings.Contains(out, "<think>") {
		t.Fatalf("got %q", out)
	}
	if !strings.Contains(out, "</think>") {
		t.Fatalf("got %q", out)
	}
	if !strings.Contains(out, "hello") {
		t.Fatalf("got %q", out)
	}

	// upstream still records everything
	if len(state.Contents()) != 1 {
		t.Fatalf("got %+v", state.Contents())
	}
}

func TestOutputHideThoughts(t *testing.T) {
	buf := new(strings.Builder)
	state := State(NewOutput(NewPrompts("", nil), buf, false))
	_, err := state.AppendContent(&Content{
		Role:  RoleAssistant,
		Parts: []Part{Thought("secret")},
	})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "secret") {
		t.Fatalf("got %q", buf.String())
	}
}
