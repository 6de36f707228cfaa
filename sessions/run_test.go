package sessions

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/wispworks/wisp/faults"
	"github.com/wispworks/wisp/generators"
	"github.com/wispworks/wisp/logs"
	"github.com/wispworks/wisp/runners"
)

type mockGenerator struct {
	responses     []string
	err           error
	seen          []string
	contextTokens int
}

var _ generators.Generator = new(mockGenerator)

func (m *mockGenerator) Args() generators.GeneratorArgs {
	return generators.GeneratorArgs{ContextTokens: m.contextTokens}
}

func (m *mockGenerator) CountTokens(text string) (int, error) { return len(text), nil }

func (m *mockGenerator) Generate(ctx context.Context, state generators.State) (generators.State, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.seen = append(m.seen, renderState(state))
	if len(m.responses) == 0 {
		return nil, fmt.Errorf("no more responses")
	}
	resp := m.responses[0]
	m.responses = m.responses[1:]
	return state.AppendContent(&generators.Content{
		Role:  generators.RoleAssistant,
		Parts: []generators.Part{generators.Text(resp)},
	})
}

func renderState(state generators.State) string {
	var builder strings.Builder
	for _, content := range state.Contents() {
		for _, part := range content.Parts {
			switch part := part.(type) {
			case generators.Text:
				builder.WriteString(string(part))
			case generators.ExecOutput:
				builder.WriteString(string(part))
			case generators.FaultReport:
				builder.WriteString(string(part))
			}
		}
	}
	return builder.String()
}

func fence(code string) string {
	return "```\n" + code + "\n```"
}

func testRun(t *testing.T) Run {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	var runnersModule runners.Module
	execute := runnersModule.Execute(logger, runnersModule.Natives(logger))
	var logsModule logs.Module
	var module Module
	return module.Run(execute, module.SystemPrompt(), logsModule.NewSpan(logger), logger)
}

func newTestSession(prompt string, maxAttempts int) *Session {
	return &Session{
		ID:          uuid.New(),
		Prompt:      prompt,
		MaxAttempts: maxAttempts,
		Timeout:     10 * time.Second,
		Status:      StatusRunning,
	}
}

func TestRunSucceedsFirstAttempt(t *testing.T) {
	run := testRun(t)
	gen := &mockGenerator{
		responses: []string{
			fence(`print("hi")`),
		},
	}
	session := newTestSession("say hi", 3)
	if err := run(t.Context(), gen, session); err != nil {
		t.Fatal(err)
	}
	if session.Status != StatusSucceeded {
		t.Fatalf("got %v", session.Status)
	}
	if len(session.Attempts) != 1 {
		t.Fatalf("got %d", len(session.Attempts))
	}
	if !reflect.DeepEqual(session.Output(), []string{"hi"}) {
		t.Fatalf("got %+v", session.Output())
	}
	if session.FaultCount() != 0 {
		t.Fatalf("got %d", session.FaultCount())
	}
}

func TestRunRecoversWithinBudget(t *testing.T) {
	run := testRun(t)
	gen := &mockGenerator{
		responses: []string{
			fence(`fail("first boom")`),
			fence(`fail("second boom")`),
			fence(`print("recovered")`),
		},
	}
	session := newTestSession("eventually work", 3)
	if err := run(t.Context(), gen, session); err != nil {
		t.Fatal(err)
	}
	if session.Status != StatusSucceeded {
		t.Fatalf("got %v", session.Status)
	}
	if len(session.Attempts) != 3 {
		t.Fatalf("got %d", len(session.Attempts))
	}
	if session.FaultCount() != 2 {
		t.Fatalf("got %d", session.FaultCount())
	}
	// the repair rounds see the fault messages
	if !strings.Contains(gen.seen[1], "first boom") {
		t.Fatalf("got %q", gen.seen[1])
	}
	if !strings.Contains(gen.seen[2], "second boom") {
		t.Fatalf("got %q", gen.seen[2])
	}
}

func TestRunExhausted(t *testing.T) {
	run := testRun(t)
	gen := &mockGenerator{
		responses: []string{
			fence(`fail("first boom")`),
			fence(`fail("second boom")`),
		},
	}
	session := newTestSession("never works", 2)
	err := run(t.Context(), gen, session)
	if err == nil {
		t.Fatal("should error")
	}
	if session.Status != StatusExhausted {
		t.Fatalf("got %v", session.Status)
	}
	if len(session.Attempts) != 2 {
		t.Fatalf("got %d", len(session.Attempts))
	}
	if session.FaultCount() != session.MaxAttempts {
		t.Fatalf("got %d", session.FaultCount())
	}
	last := session.Attempts[len(session.Attempts)-1]
	if last.Result.Fault == nil {
		t.Fatal("last attempt should be faulted")
	}
	// the reported failure carries every fault message
	if !strings.Contains(err.Error(), "first boom") {
		t.Fatalf("got %v", err)
	}
	if !strings.Contains(err.Error(), "second boom") {
		t.Fatalf("got %v", err)
	}
}

func TestRunContinuation(t *testing.T) {
	run := testRun(t)
	gen := &mockGenerator{
		responses: []string{
			fence(`
print("partial data")
print("CONTINUE")
`),
			fence(`print("done")`),
		},
	}
	session := newTestSession("two rounds", 3)
	if err := run(t.Context(), gen, session); err != nil {
		t.Fatal(err)
	}
	if session.Status != StatusSucceeded {
		t.Fatalf("got %v", session.Status)
	}
	if len(session.Attempts) != 2 {
		t.Fatalf("got %d", len(session.Attempts))
	}
	// continuation does not consume the budget
	if session.FaultCount() != 0 {
		t.Fatalf("got %d", session.FaultCount())
	}
	// the next round sees the pre-sentinel output
	if !strings.Contains(gen.seen[1], "partial data") {
		t.Fatalf("got %q", gen.seen[1])
	}
	if !reflect.DeepEqual(session.Output(), []string{"partial data", "done"}) {
		t.Fatalf("got %+v", session.Output())
	}
}

func TestRunSyntaxFaultCounts(t *testing.T) {
	run := testRun(t)
	gen := &mockGenerator{
		responses: []string{
			fence(`def (`),
			fence(`print("fixed")`),
		},
	}
	session := newTestSession("bad syntax first", 3)
	if err := run(t.Context(), gen, session); err != nil {
		t.Fatal(err)
	}
	if session.Status != StatusSucceeded {
		t.Fatalf("got %v", session.Status)
	}
	first := session.Attempts[0]
	if first.Result.Fault == nil {
		t.Fatal("should fault")
	}
	if first.Result.Fault.Class != faults.ClassSyntax {
		t.Fatalf("got %v", first.Result.Fault)
	}
	if len(first.Result.Stdout) != 0 {
		t.Fatalf("got %+v", first.Result.Stdout)
	}
	if session.FaultCount() != 1 {
		t.Fatalf("got %d", session.FaultCount())
	}
}

func TestRunNoScriptInResponse(t *testing.T) {
	run := testRun(t)
	gen := &mockGenerator{
		responses: []string{
			"I cannot write that script, sorry.",
			fence(`print("fine")`),
		},
	}
	session := newTestSession("reluctant model", 3)
	if err := run(t.Context(), gen, session); err != nil {
		t.Fatal(err)
	}
	if session.Status != StatusSucceeded {
		t.Fatalf("got %v", session.Status)
	}
	if session.FaultCount() != 1 {
		t.Fatalf("got %d", session.FaultCount())
	}
}

func TestRunGenerationFault(t *testing.T) {
	run := testRun(t)
	gen := &mockGenerator{
		err: errors.New("api down"),
	}
	session := newTestSession("doomed", 3)
	err := run(t.Context(), gen, session)
	if err == nil {
		t.Fatal("should error")
	}
	if session.Status != StatusFailed {
		t.Fatalf("got %v", session.Status)
	}
	fault, ok := faults.As(err)
	if !ok {
		t.Fatalf("got %v", err)
	}
	if fault.Class != faults.ClassGeneration {
		t.Fatalf("got %v", fault)
	}
	// a generation failure never consumes the script budget
	if len(session.Attempts) != 0 {
		t.Fatalf("got %d", len(session.Attempts))
	}
}

func TestRunContextOverflow(t *testing.T) {
	run := testRun(t)
	gen := &mockGenerator{
		responses: []string{
			fence(`print("never sent")`),
		},
		contextTokens: 1,
	}
	session := newTestSession("a prompt far larger than one token", 3)
	err := run(t.Context(), gen, session)
	if err == nil {
		t.Fatal("should error")
	}
	fault, ok := faults.As(err)
	if !ok {
		t.Fatalf("got %v", err)
	}
	if fault.Class != faults.ClassGeneration {
		t.Fatalf("got %v", fault)
	}
	if !strings.Contains(fault.Message, "context window") {
		t.Fatalf("got %v", fault)
	}
	if session.Status != StatusFailed {
		t.Fatalf("got %v", session.Status)
	}
	if len(session.Attempts) != 0 {
		t.Fatalf("got %d", len(session.Attempts))
	}
}

func TestRunCancelledDuringBackoff(t *testing.T) {
	run := testRun(t)
	gen := &mockGenerator{
		err: errors.Join(errors.New("throttled"), generators.ErrRetryable),
	}
	ctx, cancel := context.WithCancel(t.Context())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()
	session := newTestSession("slow provider", 3)
	started := time.Now()
	err := run(ctx, gen, session)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v", err)
	}
	// the first backoff is a full second; cancellation must cut it short
	if elapsed := time.Since(started); elapsed > 900*time.Millisecond {
		t.Fatalf("took %v", elapsed)
	}
}

func TestRunCancelled(t *testing.T) {
	run := testRun(t)
	gen := &mockGenerator{
		responses: []string{
			fence(`print("never runs")`),
		},
	}
	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	session := newTestSession("cancelled", 3)
	err := run(ctx, gen, session)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v", err)
	}
}

func TestExtractScript(t *testing.T) {

	t.Run("plain fence", func(t *testing.T) {
		script, ok := ExtractScript("text before\n```\nprint(1)\n```\ntext after")
		if !ok {
			t.Fatal("should extract")
		}
		if script != "print(1)" {
			t.Fatalf("got %q", script)
		}
	})

	t.Run("language tag", func(t *testing.T) {
		script, ok := ExtractScript("```python\nprint(1)\n```")
		if !ok {
			t.Fatal("should extract")
		}
		if script != "print(1)" {
			t.Fatalf("got %q", script)
		}
	})

	t.Run("think section stripped", func(t *testing.T) {
		script, ok := ExtractScript("<think>\nmaybe ```\nprint(0)\n``` ?\n</think>\n```\nprint(1)\n```")
		if !ok {
			t.Fatal("should extract")
		}
		if script != "print(1)" {
			t.Fatalf("got %q", script)
		}
	})

	t.Run("no block", func(t *testing.T) {
		_, ok := ExtractScript("no code here")
		if ok {
			t.Fatal("should not extract")
		}
	})

	t.Run("empty block", func(t *testing.T) {
		_, ok := ExtractScript("```\n```")
		if ok {
			t.Fatal("should not extract")
		}
	})
}
