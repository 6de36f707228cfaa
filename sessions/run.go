package sessions

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wispworks/wisp/faults"
	"github.com/wispworks/wisp/generators"
	"github.com/wispworks/wisp/logs"
	"github.com/wispworks/wisp/runners"
)

type Run func(ctx context.Context, generator generators.Generator, session *Session) error

const generateRetries = 3

func (Module) Run(
	execute runners.Execute,
	systemPrompt SystemPrompt,
	newSpan logs.NewSpan,
	logger logs.Logger,
) Run {
	return func(ctx context.Context, generator generators.Generator, session *Session) error {
		ctx, _ = newSpan(ctx, "")

		state := session.State
		if state == nil {
			state = generators.NewPrompts(string(systemPrompt), nil)
		}
		var err error
		if state, err = state.AppendContent(&generators.Content{
			Role: generators.RoleUser,
			Parts: []generators.Part{
				generators.Text(session.Prompt),
			},
		}); err != nil {
			return err
		}
		session.State = state

		fatal := func(fault *faults.Fault) error {
			session.Fault = fault
			session.Status = StatusFailed
			return logs.WrapSpan(ctx, fault)
		}

		for {
			if err := ctx.Err(); err != nil {
				return err
			}
			session.Status = StatusRunning

			// a conversation grown past the model context cannot draft anymore
			if limit := generator.Args().ContextTokens; limit > 0 {
				if tokens, err := promptTokens(generator, state); err == nil && tokens > limit {
					return fatal(faults.New(faults.ClassGeneration,
						"conversation of %d tokens exceeds the %d token context window", tokens, limit))
				}
			}

			// draft
			var newState generators.State
			var timeoutFault *faults.Fault
			for i := 0; ; i++ {
				genCtx, cancel := context.WithTimeout(ctx, session.Timeout)
				newState, err = generator.Generate(genCtx, state)
				deadlineHit := genCtx.Err() != nil
				cancel()
				if err == nil {
					break
				}
				if ctx.Err() != nil {
					return ctx.Err()
				}
				if deadlineHit {
					// the call exceeded its bound, counted like a script timeout
					timeoutFault = faults.New(faults.ClassTimeout, "generation exceeded %v", session.Timeout)
					break
				}
				if generators.IsRetryable(err) && i < generateRetries {
					logger.WarnContext(ctx, "retrying generation",
						"session", session.ID,
						"error", err,
					)
					select {
					case <-time.After(time.Second * time.Duration(i+1)):
					case <-ctx.Done():
						return ctx.Err()
					}
					continue
				}
				return fatal(faults.New(faults.ClassGeneration, "%v", err))
			}
			if timeoutFault != nil {
				session.Attempts = append(session.Attempts, Attempt{
					Script: runners.Script{Index: len(session.Attempts)},
					Result: runners.Result{Fault: timeoutFault},
				})
				if state, err = appendFaultReport(state, timeoutFault, ""); err != nil {
					return err
				}
				session.State = state
				if session.FaultCount() >= session.MaxAttempts {
					return exhaust(session, timeoutFault)
				}
				continue
			}
			state = newState
			session.State = state

			source, ok := ExtractScript(lastAssistantText(state))
			if !ok {
				fault := faults.New(faults.ClassRuntime, "response contains no script")
				session.Attempts = append(session.Attempts, Attempt{
					Script: runners.Script{Index: len(session.Attempts)},
					Result: runners.Result{Fault: fault},
				})
				if state, err = appendFaultReport(state, fault, ""); err != nil {
					return err
				}
				session.State = state
				if session.FaultCount() >= session.MaxAttempts {
					return exhaust(session, fault)
				}
				continue
			}

			// execute
			script := runners.Script{
				Source: source,
				Index:  len(session.Attempts),
			}
			execCtx, cancel := context.WithTimeout(ctx, session.Timeout)
			result := execute(execCtx, script)
			cancel()
			if ctx.Err() != nil {
				return ctx.Err()
			}
			session.Attempts = append(session.Attempts, Attempt{
				Script: script,
				Result: result,
			})

			if fault := result.Fault; fault != nil {
				logger.InfoContext(ctx, "attempt faulted",
					"session", session.ID,
					"attempt", script.Index,
					"class", fault.Class,
				)
				if !fault.Class.Budgeted() {
					return fatal(fault)
				}
				if state, err = appendFaultReport(state, fault, result.Stderr); err != nil {
					return err
				}
				session.State = state
				if session.FaultCount() >= session.MaxAttempts {
					return exhaust(session, fault)
				}
				continue
			}

			if result.Continue {
				session.Status = StatusAwaitingContinuation
				logger.InfoContext(ctx, "attempt requests continuation",
					"session", session.ID,
					"attempt", script.Index,
				)
				if state, err = state.AppendContent(&generators.Content{
					Role: generators.RoleUser,
					Parts: []generators.Part{
						generators.ExecOutput(strings.Join(result.Stdout, "\n")),
						generators.Text("\nThe script requested another round. Continue with the next script."),
					},
				}); err != nil {
					return err
				}
				session.State = state
				continue
			}

			// clean run
			if state, err = state.AppendContent(&generators.Content{
				Role: generators.RoleUser,
				Parts: []generators.Part{
					generators.ExecOutput(strings.Join(result.Stdout, "\n")),
				},
			}); err != nil {
				return err
			}
			session.State = state
			session.Status = StatusSucceeded
			logger.InfoContext(ctx, "session succeeded",
				"session", session.ID,
				"attempts", len(session.Attempts),
			)
			return nil
		}
	}
}

func exhaust(session *Session, fault *faults.Fault) error {
	session.Status = StatusExhausted
	session.Fault = fault
	var messages []string
	for _, attempt := range session.Attempts {
		if attempt.Result.Fault != nil {
			messages = append(messages, attempt.Result.Fault.Error())
		}
	}
	return fmt.Errorf("retry budget exhausted after %d faulted attempts (%s): %w",
		session.FaultCount(),
		strings.Join(messages, "; "),
		fault,
	)
}

func appendFaultReport(state generators.State, fault *faults.Fault, stderr string) (generators.State, error) {
	report := fault.Error()
	if stderr != "" {
		report += "\n" + stderr
	}
	return state.AppendContent(&generators.Content{
		Role: generators.RoleUser,
		Parts: []generators.Part{
			generators.FaultReport(report),
			generators.Text("\nThe script above failed. Respond with a corrected script."),
		},
	})
}

// promptTokens measures the conversation about to be sent with the
// generator's own tokenizer.
func promptTokens(generator generators.Generator, state generators.State) (int, error) {
	var builder strings.Builder
	builder.WriteString(state.SystemPrompt())
	for _, content := range state.Contents() {
		for _, part := range content.Parts {
			switch part := part.(type) {
			case generators.Text:
				builder.WriteString(string(part))
			case generators.Thought:
				builder.WriteString(string(part))
			case generators.Script:
				builder.WriteString(string(part))
			case generators.ExecOutput:
				builder.WriteString(string(part))
			case generators.FaultReport:
				builder.WriteString(string(part))
			}
		}
	}
	return generator.CountTokens(builder.String())
}

// lastAssistantText collects the text parts of the most recent assistant turn.
func lastAssistantText(state generators.State) string {
	contents := state.Contents()
	for i := len(contents) - 1; i >= 0; i-- {
		content := contents[i]
		if content.Role != generators.RoleAssistant {
			continue
		}
		var builder strings.Builder
		for _, part := range content.Parts {
			if text, ok := part.(generators.Text); ok {
				builder.WriteString(string(text))
			}
		}
		return builder.String()
	}
	return ""
}
