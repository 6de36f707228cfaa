package capabilities

import (
	"context"
	"fmt"
	"strings"

	"github.com/wispworks/wisp/generators"
	"github.com/wispworks/wisp/logs"
)

const DispatchSystemPrompt = `
You are an assistant with tools. For each user request, either answer directly or call the single most suitable tool:
- web_search: questions about current events or facts you are unsure of.
- read_file: the user asks about the content of a local file.
- computer_action: the user asks you to operate the desktop (click, type, take screenshots).
- run_code: tasks that need computation, data processing or interaction with the local system.
After a tool returns, summarize its result for the user.
`

// round cap for the generate-call-observe loop
const maxToolRounds = 8

type Outcome struct {
	Kind   Kind
	Report string
}

type Dispatch func(ctx context.Context, generator generators.Generator, utterance string, state generators.State) (*Outcome, generators.State, error)

// Dispatch routes one user utterance to a capability. Classification is
// delegated to the generator through function calling; with a nil generator
// the keyword policy of Classify decides instead. The returned state carries
// the full exchange including tool calls and results.
func (Module) Dispatch(
	search Search,
	readFile ReadFile,
	performAction PerformComputerAction,
	generateCode GenerateCode,
	newSpan logs.NewSpan,
	logger logs.Logger,
) Dispatch {
	return func(ctx context.Context, generator generators.Generator, utterance string, state generators.State) (*Outcome, generators.State, error) {
		ctx, _ = newSpan(ctx, "")
		if state == nil {
			state = generators.NewPrompts(DispatchSystemPrompt, nil)
		}

		var err error
		if state, err = state.AppendContent(&generators.Content{
			Role: generators.RoleUser,
			Parts: []generators.Part{
				generators.Text(utterance),
			},
		}); err != nil {
			return nil, state, err
		}

		if generator == nil {
			return dispatchByKeyword(ctx, utterance, state, search, readFile, performAction)
		}

		outcome := &Outcome{
			Kind: KindDirectAnswer,
		}

		webSearchFunc := &generators.Func{
			Decl: generators.FuncDecl{
				Name:        "web_search",
				Description: "Search the web and return result titles, snippets and URLs.",
				Params: generators.Vars{
					{
						Name:        "query",
						Type:        generators.TypeString,
						Description: "The search query.",
					},
					{
						Name:        "max_results",
						Type:        generators.TypeInteger,
						Optional:    true,
						Description: "Maximum number of results, default 5.",
					},
				},
			},
			Func: func(args map[string]any) (map[string]any, error) {
				query, _ := args["query"].(string)
				if query == "" {
					return map[string]any{"error": "query is required"}, nil
				}
				maxResults := 0
				if n, ok := args["max_results"].(float64); ok {
					maxResults = int(n)
				}
				results, err := search(ctx, query, maxResults)
				if err != nil {
					return map[string]any{"error": err.Error()}, nil
				}
				outcome.Kind = KindWebSearch
				outcome.Report = formatSearchResults(results)
				var items []any
				for _, result := range results {
					items = append(items, map[string]any{
						"title":   result.Title,
						"snippet": result.Snippet,
						"url":     result.URL,
					})
				}
				return map[string]any{"results": items}, nil
			},
		}

		readFileFunc := &generators.Func{
			Decl: generators.FuncDecl{
				Name:        "read_file",
				Description: "Read a local text file and return its content.",
				Params: generators.Vars{
					{
						Name:        "path",
						Type:        generators.TypeString,
						Description: "The file path.",
					},
				},
			},
			Func: func(args map[string]any) (map[string]any, error) {
				path, _ := args["path"].(string)
				if path == "" {
					return map[string]any{"error": "path is required"}, nil
				}
				content, err := readFile(path)
				if err != nil {
					return map[string]any{"error": err.Error()}, nil
				}
				outcome.Kind = KindFileRead
				outcome.Report = content
				return map[string]any{"content": content}, nil
			},
		}

		computerFunc := &generators.Func{
			Decl: generators.FuncDecl{
				Name:        "computer_action",
				Description: "Perform an action on the hosted virtual desktop and return its outcome report.",
				Params: generators.Vars{
					{
						Name:        "action",
						Type:        generators.TypeString,
						Description: "A natural-language description of the action.",
					},
				},
			},
			Func: func(args map[string]any) (map[string]any, error) {
				action, _ := args["action"].(string)
				if action == "" {
					return map[string]any{"error": "action is required"}, nil
				}
				report, err := performAction(ctx, action)
				if err != nil {
					return map[string]any{"error": err.Error()}, nil
				}
				outcome.Kind = KindGuiAutomation
				outcome.Report = report
				return map[string]any{"report": report}, nil
			},
		}

		runCodeFunc := &generators.Func{
			Decl: generators.FuncDecl{
				Name:        "run_code",
				Description: "Delegate a computational task to a script-writing session and return its output.",
				Params: generators.Vars{
					{
						Name:        "task",
						Type:        generators.TypeString,
						Description: "The task for the script to achieve.",
					},
				},
			},
			Func: func(args map[string]any) (map[string]any, error) {
				task, _ := args["task"].(string)
				if task == "" {
					return map[string]any{"error": "task is required"}, nil
				}
				session, err := generateCode(ctx, generator, task)
				report := sessionReport(session)
				outcome.Kind = KindCodeGeneration
				outcome.Report = report
				if err != nil {
					return map[string]any{
						"error":  err.Error(),
						"output": report,
					}, nil
				}
				return map[string]any{"output": report}, nil
			},
		}

		looped := generators.State(generators.NewFuncMap(state,
			webSearchFunc,
			readFileFunc,
			computerFunc,
			runCodeFunc,
		))

		for round := 0; round < maxToolRounds; round++ {
			if err := ctx.Err(); err != nil {
				return nil, state, err
			}
			looped, err = generator.Generate(ctx, looped)
			if err != nil {
				return nil, state, err
			}
			// keep generating while the model has unseen tool results,
			// skipping trailing log turns
			var last *generators.Content
			contents := looped.Contents()
			for i := len(contents) - 1; i >= 0; i-- {
				if contents[i].Role == generators.RoleLog {
					continue
				}
				last = contents[i]
				break
			}
			if last != nil && last.Role == generators.RoleTool {
				continue
			}
			break
		}

		if outcome.Kind == KindDirectAnswer {
			outcome.Report = lastAssistantText(looped)
		}

		logger.InfoContext(ctx, "dispatched",
			"kind", outcome.Kind,
		)

		// drop our tool wrapper, keep the caller's own layers
		ret := looped
		if fm, ok := generators.As[generators.FuncMap](ret); ok {
			ret = fm.Unwrap()
		}
		return outcome, ret, nil
	}
}

func dispatchByKeyword(
	ctx context.Context,
	utterance string,
	state generators.State,
	search Search,
	readFile ReadFile,
	performAction PerformComputerAction,
) (*Outcome, generators.State, error) {
	kind := Classify(utterance)
	outcome := &Outcome{
		Kind: kind,
	}

	switch kind {

	case KindWebSearch:
		results, err := search(ctx, utterance, 5)
		if err != nil {
			return nil, state, err
		}
		outcome.Report = formatSearchResults(results)

	case KindFileRead:
		// crude: the path is the last whitespace-separated token
		fields := strings.Fields(utterance)
		if len(fields) == 0 {
			return nil, state, fmt.Errorf("no path in utterance")
		}
		content, err := readFile(fields[len(fields)-1])
		if err != nil {
			return nil, state, err
		}
		outcome.Report = content

	case KindGuiAutomation:
		report, err := performAction(ctx, utterance)
		if err != nil {
			return nil, state, err
		}
		outcome.Report = report

	default:
		return nil, state, fmt.Errorf("capability %v needs a generator", kind)
	}

	state, err := state.AppendContent(&generators.Content{
		Role: generators.RoleLog,
		Parts: []generators.Part{
			generators.Text(outcome.Report),
		},
	})
	if err != nil {
		return nil, state, err
	}
	return outcome, state, nil
}

func formatSearchResults(results []SearchResult) string {
	var builder strings.Builder
	for i, result := range results {
		if i > 0 {
			builder.WriteString("\n")
		}
		fmt.Fprintf(&builder, "%d. %s\n   %s\n   %s", i+1, result.Title, result.Snippet, result.URL)
	}
	return builder.String()
}

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
