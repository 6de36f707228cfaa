package generators

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/reusee/dscope"
	"github.com/wispworks/wisp/cmds"
	"github.com/wispworks/wisp/logs"
	"github.com/wispworks/wisp/nets"
	"github.com/wispworks/wisp/vars"
)

var debugOpenAI = cmds.Switch("-debug-openai")

// OpenAI talks to any OpenAI-compatible chat-completions endpoint with
// streaming enabled.
type OpenAI struct {
	args   GeneratorArgs
	apiKey string
	client nets.HTTPClient

	Count  dscope.Inject[BPETokenCounter]
	Logger dscope.Inject[logs.Logger]
}

var _ Generator = new(OpenAI)

func (o *OpenAI) Args() GeneratorArgs {
	return o.args
}

func (o *OpenAI) CountTokens(text string) (int, error) {
	return o.Count()(text)
}

func (o *OpenAI) Generate(ctx context.Context, state State) (ret State, err error) {
	ret = state

	messages, err := stateToOpenAIMessages(ret)
	if err != nil {
		return nil, err
	}

	var tools []Tool
	for _, fn := range ret.FuncMap() {
		tools = append(tools, fn.Decl.ToOpenAI())
	}

	temperature := float32(0)
	if o.args.Temperature != nil {
		temperature = *o.args.Temperature
	}

	if *debugOpenAI {
		jsonText, err := json.Marshal(messages)
		if err != nil {
			return nil, err
		}
		o.Logger().InfoContext(ctx, "messages to send",
			"messages", jsonText,
		)
	}

	o.Logger().InfoContext(ctx, "generating",
		"model", o.args.Model,
	)

	req := ChatCompletionRequest{
		Model:               o.args.Model,
		Messages:            messages,
		Stream:              true,
		MaxCompletionTokens: vars.DerefOrZero(o.args.MaxGenerateTokens),
		Temperature:         temperature,
	}

	if !o.args.DisableTools {
		req.Tools = tools
	}

	bodyBytes, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, "POST", strings.TrimSuffix(o.args.BaseURL, "/")+"/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := o.client.Do(httpReq)
	if err != nil {
		return ret, OpenAIError{
			Err:     err,
			Request: req,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		var errResp ErrorResponse
		if err := json.Unmarshal(body, &errResp); err != nil || errResp.Error == nil {
			err := fmt.Errorf("bad status: %d, body: %s", resp.StatusCode, string(body))
			if resp.StatusCode == http.StatusTooManyRequests {
				return ret, errors.Join(err, ErrRetryable)
			}
			return ret, OpenAIError{
				Err:     err,
				Request: req,
			}
		}

		errResp.Error.HTTPStatusCode = resp.StatusCode
		if resp.StatusCode == http.StatusTooManyRequests {
			return ret, errors.Join(errResp.Error, ErrRetryable)
		}
		return ret, OpenAIError{
			Err:     errResp.Error,
			Request: req,
		}
	}

	parser := new(OpenAIParser)
	finish := func() error {
		contents, err := parser.End()
		if err != nil {
			return err
		}
		for _, content := range contents {
			if ret, err = ret.AppendContent(content); err != nil {
				return err
			}
		}
		return nil
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*K), 1024*K)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "data: [DONE]") {
			break
		}

		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		data := line[6:]

		var streamResp ChatCompletionStreamResponse
		if err := json.Unmarshal([]byte(data), &streamResp); err != nil {
			return ret, fmt.Errorf("error unmarshalling stream response: %w", err)
		}

		if len(streamResp.Choices) == 0 {
			continue
		}

		newContents, err := parser.Input(streamResp.Choices[0].Delta)
		if err != nil {
			return ret, err
		}

		for _, content := range newContents {
			if ret, err = ret.AppendContent(content); err != nil {
				return ret, err
			}
		}

		if reason := streamResp.Choices[0].FinishReason; reason != "" {
			if err := finish(); err != nil {
				return ret, err
			}
			if ret, err = ret.AppendContent(&Content{
				Role: RoleLog,
				Parts: []Part{
					FinishReason(reason),
				},
			}); err != nil {
				return ret, err
			}
			if reason == "error" {
				return ret, errors.Join(errors.New(reason), ErrRetryable)
			}
		}

	}
	if err := scanner.Err(); err != nil {
		return ret, fmt.Errorf("error reading stream: %w", err)
	}

	if err := finish(); err != nil {
		return ret, err
	}

	if ret, err = ret.Flush(); err != nil {
		return ret, err
	}

	return ret, nil
}

func stateToOpenAIMessages(state State) (messages []ChatCompletionMessage, err error) {
	if state.SystemPrompt() != "" {
		messages = append(messages, ChatCompletionMessage{
			Role:    string(RoleSystem),
			Content: state.SystemPrompt(),
		})
	}

	addText := func(role string, text string) {
		if len(messages) > 0 {
			last := &messages[len(messages)-1]
			if last.Role == role && len(last.ToolCalls) == 0 {
				last.Content += text
				return
			}
		}
		messages = append(messages, ChatCompletionMessage{
			Role:    role,
			Content: text,
		})
	}

	for _, content := range state.Contents() {
		role := string(content.Role)
		if content.Role == RoleLog {
			// log contents carry no wire data
			role = string(RoleAssistant)
		}

		for _, part := range content.Parts {
			switch part := part.(type) {

			case Text:
				if len(part) > 0 {
					addText(role, string(part))
				}

			case Thought:
				if len(part) > 0 {
					addText(role, "<thought>"+string(part)+"</thought>")
				}

			case Script:
				if len(part) > 0 {
					addText(role, "```\n"+string(part)+"\n```")
				}

			case ExecOutput:
				if len(part) > 0 {
					addText(role, "output:\n"+string(part))
				}

			case FaultReport:
				if len(part) > 0 {
					addText(role, "error:\n"+string(part))
				}

			case FuncCall:
				argsBytes, err := json.Marshal(part.Args)
				if err != nil {
					return nil, err
				}
				messages = append(messages, ChatCompletionMessage{
					Role: string(RoleAssistant),
					ToolCalls: []ToolCall{
						{
							ID:   part.ID,
							Type: "function",
							Function: FunctionCall{
								Name:      part.Name,
								Arguments: string(argsBytes),
							},
						},
					},
				})

			case CallResult:
				resultsBytes, err := json.Marshal(part.Results)
				if err != nil {
					return nil, err
				}
				messages = append(messages, ChatCompletionMessage{
					Role:       string(RoleTool),
					ToolCallID: part.ID,
					Content:    string(resultsBytes),
				})

			}
		}
	}

	return
}

type NewOpenAI func(args GeneratorArgs, apiKey string) *OpenAI

func (Module) NewOpenAI(
	inject dscope.InjectStruct,
	client nets.HTTPClient,
) NewOpenAI {
	return func(args GeneratorArgs, apiKey string) *OpenAI {
		ret := &OpenAI{
			args:   args,
			client: client,
			apiKey: apiKey,
		}
		inject(&ret)
		return ret
	}
}
