package generators

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// Output is a decorator that streams appended contents to a writer as they
// arrive, so the user sees generation progress in real time. It keeps the
// visual stream coherent across chunked appends: a role change inserts a
// separator, thought parts are wrapped in balanced <think> tags, and colors
// are reset per chunk on terminals.
type Output struct {
	upstream            State
	w                   io.Writer
	isTerminal          bool
	showThoughts        bool
	lastOutputRole      Role
	lastOutputIsThought bool

	disableThoughts bool
	disableTools    bool
}

func NewOutput(upstream State, w io.Writer, showThoughts bool) Output {
	isTerminal := false
	if file, ok := w.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		isTerminal = true
	}
	return Output{
		upstream:     upstream,
		w:            w,
		isTerminal:   isTerminal,
		showThoughts: showThoughts,
	}
}

func (s Output) WithThoughts(yes bool) Output {
	s.disableThoughts = !yes
	return s
}

func (s Output) WithTools(yes bool) Output {
	s.disableTools = !yes
	return s
}

var _ State = Output{}

func (s Output) AppendContent(content *Content) (_ State, err error) {
	ret := s // copy

	var roleColor string
	if s.isTerminal {
		switch content.Role {
		case RoleUser:
			roleColor = ColorUser
		case RoleAssistant:
			roleColor = ColorReset
		case RoleTool:
			roleColor = ColorTool
		case RoleSystem:
			roleColor = ColorSystem
		case RoleLog:
			roleColor = ColorLog
		}
	}

	// role change separation and thought closing
	if s.lastOutputRole != "" && s.lastOutputRole != content.Role {
		if ret.lastOutputIsThought {
			if _, err := fmt.Fprint(s.w, "\n</think>\n"); err != nil {
				return nil, err
			}
			ret.lastOutputIsThought = false
		}
		if _, err := fmt.Fprint(s.w, "\n\n"); err != nil {
			return nil, err
		}
	}

	print := func(isThought bool, str string) (err error) {
		if !ret.lastOutputIsThought && isThought {
			if _, err := fmt.Fprint(s.w, "<think>\n"); err != nil {
				return err
			}
			ret.lastOutputIsThought = true
		} else if ret.lastOutputIsThought && !isThought {
			if _, err := fmt.Fprint(s.w, "\n</think>\n"); err != nil {
				return err
			}
			ret.lastOutputIsThought = false
		}

		c := roleColor
		if isThought && s.isTerminal {
			c = ColorThought
		}
		if c != "" {
			if _, err := fmt.Fprint(s.w, c); err != nil {
				return err
			}
		}

		if _, err := fmt.Fprint(s.w, str); err != nil {
			return err
		}

		if c != "" {
			if _, err := fmt.Fprint(s.w, ColorReset); err != nil {
				return err
			}
		}

		return nil
	}

	for _, part := range content.Parts {

		switch part := part.(type) {

		case Text:
			if err := print(false, string(part)); err != nil {
				return nil, err
			}

		case Thought:
			if ret.showThoughts && !ret.disableThoughts {
				if err := print(true, string(part)); err != nil {
					return nil, err
				}
			}

		case Script:
			if err := print(false, fmt.Sprintf("\n```\n%s\n```\n", part)); err != nil {
				return nil, err
			}

		case ExecOutput:
			if err := print(false, string(part)); err != nil {
				return nil, err
			}

		case FaultReport:
			if err := print(false, fmt.Sprintf("[Fault: %s]", part)); err != nil {
				return nil, err
			}

		case FuncCall:
			if !ret.disableTools {
				if err := print(false, fmt.Sprintf("[Function Call: %s(%v)]", part.Name, part.Args)); err != nil {
					return nil, err
				}
			}

		case CallResult:
			if !ret.disableTools {
				if err := print(false, fmt.Sprintf("[Call Result: %s(%v)]", part.Name, part.Results)); err != nil {
					return nil, err
				}
			}

		case FinishReason:
			if err := print(false, fmt.Sprintf("[Finish: %s]", part)); err != nil {
				return nil, err
			}

		case Error:
			if err := print(false, fmt.Sprintf("[Error: %v]", part.Err)); err != nil {
				return nil, err
			}

		}
	}

	ret.lastOutputRole = content.Role
	ret.upstream, err = s.upstream.AppendContent(content)
	if err != nil {
		return nil, err
	}

	return ret, nil
}

func (s Output) Contents() []*Content {
	return s.upstream.Contents()
}

func (s Output) FuncMap() map[string]*Func {
	return s.upstream.FuncMap()
}

func (s Output) SystemPrompt() string {
	return s.upstream.SystemPrompt()
}

func (s Output) Flush() (State, error) {
	ret := s // copy
	if ret.lastOutputIsThought {
		if _, err := io.WriteString(s.w, "\n</think>\n"); err != nil {
			return nil, err
		}
		ret.lastOutputIsThought = false
	}
	if _, err := io.WriteString(s.w, "\n\n"); err != nil {
		return nil, err
	}
	var err error
	ret.upstream, err = s.upstream.Flush()
	if err != nil {
		return nil, err
	}
	ret.lastOutputRole = ""
	return ret, nil
}

func (s Output) Unwrap() State {
	return s.upstream
}
