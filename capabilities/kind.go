package capabilities

import "strings"

type Kind uint8

const (
	KindDirectAnswer Kind = iota
	KindCodeGeneration
	KindWebSearch
	KindFileRead
	KindGuiAutomation
)

func (k Kind) String() string {
	switch k {
	case KindDirectAnswer:
		return "direct-answer"
	case KindCodeGeneration:
		return "code-generation"
	case KindWebSearch:
		return "web-search"
	case KindFileRead:
		return "file-read"
	case KindGuiAutomation:
		return "gui-automation"
	}
	return "unknown"
}

// Classify is the keyword fallback policy used when no generator is available
// to pick a capability. The rules are deliberately coarse: search-like verbs
// map to web search, path-like requests to file read, desktop verbs to GUI
// automation, anything else to code generation.
func Classify(utterance string) Kind {
	lower := strings.ToLower(utterance)
	switch {
	case strings.Contains(lower, "search") ||
		strings.Contains(lower, "look up") ||
		strings.Contains(lower, "google"):
		return KindWebSearch
	case strings.Contains(lower, "read file") ||
		strings.Contains(lower, "open file") ||
		strings.Contains(lower, "show file"):
		return KindFileRead
	case strings.Contains(lower, "click") ||
		strings.Contains(lower, "screenshot") ||
		strings.Contains(lower, "desktop") ||
		strings.Contains(lower, "type into"):
		return KindGuiAutomation
	default:
		return KindCodeGeneration
	}
}
