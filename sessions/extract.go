package sessions

import (
	"regexp"
	"strings"
)

var (
	thinkPattern     = regexp.MustCompile(`(?s)<think>.*?</think>`)
	codeBlockPattern = regexp.MustCompile("(?s)```(?:python|starlark|star)?[ \t]*\n(.*?)```")
)

// ExtractScript pulls the first fenced code block out of a model response.
// Think sections are stripped first so code quoted inside reasoning is not
// mistaken for the script.
func ExtractScript(text string) (string, bool) {
	text = thinkPattern.ReplaceAllString(text, "")
	match := codeBlockPattern.FindStringSubmatch(text)
	if match == nil {
		return "", false
	}
	script := strings.TrimSpace(match[1])
	if script == "" {
		return "", false
	}
	return script, true
}
