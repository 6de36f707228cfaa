package capabilities

import (
	"context"
	"strings"

	"github.com/wispworks/wisp/generators"
	"github.com/wispworks/wisp/sessions"
)

type GenerateCode func(ctx context.Context, generator generators.Generator, prompt string) (*sessions.Session, error)

// GenerateCode runs one retry session for a coding task and returns it with
// its full attempt history, whatever the outcome.
func (Module) GenerateCode(
	newSession sessions.NewSession,
	run sessions.Run,
) GenerateCode {
	return func(ctx context.Context, generator generators.Generator, prompt string) (*sessions.Session, error) {
		session := newSession(prompt)
		err := run(ctx, generator, session)
		return session, err
	}
}

func sessionReport(session *sessions.Session) string {
	return strings.Join(session.Output(), "\n")
}
