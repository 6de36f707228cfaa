package sessions

import (
	"time"

	"github.com/google/uuid"
	"github.com/wispworks/wisp/configs"
	"github.com/wispworks/wisp/faults"
	"github.com/wispworks/wisp/generators"
	"github.com/wispworks/wisp/runners"
)

type Status uint8

const (
	StatusRunning Status = iota
	StatusAwaitingContinuation
	StatusSucceeded
	StatusExhausted
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusAwaitingContinuation:
		return "awaiting-continuation"
	case StatusSucceeded:
		return "succeeded"
	case StatusExhausted:
		return "exhausted"
	case StatusFailed:
		return "failed"
	}
	return "unknown"
}

func (s Status) Terminal() bool {
	switch s {
	case StatusSucceeded, StatusExhausted, StatusFailed:
		return true
	}
	return false
}

// Attempt is one draft-and-execute round. The history is append-only; faulted
// attempts are retained alongside clean ones.
type Attempt struct {
	Script runners.Script
	Result runners.Result
}

// Session drives one prompt to completion. MaxAttempts bounds the faulted
// attempts; continuation rounds are free.
type Session struct {
	ID          uuid.UUID
	Prompt      string
	MaxAttempts int
	Timeout     time.Duration
	Attempts    []Attempt
	Status      Status
	Fault       *faults.Fault

	State generators.State
}

// FaultCount is the number of attempts that consumed the retry budget.
func (s *Session) FaultCount() int {
	n := 0
	for _, attempt := range s.Attempts {
		if attempt.Result.Fault != nil && attempt.Result.Fault.Class.Budgeted() {
			n++
		}
	}
	return n
}

// Output is the accumulated stdout of all clean and continued attempts, in
// execution order.
func (s *Session) Output() []string {
	var lines []string
	for _, attempt := range s.Attempts {
		if attempt.Result.Fault != nil {
			continue
		}
		lines = append(lines, attempt.Result.Stdout...)
	}
	return lines
}

const (
	defaultMaxAttempts = 3
	defaultTimeout     = 2 * time.Minute
)

type NewSession func(prompt string) *Session

func (Module) NewSession(
	loader configs.Loader,
) NewSession {
	return func(prompt string) *Session {
		maxAttempts := configs.First[int](loader, "max_attempts")
		if maxAttempts <= 0 {
			maxAttempts = defaultMaxAttempts
		}
		timeout := defaultTimeout
		if str := configs.First[string](loader, "script_timeout"); str != "" {
			if parsed, err := time.ParseDuration(str); err == nil {
				timeout = parsed
			}
		}
		return &Session{
			ID:          uuid.New(),
			Prompt:      prompt,
			MaxAttempts: maxAttempts,
			Timeout:     timeout,
			Status:      StatusRunning,
		}
	}
}
