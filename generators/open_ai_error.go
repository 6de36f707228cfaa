package generators

import "errors"

// ErrRetryable marks a transient generation failure (rate limit, truncated
// stream) that the caller may retry without consuming its own fault budget.
var ErrRetryable = errors.New("retryable")

func IsRetryable(err error) bool {
	return errors.Is(err, ErrRetryable)
}

type OpenAIError struct {
	Err     error
	Request ChatCompletionRequest
}

var _ error = OpenAIError{}

func (o OpenAIError) Error() string {
	return o.Err.Error()
}

func (o OpenAIError) Unwrap() error {
	return o.Err
}
