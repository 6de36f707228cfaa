package generators

// State is an append-only conversation. Implementations never mutate contents
// in place; AppendContent returns a new State sharing the unchanged prefix, so
// concurrent readers of an old State are safe without locking.
type State interface {
	Contents() []*Content
	AppendContent(*Content) (State, error)
	SystemPrompt() string
	FuncMap() map[string]*Func
	Flush() (State, error)
	Unwrap() State
}
