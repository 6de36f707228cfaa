package generators

type Part interface {
	isPart()
}

// Text is user-visible dialogue text.
type Text string

func (Text) isPart() {}

// Thought is model reasoning, displayed but not treated as an answer.
type Thought string

func (Thought) isPart() {}

// Script is source text produced by a generator for execution.
type Script string

func (Script) isPart() {}

// ExecOutput is captured standard output of an executed script, fed back as
// context for the next generation round.
type ExecOutput string

func (ExecOutput) isPart() {}

// FaultReport is a fault description fed back as repair context.
type FaultReport string

func (FaultReport) isPart() {}

type FuncCall struct {
	ID   string
	Name string
	Args map[string]any
}

func (FuncCall) isPart() {}

type CallResult struct {
	ID      string
	Name    string
	Results map[string]any
}

func (CallResult) isPart() {}

type FinishReason string

func (FinishReason) isPart() {}

type Error struct {
	Err error
}

func (Error) isPart() {}

type Usage struct {
	Prompt struct {
		TokenCount       int
		TokenCountCached int
	}
	Candidates struct {
		TokenCount int
	}
}

func (Usage) isPart() {}
