package runners

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/wispworks/wisp/cmds"
	"github.com/wispworks/wisp/faults"
	"github.com/wispworks/wisp/logs"
	"github.com/wispworks/wisp/syncs"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

var safeFlag = cmds.Switch("-safe")

// ContinueSentinel requests another round when it is the final non-empty
// stdout line of a clean run. Matching is exact after trimming trailing
// whitespace; the sentinel line itself is not part of the reported output.
const ContinueSentinel = "CONTINUE"

// Script is one unit of generated code. Source is never modified after
// drafting; Index is its position in the attempt sequence.
type Script struct {
	Source string
	Index  int
}

// Result reports one execution. Stdout holds the printed lines in order.
// Fault is nil on a clean run. A faulted run keeps whatever stdout was
// produced before the fault.
type Result struct {
	Stdout   []string
	Stderr   string
	Fault    *faults.Fault
	Continue bool
}

type Execute func(ctx context.Context, script Script) Result

var fileOptions = &syntax.FileOptions{
	Set:             true,
	While:           true,
	TopLevelControl: true,
	GlobalReassign:  true,
	Recursion:       true,
}

func (Module) Execute(
	logger logs.Logger,
	natives Natives,
) Execute {
	// one script at a time
	semaphore := syncs.NewSemaphore(1)

	return func(ctx context.Context, script Script) Result {
		semaphore.Acquire()
		defer semaphore.Release()

		if *safeFlag {
			if err := applySandbox(logger); err != nil {
				return Result{
					Fault: faults.New(faults.ClassConfiguration, "apply sandbox: %v", err),
				}
			}
		}

		filename := fmt.Sprintf("script-%d.star", script.Index)

		// validate before executing
		if _, err := fileOptions.Parse(filename, script.Source, 0); err != nil {
			return Result{
				Stderr: err.Error(),
				Fault:  faults.New(faults.ClassSyntax, "%v", err),
			}
		}

		var stdout []string
		thread := &starlark.Thread{
			Name: filename,
			Print: func(_ *starlark.Thread, msg string) {
				stdout = append(stdout, strings.Split(msg, "\n")...)
			},
		}

		var timedOut atomic.Bool
		watchDone := make(chan struct{})
		defer close(watchDone)
		go func() {
			select {
			case <-ctx.Done():
				timedOut.Store(true)
				thread.Cancel(ctx.Err().Error())
			case <-watchDone:
			}
		}()

		logger.InfoContext(ctx, "executing script",
			"index", script.Index,
		)

		_, err := starlark.ExecFileOptions(fileOptions, thread, filename, script.Source, natives(ctx))
		if err != nil {
			if timedOut.Load() {
				return Result{
					Stdout: stdout,
					Stderr: err.Error(),
					Fault:  faults.New(faults.ClassTimeout, "%v", err),
				}
			}
			var stderr string
			if evalErr, ok := err.(*starlark.EvalError); ok {
				stderr = evalErr.Backtrace()
			} else {
				stderr = err.Error()
			}
			return Result{
				Stdout: stdout,
				Stderr: stderr,
				Fault:  faults.New(faults.ClassRuntime, "%v", err),
			}
		}

		return finishResult(stdout)
	}
}

// finishResult detects the continuation sentinel on a clean run.
func finishResult(stdout []string) Result {
	for i := len(stdout) - 1; i >= 0; i-- {
		line := strings.TrimRight(stdout[i], " \t\r")
		if line == "" {
			continue
		}
		if line == ContinueSentinel {
			return Result{
				Stdout:   append(stdout[:i:i], stdout[i+1:]...),
				Continue: true,
			}
		}
		break
	}
	return Result{
		Stdout: stdout,
	}
}
