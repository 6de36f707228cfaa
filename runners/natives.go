package runners

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/reusee/starlarkutil"
	"github.com/wispworks/wisp/logs"
	"go.starlark.net/starlark"
)

// Natives builds the predeclared environment of a script. Scripts run with
// host privileges unless the -safe sandbox is applied: they can read and
// write files, spawn processes, and reach the network through them.
type Natives func(ctx context.Context) starlark.StringDict

func (Module) Natives(
	logger logs.Logger,
) Natives {
	return func(ctx context.Context) starlark.StringDict {
		return starlark.StringDict{

			"read_file": starlarkutil.MakeFunc("read_file", func(path string) (string, error) {
				content, err := os.ReadFile(path)
				if err != nil {
					return "", err
				}
				return string(content), nil
			}),

			"write_file": starlarkutil.MakeFunc("write_file", func(path string, content string) error {
				return os.WriteFile(path, []byte(content), 0644)
			}),

			"run": starlarkutil.MakeFunc("run", func(command string) (map[string]any, error) {
				if command == "" {
					return nil, fmt.Errorf("command is required")
				}
				logger.InfoContext(ctx, "script running command",
					"command", command,
				)
				cmd := exec.CommandContext(ctx, "/bin/sh", "-c", command)
				var stdout, stderr bytes.Buffer
				cmd.Stdout = &stdout
				cmd.Stderr = &stderr
				err := cmd.Run()
				exitCode := 0
				if err != nil {
					var exitErr *exec.ExitError
					if errors.As(err, &exitErr) {
						exitCode = exitErr.ExitCode()
					} else {
						return nil, err
					}
				}
				return map[string]any{
					"stdout":    stdout.String(),
					"stderr":    stderr.String(),
					"exit_code": exitCode,
				}, nil
			}),

			"env": starlarkutil.MakeFunc("env", func(name string) string {
				return os.Getenv(name)
			}),
		}
	}
}
