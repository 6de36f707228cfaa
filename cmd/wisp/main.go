package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/reusee/dscope"
	"github.com/wispworks/wisp/capabilities"
	"github.com/wispworks/wisp/cmds"
	"github.com/wispworks/wisp/generators"
	"github.com/wispworks/wisp/logs"
	"github.com/wispworks/wisp/modes"
	"github.com/wispworks/wisp/wispconfigs"
	"golang.org/x/term"
)

func main() {
	cmds.Execute(os.Args[1:])

	scope := dscope.New(
		new(capabilities.Module),
		new(wispconfigs.Module),
		modes.ForProduction(),
	)

	scope.Call(func(
		check wispconfigs.CheckCredentials,
		dispatch capabilities.Dispatch,
		getGenerator generators.GetDefaultGenerator,
		logger logs.Logger,
	) {
		ctx := context.Background()

		if err := check(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		generator, err := getGenerator()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		state := generators.State(
			generators.NewOutput(
				generators.NewPrompts(capabilities.DispatchSystemPrompt, nil),
				os.Stdout,
				true,
			).WithTools(false),
		)

		// piped input is one utterance, no prompt loop
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			input, err := io.ReadAll(os.Stdin)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			utterance := strings.TrimSpace(string(input))
			if utterance == "" {
				return
			}
			if _, _, err := dispatch(ctx, generator, utterance, state); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			return
		}

		line := liner.NewLiner()
		defer line.Close()
		line.SetCtrlCAborts(true)
		line.SetMultiLineMode(true)

		historyPath := ""
		if dir, err := os.UserConfigDir(); err == nil {
			historyPath = filepath.Join(dir, "wisp-history")
			if f, err := os.Open(historyPath); err == nil {
				line.ReadHistory(f)
				f.Close()
			}
		}

		for {
			input, err := line.Prompt(">> ")
			if err != nil {
				switch err {
				case io.EOF, liner.ErrPromptAborted:
					return
				}
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			input = strings.TrimSpace(input)
			if input == "" {
				continue
			}
			line.AppendHistory(input)

			if historyPath != "" {
				if err := os.MkdirAll(filepath.Dir(historyPath), 0755); err == nil {
					if f, err := os.Create(historyPath); err == nil {
						line.WriteHistory(f)
						f.Close()
					}
				}
			}

			switch input {
			case "/quit", "/exit":
				return
			}

			outcome, newState, err := dispatch(ctx, generator, input, state)
			if err != nil {
				logger.Error("dispatch failed",
					"error", err,
				)
				continue
			}
			state = newState

			logger.Info("dispatched",
				"kind", outcome.Kind,
			)
		}
	})
}
