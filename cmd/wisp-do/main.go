package main

import (
	"context"
	"fmt"
	"os"

	"github.com/reusee/dscope"
	"github.com/wispworks/wisp/cmds"
	"github.com/wispworks/wisp/generators"
	"github.com/wispworks/wisp/logs"
	"github.com/wispworks/wisp/modes"
	"github.com/wispworks/wisp/sessions"
	"github.com/wispworks/wisp/wispconfigs"
)

var goalFlag = cmds.Var[string]("goal")

func main() {
	cmds.Execute(os.Args[1:])

	if *goalFlag == "" {
		fmt.Fprintln(os.Stderr, "Error: goal is required (use 'goal=\"your goal\"')")
		os.Exit(1)
	}

	scope := dscope.New(
		new(sessions.Module),
		new(wispconfigs.Module),
		modes.ForProduction(),
	)

	scope.Call(func(
		check wispconfigs.CheckCredentials,
		newSession sessions.NewSession,
		run sessions.Run,
		systemPrompt sessions.SystemPrompt,
		getGenerator generators.GetDefaultGenerator,
		logger logs.Logger,
	) {
		if err := check(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		generator, err := getGenerator()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		session := newSession(*goalFlag)
		session.State = generators.NewOutput(
			generators.NewPrompts(string(systemPrompt), nil),
			os.Stdout,
			true,
		).WithTools(false)

		logger.Info("starting session",
			"session", session.ID,
			"goal", *goalFlag,
			"model", generator.Args().Model,
		)

		err = run(context.Background(), generator, session)

		logger.Info("session finished",
			"session", session.ID,
			"status", session.Status,
			"attempts", len(session.Attempts),
			"faults", session.FaultCount(),
		)

		if err != nil {
			fmt.Fprintf(os.Stderr, "Session failed: %v\n", err)
			os.Exit(1)
		}
	})
}
